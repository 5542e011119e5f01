package kv_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtlprog/kanban/internal/kv"
)

func newServer(t *testing.T) (*kv.Server, *httptest.Server) {
	t.Helper()
	srv := kv.NewServer()
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func TestClient_SaveLoad(t *testing.T) {
	ctx := context.Background()
	srv, ts := newServer(t)

	client, err := kv.NewClient(ctx, ts.URL, ts.Client())
	require.NoError(t, err)
	assert.Equal(t, srv.Token(), client.Token())

	require.NoError(t, client.Save(ctx, "tasks", []byte(`[{"id":1}]`)))
	value, err := client.Load(ctx, "tasks")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1}]`, string(value))

	// Overwrite.
	require.NoError(t, client.Save(ctx, "tasks", []byte(`[]`)))
	value, err = client.Load(ctx, "tasks")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(value))
}

func TestClient_LoadMissingKey(t *testing.T) {
	ctx := context.Background()
	_, ts := newServer(t)

	client, err := kv.NewClient(ctx, ts.URL, ts.Client())
	require.NoError(t, err)

	_, err = client.Load(ctx, "nothing")
	assert.ErrorIs(t, err, kv.ErrKeyNotFound)
}

func TestClient_RegisterFails(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	_, err := kv.NewClient(context.Background(), ts.URL, ts.Client())
	assert.Error(t, err)
}

func TestServer_Protocol(t *testing.T) {
	srv, ts := newServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{name: "save without token", method: http.MethodPost, path: "/save/k", body: "v", status: http.StatusForbidden},
		{name: "save with wrong token", method: http.MethodPost, path: "/save/k?API_TOKEN=nope", body: "v", status: http.StatusForbidden},
		{name: "save empty body", method: http.MethodPost, path: "/save/k?API_TOKEN=" + srv.Token(), body: "", status: http.StatusBadRequest},
		{name: "save empty key", method: http.MethodPost, path: "/save/?API_TOKEN=" + srv.Token(), body: "v", status: http.StatusBadRequest},
		{name: "save", method: http.MethodPost, path: "/save/k?API_TOKEN=" + srv.Token(), body: "v", status: http.StatusOK},
		{name: "load with debug token", method: http.MethodGet, path: "/load/k?API_TOKEN=DEBUG", status: http.StatusOK},
		{name: "load missing", method: http.MethodGet, path: "/load/other?API_TOKEN=DEBUG", status: http.StatusNotFound},
		{name: "load with GET only", method: http.MethodPost, path: "/load/k?API_TOKEN=DEBUG", body: "v", status: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, ts.URL+tt.path, strings.NewReader(tt.body))
			require.NoError(t, err)

			resp, err := ts.Client().Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestServer_Register(t *testing.T) {
	srv, ts := newServer(t)

	resp, err := ts.Client().Get(ts.URL + "/register")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, srv.Token(), string(body))
}
