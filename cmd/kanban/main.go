// @title			Kanban API
// @version		1.0
// @description	Hierarchical task tracker with epics, subtasks, time-conflict scheduling and view history.
// @BasePath		/api/v1

//go:generate swag init -g cmd/kanban/main.go -d ../.. -o ../../docs

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/mtlprog/kanban/internal/config"
	"github.com/mtlprog/kanban/internal/database"
	"github.com/mtlprog/kanban/internal/domain"
	"github.com/mtlprog/kanban/internal/handler"
	"github.com/mtlprog/kanban/internal/kv"
	"github.com/mtlprog/kanban/internal/logger"
	"github.com/mtlprog/kanban/internal/repository"
	"github.com/mtlprog/kanban/internal/service"
	"github.com/mtlprog/kanban/internal/storage"
	"github.com/mtlprog/kanban/internal/storage/csvfile"
	"github.com/mtlprog/kanban/internal/storage/kvstore"
)

const shutdownTimeout = 10 * time.Second

func main() {
	app := &cli.App{
		Name:  "kanban",
		Usage: "Hierarchical task tracker",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   "json",
				Usage:   "Log format (json, text)",
				EnvVars: []string{"LOG_FORMAT"},
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a TOML config file",
				EnvVars: []string{"KANBAN_CONFIG"},
			},
		},
		Before: func(c *cli.Context) error {
			logger.Setup(logger.ParseLevel(c.String("log-level")), c.String("log-format"))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Start the task API server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Value:   config.DefaultPort,
						Usage:   "HTTP server port",
						EnvVars: []string{"PORT"},
					},
					&cli.StringFlag{
						Name:    "storage",
						Aliases: []string{"s"},
						Value:   config.DefaultStorage,
						Usage:   "Storage backend (memory, file, kv, postgres)",
						EnvVars: []string{"STORAGE"},
					},
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Value:   config.DefaultFilePath,
						Usage:   "Data file for the file backend",
						EnvVars: []string{"DATA_FILE"},
					},
					&cli.StringFlag{
						Name:    "kv-url",
						Value:   config.DefaultKVURL,
						Usage:   "Key-value server URL for the kv backend",
						EnvVars: []string{"KV_URL"},
					},
					&cli.StringFlag{
						Name:    "database-url",
						Aliases: []string{"d"},
						Value:   config.DefaultDatabaseURL,
						Usage:   "PostgreSQL database URL for the postgres backend",
						EnvVars: []string{"DATABASE_URL"},
					},
					&cli.IntFlag{
						Name:    "history-capacity",
						Usage:   "Maximum number of history entries (0 = unbounded)",
						EnvVars: []string{"HISTORY_CAPACITY"},
					},
					&cli.DurationFlag{
						Name:    "bucket-width",
						Value:   config.DefaultBucketWidth,
						Usage:   "Scheduling slot width; must divide one hour",
						EnvVars: []string{"BUCKET_WIDTH"},
					},
					&cli.DurationFlag{
						Name:    "max-duration",
						Value:   config.DefaultMaxDuration,
						Usage:   "Longest task window accepted",
						EnvVars: []string{"MAX_DURATION"},
					},
				},
				Action: runServe,
			},
			{
				Name:  "kv-serve",
				Usage: "Start the key-value server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Value:   config.DefaultKVPort,
						Usage:   "HTTP server port",
						EnvVars: []string{"KV_PORT"},
					},
				},
				Action: runKVServe,
			},
			{
				Name:  "migrate",
				Usage: "Apply database migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "database-url",
						Aliases:  []string{"d"},
						Usage:    "PostgreSQL database URL",
						EnvVars:  []string{"DATABASE_URL"},
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "down",
						Usage: "Roll back the most recent migration instead",
					},
				},
				Action: runMigrate,
			},
		},
		Action: runServe,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies explicitly set flags on top.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if c.IsSet("port") {
		cfg.Server.Port = c.String("port")
		cfg.KV.Port = c.String("port")
	}
	if c.IsSet("storage") {
		cfg.Storage.Backend = c.String("storage")
	}
	if c.IsSet("file") {
		cfg.Storage.File = c.String("file")
	}
	if c.IsSet("kv-url") {
		cfg.Storage.KVURL = c.String("kv-url")
	}
	if c.IsSet("database-url") {
		cfg.Storage.DatabaseURL = c.String("database-url")
	}
	if c.IsSet("history-capacity") {
		cfg.Store.HistoryCapacity = c.Int("history-capacity")
	}
	if c.IsSet("bucket-width") {
		cfg.Store.BucketWidth = c.Duration("bucket-width").String()
	}
	if c.IsSet("max-duration") {
		cfg.Store.MaxDuration = c.Duration("max-duration").String()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func runServe(c *cli.Context) error {
	ctx := c.Context

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	width, err := cfg.BucketWidth()
	if err != nil {
		return err
	}
	maxDuration, err := cfg.MaxDuration()
	if err != nil {
		return err
	}

	manager, err := service.NewTaskManager(service.Options{
		HistoryCapacity: cfg.Store.HistoryCapacity,
		BucketWidth:     width,
		Validators:      []service.Validator{service.NewFieldValidator(maxDuration)},
	})
	if err != nil {
		return fmt.Errorf("failed to create task manager: %w", err)
	}

	backend, closeBackend, err := openBackend(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer closeBackend()

	h := handler.New(manager, backend)
	if err := h.Restore(ctx); err != nil {
		// Windows saved under a narrower bucket width can collide under a wider one.
		if errors.Is(err, domain.ErrSchedulingConflict) {
			return fmt.Errorf("failed to restore tasks with bucket width %s: %w", width, err)
		}
		return fmt.Errorf("failed to restore tasks: %w", err)
	}

	slog.Info("task store ready",
		"storage", cfg.Storage.Backend,
		"next_id", manager.NextID(),
		"bucket_width", width,
		"max_duration", maxDuration,
		"history_capacity", cfg.Store.HistoryCapacity,
	)

	return serveHTTP(ctx, "task api", cfg.Server.Port, h.Routes())
}

// openBackend builds the configured storage backend. The returned func releases its resources.
func openBackend(ctx context.Context, cfg config.StorageConfig) (storage.Backend, func(), error) {
	noop := func() {}

	switch cfg.Backend {
	case config.StorageMemory:
		return nil, noop, nil

	case config.StorageFile:
		backend := csvfile.New(cfg.File)
		slog.Info("using file storage", "path", backend.Path())
		return backend, noop, nil

	case config.StorageKV:
		client, err := kv.NewClient(ctx, cfg.KVURL, &http.Client{Timeout: 30 * time.Second})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to kv server: %w", err)
		}
		return kvstore.New(client), noop, nil

	case config.StoragePostgres:
		if cfg.DatabaseURL == "" {
			return nil, nil, errors.New("database URL is required for the postgres backend")
		}
		db, err := database.New(ctx, cfg.DatabaseURL, database.DefaultOptions())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.RunMigrations(ctx, db.Pool()); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return repository.NewSnapshotRepository(db.Pool()), db.Close, nil
	}

	return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}

func runKVServe(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	srv := kv.NewServer()
	slog.Info("kv server ready", "token", srv.Token())

	return serveHTTP(c.Context, "kv server", cfg.KV.Port, srv.Handler())
}

func runMigrate(c *cli.Context) error {
	ctx := c.Context

	db, err := database.New(ctx, c.String("database-url"), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if c.Bool("down") {
		return database.RollbackMigration(ctx, db.Pool())
	}
	return database.RunMigrations(ctx, db.Pool())
}

// serveHTTP runs an HTTP server until SIGINT or SIGTERM, then shuts it down gracefully.
func serveHTTP(ctx context.Context, name, port string, h http.Handler) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           h,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting server", "server_name", name, "server_addr", "http://localhost:"+port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server", "server_name", name)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("server stopped", "server_name", name)
	return nil
}
