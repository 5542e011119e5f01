package storage

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var isoDuration = regexp.MustCompile(`^(-)?P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)(?:\.(\d{1,9}))?S)?)?$`)

// FormatDuration renders d as an ISO-8601 duration such as PT1H30M.
// Days are never emitted; hours may exceed 24.
func FormatDuration(d time.Duration) string {
	if d == 0 {
		return "PT0S"
	}

	var b strings.Builder
	if d < 0 {
		b.WriteByte('-')
		d = -d
	}
	b.WriteString("PT")

	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	seconds := d / time.Second
	nanos := d - seconds*time.Second

	if hours > 0 {
		fmt.Fprintf(&b, "%dH", hours)
	}
	if minutes > 0 {
		fmt.Fprintf(&b, "%dM", minutes)
	}
	if seconds > 0 || nanos > 0 {
		fmt.Fprintf(&b, "%d", seconds)
		if nanos > 0 {
			frac := strings.TrimRight(fmt.Sprintf("%09d", nanos), "0")
			b.WriteString("." + frac)
		}
		b.WriteByte('S')
	}
	return b.String()
}

// ParseDuration parses an ISO-8601 duration limited to days, hours, minutes and seconds.
// Durations beyond the range of time.Duration are rejected.
func ParseDuration(s string) (time.Duration, error) {
	m := isoDuration.FindStringSubmatch(s)
	if m == nil || s == "P" || s == "-P" || strings.HasSuffix(s, "T") {
		return 0, fmt.Errorf("%w: invalid ISO-8601 duration %q", ErrCorrupt, s)
	}

	var d time.Duration
	units := []time.Duration{24 * time.Hour, time.Hour, time.Minute, time.Second}
	for i, unit := range units {
		if m[i+2] == "" {
			continue
		}
		n, err := strconv.ParseInt(m[i+2], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: duration %q: %v", ErrCorrupt, s, err)
		}
		var ok bool
		if d, ok = addScaled(d, n, unit); !ok {
			return 0, fmt.Errorf("%w: duration %q overflows", ErrCorrupt, s)
		}
	}

	if frac := m[6]; frac != "" {
		n, err := strconv.ParseInt(frac+strings.Repeat("0", 9-len(frac)), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: duration %q: %v", ErrCorrupt, s, err)
		}
		var ok bool
		if d, ok = addScaled(d, n, time.Nanosecond); !ok {
			return 0, fmt.Errorf("%w: duration %q overflows", ErrCorrupt, s)
		}
	}

	if m[1] == "-" {
		d = -d
	}
	return d, nil
}

// addScaled returns d + n*unit, or false when the sum exceeds math.MaxInt64 nanoseconds.
// d and n must not be negative.
func addScaled(d time.Duration, n int64, unit time.Duration) (time.Duration, bool) {
	if n > int64((math.MaxInt64-d)/unit) {
		return 0, false
	}
	return d + time.Duration(n)*unit, true
}
