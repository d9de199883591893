package trade

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Epoch is returned for absent or unparseable timestamps.
var Epoch = time.Unix(0, 0).UTC()

// Values above this are epoch milliseconds rather than seconds.
const millisThreshold = 1e12

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp converts any supported time encoding into a naive UTC
// instant: nil, unix seconds or milliseconds (numeric or numeric string),
// ISO-8601 strings, free-form date strings and time.Time values.
// It never fails; unusable input yields Epoch.
func ParseTimestamp(v any) time.Time {
	switch x := v.(type) {
	case nil:
		return Epoch
	case time.Time:
		return Naive(x)
	case *time.Time:
		if x == nil {
			return Epoch
		}
		return Naive(*x)
	case string:
		return parseTimestampString(x)
	case json.Number:
		return parseTimestampString(x.String())
	}
	if f, ok := numeric(v); ok {
		return fromEpoch(f)
	}
	return Epoch
}

// Naive drops the location of t, keeping its wall clock reading.
func Naive(t time.Time) time.Time {
	if t.Location() == time.UTC {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

func parseTimestampString(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return Epoch
	}

	iso := s
	if strings.HasSuffix(iso, "Z") {
		iso = strings.TrimSuffix(iso, "Z") + "+00:00"
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, iso); err == nil {
			return t.UTC()
		}
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return fromEpoch(f)
	}

	if t, err := dateparse.ParseIn(s, time.UTC); err == nil {
		return t.UTC()
	}
	return Epoch
}

func fromEpoch(f float64) time.Time {
	if f == 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return Epoch
	}
	if math.Abs(f) > millisThreshold {
		f /= 1000
	}
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(math.Round(frac*1e9))).UTC()
}

// numeric reports the float value of Go's built-in number kinds.
func numeric(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	}
	return 0, false
}
