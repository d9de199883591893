package trade

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	newYear := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   any
		want time.Time
	}{
		{"nil", nil, Epoch},
		{"zero int", 0, Epoch},
		{"zero float", 0.0, Epoch},
		{"seconds", 1704067200, newYear},
		{"seconds int64", int64(1704067200), newYear},
		{"milliseconds", int64(1704067200000), newYear},
		{"milliseconds float", 1704067200000.0, newYear},
		{"fractional seconds", 1704067200.5, newYear.Add(500 * time.Millisecond)},
		{"json number", json.Number("1704067200000"), newYear},
		{"iso zulu", "2024-01-01T00:00:00Z", newYear},
		{"iso offset", "2024-01-01T02:00:00+02:00", newYear},
		{"iso naive", "2024-01-01T00:00:00", newYear},
		{"iso fraction", "2024-01-01T00:00:00.250000", newYear.Add(250 * time.Millisecond)},
		{"space separated", "2024-01-01 00:00:00", newYear},
		{"date only", "2024-01-01", newYear},
		{"numeric string seconds", "1704067200", newYear},
		{"numeric string millis", "1704067200000", newYear},
		{"generic", "2024/01/01", newYear},
		{"garbage", "not a date", Epoch},
		{"empty string", "", Epoch},
		{"unsupported type", []int{1}, Epoch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTimestamp(tt.in)
			if !got.Equal(tt.want) {
				t.Errorf("ParseTimestamp(%v) = %v, want %v", tt.in, got, tt.want)
			}
			if got.Location() != time.UTC {
				t.Errorf("ParseTimestamp(%v) location = %v, want UTC", tt.in, got.Location())
			}
		})
	}
}

func TestParseTimestampKeepsWallClock(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	in := time.Date(2024, 3, 5, 10, 30, 0, 0, tokyo)

	got := ParseTimestamp(in)
	want := time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseTimestamp(aware) = %v, want %v", got, want)
	}

	if got := ParseTimestamp(&in); !got.Equal(want) {
		t.Errorf("ParseTimestamp(*aware) = %v, want %v", got, want)
	}

	var nilTime *time.Time
	if got := ParseTimestamp(nilTime); !got.Equal(Epoch) {
		t.Errorf("ParseTimestamp(nil *time.Time) = %v, want epoch", got)
	}
}

func TestSecondsAndMillisecondsAgree(t *testing.T) {
	s := ParseTimestamp(1704067200)
	ms := ParseTimestamp(1704067200000)
	if !s.Equal(ms) {
		t.Errorf("seconds %v != milliseconds %v", s, ms)
	}
	if got := s.Format(TimestampLayout); got != "2024-01-01T00:00:00" {
		t.Errorf("formatted = %q, want %q", got, "2024-01-01T00:00:00")
	}
}
