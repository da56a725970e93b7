package itinerary

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestFormatMinutesToTime(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, "00:00"},
		{495, "08:15"},
		{1439, "23:59"},
		{1440, "00:00"},
		{1500, "01:00"},
		{-30, "23:30"},
		{-1440, "00:00"},
		{-1470, "23:30"},
		{3 * 1440, "00:00"},
	}

	for _, tt := range tests {
		if got := FormatMinutesToTime(tt.minutes); got != tt.want {
			t.Errorf("FormatMinutesToTime(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}

func TestFormatOptionalMinutes(t *testing.T) {
	if got := FormatOptionalMinutes(nil); got != "" {
		t.Errorf("expected empty string for unknown time, got %q", got)
	}
	m := 61
	if got := FormatOptionalMinutes(&m); got != "01:01" {
		t.Errorf("expected 01:01, got %q", got)
	}
}

func TestParseTimeToMinutes(t *testing.T) {
	tests := []struct {
		input  string
		want   int
		wantOK bool
	}{
		{"08:00", 480, true},
		{"8:05", 485, true},
		{" 23:59 ", 1439, true},
		{"00:00", 0, true},
		{"", 0, false},
		{"0800", 0, false},
		{"08:00:00", 0, false},
		{"ab:00", 0, false},
		{"08:", 0, false},
		{":30", 0, false},
		{"-1:00", 0, false},
		{"08:3x", 0, false},
		{"25:00", 1500, true},
		{"999999999999999999:00", 0, false},
		{"99999999999999999999:00", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseTimeToMinutes(tt.input)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ParseTimeToMinutes(%q) = (%d, %v), want (%d, %v)", tt.input, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParseDurationMinutes(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr error
	}{
		{"15", 15, nil},
		{" 42 ", 42, nil},
		{"15 min", 15, nil},
		{"12.5", 12, nil},
		{"+7", 7, nil},
		{"0", 0, nil},
		{"-0", 0, nil},
		{"", 0, ErrEmptyDuration},
		{"   ", 0, ErrEmptyDuration},
		{"abc", 0, ErrInvalidDuration},
		{"min 15", 0, ErrInvalidDuration},
		{"-5", 0, ErrNegativeDuration},
		{"99999999999999999999999", 0, ErrInvalidDuration},
	}

	for _, tt := range tests {
		got, err := ParseDurationMinutes(tt.input)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("ParseDurationMinutes(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDurationMinutes(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestDurationOrZero(t *testing.T) {
	if got := DurationOrZero("abc"); got != 0 {
		t.Errorf("expected 0 for malformed input, got %d", got)
	}
	if got := DurationOrZero(Minutes(25)); got != 25 {
		t.Errorf("expected 25, got %d", got)
	}
}

func TestDuration_MarshalJSON(t *testing.T) {
	tests := []struct {
		in   Duration
		want string
	}{
		{"", "null"},
		{"15", "15"},
		{"15 min", `"15 min"`},
	}

	for _, tt := range tests {
		b, err := json.Marshal(tt.in)
		if err != nil {
			t.Fatalf("marshal %q: %v", tt.in, err)
		}
		if string(b) != tt.want {
			t.Errorf("json.Marshal(%q) = %s, want %s", tt.in, b, tt.want)
		}
	}
}
