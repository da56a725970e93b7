package itinerary

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// Duration parse errors.
var (
	ErrEmptyDuration    = errors.New("duration is empty")
	ErrInvalidDuration  = errors.New("duration is not a number")
	ErrNegativeDuration = errors.New("duration is negative")
)

// Duration holds a user-entered minute count exactly as typed.
// It decodes from a JSON number, a JSON string or null.
type Duration string

// Minutes returns a Duration for a known minute count.
func Minutes(n int) Duration {
	return Duration(strconv.Itoa(n))
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*d = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = Duration(s)
		return nil
	}
	*d = Duration(data)
	return nil
}

// MarshalJSON emits a number when the value parses cleanly, the raw string
// otherwise, and null when empty.
func (d Duration) MarshalJSON() ([]byte, error) {
	if d == "" {
		return []byte("null"), nil
	}
	if n, err := strconv.Atoi(string(d)); err == nil {
		return []byte(strconv.Itoa(n)), nil
	}
	return json.Marshal(string(d))
}

// ParseDurationMinutes reads the leading integer of input, so "15 min"
// is 15 and "12.5" is 12.
func ParseDurationMinutes(input string) (int, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return 0, ErrEmptyDuration
	}

	negative := false
	switch s[0] {
	case '-':
		negative = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, ErrInvalidDuration
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, ErrInvalidDuration
	}
	if negative && n != 0 {
		return 0, ErrNegativeDuration
	}
	return n, nil
}

// DurationOrZero parses d and falls back to zero minutes on any error.
func DurationOrZero(d Duration) int {
	n, err := ParseDurationMinutes(string(d))
	if err != nil {
		return 0
	}
	return n
}
