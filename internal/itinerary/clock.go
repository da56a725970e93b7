package itinerary

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MinutesPerDay bounds the clock. Itineraries are single-day: times past
// midnight wrap onto the same clock face.
const MinutesPerDay = 24 * 60

// ParseTimeToMinutes converts an HH:MM string to minutes since midnight.
// The second return value is false for any other shape.
func ParseTimeToMinutes(s string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, false
	}

	hours, ok := parseDigits(parts[0])
	if !ok {
		return 0, false
	}
	minutes, ok := parseDigits(parts[1])
	if !ok {
		return 0, false
	}
	if hours > (math.MaxInt-minutes)/60 {
		return 0, false
	}

	return hours*60 + minutes, true
}

// FormatMinutesToTime renders a minute count as HH:MM after wrapping it into
// [0, MinutesPerDay).
func FormatMinutesToTime(m int) string {
	m %= MinutesPerDay
	if m < 0 {
		m += MinutesPerDay
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// FormatOptionalMinutes is FormatMinutesToTime for a possibly unknown time.
// Unknown renders as the empty string.
func FormatOptionalMinutes(m *int) string {
	if m == nil {
		return ""
	}
	return FormatMinutesToTime(*m)
}

func parseDigits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
