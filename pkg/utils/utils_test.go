package utils

import (
	"testing"
	"time"
)

func TestSnakeToCamel(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{"amount_paid", "amountPaid"},
		{"consumption", "consumption"},
		{"reading_count_total", "readingCountTotal"},
		{"city", "city"},
		{"", ""},
	}

	for _, tc := range testCases {
		if got := SnakeToCamel(tc.in); got != tc.want {
			t.Errorf("SnakeToCamel(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCamelToSnake(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{"amountPaid", "amount_paid"},
		{"TempCelsius", "temp_celsius"},
		{"consumption", "consumption"},
		{"", ""},
	}

	for _, tc := range testCases {
		if got := CamelToSnake(tc.in); got != tc.want {
			t.Errorf("CamelToSnake(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCaseRoundTrip(t *testing.T) {
	for _, name := range []string{"amount_paid", "reading_count", "unit"} {
		if got := CamelToSnake(SnakeToCamel(name)); got != name {
			t.Errorf("round trip of %q gave %q", name, got)
		}
	}
}

func TestFormatTime(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if got := FormatTime(ts); got != "2024-03-01T12:00:00Z" {
		t.Errorf("FormatTime = %q", got)
	}
}
