package utils

import (
	"errors"
	"testing"
)

func TestParseAmount_AcceptsFormattedStrings(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{"20000", "20000"},
		{"20,000", "20000"},
		{"¥20,000", "20000"},
		{"￥ -20,000", "-20000"},
		{"-¥12.5", "-12.5"},
		{"  RMB 1,234.50  ", "1234.5"},
		{"(12.00)", "-12"},
		{"3元", "3"},
		{"1.5E+02", "150"},
		{" 7.25 ", "7.25"},
	}
	for _, tc := range cases {
		d, err := ParseAmount(tc.in)
		if err != nil {
			t.Fatalf("ParseAmount(%q) error: %v", tc.in, err)
		}
		if d.String() != tc.expected {
			t.Fatalf("ParseAmount(%q) expected %s, got %s", tc.in, tc.expected, d.String())
		}
	}
}

func TestParseAmount_BlankIsZero(t *testing.T) {
	for _, in := range []string{"", "   ", "\u00a0"} {
		d, err := ParseAmount(in)
		if err != nil {
			t.Fatalf("ParseAmount(%q) error: %v", in, err)
		}
		if !d.IsZero() {
			t.Fatalf("ParseAmount(%q) expected 0, got %s", in, d.String())
		}
	}
}

func TestParseAmount_RejectsGarbage(t *testing.T) {
	for _, in := range []string{"N/A", "-", "¥", "12abc", "1.2.3", "(-5)"} {
		_, err := ParseAmount(in)
		if err == nil {
			t.Fatalf("ParseAmount(%q) expected error", in)
		}
		if !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("ParseAmount(%q) expected ErrInvalidAmount, got %v", in, err)
		}
	}
}
