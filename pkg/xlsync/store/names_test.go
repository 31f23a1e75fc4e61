package store

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Items", "Items"},
		{"  Items  ", "Items"},
		{"a[b]c:d*e?f/g\\h", "a_b_c_d_e_f_g_h"},
		{"'quoted'", "quoted"},
		{"", DefaultSheetName},
		{"'  '", DefaultSheetName},
		{strings.Repeat("x", 40), strings.Repeat("x", 31)},
	}

	for _, tt := range tests {
		if got := SanitizeName(tt.input); got != tt.expected {
			t.Errorf("SanitizeName(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestUniqueName(t *testing.T) {
	existing := []string{"Data", "data (2)", strings.Repeat("y", 31)}

	tests := []struct {
		input    string
		expected string
	}{
		{"Other", "Other"},
		{"DATA", "DATA (3)"},
		{strings.Repeat("y", 31), strings.Repeat("y", 27) + " (2)"},
	}

	for _, tt := range tests {
		got := UniqueName(tt.input, existing)
		if got != tt.expected {
			t.Errorf("UniqueName(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
		if utf8.RuneCountInString(got) > MaxSheetNameLength {
			t.Errorf("UniqueName(%q) = %q exceeds %d runes", tt.input, got, MaxSheetNameLength)
		}
	}
}
