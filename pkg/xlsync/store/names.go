package store

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultSheetName replaces names that sanitize to nothing.
const DefaultSheetName = "Sheet1"

// MaxSheetNameLength is the longest sheet name Excel accepts.
const MaxSheetNameLength = 31

var invalidSheetChars = strings.NewReplacer(
	"[", "_", "]", "_", ":", "_", "*", "_",
	"?", "_", "/", "_", "\\", "_",
)

// SanitizeName turns name into a valid sheet name: invalid characters become
// underscores, surrounding apostrophes and spaces are removed and the result
// is cut to MaxSheetNameLength runes.
func SanitizeName(name string) string {
	name = invalidSheetChars.Replace(name)
	name = strings.TrimSpace(strings.Trim(strings.TrimSpace(name), "'"))
	if name == "" {
		return DefaultSheetName
	}
	return truncate(name, MaxSheetNameLength)
}

// UniqueName returns name, or name with a " (n)" suffix if it clashes
// (case-insensitively) with one of existing.
func UniqueName(name string, existing []string) string {
	taken := func(candidate string) bool {
		for _, e := range existing {
			if strings.EqualFold(e, candidate) {
				return true
			}
		}
		return false
	}

	if !taken(name) {
		return name
	}
	for n := 2; ; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		candidate := truncate(name, MaxSheetNameLength-len(suffix)) + suffix
		if !taken(candidate) {
			return candidate
		}
	}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
