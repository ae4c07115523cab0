package searchutil

import (
	"strings"
	"unicode"
)

var normalizeReplacer = strings.NewReplacer(
	"-", " ",
	".", " ",
	"_", " ",
	",", " ",
	":", " ",
	";", " ",
	"!", " ",
	"?", " ",
	"(", " ",
	")", " ",
	"[", " ",
	"]", " ",
	"{", " ",
	"}", " ",
	"'", " ",
	"\"", " ",
	"/", " ",
	"\\", " ",
	"|", " ",
	"+", " ",
	"=", " ",
	"#", " ",
	"&", " ",
	"*", " ",
)

// Normalize lowercases, replaces punctuation with spaces and collapses
// whitespace. Used for human-facing matching.
func Normalize(value string) string {
	clean := strings.ToLower(strings.TrimSpace(value))
	if clean == "" {
		return ""
	}
	clean = normalizeReplacer.Replace(clean)
	return strings.Join(strings.Fields(clean), " ")
}

// DedupKey reduces a title to lowercase alphanumerics only. "One Piece"
// and "one piece!" collapse to the same key, which is exactly what
// cross-source result dedup needs.
func DedupKey(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// UniqueNonEmpty trims values and drops empties and duplicates,
// comparing by normalized form while keeping the original spelling.
func UniqueNonEmpty(values []string) []string {
	if len(values) == 0 {
		return nil
	}

	unique := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, raw := range values {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		key := Normalize(trimmed)
		if key == "" {
			continue
		}
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, trimmed)
	}

	return unique
}
