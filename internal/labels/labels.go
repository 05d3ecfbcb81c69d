// Package labels splits free-text category names into label tokens and provides
// the small set operations the category registry and deletion engine need.
//
// Label text is only ever split. Join exists for display and is never parsed back.
package labels

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Delimiters separate labels within one category string.
const Delimiters = ",，、;|/&+"

// MaxLabelLength is the longest label accepted when naming a color, in runes.
const MaxLabelLength = 50

func isDelimiter(r rune) bool {
	return strings.ContainsRune(Delimiters, r)
}

// Split breaks raw into trimmed, NFC-normalized, non-empty tokens.
// Input made only of delimiters and whitespace yields an empty slice.
// Split is idempotent: Split(tok) == []string{tok} for every tok in Split(s).
func Split(raw string) []string {
	fields := strings.FieldsFunc(raw, isDelimiter)

	out := make([]string, 0, len(fields))
	for _, f := range fields {
		tok := strings.TrimSpace(norm.NFC.String(f))
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// dedupe removes exact duplicates, keeping first-seen order.
func dedupe(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}

// Parse is Split with exact duplicates removed, the form stored for a color.
func Parse(raw string) []string {
	return dedupe(Split(raw))
}

// Contains reports whether name is exactly one of labels.
func Contains(labels []string, name string) bool {
	return slices.Contains(labels, name)
}

// Without returns labels minus every occurrence of name. The input is not modified.
func Without(labels []string, name string) []string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if l != name {
			out = append(out, l)
		}
	}
	return out
}

// Join renders labels for logs and CLI output.
func Join(labels []string) string {
	return strings.Join(labels, ", ")
}

// Lower case-folds s for containment checks.
func Lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// Mentions reports whether text contains label, ignoring case.
// Plain substring match: "hope" matches "hopeful".
func Mentions(text, label string) bool {
	return strings.Contains(Lower(text), Lower(label))
}

// Sort orders names using the root collation, breaking collation ties by byte order.
// The slice is sorted in place.
func Sort(names []string) {
	c := collate.New(language.Und)
	slices.SortStableFunc(names, func(a, b string) int {
		if r := c.CompareString(a, b); r != 0 {
			return r
		}
		return strings.Compare(a, b)
	})
}
