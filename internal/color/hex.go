// Package color normalizes highlight hex colors and holds the highlight palette.
package color

import (
	"fmt"
	"strings"
)

// Normalize converts "#ffeb3b", "ffeb3b" or "#FEB" into canonical "#FFEB3B" form.
func Normalize(hex string) (string, error) {
	s := strings.TrimSpace(hex)
	s = strings.TrimPrefix(s, "#")

	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return "", fmt.Errorf("invalid hex color %q: want 3 or 6 hex digits", hex)
	}
	for i := 0; i < len(s); i++ {
		if !isHexDigit(s[i]) {
			return "", fmt.Errorf("invalid hex color %q: %q is not a hex digit", hex, s[i])
		}
	}

	return "#" + strings.ToUpper(s), nil
}

// MustNormalize is Normalize for compile-time constants. It panics on bad input.
func MustNormalize(hex string) string {
	n, err := Normalize(hex)
	if err != nil {
		panic(err)
	}
	return n
}

// IsValid reports whether hex normalizes cleanly.
func IsValid(hex string) bool {
	_, err := Normalize(hex)
	return err == nil
}

func isHexDigit(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
