// Package id generates prefixed record identifiers.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes for the record types the store hands out.
const (
	PrefixHighlight = "hl"
)

// Generate creates a prefixed unique ID using NanoID, e.g. "hl-V1StGXR8_Z5jdHi6B-myT".
//
// Returns an error if the system has insufficient entropy for secure random generation.
func Generate(prefix string) (string, error) {
	nid, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + nid, nil
}

// Highlight returns a new highlight ID.
func Highlight() (string, error) {
	return Generate(PrefixHighlight)
}
