// Package id generates and checks catalog document identifiers.
package id

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes for each catalog document kind.
const (
	PrefixAuthor       = "author"
	PrefixBook         = "book"
	PrefixGenre        = "genre"
	PrefixBookInstance = "copy"
)

// nanoidSize is the length of the random part of an ID.
const nanoidSize = 21

// Generate creates a prefixed unique ID using NanoID.
// Format: prefix-nanoid (e.g., "author-V1StGXR8_Z5jdHi6B-myT").
func Generate(prefix string) (string, error) {
	n, err := gonanoid.New(nanoidSize)
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + n, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate(prefix string) string {
	v, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return v
}

// Valid reports whether v looks like an ID generated with prefix.
// Handlers use it to answer obviously malformed identifiers without a store round trip.
func Valid(prefix, v string) bool {
	rest, ok := strings.CutPrefix(v, prefix+"-")
	if !ok || len(rest) != nanoidSize {
		return false
	}
	for _, r := range rest {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}
