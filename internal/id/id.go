// Package id generates prefixed unique identifiers for domain entities.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Entity prefixes. The prefix makes an id self-describing in logs and
// persisted documents.
const (
	PrefixCategory = "cat"
	PrefixBookmark = "bm"
	PrefixTag      = "tag"
)

// Generate creates a prefixed unique ID using NanoID.
// Format: prefix-nanoid (e.g., "cat-V1StGXR8_Z5jdHi6B-myT").
//
// NanoIDs are URL-friendly, compact, and random enough that rapid
// successive calls do not collide.
//
// Returns an error if the system has insufficient entropy for secure
// random generation.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
// Entropy exhaustion is not a condition worth threading an error through
// every mutator for.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}
