package random

import (
	"fmt"
	"math/rand"
	"slices"
)

// Alphabet is the character set used for generated identifiers.
const Alphabet = "abcdefghijklmnopqrstuvwxyz123456789"

// maxUniqueAttempts caps retries in UniqueString before giving up.
const maxUniqueAttempts = 1000

// String returns a random identifier of the given length drawn from Alphabet.
func String(length int) string {
	if length <= 0 {
		return ""
	}

	b := make([]byte, length)
	for i := range b {
		b[i] = Alphabet[rand.Intn(len(Alphabet))]
	}
	return string(b)
}

// UniqueString returns a random identifier not present in existing.
// It fails when the space is exhausted or collisions keep occurring.
func UniqueString(length int, existing []string) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("length must be positive, got %d", length)
	}

	for attempt := 0; attempt < maxUniqueAttempts; attempt++ {
		candidate := String(length)
		if !slices.Contains(existing, candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no unique string of length %d after %d attempts", length, maxUniqueAttempts)
}
