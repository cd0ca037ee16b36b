// Package roomid generates short join codes for rooms created without an
// explicit id. Codes use Crockford's base32 alphabet so they survive being
// read aloud or typed from a phone screen.
package roomid

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// Base32 alphabet (Crockford): no i, l, o or u
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length of a generated join code
const Length = 6

// RandSource interface for dependency injection of randomness
type RandSource interface {
	IntN(n int) int
}

// Generator creates join codes with configurable randomness
type Generator struct {
	randSource RandSource
}

// NewGenerator creates a generator. A nil randSource uses crypto/rand.
func NewGenerator(randSource RandSource) *Generator {
	return &Generator{randSource: randSource}
}

// Generate creates a join code using crypto/rand
func Generate() string {
	return NewGenerator(nil).Generate()
}

// Generate creates a join code using the generator's RandSource
func (g *Generator) Generate() string {
	code := make([]byte, Length)
	if g.randSource != nil {
		for i := range code {
			code[i] = alphabet[g.randSource.IntN(len(alphabet))]
		}
		return string(code)
	}

	buf := make([]byte, Length)
	if _, err := rand.Read(buf); err != nil {
		panic("failed to generate random bytes: " + err.Error())
	}
	// 256 is a multiple of 32, so masking introduces no bias.
	for i, b := range buf {
		code[i] = alphabet[b&0x1f]
	}
	return string(code)
}

// Normalize lowercases a code for lookup
func Normalize(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// Validate checks that id has the shape of a generated join code
func Validate(id string) error {
	if len(id) != Length {
		return fmt.Errorf("room code must be exactly %d characters, got %d", Length, len(id))
	}
	for i, char := range id {
		if !strings.ContainsRune(alphabet, char) {
			return fmt.Errorf("invalid character %c at position %d", char, i)
		}
	}
	return nil
}
