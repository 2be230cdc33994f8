package shortener

import (
	"fmt"
	"strings"

	nanoid "github.com/jaevor/go-nanoid"
)

// Base62 characters for short code generation.
const base62Chars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// DefaultCodeLength is the default length for generated short codes.
const DefaultCodeLength = 7

// MaxAliasLength bounds caller-supplied aliases.
const MaxAliasLength = 32

// reservedCodes collide with fixed routes of the HTTP server.
var reservedCodes = map[string]struct{}{
	"api":    {},
	"health": {},
}

// CodeGenerator returns a random short code on every call.
type CodeGenerator func() string

// NewCodeGenerator builds a generator producing codes of the given length
// drawn from alphabet. Zero values fall back to the defaults.
func NewCodeGenerator(length int, alphabet string) (CodeGenerator, error) {
	if length <= 0 {
		length = DefaultCodeLength
	}
	if alphabet == "" {
		alphabet = base62Chars
	}

	gen, err := nanoid.CustomASCII(alphabet, length)
	if err != nil {
		return nil, fmt.Errorf("invalid short code settings (length=%d, alphabet=%q): %w", length, alphabet, err)
	}
	return func() string { return gen() }, nil
}

// IsValidShortCode checks if a caller-supplied alias is usable as a short code:
// letters, digits, '-' and '_', at most MaxAliasLength characters, and not a
// reserved route name.
func IsValidShortCode(code string) bool {
	if code == "" || len(code) > MaxAliasLength {
		return false
	}
	if _, reserved := reservedCodes[strings.ToLower(code)]; reserved {
		return false
	}

	for _, c := range code {
		if !isAlphanumeric(c) && c != '-' && c != '_' {
			return false
		}
	}
	return true
}

func isAlphanumeric(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
