package utils

import (
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"
)

var (
	ErrPrefixTooShort = errors.New("prefix too short")
	ErrPrefixTooLong  = errors.New("prefix too long")
	ErrPrefixFiltered = errors.New("prefix filtered out")
)

// PrefixRules bounds what the outer surfaces pass to the engine.
// Lengths count runes; MaxLen <= 0 means no upper bound.
type PrefixRules struct {
	MinLen int
	MaxLen int
	Filter bool
}

// Check validates prefix against the rules.
func (r PrefixRules) Check(prefix string) error {
	n := utf8.RuneCountInString(prefix)
	if n < r.MinLen {
		return fmt.Errorf("%w: %d < %d", ErrPrefixTooShort, n, r.MinLen)
	}
	if r.MaxLen > 0 && n > r.MaxLen {
		return fmt.Errorf("%w: %d > %d", ErrPrefixTooLong, n, r.MaxLen)
	}
	if r.Filter && !IsValidInput(prefix) {
		return ErrPrefixFiltered
	}
	return nil
}

// IsSeparator checks if a rune is a separator character
func IsSeparator(r rune) bool {
	return r == ' ' || r == '_' || r == '-' || r == '.' || r == '/'
}

// IsValidInput rejects prefixes that are only digits, contain symbols other
// than separators, or repeat one character ("www").
func IsValidInput(s string) bool {
	if s == "" {
		return false
	}

	digits := true
	for _, r := range s {
		if !unicode.IsDigit(r) {
			digits = false
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !IsSeparator(r) {
			return false
		}
	}
	return !digits && !IsRepetitive(s)
}

// IsRepetitive checks if a string is one character repeated 3+ times
func IsRepetitive(s string) bool {
	if utf8.RuneCountInString(s) <= 2 {
		return false
	}
	first, _ := utf8.DecodeRuneInString(s)
	for _, r := range s {
		if r != first {
			return false
		}
	}
	return true
}
