// Package input cleans and validates user-entered amounts.
package input

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rovshanmuradov/token-swap/internal/numeric"
)

// Separator is the only decimal separator accepted in amounts.
const Separator = '.'

// ErrValidationFailed is reported when an amount is not a non-negative number.
var ErrValidationFailed = errors.New("please enter a valid number")

// Sanitize keeps digits and the first decimal separator. Digits after
// any further separators are appended to the fractional part, so
// "1.2.3" becomes "1.23".
func Sanitize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	seenSep := false
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == Separator && !seenSep:
			seenSep = true
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidateAmount reports whether text is a finite decimal >= 0.
// The empty string is invalid.
func ValidateAmount(e *numeric.Engine, text string) error {
	if text == "" {
		return fmt.Errorf("%w: empty amount", ErrValidationFailed)
	}
	d, err := e.Parse(text)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	if d.IsNegative() {
		return fmt.Errorf("%w: negative amount %s", ErrValidationFailed, text)
	}
	return nil
}

// IsValidAmount is the boolean form of ValidateAmount.
func IsValidAmount(e *numeric.Engine, text string) bool {
	return ValidateAmount(e, text) == nil
}

var editingKeys = map[string]struct{}{
	"backspace": {},
	"delete":    {},
	"tab":       {},
	"esc":       {},
	"enter":     {},
	"home":      {},
	"end":       {},
	"left":      {},
	"right":     {},
	"ctrl+a":    {},
	"ctrl+c":    {},
	"ctrl+v":    {},
	"ctrl+x":    {},
	"ctrl+z":    {},
}

// AllowKey filters keystrokes for an amount field. key uses terminal key
// names ("backspace", "ctrl+v", "7", "."). Editing, navigation and
// clipboard keys pass, as do digits; the separator passes only while
// current has none.
func AllowKey(key, current string) bool {
	if _, ok := editingKeys[key]; ok {
		return true
	}
	if len(key) != 1 {
		return false
	}
	c := key[0]
	if c >= '0' && c <= '9' {
		return true
	}
	return c == Separator && !strings.ContainsRune(current, Separator)
}
