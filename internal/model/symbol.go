package model

import (
	"fmt"
	"strings"
)

// MaxSymbolLen bounds symbol length after sanitizing.
const MaxSymbolLen = 10

func allowedSymbolRune(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' || r == '-'
}

// SanitizeSymbol drops every character outside [A-Za-z0-9.-] and uppercases the rest.
// An empty or over-long result is ErrInvalidSymbol.
func SanitizeSymbol(symbol string) (string, error) {
	var b strings.Builder
	for _, r := range symbol {
		if allowedSymbolRune(r) {
			b.WriteRune(r)
		}
	}
	clean := strings.ToUpper(b.String())
	if clean == "" || len(clean) > MaxSymbolLen {
		return "", fmt.Errorf("%w: %q", ErrInvalidSymbol, symbol)
	}
	return clean, nil
}

// ValidateSymbol rejects symbols that are empty, longer than MaxSymbolLen,
// or contain characters outside [A-Za-z0-9.-].
func ValidateSymbol(symbol string) error {
	if symbol == "" || len(symbol) > MaxSymbolLen {
		return fmt.Errorf("%w: %q", ErrInvalidSymbol, symbol)
	}
	for _, r := range symbol {
		if !allowedSymbolRune(r) {
			return fmt.Errorf("%w: %q", ErrInvalidSymbol, symbol)
		}
	}
	return nil
}
