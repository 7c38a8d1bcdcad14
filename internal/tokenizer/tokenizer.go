// Package tokenizer splits a receipt description into item tokens.
//
// A description is a comma separated list of items, each optionally prefixed
// with a quantity marker written either as "N x name" or "N * name":
//
//	"2 x Agua 1 lt, Snickers, 1.5 X Renta de Cancha"
//	-> ["2 * Agua 1 lt", "Snickers", "1.5 * Renta de Cancha"]
//
// Tokenizing never fails; malformed input just yields fewer or odd tokens,
// which the matcher later reports as unmapped items.
package tokenizer

import (
	"regexp"
	"strings"
)

// Placeholder is the literal exported by the point of sale for an empty cell.
const Placeholder = "None"

// quantityMarker matches "<number> x " with any case and spacing.
var quantityMarker = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*x\s+`)

// Normalize rewrites every "<number> x <name>" to "<number> * <name>".
func Normalize(description string) string {
	return quantityMarker.ReplaceAllString(description, "$1 * ")
}

// Tokenize normalizes the quantity notation, splits on commas and drops empty
// and placeholder tokens. Token order follows the description.
func Tokenize(description string) []string {
	parts := strings.Split(Normalize(description), ",")

	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		token := strings.TrimSpace(part)
		if IsBlank(token) {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}

// IsBlank reports whether a trimmed token carries no item.
func IsBlank(token string) bool {
	return token == "" || token == Placeholder
}
