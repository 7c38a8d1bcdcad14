// =============================================================================
// Sales Reconciler - Catalog Matcher
// =============================================================================
//
// The matcher turns one description token into a LineItem:
//
//   "2 * Agua 1 lt"  -> name "Agua 1 lt", quantity 2
//   "Snickers"       -> name "Snickers",  quantity 1
//
// and prices it from the catalog when the name is a catalog product.
// Names the catalog does not know come back unpriced; the reconciler may price
// them later from the transaction total.
//
// =============================================================================

package matcher

import (
	"regexp"
	"strings"

	"github.com/bajatenis/sales-reconciler/internal/catalog"
	"github.com/bajatenis/sales-reconciler/internal/tokenizer"
	"github.com/bajatenis/sales-reconciler/internal/types"
	"github.com/shopspring/decimal"
)

// quantityPrefix matches "<number>(.<decimals>)? * <name>".
var quantityPrefix = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*\*\s*(.+)$`)

// ParseToken splits a token into product name and quantity.
// Tokens without a quantity marker get quantity 1 and the whole trimmed token
// as the name. ok is false for blank or placeholder tokens.
func ParseToken(token string) (name string, quantity decimal.Decimal, ok bool) {
	token = strings.TrimSpace(token)
	if tokenizer.IsBlank(token) {
		return "", decimal.Zero, false
	}

	if m := quantityPrefix.FindStringSubmatch(token); m != nil {
		qty, err := decimal.NewFromString(m[1])
		name := strings.TrimSpace(m[2])
		if err == nil && name != "" {
			return name, qty, true
		}
	}

	return token, decimal.NewFromInt(1), true
}

// Match parses a token and looks its name up in the catalog.
// The returned item carries the transaction context; ok is false when the
// token carries no item.
func Match(token string, cat *catalog.Catalog, tx types.Transaction) (types.LineItem, bool) {
	name, qty, ok := ParseToken(token)
	if !ok {
		return types.LineItem{}, false
	}

	item := types.LineItem{
		ProductName:      name,
		Quantity:         qty,
		PaymentMethod:    tx.PaymentMethod,
		TransactionDate:  tx.Date,
		TransactionTotal: tx.Total,
		TransactionRow:   tx.Row,
	}

	if price, found := cat.Lookup(name); found {
		item.Mapped = true
		item = item.WithPrice(price, qty.Mul(price))
	}

	return item, true
}

// Items tokenizes a transaction's description and matches every token.
func Items(tx types.Transaction, cat *catalog.Catalog) []types.LineItem {
	tokens := tokenizer.Tokenize(tx.Description)

	items := make([]types.LineItem, 0, len(tokens))
	for _, token := range tokens {
		if item, ok := Match(token, cat, tx); ok {
			items = append(items, item)
		}
	}
	return items
}
