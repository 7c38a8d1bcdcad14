// =============================================================================
// Sales Reconciler - Product Catalog
// =============================================================================
//
// The catalog is the fixed list of products the club sells at a known price,
// plus the display priority used to order the sales summary.
//
// Both are built once from configuration and never modified afterwards, so
// they can be shared by every reconciliation worker without locking.
//
// =============================================================================

package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CATALOG
// =============================================================================

// Catalog maps a product name to its fixed unit price.
type Catalog struct {
	prices map[string]decimal.Decimal
	names  []string
}

// New builds a Catalog from a name -> price map.
// Names are trimmed; an empty name or a negative price is rejected.
func New(prices map[string]decimal.Decimal) (*Catalog, error) {
	c := &Catalog{
		prices: make(map[string]decimal.Decimal, len(prices)),
		names:  make([]string, 0, len(prices)),
	}

	for name, price := range prices {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			return nil, fmt.Errorf("catalog entry with empty product name")
		}
		if price.IsNegative() {
			return nil, fmt.Errorf("catalog entry %q has negative price %s", trimmed, price)
		}
		if _, dup := c.prices[trimmed]; dup {
			return nil, fmt.Errorf("duplicate catalog entry %q", trimmed)
		}
		c.prices[trimmed] = price
		c.names = append(c.names, trimmed)
	}

	sort.Strings(c.names)
	return c, nil
}

// MustNew is like New but panics on error. Intended for tests and defaults.
func MustNew(prices map[string]decimal.Decimal) *Catalog {
	c, err := New(prices)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the price of the product with the given name.
// The name is trimmed before the exact-match lookup.
func (c *Catalog) Lookup(name string) (decimal.Decimal, bool) {
	price, ok := c.prices[strings.TrimSpace(name)]
	return price, ok
}

// Contains reports whether name is a catalog product.
func (c *Catalog) Contains(name string) bool {
	_, ok := c.Lookup(name)
	return ok
}

// Names returns the product names in lexicographic order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Len returns the number of products.
func (c *Catalog) Len() int {
	return len(c.prices)
}

// =============================================================================
// PRIORITY ORDER
// =============================================================================

// Priority is the fixed display order of products in the sales summary.
type Priority struct {
	rank map[string]int
}

// NewPriority builds a Priority from an ordered list of product names.
// Duplicate entries are rejected.
func NewPriority(order []string) (*Priority, error) {
	p := &Priority{rank: make(map[string]int, len(order))}
	for i, name := range order {
		trimmed := strings.TrimSpace(name)
		if _, dup := p.rank[trimmed]; dup {
			return nil, fmt.Errorf("duplicate priority entry %q", trimmed)
		}
		p.rank[trimmed] = i
	}
	return p, nil
}

// Less orders a before b.
// Listed products come first in list order; unlisted products follow,
// sorted lexicographically.
func (p *Priority) Less(a, b string) bool {
	ra, aListed := p.rank[a]
	rb, bListed := p.rank[b]

	switch {
	case aListed && bListed:
		return ra < rb
	case aListed:
		return true
	case bListed:
		return false
	default:
		return a < b
	}
}

// Contains reports whether name is in the priority list.
func (p *Priority) Contains(name string) bool {
	_, ok := p.rank[name]
	return ok
}

// Sort orders names in place using Less.
func (p *Priority) Sort(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		return p.Less(names[i], names[j])
	})
}
