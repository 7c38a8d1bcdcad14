// =============================================================================
// Sales Reconciler - Residual Reconciliation
// =============================================================================
//
// The point of sale records a trustworthy total per receipt but free-text item
// names. When exactly one item on a receipt is not in the catalog, its price is
// whatever the catalog items do not account for:
//
//   residual   = transaction total - sum(quantity * unit price of priced items)
//   unit price = residual / quantity
//
// RESOLUTION OUTCOMES:
//   - Resolved                       : one unpriced item with quantity > 0, priced
//   - NothingToResolve               : every item already priced
//   - UnresolvedMultiple             : two or more unpriced items, left as is
//   - UnresolvedNonPositiveQuantity  : the single unpriced item has quantity <= 0
//
// Unresolved receipts keep every item, the unpriced ones with no price. Their
// items may not add up to the recorded total; the report shows them with a
// blank price.
//
// =============================================================================

package reconciler

import (
	"context"
	"fmt"

	"github.com/bajatenis/sales-reconciler/internal/catalog"
	"github.com/bajatenis/sales-reconciler/internal/matcher"
	"github.com/bajatenis/sales-reconciler/internal/types"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// =============================================================================
// RESULT TYPES
// =============================================================================

// Status describes what reconciliation did with a transaction.
type Status int

const (
	NothingToResolve Status = iota
	Resolved
	UnresolvedMultiple
	UnresolvedNonPositiveQuantity
)

// String returns a log-friendly name.
func (s Status) String() string {
	switch s {
	case NothingToResolve:
		return "nothing_to_resolve"
	case Resolved:
		return "resolved"
	case UnresolvedMultiple:
		return "unresolved_multiple_unknown_items"
	case UnresolvedNonPositiveQuantity:
		return "unresolved_non_positive_quantity"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Unresolved reports whether the transaction still has unpriced items.
func (s Status) Unresolved() bool {
	return s == UnresolvedMultiple || s == UnresolvedNonPositiveQuantity
}

// ReconciledTransaction is a transaction's final item set.
type ReconciledTransaction struct {
	Transaction types.Transaction

	// Items holds the priced items followed by the reconciled or unresolved
	// ones.
	Items []types.LineItem

	Status Status

	// MappedSubtotal is the sum of the extended prices of the items the
	// catalog priced.
	MappedSubtotal decimal.Decimal
}

// UnpricedNames returns the names of the items left without a price.
func (r ReconciledTransaction) UnpricedNames() []string {
	var names []string
	for _, item := range r.Items {
		if !item.Priced() {
			names = append(names, item.ProductName)
		}
	}
	return names
}

// =============================================================================
// RECONCILIATION
// =============================================================================

// Resolve runs the residual reconciliation over one transaction's items.
// items is not modified.
func Resolve(tx types.Transaction, items []types.LineItem) ReconciledTransaction {
	var priced, unpriced []types.LineItem
	subtotal := decimal.Zero

	for _, item := range items {
		if item.Priced() {
			priced = append(priced, item)
			subtotal = subtotal.Add(item.LineTotal.Decimal)
		} else {
			unpriced = append(unpriced, item)
		}
	}

	result := ReconciledTransaction{
		Transaction:    tx,
		MappedSubtotal: subtotal,
	}

	switch {
	case len(unpriced) == 0:
		result.Items = priced
		result.Status = NothingToResolve

	case len(unpriced) == 1 && unpriced[0].Quantity.IsPositive():
		item := unpriced[0]
		residual := tx.Total.Sub(subtotal)
		unitPrice := residual.Div(item.Quantity)
		result.Items = append(priced, item.WithPrice(unitPrice, residual))
		result.Status = Resolved

	default:
		result.Items = append(priced, unpriced...)
		if len(unpriced) == 1 {
			result.Status = UnresolvedNonPositiveQuantity
		} else {
			result.Status = UnresolvedMultiple
		}
	}

	if result.Items == nil {
		result.Items = []types.LineItem{}
	}
	return result
}

// Reconcile tokenizes, matches and resolves a single transaction.
func Reconcile(tx types.Transaction, cat *catalog.Catalog) ReconciledTransaction {
	return Resolve(tx, matcher.Items(tx, cat))
}

// ReconcileAll reconciles a batch, sharding transactions over at most workers
// goroutines. Results keep the input order. workers <= 0 means one worker.
func ReconcileAll(ctx context.Context, txs []types.Transaction, cat *catalog.Catalog, workers int) ([]ReconciledTransaction, error) {
	if workers <= 0 {
		workers = 1
	}

	results := make([]ReconciledTransaction, len(txs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range txs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = Reconcile(txs[i], cat)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("reconciliation interrupted: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("reconciliation interrupted: %w", err)
	}

	return results, nil
}

// Flatten concatenates the items of every reconciled transaction in order.
func Flatten(reconciled []ReconciledTransaction) []types.LineItem {
	n := 0
	for _, r := range reconciled {
		n += len(r.Items)
	}

	items := make([]types.LineItem, 0, n)
	for _, r := range reconciled {
		items = append(items, r.Items...)
	}
	return items
}
