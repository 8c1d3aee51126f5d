// Package splitter partitions a flat cart into per-seller groups with
// authoritative pricing and commission math. Splitting is a pure function of
// the cart, the catalog snapshot and the commission rate.
package splitter

import (
	"context"

	"github.com/shopspring/decimal"

	"marketplace-settlement/internal/apperror"
)

type CartLine struct {
	ProductID string
	Quantity  int32
}

// CatalogItem is the authoritative view of one product. Client-submitted
// prices are never consulted.
type CatalogItem struct {
	ProductID  string
	Title      string
	Price      decimal.Decimal
	MerchantID string
}

type Catalog interface {
	Resolve(ctx context.Context, productIDs []string) (map[string]*CatalogItem, error)
}

type LineItem struct {
	ProductID string
	Title     string
	UnitPrice decimal.Decimal
	Quantity  int32
}

type SellerGroup struct {
	MerchantID   string
	Items        []LineItem
	Subtotal     decimal.Decimal
	Commission   decimal.Decimal
	PayoutAmount decimal.Decimal
}

type Split struct {
	Groups     []SellerGroup
	GrandTotal decimal.Decimal
}

// Compute groups cart lines by seller in encounter order and derives the
// commission math. Per group: subtotal is rounded once, commission is rounded
// from the subtotal, and the payout is the exact remainder so that
// commission + payout == subtotal to the cent. The grand total sums the
// already-rounded subtotals, never the raw lines.
func Compute(ctx context.Context, catalog Catalog, lines []CartLine, rate decimal.Decimal) (*Split, error) {
	if len(lines) == 0 {
		return nil, apperror.Validation("cart is empty")
	}

	productIDs := make([]string, 0, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, apperror.Validation("quantity for product %s must be positive", line.ProductID)
		}
		productIDs = append(productIDs, line.ProductID)
	}

	items, err := catalog.Resolve(ctx, productIDs)
	if err != nil {
		return nil, err
	}

	// Raw per-seller sums, keyed by merchant, encounter order preserved for
	// determinism.
	order := make([]string, 0, len(lines))
	rawTotals := make(map[string]decimal.Decimal)
	groupItems := make(map[string][]LineItem)

	for _, line := range lines {
		item, ok := items[line.ProductID]
		if !ok {
			return nil, &apperror.NotFoundError{Resource: "product", ID: line.ProductID}
		}

		if _, seen := rawTotals[item.MerchantID]; !seen {
			order = append(order, item.MerchantID)
			rawTotals[item.MerchantID] = decimal.Zero
		}

		lineTotal := item.Price.Mul(decimal.NewFromInt32(line.Quantity))
		rawTotals[item.MerchantID] = rawTotals[item.MerchantID].Add(lineTotal)
		groupItems[item.MerchantID] = append(groupItems[item.MerchantID], LineItem{
			ProductID: item.ProductID,
			Title:     item.Title,
			UnitPrice: item.Price,
			Quantity:  line.Quantity,
		})
	}

	split := &Split{
		Groups:     make([]SellerGroup, 0, len(order)),
		GrandTotal: decimal.Zero,
	}

	for _, merchantID := range order {
		subtotal := rawTotals[merchantID].Round(2)
		commission := subtotal.Mul(rate).Round(2)
		payout := subtotal.Sub(commission)

		split.Groups = append(split.Groups, SellerGroup{
			MerchantID:   merchantID,
			Items:        groupItems[merchantID],
			Subtotal:     subtotal,
			Commission:   commission,
			PayoutAmount: payout,
		})
		split.GrandTotal = split.GrandTotal.Add(subtotal)
	}

	return split, nil
}
