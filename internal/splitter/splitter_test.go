package splitter

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-settlement/internal/apperror"
)

type fakeCatalog struct {
	items map[string]*CatalogItem
	err   error
}

func (c *fakeCatalog) Resolve(ctx context.Context, productIDs []string) (map[string]*CatalogItem, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.items, nil
}

func testCatalog() *fakeCatalog {
	return &fakeCatalog{items: map[string]*CatalogItem{
		"p1": {ProductID: "p1", Title: "Widget", Price: decimal.RequireFromString("10.00"), MerchantID: "M1"},
		"p2": {ProductID: "p2", Title: "Gadget", Price: decimal.RequireFromString("5.00"), MerchantID: "M1"},
		"p3": {ProductID: "p3", Title: "Gizmo", Price: decimal.RequireFromString("20.00"), MerchantID: "M2"},
	}}
}

func rate20() decimal.Decimal {
	return decimal.RequireFromString("0.20")
}

func TestComputeWorkedExample(t *testing.T) {
	split, err := Compute(context.Background(), testCatalog(), []CartLine{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 1},
		{ProductID: "p3", Quantity: 1},
	}, rate20())
	require.NoError(t, err)

	require.Len(t, split.Groups, 2)

	m1 := split.Groups[0]
	assert.Equal(t, "M1", m1.MerchantID)
	assert.Equal(t, "25.00", m1.Subtotal.StringFixed(2))
	assert.Equal(t, "5.00", m1.Commission.StringFixed(2))
	assert.Equal(t, "20.00", m1.PayoutAmount.StringFixed(2))

	m2 := split.Groups[1]
	assert.Equal(t, "M2", m2.MerchantID)
	assert.Equal(t, "20.00", m2.Subtotal.StringFixed(2))
	assert.Equal(t, "4.00", m2.Commission.StringFixed(2))
	assert.Equal(t, "16.00", m2.PayoutAmount.StringFixed(2))

	assert.Equal(t, "45.00", split.GrandTotal.StringFixed(2))
}

func TestComputeExactnessInvariants(t *testing.T) {
	catalog := &fakeCatalog{items: map[string]*CatalogItem{
		"a": {ProductID: "a", Price: decimal.RequireFromString("0.33"), MerchantID: "M1"},
		"b": {ProductID: "b", Price: decimal.RequireFromString("7.77"), MerchantID: "M2"},
		"c": {ProductID: "c", Price: decimal.RequireFromString("19.99"), MerchantID: "M2"},
	}}
	// An awkward rate to force rounding on the commission.
	rate := decimal.RequireFromString("0.1735")

	split, err := Compute(context.Background(), catalog, []CartLine{
		{ProductID: "a", Quantity: 3},
		{ProductID: "b", Quantity: 7},
		{ProductID: "c", Quantity: 1},
	}, rate)
	require.NoError(t, err)

	total := decimal.Zero
	for _, g := range split.Groups {
		// commission + payout == subtotal exactly, to the cent
		assert.True(t, g.Commission.Add(g.PayoutAmount).Equal(g.Subtotal),
			"merchant %s: %s + %s != %s", g.MerchantID,
			g.Commission, g.PayoutAmount, g.Subtotal)
		assert.True(t, g.Subtotal.Equal(g.Subtotal.Round(2)))
		total = total.Add(g.Subtotal)
	}
	assert.True(t, total.Equal(split.GrandTotal))
}

func TestComputeDeterministic(t *testing.T) {
	lines := []CartLine{
		{ProductID: "p3", Quantity: 1},
		{ProductID: "p1", Quantity: 2},
	}

	first, err := Compute(context.Background(), testCatalog(), lines, rate20())
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := Compute(context.Background(), testCatalog(), lines, rate20())
		require.NoError(t, err)
		require.Len(t, again.Groups, len(first.Groups))
		for j := range first.Groups {
			assert.Equal(t, first.Groups[j].MerchantID, again.Groups[j].MerchantID)
			assert.True(t, first.Groups[j].Subtotal.Equal(again.Groups[j].Subtotal))
		}
	}

	// encounter order: p3's merchant was seen first
	assert.Equal(t, "M2", first.Groups[0].MerchantID)
}

func TestComputeEmptyCart(t *testing.T) {
	_, err := Compute(context.Background(), testCatalog(), nil, rate20())

	var verr *apperror.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestComputeNonPositiveQuantity(t *testing.T) {
	_, err := Compute(context.Background(), testCatalog(), []CartLine{
		{ProductID: "p1", Quantity: 0},
	}, rate20())

	var verr *apperror.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestComputeUnknownProduct(t *testing.T) {
	_, err := Compute(context.Background(), testCatalog(), []CartLine{
		{ProductID: "p1", Quantity: 1},
		{ProductID: "nope", Quantity: 1},
	}, rate20())

	var nferr *apperror.NotFoundError
	require.ErrorAs(t, err, &nferr)
	assert.Equal(t, "nope", nferr.ID)
}

func TestComputeCatalogFailure(t *testing.T) {
	boom := errors.New("catalog down")
	_, err := Compute(context.Background(), &fakeCatalog{err: boom}, []CartLine{
		{ProductID: "p1", Quantity: 1},
	}, rate20())

	require.ErrorIs(t, err, boom)
}
