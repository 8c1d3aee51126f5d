package gateway

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinorUnits(t *testing.T) {
	cases := []struct {
		amount string
		want   int64
	}{
		{"45.00", 4500},
		{"0.01", 1},
		{"19.99", 1999},
		{"100", 10000},
		{"0.105", 11}, // round half up at the boundary
	}

	for _, tc := range cases {
		got := MinorUnits(decimal.RequireFromString(tc.amount))
		assert.Equal(t, tc.want, got, "amount %s", tc.amount)
	}
}

func TestFromMinorUnitsRoundTrip(t *testing.T) {
	for _, cents := range []int64{0, 1, 99, 4500, 123456789} {
		back := MinorUnits(FromMinorUnits(cents))
		assert.Equal(t, cents, back)
	}
}

func TestIdempotencyKeyDeterministic(t *testing.T) {
	a := IdempotencyKey("cust-1", "USD", map[string]int32{"p1": 2, "p2": 1})
	b := IdempotencyKey("cust-1", "USD", map[string]int32{"p2": 1, "p1": 2})

	// map iteration order must not leak into the key
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestIdempotencyKeyDistinguishesAttempts(t *testing.T) {
	base := IdempotencyKey("cust-1", "USD", map[string]int32{"p1": 2})

	assert.NotEqual(t, base, IdempotencyKey("cust-2", "USD", map[string]int32{"p1": 2}))
	assert.NotEqual(t, base, IdempotencyKey("cust-1", "USD", map[string]int32{"p1": 3}))
	assert.NotEqual(t, base, IdempotencyKey("cust-1", "EUR", map[string]int32{"p1": 2}))
}

func TestParseKind(t *testing.T) {
	kind, err := ParseKind("Stripe")
	require.NoError(t, err)
	assert.Equal(t, KindStripe, kind)

	kind, err = ParseKind("paypal")
	require.NoError(t, err)
	assert.Equal(t, KindPaypal, kind)

	_, err = ParseKind("cheque")
	require.Error(t, err)
}
