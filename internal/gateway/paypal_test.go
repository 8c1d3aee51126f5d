package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-settlement/internal/model"
)

func TestPaypalStatusCaptured(t *testing.T) {
	st, err := paypalStatus(&model.PaypalOrder{
		ID:     "ORD-1",
		Status: "COMPLETED",
		PurchaseUnits: []model.PaypalPurchaseUnit{{
			Amount: model.PaypalAmount{Currency: "USD", Value: "45.00"},
			Payments: model.PaypalPayments{Captures: []model.PaypalCapture{{
				ID:     "CAP-1",
				Status: "COMPLETED",
				Amount: model.PaypalAmount{Currency: "USD", Value: "45.00"},
			}}},
		}},
	})
	require.NoError(t, err)

	assert.True(t, st.Succeeded)
	assert.Equal(t, "CAP-1", st.TransactionID)
	assert.Equal(t, "45.00", st.Amount.StringFixed(2))
	assert.Equal(t, "USD", st.Currency)
}

func TestPaypalStatusApprovedNotCaptured(t *testing.T) {
	st, err := paypalStatus(&model.PaypalOrder{
		ID:     "ORD-1",
		Status: "APPROVED",
		PurchaseUnits: []model.PaypalPurchaseUnit{{
			Amount: model.PaypalAmount{Currency: "USD", Value: "45.00"},
		}},
	})
	require.NoError(t, err)

	// approval without capture never counts as success
	assert.False(t, st.Succeeded)
	assert.Equal(t, "APPROVED", st.State)
	assert.Empty(t, st.TransactionID)
}

func TestPaypalStatusPendingCapture(t *testing.T) {
	st, err := paypalStatus(&model.PaypalOrder{
		ID:     "ORD-1",
		Status: "COMPLETED",
		PurchaseUnits: []model.PaypalPurchaseUnit{{
			Amount: model.PaypalAmount{Currency: "USD", Value: "45.00"},
			Payments: model.PaypalPayments{Captures: []model.PaypalCapture{{
				ID:     "CAP-1",
				Status: "PENDING",
				Amount: model.PaypalAmount{Currency: "USD", Value: "45.00"},
			}}},
		}},
	})
	require.NoError(t, err)

	assert.False(t, st.Succeeded)
}

func TestPaypalStatusNoPurchaseUnits(t *testing.T) {
	_, err := paypalStatus(&model.PaypalOrder{ID: "ORD-1", Status: "CREATED"})
	require.Error(t, err)
}
