package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"marketplace-settlement/internal/apperror"
	"marketplace-settlement/internal/model"
	"marketplace-settlement/internal/repository"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newPayoutService(t *testing.T) (PayoutService, repository.PayoutRepository, *gorm.DB) {
	db := testDB(t)
	repo := repository.NewPayoutRepository(db)
	return NewPayoutService(db, repo, noopNotifier{}), repo, db
}

func credit(t *testing.T, svc PayoutService, db *gorm.DB, merchantID, amount string) {
	t.Helper()
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return svc.Credit(context.Background(), tx, merchantID, "order-1", dec(amount))
	}))
}

func requireBalance(t *testing.T, repo repository.PayoutRepository, db *gorm.DB, merchantID, available, pending string) {
	t.Helper()
	balance, err := repo.GetBalance(context.Background(), db, merchantID)
	require.NoError(t, err)
	assert.Equal(t, available, balance.Available.StringFixed(2), "available")
	assert.Equal(t, pending, balance.Pending.StringFixed(2), "pending")
}

func TestCreditCreatesBalanceLazily(t *testing.T) {
	svc, repo, db := newPayoutService(t)

	credit(t, svc, db, "M1", "12.50")
	requireBalance(t, repo, db, "M1", "12.50", "0.00")

	credit(t, svc, db, "M1", "7.50")
	requireBalance(t, repo, db, "M1", "20.00", "0.00")

	txns, err := repo.ListTransactions(context.Background(), "M1")
	require.NoError(t, err)
	require.Len(t, txns, 2)
	for _, txn := range txns {
		assert.Equal(t, model.PayoutTypeCredit, txn.Type)
		assert.Equal(t, model.PayoutPending, txn.Status)
		assert.Equal(t, "order-1", txn.OrderID)
	}
}

func TestRequestPayoutMovesAvailableToPending(t *testing.T) {
	svc, repo, db := newPayoutService(t)
	credit(t, svc, db, "M1", "50.00")

	txn, err := svc.RequestPayout(context.Background(), "M1", dec("30.00"), "bank_transfer")
	require.NoError(t, err)

	assert.Equal(t, model.PayoutPending, txn.Status)
	assert.Equal(t, model.PayoutTypePayout, txn.Type)
	assert.Equal(t, "30.00", txn.Amount.StringFixed(2))
	requireBalance(t, repo, db, "M1", "20.00", "30.00")
}

func TestRequestPayoutInsufficientBalance(t *testing.T) {
	svc, repo, db := newPayoutService(t)
	credit(t, svc, db, "M1", "20.00")

	_, err := svc.RequestPayout(context.Background(), "M1", dec("25.00"), "bank_transfer")

	var berr *apperror.InsufficientBalanceError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, "20.00", berr.Available.StringFixed(2))

	// a rejected request leaves balances unchanged
	requireBalance(t, repo, db, "M1", "20.00", "0.00")

	txns, err := repo.ListTransactions(context.Background(), "M1")
	require.NoError(t, err)
	for _, txn := range txns {
		assert.NotEqual(t, model.PayoutTypePayout, txn.Type)
	}
}

func TestRequestPayoutUnknownMerchant(t *testing.T) {
	svc, _, _ := newPayoutService(t)

	_, err := svc.RequestPayout(context.Background(), "ghost", dec("1.00"), "bank_transfer")

	var berr *apperror.InsufficientBalanceError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, "0.00", berr.Available.StringFixed(2))
}

func TestRequestPayoutRejectsNonPositiveAmount(t *testing.T) {
	svc, _, db := newPayoutService(t)
	credit(t, svc, db, "M1", "20.00")

	_, err := svc.RequestPayout(context.Background(), "M1", dec("0"), "bank_transfer")

	var verr *apperror.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestSequentialPayoutsCannotOverdraw(t *testing.T) {
	svc, repo, db := newPayoutService(t)
	credit(t, svc, db, "M1", "30.00")

	_, err := svc.RequestPayout(context.Background(), "M1", dec("20.00"), "bank_transfer")
	require.NoError(t, err)

	_, err = svc.RequestPayout(context.Background(), "M1", dec("20.00"), "bank_transfer")
	var berr *apperror.InsufficientBalanceError
	require.ErrorAs(t, err, &berr)

	requireBalance(t, repo, db, "M1", "10.00", "20.00")
}

func TestMarkPaidFinalizesPayout(t *testing.T) {
	svc, repo, db := newPayoutService(t)
	credit(t, svc, db, "M1", "50.00")

	txn, err := svc.RequestPayout(context.Background(), "M1", dec("30.00"), "bank_transfer")
	require.NoError(t, err)

	require.NoError(t, svc.MarkPaid(context.Background(), txn.ID, "wire-123"))
	requireBalance(t, repo, db, "M1", "20.00", "0.00")

	stored, err := repo.GetTransaction(context.Background(), db, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PayoutPaid, stored.Status)
	assert.Equal(t, "wire-123", stored.ExternalRef)

	// a second transition is rejected
	err = svc.MarkPaid(context.Background(), txn.ID, "wire-456")
	var verr *apperror.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestMarkFailedReversesPendingToAvailable(t *testing.T) {
	svc, repo, db := newPayoutService(t)

	// available=5.00 after requesting a 10.00 payout from 15.00
	credit(t, svc, db, "M1", "15.00")
	txn, err := svc.RequestPayout(context.Background(), "M1", dec("10.00"), "bank_transfer")
	require.NoError(t, err)
	requireBalance(t, repo, db, "M1", "5.00", "10.00")

	require.NoError(t, svc.MarkFailed(context.Background(), txn.ID))

	// the failed amount is back in the available pool
	requireBalance(t, repo, db, "M1", "15.00", "0.00")

	stored, err := repo.GetTransaction(context.Background(), db, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PayoutFailed, stored.Status)
}

func TestMarkPaidRejectsCreditRows(t *testing.T) {
	svc, repo, db := newPayoutService(t)
	credit(t, svc, db, "M1", "15.00")

	txns, err := repo.ListTransactions(context.Background(), "M1")
	require.NoError(t, err)
	require.Len(t, txns, 1)

	err = svc.MarkPaid(context.Background(), txns[0].ID, "")
	var verr *apperror.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestMarkPaidUnknownTransaction(t *testing.T) {
	svc, _, _ := newPayoutService(t)

	err := svc.MarkPaid(context.Background(), "missing", "")
	var nferr *apperror.NotFoundError
	require.ErrorAs(t, err, &nferr)
}

func TestStatementSummary(t *testing.T) {
	svc, _, db := newPayoutService(t)
	credit(t, svc, db, "M1", "40.00")
	credit(t, svc, db, "M1", "10.00")

	txn, err := svc.RequestPayout(context.Background(), "M1", dec("25.00"), "bank_transfer")
	require.NoError(t, err)
	require.NoError(t, svc.MarkPaid(context.Background(), txn.ID, "wire-1"))

	_, err = svc.RequestPayout(context.Background(), "M1", dec("5.00"), "bank_transfer")
	require.NoError(t, err)

	statement, err := svc.Statement(context.Background(), "M1")
	require.NoError(t, err)

	assert.Equal(t, "20.00", statement.Balance.Available)
	assert.Equal(t, "5.00", statement.Balance.Pending)
	assert.Equal(t, "25.00", statement.Balance.Total)
	assert.Equal(t, "50.00", statement.Summary.TotalEarnings)
	assert.Equal(t, "5.00", statement.Summary.PendingEarnings)
	assert.Equal(t, "25.00", statement.Summary.TotalPaidOut)
	assert.Len(t, statement.Transactions, 4)
}
