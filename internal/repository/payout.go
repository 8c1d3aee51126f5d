package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"marketplace-settlement/internal/model"
)

type PayoutRepository interface {
	// Credit adds to available, creating the balance row on first use.
	Credit(ctx context.Context, tx *gorm.DB, merchantID string, amount decimal.Decimal) error
	GetBalance(ctx context.Context, tx *gorm.DB, merchantID string) (*model.PayoutBalance, error)

	// MoveAvailableToPending performs the overdraw-guarded debit as one
	// conditional update; it reports false when available < amount.
	MoveAvailableToPending(ctx context.Context, tx *gorm.DB, merchantID string, amount decimal.Decimal) (bool, error)
	MovePendingToAvailable(ctx context.Context, tx *gorm.DB, merchantID string, amount decimal.Decimal) (bool, error)
	ReducePending(ctx context.Context, tx *gorm.DB, merchantID string, amount decimal.Decimal) (bool, error)

	CreateTransaction(ctx context.Context, tx *gorm.DB, txn *model.PayoutTransaction) error
	GetTransaction(ctx context.Context, tx *gorm.DB, txnID string) (*model.PayoutTransaction, error)
	// TransitionTransaction flips a payout row from one status to another,
	// guarded so only one caller wins.
	TransitionTransaction(ctx context.Context, tx *gorm.DB, txnID, from, to, externalRef string) (bool, error)
	ListTransactions(ctx context.Context, merchantID string) ([]*model.PayoutTransaction, error)
}

type payoutRepoImpl struct {
	db *gorm.DB
}

func NewPayoutRepository(db *gorm.DB) PayoutRepository {
	return &payoutRepoImpl{
		db: db,
	}
}

func (r *payoutRepoImpl) Credit(ctx context.Context, tx *gorm.DB, merchantID string, amount decimal.Decimal) error {
	balance := &model.PayoutBalance{
		MerchantID: merchantID,
		Available:  amount,
		Pending:    decimal.Zero,
	}

	return tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "merchant_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"available":  gorm.Expr("payout_balances.available + ?", amount),
			"updated_at": time.Now(),
		}),
	}).Create(balance).Error
}

func (r *payoutRepoImpl) GetBalance(ctx context.Context, tx *gorm.DB, merchantID string) (*model.PayoutBalance, error) {
	var balance model.PayoutBalance
	err := tx.WithContext(ctx).
		Where("merchant_id = ?", merchantID).
		First(&balance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.PayoutBalance{
				MerchantID: merchantID,
				Available:  decimal.Zero,
				Pending:    decimal.Zero,
			}, nil
		}
		return nil, err
	}

	return &balance, nil
}

func (r *payoutRepoImpl) MoveAvailableToPending(ctx context.Context, tx *gorm.DB, merchantID string, amount decimal.Decimal) (bool, error) {
	result := tx.WithContext(ctx).Model(&model.PayoutBalance{}).
		Where("merchant_id = ? AND available >= ?", merchantID, amount).
		Updates(map[string]interface{}{
			"available":  gorm.Expr("available - ?", amount),
			"pending":    gorm.Expr("pending + ?", amount),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *payoutRepoImpl) MovePendingToAvailable(ctx context.Context, tx *gorm.DB, merchantID string, amount decimal.Decimal) (bool, error) {
	result := tx.WithContext(ctx).Model(&model.PayoutBalance{}).
		Where("merchant_id = ? AND pending >= ?", merchantID, amount).
		Updates(map[string]interface{}{
			"available":  gorm.Expr("available + ?", amount),
			"pending":    gorm.Expr("pending - ?", amount),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *payoutRepoImpl) ReducePending(ctx context.Context, tx *gorm.DB, merchantID string, amount decimal.Decimal) (bool, error) {
	result := tx.WithContext(ctx).Model(&model.PayoutBalance{}).
		Where("merchant_id = ? AND pending >= ?", merchantID, amount).
		Updates(map[string]interface{}{
			"pending":    gorm.Expr("pending - ?", amount),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *payoutRepoImpl) CreateTransaction(ctx context.Context, tx *gorm.DB, txn *model.PayoutTransaction) error {
	return tx.WithContext(ctx).Create(txn).Error
}

func (r *payoutRepoImpl) GetTransaction(ctx context.Context, tx *gorm.DB, txnID string) (*model.PayoutTransaction, error) {
	var txn model.PayoutTransaction
	err := tx.WithContext(ctx).
		Where("id = ?", txnID).
		First(&txn).Error
	if err != nil {
		return nil, err
	}

	return &txn, nil
}

func (r *payoutRepoImpl) TransitionTransaction(ctx context.Context, tx *gorm.DB, txnID, from, to, externalRef string) (bool, error) {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now(),
	}
	if externalRef != "" {
		updates["external_ref"] = externalRef
	}

	result := tx.WithContext(ctx).Model(&model.PayoutTransaction{}).
		Where("id = ? AND status = ? AND type = ?", txnID, from, model.PayoutTypePayout).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *payoutRepoImpl) ListTransactions(ctx context.Context, merchantID string) ([]*model.PayoutTransaction, error) {
	var txns []*model.PayoutTransaction
	err := r.db.WithContext(ctx).
		Where("merchant_id = ?", merchantID).
		Order("created_at DESC").
		Find(&txns).Error
	if err != nil {
		return nil, err
	}

	return txns, nil
}
