package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"marketplace-settlement/internal/model"
)

type PaymentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, payment *model.Payment) error
	FindByTransactionID(ctx context.Context, tx *gorm.DB, transactionID string) (*model.Payment, error)
}

type paymentRepoImpl struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepoImpl{
		db: db,
	}
}

func (r *paymentRepoImpl) Create(ctx context.Context, tx *gorm.DB, payment *model.Payment) error {
	return tx.WithContext(ctx).Create(payment).Error
}

// FindByTransactionID returns (nil, nil) when no payment exists for the id;
// the unique index on transaction_id backs the settlement idempotency check.
func (r *paymentRepoImpl) FindByTransactionID(ctx context.Context, tx *gorm.DB, transactionID string) (*model.Payment, error) {
	var payment model.Payment
	err := tx.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &payment, nil
}
