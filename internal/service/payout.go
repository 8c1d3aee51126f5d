package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"marketplace-settlement/internal/apperror"
	"marketplace-settlement/internal/dto"
	"marketplace-settlement/internal/model"
	"marketplace-settlement/internal/notify"
	"marketplace-settlement/internal/repository"
)

type PayoutService interface {
	// Credit runs inside the caller's settlement transaction.
	Credit(ctx context.Context, tx *gorm.DB, merchantID, orderID string, amount decimal.Decimal) error
	RequestPayout(ctx context.Context, merchantID string, amount decimal.Decimal, method string) (*model.PayoutTransaction, error)
	MarkPaid(ctx context.Context, txnID, externalRef string) error
	MarkFailed(ctx context.Context, txnID string) error
	Statement(ctx context.Context, merchantID string) (*dto.PayoutStatement, error)
}

type payoutServiceImpl struct {
	db         *gorm.DB
	payoutRepo repository.PayoutRepository
	notifier   notify.Notifier
}

func NewPayoutService(db *gorm.DB, payoutRepo repository.PayoutRepository, notifier notify.Notifier) PayoutService {
	return &payoutServiceImpl{
		db:         db,
		payoutRepo: payoutRepo,
		notifier:   notifier,
	}
}

func (s *payoutServiceImpl) Credit(ctx context.Context, tx *gorm.DB, merchantID, orderID string, amount decimal.Decimal) error {
	if err := s.payoutRepo.Credit(ctx, tx, merchantID, amount); err != nil {
		return fmt.Errorf("credit balance: %w", err)
	}

	err := s.payoutRepo.CreateTransaction(ctx, tx, &model.PayoutTransaction{
		ID:         uuid.NewString(),
		MerchantID: merchantID,
		Type:       model.PayoutTypeCredit,
		Amount:     amount,
		Status:     model.PayoutPending,
		OrderID:    orderID,
	})
	if err != nil {
		return fmt.Errorf("append credit transaction: %w", err)
	}

	return nil
}

func (s *payoutServiceImpl) RequestPayout(ctx context.Context, merchantID string, amount decimal.Decimal, method string) (*model.PayoutTransaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, apperror.Validation("payout amount must be positive")
	}

	txn := &model.PayoutTransaction{
		ID:         uuid.NewString(),
		MerchantID: merchantID,
		Type:       model.PayoutTypePayout,
		Amount:     amount.Round(2),
		Status:     model.PayoutPending,
		Method:     method,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The balance check and the move are one conditional update, so two
		// racing requests cannot jointly overdraw.
		moved, err := s.payoutRepo.MoveAvailableToPending(ctx, tx, merchantID, txn.Amount)
		if err != nil {
			return fmt.Errorf("move available to pending: %w", err)
		}
		if !moved {
			balance, err := s.payoutRepo.GetBalance(ctx, tx, merchantID)
			if err != nil {
				return fmt.Errorf("get balance: %w", err)
			}
			return &apperror.InsufficientBalanceError{
				MerchantID: merchantID,
				Requested:  txn.Amount,
				Available:  balance.Available,
			}
		}

		return s.payoutRepo.CreateTransaction(ctx, tx, txn)
	})
	if err != nil {
		return nil, err
	}

	go s.notifier.PayoutRequested(context.WithoutCancel(ctx), txn)

	return txn, nil
}

func (s *payoutServiceImpl) MarkPaid(ctx context.Context, txnID, externalRef string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txn, err := s.loadPayoutTransaction(ctx, tx, txnID)
		if err != nil {
			return err
		}

		ok, err := s.payoutRepo.TransitionTransaction(ctx, tx, txnID, model.PayoutPending, model.PayoutPaid, externalRef)
		if err != nil {
			return fmt.Errorf("transition payout: %w", err)
		}
		if !ok {
			return apperror.Validation("payout %s is not pending", txnID)
		}

		reduced, err := s.payoutRepo.ReducePending(ctx, tx, txn.MerchantID, txn.Amount)
		if err != nil {
			return fmt.Errorf("reduce pending: %w", err)
		}
		if !reduced {
			return apperror.Consistency("", "pending balance for merchant %s below paid amount %s",
				txn.MerchantID, txn.Amount.StringFixed(2))
		}

		return nil
	})
}

// MarkFailed reverses the payout: the amount moves back from pending to
// available. Skipping the reversal would leak funds out of the available pool
// permanently.
func (s *payoutServiceImpl) MarkFailed(ctx context.Context, txnID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txn, err := s.loadPayoutTransaction(ctx, tx, txnID)
		if err != nil {
			return err
		}

		ok, err := s.payoutRepo.TransitionTransaction(ctx, tx, txnID, model.PayoutPending, model.PayoutFailed, "")
		if err != nil {
			return fmt.Errorf("transition payout: %w", err)
		}
		if !ok {
			return apperror.Validation("payout %s is not pending", txnID)
		}

		moved, err := s.payoutRepo.MovePendingToAvailable(ctx, tx, txn.MerchantID, txn.Amount)
		if err != nil {
			return fmt.Errorf("reverse pending: %w", err)
		}
		if !moved {
			return apperror.Consistency("", "pending balance for merchant %s below failed amount %s",
				txn.MerchantID, txn.Amount.StringFixed(2))
		}

		return nil
	})
}

func (s *payoutServiceImpl) loadPayoutTransaction(ctx context.Context, tx *gorm.DB, txnID string) (*model.PayoutTransaction, error) {
	txn, err := s.payoutRepo.GetTransaction(ctx, tx, txnID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperror.NotFoundError{Resource: "payout transaction", ID: txnID}
		}
		return nil, fmt.Errorf("get payout transaction: %w", err)
	}
	if txn.Type != model.PayoutTypePayout {
		return nil, apperror.Validation("transaction %s is not a payout", txnID)
	}

	return txn, nil
}

func (s *payoutServiceImpl) Statement(ctx context.Context, merchantID string) (*dto.PayoutStatement, error) {
	balance, err := s.payoutRepo.GetBalance(ctx, s.db, merchantID)
	if err != nil {
		return nil, fmt.Errorf("get balance: %w", err)
	}

	txns, err := s.payoutRepo.ListTransactions(ctx, merchantID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	totalEarnings := decimal.Zero
	totalPaidOut := decimal.Zero
	views := make([]dto.PayoutTransactionView, 0, len(txns))
	for _, txn := range txns {
		switch {
		case txn.Type == model.PayoutTypeCredit:
			totalEarnings = totalEarnings.Add(txn.Amount)
		case txn.Type == model.PayoutTypePayout && txn.Status == model.PayoutPaid:
			totalPaidOut = totalPaidOut.Add(txn.Amount)
		}

		views = append(views, dto.PayoutTransactionView{
			ID:          txn.ID,
			Type:        txn.Type,
			Amount:      txn.Amount.StringFixed(2),
			Status:      txn.Status,
			Method:      txn.Method,
			ExternalRef: txn.ExternalRef,
			OrderID:     txn.OrderID,
			CreatedAt:   txn.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}

	return &dto.PayoutStatement{
		Balance: dto.BalanceView{
			Available: balance.Available.StringFixed(2),
			Pending:   balance.Pending.StringFixed(2),
			Total:     balance.Available.Add(balance.Pending).StringFixed(2),
		},
		Summary: dto.PayoutSummary{
			TotalEarnings:   totalEarnings.StringFixed(2),
			PendingEarnings: balance.Pending.StringFixed(2),
			TotalPaidOut:    totalPaidOut.StringFixed(2),
		},
		Transactions: views,
	}, nil
}
