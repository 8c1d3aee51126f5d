// Package notify is the fire-and-forget notification collaborator. Delivery
// failures are logged and never block or roll back settlement.
package notify

import (
	"context"

	"github.com/labstack/gommon/log"

	"marketplace-settlement/internal/model"
)

type Notifier interface {
	PaymentSettled(ctx context.Context, order *model.Order, subOrders []*model.SubOrder)
	PayoutRequested(ctx context.Context, txn *model.PayoutTransaction)
}

type logNotifier struct {
	logger *log.Logger
}

func NewLogNotifier(logger *log.Logger) Notifier {
	return &logNotifier{logger: logger}
}

func (n *logNotifier) PaymentSettled(ctx context.Context, order *model.Order, subOrders []*model.SubOrder) {
	n.logger.Infof("notify buyer %s: order %s settled for %s %s",
		order.CustomerID, order.ID, order.GrandTotal.StringFixed(2), order.Currency)
	for _, so := range subOrders {
		n.logger.Infof("notify merchant %s: credited %s for order %s",
			so.MerchantID, so.PayoutAmount.StringFixed(2), order.ID)
	}
}

func (n *logNotifier) PayoutRequested(ctx context.Context, txn *model.PayoutTransaction) {
	n.logger.Infof("notify merchant %s: payout %s requested for %s",
		txn.MerchantID, txn.ID, txn.Amount.StringFixed(2))
}
