package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"marketplace-settlement/internal/model"
	"marketplace-settlement/internal/notify"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// cache=shared needs a single connection to keep the memory db alive
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&model.Product{},
		&model.Merchant{},
		&model.Order{},
		&model.SubOrder{},
		&model.SubOrderItem{},
		&model.Payment{},
		&model.PayoutBalance{},
		&model.PayoutTransaction{},
		&model.WebhookEvent{},
	))

	return db
}

type noopNotifier struct{}

func (noopNotifier) PaymentSettled(ctx context.Context, order *model.Order, subOrders []*model.SubOrder) {
}

func (noopNotifier) PayoutRequested(ctx context.Context, txn *model.PayoutTransaction) {}

var _ notify.Notifier = noopNotifier{}
