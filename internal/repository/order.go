package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"marketplace-settlement/internal/model"
)

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *model.Order) error
	CreateSubOrders(ctx context.Context, tx *gorm.DB, subOrders []*model.SubOrder, items []*model.SubOrderItem) error
	FindByID(ctx context.Context, tx *gorm.DB, orderID string) (*model.Order, error)
	FindByIntentRef(ctx context.Context, tx *gorm.DB, intentRef string) (*model.Order, error)
	SetIntentRef(ctx context.Context, orderID, gateway, intentRef string) error
	MarkPaid(ctx context.Context, tx *gorm.DB, orderID string) error
	MarkPaymentFailed(ctx context.Context, orderID string) error
	GetSubOrders(ctx context.Context, tx *gorm.DB, orderID string) ([]*model.SubOrder, error)
	GetSubOrderItems(ctx context.Context, subOrderID string) ([]*model.SubOrderItem, error)
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) Create(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	return tx.WithContext(ctx).Create(order).Error
}

func (r *orderRepoImpl) CreateSubOrders(ctx context.Context, tx *gorm.DB, subOrders []*model.SubOrder, items []*model.SubOrderItem) error {
	if err := tx.WithContext(ctx).Create(&subOrders).Error; err != nil {
		return err
	}
	return tx.WithContext(ctx).Create(&items).Error
}

func (r *orderRepoImpl) FindByID(ctx context.Context, tx *gorm.DB, orderID string) (*model.Order, error) {
	var order model.Order
	err := tx.WithContext(ctx).
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) FindByIntentRef(ctx context.Context, tx *gorm.DB, intentRef string) (*model.Order, error) {
	var order model.Order
	err := tx.WithContext(ctx).
		Where("intent_ref = ?", intentRef).
		First(&order).Error
	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) SetIntentRef(ctx context.Context, orderID, gateway, intentRef string) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"gateway":    gateway,
			"intent_ref": intentRef,
			"updated_at": time.Now(),
		}).Error
}

// MarkPaid transitions the order and its sub-orders out of PENDING_PAYMENT.
// The status guard keeps a duplicate settlement attempt from re-touching a
// paid order.
func (r *orderRepoImpl) MarkPaid(ctx context.Context, tx *gorm.DB, orderID string) error {
	result := tx.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status = ?", orderID, model.OrderPendingPayment).
		Updates(map[string]interface{}{
			"status":     model.OrderPaid,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return tx.WithContext(ctx).Model(&model.SubOrder{}).
		Where("order_id = ?", orderID).
		Updates(map[string]interface{}{
			"status":     model.OrderPaid,
			"updated_at": time.Now(),
		}).Error
}

func (r *orderRepoImpl) MarkPaymentFailed(ctx context.Context, orderID string) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status = ?", orderID, model.OrderPendingPayment).
		Updates(map[string]interface{}{
			"status":     model.OrderPaymentFailed,
			"updated_at": time.Now(),
		}).Error
}

func (r *orderRepoImpl) GetSubOrders(ctx context.Context, tx *gorm.DB, orderID string) ([]*model.SubOrder, error) {
	var subOrders []*model.SubOrder
	err := tx.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at").
		Find(&subOrders).Error
	if err != nil {
		return nil, err
	}

	return subOrders, nil
}

func (r *orderRepoImpl) GetSubOrderItems(ctx context.Context, subOrderID string) ([]*model.SubOrderItem, error) {
	var items []*model.SubOrderItem
	err := r.db.WithContext(ctx).
		Where("sub_order_id = ?", subOrderID).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	return items, nil
}
