package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"marketplace-settlement/internal/model"
)

type ProductRepository interface {
	Seed(ctx context.Context) error
	FindMany(ctx context.Context, productIDs []string) ([]*model.Product, error)
	List(ctx context.Context) ([]*model.Product, error)
}

type productRepoImpl struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepoImpl{
		db: db,
	}
}

func (r *productRepoImpl) Seed(ctx context.Context) error {
	merchants := []model.Merchant{
		{ID: "merchant-books", Name: "Bookworm Supply"},
		{ID: "merchant-gear", Name: "Trailhead Gear"},
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&merchants).Error; err != nil {
		return err
	}

	products := []model.Product{
		{ID: "book_go", Name: "The Go Programming Language", Price: decimal.RequireFromString("39.90"), Currency: "USD", MerchantID: "merchant-books"},
		{ID: "book_sql", Name: "SQL Performance Explained", Price: decimal.RequireFromString("29.50"), Currency: "USD", MerchantID: "merchant-books"},
		{ID: "gear_lamp", Name: "Trail Headlamp", Price: decimal.RequireFromString("24.99"), Currency: "USD", MerchantID: "merchant-gear"},
		{ID: "gear_flask", Name: "Insulated Flask", Price: decimal.RequireFromString("19.00"), Currency: "USD", MerchantID: "merchant-gear"},
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&products).Error
}

func (r *productRepoImpl) FindMany(ctx context.Context, productIDs []string) ([]*model.Product, error) {
	var products []*model.Product
	err := r.db.WithContext(ctx).
		Where("id IN ?", productIDs).
		Find(&products).
		Error

	if err != nil {
		return nil, err
	}

	return products, nil
}

func (r *productRepoImpl) List(ctx context.Context) ([]*model.Product, error) {
	var products []*model.Product
	err := r.db.WithContext(ctx).Find(&products).Error
	if err != nil {
		return nil, err
	}

	return products, nil
}
