package service

import (
	"context"

	"marketplace-settlement/internal/repository"
	"marketplace-settlement/internal/splitter"
)

// dbCatalog adapts the product repository to the splitter's catalog view.
type dbCatalog struct {
	productRepo repository.ProductRepository
}

func NewCatalog(productRepo repository.ProductRepository) splitter.Catalog {
	return &dbCatalog{productRepo: productRepo}
}

func (c *dbCatalog) Resolve(ctx context.Context, productIDs []string) (map[string]*splitter.CatalogItem, error) {
	products, err := c.productRepo.FindMany(ctx, productIDs)
	if err != nil {
		return nil, err
	}

	items := make(map[string]*splitter.CatalogItem, len(products))
	for _, p := range products {
		items[p.ID] = &splitter.CatalogItem{
			ProductID:  p.ID,
			Title:      p.Name,
			Price:      p.Price,
			MerchantID: p.MerchantID,
		}
	}

	return items, nil
}
