package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/elkhamyyali/ecommerceback/internal/apperr"
	"github.com/elkhamyyali/ecommerceback/internal/models"
)

type CatalogRepo struct {
	DB *gorm.DB
}

type ProductSummary struct {
	ID              uuid.UUID
	Title           string
	ImageCover      string
	RatingsAverage  float64
	RatingsQuantity int
}

type ProductPatch struct {
	Title       *string
	Description *string
	Quantity    *int
	Price       *decimal.Decimal
	ImageCover  *string
}

func (r *CatalogRepo) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, apperr.Storage("get product", err)
	}
	return &product, nil
}

func (r *CatalogRepo) GetProducts(ctx context.Context, offset, limit int) (int64, []models.Product, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		return 0, nil, apperr.Storage("count products", err)
	}

	var items []models.Product
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Order("created_at DESC, id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, apperr.Storage("list products", err)
	}
	return total, items, nil
}

func (r *CatalogRepo) CreateProduct(ctx context.Context, prod *models.Product) error {
	if err := r.DB.WithContext(ctx).Create(prod).Error; err != nil {
		return apperr.Storage("insert product", err)
	}
	return nil
}

func (r *CatalogRepo) PatchProduct(ctx context.Context, id uuid.UUID, patch ProductPatch) (*models.Product, error) {
	prod, err := r.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		prod.Title = *patch.Title
	}
	if patch.Description != nil {
		prod.Description = *patch.Description
	}
	if patch.Quantity != nil {
		prod.Quantity = *patch.Quantity
	}
	if patch.Price != nil {
		prod.Price = *patch.Price
	}
	if patch.ImageCover != nil {
		prod.ImageCover = *patch.ImageCover
	}

	if err := r.DB.WithContext(ctx).Save(prod).Error; err != nil {
		return nil, apperr.Storage("update product", err)
	}
	return prod, nil
}

func (r *CatalogRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return apperr.Storage("delete product", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.Storage("delete product", gorm.ErrRecordNotFound)
	}
	return nil
}

// SearchProducts is the relational fallback used when no search index is configured.
func (r *CatalogRepo) SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error) {
	pattern := "%" + strings.ToLower(q) + "%"
	where := "LOWER(title) LIKE ? OR LOWER(description) LIKE ?"

	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Where(where, pattern, pattern).Count(&total).Error; err != nil {
		return 0, nil, apperr.Storage("count search results", err)
	}

	var items []models.Product
	if err := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where(where, pattern, pattern).
		Order("sold DESC, title ASC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, apperr.Storage("search products", err)
	}
	return total, items, nil
}

// Summaries fetches every requested product in one query. Unknown ids are absent from the map.
func (r *CatalogRepo) Summaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]ProductSummary, error) {
	out := make(map[uuid.UUID]ProductSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []ProductSummary
	if err := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Select("id", "title", "image_cover", "ratings_average", "ratings_quantity").
		Where("id IN ?", ids).
		Scan(&rows).Error; err != nil {
		return nil, apperr.Storage("load product summaries", err)
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

// Prices returns the current price of every requested product. Unknown ids are absent from the map.
func (r *CatalogRepo) Prices(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	out := make(map[uuid.UUID]decimal.Decimal, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []struct {
		ID    uuid.UUID
		Price decimal.Decimal
	}
	if err := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Select("id", "price").
		Where("id IN ?", ids).
		Scan(&rows).Error; err != nil {
		return nil, apperr.Storage("load product prices", err)
	}
	for _, row := range rows {
		out[row.ID] = row.Price
	}
	return out, nil
}
