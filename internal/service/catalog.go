package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/elkhamyyali/ecommerceback/internal/apperr"
	"github.com/elkhamyyali/ecommerceback/internal/models"
	"github.com/elkhamyyali/ecommerceback/internal/repo"
	"github.com/elkhamyyali/ecommerceback/internal/search"
	"github.com/elkhamyyali/ecommerceback/internal/transport"
	"github.com/elkhamyyali/ecommerceback/internal/util"
	"github.com/elkhamyyali/ecommerceback/pkg/logging"
)

// ProductIndex is the search backend kept in sync with the catalog.
type ProductIndex interface {
	IndexProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query string, from, size int) (int64, []search.Document, error)
}

type CatalogService struct {
	Repo  *repo.CatalogRepo
	Index ProductIndex
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, notFound(err, "There is no product with id "+id.String())
	}
	return p, nil
}

func (s *CatalogService) GetProducts(ctx context.Context, page, size int) ([]models.Product, transport.ListMeta, error) {
	offset, limit := util.Calculate(page, size)
	total, items, err := s.Repo.GetProducts(ctx, offset, limit)
	if err != nil {
		return nil, transport.ListMeta{}, err
	}
	return items, transport.NewListMeta(max(page, 1), offset, limit, total), nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	if err := transport.Validate(req); err != nil {
		return nil, err
	}
	if req.Price.IsNegative() {
		return nil, apperr.Validation("price must be >= 0")
	}

	p := &models.Product{
		Title:       req.Title,
		Description: req.Description,
		Quantity:    req.Quantity,
		Price:       req.Price,
		ImageCover:  req.ImageCover,
	}
	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	s.reindex(ctx, p)
	return p, nil
}

func (s *CatalogService) PatchProduct(ctx context.Context, id uuid.UUID, req transport.PatchProductRequest) (*models.Product, error) {
	if req.Title != nil && *req.Title == "" {
		return nil, apperr.Validation("product title required")
	}
	if (req.Price != nil && req.Price.IsNegative()) || (req.Quantity != nil && *req.Quantity < 0) {
		return nil, apperr.Validation("price and quantity must be >= 0")
	}

	p, err := s.Repo.PatchProduct(ctx, id, repo.ProductPatch{
		Title:       req.Title,
		Description: req.Description,
		Quantity:    req.Quantity,
		Price:       req.Price,
		ImageCover:  req.ImageCover,
	})
	if err != nil {
		return nil, notFound(err, "There is no product with id "+id.String())
	}
	s.reindex(ctx, p)
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return notFound(err, "There is no product with id "+id.String())
	}
	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("unindex_product_error", "product_id", id, "error", err)
		}
	}
	return nil
}

// Search uses the index when one is configured and falls back to the database otherwise.
func (s *CatalogService) Search(ctx context.Context, q string, page, size int) (int64, []search.Document, error) {
	if q == "" {
		return 0, nil, apperr.Validation("query parameter q required")
	}
	offset, limit := util.Calculate(page, size)

	if s.Index != nil {
		total, docs, err := s.Index.Search(ctx, q, offset, limit)
		if err == nil {
			return total, docs, nil
		}
		logging.FromContext(ctx).Warn("search_index_error", "error", err)
	}

	total, items, err := s.Repo.SearchProducts(ctx, q, offset, limit)
	if err != nil {
		return 0, nil, err
	}
	docs := make([]search.Document, len(items))
	for i := range items {
		docs[i] = search.FromProduct(&items[i])
	}
	return total, docs, nil
}

func (s *CatalogService) reindex(ctx context.Context, p *models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("index_product_error", "product_id", p.ID, "error", err)
	}
}
