package service

import (
	"context"
	"fmt"
	"strings"

	"order-relay/internal/model"
	"order-relay/internal/repository"

	"github.com/rs/zerolog"
)

const (
	defaultProductLimit = 100
	maxProductLimit     = 500
)

// productService implements ProductService.
type productService struct {
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(productRepo repository.ProductRepository, logger zerolog.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		logger:      logger.With().Str("service", "product").Logger(),
	}
}

// GetAll lists the active catalogue. The category is matched exactly after
// trimming surrounding whitespace.
func (s *productService) GetAll(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	filter.Category = strings.TrimSpace(filter.Category)
	filter.Limit, filter.Offset = clampPage(filter.Limit, filter.Offset, defaultProductLimit, maxProductLimit)

	log := s.logger.With().
		Str("category", filter.Category).
		Int("limit", filter.Limit).
		Int("offset", filter.Offset).
		Logger()

	products, err := s.productRepo.GetAll(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to list products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	log.Debug().Int("count", len(products)).Msg("listed products")
	return products, nil
}

// GetByID retrieves a single active product by ID.
func (s *productService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	if id == "" {
		s.logger.Warn().Msg("product ID is empty")
		return nil, model.ErrProductNotFound
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to get product by ID")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product == nil {
		s.logger.Debug().Str("product_id", id).Msg("product not found")
		return nil, model.ErrProductNotFound
	}

	return product, nil
}

// clampPage applies the default page size, caps it at max and floors offset at zero.
func clampPage(limit, offset, def, max int) (int, int) {
	if limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
