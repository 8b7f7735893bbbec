package repository

import (
	"context"
	"testing"

	"order-relay/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type productSeed struct {
	id, name, unit, category string
	price                    *string
	active                   bool
}

// seedProducts inserts test products into the database.
func seedProducts(t *testing.T, pool *pgxpool.Pool, products []productSeed) {
	t.Helper()
	ctx := context.Background()

	query := `
		INSERT INTO products (id, name, default_unit, category, price, is_active)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5::numeric, $6)
	`

	for _, p := range products {
		_, err := pool.Exec(ctx, query, p.id, p.name, p.unit, p.category, p.price, p.active)
		require.NoError(t, err)
	}
}

func strPtr(s string) *string { return &s }

func TestProductRepository_GetAll(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProductRepository(pool, zerolog.Nop())

	seedProducts(t, pool, []productSeed{
		{"P001", "Milk", "L", "Dairy", strPtr("180.00"), true},
		{"P002", "Eggs", "pcs", "Dairy", nil, true},
		{"P003", "Butter", "box", "Dairy", strPtr("420.50"), true},
		{"P004", "Flour", "kg", "Dry goods", nil, true},
		{"P005", "Old Cream", "L", "Dairy", nil, false},
	})

	tests := []struct {
		name     string
		filter   model.ProductFilter
		expected int
	}{
		{name: "All active products", filter: model.ProductFilter{Limit: 10}, expected: 4},
		{name: "First page", filter: model.ProductFilter{Limit: 2}, expected: 2},
		{name: "Last page", filter: model.ProductFilter{Limit: 2, Offset: 2}, expected: 2},
		{name: "Offset beyond results", filter: model.ProductFilter{Limit: 10, Offset: 10}, expected: 0},
		{name: "Single category", filter: model.ProductFilter{Category: "Dairy", Limit: 10}, expected: 3},
		{name: "Unknown category", filter: model.ProductFilter{Category: "Frozen", Limit: 10}, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, err := repo.GetAll(context.Background(), tt.filter)

			require.NoError(t, err)
			assert.Len(t, products, tt.expected)

			for i := 1; i < len(products); i++ {
				assert.LessOrEqual(t, products[i-1].Name, products[i].Name)
			}
			for _, p := range products {
				assert.True(t, p.IsActive)
				if tt.filter.Category != "" {
					require.NotNil(t, p.Category)
					assert.Equal(t, tt.filter.Category, *p.Category)
				}
				assert.NotEqual(t, "P005", p.ID)
			}
		})
	}
}

func TestProductRepository_GetByID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProductRepository(pool, zerolog.Nop())
	ctx := context.Background()

	seedProducts(t, pool, []productSeed{
		{"P001", "Milk", "L", "Dairy", strPtr("180.00"), true},
		{"P002", "Eggs", "pcs", "", nil, true},
		{"P003", "Old Cream", "L", "Dairy", nil, false},
	})

	t.Run("With price", func(t *testing.T) {
		product, err := repo.GetByID(ctx, "P001")
		require.NoError(t, err)
		require.NotNil(t, product)
		assert.Equal(t, "Milk", product.Name)
		assert.Equal(t, "L", product.DefaultUnit)
		require.NotNil(t, product.Category)
		assert.Equal(t, "Dairy", *product.Category)
		require.True(t, product.Price.Valid)
		assert.Equal(t, "180", product.Price.Decimal.String())
	})

	t.Run("Without price", func(t *testing.T) {
		product, err := repo.GetByID(ctx, "P002")
		require.NoError(t, err)
		require.NotNil(t, product)
		assert.False(t, product.Price.Valid)
		assert.Nil(t, product.Category)
	})

	t.Run("Inactive product is hidden", func(t *testing.T) {
		product, err := repo.GetByID(ctx, "P003")
		require.NoError(t, err)
		assert.Nil(t, product)
	})

	t.Run("Unknown product", func(t *testing.T) {
		product, err := repo.GetByID(ctx, "P999")
		require.NoError(t, err)
		assert.Nil(t, product)
	})
}

func TestProductRepository_ClosedPool(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProductRepository(pool, zerolog.Nop())
	pool.Close()

	_, err := repo.GetAll(context.Background(), model.ProductFilter{Limit: 10})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to query products")
}
