package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents an orderable item in the catalogue.
type Product struct {
	ID          string              `json:"id" db:"id"`
	Name        string              `json:"name" db:"name"`
	DefaultUnit string              `json:"defaultUnit" db:"default_unit"`
	Category    *string             `json:"category,omitempty" db:"category"`
	Supplier    *string             `json:"supplier,omitempty" db:"supplier"`
	Price       decimal.NullDecimal `json:"price" db:"price"`
	Notes       *string             `json:"notes,omitempty" db:"notes"`
	IsActive    bool                `json:"isActive" db:"is_active"`
	CreatedAt   time.Time           `json:"createdAt" db:"created_at"`
}

// ProductFilter narrows a catalogue listing. An empty Category matches all.
type ProductFilter struct {
	Category string
	Limit    int
	Offset   int
}
