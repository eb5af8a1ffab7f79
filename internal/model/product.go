package model

import (
	"time"

	"github.com/google/uuid"
)

// Product is a catalogue entry. Price is in centavos.
type Product struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Slug      string    `json:"slug" db:"slug"`
	SKU       *string   `json:"sku,omitempty" db:"sku"`
	ImageURL  *string   `json:"imageUrl,omitempty" db:"image_url"`
	Price     int64     `json:"price" db:"price"`
	Stock     int       `json:"stock" db:"stock"`
	IsActive  bool      `json:"isActive" db:"is_active"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
