package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product is an inventory item.
type Product struct {
	ID           uuid.UUID `json:"id"`
	Nome         string    `json:"nome"`
	Preco        float64   `json:"preco"`
	Quantidade   int       `json:"quantidade"`
	ImageKey     string    `json:"-"`
	ImageURL     string    `json:"image_url"`
	ThumbnailKey string    `json:"-"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateProductParams contains the parameters for a new product.
// Image is optional; when present it is uploaded before the row is written.
type CreateProductParams struct {
	Nome       string
	Preco      float64
	Quantidade int
	ImageURL   string // Used only when no Image upload is given
	Image      *ImageUpload
}

// UpdateProductParams contains the editable fields of a product.
type UpdateProductParams struct {
	ID         uuid.UUID
	Nome       string
	Preco      float64
	Quantidade int
	ImageURL   string
	Image      *ImageUpload
}

// ProductSummary aggregates the product table for the dashboard.
type ProductSummary struct {
	Count      int64   `json:"count"`
	Unidades   int64   `json:"unidades"`
	ValorTotal float64 `json:"valor_total"`
}
