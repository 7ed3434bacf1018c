package models

import "time"

// Product represents a catalog product. Price and DiscountPercent are the
// authoritative pricing source for every checkout; client-supplied prices
// are never trusted.
type Product struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Category        string    `json:"category"`
	Brand           string    `json:"brand"`
	Price           float64   `json:"price"`
	DiscountPercent float64   `json:"discount_percent"`
	Stock           int       `json:"stock"`
	Thumbnail       string    `json:"thumbnail"`
	IsActive        bool      `json:"is_active"`
	IsDeleted       bool      `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// EffectivePrice is the unit price after the catalog discount.
func (p *Product) EffectivePrice() float64 {
	return p.Price * (1 - p.DiscountPercent/100)
}

func (p *Product) IsPurchasable() bool {
	return p.IsActive && !p.IsDeleted
}

type CreateProductRequest struct {
	Title           string  `json:"title" binding:"required,min=2,max=200"`
	Description     string  `json:"description" binding:"max=2000"`
	Category        string  `json:"category" binding:"required,min=2,max=100"`
	Brand           string  `json:"brand" binding:"max=100"`
	Price           float64 `json:"price" binding:"required,gt=0"`
	DiscountPercent float64 `json:"discount_percent" binding:"gte=0,lte=100"`
	Stock           int     `json:"stock" binding:"gte=0"`
	Thumbnail       string  `json:"thumbnail"`
}

func (req *CreateProductRequest) ToProduct() *Product {
	now := time.Now()
	return &Product{
		Title:           req.Title,
		Description:     req.Description,
		Category:        req.Category,
		Brand:           req.Brand,
		Price:           req.Price,
		DiscountPercent: req.DiscountPercent,
		Stock:           req.Stock,
		Thumbnail:       req.Thumbnail,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// ShippingOption is a flat-cost delivery choice.
type ShippingOption struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Cost    float64 `json:"cost"`
	EtaDays int     `json:"eta_days"`
}
