package domain

import "time"

// Product is a catalog entry. Price and OriginalPrice are whole IDR units.
type Product struct {
	ID              string          `json:"id"`
	Slug            string          `json:"slug,omitempty"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Price           int64           `json:"price"`
	OriginalPrice   *int64          `json:"originalPrice,omitempty"`
	Stock           int             `json:"stock"`
	ImageURL        string          `json:"imageUrl,omitempty"`
	Category        string          `json:"category,omitempty"`
	Brand           string          `json:"brand,omitempty"`
	Featured        bool            `json:"featured"`
	RelatedProducts []string        `json:"relatedProducts,omitempty"`
	Specifications  []Specification `json:"specifications,omitempty"`
	Variants        []Variant       `json:"variants,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// InStock reports whether at least one unit is available.
func (p Product) InStock() bool {
	return p.Stock > 0
}

type Specification struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Variant struct {
	Name       string `json:"name"`
	SKU        string `json:"sku,omitempty"`
	PriceDelta int64  `json:"priceDelta"`
	Stock      int    `json:"stock"`
}

// ProductFilter narrows catalog listings. Zero values match everything.
type ProductFilter struct {
	Category     string
	Search       string
	FeaturedOnly bool
}
