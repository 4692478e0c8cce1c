package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Product statuses stored in product_details.status.
const (
	ProductStatusAvailable  = "available"
	ProductStatusOutOfStock = "out_of_stock"
	ProductStatusPreOrder   = "pre_order"
)

// ProductStatuses lists every accepted product status.
var ProductStatuses = []string{ProductStatusAvailable, ProductStatusOutOfStock, ProductStatusPreOrder}

// Product is the catalog row of an item sold by a shop.
type Product struct {
	ID            string    `json:"id"`
	ShopID        string    `json:"shop_id"`
	CategoryID    int       `json:"category_id"`
	SubcategoryID *int      `json:"subcategory_id"`
	Title         string    `json:"title"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ProductDetail extends Product 1:1 with pricing, stock and attributes.
type ProductDetail struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"product_id"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	Quantity        int             `json:"quantity"`
	Status          string          `json:"status"`
	Characteristics Characteristics `json:"characteristics"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ProductPhoto is an uploaded image attached to a product detail.
type ProductPhoto struct {
	ID              string    `json:"id"`
	ProductDetailID string    `json:"product_detail_id"`
	StoragePath     string    `json:"-"`
	ContentType     string    `json:"content_type"`
	Size            int64     `json:"size"`
	IsMain          bool      `json:"is_main"`
	Position        int       `json:"position"`
	URL             string    `json:"url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// ProductView is the merged read model of a product with its detail and photos.
type ProductView struct {
	Product
	Detail ProductDetail  `json:"detail"`
	Photos []ProductPhoto `json:"photos"`
}

// Characteristics are free-form product attributes, e.g. "Матеріал": "бавовна".
// They are stored as a JSONB object.
type Characteristics map[string]string

// Value implements driver.Valuer.
func (c Characteristics) Value() (driver.Value, error) {
	if c == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(c)
}

// Scan implements sql.Scanner.
func (c *Characteristics) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*c = Characteristics{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("characteristics: unsupported type %T", src)
	}
	out := Characteristics{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("characteristics: %w", err)
	}
	*c = out
	return nil
}

// Clone returns a copy that can be modified independently.
func (c Characteristics) Clone() Characteristics {
	out := make(Characteristics, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}
