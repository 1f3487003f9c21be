package models

import "time"

// Product is a catalog entry. Price and Cost are whole Rupiah.
type Product struct {
	ID            int64     `json:"id"`
	SKU           string    `json:"sku"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Category      string    `json:"category,omitempty"`
	Price         int64     `json:"price"`
	Cost          int64     `json:"cost"`
	StockQuantity int       `json:"stock_quantity"`
	MinStockLevel int       `json:"min_stock_level"`
	MaxStockLevel int       `json:"max_stock_level"`
	Supplier      string    `json:"supplier,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// StockStatus classifies the product stock against its min level.
func (p *Product) StockStatus() string {
	switch {
	case p.StockQuantity <= 0:
		return "out_of_stock"
	case p.StockQuantity <= p.MinStockLevel:
		return "low_stock"
	default:
		return "in_stock"
	}
}

type Customer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Company   string    `json:"company,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type User struct {
	ID        int64      `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email,omitempty"`
	Role      string     `json:"role"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

type ProductListFilter struct {
	Category string
	Search   string
	Limit    int
	Offset   int
}
