package models

import "time"

// Product is a storefront listing.
type Product struct {
	ProductID   string   `db:"product_id" json:"productid"`
	SellerID    int      `db:"seller_id" json:"-"`
	Name        string   `db:"name" json:"name"`
	Description string   `db:"description" json:"description"`
	Price       float64  `db:"price" json:"price"`
	Stock       int      `db:"stock" json:"stock"`
	CategoryID  int      `db:"category_id" json:"categoryid"`
	ImageURLs   []string `db:"-" json:"imageurls"`
}

// Category groups products.
type Category struct {
	CategoryID int    `db:"category_id" json:"categoryid"`
	Category   string `db:"category" json:"category"`
}

// CartProduct is a product plus the quantity held in the user's cart.
type CartProduct struct {
	Product
	Quantity int `db:"quantity" json:"quantity"`
}

// PurchasedProduct is a completed purchase line.
type PurchasedProduct struct {
	Product
	Quantity    int       `db:"quantity" json:"quantity"`
	PurchasedAt time.Time `db:"purchased_at" json:"purchaseDate"`
}
