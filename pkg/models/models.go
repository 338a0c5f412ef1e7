package models

import (
	"encoding/json"
	"time"
)

// Product is one catalog entry. The store-assigned identifier is not part
// of the model: it is returned from the create endpoint and stripped from
// list responses. Price is a pointer so a missing field fails validation
// while an explicit 0 passes.
type Product struct {
	Title       string   `json:"title" bson:"title" validate:"required"`
	Description *string  `json:"description" bson:"description"`
	Price       *float64 `json:"price" bson:"price" validate:"required,min=0"`
	Category    string   `json:"category" bson:"category" validate:"required"`
	Image       *string  `json:"image" bson:"image"`
	InStock     bool     `json:"in_stock" bson:"in_stock"`
}

// UnmarshalJSON defaults in_stock to true when the field is absent.
func (p *Product) UnmarshalJSON(data []byte) error {
	type alias Product
	a := alias{InStock: true}
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*p = Product(a)
	return nil
}

// CartItem references a product by its identifier. The reference is not
// checked for existence.
type CartItem struct {
	ProductID string   `json:"product_id" bson:"product_id" validate:"required"`
	Title     string   `json:"title" bson:"title" validate:"required"`
	Price     *float64 `json:"price" bson:"price" validate:"required"`
	Quantity  int      `json:"quantity" bson:"quantity" validate:"min=1"`
	Image     *string  `json:"image" bson:"image"`
}

// UnmarshalJSON defaults quantity to 1 when the field is absent.
func (c *CartItem) UnmarshalJSON(data []byte) error {
	type alias CartItem
	a := alias{Quantity: 1}
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*c = CartItem(a)
	return nil
}

type Customer struct {
	Name  string  `json:"name" bson:"name" validate:"required"`
	Email string  `json:"email" bson:"email" validate:"required,email"`
	Phone *string `json:"phone" bson:"phone"`
}

// Order is a submitted cart. The item list may be empty, monetary fields
// are client-supplied and not cross-checked against the items, and the
// timestamps are never populated by the server.
type Order struct {
	Items     []CartItem `json:"items" bson:"items" validate:"dive"`
	Subtotal  *float64   `json:"subtotal" bson:"subtotal" validate:"required,min=0"`
	Tax       *float64   `json:"tax" bson:"tax" validate:"required,min=0"`
	Total     *float64   `json:"total" bson:"total" validate:"required,min=0"`
	Customer  Customer   `json:"customer" bson:"customer"`
	Note      *string    `json:"note" bson:"note"`
	CreatedAt *time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt *time.Time `json:"updated_at" bson:"updated_at"`
}
