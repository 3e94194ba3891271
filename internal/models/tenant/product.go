package tenant

import (
	"time"

	"github.com/google/uuid"
)

// Product is a catalog item in the tenant database.
type Product struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Price       float64   `json:"price"`
	SKU         *string   `json:"sku,omitempty"`
	Stock       int       `json:"stock"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ProductListResponse struct {
	Products   []Product `json:"products"`
	TotalCount int       `json:"total_count"`
}

// RegisterCustomerRequest is the storefront customer signup body.
type RegisterCustomerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required,min=2,max=255"`
	Phone    string `json:"phone,omitempty" binding:"omitempty,e164"`
}

type CustomerLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type CustomerLoginResponse struct {
	Token   string `json:"token"`
	StoreID string `json:"store_id"`
	Email   string `json:"email"`
}
