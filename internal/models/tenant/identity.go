package tenant

import (
	"time"

	"github.com/google/uuid"
)

// AdminUser mirrors the platform MainAccount inside the tenant database,
// extended with role and store provisioning state.
type AdminUser struct {
	ID                uuid.UUID  `json:"id"`
	Email             string     `json:"email"`
	Role              string     `json:"role"`
	Permissions       []string   `json:"permissions"`
	IsActive          bool       `json:"is_active"`
	HasStore          bool       `json:"has_store"`
	StoreName         string     `json:"store_name,omitempty"`
	StoreLogo         string     `json:"store_logo,omitempty"`
	PasswordHash      string     `json:"-"`
	PasswordChangedAt *time.Time `json:"password_changed_at,omitempty"`
	LastLoginAt       *time.Time `json:"last_login_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (u *AdminUser) Sanitized() *AdminUser {
	cp := *u
	cp.PasswordHash = ""
	return &cp
}

// Customer is a storefront customer. Customers exist only inside their
// tenant's database and are scoped to one store.
type Customer struct {
	ID                uuid.UUID  `json:"id"`
	Email             string     `json:"email"`
	FullName          string     `json:"full_name"`
	Phone             string     `json:"phone,omitempty"`
	IsActive          bool       `json:"is_active"`
	PasswordHash      string     `json:"-"`
	PasswordChangedAt *time.Time `json:"password_changed_at,omitempty"`
	LastLoginAt       *time.Time `json:"last_login_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (c *Customer) Sanitized() *Customer {
	cp := *c
	cp.PasswordHash = ""
	return &cp
}

// StoreInfo is the display metadata attached to a resolved store context.
type StoreInfo struct {
	StoreID string `json:"store_id"`
	Name    string `json:"name"`
	Logo    string `json:"logo,omitempty"`
}
