package models

import (
	"time"

	"github.com/google/uuid"
)

// MainAccount is the platform-side record of a tenant owner. It is the join
// key between the platform database and the tenant's private database: the
// tenant ID names the database, the store ID names the storefront.
type MainAccount struct {
	ID                uuid.UUID  `json:"id"`
	Email             string     `json:"email"`
	TenantID          uuid.UUID  `json:"tenant_id"`
	StoreID           string     `json:"store_id"`
	IsActive          bool       `json:"is_active"`
	PasswordHash      string     `json:"-"`
	PasswordChangedAt *time.Time `json:"password_changed_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Sanitized returns a copy safe to attach to a request context.
func (a *MainAccount) Sanitized() *MainAccount {
	cp := *a
	cp.PasswordHash = ""
	return &cp
}
