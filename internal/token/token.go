package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Yespecom/server-updated-sub001/internal/config"
	"github.com/Yespecom/server-updated-sub001/internal/errs"
)

type Type string

const (
	TypeAdmin    Type = "admin"
	TypeCustomer Type = "customer"
)

// Claims is the payload carried by every bearer token. Admin tokens carry
// TenantID; customer tokens carry StoreID. The zero field stays empty.
type Claims struct {
	SubjectID uuid.UUID `json:"sub_id"`
	Email     string    `json:"email"`
	Type      Type      `json:"type"`
	TenantID  string    `json:"tenant_id,omitempty"`
	StoreID   string    `json:"store_id,omitempty"`
	jwt.RegisteredClaims
}

// Codec signs and verifies bearer tokens with the process-wide secret.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

func NewCodec(cfg *config.JWTConfig) *Codec {
	return &Codec{
		secret: []byte(cfg.Secret),
		ttl:    time.Duration(cfg.ExpirationHours) * time.Hour,
	}
}

// Issue stamps issued/expiry timestamps onto claims and signs them.
func (c *Codec) Issue(claims Claims) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a signed token. Expiry is reported separately
// from signature/decoding failures so the pipeline can answer with the right
// code.
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errs.TokenExpired()
		}
		return nil, errs.TokenInvalid(err)
	}
	if !token.Valid {
		return nil, errs.TokenInvalid(errors.New("token validation failed"))
	}

	return claims, nil
}
