// Package errs defines the request-facing error taxonomy. Every resolver or
// pipeline failure is one of these, carrying the HTTP status and a stable
// machine-readable code that clients switch on.
package errs

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Error struct {
	Code    string
	Status  int
	Message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.err }

// Is lets callers match on the code only, so constructed instances compare
// equal to their sentinels regardless of wrapped cause.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

func newError(status int, code, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Token failures.
func NoToken() *Error {
	return newError(http.StatusUnauthorized, "NO_TOKEN", "authorization token required")
}

func TokenExpired() *Error {
	return newError(http.StatusUnauthorized, "TOKEN_EXPIRED", "token has expired")
}

func TokenInvalid(cause error) *Error {
	e := newError(http.StatusUnauthorized, "TOKEN_INVALID", "token is malformed or has an invalid signature")
	e.err = cause
	return e
}

func InvalidTokenType() *Error {
	return newError(http.StatusUnauthorized, "INVALID_TOKEN_TYPE", "token type is not valid for this resource")
}

func TokenStale() *Error {
	return newError(http.StatusUnauthorized, "TOKEN_STALE", "password changed after token was issued")
}

// Identity resolution failures.
func AccountNotFound() *Error {
	return newError(http.StatusUnauthorized, "ACCOUNT_NOT_FOUND", "account not found")
}

func AccountInactive() *Error {
	return newError(http.StatusUnauthorized, "ACCOUNT_INACTIVE", "account is deactivated")
}

func IdentityNotFound() *Error {
	return newError(http.StatusUnauthorized, "IDENTITY_NOT_FOUND", "identity not found in tenant")
}

func StoreMismatch() *Error {
	return newError(http.StatusUnauthorized, "STORE_MISMATCH", "token was issued for a different store")
}

func InvalidCredentials() *Error {
	return newError(http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password")
}

func CaptchaFailed() *Error {
	return newError(http.StatusForbidden, "CAPTCHA_FAILED", "captcha verification failed")
}

// Store resolution failures.
func InvalidStoreID() *Error {
	return newError(http.StatusBadRequest, "INVALID_STORE_ID", "store id must be exactly 6 alphanumeric characters")
}

func StoreNotFound() *Error {
	return newError(http.StatusNotFound, "STORE_NOT_FOUND", "store not found")
}

func StoreNotActive() *Error {
	return newError(http.StatusNotFound, "STORE_NOT_ACTIVE", "store is not fully provisioned")
}

func TenantIdentityMissing() *Error {
	return newError(http.StatusNotFound, "TENANT_IDENTITY_MISSING", "store owner record missing in tenant database")
}

func InvalidResetCode() *Error {
	return newError(http.StatusBadRequest, "INVALID_RESET_CODE", "reset code is invalid or has expired")
}

// Infrastructure failures.
func DBUnavailable(cause error) *Error {
	e := newError(http.StatusInternalServerError, "DB_UNAVAILABLE", "tenant database is unavailable")
	e.err = cause
	return e
}

// RoutingIntegrity signals that a reserved path prefix reached the dynamic
// store matcher. It indicates a route-ordering bug, never a client error.
func RoutingIntegrity(segment string) *Error {
	e := newError(http.StatusInternalServerError, "ROUTING_INTEGRITY", "reserved path segment reached the store resolver")
	e.err = fmt.Errorf("reserved segment %q", segment)
	return e
}

func Internal(cause error) *Error {
	e := newError(http.StatusInternalServerError, "INTERNAL", "internal server error")
	e.err = cause
	return e
}

func Validation(message string) *Error {
	return newError(http.StatusBadRequest, "VALIDATION", message)
}

// Respond writes err as the JSON error body. Unknown error values are not
// leaked to the client; they surface as a bare INTERNAL.
func Respond(c *gin.Context, err error) {
	var e *Error
	if !errors.As(err, &e) {
		e = Internal(err)
	}
	c.JSON(e.Status, gin.H{"code": e.Code, "error": e.Message})
}

// AbortWith responds with err and stops the handler chain.
func AbortWith(c *gin.Context, err error) {
	Respond(c, err)
	c.Abort()
}
