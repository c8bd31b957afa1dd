package utils

import (
	"context"
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kingrain94/tenant-expense-api/internal/domain"
)

type ContextKey string

const (
	ClaimsKey    ContextKey = "claims"
	TenantIDKey  ContextKey = "tenant_id"
	RequestIDKey ContextKey = "request_id"
)

var (
	ErrNoClaimsInContext = errors.New("no claims found in context")
	ErrInvalidClaimsType = errors.New("invalid claims type")
)

// tenantSlot is the per-request tenant cell. A nil slot or an empty id means "unbound".
type tenantSlot struct {
	id string
}

// WithTenantID returns a child context bound to tenantID.
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, TenantIDKey, &tenantSlot{id: tenantID})
}

// TenantIDFromContext returns the tenant bound to ctx, if any.
func TenantIDFromContext(ctx context.Context) (string, bool) {
	slot, ok := ctx.Value(TenantIDKey).(*tenantSlot)
	if !ok || slot == nil || slot.id == "" {
		return "", false
	}
	return slot.id, true
}

// ClearTenant returns a child context in which no tenant is bound.
func ClearTenant(ctx context.Context) context.Context {
	return context.WithValue(ctx, TenantIDKey, (*tenantSlot)(nil))
}

// NormalizeTenantHeader maps an absent or blank header value to the default tenant.
func NormalizeTenantHeader(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return domain.DefaultTenant
	}
	return value
}

// TenantResolver is what the data layer asks for the schema of a unit of work.
type TenantResolver struct {
	DefaultTenant string
}

func NewTenantResolver() *TenantResolver {
	return &TenantResolver{DefaultTenant: domain.DefaultTenant}
}

// ResolveCurrentTenant returns the bound tenant or the default one.
func (r *TenantResolver) ResolveCurrentTenant(ctx context.Context) string {
	if id, ok := TenantIDFromContext(ctx); ok {
		return id
	}
	if r == nil || r.DefaultTenant == "" {
		return domain.DefaultTenant
	}
	return r.DefaultTenant
}

// ValidateExistingCurrentSessions reports whether a session opened for the
// same resolved tenant may be reused. Sessions carry no tenant state beyond
// the connection's search_path, so this is always true.
func (r *TenantResolver) ValidateExistingCurrentSessions() bool {
	return true
}

func GetClaimsFromContext(ctx context.Context) (jwt.MapClaims, error) {
	raw := ctx.Value(ClaimsKey)
	if raw == nil {
		return nil, ErrNoClaimsInContext
	}
	claims, ok := raw.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidClaimsType
	}
	return claims, nil
}

func GetRequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}
