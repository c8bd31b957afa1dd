package utils

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTenantContext_SetGetClear(t *testing.T) {
	ctx := context.Background()

	_, ok := TenantIDFromContext(ctx)
	assert.False(t, ok)

	bound := WithTenantID(ctx, "acme")
	id, ok := TenantIDFromContext(bound)
	assert.True(t, ok)
	assert.Equal(t, "acme", id)

	cleared := ClearTenant(bound)
	_, ok = TenantIDFromContext(cleared)
	assert.False(t, ok)

	// parent is untouched
	id, ok = TenantIDFromContext(bound)
	assert.True(t, ok)
	assert.Equal(t, "acme", id)
}

func TestTenantContext_ConcurrentRequestsAreIsolated(t *testing.T) {
	var wg sync.WaitGroup
	errs := make(chan error, 64)

	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			want := fmt.Sprintf("tenant_%d", n)
			ctx := WithTenantID(context.Background(), want)
			for j := 0; j < 100; j++ {
				if got, _ := TenantIDFromContext(ctx); got != want {
					errs <- fmt.Errorf("goroutine %d observed %q", n, got)
					return
				}
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestNormalizeTenantHeader(t *testing.T) {
	assert.Equal(t, "public", NormalizeTenantHeader(""))
	assert.Equal(t, "public", NormalizeTenantHeader("   "))
	assert.Equal(t, "acme", NormalizeTenantHeader("acme"))
	assert.Equal(t, "Acme", NormalizeTenantHeader(" Acme "))
}

func TestTenantResolver(t *testing.T) {
	r := NewTenantResolver()

	assert.Equal(t, "public", r.ResolveCurrentTenant(context.Background()))
	assert.Equal(t, "acme", r.ResolveCurrentTenant(WithTenantID(context.Background(), "acme")))
	assert.Equal(t, "public", r.ResolveCurrentTenant(ClearTenant(WithTenantID(context.Background(), "acme"))))
	assert.True(t, r.ValidateExistingCurrentSessions())
}

func TestGetClaimsFromContext(t *testing.T) {
	_, err := GetClaimsFromContext(context.Background())
	assert.ErrorIs(t, err, ErrNoClaimsInContext)

	_, err = GetClaimsFromContext(context.WithValue(context.Background(), ClaimsKey, "nope"))
	assert.ErrorIs(t, err, ErrInvalidClaimsType)

	claims, err := GetClaimsFromContext(context.WithValue(context.Background(), ClaimsKey, jwt.MapClaims{"sub": "ops"}))
	require.NoError(t, err)
	assert.Equal(t, "ops", claims["sub"])
}

func TestGetRequestIDFromContext(t *testing.T) {
	assert.Empty(t, GetRequestIDFromContext(context.Background()))
	assert.Equal(t, "req-1", GetRequestIDFromContext(context.WithValue(context.Background(), RequestIDKey, "req-1")))
}
