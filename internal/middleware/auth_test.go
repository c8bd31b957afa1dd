package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrain94/tenant-expense-api/internal/config"
	"github.com/kingrain94/tenant-expense-api/internal/domain"
)

func newAuthRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	auth := NewAuthMiddleware(cfg)

	router := gin.New()
	router.GET("/tenants", append(auth.Operator(domain.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})...)
	return router
}

func callWithToken(router *gin.Engine, token string) int {
	req := httptest.NewRequest(http.MethodGet, "/tenants", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code
}

func TestOperator_DisabledWithoutSecret(t *testing.T) {
	router := newAuthRouter(&config.Config{})

	assert.Equal(t, http.StatusOK, callWithToken(router, ""))
}

func TestOperator_RoleChecks(t *testing.T) {
	cfg := &config.Config{JWTSecretKey: "secret", JWTExpirationHours: 1}
	router := newAuthRouter(cfg)
	auth := NewAuthMiddleware(cfg)

	admin, err := auth.GenerateToken("alice", []string{"admin"})
	require.NoError(t, err)
	operator, err := auth.GenerateToken("bob", []string{"operator"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, callWithToken(router, admin))
	assert.Equal(t, http.StatusForbidden, callWithToken(router, operator))
	assert.Equal(t, http.StatusUnauthorized, callWithToken(router, ""))
	assert.Equal(t, http.StatusUnauthorized, callWithToken(router, "not-a-token"))
}

func TestJWTAuth_RejectsOtherSigningMethods(t *testing.T) {
	cfg := &config.Config{JWTSecretKey: "secret", JWTExpirationHours: 1}
	router := newAuthRouter(cfg)

	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"roles": []string{"admin"}})
	unsigned, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, callWithToken(router, unsigned))
}
