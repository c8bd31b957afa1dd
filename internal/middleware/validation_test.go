package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/kingrain94/tenant-expense-api/pkg/logger"
)

func newValidationRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	m := NewValidationMiddleware(logger.NewNop())

	router := gin.New()
	router.Use(m.BlockSuspiciousPatterns(), m.ValidateTenantHeader(), m.ValidateContentType("application/json"))
	router.Any("/expenses", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func TestValidateTenantHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "absent", header: "", want: http.StatusOK},
		{name: "valid", header: "acme", want: http.StatusOK},
		{name: "quote injection", header: `acme"; DROP SCHEMA public; --`, want: http.StatusBadRequest},
		{name: "too long", header: strings.Repeat("a", 64), want: http.StatusBadRequest},
		{name: "leading digit", header: "1acme", want: http.StatusBadRequest},
	}

	router := newValidationRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/expenses", nil)
			if tt.header != "" {
				req.Header.Set(TenantHeader, tt.header)
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestBlockSuspiciousPatterns(t *testing.T) {
	router := newValidationRouter()

	req := httptest.NewRequest(http.MethodGet, "/expenses?q=1+UNION+SELECT+password", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestValidateContentType(t *testing.T) {
	router := newValidationRouter()

	req := httptest.NewRequest(http.MethodPost, "/expenses", strings.NewReader("description=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/expenses", strings.NewReader(`{"description":"x"}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
