package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	"github.com/kingrain94/tenant-expense-api/internal/utils"
)

type TenantMiddlewareTestSuite struct {
	suite.Suite
	router *gin.Engine
	seen   string
	bound  bool
}

func TestTenantMiddleware(t *testing.T) {
	suite.Run(t, new(TenantMiddlewareTestSuite))
}

func (s *TenantMiddlewareTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()
	s.seen, s.bound = "", false

	s.router.Use(NewTenantMiddleware().BindTenant())
	s.router.GET("/probe", func(c *gin.Context) {
		s.seen, s.bound = utils.TenantIDFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})
}

func (s *TenantMiddlewareTestSuite) serve(header string, set bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if set {
		req.Header.Set(TenantHeader, header)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *TenantMiddlewareTestSuite) TestBindTenant_NoHeaderBindsPublic() {
	// Act
	w := s.serve("", false)

	// Assert
	s.Equal(http.StatusOK, w.Code)
	s.True(s.bound)
	s.Equal("public", s.seen)
}

func (s *TenantMiddlewareTestSuite) TestBindTenant_BlankHeaderBindsPublic() {
	// Act
	s.serve("   ", true)

	// Assert
	s.True(s.bound)
	s.Equal("public", s.seen)
}

func (s *TenantMiddlewareTestSuite) TestBindTenant_HeaderValueBoundExactly() {
	// Act
	s.serve("acme", true)

	// Assert
	s.True(s.bound)
	s.Equal("acme", s.seen)
}

func (s *TenantMiddlewareTestSuite) TestBindTenant_ClearedAfterHandler() {
	// Arrange
	var after context.Context
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Next()
		after = c.Request.Context()
	})
	router.Use(NewTenantMiddleware().BindTenant())
	router.GET("/probe", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set(TenantHeader, "acme")

	// Act
	router.ServeHTTP(httptest.NewRecorder(), req)

	// Assert
	s.Require().NotNil(after)
	_, bound := utils.TenantIDFromContext(after)
	s.False(bound)
}

func (s *TenantMiddlewareTestSuite) TestBindTenant_ClearedAfterPanic() {
	// Arrange
	var after context.Context
	var recovered any
	router := gin.New()
	router.Use(func(c *gin.Context) {
		defer func() {
			recovered = recover()
			after = c.Request.Context()
			c.AbortWithStatus(http.StatusInternalServerError)
		}()
		c.Next()
	})
	router.Use(NewTenantMiddleware().BindTenant())
	router.GET("/probe", func(c *gin.Context) { panic("boom") })

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set(TenantHeader, "acme")
	w := httptest.NewRecorder()

	// Act
	router.ServeHTTP(w, req)

	// Assert
	s.Equal("boom", recovered)
	s.Require().NotNil(after)
	_, bound := utils.TenantIDFromContext(after)
	s.False(bound)
}

func (s *TenantMiddlewareTestSuite) TestBindTenant_ClearedWhenRecoveryIsInner() {
	// Arrange
	var after context.Context
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Next()
		after = c.Request.Context()
	})
	router.Use(NewTenantMiddleware().BindTenant())
	router.Use(gin.Recovery())
	router.GET("/probe", func(c *gin.Context) { panic("boom") })

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set(TenantHeader, "acme")
	w := httptest.NewRecorder()

	// Act
	router.ServeHTTP(w, req)

	// Assert
	s.Equal(http.StatusInternalServerError, w.Code)
	s.Require().NotNil(after)
	_, bound := utils.TenantIDFromContext(after)
	s.False(bound)
}

func (s *TenantMiddlewareTestSuite) TestBindTenant_ConcurrentRequestsIsolated() {
	// Arrange
	router := gin.New()
	router.Use(NewTenantMiddleware().BindTenant())
	router.GET("/probe", func(c *gin.Context) {
		tenantID, _ := utils.TenantIDFromContext(c.Request.Context())
		c.String(http.StatusOK, tenantID)
	})
	tenants := []string{"acme", "globex", "initech", "public"}

	// Act
	results := make(chan [2]string, 64)
	for i := 0; i < 64; i++ {
		tenant := tenants[i%len(tenants)]
		go func() {
			req := httptest.NewRequest(http.MethodGet, "/probe", nil)
			req.Header.Set(TenantHeader, tenant)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			results <- [2]string{tenant, w.Body.String()}
		}()
	}

	// Assert
	for i := 0; i < 64; i++ {
		r := <-results
		s.Equal(r[0], r[1])
	}
}
