package middleware

import (
	"net/http"
	"regexp"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kingrain94/tenant-expense-api/internal/api/dto"
	"github.com/kingrain94/tenant-expense-api/internal/domain"
	"github.com/kingrain94/tenant-expense-api/pkg/logger"
)

var suspiciousPatterns = compilePatterns(
	// SQL injection
	`(?i)(\bUNION\b.*\bSELECT\b)`,
	`(?i)(\bINSERT\b.*\bINTO\b)`,
	`(?i)(\bDELETE\b.*\bFROM\b)`,
	`(?i)(\bDROP\b.*\b(TABLE|SCHEMA)\b)`,
	`(?i)(\bALTER\b.*\bTABLE\b)`,
	`/\*.*\*/`,
	// XSS
	`(?i)<script.*?>`,
	`(?i)javascript:`,
	`(?i)<iframe.*?>`,
	// Path traversal
	`\.\.\/`,
	`\.\.\\`,
	`(?i)%2e%2e%2f`,
	`(?i)%2e%2e%5c`,
)

func compilePatterns(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile(p)
	}
	return compiled
}

type ValidationMiddleware struct {
	logger *logger.Logger
}

func NewValidationMiddleware(logger *logger.Logger) *ValidationMiddleware {
	return &ValidationMiddleware{
		logger: logger,
	}
}

// ValidateTenantHeader rejects requests whose X-Tenant header is not a valid
// schema identifier. A missing header is fine and means the default tenant.
func (m *ValidationMiddleware) ValidateTenantHeader() gin.HandlerFunc {
	return func(c *gin.Context) {
		value := strings.TrimSpace(c.GetHeader(TenantHeader))
		if value == "" {
			c.Next()
			return
		}
		if err := domain.ValidateTenantID(value); err != nil {
			m.logger.Warn("Rejected tenant header",
				zap.String("value", sanitize(value)),
				zap.String("ip", c.ClientIP()))
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.Error{Error: err.Error()})
			return
		}
		c.Next()
	}
}

// ValidateContentType ensures only allowed content types on requests with a body
func (m *ValidationMiddleware) ValidateContentType(allowedTypes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodDelete || c.Request.ContentLength == 0 {
			c.Next()
			return
		}

		contentType := strings.TrimSpace(strings.Split(c.GetHeader("Content-Type"), ";")[0])
		if !slices.Contains(allowedTypes, contentType) {
			c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
				"error":         "Unsupported Content-Type",
				"allowed_types": allowedTypes,
			})
			return
		}

		c.Next()
	}
}

// ValidateRequestSize limits request body size
func (m *ValidationMiddleware) ValidateRequestSize(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxSize {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"error":         "Request body too large",
				"max_size":      maxSize,
				"received_size": c.Request.ContentLength,
			})
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}

// BlockSuspiciousPatterns blocks requests whose path or query carries an injection pattern
func (m *ValidationMiddleware) BlockSuspiciousPatterns() gin.HandlerFunc {
	return func(c *gin.Context) {
		if matchesAny(c.Request.URL.Path) {
			m.reject(c, "path", c.Request.URL.Path)
			return
		}

		for key, values := range c.Request.URL.Query() {
			for _, value := range values {
				if matchesAny(value) {
					m.reject(c, key, value)
					return
				}
			}
		}

		c.Next()
	}
}

func (m *ValidationMiddleware) reject(c *gin.Context, key, value string) {
	m.logger.Warn("Blocked suspicious request",
		zap.String("key", key),
		zap.String("value", sanitize(value)),
		zap.String("ip", c.ClientIP()))
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.Error{Error: "Invalid request"})
}

func matchesAny(input string) bool {
	for _, pattern := range suspiciousPatterns {
		if pattern.MatchString(input) {
			return true
		}
	}
	return false
}

// sanitize strips control characters before a value reaches the logs
func sanitize(input string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' {
			return -1
		}
		return r
	}, input)
}
