package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kingrain94/tenant-expense-api/internal/config"
	"github.com/kingrain94/tenant-expense-api/internal/domain"
	"github.com/kingrain94/tenant-expense-api/pkg/logger"
	"github.com/kingrain94/tenant-expense-api/pkg/metrics"
)

const resetSearchPathSQL = "SET search_path TO public"

// Conn is one physical connection checked out of the pool. DB is a gorm
// session pinned to that connection, so every statement issued through it
// sees the search_path set at acquisition.
type Conn struct {
	DB     *gorm.DB
	Tenant string

	raw *sql.Conn
	ctx context.Context
}

// Raw exposes the pinned connection for statements gorm does not model.
func (c *Conn) Raw() *sql.Conn {
	return c.raw
}

type ConnectionProvider struct {
	db             *gorm.DB
	sqlDB          *sql.DB
	acquireTimeout time.Duration
	resetTimeout   time.Duration
	logger         *logger.Logger
}

func NewConnectionProvider(db *gorm.DB, poolConfig *config.ConnectionPoolConfig, logger *logger.Logger) (*ConnectionProvider, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB from gorm.DB: %w", err)
	}
	defaults := config.DefaultConnectionPoolConfig()
	if poolConfig == nil {
		poolConfig = defaults
	}
	resetTimeout := poolConfig.ResetTimeout
	if resetTimeout <= 0 {
		resetTimeout = defaults.ResetTimeout
	}
	return &ConnectionProvider{
		db:             db,
		sqlDB:          sqlDB,
		acquireTimeout: poolConfig.AcquireTimeout,
		resetTimeout:   resetTimeout,
		logger:         logger,
	}, nil
}

// SearchPathFor returns the search_path statement routing unqualified names to tenantID first.
func SearchPathFor(tenantID string) string {
	if tenantID == domain.DefaultTenant {
		return resetSearchPathSQL
	}
	return fmt.Sprintf("SET search_path TO %s, public", domain.QuoteIdentifier(tenantID))
}

// AcquireAny checks out a connection without selecting a schema.
func (p *ConnectionProvider) AcquireAny(ctx context.Context) (*Conn, error) {
	raw, err := p.checkout(ctx)
	if err != nil {
		return nil, err
	}
	return p.wrap(ctx, raw, ""), nil
}

// AcquireForTenant checks out a connection and points its search_path at tenantID.
// A connection whose switch failed is discarded, never returned to the caller.
func (p *ConnectionProvider) AcquireForTenant(ctx context.Context, tenantID string) (*Conn, error) {
	if err := domain.ValidateTenantID(tenantID); err != nil {
		return nil, err
	}

	raw, err := p.checkout(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := raw.ExecContext(ctx, SearchPathFor(tenantID)); err != nil {
		metrics.SchemaSwitchTotal.WithLabelValues(metrics.ResultFailed).Inc()
		p.logger.Error("Failed to switch schema", err, zap.String("tenant", tenantID))
		p.discard(raw)
		return nil, &domain.SchemaSwitchError{Tenant: tenantID, Err: err}
	}

	metrics.SchemaSwitchTotal.WithLabelValues(metrics.ResultOK).Inc()
	return p.wrap(ctx, raw, tenantID), nil
}

// Release resets the connection's search_path and hands it back to the pool.
// The reset runs even when the request context is already cancelled; a
// connection that cannot be reset is closed instead of pooled.
func (p *ConnectionProvider) Release(tenantID string, c *Conn) {
	if c == nil || c.raw == nil {
		return
	}

	base := c.ctx
	if base == nil {
		base = context.Background()
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(base), p.resetTimeout)
	defer cancel()

	if _, err := c.raw.ExecContext(ctx, resetSearchPathSQL); err != nil {
		metrics.ConnectionResetFailuresTotal.Inc()
		p.logger.Error("Failed to reset search_path, discarding connection", err, zap.String("tenant", tenantID))
		p.discard(c.raw)
		c.raw = nil
		return
	}

	if err := c.raw.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
		p.logger.Warn("Failed to return connection to pool", zap.String("tenant", tenantID), zap.Error(err))
	}
	c.raw = nil
}

// WithTenant runs fn on a connection bound to tenantID and always releases it.
func (p *ConnectionProvider) WithTenant(ctx context.Context, tenantID string, fn func(c *Conn) error) error {
	c, err := p.AcquireForTenant(ctx, tenantID)
	if err != nil {
		return err
	}
	defer p.Release(tenantID, c)

	return fn(c)
}

// WithAny runs fn on a schema-agnostic connection and always releases it.
func (p *ConnectionProvider) WithAny(ctx context.Context, fn func(c *Conn) error) error {
	c, err := p.AcquireAny(ctx)
	if err != nil {
		return err
	}
	defer p.Release("", c)

	return fn(c)
}

func (p *ConnectionProvider) checkout(ctx context.Context) (*sql.Conn, error) {
	acquireCtx := ctx
	if p.acquireTimeout > 0 {
		var cancel context.CancelFunc
		acquireCtx, cancel = context.WithTimeout(ctx, p.acquireTimeout)
		defer cancel()
	}

	raw, err := p.sqlDB.Conn(acquireCtx)
	if err != nil {
		// Only our own deadline means the pool was saturated.
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w: waited %s", domain.ErrPoolExhausted, p.acquireTimeout)
		}
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	return raw, nil
}

func (p *ConnectionProvider) wrap(ctx context.Context, raw *sql.Conn, tenantID string) *Conn {
	session := p.db.Session(&gorm.Session{NewDB: true, Context: ctx})
	session.Statement.ConnPool = raw
	return &Conn{DB: session, Tenant: tenantID, raw: raw, ctx: ctx}
}

// discard closes the physical connection rather than returning it to the pool.
func (p *ConnectionProvider) discard(raw *sql.Conn) {
	_ = raw.Raw(func(any) error { return driver.ErrBadConn })
	_ = raw.Close()
}
