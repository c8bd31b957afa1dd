package postgres

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/kingrain94/tenant-expense-api/internal/domain"
	"github.com/kingrain94/tenant-expense-api/pkg/logger"
)

const (
	listSchemasSQL  = "SELECT schema_name FROM information_schema.schemata ORDER BY schema_name"
	listTablesSQL   = "SELECT table_name FROM information_schema.tables WHERE table_schema = ? ORDER BY table_name"
	schemaExistsSQL = "SELECT EXISTS (SELECT 1 FROM information_schema.schemata WHERE schema_name = ?)"
	tableExistsSQL  = "SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = ? AND table_name = ?)"
	showSearchPath  = "SHOW search_path"

	tryAdvisoryLockSQL = "SELECT pg_try_advisory_lock(?)"
	advisoryLockSQL    = "SELECT pg_advisory_lock(?)"
	advisoryUnlockSQL  = "SELECT pg_advisory_unlock(?)"
)

// SQLSTATE codes treated as "already exists" when DDL races another provisioner.
const (
	pgDuplicateSchema = "42P06"
	pgDuplicateTable  = "42P07"
	pgUniqueViolation = "23505"

	pgUndefinedTable = "42P01"
)

// lockConnKey carries the connection holding a provisioning lock. Catalog
// calls made under the lock run on it instead of checking out another one.
type lockConnKey struct{}

// Catalog answers schema-level questions and performs tenant DDL.
// A cacheTTL <= 0 disables the provisioned cache.
type Catalog struct {
	provider    *ConnectionProvider
	provisioned *cache.Cache
	cacheTTL    time.Duration
	lockWait    time.Duration
	logger      *logger.Logger
}

func NewCatalog(provider *ConnectionProvider, cacheTTL, lockWait time.Duration, logger *logger.Logger) *Catalog {
	return &Catalog{
		provider:    provider,
		provisioned: cache.New(cacheTTL, 2*cacheTTL),
		cacheTTL:    cacheTTL,
		lockWait:    lockWait,
		logger:      logger,
	}
}

// ListSchemas returns every non-system schema.
func (c *Catalog) ListSchemas(ctx context.Context) ([]string, error) {
	var schemas []string
	err := c.withConn(ctx, func(conn *Conn) error {
		var err error
		schemas, err = queryStrings(conn, listSchemasSQL)
		return err
	})
	if err != nil {
		return nil, &domain.EnumerationError{Err: err}
	}
	return domain.FilterTenantSchemas(schemas), nil
}

// ListTables returns the tables of one schema.
func (c *Catalog) ListTables(ctx context.Context, schema string) ([]string, error) {
	var tables []string
	err := c.withConn(ctx, func(conn *Conn) error {
		var err error
		tables, err = queryStrings(conn, listTablesSQL, schema)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tables of schema %q: %w", schema, err)
	}
	return tables, nil
}

func (c *Catalog) SchemaExists(ctx context.Context, schema string) (bool, error) {
	var exists bool
	err := c.withConn(ctx, func(conn *Conn) error {
		return conn.DB.Raw(schemaExistsSQL, schema).Row().Scan(&exists)
	})
	if err != nil {
		return false, fmt.Errorf("failed to check schema %q: %w", schema, err)
	}
	return exists, nil
}

func (c *Catalog) TableExists(ctx context.Context, schema, table string) (bool, error) {
	var exists bool
	err := c.withConn(ctx, func(conn *Conn) error {
		return conn.DB.Raw(tableExistsSQL, schema, table).Row().Scan(&exists)
	})
	if err != nil {
		return false, fmt.Errorf("failed to check table %s.%s: %w", schema, table, err)
	}
	return exists, nil
}

// CreateSchema creates the tenant schema. Losing a creation race is not an error.
func (c *Catalog) CreateSchema(ctx context.Context, schema string) error {
	if err := domain.ValidateTenantID(schema); err != nil {
		return err
	}
	err := c.withConn(ctx, func(conn *Conn) error {
		return conn.DB.Exec("CREATE SCHEMA IF NOT EXISTS " + domain.QuoteIdentifier(schema)).Error
	})
	if err != nil && !isAlreadyExists(err) {
		return fmt.Errorf("failed to create schema %q: %w", schema, err)
	}
	return nil
}

// CreateExpenseTable creates the expense table directly, bypassing migrations.
func (c *Catalog) CreateExpenseTable(ctx context.Context, schema string) error {
	if err := domain.ValidateTenantID(schema); err != nil {
		return err
	}
	err := c.withConn(ctx, func(conn *Conn) error {
		return conn.DB.Exec(createExpenseTableSQL(schema)).Error
	})
	if err != nil && !isAlreadyExists(err) {
		return fmt.Errorf("failed to create expense table in schema %q: %w", schema, err)
	}
	return nil
}

// SearchPath reports the search_path of a freshly acquired connection.
func (c *Catalog) SearchPath(ctx context.Context) (string, error) {
	var path string
	err := c.provider.WithAny(ctx, func(conn *Conn) error {
		return conn.DB.Raw(showSearchPath).Row().Scan(&path)
	})
	if err != nil {
		return "", fmt.Errorf("failed to read search_path: %w", err)
	}
	return path, nil
}

// IsProvisioned reports whether tenant has both its schema and its expense
// table. Only positive answers are cached.
func (c *Catalog) IsProvisioned(ctx context.Context, tenantID string) (bool, error) {
	if _, ok := c.provisioned.Get(tenantID); ok {
		return true, nil
	}

	exists, err := c.TableExists(ctx, tenantID, domain.ExpenseTable)
	if err != nil {
		return false, err
	}
	if exists {
		c.Remember(tenantID)
	}
	return exists, nil
}

// Remember marks tenantID as provisioned.
func (c *Catalog) Remember(tenantID string) {
	if c.cacheTTL <= 0 {
		return
	}
	c.provisioned.SetDefault(tenantID, struct{}{})
}

// Forget drops tenantID from the provisioned cache.
func (c *Catalog) Forget(tenantID string) {
	c.provisioned.Delete(tenantID)
}

// WithLock runs fn while holding the cluster-wide provisioning lock of tenantID.
// Catalog calls made with the ctx passed to fn reuse the lock's connection, so
// provisioning never waits on the pool while holding one.
func (c *Catalog) WithLock(ctx context.Context, tenantID string, fn func(ctx context.Context) error) error {
	conn, err := c.provider.AcquireAny(ctx)
	if err != nil {
		return err
	}

	key := TenantLockKey(tenantID)
	if err := c.lock(ctx, conn, tenantID, key); err != nil {
		c.provider.Release("", conn)
		return err
	}

	defer func() {
		unlockCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.provider.resetTimeout)
		defer cancel()
		if err := conn.DB.WithContext(unlockCtx).Exec(advisoryUnlockSQL, key).Error; err != nil {
			// A session that still holds the lock must not go back to the pool.
			c.logger.Warn("Failed to release provisioning lock, discarding connection",
				zap.String("tenant", tenantID), zap.Error(err))
			c.provider.discard(conn.raw)
			conn.raw = nil
			return
		}
		c.provider.Release("", conn)
	}()

	return fn(context.WithValue(ctx, lockConnKey{}, conn))
}

// withConn runs fn on the connection holding a provisioning lock when ctx
// carries one, and on a pooled schema-agnostic connection otherwise.
func (c *Catalog) withConn(ctx context.Context, fn func(conn *Conn) error) error {
	if conn, ok := ctx.Value(lockConnKey{}).(*Conn); ok && conn.raw != nil {
		return fn(conn)
	}
	return c.provider.WithAny(ctx, fn)
}

func (c *Catalog) lock(ctx context.Context, conn *Conn, tenantID string, key int64) error {
	lockCtx := ctx
	if c.lockWait > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, c.lockWait)
		defer cancel()
	}

	var acquired bool
	if err := conn.DB.WithContext(lockCtx).Raw(tryAdvisoryLockSQL, key).Row().Scan(&acquired); err != nil {
		return fmt.Errorf("failed to acquire provisioning lock for tenant %q: %w", tenantID, err)
	}
	if acquired {
		return nil
	}

	c.logger.Info("Provisioning lock held elsewhere, waiting", zap.String("tenant", tenantID))
	if err := conn.DB.WithContext(lockCtx).Exec(advisoryLockSQL, key).Error; err != nil {
		return fmt.Errorf("failed to wait for provisioning lock for tenant %q: %w", tenantID, err)
	}
	return nil
}

// TenantLockKey maps a tenant to its pg_advisory_lock key.
func TenantLockKey(tenantID string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("tenant_provision:" + tenantID))
	return int64(h.Sum64())
}

func createExpenseTableSQL(schema string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
	id SERIAL PRIMARY KEY,
	description TEXT NOT NULL,
	amount NUMERIC(10,2) NOT NULL
)`, domain.QuoteIdentifier(schema), domain.ExpenseTable)
}

func isAlreadyExists(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case pgDuplicateSchema, pgDuplicateTable, pgUniqueViolation:
		return true
	}
	return false
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTable
}

func queryStrings(conn *Conn, query string, args ...any) ([]string, error) {
	rows, err := conn.DB.Raw(query, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
