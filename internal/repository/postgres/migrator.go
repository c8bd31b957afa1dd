package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/kingrain94/tenant-expense-api/internal/config"
	"github.com/kingrain94/tenant-expense-api/internal/domain"
	"github.com/kingrain94/tenant-expense-api/pkg/logger"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Migrations returns the versioned schema scripts applied to every tenant.
func Migrations() fs.FS {
	sub, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// GooseMigrator applies the migration sequence inside one tenant schema. Each
// run opens a dedicated single-connection pool whose sessions start with the
// tenant's search_path, so goose's version table and every unqualified DDL
// statement land in that schema.
type GooseMigrator struct {
	dbConfig *config.DatabaseConfig
	logger   *logger.Logger
}

func NewGooseMigrator(dbConfig *config.DatabaseConfig, logger *logger.Logger) *GooseMigrator {
	return &GooseMigrator{dbConfig: dbConfig, logger: logger}
}

func (m *GooseMigrator) Migrate(ctx context.Context, tenantID string) error {
	if err := domain.ValidateTenantID(tenantID); err != nil {
		return err
	}

	db, err := sql.Open("pgx", m.dbConfig.DSNWithSearchPath(migrationSearchPath(tenantID)))
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			m.logger.Warn("Failed to close migration connection", zap.String("tenant", tenantID), zap.Error(err))
		}
	}()
	db.SetMaxOpenConns(1)

	provider, err := goose.NewProvider(goose.DialectPostgres, db, Migrations())
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	for _, r := range results {
		m.logger.Info("Applied migration",
			zap.String("tenant", tenantID),
			zap.Int64("version", r.Source.Version),
			zap.Duration("duration", r.Duration))
	}
	return nil
}

func migrationSearchPath(tenantID string) string {
	if tenantID == domain.DefaultTenant {
		return domain.DefaultTenant
	}
	return domain.QuoteIdentifier(tenantID) + ", public"
}
