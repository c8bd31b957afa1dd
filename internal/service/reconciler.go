package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kingrain94/tenant-expense-api/internal/domain"
	"github.com/kingrain94/tenant-expense-api/internal/repository"
	"github.com/kingrain94/tenant-expense-api/internal/utils"
	"github.com/kingrain94/tenant-expense-api/pkg/logger"
	"github.com/kingrain94/tenant-expense-api/pkg/metrics"
)

const (
	DefaultSeedFloor = 30

	minSeedAmount = 5.0
	maxSeedAmount = 1000.0
)

var (
	seedVerbs = []string{
		"Taxi", "Lunch", "Dinner", "Hotel", "Flight", "Train", "Parking", "Coffee",
		"Supplies", "Taxi ride", "Uber", "Meal", "Conference fee", "Subscription", "Office chair",
	}
	seedExtras = []string{
		"for client", "team", "meeting", "travel", "reimbursement", "project A",
		"project B", "misc", "snack", "airport", "workshop", "training",
	}
)

//go:generate mockery --name Provisioner --output ../mocks
type Provisioner interface {
	CreateTenant(ctx context.Context, tenantID string) error
}

// ReconcileReport summarizes one reconciliation pass.
type ReconcileReport struct {
	Schemas  []string
	Inserted map[string]int
	Failures map[string]error
}

// Reconciler brings every tenant schema up to a baseline row count at startup.
type Reconciler struct {
	catalog     repository.CatalogRepository
	expenses    repository.ExpenseRepository
	provisioner Provisioner
	resolver    *utils.TenantResolver
	floor       int
	concurrency int
	logger      *logger.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewReconciler(repo repository.Repository, provisioner Provisioner, floor, concurrency int, logger *logger.Logger) *Reconciler {
	if floor <= 0 {
		floor = DefaultSeedFloor
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Reconciler{
		catalog:     repo.Catalog(),
		expenses:    repo.Expense(),
		provisioner: provisioner,
		resolver:    utils.NewTenantResolver(),
		floor:       floor,
		concurrency: concurrency,
		logger:      logger,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetRand replaces the random source used to generate seed rows.
func (r *Reconciler) SetRand(rng *rand.Rand) {
	r.rngMu.Lock()
	defer r.rngMu.Unlock()
	r.rng = rng
}

// Run reconciles every non-system schema. A failing schema is recorded in the
// report and never stops the others; a failed enumeration yields an empty report.
func (r *Reconciler) Run(ctx context.Context) ReconcileReport {
	report := ReconcileReport{
		Inserted: make(map[string]int),
		Failures: make(map[string]error),
	}

	schemas, err := r.catalog.ListSchemas(ctx)
	if err != nil {
		r.logger.Error("Failed to enumerate schemas, nothing to reconcile", err)
		return report
	}
	report.Schemas = schemas

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(r.concurrency)

	for _, schema := range schemas {
		schema := schema
		g.Go(func() error {
			inserted, err := r.reconcileSchema(ctx, schema)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				r.logger.Error("Failed to seed schema", err, zap.String("tenant", schema))
				report.Failures[schema] = err
				return nil
			}
			report.Inserted[schema] = inserted
			return nil
		})
	}
	_ = g.Wait()

	r.logger.Info("Reconciliation finished",
		zap.Int("schemas", len(schemas)),
		zap.Int("failures", len(report.Failures)))
	return report
}

// reconcileSchema works on a context bound to schema alone; the binding ends
// with this call whatever the outcome.
func (r *Reconciler) reconcileSchema(ctx context.Context, schema string) (int, error) {
	if err := domain.ValidateTenantID(schema); err != nil {
		return 0, &domain.SeedingError{Tenant: schema, Err: err}
	}

	tenantCtx := utils.WithTenantID(ctx, schema)
	tenantID := r.resolver.ResolveCurrentTenant(tenantCtx)

	if err := r.provisioner.CreateTenant(tenantCtx, tenantID); err != nil {
		return 0, &domain.SeedingError{Tenant: tenantID, Err: err}
	}

	count, err := r.expenses.Count(tenantCtx, tenantID)
	if err != nil {
		return 0, &domain.SeedingError{Tenant: tenantID, Err: fmt.Errorf("count expenses: %w", err)}
	}

	missing := r.floor - int(count)
	if missing <= 0 {
		r.logger.Info("Schema already at baseline", zap.String("tenant", tenantID), zap.Int64("count", count))
		return 0, nil
	}

	if err := r.expenses.CreateBatch(tenantCtx, tenantID, r.generate(missing)); err != nil {
		return 0, &domain.SeedingError{Tenant: tenantID, Err: fmt.Errorf("insert expenses: %w", err)}
	}

	metrics.SeededRowsTotal.Add(float64(missing))
	r.logger.Info("Seeded expenses", zap.String("tenant", tenantID), zap.Int("inserted", missing))
	return missing, nil
}

func (r *Reconciler) generate(n int) []domain.Expense {
	r.rngMu.Lock()
	defer r.rngMu.Unlock()

	expenses := make([]domain.Expense, n)
	for i := range expenses {
		expenses[i] = domain.Expense{
			Description: fmt.Sprintf("%s - %s #%d",
				seedVerbs[r.rng.Intn(len(seedVerbs))],
				seedExtras[r.rng.Intn(len(seedExtras))],
				1+r.rng.Intn(300)),
			Amount: domain.RoundAmount(minSeedAmount + r.rng.Float64()*(maxSeedAmount-minSeedAmount)),
		}
	}
	return expenses
}
