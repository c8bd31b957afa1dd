package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/kingrain94/tenant-expense-api/internal/config"
	"github.com/kingrain94/tenant-expense-api/internal/repository"
	"github.com/kingrain94/tenant-expense-api/internal/repository/postgres"
	"github.com/kingrain94/tenant-expense-api/internal/service"
	"github.com/kingrain94/tenant-expense-api/pkg/logger"
)

// env holds what every subcommand needs, built once before it runs.
type env struct {
	cfg     *config.Config
	db      *gorm.DB
	repo    repository.Repository
	tenants *service.TenantService
	logger  *logger.Logger
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	var (
		e       env
		out     = "text"
		timeout = 2 * time.Minute
	)

	root := &cobra.Command{
		Use:           "tenantctl",
		Short:         "Operator CLI for tenant schemas",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.open()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			e.close()
		},
	}
	root.PersistentFlags().StringVar(&out, "out", out, "Output format: json|text")
	root.PersistentFlags().DurationVar(&timeout, "timeout", timeout, "Overall command timeout")

	withTimeout := func(cmd *cobra.Command) (context.Context, context.CancelFunc) {
		return context.WithTimeout(cmd.Context(), timeout)
	}

	createCmd := &cobra.Command{
		Use:   "create <tenant>...",
		Short: "Provision one or more tenants",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()

			failures := e.tenants.ProvisionDefaults(ctx, args)
			for _, id := range args {
				if err, failed := failures[id]; failed {
					fmt.Printf("%s\tFAILED\t%v\n", id, err)
					continue
				}
				fmt.Printf("Tenant created: %s\n", id)
			}
			if len(failures) > 0 {
				return fmt.Errorf("%d of %d tenants failed", len(failures), len(args))
			}
			return nil
		},
	}

	schemasCmd := &cobra.Command{
		Use:   "schemas",
		Short: "List tenant schemas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()

			schemas, err := e.tenants.ListTenants(ctx)
			if err != nil {
				return err
			}
			return printList(out, schemas)
		},
	}

	tablesCmd := &cobra.Command{
		Use:   "tables <schema>",
		Short: "List the tables of a schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()

			tables, err := e.tenants.ListTables(ctx, args[0])
			if err != nil {
				return err
			}
			return printList(out, tables)
		},
	}

	var floor, concurrency int
	reconcileCmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Provision every tenant schema and seed it up to the baseline row count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()

			if floor <= 0 {
				floor = e.cfg.SeedFloor
			}
			if concurrency <= 0 {
				concurrency = e.cfg.SeedConcurrency
			}
			report := service.NewReconciler(e.repo, e.tenants, floor, concurrency, e.logger).Run(ctx)
			return printReport(out, report)
		},
	}
	reconcileCmd.Flags().IntVar(&floor, "floor", 0, "Baseline rows per tenant (defaults to SEED_FLOOR)")
	reconcileCmd.Flags().IntVar(&concurrency, "concurrency", 0, "Schemas reconciled in parallel (defaults to SEED_CONCURRENCY)")

	root.AddCommand(createCmd, schemasCmd, tablesCmd, reconcileCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func (e *env) open() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	e.cfg = cfg
	e.logger = logger.NewLogger(cfg.AppEnv)

	dbConfig := config.GetDatabaseConfig()
	poolConfig := config.GetConnectionPoolConfig()
	e.db, err = config.NewDatabase(dbConfig, poolConfig, "production")
	if err != nil {
		return err
	}

	e.repo, err = postgres.NewPostgresRepository(e.db, cfg, poolConfig, e.logger)
	if err != nil {
		return err
	}
	e.tenants = service.NewTenantService(e.repo, postgres.NewGooseMigrator(dbConfig, e.logger), e.logger)
	return nil
}

func (e *env) close() {
	if err := config.CloseDatabase(e.db); err != nil {
		log.Printf("Warning: %v", err)
	}
	if e.logger != nil {
		_ = e.logger.Sync()
	}
}

func printList(format string, items []string) error {
	if format == "json" {
		return printJSON(items)
	}
	for _, item := range items {
		fmt.Println(item)
	}
	return nil
}

func printReport(format string, report service.ReconcileReport) error {
	failures := make(map[string]string, len(report.Failures))
	for schema, err := range report.Failures {
		failures[schema] = err.Error()
	}

	if format == "json" {
		return printJSON(map[string]any{
			"schemas":  report.Schemas,
			"inserted": report.Inserted,
			"failures": failures,
		})
	}

	schemas := append([]string(nil), report.Schemas...)
	sort.Strings(schemas)
	for _, schema := range schemas {
		if msg, failed := failures[schema]; failed {
			fmt.Printf("%s\tFAILED\t%s\n", schema, msg)
			continue
		}
		fmt.Printf("%s\tinserted=%d\n", schema, report.Inserted[schema])
	}
	if len(failures) > 0 {
		return fmt.Errorf("%d schemas failed", len(failures))
	}
	return nil
}

func printJSON(v any) error {
	p, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(p))
	return nil
}
