package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTenantID      = errors.New("invalid tenant identifier")
	ErrTenantNotProvisioned = errors.New("tenant is not provisioned")
	ErrPoolExhausted        = errors.New("database connection pool exhausted")
	ErrExpenseNotFound      = errors.New("expense not found")
)

// SchemaSwitchError means a connection could not be pointed at a tenant schema.
// The connection involved is never handed out.
type SchemaSwitchError struct {
	Tenant string
	Err    error
}

func (e *SchemaSwitchError) Error() string {
	return fmt.Sprintf("failed to switch connection to schema %q: %v", e.Tenant, e.Err)
}

func (e *SchemaSwitchError) Unwrap() error { return e.Err }

// ProvisioningError is returned by tenant creation once every fallback is exhausted.
type ProvisioningError struct {
	Tenant string
	Step   string
	Err    error
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("failed to provision tenant %q (%s): %v", e.Tenant, e.Step, e.Err)
}

func (e *ProvisioningError) Unwrap() error { return e.Err }

// EnumerationError wraps a failed schema catalog listing.
type EnumerationError struct {
	Err error
}

func (e *EnumerationError) Error() string {
	return fmt.Sprintf("failed to enumerate schemas: %v", e.Err)
}

func (e *EnumerationError) Unwrap() error { return e.Err }

// SeedingError wraps a failure while reconciling a single tenant.
type SeedingError struct {
	Tenant string
	Err    error
}

func (e *SeedingError) Error() string {
	return fmt.Sprintf("failed to seed tenant %q: %v", e.Tenant, e.Err)
}

func (e *SeedingError) Unwrap() error { return e.Err }
