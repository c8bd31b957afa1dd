package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultTenant is the schema used when a request names no tenant.
const DefaultTenant = "public"

// MaxTenantIDLength is PostgreSQL's identifier limit (NAMEDATALEN - 1).
const MaxTenantIDLength = 63

var tenantIDPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// systemSchemaNames and systemSchemaPrefixes are never treated as tenants.
var (
	systemSchemaNames    = []string{"information_schema"}
	systemSchemaPrefixes = []string{"pg_"}
)

// ValidateTenantID checks a tenant identifier against the allow-list used for
// every schema name that reaches DDL or SET search_path.
func ValidateTenantID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty identifier", ErrInvalidTenantID)
	}
	if len(id) > MaxTenantIDLength {
		return fmt.Errorf("%w: %q exceeds %d characters", ErrInvalidTenantID, id, MaxTenantIDLength)
	}
	if !tenantIDPattern.MatchString(id) {
		return fmt.Errorf("%w: %q must match %s", ErrInvalidTenantID, id, tenantIDPattern.String())
	}
	if IsSystemSchema(id) {
		return fmt.Errorf("%w: %q is a system schema", ErrInvalidTenantID, id)
	}
	return nil
}

// QuoteIdentifier renders a schema name as a PostgreSQL quoted identifier.
func QuoteIdentifier(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// IsSystemSchema reports whether a schema belongs to the database itself.
func IsSystemSchema(name string) bool {
	lower := strings.ToLower(name)
	for _, n := range systemSchemaNames {
		if lower == n {
			return true
		}
	}
	for _, p := range systemSchemaPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

// FilterTenantSchemas drops system schemas from a catalog listing.
func FilterTenantSchemas(schemas []string) []string {
	tenants := make([]string, 0, len(schemas))
	for _, s := range schemas {
		if s == "" || IsSystemSchema(s) {
			continue
		}
		tenants = append(tenants, s)
	}
	return tenants
}
