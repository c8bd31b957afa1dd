package domain

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTenantID(t *testing.T) {
	tests := []struct {
		name  string
		id    string
		valid bool
	}{
		{"simple", "acme", true},
		{"default", "public", true},
		{"mixed case", "Acme_2", true},
		{"leading underscore", "_tenant", true},
		{"max length", strings.Repeat("a", MaxTenantIDLength), true},
		{"empty", "", false},
		{"too long", strings.Repeat("a", MaxTenantIDLength+1), false},
		{"leading digit", "1acme", false},
		{"hyphen", "acme-corp", false},
		{"quote injection", `acme"; DROP SCHEMA public; --`, false},
		{"space", "acme corp", false},
		{"control character", "acme\x00", false},
		{"system schema", "pg_catalog", false},
		{"information schema", "information_schema", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTenantID(tt.id)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, ErrInvalidTenantID))
			}
		})
	}
}

func TestIsSystemSchema(t *testing.T) {
	for _, s := range []string{"information_schema", "pg_catalog", "pg_toast", "pg_temp_1", "pg_toast_temp_1", "PG_TEMP_3"} {
		assert.True(t, IsSystemSchema(s), s)
	}
	for _, s := range []string{"public", "acme", "pgadmin_tenant"} {
		assert.False(t, IsSystemSchema(s), s)
	}
}

func TestFilterTenantSchemas(t *testing.T) {
	got := FilterTenantSchemas([]string{"pg_catalog", "public", "information_schema", "acme", "pg_toast_temp_1", ""})

	assert.Equal(t, []string{"public", "acme"}, got)
}

func TestQuoteIdentifier(t *testing.T) {
	assert.Equal(t, `"acme"`, QuoteIdentifier("acme"))
	assert.Equal(t, `"a""b"`, QuoteIdentifier(`a"b`))
}

func TestExpenseFilterNormalize(t *testing.T) {
	f := ExpenseFilter{Page: 0, PageSize: 500}
	f.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, MaxPageSize, f.PageSize)

	f = ExpenseFilter{Page: 3, PageSize: 0}
	f.Normalize()
	assert.Equal(t, DefaultPageSize, f.PageSize)
	assert.Equal(t, 40, f.Offset())
}

func TestRoundAmount(t *testing.T) {
	assert.Equal(t, 42.5, RoundAmount(42.499999))
	assert.Equal(t, 5.01, RoundAmount(5.005000001))
}

func TestExpenseFilterNormalize_HugePageStaysPastTheEnd(t *testing.T) {
	f := ExpenseFilter{Page: math.MaxInt, PageSize: MaxPageSize}
	f.Normalize()

	assert.Equal(t, MaxPage, f.Page)
	assert.Positive(t, f.Offset())
	assert.Equal(t, (MaxPage-1)*MaxPageSize, f.Offset())
}
