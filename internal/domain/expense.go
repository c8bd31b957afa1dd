package domain

import "math"

// ExpenseTable is the table every tenant schema must contain.
const ExpenseTable = "expense"

type Expense struct {
	ID          int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	Description string  `gorm:"type:text;not null" json:"description"`
	Amount      float64 `gorm:"type:numeric(10,2);not null" json:"amount"`
}

// TableName is unqualified on purpose: the connection's search_path picks the schema.
func (Expense) TableName() string {
	return ExpenseTable
}

type ExpenseFilter struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxPage keeps Offset well inside int range.
	MaxPage = 10_000_000
)

// Normalize clamps page and page size into their accepted ranges.
func (f *ExpenseFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Page > MaxPage {
		f.Page = MaxPage
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
}

func (f ExpenseFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

type ExpensePage struct {
	Items    []Expense
	Page     int
	PageSize int
	Total    int64
}

// RoundAmount rounds a currency value to cents.
func RoundAmount(v float64) float64 {
	return math.Round(v*100) / 100
}
