package dto

import "github.com/kingrain94/tenant-expense-api/internal/domain"

type CreateExpenseRequest struct {
	Description string  `json:"description" binding:"required" example:"Taxi"`
	Amount      float64 `json:"amount" example:"42.50"`
}

// ListExpensesRequest binds the pagination query string of GET /expenses.
type ListExpensesRequest struct {
	Page     int `form:"page" example:"1"`
	PageSize int `form:"page_size" example:"20"`
}

func (r ListExpensesRequest) ToFilter() domain.ExpenseFilter {
	f := domain.ExpenseFilter{Page: r.Page, PageSize: r.PageSize}
	f.Normalize()
	return f
}

// ExportTenantRequest binds the query string of POST /tenants/{tenantId}/export.
type ExportTenantRequest struct {
	Purge bool `form:"purge" example:"false"`
}
