package dto

import "github.com/kingrain94/tenant-expense-api/internal/domain"

func (r *CreateExpenseRequest) ToExpense() *domain.Expense {
	return &domain.Expense{
		Description: r.Description,
		Amount:      domain.RoundAmount(r.Amount),
	}
}

func FromExpense(e *domain.Expense) *ExpenseResponse {
	return &ExpenseResponse{
		ID:          e.ID,
		Description: e.Description,
		Amount:      e.Amount,
	}
}

func FromExpensePage(page *domain.ExpensePage) *ListExpensesResponse {
	items := make([]ExpenseResponse, len(page.Items))
	for i := range page.Items {
		items[i] = *FromExpense(&page.Items[i])
	}
	return &ListExpensesResponse{
		Items:    items,
		Page:     page.Page,
		PageSize: page.PageSize,
		Total:    page.Total,
	}
}
