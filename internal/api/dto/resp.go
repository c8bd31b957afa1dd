package dto

// ExpenseResponse represents a single expense in the response
type ExpenseResponse struct {
	ID          int64   `json:"id" example:"1"`
	Description string  `json:"description" example:"Taxi"`
	Amount      float64 `json:"amount" example:"42.5"`
}

// ListExpensesResponse represents one page of expenses
type ListExpensesResponse struct {
	Items    []ExpenseResponse `json:"items"`
	Page     int               `json:"page" example:"1"`
	PageSize int               `json:"page_size" example:"20"`
	Total    int64             `json:"total" example:"30"`
}

type DeleteExpensesResponse struct {
	Deleted int64 `json:"deleted" example:"30"`
}

type AcceptedResponse struct {
	Status   string `json:"status" example:"queued"`
	TenantID string `json:"tenant_id" example:"acme"`
}

type CurrentTenantResponse struct {
	CurrentTenant string `json:"currentTenant" example:"acme"`
}

type SearchPathResponse struct {
	SearchPath string `json:"search_path" example:"public"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// ExpenseEvent is published on the tenant's channel whenever its expenses change.
type ExpenseEvent struct {
	TenantID string           `json:"tenant_id" example:"acme"`
	Action   string           `json:"action" example:"created"`
	Expense  *ExpenseResponse `json:"expense,omitempty"`
	Deleted  int64            `json:"deleted,omitempty"`
}

const (
	ExpenseCreated = "created"
	ExpenseDeleted = "deleted"
	ExpensePurged  = "purged"
)
