package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kingrain94/tenant-expense-api/internal/api/dto"
	"github.com/kingrain94/tenant-expense-api/internal/domain"
)

//go:generate mockery --name ExpenseService --output ../mocks
type ExpenseService interface {
	CurrentTenant(ctx context.Context) string
	List(ctx context.Context, filter domain.ExpenseFilter) (*dto.ListExpensesResponse, error)
	Create(ctx context.Context, req dto.CreateExpenseRequest) (*dto.ExpenseResponse, error)
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) (int64, error)
}

// ExpenseHandler serves the expenses of the tenant bound to each request.
type ExpenseHandler struct {
	*BaseHandler
	service ExpenseService
}

func NewExpenseHandler(service ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{service: service}
}

// ListExpenses godoc
// @Summary List expenses
// @Description List the bound tenant's expenses, newest first
// @Tags expenses
// @Produce json
// @Param X-Tenant header string false "Tenant identifier, defaults to public"
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size, at most 100" default(20)
// @Success 200 {object} dto.ListExpensesResponse
// @Failure 400 {object} dto.Error
// @Failure 404 {object} dto.Error
// @Failure 503 {object} dto.Error
// @Router /expenses [get]
func (h *ExpenseHandler) ListExpenses(c *gin.Context) {
	var req dto.ListExpensesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error{Error: err.Error()})
		return
	}

	page, err := h.service.List(h.RequestCtx(c), req.ToFilter())
	if err != nil {
		h.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// CreateExpense godoc
// @Summary Create expense
// @Description Store an expense in the bound tenant's schema
// @Tags expenses
// @Accept json
// @Produce json
// @Param X-Tenant header string false "Tenant identifier, defaults to public"
// @Param body body dto.CreateExpenseRequest true "Expense object"
// @Success 201 {object} dto.ExpenseResponse
// @Failure 400 {object} dto.Error
// @Failure 404 {object} dto.Error
// @Failure 503 {object} dto.Error
// @Router /expenses [post]
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	var req dto.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error{Error: err.Error()})
		return
	}

	expense, err := h.service.Create(h.RequestCtx(c), req)
	if err != nil {
		h.WriteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, expense)
}

// DeleteExpense godoc
// @Summary Delete expense
// @Tags expenses
// @Param X-Tenant header string false "Tenant identifier, defaults to public"
// @Param id path int true "Expense ID"
// @Success 204
// @Failure 400 {object} dto.Error
// @Failure 404 {object} dto.Error
// @Router /expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, dto.Error{Error: "invalid expense id"})
		return
	}

	if err := h.service.Delete(h.RequestCtx(c), id); err != nil {
		h.WriteError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteExpenses godoc
// @Summary Delete all expenses
// @Description Remove every expense of the bound tenant
// @Tags expenses
// @Produce json
// @Param X-Tenant header string false "Tenant identifier, defaults to public"
// @Success 200 {object} dto.DeleteExpensesResponse
// @Failure 404 {object} dto.Error
// @Router /expenses [delete]
func (h *ExpenseHandler) DeleteExpenses(c *gin.Context) {
	deleted, err := h.service.DeleteAll(h.RequestCtx(c))
	if err != nil {
		h.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.DeleteExpensesResponse{Deleted: deleted})
}
