package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/kingrain94/tenant-expense-api/internal/domain"
)

const createBatchSize = 100

type ExpenseRepository struct {
	scope *tenantScope
}

func NewExpenseRepository(provider *ConnectionProvider, catalog *Catalog) *ExpenseRepository {
	return &ExpenseRepository{
		scope: &tenantScope{provider: provider, catalog: catalog},
	}
}

func (r *ExpenseRepository) Count(ctx context.Context, tenantID string) (int64, error) {
	var total int64
	err := r.scope.run(ctx, tenantID, func(db *gorm.DB) error {
		return db.Model(&domain.Expense{}).Count(&total).Error
	})
	return total, err
}

// List returns one page of expenses, newest first.
func (r *ExpenseRepository) List(ctx context.Context, tenantID string, filter domain.ExpenseFilter) (*domain.ExpensePage, error) {
	filter.Normalize()
	page := &domain.ExpensePage{Page: filter.Page, PageSize: filter.PageSize, Items: []domain.Expense{}}

	err := r.scope.run(ctx, tenantID, func(db *gorm.DB) error {
		if err := db.Model(&domain.Expense{}).Count(&page.Total).Error; err != nil {
			return err
		}
		return db.Order("id DESC").
			Offset(filter.Offset()).
			Limit(filter.PageSize).
			Find(&page.Items).Error
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// ListAfter returns up to limit expenses with id > afterID in ascending order.
func (r *ExpenseRepository) ListAfter(ctx context.Context, tenantID string, afterID int64, limit int) ([]domain.Expense, error) {
	var items []domain.Expense
	err := r.scope.run(ctx, tenantID, func(db *gorm.DB) error {
		return db.Where("id > ?", afterID).Order("id ASC").Limit(limit).Find(&items).Error
	})
	return items, err
}

func (r *ExpenseRepository) Create(ctx context.Context, tenantID string, expense *domain.Expense) error {
	expense.Amount = domain.RoundAmount(expense.Amount)
	return r.scope.run(ctx, tenantID, func(db *gorm.DB) error {
		return db.Create(expense).Error
	})
}

func (r *ExpenseRepository) CreateBatch(ctx context.Context, tenantID string, expenses []domain.Expense) error {
	if len(expenses) == 0 {
		return nil
	}
	return r.scope.run(ctx, tenantID, func(db *gorm.DB) error {
		return db.CreateInBatches(expenses, createBatchSize).Error
	})
}

func (r *ExpenseRepository) Delete(ctx context.Context, tenantID string, id int64) error {
	return r.scope.run(ctx, tenantID, func(db *gorm.DB) error {
		result := db.Delete(&domain.Expense{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrExpenseNotFound
		}
		return nil
	})
}

func (r *ExpenseRepository) DeleteAll(ctx context.Context, tenantID string) (int64, error) {
	var deleted int64
	err := r.scope.run(ctx, tenantID, func(db *gorm.DB) error {
		result := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&domain.Expense{})
		deleted = result.RowsAffected
		return result.Error
	})
	return deleted, err
}

// DeleteUpTo removes every expense with id <= throughID.
func (r *ExpenseRepository) DeleteUpTo(ctx context.Context, tenantID string, throughID int64) (int64, error) {
	var deleted int64
	err := r.scope.run(ctx, tenantID, func(db *gorm.DB) error {
		result := db.Where("id <= ?", throughID).Delete(&domain.Expense{})
		deleted = result.RowsAffected
		return result.Error
	})
	return deleted, err
}
