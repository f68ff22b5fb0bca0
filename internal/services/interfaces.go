package services

import (
	"centavo/internal/models"
	"centavo/internal/pagination"
)

// AuthServicer defines the contract for registration, login, and the
// device-session lifecycle.
type AuthServicer interface {
	Register(username, email, password string) (*models.User, error)
	Login(username, password string) (*models.User, error)
	Logout()
	Restore() *models.User
	GetUserByID(id int64) (*models.User, error)
}

// CategoryServicer defines the contract for category business logic.
type CategoryServicer interface {
	ListCategories(userID int64) ([]models.Category, error)
	CreateCategory(userID int64, name string) (*models.Category, error)
	RenameCategory(userID, categoryID int64, name string) (*models.Category, error)
	DeactivateCategory(userID, categoryID int64)
}

// ExpenseFilter selects exactly one dashboard window.
type ExpenseFilter string

// Dashboard filters.
const (
	FilterToday ExpenseFilter = "today"
	FilterWeek  ExpenseFilter = "week"
	FilterMonth ExpenseFilter = "month"
)

// MonthlySummary aggregates one month of spending for the summary view.
type MonthlySummary struct {
	Month      string                 `json:"month"`
	Total      float64                `json:"total"`
	Count      int64                  `json:"count"`
	Categories []models.CategoryTotal `json:"categories"`
}

// ExpenseServicer defines the contract for expense business logic.
type ExpenseServicer interface {
	CreateExpense(userID, categoryID int64, amount float64, date, note string) (*models.Expense, error)
	UpdateExpense(userID, expenseID, categoryID int64, amount float64, date, note string) (*models.Expense, error)
	DeleteExpense(userID, expenseID int64) error
	ListExpenses(userID int64, filter ExpenseFilter) ([]models.ExpenseRow, error)
	ListHistory(userID int64, page pagination.PageRequest) (*pagination.PageResponse[models.ExpenseRow], error)
	MonthWeekGroups(userID int64, month string) ([]models.WeekGroup, error)
	MonthlyTotal(userID int64, month string) (float64, error)
	MonthlySummary(userID int64, month string) (*MonthlySummary, error)
}
