package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"centavo/internal/dates"
	apperrors "centavo/internal/errors"
	"centavo/internal/pagination"
	"centavo/internal/services"
)

// ExpenseHandler handles expense-related requests
type ExpenseHandler struct {
	expenseService services.ExpenseServicer
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(expenseService services.ExpenseServicer) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// ExpenseRequest represents the payload for creating or updating an expense.
// Amount is left unvalidated here so the service can reject zero, negative,
// and non-finite values uniformly before anything reaches storage.
type ExpenseRequest struct {
	CategoryID int64   `json:"category_id" binding:"required"`
	Amount     float64 `json:"amount"`
	Date       string  `json:"date" binding:"required"`
	Note       string  `json:"note" binding:"max=500"`
}

// listExpensesQuery holds the dashboard filter query parameters
type listExpensesQuery struct {
	Filter string `form:"filter" binding:"omitempty,expense_filter"`
}

// monthQuery holds the month-key query parameter
type monthQuery struct {
	Month string `form:"month" binding:"omitempty,month_key"`
}

// CreateExpense records a new expense
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	expense, err := h.expenseService.CreateExpense(userID, req.CategoryID, req.Amount, req.Date, req.Note)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"expense": expense})
}

// UpdateExpense edits an expense owned by the user
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	expense, err := h.expenseService.UpdateExpense(userID, expenseID, req.CategoryID, req.Amount, req.Date, req.Note)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// DeleteExpense hard-deletes an expense owned by the user
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.expenseService.DeleteExpense(userID, expenseID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// ListExpenses returns the dashboard list for one of the today, week, or
// month windows, defaulting to today.
func (h *ExpenseHandler) ListExpenses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q listExpensesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if q.Filter == "" {
		q.Filter = string(services.FilterToday)
	}

	expenses, err := h.expenseService.ListExpenses(userID, services.ExpenseFilter(q.Filter))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expenses": expenses})
}

// ListHistory returns a page of the user's full expense history
func (h *ExpenseHandler) ListHistory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.expenseService.ListHistory(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// MonthWeekGroups returns the month view: expenses bucketed by
// Monday-started weeks clipped to the month, defaulting to the current month.
func (h *ExpenseHandler) MonthWeekGroups(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q monthQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if q.Month == "" {
		q.Month = dates.MonthKey(time.Now())
	}

	groups, err := h.expenseService.MonthWeekGroups(userID, q.Month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"month": q.Month, "weeks": groups})
}

// MonthlyTotal returns the headline spend for a month, defaulting to the
// current month. The dashboard card polls this.
func (h *ExpenseHandler) MonthlyTotal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q monthQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if q.Month == "" {
		q.Month = dates.MonthKey(time.Now())
	}

	total, err := h.expenseService.MonthlyTotal(userID, q.Month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"month": q.Month, "total": total})
}
