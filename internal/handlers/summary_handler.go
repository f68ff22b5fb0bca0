package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"centavo/internal/dates"
	apperrors "centavo/internal/errors"
	"centavo/internal/services"
)

// SummaryHandler serves the monthly summary view.
type SummaryHandler struct {
	expenseService services.ExpenseServicer
}

// NewSummaryHandler creates a new SummaryHandler
func NewSummaryHandler(expenseService services.ExpenseServicer) *SummaryHandler {
	return &SummaryHandler{expenseService: expenseService}
}

// GetMonthlySummary returns the month's total, expense count, and the
// per-category breakdown with percent-of-total, largest category first.
func (h *SummaryHandler) GetMonthlySummary(c *gin.Context) {
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

	summary, err := h.expenseService.MonthlySummary(userID, q.Month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
