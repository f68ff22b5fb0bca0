package services

import (
	"math"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"centavo/internal/dates"
	apperrors "centavo/internal/errors"
	"centavo/internal/models"
	"centavo/internal/pagination"
	"centavo/internal/storage"
)

// listQuery joins expenses with their category name. Soft-deleted
// categories still join, so historical expenses keep their original name.
const listQuery = `SELECT e.id, e.amount, e.date, e.note, c.name AS category
	 FROM expenses e
	 JOIN categories c ON c.id = e.category_id
	 WHERE e.user_id = ? `

const listOrder = ` ORDER BY e.date DESC, e.id DESC`

// expenseService handles expense business logic.
type expenseService struct {
	db *gorm.DB

	// now is swappable so the date-window filters are testable.
	now func() time.Time
}

// NewExpenseService creates a new ExpenseServicer.
func NewExpenseService(db *gorm.DB) ExpenseServicer {
	return &expenseService{db: db, now: time.Now}
}

// validateAmount rejects non-positive or non-finite amounts before any
// storage write happens.
func validateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return apperrors.ErrInvalidAmount
	}
	return nil
}

// noteArg maps a trimmed note to its stored form; blank notes become NULL.
func noteArg(note string) interface{} {
	n := strings.TrimSpace(note)
	if n == "" {
		return nil
	}
	return n
}

// checkCategory verifies the category exists, belongs to the user, and is
// still active.
func (s *expenseService) checkCategory(userID, categoryID int64) error {
	cat, err := storage.FetchOne[models.Category](s.db,
		"SELECT id FROM categories WHERE id = ? AND user_id = ? AND is_active = 1",
		categoryID, userID)
	if err != nil {
		return err
	}
	if cat == nil {
		return apperrors.ErrCategoryNotFound
	}
	return nil
}

// CreateExpense records a new expense for the user.
func (s *expenseService) CreateExpense(userID, categoryID int64, amount float64, date, note string) (*models.Expense, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if !dates.IsDayKey(date) {
		return nil, apperrors.WithField(apperrors.ErrInvalidInput, "date", "Date must be a YYYY-MM-DD calendar day")
	}
	if err := s.checkCategory(userID, categoryID); err != nil {
		return nil, err
	}

	ts := nowISO()
	_, err := storage.Exec(s.db,
		`INSERT INTO expenses (user_id, category_id, amount, date, note, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		userID, categoryID, amount, date, noteArg(note), ts, ts)
	if err != nil {
		return nil, err
	}

	// The pool is pinned to a single connection, so last_insert_rowid()
	// refers to the insert above.
	created, err := storage.FetchOne[models.Expense](s.db,
		`SELECT id, user_id, category_id, amount, date, note, created_at, updated_at
		 FROM expenses WHERE id = last_insert_rowid()`)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, apperrors.WithMessage(apperrors.ErrInternalServer, "Failed to save expense")
	}
	return created, nil
}

// UpdateExpense edits one of the user's expenses.
func (s *expenseService) UpdateExpense(userID, expenseID, categoryID int64, amount float64, date, note string) (*models.Expense, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if !dates.IsDayKey(date) {
		return nil, apperrors.WithField(apperrors.ErrInvalidInput, "date", "Date must be a YYYY-MM-DD calendar day")
	}
	if err := s.checkCategory(userID, categoryID); err != nil {
		return nil, err
	}

	rows, err := storage.Exec(s.db,
		`UPDATE expenses
		 SET category_id = ?, amount = ?, date = ?, note = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		categoryID, amount, date, noteArg(note), nowISO(), expenseID, userID)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, apperrors.ErrExpenseNotFound
	}

	updated, err := storage.FetchOne[models.Expense](s.db,
		`SELECT id, user_id, category_id, amount, date, note, created_at, updated_at
		 FROM expenses WHERE id = ? AND user_id = ?`, expenseID, userID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperrors.ErrExpenseNotFound
	}
	return updated, nil
}

// DeleteExpense hard-deletes an expense. The statement is scoped by
// user_id so an id alone can never remove another user's row.
func (s *expenseService) DeleteExpense(userID, expenseID int64) error {
	rows, err := storage.Exec(s.db,
		"DELETE FROM expenses WHERE id = ? AND user_id = ?", expenseID, userID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperrors.ErrExpenseNotFound
	}
	return nil
}

// ListExpenses returns the user's expenses in exactly one dashboard
// window, newest first. The week window is Monday to Sunday of the current
// week, clamped to the current calendar month.
func (s *expenseService) ListExpenses(userID int64, filter ExpenseFilter) ([]models.ExpenseRow, error) {
	now := s.now()
	month := dates.MonthKey(now)

	switch filter {
	case FilterToday:
		return storage.FetchAll[models.ExpenseRow](s.db,
			listQuery+"AND e.date = ?"+listOrder, userID, dates.DayKey(now))
	case FilterMonth:
		return storage.FetchAll[models.ExpenseRow](s.db,
			listQuery+"AND e.date LIKE ?"+listOrder, userID, month+"%")
	case FilterWeek:
		start, end, err := dates.ClampWeekToMonth(dates.WeekStart(now), month)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return storage.FetchAll[models.ExpenseRow](s.db,
			listQuery+"AND e.date BETWEEN ? AND ?"+listOrder,
			userID, dates.DayKey(start), dates.DayKey(end))
	default:
		return nil, apperrors.WithField(apperrors.ErrInvalidInput, "filter", "Filter must be today, week, or month")
	}
}

// ListHistory returns a page of the user's full expense history, newest
// first.
func (s *expenseService) ListHistory(userID int64, page pagination.PageRequest) (*pagination.PageResponse[models.ExpenseRow], error) {
	page = page.Normalized()

	total, err := storage.FetchOne[int64](s.db,
		"SELECT COUNT(*) FROM expenses WHERE user_id = ?", userID)
	if err != nil {
		return nil, err
	}

	limit, offset := page.Window()
	rows, err := storage.FetchAll[models.ExpenseRow](s.db,
		listQuery+listOrder+" LIMIT ? OFFSET ?", userID, limit, offset)
	if err != nil {
		return nil, err
	}

	result := pagination.NewPageResponse(rows, page, *total)
	return &result, nil
}

// MonthWeekGroups returns the month's expenses bucketed by Monday-started
// week, newest bucket first. Each bucket's range and label are clipped to
// the month, so a week spanning a month boundary never shows days of the
// adjacent month.
func (s *expenseService) MonthWeekGroups(userID int64, month string) ([]models.WeekGroup, error) {
	if !dates.IsMonthKey(month) {
		return nil, apperrors.WithField(apperrors.ErrInvalidInput, "month", "Month must be a YYYY-MM key")
	}

	rows, err := storage.FetchAll[models.ExpenseRow](s.db,
		listQuery+"AND e.date LIKE ?"+listOrder, userID, month+"%")
	if err != nil {
		return nil, err
	}

	buckets := make(map[string]*models.WeekGroup)
	var keys []string
	for _, row := range rows {
		day, err := dates.ParseDay(row.Date)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrStorage, err)
		}
		monday := dates.WeekStart(day)
		key := dates.DayKey(monday)

		group, ok := buckets[key]
		if !ok {
			start, end, err := dates.ClampWeekToMonth(monday, month)
			if err != nil {
				return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			label, err := dates.WeekRangeLabel(monday, month)
			if err != nil {
				return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			group = &models.WeekGroup{
				Start: dates.DayKey(start),
				End:   dates.DayKey(end),
				Label: label,
			}
			buckets[key] = group
			keys = append(keys, key)
		}
		group.Total += row.Amount
		group.Expenses = append(group.Expenses, row)
	}

	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	groups := make([]models.WeekGroup, 0, len(keys))
	for _, key := range keys {
		groups = append(groups, *buckets[key])
	}
	return groups, nil
}

// MonthlyTotal sums the user's spending for the YYYY-MM month key.
func (s *expenseService) MonthlyTotal(userID int64, month string) (float64, error) {
	if !dates.IsMonthKey(month) {
		return 0, apperrors.WithField(apperrors.ErrInvalidInput, "month", "Month must be a YYYY-MM key")
	}

	total, err := storage.FetchOne[float64](s.db,
		"SELECT IFNULL(SUM(amount), 0) FROM expenses WHERE user_id = ? AND date LIKE ?",
		userID, month+"%")
	if err != nil {
		return 0, err
	}
	return *total, nil
}

// monthStats is the scan target for the summary headline numbers.
type monthStats struct {
	Total float64
	Count int64
}

// MonthlySummary aggregates a month: headline total and count plus the
// per-category breakdown, largest first, with percent-of-total.
func (s *expenseService) MonthlySummary(userID int64, month string) (*MonthlySummary, error) {
	if !dates.IsMonthKey(month) {
		return nil, apperrors.WithField(apperrors.ErrInvalidInput, "month", "Month must be a YYYY-MM key")
	}

	stats, err := storage.FetchOne[monthStats](s.db,
		`SELECT IFNULL(SUM(amount), 0) AS total, COUNT(id) AS count
		 FROM expenses WHERE user_id = ? AND date LIKE ?`,
		userID, month+"%")
	if err != nil {
		return nil, err
	}

	byCategory, err := storage.FetchAll[models.CategoryTotal](s.db,
		`SELECT c.name AS category, IFNULL(SUM(e.amount), 0) AS total
		 FROM expenses e
		 JOIN categories c ON c.id = e.category_id
		 WHERE e.user_id = ? AND e.date LIKE ?
		 GROUP BY c.id
		 ORDER BY total DESC`,
		userID, month+"%")
	if err != nil {
		return nil, err
	}

	if stats.Total > 0 {
		for i := range byCategory {
			byCategory[i].Percent = byCategory[i].Total / stats.Total * 100
		}
	}

	return &MonthlySummary{
		Month:      month,
		Total:      stats.Total,
		Count:      stats.Count,
		Categories: byCategory,
	}, nil
}
