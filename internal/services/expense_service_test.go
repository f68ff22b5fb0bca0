package services

import (
	"math"
	"testing"
	"time"

	"gorm.io/gorm"

	"centavo/internal/models"
	"centavo/internal/pagination"
	"centavo/internal/storage"
	"centavo/internal/testutil"
)

// fixedDay pins the service clock to a calendar day so the dashboard
// windows are deterministic.
func fixedDay(t *testing.T, svc ExpenseServicer, day string) {
	t.Helper()
	concrete, ok := svc.(*expenseService)
	if !ok {
		t.Fatal("expected concrete expenseService")
	}
	when, err := time.Parse("2006-01-02", day)
	if err != nil {
		t.Fatalf("bad test day %q: %v", day, err)
	}
	concrete.now = func() time.Time { return when }
}

func newExpenseService(t *testing.T) (ExpenseServicer, *gorm.DB, *models.User, *models.Category) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	user := testutil.CreateTestUser(t, db)
	category := testutil.CreateTestCategory(t, db, user.ID, "Food")
	return NewExpenseService(db), db, user, category
}

func expenseCount(t *testing.T, db *gorm.DB, userID int64) int64 {
	t.Helper()
	count, err := storage.FetchOne[int64](db,
		"SELECT COUNT(*) FROM expenses WHERE user_id = ?", userID)
	if err != nil || count == nil {
		t.Fatalf("failed to count expenses: %v", err)
	}
	return *count
}

func TestCreateExpense(t *testing.T) {
	t.Run("creates with note", func(t *testing.T) {
		svc, _, user, category := newExpenseService(t)

		expense, err := svc.CreateExpense(user.ID, category.ID, 12.50, "2025-03-05", "lunch")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if expense.ID == 0 {
			t.Error("expected assigned id")
		}
		if expense.Amount != 12.50 || expense.Date != "2025-03-05" {
			t.Errorf("unexpected expense: %+v", expense)
		}
		if expense.Note == nil || *expense.Note != "lunch" {
			t.Errorf("note = %v, want lunch", expense.Note)
		}
		if expense.CreatedAt == "" || expense.UpdatedAt == "" {
			t.Error("expected timestamps")
		}
	})

	t.Run("blank note becomes null", func(t *testing.T) {
		svc, _, user, category := newExpenseService(t)

		expense, err := svc.CreateExpense(user.ID, category.ID, 5, "2025-03-05", "   ")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if expense.Note != nil {
			t.Errorf("note = %q, want nil", *expense.Note)
		}
	})

	t.Run("rejects invalid amounts before writing", func(t *testing.T) {
		svc, db, user, category := newExpenseService(t)

		for _, amount := range []float64{0, -5, math.NaN(), math.Inf(1), math.Inf(-1)} {
			_, err := svc.CreateExpense(user.ID, category.ID, amount, "2025-03-05", "")
			testutil.AssertAppError(t, err, "INVALID_AMOUNT")
		}
		if n := expenseCount(t, db, user.ID); n != 0 {
			t.Errorf("expense count = %d, want 0 after rejected amounts", n)
		}
	})

	t.Run("rejects malformed date", func(t *testing.T) {
		svc, _, user, category := newExpenseService(t)

		for _, date := range []string{"2025-3-5", "05/03/2025", "2025-03-32", ""} {
			_, err := svc.CreateExpense(user.ID, category.ID, 10, date, "")
			testutil.AssertAppErrorField(t, err, "date")
		}
	})

	t.Run("rejects foreign or inactive category", func(t *testing.T) {
		svc, db, user, category := newExpenseService(t)
		other := testutil.CreateTestUser(t, db)

		_, err := svc.CreateExpense(other.ID, category.ID, 10, "2025-03-05", "")
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")

		NewCategoryService(db).DeactivateCategory(user.ID, category.ID)
		_, err = svc.CreateExpense(user.ID, category.ID, 10, "2025-03-05", "")
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}

func TestUpdateExpense(t *testing.T) {
	t.Run("updates fields", func(t *testing.T) {
		svc, db, user, category := newExpenseService(t)
		other := testutil.CreateTestCategory(t, db, user.ID, "Transport")
		expense := testutil.CreateTestExpense(t, db, user.ID, category.ID, 10, "2025-03-05")

		updated, err := svc.UpdateExpense(user.ID, expense.ID, other.ID, 42.75, "2025-03-06", "bus pass")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if updated.CategoryID != other.ID || updated.Amount != 42.75 || updated.Date != "2025-03-06" {
			t.Errorf("unexpected expense: %+v", updated)
		}
		if updated.Note == nil || *updated.Note != "bus pass" {
			t.Errorf("note = %v, want bus pass", updated.Note)
		}
	})

	t.Run("not found for another user's expense", func(t *testing.T) {
		svc, db, user, category := newExpenseService(t)
		intruder := testutil.CreateTestUser(t, db)
		intruderCat := testutil.CreateTestCategory(t, db, intruder.ID, "Food")
		expense := testutil.CreateTestExpense(t, db, user.ID, category.ID, 10, "2025-03-05")

		_, err := svc.UpdateExpense(intruder.ID, expense.ID, intruderCat.ID, 99, "2025-03-06", "")
		testutil.AssertAppError(t, err, "EXPENSE_NOT_FOUND")

		row, err := storage.FetchOne[struct{ Amount float64 }](db,
			"SELECT amount FROM expenses WHERE id = ?", expense.ID)
		if err != nil || row == nil {
			t.Fatalf("failed to reload expense: %v", err)
		}
		if row.Amount != 10 {
			t.Errorf("amount = %v, want untouched 10", row.Amount)
		}
	})

	t.Run("rejects invalid amount", func(t *testing.T) {
		svc, db, user, category := newExpenseService(t)
		expense := testutil.CreateTestExpense(t, db, user.ID, category.ID, 10, "2025-03-05")

		_, err := svc.UpdateExpense(user.ID, expense.ID, category.ID, -1, "2025-03-05", "")
		testutil.AssertAppError(t, err, "INVALID_AMOUNT")
	})
}

func TestDeleteExpense(t *testing.T) {
	t.Run("deletes own expense", func(t *testing.T) {
		svc, db, user, category := newExpenseService(t)
		expense := testutil.CreateTestExpense(t, db, user.ID, category.ID, 10, "2025-03-05")

		if err := svc.DeleteExpense(user.ID, expense.ID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n := expenseCount(t, db, user.ID); n != 0 {
			t.Errorf("expense count = %d, want 0", n)
		}
	})

	t.Run("cannot delete another user's expense", func(t *testing.T) {
		svc, db, user, category := newExpenseService(t)
		intruder := testutil.CreateTestUser(t, db)
		expense := testutil.CreateTestExpense(t, db, user.ID, category.ID, 10, "2025-03-05")

		err := svc.DeleteExpense(intruder.ID, expense.ID)
		testutil.AssertAppError(t, err, "EXPENSE_NOT_FOUND")

		if n := expenseCount(t, db, user.ID); n != 1 {
			t.Errorf("expense count = %d, want the row to survive", n)
		}
	})

	t.Run("not found for unknown id", func(t *testing.T) {
		svc, _, user, _ := newExpenseService(t)
		err := svc.DeleteExpense(user.ID, 9999)
		testutil.AssertAppError(t, err, "EXPENSE_NOT_FOUND")
	})
}

func TestListExpenses(t *testing.T) {
	// 2025-03-05 is a Wednesday; its week runs Mon 2025-03-03 to Sun
	// 2025-03-09 and lies fully inside March.
	seed := func(t *testing.T) (ExpenseServicer, *models.User) {
		svc, db, user, category := newExpenseService(t)
		fixedDay(t, svc, "2025-03-05")
		for _, day := range []string{
			"2025-02-28", // previous month
			"2025-03-03", // Monday of the current week
			"2025-03-05", // today
			"2025-03-09", // Sunday of the current week
			"2025-03-10", // next week
		} {
			testutil.CreateTestExpense(t, db, user.ID, category.ID, 10, day)
		}
		return svc, user
	}

	datesOf := func(rows []models.ExpenseRow) []string {
		out := make([]string, len(rows))
		for i, row := range rows {
			out[i] = row.Date
		}
		return out
	}

	sameDates := func(got, want []string) bool {
		if len(got) != len(want) {
			return false
		}
		for i := range got {
			if got[i] != want[i] {
				return false
			}
		}
		return true
	}

	t.Run("today", func(t *testing.T) {
		svc, user := seed(t)
		rows, err := svc.ListExpenses(user.ID, FilterToday)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := datesOf(rows); !sameDates(got, []string{"2025-03-05"}) {
			t.Errorf("dates = %v, want only today", got)
		}
	})

	t.Run("week", func(t *testing.T) {
		svc, user := seed(t)
		rows, err := svc.ListExpenses(user.ID, FilterWeek)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := datesOf(rows); !sameDates(got, []string{"2025-03-09", "2025-03-05", "2025-03-03"}) {
			t.Errorf("dates = %v, want Mon-Sun of the current week, newest first", got)
		}
	})

	t.Run("month", func(t *testing.T) {
		svc, user := seed(t)
		rows, err := svc.ListExpenses(user.ID, FilterMonth)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := datesOf(rows); !sameDates(got, []string{"2025-03-10", "2025-03-09", "2025-03-05", "2025-03-03"}) {
			t.Errorf("dates = %v, want all of March, newest first", got)
		}
	})

	t.Run("week window is clamped to the month", func(t *testing.T) {
		svc, db, user, category := newExpenseService(t)
		// Sat 2025-03-01 belongs to the week of Mon 2025-02-24; clamped
		// to March only 2025-03-01 itself remains in the window.
		fixedDay(t, svc, "2025-03-01")
		testutil.CreateTestExpense(t, db, user.ID, category.ID, 10, "2025-02-28")
		testutil.CreateTestExpense(t, db, user.ID, category.ID, 20, "2025-03-01")

		rows, err := svc.ListExpenses(user.ID, FilterWeek)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := datesOf(rows); !sameDates(got, []string{"2025-03-01"}) {
			t.Errorf("dates = %v, want the February days clipped away", got)
		}
	})

	t.Run("same-day rows order newest insert first", func(t *testing.T) {
		svc, db, user, category := newExpenseService(t)
		fixedDay(t, svc, "2025-03-05")
		first := testutil.CreateTestExpense(t, db, user.ID, category.ID, 1, "2025-03-05")
		second := testutil.CreateTestExpense(t, db, user.ID, category.ID, 2, "2025-03-05")

		rows, err := svc.ListExpenses(user.ID, FilterToday)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(rows) != 2 || rows[0].ID != second.ID || rows[1].ID != first.ID {
			t.Errorf("unexpected order: %+v", rows)
		}
	})

	t.Run("rejects unknown filter", func(t *testing.T) {
		svc, _, user, _ := newExpenseService(t)
		_, err := svc.ListExpenses(user.ID, ExpenseFilter("year"))
		testutil.AssertAppErrorField(t, err, "filter")
	})
}

func TestListHistory(t *testing.T) {
	svc, db, user, category := newExpenseService(t)
	for _, day := range []string{"2025-03-01", "2025-03-02", "2025-03-03"} {
		testutil.CreateTestExpense(t, db, user.ID, category.ID, 10, day)
	}

	page, err := svc.ListHistory(user.ID, pagination.PageRequest{Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Data) != 2 {
		t.Fatalf("len = %d, want 2", len(page.Data))
	}
	if page.Data[0].Date != "2025-03-03" || page.Data[1].Date != "2025-03-02" {
		t.Errorf("unexpected first page: %+v", page.Data)
	}
	if page.TotalItems != 3 || page.TotalPages != 2 {
		t.Errorf("totals = (%d items, %d pages), want (3, 2)", page.TotalItems, page.TotalPages)
	}

	page, err = svc.ListHistory(user.ID, pagination.PageRequest{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Data) != 1 || page.Data[0].Date != "2025-03-01" {
		t.Errorf("unexpected second page: %+v", page.Data)
	}

	// Zero values fall back to the defaults.
	page, err = svc.ListHistory(user.ID, pagination.PageRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Page != 1 || page.PageSize != 20 || len(page.Data) != 3 {
		t.Errorf("defaults not applied: page=%d size=%d len=%d", page.Page, page.PageSize, len(page.Data))
	}
}

func TestMonthWeekGroups(t *testing.T) {
	t.Run("buckets by week, newest first", func(t *testing.T) {
		svc, db, user, category := newExpenseService(t)
		testutil.CreateTestExpense(t, db, user.ID, category.ID, 10, "2025-03-03")
		testutil.CreateTestExpense(t, db, user.ID, category.ID, 15, "2025-03-09")
		testutil.CreateTestExpense(t, db, user.ID, category.ID, 20, "2025-03-10")
		testutil.CreateTestExpense(t, db, user.ID, category.ID, 99, "2025-02-28")

		groups, err := svc.MonthWeekGroups(user.ID, "2025-03")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(groups) != 2 {
			t.Fatalf("len = %d, want 2 weeks", len(groups))
		}

		// Week of Mar 10 first.
		if groups[0].Start != "2025-03-10" || groups[0].End != "2025-03-16" {
			t.Errorf("groups[0] range = %s..%s", groups[0].Start, groups[0].End)
		}
		if groups[0].Label != "Mar 10 – March 16" {
			t.Errorf("groups[0].Label = %q", groups[0].Label)
		}
		if groups[0].Total != 20 || len(groups[0].Expenses) != 1 {
			t.Errorf("groups[0] total = %v with %d rows", groups[0].Total, len(groups[0].Expenses))
		}

		if groups[1].Start != "2025-03-03" || groups[1].End != "2025-03-09" {
			t.Errorf("groups[1] range = %s..%s", groups[1].Start, groups[1].End)
		}
		if groups[1].Label != "Mar 3 – March 9" {
			t.Errorf("groups[1].Label = %q", groups[1].Label)
		}
		if groups[1].Total != 25 || len(groups[1].Expenses) != 2 {
			t.Errorf("groups[1] total = %v with %d rows", groups[1].Total, len(groups[1].Expenses))
		}
	})

	t.Run("boundary week is clipped to the month", func(t *testing.T) {
		svc, db, user, category := newExpenseService(t)
		// Sat 2025-03-01 sits in the week of Mon 2025-02-24.
		testutil.CreateTestExpense(t, db, user.ID, category.ID, 10, "2025-03-01")

		groups, err := svc.MonthWeekGroups(user.ID, "2025-03")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(groups) != 1 {
			t.Fatalf("len = %d, want 1", len(groups))
		}
		if groups[0].Start != "2025-03-01" || groups[0].End != "2025-03-02" {
			t.Errorf("range = %s..%s, want 2025-03-01..2025-03-02", groups[0].Start, groups[0].End)
		}
		if groups[0].Label != "Mar 1 – March 2" {
			t.Errorf("label = %q", groups[0].Label)
		}
	})

	t.Run("empty month", func(t *testing.T) {
		svc, _, user, _ := newExpenseService(t)
		groups, err := svc.MonthWeekGroups(user.ID, "2025-03")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(groups) != 0 {
			t.Errorf("len = %d, want 0", len(groups))
		}
	})

	t.Run("rejects malformed month key", func(t *testing.T) {
		svc, _, user, _ := newExpenseService(t)
		_, err := svc.MonthWeekGroups(user.ID, "2025-3")
		testutil.AssertAppErrorField(t, err, "month")
	})
}

func TestMonthlyTotal(t *testing.T) {
	svc, db, user, category := newExpenseService(t)
	testutil.CreateTestExpense(t, db, user.ID, category.ID, 100, "2025-03-01")
	testutil.CreateTestExpense(t, db, user.ID, category.ID, 250, "2025-03-15")
	testutil.CreateTestExpense(t, db, user.ID, category.ID, 50, "2025-03-31")
	testutil.CreateTestExpense(t, db, user.ID, category.ID, 999, "2025-04-01")

	total, err := svc.MonthlyTotal(user.ID, "2025-03")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 400 {
		t.Errorf("total = %v, want 400", total)
	}

	total, err = svc.MonthlyTotal(user.ID, "2025-05")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 0 {
		t.Errorf("total = %v, want 0 for an empty month", total)
	}

	_, err = svc.MonthlyTotal(user.ID, "March 2025")
	testutil.AssertAppErrorField(t, err, "month")
}

func TestMonthlySummary(t *testing.T) {
	t.Run("breakdown is largest first with percentages", func(t *testing.T) {
		svc, db, user, food := newExpenseService(t)
		transport := testutil.CreateTestCategory(t, db, user.ID, "Transport")
		testutil.CreateTestExpense(t, db, user.ID, food.ID, 30, "2025-03-01")
		testutil.CreateTestExpense(t, db, user.ID, food.ID, 45, "2025-03-02")
		testutil.CreateTestExpense(t, db, user.ID, transport.ID, 25, "2025-03-03")

		summary, err := svc.MonthlySummary(user.ID, "2025-03")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if summary.Month != "2025-03" || summary.Total != 100 || summary.Count != 3 {
			t.Errorf("headline = %+v, want month 2025-03 total 100 count 3", summary)
		}
		if len(summary.Categories) != 2 {
			t.Fatalf("len = %d, want 2 categories", len(summary.Categories))
		}
		if summary.Categories[0].Category != "Food" || summary.Categories[0].Total != 75 {
			t.Errorf("categories[0] = %+v, want Food 75", summary.Categories[0])
		}
		if summary.Categories[0].Percent != 75 || summary.Categories[1].Percent != 25 {
			t.Errorf("percents = %v, %v, want 75, 25",
				summary.Categories[0].Percent, summary.Categories[1].Percent)
		}
	})

	t.Run("empty month", func(t *testing.T) {
		svc, _, user, _ := newExpenseService(t)

		summary, err := svc.MonthlySummary(user.ID, "2025-03")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if summary.Total != 0 || summary.Count != 0 || len(summary.Categories) != 0 {
			t.Errorf("expected empty summary, got %+v", summary)
		}
	})
}
