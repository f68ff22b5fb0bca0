package models

// Expense belongs to exactly one user and one category. Date is a calendar
// day in YYYY-MM-DD form with no time-of-day component.
type Expense struct {
	ID         int64   `json:"id"`
	UserID     int64   `json:"user_id"`
	CategoryID int64   `json:"category_id"`
	Amount     float64 `json:"amount"`
	Date       string  `json:"date"`
	Note       *string `json:"note"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

// ExpenseRow is an expense joined with its category name for list views.
type ExpenseRow struct {
	ID       int64   `json:"id"`
	Amount   float64 `json:"amount"`
	Date     string  `json:"date"`
	Note     *string `json:"note"`
	Category string  `json:"category"`
}

// CategoryTotal is one slice of the monthly per-category breakdown.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Percent  float64 `json:"percent"`
}

// WeekGroup is a Monday-to-Sunday bucket of the month view. Start and End
// are clamped to the month being displayed so a week spanning a month
// boundary never leaks adjacent-month days into the group.
type WeekGroup struct {
	Start    string       `json:"start"`
	End      string       `json:"end"`
	Label    string       `json:"label"`
	Total    float64      `json:"total"`
	Expenses []ExpenseRow `json:"expenses"`
}
