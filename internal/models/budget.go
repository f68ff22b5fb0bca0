package models

// Budget is a per-month spending cap. The table exists for forward
// compatibility; no operation reads or writes it yet.
type Budget struct {
	ID        int64   `json:"id"`
	UserID    int64   `json:"user_id"`
	Month     string  `json:"month"`
	Amount    float64 `json:"amount"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}
