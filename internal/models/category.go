package models

// Category belongs to exactly one user. Deleting a category only clears
// is_active so historical expenses keep resolving its name.
type Category struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Name      string `json:"name"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}
