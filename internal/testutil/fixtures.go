package testutil

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"centavo/internal/models"
	"centavo/internal/storage"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

func isoNow() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// CreateTestUser creates a user with a hashed password and unique
// username/email. The plaintext password is always "password123".
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	n := nextID()
	return CreateTestUserNamed(t, db, fmt.Sprintf("user%d", n), fmt.Sprintf("user%d@test.com", n))
}

// CreateTestUserNamed creates a user with the given username and email.
func CreateTestUserNamed(t *testing.T, db *gorm.DB, username, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	_, err = storage.Exec(db,
		"INSERT INTO users (username, email, password_hash, created_at) VALUES (?, ?, ?, ?)",
		username, email, string(hash), isoNow())
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	user, err := storage.FetchOne[models.User](db,
		"SELECT id, username, email, password_hash, created_at FROM users WHERE username = ?", username)
	if err != nil || user == nil {
		t.Fatalf("failed to load test user: %v", err)
	}
	return user
}

// CreateTestCategory creates an active category with the given name.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID int64, name string) *models.Category {
	t.Helper()

	_, err := storage.Exec(db,
		"INSERT INTO categories (user_id, name, created_at, is_active) VALUES (?, ?, ?, 1)",
		userID, name, isoNow())
	if err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}

	category, err := storage.FetchOne[models.Category](db,
		"SELECT id, user_id, name, is_active, created_at FROM categories WHERE user_id = ? AND name = ?",
		userID, name)
	if err != nil || category == nil {
		t.Fatalf("failed to load test category: %v", err)
	}
	return category
}

// CreateTestExpense creates an expense on the given calendar day.
func CreateTestExpense(t *testing.T, db *gorm.DB, userID, categoryID int64, amount float64, date string) *models.Expense {
	t.Helper()

	ts := isoNow()
	_, err := storage.Exec(db,
		`INSERT INTO expenses (user_id, category_id, amount, date, note, created_at, updated_at)
		 VALUES (?, ?, ?, ?, NULL, ?, ?)`,
		userID, categoryID, amount, date, ts, ts)
	if err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}

	expense, err := storage.FetchOne[models.Expense](db,
		`SELECT id, user_id, category_id, amount, date, note, created_at, updated_at
		 FROM expenses WHERE id = last_insert_rowid()`)
	if err != nil || expense == nil {
		t.Fatalf("failed to load test expense: %v", err)
	}
	return expense
}

// MemorySessionStore is an in-memory session.Store for tests.
type MemorySessionStore struct {
	mu     sync.Mutex
	userID int64
	set    bool

	// SaveErr and ClearErr, when set, are returned by Save and Clear.
	SaveErr  error
	ClearErr error
}

// Save records the user id in memory.
func (s *MemorySessionStore) Save(userID int64) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = userID
	s.set = true
	return nil
}

// Load returns the recorded user id, if any.
func (s *MemorySessionStore) Load() (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID, s.set, nil
}

// Clear forgets the recorded user id.
func (s *MemorySessionStore) Clear() error {
	if s.ClearErr != nil {
		return s.ClearErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = 0
	s.set = false
	return nil
}
