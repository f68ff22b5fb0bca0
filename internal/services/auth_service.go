package services

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "centavo/internal/errors"
	"centavo/internal/models"
	"centavo/internal/session"
	"centavo/internal/storage"
)

// nowISO returns the current instant as an ISO-8601 string, the stored
// form of every timestamp column.
func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// authService handles registration, login, and session restore.
type authService struct {
	db       *gorm.DB
	sessions *session.Manager
}

// NewAuthService creates a new AuthServicer.
func NewAuthService(db *gorm.DB, sessions *session.Manager) AuthServicer {
	return &authService{db: db, sessions: sessions}
}

// Usernames keep their case and match case-sensitively; emails are stored
// lower-cased.
func normalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new account. It does not establish a session:
// registering must never imply being logged in.
func (s *authService) Register(username, email, password string) (*models.User, error) {
	u := normalizeUsername(username)
	e := normalizeEmail(email)

	if u == "" {
		return nil, apperrors.WithField(apperrors.ErrInvalidInput, "username", "Username is required")
	}
	if e == "" {
		return nil, apperrors.WithField(apperrors.ErrInvalidInput, "email", "Email is required")
	}
	if strings.TrimSpace(password) == "" {
		return nil, apperrors.WithField(apperrors.ErrInvalidInput, "password", "Password is required")
	}

	// Pre-check both uniquenesses for a fast, friendly message. The real
	// guarantee is the UNIQUE constraint handled below; this check can race.
	existing, err := storage.FetchOne[models.User](s.db,
		"SELECT id FROM users WHERE username = ? COLLATE BINARY", u)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.ErrUsernameTaken
	}

	existing, err = storage.FetchOne[models.User](s.db,
		"SELECT id FROM users WHERE email = ?", e)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	_, err = storage.Exec(s.db,
		"INSERT INTO users (username, email, password_hash, created_at) VALUES (?, ?, ?, ?)",
		u, e, string(hash), nowISO())
	if err != nil {
		// A duplicate that slipped past the pre-check lands here.
		if target, ok := storage.UniqueViolation(err); ok {
			switch target {
			case "users.username":
				return nil, apperrors.ErrUsernameTaken
			case "users.email":
				return nil, apperrors.ErrEmailTaken
			}
		}
		return nil, err
	}

	created, err := storage.FetchOne[models.User](s.db,
		"SELECT id, username, email, created_at FROM users WHERE username = ? COLLATE BINARY", u)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, apperrors.WithMessage(apperrors.ErrInternalServer, "Failed to create account")
	}
	return created, nil
}

// Login authenticates by exact, case-sensitive username match, persists the
// device session, and returns the user.
func (s *authService) Login(username, password string) (*models.User, error) {
	u := normalizeUsername(username)

	if u == "" {
		return nil, apperrors.WithField(apperrors.ErrInvalidInput, "username", "Username is required")
	}
	if strings.TrimSpace(password) == "" {
		return nil, apperrors.WithField(apperrors.ErrInvalidInput, "password", "Password is required")
	}

	row, err := storage.FetchOne[models.User](s.db,
		"SELECT id, username, email, password_hash FROM users WHERE username = ? COLLATE BINARY", u)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, apperrors.ErrUserNotFound
	}

	if bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(password)) != nil {
		return nil, apperrors.ErrInvalidPassword
	}

	if err := s.sessions.Establish(row); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return row, nil
}

// Logout tears the session down. Clearing is best-effort and never fails
// the sign-out.
func (s *authService) Logout() {
	s.sessions.Clear()
}

// Restore rebuilds the session from the persisted user id at boot. Whatever
// goes wrong, the app simply stays anonymous; nothing is surfaced.
func (s *authService) Restore() *models.User {
	id, ok, err := s.sessions.PersistedID()
	if err != nil || !ok {
		return nil
	}

	user, err := s.GetUserByID(id)
	if err != nil {
		// The account may have been deleted since the id was saved.
		return nil
	}

	s.sessions.Set(user)
	return user
}

// GetUserByID retrieves a user by id.
func (s *authService) GetUserByID(id int64) (*models.User, error) {
	user, err := storage.FetchOne[models.User](s.db,
		"SELECT id, username, email, created_at FROM users WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.ErrUserNotFound
	}
	return user, nil
}
