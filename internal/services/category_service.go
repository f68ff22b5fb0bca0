package services

import (
	"strings"

	"gorm.io/gorm"

	apperrors "centavo/internal/errors"
	"centavo/internal/models"
	"centavo/internal/storage"
)

// defaultCategories is seeded once for every new user.
var defaultCategories = []string{"Food", "Transport", "Shopping", "Bill", "Health", "Other"}

// categoryService handles category business logic.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// normalizeCategoryName trims and collapses all interior whitespace runs to
// a single space.
func normalizeCategoryName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// ListCategories returns the user's active categories alphabetically,
// seeding the defaults first when the user has none yet.
func (s *categoryService) ListCategories(userID int64) ([]models.Category, error) {
	s.ensureDefaults(userID)

	return storage.FetchAll[models.Category](s.db,
		`SELECT id, user_id, name, is_active, created_at FROM categories
		 WHERE user_id = ? AND is_active = 1
		 ORDER BY name ASC`, userID)
}

// ensureDefaults seeds the fixed default categories for a user with zero
// categories. The six inserts run inside one transaction so seeding is all
// or nothing; a failed seed is swallowed and the user simply starts empty.
func (s *categoryService) ensureDefaults(userID int64) {
	count, err := storage.FetchOne[int64](s.db,
		"SELECT COUNT(*) FROM categories WHERE user_id = ?", userID)
	if err != nil || count == nil || *count > 0 {
		return
	}

	_ = s.db.Transaction(func(tx *gorm.DB) error {
		for _, name := range defaultCategories {
			if _, err := storage.Exec(tx,
				"INSERT INTO categories (user_id, name, created_at, is_active) VALUES (?, ?, ?, 1)",
				userID, name, nowISO()); err != nil {
				return err
			}
		}
		return nil
	})
}

// CreateCategory adds a category after normalizing its name and rejecting
// blank or duplicate names. Duplicates compare case-insensitively against
// the user's active categories.
func (s *categoryService) CreateCategory(userID int64, name string) (*models.Category, error) {
	n := normalizeCategoryName(name)
	if n == "" {
		return nil, apperrors.WithField(apperrors.ErrInvalidInput, "name", "Category name is required")
	}

	if err := s.checkDuplicate(userID, n, 0); err != nil {
		return nil, err
	}

	_, err := storage.Exec(s.db,
		"INSERT INTO categories (user_id, name, created_at, is_active) VALUES (?, ?, ?, 1)",
		userID, n, nowISO())
	if err != nil {
		// The hard UNIQUE(user_id, name) still applies, including to
		// soft-deleted rows the active-only pre-check skips.
		if _, ok := storage.UniqueViolation(err); ok {
			return nil, apperrors.ErrCategoryExists
		}
		return nil, err
	}

	created, err := storage.FetchOne[models.Category](s.db,
		"SELECT id, user_id, name, is_active, created_at FROM categories WHERE user_id = ? AND name = ?",
		userID, n)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, apperrors.WithMessage(apperrors.ErrInternalServer, "Failed to create category")
	}
	return created, nil
}

// RenameCategory renames one of the user's categories, applying the same
// duplicate check while excluding the category itself.
func (s *categoryService) RenameCategory(userID, categoryID int64, name string) (*models.Category, error) {
	n := normalizeCategoryName(name)
	if n == "" {
		return nil, apperrors.WithField(apperrors.ErrInvalidInput, "name", "Category name is required")
	}

	if err := s.checkDuplicate(userID, n, categoryID); err != nil {
		return nil, err
	}

	rows, err := storage.Exec(s.db,
		"UPDATE categories SET name = ? WHERE id = ? AND user_id = ?", n, categoryID, userID)
	if err != nil {
		if _, ok := storage.UniqueViolation(err); ok {
			return nil, apperrors.ErrCategoryExists
		}
		return nil, err
	}
	if rows == 0 {
		return nil, apperrors.ErrCategoryNotFound
	}

	renamed, err := storage.FetchOne[models.Category](s.db,
		"SELECT id, user_id, name, is_active, created_at FROM categories WHERE id = ? AND user_id = ?",
		categoryID, userID)
	if err != nil {
		return nil, err
	}
	if renamed == nil {
		return nil, apperrors.ErrCategoryNotFound
	}
	return renamed, nil
}

// checkDuplicate rejects a name already used by another of the user's
// active categories, case-insensitively. excludeID skips the row being
// renamed; pass 0 when creating.
func (s *categoryService) checkDuplicate(userID int64, name string, excludeID int64) error {
	existing, err := storage.FetchOne[models.Category](s.db,
		`SELECT id FROM categories
		 WHERE user_id = ? AND is_active = 1 AND lower(name) = lower(?) AND id != ?`,
		userID, name, excludeID)
	if err != nil {
		return err
	}
	if existing != nil {
		return apperrors.WithField(apperrors.ErrCategoryExists, "name", `"`+name+`" is already in your category list`)
	}
	return nil
}

// DeactivateCategory soft-deletes a category, keeping the row so old
// expenses still display its name. Failures are swallowed: deletion is a
// silent no-op when it cannot proceed.
func (s *categoryService) DeactivateCategory(userID, categoryID int64) {
	_, _ = storage.Exec(s.db,
		"UPDATE categories SET is_active = 0 WHERE id = ? AND user_id = ?", categoryID, userID)
}
