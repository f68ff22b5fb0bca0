package session

import (
	"os"
	"strconv"
	"strings"
)

// FileStore keeps the session id in a single file readable only by the
// owning user. It stands in for the platform secure keystore on devices
// that have one.
type FileStore struct {
	path string
}

// NewFileStore creates a store writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Save writes the user id, replacing any previous session.
func (s *FileStore) Save(userID int64) error {
	return os.WriteFile(s.path, []byte(strconv.FormatInt(userID, 10)), 0o600)
}

// Load reads the persisted user id. A missing or unreadable value is
// reported as absent, not as an error: boot must stay silent.
func (s *FileStore) Load() (int64, bool, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, err
	}
	id, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil || id <= 0 {
		return 0, false, nil
	}
	return id, true, nil
}

// Clear deletes the session file.
func (s *FileStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}
