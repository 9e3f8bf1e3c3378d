package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Rrens/deskflow/internal/domain"
)

const (
	tokenFile = "token"
	userFile  = "user.json"
)

// FileStore persists the session as two entries under a state directory,
// mirroring the token/user split of the original browser storage.
type FileStore struct {
	dir string
}

// NewFileStore creates a credential store rooted at dir
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Load reads the persisted session. A half-written session (either entry
// missing or unreadable) is cleaned up and reported as absent, never as a
// partial session.
func (f *FileStore) Load() (*domain.Session, error) {
	token, tokenErr := os.ReadFile(filepath.Join(f.dir, tokenFile))
	rawUser, userErr := os.ReadFile(filepath.Join(f.dir, userFile))

	if tokenErr != nil || userErr != nil {
		if !os.IsNotExist(tokenErr) && tokenErr != nil {
			return nil, fmt.Errorf("failed to read token: %w", tokenErr)
		}
		if !os.IsNotExist(userErr) && userErr != nil {
			return nil, fmt.Errorf("failed to read user: %w", userErr)
		}
		if err := f.Clear(); err != nil {
			return nil, err
		}
		return nil, nil
	}

	var user domain.User
	if err := json.Unmarshal(rawUser, &user); err != nil {
		// Corrupt user entry invalidates the whole session.
		if clearErr := f.Clear(); clearErr != nil {
			return nil, clearErr
		}
		return nil, nil
	}

	session := &domain.Session{Token: string(token), User: &user}
	if !session.Valid() {
		if err := f.Clear(); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return session, nil
}

// Save writes both entries, token last so an interrupted save is detected
// as absent on the next load.
func (f *FileStore) Save(session *domain.Session) error {
	if !session.Valid() {
		return fmt.Errorf("refusing to persist invalid session")
	}
	if err := os.MkdirAll(f.dir, 0o700); err != nil {
		return fmt.Errorf("failed to create state dir: %w", err)
	}

	rawUser, err := json.Marshal(session.User)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(f.dir, userFile), rawUser); err != nil {
		return fmt.Errorf("failed to write user: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(f.dir, tokenFile), []byte(session.Token)); err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}
	return nil
}

// Clear removes both entries unconditionally
func (f *FileStore) Clear() error {
	for _, name := range []string{tokenFile, userFile} {
		if err := os.Remove(filepath.Join(f.dir, name)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", name, err)
		}
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
