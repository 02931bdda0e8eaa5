package identity

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/natefinch/atomic"
)

// DefaultPath is where the planner keeps its identifier,
// $XDG_CONFIG_HOME/timelinetracker/user-id or the OS equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "timelinetracker", "user-id"), nil
}

// LoadOrCreate returns the identifier stored at path, generating and
// storing a new one the first time.
func LoadOrCreate(path string) (string, error) {
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if id := strings.TrimSpace(string(b)); id != "" {
			return id, nil
		}
	case !errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("read user id: %w", err)
	}

	id := uuid.NewString()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("create user id dir: %w", err)
	}
	if err := atomic.WriteFile(path, strings.NewReader(id+"\n")); err != nil {
		return "", fmt.Errorf("write user id: %w", err)
	}
	return id, nil
}
