package presence

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DeviceStore persists the opaque device identifier across process restarts.
// The identifier is not a security credential; it only distinguishes session
// instances on the broadcast channel.
type DeviceStore struct {
	path string
}

// NewDeviceStore constructs a store backed by a local file.
func NewDeviceStore(path string) *DeviceStore {
	return &DeviceStore{path: path}
}

// DeviceID returns the stored identifier, generating and persisting one on
// first use.
func (s *DeviceStore) DeviceID() (string, error) {
	if data, err := os.ReadFile(s.path); err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, nil
		}
	}
	id := uuid.NewString()
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(s.path, []byte(id+"\n"), 0o600); err != nil {
		return "", err
	}
	return id, nil
}
