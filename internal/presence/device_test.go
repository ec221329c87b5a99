package presence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceIDStableAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "device_id")

	first, err := NewDeviceStore(path).DeviceID()
	require.NoError(t, err)
	_, err = uuid.Parse(first)
	require.NoError(t, err)

	second, err := NewDeviceStore(path).DeviceID()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDeviceIDRegeneratedWhenFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device_id")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o600))

	id, err := NewDeviceStore(path).DeviceID()
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	assert.NoError(t, err)
}
