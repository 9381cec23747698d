package fileops

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigRoundTrip(t *testing.T) {
	f := NewFileOps(filepath.Join(t.TempDir(), "heartbeat"))
	require.NoError(t, f.EnsureDirectories())

	_, err := f.LoadConfig("heartbeat.yaml")
	assert.True(t, errors.Is(err, ErrConfigNotFound))

	require.NoError(t, f.SaveConfig("heartbeat.yaml", []byte("a: 1\n")))
	data, err := f.LoadConfig("heartbeat.yaml")
	require.NoError(t, err)
	assert.Equal(t, "a: 1\n", string(data))

	_, err = os.Stat(filepath.Join(f.GetConfigDir(), "heartbeat.yaml.tmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestPIDLifecycle(t *testing.T) {
	f := NewFileOps(t.TempDir())

	require.NoError(t, f.CheckPID())
	require.NoError(t, f.SavePID())
	// Our own PID never counts as another instance.
	require.NoError(t, f.CheckPID())
	require.NoError(t, f.CleanupPID())
}

func TestCheckPIDInvalidContent(t *testing.T) {
	f := NewFileOps(t.TempDir())
	require.NoError(t, os.WriteFile(f.getPIDFilePath(), []byte("nope"), 0o644))
	assert.Error(t, f.CheckPID())
}
