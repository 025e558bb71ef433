package helper

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir is a stand-in for t.Chdir (added in Go 1.24) usable on older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestGetCfgPath_Absolute(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "gateway.yaml")
	assert.Equal(t, abs, GetCfgPath(abs))
}

func TestGetCfgPath_CurrentDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gateway.yaml"), []byte("port: 1"), 0o600))
	chdir(t, dir)

	got := GetCfgPath("gateway.yaml")
	assert.True(t, filepath.IsAbs(got))
	assert.FileExists(t, got)
}

func TestGetCfgPath_ConfigsSubdir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "configs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", "gateway.yaml"), []byte("port: 1"), 0o600))
	chdir(t, dir)

	got := GetCfgPath("gateway.yaml")
	assert.True(t, filepath.IsAbs(got))
	assert.Equal(t, "configs", filepath.Base(filepath.Dir(got)))
	assert.FileExists(t, got)
}

func TestGetCfgPath_Fallback(t *testing.T) {
	chdir(t, t.TempDir())
	assert.Equal(t, "/etc/oms-gateway/nope.yaml", GetCfgPath("nope.yaml"))
}

func TestGetCfgPath_EmptyPanics(t *testing.T) {
	assert.Panics(t, func() { GetCfgPath("") })
}
