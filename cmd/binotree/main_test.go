package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alejandrodnm/binotree/internal/adapters/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T) (path, dsn string) {
	t.Helper()
	dir := t.TempDir()
	dsn = filepath.Join(dir, "runs.db")
	path = filepath.Join(dir, "config.yaml")
	yaml := "storage:\n  enabled: true\n  dsn: " + dsn + "\nlog:\n  level: error\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	return path, dsn
}

func storedRuns(t *testing.T, dsn string) int {
	t.Helper()
	s, err := storage.NewSQLiteStorage(dsn)
	require.NoError(t, err)
	defer s.Close()

	now := time.Now()
	runs, err := s.ListRuns(context.Background(), now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	return len(runs)
}

func TestRun_ExitCodes(t *testing.T) {
	cfgPath, dsn := writeConfig(t)

	assert.Equal(t, 1, run([]string{"-config", cfgPath, "-sigma", "0"}), "degenerate volatility")
	assert.Equal(t, 2, run([]string{"-config", cfgPath, "-k", "-5"}), "invalid strike")
	assert.Equal(t, 2, run([]string{"-config", cfgPath, "-type", "straddle"}), "invalid type")
	assert.Equal(t, 0, storedRuns(t, dsn))

	assert.Equal(t, 0, run([]string{"-config", cfgPath, "-n", "2"}))
	assert.Equal(t, 1, storedRuns(t, dsn))
}

func TestRun_ErrorPathReleasesStorage(t *testing.T) {
	cfgPath, dsn := writeConfig(t)

	// Cada ejecución fallida devuelve el control y cierra el storage, así que
	// la siguiente puede abrir y escribir el mismo archivo.
	for i := 0; i < 3; i++ {
		require.Equal(t, 1, run([]string{"-config", cfgPath, "-sigma", "0"}))
	}
	require.Equal(t, 0, run([]string{"-config", cfgPath}))
	assert.Equal(t, 1, storedRuns(t, dsn))
}

func TestRun_NoStoreSkipsPersistence(t *testing.T) {
	cfgPath, dsn := writeConfig(t)

	require.Equal(t, 0, run([]string{"-config", cfgPath, "-no-store"}))
	_, err := os.Stat(dsn)
	assert.True(t, os.IsNotExist(err))
}

func TestRun_UnknownFlag(t *testing.T) {
	assert.Equal(t, 2, run([]string{"-bogus"}))
}
