package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
storage:
  connection_string: storage/students.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "dev", cfg.Env)
	require.Equal(t, DriverSQLite, cfg.Storage.Driver)
	require.Equal(t, "storage/students.db", cfg.Storage.ConnectionString)
	require.Equal(t, "localhost:8082", cfg.HTTPServer.Addr)
	require.Equal(t, 10*time.Second, cfg.HTTPServer.ReadTimeout)
	require.Equal(t, 5*time.Second, cfg.HTTPServer.ShutdownTimeout)
}

func TestLoadReadsFile(t *testing.T) {
	path := writeConfig(t, `
env: prod
storage:
  driver: gorm-postgres
  connection_string: postgres://students:secret@db:5432/students
http_server:
  address: 0.0.0.0:8080
  write_timeout: 30s
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "prod", cfg.Env)
	require.Equal(t, DriverGormPostgres, cfg.Storage.Driver)
	require.Equal(t, "0.0.0.0:8080", cfg.HTTPServer.Addr)
	require.Equal(t, 30*time.Second, cfg.HTTPServer.WriteTimeout)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
storage:
  connection_string: from-file.db
`)
	t.Setenv("STORAGE_CONNECTION_STRING", "from-env.db")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "from-env.db", cfg.Storage.ConnectionString)
}

func TestLoadRequiresConnectionString(t *testing.T) {
	path := writeConfig(t, "env: dev\n")

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	path := writeConfig(t, `
storage:
  driver: mongo
  connection_string: x
`)

	_, err := Load(path)
	require.ErrorContains(t, err, "unknown storage driver")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorContains(t, err, "does not exist")
}
