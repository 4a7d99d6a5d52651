package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-management/internal/config"
)

func TestSetupStorageDrivers(t *testing.T) {
	for _, driver := range []string{config.DriverSQLite, config.DriverGormSQLite} {
		t.Run(driver, func(t *testing.T) {
			store, err := setupStorage(config.Storage{
				Driver:           driver,
				ConnectionString: filepath.Join(t.TempDir(), "students.db"),
			})
			require.NoError(t, err)
			defer store.Close()

			require.NoError(t, store.Ping(context.Background()))
		})
	}
}

func TestSetupStorageUnknownDriver(t *testing.T) {
	store, err := setupStorage(config.Storage{Driver: "mongo", ConnectionString: "x"})
	require.Error(t, err)
	require.Nil(t, store)
}

func TestSetupLoggerLevels(t *testing.T) {
	require.False(t, setupLogger("prod").Enabled(context.Background(), -4))
	require.True(t, setupLogger("dev").Enabled(context.Background(), -4))
}
