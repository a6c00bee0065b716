package db

import (
	"path/filepath"
	"testing"

	"github.com/pouladzade/swapwatch/internal/logger"
	"github.com/pouladzade/swapwatch/pkg/config"
	"github.com/stretchr/testify/require"
)

func TestNewSQLiteDBFromConfig_AppliesPragmas(t *testing.T) {
	cfg := config.DatabaseConfig{
		Path:        filepath.Join(t.TempDir(), "archive.db"),
		JournalMode: "WAL",
	}
	cfg.ApplyDefaults()

	sqlDB, err := NewSQLiteDBFromConfig(cfg)
	require.NoError(t, err)
	defer sqlDB.Close()

	var journalMode string
	require.NoError(t, sqlDB.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	require.Equal(t, "wal", journalMode)

	var busyTimeout int
	require.NoError(t, sqlDB.QueryRow("PRAGMA busy_timeout").Scan(&busyTimeout))
	require.Equal(t, cfg.BusyTimeout, busyTimeout)
}

func TestNewSQLiteDBFromConfig_TruncateJournal(t *testing.T) {
	cfg := config.DatabaseConfig{
		Path:        filepath.Join(t.TempDir(), "archive.db"),
		JournalMode: "TRUNCATE",
	}
	cfg.ApplyDefaults()

	sqlDB, err := NewSQLiteDBFromConfig(cfg)
	require.NoError(t, err)
	defer sqlDB.Close()

	var journalMode string
	require.NoError(t, sqlDB.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	require.Equal(t, "truncate", journalMode)
}

func TestRunMigrationsDB_AppliesOnce(t *testing.T) {
	sqlDB, err := NewSQLiteDB(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	defer sqlDB.Close()

	migrations := []Migration{
		{
			ID: "001_archive.sql",
			SQL: `DROP TABLE archive;
-- +migrate Up
CREATE TABLE archive (height INTEGER PRIMARY KEY, tx_hash TEXT NOT NULL);`,
		},
	}

	log := logger.NewNopLogger()
	require.NoError(t, RunMigrationsDB(log, sqlDB, migrations))

	_, err = sqlDB.Exec(`INSERT INTO archive (height, tx_hash) VALUES (1, '0xabc')`)
	require.NoError(t, err)

	// Re-running must skip the applied migration and keep the data.
	require.NoError(t, RunMigrationsDB(log, sqlDB, migrations))

	var count int
	require.NoError(t, sqlDB.QueryRow(`SELECT COUNT(*) FROM archive`).Scan(&count))
	require.Equal(t, 1, count)
}

func TestRunMigrationsDB_MissingUpMarker(t *testing.T) {
	sqlDB, err := NewSQLiteDB(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	defer sqlDB.Close()

	migrations := []Migration{
		{
			ID:  "001_broken.sql",
			SQL: `CREATE TABLE archive (height INTEGER PRIMARY KEY);`,
		},
	}

	err = RunMigrationsDB(logger.NewNopLogger(), sqlDB, migrations)
	require.ErrorContains(t, err, "missing")
	require.ErrorContains(t, err, "001_broken.sql")
}
