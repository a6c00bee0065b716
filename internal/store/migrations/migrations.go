package migrations

import (
	"database/sql"
	_ "embed"

	"github.com/pouladzade/swapwatch/internal/db"
	"github.com/pouladzade/swapwatch/internal/logger"
)

//go:embed 001_confirmed_swaps.sql
var mig001 string

// RunMigrations runs all migrations for the swap archive database.
func RunMigrations(dbPath string) error {
	return db.RunMigrations(dbPath, migrations())
}

// RunMigrationsDB runs all migrations for the swap archive on an open database.
func RunMigrationsDB(log *logger.Logger, sqlDB *sql.DB) error {
	return db.RunMigrationsDB(log, sqlDB, migrations())
}

func migrations() []db.Migration {
	return []db.Migration{
		{
			ID:  "001_confirmed_swaps.sql",
			SQL: mig001,
		},
	}
}
