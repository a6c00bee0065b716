package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pouladzade/swapwatch/internal/logger"
	migrate "github.com/rubenv/sql-migrate"
)

const upMarker = "-- +migrate Up"

// Migration is one embedded schema migration. The SQL carries an optional
// Down section first, then the Up section after the "-- +migrate Up" marker.
// Only Up migrations are ever applied; the archive never rolls back.
type Migration struct {
	ID  string
	SQL string
}

// RunMigrations opens the database at dbPath and applies pending migrations.
func RunMigrations(dbPath string, migrations []Migration) error {
	db, err := NewSQLiteDB(dbPath)
	if err != nil {
		return fmt.Errorf("error creating DB %w", err)
	}
	defer db.Close()

	return RunMigrationsDB(logger.GetDefaultLogger(), db, migrations)
}

// RunMigrationsDB applies pending migrations on an open database. Already
// applied migrations are tracked by sql-migrate and skipped.
func RunMigrationsDB(log *logger.Logger, db *sql.DB, migrations []Migration) error {
	src := &migrate.MemoryMigrationSource{}
	ids := make([]string, 0, len(migrations))

	for _, m := range migrations {
		upSQL, err := upSection(m)
		if err != nil {
			return err
		}

		src.Migrations = append(src.Migrations, &migrate.Migration{
			Id: m.ID,
			Up: []string{upSQL},
		})
		ids = append(ids, m.ID)
	}

	log.Debugf("running %d migrations: %s", len(ids), strings.Join(ids, ", "))

	applied, err := migrate.Exec(db, "sqlite3", src, migrate.Up)
	if err != nil {
		return fmt.Errorf("error executing migrations %s: %w", strings.Join(ids, ", "), err)
	}

	log.Infof("applied %d of %d migrations", applied, len(ids))
	return nil
}

// upSection extracts the Up statements from a migration file.
func upSection(m Migration) (string, error) {
	_, up, found := strings.Cut(m.SQL, upMarker)
	if !found {
		return "", fmt.Errorf("migration %s missing %q marker", m.ID, upMarker)
	}
	return strings.TrimSpace(up), nil
}
