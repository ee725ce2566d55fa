package sqlite

import (
	"database/sql"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/assets/migrations"
)

// RunMigrations applies the embedded SQLite schema to the database file at path.
// It uses a dedicated connection that is closed before returning.
func RunMigrations(path string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := prepareDir(path); err != nil {
		return err
	}

	sqlDB, err := sql.Open("sqlite", DSN(path))
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	driver, err := migratesqlite.WithInstance(sqlDB, &migratesqlite.Config{})
	if err != nil {
		return err
	}

	source, err := iofs.New(migrations.FS, migrations.SQLiteDir)
	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	logger.Info("sqlite migrations applied", zap.String("path", path))
	return nil
}
