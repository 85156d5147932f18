package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

//go:embed sqlite/*.sql postgres/*.sql
var files embed.FS

// Run applies every pending migration for the dialect. SQLite migrates through
// db, which must stay the only handle on an in-memory database. Postgres
// migrates on a short-lived handle opened from dsn, because closing the pgx
// migration driver closes the pool it was given. db is left open either way.
func Run(db *sqlx.DB, dialect, dsn string) error {
	var (
		driver database.Driver
		err    error
	)
	switch dialect {
	case "sqlite":
		driver, err = sqlite.WithInstance(db.DB, &sqlite.Config{})
	case "postgres":
		driver, err = postgresDriver(dsn)
		if err == nil {
			defer driver.Close()
		}
	default:
		return fmt.Errorf("unsupported migration dialect %q", dialect)
	}
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	source, err := iofs.New(files, dialect)
	if err != nil {
		return fmt.Errorf("could not open migration files: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, dialect, driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}
	return nil
}

func postgresDriver(dsn string) (database.Driver, error) {
	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	driver, err := migratepgx.WithInstance(conn, &migratepgx.Config{})
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return driver, nil
}
