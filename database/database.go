package database

import (
	"database/sql"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/hashicorp/go-multierror"
	_ "github.com/lib/pq"

	"github.com/sosika-app/sosika-backend/config"
)

// Sosika is the shared connection pool. All cross-request coordination is
// pushed down into the store's transactions; nothing else is shared.
var Sosika *sql.DB

const (
	maxOpenConns    = 25
	maxIdleConns    = 25
	connMaxLifetime = 5 * time.Minute
)

func ConnectAndMigrate() error {
	db, err := sql.Open("postgres", config.DatabaseURL)
	if err != nil {
		return err
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	if err := db.Ping(); err != nil {
		return err
	}

	Sosika = db
	return migrateUp(db)
}

func migrateUp(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

// Tx runs fn inside a transaction. Rollback is guaranteed on every error
// path; commit happens only when fn returns nil.
func Tx(fn func(tx *sql.Tx) error) error {
	tx, err := Sosika.Begin()
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return multierror.Append(err, rbErr)
		}
		return err
	}
	return tx.Commit()
}

func ShutdownDatabase() error {
	if Sosika == nil {
		return nil
	}
	return Sosika.Close()
}
