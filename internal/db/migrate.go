// Package db opens the gorm connection and applies schema migrations.
package db

import (
	"embed"
	"fmt"
	"time"

	"github.com/diewo77/acme-dashboard/internal/config"
	"github.com/diewo77/acme-dashboard/internal/models"
	migrate "github.com/golang-migrate/migrate/v4"
	// The following blank import registers the postgres driver for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var log = loggo.GetLogger("acme.db")

//go:embed migrations/*.sql
var migrationFiles embed.FS

// GormConfig is shared by every connection. Each mutation is a single
// statement, so gorm's implicit per-write transaction is disabled.
func GormConfig(debug bool) *gorm.Config {
	level := logger.Silent
	if debug {
		level = logger.Info
	}
	return &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(level),
	}
}

// Open connects using the configured driver, retrying while postgres starts.
func Open(cfg config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(SQLiteDSN(cfg.SQLitePath))
	case "postgres", "":
		dsn := NormalizeDSN(cfg.DSN())
		log.Infof("connecting to postgres: %s", MaskDSN(dsn))
		dialector = postgres.Open(dsn)
	default:
		return nil, errors.NotSupportedf("database driver %q", cfg.Driver)
	}

	var conn *gorm.DB
	var err error
	for i := 0; i < 5; i++ {
		conn, err = gorm.Open(dialector, GormConfig(debug))
		if err == nil {
			break
		}
		log.Warningf("connection attempt %d/5 failed: %v", i+1, err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, errors.Annotate(err, "connecting to database")
	}
	return conn, nil
}

// SQLiteDSN turns a file path (or ":memory:") into a DSN with foreign keys
// enforced, so invoice customer references are checked by the store.
func SQLiteDSN(path string) string {
	return fmt.Sprintf("file:%s?_foreign_keys=on", path)
}

// Migrate creates or updates the tables with gorm AutoMigrate.
func Migrate(conn *gorm.DB) error {
	for _, m := range models.All() {
		if err := conn.AutoMigrate(m); err != nil {
			return errors.Annotatef(err, "automigrate %T", m)
		}
	}
	return nil
}

// RunSQLMigrations applies the embedded postgres migrations with golang-migrate.
func RunSQLMigrations(dsn string) error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return errors.Trace(err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, ToURLDSN(NormalizeDSN(dsn)))
	if err != nil {
		return errors.Annotate(err, "preparing sql migrations")
	}
	defer m.Close()
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return errors.Annotate(err, "applying sql migrations")
	}
	return nil
}
