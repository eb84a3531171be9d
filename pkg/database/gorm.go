package database

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const sqlitePrefix = "sqlite:"

func getLogger(level logger.LogLevel) logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  false,
		},
	)
}

func configureConnectionPool(db *gorm.DB, maxOpen int) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return nil
}

// NewGormDBFromDSN opens Postgres, or SQLite when the DSN starts with "sqlite:"
// (handy for running the service locally without a database server).
func NewGormDBFromDSN(dsn string, verbose bool) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database connection string is empty")
	}

	level := logger.Warn
	if verbose {
		level = logger.Info
	}

	if strings.HasPrefix(dsn, sqlitePrefix) {
		return openSQLite(strings.TrimPrefix(dsn, sqlitePrefix), level)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: getLogger(level),
	})
	if err != nil {
		return nil, err
	}

	if err := configureConnectionPool(db, 100); err != nil {
		return nil, err
	}

	return db, nil
}

// NewInMemorySQLite returns an isolated in-memory database. Every call gets
// its own database so parallel tests never see each other's rows.
func NewInMemorySQLite() (*gorm.DB, error) {
	return openSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()), logger.Silent)
}

func openSQLite(path string, level logger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: getLogger(level),
	})
	if err != nil {
		return nil, err
	}

	// SQLite serialises writers anyway; one connection avoids "database is locked".
	if err := configureConnectionPool(db, 1); err != nil {
		return nil, err
	}

	return db, nil
}
