package db

import (
	_ "embed"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the relational store the canonical track extract is loaded into.
type DB struct{ *gorm.DB }

//go:embed schema.sql
var schema string

// Drivers lists the values Open accepts for driver.
var Drivers = []string{"sqlite", "postgres"}

// Open returns a connection to a migrated database, creating the table if
// necessary. With the sqlite driver dsn is a filename; with postgres it's a
// connection string or url.
func Open(driver, dsn string) (*DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite", "":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unknown database driver '%s'", driver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("error opening %s db at '%s': %w", driver, dsn, err)
	}

	db := &DB{gdb}

	if err := db.Exec(schema).Error; err != nil {
		db.Close()
		return nil, fmt.Errorf("error migrating db at '%s': %w", dsn, err)
	}

	return db, nil
}

func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
