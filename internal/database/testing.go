package database

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/nkaumov/kurs-zakat/internal"
	"gorm.io/gorm"
)

// OpenInMemory opens a private, migrated SQLite database that lives as long
// as the returned handle. A single connection keeps every caller on the same
// in-memory file.
func OpenInMemory() (*gorm.DB, error) {
	db, err := Open(internal.DatabaseConfig{
		Driver:       DriverSQLite,
		Source:       fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString()),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, nil)
	if err != nil {
		return nil, err
	}
	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
