package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/nkaumov/kurs-zakat/internal"
	employeeDatamodel "github.com/nkaumov/kurs-zakat/internal/core/datamodel/employee"
	requestDatamodel "github.com/nkaumov/kurs-zakat/internal/core/datamodel/request"
	scheduleDatamodel "github.com/nkaumov/kurs-zakat/internal/core/datamodel/schedule"
	sessionDatamodel "github.com/nkaumov/kurs-zakat/internal/core/datamodel/session"
	userDatamodel "github.com/nkaumov/kurs-zakat/internal/core/datamodel/user"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// Models lists every table owned by the application, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&userDatamodel.User{},
		&sessionDatamodel.Session{},
		&employeeDatamodel.Employee{},
		&requestDatamodel.Request{},
		&requestDatamodel.RequestItem{},
		&scheduleDatamodel.WorkSchedule{},
		&scheduleDatamodel.WorkScheduleDetail{},
	}
}

// Open connects gorm to the configured driver and applies pool settings.
func Open(cfg internal.DatabaseConfig, lg *slog.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	logLevel := logger.Silent
	if cfg.LogQueries {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if lg != nil {
		lg.Info("database connected", "driver", cfg.Driver, "max_open_conns", cfg.MaxOpenConns)
	}
	return db, nil
}

// NewSQLX shares gorm's connection pool with sqlx for hand-written report
// queries. The driver name only selects the bind variable style.
func NewSQLX(db *gorm.DB, driver string) (*sqlx.DB, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return sqlx.NewDb(sqlDB, SQLXDriverName(driver)), nil
}

func SQLXDriverName(driver string) string {
	switch driver {
	case DriverPostgres:
		return "pgx"
	case DriverMySQL:
		return "mysql"
	default:
		return "sqlite3"
	}
}

// AutoMigrate creates or updates tables from the gorm models. Postgres
// deployments use the goose migrations instead.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

func dialectorFor(cfg internal.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case DriverPostgres, "":
		return postgres.Open(cfg.Source), nil
	case DriverMySQL:
		return mysql.Open(cfg.Source), nil
	case DriverSQLite:
		return sqlite.Open(cfg.Source), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
