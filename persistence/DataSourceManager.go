package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
	otgorm "github.com/smacker/opentracing-gorm"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

var ActiveDataSourceManager *DataSourceManager

type DatabaseConfig struct {
	// DriverType is "mysql" or "sqlite".
	DriverType string
	DriverArgs string
}

type DataSourceManager struct {
	gormDB         *gorm.DB
	DatabaseConfig *DatabaseConfig
}

func (m *DataSourceManager) Start() error {
	db, err := connect(m.DatabaseConfig)
	if err != nil {
		return err
	}
	otgorm.AddGormCallbacks(db)
	m.gormDB = db
	if os.Getenv("GIN_MODE") != "release" {
		m.gormDB.LogMode(true)
	}
	return nil
}

func (m *DataSourceManager) Stop() {
	if m.gormDB != nil {
		if err := m.gormDB.Close(); err != nil {
			logrus.Warnf("failed to close DB: %v", err)
		}
		m.gormDB = nil
	}
}

// GormDB returns a fresh scope. SQL spans are recorded under the span carried by ctx, if any.
func (m *DataSourceManager) GormDB(ctx context.Context) *gorm.DB {
	if m.gormDB == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return otgorm.SetSpanToGorm(ctx, m.gormDB.New())
}

func connect(config *DatabaseConfig) (*gorm.DB, error) {
	switch config.DriverType {
	case "mysql":
		db, err := gorm.Open("mysql", config.DriverArgs)
		if err != nil {
			return nil, err
		}
		if err := db.DB().Ping(); err != nil {
			return nil, err
		}
		return db, nil
	case "sqlite":
		sqlDB, err := sql.Open("sqlite", config.DriverArgs)
		if err != nil {
			return nil, err
		}
		// a single connection serializes writers and keeps shared in-memory databases alive
		sqlDB.SetMaxOpenConns(1)
		db, err := gorm.Open("sqlite3", sqlDB)
		if err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported driver type '%s'", config.DriverType)
	}
}

// PrepareMysqlDatabase creates the database named in dsn when it does not exist yet.
func PrepareMysqlDatabase(dsn string) error {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return err
	}
	databaseName := cfg.DBName
	if databaseName == "" {
		return errors.New("database name is missing in dsn")
	}
	cfg.DBName = ""

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.Exec("CREATE DATABASE IF NOT EXISTS `" + strings.ReplaceAll(databaseName, "`", "") +
		"` DEFAULT CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci")
	return err
}

// IsUniqueViolation reports whether err was raised by a unique index of the underlying store.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
