package config

import (
	"fmt"
	"time"

	"essay-feed/logger"
	"essay-feed/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DSN builds the driver specific connection string unless DB_DSN overrides it.
func (c *Config) DSN() string {
	if c.DBDSN != "" {
		return c.DBDSN
	}
	switch c.DBDriver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
	case "sqlite":
		return c.DBName + ".db"
	default:
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
	}
}

func dialector(c *Config) (gorm.Dialector, error) {
	switch c.DBDriver {
	case "postgres":
		return postgres.Open(c.DSN()), nil
	case "mysql":
		return mysql.Open(c.DSN()), nil
	case "sqlite":
		return sqlite.Open(c.DSN()), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
}

// OpenDB connects and migrates the schema.
func OpenDB(c *Config) (*gorm.DB, error) {
	d, err := dialector(c)
	if err != nil {
		return nil, err
	}

	gormLogger := gormlogger.Discard
	if c.GinMode == "debug" {
		gormLogger = gormlogger.Default.LogMode(gormlogger.Warn)
	}

	db, err := gorm.Open(d, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s failed: %w", c.DBDriver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db failed: %w", err)
	}

	if c.DBDriver == "sqlite" {
		// Cascades rely on foreign keys, which sqlite leaves off per connection.
		sqlDB.SetMaxOpenConns(1)
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("enable sqlite foreign keys failed: %w", err)
		}
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(50)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	for _, model := range []interface{}{&models.User{}, &models.Essay{}, &models.Relationship{}} {
		if err := db.AutoMigrate(model); err != nil {
			logger.Errorf("auto migrate %T failed: %v", model, err)
			return fmt.Errorf("auto migrate failed: %w", err)
		}
	}
	return nil
}

// InitDB is the startup variant of OpenDB: it logs and panics on failure.
func InitDB(c *Config) *gorm.DB {
	db, err := OpenDB(c)
	if err != nil {
		logger.Errorf("database init failed: %v", err)
		panic(err)
	}
	logger.Infof("connected to %s database", c.DBDriver)
	return db
}
