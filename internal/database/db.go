package database

import (
	"ai-course-concepts/config"
	"ai-course-concepts/pkg/logger"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var DB *gorm.DB

// connect opens the DB and applies pool configuration
func connect() (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(config.Cfg.Dns), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(config.Cfg.Database.MaxIdleConns)
	sqlDB.SetMaxOpenConns(config.Cfg.Database.MaxOpenConns)
	lifetime := time.Duration(config.Cfg.Database.MaxLifetime) * time.Minute
	sqlDB.SetConnMaxIdleTime(lifetime)
	sqlDB.SetConnMaxLifetime(lifetime)

	return db, nil
}

func init() {
	db, err := connect()
	if err != nil {
		logger.Error(err, "database: failed to connect to database")
	}
	DB = db
}

// ensureConnection verifies DB connectivity and reconnects if needed
func ensureConnection() error {
	if DB == nil {
		newDB, err := connect()
		if err != nil {
			logger.Error(err, "database: failed to ensure connection")
			return err
		}
		DB = newDB
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		logger.Error(err, "database: failed to get database connection")
		return err
	}
	if err := sqlDB.Ping(); err != nil {
		newDB, err := connect()
		if err != nil {
			logger.Error(err, "database: failed to connect to database")
			return err
		}
		DB = newDB
	}
	return nil
}

// GetDB returns a healthy *gorm.DB, attempting reconnect if necessary
func GetDB() (*gorm.DB, error) {
	if err := ensureConnection(); err != nil {
		logger.Error(err, "database: failed to get database connection")
		return nil, err
	}
	return DB, nil
}
