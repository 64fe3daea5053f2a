package database

import (
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Option func(*options)

type options struct {
	logLevel     logger.LogLevel
	maxIdleConns int
	maxOpenConns int
}

// WithLogLevel overrides the SQL log level (Info by default).
func WithLogLevel(level logger.LogLevel) Option {
	return func(o *options) { o.logLevel = level }
}

func WithPoolSize(maxIdle, maxOpen int) Option {
	return func(o *options) {
		o.maxIdleConns = maxIdle
		o.maxOpenConns = maxOpen
	}
}

func getLogger(level logger.LogLevel) logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // io writer
		logger.Config{
			SlowThreshold:             time.Second, // Slow SQL threshold
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true, // Don't include params in the SQL log
			Colorful:                  true,
		},
	)
}

func configureConnectionPool(db *gorm.DB, o options) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	sqlDB.SetMaxIdleConns(o.maxIdleConns)
	sqlDB.SetMaxOpenConns(o.maxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return nil
}

func NewGormDBFromDSN(dsn string, opts ...Option) (*gorm.DB, error) {
	o := options{
		logLevel:     logger.Info,
		maxIdleConns: 10,
		maxOpenConns: 100,
	}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: getLogger(o.logLevel),
	})
	if err != nil {
		return nil, err
	}

	if err := configureConnectionPool(db, o); err != nil {
		return nil, err
	}

	return db, nil
}
