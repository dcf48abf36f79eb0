// Package database owns the process-wide store connections. Each manager
// opens its connection once; concurrent callers share the in-flight attempt
// and its result.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/pressly/goose/v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/krishkalaria12/pixelmind/common"
	"github.com/krishkalaria12/pixelmind/database/migrations"
	"github.com/krishkalaria12/pixelmind/logging"
)

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

type Postgres struct {
	dsn      string
	logLevel logger.LogLevel
	log      logging.Logger

	// dialector builds the gorm dialector for dsn. Replaced in tests.
	dialector func(dsn string) gorm.Dialector

	once sync.Once
	db   *gorm.DB
	err  error
}

func NewPostgres(dsn string, verbose bool, log logging.Logger) *Postgres {
	level := logger.Warn
	if verbose {
		level = logger.Info
	}
	return &Postgres{
		dsn:       dsn,
		logLevel:  level,
		log:       log,
		dialector: postgres.Open,
	}
}

// Connect returns the shared gorm handle, opening it on first use.
func (p *Postgres) Connect(ctx context.Context) (*gorm.DB, error) {
	p.once.Do(func() {
		p.db, p.err = p.open(ctx)
	})
	return p.db, p.err
}

func (p *Postgres) open(ctx context.Context) (*gorm.DB, error) {
	if p.dsn == "" {
		return nil, fmt.Errorf("%w: DATABASE_URL not set", common.ErrConfiguration)
	}

	db, err := gorm.Open(p.dialector(p.dsn), &gorm.Config{
		Logger: logger.Default.LogMode(p.logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get the underlying SQL DB object for connection pooling
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get DB object: %w", err)
	}

	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	p.log.Info(ctx, "connected to postgres")
	return db, nil
}

// Migrate applies the embedded goose migrations.
func (p *Postgres) Migrate(ctx context.Context) error {
	db, err := p.Connect(ctx)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("migrate postgres: %w", err)
	}
	return nil
}

func (p *Postgres) Close() error {
	if p.db == nil {
		return nil
	}
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
