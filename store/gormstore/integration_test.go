package gormstore

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/krishkalaria12/pixelmind/database"
	"github.com/krishkalaria12/pixelmind/logging"
	"github.com/krishkalaria12/pixelmind/store"
	"github.com/krishkalaria12/pixelmind/store/storetest"
)

var (
	pgOnce sync.Once
	pgDB   *gorm.DB
	pgErr  error
)

// postgresDB connects to PIXELMIND_POSTGRES_TEST_URL and applies the
// migrations once per test binary.
func postgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("PIXELMIND_POSTGRES_TEST_URL")
	if dsn == "" {
		t.Skip("PIXELMIND_POSTGRES_TEST_URL not set")
	}
	pgOnce.Do(func() {
		pg := database.NewPostgres(dsn, false, logging.Discard())
		if pgErr = pg.Migrate(context.Background()); pgErr != nil {
			return
		}
		pgDB, pgErr = pg.Connect(context.Background())
	})
	require.NoError(t, pgErr)
	return pgDB
}

func TestStoreBehaviour(t *testing.T) {
	db := postgresDB(t)
	storetest.Run(t, func(t *testing.T) store.Store {
		require.NoError(t, db.Exec("TRUNCATE users, images, transactions").Error)
		return New(db)
	})
}
