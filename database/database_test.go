package database

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/krishkalaria12/pixelmind/common"
	"github.com/krishkalaria12/pixelmind/logging"
)

func TestPostgres_EmptyDSN(t *testing.T) {
	p := NewPostgres("", false, logging.Discard())

	_, err := p.Connect(context.Background())
	require.ErrorIs(t, err, common.ErrConfiguration)

	// the failed attempt is cached
	_, again := p.Connect(context.Background())
	assert.Equal(t, err, again)
	assert.NoError(t, p.Close())
}

func TestPostgres_ConnectOnce(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var opened atomic.Int32
	p := NewPostgres("postgres://pixelmind", false, logging.Discard())
	p.dialector = func(string) gorm.Dialector {
		opened.Add(1)
		return postgres.New(postgres.Config{Conn: db})
	}

	const callers = 10
	handles := make([]*gorm.DB, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h, err := p.Connect(context.Background())
			assert.NoError(t, err)
			handles[i] = h
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 1, opened.Load())
	for _, h := range handles {
		assert.Same(t, handles[0], h)
	}
}

func TestPostgres_Migrate(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	p := NewPostgres("postgres://pixelmind", false, logging.Discard())
	p.dialector = func(string) gorm.Dialector {
		return postgres.New(postgres.Config{Conn: db})
	}

	var gotDir string
	orig := gooseUpContext
	gooseUpContext = func(_ context.Context, _ *sql.DB, dir string, _ ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}
	t.Cleanup(func() { gooseUpContext = orig })

	require.NoError(t, p.Migrate(context.Background()))
	assert.Equal(t, ".", gotDir)
}

func TestMongo_EmptyURI(t *testing.T) {
	m := NewMongo("", "pixelmind", logging.Discard())

	_, err := m.Connect(context.Background())
	require.ErrorIs(t, err, common.ErrConfiguration)
	assert.Equal(t, "pixelmind", m.Database())
	assert.NoError(t, m.Close())
}
