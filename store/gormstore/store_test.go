package gormstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/krishkalaria12/pixelmind/common"
	"github.com/krishkalaria12/pixelmind/models"
	"github.com/krishkalaria12/pixelmind/store"
	"github.com/krishkalaria12/pixelmind/transform"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return New(gdb), mock
}

var userColumns = []string{"id", "clerk_id", "email", "username", "photo", "first_name", "last_name", "plan_id", "credit_balance", "created_at", "updated_at"}

func TestGetUserByClerkID(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE clerk_id = \$1`).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("user_1", "clerk_1", "a@b.co", "ann", "", "Ann", "", 1, 10, now, now))

	u, err := s.GetUserByClerkID(context.Background(), "clerk_1")
	require.NoError(t, err)
	assert.Equal(t, "user_1", u.ID)
	assert.Equal(t, 10, u.CreditBalance)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByID_NotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := s.GetUserByID(context.Background(), "user_missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO "users"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	u := models.NewUser(models.CreateUserParams{ClerkID: "clerk_1", Email: "a@b.co", Username: "ann"})
	require.NoError(t, s.CreateUser(context.Background(), u))
	assert.False(t, u.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementCredits_IsStoreSide(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectQuery(`UPDATE "users" SET "credit_balance"=credit_balance \+ \$1`).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("user_1", "clerk_1", "a@b.co", "ann", "", "", "", 1, 15, now, now))

	u, err := s.IncrementCredits(context.Background(), "user_1", 5)
	require.NoError(t, err)
	assert.Equal(t, 15, u.CreditBalance)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementCredits_NotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`UPDATE "users" SET "credit_balance"=credit_balance \+ \$1`).
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := s.IncrementCredits(context.Background(), "user_missing", 5)
	assert.ErrorIs(t, err, common.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSpendCredits_Conditional(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectQuery(`UPDATE "users" SET "credit_balance"=credit_balance - \$1.* WHERE id = \$\d AND credit_balance >= \$\d`).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("user_1", "clerk_1", "a@b.co", "ann", "", "", "", 1, 9, now, now))

	u, err := s.SpendCredits(context.Background(), "user_1", 1)
	require.NoError(t, err)
	assert.Equal(t, 9, u.CreditBalance)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSpendCredits_Insufficient(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectQuery(`UPDATE "users" SET "credit_balance"=credit_balance - \$1`).
		WillReturnRows(sqlmock.NewRows(userColumns))
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("user_1", "clerk_1", "a@b.co", "ann", "", "", "", 1, 0, now, now))

	_, err := s.SpendCredits(context.Background(), "user_1", 1)
	assert.ErrorIs(t, err, common.ErrInsufficientCredits)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSpendCredits_UnknownUser(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`UPDATE "users" SET "credit_balance"=credit_balance - \$1`).
		WillReturnRows(sqlmock.NewRows(userColumns))
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := s.SpendCredits(context.Background(), "user_missing", 1)
	assert.ErrorIs(t, err, common.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteImage_NotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`DELETE FROM "images" WHERE id = \$1`).
		WithArgs("img_missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.DeleteImage(context.Background(), "img_missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListImages_PreloadsAuthor(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT \* FROM "images" WHERE author_id = \$1 ORDER BY created_at DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "transformation_type", "public_id", "config", "author_id", "created_at", "updated_at"}).
			AddRow("img_1", "car", "remove", "pixelmind/car", []byte(`{"type":"remove","prompt":"car"}`), "user_1", now, now))
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE "users"."id" = \$1`).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("user_1", "clerk_1", "a@b.co", "ann", "", "Ann", "Lee", 1, 10, now, now))

	images, err := s.ListImages(context.Background(), models.ImageQuery{AuthorID: "user_1", Limit: 9})
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, transform.Remove{Prompt: "car"}, images[0].Config.Config)
	require.NotNil(t, images[0].Author)
	assert.Equal(t, "clerk_1", images[0].Author.ClerkID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCountImages(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "images" WHERE author_id = \$1`).
		WithArgs("user_1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(20))

	n, err := s.CountImages(context.Background(), models.ImageQuery{AuthorID: "user_1"})
	require.NoError(t, err)
	assert.Equal(t, 20, n)

	n, err = s.CountImages(context.Background(), models.ImageQuery{PublicIDs: []string{}})
	require.NoError(t, err)
	assert.Zero(t, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTransaction_Duplicate(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO "transactions"`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "transactions_stripe_id_key"})

	err := s.CreateTransaction(context.Background(), &models.Transaction{ID: "txn_1", StripeID: "cs_1", BuyerID: "user_1"})
	assert.ErrorIs(t, err, common.ErrAlreadyExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTx(t *testing.T) {
	t.Run("commit", func(t *testing.T) {
		s, mock := newMockStore(t)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "transactions" SET "status"=\$1 WHERE id = \$2`).
			WithArgs("settled", "txn_1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := s.WithinTx(context.Background(), func(ctx context.Context, tx store.Store) error {
			return tx.SettleTransaction(ctx, "txn_1")
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback", func(t *testing.T) {
		s, mock := newMockStore(t)
		boom := errors.New("boom")

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := s.WithinTx(context.Background(), func(context.Context, store.Store) error {
			return boom
		})
		require.ErrorIs(t, err, boom)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
