// Package storetest holds behaviour tests shared by every store.Store
// backend.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krishkalaria12/pixelmind/common"
	"github.com/krishkalaria12/pixelmind/models"
	"github.com/krishkalaria12/pixelmind/store"
	"github.com/krishkalaria12/pixelmind/transform"
)

// Factory returns an empty store. It is called once per subtest.
type Factory func(t *testing.T) store.Store

// Run exercises s against the contract of store.Store.
func Run(t *testing.T, newStore Factory) {
	t.Run("Users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("IncrementCredits", func(t *testing.T) { testIncrementCredits(t, newStore(t)) })
	t.Run("SpendCredits", func(t *testing.T) { testSpendCredits(t, newStore(t)) })
	t.Run("DeleteUserRemovesImages", func(t *testing.T) { testDeleteUser(t, newStore(t)) })
	t.Run("Images", func(t *testing.T) { testImages(t, newStore(t)) })
	t.Run("ListImages", func(t *testing.T) { testListImages(t, newStore(t)) })
	t.Run("Transactions", func(t *testing.T) { testTransactions(t, newStore(t)) })
	t.Run("WithinTx", func(t *testing.T) { testWithinTx(t, newStore(t)) })
}

func seedUser(t *testing.T, s store.Store, name string) *models.User {
	t.Helper()
	u := models.NewUser(models.CreateUserParams{
		ClerkID:   "clerk_" + name,
		Email:     name + "@example.com",
		Username:  name,
		FirstName: name,
	})
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func seedImage(t *testing.T, s store.Store, authorID, publicID string) *models.Image {
	t.Helper()
	img := &models.Image{
		ID:                 models.NewImageID(),
		Title:              publicID,
		PublicID:           publicID,
		TransformationType: transform.TypeRestore,
		Config:             transform.Value{Config: transform.Restore{}},
		AuthorID:           authorID,
	}
	require.NoError(t, s.CreateImage(context.Background(), img))
	// keeps created_at strictly increasing on millisecond clocks
	time.Sleep(2 * time.Millisecond)
	return img
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()
	ann := seedUser(t, s, "ann")

	got, err := s.GetUserByClerkID(ctx, "clerk_ann")
	require.NoError(t, err)
	assert.Equal(t, ann.ID, got.ID)
	assert.Equal(t, "ann@example.com", got.Email)
	assert.Equal(t, models.DefaultCreditBalance, got.CreditBalance)
	assert.Equal(t, models.DefaultPlanID, got.PlanID)

	dup := models.NewUser(models.CreateUserParams{ClerkID: "clerk_ann", Email: "other@example.com", Username: "other"})
	assert.ErrorIs(t, s.CreateUser(ctx, dup), common.ErrAlreadyExists)

	updated, err := s.UpdateUserByClerkID(ctx, "clerk_ann", models.UpdateUserParams{FirstName: "Ann", LastName: "Lee", Username: "annie"})
	require.NoError(t, err)
	assert.Equal(t, "annie", updated.Username)
	assert.Equal(t, "ann@example.com", updated.Email)

	_, err = s.UpdateUserByClerkID(ctx, "clerk_missing", models.UpdateUserParams{Username: "x"})
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = s.GetUserByID(ctx, "user_missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func testIncrementCredits(t *testing.T, s store.Store) {
	ctx := context.Background()
	ann := seedUser(t, s, "ann")

	var wg sync.WaitGroup
	for _, delta := range []int{5, 3} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.IncrementCredits(ctx, ann.ID, delta)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := s.GetUserByID(ctx, ann.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultCreditBalance+8, got.CreditBalance)

	_, err = s.IncrementCredits(ctx, "user_missing", 1)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func testSpendCredits(t *testing.T, s store.Store) {
	ctx := context.Background()
	ann := seedUser(t, s, "ann")

	var wg sync.WaitGroup
	var mu sync.Mutex
	spent := 0
	for range models.DefaultCreditBalance + 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.SpendCredits(ctx, ann.ID, 1)
			if err == nil {
				mu.Lock()
				spent++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, common.ErrInsufficientCredits)
		}()
	}
	wg.Wait()

	assert.Equal(t, models.DefaultCreditBalance, spent)
	got, err := s.GetUserByID(ctx, ann.ID)
	require.NoError(t, err)
	assert.Zero(t, got.CreditBalance)

	_, err = s.SpendCredits(ctx, "user_missing", 1)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func testDeleteUser(t *testing.T, s store.Store) {
	ctx := context.Background()
	ann := seedUser(t, s, "ann")
	bob := seedUser(t, s, "bob")
	seedImage(t, s, ann.ID, "pixelmind/a")
	kept := seedImage(t, s, bob.ID, "pixelmind/b")

	require.NoError(t, s.DeleteUser(ctx, ann.ID))
	assert.ErrorIs(t, s.DeleteUser(ctx, ann.ID), common.ErrNotFound)

	n, err := s.CountImages(ctx, models.ImageQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = s.GetImage(ctx, kept.ID)
	assert.NoError(t, err)
}

func testImages(t *testing.T, s store.Store) {
	ctx := context.Background()
	ann := seedUser(t, s, "ann")
	bob := seedUser(t, s, "bob")
	img := seedImage(t, s, ann.ID, "pixelmind/car")

	got, err := s.GetImage(ctx, img.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Author)
	assert.Equal(t, ann.ID, got.Author.ID)
	assert.Equal(t, "clerk_ann", got.Author.ClerkID)
	assert.Equal(t, transform.Restore{}, got.Config.Config)

	got.Title = "renamed"
	got.AuthorID = bob.ID
	got.Config = transform.Value{Config: transform.Recolor{Prompt: "car", To: "red"}}
	got.TransformationType = transform.TypeRecolor
	require.NoError(t, s.UpdateImage(ctx, got))

	again, err := s.GetImage(ctx, img.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", again.Title)
	assert.Equal(t, ann.ID, again.AuthorID, "updates never move ownership")
	assert.Equal(t, transform.Recolor{Prompt: "car", To: "red"}, again.Config.Config)

	require.NoError(t, s.DeleteImage(ctx, img.ID))
	_, err = s.GetImage(ctx, img.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.ErrorIs(t, s.DeleteImage(ctx, img.ID), common.ErrNotFound)
	assert.ErrorIs(t, s.UpdateImage(ctx, again), common.ErrNotFound)
}

func testListImages(t *testing.T, s store.Store) {
	ctx := context.Background()
	ann := seedUser(t, s, "ann")
	bob := seedUser(t, s, "bob")
	for i := range 5 {
		seedImage(t, s, ann.ID, fmt.Sprintf("pixelmind/ann%d", i))
	}
	seedImage(t, s, bob.ID, "pixelmind/bob0")

	all, err := s.ListImages(ctx, models.ImageQuery{Limit: 4})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "pixelmind/bob0", all[0].PublicID)
	assert.Equal(t, "pixelmind/ann4", all[1].PublicID)
	for _, img := range all {
		require.NotNil(t, img.Author, img.ID)
	}

	rest, err := s.ListImages(ctx, models.ImageQuery{Offset: 4, Limit: 4})
	require.NoError(t, err)
	require.Len(t, rest, 2)
	assert.Equal(t, "pixelmind/ann0", rest[1].PublicID)

	n, err := s.CountImages(ctx, models.ImageQuery{AuthorID: ann.ID})
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	q := models.ImageQuery{PublicIDs: []string{"pixelmind/ann1", "pixelmind/bob0", "pixelmind/none"}}
	matched, err := s.ListImages(ctx, q)
	require.NoError(t, err)
	assert.Len(t, matched, 2)
	n, err = s.CountImages(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	none, err := s.ListImages(ctx, models.ImageQuery{PublicIDs: []string{}})
	require.NoError(t, err)
	assert.Empty(t, none)
	n, err = s.CountImages(ctx, models.ImageQuery{PublicIDs: []string{}})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func testTransactions(t *testing.T, s store.Store) {
	ctx := context.Background()
	ann := seedUser(t, s, "ann")

	first := &models.Transaction{ID: models.NewTransactionID(), StripeID: "cs_1", Amount: 40, Plan: "Pro Package", Credits: 120, BuyerID: ann.ID, Status: models.StatusPending}
	require.NoError(t, s.CreateTransaction(ctx, first))
	time.Sleep(2 * time.Millisecond)

	dup := &models.Transaction{ID: models.NewTransactionID(), StripeID: "cs_1", BuyerID: ann.ID, Status: models.StatusPending}
	assert.ErrorIs(t, s.CreateTransaction(ctx, dup), common.ErrAlreadyExists)

	second := &models.Transaction{ID: models.NewTransactionID(), StripeID: "cs_2", Amount: 199, Credits: 2000, BuyerID: ann.ID, Status: models.StatusPending}
	require.NoError(t, s.CreateTransaction(ctx, second))

	require.NoError(t, s.SettleTransaction(ctx, first.ID))
	assert.ErrorIs(t, s.SettleTransaction(ctx, "txn_missing"), common.ErrNotFound)

	got, err := s.GetTransactionByStripeID(ctx, "cs_1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSettled, got.Status)
	assert.Equal(t, float64(40), got.Amount)

	history, err := s.ListTransactions(ctx, ann.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "cs_2", history[0].StripeID)

	_, err = s.GetTransactionByStripeID(ctx, "cs_missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func testWithinTx(t *testing.T, s store.Store) {
	ctx := context.Background()
	ann := seedUser(t, s, "ann")
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(ctx context.Context, tx store.Store) error {
		if err := tx.CreateTransaction(ctx, &models.Transaction{ID: models.NewTransactionID(), StripeID: "cs_rollback", BuyerID: ann.ID, Status: models.StatusPending}); err != nil {
			return err
		}
		if _, err := tx.IncrementCredits(ctx, ann.ID, 100); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.GetUserByID(ctx, ann.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultCreditBalance, got.CreditBalance)
	_, err = s.GetTransactionByStripeID(ctx, "cs_rollback")
	assert.ErrorIs(t, err, common.ErrNotFound)

	err = s.WithinTx(ctx, func(ctx context.Context, tx store.Store) error {
		txn := &models.Transaction{ID: models.NewTransactionID(), StripeID: "cs_commit", Credits: 100, BuyerID: ann.ID, Status: models.StatusPending}
		if err := tx.CreateTransaction(ctx, txn); err != nil {
			return err
		}
		if _, err := tx.IncrementCredits(ctx, ann.ID, 100); err != nil {
			return err
		}
		return tx.SettleTransaction(ctx, txn.ID)
	})
	require.NoError(t, err)

	got, err = s.GetUserByID(ctx, ann.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultCreditBalance+100, got.CreditBalance)
	committed, err := s.GetTransactionByStripeID(ctx, "cs_commit")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSettled, committed.Status)
}
