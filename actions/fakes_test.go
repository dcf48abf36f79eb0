package actions

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/krishkalaria12/pixelmind/billing"
	"github.com/krishkalaria12/pixelmind/logging"
	"github.com/krishkalaria12/pixelmind/models"
	"github.com/krishkalaria12/pixelmind/store/memstore"
	"github.com/krishkalaria12/pixelmind/transform"
)

type fakePages struct {
	mu    sync.Mutex
	paths []string
}

func (f *fakePages) Revalidate(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, path)
}

type fakeSearcher struct {
	ids   []string
	err   error
	query string
}

func (f *fakeSearcher) Search(_ context.Context, query string) ([]string, error) {
	f.query = query
	return f.ids, f.err
}

type fakeURLs struct{}

func (fakeURLs) TransformationURL(publicID string, cfg transform.Config) (string, error) {
	return fmt.Sprintf("https://res.example.com/%s/%s", transform.Transformation(cfg), publicID), nil
}

type fakeCheckout struct {
	req billing.CheckoutRequest
	err error
}

func (f *fakeCheckout) CreateCheckoutSession(_ context.Context, req billing.CheckoutRequest) (string, error) {
	f.req = req
	if f.err != nil {
		return "", f.err
	}
	return "https://checkout.example.com/" + req.BuyerID, nil
}

type env struct {
	store    *memstore.Store
	pages    *fakePages
	search   *fakeSearcher
	checkout *fakeCheckout
	users    *UserActions
	images   *ImageActions
	txns     *TransactionActions
}

func newEnv(t *testing.T) *env {
	t.Helper()
	log := logging.Discard()
	e := &env{
		store:    memstore.New(),
		pages:    &fakePages{},
		search:   &fakeSearcher{},
		checkout: &fakeCheckout{},
	}
	e.users = NewUserActions(e.store, e.pages, log)
	e.images = NewImageActions(e.store, e.users, e.search, fakeURLs{}, e.pages, log)
	e.txns = NewTransactionActions(e.store, e.checkout, "http://localhost:3000", log)
	return e
}

func (e *env) createUser(t *testing.T, name string) *models.User {
	t.Helper()
	u, err := e.users.CreateUser(context.Background(), models.CreateUserParams{
		ClerkID:   "clerk_" + name,
		Email:     name + "@example.com",
		Username:  name,
		FirstName: name,
	})
	require.NoError(t, err)
	return u
}

func restoreParams(title string) models.ImageParams {
	return models.ImageParams{
		Title:              title,
		PublicID:           "pixelmind/" + title,
		TransformationType: transform.TypeRestore,
		Config:             transform.Value{Config: transform.Restore{}},
		SecureURL:          "https://res.example.com/" + title,
	}
}
