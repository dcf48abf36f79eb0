package mongostore

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/krishkalaria12/pixelmind/models"
	"github.com/krishkalaria12/pixelmind/store"
	"github.com/krishkalaria12/pixelmind/store/storetest"
)

// PIXELMIND_MONGO_TEST_URL must point at a replica set; WithinTx needs
// multi-document transactions.
func testClient(t *testing.T) *mongo.Client {
	t.Helper()
	uri := os.Getenv("PIXELMIND_MONGO_TEST_URL")
	if uri == "" {
		t.Skip("PIXELMIND_MONGO_TEST_URL not set")
	}
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, client.Ping(ctx, nil))
	return client
}

func newTestStore(t *testing.T, client *mongo.Client) *Store {
	t.Helper()
	name := fmt.Sprintf("pixelmind_test_%d", time.Now().UnixNano())
	s := New(client, name)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { _ = client.Database(name).Drop(context.Background()) })
	return s
}

func TestStoreBehaviour(t *testing.T) {
	client := testClient(t)
	storetest.Run(t, func(t *testing.T) store.Store { return newTestStore(t, client) })
}

func TestDeleteUser_InsideTx(t *testing.T) {
	client := testClient(t)
	s := newTestStore(t, client)
	ctx := context.Background()

	u := models.NewUser(models.CreateUserParams{ClerkID: "clerk_ann", Email: "ann@example.com", Username: "ann"})
	require.NoError(t, s.CreateUser(ctx, u))
	require.NoError(t, s.CreateImage(ctx, &models.Image{ID: models.NewImageID(), Title: "car", PublicID: "pixelmind/car", TransformationType: "restore", AuthorID: u.ID}))

	err := s.WithinTx(ctx, func(ctx context.Context, tx store.Store) error {
		return tx.DeleteUser(ctx, u.ID)
	})
	require.NoError(t, err)

	n, err := s.CountImages(ctx, models.ImageQuery{AuthorID: u.ID})
	require.NoError(t, err)
	require.Zero(t, n)
}
