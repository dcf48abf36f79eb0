package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/krishkalaria12/pixelmind/common"
	"github.com/krishkalaria12/pixelmind/logging"
)

type Mongo struct {
	uri      string
	database string
	log      logging.Logger

	once   sync.Once
	client *mongo.Client
	err    error
}

func NewMongo(uri, database string, log logging.Logger) *Mongo {
	return &Mongo{uri: uri, database: database, log: log}
}

// Database is the name of the application database.
func (m *Mongo) Database() string { return m.database }

// Connect returns the shared client, opening it on first use.
func (m *Mongo) Connect(ctx context.Context) (*mongo.Client, error) {
	m.once.Do(func() {
		m.client, m.err = m.open(ctx)
	})
	return m.client, m.err
}

func (m *Mongo) open(ctx context.Context) (*mongo.Client, error) {
	if m.uri == "" {
		return nil, fmt.Errorf("%w: MONGODB_URL not set", common.ErrConfiguration)
	}

	client, err := mongo.Connect(options.Client().ApplyURI(m.uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	m.log.Info(ctx, "connected to mongodb", "database", m.database)
	return client, nil
}

func (m *Mongo) Close() error {
	if m.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
