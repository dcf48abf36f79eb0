// Package mongostore implements store.Store on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/krishkalaria12/pixelmind/common"
	"github.com/krishkalaria12/pixelmind/models"
	"github.com/krishkalaria12/pixelmind/store"
)

// Collection name constants.
const (
	colUsers        = "users"
	colImages       = "images"
	colTransactions = "transactions"
)

var _ store.Store = (*Store)(nil)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
	inTx   bool
}

func New(client *mongo.Client, database string) *Store {
	return &Store{client: client, db: client.Database(database)}
}

// Migrate creates the unique and lookup indexes of every collection.
func (s *Store) Migrate(ctx context.Context) error {
	for col, indexes := range migrationIndexes() {
		if _, err := s.db.Collection(col).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("mongostore: migrate %s indexes: %w", col, err)
		}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// ==================== User Store ====================

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	if _, err := s.db.Collection(colUsers).InsertOne(ctx, toUserDoc(u)); err != nil {
		return fmt.Errorf("mongostore: create user: %w", translate(err))
	}
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"_id": userID})
}

func (s *Store) GetUserByClerkID(ctx context.Context, clerkID string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"clerk_id": clerkID})
}

func (s *Store) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var d userDoc
	if err := s.db.Collection(colUsers).FindOne(ctx, filter).Decode(&d); err != nil {
		return nil, fmt.Errorf("mongostore: get user: %w", translate(err))
	}
	return fromUserDoc(&d), nil
}

func (s *Store) UpdateUserByClerkID(ctx context.Context, clerkID string, p models.UpdateUserParams) (*models.User, error) {
	update := bson.M{"$set": bson.M{
		"first_name": p.FirstName,
		"last_name":  p.LastName,
		"username":   p.Username,
		"photo":      p.Photo,
		"updated_at": time.Now().UTC(),
	}}
	return s.findAndUpdateUser(ctx, bson.M{"clerk_id": clerkID}, update)
}

func (s *Store) IncrementCredits(ctx context.Context, userID string, delta int) (*models.User, error) {
	update := bson.M{
		"$inc": bson.M{"credit_balance": delta},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	return s.findAndUpdateUser(ctx, bson.M{"_id": userID}, update)
}

// SpendCredits decrements only a document whose balance covers amount.
func (s *Store) SpendCredits(ctx context.Context, userID string, amount int) (*models.User, error) {
	update := bson.M{
		"$inc": bson.M{"credit_balance": -amount},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	u, err := s.findAndUpdateUser(ctx, bson.M{"_id": userID, "credit_balance": bson.M{"$gte": amount}}, update)
	if errors.Is(err, common.ErrNotFound) {
		if _, getErr := s.GetUserByID(ctx, userID); getErr != nil {
			return nil, getErr
		}
		return nil, fmt.Errorf("mongostore: spend credits: %w", common.ErrInsufficientCredits)
	}
	return u, err
}

func (s *Store) findAndUpdateUser(ctx context.Context, filter, update bson.M) (*models.User, error) {
	var d userDoc
	err := s.db.Collection(colUsers).
		FindOneAndUpdate(ctx, filter, update, options.FindOneAndUpdate().SetReturnDocument(options.After)).
		Decode(&d)
	if err != nil {
		return nil, fmt.Errorf("mongostore: update user: %w", translate(err))
	}
	return fromUserDoc(&d), nil
}

func (s *Store) DeleteUser(ctx context.Context, userID string) error {
	res, err := s.db.Collection(colUsers).DeleteOne(ctx, bson.M{"_id": userID})
	if err != nil {
		return fmt.Errorf("mongostore: delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("mongostore: delete user: %w", common.ErrNotFound)
	}
	if _, err := s.db.Collection(colImages).DeleteMany(ctx, bson.M{"author_id": userID}); err != nil {
		return fmt.Errorf("mongostore: delete user images: %w", err)
	}
	return nil
}

// ==================== Image Store ====================

func (s *Store) CreateImage(ctx context.Context, img *models.Image) error {
	now := time.Now().UTC()
	img.CreatedAt, img.UpdatedAt = now, now
	if _, err := s.db.Collection(colImages).InsertOne(ctx, toImageDoc(img)); err != nil {
		return fmt.Errorf("mongostore: create image: %w", translate(err))
	}
	return nil
}

func (s *Store) GetImage(ctx context.Context, imageID string) (*models.Image, error) {
	var d imageDoc
	if err := s.db.Collection(colImages).FindOne(ctx, bson.M{"_id": imageID}).Decode(&d); err != nil {
		return nil, fmt.Errorf("mongostore: get image: %w", translate(err))
	}
	images, err := s.populate(ctx, []imageDoc{d})
	if err != nil {
		return nil, err
	}
	return images[0], nil
}

func (s *Store) UpdateImage(ctx context.Context, img *models.Image) error {
	d := toImageDoc(img)
	set := bson.M{
		"title":               d.Title,
		"transformation_type": d.TransformationType,
		"public_id":           d.PublicID,
		"secure_url":          d.SecureURL,
		"width":               d.Width,
		"height":              d.Height,
		"config":              d.Config,
		"transformation_url":  d.TransformationURL,
		"aspect_ratio":        d.AspectRatio,
		"color":               d.Color,
		"prompt":              d.Prompt,
		"updated_at":          time.Now().UTC(),
	}
	res, err := s.db.Collection(colImages).UpdateOne(ctx, bson.M{"_id": img.ID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("mongostore: update image: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("mongostore: update image: %w", common.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteImage(ctx context.Context, imageID string) error {
	res, err := s.db.Collection(colImages).DeleteOne(ctx, bson.M{"_id": imageID})
	if err != nil {
		return fmt.Errorf("mongostore: delete image: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("mongostore: delete image: %w", common.ErrNotFound)
	}
	return nil
}

func (s *Store) ListImages(ctx context.Context, q models.ImageQuery) ([]*models.Image, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(q.Offset))
	if q.Limit > 0 {
		opts = opts.SetLimit(int64(q.Limit))
	}

	cursor, err := s.db.Collection(colImages).Find(ctx, imageFilter(q), opts)
	if err != nil {
		return nil, fmt.Errorf("mongostore: list images: %w", err)
	}
	var docs []imageDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongostore: list images: %w", err)
	}
	return s.populate(ctx, docs)
}

func (s *Store) CountImages(ctx context.Context, q models.ImageQuery) (int, error) {
	n, err := s.db.Collection(colImages).CountDocuments(ctx, imageFilter(q))
	if err != nil {
		return 0, fmt.Errorf("mongostore: count images: %w", err)
	}
	return int(n), nil
}

func imageFilter(q models.ImageQuery) bson.M {
	filter := bson.M{}
	if q.AuthorID != "" {
		filter["author_id"] = q.AuthorID
	}
	if q.PublicIDs != nil {
		filter["public_id"] = bson.M{"$in": q.PublicIDs}
	}
	return filter
}

// populate converts docs and attaches the author summary of each image.
func (s *Store) populate(ctx context.Context, docs []imageDoc) ([]*models.Image, error) {
	images := make([]*models.Image, 0, len(docs))
	if len(docs) == 0 {
		return images, nil
	}

	ids := make([]string, 0, len(docs))
	for i := range docs {
		ids = append(ids, docs[i].AuthorID)
	}
	cursor, err := s.db.Collection(colUsers).Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("mongostore: populate authors: %w", err)
	}
	var users []userDoc
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("mongostore: populate authors: %w", err)
	}
	authors := make(map[string]*models.Author, len(users))
	for _, u := range users {
		authors[u.ID] = &models.Author{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, ClerkID: u.ClerkID}
	}

	for i := range docs {
		img, err := fromImageDoc(&docs[i])
		if err != nil {
			return nil, fmt.Errorf("mongostore: %w", err)
		}
		img.Author = authors[img.AuthorID]
		images = append(images, img)
	}
	return images, nil
}

// ==================== Transaction Store ====================

func (s *Store) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if _, err := s.db.Collection(colTransactions).InsertOne(ctx, toTransactionDoc(t)); err != nil {
		return fmt.Errorf("mongostore: create transaction: %w", translate(err))
	}
	return nil
}

func (s *Store) GetTransactionByStripeID(ctx context.Context, stripeID string) (*models.Transaction, error) {
	var d transactionDoc
	if err := s.db.Collection(colTransactions).FindOne(ctx, bson.M{"stripe_id": stripeID}).Decode(&d); err != nil {
		return nil, fmt.Errorf("mongostore: get transaction: %w", translate(err))
	}
	return fromTransactionDoc(&d), nil
}

func (s *Store) SettleTransaction(ctx context.Context, transactionID string) error {
	res, err := s.db.Collection(colTransactions).UpdateOne(ctx,
		bson.M{"_id": transactionID},
		bson.M{"$set": bson.M{"status": string(models.StatusSettled)}},
	)
	if err != nil {
		return fmt.Errorf("mongostore: settle transaction: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("mongostore: settle transaction: %w", common.ErrNotFound)
	}
	return nil
}

func (s *Store) ListTransactions(ctx context.Context, buyerID string) ([]*models.Transaction, error) {
	cursor, err := s.db.Collection(colTransactions).Find(ctx,
		bson.M{"buyer_id": buyerID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("mongostore: list transactions: %w", err)
	}
	var docs []transactionDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongostore: list transactions: %w", err)
	}

	result := make([]*models.Transaction, 0, len(docs))
	for i := range docs {
		result = append(result, fromTransactionDoc(&docs[i]))
	}
	return result, nil
}

// WithinTx runs fn in a multi-document transaction. The deployment must be a
// replica set or sharded cluster.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}

	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("mongostore: start session: %w", err)
	}
	defer sess.EndSession(ctx)

	tx := &Store{client: s.client, db: s.db, inTx: true}
	_, err = sess.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		return nil, fn(ctx, tx)
	})
	return err
}

func translate(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return common.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", common.ErrAlreadyExists, err)
	}
	return err
}

// migrationIndexes returns the index definitions for every collection.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colUsers: {
			{
				Keys:    bson.D{{Key: "clerk_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "username", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		colImages: {
			{Keys: bson.D{{Key: "author_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "public_id", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		colTransactions: {
			{
				Keys:    bson.D{{Key: "stripe_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "buyer_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}
}
