// Package store defines the persistence interface shared by the Postgres,
// MongoDB and in-memory backends.
package store

import (
	"context"

	"github.com/krishkalaria12/pixelmind/models"
)

// Store is the unified storage interface for users, images and the
// transaction ledger. Lookups of absent records return common.ErrNotFound.
type Store interface {
	// User methods
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	GetUserByClerkID(ctx context.Context, clerkID string) (*models.User, error)
	UpdateUserByClerkID(ctx context.Context, clerkID string, p models.UpdateUserParams) (*models.User, error)
	// DeleteUser removes the user and the images they own.
	DeleteUser(ctx context.Context, userID string) error
	// IncrementCredits adds delta to the balance in a single store-side
	// update and returns the updated user.
	IncrementCredits(ctx context.Context, userID string, delta int) (*models.User, error)
	// SpendCredits subtracts amount in one conditional update and returns
	// common.ErrInsufficientCredits when the balance is below amount.
	SpendCredits(ctx context.Context, userID string, amount int) (*models.User, error)

	// Image methods
	CreateImage(ctx context.Context, img *models.Image) error
	// GetImage returns the image with its Author populated.
	GetImage(ctx context.Context, imageID string) (*models.Image, error)
	UpdateImage(ctx context.Context, img *models.Image) error
	DeleteImage(ctx context.Context, imageID string) error
	// ListImages returns matching images newest first, authors populated.
	ListImages(ctx context.Context, q models.ImageQuery) ([]*models.Image, error)
	// CountImages counts matching images, ignoring Offset and Limit.
	CountImages(ctx context.Context, q models.ImageQuery) (int, error)

	// Transaction methods
	// CreateTransaction returns common.ErrAlreadyExists for a known StripeID.
	CreateTransaction(ctx context.Context, t *models.Transaction) error
	GetTransactionByStripeID(ctx context.Context, stripeID string) (*models.Transaction, error)
	SettleTransaction(ctx context.Context, transactionID string) error
	ListTransactions(ctx context.Context, buyerID string) ([]*models.Transaction, error)

	// WithinTx runs fn against a store bound to one transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error

	// Core methods
	Ping(ctx context.Context) error
	Close() error
}
