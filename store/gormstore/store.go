// Package gormstore implements store.Store on Postgres through gorm.
package gormstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/krishkalaria12/pixelmind/common"
	"github.com/krishkalaria12/pixelmind/models"
	"github.com/krishkalaria12/pixelmind/store"
)

var _ store.Store = (*Store)(nil)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying gorm handle.
func (s *Store) DB() *gorm.DB { return s.db }

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	row := toUserRow(u)
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("gormstore: create user: %w", translate(err))
	}
	u.CreatedAt, u.UpdatedAt = row.CreatedAt, row.UpdatedAt
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	var row userRow
	if err := s.db.WithContext(ctx).Where("id = ?", userID).First(&row).Error; err != nil {
		return nil, fmt.Errorf("gormstore: get user: %w", translate(err))
	}
	return fromUserRow(&row), nil
}

func (s *Store) GetUserByClerkID(ctx context.Context, clerkID string) (*models.User, error) {
	var row userRow
	if err := s.db.WithContext(ctx).Where("clerk_id = ?", clerkID).First(&row).Error; err != nil {
		return nil, fmt.Errorf("gormstore: get user by clerk id: %w", translate(err))
	}
	return fromUserRow(&row), nil
}

func (s *Store) UpdateUserByClerkID(ctx context.Context, clerkID string, p models.UpdateUserParams) (*models.User, error) {
	var row userRow
	res := s.db.WithContext(ctx).
		Model(&row).
		Clauses(clause.Returning{}).
		Where("clerk_id = ?", clerkID).
		Updates(map[string]any{
			"first_name": p.FirstName,
			"last_name":  p.LastName,
			"username":   p.Username,
			"photo":      p.Photo,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("gormstore: update user: %w", translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("gormstore: update user: %w", common.ErrNotFound)
	}
	return fromUserRow(&row), nil
}

// DeleteUser relies on the images.author_id foreign key cascading.
func (s *Store) DeleteUser(ctx context.Context, userID string) error {
	res := s.db.WithContext(ctx).Where("id = ?", userID).Delete(&userRow{})
	if res.Error != nil {
		return fmt.Errorf("gormstore: delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("gormstore: delete user: %w", common.ErrNotFound)
	}
	return nil
}

func (s *Store) IncrementCredits(ctx context.Context, userID string, delta int) (*models.User, error) {
	var row userRow
	res := s.db.WithContext(ctx).
		Model(&row).
		Clauses(clause.Returning{}).
		Where("id = ?", userID).
		Update("credit_balance", gorm.Expr("credit_balance + ?", delta))
	if res.Error != nil {
		return nil, fmt.Errorf("gormstore: increment credits: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("gormstore: increment credits: %w", common.ErrNotFound)
	}
	return fromUserRow(&row), nil
}

// SpendCredits decrements only rows whose balance covers amount. A miss is
// told apart from an unknown user by a second lookup.
func (s *Store) SpendCredits(ctx context.Context, userID string, amount int) (*models.User, error) {
	var row userRow
	res := s.db.WithContext(ctx).
		Model(&row).
		Clauses(clause.Returning{}).
		Where("id = ? AND credit_balance >= ?", userID, amount).
		Update("credit_balance", gorm.Expr("credit_balance - ?", amount))
	if res.Error != nil {
		return nil, fmt.Errorf("gormstore: spend credits: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := s.GetUserByID(ctx, userID); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("gormstore: spend credits: %w", common.ErrInsufficientCredits)
	}
	return fromUserRow(&row), nil
}

func (s *Store) CreateImage(ctx context.Context, img *models.Image) error {
	row, err := toImageRow(img)
	if err != nil {
		return fmt.Errorf("gormstore: create image: %w", err)
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(row).Error; err != nil {
		return fmt.Errorf("gormstore: create image: %w", translate(err))
	}
	img.CreatedAt, img.UpdatedAt = row.CreatedAt, row.UpdatedAt
	return nil
}

func (s *Store) GetImage(ctx context.Context, imageID string) (*models.Image, error) {
	var row imageRow
	if err := s.db.WithContext(ctx).Preload("Author").Where("id = ?", imageID).First(&row).Error; err != nil {
		return nil, fmt.Errorf("gormstore: get image: %w", translate(err))
	}
	return fromImageRow(&row)
}

func (s *Store) UpdateImage(ctx context.Context, img *models.Image) error {
	row, err := toImageRow(img)
	if err != nil {
		return fmt.Errorf("gormstore: update image: %w", err)
	}
	res := s.db.WithContext(ctx).
		Model(&imageRow{}).
		Where("id = ?", img.ID).
		Updates(map[string]any{
			"title":               row.Title,
			"transformation_type": row.TransformationType,
			"public_id":           row.PublicID,
			"secure_url":          row.SecureURL,
			"width":               row.Width,
			"height":              row.Height,
			"config":              row.Config,
			"transformation_url":  row.TransformationURL,
			"aspect_ratio":        row.AspectRatio,
			"color":               row.Color,
			"prompt":              row.Prompt,
		})
	if res.Error != nil {
		return fmt.Errorf("gormstore: update image: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("gormstore: update image: %w", common.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteImage(ctx context.Context, imageID string) error {
	res := s.db.WithContext(ctx).Where("id = ?", imageID).Delete(&imageRow{})
	if res.Error != nil {
		return fmt.Errorf("gormstore: delete image: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("gormstore: delete image: %w", common.ErrNotFound)
	}
	return nil
}

func (s *Store) ListImages(ctx context.Context, q models.ImageQuery) ([]*models.Image, error) {
	if q.PublicIDs != nil && len(q.PublicIDs) == 0 {
		return []*models.Image{}, nil
	}

	var rows []imageRow
	tx := s.imageQuery(ctx, q).Preload("Author").Order("created_at DESC").Offset(q.Offset)
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	if err := tx.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("gormstore: list images: %w", err)
	}

	images := make([]*models.Image, 0, len(rows))
	for i := range rows {
		img, err := fromImageRow(&rows[i])
		if err != nil {
			return nil, fmt.Errorf("gormstore: list images: %w", err)
		}
		images = append(images, img)
	}
	return images, nil
}

func (s *Store) CountImages(ctx context.Context, q models.ImageQuery) (int, error) {
	if q.PublicIDs != nil && len(q.PublicIDs) == 0 {
		return 0, nil
	}

	var n int64
	if err := s.imageQuery(ctx, q).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("gormstore: count images: %w", err)
	}
	return int(n), nil
}

func (s *Store) imageQuery(ctx context.Context, q models.ImageQuery) *gorm.DB {
	tx := s.db.WithContext(ctx).Model(&imageRow{})
	if q.AuthorID != "" {
		tx = tx.Where("author_id = ?", q.AuthorID)
	}
	if q.PublicIDs != nil {
		tx = tx.Where("public_id IN ?", q.PublicIDs)
	}
	return tx
}

func (s *Store) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	row := toTransactionRow(t)
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("gormstore: create transaction: %w", translate(err))
	}
	t.CreatedAt = row.CreatedAt
	return nil
}

func (s *Store) GetTransactionByStripeID(ctx context.Context, stripeID string) (*models.Transaction, error) {
	var row transactionRow
	if err := s.db.WithContext(ctx).Where("stripe_id = ?", stripeID).First(&row).Error; err != nil {
		return nil, fmt.Errorf("gormstore: get transaction: %w", translate(err))
	}
	return fromTransactionRow(&row), nil
}

func (s *Store) SettleTransaction(ctx context.Context, transactionID string) error {
	res := s.db.WithContext(ctx).
		Model(&transactionRow{}).
		Where("id = ?", transactionID).
		Update("status", string(models.StatusSettled))
	if res.Error != nil {
		return fmt.Errorf("gormstore: settle transaction: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("gormstore: settle transaction: %w", common.ErrNotFound)
	}
	return nil
}

func (s *Store) ListTransactions(ctx context.Context, buyerID string) ([]*models.Transaction, error) {
	var rows []transactionRow
	if err := s.db.WithContext(ctx).Where("buyer_id = ?", buyerID).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("gormstore: list transactions: %w", err)
	}

	result := make([]*models.Transaction, 0, len(rows))
	for i := range rows {
		result = append(result, fromTransactionRow(&rows[i]))
	}
	return result, nil
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, New(tx))
	})
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// translate maps driver errors onto the common taxonomy.
func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return common.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", common.ErrAlreadyExists, pgErr.ConstraintName)
	}
	return err
}
