package gormstore

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/krishkalaria12/pixelmind/models"
	"github.com/krishkalaria12/pixelmind/transform"
)

type userRow struct {
	ID            string `gorm:"primaryKey"`
	ClerkID       string `gorm:"uniqueIndex;not null"`
	Email         string `gorm:"uniqueIndex;not null"`
	Username      string `gorm:"uniqueIndex;not null"`
	Photo         string
	FirstName     string
	LastName      string
	PlanID        int
	CreditBalance int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (userRow) TableName() string { return "users" }

func toUserRow(u *models.User) *userRow {
	return &userRow{
		ID:            u.ID,
		ClerkID:       u.ClerkID,
		Email:         u.Email,
		Username:      u.Username,
		Photo:         u.Photo,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		PlanID:        u.PlanID,
		CreditBalance: u.CreditBalance,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func fromUserRow(r *userRow) *models.User {
	return &models.User{
		ID:            r.ID,
		ClerkID:       r.ClerkID,
		Email:         r.Email,
		Username:      r.Username,
		Photo:         r.Photo,
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		PlanID:        r.PlanID,
		CreditBalance: r.CreditBalance,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

type imageRow struct {
	ID                 string `gorm:"primaryKey"`
	Title              string
	TransformationType string
	PublicID           string `gorm:"index"`
	SecureURL          string
	Width              int
	Height             int
	Config             datatypes.JSON
	TransformationURL  string
	AspectRatio        string
	Color              string
	Prompt             string
	AuthorID           string   `gorm:"index;not null"`
	Author             *userRow `gorm:"foreignKey:AuthorID"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (imageRow) TableName() string { return "images" }

func toImageRow(img *models.Image) (*imageRow, error) {
	cfg, err := encodeConfig(img.Config)
	if err != nil {
		return nil, err
	}
	return &imageRow{
		ID:                 img.ID,
		Title:              img.Title,
		TransformationType: string(img.TransformationType),
		PublicID:           img.PublicID,
		SecureURL:          img.SecureURL,
		Width:              img.Width,
		Height:             img.Height,
		Config:             cfg,
		TransformationURL:  img.TransformationURL,
		AspectRatio:        img.AspectRatio,
		Color:              img.Color,
		Prompt:             img.Prompt,
		AuthorID:           img.AuthorID,
		CreatedAt:          img.CreatedAt,
		UpdatedAt:          img.UpdatedAt,
	}, nil
}

func fromImageRow(r *imageRow) (*models.Image, error) {
	img := &models.Image{
		ID:                 r.ID,
		Title:              r.Title,
		TransformationType: transform.Type(r.TransformationType),
		PublicID:           r.PublicID,
		SecureURL:          r.SecureURL,
		Width:              r.Width,
		Height:             r.Height,
		TransformationURL:  r.TransformationURL,
		AspectRatio:        r.AspectRatio,
		Color:              r.Color,
		Prompt:             r.Prompt,
		AuthorID:           r.AuthorID,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
	if len(r.Config) > 0 {
		if err := json.Unmarshal(r.Config, &img.Config); err != nil {
			return nil, fmt.Errorf("decode config of image %s: %w", r.ID, err)
		}
	}
	if r.Author != nil {
		img.Author = &models.Author{
			ID:        r.Author.ID,
			FirstName: r.Author.FirstName,
			LastName:  r.Author.LastName,
			ClerkID:   r.Author.ClerkID,
		}
	}
	return img, nil
}

func encodeConfig(v transform.Value) (datatypes.JSON, error) {
	if v.IsZero() {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return datatypes.JSON(b), nil
}

type transactionRow struct {
	ID        string `gorm:"primaryKey"`
	StripeID  string `gorm:"uniqueIndex;not null"`
	Amount    float64
	Plan      string
	Credits   int
	BuyerID   string `gorm:"index;not null"`
	Status    string
	CreatedAt time.Time
}

func (transactionRow) TableName() string { return "transactions" }

func toTransactionRow(t *models.Transaction) *transactionRow {
	return &transactionRow{
		ID:        t.ID,
		StripeID:  t.StripeID,
		Amount:    t.Amount,
		Plan:      t.Plan,
		Credits:   t.Credits,
		BuyerID:   t.BuyerID,
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt,
	}
}

func fromTransactionRow(r *transactionRow) *models.Transaction {
	return &models.Transaction{
		ID:        r.ID,
		StripeID:  r.StripeID,
		Amount:    r.Amount,
		Plan:      r.Plan,
		Credits:   r.Credits,
		BuyerID:   r.BuyerID,
		Status:    models.TransactionStatus(r.Status),
		CreatedAt: r.CreatedAt,
	}
}
