package mongostore

import (
	"fmt"
	"time"

	"github.com/krishkalaria12/pixelmind/models"
	"github.com/krishkalaria12/pixelmind/transform"
)

type userDoc struct {
	ID            string    `bson:"_id"`
	ClerkID       string    `bson:"clerk_id"`
	Email         string    `bson:"email"`
	Username      string    `bson:"username"`
	Photo         string    `bson:"photo"`
	FirstName     string    `bson:"first_name,omitempty"`
	LastName      string    `bson:"last_name,omitempty"`
	PlanID        int       `bson:"plan_id"`
	CreditBalance int       `bson:"credit_balance"`
	CreatedAt     time.Time `bson:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at"`
}

func toUserDoc(u *models.User) *userDoc {
	return &userDoc{
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

func fromUserDoc(d *userDoc) *models.User {
	return &models.User{
		ID:            d.ID,
		ClerkID:       d.ClerkID,
		Email:         d.Email,
		Username:      d.Username,
		Photo:         d.Photo,
		FirstName:     d.FirstName,
		LastName:      d.LastName,
		PlanID:        d.PlanID,
		CreditBalance: d.CreditBalance,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

type imageDoc struct {
	ID                 string            `bson:"_id"`
	Title              string            `bson:"title"`
	TransformationType string            `bson:"transformation_type"`
	PublicID           string            `bson:"public_id"`
	SecureURL          string            `bson:"secure_url"`
	Width              int               `bson:"width,omitempty"`
	Height             int               `bson:"height,omitempty"`
	Config             *transform.Fields `bson:"config,omitempty"`
	TransformationURL  string            `bson:"transformation_url,omitempty"`
	AspectRatio        string            `bson:"aspect_ratio,omitempty"`
	Color              string            `bson:"color,omitempty"`
	Prompt             string            `bson:"prompt,omitempty"`
	AuthorID           string            `bson:"author_id"`
	CreatedAt          time.Time         `bson:"created_at"`
	UpdatedAt          time.Time         `bson:"updated_at"`
}

func toImageDoc(img *models.Image) *imageDoc {
	d := &imageDoc{
		ID:                 img.ID,
		Title:              img.Title,
		TransformationType: string(img.TransformationType),
		PublicID:           img.PublicID,
		SecureURL:          img.SecureURL,
		Width:              img.Width,
		Height:             img.Height,
		TransformationURL:  img.TransformationURL,
		AspectRatio:        img.AspectRatio,
		Color:              img.Color,
		Prompt:             img.Prompt,
		AuthorID:           img.AuthorID,
		CreatedAt:          img.CreatedAt,
		UpdatedAt:          img.UpdatedAt,
	}
	if !img.Config.IsZero() {
		f := transform.Encode(img.Config.Config)
		d.Config = &f
	}
	return d
}

func fromImageDoc(d *imageDoc) (*models.Image, error) {
	img := &models.Image{
		ID:                 d.ID,
		Title:              d.Title,
		TransformationType: transform.Type(d.TransformationType),
		PublicID:           d.PublicID,
		SecureURL:          d.SecureURL,
		Width:              d.Width,
		Height:             d.Height,
		TransformationURL:  d.TransformationURL,
		AspectRatio:        d.AspectRatio,
		Color:              d.Color,
		Prompt:             d.Prompt,
		AuthorID:           d.AuthorID,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
	if d.Config != nil {
		cfg, err := transform.Decode(*d.Config)
		if err != nil {
			return nil, fmt.Errorf("decode config of image %s: %w", d.ID, err)
		}
		img.Config = transform.Value{Config: cfg}
	}
	return img, nil
}

type transactionDoc struct {
	ID        string    `bson:"_id"`
	StripeID  string    `bson:"stripe_id"`
	Amount    float64   `bson:"amount"`
	Plan      string    `bson:"plan,omitempty"`
	Credits   int       `bson:"credits,omitempty"`
	BuyerID   string    `bson:"buyer_id"`
	Status    string    `bson:"status"`
	CreatedAt time.Time `bson:"created_at"`
}

func toTransactionDoc(t *models.Transaction) *transactionDoc {
	return &transactionDoc{
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

func fromTransactionDoc(d *transactionDoc) *models.Transaction {
	return &models.Transaction{
		ID:        d.ID,
		StripeID:  d.StripeID,
		Amount:    d.Amount,
		Plan:      d.Plan,
		Credits:   d.Credits,
		BuyerID:   d.BuyerID,
		Status:    models.TransactionStatus(d.Status),
		CreatedAt: d.CreatedAt,
	}
}
