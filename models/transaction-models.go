package models

import "time"

type TransactionStatus string

const (
	StatusPending TransactionStatus = "pending"
	StatusSettled TransactionStatus = "settled"
)

type Transaction struct {
	ID        string            `json:"id"`
	StripeID  string            `json:"stripeId"`
	Amount    float64           `json:"amount"`
	Plan      string            `json:"plan,omitempty"`
	Credits   int               `json:"credits,omitempty"`
	BuyerID   string            `json:"buyerId"`
	Status    TransactionStatus `json:"status"`
	CreatedAt time.Time         `json:"createdAt"`
}

type CreateTransactionParams struct {
	StripeID  string
	Amount    float64
	Credits   int
	Plan      string
	BuyerID   string
	CreatedAt time.Time
}

type CheckoutTransactionParams struct {
	Plan    string  `json:"plan"`
	Credits int     `json:"credits"`
	Amount  float64 `json:"amount"`
	BuyerID string  `json:"buyerId"`
}
