package actions

import (
	"context"
	"errors"
	"fmt"

	"github.com/krishkalaria12/pixelmind/billing"
	"github.com/krishkalaria12/pixelmind/common"
	"github.com/krishkalaria12/pixelmind/logging"
	"github.com/krishkalaria12/pixelmind/metrics"
	"github.com/krishkalaria12/pixelmind/models"
	"github.com/krishkalaria12/pixelmind/store"
)

// errDuplicate aborts a ledger transaction whose checkout session is known.
var errDuplicate = errors.New("duplicate checkout session")

type TransactionActions struct {
	store     store.Store
	checkout  billing.Checkout
	serverURL string
	log       logging.Logger
}

func NewTransactionActions(s store.Store, checkout billing.Checkout, serverURL string, log logging.Logger) *TransactionActions {
	return &TransactionActions{
		store:     s,
		checkout:  checkout,
		serverURL: serverURL,
		log:       log.With("actions", "transaction"),
	}
}

// CheckoutCredits opens a hosted checkout for a catalogue plan and returns
// its URL. Price and credits come from the catalogue, not the caller.
func (a *TransactionActions) CheckoutCredits(ctx context.Context, p models.CheckoutTransactionParams) (string, error) {
	plan, ok := models.PlanByName(p.Plan)
	if !ok || plan.Price <= 0 {
		return "", handleError(ctx, a.log, "checkout credits", fmt.Errorf("%w: plan %q cannot be purchased", common.ErrInvalidInput, p.Plan))
	}
	if p.BuyerID == "" {
		return "", handleError(ctx, a.log, "checkout credits", fmt.Errorf("%w: buyer is required", common.ErrInvalidInput))
	}

	url, err := a.checkout.CreateCheckoutSession(ctx, billing.CheckoutRequest{
		Plan:       plan.Name,
		Credits:    plan.Credits,
		Amount:     plan.Price,
		BuyerID:    p.BuyerID,
		SuccessURL: a.serverURL + "/profile",
		CancelURL:  a.serverURL + "/",
	})
	if err != nil {
		return "", handleError(ctx, a.log, "checkout credits", err)
	}
	return url, nil
}

// CreateTransaction records a completed purchase and grants its credits in
// one store transaction. A repeated StripeID returns the recorded
// transaction without granting again.
func (a *TransactionActions) CreateTransaction(ctx context.Context, p models.CreateTransactionParams) (*models.Transaction, error) {
	if p.StripeID == "" || p.BuyerID == "" {
		return nil, handleError(ctx, a.log, "create transaction", fmt.Errorf("%w: stripe id and buyer are required", common.ErrInvalidInput))
	}

	existing, err := a.store.GetTransactionByStripeID(ctx, p.StripeID)
	if err == nil {
		return a.replay(ctx, existing), nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, handleError(ctx, a.log, "create transaction", err)
	}

	txn := &models.Transaction{
		ID:        models.NewTransactionID(),
		StripeID:  p.StripeID,
		Amount:    p.Amount,
		Plan:      p.Plan,
		Credits:   p.Credits,
		BuyerID:   p.BuyerID,
		Status:    models.StatusPending,
		CreatedAt: p.CreatedAt,
	}

	err = a.store.WithinTx(ctx, func(ctx context.Context, tx store.Store) error {
		if err := tx.CreateTransaction(ctx, txn); err != nil {
			if errors.Is(err, common.ErrAlreadyExists) {
				return errDuplicate
			}
			return fmt.Errorf("%w: %w", common.ErrCreationFailed, err)
		}
		if _, err := tx.IncrementCredits(ctx, txn.BuyerID, txn.Credits); err != nil {
			return fmt.Errorf("grant credits: %w", err)
		}
		return tx.SettleTransaction(ctx, txn.ID)
	})
	if errors.Is(err, errDuplicate) {
		existing, getErr := a.store.GetTransactionByStripeID(ctx, p.StripeID)
		if getErr != nil {
			return nil, handleError(ctx, a.log, "create transaction", getErr)
		}
		return a.replay(ctx, existing), nil
	}
	if err != nil {
		return nil, handleError(ctx, a.log, "create transaction", err)
	}

	txn.Status = models.StatusSettled
	metrics.CreditsGrantedTotal.Add(float64(txn.Credits))
	a.log.Info(ctx, "transaction settled", "transaction_id", txn.ID, "buyer_id", txn.BuyerID, "credits", txn.Credits)
	return txn, nil
}

// replay reports a redelivered purchase. A pending record means a grant was
// interrupted and needs reconciliation; it is not granted again here.
func (a *TransactionActions) replay(ctx context.Context, txn *models.Transaction) *models.Transaction {
	if txn.Status == models.StatusPending {
		a.log.Warn(ctx, "transaction left pending", "transaction_id", txn.ID, "stripe_id", txn.StripeID)
	} else {
		a.log.Info(ctx, "duplicate checkout delivery", "transaction_id", txn.ID, "stripe_id", txn.StripeID)
	}
	return txn
}

func (a *TransactionActions) ListUserTransactions(ctx context.Context, buyerID string) ([]*models.Transaction, error) {
	txns, err := a.store.ListTransactions(ctx, buyerID)
	if err != nil {
		return nil, handleError(ctx, a.log, "list transactions", err)
	}
	return txns, nil
}
