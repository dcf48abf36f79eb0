package actions

import (
	"context"
	"errors"
	"fmt"

	"github.com/krishkalaria12/pixelmind/common"
	"github.com/krishkalaria12/pixelmind/logging"
	"github.com/krishkalaria12/pixelmind/metrics"
	"github.com/krishkalaria12/pixelmind/models"
	"github.com/krishkalaria12/pixelmind/store"
)

type UserActions struct {
	store store.Store
	pages Revalidator
	log   logging.Logger
}

func NewUserActions(s store.Store, pages Revalidator, log logging.Logger) *UserActions {
	return &UserActions{store: s, pages: pages, log: log.With("actions", "user")}
}

// CreateUser inserts a user with the default plan and balance. A repeated
// call for a known Clerk id returns the existing user.
func (a *UserActions) CreateUser(ctx context.Context, p models.CreateUserParams) (*models.User, error) {
	if p.ClerkID == "" {
		return nil, handleError(ctx, a.log, "create user", fmt.Errorf("%w: clerk id is required", common.ErrInvalidInput))
	}

	u := models.NewUser(p)
	err := a.store.CreateUser(ctx, u)
	if errors.Is(err, common.ErrAlreadyExists) {
		if existing, getErr := a.store.GetUserByClerkID(ctx, p.ClerkID); getErr == nil {
			return existing, nil
		}
	}
	if err != nil {
		return nil, handleError(ctx, a.log, "create user", fmt.Errorf("%w: %w", common.ErrCreationFailed, err))
	}

	a.log.Info(ctx, "user created", "user_id", u.ID, "clerk_id", u.ClerkID)
	return u, nil
}

func (a *UserActions) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	u, err := a.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, handleError(ctx, a.log, "get user", err)
	}
	return u, nil
}

func (a *UserActions) GetUserByClerkID(ctx context.Context, clerkID string) (*models.User, error) {
	u, err := a.store.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		return nil, handleError(ctx, a.log, "get user by clerk id", err)
	}
	return u, nil
}

func (a *UserActions) UpdateUser(ctx context.Context, clerkID string, p models.UpdateUserParams) (*models.User, error) {
	u, err := a.store.UpdateUserByClerkID(ctx, clerkID, p)
	if err != nil {
		return nil, handleError(ctx, a.log, "update user", err)
	}
	return u, nil
}

// DeleteUser removes the user with the given Clerk id and returns it.
func (a *UserActions) DeleteUser(ctx context.Context, clerkID string) (*models.User, error) {
	u, err := a.store.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		return nil, handleError(ctx, a.log, "delete user", err)
	}
	if err := a.store.DeleteUser(ctx, u.ID); err != nil {
		return nil, handleError(ctx, a.log, "delete user", err)
	}
	a.pages.Revalidate("/")

	a.log.Info(ctx, "user deleted", "user_id", u.ID, "clerk_id", clerkID)
	return u, nil
}

// UpdateCredits adds delta to the balance. Negative deltas are not checked
// against the balance; see SpendCredits.
func (a *UserActions) UpdateCredits(ctx context.Context, userID string, delta int) (*models.User, error) {
	u, err := a.store.IncrementCredits(ctx, userID, delta)
	if err != nil {
		return nil, handleError(ctx, a.log, "update credits", err)
	}
	return u, nil
}

// SpendCredits charges fee (a negative delta such as models.CreditFee). The
// store refuses the charge when the balance does not cover it.
func (a *UserActions) SpendCredits(ctx context.Context, userID string, fee int) (*models.User, error) {
	if fee < 0 {
		fee = -fee
	}

	u, err := a.store.SpendCredits(ctx, userID, fee)
	if err != nil {
		return nil, handleError(ctx, a.log, "spend credits", err)
	}
	metrics.CreditsSpentTotal.Add(float64(fee))
	return u, nil
}
