package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/krishkalaria12/pixelmind/actions"
	"github.com/krishkalaria12/pixelmind/billing"
	"github.com/krishkalaria12/pixelmind/common"
	"github.com/krishkalaria12/pixelmind/identity"
	"github.com/krishkalaria12/pixelmind/logging"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Users        *actions.UserActions
	Images       *actions.ImageActions
	Transactions *actions.TransactionActions

	ClerkWebhooks  identity.WebhookVerifier
	ClerkMetadata  identity.MetadataWriter
	StripeWebhooks billing.EventParser

	Store Pinger
	Log   logging.Logger
}

type Handler struct {
	users    *actions.UserActions
	images   *actions.ImageActions
	txns     *actions.TransactionActions
	clerk    identity.WebhookVerifier
	metadata identity.MetadataWriter
	stripe   billing.EventParser
	store    Pinger
	log      logging.Logger
}

func New(d Deps) *Handler {
	return &Handler{
		users:    d.Users,
		images:   d.Images,
		txns:     d.Transactions,
		clerk:    d.ClerkWebhooks,
		metadata: d.ClerkMetadata,
		stripe:   d.StripeWebhooks,
		store:    d.Store,
		log:      d.Log.With("component", "http"),
	}
}

// StatusFor maps an action error to the HTTP status it is reported with.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, common.ErrUnauthenticated):
		return fiber.StatusUnauthorized
	case errors.Is(err, common.ErrUnauthorized):
		return fiber.StatusForbidden
	case errors.Is(err, common.ErrInsufficientCredits):
		return fiber.StatusPaymentRequired
	case errors.Is(err, common.ErrInvalidInput), errors.Is(err, common.ErrVerificationFailed):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// fail writes the error envelope. Details of unexpected errors stay in the
// logs.
func fail(c *fiber.Ctx, err error) error {
	status := StatusFor(err)
	message := err.Error()
	if status == fiber.StatusInternalServerError {
		message = "Internal server error"
	}
	return c.Status(status).JSON(fiber.Map{
		"status":  "error",
		"message": message,
		"data":    nil,
	})
}

func success(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(fiber.Map{
		"status":  "success",
		"message": message,
		"data":    data,
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"status":  "error",
		"message": message,
		"data":    nil,
	})
}
