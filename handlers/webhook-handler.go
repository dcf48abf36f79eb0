package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/krishkalaria12/pixelmind/identity"
	"github.com/krishkalaria12/pixelmind/metrics"
	"github.com/krishkalaria12/pixelmind/models"
)

const (
	providerClerk  = "clerk"
	providerStripe = "stripe"

	eventCheckoutCompleted = "checkout.session.completed"
)

// ClerkWebhook keeps local users in sync with Clerk. Failed deliveries get a
// 5xx so Clerk retries them.
func (h *Handler) ClerkWebhook(c *fiber.Ctx) error {
	ctx := c.UserContext()

	headers := make(http.Header)
	for k, vs := range c.GetReqHeaders() {
		for _, v := range vs {
			headers.Add(k, v)
		}
	}

	ev, err := h.clerk.Verify(c.Body(), headers)
	if err != nil {
		h.log.Warn(ctx, "clerk webhook rejected", "error", err)
		metrics.WebhookEventsTotal.WithLabelValues(providerClerk, "", metrics.OutcomeRejected).Inc()
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Clerk Webhook error",
			"error":   err.Error(),
		})
	}

	var user *models.User
	switch ev.Type {
	case identity.EventUserCreated:
		user, err = h.createClerkUser(ctx, ev.Data)
	case identity.EventUserUpdated:
		user, err = h.users.UpdateUser(ctx, ev.Data.ID, models.UpdateUserParams{
			FirstName: ev.Data.GetFirstName(),
			LastName:  ev.Data.GetLastName(),
			Username:  ev.Data.GetUsername(),
			Photo:     ev.Data.ImageURL,
		})
	case identity.EventUserDeleted:
		user, err = h.users.DeleteUser(ctx, ev.Data.ID)
	default:
		h.log.Info(ctx, "clerk webhook ignored", "type", ev.Type, "clerk_id", ev.Data.ID)
		metrics.WebhookEventsTotal.WithLabelValues(providerClerk, ev.Type, metrics.OutcomeIgnored).Inc()
		return ack(c)
	}

	if err != nil {
		metrics.WebhookEventsTotal.WithLabelValues(providerClerk, ev.Type, metrics.OutcomeFailed).Inc()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": err.Error(),
			"user":    nil,
		})
	}

	metrics.WebhookEventsTotal.WithLabelValues(providerClerk, ev.Type, metrics.OutcomeOK).Inc()
	return c.JSON(fiber.Map{"message": "OK", "user": user})
}

func (h *Handler) createClerkUser(ctx context.Context, data identity.UserEvent) (*models.User, error) {
	user, err := h.users.CreateUser(ctx, models.CreateUserParams{
		ClerkID:   data.ID,
		Email:     data.PrimaryEmail(),
		Username:  data.GetUsername(),
		FirstName: data.GetFirstName(),
		LastName:  data.GetLastName(),
		Photo:     data.ImageURL,
	})
	if err != nil {
		return nil, err
	}

	if err := h.metadata.SetUserID(ctx, data.ID, user.ID); err != nil {
		h.log.Error(ctx, "link clerk account", "clerk_id", data.ID, "user_id", user.ID, "error", err)
		return nil, err
	}
	return user, nil
}

// StripeWebhook records completed checkouts and grants their credits.
func (h *Handler) StripeWebhook(c *fiber.Ctx) error {
	ctx := c.UserContext()

	ev, err := h.stripe.ParseEvent(c.Body(), c.Get("Stripe-Signature"))
	if err != nil {
		h.log.Warn(ctx, "stripe webhook rejected", "error", err)
		metrics.WebhookEventsTotal.WithLabelValues(providerStripe, "", metrics.OutcomeRejected).Inc()
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Stripe Webhook error",
			"error":   err.Error(),
		})
	}

	if ev.Type != eventCheckoutCompleted || ev.Checkout == nil {
		metrics.WebhookEventsTotal.WithLabelValues(providerStripe, ev.Type, metrics.OutcomeIgnored).Inc()
		return ack(c)
	}

	co := ev.Checkout
	txn, err := h.txns.CreateTransaction(ctx, models.CreateTransactionParams{
		StripeID:  co.SessionID,
		Amount:    float64(co.AmountTotal) / 100,
		Credits:   co.Credits,
		Plan:      co.Plan,
		BuyerID:   co.BuyerID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		metrics.WebhookEventsTotal.WithLabelValues(providerStripe, ev.Type, metrics.OutcomeFailed).Inc()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message":     "Failed to create transaction",
			"transaction": nil,
		})
	}

	metrics.WebhookEventsTotal.WithLabelValues(providerStripe, ev.Type, metrics.OutcomeOK).Inc()
	return c.JSON(fiber.Map{"message": "OK", "transaction": txn})
}

// ack acknowledges a delivery with an empty 200. SendStatus would fill the
// body with the status text.
func ack(c *fiber.Ctx) error {
	c.Status(fiber.StatusOK)
	return nil
}
