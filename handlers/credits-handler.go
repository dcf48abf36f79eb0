package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/krishkalaria12/pixelmind/middleware"
	"github.com/krishkalaria12/pixelmind/models"
)

func (h *Handler) Plans(c *fiber.Ctx) error {
	return success(c, fiber.StatusOK, "Plans found", models.Plans)
}

// Checkout redirects the buyer to the hosted payment page of a plan.
func (h *Handler) Checkout(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return fail(c, err)
	}

	type CheckoutRequest struct {
		Plan string `json:"plan" form:"plan"`
	}

	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	url, err := h.txns.CheckoutCredits(c.UserContext(), models.CheckoutTransactionParams{
		Plan:    req.Plan,
		BuyerID: user.ID,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Redirect(url, fiber.StatusSeeOther)
}
