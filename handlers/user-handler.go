package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/krishkalaria12/pixelmind/middleware"
	"github.com/krishkalaria12/pixelmind/models"
)

func (h *Handler) Profile(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusOK, "User found", user)
}

func (h *Handler) ProfileImages(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return fail(c, err)
	}

	page, err := h.images.GetUserImages(c.UserContext(), models.UserImagesParams{
		Limit:  c.QueryInt("limit", models.DefaultPageLimit),
		Page:   c.QueryInt("page", 1),
		UserID: user.ID,
	})
	if err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusOK, "Images found", page)
}

func (h *Handler) ProfileTransactions(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return fail(c, err)
	}

	txns, err := h.txns.ListUserTransactions(c.UserContext(), user.ID)
	if err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusOK, "Transactions found", txns)
}
