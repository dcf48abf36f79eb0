package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/krishkalaria12/pixelmind/actions"
	"github.com/krishkalaria12/pixelmind/middleware"
	"github.com/krishkalaria12/pixelmind/models"
)

// TransformationPage is the page an image is shown on.
func TransformationPage(imageID string) string {
	return "/transformations/" + imageID
}

func (h *Handler) ListImages(c *fiber.Ctx) error {
	page, err := h.images.GetAllImages(c.UserContext(), models.ListImagesParams{
		Limit:       c.QueryInt("limit", models.DefaultPageLimit),
		Page:        c.QueryInt("page", 1),
		SearchQuery: c.Query("query"),
	})
	if err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusOK, "Images found", page)
}

func (h *Handler) GetImage(c *fiber.Ctx) error {
	img, err := h.images.GetImageByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusOK, "Image found", img)
}

func (h *Handler) CreateImage(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return fail(c, err)
	}

	var params models.ImageParams
	if err := c.BodyParser(&params); err != nil {
		return badRequest(c, "Invalid request body")
	}

	img, err := h.images.AddImage(c.UserContext(), params, user.ID, "/")
	if err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusCreated, "Image saved", img)
}

func (h *Handler) UpdateImage(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return fail(c, err)
	}

	var params models.ImageParams
	if err := c.BodyParser(&params); err != nil {
		return badRequest(c, "Invalid request body")
	}
	params.ID = c.Params("id")

	img, err := h.images.UpdateImage(c.UserContext(), params, user.ID, TransformationPage(params.ID))
	if err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusOK, "Image updated", img)
}

// DeleteImage sends the client back to the home page once the image is gone.
func (h *Handler) DeleteImage(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return fail(c, err)
	}

	if err := h.images.DeleteImage(c.UserContext(), c.Params("id"), user.ID); err != nil {
		return fail(c, err)
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (h *Handler) PreviewTransformation(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return fail(c, err)
	}

	var req actions.PreviewRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	preview, err := h.images.PreviewTransformation(c.UserContext(), user.ID, req)
	if err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusOK, "Transformation applied", preview)
}
