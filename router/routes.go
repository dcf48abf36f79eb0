package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/krishkalaria12/pixelmind/auth"
	handler "github.com/krishkalaria12/pixelmind/handlers"
	"github.com/krishkalaria12/pixelmind/logging"
	"github.com/krishkalaria12/pixelmind/middleware"
	"github.com/krishkalaria12/pixelmind/pages"
)

const defaultCacheTTL = time.Minute

type Options struct {
	Handler  *handler.Handler
	Sessions auth.SessionVerifier
	Users    middleware.UserLookup
	Pages    *pages.Revalidator
	CacheTTL time.Duration
	Log      logging.Logger
}

func SetupRoutes(app *fiber.App, o Options) {
	h := o.Handler
	ttl := o.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	app.Use(recover.New())
	app.Use(middleware.Metrics())

	app.Get("/health", h.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api", logger.New())
	requireUser := middleware.AuthMiddleware(o.Sessions, o.Users, o.Log)

	// Images
	images := api.Group("/images")
	images.Get("/", middleware.Cache(o.Pages, middleware.StaticPage("/"), ttl), h.ListImages)
	images.Get("/:id", middleware.Cache(o.Pages, func(c *fiber.Ctx) string {
		return handler.TransformationPage(c.Params("id"))
	}, ttl), h.GetImage)
	images.Post("/", requireUser, h.CreateImage)
	images.Put("/:id", requireUser, h.UpdateImage)
	images.Delete("/:id", requireUser, h.DeleteImage)

	api.Post("/transformations/preview", requireUser, h.PreviewTransformation)

	// Profile
	profile := api.Group("/profile", requireUser)
	profile.Get("/", h.Profile)
	profile.Get("/images", middleware.Cache(o.Pages, middleware.StaticPage("/profile"), ttl), h.ProfileImages)
	profile.Get("/transactions", h.ProfileTransactions)

	// Credits
	credits := api.Group("/credits")
	credits.Get("/plans", h.Plans)
	credits.Post("/checkout", requireUser, h.Checkout)

	// Webhooks
	webhooks := api.Group("/webhooks")
	webhooks.Post("/clerk", h.ClerkWebhook)
	webhooks.Post("/stripe", h.StripeWebhook)
}
