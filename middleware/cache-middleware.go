package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cache"

	"github.com/krishkalaria12/pixelmind/pages"
)

// PageFunc names the page a request renders.
type PageFunc func(c *fiber.Ctx) string

// StaticPage renders every request as the same page.
func StaticPage(page string) PageFunc {
	return func(*fiber.Ctx) string { return page }
}

// Cache stores GET responses under a key bound to the current version of
// their page, so a revalidation makes the next request miss. Responses are
// kept per viewer when a user is logged in. Next runs again after the
// handler, so only successful responses are stored.
func Cache(r *pages.Revalidator, page PageFunc, ttl time.Duration) fiber.Handler {
	return cache.New(cache.Config{
		Expiration: ttl,
		KeyGenerator: func(c *fiber.Ctx) string {
			variant := c.OriginalURL()
			if user, err := CurrentUser(c); err == nil {
				variant += "|" + user.ID
			}
			return r.Key(page(c), variant)
		},
		Next: func(c *fiber.Ctx) bool {
			return c.Method() != fiber.MethodGet || c.Response().StatusCode() != fiber.StatusOK
		},
	})
}
