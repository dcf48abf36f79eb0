package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krishkalaria12/pixelmind/common"
	"github.com/krishkalaria12/pixelmind/logging"
	"github.com/krishkalaria12/pixelmind/models"
	"github.com/krishkalaria12/pixelmind/pages"
)

type stubSessions struct{}

func (stubSessions) Verify(token string) (string, error) {
	clerkID, ok := strings.CutPrefix(token, "token-")
	if !ok {
		return "", common.ErrUnauthenticated
	}
	return clerkID, nil
}

type stubUsers map[string]*models.User

func (s stubUsers) GetUserByClerkID(_ context.Context, clerkID string) (*models.User, error) {
	if clerkID == "broken" {
		return nil, errors.New("db down")
	}
	u, ok := s[clerkID]
	if !ok {
		return nil, common.ErrNotFound
	}
	return u, nil
}

func TestAuthMiddleware(t *testing.T) {
	users := stubUsers{"clerk_ann": {ID: "user_ann", ClerkID: "clerk_ann"}}

	app := fiber.New()
	app.Get("/me", AuthMiddleware(stubSessions{}, users, logging.Discard()), func(c *fiber.Ctx) error {
		u, err := CurrentUser(c)
		if err != nil {
			return err
		}
		return c.SendString(u.ID)
	})

	tests := []struct {
		name   string
		header string
		cookie string
		status int
		body   string
	}{
		{name: "no token", status: fiber.StatusUnauthorized},
		{name: "bad token", header: "Bearer garbage", status: fiber.StatusUnauthorized},
		{name: "unknown user", header: "Bearer token-clerk_bob", status: fiber.StatusUnauthorized},
		{name: "store failure", header: "Bearer token-broken", status: fiber.StatusInternalServerError},
		{name: "bearer", header: "Bearer token-clerk_ann", status: fiber.StatusOK, body: "user_ann"},
		{name: "cookie", cookie: "token-clerk_ann", status: fiber.StatusOK, body: "user_ann"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "__session", Value: tt.cookie})
			}

			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.body != "" {
				body, _ := io.ReadAll(resp.Body)
				assert.Equal(t, tt.body, string(body))
			}
		})
	}
}

func TestCurrentUser_WithoutMiddleware(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		_, err := CurrentUser(c)
		assert.ErrorIs(t, err, common.ErrUnauthenticated)
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestCache_Revalidate(t *testing.T) {
	revalidator := pages.New()
	calls := 0

	app := fiber.New()
	app.Get("/images/:id",
		Cache(revalidator, func(c *fiber.Ctx) string { return "/transformations/" + c.Params("id") }, time.Minute),
		func(c *fiber.Ctx) error {
			calls++
			return c.SendString(c.Params("id"))
		})

	get := func(path string) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	get("/images/a")
	get("/images/a")
	assert.Equal(t, 1, calls, "second request is served from cache")

	get("/images/b")
	assert.Equal(t, 2, calls)

	revalidator.Revalidate("/transformations/a")
	get("/images/a")
	get("/images/b")
	assert.Equal(t, 3, calls, "only the revalidated page misses")

	revalidator.Revalidate("/")
	get("/images/b")
	assert.Equal(t, 4, calls)
}

func TestCache_SkipsErrors(t *testing.T) {
	calls := 0
	app := fiber.New()
	app.Get("/", Cache(pages.New(), StaticPage("/"), time.Minute), func(c *fiber.Ctx) error {
		calls++
		return c.SendStatus(fiber.StatusNotFound)
	})

	for range 2 {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	}
	assert.Equal(t, 2, calls)
}

func TestMetrics_PassesThrough(t *testing.T) {
	app := fiber.New()
	app.Use(Metrics())
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/fail", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "nope") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ok", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/fail", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)
}
