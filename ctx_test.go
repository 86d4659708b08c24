package tourbase_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tourbase/tourbase"
)

func TestUserContextRoundTrip(t *testing.T) {
	user := &tourbase.User{ID: uuid.New(), Email: "ann@example.com"}

	ctx := tourbase.WithContext(context.Background(), user)

	found, ok := tourbase.FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, user, found)

	_, ok = tourbase.FromContext(context.Background())
	assert.False(t, ok)
}

func TestClaimsContextRoundTrip(t *testing.T) {
	claims := &tourbase.SessionClaims{UID: "uid-id"}

	ctx := tourbase.WithClaimsContext(context.Background(), claims)

	found, ok := tourbase.GetClaims(ctx)
	require.True(t, ok)
	assert.Equal(t, claims, found)

	_, ok = tourbase.GetClaims(context.Background())
	assert.False(t, ok)
}

func TestUserFromLocals(t *testing.T) {
	user := &tourbase.User{ID: uuid.New(), Email: "ann@example.com"}

	app := fiber.New()
	app.Get("/default-key", func(c *fiber.Ctx) error {
		c.Locals("user", user)

		found, ok := tourbase.UserFromLocals(c, "")
		assert.True(t, ok)
		assert.Equal(t, user, found)
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/custom-key", func(c *fiber.Ctx) error {
		c.Locals("identity", user)

		_, ok := tourbase.UserFromLocals(c, "")
		assert.False(t, ok)

		found, ok := tourbase.UserFromLocals(c, "identity")
		assert.True(t, ok)
		assert.Equal(t, user, found)
		return c.SendStatus(fiber.StatusOK)
	})

	for _, path := range []string{"/default-key", "/custom-key"} {
		res, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		res.Body.Close()
		require.Equal(t, fiber.StatusOK, res.StatusCode)
	}
}
