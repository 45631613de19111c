package server

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_RateLimiter_Allow(t *testing.T) {
	rl := newRateLimiter(2, time.Minute)

	assert.True(t, rl.allow("1.2.3.4"))
	assert.True(t, rl.allow("1.2.3.4"))
	assert.False(t, rl.allow("1.2.3.4"))

	// Other keys are unaffected.
	assert.True(t, rl.allow("5.6.7.8"))
}

func Test_RateLimiter_WindowExpiry(t *testing.T) {
	rl := newRateLimiter(1, 10*time.Millisecond)

	assert.True(t, rl.allow("1.2.3.4"))
	assert.False(t, rl.allow("1.2.3.4"))

	time.Sleep(20 * time.Millisecond)
	assert.True(t, rl.allow("1.2.3.4"))
}

func Test_RequireUser(t *testing.T) {
	app := fiber.New()
	app.Use(RequireUser())
	app.Get("/whoami", func(c *fiber.Ctx) error {
		return c.SendString(actorID(c))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/whoami", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("X-User-ID", "user-a")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func Test_CORS_AllowedOrigin(t *testing.T) {
	app := fiber.New()
	app.Use(CORS([]string{"https://naturalorder.app"}))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "https://naturalorder.app")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "https://naturalorder.app", resp.Header.Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func Test_SplitCSV(t *testing.T) {
	assert.Equal(t, []string{"active", "contacted"}, splitCSV("active, contacted"))
	assert.Nil(t, splitCSV(""))
	assert.Nil(t, splitCSV(" , ,"))
}
