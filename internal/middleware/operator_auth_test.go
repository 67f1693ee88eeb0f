package middleware

import (
	"net/http/httptest"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

func operatorApp(t *testing.T, maxFailures int) *fiber.App {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash key: %v", err)
	}
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	app := fiber.New()
	app.Use(OperatorAuth(string(hash), NewFailureLimiter(cache, maxFailures)))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		operator, _ := c.Locals(OperatorKey).(string)
		return c.SendString(operator)
	})
	return app
}

func call(t *testing.T, app *fiber.App, authz string) int {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, "/whoami", nil)
	if authz != "" {
		req.Header.Set(fiber.HeaderAuthorization, authz)
	}
	req.Header.Set(operatorIDHeader, "payroll-bot")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()
	return resp.StatusCode
}

func TestOperatorAuthAcceptsKey(t *testing.T) {
	app := operatorApp(t, 3)

	if status := call(t, app, "Bearer s3cret"); status != fiber.StatusOK {
		t.Fatalf("expected 200 got %d", status)
	}
	if status := call(t, app, ""); status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", status)
	}
	if status := call(t, app, "Bearer wrong"); status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", status)
	}
}

func TestOperatorAuthLocksOutAfterFailures(t *testing.T) {
	app := operatorApp(t, 2)

	for i := 0; i < 2; i++ {
		if status := call(t, app, "Bearer wrong"); status != fiber.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401 got %d", i, status)
		}
	}
	if status := call(t, app, "Bearer s3cret"); status != fiber.StatusTooManyRequests {
		t.Fatalf("expected lockout, got %d", status)
	}
}

func TestOperatorAuthDisabledWithoutHash(t *testing.T) {
	app := fiber.New()
	app.Use(OperatorAuth("", nil))
	app.Get("/whoami", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	if status := call(t, app, ""); status != fiber.StatusNoContent {
		t.Fatalf("expected pass-through, got %d", status)
	}
}
