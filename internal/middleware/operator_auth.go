package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

const (
	operatorIDHeader = "X-Operator-ID"
	// OperatorKey is the fiber.Locals key holding the authenticated operator.
	OperatorKey = "operator"
)

// OperatorAuth guards escrow mutations with a shared operator key sent as a
// bearer token and verified against a bcrypt hash. Failed attempts are
// counted per client IP and the IP is locked out once the limiter trips.
// An empty hash disables the check.
func OperatorAuth(keyHash string, limiter *FailureLimiter) fiber.Handler {
	hash := []byte(keyHash)
	return func(c *fiber.Ctx) error {
		if len(hash) == 0 {
			return c.Next()
		}
		subject := c.IP()
		if limiter.Blocked(c.UserContext(), subject) {
			return fiber.NewError(http.StatusTooManyRequests, "too many failed authentication attempts, try again later")
		}

		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			limiter.Record(c.UserContext(), subject)
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		key := strings.TrimSpace(authz[len("Bearer "):])
		if err := bcrypt.CompareHashAndPassword(hash, []byte(key)); err != nil {
			limiter.Record(c.UserContext(), subject)
			return fiber.NewError(http.StatusUnauthorized, "invalid operator key")
		}

		operator := c.Get(operatorIDHeader)
		if operator == "" {
			operator = "operator"
		}
		c.Locals(OperatorKey, operator)
		return c.Next()
	}
}
