package transport

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/kursadbilgin/auth-gate/internal/domain"
	"github.com/kursadbilgin/auth-gate/internal/observability"
	"github.com/kursadbilgin/auth-gate/internal/ratelimit"
	"github.com/kursadbilgin/auth-gate/internal/token"
)

// Locals keys populated by RequireAuth for downstream handlers.
const (
	LocalAccountID = "accountId"
	LocalRole      = "role"
)

// TokenParser validates a bearer token and returns its claims.
type TokenParser interface {
	Parse(tokenString string) (*token.Claims, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// caller's identity in the request locals.
func RequireAuth(parser TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		if header == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		scheme, value, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(value) == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		claims, err := parser.Parse(strings.TrimSpace(value))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}

		c.Locals(LocalAccountID, claims.AccountID)
		c.Locals(LocalRole, claims.Role)
		return c.Next()
	}
}

// RequireRole allows only callers whose token carries the given role. It must
// run after RequireAuth.
func RequireRole(role domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerRole, _ := c.Locals(LocalRole).(string)
		if callerRole != role.String() {
			return fiber.NewError(fiber.StatusForbidden, "insufficient role")
		}
		return c.Next()
	}
}

// LoginThrottle caps login requests per client IP before any database work.
// A throttle backend failure fails open: the account lockout still protects
// individual accounts.
func LoginThrottle(limiter ratelimit.Limiter, metrics *observability.Metrics, logger *zap.Logger) fiber.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		if limiter == nil {
			return c.Next()
		}

		allowed, err := limiter.Allow(c.Context(), c.IP())
		if err != nil {
			logger.Error("login throttle unavailable",
				zap.String("clientIp", c.IP()),
				zap.Error(err),
			)
			return c.Next()
		}
		if !allowed {
			metrics.IncLoginThrottled()
			return fiber.NewError(fiber.StatusTooManyRequests, "too many login requests, slow down")
		}

		return c.Next()
	}
}
