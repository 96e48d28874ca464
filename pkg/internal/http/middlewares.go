package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/warblr-net/warbler/pkg/internal/http/exts"
	"github.com/warblr-net/warbler/pkg/internal/services"
)

// authMiddleware resolves the signed-in account from the session on every
// request and exposes it via c.Locals("user"). A stale or invalid id just
// downgrades the request to unauthenticated.
func authMiddleware(c *fiber.Ctx) error {
	if id, ok := exts.GetAuth(c); ok {
		if user, err := services.GetAccount(id); err == nil {
			c.Locals("user", user)
		} else {
			_ = exts.ClearAuth(c)
		}
	}

	return c.Next()
}
