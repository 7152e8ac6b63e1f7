package rules

import "github.com/gofiber/fiber/v2"

// RegisterRoutes exposes the admin cache-invalidation signal and a
// read-only listing of the active challenge definitions.
func RegisterRoutes(r fiber.Router, registry *Registry, authMiddleware fiber.Handler) {
	r.Post("/invalidate", authMiddleware, func(c *fiber.Ctx) error {
		registry.AnnounceInvalidate(c.Context())
		return c.JSON(fiber.Map{"status": "invalidated"})
	})

	r.Get("/challenges", func(c *fiber.Ctx) error {
		defs, err := registry.Challenges(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(defs)
	})
}
