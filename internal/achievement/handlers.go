package achievement

import (
	"context"

	"github.com/GabrieleComparini/Lude-sub000/internal/stats"

	"github.com/gofiber/fiber/v2"
)

// StatsReader supplies the current lifetime statistics for the
// stats-changed evaluation route.
type StatsReader interface {
	Get(ctx context.Context, userID string) (stats.UserStatistics, error)
}

func RegisterRoutes(r fiber.Router, svc *Service, statsSvc StatsReader, authMiddleware fiber.Handler) {
	r.Get("/users/:userID", func(c *fiber.Ctx) error {
		earned, err := svc.ListByUser(c.Context(), c.Params("userID"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(earned)
	})

	r.Post("/users/:userID/evaluate", authMiddleware, func(c *fiber.Ctx) error {
		userID := c.Params("userID")
		st, err := statsSvc.Get(c.Context(), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "statistics not found")
		}
		earned, err := svc.EvaluateStats(c.Context(), userID, st)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(earned)
	})
}
