package stats

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Get("/:userID", func(c *fiber.Ctx) error {
		st, err := svc.Get(c.Context(), c.Params("userID"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "statistics not found")
		}
		return c.JSON(st)
	})

	r.Get("/:userID/speed-distribution", func(c *fiber.Ctx) error {
		dist, err := svc.SpeedDistribution(c.Context(), c.Params("userID"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(dist)
	})
}
