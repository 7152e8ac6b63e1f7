package trip

import (
	"errors"

	"github.com/GabrieleComparini/Lude-sub000/internal/shared/geo"
	"github.com/GabrieleComparini/Lude-sub000/internal/track"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var req SaveTripInput
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.UserID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "user_id required")
		}
		trip, updated, err := svc.SaveTrip(c.Context(), req)
		if err != nil {
			if errors.Is(err, track.ErrInsufficientData) ||
				errors.Is(err, track.ErrInvalidDuration) ||
				errors.Is(err, geo.ErrInvalidCoordinate) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"trip":       trip,
			"statistics": updated,
		})
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		trip, err := svc.GetTrip(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "trip not found")
		}
		return c.JSON(trip)
	})

	r.Get("/user/:userID", func(c *fiber.Ctx) error {
		trips, err := svc.ListByUser(c.Context(), c.Params("userID"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(trips)
	})

	r.Get("/user/:userID/vehicles/:vehicleID/stats", func(c *fiber.Ctx) error {
		vs, err := svc.StatsByVehicle(c.Context(), c.Params("userID"), c.Params("vehicleID"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(vs)
	})
}
