package trip

import (
	"errors"
	"time"

	"github.com/Marek1Marecki/OdznakiGorskie/internal/errs"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Post("/", func(c *fiber.Ctx) error {
		var body struct {
			Name        string `json:"name"`
			TripDate    string `json:"trip_date"`
			Description string `json:"description"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		tripDate, err := time.Parse("2006-01-02", body.TripDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "trip_date must be YYYY-MM-DD")
		}

		t, err := svc.CreateTrip(c.Context(), CreateTripInput{
			Name:        body.Name,
			TripDate:    tripDate,
			Description: body.Description,
		})
		if err != nil {
			return mapError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(t)
	})

	r.Get("/", func(c *fiber.Ctx) error {
		trips, err := svc.ListTrips(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(trips)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		t, err := svc.GetTrip(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "trip not found")
		}
		return c.JSON(t)
	})

	r.Patch("/:id", func(c *fiber.Ctx) error {
		var body struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		t, err := svc.UpdateTrip(c.Context(), c.Params("id"), UpdateTripInput{
			Name:        body.Name,
			Description: body.Description,
		})
		if err != nil {
			return mapError(err)
		}
		return c.JSON(t)
	})

	r.Delete("/:id", func(c *fiber.Ctx) error {
		if err := svc.DeleteTrip(c.Context(), c.Params("id")); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	// The request body is the raw GPX document. Sequence and color ride on
	// the query string so clients can stream the file as-is.
	r.Post("/:id/segments", func(c *fiber.Ctx) error {
		sequence := c.QueryInt("sequence")
		seg, err := svc.AddSegment(c.Context(), c.Params("id"), AddSegmentInput{
			Sequence: sequence,
			Color:    c.Query("color"),
			GPX:      c.Body(),
		})
		if err != nil {
			return mapError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(seg)
	})

	r.Get("/:id/segments", func(c *fiber.Ctx) error {
		segments, err := svc.Segments(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(segments)
	})

	r.Delete("/:id/segments/:segmentID", func(c *fiber.Ctx) error {
		if err := svc.DeleteSegment(c.Context(), c.Params("segmentID")); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/:id/recalculate", func(c *fiber.Ctx) error {
		stats, err := svc.RecalculateStats(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(stats)
	})

	r.Get("/:id/profile", func(c *fiber.Ctx) error {
		series, err := svc.ElevationProfile(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(series)
	})
}

func mapError(err error) error {
	var verr *errs.ValidationError
	if errors.As(err, &verr) {
		return fiber.NewError(fiber.StatusBadRequest, verr.Message)
	}
	var berr *errs.BusinessLogicError
	if errors.As(err, &berr) {
		return fiber.NewError(fiber.StatusConflict, berr.Message)
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
