package visit

import (
	"errors"
	"time"

	"github.com/Marek1Marecki/OdznakiGorskie/internal/errs"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Post("/", func(c *fiber.Ctx) error {
		var body struct {
			POIID       string `json:"poi_id"`
			VisitDate   string `json:"visit_date"`
			Description string `json:"description"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		visitDate, err := time.Parse("2006-01-02", body.VisitDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "visit_date must be YYYY-MM-DD")
		}

		v, err := svc.CreateVisit(c.Context(), Visit{
			POIID:       body.POIID,
			VisitDate:   visitDate,
			Description: body.Description,
		})
		if err != nil {
			var verr *errs.ValidationError
			if errors.As(err, &verr) {
				return fiber.NewError(fiber.StatusBadRequest, verr.Message)
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(v)
	})

	r.Delete("/:id", func(c *fiber.Ctx) error {
		if err := svc.DeleteVisit(c.Context(), c.Params("id")); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Get("/poi/:poiID", func(c *fiber.Ctx) error {
		visits, err := svc.VisitsForPOI(c.Context(), c.Params("poiID"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(visits)
	})
}
