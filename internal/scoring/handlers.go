package scoring

import (
	"errors"

	"github.com/Marek1Marecki/OdznakiGorskie/internal/errs"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Get("/dashboard", func(c *fiber.Ctx) error {
		mode := c.Query("mode", "top")
		d, err := svc.GetScores(c.Context(), mode)
		if err != nil {
			var verr *errs.ValidationError
			if errors.As(err, &verr) {
				return fiber.NewError(fiber.StatusBadRequest, verr.Message)
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if mode == "top" {
			return c.JSON(fiber.Map{"top_pois": d.POIs, "top_regions": d.Regions})
		}
		return c.JSON(fiber.Map{"poi_ranking": d.POIs, "region_ranking": d.Regions})
	})

	r.Get("/pois/:id", func(c *fiber.Ctx) error {
		score, err := svc.ScoreForPOI(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"poi_id": c.Params("id"), "score": score})
	})

	r.Post("/invalidate", func(c *fiber.Ctx) error {
		if err := svc.InvalidateAll(c.Context()); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
