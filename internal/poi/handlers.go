package poi

import (
	"errors"
	"strings"
	"time"

	"github.com/Marek1Marecki/OdznakiGorskie/internal/errs"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Post("/", func(c *fiber.Ctx) error {
		var req POI
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		p, err := svc.CreatePOI(c.Context(), req)
		if err != nil {
			return mapError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	})

	// Literal paths registered before /:id so they win the match.
	r.Post("/regions", func(c *fiber.Ctx) error {
		var req Region
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		region, err := svc.CreateRegion(c.Context(), req)
		if err != nil {
			return mapError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(region)
	})

	r.Get("/regions", func(c *fiber.Ctx) error {
		regions, err := svc.ListRegions(c.Context(), RegionLevel(c.Query("level")))
		if err != nil {
			return mapError(err)
		}
		return c.JSON(regions)
	})

	r.Get("/statuses", func(c *fiber.Ctx) error {
		poiIDs := splitParam(c.Query("ids"))
		if len(poiIDs) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "ids required")
		}
		badgeIDs := splitParam(c.Query("badges"))

		statuses, err := svc.Statuses(c.Context(), poiIDs, badgeIDs, time.Now())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(statuses)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		p, err := svc.GetPOI(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "poi not found")
		}
		return c.JSON(p)
	})

	r.Put("/:id", func(c *fiber.Ctx) error {
		var req POI
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		p, err := svc.UpdatePOI(c.Context(), c.Params("id"), req)
		if err != nil {
			return mapError(err)
		}
		return c.JSON(p)
	})

	r.Delete("/:id", func(c *fiber.Ctx) error {
		if err := svc.Deactivate(c.Context(), c.Params("id")); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func splitParam(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func mapError(err error) error {
	var verr *errs.ValidationError
	if errors.As(err, &verr) {
		return fiber.NewError(fiber.StatusBadRequest, verr.Message)
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
