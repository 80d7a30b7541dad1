package badge

import (
	"errors"
	"time"

	"github.com/Marek1Marecki/OdznakiGorskie/internal/errs"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Post("/", func(c *fiber.Ctx) error {
		var req Badge
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		b, err := svc.CreateBadge(c.Context(), req)
		if err != nil {
			return mapError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(b)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		b, err := svc.GetBadge(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "badge not found")
		}
		return c.JSON(b)
	})

	r.Put("/:id", func(c *fiber.Ctx) error {
		var req Badge
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		b, err := svc.UpdateBadge(c.Context(), c.Params("id"), req)
		if err != nil {
			return mapError(err)
		}
		return c.JSON(b)
	})

	r.Delete("/:id", func(c *fiber.Ctx) error {
		if err := svc.DeleteBadge(c.Context(), c.Params("id")); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/:id/requirements", func(c *fiber.Ctx) error {
		var body struct {
			POIID      string `json:"poi_id"`
			Obligatory bool   `json:"obligatory"`
		}
		if err := c.BodyParser(&body); err != nil || body.POIID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "poi_id required")
		}
		req, err := svc.AddRequirement(c.Context(), c.Params("id"), body.POIID, body.Obligatory)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(req)
	})

	r.Delete("/:id/requirements/:poiID", func(c *fiber.Ctx) error {
		if err := svc.RemoveRequirement(c.Context(), c.Params("id"), c.Params("poiID")); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Get("/:id/requirements", func(c *fiber.Ctx) error {
		reqs, err := svc.Requirements(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(reqs)
	})

	r.Get("/:id/progress", func(c *fiber.Ctx) error {
		p, err := svc.Progress(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "badge not found")
		}
		return c.JSON(p)
	})

	r.Post("/:id/verify", func(c *fiber.Ctx) error {
		var body struct {
			Date string `json:"date"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		date := time.Now()
		if body.Date != "" {
			parsed, err := time.Parse("2006-01-02", body.Date)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "date must be YYYY-MM-DD")
			}
			date = parsed
		}
		b, err := svc.Verify(c.Context(), c.Params("id"), date)
		if err != nil {
			return mapError(err)
		}
		return c.JSON(b)
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
