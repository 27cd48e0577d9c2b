package course

import (
	"context"
	"errors"
	"fmt"

	"github.com/Chanjeong/walkman/internal/planner"
	"github.com/Chanjeong/walkman/internal/sheet"

	"github.com/gofiber/fiber/v2"
)

// Planner is the slice of the plan service courses need: a snapshot to save
// and a restore to load.
type Planner interface {
	Markers(session string) []planner.Marker
	Route(session string) planner.RouteState
	Restore(ctx context.Context, session string, rows []sheet.Marker, distanceLabel, timeLabel string) (int, error)
}

func RegisterRoutes(r fiber.Router, svc *Service, plans Planner, authMiddleware fiber.Handler) {
	r.Use(authMiddleware)

	r.Post("/", func(c *fiber.Ctx) error {
		var req struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		if err := c.BodyParser(&req); err != nil || req.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "코스 이름을 입력해주세요")
		}

		session := sessionID(c)
		markers := plans.Markers(session)
		rows := make([]CourseMarker, len(markers))
		for i, m := range markers {
			rows[i] = CourseMarker{Order: i + 1, Lat: m.Lat, Lng: m.Lng, Address: m.Address}
		}

		input := Course{
			Name:        req.Name,
			Description: req.Description,
			Markers:     rows,
			CreatedBy:   session,
		}
		if summary := plans.Route(session).Summary; summary != nil {
			input.TotalDistanceKm = summary.TotalDistanceKm
			input.TotalTimeMin = summary.TotalTimeMin
		}

		saved, err := svc.Create(c.Context(), input)
		if errors.Is(err, ErrEmptyCourse) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(saved)
	})

	r.Get("/", func(c *fiber.Ctx) error {
		courses, err := svc.List(c.Context(), sessionID(c))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if courses == nil {
			courses = []Course{}
		}
		return c.JSON(courses)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		loaded, err := svc.Get(c.Context(), sessionID(c), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "코스를 찾을 수 없습니다")
		}
		return c.JSON(loaded)
	})

	r.Post("/:id/load", func(c *fiber.Ctx) error {
		session := sessionID(c)
		loaded, err := svc.Get(c.Context(), session, c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "코스를 찾을 수 없습니다")
		}

		rows := make([]sheet.Marker, len(loaded.Markers))
		for i, m := range loaded.Markers {
			rows[i] = sheet.Marker{Order: float64(m.Order), Lat: m.Lat, Lng: m.Lng, Address: m.Address}
		}
		var distanceLabel, timeLabel string
		if loaded.TotalDistanceKm > 0 {
			distanceLabel = fmt.Sprintf("%.2f km", loaded.TotalDistanceKm)
		}
		if loaded.TotalTimeMin > 0 {
			timeLabel = sheet.FormatMinutes(loaded.TotalTimeMin)
		}

		count, err := plans.Restore(c.Context(), session, rows, distanceLabel, timeLabel)
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, err.Error())
		}
		return c.JSON(fiber.Map{
			"count": count,
			"route": plans.Route(session),
		})
	})

	r.Delete("/:id", func(c *fiber.Ctx) error {
		if err := svc.Delete(c.Context(), sessionID(c), c.Params("id")); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func sessionID(c *fiber.Ctx) string {
	if id, ok := c.Locals("user_id").(string); ok {
		return id
	}
	return ""
}
