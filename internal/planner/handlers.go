package planner

import (
	"errors"
	"io"
	"strconv"

	"github.com/Chanjeong/walkman/internal/shared/geo"
	"github.com/Chanjeong/walkman/internal/sheet"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Use(authMiddleware)

	r.Post("/markers", func(c *fiber.Ctx) error {
		var req struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		if !geo.ValidCoordinate(req.Lat, req.Lng) {
			return fiber.NewError(fiber.StatusBadRequest, "좌표가 유효하지 않습니다")
		}

		marker, err := svc.AddMarker(c.Context(), sessionID(c), req.Lat, req.Lng)
		if errors.Is(err, ErrPlanFull) {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		route := svc.Route(sessionID(c))
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"marker": marker,
			"route":  route,
		})
	})

	r.Get("/markers", func(c *fiber.Ctx) error {
		return c.JSON(svc.Markers(sessionID(c)))
	})

	r.Delete("/markers/:id", func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid marker id")
		}
		svc.RemoveMarker(c.Context(), sessionID(c), id)
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Delete("/markers", func(c *fiber.Ctx) error {
		svc.ClearAll(sessionID(c))
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Get("/route", func(c *fiber.Ctx) error {
		return c.JSON(svc.Route(sessionID(c)))
	})

	r.Get("/search", func(c *fiber.Ctx) error {
		query := c.Query("q")
		if query == "" {
			return fiber.NewError(fiber.StatusBadRequest, "q required")
		}
		result, err := svc.SearchAddress(c.Context(), sessionID(c), query)
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "주소 검색 중 오류가 발생했습니다")
		}
		if result == nil {
			return fiber.NewError(fiber.StatusNotFound, "검색 결과를 찾을 수 없습니다")
		}
		return c.JSON(result)
	})

	r.Post("/import", func(c *fiber.Ctx) error {
		file, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "file required")
		}

		src, err := file.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "file unreadable")
		}
		defer src.Close()

		data, err := io.ReadAll(src)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "file unreadable")
		}

		count, err := svc.Import(c.Context(), sessionID(c), data)
		var rowErr *sheet.RowError
		switch {
		case errors.Is(err, sheet.ErrFormat):
			return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		case errors.As(err, &rowErr):
			return fiber.NewError(fiber.StatusUnprocessableEntity, rowErr.Error())
		case err != nil:
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		return c.JSON(fiber.Map{"imported": count, "route": svc.Route(sessionID(c))})
	})

	r.Get("/export", func(c *fiber.Ctx) error {
		data, name, err := svc.Export(c.Context(), sessionID(c))
		if errors.Is(err, ErrEmptyPlan) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "엑셀 파일 생성에 실패했습니다")
		}

		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
		return c.Send(data)
	})
}

func sessionID(c *fiber.Ctx) string {
	if id, ok := c.Locals("user_id").(string); ok {
		return id
	}
	return ""
}
