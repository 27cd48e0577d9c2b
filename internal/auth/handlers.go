package auth

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
)

// CookieName carries the signed session token. Presence of a valid cookie
// gates the planner pages.
const CookieName = "token"

func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Post("/signup", func(c *fiber.Ctx) error {
		var req SignupRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}

		user, token, err := svc.Register(c.Context(), req)
		switch {
		case errors.Is(err, ErrInvalidEmail), errors.Is(err, ErrShortPassword):
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		case errors.Is(err, ErrEmailTaken):
			return fiber.NewError(fiber.StatusConflict, err.Error())
		case err != nil:
			return fiber.NewError(fiber.StatusInternalServerError, "회원가입 중 오류가 발생했습니다")
		}

		setTokenCookie(c, token)
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"user":    user,
			"message": "회원가입이 완료되었습니다.",
		})
	})

	r.Post("/login", func(c *fiber.Ctx) error {
		var req LoginRequest
		if err := c.BodyParser(&req); err != nil || req.Email == "" || req.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "email and password required")
		}

		user, token, err := svc.Login(c.Context(), req)
		if errors.Is(err, ErrInvalidCredentials) {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "로그인 중 오류가 발생했습니다")
		}

		setTokenCookie(c, token)
		return c.JSON(fiber.Map{
			"user":    user,
			"message": "로그인되었습니다.",
		})
	})

	r.Post("/logout", func(c *fiber.Ctx) error {
		clearTokenCookie(c)
		return c.JSON(fiber.Map{"message": "로그아웃되었습니다."})
	})

	r.Get("/me", func(c *fiber.Ctx) error {
		claims, err := svc.ParseToken(c.Cookies(CookieName))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "not logged in")
		}
		return c.JSON(fiber.Map{"user_id": claims.UserID, "email": claims.Email})
	})
}

func setTokenCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(TokenTTL.Seconds()),
		Expires:  time.Now().Add(TokenTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

func clearTokenCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}
