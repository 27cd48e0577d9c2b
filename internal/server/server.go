package server

import (
	"github.com/Chanjeong/walkman/internal/auth"
	"github.com/Chanjeong/walkman/internal/chat"
	"github.com/Chanjeong/walkman/internal/config"
	"github.com/Chanjeong/walkman/internal/course"
	"github.com/Chanjeong/walkman/internal/geocode"
	"github.com/Chanjeong/walkman/internal/mapview"
	"github.com/Chanjeong/walkman/internal/planner"
	"github.com/Chanjeong/walkman/internal/routing"
	"github.com/Chanjeong/walkman/internal/stream"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App     *fiber.App
	Cfg     config.Config
	DB      *pgxpool.Pool
	Redis   *redis.Client
	Stream  *stream.Hub
	Planner *planner.Service
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	hub := stream.NewHub(redisClient)
	geocoder := geocode.NewClient(cfg.NominatimURL, cfg.GeocodeCountry, redisClient)
	router := routing.NewClient(cfg.OSRMFootURL)
	plans := planner.NewService(geocoder, router, mapview.NewStreamSink(hub))

	s := &Server{
		App:     app,
		Cfg:     cfg,
		DB:      db,
		Redis:   redisClient,
		Stream:  hub,
		Planner: plans,
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Logged-out visitors land on /auth; a valid session cookie flips the
	// redirect the other way.
	authSvc := auth.NewService(s.Cfg.JWTSecret, s.DB)
	s.App.Get("/", func(c *fiber.Ctx) error {
		if _, err := authSvc.ParseToken(c.Cookies(auth.CookieName)); err != nil {
			return c.Redirect("/auth", fiber.StatusFound)
		}
		return c.JSON(fiber.Map{"page": "planner"})
	})
	s.App.Get("/auth", func(c *fiber.Ctx) error {
		if _, err := authSvc.ParseToken(c.Cookies(auth.CookieName)); err == nil {
			return c.Redirect("/", fiber.StatusFound)
		}
		return c.JSON(fiber.Map{"page": "auth"})
	})

	cookieMiddleware := auth.CookieMiddleware(s.Cfg.JWTSecret)

	auth.RegisterRoutes(s.App.Group("/auth"), authSvc)
	planner.RegisterRoutes(s.App.Group("/plan"), s.Planner, cookieMiddleware)
	course.RegisterRoutes(s.App.Group("/courses"), course.NewService(s.DB), s.Planner, cookieMiddleware)
	chat.RegisterRoutes(s.App.Group("/api"), chat.NewClient(s.Cfg.ChatRouterURL, s.Cfg.HuggingFaceAPIKey, s.Cfg.ChatModel))
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
