package server

import (
	"github.com/Marek1Marecki/OdznakiGorskie/internal/badge"
	"github.com/Marek1Marecki/OdznakiGorskie/internal/config"
	"github.com/Marek1Marecki/OdznakiGorskie/internal/events"
	"github.com/Marek1Marecki/OdznakiGorskie/internal/poi"
	"github.com/Marek1Marecki/OdznakiGorskie/internal/scoring"
	"github.com/Marek1Marecki/OdznakiGorskie/internal/trip"
	"github.com/Marek1Marecki/OdznakiGorskie/internal/visit"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App   *fiber.App
	Cfg   config.Config
	DB    *pgxpool.Pool
	Redis *redis.Client
	Bus   *events.Bus
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:   app,
		Cfg:   cfg,
		DB:    db,
		Redis: redisClient,
		Bus:   events.NewBus(redisClient),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	badgeSvc := badge.NewService(s.DB, s.Bus)

	var cache scoring.Store
	if s.Redis != nil {
		cache = scoring.NewRedisStore(s.Redis)
	}
	scoringSvc := scoring.NewService(s.DB, cache, s.Cfg.CacheTTL())
	scoringSvc.SubscribeInvalidation(s.Bus)

	badge.RegisterRoutes(s.App.Group("/badges"), badgeSvc)
	poi.RegisterRoutes(s.App.Group("/pois"), poi.NewService(s.DB))
	visit.RegisterRoutes(s.App.Group("/visits"), visit.NewService(s.DB, badgeSvc, s.Bus))
	trip.RegisterRoutes(s.App.Group("/trips"), trip.NewService(s.DB))
	scoring.RegisterRoutes(s.App.Group("/scoring"), scoringSvc)
}
