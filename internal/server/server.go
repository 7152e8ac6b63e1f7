package server

import (
	"context"
	"time"

	"github.com/GabrieleComparini/Lude-sub000/internal/achievement"
	"github.com/GabrieleComparini/Lude-sub000/internal/auth"
	"github.com/GabrieleComparini/Lude-sub000/internal/challenge"
	"github.com/GabrieleComparini/Lude-sub000/internal/config"
	"github.com/GabrieleComparini/Lude-sub000/internal/outbox"
	"github.com/GabrieleComparini/Lude-sub000/internal/rules"
	"github.com/GabrieleComparini/Lude-sub000/internal/stats"
	"github.com/GabrieleComparini/Lude-sub000/internal/stream"
	"github.com/GabrieleComparini/Lude-sub000/internal/trip"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Stream *stream.Hub
	Worker *outbox.Worker
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Stream: stream.NewHub(redisClient),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	if s.DB == nil {
		return
	}

	registry := rules.NewRegistry(s.DB, time.Duration(s.Cfg.RuleRefreshMin)*time.Minute, s.Redis)
	statsSvc := stats.NewService(s.DB, s.Cfg.StatsMaxRetries)
	achSvc := achievement.NewService(s.DB, registry, s.Stream)
	chSvc := challenge.NewService(s.DB, registry, s.Stream)
	ob := outbox.New(s.DB)
	tripSvc := trip.NewService(s.DB, statsSvc, ob, s.Stream)

	// The outbox worker replays the gamification stages for saved trips.
	// Both stages dedupe in storage, so re-running a task is safe.
	evaluate := func(ctx context.Context, tripID, userID string) error {
		saved, err := tripSvc.GetTrip(ctx, tripID)
		if err != nil {
			return err
		}
		st, err := statsSvc.Get(ctx, userID)
		if err != nil {
			return err
		}
		if _, err := achSvc.EvaluateTrip(ctx, userID, tripID, st, saved.Summary); err != nil {
			return err
		}
		if _, err := achSvc.EvaluateStats(ctx, userID, st); err != nil {
			return err
		}
		_, err = chSvc.AdvanceForTrip(ctx, userID, saved.Summary)
		return err
	}
	s.Worker = outbox.NewWorker(ob, evaluate,
		time.Duration(s.Cfg.OutboxPollSec)*time.Second, s.Cfg.OutboxMaxAttempts)

	trip.RegisterRoutes(s.App.Group("/trips"), tripSvc, jwtMiddleware)
	stats.RegisterRoutes(s.App.Group("/stats"), statsSvc)
	achievement.RegisterRoutes(s.App.Group("/achievements"), achSvc, statsSvc, jwtMiddleware)
	challenge.RegisterRoutes(s.App.Group("/challenges"), chSvc, jwtMiddleware)
	rules.RegisterRoutes(s.App.Group("/rules"), registry, jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
