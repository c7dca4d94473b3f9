package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	_ "vocab-quiz/cmd/api/docs"
	"vocab-quiz/internal/adapter"
	"vocab-quiz/internal/cache"
	"vocab-quiz/internal/config"
	"vocab-quiz/internal/database"
	"vocab-quiz/internal/domain"
	"vocab-quiz/internal/events"
	"vocab-quiz/internal/grader"
	"vocab-quiz/internal/handler"
	"vocab-quiz/internal/middleware"
	"vocab-quiz/internal/repository"
	"vocab-quiz/internal/service"
	"vocab-quiz/internal/validation"
)

// server holds the fiber app and the connections it owns.
type server struct {
	app   *fiber.App
	db    *sqlx.DB
	redis *redis.Client
	bus   *gochannel.GoChannel

	auth  service.AuthService
	decks service.DeckService
	users domain.UserRepository
}

// newServer connects to Oracle and Redis and wires every service and route.
// Progress consumers stay subscribed until ctx is cancelled.
func newServer(ctx context.Context, cfg *config.Config) (*server, error) {
	db, err := database.Open(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	s := &server{db: db, redis: redisClient, bus: events.NewBus()}

	levelRepo := repository.NewLevelDatabaseAdapter(db)
	questionRepo := repository.NewQuestionDatabaseAdapter(db)
	progressRepo := repository.NewProgressDatabaseAdapter(db)
	s.users = repository.NewUserDatabaseAdapter(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	g := grader.New(grader.Thresholds{
		Sentence:        cfg.Grading.SentenceThreshold,
		Word:            cfg.Grading.WordThreshold,
		MinSubstringLen: cfg.Grading.MinSubstringLength,
	})
	store := service.NewSessionStore(adapter.NewRedisStore(redisClient), cfg.Quiz.SessionTTL)
	quizService := service.NewQuizService(levelRepo, questionRepo, store, g, events.NewSessionEventPublisher(s.bus), cfg.Quiz)
	progressService := service.NewProgressService(progressRepo, txManager)
	userService := service.NewUserService(s.users)
	s.decks = service.NewDeckService(levelRepo, questionRepo, txManager, cfg.Quiz.DefaultPassingScore)
	s.auth, err = service.NewAuthService(s.users, cfg.JWT, cfg.GoogleOAuth)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("create auth service: %w", err)
	}

	if err := events.ConsumeSessionFinished(ctx, s.bus, progressService.RecordSessionResult); err != nil {
		s.Close()
		return nil, fmt.Errorf("subscribe to session events: %w", err)
	}

	validator := validation.NewValidator()
	handlers := handler.Handlers{
		Quiz: handler.NewQuizHandler(quizService, validator),
		Auth: handler.NewAuthHandler(s.auth, validator),
		User: handler.NewUserHandler(userService, progressService),
	}

	s.app = fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  20 * time.Second,
		BodyLimit:    1 * 1024 * 1024,
	})

	s.app.Use(recover.New())
	s.app.Use(middleware.RequestLogger())
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-Request-ID",
		MaxAge:       300,
	}))

	s.app.Get("/swagger/*", swagger.HandlerDefault)
	s.app.Get("/healthz", s.health)

	handler.RegisterRoutes(s.app.Group("/api"), handlers, s.auth)
	return s, nil
}

func (s *server) health(c *fiber.Ctx) error {
	if err := s.redis.Ping(c.UserContext()).Err(); err != nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "redis unavailable")
	}
	if err := s.db.PingContext(c.UserContext()); err != nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "database unavailable")
	}
	return c.SendString("ok")
}

// Close stops the event bus and closes Redis and the database.
func (s *server) Close() error {
	return errors.Join(s.bus.Close(), s.redis.Close(), s.db.Close())
}
