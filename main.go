package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crewdesk/internal/analytics"
	"crewdesk/internal/api"
	"crewdesk/internal/audit"
	"crewdesk/internal/calendar"
	"crewdesk/internal/config"
	"crewdesk/internal/daemon"
	"crewdesk/internal/database"
	"crewdesk/internal/logger"
	"crewdesk/internal/middleware"
	"crewdesk/internal/notifications"
	"crewdesk/internal/openfga"
	"crewdesk/internal/organisation"
	"crewdesk/internal/presence"
	"crewdesk/internal/stripe"
	"crewdesk/internal/task"
	"crewdesk/internal/team"
	"crewdesk/internal/telemetry"
	"crewdesk/internal/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/storage/postgres/v3"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := run(context.Background()); err != nil {
		panic(err)
	}
}

func run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		fmt.Println("Received signal:", sig)
		cancel()
	}()

	cfg := config.NewConfig()

	tel, err := telemetry.New(cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			fmt.Println("Failed to shut down telemetry:", err)
		}
	}()

	log := logger.New(*cfg)

	// Set up Postgres connection
	db := database.NewDatabase()
	if err := db.Connect(ctx, cfg.DatabaseURL()); err != nil {
		log.Error("Failed to initialize database", "error", err)
		return err
	}
	defer db.Close()

	// Set up Redis for presence tracking
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	// Set up OpenFGA for coarse organisation access checks
	fgaClient, err := openfga.NewClient(cfg.OpenFGA)
	if err != nil {
		log.Error("Failed to initialize OpenFGA", "error", err)
		return err
	}
	defer fgaClient.Close()
	authz := openfga.NewAuthorizationService(fgaClient)

	// Set up session store
	sessionStorage := postgres.New(postgres.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Database: cfg.Database.Name,
		Username: cfg.Database.User,
		Password: cfg.Database.Password,
		Table:    "sessions",
		Reset:    false,
	})
	store := session.New(session.Config{
		Storage:        sessionStorage,
		KeyLookup:      "cookie:session_id",
		CookiePath:     "/",
		CookieSecure:   cfg.Server.Environment == config.EnvironmentProduction,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		Expiration:     24 * time.Hour,
	})

	// Managers
	auditor := audit.NewAuditor(log.Logger, &db)
	notifier := notifications.NewManager(log.Logger, &db)
	tracker := presence.NewTracker(redisClient)
	stripeClient := stripe.NewClient(log.Logger, cfg.Stripe.APIKey, &db)
	teamManager := team.NewManager(&db, log.Logger, tracker, &auditor, &notifier)
	taskManager := task.NewManager(&db, log.Logger, &teamManager, &auditor, &notifier)
	calendarManager := calendar.NewManager(&db, log.Logger, &teamManager)
	organisationManager := organisation.NewManager(&db, log.Logger, &stripeClient, &auditor)
	analyticsManager := analytics.NewManager(&db, log.Logger, &teamManager, &taskManager)

	handler := api.NewHandler(api.HandlerParams{
		Store:         store,
		DB:            &db,
		Logger:        log.Logger,
		Validator:     validator.New(),
		TeamManager:   &teamManager,
		TaskManager:   &taskManager,
		Calendar:      &calendarManager,
		Analytics:     &analyticsManager,
		Organisations: &organisationManager,
		Notifier:      &notifier,
		Presence:      tracker,
		WebhookSecret: cfg.Stripe.WebhookSecret,
	})

	// Set up Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	})

	app.Use(telemetry.FiberMiddleware(cfg.Telemetry.ServiceName))
	app.Use(middleware.Logger())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests. Please try again later.",
			})
		},
	}))

	handler.RegisterRoutes(app, authz)

	go func() {
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		log.Info("Starting HTTP server...", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Error("HTTP server stopped", "error", err)
			cancel()
		}
	}()

	// Supervised daemons
	manager := daemon.NewDaemonManager()
	manager.Add("reconcile", daemon.ReconcileTask(&teamManager, log.Logger, cfg.Reconcile.Interval))

	log.Info("Starting supervised daemons...")
	manager.Start(ctx)

	<-ctx.Done()

	log.Info("Shutting down...")
	if err := app.Shutdown(); err != nil {
		log.Error("Error shutting down HTTP server", "error", err)
	}
	manager.Wait()
	log.Info("Shutdown complete")

	return nil
}
