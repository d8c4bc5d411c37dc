package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gofiber/contrib/otelfiber/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/jackc/pgx/v5/stdlib"

	"course-service/internal/api"
	"course-service/internal/events"
	"course-service/internal/repository"
	"course-service/internal/schedule"
	"course-service/internal/service"
	"course-service/internal/tracing"
	_ "course-service/migrations"
)

func main() {
	if err := godotenv.Load(".env.dev"); err != nil {
		fmt.Println("No .env.dev file found, reading from environment variables provided by Docker")
	}

	api.SetupGlobalLogger("course-service")

	shutdownTracer, err := tracing.InitTracerProvider("course-service")
	if err != nil {
		log.Fatalf("Failed to initialize OpenTelemetry: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Printf("Error shutting down tracer provider: %v", err)
		}
	}()

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		handleMigrations()
		return
	}

	db := connectDB()
	defer db.Close()

	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}
	eventPublisher, err := events.NewNatsPublisher(natsURL)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	log.Println("Successfully connected to NATS.")

	location := time.UTC
	if tz := os.Getenv("SCHEDULE_TIMEZONE"); tz != "" {
		loaded, err := time.LoadLocation(tz)
		if err != nil {
			log.Fatalf("Invalid SCHEDULE_TIMEZONE %q: %v", tz, err)
		}
		location = loaded
	}

	seriesRepo := repository.NewPostgresSeriesRepository(db)
	sessionRepo := repository.NewPostgresSessionRepository(db)

	expander := schedule.NewExpander(location)
	seriesService := service.NewSeriesService(seriesRepo, sessionRepo, eventPublisher)
	scheduleService := service.NewScheduleService(db, seriesRepo, sessionRepo, expander, eventPublisher)

	seriesHandler := api.NewSeriesHandler(seriesService)
	scheduleHandler := api.NewScheduleHandler(scheduleService)

	app := fiber.New()
	app.Use(otelfiber.Middleware())
	app.Use(api.PrometheusMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": "course-service"})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	v1 := app.Group("/v1")

	seriesRoutes := v1.Group("/series")
	seriesRoutes.Use(api.AuthMiddleware())
	seriesRoutes.Post("/", seriesHandler.CreateSeries)
	seriesRoutes.Get("/", seriesHandler.ListSeries)
	seriesRoutes.Get("/:id", seriesHandler.GetSeries)
	seriesRoutes.Put("/:id", seriesHandler.UpdateSeries)
	seriesRoutes.Get("/:id/sessions", seriesHandler.ListSessions)
	seriesRoutes.Get("/:id/schedule/preview", scheduleHandler.PreviewSchedule)
	seriesRoutes.Post("/:id/schedule/publish", scheduleHandler.PublishSchedule)

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8004"
	}

	log.Printf("Listening course-service on port %s", port)
	log.Fatal(app.Listen(":" + port))
}

func databaseURL() string {
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbName := os.Getenv("DB_NAME")

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		dbUser, dbPassword, dbHost, dbPort, dbName,
	)
}

func connectDB() *sqlx.DB {
	db, err := sqlx.Connect("pgx", databaseURL())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Successfully connected to the database.")
	return db
}

func handleMigrations() {
	fmt.Println("Running database migrations...")

	db, err := sql.Open("pgx", databaseURL())
	if err != nil {
		log.Fatalf("failed to connect to database for migration: %v", err)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("failed to set goose dialect: %v", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		log.Fatalf("goose: failed to run migrations: %v", err)
	}

	fmt.Println("Migrations applied successfully!")
}
