package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tourbase/tourbase"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func main() {
	cfg := tourbase.LoadConfigFromEnv()
	logger := newLogger()

	db, err := openDatabase()
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	repo := tourbase.NewRepositoryManager(db)
	repo.MustValidate()

	auther := tourbase.NewAuthenticator(repo, cfg).WithLogger(logger)

	var messenger tourbase.Messenger
	if host := os.Getenv("EMAIL_HOST"); host != "" {
		messenger = &tourbase.SMTPMessenger{
			Host:     host,
			Port:     os.Getenv("EMAIL_PORT"),
			Username: os.Getenv("EMAIL_USER"),
			Password: os.Getenv("EMAIL_PASS"),
			From:     os.Getenv("EMAIL_FROM"),
		}
	} else {
		messenger = &tourbase.LogMessenger{Logger: logger}
	}

	app := fiber.New(fiber.Config{
		AppName:      "tourbase",
		ErrorHandler: tourbase.NewErrorHandler(cfg, logger),
	})

	protect := tourbase.Protected(tourbase.GateConfig{
		Validator:  auther.TokenService(),
		Repo:       repo,
		AuthScheme: cfg.GetAuthScheme(),
		ContextKey: cfg.GetContextKey(),
		Logger:     logger,
	})

	controller := tourbase.NewAuthController(
		tourbase.WithLogger(logger),
		tourbase.WithRepositoryManager(repo),
		tourbase.WithAuthenticator(auther),
		tourbase.WithTokenService(auther.TokenService()),
		tourbase.WithMessenger(messenger),
	)

	users := app.Group("/api/v1/users")
	tourbase.RegisterAuthRoutes(users, controller, protect)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := ensureSchema(ctx, db); err != nil {
		logger.Error("failed to prepare schema", "error", err)
		os.Exit(1)
	}

	addr := ":" + port()
	go func() {
		if err := app.Listen(addr); err != nil {
			logger.Error("http server failed", "error", err)
			stop()
		}
	}()

	logger.Info("tourbase started", "addr", addr)

	<-ctx.Done()

	logger.Info("shutdown signal received")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	logger.Info("tourbase stopped cleanly")
}

func openDatabase() (*bun.DB, error) {
	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		dsn = "file:tourbase.db?cache=shared&mode=rwc"
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}

	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

func ensureSchema(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().
		Model((*tourbase.User)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

func port() string {
	if p := os.Getenv("APP_PORT"); p != "" {
		return p
	}
	return "3000"
}
