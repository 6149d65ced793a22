package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/tuanvumaihuynh/digital-store/internal/config"
	"github.com/tuanvumaihuynh/digital-store/internal/log"
	"github.com/tuanvumaihuynh/digital-store/internal/repository"
	"github.com/tuanvumaihuynh/digital-store/internal/service"
	"github.com/tuanvumaihuynh/digital-store/internal/storage/db"
	"github.com/tuanvumaihuynh/digital-store/pkg/validator"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running migrate application: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log      config.Log
		Postgres config.Postgres
		Admin    config.Admin
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log)

	pgxPool, err := db.NewPgxPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("error creating pgx pool: %w", err)
	}
	defer pgxPool.Close()

	logger.InfoContext(ctx, "starting database migration")

	if err := db.Migrate(pgxPool); err != nil {
		return fmt.Errorf("error migrating database: %w", err)
	}

	logger.InfoContext(ctx, "database migration completed successfully")

	if cfg.Admin.Email == "" {
		return nil
	}

	v, err := validator.NewDefaultValidator()
	if err != nil {
		return fmt.Errorf("error creating validator: %w", err)
	}

	userService := service.NewUserService(logger, v, repository.NewUserRepository(db.NewClient(pgxPool)))
	admin, created, err := userService.EnsureAdmin(ctx, service.RegisterParams{
		Username:        cfg.Admin.Username,
		Email:           cfg.Admin.Email,
		Password:        cfg.Admin.Password,
		ConfirmPassword: cfg.Admin.Password,
	})
	if err != nil {
		return fmt.Errorf("error seeding admin: %w", err)
	}

	if created {
		logger.InfoContext(ctx, "admin account created", slog.Int64("user_id", admin.ID))
	} else {
		logger.InfoContext(ctx, "admin account already exists", slog.String("email", cfg.Admin.Email))
	}

	return nil
}
