// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	_ "go.uber.org/automaxprocs"

	"github.com/carterperez-dev/enhancify/internal/auth"
	"github.com/carterperez-dev/enhancify/internal/config"
	"github.com/carterperez-dev/enhancify/internal/core"
	"github.com/carterperez-dev/enhancify/internal/user"
)

type adminInput struct {
	FirstName string `validate:"required,max=100"`
	LastName  string `validate:"required,max=100"`
	Mobile    string `validate:"required,numeric,min=11,max=15"`
	Email     string `validate:"required,email,max=255"`
	Password  string `validate:"required,min=8,max=128"`
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	in := adminInput{}
	flag.StringVar(&in.Email, "email", "admin@enhancify.local", "admin email")
	flag.StringVar(&in.FirstName, "first-name", "Admin", "admin first name")
	flag.StringVar(&in.LastName, "last-name", "User", "admin last name")
	flag.StringVar(&in.Mobile, "mobile", "09123456789", "admin mobile number")
	flag.StringVar(&in.Password, "password", os.Getenv("SEED_ADMIN_PASSWORD"),
		"admin password (defaults to $SEED_ADMIN_PASSWORD)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if err := run(*configPath, in, logger); err != nil {
		logger.Error("seed admin failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, in adminInput, logger *slog.Logger) error {
	if err := validator.New().Struct(in); err != nil {
		return fmt.Errorf("invalid admin input: %s", core.FormatValidationError(err))
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck

	hash, err := core.HashPassword(in.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	// Session revocation and upload removal are never reached by EnsureAdmin.
	svc := user.NewService(user.NewRepository(db.DB), nil, nil, logger)

	admin, created, err := svc.EnsureAdmin(ctx, auth.NewUser{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Mobile:       in.Mobile,
		Email:        in.Email,
		PasswordHash: hash,
	}, cfg.Billing.Validity)
	if err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}

	action := "promoted"
	if created {
		action = "created"
	}
	logger.Info("admin account "+action,
		"id", admin.ID,
		"email", admin.Email,
		"premium_until", admin.SubscriptionEnd,
	)
	return nil
}
