package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	authsvc "github.com/pulppixels/pulppixels-backend/internal/auth"
	"github.com/pulppixels/pulppixels-backend/pkg/config"
	"github.com/pulppixels/pulppixels-backend/pkg/db"
	"github.com/pulppixels/pulppixels-backend/pkg/logger"
)

// Provisions an admin-console account. There is no public registration path,
// so operators run this once per admin.
func main() {
	logg := logger.New(logger.Options{ServiceName: "admin-user"})

	_ = godotenv.Load()

	email := flag.String("email", "", "admin account email")
	password := flag.String("password", "", "admin account password")
	flag.Parse()

	if *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "both -email and -password are required")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "admin-user",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	service, err := authsvc.NewService(authsvc.ServiceParams{
		UserRepo:       authsvc.NewRepository(dbClient.DB()),
		SessionManager: noopSessions{},
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	user, err := service.CreateAdmin(context.Background(), *email, *password)
	if err != nil {
		logg.Error(context.Background(), "failed to create admin account", err)
		os.Exit(1)
	}

	fmt.Printf("created admin %s (%s)\n", user.Email, user.ID)
}

type noopSessions struct{}

func (noopSessions) Generate(context.Context, string) (string, error) { return "", nil }
