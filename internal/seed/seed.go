package seed

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/mravi/bloodconnect/internal/app/models"
	"github.com/mravi/bloodconnect/internal/app/repositories"
	"github.com/mravi/bloodconnect/internal/pkg/auth"
)

const (
	defaultAdminEmail    = "admin@bloodconnect.app"
	defaultAdminPassword = "Admin123!"
)

// CreateDefaultData creates the default admin account if no admin exists yet.
// The credentials can be overridden with ADMIN_EMAIL and ADMIN_PASSWORD.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	userRepo := repositories.NewUserRepository(dbPool)

	email := defaultAdminEmail
	if v := os.Getenv("ADMIN_EMAIL"); v != "" {
		email = v
	}
	password := defaultAdminPassword
	if v := os.Getenv("ADMIN_PASSWORD"); v != "" {
		password = v
	}

	exists, err := userRepo.EmailExists(ctx, email)
	if err != nil {
		return fmt.Errorf("error checking for default admin: %w", err)
	}
	if exists {
		return nil
	}

	lgr.Info().Str("email", email).Msg("Creating default admin user...")

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("error hashing default admin password: %w", err)
	}

	admin := &models.User{
		ID:       uuid.New(),
		Name:     "Administrator",
		Email:    email,
		Password: hashedPassword,
		Role:     models.RoleAdmin,
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		return fmt.Errorf("error creating default admin: %w", err)
	}

	lgr.Info().Msg("Default admin user created")
	return nil
}
