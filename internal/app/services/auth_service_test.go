package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mravi/bloodconnect/internal/app/models"
	"github.com/mravi/bloodconnect/internal/app/models/dto"
	"github.com/mravi/bloodconnect/internal/pkg/apperrors"
	"github.com/mravi/bloodconnect/internal/pkg/auth"
	"github.com/mravi/bloodconnect/internal/pkg/sessioncache"
)

func newTestAuthService(t *testing.T, userRepo *fakeUserRepo) (AuthService, *fakeLoginHistoryRepo) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:   "test-secret",
		TokenExp:    time.Hour,
		TokenIssuer: "bloodconnect-test",
	})
	historyRepo := newFakeLoginHistoryRepo()
	svc := NewAuthService(userRepo, historyRepo, jwtService,
		sessioncache.New(client, time.Hour), &fakeEmailService{}, zerolog.Nop())
	return svc, historyRepo
}

func loginTestStudent(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	student := testStudent(models.BloodGroupOPositive)
	student.Password = hash
	return student
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials return a token and record the login", func(t *testing.T) {
		student := loginTestStudent(t, "secret123")
		svc, historyRepo := newTestAuthService(t, newFakeUserRepo(student))

		resp, err := svc.Login(ctx, &dto.LoginRequest{
			Email:    student.Email,
			Password: "secret123",
		}, "10.0.0.1", "go-test")

		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, student.ID, resp.User.ID)

		entries, _, err := historyRepo.ListByUser(ctx, student.ID, 1, 10)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.True(t, entries[0].IsActive)
		assert.Equal(t, "10.0.0.1", entries[0].IPAddress)
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		student := loginTestStudent(t, "secret123")
		svc, _ := newTestAuthService(t, newFakeUserRepo(student))

		_, err := svc.Login(ctx, &dto.LoginRequest{
			Email:    student.Email,
			Password: "wrong",
		}, "10.0.0.1", "go-test")

		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("elapsed cooldown restores availability on login", func(t *testing.T) {
		student := loginTestStudent(t, "secret123")
		lastDonation := time.Now().AddDate(0, -4, 0)
		student.LastDonationDate = &lastDonation
		student.IsAvailable = false
		userRepo := newFakeUserRepo(student)
		svc, _ := newTestAuthService(t, userRepo)

		resp, err := svc.Login(ctx, &dto.LoginRequest{
			Email:    student.Email,
			Password: "secret123",
		}, "10.0.0.1", "go-test")

		require.NoError(t, err)
		assert.True(t, resp.User.IsAvailable)

		refreshed, err := userRepo.GetByID(ctx, student.ID)
		require.NoError(t, err)
		assert.True(t, refreshed.IsAvailable)
	})

	t.Run("student still in cooldown stays unavailable", func(t *testing.T) {
		student := loginTestStudent(t, "secret123")
		lastDonation := time.Now().AddDate(0, -1, 0)
		student.LastDonationDate = &lastDonation
		student.IsAvailable = false
		svc, _ := newTestAuthService(t, newFakeUserRepo(student))

		resp, err := svc.Login(ctx, &dto.LoginRequest{
			Email:    student.Email,
			Password: "secret123",
		}, "10.0.0.1", "go-test")

		require.NoError(t, err)
		assert.False(t, resp.User.IsAvailable)
	})
}
