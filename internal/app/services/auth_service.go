package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mravi/bloodconnect/internal/app/models"
	"github.com/mravi/bloodconnect/internal/app/models/dto"
	"github.com/mravi/bloodconnect/internal/app/repositories"
	"github.com/mravi/bloodconnect/internal/pkg/apperrors"
	"github.com/mravi/bloodconnect/internal/pkg/auth"
	"github.com/mravi/bloodconnect/internal/pkg/email"
	"github.com/mravi/bloodconnect/internal/pkg/helpers"
	"github.com/mravi/bloodconnect/internal/pkg/sessioncache"
)

// AuthService defines the interface for authentication operations
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest, ipAddress, userAgent string) (*dto.AuthResponse, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	GetProfile(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, req *dto.ChangePasswordRequest) error
	GetLoginHistory(ctx context.Context, userID uuid.UUID, page, size int) (*dto.PagedResponse, error)
}

// authServiceImpl implements AuthService
type authServiceImpl struct {
	userRepo         repositories.IUserRepository
	loginHistoryRepo repositories.ILoginHistoryRepository
	jwtService       *auth.JWTService
	sessions         *sessioncache.Cache
	emailService     email.EmailService
	logger           zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repositories.IUserRepository,
	loginHistoryRepo repositories.ILoginHistoryRepository,
	jwtService *auth.JWTService,
	sessions *sessioncache.Cache,
	emailService email.EmailService,
	logger zerolog.Logger,
) AuthService {
	return &authServiceImpl{
		userRepo:         userRepo,
		loginHistoryRepo: loginHistoryRepo,
		jwtService:       jwtService,
		sessions:         sessions,
		emailService:     emailService,
		logger:           logger,
	}
}

// ToUserResponse converts a user model to its public view
func ToUserResponse(user *models.User) dto.UserResponse {
	resp := dto.UserResponse{
		ID:               user.ID,
		Name:             user.Name,
		Email:            user.Email,
		Role:             string(user.Role),
		BloodGroup:       string(user.BloodGroup),
		IsAvailable:      user.IsAvailable,
		LastDonationDate: user.LastDonationDate,
		LastLogin:        user.LastLogin,
		CreatedAt:        user.CreatedAt,
	}
	if user.RollNo != nil {
		resp.RollNo = *user.RollNo
	}
	if user.Phone != nil {
		resp.Phone = *user.Phone
	}
	return resp
}

// Register creates a student account. When no password is supplied a
// temporary one is generated and emailed to the student.
func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	if !models.IsValidBloodGroup(req.BloodGroup) {
		return nil, apperrors.NewValidationError("Invalid blood group")
	}

	exists, err := s.userRepo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("error checking email: %w", err)
	}
	if exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	password := req.Password
	tempPassword := ""
	if password == "" {
		tempPassword, err = auth.GenerateTempPassword(12)
		if err != nil {
			return nil, fmt.Errorf("error generating temporary password: %w", err)
		}
		password = tempPassword
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Name:        req.Name,
		Email:       req.Email,
		Password:    hash,
		Role:        models.RoleStudent,
		BloodGroup:  models.BloodGroup(req.BloodGroup),
		RollNo:      helpers.StringPtr(req.RollNo),
		Phone:       helpers.StringPtr(req.Phone),
		IsAvailable: true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrEmailAlreadyExists) {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	if tempPassword != "" {
		if err := s.emailService.SendStudentWelcome(user.Email, user.Name, tempPassword); err != nil {
			s.logger.Error().Err(err).Str("email", user.Email).Msg("Failed to send welcome email")
		}
	}

	resp := ToUserResponse(user)
	return &resp, nil
}

// Login verifies credentials, refreshes donor availability when the
// cooldown has elapsed, records the login and issues a JWT. The token is
// cached in Redis so a later login invalidates earlier sessions.
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest, ipAddress, userAgent string) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error fetching user: %w", err)
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	now := time.Now()

	// A student whose cooldown has elapsed becomes available again
	if user.Role == models.RoleStudent && !user.IsAvailable && user.IsEligibleToDonate(now) {
		if err := s.userRepo.SetAvailability(ctx, user.ID, true); err != nil {
			s.logger.Error().Err(err).Str("userID", user.ID.String()).Msg("Failed to refresh availability")
		} else {
			user.IsAvailable = true
		}
	}

	token, _, err := s.jwtService.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}

	if err := s.sessions.Set(ctx, user.ID, token); err != nil {
		s.logger.Error().Err(err).Str("userID", user.ID.String()).Msg("Failed to cache session")
	}

	if err := s.loginHistoryRepo.DeactivateAllForUser(ctx, user.ID); err != nil {
		s.logger.Error().Err(err).Str("userID", user.ID.String()).Msg("Failed to deactivate previous sessions")
	}
	entry := &models.LoginHistory{
		UserID:    user.ID,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		LoginTime: now,
		IsActive:  true,
	}
	if err := s.loginHistoryRepo.Create(ctx, entry); err != nil {
		s.logger.Error().Err(err).Str("userID", user.ID.String()).Msg("Failed to record login")
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Error().Err(err).Str("userID", user.ID.String()).Msg("Failed to update last login")
	}
	user.LastLogin = &now

	return &dto.AuthResponse{
		Token: token,
		User:  ToUserResponse(user),
	}, nil
}

// Logout closes the active login history entry and drops the session
func (s *authServiceImpl) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := s.loginHistoryRepo.CloseActive(ctx, userID, time.Now()); err != nil {
		s.logger.Error().Err(err).Str("userID", userID.String()).Msg("Failed to close login history")
	}
	if err := s.sessions.Delete(ctx, userID); err != nil {
		return fmt.Errorf("error deleting session: %w", err)
	}
	return nil
}

// GetProfile returns the authenticated user's profile
func (s *authServiceImpl) GetProfile(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error fetching user: %w", err)
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// UpdateProfile updates the caller's name and phone
func (s *authServiceImpl) UpdateProfile(ctx context.Context, userID uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error fetching user: %w", err)
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Phone != "" {
		user.Phone = helpers.StringPtr(req.Phone)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("error updating user: %w", err)
	}

	resp := ToUserResponse(user)
	return &resp, nil
}

// ChangePassword verifies the current password and stores the new hash
func (s *authServiceImpl) ChangePassword(ctx context.Context, userID uuid.UUID, req *dto.ChangePasswordRequest) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("error fetching user: %w", err)
	}

	if !auth.CheckPassword(user.Password, req.CurrentPassword) {
		return apperrors.ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}
	return nil
}

// GetLoginHistory returns the user's login history, newest first
func (s *authServiceImpl) GetLoginHistory(ctx context.Context, userID uuid.UUID, page, size int) (*dto.PagedResponse, error) {
	entries, total, err := s.loginHistoryRepo.ListByUser(ctx, userID, page, size)
	if err != nil {
		return nil, fmt.Errorf("error listing login history: %w", err)
	}

	items := make([]dto.LoginHistoryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, dto.LoginHistoryResponse{
			ID:         e.ID,
			IPAddress:  e.IPAddress,
			UserAgent:  e.UserAgent,
			LoginTime:  e.LoginTime,
			LogoutTime: e.LogoutTime,
			IsActive:   e.IsActive,
		})
	}

	return &dto.PagedResponse{
		Items:      items,
		Pagination: helpers.NewPaginationInfo(total, page, size),
	}, nil
}
