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
	"github.com/mravi/bloodconnect/internal/pkg/helpers"
)

// AdminService defines the interface for admin account and dashboard operations
type AdminService interface {
	CreateAdmin(ctx context.Context, req *dto.CreateAdminRequest) (*dto.UserResponse, error)
	UpdateAdmin(ctx context.Context, id uuid.UUID, req *dto.UpdateAdminRequest) (*dto.UserResponse, error)
	DeleteAdmin(ctx context.Context, callerID, id uuid.UUID) error
	ListAdmins(ctx context.Context) ([]dto.UserResponse, error)
	DashboardStats(ctx context.Context) (*dto.DashboardStats, error)
	BloodGroupStats(ctx context.Context) ([]dto.BloodGroupStats, error)
}

// adminServiceImpl implements AdminService
type adminServiceImpl struct {
	userRepo    repositories.IUserRepository
	requestRepo repositories.IRequestRepository
	optInRepo   repositories.IOptInRepository
	logger      zerolog.Logger
}

// NewAdminService creates a new AdminService
func NewAdminService(
	userRepo repositories.IUserRepository,
	requestRepo repositories.IRequestRepository,
	optInRepo repositories.IOptInRepository,
	logger zerolog.Logger,
) AdminService {
	return &adminServiceImpl{
		userRepo:    userRepo,
		requestRepo: requestRepo,
		optInRepo:   optInRepo,
		logger:      logger,
	}
}

// CreateAdmin registers another admin account
func (s *adminServiceImpl) CreateAdmin(ctx context.Context, req *dto.CreateAdminRequest) (*dto.UserResponse, error) {
	exists, err := s.userRepo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("error checking email: %w", err)
	}
	if exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hash,
		Role:     models.RoleAdmin,
		Phone:    helpers.StringPtr(req.Phone),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrEmailAlreadyExists) {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("error creating admin: %w", err)
	}

	resp := ToUserResponse(user)
	return &resp, nil
}

// UpdateAdmin edits an admin account
func (s *adminServiceImpl) UpdateAdmin(ctx context.Context, id uuid.UUID, req *dto.UpdateAdminRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error fetching admin: %w", err)
	}
	if user.Role != models.RoleAdmin {
		return nil, apperrors.ErrUserNotFound
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" && req.Email != user.Email {
		exists, err := s.userRepo.EmailExists(ctx, req.Email)
		if err != nil {
			return nil, fmt.Errorf("error checking email: %w", err)
		}
		if exists {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		user.Email = req.Email
	}
	if req.Phone != "" {
		user.Phone = helpers.StringPtr(req.Phone)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("error updating admin: %w", err)
	}

	resp := ToUserResponse(user)
	return &resp, nil
}

// DeleteAdmin removes an admin account. Admins cannot delete themselves.
func (s *adminServiceImpl) DeleteAdmin(ctx context.Context, callerID, id uuid.UUID) error {
	if callerID == id {
		return apperrors.NewBadRequestError("You cannot delete your own account")
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("error fetching admin: %w", err)
	}
	if user.Role != models.RoleAdmin {
		return apperrors.ErrUserNotFound
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("error deleting admin: %w", err)
	}
	return nil
}

// ListAdmins returns all admin accounts
func (s *adminServiceImpl) ListAdmins(ctx context.Context) ([]dto.UserResponse, error) {
	admins, err := s.userRepo.ListAdmins(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing admins: %w", err)
	}

	items := make([]dto.UserResponse, 0, len(admins))
	for i := range admins {
		items = append(items, ToUserResponse(&admins[i]))
	}
	return items, nil
}

// DashboardStats aggregates the admin dashboard counters
func (s *adminServiceImpl) DashboardStats(ctx context.Context) (*dto.DashboardStats, error) {
	byStatus, err := s.requestRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("error counting requests: %w", err)
	}

	totalStudents, err := s.userRepo.CountStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("error counting students: %w", err)
	}
	availableStudents, err := s.userRepo.CountAvailableStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("error counting available students: %w", err)
	}
	recentOptIns, err := s.optInRepo.CountSince(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("error counting recent opt-ins: %w", err)
	}

	var total int64
	for _, count := range byStatus {
		total += count
	}

	return &dto.DashboardStats{
		TotalRequests:     total,
		PendingRequests:   byStatus[models.RequestStatusPending],
		ApprovedRequests:  byStatus[models.RequestStatusApproved],
		FulfilledRequests: byStatus[models.RequestStatusFulfilled],
		TotalStudents:     totalStudents,
		AvailableStudents: availableStudents,
		RecentOptIns:      recentOptIns,
	}, nil
}

// BloodGroupStats returns the per-group request and donor breakdown
func (s *adminServiceImpl) BloodGroupStats(ctx context.Context) ([]dto.BloodGroupStats, error) {
	stats, err := s.requestRepo.BloodGroupStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("error aggregating blood group stats: %w", err)
	}

	for i := range stats {
		available, err := s.userRepo.CountAvailableByBloodGroup(ctx, models.BloodGroup(stats[i].BloodGroup))
		if err != nil {
			return nil, fmt.Errorf("error counting available donors: %w", err)
		}
		stats[i].AvailableDonors = available
	}

	return stats, nil
}
