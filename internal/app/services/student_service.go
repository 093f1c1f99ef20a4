package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mravi/bloodconnect/internal/app/models"
	"github.com/mravi/bloodconnect/internal/app/models/dto"
	"github.com/mravi/bloodconnect/internal/app/repositories"
	"github.com/mravi/bloodconnect/internal/pkg/apperrors"
	"github.com/mravi/bloodconnect/internal/pkg/auth"
	"github.com/mravi/bloodconnect/internal/pkg/email"
	"github.com/mravi/bloodconnect/internal/pkg/helpers"
)

// StudentService defines the interface for student management operations
type StudentService interface {
	Create(ctx context.Context, req *dto.CreateStudentRequest) (*dto.UserResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.UserResponse, error)
	Update(ctx context.Context, id uuid.UUID, req *dto.UpdateStudentRequest) (*dto.UserResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filters *dto.StudentListFilters, page, size int) (*dto.PagedResponse, error)
	BulkUpload(ctx context.Context, file *multipart.FileHeader) (*dto.StudentUploadResult, error)
	SetAvailability(ctx context.Context, studentID uuid.UUID, available bool) (*dto.UserResponse, error)
}

// studentServiceImpl implements StudentService
type studentServiceImpl struct {
	userRepo     repositories.IUserRepository
	emailService email.EmailService
	logger       zerolog.Logger
}

// NewStudentService creates a new StudentService
func NewStudentService(
	userRepo repositories.IUserRepository,
	emailService email.EmailService,
	logger zerolog.Logger,
) StudentService {
	return &studentServiceImpl{
		userRepo:     userRepo,
		emailService: emailService,
		logger:       logger,
	}
}

// createStudent builds and persists a student account, emailing the
// temporary password when one was generated.
func (s *studentServiceImpl) createStudent(ctx context.Context, name, emailAddr, password, bloodGroup, rollNo, phone string) (*models.User, error) {
	if !models.IsValidBloodGroup(bloodGroup) {
		return nil, apperrors.NewValidationError("Invalid blood group")
	}

	exists, err := s.userRepo.EmailExists(ctx, emailAddr)
	if err != nil {
		return nil, fmt.Errorf("error checking email: %w", err)
	}
	if exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}

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
		Name:        name,
		Email:       emailAddr,
		Password:    hash,
		Role:        models.RoleStudent,
		BloodGroup:  models.BloodGroup(bloodGroup),
		RollNo:      helpers.StringPtr(rollNo),
		Phone:       helpers.StringPtr(phone),
		IsAvailable: true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrEmailAlreadyExists) {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("error creating student: %w", err)
	}

	if tempPassword != "" {
		if err := s.emailService.SendStudentWelcome(user.Email, user.Name, tempPassword); err != nil {
			s.logger.Error().Err(err).Str("email", user.Email).Msg("Failed to send welcome email")
		}
	}

	return user, nil
}

// Create registers a student account on behalf of an admin
func (s *studentServiceImpl) Create(ctx context.Context, req *dto.CreateStudentRequest) (*dto.UserResponse, error) {
	user, err := s.createStudent(ctx, req.Name, req.Email, req.Password, req.BloodGroup, req.RollNo, req.Phone)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// GetByID returns a student profile
func (s *studentServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error fetching student: %w", err)
	}
	if user.Role != models.RoleStudent {
		return nil, apperrors.ErrUserNotFound
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// Update applies an admin edit to a student profile
func (s *studentServiceImpl) Update(ctx context.Context, id uuid.UUID, req *dto.UpdateStudentRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error fetching student: %w", err)
	}
	if user.Role != models.RoleStudent {
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
	if req.BloodGroup != "" {
		if !models.IsValidBloodGroup(req.BloodGroup) {
			return nil, apperrors.NewValidationError("Invalid blood group")
		}
		user.BloodGroup = models.BloodGroup(req.BloodGroup)
	}
	if req.RollNo != "" {
		user.RollNo = helpers.StringPtr(req.RollNo)
	}
	if req.Phone != "" {
		user.Phone = helpers.StringPtr(req.Phone)
	}
	if req.IsAvailable != nil {
		user.IsAvailable = *req.IsAvailable
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrEmailAlreadyExists) {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("error updating student: %w", err)
	}

	resp := ToUserResponse(user)
	return &resp, nil
}

// Delete removes a student account
func (s *studentServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("error fetching student: %w", err)
	}
	if user.Role != models.RoleStudent {
		return apperrors.ErrUserNotFound
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("error deleting student: %w", err)
	}
	return nil
}

// List returns students filtered by blood group, availability and a
// free text search over name, email and roll number.
func (s *studentServiceImpl) List(ctx context.Context, filters *dto.StudentListFilters, page, size int) (*dto.PagedResponse, error) {
	filterMap := map[string]interface{}{}
	if filters.BloodGroup != "" {
		filterMap["blood_group"] = filters.BloodGroup
	}
	switch strings.ToLower(filters.Available) {
	case "true":
		filterMap["is_available"] = true
	case "false":
		filterMap["is_available"] = false
	}
	if filters.Search != "" {
		filterMap["search"] = filters.Search
	}

	students, total, err := s.userRepo.ListStudents(ctx, filterMap, page, size)
	if err != nil {
		return nil, fmt.Errorf("error listing students: %w", err)
	}

	items := make([]dto.UserResponse, 0, len(students))
	for i := range students {
		items = append(items, ToUserResponse(&students[i]))
	}

	return &dto.PagedResponse{
		Items:      items,
		Pagination: helpers.NewPaginationInfo(total, page, size),
	}, nil
}

// csvColumns is the expected header of a student bulk upload file
var csvColumns = []string{"name", "email", "bloodgroup", "rollno", "phone"}

// BulkUpload creates student accounts from a CSV file with the columns
// name, email, bloodGroup, rollNo, phone. Row failures are collected and
// reported; valid rows are still created.
func (s *studentServiceImpl) BulkUpload(ctx context.Context, fileHeader *multipart.FileHeader) (*dto.StudentUploadResult, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("error opening upload: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, apperrors.NewBadRequestError("CSV file is empty or unreadable")
	}

	colIndex := make(map[string]int, len(header))
	for i, col := range header {
		colIndex[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range csvColumns {
		if _, ok := colIndex[col]; !ok {
			return nil, apperrors.NewBadRequestError(fmt.Sprintf("CSV is missing the %q column", col))
		}
	}

	result := &dto.StudentUploadResult{}
	rowNum := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, dto.StudentUploadRowError{
				Row:     rowNum,
				Message: "Malformed CSV row",
			})
			continue
		}

		field := func(name string) string {
			idx := colIndex[name]
			if idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		emailAddr := field("email")
		_, err = s.createStudent(ctx, field("name"), emailAddr, "", field("bloodgroup"), field("rollno"), field("phone"))
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, dto.StudentUploadRowError{
				Row:     rowNum,
				Email:   emailAddr,
				Message: err.Error(),
			})
			continue
		}
		result.Created++
	}

	s.logger.Info().
		Int("created", result.Created).
		Int("failed", result.Failed).
		Msg("Student bulk upload processed")

	return result, nil
}

// SetAvailability toggles a student's own donation availability
func (s *studentServiceImpl) SetAvailability(ctx context.Context, studentID uuid.UUID, available bool) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error fetching student: %w", err)
	}

	if err := s.userRepo.SetAvailability(ctx, studentID, available); err != nil {
		return nil, fmt.Errorf("error updating availability: %w", err)
	}
	user.IsAvailable = available

	resp := ToUserResponse(user)
	return &resp, nil
}
