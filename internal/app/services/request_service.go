package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/mravi/bloodconnect/internal/app/models"
	"github.com/mravi/bloodconnect/internal/app/models/dto"
	"github.com/mravi/bloodconnect/internal/app/repositories"
	"github.com/mravi/bloodconnect/internal/db"
	"github.com/mravi/bloodconnect/internal/pkg/apperrors"
	"github.com/mravi/bloodconnect/internal/pkg/filestorage"
	"github.com/mravi/bloodconnect/internal/pkg/helpers"
	"github.com/mravi/bloodconnect/internal/pkg/validation"
)

// RequestService defines the interface for blood request operations
type RequestService interface {
	Create(ctx context.Context, req *dto.CreateBloodRequest) (*models.BloodRequest, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.BloodRequestDetail, error)
	List(ctx context.Context, filters *dto.RequestListFilters, page, size int) (*dto.PagedResponse, error)
	ListMatchingForStudent(ctx context.Context, studentID uuid.UUID) ([]models.BloodRequest, []uuid.UUID, error)
	ListOptInsForStudent(ctx context.Context, studentID uuid.UUID) ([]dto.StudentOptInDetail, error)
	Delete(ctx context.Context, id uuid.UUID) error

	Approve(ctx context.Context, id uuid.UUID) (*models.BloodRequest, error)
	Reject(ctx context.Context, id uuid.UUID, reason string) (*models.BloodRequest, error)
	OptIn(ctx context.Context, requestID, studentID uuid.UUID) error
	AssignDonor(ctx context.Context, requestID, donorID uuid.UUID) (*models.BloodRequest, error)
	Fulfill(ctx context.Context, requestID, donorID uuid.UUID) (*models.BloodRequest, error)
	CompleteDonation(ctx context.Context, requestID uuid.UUID, geotagPhoto *multipart.FileHeader) (*models.BloodRequest, error)
}

// Transactor runs a function inside a database transaction
type Transactor interface {
	WithTransaction(ctx context.Context, fn db.TransactionFn) error
}

// requestServiceImpl implements RequestService
type requestServiceImpl struct {
	database     Transactor
	requestRepo  repositories.IRequestRepository
	userRepo     repositories.IUserRepository
	optInRepo    repositories.IOptInRepository
	certService  CertificateService
	notifier     NotificationService
	storage      filestorage.FileStorage
	logger       zerolog.Logger
}

// NewRequestService creates a new RequestService
func NewRequestService(
	database Transactor,
	requestRepo repositories.IRequestRepository,
	userRepo repositories.IUserRepository,
	optInRepo repositories.IOptInRepository,
	certService CertificateService,
	notifier NotificationService,
	storage filestorage.FileStorage,
	logger zerolog.Logger,
) RequestService {
	return &requestServiceImpl{
		database:    database,
		requestRepo: requestRepo,
		userRepo:    userRepo,
		optInRepo:   optInRepo,
		certService: certService,
		notifier:    notifier,
		storage:     storage,
		logger:      logger,
	}
}

// Create validates and stores a public blood request and alerts admins
func (s *requestServiceImpl) Create(ctx context.Context, req *dto.CreateBloodRequest) (*models.BloodRequest, error) {
	if verrs := validation.ValidateCreateBloodRequest(req, time.Now()); verrs.HasErrors() {
		return nil, &apperrors.CustomError{
			Err:     apperrors.ErrValidationFailed,
			Message: "Request validation failed",
			Details: map[string]interface{}{"errors": verrs.Errors},
		}
	}

	request := &models.BloodRequest{
		RequestorName: req.RequestorName,
		Email:         req.Email,
		Phone:         req.Phone,
		BloodGroup:    models.BloodGroup(req.BloodGroup),
		Units:         req.Units,
		DateTime:      req.DateTime,
		HospitalName:  req.HospitalName,
		Location:      req.Location,
		Urgency:       models.UrgencyLevel(req.Urgency),
		Notes:         helpers.StringPtr(req.Notes),
		Status:        models.RequestStatusPending,
	}
	if err := s.requestRepo.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("error creating blood request: %w", err)
	}

	s.notifier.NotifyRequestCreated(ctx, request)

	return request, nil
}

// GetByID returns the request together with its donor candidates and,
// when assigned, the donor profile.
func (s *requestServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*dto.BloodRequestDetail, error) {
	request, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.ErrRequestNotFound
		}
		return nil, fmt.Errorf("error fetching blood request: %w", err)
	}

	detail := &dto.BloodRequestDetail{BloodRequest: *request}

	optIns, err := s.optInRepo.ListByRequest(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error listing opted-in students: %w", err)
	}
	detail.OptedInStudents = optIns

	if request.AssignedDonorID != nil {
		donor, err := s.userRepo.GetByID(ctx, *request.AssignedDonorID)
		if err == nil {
			resp := ToUserResponse(donor)
			detail.AssignedDonor = &resp
		} else if !errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("error fetching assigned donor: %w", err)
		}
	}

	return detail, nil
}

// List returns requests filtered by status, blood group, urgency and a
// free text search over requestor, hospital, location and email.
func (s *requestServiceImpl) List(ctx context.Context, filters *dto.RequestListFilters, page, size int) (*dto.PagedResponse, error) {
	filterMap := map[string]interface{}{}
	if filters.Status != "" {
		filterMap["status"] = filters.Status
	}
	if filters.BloodGroup != "" {
		filterMap["blood_group"] = filters.BloodGroup
	}
	if filters.Urgency != "" {
		filterMap["urgency"] = filters.Urgency
	}
	if filters.Search != "" {
		filterMap["search"] = filters.Search
	}

	requests, total, err := s.requestRepo.List(ctx, filterMap, page, size)
	if err != nil {
		return nil, fmt.Errorf("error listing blood requests: %w", err)
	}

	return &dto.PagedResponse{
		Items:      requests,
		Pagination: helpers.NewPaginationInfo(total, page, size),
	}, nil
}

// ListMatchingForStudent returns approved, still upcoming requests
// matching the student's blood group, plus the ids of the requests the
// student has already opted in to. The availability flag is recomputed
// against the donation cooldown first; a student who is still in
// cooldown sees an empty list.
func (s *requestServiceImpl) ListMatchingForStudent(ctx context.Context, studentID uuid.UUID) ([]models.BloodRequest, []uuid.UUID, error) {
	student, err := s.userRepo.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, apperrors.ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("error fetching student: %w", err)
	}

	now := time.Now()
	if !student.IsAvailable && student.IsEligibleToDonate(now) {
		if err := s.userRepo.SetAvailability(ctx, studentID, true); err != nil {
			s.logger.Error().Err(err).Str("userID", studentID.String()).Msg("Failed to restore donor availability")
		} else {
			student.IsAvailable = true
		}
	}
	if !student.IsAvailable {
		return []models.BloodRequest{}, []uuid.UUID{}, nil
	}

	requests, err := s.requestRepo.ListMatching(ctx, student.BloodGroup, now)
	if err != nil {
		return nil, nil, fmt.Errorf("error listing matching requests: %w", err)
	}

	optedIn, err := s.optInRepo.ListRequestIDsByStudent(ctx, studentID)
	if err != nil {
		return nil, nil, fmt.Errorf("error listing opt-ins: %w", err)
	}

	return requests, optedIn, nil
}

// ListOptInsForStudent returns the student's opt-ins joined with their
// requests, newest first.
func (s *requestServiceImpl) ListOptInsForStudent(ctx context.Context, studentID uuid.UUID) ([]dto.StudentOptInDetail, error) {
	optIns, err := s.optInRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("error listing student opt-ins: %w", err)
	}
	return optIns, nil
}

// Delete removes a request and its dependent rows
func (s *requestServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.requestRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.ErrRequestNotFound
		}
		return fmt.Errorf("error deleting blood request: %w", err)
	}
	return nil
}

// Approve moves a pending request to approved and alerts matching donors
func (s *requestServiceImpl) Approve(ctx context.Context, id uuid.UUID) (*models.BloodRequest, error) {
	request, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.ErrRequestNotFound
		}
		return nil, fmt.Errorf("error fetching blood request: %w", err)
	}

	if request.Status != models.RequestStatusPending {
		return nil, apperrors.ErrRequestNotPending
	}

	if err := s.requestRepo.UpdateStatus(ctx, id, models.RequestStatusApproved); err != nil {
		return nil, fmt.Errorf("error approving blood request: %w", err)
	}
	request.Status = models.RequestStatusApproved

	donors, err := s.userRepo.EligibleDonors(ctx, request.BloodGroup)
	if err != nil {
		s.logger.Error().Err(err).Str("requestID", id.String()).Msg("Failed to list eligible donors")
		donors = nil
	}
	s.notifier.NotifyRequestApproved(ctx, request, donors)

	return request, nil
}

// Reject moves a pending request to rejected with an optional reason
func (s *requestServiceImpl) Reject(ctx context.Context, id uuid.UUID, reason string) (*models.BloodRequest, error) {
	request, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.ErrRequestNotFound
		}
		return nil, fmt.Errorf("error fetching blood request: %w", err)
	}

	if request.Status != models.RequestStatusPending {
		return nil, apperrors.ErrRequestNotPending
	}

	if err := s.requestRepo.Reject(ctx, id, reason); err != nil {
		return nil, fmt.Errorf("error rejecting blood request: %w", err)
	}
	request.Status = models.RequestStatusRejected
	if reason != "" {
		request.RejectionReason = &reason
	}

	s.notifier.NotifyRequestRejected(ctx, request, reason)

	return request, nil
}

// OptIn registers a student as a donor candidate. The request must be
// approved, the blood group must match and the student must be inside
// the donation cooldown rules.
func (s *requestServiceImpl) OptIn(ctx context.Context, requestID, studentID uuid.UUID) error {
	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.ErrRequestNotFound
		}
		return fmt.Errorf("error fetching blood request: %w", err)
	}
	if request.Status != models.RequestStatusApproved {
		return apperrors.ErrRequestNotApproved
	}

	student, err := s.userRepo.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("error fetching student: %w", err)
	}
	if student.BloodGroup != request.BloodGroup {
		return apperrors.ErrBloodGroupMismatch
	}
	if !student.IsEligibleToDonate(time.Now()) {
		return apperrors.ErrDonorNotEligible
	}

	optIn := &models.StudentOptIn{
		StudentID: studentID,
		RequestID: requestID,
	}
	if err := s.optInRepo.Create(ctx, optIn); err != nil {
		if errors.Is(err, repositories.ErrOptInExists) {
			return apperrors.ErrAlreadyOptedIn
		}
		return fmt.Errorf("error creating opt-in: %w", err)
	}

	s.notifier.NotifyStudentOptedIn(ctx, request, student)

	return nil
}

// AssignDonor selects one of the opted-in students as the donor without
// fulfilling the request yet.
func (s *requestServiceImpl) AssignDonor(ctx context.Context, requestID, donorID uuid.UUID) (*models.BloodRequest, error) {
	request, donor, err := s.checkDonorSelection(ctx, requestID, donorID)
	if err != nil {
		return nil, err
	}

	if err := s.requestRepo.AssignDonor(ctx, requestID, donorID); err != nil {
		return nil, fmt.Errorf("error assigning donor: %w", err)
	}
	request.AssignedDonorID = &donorID

	s.notifier.NotifyDonorAssigned(ctx, request, donor)

	return request, nil
}

// checkDonorSelection validates the shared preconditions of AssignDonor
// and Fulfill: approved request, donor opted in, blood groups matching.
func (s *requestServiceImpl) checkDonorSelection(ctx context.Context, requestID, donorID uuid.UUID) (*models.BloodRequest, *models.User, error) {
	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, apperrors.ErrRequestNotFound
		}
		return nil, nil, fmt.Errorf("error fetching blood request: %w", err)
	}
	if request.Status != models.RequestStatusApproved {
		return nil, nil, apperrors.ErrRequestNotApproved
	}

	donor, err := s.userRepo.GetByID(ctx, donorID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, apperrors.ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("error fetching donor: %w", err)
	}
	if donor.BloodGroup != request.BloodGroup {
		return nil, nil, apperrors.ErrBloodGroupMismatch
	}

	optedIn, err := s.optInRepo.Exists(ctx, donorID, requestID)
	if err != nil {
		return nil, nil, fmt.Errorf("error checking opt-in: %w", err)
	}
	if !optedIn {
		return nil, nil, apperrors.ErrDonorNotOptedIn
	}

	return request, donor, nil
}

// Fulfill marks the request fulfilled with the chosen donor. The status
// change, donor assignment and donor cooldown update commit in a single
// transaction.
func (s *requestServiceImpl) Fulfill(ctx context.Context, requestID, donorID uuid.UUID) (*models.BloodRequest, error) {
	request, donor, err := s.checkDonorSelection(ctx, requestID, donorID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.requestRepo.FulfillTx(ctx, tx, requestID, donorID); err != nil {
			return err
		}
		return s.userRepo.MarkDonatedTx(ctx, tx, donorID, now)
	})
	if err != nil {
		return nil, fmt.Errorf("error fulfilling blood request: %w", err)
	}

	request.Status = models.RequestStatusFulfilled
	request.AssignedDonorID = &donorID

	s.notifier.NotifyDonationCompleted(ctx, request, donor)

	s.requestCertificate(ctx, request, donor, now)

	return request, nil
}

// CompleteDonation fulfills the request with the donor already assigned
// to it, storing an optional geotagged photo as donation proof.
func (s *requestServiceImpl) CompleteDonation(ctx context.Context, requestID uuid.UUID, geotagPhoto *multipart.FileHeader) (*models.BloodRequest, error) {
	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.ErrRequestNotFound
		}
		return nil, fmt.Errorf("error fetching blood request: %w", err)
	}
	if request.Status != models.RequestStatusApproved {
		return nil, apperrors.ErrRequestNotApproved
	}
	if request.AssignedDonorID == nil {
		return nil, apperrors.ErrNoDonorAssigned
	}
	donorID := *request.AssignedDonorID

	donor, err := s.userRepo.GetByID(ctx, donorID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error fetching donor: %w", err)
	}

	photoPath := ""
	if geotagPhoto != nil {
		photoPath, err = s.storage.SaveFileWithPath(geotagPhoto, "geotags")
		if err != nil {
			return nil, fmt.Errorf("error saving geotag photo: %w", err)
		}
	}

	now := time.Now()
	err = s.database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.requestRepo.FulfillTx(ctx, tx, requestID, donorID); err != nil {
			return err
		}
		if photoPath != "" {
			if err := s.requestRepo.SetGeotagPhotoTx(ctx, tx, requestID, photoPath); err != nil {
				return err
			}
		}
		return s.userRepo.MarkDonatedTx(ctx, tx, donorID, now)
	})
	if err != nil {
		if photoPath != "" {
			if delErr := s.storage.DeleteFile(photoPath); delErr != nil {
				s.logger.Error().Err(delErr).Str("path", photoPath).Msg("Failed to clean up geotag photo")
			}
		}
		return nil, fmt.Errorf("error completing donation: %w", err)
	}

	request.Status = models.RequestStatusFulfilled
	if photoPath != "" {
		request.GeotagPhoto = &photoPath
	}

	s.notifier.NotifyDonationCompleted(ctx, request, donor)

	s.requestCertificate(ctx, request, donor, now)

	return request, nil
}

// requestCertificate opens the certificate for a completed donation.
// Failures are logged; the donation itself already committed.
func (s *requestServiceImpl) requestCertificate(ctx context.Context, request *models.BloodRequest, donor *models.User, donatedAt time.Time) {
	if _, err := s.certService.RequestForDonation(ctx, donor, request, donatedAt, nil); err != nil {
		if !errors.Is(err, apperrors.ErrCertificateExists) {
			s.logger.Error().
				Err(err).
				Str("requestID", request.ID.String()).
				Str("donorID", donor.ID.String()).
				Msg("Failed to open certificate for donation")
		}
	}
}
