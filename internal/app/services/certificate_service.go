package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mravi/bloodconnect/internal/app/models"
	"github.com/mravi/bloodconnect/internal/app/models/dto"
	"github.com/mravi/bloodconnect/internal/app/repositories"
	"github.com/mravi/bloodconnect/internal/pkg/apperrors"
	"github.com/mravi/bloodconnect/internal/pkg/helpers"
	"github.com/mravi/bloodconnect/internal/pkg/pdfgen"
)

// CertificateService defines the interface for donation certificate operations
type CertificateService interface {
	RequestForDonation(ctx context.Context, donor *models.User, request *models.BloodRequest, donatedAt time.Time, notes *string) (*models.Certificate, error)
	RequestByDonor(ctx context.Context, donorID uuid.UUID, req *dto.RequestCertificateRequest) (*models.Certificate, error)
	GetByID(ctx context.Context, id uuid.UUID, donorID *uuid.UUID) (*models.Certificate, error)
	ListByDonor(ctx context.Context, donorID uuid.UUID) ([]models.Certificate, error)
	List(ctx context.Context, status string, page, size int) (*dto.PagedResponse, error)
	Approve(ctx context.Context, id uuid.UUID) (*models.Certificate, error)
	Generate(ctx context.Context, id uuid.UUID) (*models.Certificate, error)
	ApproveAndGenerate(ctx context.Context, id uuid.UUID) (*models.Certificate, error)
	Download(ctx context.Context, id uuid.UUID, donorID *uuid.UUID) (filePath string, fileName string, err error)
	Delete(ctx context.Context, id uuid.UUID, donorID *uuid.UUID) error
}

// certificateServiceImpl implements CertificateService
type certificateServiceImpl struct {
	certRepo    repositories.ICertificateRepository
	userRepo    repositories.IUserRepository
	requestRepo repositories.IRequestRepository
	generator   *pdfgen.Generator
	notifier    NotificationService
	logger      zerolog.Logger
}

// NewCertificateService creates a new CertificateService
func NewCertificateService(
	certRepo repositories.ICertificateRepository,
	userRepo repositories.IUserRepository,
	requestRepo repositories.IRequestRepository,
	generator *pdfgen.Generator,
	notifier NotificationService,
	logger zerolog.Logger,
) CertificateService {
	return &certificateServiceImpl{
		certRepo:    certRepo,
		userRepo:    userRepo,
		requestRepo: requestRepo,
		generator:   generator,
		notifier:    notifier,
		logger:      logger,
	}
}

// nextCertificateNumber issues the next CERT-YYYY-NNNN number for the year
func (s *certificateServiceImpl) nextCertificateNumber(ctx context.Context, year int) (string, error) {
	count, err := s.certRepo.CountByYear(ctx, year)
	if err != nil {
		return "", fmt.Errorf("error counting certificates: %w", err)
	}
	return fmt.Sprintf("CERT-%d-%04d", year, count+1), nil
}

// RequestForDonation opens a pending certificate for a fulfilled
// donation, snapshotting the donor and donation details.
func (s *certificateServiceImpl) RequestForDonation(ctx context.Context, donor *models.User, request *models.BloodRequest, donatedAt time.Time, notes *string) (*models.Certificate, error) {
	exists, err := s.certRepo.ExistsForDonation(ctx, donor.ID, request.ID)
	if err != nil {
		return nil, fmt.Errorf("error checking certificate: %w", err)
	}
	if exists {
		return nil, apperrors.ErrCertificateExists
	}

	number, err := s.nextCertificateNumber(ctx, donatedAt.Year())
	if err != nil {
		return nil, err
	}

	cert := &models.Certificate{
		DonorID:           donor.ID,
		RequestID:         request.ID,
		CertificateNumber: number,
		DonorName:         donor.Name,
		BloodGroup:        request.BloodGroup,
		DonationDate:      donatedAt,
		HospitalName:      request.HospitalName,
		Units:             request.Units,
		Status:            models.CertificateStatusPending,
		Notes:             notes,
	}
	if err := s.certRepo.Create(ctx, cert); err != nil {
		if errors.Is(err, repositories.ErrCertificateExists) {
			return nil, apperrors.ErrCertificateExists
		}
		return nil, fmt.Errorf("error creating certificate: %w", err)
	}

	return cert, nil
}

// RequestByDonor lets a donor ask for a certificate for one of their
// fulfilled donations.
func (s *certificateServiceImpl) RequestByDonor(ctx context.Context, donorID uuid.UUID, req *dto.RequestCertificateRequest) (*models.Certificate, error) {
	request, err := s.requestRepo.GetByID(ctx, req.RequestID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.ErrRequestNotFound
		}
		return nil, fmt.Errorf("error fetching blood request: %w", err)
	}

	if request.Status != models.RequestStatusFulfilled {
		return nil, apperrors.NewBadRequestError("Request has not been fulfilled")
	}
	if request.AssignedDonorID == nil || *request.AssignedDonorID != donorID {
		return nil, apperrors.NewForbiddenError("You are not the donor of this request")
	}

	donor, err := s.userRepo.GetByID(ctx, donorID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error fetching donor: %w", err)
	}

	donatedAt := request.UpdatedAt
	if donor.LastDonationDate != nil {
		donatedAt = *donor.LastDonationDate
	}

	return s.RequestForDonation(ctx, donor, request, donatedAt, helpers.StringPtr(req.Notes))
}

// get fetches a certificate without any ownership scoping
func (s *certificateServiceImpl) get(ctx context.Context, id uuid.UUID) (*models.Certificate, error) {
	cert, err := s.certRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.ErrCertificateNotFound
		}
		return nil, fmt.Errorf("error fetching certificate: %w", err)
	}
	return cert, nil
}

// GetByID returns a certificate. A non-nil donorID restricts the lookup
// to certificates owned by that donor.
func (s *certificateServiceImpl) GetByID(ctx context.Context, id uuid.UUID, donorID *uuid.UUID) (*models.Certificate, error) {
	cert, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if donorID != nil && cert.DonorID != *donorID {
		return nil, apperrors.ErrPermissionDenied
	}
	return cert, nil
}

// ListByDonor returns all certificates of a donor, newest first
func (s *certificateServiceImpl) ListByDonor(ctx context.Context, donorID uuid.UUID) ([]models.Certificate, error) {
	certs, err := s.certRepo.ListByDonor(ctx, donorID)
	if err != nil {
		return nil, fmt.Errorf("error listing certificates: %w", err)
	}
	return certs, nil
}

// List returns certificates, optionally filtered by status
func (s *certificateServiceImpl) List(ctx context.Context, status string, page, size int) (*dto.PagedResponse, error) {
	var (
		certs []models.Certificate
		total int64
		err   error
	)
	if status != "" {
		certs, total, err = s.certRepo.ListByStatus(ctx, models.CertificateStatus(status), page, size)
	} else {
		certs, total, err = s.certRepo.ListAll(ctx, page, size)
	}
	if err != nil {
		return nil, fmt.Errorf("error listing certificates: %w", err)
	}

	return &dto.PagedResponse{
		Items:      certs,
		Pagination: helpers.NewPaginationInfo(total, page, size),
	}, nil
}

// Approve moves a pending certificate to approved
func (s *certificateServiceImpl) Approve(ctx context.Context, id uuid.UUID) (*models.Certificate, error) {
	cert, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if cert.Status != models.CertificateStatusPending {
		return nil, apperrors.ErrCertificateNotPending
	}

	now := time.Now()
	if err := s.certRepo.Approve(ctx, id, now); err != nil {
		return nil, fmt.Errorf("error approving certificate: %w", err)
	}
	cert.Status = models.CertificateStatusApproved
	cert.AdminApprovedAt = &now

	if donor, derr := s.userRepo.GetByID(ctx, cert.DonorID); derr == nil {
		s.notifier.NotifyCertificateApproved(ctx, cert, donor.Email)
	}

	return cert, nil
}

// Generate renders the PDF for an approved certificate
func (s *certificateServiceImpl) Generate(ctx context.Context, id uuid.UUID) (*models.Certificate, error) {
	cert, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if cert.Status != models.CertificateStatusApproved {
		return nil, apperrors.ErrCertificateNotApproved
	}

	now := time.Now()
	path, err := s.renderPDF(cert, now)
	if err != nil {
		return nil, err
	}

	if err := s.certRepo.SetGenerated(ctx, id, path, now); err != nil {
		return nil, fmt.Errorf("error storing generated certificate: %w", err)
	}
	cert.Status = models.CertificateStatusGenerated
	cert.GeneratedAt = &now
	cert.CertificateURL = &path

	if donor, derr := s.userRepo.GetByID(ctx, cert.DonorID); derr == nil {
		s.notifier.NotifyCertificateGenerated(ctx, cert, donor.Email)
	}

	return cert, nil
}

// ApproveAndGenerate approves a pending certificate and renders it in
// one admin action.
func (s *certificateServiceImpl) ApproveAndGenerate(ctx context.Context, id uuid.UUID) (*models.Certificate, error) {
	if _, err := s.Approve(ctx, id); err != nil {
		return nil, err
	}
	return s.Generate(ctx, id)
}

func (s *certificateServiceImpl) renderPDF(cert *models.Certificate, issuedAt time.Time) (string, error) {
	path, err := s.generator.Generate(pdfgen.CertificateData{
		CertificateNumber: cert.CertificateNumber,
		DonorName:         cert.DonorName,
		BloodGroup:        cert.BloodGroup,
		Units:             cert.Units,
		DonationDate:      cert.DonationDate,
		HospitalName:      cert.HospitalName,
		IssuedAt:          issuedAt,
	})
	if err != nil {
		return "", fmt.Errorf("error rendering certificate PDF: %w", err)
	}
	return path, nil
}

// Download resolves the PDF of a generated certificate, regenerating
// the file when it is missing on disk. When donorID is set the caller
// must own the certificate.
func (s *certificateServiceImpl) Download(ctx context.Context, id uuid.UUID, donorID *uuid.UUID) (string, string, error) {
	cert, err := s.get(ctx, id)
	if err != nil {
		return "", "", err
	}
	if donorID != nil && cert.DonorID != *donorID {
		return "", "", apperrors.ErrPermissionDenied
	}
	if cert.Status != models.CertificateStatusGenerated || cert.CertificateURL == nil {
		return "", "", apperrors.ErrCertificateNotGenerated
	}

	path := *cert.CertificateURL
	if _, err := os.Stat(path); os.IsNotExist(err) {
		issuedAt := time.Now()
		if cert.GeneratedAt != nil {
			issuedAt = *cert.GeneratedAt
		}
		s.logger.Warn().Str("certificateID", id.String()).Str("path", path).Msg("Certificate PDF missing, regenerating")
		path, err = s.renderPDF(cert, issuedAt)
		if err != nil {
			return "", "", err
		}
	}

	fileName := fmt.Sprintf("certificate-%s.pdf", cert.CertificateNumber)
	return path, fileName, nil
}

// Delete removes a certificate and its rendered PDF. A non-nil donorID
// limits the delete to the donor's own certificates.
func (s *certificateServiceImpl) Delete(ctx context.Context, id uuid.UUID, donorID *uuid.UUID) error {
	cert, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if donorID != nil && cert.DonorID != *donorID {
		return apperrors.ErrPermissionDenied
	}

	if err := s.certRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("error deleting certificate: %w", err)
	}

	if cert.CertificateURL != nil {
		if err := os.Remove(*cert.CertificateURL); err != nil && !os.IsNotExist(err) {
			s.logger.Error().Err(err).Str("path", *cert.CertificateURL).Msg("Failed to delete certificate PDF")
		}
	}
	return nil
}
