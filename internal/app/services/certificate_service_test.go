package services

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mravi/bloodconnect/internal/app/models"
	"github.com/mravi/bloodconnect/internal/app/models/dto"
	"github.com/mravi/bloodconnect/internal/app/repositories"
	"github.com/mravi/bloodconnect/internal/pkg/apperrors"
	"github.com/mravi/bloodconnect/internal/pkg/pdfgen"
)

func newTestCertificateService(t *testing.T, certRepo *fakeCertRepo, userRepo *fakeUserRepo, requestRepo *fakeRequestRepo, notifier *fakeNotifier) CertificateService {
	t.Helper()
	generator, err := pdfgen.NewGenerator(t.TempDir())
	require.NoError(t, err)
	return NewCertificateService(certRepo, userRepo, requestRepo, generator, notifier, zerolog.Nop())
}

func testCertificate(status models.CertificateStatus) *models.Certificate {
	return &models.Certificate{
		ID:                uuid.New(),
		DonorID:           uuid.New(),
		RequestID:         uuid.New(),
		CertificateNumber: "CERT-2026-0001",
		DonorName:         "Asha Rao",
		BloodGroup:        models.BloodGroupOPositive,
		DonationDate:      time.Now().AddDate(0, 0, -1),
		HospitalName:      "City Hospital",
		Units:             2,
		Status:            status,
		CreatedAt:         time.Now(),
	}
}

func TestCertificateService_RequestForDonation(t *testing.T) {
	ctx := context.Background()

	t.Run("certificate numbers are sequential per year", func(t *testing.T) {
		certRepo := newFakeCertRepo()
		svc := newTestCertificateService(t, certRepo, newFakeUserRepo(), newFakeRequestRepo(), &fakeNotifier{})

		donatedAt := time.Now()
		year := donatedAt.Year()

		for i := 1; i <= 3; i++ {
			donor := testStudent(models.BloodGroupOPositive)
			request := testRequest(models.RequestStatusFulfilled, models.BloodGroupOPositive)

			cert, err := svc.RequestForDonation(ctx, donor, request, donatedAt, nil)

			require.NoError(t, err)
			assert.Equal(t, fmt.Sprintf("CERT-%d-%04d", year, i), cert.CertificateNumber)
			assert.Equal(t, models.CertificateStatusPending, cert.Status)
		}
	})

	t.Run("one certificate per donation", func(t *testing.T) {
		svc := newTestCertificateService(t, newFakeCertRepo(), newFakeUserRepo(), newFakeRequestRepo(), &fakeNotifier{})
		donor := testStudent(models.BloodGroupOPositive)
		request := testRequest(models.RequestStatusFulfilled, models.BloodGroupOPositive)

		_, err := svc.RequestForDonation(ctx, donor, request, time.Now(), nil)
		require.NoError(t, err)

		_, err = svc.RequestForDonation(ctx, donor, request, time.Now(), nil)
		assert.ErrorIs(t, err, apperrors.ErrCertificateExists)
	})

	t.Run("certificate snapshots the donation details", func(t *testing.T) {
		svc := newTestCertificateService(t, newFakeCertRepo(), newFakeUserRepo(), newFakeRequestRepo(), &fakeNotifier{})
		donor := testStudent(models.BloodGroupBNegative)
		request := testRequest(models.RequestStatusFulfilled, models.BloodGroupBNegative)

		cert, err := svc.RequestForDonation(ctx, donor, request, time.Now(), nil)

		require.NoError(t, err)
		assert.Equal(t, donor.Name, cert.DonorName)
		assert.Equal(t, request.BloodGroup, cert.BloodGroup)
		assert.Equal(t, request.HospitalName, cert.HospitalName)
		assert.Equal(t, request.Units, cert.Units)
	})
}

func TestCertificateService_RequestByDonor(t *testing.T) {
	ctx := context.Background()

	t.Run("donor of a fulfilled request can ask for a certificate", func(t *testing.T) {
		donor := testStudent(models.BloodGroupOPositive)
		request := testRequest(models.RequestStatusFulfilled, models.BloodGroupOPositive)
		request.AssignedDonorID = &donor.ID
		svc := newTestCertificateService(t, newFakeCertRepo(), newFakeUserRepo(donor), newFakeRequestRepo(request), &fakeNotifier{})

		cert, err := svc.RequestByDonor(ctx, donor.ID, &dto.RequestCertificateRequest{RequestID: request.ID})

		require.NoError(t, err)
		assert.Equal(t, donor.ID, cert.DonorID)
	})

	t.Run("only the assigned donor may request", func(t *testing.T) {
		donor := testStudent(models.BloodGroupOPositive)
		other := testStudent(models.BloodGroupOPositive)
		request := testRequest(models.RequestStatusFulfilled, models.BloodGroupOPositive)
		request.AssignedDonorID = &donor.ID
		svc := newTestCertificateService(t, newFakeCertRepo(), newFakeUserRepo(donor, other), newFakeRequestRepo(request), &fakeNotifier{})

		_, err := svc.RequestByDonor(ctx, other.ID, &dto.RequestCertificateRequest{RequestID: request.ID})

		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("request must be fulfilled first", func(t *testing.T) {
		donor := testStudent(models.BloodGroupOPositive)
		request := testRequest(models.RequestStatusApproved, models.BloodGroupOPositive)
		request.AssignedDonorID = &donor.ID
		svc := newTestCertificateService(t, newFakeCertRepo(), newFakeUserRepo(donor), newFakeRequestRepo(request), &fakeNotifier{})

		_, err := svc.RequestByDonor(ctx, donor.ID, &dto.RequestCertificateRequest{RequestID: request.ID})

		assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
	})
}

func TestCertificateService_StatusTransitions(t *testing.T) {
	ctx := context.Background()

	t.Run("pending certificate is approved and the donor notified", func(t *testing.T) {
		cert := testCertificate(models.CertificateStatusPending)
		donor := testStudent(models.BloodGroupOPositive)
		donor.ID = cert.DonorID
		notifier := &fakeNotifier{}
		svc := newTestCertificateService(t, newFakeCertRepo(cert), newFakeUserRepo(donor), newFakeRequestRepo(), notifier)

		approved, err := svc.Approve(ctx, cert.ID)

		require.NoError(t, err)
		assert.Equal(t, models.CertificateStatusApproved, approved.Status)
		assert.NotNil(t, approved.AdminApprovedAt)
		assert.True(t, notifier.has("certificate_approved"))
	})

	t.Run("approved certificate cannot be approved twice", func(t *testing.T) {
		cert := testCertificate(models.CertificateStatusApproved)
		svc := newTestCertificateService(t, newFakeCertRepo(cert), newFakeUserRepo(), newFakeRequestRepo(), &fakeNotifier{})

		_, err := svc.Approve(ctx, cert.ID)

		assert.ErrorIs(t, err, apperrors.ErrCertificateNotPending)
	})

	t.Run("generation requires approval", func(t *testing.T) {
		cert := testCertificate(models.CertificateStatusPending)
		svc := newTestCertificateService(t, newFakeCertRepo(cert), newFakeUserRepo(), newFakeRequestRepo(), &fakeNotifier{})

		_, err := svc.Generate(ctx, cert.ID)

		assert.ErrorIs(t, err, apperrors.ErrCertificateNotApproved)
	})

	t.Run("approved certificate renders a PDF on disk", func(t *testing.T) {
		cert := testCertificate(models.CertificateStatusApproved)
		donor := testStudent(models.BloodGroupOPositive)
		donor.ID = cert.DonorID
		notifier := &fakeNotifier{}
		svc := newTestCertificateService(t, newFakeCertRepo(cert), newFakeUserRepo(donor), newFakeRequestRepo(), notifier)

		generated, err := svc.Generate(ctx, cert.ID)

		require.NoError(t, err)
		assert.Equal(t, models.CertificateStatusGenerated, generated.Status)
		require.NotNil(t, generated.CertificateURL)
		_, statErr := os.Stat(*generated.CertificateURL)
		assert.NoError(t, statErr)
		assert.True(t, notifier.has("certificate_generated"))
	})

	t.Run("approve and generate runs both transitions", func(t *testing.T) {
		cert := testCertificate(models.CertificateStatusPending)
		donor := testStudent(models.BloodGroupOPositive)
		donor.ID = cert.DonorID
		svc := newTestCertificateService(t, newFakeCertRepo(cert), newFakeUserRepo(donor), newFakeRequestRepo(), &fakeNotifier{})

		generated, err := svc.ApproveAndGenerate(ctx, cert.ID)

		require.NoError(t, err)
		assert.Equal(t, models.CertificateStatusGenerated, generated.Status)
	})
}

func TestCertificateService_Download(t *testing.T) {
	ctx := context.Background()

	t.Run("owner downloads their generated certificate", func(t *testing.T) {
		cert := testCertificate(models.CertificateStatusApproved)
		donor := testStudent(models.BloodGroupOPositive)
		donor.ID = cert.DonorID
		svc := newTestCertificateService(t, newFakeCertRepo(cert), newFakeUserRepo(donor), newFakeRequestRepo(), &fakeNotifier{})

		_, err := svc.Generate(ctx, cert.ID)
		require.NoError(t, err)

		path, fileName, err := svc.Download(ctx, cert.ID, &donor.ID)

		require.NoError(t, err)
		assert.NotEmpty(t, path)
		assert.Equal(t, "certificate-CERT-2026-0001.pdf", fileName)
	})

	t.Run("another donor cannot download it", func(t *testing.T) {
		cert := testCertificate(models.CertificateStatusGenerated)
		url := "somewhere.pdf"
		cert.CertificateURL = &url
		otherID := uuid.New()
		svc := newTestCertificateService(t, newFakeCertRepo(cert), newFakeUserRepo(), newFakeRequestRepo(), &fakeNotifier{})

		_, _, err := svc.Download(ctx, cert.ID, &otherID)

		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("download requires a generated certificate", func(t *testing.T) {
		cert := testCertificate(models.CertificateStatusPending)
		svc := newTestCertificateService(t, newFakeCertRepo(cert), newFakeUserRepo(), newFakeRequestRepo(), &fakeNotifier{})

		_, _, err := svc.Download(ctx, cert.ID, nil)

		assert.ErrorIs(t, err, apperrors.ErrCertificateNotGenerated)
	})
}

func TestCertificateService_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("owner fetches their certificate", func(t *testing.T) {
		cert := testCertificate(models.CertificateStatusPending)
		svc := newTestCertificateService(t, newFakeCertRepo(cert), newFakeUserRepo(), newFakeRequestRepo(), &fakeNotifier{})

		got, err := svc.GetByID(ctx, cert.ID, &cert.DonorID)

		require.NoError(t, err)
		assert.Equal(t, cert.ID, got.ID)
	})

	t.Run("admins fetch any certificate", func(t *testing.T) {
		cert := testCertificate(models.CertificateStatusPending)
		svc := newTestCertificateService(t, newFakeCertRepo(cert), newFakeUserRepo(), newFakeRequestRepo(), &fakeNotifier{})

		got, err := svc.GetByID(ctx, cert.ID, nil)

		require.NoError(t, err)
		assert.Equal(t, cert.ID, got.ID)
	})

	t.Run("another donor cannot fetch it", func(t *testing.T) {
		cert := testCertificate(models.CertificateStatusPending)
		otherID := uuid.New()
		svc := newTestCertificateService(t, newFakeCertRepo(cert), newFakeUserRepo(), newFakeRequestRepo(), &fakeNotifier{})

		_, err := svc.GetByID(ctx, cert.ID, &otherID)

		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})
}

func TestCertificateService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("owner deletes their certificate", func(t *testing.T) {
		cert := testCertificate(models.CertificateStatusPending)
		certRepo := newFakeCertRepo(cert)
		svc := newTestCertificateService(t, certRepo, newFakeUserRepo(), newFakeRequestRepo(), &fakeNotifier{})

		require.NoError(t, svc.Delete(ctx, cert.ID, &cert.DonorID))

		_, err := certRepo.GetByID(ctx, cert.ID)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("another donor cannot delete it", func(t *testing.T) {
		cert := testCertificate(models.CertificateStatusPending)
		certRepo := newFakeCertRepo(cert)
		otherID := uuid.New()
		svc := newTestCertificateService(t, certRepo, newFakeUserRepo(), newFakeRequestRepo(), &fakeNotifier{})

		err := svc.Delete(ctx, cert.ID, &otherID)

		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

		_, err = certRepo.GetByID(ctx, cert.ID)
		require.NoError(t, err)
	})

	t.Run("admins delete any certificate", func(t *testing.T) {
		cert := testCertificate(models.CertificateStatusPending)
		certRepo := newFakeCertRepo(cert)
		svc := newTestCertificateService(t, certRepo, newFakeUserRepo(), newFakeRequestRepo(), &fakeNotifier{})

		require.NoError(t, svc.Delete(ctx, cert.ID, nil))
	})
}
