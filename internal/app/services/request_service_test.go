package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mravi/bloodconnect/internal/app/models"
	"github.com/mravi/bloodconnect/internal/app/models/dto"
	"github.com/mravi/bloodconnect/internal/pkg/apperrors"
	"github.com/mravi/bloodconnect/internal/pkg/pdfgen"
)

func strPtr(s string) *string { return &s }

func testStudent(bloodGroup models.BloodGroup) *models.User {
	return &models.User{
		ID:          uuid.New(),
		Name:        "Asha Rao",
		Email:       "asha@example.edu",
		Role:        models.RoleStudent,
		BloodGroup:  bloodGroup,
		RollNo:      strPtr("CS2021-042"),
		IsAvailable: true,
	}
}

func testRequest(status models.RequestStatus, bloodGroup models.BloodGroup) *models.BloodRequest {
	return &models.BloodRequest{
		ID:            uuid.New(),
		RequestorName: "Ravi Kumar",
		Email:         "ravi@example.com",
		Phone:         "+91 98765 43210",
		BloodGroup:    bloodGroup,
		Units:         2,
		DateTime:      time.Now().Add(48 * time.Hour),
		HospitalName:  "City Hospital",
		Location:      "Hyderabad",
		Urgency:       models.UrgencyHigh,
		Status:        status,
	}
}

func newTestRequestService(
	requestRepo *fakeRequestRepo,
	userRepo *fakeUserRepo,
	optInRepo *fakeOptInRepo,
	notifier *fakeNotifier,
) RequestService {
	return NewRequestService(fakeTransactor{}, requestRepo, userRepo, optInRepo, nil, notifier, nil, zerolog.Nop())
}

func TestRequestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("valid request is stored pending and admins are alerted", func(t *testing.T) {
		requestRepo := newFakeRequestRepo()
		notifier := &fakeNotifier{}
		svc := newTestRequestService(requestRepo, newFakeUserRepo(), newFakeOptInRepo(), notifier)

		created, err := svc.Create(ctx, &dto.CreateBloodRequest{
			RequestorName: "Ravi Kumar",
			Email:         "ravi@example.com",
			Phone:         "+91 98765 43210",
			BloodGroup:    "O+",
			Units:         2,
			DateTime:      time.Now().Add(48 * time.Hour),
			HospitalName:  "City Hospital",
			Location:      "Hyderabad",
			Urgency:       "high",
		})

		require.NoError(t, err)
		assert.Equal(t, models.RequestStatusPending, created.Status)
		assert.NotEqual(t, uuid.Nil, created.ID)
		assert.True(t, notifier.has("request_created"))
	})

	t.Run("invalid fields are rejected with every failure collected", func(t *testing.T) {
		svc := newTestRequestService(newFakeRequestRepo(), newFakeUserRepo(), newFakeOptInRepo(), &fakeNotifier{})

		_, err := svc.Create(ctx, &dto.CreateBloodRequest{
			RequestorName: "R",
			Email:         "not-an-email",
			Phone:         "123",
			BloodGroup:    "Z+",
			Units:         11,
			DateTime:      time.Now().Add(-time.Hour),
			HospitalName:  "City Hospital",
			Location:      "Hyderabad",
			Urgency:       "urgent",
		})

		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.ErrValidationFailed))
	})
}

func TestRequestService_Approve(t *testing.T) {
	ctx := context.Background()

	t.Run("pending request is approved and matching donors notified", func(t *testing.T) {
		request := testRequest(models.RequestStatusPending, models.BloodGroupOPositive)
		requestRepo := newFakeRequestRepo(request)
		userRepo := newFakeUserRepo(testStudent(models.BloodGroupOPositive))
		notifier := &fakeNotifier{}
		svc := newTestRequestService(requestRepo, userRepo, newFakeOptInRepo(), notifier)

		approved, err := svc.Approve(ctx, request.ID)

		require.NoError(t, err)
		assert.Equal(t, models.RequestStatusApproved, approved.Status)
		assert.True(t, notifier.has("request_approved"))
	})

	t.Run("already approved request cannot be approved again", func(t *testing.T) {
		request := testRequest(models.RequestStatusApproved, models.BloodGroupOPositive)
		svc := newTestRequestService(newFakeRequestRepo(request), newFakeUserRepo(), newFakeOptInRepo(), &fakeNotifier{})

		_, err := svc.Approve(ctx, request.ID)

		assert.ErrorIs(t, err, apperrors.ErrRequestNotPending)
	})

	t.Run("unknown request returns not found", func(t *testing.T) {
		svc := newTestRequestService(newFakeRequestRepo(), newFakeUserRepo(), newFakeOptInRepo(), &fakeNotifier{})

		_, err := svc.Approve(ctx, uuid.New())

		assert.ErrorIs(t, err, apperrors.ErrRequestNotFound)
	})
}

func TestRequestService_Reject(t *testing.T) {
	ctx := context.Background()

	t.Run("pending request is rejected with the given reason", func(t *testing.T) {
		request := testRequest(models.RequestStatusPending, models.BloodGroupAPositive)
		notifier := &fakeNotifier{}
		svc := newTestRequestService(newFakeRequestRepo(request), newFakeUserRepo(), newFakeOptInRepo(), notifier)

		rejected, err := svc.Reject(ctx, request.ID, "Duplicate request")

		require.NoError(t, err)
		assert.Equal(t, models.RequestStatusRejected, rejected.Status)
		require.NotNil(t, rejected.RejectionReason)
		assert.Equal(t, "Duplicate request", *rejected.RejectionReason)
		assert.True(t, notifier.has("request_rejected"))
	})

	t.Run("fulfilled request cannot be rejected", func(t *testing.T) {
		request := testRequest(models.RequestStatusFulfilled, models.BloodGroupAPositive)
		svc := newTestRequestService(newFakeRequestRepo(request), newFakeUserRepo(), newFakeOptInRepo(), &fakeNotifier{})

		_, err := svc.Reject(ctx, request.ID, "")

		assert.ErrorIs(t, err, apperrors.ErrRequestNotPending)
	})
}

func TestRequestService_OptIn(t *testing.T) {
	ctx := context.Background()

	t.Run("eligible student with matching group opts in", func(t *testing.T) {
		request := testRequest(models.RequestStatusApproved, models.BloodGroupBPositive)
		student := testStudent(models.BloodGroupBPositive)
		optInRepo := newFakeOptInRepo()
		notifier := &fakeNotifier{}
		svc := newTestRequestService(newFakeRequestRepo(request), newFakeUserRepo(student), optInRepo, notifier)

		err := svc.OptIn(ctx, request.ID, student.ID)

		require.NoError(t, err)
		exists, _ := optInRepo.Exists(ctx, student.ID, request.ID)
		assert.True(t, exists)
		assert.True(t, notifier.has("student_opted_in"))
	})

	t.Run("opt-in requires an approved request", func(t *testing.T) {
		request := testRequest(models.RequestStatusPending, models.BloodGroupBPositive)
		student := testStudent(models.BloodGroupBPositive)
		svc := newTestRequestService(newFakeRequestRepo(request), newFakeUserRepo(student), newFakeOptInRepo(), &fakeNotifier{})

		err := svc.OptIn(ctx, request.ID, student.ID)

		assert.ErrorIs(t, err, apperrors.ErrRequestNotApproved)
	})

	t.Run("blood group must match", func(t *testing.T) {
		request := testRequest(models.RequestStatusApproved, models.BloodGroupABNegative)
		student := testStudent(models.BloodGroupOPositive)
		svc := newTestRequestService(newFakeRequestRepo(request), newFakeUserRepo(student), newFakeOptInRepo(), &fakeNotifier{})

		err := svc.OptIn(ctx, request.ID, student.ID)

		assert.ErrorIs(t, err, apperrors.ErrBloodGroupMismatch)
	})

	t.Run("student inside the donation cooldown is refused", func(t *testing.T) {
		request := testRequest(models.RequestStatusApproved, models.BloodGroupOPositive)
		student := testStudent(models.BloodGroupOPositive)
		recent := time.Now().AddDate(0, -1, 0)
		student.LastDonationDate = &recent
		svc := newTestRequestService(newFakeRequestRepo(request), newFakeUserRepo(student), newFakeOptInRepo(), &fakeNotifier{})

		err := svc.OptIn(ctx, request.ID, student.ID)

		assert.ErrorIs(t, err, apperrors.ErrDonorNotEligible)
	})

	t.Run("second opt-in for the same request is refused", func(t *testing.T) {
		request := testRequest(models.RequestStatusApproved, models.BloodGroupOPositive)
		student := testStudent(models.BloodGroupOPositive)
		svc := newTestRequestService(newFakeRequestRepo(request), newFakeUserRepo(student), newFakeOptInRepo(), &fakeNotifier{})

		require.NoError(t, svc.OptIn(ctx, request.ID, student.ID))
		err := svc.OptIn(ctx, request.ID, student.ID)

		assert.ErrorIs(t, err, apperrors.ErrAlreadyOptedIn)
	})
}

func TestRequestService_AssignDonor(t *testing.T) {
	ctx := context.Background()

	t.Run("opted-in donor is assigned and notified", func(t *testing.T) {
		request := testRequest(models.RequestStatusApproved, models.BloodGroupOPositive)
		student := testStudent(models.BloodGroupOPositive)
		optInRepo := newFakeOptInRepo()
		optInRepo.add(request.ID, student.ID)
		notifier := &fakeNotifier{}
		svc := newTestRequestService(newFakeRequestRepo(request), newFakeUserRepo(student), optInRepo, notifier)

		assigned, err := svc.AssignDonor(ctx, request.ID, student.ID)

		require.NoError(t, err)
		require.NotNil(t, assigned.AssignedDonorID)
		assert.Equal(t, student.ID, *assigned.AssignedDonorID)
		assert.True(t, notifier.has("donor_assigned"))
	})

	t.Run("donor who never opted in cannot be assigned", func(t *testing.T) {
		request := testRequest(models.RequestStatusApproved, models.BloodGroupOPositive)
		student := testStudent(models.BloodGroupOPositive)
		svc := newTestRequestService(newFakeRequestRepo(request), newFakeUserRepo(student), newFakeOptInRepo(), &fakeNotifier{})

		_, err := svc.AssignDonor(ctx, request.ID, student.ID)

		assert.ErrorIs(t, err, apperrors.ErrDonorNotOptedIn)
	})

	t.Run("assignment requires matching blood groups", func(t *testing.T) {
		request := testRequest(models.RequestStatusApproved, models.BloodGroupANegative)
		student := testStudent(models.BloodGroupOPositive)
		optInRepo := newFakeOptInRepo()
		optInRepo.add(request.ID, student.ID)
		svc := newTestRequestService(newFakeRequestRepo(request), newFakeUserRepo(student), optInRepo, &fakeNotifier{})

		_, err := svc.AssignDonor(ctx, request.ID, student.ID)

		assert.ErrorIs(t, err, apperrors.ErrBloodGroupMismatch)
	})
}

func TestRequestService_ListMatchingForStudent(t *testing.T) {
	ctx := context.Background()

	t.Run("only approved upcoming requests with the student's group match", func(t *testing.T) {
		student := testStudent(models.BloodGroupOPositive)
		matching := testRequest(models.RequestStatusApproved, models.BloodGroupOPositive)
		wrongGroup := testRequest(models.RequestStatusApproved, models.BloodGroupABPositive)
		stillPending := testRequest(models.RequestStatusPending, models.BloodGroupOPositive)
		optInRepo := newFakeOptInRepo()
		optInRepo.add(matching.ID, student.ID)

		svc := newTestRequestService(
			newFakeRequestRepo(matching, wrongGroup, stillPending),
			newFakeUserRepo(student),
			optInRepo,
			&fakeNotifier{},
		)

		requests, optedIn, err := svc.ListMatchingForStudent(ctx, student.ID)

		require.NoError(t, err)
		require.Len(t, requests, 1)
		assert.Equal(t, matching.ID, requests[0].ID)
		require.Len(t, optedIn, 1)
		assert.Equal(t, matching.ID, optedIn[0])
	})

	t.Run("student still in cooldown sees no requests", func(t *testing.T) {
		student := testStudent(models.BloodGroupOPositive)
		lastDonation := time.Now().AddDate(0, -1, 0)
		student.LastDonationDate = &lastDonation
		student.IsAvailable = false
		matching := testRequest(models.RequestStatusApproved, models.BloodGroupOPositive)

		svc := newTestRequestService(
			newFakeRequestRepo(matching),
			newFakeUserRepo(student),
			newFakeOptInRepo(),
			&fakeNotifier{},
		)

		requests, optedIn, err := svc.ListMatchingForStudent(ctx, student.ID)

		require.NoError(t, err)
		assert.Empty(t, requests)
		assert.Empty(t, optedIn)
	})

	t.Run("elapsed cooldown restores availability and matches again", func(t *testing.T) {
		student := testStudent(models.BloodGroupOPositive)
		lastDonation := time.Now().AddDate(0, -4, 0)
		student.LastDonationDate = &lastDonation
		student.IsAvailable = false
		matching := testRequest(models.RequestStatusApproved, models.BloodGroupOPositive)
		userRepo := newFakeUserRepo(student)

		svc := newTestRequestService(
			newFakeRequestRepo(matching),
			userRepo,
			newFakeOptInRepo(),
			&fakeNotifier{},
		)

		requests, _, err := svc.ListMatchingForStudent(ctx, student.ID)

		require.NoError(t, err)
		require.Len(t, requests, 1)
		assert.Equal(t, matching.ID, requests[0].ID)

		refreshed, err := userRepo.GetByID(ctx, student.ID)
		require.NoError(t, err)
		assert.True(t, refreshed.IsAvailable)
	})
}

func TestRequestService_ListOptInsForStudent(t *testing.T) {
	ctx := context.Background()

	student := testStudent(models.BloodGroupOPositive)
	optedIn := testRequest(models.RequestStatusApproved, models.BloodGroupOPositive)
	other := testRequest(models.RequestStatusApproved, models.BloodGroupOPositive)
	optInRepo := newFakeOptInRepo()
	optInRepo.add(optedIn.ID, student.ID)
	optInRepo.add(other.ID, uuid.New())

	svc := newTestRequestService(newFakeRequestRepo(optedIn, other), newFakeUserRepo(student), optInRepo, &fakeNotifier{})

	optIns, err := svc.ListOptInsForStudent(ctx, student.ID)

	require.NoError(t, err)
	require.Len(t, optIns, 1)
	assert.Equal(t, optedIn.ID, optIns[0].RequestID)
}

func TestRequestService_Fulfill(t *testing.T) {
	ctx := context.Background()

	t.Run("request and donor update together and a certificate opens", func(t *testing.T) {
		donor := testStudent(models.BloodGroupOPositive)
		request := testRequest(models.RequestStatusApproved, models.BloodGroupOPositive)
		requestRepo := newFakeRequestRepo(request)
		userRepo := newFakeUserRepo(donor)
		optInRepo := newFakeOptInRepo()
		optInRepo.add(request.ID, donor.ID)
		certRepo := newFakeCertRepo()
		notifier := &fakeNotifier{}

		generator, err := pdfgen.NewGenerator(t.TempDir())
		require.NoError(t, err)
		certSvc := NewCertificateService(certRepo, userRepo, requestRepo, generator, notifier, zerolog.Nop())
		svc := NewRequestService(fakeTransactor{}, requestRepo, userRepo, optInRepo, certSvc, notifier, nil, zerolog.Nop())

		fulfilled, err := svc.Fulfill(ctx, request.ID, donor.ID)

		require.NoError(t, err)
		assert.Equal(t, models.RequestStatusFulfilled, fulfilled.Status)
		require.NotNil(t, fulfilled.AssignedDonorID)
		assert.Equal(t, donor.ID, *fulfilled.AssignedDonorID)

		updatedDonor, err := userRepo.GetByID(ctx, donor.ID)
		require.NoError(t, err)
		assert.False(t, updatedDonor.IsAvailable)
		require.NotNil(t, updatedDonor.LastDonationDate)

		exists, err := certRepo.ExistsForDonation(ctx, donor.ID, request.ID)
		require.NoError(t, err)
		assert.True(t, exists)

		assert.True(t, notifier.has("donation_completed"))
	})

	t.Run("fulfilling without an opt-in is refused", func(t *testing.T) {
		donor := testStudent(models.BloodGroupOPositive)
		request := testRequest(models.RequestStatusApproved, models.BloodGroupOPositive)
		svc := newTestRequestService(newFakeRequestRepo(request), newFakeUserRepo(donor), newFakeOptInRepo(), &fakeNotifier{})

		_, err := svc.Fulfill(ctx, request.ID, donor.ID)

		assert.ErrorIs(t, err, apperrors.ErrDonorNotOptedIn)
	})

	t.Run("only approved requests can be fulfilled", func(t *testing.T) {
		donor := testStudent(models.BloodGroupOPositive)
		request := testRequest(models.RequestStatusPending, models.BloodGroupOPositive)
		svc := newTestRequestService(newFakeRequestRepo(request), newFakeUserRepo(donor), newFakeOptInRepo(), &fakeNotifier{})

		_, err := svc.Fulfill(ctx, request.ID, donor.ID)

		assert.ErrorIs(t, err, apperrors.ErrRequestNotApproved)
	})
}

func TestRequestService_CompleteDonation(t *testing.T) {
	ctx := context.Background()

	t.Run("donation completes with the assigned donor and no photo", func(t *testing.T) {
		donor := testStudent(models.BloodGroupOPositive)
		request := testRequest(models.RequestStatusApproved, models.BloodGroupOPositive)
		request.AssignedDonorID = &donor.ID
		requestRepo := newFakeRequestRepo(request)
		userRepo := newFakeUserRepo(donor)
		certRepo := newFakeCertRepo()
		notifier := &fakeNotifier{}

		generator, err := pdfgen.NewGenerator(t.TempDir())
		require.NoError(t, err)
		certSvc := NewCertificateService(certRepo, userRepo, requestRepo, generator, notifier, zerolog.Nop())
		svc := NewRequestService(fakeTransactor{}, requestRepo, userRepo, newFakeOptInRepo(), certSvc, notifier, nil, zerolog.Nop())

		fulfilled, err := svc.CompleteDonation(ctx, request.ID, nil)

		require.NoError(t, err)
		assert.Equal(t, models.RequestStatusFulfilled, fulfilled.Status)
		assert.Nil(t, fulfilled.GeotagPhoto)

		updatedDonor, err := userRepo.GetByID(ctx, donor.ID)
		require.NoError(t, err)
		assert.False(t, updatedDonor.IsAvailable)

		exists, err := certRepo.ExistsForDonation(ctx, donor.ID, request.ID)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("completion needs an assigned donor", func(t *testing.T) {
		donor := testStudent(models.BloodGroupOPositive)
		request := testRequest(models.RequestStatusApproved, models.BloodGroupOPositive)
		svc := newTestRequestService(newFakeRequestRepo(request), newFakeUserRepo(donor), newFakeOptInRepo(), &fakeNotifier{})

		_, err := svc.CompleteDonation(ctx, request.ID, nil)

		assert.ErrorIs(t, err, apperrors.ErrNoDonorAssigned)
	})

	t.Run("completion needs an approved request", func(t *testing.T) {
		donor := testStudent(models.BloodGroupOPositive)
		request := testRequest(models.RequestStatusPending, models.BloodGroupOPositive)
		request.AssignedDonorID = &donor.ID
		svc := newTestRequestService(newFakeRequestRepo(request), newFakeUserRepo(donor), newFakeOptInRepo(), &fakeNotifier{})

		_, err := svc.CompleteDonation(ctx, request.ID, nil)

		assert.ErrorIs(t, err, apperrors.ErrRequestNotApproved)
	})
}
