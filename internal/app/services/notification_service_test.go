package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mravi/bloodconnect/internal/app/models"
	"github.com/mravi/bloodconnect/internal/pkg/websocket"
)

func newTestNotificationService(
	notificationRepo *fakeNotificationRepo,
	userRepo *fakeUserRepo,
	broadcaster *fakeBroadcaster,
	emails *fakeEmailService,
) NotificationService {
	return NewNotificationService(notificationRepo, userRepo, broadcaster, emails, zerolog.Nop())
}

func TestNotificationService_NotifyRequestApproved(t *testing.T) {
	ctx := context.Background()

	donorOne := testStudent(models.BloodGroupOPositive)
	donorTwo := testStudent(models.BloodGroupOPositive)
	donorTwo.Email = "kiran@example.edu"
	request := testRequest(models.RequestStatusApproved, models.BloodGroupOPositive)

	notificationRepo := newFakeNotificationRepo()
	broadcaster := &fakeBroadcaster{}
	emails := &fakeEmailService{}
	svc := newTestNotificationService(notificationRepo, newFakeUserRepo(), broadcaster, emails)

	svc.NotifyRequestApproved(ctx, request, []models.User{*donorOne, *donorTwo})

	t.Run("every eligible donor gets an in-app row", func(t *testing.T) {
		for _, donor := range []*models.User{donorOne, donorTwo} {
			rows, _, err := notificationRepo.ListByUser(ctx, donor.ID, false, 1, 10)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, models.NotificationRequestApproved, rows[0].Type)
		}
	})

	t.Run("pushes go to each donor's own room", func(t *testing.T) {
		rooms := broadcaster.rooms()
		assert.Contains(t, rooms, websocket.UserRoom(donorOne.ID))
		assert.Contains(t, rooms, websocket.UserRoom(donorTwo.ID))
		assert.NotContains(t, rooms, websocket.RoomStudents)
	})

	t.Run("donors and the requestor are mailed", func(t *testing.T) {
		assert.True(t, emails.sent("donors_needed", donorOne.Email))
		assert.True(t, emails.sent("donors_needed", donorTwo.Email))
		assert.True(t, emails.sent("request_approved", request.Email))
	})
}

func TestNotificationService_NotifyRequestApprovedWithoutDonors(t *testing.T) {
	ctx := context.Background()
	request := testRequest(models.RequestStatusApproved, models.BloodGroupABNegative)

	broadcaster := &fakeBroadcaster{}
	emails := &fakeEmailService{}
	svc := newTestNotificationService(newFakeNotificationRepo(), newFakeUserRepo(), broadcaster, emails)

	svc.NotifyRequestApproved(ctx, request, nil)

	assert.Empty(t, broadcaster.rooms())
	assert.False(t, emails.sentAny("donors_needed"))
	assert.True(t, emails.sent("request_approved", request.Email))
}

func TestNotificationService_NotifyStudentOptedIn(t *testing.T) {
	ctx := context.Background()

	admin := &models.User{ID: uuid.New(), Name: "Admin", Email: "admin@example.edu", Role: models.RoleAdmin}
	student := testStudent(models.BloodGroupOPositive)
	request := testRequest(models.RequestStatusApproved, models.BloodGroupOPositive)

	notificationRepo := newFakeNotificationRepo()
	broadcaster := &fakeBroadcaster{}
	svc := newTestNotificationService(notificationRepo, newFakeUserRepo(admin), broadcaster, &fakeEmailService{})

	svc.NotifyStudentOptedIn(ctx, request, student)

	rows, _, err := notificationRepo.ListByUser(ctx, admin.ID, true, 1, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.NotificationStudentOptedIn, rows[0].Type)
	assert.Contains(t, broadcaster.rooms(), websocket.RoomAdmins)
}
