package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mravi/bloodconnect/internal/app/models"
	"github.com/mravi/bloodconnect/internal/app/models/dto"
	"github.com/mravi/bloodconnect/internal/app/repositories"
	"github.com/mravi/bloodconnect/internal/pkg/apperrors"
	"github.com/mravi/bloodconnect/internal/pkg/email"
	"github.com/mravi/bloodconnect/internal/pkg/helpers"
	"github.com/mravi/bloodconnect/internal/pkg/websocket"
)

// NotificationService fans lifecycle events out to in-app notification
// rows, WebSocket rooms and email. Delivery is best effort: failures are
// logged and dropped so they never fail the operation that raised the
// event.
type NotificationService interface {
	// Event fan-out, called by the request and certificate services
	NotifyRequestCreated(ctx context.Context, req *models.BloodRequest)
	NotifyRequestApproved(ctx context.Context, req *models.BloodRequest, eligibleDonors []models.User)
	NotifyRequestRejected(ctx context.Context, req *models.BloodRequest, reason string)
	NotifyStudentOptedIn(ctx context.Context, req *models.BloodRequest, student *models.User)
	NotifyDonorAssigned(ctx context.Context, req *models.BloodRequest, donor *models.User)
	NotifyDonationCompleted(ctx context.Context, req *models.BloodRequest, donor *models.User)
	NotifyCertificateApproved(ctx context.Context, cert *models.Certificate, donorEmail string)
	NotifyCertificateGenerated(ctx context.Context, cert *models.Certificate, donorEmail string)

	// Inbox operations for the notifications API
	ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, page, size int) (*dto.PagedResponse, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

// Broadcaster pushes messages to WebSocket rooms
type Broadcaster interface {
	BroadcastToRoom(message *websocket.Message)
}

// notificationServiceImpl implements NotificationService
type notificationServiceImpl struct {
	notificationRepo repositories.INotificationRepository
	userRepo         repositories.IUserRepository
	hub              Broadcaster
	emailService     email.EmailService
	logger           zerolog.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(
	notificationRepo repositories.INotificationRepository,
	userRepo repositories.IUserRepository,
	hub Broadcaster,
	emailService email.EmailService,
	logger zerolog.Logger,
) NotificationService {
	return &notificationServiceImpl{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		hub:              hub,
		emailService:     emailService,
		logger:           logger,
	}
}

// saveRow persists an in-app notification row, logging failures
func (s *notificationServiceImpl) saveRow(ctx context.Context, userID uuid.UUID, nType models.NotificationType, title, message string, metadata map[string]interface{}) {
	n := &models.Notification{
		UserID:   userID,
		Type:     nType,
		Title:    title,
		Message:  message,
		Metadata: metadata,
	}
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		s.logger.Error().
			Err(err).
			Str("userID", userID.String()).
			Str("type", string(nType)).
			Msg("Failed to persist notification")
	}
}

// push sends a WebSocket message to a room
func (s *notificationServiceImpl) push(room string, nType models.NotificationType, title, message string, payload map[string]interface{}) {
	s.hub.BroadcastToRoom(&websocket.Message{
		Type:    string(nType),
		Room:    room,
		Title:   title,
		Content: message,
		Payload: payload,
	})
}

// sendEmail runs an email send, logging failures
func (s *notificationServiceImpl) sendEmail(what string, fn func() error) {
	if err := fn(); err != nil {
		s.logger.Error().Err(err).Str("email", what).Msg("Failed to send email")
	}
}

func requestMetadata(req *models.BloodRequest) map[string]interface{} {
	return map[string]interface{}{
		"requestId":  req.ID.String(),
		"bloodGroup": string(req.BloodGroup),
		"urgency":    string(req.Urgency),
	}
}

// NotifyRequestCreated alerts all admins about a new pending request and
// confirms receipt to the requestor by email.
func (s *notificationServiceImpl) NotifyRequestCreated(ctx context.Context, req *models.BloodRequest) {
	title := "New blood request"
	message := fmt.Sprintf("%s requested %d unit(s) of %s at %s", req.RequestorName, req.Units, req.BloodGroup, req.HospitalName)
	meta := requestMetadata(req)

	admins, err := s.userRepo.ListAdmins(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list admins for notification")
	}
	for i := range admins {
		s.saveRow(ctx, admins[i].ID, models.NotificationRequestCreated, title, message, meta)
		s.sendEmail("new request alert", func() error {
			return s.emailService.SendNewRequestAlert(admins[i].Email, admins[i].Name, req)
		})
	}

	s.push(websocket.RoomAdmins, models.NotificationRequestCreated, title, message, meta)

	s.sendEmail("request confirmation", func() error {
		return s.emailService.SendRequestConfirmation(req)
	})
}

// NotifyRequestApproved alerts each matching eligible donor and the
// requestor. Donors get an in-app row and a push to their own room so
// students with a different blood group never see the event.
func (s *notificationServiceImpl) NotifyRequestApproved(ctx context.Context, req *models.BloodRequest, eligibleDonors []models.User) {
	title := "Blood donors needed"
	message := fmt.Sprintf("%d unit(s) of %s needed at %s (%s)", req.Units, req.BloodGroup, req.HospitalName, req.Urgency)
	meta := requestMetadata(req)

	donorEmails := make([]string, 0, len(eligibleDonors))
	for i := range eligibleDonors {
		s.saveRow(ctx, eligibleDonors[i].ID, models.NotificationRequestApproved, title, message, meta)
		s.push(websocket.UserRoom(eligibleDonors[i].ID), models.NotificationRequestApproved, title, message, meta)
		donorEmails = append(donorEmails, eligibleDonors[i].Email)
	}
	if len(donorEmails) > 0 {
		s.sendEmail("donors needed", func() error {
			return s.emailService.SendDonorsNeeded(donorEmails, req)
		})
	}

	s.sendEmail("request approved", func() error {
		return s.emailService.SendRequestApproved(req)
	})
}

// NotifyRequestRejected mails the rejection to the requestor. Requestors
// have no account, so there is no in-app row for this event.
func (s *notificationServiceImpl) NotifyRequestRejected(ctx context.Context, req *models.BloodRequest, reason string) {
	s.sendEmail("request rejected", func() error {
		return s.emailService.SendRequestRejected(req, reason)
	})
}

// NotifyStudentOptedIn alerts admins that a student volunteered
func (s *notificationServiceImpl) NotifyStudentOptedIn(ctx context.Context, req *models.BloodRequest, student *models.User) {
	title := "Student opted in"
	message := fmt.Sprintf("%s opted in to donate for the %s request at %s", student.Name, req.BloodGroup, req.HospitalName)
	meta := requestMetadata(req)
	meta["studentId"] = student.ID.String()

	admins, err := s.userRepo.ListAdmins(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list admins for notification")
	}
	for i := range admins {
		s.saveRow(ctx, admins[i].ID, models.NotificationStudentOptedIn, title, message, meta)
	}
	s.push(websocket.RoomAdmins, models.NotificationStudentOptedIn, title, message, meta)
}

// NotifyDonorAssigned alerts the selected donor and the requestor
func (s *notificationServiceImpl) NotifyDonorAssigned(ctx context.Context, req *models.BloodRequest, donor *models.User) {
	title := "You have been selected as a donor"
	message := fmt.Sprintf("Please donate %d unit(s) of %s at %s on %s", req.Units, req.BloodGroup, req.HospitalName, req.DateTime.Format("Jan 2, 2006 15:04"))
	meta := requestMetadata(req)

	s.saveRow(ctx, donor.ID, models.NotificationDonorAssigned, title, message, meta)
	s.push(websocket.UserRoom(donor.ID), models.NotificationDonorAssigned, title, message, meta)

	s.sendEmail("donor assigned", func() error {
		return s.emailService.SendDonorAssigned(donor.Email, donor.Name, req)
	})
	s.sendEmail("donor selected", func() error {
		return s.emailService.SendDonorSelectedToRequestor(req, donor.Name)
	})
}

// NotifyDonationCompleted thanks the donor and updates the admin room
func (s *notificationServiceImpl) NotifyDonationCompleted(ctx context.Context, req *models.BloodRequest, donor *models.User) {
	title := "Donation completed"
	message := fmt.Sprintf("Thank you for donating at %s. Your certificate will be issued soon.", req.HospitalName)
	meta := requestMetadata(req)

	s.saveRow(ctx, donor.ID, models.NotificationDonationCompleted, title, message, meta)
	s.push(websocket.UserRoom(donor.ID), models.NotificationDonationCompleted, title, message, meta)
	s.push(websocket.RoomAdmins, models.NotificationDonationCompleted, title,
		fmt.Sprintf("%s completed the donation for the %s request at %s", donor.Name, req.BloodGroup, req.HospitalName), meta)

	s.sendEmail("donation completed", func() error {
		return s.emailService.SendDonationCompleted(donor.Email, donor.Name, req)
	})
}

// NotifyCertificateApproved alerts the donor their certificate was approved
func (s *notificationServiceImpl) NotifyCertificateApproved(ctx context.Context, cert *models.Certificate, donorEmail string) {
	title := "Certificate approved"
	message := fmt.Sprintf("Your donation certificate %s has been approved", cert.CertificateNumber)
	meta := map[string]interface{}{"certificateId": cert.ID.String(), "certificateNumber": cert.CertificateNumber}

	s.saveRow(ctx, cert.DonorID, models.NotificationDonationCompleted, title, message, meta)
	s.push(websocket.UserRoom(cert.DonorID), models.NotificationDonationCompleted, title, message, meta)

	s.sendEmail("certificate approved", func() error {
		return s.emailService.SendCertificateApproved(donorEmail, cert.DonorName, cert.CertificateNumber)
	})
}

// NotifyCertificateGenerated alerts the donor their certificate is ready
func (s *notificationServiceImpl) NotifyCertificateGenerated(ctx context.Context, cert *models.Certificate, donorEmail string) {
	title := "Certificate ready"
	message := fmt.Sprintf("Your donation certificate %s is ready for download", cert.CertificateNumber)
	meta := map[string]interface{}{"certificateId": cert.ID.String(), "certificateNumber": cert.CertificateNumber}

	s.saveRow(ctx, cert.DonorID, models.NotificationDonationCompleted, title, message, meta)
	s.push(websocket.UserRoom(cert.DonorID), models.NotificationDonationCompleted, title, message, meta)

	s.sendEmail("certificate ready", func() error {
		return s.emailService.SendCertificateReady(donorEmail, cert.DonorName, cert.CertificateNumber)
	})
}

// ListForUser returns the user's notifications, newest first
func (s *notificationServiceImpl) ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, page, size int) (*dto.PagedResponse, error) {
	notifications, total, err := s.notificationRepo.ListByUser(ctx, userID, unreadOnly, page, size)
	if err != nil {
		return nil, fmt.Errorf("error listing notifications: %w", err)
	}

	return &dto.PagedResponse{
		Items:      notifications,
		Pagination: helpers.NewPaginationInfo(total, page, size),
	}, nil
}

// MarkRead marks one of the user's notifications as read
func (s *notificationServiceImpl) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	if err := s.notificationRepo.MarkRead(ctx, id, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.ErrResourceNotFound
		}
		return fmt.Errorf("error marking notification read: %w", err)
	}
	return nil
}

// MarkAllRead marks every unread notification of the user as read
func (s *notificationServiceImpl) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	if err := s.notificationRepo.MarkAllRead(ctx, userID); err != nil {
		return fmt.Errorf("error marking notifications read: %w", err)
	}
	return nil
}

// UnreadCount returns the number of unread notifications for the user
func (s *notificationServiceImpl) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.notificationRepo.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("error counting unread notifications: %w", err)
	}
	return count, nil
}
