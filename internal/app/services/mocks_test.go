package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mravi/bloodconnect/internal/app/models"
	"github.com/mravi/bloodconnect/internal/app/models/dto"
	"github.com/mravi/bloodconnect/internal/app/repositories"
	"github.com/mravi/bloodconnect/internal/db"
	"github.com/mravi/bloodconnect/internal/pkg/websocket"
)

// fakeTransactor runs the function directly; the fake repositories
// ignore the tx argument.
type fakeTransactor struct{}

func (fakeTransactor) WithTransaction(ctx context.Context, fn db.TransactionFn) error {
	return fn(ctx, nil)
}

// ==========================
// Fake repositories
// ==========================

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[uuid.UUID]*models.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return repositories.ErrEmailAlreadyExists
		}
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.Password = passwordHash
	return nil
}

func (r *fakeUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.LastLogin = &at
	}
	return nil
}

func (r *fakeUserRepo) SetAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.IsAvailable = available
	return nil
}

func (r *fakeUserRepo) MarkDonatedTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, donatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.LastDonationDate = &donatedAt
	u.IsAvailable = false
	return nil
}

func (r *fakeUserRepo) ListStudents(ctx context.Context, filters map[string]interface{}, page, size int) ([]models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var students []models.User
	for _, u := range r.users {
		if u.Role == models.RoleStudent {
			students = append(students, *u)
		}
	}
	return students, int64(len(students)), nil
}

func (r *fakeUserRepo) ListAdmins(ctx context.Context) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var admins []models.User
	for _, u := range r.users {
		if u.Role == models.RoleAdmin {
			admins = append(admins, *u)
		}
	}
	return admins, nil
}

func (r *fakeUserRepo) EligibleDonors(ctx context.Context, bloodGroup models.BloodGroup) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var donors []models.User
	for _, u := range r.users {
		if u.Role == models.RoleStudent && u.BloodGroup == bloodGroup && u.IsAvailable {
			donors = append(donors, *u)
		}
	}
	return donors, nil
}

func (r *fakeUserRepo) CountStudents(ctx context.Context) (int64, error) {
	students, _, _ := r.ListStudents(ctx, nil, 1, 100)
	return int64(len(students)), nil
}

func (r *fakeUserRepo) CountAvailableStudents(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, u := range r.users {
		if u.Role == models.RoleStudent && u.IsAvailable {
			count++
		}
	}
	return count, nil
}

func (r *fakeUserRepo) CountAvailableByBloodGroup(ctx context.Context, bloodGroup models.BloodGroup) (int64, error) {
	donors, _ := r.EligibleDonors(ctx, bloodGroup)
	return int64(len(donors)), nil
}

type fakeRequestRepo struct {
	mu       sync.Mutex
	requests map[uuid.UUID]*models.BloodRequest
}

func newFakeRequestRepo(requests ...*models.BloodRequest) *fakeRequestRepo {
	r := &fakeRequestRepo{requests: map[uuid.UUID]*models.BloodRequest{}}
	for _, req := range requests {
		r.requests[req.ID] = req
	}
	return r
}

func (r *fakeRequestRepo) Create(ctx context.Context, request *models.BloodRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if request.ID == uuid.Nil {
		request.ID = uuid.New()
	}
	request.CreatedAt = time.Now()
	request.UpdatedAt = request.CreatedAt
	r.requests[request.ID] = request
	return nil
}

func (r *fakeRequestRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.BloodRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *req
	return &copied, nil
}

func (r *fakeRequestRepo) List(ctx context.Context, filters map[string]interface{}, page, size int) ([]models.BloodRequest, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []models.BloodRequest
	for _, req := range r.requests {
		all = append(all, *req)
	}
	return all, int64(len(all)), nil
}

func (r *fakeRequestRepo) ListMatching(ctx context.Context, bloodGroup models.BloodGroup, after time.Time) ([]models.BloodRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matching []models.BloodRequest
	for _, req := range r.requests {
		if req.Status == models.RequestStatusApproved && req.BloodGroup == bloodGroup && req.DateTime.After(after) {
			matching = append(matching, *req)
		}
	}
	return matching, nil
}

func (r *fakeRequestRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.requests[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.requests, id)
	return nil
}

func (r *fakeRequestRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.RequestStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return repositories.ErrNotFound
	}
	req.Status = status
	return nil
}

func (r *fakeRequestRepo) Reject(ctx context.Context, id uuid.UUID, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return repositories.ErrNotFound
	}
	req.Status = models.RequestStatusRejected
	if reason != "" {
		req.RejectionReason = &reason
	}
	return nil
}

func (r *fakeRequestRepo) AssignDonor(ctx context.Context, id, donorID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return repositories.ErrNotFound
	}
	req.AssignedDonorID = &donorID
	return nil
}

func (r *fakeRequestRepo) FulfillTx(ctx context.Context, tx pgx.Tx, id, donorID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return repositories.ErrNotFound
	}
	req.Status = models.RequestStatusFulfilled
	req.AssignedDonorID = &donorID
	return nil
}

func (r *fakeRequestRepo) SetGeotagPhotoTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, photoPath string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return repositories.ErrNotFound
	}
	req.GeotagPhoto = &photoPath
	return nil
}

func (r *fakeRequestRepo) CountByStatus(ctx context.Context) (map[models.RequestStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[models.RequestStatus]int64{}
	for _, req := range r.requests {
		counts[req.Status]++
	}
	return counts, nil
}

func (r *fakeRequestRepo) BloodGroupStats(ctx context.Context) ([]dto.BloodGroupStats, error) {
	return nil, nil
}

type fakeOptInRepo struct {
	mu     sync.Mutex
	optIns map[uuid.UUID]map[uuid.UUID]time.Time // requestID -> studentID -> optedInAt
}

func newFakeOptInRepo() *fakeOptInRepo {
	return &fakeOptInRepo{optIns: map[uuid.UUID]map[uuid.UUID]time.Time{}}
}

func (r *fakeOptInRepo) add(requestID, studentID uuid.UUID) {
	if r.optIns[requestID] == nil {
		r.optIns[requestID] = map[uuid.UUID]time.Time{}
	}
	r.optIns[requestID][studentID] = time.Now()
}

func (r *fakeOptInRepo) Create(ctx context.Context, optIn *models.StudentOptIn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.optIns[optIn.RequestID][optIn.StudentID]; ok {
		return repositories.ErrOptInExists
	}
	r.add(optIn.RequestID, optIn.StudentID)
	return nil
}

func (r *fakeOptInRepo) Exists(ctx context.Context, studentID, requestID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.optIns[requestID][studentID]
	return ok, nil
}

func (r *fakeOptInRepo) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]dto.OptedInStudent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var students []dto.OptedInStudent
	for studentID, at := range r.optIns[requestID] {
		students = append(students, dto.OptedInStudent{ID: studentID, OptedInAt: at})
	}
	return students, nil
}

func (r *fakeOptInRepo) ListRequestIDsByStudent(ctx context.Context, studentID uuid.UUID) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []uuid.UUID
	for requestID, students := range r.optIns {
		if _, ok := students[studentID]; ok {
			ids = append(ids, requestID)
		}
	}
	return ids, nil
}

func (r *fakeOptInRepo) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]dto.StudentOptInDetail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var optIns []dto.StudentOptInDetail
	for requestID, students := range r.optIns {
		if at, ok := students[studentID]; ok {
			optIns = append(optIns, dto.StudentOptInDetail{
				ID:        uuid.New(),
				RequestID: requestID,
				OptedInAt: at,
				Request:   models.BloodRequest{ID: requestID},
			})
		}
	}
	return optIns, nil
}

func (r *fakeOptInRepo) CountSince(ctx context.Context, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, students := range r.optIns {
		for _, at := range students {
			if !at.Before(since) {
				count++
			}
		}
	}
	return count, nil
}

type fakeCertRepo struct {
	mu    sync.Mutex
	certs map[uuid.UUID]*models.Certificate
}

func newFakeCertRepo(certs ...*models.Certificate) *fakeCertRepo {
	r := &fakeCertRepo{certs: map[uuid.UUID]*models.Certificate{}}
	for _, c := range certs {
		r.certs[c.ID] = c
	}
	return r
}

func (r *fakeCertRepo) Create(ctx context.Context, cert *models.Certificate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cert.ID == uuid.Nil {
		cert.ID = uuid.New()
	}
	for _, existing := range r.certs {
		if existing.DonorID == cert.DonorID && existing.RequestID == cert.RequestID {
			return repositories.ErrCertificateExists
		}
	}
	cert.CreatedAt = time.Now()
	r.certs[cert.ID] = cert
	return nil
}

func (r *fakeCertRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Certificate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.certs[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *fakeCertRepo) ExistsForDonation(ctx context.Context, donorID, requestID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.certs {
		if c.DonorID == donorID && c.RequestID == requestID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeCertRepo) CountByYear(ctx context.Context, year int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, c := range r.certs {
		if c.CreatedAt.Year() == year {
			count++
		}
	}
	return count, nil
}

func (r *fakeCertRepo) ListByDonor(ctx context.Context, donorID uuid.UUID) ([]models.Certificate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var certs []models.Certificate
	for _, c := range r.certs {
		if c.DonorID == donorID {
			certs = append(certs, *c)
		}
	}
	return certs, nil
}

func (r *fakeCertRepo) ListByStatus(ctx context.Context, status models.CertificateStatus, page, size int) ([]models.Certificate, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var certs []models.Certificate
	for _, c := range r.certs {
		if c.Status == status {
			certs = append(certs, *c)
		}
	}
	return certs, int64(len(certs)), nil
}

func (r *fakeCertRepo) ListAll(ctx context.Context, page, size int) ([]models.Certificate, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var certs []models.Certificate
	for _, c := range r.certs {
		certs = append(certs, *c)
	}
	return certs, int64(len(certs)), nil
}

func (r *fakeCertRepo) Approve(ctx context.Context, id uuid.UUID, approvedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.certs[id]
	if !ok {
		return repositories.ErrNotFound
	}
	c.Status = models.CertificateStatusApproved
	c.AdminApprovedAt = &approvedAt
	return nil
}

func (r *fakeCertRepo) SetGenerated(ctx context.Context, id uuid.UUID, certificateURL string, generatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.certs[id]
	if !ok {
		return repositories.ErrNotFound
	}
	c.Status = models.CertificateStatusGenerated
	c.CertificateURL = &certificateURL
	c.GeneratedAt = &generatedAt
	return nil
}

func (r *fakeCertRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.certs[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.certs, id)
	return nil
}

type fakeNotificationRepo struct {
	mu   sync.Mutex
	rows []*models.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{}
}

func (r *fakeNotificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}
	notification.CreatedAt = time.Now()
	r.rows = append(r.rows, notification)
	return nil
}

func (r *fakeNotificationRepo) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, page, size int) ([]models.Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Notification
	for _, n := range r.rows {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, *n)
	}
	return out, int64(len(out)), nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.rows {
		if n.ID == id && n.UserID == userID {
			n.IsRead = true
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (r *fakeNotificationRepo) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.rows {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.rows {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

type fakeLoginHistoryRepo struct {
	mu      sync.Mutex
	entries []*models.LoginHistory
}

func newFakeLoginHistoryRepo() *fakeLoginHistoryRepo {
	return &fakeLoginHistoryRepo{}
}

func (r *fakeLoginHistoryRepo) Create(ctx context.Context, entry *models.LoginHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeLoginHistoryRepo) DeactivateAllForUser(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.UserID == userID {
			e.IsActive = false
		}
	}
	return nil
}

func (r *fakeLoginHistoryRepo) CloseActive(ctx context.Context, userID uuid.UUID, logoutTime time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.UserID == userID && e.IsActive {
			e.IsActive = false
			e.LogoutTime = &logoutTime
		}
	}
	return nil
}

func (r *fakeLoginHistoryRepo) ListByUser(ctx context.Context, userID uuid.UUID, page, size int) ([]models.LoginHistory, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.LoginHistory
	for _, e := range r.entries {
		if e.UserID == userID {
			out = append(out, *e)
		}
	}
	return out, int64(len(out)), nil
}

// ==========================
// Fake fan-out targets
// ==========================

// fakeBroadcaster records WebSocket messages instead of delivering them
type fakeBroadcaster struct {
	mu       sync.Mutex
	messages []*websocket.Message
}

func (b *fakeBroadcaster) BroadcastToRoom(message *websocket.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, message)
}

func (b *fakeBroadcaster) rooms() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var rooms []string
	for _, m := range b.messages {
		rooms = append(rooms, m.Room)
	}
	return rooms
}

// fakeEmailService records every send instead of talking to SMTP
type fakeEmailService struct {
	mu    sync.Mutex
	sends []string // "<kind>:<recipient>"
}

func (f *fakeEmailService) record(kind, recipient string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, kind+":"+recipient)
	return nil
}

func (f *fakeEmailService) sent(kind, recipient string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sends {
		if s == kind+":"+recipient {
			return true
		}
	}
	return false
}

func (f *fakeEmailService) sentAny(kind string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sends {
		if strings.HasPrefix(s, kind+":") {
			return true
		}
	}
	return false
}

func (f *fakeEmailService) SendNewRequestAlert(toEmail, toName string, req *models.BloodRequest) error {
	return f.record("new_request_alert", toEmail)
}

func (f *fakeEmailService) SendRequestConfirmation(req *models.BloodRequest) error {
	return f.record("request_confirmation", req.Email)
}

func (f *fakeEmailService) SendRequestApproved(req *models.BloodRequest) error {
	return f.record("request_approved", req.Email)
}

func (f *fakeEmailService) SendRequestRejected(req *models.BloodRequest, reason string) error {
	return f.record("request_rejected", req.Email)
}

func (f *fakeEmailService) SendDonorsNeeded(toEmails []string, req *models.BloodRequest) error {
	for _, toEmail := range toEmails {
		f.record("donors_needed", toEmail)
	}
	return nil
}

func (f *fakeEmailService) SendDonorAssigned(toEmail, donorName string, req *models.BloodRequest) error {
	return f.record("donor_assigned", toEmail)
}

func (f *fakeEmailService) SendDonorSelectedToRequestor(req *models.BloodRequest, donorName string) error {
	return f.record("donor_selected", req.Email)
}

func (f *fakeEmailService) SendDonationCompleted(toEmail, donorName string, req *models.BloodRequest) error {
	return f.record("donation_completed", toEmail)
}

func (f *fakeEmailService) SendStudentWelcome(toEmail, toName, tempPassword string) error {
	return f.record("student_welcome", toEmail)
}

func (f *fakeEmailService) SendCertificateApproved(toEmail, toName, certificateNumber string) error {
	return f.record("certificate_approved", toEmail)
}

func (f *fakeEmailService) SendCertificateReady(toEmail, toName, certificateNumber string) error {
	return f.record("certificate_ready", toEmail)
}

// ==========================
// Fake notifier
// ==========================

// fakeNotifier records which notification events fired
type fakeNotifier struct {
	mu     sync.Mutex
	Events []string
}

func (f *fakeNotifier) record(event string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Events = append(f.Events, event)
}

func (f *fakeNotifier) has(event string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.Events {
		if e == event {
			return true
		}
	}
	return false
}

func (f *fakeNotifier) NotifyRequestCreated(ctx context.Context, req *models.BloodRequest) {
	f.record("request_created")
}

func (f *fakeNotifier) NotifyRequestApproved(ctx context.Context, req *models.BloodRequest, donors []models.User) {
	f.record("request_approved")
}

func (f *fakeNotifier) NotifyRequestRejected(ctx context.Context, req *models.BloodRequest, reason string) {
	f.record("request_rejected")
}

func (f *fakeNotifier) NotifyStudentOptedIn(ctx context.Context, req *models.BloodRequest, student *models.User) {
	f.record("student_opted_in")
}

func (f *fakeNotifier) NotifyDonorAssigned(ctx context.Context, req *models.BloodRequest, donor *models.User) {
	f.record("donor_assigned")
}

func (f *fakeNotifier) NotifyDonationCompleted(ctx context.Context, req *models.BloodRequest, donor *models.User) {
	f.record("donation_completed")
}

func (f *fakeNotifier) NotifyCertificateApproved(ctx context.Context, cert *models.Certificate, donorEmail string) {
	f.record("certificate_approved")
}

func (f *fakeNotifier) NotifyCertificateGenerated(ctx context.Context, cert *models.Certificate, donorEmail string) {
	f.record("certificate_generated")
}

func (f *fakeNotifier) ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, page, size int) (*dto.PagedResponse, error) {
	return &dto.PagedResponse{}, nil
}

func (f *fakeNotifier) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	return nil
}

func (f *fakeNotifier) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return nil
}

func (f *fakeNotifier) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}
