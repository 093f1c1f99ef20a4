package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mravi/bloodconnect/internal/app/models"
	"github.com/mravi/bloodconnect/internal/app/models/dto"
	"github.com/mravi/bloodconnect/internal/pkg/dberrors"
	"github.com/mravi/bloodconnect/internal/pkg/logger"
)

// Opt-in error types
var (
	ErrOptInExists = errors.New("student already opted in to this request")
)

// IOptInRepository defines the interface for opt-in database operations
type IOptInRepository interface {
	Create(ctx context.Context, optIn *models.StudentOptIn) error
	Exists(ctx context.Context, studentID, requestID uuid.UUID) (bool, error)
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]dto.OptedInStudent, error)
	ListRequestIDsByStudent(ctx context.Context, studentID uuid.UUID) ([]uuid.UUID, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]dto.StudentOptInDetail, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
}

// OptInRepository handles student opt-in database operations
type OptInRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewOptInRepository creates a new OptInRepository
func NewOptInRepository(db *pgxpool.Pool) *OptInRepository {
	return &OptInRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts an opt-in row. The (student_id, request_id) unique
// constraint enforces the single-opt-in rule at the database level.
func (r *OptInRepository) Create(ctx context.Context, optIn *models.StudentOptIn) error {
	if optIn.ID == uuid.Nil {
		optIn.ID = uuid.New()
	}
	optIn.CreatedAt = time.Now()

	sql, args, err := r.sb.Insert("student_opt_ins").
		Columns("id", "student_id", "request_id", "created_at").
		Values(optIn.ID, optIn.StudentID, optIn.RequestID, optIn.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create opt-in query: %w", err)
	}

	_, err = r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsDuplicateKeyError(err) {
			return ErrOptInExists
		}
		logger.Error().Err(err).Msg("Error executing create opt-in query")
		return fmt.Errorf("error creating opt-in: %w", err)
	}

	return nil
}

// Exists checks whether the student has already opted in to the request
func (r *OptInRepository) Exists(ctx context.Context, studentID, requestID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM student_opt_ins WHERE student_id = $1 AND request_id = $2)`,
		studentID, requestID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking opt-in existence: %w", err)
	}
	return exists, nil
}

// ListByRequest retrieves the students opted in to a request, joined with
// their profile data.
func (r *OptInRepository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]dto.OptedInStudent, error) {
	query := `
		SELECT u.id, u.name, u.email, COALESCE(u.blood_group, ''),
		       COALESCE(u.phone, ''), COALESCE(u.roll_no, ''),
		       u.is_available, o.created_at
		FROM student_opt_ins o
		JOIN users u ON u.id = o.student_id
		WHERE o.request_id = $1
		ORDER BY o.created_at ASC`

	rows, err := r.db.Query(ctx, query, requestID)
	if err != nil {
		logger.Error().Err(err).Str("requestID", requestID.String()).Msg("Error executing list opt-ins query")
		return nil, fmt.Errorf("error querying opt-ins: %w", err)
	}
	defer rows.Close()

	students := []dto.OptedInStudent{}
	for rows.Next() {
		var s dto.OptedInStudent
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.BloodGroup, &s.Phone, &s.RollNo, &s.IsAvailable, &s.OptedInAt); err != nil {
			return nil, fmt.Errorf("error scanning opt-in row: %w", err)
		}
		students = append(students, s)
	}

	return students, rows.Err()
}

// ListRequestIDsByStudent lists the request IDs a student has opted in to
func (r *OptInRepository) ListRequestIDsByStudent(ctx context.Context, studentID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx,
		`SELECT request_id FROM student_opt_ins WHERE student_id = $1 ORDER BY created_at DESC`, studentID)
	if err != nil {
		return nil, fmt.Errorf("error querying student opt-ins: %w", err)
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning opt-in request ID: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// ListByStudent retrieves a student's opt-ins joined with the requests
// they belong to, newest first.
func (r *OptInRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]dto.StudentOptInDetail, error) {
	query := `
		SELECT o.id, o.request_id, o.created_at,
		       b.id, b.requestor_name, b.email, b.phone, b.blood_group, b.units,
		       b.date_time, b.hospital_name, b.location, b.urgency, b.notes, b.status,
		       b.assigned_donor_id, b.rejection_reason, b.geotag_photo,
		       b.created_at, b.updated_at
		FROM student_opt_ins o
		JOIN blood_requests b ON b.id = o.request_id
		WHERE o.student_id = $1
		ORDER BY o.created_at DESC`

	rows, err := r.db.Query(ctx, query, studentID)
	if err != nil {
		logger.Error().Err(err).Str("studentID", studentID.String()).Msg("Error executing list student opt-ins query")
		return nil, fmt.Errorf("error querying student opt-ins: %w", err)
	}
	defer rows.Close()

	optIns := []dto.StudentOptInDetail{}
	for rows.Next() {
		var o dto.StudentOptInDetail
		req := &o.Request
		err := rows.Scan(
			&o.ID, &o.RequestID, &o.OptedInAt,
			&req.ID, &req.RequestorName, &req.Email, &req.Phone, &req.BloodGroup,
			&req.Units, &req.DateTime, &req.HospitalName, &req.Location,
			&req.Urgency, &req.Notes, &req.Status, &req.AssignedDonorID,
			&req.RejectionReason, &req.GeotagPhoto, &req.CreatedAt, &req.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning student opt-in row: %w", err)
		}
		optIns = append(optIns, o)
	}

	return optIns, rows.Err()
}

// CountSince counts opt-ins created after the given time
func (r *OptInRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM student_opt_ins WHERE created_at >= $1`, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting recent opt-ins: %w", err)
	}
	return count, nil
}
