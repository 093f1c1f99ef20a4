package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mravi/bloodconnect/internal/app/models"
	"github.com/mravi/bloodconnect/internal/app/models/dto"
	"github.com/mravi/bloodconnect/internal/pkg/logger"
)

// Blood request error types
var (
	ErrRequestNotFound = ErrNotFound
)

// IRequestRepository defines the interface for blood request database operations
type IRequestRepository interface {
	Create(ctx context.Context, request *models.BloodRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.BloodRequest, error)
	List(ctx context.Context, filters map[string]interface{}, page, size int) ([]models.BloodRequest, int64, error)
	ListMatching(ctx context.Context, bloodGroup models.BloodGroup, after time.Time) ([]models.BloodRequest, error)
	Delete(ctx context.Context, id uuid.UUID) error

	UpdateStatus(ctx context.Context, id uuid.UUID, status models.RequestStatus) error
	Reject(ctx context.Context, id uuid.UUID, reason string) error
	AssignDonor(ctx context.Context, id, donorID uuid.UUID) error
	FulfillTx(ctx context.Context, tx pgx.Tx, id, donorID uuid.UUID) error
	SetGeotagPhotoTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, photoPath string) error

	CountByStatus(ctx context.Context) (map[models.RequestStatus]int64, error)
	BloodGroupStats(ctx context.Context) ([]dto.BloodGroupStats, error)
}

// RequestRepository handles blood request database operations
type RequestRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewRequestRepository creates a new RequestRepository
func NewRequestRepository(db *pgxpool.Pool) *RequestRepository {
	return &RequestRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var requestColumns = []string{
	"id", "requestor_name", "email", "phone", "blood_group", "units",
	"date_time", "hospital_name", "location", "urgency", "notes", "status",
	"assigned_donor_id", "rejection_reason", "geotag_photo",
	"created_at", "updated_at",
}

func scanRequest(row pgx.Row) (*models.BloodRequest, error) {
	req := &models.BloodRequest{}
	err := row.Scan(
		&req.ID, &req.RequestorName, &req.Email, &req.Phone, &req.BloodGroup,
		&req.Units, &req.DateTime, &req.HospitalName, &req.Location,
		&req.Urgency, &req.Notes, &req.Status, &req.AssignedDonorID,
		&req.RejectionReason, &req.GeotagPhoto, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return req, nil
}

// Create inserts a new blood request in pending status
func (r *RequestRepository) Create(ctx context.Context, request *models.BloodRequest) error {
	now := time.Now()
	request.CreatedAt = now
	request.UpdatedAt = now
	if request.ID == uuid.Nil {
		request.ID = uuid.New()
	}
	if request.Status == "" {
		request.Status = models.RequestStatusPending
	}

	sql, args, err := r.sb.Insert("blood_requests").
		Columns(requestColumns...).
		Values(
			request.ID, request.RequestorName, request.Email, request.Phone,
			request.BloodGroup, request.Units, request.DateTime,
			request.HospitalName, request.Location, request.Urgency,
			request.Notes, request.Status, request.AssignedDonorID,
			request.RejectionReason, request.GeotagPhoto,
			request.CreatedAt, request.UpdatedAt,
		).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create blood request SQL")
		return fmt.Errorf("failed to build create blood request query: %w", err)
	}

	_, err = r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing create blood request query")
		return fmt.Errorf("error creating blood request: %w", err)
	}

	return nil
}

// GetByID retrieves a blood request by ID
func (r *RequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BloodRequest, error) {
	sql, args, err := r.sb.Select(requestColumns...).
		From("blood_requests").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get blood request query: %w", err)
	}

	request, err := scanRequest(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		logger.Error().Err(err).Str("requestID", id.String()).Msg("Error scanning blood request row")
		return nil, fmt.Errorf("error getting blood request by ID: %w", err)
	}

	return request, nil
}

// List retrieves blood requests with optional filtering and pagination
func (r *RequestRepository) List(ctx context.Context, filters map[string]interface{}, page, size int) ([]models.BloodRequest, int64, error) {
	offset := uint64((page - 1) * size)

	where := squirrel.And{}
	if status, ok := filters["status"].(string); ok && status != "" {
		where = append(where, squirrel.Eq{"status": status})
	}
	if bloodGroup, ok := filters["blood_group"].(string); ok && bloodGroup != "" {
		where = append(where, squirrel.Eq{"blood_group": bloodGroup})
	}
	if urgency, ok := filters["urgency"].(string); ok && urgency != "" {
		where = append(where, squirrel.Eq{"urgency": urgency})
	}
	if search, ok := filters["search"].(string); ok && search != "" {
		pattern := "%" + strings.TrimSpace(search) + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{"requestor_name": pattern},
			squirrel.ILike{"hospital_name": pattern},
			squirrel.ILike{"location": pattern},
			squirrel.ILike{"email": pattern},
		})
	}

	countSql, countArgs, err := r.sb.Select("COUNT(*)").From("blood_requests").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count blood requests query: %w", err)
	}

	var totalItems int64
	if err := r.db.QueryRow(ctx, countSql, countArgs...).Scan(&totalItems); err != nil {
		logger.Error().Err(err).Msg("Error executing count blood requests query")
		return nil, 0, fmt.Errorf("failed to count blood requests: %w", err)
	}

	if totalItems == 0 {
		return []models.BloodRequest{}, 0, nil
	}

	querySql, queryArgs, err := r.sb.Select(requestColumns...).
		From("blood_requests").
		Where(where).
		OrderBy("created_at DESC").
		Limit(uint64(size)).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list blood requests query: %w", err)
	}

	rows, err := r.db.Query(ctx, querySql, queryArgs...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list blood requests query")
		return nil, 0, fmt.Errorf("error querying blood requests: %w", err)
	}
	defer rows.Close()

	requests := []models.BloodRequest{}
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning blood request row: %w", err)
		}
		requests = append(requests, *request)
	}

	return requests, totalItems, rows.Err()
}

// ListMatching retrieves approved requests of the given blood group with a
// donation time still in the future.
func (r *RequestRepository) ListMatching(ctx context.Context, bloodGroup models.BloodGroup, after time.Time) ([]models.BloodRequest, error) {
	sql, args, err := r.sb.Select(requestColumns...).
		From("blood_requests").
		Where(squirrel.And{
			squirrel.Eq{"status": models.RequestStatusApproved},
			squirrel.Eq{"blood_group": string(bloodGroup)},
			squirrel.Gt{"date_time": after},
		}).
		OrderBy("date_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build matching requests query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("bloodGroup", string(bloodGroup)).Msg("Error executing matching requests query")
		return nil, fmt.Errorf("error querying matching requests: %w", err)
	}
	defer rows.Close()

	requests := []models.BloodRequest{}
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning matching request row: %w", err)
		}
		requests = append(requests, *request)
	}

	return requests, rows.Err()
}

// Delete removes a blood request row
func (r *RequestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM blood_requests WHERE id = $1`, id)
	if err != nil {
		logger.Error().Err(err).Str("requestID", id.String()).Msg("Error deleting blood request")
		return fmt.Errorf("error deleting blood request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRequestNotFound
	}
	return nil
}

// UpdateStatus sets the request status
func (r *RequestRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.RequestStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE blood_requests SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("error updating blood request status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRequestNotFound
	}
	return nil
}

// Reject sets the request to rejected with a reason
func (r *RequestRepository) Reject(ctx context.Context, id uuid.UUID, reason string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE blood_requests SET status = $1, rejection_reason = $2, updated_at = $3 WHERE id = $4`,
		models.RequestStatusRejected, reason, time.Now(), id)
	if err != nil {
		return fmt.Errorf("error rejecting blood request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRequestNotFound
	}
	return nil
}

// AssignDonor sets the assigned donor without changing status
func (r *RequestRepository) AssignDonor(ctx context.Context, id, donorID uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE blood_requests SET assigned_donor_id = $1, updated_at = $2 WHERE id = $3`,
		donorID, time.Now(), id)
	if err != nil {
		return fmt.Errorf("error assigning donor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRequestNotFound
	}
	return nil
}

// FulfillTx marks the request fulfilled with its donor inside an existing
// transaction, so the donor row update commits atomically with it.
func (r *RequestRepository) FulfillTx(ctx context.Context, tx pgx.Tx, id, donorID uuid.UUID) error {
	tag, err := tx.Exec(ctx,
		`UPDATE blood_requests SET status = $1, assigned_donor_id = $2, updated_at = $3 WHERE id = $4`,
		models.RequestStatusFulfilled, donorID, time.Now(), id)
	if err != nil {
		return fmt.Errorf("error fulfilling blood request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRequestNotFound
	}
	return nil
}

// SetGeotagPhotoTx records the geotag photo path inside an existing transaction
func (r *RequestRepository) SetGeotagPhotoTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, photoPath string) error {
	tag, err := tx.Exec(ctx,
		`UPDATE blood_requests SET geotag_photo = $1, updated_at = $2 WHERE id = $3`,
		photoPath, time.Now(), id)
	if err != nil {
		return fmt.Errorf("error setting geotag photo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRequestNotFound
	}
	return nil
}

// CountByStatus returns request counts grouped by status
func (r *RequestRepository) CountByStatus(ctx context.Context) (map[models.RequestStatus]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM blood_requests GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("error counting blood requests by status: %w", err)
	}
	defer rows.Close()

	counts := map[models.RequestStatus]int64{}
	for rows.Next() {
		var status models.RequestStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("error scanning status count row: %w", err)
		}
		counts[status] = count
	}

	return counts, rows.Err()
}

// BloodGroupStats aggregates request and donor counts per blood group
func (r *RequestRepository) BloodGroupStats(ctx context.Context) ([]dto.BloodGroupStats, error) {
	query := `
		SELECT bg.blood_group,
		       COALESCE(req.total, 0),
		       COALESCE(req.fulfilled, 0),
		       COALESCE(donors.available, 0)
		FROM (SELECT UNNEST($1::text[]) AS blood_group) bg
		LEFT JOIN (
			SELECT blood_group,
			       COUNT(*) AS total,
			       COUNT(*) FILTER (WHERE status = 'fulfilled') AS fulfilled
			FROM blood_requests GROUP BY blood_group
		) req ON req.blood_group = bg.blood_group
		LEFT JOIN (
			SELECT blood_group, COUNT(*) AS available
			FROM users
			WHERE role = 'student' AND is_available = TRUE
			GROUP BY blood_group
		) donors ON donors.blood_group = bg.blood_group
		ORDER BY bg.blood_group`

	groups := make([]string, 0, len(models.AllBloodGroups))
	for _, bg := range models.AllBloodGroups {
		groups = append(groups, string(bg))
	}

	rows, err := r.db.Query(ctx, query, groups)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing blood group stats query")
		return nil, fmt.Errorf("error querying blood group stats: %w", err)
	}
	defer rows.Close()

	stats := []dto.BloodGroupStats{}
	for rows.Next() {
		var s dto.BloodGroupStats
		if err := rows.Scan(&s.BloodGroup, &s.TotalRequests, &s.FulfilledRequests, &s.AvailableDonors); err != nil {
			return nil, fmt.Errorf("error scanning blood group stats row: %w", err)
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}
