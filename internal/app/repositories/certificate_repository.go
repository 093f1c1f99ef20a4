package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mravi/bloodconnect/internal/app/models"
	"github.com/mravi/bloodconnect/internal/pkg/dberrors"
	"github.com/mravi/bloodconnect/internal/pkg/logger"
)

// Certificate error types
var (
	ErrCertificateNotFound = ErrNotFound
	ErrCertificateExists   = errors.New("certificate already exists for this donation")
)

// ICertificateRepository defines the interface for certificate database operations
type ICertificateRepository interface {
	Create(ctx context.Context, cert *models.Certificate) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Certificate, error)
	ExistsForDonation(ctx context.Context, donorID, requestID uuid.UUID) (bool, error)
	CountByYear(ctx context.Context, year int) (int64, error)
	ListByDonor(ctx context.Context, donorID uuid.UUID) ([]models.Certificate, error)
	ListByStatus(ctx context.Context, status models.CertificateStatus, page, size int) ([]models.Certificate, int64, error)
	ListAll(ctx context.Context, page, size int) ([]models.Certificate, int64, error)
	Approve(ctx context.Context, id uuid.UUID, approvedAt time.Time) error
	SetGenerated(ctx context.Context, id uuid.UUID, certificateURL string, generatedAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CertificateRepository handles certificate database operations
type CertificateRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCertificateRepository creates a new CertificateRepository
func NewCertificateRepository(db *pgxpool.Pool) *CertificateRepository {
	return &CertificateRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var certificateColumns = []string{
	"id", "donor_id", "request_id", "certificate_number", "donor_name",
	"blood_group", "donation_date", "hospital_name", "units", "status",
	"admin_approved_at", "generated_at", "certificate_url", "notes",
	"created_at", "updated_at",
}

func scanCertificate(row pgx.Row) (*models.Certificate, error) {
	cert := &models.Certificate{}
	err := row.Scan(
		&cert.ID, &cert.DonorID, &cert.RequestID, &cert.CertificateNumber,
		&cert.DonorName, &cert.BloodGroup, &cert.DonationDate,
		&cert.HospitalName, &cert.Units, &cert.Status, &cert.AdminApprovedAt,
		&cert.GeneratedAt, &cert.CertificateURL, &cert.Notes,
		&cert.CreatedAt, &cert.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return cert, nil
}

// Create inserts a certificate row. The (donor_id, request_id) unique
// constraint enforces one certificate per donation.
func (r *CertificateRepository) Create(ctx context.Context, cert *models.Certificate) error {
	now := time.Now()
	cert.CreatedAt = now
	cert.UpdatedAt = now
	if cert.ID == uuid.Nil {
		cert.ID = uuid.New()
	}
	if cert.Status == "" {
		cert.Status = models.CertificateStatusPending
	}

	sql, args, err := r.sb.Insert("certificates").
		Columns(certificateColumns...).
		Values(
			cert.ID, cert.DonorID, cert.RequestID, cert.CertificateNumber,
			cert.DonorName, cert.BloodGroup, cert.DonationDate,
			cert.HospitalName, cert.Units, cert.Status, cert.AdminApprovedAt,
			cert.GeneratedAt, cert.CertificateURL, cert.Notes,
			cert.CreatedAt, cert.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create certificate query: %w", err)
	}

	_, err = r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsDuplicateKeyError(err) {
			return ErrCertificateExists
		}
		logger.Error().Err(err).Msg("Error executing create certificate query")
		return fmt.Errorf("error creating certificate: %w", err)
	}

	return nil
}

// GetByID retrieves a certificate by ID
func (r *CertificateRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Certificate, error) {
	sql, args, err := r.sb.Select(certificateColumns...).
		From("certificates").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get certificate query: %w", err)
	}

	cert, err := scanCertificate(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCertificateNotFound
		}
		logger.Error().Err(err).Str("certificateID", id.String()).Msg("Error scanning certificate row")
		return nil, fmt.Errorf("error getting certificate by ID: %w", err)
	}

	return cert, nil
}

// ExistsForDonation checks whether a certificate exists for a donor/request pair
func (r *CertificateRepository) ExistsForDonation(ctx context.Context, donorID, requestID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM certificates WHERE donor_id = $1 AND request_id = $2)`,
		donorID, requestID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking certificate existence: %w", err)
	}
	return exists, nil
}

// CountByYear counts certificates issued in a calendar year, used to
// derive the next sequence in the certificate number.
func (r *CertificateRepository) CountByYear(ctx context.Context, year int) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM certificates WHERE EXTRACT(YEAR FROM created_at) = $1`, year).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting certificates by year: %w", err)
	}
	return count, nil
}

// ListByDonor retrieves all certificates belonging to a donor
func (r *CertificateRepository) ListByDonor(ctx context.Context, donorID uuid.UUID) ([]models.Certificate, error) {
	sql, args, err := r.sb.Select(certificateColumns...).
		From("certificates").
		Where(squirrel.Eq{"donor_id": donorID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list certificates by donor query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("donorID", donorID.String()).Msg("Error executing list certificates by donor query")
		return nil, fmt.Errorf("error querying donor certificates: %w", err)
	}
	defer rows.Close()

	certs := []models.Certificate{}
	for rows.Next() {
		cert, err := scanCertificate(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning certificate row: %w", err)
		}
		certs = append(certs, *cert)
	}

	return certs, rows.Err()
}

func (r *CertificateRepository) list(ctx context.Context, where interface{}, page, size int) ([]models.Certificate, int64, error) {
	offset := uint64((page - 1) * size)

	countQuery := r.sb.Select("COUNT(*)").From("certificates")
	listQuery := r.sb.Select(certificateColumns...).From("certificates")
	if where != nil {
		countQuery = countQuery.Where(where)
		listQuery = listQuery.Where(where)
	}

	countSql, countArgs, err := countQuery.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count certificates query: %w", err)
	}

	var totalItems int64
	if err := r.db.QueryRow(ctx, countSql, countArgs...).Scan(&totalItems); err != nil {
		return nil, 0, fmt.Errorf("failed to count certificates: %w", err)
	}

	if totalItems == 0 {
		return []models.Certificate{}, 0, nil
	}

	querySql, queryArgs, err := listQuery.
		OrderBy("created_at DESC").
		Limit(uint64(size)).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list certificates query: %w", err)
	}

	rows, err := r.db.Query(ctx, querySql, queryArgs...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list certificates query")
		return nil, 0, fmt.Errorf("error querying certificates: %w", err)
	}
	defer rows.Close()

	certs := []models.Certificate{}
	for rows.Next() {
		cert, err := scanCertificate(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning certificate row: %w", err)
		}
		certs = append(certs, *cert)
	}

	return certs, totalItems, rows.Err()
}

// ListByStatus retrieves certificates in a given status with pagination
func (r *CertificateRepository) ListByStatus(ctx context.Context, status models.CertificateStatus, page, size int) ([]models.Certificate, int64, error) {
	return r.list(ctx, squirrel.Eq{"status": status}, page, size)
}

// ListAll retrieves all certificates with pagination
func (r *CertificateRepository) ListAll(ctx context.Context, page, size int) ([]models.Certificate, int64, error) {
	return r.list(ctx, nil, page, size)
}

// Approve moves a certificate to approved and stamps the approval time
func (r *CertificateRepository) Approve(ctx context.Context, id uuid.UUID, approvedAt time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE certificates SET status = $1, admin_approved_at = $2, updated_at = $3 WHERE id = $4`,
		models.CertificateStatusApproved, approvedAt, time.Now(), id)
	if err != nil {
		return fmt.Errorf("error approving certificate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCertificateNotFound
	}
	return nil
}

// SetGenerated records the rendered PDF location and stamps generation
func (r *CertificateRepository) SetGenerated(ctx context.Context, id uuid.UUID, certificateURL string, generatedAt time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE certificates SET status = $1, certificate_url = $2, generated_at = $3, updated_at = $4 WHERE id = $5`,
		models.CertificateStatusGenerated, certificateURL, generatedAt, time.Now(), id)
	if err != nil {
		return fmt.Errorf("error marking certificate generated: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCertificateNotFound
	}
	return nil
}

// Delete removes a certificate row
func (r *CertificateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM certificates WHERE id = $1`, id)
	if err != nil {
		logger.Error().Err(err).Str("certificateID", id.String()).Msg("Error deleting certificate")
		return fmt.Errorf("error deleting certificate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCertificateNotFound
	}
	return nil
}
