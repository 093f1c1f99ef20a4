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
	"github.com/mravi/bloodconnect/internal/pkg/dberrors"
	"github.com/mravi/bloodconnect/internal/pkg/logger"
)

// User error types
var (
	ErrUserNotFound       = ErrNotFound
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// IUserRepository defines the interface for user-related database operations
type IUserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uuid.UUID) error

	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	SetAvailability(ctx context.Context, id uuid.UUID, available bool) error
	MarkDonatedTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, donatedAt time.Time) error

	ListStudents(ctx context.Context, filters map[string]interface{}, page, size int) ([]models.User, int64, error)
	ListAdmins(ctx context.Context) ([]models.User, error)
	EligibleDonors(ctx context.Context, bloodGroup models.BloodGroup) ([]models.User, error)
	CountStudents(ctx context.Context) (int64, error)
	CountAvailableStudents(ctx context.Context) (int64, error)
	CountAvailableByBloodGroup(ctx context.Context, bloodGroup models.BloodGroup) (int64, error)
}

// UserRepository handles user database operations
type UserRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var userColumns = []string{
	"id", "name", "email", "password", "role", "blood_group", "roll_no",
	"phone", "is_available", "last_donation_date", "last_login",
	"created_at", "updated_at",
}

func scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	var bloodGroup *string
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.Password, &user.Role,
		&bloodGroup, &user.RollNo, &user.Phone, &user.IsAvailable,
		&user.LastDonationDate, &user.LastLogin, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if bloodGroup != nil {
		user.BloodGroup = models.BloodGroup(*bloodGroup)
	}
	return user, nil
}

// Create inserts a new user row. The caller is expected to have set the
// ID and password hash already.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	var bloodGroup *string
	if user.BloodGroup != "" {
		bg := string(user.BloodGroup)
		bloodGroup = &bg
	}

	sql, args, err := r.sb.Insert("users").
		Columns(userColumns...).
		Values(
			user.ID, user.Name, user.Email, user.Password, user.Role,
			bloodGroup, user.RollNo, user.Phone, user.IsAvailable,
			user.LastDonationDate, user.LastLogin, user.CreatedAt, user.UpdatedAt,
		).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create user SQL")
		return fmt.Errorf("failed to build create user query: %w", err)
	}

	_, err = r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsDuplicateKeyError(err) {
			return ErrEmailAlreadyExists
		}
		logger.Error().Err(err).Msg("Error executing create user query")
		return fmt.Errorf("error creating user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	sql, args, err := r.sb.Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	user, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		logger.Error().Err(err).Str("userID", id.String()).Msg("Error scanning user row")
		return nil, fmt.Errorf("error getting user by ID: %w", err)
	}

	return user, nil
}

// GetByEmail retrieves a user by email, case-insensitively
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	sql, args, err := r.sb.Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"LOWER(email)": strings.ToLower(email)}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user by email query: %w", err)
	}

	user, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		logger.Error().Err(err).Msg("Error scanning user row by email")
		return nil, fmt.Errorf("error getting user by email: %w", err)
	}

	return user, nil
}

// EmailExists checks whether a user with this email already exists
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking email existence: %w", err)
	}
	return exists, nil
}

// Update updates a user's mutable profile fields
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	var bloodGroup *string
	if user.BloodGroup != "" {
		bg := string(user.BloodGroup)
		bloodGroup = &bg
	}

	sql, args, err := r.sb.Update("users").
		Set("name", user.Name).
		Set("email", user.Email).
		Set("blood_group", bloodGroup).
		Set("roll_no", user.RollNo).
		Set("phone", user.Phone).
		Set("is_available", user.IsAvailable).
		Set("last_donation_date", user.LastDonationDate).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": user.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update user query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsDuplicateKeyError(err) {
			return ErrEmailAlreadyExists
		}
		logger.Error().Err(err).Str("userID", user.ID.String()).Msg("Error executing update user query")
		return fmt.Errorf("error updating user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// Delete removes a user row
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		logger.Error().Err(err).Str("userID", id.String()).Msg("Error deleting user")
		return fmt.Errorf("error deleting user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdatePassword replaces the stored password hash
func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET password = $1, updated_at = $2 WHERE id = $3`,
		passwordHash, time.Now(), id)
	if err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdateLastLogin stamps the last login time
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.db.Exec(ctx,
		`UPDATE users SET last_login = $1, updated_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("error updating last login: %w", err)
	}
	return nil
}

// SetAvailability flips the availability flag
func (r *UserRepository) SetAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET is_available = $1, updated_at = $2 WHERE id = $3`,
		available, time.Now(), id)
	if err != nil {
		return fmt.Errorf("error updating availability: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// MarkDonatedTx stamps the donor's last donation date and clears
// availability inside an existing transaction.
func (r *UserRepository) MarkDonatedTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, donatedAt time.Time) error {
	tag, err := tx.Exec(ctx,
		`UPDATE users SET last_donation_date = $1, is_available = FALSE, updated_at = $2 WHERE id = $3`,
		donatedAt, time.Now(), id)
	if err != nil {
		return fmt.Errorf("error marking user as donated: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ListStudents retrieves student users with optional filters and pagination
func (r *UserRepository) ListStudents(ctx context.Context, filters map[string]interface{}, page, size int) ([]models.User, int64, error) {
	offset := uint64((page - 1) * size)

	where := squirrel.And{squirrel.Eq{"role": models.RoleStudent}}
	if bloodGroup, ok := filters["blood_group"].(string); ok && bloodGroup != "" {
		where = append(where, squirrel.Eq{"blood_group": bloodGroup})
	}
	if available, ok := filters["available"].(bool); ok {
		where = append(where, squirrel.Eq{"is_available": available})
	}
	if search, ok := filters["search"].(string); ok && search != "" {
		pattern := "%" + strings.TrimSpace(search) + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"email": pattern},
			squirrel.ILike{"roll_no": pattern},
		})
	}

	countSql, countArgs, err := r.sb.Select("COUNT(*)").From("users").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count students query: %w", err)
	}

	var totalItems int64
	if err := r.db.QueryRow(ctx, countSql, countArgs...).Scan(&totalItems); err != nil {
		logger.Error().Err(err).Msg("Error executing count students query")
		return nil, 0, fmt.Errorf("failed to count students: %w", err)
	}

	if totalItems == 0 {
		return []models.User{}, 0, nil
	}

	querySql, queryArgs, err := r.sb.Select(userColumns...).
		From("users").
		Where(where).
		OrderBy("created_at DESC").
		Limit(uint64(size)).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list students query: %w", err)
	}

	rows, err := r.db.Query(ctx, querySql, queryArgs...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list students query")
		return nil, 0, fmt.Errorf("error querying students: %w", err)
	}
	defer rows.Close()

	students := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning student row: %w", err)
		}
		students = append(students, *user)
	}

	return students, totalItems, rows.Err()
}

// ListAdmins retrieves all admin users
func (r *UserRepository) ListAdmins(ctx context.Context) ([]models.User, error) {
	sql, args, err := r.sb.Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"role": models.RoleAdmin}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list admins query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list admins query")
		return nil, fmt.Errorf("error querying admins: %w", err)
	}
	defer rows.Close()

	admins := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning admin row: %w", err)
		}
		admins = append(admins, *user)
	}

	return admins, rows.Err()
}

// EligibleDonors retrieves available students of the given blood group
// whose last donation is outside the cooldown window (or absent).
func (r *UserRepository) EligibleDonors(ctx context.Context, bloodGroup models.BloodGroup) ([]models.User, error) {
	cutoff := time.Now().AddDate(0, -models.DonationCooldownMonths, 0)

	sql, args, err := r.sb.Select(userColumns...).
		From("users").
		Where(squirrel.And{
			squirrel.Eq{"role": models.RoleStudent},
			squirrel.Eq{"blood_group": string(bloodGroup)},
			squirrel.Eq{"is_available": true},
			squirrel.Or{
				squirrel.Eq{"last_donation_date": nil},
				squirrel.LtOrEq{"last_donation_date": cutoff},
			},
		}).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build eligible donors query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("bloodGroup", string(bloodGroup)).Msg("Error executing eligible donors query")
		return nil, fmt.Errorf("error querying eligible donors: %w", err)
	}
	defer rows.Close()

	donors := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning donor row: %w", err)
		}
		donors = append(donors, *user)
	}

	return donors, rows.Err()
}

// CountStudents returns the total number of students
func (r *UserRepository) CountStudents(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE role = $1`, models.RoleStudent).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting students: %w", err)
	}
	return count, nil
}

// CountAvailableStudents returns the number of currently available students
func (r *UserRepository) CountAvailableStudents(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE role = $1 AND is_available = TRUE`, models.RoleStudent).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting available students: %w", err)
	}
	return count, nil
}

// CountAvailableByBloodGroup returns available students for one blood group
func (r *UserRepository) CountAvailableByBloodGroup(ctx context.Context, bloodGroup models.BloodGroup) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE role = $1 AND is_available = TRUE AND blood_group = $2`,
		models.RoleStudent, string(bloodGroup)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting available students by blood group: %w", err)
	}
	return count, nil
}
