package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mravi/bloodconnect/internal/app/models"
	"github.com/mravi/bloodconnect/internal/pkg/logger"
)

// ILoginHistoryRepository defines the interface for login history operations
type ILoginHistoryRepository interface {
	Create(ctx context.Context, entry *models.LoginHistory) error
	DeactivateAllForUser(ctx context.Context, userID uuid.UUID) error
	CloseActive(ctx context.Context, userID uuid.UUID, logoutTime time.Time) error
	ListByUser(ctx context.Context, userID uuid.UUID, page, size int) ([]models.LoginHistory, int64, error)
}

// LoginHistoryRepository handles login history database operations
type LoginHistoryRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewLoginHistoryRepository creates a new LoginHistoryRepository
func NewLoginHistoryRepository(db *pgxpool.Pool) *LoginHistoryRepository {
	return &LoginHistoryRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a login history row
func (r *LoginHistoryRepository) Create(ctx context.Context, entry *models.LoginHistory) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now()
	if entry.LoginTime.IsZero() {
		entry.LoginTime = entry.CreatedAt
	}

	sql, args, err := r.sb.Insert("login_history").
		Columns("id", "user_id", "ip_address", "user_agent", "login_time", "logout_time", "is_active", "created_at").
		Values(entry.ID, entry.UserID, entry.IPAddress, entry.UserAgent,
			entry.LoginTime, entry.LogoutTime, entry.IsActive, entry.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create login history query: %w", err)
	}

	_, err = r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing create login history query")
		return fmt.Errorf("error creating login history: %w", err)
	}

	return nil
}

// DeactivateAllForUser marks all of a user's sessions inactive. Called on
// login before the new session row is created.
func (r *LoginHistoryRepository) DeactivateAllForUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`UPDATE login_history SET is_active = FALSE WHERE user_id = $1 AND is_active = TRUE`, userID)
	if err != nil {
		return fmt.Errorf("error deactivating login history: %w", err)
	}
	return nil
}

// CloseActive stamps the logout time on the user's active sessions
func (r *LoginHistoryRepository) CloseActive(ctx context.Context, userID uuid.UUID, logoutTime time.Time) error {
	_, err := r.db.Exec(ctx,
		`UPDATE login_history SET is_active = FALSE, logout_time = $1 WHERE user_id = $2 AND is_active = TRUE`,
		logoutTime, userID)
	if err != nil {
		return fmt.Errorf("error closing login history: %w", err)
	}
	return nil
}

// ListByUser retrieves a user's login history, newest first
func (r *LoginHistoryRepository) ListByUser(ctx context.Context, userID uuid.UUID, page, size int) ([]models.LoginHistory, int64, error) {
	offset := uint64((page - 1) * size)

	var totalItems int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM login_history WHERE user_id = $1`, userID).Scan(&totalItems)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count login history: %w", err)
	}

	if totalItems == 0 {
		return []models.LoginHistory{}, 0, nil
	}

	sql, args, err := r.sb.
		Select("id", "user_id", "ip_address", "user_agent", "login_time", "logout_time", "is_active", "created_at").
		From("login_history").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("login_time DESC").
		Limit(uint64(size)).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list login history query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list login history query")
		return nil, 0, fmt.Errorf("error querying login history: %w", err)
	}
	defer rows.Close()

	entries := []models.LoginHistory{}
	for rows.Next() {
		var e models.LoginHistory
		if err := rows.Scan(&e.ID, &e.UserID, &e.IPAddress, &e.UserAgent, &e.LoginTime, &e.LogoutTime, &e.IsActive, &e.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("error scanning login history row: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, totalItems, rows.Err()
}
