package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mravi/bloodconnect/internal/app/models"
	"github.com/mravi/bloodconnect/internal/pkg/logger"
)

// ISystemLogRepository defines the interface for system log operations
type ISystemLogRepository interface {
	Create(ctx context.Context, entry *models.SystemLog) error
	List(ctx context.Context, filters map[string]interface{}, page, size int) ([]models.SystemLog, int64, error)
	ListAll(ctx context.Context, filters map[string]interface{}) ([]models.SystemLog, error)
	Stats(ctx context.Context) (map[string]int64, error)
}

// SystemLogRepository handles system log database operations
type SystemLogRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewSystemLogRepository creates a new SystemLogRepository
func NewSystemLogRepository(db *pgxpool.Pool) *SystemLogRepository {
	return &SystemLogRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a system log row
func (r *SystemLogRepository) Create(ctx context.Context, entry *models.SystemLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = entry.CreatedAt
	}

	sql, args, err := r.sb.Insert("system_logs").
		Columns("id", "timestamp", "level", "username", "role", "message", "created_at").
		Values(entry.ID, entry.Timestamp, entry.Level, entry.User, entry.Role, entry.Message, entry.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create system log query: %w", err)
	}

	_, err = r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing create system log query")
		return fmt.Errorf("error creating system log: %w", err)
	}

	return nil
}

func buildSystemLogWhere(filters map[string]interface{}) squirrel.And {
	where := squirrel.And{}
	if level, ok := filters["level"].(string); ok && level != "" {
		where = append(where, squirrel.Eq{"level": strings.ToUpper(level)})
	}
	if user, ok := filters["user"].(string); ok && user != "" {
		where = append(where, squirrel.ILike{"username": "%" + strings.TrimSpace(user) + "%"})
	}
	if from, ok := filters["from"].(time.Time); ok && !from.IsZero() {
		where = append(where, squirrel.GtOrEq{"timestamp": from})
	}
	if to, ok := filters["to"].(time.Time); ok && !to.IsZero() {
		where = append(where, squirrel.LtOrEq{"timestamp": to})
	}
	if search, ok := filters["search"].(string); ok && search != "" {
		where = append(where, squirrel.ILike{"message": "%" + strings.TrimSpace(search) + "%"})
	}
	return where
}

// List retrieves system logs with filtering and pagination, newest first
func (r *SystemLogRepository) List(ctx context.Context, filters map[string]interface{}, page, size int) ([]models.SystemLog, int64, error) {
	offset := uint64((page - 1) * size)
	where := buildSystemLogWhere(filters)

	countSql, countArgs, err := r.sb.Select("COUNT(*)").From("system_logs").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count system logs query: %w", err)
	}

	var totalItems int64
	if err := r.db.QueryRow(ctx, countSql, countArgs...).Scan(&totalItems); err != nil {
		return nil, 0, fmt.Errorf("failed to count system logs: %w", err)
	}

	if totalItems == 0 {
		return []models.SystemLog{}, 0, nil
	}

	querySql, queryArgs, err := r.sb.
		Select("id", "timestamp", "level", "username", "role", "message", "created_at").
		From("system_logs").
		Where(where).
		OrderBy("timestamp DESC").
		Limit(uint64(size)).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list system logs query: %w", err)
	}

	rows, err := r.db.Query(ctx, querySql, queryArgs...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list system logs query")
		return nil, 0, fmt.Errorf("error querying system logs: %w", err)
	}
	defer rows.Close()

	logs := []models.SystemLog{}
	for rows.Next() {
		var l models.SystemLog
		if err := rows.Scan(&l.ID, &l.Timestamp, &l.Level, &l.User, &l.Role, &l.Message, &l.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("error scanning system log row: %w", err)
		}
		logs = append(logs, l)
	}

	return logs, totalItems, rows.Err()
}

// ListAll retrieves every system log matching the filters, for export
func (r *SystemLogRepository) ListAll(ctx context.Context, filters map[string]interface{}) ([]models.SystemLog, error) {
	where := buildSystemLogWhere(filters)

	querySql, queryArgs, err := r.sb.
		Select("id", "timestamp", "level", "username", "role", "message", "created_at").
		From("system_logs").
		Where(where).
		OrderBy("timestamp DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build export system logs query: %w", err)
	}

	rows, err := r.db.Query(ctx, querySql, queryArgs...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing export system logs query")
		return nil, fmt.Errorf("error querying system logs for export: %w", err)
	}
	defer rows.Close()

	logs := []models.SystemLog{}
	for rows.Next() {
		var l models.SystemLog
		if err := rows.Scan(&l.ID, &l.Timestamp, &l.Level, &l.User, &l.Role, &l.Message, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning system log row: %w", err)
		}
		logs = append(logs, l)
	}

	return logs, rows.Err()
}

// Stats aggregates log counts by level
func (r *SystemLogRepository) Stats(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT level, COUNT(*) FROM system_logs GROUP BY level`)
	if err != nil {
		return nil, fmt.Errorf("error querying system log stats: %w", err)
	}
	defer rows.Close()

	stats := map[string]int64{}
	for rows.Next() {
		var level string
		var count int64
		if err := rows.Scan(&level, &count); err != nil {
			return nil, fmt.Errorf("error scanning system log stats row: %w", err)
		}
		stats[level] = count
	}

	return stats, rows.Err()
}
