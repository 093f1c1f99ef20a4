package services

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mravi/bloodconnect/internal/app/models"
	"github.com/mravi/bloodconnect/internal/app/models/dto"
	"github.com/mravi/bloodconnect/internal/app/repositories"
	"github.com/mravi/bloodconnect/internal/pkg/apperrors"
	"github.com/mravi/bloodconnect/internal/pkg/helpers"
)

// LogsService defines the interface for system log operations
type LogsService interface {
	Record(ctx context.Context, level, user, role, message string)
	List(ctx context.Context, filters *dto.SystemLogFilters, page, size int) (*dto.PagedResponse, error)
	Stats(ctx context.Context) (*dto.SystemLogStats, error)
	ExportJSON(ctx context.Context, filters *dto.SystemLogFilters, w io.Writer) error
	ExportCSV(ctx context.Context, filters *dto.SystemLogFilters, w io.Writer) error
}

// logsServiceImpl implements LogsService
type logsServiceImpl struct {
	logRepo repositories.ISystemLogRepository
	logger  zerolog.Logger
}

// NewLogsService creates a new LogsService
func NewLogsService(logRepo repositories.ISystemLogRepository, logger zerolog.Logger) LogsService {
	return &logsServiceImpl{
		logRepo: logRepo,
		logger:  logger,
	}
}

// Record persists an audit row. Failures are logged and dropped so the
// audited operation never fails because of the audit trail.
func (s *logsServiceImpl) Record(ctx context.Context, level, user, role, message string) {
	entry := &models.SystemLog{
		Timestamp: time.Now(),
		Level:     level,
		User:      user,
		Role:      role,
		Message:   message,
	}
	if err := s.logRepo.Create(ctx, entry); err != nil {
		s.logger.Error().Err(err).Str("message", message).Msg("Failed to persist system log")
	}
}

// parseTimeFilter accepts RFC3339 timestamps or plain dates
func parseTimeFilter(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

func buildLogFilterMap(filters *dto.SystemLogFilters) (map[string]interface{}, error) {
	filterMap := map[string]interface{}{}
	if filters.Level != "" {
		filterMap["level"] = filters.Level
	}
	if filters.User != "" {
		filterMap["user"] = filters.User
	}
	if filters.From != "" {
		from, err := parseTimeFilter(filters.From)
		if err != nil {
			return nil, apperrors.NewBadRequestError("Invalid from date")
		}
		filterMap["from"] = from
	}
	if filters.To != "" {
		to, err := parseTimeFilter(filters.To)
		if err != nil {
			return nil, apperrors.NewBadRequestError("Invalid to date")
		}
		filterMap["to"] = to
	}
	if filters.Search != "" {
		filterMap["search"] = filters.Search
	}
	return filterMap, nil
}

// List returns system logs, newest first
func (s *logsServiceImpl) List(ctx context.Context, filters *dto.SystemLogFilters, page, size int) (*dto.PagedResponse, error) {
	filterMap, err := buildLogFilterMap(filters)
	if err != nil {
		return nil, err
	}

	logs, total, err := s.logRepo.List(ctx, filterMap, page, size)
	if err != nil {
		return nil, fmt.Errorf("error listing system logs: %w", err)
	}

	return &dto.PagedResponse{
		Items:      logs,
		Pagination: helpers.NewPaginationInfo(total, page, size),
	}, nil
}

// Stats returns log counts per level
func (s *logsServiceImpl) Stats(ctx context.Context) (*dto.SystemLogStats, error) {
	byLevel, err := s.logRepo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("error aggregating log stats: %w", err)
	}

	var total int64
	for _, count := range byLevel {
		total += count
	}

	return &dto.SystemLogStats{
		Total: total,
		Level: byLevel,
	}, nil
}

// ExportJSON streams the filtered logs as a JSON array
func (s *logsServiceImpl) ExportJSON(ctx context.Context, filters *dto.SystemLogFilters, w io.Writer) error {
	logs, err := s.listAll(ctx, filters)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(logs)
}

// ExportCSV streams the filtered logs as CSV
func (s *logsServiceImpl) ExportCSV(ctx context.Context, filters *dto.SystemLogFilters, w io.Writer) error {
	logs, err := s.listAll(ctx, filters)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"id", "timestamp", "level", "user", "role", "message"}); err != nil {
		return fmt.Errorf("error writing CSV header: %w", err)
	}
	for _, entry := range logs {
		record := []string{
			entry.ID.String(),
			entry.Timestamp.Format(time.RFC3339),
			string(entry.Level),
			entry.User,
			entry.Role,
			entry.Message,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("error writing CSV row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func (s *logsServiceImpl) listAll(ctx context.Context, filters *dto.SystemLogFilters) ([]models.SystemLog, error) {
	filterMap, err := buildLogFilterMap(filters)
	if err != nil {
		return nil, err
	}

	logs, err := s.logRepo.ListAll(ctx, filterMap)
	if err != nil {
		return nil, fmt.Errorf("error exporting system logs: %w", err)
	}
	return logs, nil
}

// ExportFileName builds a timestamped export file name
func ExportFileName(format string) string {
	name := "system-logs-" + strconv.FormatInt(time.Now().Unix(), 10)
	return name + "." + strings.ToLower(format)
}
