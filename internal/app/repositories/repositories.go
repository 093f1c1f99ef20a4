package repositories

import (
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is the shared sentinel for missing rows
var ErrNotFound = errors.New("record not found")

// Repositories bundles every repository for dependency injection
type Repositories struct {
	UserRepository         *UserRepository
	RequestRepository      *RequestRepository
	OptInRepository        *OptInRepository
	NotificationRepository *NotificationRepository
	CertificateRepository  *CertificateRepository
	LoginHistoryRepository *LoginHistoryRepository
	SystemLogRepository    *SystemLogRepository
}

// NewRepositories creates all repositories sharing one connection pool
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:         NewUserRepository(db),
		RequestRepository:      NewRequestRepository(db),
		OptInRepository:        NewOptInRepository(db),
		NotificationRepository: NewNotificationRepository(db),
		CertificateRepository:  NewCertificateRepository(db),
		LoginHistoryRepository: NewLoginHistoryRepository(db),
		SystemLogRepository:    NewSystemLogRepository(db),
	}
}
