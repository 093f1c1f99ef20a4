package models

// RoleType represents the user role
type RoleType string

const (
	RoleAdmin   RoleType = "admin"
	RoleStudent RoleType = "student"
)

// BloodGroup represents an ABO/Rh blood group
type BloodGroup string

const (
	BloodGroupAPositive  BloodGroup = "A+"
	BloodGroupANegative  BloodGroup = "A-"
	BloodGroupBPositive  BloodGroup = "B+"
	BloodGroupBNegative  BloodGroup = "B-"
	BloodGroupABPositive BloodGroup = "AB+"
	BloodGroupABNegative BloodGroup = "AB-"
	BloodGroupOPositive  BloodGroup = "O+"
	BloodGroupONegative  BloodGroup = "O-"
)

// AllBloodGroups lists every accepted blood group value
var AllBloodGroups = []BloodGroup{
	BloodGroupAPositive, BloodGroupANegative,
	BloodGroupBPositive, BloodGroupBNegative,
	BloodGroupABPositive, BloodGroupABNegative,
	BloodGroupOPositive, BloodGroupONegative,
}

// IsValidBloodGroup checks whether the value is an accepted blood group
func IsValidBloodGroup(value string) bool {
	for _, bg := range AllBloodGroups {
		if string(bg) == value {
			return true
		}
	}
	return false
}

// UrgencyLevel represents how urgent a blood request is
type UrgencyLevel string

const (
	UrgencyLow      UrgencyLevel = "low"
	UrgencyMedium   UrgencyLevel = "medium"
	UrgencyHigh     UrgencyLevel = "high"
	UrgencyCritical UrgencyLevel = "critical"
)

// IsValidUrgency checks whether the value is an accepted urgency level
func IsValidUrgency(value string) bool {
	switch UrgencyLevel(value) {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical:
		return true
	}
	return false
}

// RequestStatus represents the lifecycle state of a blood request
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusApproved  RequestStatus = "approved"
	RequestStatusRejected  RequestStatus = "rejected"
	RequestStatusFulfilled RequestStatus = "fulfilled"
)

// CertificateStatus represents the lifecycle state of a donation certificate
type CertificateStatus string

const (
	CertificateStatusPending   CertificateStatus = "pending"
	CertificateStatusApproved  CertificateStatus = "approved"
	CertificateStatusGenerated CertificateStatus = "generated"
)

// NotificationType identifies the lifecycle event a notification reports
type NotificationType string

const (
	NotificationRequestCreated    NotificationType = "request_created"
	NotificationRequestApproved   NotificationType = "request_approved"
	NotificationStudentOptedIn    NotificationType = "student_opted_in"
	NotificationDonorAssigned     NotificationType = "donor_assigned"
	NotificationDonationCompleted NotificationType = "donation_completed"
)

// LogLevel values stored in system log rows
const (
	LogLevelInfo  = "INFO"
	LogLevelWarn  = "WARN"
	LogLevelError = "ERROR"
	LogLevelDebug = "DEBUG"
)
