package validation

import (
	"regexp"
	"time"

	"github.com/mravi/bloodconnect/internal/app/models"
	"github.com/mravi/bloodconnect/internal/app/models/dto"
)

// Validation rule patterns
var (
	// Email validation pattern
	EmailPattern = `^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`

	// Phone pattern, digits with optional leading + and separators
	PhonePattern = `^\+?[0-9][0-9\s\-]{6,14}$`

	// Password min length
	PasswordMinLength = 8

	// Name validation min/max length
	NameMinLength = 2
	NameMaxLength = 100
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Email *regexp.Regexp
	Phone *regexp.Regexp
}{
	Email: regexp.MustCompile(EmailPattern),
	Phone: regexp.MustCompile(PhonePattern),
}

// String validation
type StringValidation struct {
	Value    string
	MinLen   int
	MaxLen   int
	Required bool
	Pattern  *regexp.Regexp
}

// NewStringValidation creates a new string validation
func NewStringValidation(value string) *StringValidation {
	return &StringValidation{
		Value:    value,
		Required: true,
	}
}

// WithMinLength sets minimum length
func (v *StringValidation) WithMinLength(min int) *StringValidation {
	v.MinLen = min
	return v
}

// WithMaxLength sets maximum length
func (v *StringValidation) WithMaxLength(max int) *StringValidation {
	v.MaxLen = max
	return v
}

// WithPattern sets regex pattern
func (v *StringValidation) WithPattern(pattern *regexp.Regexp) *StringValidation {
	v.Pattern = pattern
	return v
}

// WithRequired sets if field is required
func (v *StringValidation) WithRequired(required bool) *StringValidation {
	v.Required = required
	return v
}

// Validate performs validation
func (v *StringValidation) Validate() bool {
	if v.Required && v.Value == "" {
		return false
	}

	// Skip other validations for empty optional values
	if !v.Required && v.Value == "" {
		return true
	}

	if v.MinLen > 0 && len(v.Value) < v.MinLen {
		return false
	}

	if v.MaxLen > 0 && len(v.Value) > v.MaxLen {
		return false
	}

	if v.Pattern != nil && !v.Pattern.MatchString(v.Value) {
		return false
	}

	return true
}

// ValidateCreateBloodRequest applies the field rules for a new blood
// request and collects every failure, so the caller can return all of
// them in one response.
func ValidateCreateBloodRequest(req *dto.CreateBloodRequest, now time.Time) *dto.ValidationErrors {
	errs := dto.NewValidationErrors()

	if !NewStringValidation(req.RequestorName).WithMinLength(NameMinLength).WithMaxLength(NameMaxLength).Validate() {
		errs.AddError("requestorName", "Requestor name must be between 2 and 100 characters")
	}
	if !NewStringValidation(req.Email).WithPattern(CompiledPatterns.Email).Validate() {
		errs.AddError("email", "A valid email address is required")
	}
	if !NewStringValidation(req.Phone).WithPattern(CompiledPatterns.Phone).Validate() {
		errs.AddError("phone", "A valid phone number is required")
	}
	if !models.IsValidBloodGroup(req.BloodGroup) {
		errs.AddError("bloodGroup", "Blood group must be one of A+, A-, B+, B-, AB+, AB-, O+, O-")
	}
	if req.Units < models.MinRequestUnits || req.Units > models.MaxRequestUnits {
		errs.AddError("units", "Units must be between 1 and 10")
	}
	if !req.DateTime.After(now) {
		errs.AddError("dateTime", "Date and time must be in the future")
	}
	if !NewStringValidation(req.HospitalName).WithMinLength(2).WithMaxLength(200).Validate() {
		errs.AddError("hospitalName", "Hospital name is required")
	}
	if !NewStringValidation(req.Location).WithMinLength(2).WithMaxLength(200).Validate() {
		errs.AddError("location", "Location is required")
	}
	if !models.IsValidUrgency(req.Urgency) {
		errs.AddError("urgency", "Urgency must be one of low, medium, high, critical")
	}

	return errs
}
