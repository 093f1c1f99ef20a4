package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/mravi/bloodconnect/internal/app/models/dto"
	"github.com/mravi/bloodconnect/internal/pkg/apperrors"
)

// errorMessage extracts the user-facing message from an error,
// preferring the CustomError message when one is attached.
func errorMessage(err error, fallback string) string {
	var custom *apperrors.CustomError
	if errors.As(err, &custom) && custom.Message != "" {
		return custom.Message
	}
	return fallback
}

// errorDetails extracts structured details from a CustomError, if any
func errorDetails(err error) map[string]interface{} {
	var custom *apperrors.CustomError
	if errors.As(err, &custom) {
		return custom.Details
	}
	return nil
}

func respond(c *gin.Context, status int, code dto.ErrorCode, err error, fallback string) {
	detail := dto.NewErrorDetail(code, errorMessage(err, fallback))
	if details := errorDetails(err); details != nil {
		detail = detail.WithDetails(details)
	}
	c.JSON(status, dto.APIResponse{Error: detail})
}

// HandleAPIError maps service errors to API responses. Controllers call
// it for every error that escapes a service, so status codes and error
// codes stay consistent across the API.
func HandleAPIError(c *gin.Context, err error) {
	switch {
	// 404
	case apperrors.Is(err, apperrors.ErrResourceNotFound,
		apperrors.ErrRequestNotFound,
		apperrors.ErrUserNotFound,
		apperrors.ErrCertificateNotFound):
		respond(c, 404, dto.ErrorCodeResourceNotFound, err, "Resource not found")

	// 401
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		respond(c, 401, dto.ErrorCodeInvalidCredentials, err, "Invalid credentials")
	case errors.Is(err, apperrors.ErrTokenExpired):
		respond(c, 401, dto.ErrorCodeExpiredToken, err, "Token expired")
	case errors.Is(err, apperrors.ErrTokenInvalid):
		respond(c, 401, dto.ErrorCodeInvalidToken, err, "Invalid token")
	case errors.Is(err, apperrors.ErrSessionExpired):
		respond(c, 401, dto.ErrorCodeSessionExpired, err, "Session expired")

	// 403
	case errors.Is(err, apperrors.ErrPermissionDenied):
		respond(c, 403, dto.ErrorCodeForbidden, err, "Permission denied")

	// 409
	case errors.Is(err, apperrors.ErrEmailAlreadyExists):
		respond(c, 409, dto.ErrorCodeResourceAlreadyExists, err, "Email already exists")
	case errors.Is(err, apperrors.ErrAlreadyOptedIn):
		respond(c, 409, dto.ErrorCodeResourceAlreadyExists, err, "You have already opted in to this request")
	case errors.Is(err, apperrors.ErrCertificateExists):
		respond(c, 409, dto.ErrorCodeResourceAlreadyExists, err, "Certificate request already exists for this donation")
	case errors.Is(err, apperrors.ErrConflict):
		respond(c, 409, dto.ErrorCodeResourceAlreadyExists, err, "Conflict")

	// 400, lifecycle state violations
	case errors.Is(err, apperrors.ErrRequestNotPending):
		respond(c, 400, dto.ErrorCodeInvalidState, err, "Request is not in pending status")
	case errors.Is(err, apperrors.ErrRequestNotApproved):
		respond(c, 400, dto.ErrorCodeInvalidState, err, "Request is not in approved status")
	case errors.Is(err, apperrors.ErrDonorNotOptedIn):
		respond(c, 400, dto.ErrorCodeInvalidState, err, "Donor has not opted in to this request")
	case errors.Is(err, apperrors.ErrBloodGroupMismatch):
		respond(c, 400, dto.ErrorCodeInvalidState, err, "Your blood group does not match this request")
	case errors.Is(err, apperrors.ErrNoDonorAssigned):
		respond(c, 400, dto.ErrorCodeInvalidState, err, "No donor has been assigned to this request")
	case errors.Is(err, apperrors.ErrCertificateNotPending):
		respond(c, 400, dto.ErrorCodeInvalidState, err, "Certificate is not in pending status")
	case errors.Is(err, apperrors.ErrCertificateNotApproved):
		respond(c, 400, dto.ErrorCodeInvalidState, err, "Certificate must be approved before generation")
	case errors.Is(err, apperrors.ErrCertificateNotGenerated):
		respond(c, 400, dto.ErrorCodeInvalidState, err, "Certificate has not been generated yet")

	// 400, donor eligibility
	case errors.Is(err, apperrors.ErrDonorNotEligible):
		respond(c, 400, dto.ErrorCodeNotEligible, err, "Donor is not eligible to donate")

	// 400, validation and malformed input
	case errors.Is(err, apperrors.ErrValidationFailed):
		respond(c, 400, dto.ErrorCodeValidationFailed, err, "Validation failed")
	case errors.Is(err, apperrors.ErrBadRequest):
		respond(c, 400, dto.ErrorCodeResourceInvalid, err, "Bad request")

	default:
		respond(c, 500, dto.ErrorCodeInternalServer, nil, "Internal server error")
	}
}
