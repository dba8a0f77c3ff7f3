package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the actor lacks the required role or ownership.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidDecision is returned when a moderation decision is not approve or reject.
	ErrInvalidDecision = errors.New("invalid decision")
	// ErrInvalidStatus is returned when a status value is outside its enum.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrAlreadyDecided is returned when the entity is no longer pending.
	ErrAlreadyDecided = errors.New("already decided")
	// ErrTransactionFailed is returned when a multi-write transition could not commit.
	ErrTransactionFailed = errors.New("transaction failed")
	// ErrDuplicateEntity is returned when a uniqueness rule would be broken.
	ErrDuplicateEntity = errors.New("duplicate entity")
	// ErrValidation is returned when input fails domain validation.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAccountNotApproved is returned when a non-admin account is not approved yet.
	ErrAccountNotApproved = errors.New("account is not approved")
	// ErrAccountInactive is returned when the account has been deactivated.
	ErrAccountInactive = errors.New("account is not active")
	// ErrInvalidRefreshToken is returned when refresh token is invalid or expired.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
)

// Entity specific not-found errors. They all match ErrNotFound with errors.Is.
var (
	ErrUserNotFound      = &notFoundError{entity: "user"}
	ErrInstituteNotFound = &notFoundError{entity: "institute"}
	ErrCourseNotFound    = &notFoundError{entity: "course"}
	ErrReviewNotFound    = &notFoundError{entity: "review"}
	ErrEnquiryNotFound   = &notFoundError{entity: "enquiry"}
	ErrFacilityNotFound  = &notFoundError{entity: "facility"}
)

type notFoundError struct {
	entity string
}

func (e *notFoundError) Error() string {
	return e.entity + " not found"
}

func (e *notFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Client errors keep their
// message; anything unrecognised becomes a generic internal error so store
// internals never leak.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "NOT_FOUND")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, err.Error(), "FORBIDDEN")
	case errors.Is(err, ErrInvalidDecision):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_DECISION")
	case errors.Is(err, ErrInvalidStatus):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_STATUS")
	case errors.Is(err, ErrValidation):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
	case errors.Is(err, ErrAlreadyDecided):
		return NewHTTPError(http.StatusConflict, err.Error(), "ALREADY_DECIDED")
	case errors.Is(err, ErrDuplicateEntity):
		return NewHTTPError(http.StatusConflict, err.Error(), "DUPLICATE_ENTITY")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrAccountNotApproved):
		return NewHTTPError(http.StatusForbidden, err.Error(), "ACCOUNT_NOT_APPROVED")
	case errors.Is(err, ErrAccountInactive):
		return NewHTTPError(http.StatusForbidden, err.Error(), "ACCOUNT_INACTIVE")
	case errors.Is(err, ErrInvalidRefreshToken):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_REFRESH_TOKEN")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
