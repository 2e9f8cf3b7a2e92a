package service

import "errors"

// Error categories. Every error returned by this package that a caller can act
// on matches exactly one of them through errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrUpstream     = errors.New("upstream service failed")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

// Error carries a client-facing message, its category and an optional cause
// that is logged but never shown to clients.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

func newError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func validationError(message string) error {
	return newError(ErrValidation, message)
}

func upstreamError(message string, cause error) error {
	return &Error{Kind: ErrUpstream, Message: message, Cause: cause}
}

var (
	ErrGalleryEmptyUpdate = newError(ErrValidation, "No gallery updates provided")
	ErrGalleryConflict    = newError(ErrConflict, "Gallery item was modified by another request, reload and try again")

	ErrProfileNotFound    = newError(ErrNotFound, "Profile not found")
	ErrProfileEmptyUpdate = newError(ErrValidation, "Update payload cannot be empty")
	ErrProfileConflict    = newError(ErrConflict, "Profile was modified by another request, reload and try again")
	ErrProfileExists      = newError(ErrConflict, "A profile with that id already exists")
	ErrProfilePhotoNeeded = newError(ErrValidation, "Profile photo is required")

	ErrSpeakerNotFound    = newError(ErrNotFound, "Speaker not found")
	ErrSpeakerEmptyUpdate = newError(ErrValidation, "Update payload cannot be empty")

	ErrBookingNotFound      = newError(ErrNotFound, "No booking found with that ID")
	ErrBookingStatusInvalid = newError(ErrValidation, "Please provide a valid status (pending, confirmed, or declined)")

	ErrContactNotFound = newError(ErrNotFound, "No contact message found with that ID")

	ErrUserNotFound         = newError(ErrNotFound, "No user found with that ID")
	ErrUserEmailNotFound    = newError(ErrNotFound, "There is no user with that email address")
	ErrUserEmailTaken       = newError(ErrConflict, "Email address is already in use")
	ErrPasswordUpdateDenied = newError(ErrValidation, "This route is not for password updates")
	ErrPasswordTooShort     = newError(ErrValidation, "Password must be at least 8 characters long")
	ErrInvalidCredentials   = newError(ErrUnauthorized, "Incorrect email or password")
	ErrMissingCredentials   = newError(ErrValidation, "Please provide email and password")
	ErrResetTokenInvalid    = newError(ErrValidation, "Token is invalid or has expired")
	ErrTokenInvalid         = newError(ErrUnauthorized, "Invalid token. Please log in again")
	ErrUserInactive         = newError(ErrUnauthorized, "The user belonging to this token no longer exists")
)
