package apperrors

import "errors"

var (
	ErrEventNotFound         = errors.New("event not found")
	ErrUserNotFound          = errors.New("user not found")
	ErrRegistrationNotFound  = errors.New("registration not found")
	ErrPresenterNotFound     = errors.New("presenter not found")
	ErrEventTypeNotFound     = errors.New("event type not found")
	ErrLinkTypeNotFound      = errors.New("link type not found")
	ErrSyncOperationNotFound = errors.New("sync operation not found")

	// 名額不足
	ErrSeatsExhausted    = errors.New("no seats remaining for this event")
	ErrAlreadyRegistered = errors.New("user already registered for this event")
	ErrEventInactive     = errors.New("event is not open for registration")

	ErrInvalidInput        = errors.New("invalid input")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrSyncFailure         = errors.New("calendar sync failed")
	ErrInternalServerError = errors.New("internal server error")
)
