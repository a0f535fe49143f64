package errs

import (
	"fmt"
)

type ErrorMessage struct {
	Message string
}

func (e *ErrorMessage) Error() string { return e.Message }

type NotFoundError struct {
	ErrorMessage
}

type AlreadyExistsError struct {
	ErrorMessage
}

type ValidationError struct {
	ErrorMessage
}

// ConfigError is a widget or provider misconfiguration the user can fix.
type ConfigError struct {
	ErrorMessage
}

// TransportError is a network failure before any HTTP status was received.
type TransportError struct {
	ErrorMessage
	Err error
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPError is a non-2xx upstream response.
type HTTPError struct {
	ErrorMessage
	Status     int
	StatusText string
}

// ParseError means the upstream body was not usable JSON.
type ParseError struct {
	ErrorMessage
	Err error
}

func (e *ParseError) Unwrap() error { return e.Err }

// ProviderError carries an error message a data provider returned in an
// otherwise successful response body.
type ProviderError struct {
	ErrorMessage
	Marker string
}

// SupersededError is returned to a debounced request that lost to a newer one.
type SupersededError struct {
	ErrorMessage
}

type DatabaseError struct {
	ErrorMessage
	Operation string
	Err       error
}

func (e *DatabaseError) Unwrap() error { return e.Err }

type ExternalServiceError struct {
	ErrorMessage
	Service   string
	Transient bool
	Err       error
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

type EncryptionError struct {
	ErrorMessage
	Err error
}

func (e *EncryptionError) Unwrap() error { return e.Err }

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewAlreadyExistsError(message string) *AlreadyExistsError {
	return &AlreadyExistsError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewConfigError(message string) *ConfigError {
	return &ConfigError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewTransportError(err error) *TransportError {
	return &TransportError{
		ErrorMessage: ErrorMessage{Message: fmt.Sprintf("request failed: %v", err)},
		Err:          err,
	}
}

func NewHTTPError(status int, statusText string) *HTTPError {
	return &HTTPError{
		ErrorMessage: ErrorMessage{Message: fmt.Sprintf("API request failed: %s (%d)", statusText, status)},
		Status:       status,
		StatusText:   statusText,
	}
}

func NewParseError(message string, err error) *ParseError {
	return &ParseError{
		ErrorMessage: ErrorMessage{Message: message},
		Err:          err,
	}
}

func NewProviderError(marker, message string) *ProviderError {
	return &ProviderError{
		ErrorMessage: ErrorMessage{Message: message},
		Marker:       marker,
	}
}

func NewSupersededError() *SupersededError {
	return &SupersededError{
		ErrorMessage: ErrorMessage{Message: "request superseded by a newer one"},
	}
}

func NewDatabaseError(operation, message string, err error) *DatabaseError {
	return &DatabaseError{
		ErrorMessage: ErrorMessage{Message: message},
		Operation:    operation,
		Err:          err,
	}
}

func NewExternalServiceError(service, message string, transient bool, err error) *ExternalServiceError {
	return &ExternalServiceError{
		ErrorMessage: ErrorMessage{Message: message},
		Service:      service,
		Transient:    transient,
		Err:          err,
	}
}

func NewEncryptionError(message string, err error) *EncryptionError {
	return &EncryptionError{
		ErrorMessage: ErrorMessage{Message: message},
		Err:          err,
	}
}
