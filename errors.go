package quarry

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for common operations.
var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("quarry: row not found")

	// ErrNoPrimaryKey is returned when an identity-dependent operation is
	// invoked on a model configured without a primary key.
	ErrNoPrimaryKey = errors.New("quarry: model has no primary key")

	// ErrValidation is returned by Save when the record's validator
	// rejects the record. No SQL is issued in that case.
	ErrValidation = errors.New("quarry: validation failed")
)

// UsageError represents programmer misuse of the API, such as calling
// Last on a dataset with no order set, or destroying an unbound dataset.
type UsageError struct {
	msg string
}

// Error returns the error string.
func (e *UsageError) Error() string {
	return fmt.Sprintf("quarry: %s", e.msg)
}

// NewUsageError returns a new UsageError with the given message.
func NewUsageError(format string, args ...any) *UsageError {
	return &UsageError{msg: fmt.Sprintf(format, args...)}
}

// IsUsageError returns true if the error is a UsageError.
func IsUsageError(err error) bool {
	if err == nil {
		return false
	}
	var e *UsageError
	return errors.As(err, &e)
}

// IntegrityError represents a persistence-identity failure, such as a
// missing primary key value on an operation that requires one.
type IntegrityError struct {
	model string
	op    string
}

// Error returns the error string.
func (e *IntegrityError) Error() string {
	return fmt.Sprintf("quarry: %s on %s requires a primary key", e.op, e.model)
}

// Is reports whether the target error matches IntegrityError.
// This allows errors.Is(integrityErr, ErrNoPrimaryKey) to return true.
func (e *IntegrityError) Is(err error) bool {
	return err == ErrNoPrimaryKey
}

// NewIntegrityError returns a new IntegrityError for the given model and operation.
func NewIntegrityError(model, op string) *IntegrityError {
	return &IntegrityError{model: model, op: op}
}

// IsIntegrityError returns true if the error is an IntegrityError.
func IsIntegrityError(err error) bool {
	if err == nil {
		return false
	}
	var e *IntegrityError
	return errors.As(err, &e) || errors.Is(err, ErrNoPrimaryKey)
}

// NotFoundError represents an error when a row is not found.
type NotFoundError struct {
	table string
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("quarry: no row found in %s", e.table)
}

// Is reports whether the target error matches NotFoundError.
// This allows errors.Is(notFoundErr, ErrNotFound) to return true.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Table returns the table the lookup ran against.
func (e *NotFoundError) Table() string {
	return e.table
}

// NewNotFoundError returns a new NotFoundError for the given table.
func NewNotFoundError(table string) *NotFoundError {
	return &NotFoundError{table: table}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// ValidationError represents a soft validation veto raised by a record's
// validator. Save returns it without issuing any SQL; ForceSave never does.
type ValidationError struct {
	Model string // Model name
	Err   error  // Underlying validator error
}

// Error returns the error string.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("quarry: validation failed for %s: %s", e.Model, e.Err)
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is reports whether the target error matches ValidationError.
// This allows errors.Is(validationErr, ErrValidation) to return true.
func (e *ValidationError) Is(err error) bool {
	return err == ErrValidation
}

// NewValidationError returns a new ValidationError for the given model.
func NewValidationError(model string, err error) *ValidationError {
	return &ValidationError{Model: model, Err: err}
}

// IsValidationError returns true if the error is a ValidationError.
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	var e *ValidationError
	return errors.As(err, &e) || errors.Is(err, ErrValidation)
}
