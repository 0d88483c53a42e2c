package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is the base interface for all application errors
type AppError interface {
	error
	HTTPStatus() int
	Code() string
}

// NotFoundError represents a resource that was not found
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s with ID '%s' not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) HTTPStatus() int {
	return http.StatusNotFound
}

func (e *NotFoundError) Code() string {
	return "NOT_FOUND"
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// InvalidConfigurationError represents a broken workflow definition
// (e.g. a flow with zero active steps). These are data-quality defects:
// fatal for the operation, and worth logging loudly.
type InvalidConfigurationError struct {
	Resource string
	Detail   string
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration on %s: %s", e.Resource, e.Detail)
}

func (e *InvalidConfigurationError) HTTPStatus() int {
	return http.StatusUnprocessableEntity
}

func (e *InvalidConfigurationError) Code() string {
	return "INVALID_CONFIGURATION"
}

// NewInvalidConfigurationError creates a new InvalidConfigurationError
func NewInvalidConfigurationError(resource, detail string) *InvalidConfigurationError {
	return &InvalidConfigurationError{Resource: resource, Detail: detail}
}

// InvalidTransitionError represents a transition request for which no next
// step could be resolved.
type InvalidTransitionError struct {
	StepID string
	Key    string
}

func (e *InvalidTransitionError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("no transition from step '%s' for key '%s'", e.StepID, e.Key)
	}
	return fmt.Sprintf("no transition available from step '%s'", e.StepID)
}

func (e *InvalidTransitionError) HTTPStatus() int {
	return http.StatusBadRequest
}

func (e *InvalidTransitionError) Code() string {
	return "INVALID_TRANSITION"
}

// NewInvalidTransitionError creates a new InvalidTransitionError
func NewInvalidTransitionError(stepID, key string) *InvalidTransitionError {
	return &InvalidTransitionError{StepID: stepID, Key: key}
}

// BlockedError signals that a parallel step still has pending signers.
// It is a "not yet" condition, not a failure: callers can poll or show
// the remaining count.
type BlockedError struct {
	StepID  string
	Pending int
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("step '%s' is blocked: %d signature(s) still pending", e.StepID, e.Pending)
}

func (e *BlockedError) HTTPStatus() int {
	return http.StatusConflict
}

func (e *BlockedError) Code() string {
	return "BLOCKED"
}

// NewBlockedError creates a new BlockedError
func NewBlockedError(stepID string, pending int) *BlockedError {
	return &BlockedError{StepID: stepID, Pending: pending}
}

// ValidationError represents invalid input
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) HTTPStatus() int {
	return http.StatusBadRequest
}

func (e *ValidationError) Code() string {
	return "VALIDATION_ERROR"
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// UnauthorizedError represents authentication failures
type UnauthorizedError struct {
	Reason string
}

func (e *UnauthorizedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unauthorized: %s", e.Reason)
	}
	return "unauthorized"
}

func (e *UnauthorizedError) HTTPStatus() int {
	return http.StatusUnauthorized
}

func (e *UnauthorizedError) Code() string {
	return "UNAUTHORIZED"
}

// NewUnauthorizedError creates a new UnauthorizedError
func NewUnauthorizedError(reason string) *UnauthorizedError {
	return &UnauthorizedError{Reason: reason}
}

// InternalError represents unexpected server errors
type InternalError struct {
	Message string
	Cause   error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("internal error: %s (caused by: %v)", e.Message, e.Cause)
	}
	return fmt.Sprintf("internal error: %s", e.Message)
}

func (e *InternalError) HTTPStatus() int {
	return http.StatusInternalServerError
}

func (e *InternalError) Code() string {
	return "INTERNAL_ERROR"
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

// NewInternalError creates a new InternalError
func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{Message: message, Cause: cause}
}

// Helper functions for error checking

// IsNotFound checks if an error is a NotFoundError
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}

// IsInvalidConfiguration checks if an error is an InvalidConfigurationError
func IsInvalidConfiguration(err error) bool {
	var invalid *InvalidConfigurationError
	return errors.As(err, &invalid)
}

// IsInvalidTransition checks if an error is an InvalidTransitionError
func IsInvalidTransition(err error) bool {
	var invalid *InvalidTransitionError
	return errors.As(err, &invalid)
}

// IsBlocked checks if an error is a BlockedError
func IsBlocked(err error) bool {
	var blocked *BlockedError
	return errors.As(err, &blocked)
}

// IsValidation checks if an error is a ValidationError
func IsValidation(err error) bool {
	var validation *ValidationError
	return errors.As(err, &validation)
}

// GetHTTPStatus returns the HTTP status code for an error
// Returns 500 if the error doesn't implement AppError
func GetHTTPStatus(err error) int {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// GetErrorCode returns the error code for an error
// Returns "UNKNOWN_ERROR" if the error doesn't implement AppError
func GetErrorCode(err error) string {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.Code()
	}
	return "UNKNOWN_ERROR"
}
