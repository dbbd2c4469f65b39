package service

import (
	"errors"
	"fmt"

	"anoa.com/gradenotify/pkg/apperror"
	"github.com/google/uuid"
)

var (
	ErrInvalidRole            = errors.New("invalid role")
	ErrMissingField           = errors.New("missing required field")
	ErrInvalidValue           = errors.New("invalid value")
	ErrForeignKeyViolation    = errors.New("foreign key violation")
	ErrMissingGroupAssignment = errors.New("student has no group assignment")
)

// ValidationError rejects a candidate notification. Err is one of
// ErrInvalidRole, ErrMissingField, ErrInvalidValue or ErrForeignKeyViolation.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func (e *ValidationError) Is(target error) bool {
	return target == apperror.ErrInvalidInput
}

// NotFoundError is returned when a notification does not exist or belongs to someone else.
type NotFoundError struct {
	NotificationID uuid.UUID
	UserID         uuid.UUID
}

func (e *NotFoundError) Error() string {
	return "Notification does not exist or does not belong to user"
}

func (e *NotFoundError) Is(target error) bool {
	return target == apperror.ErrNotFound
}

type MissingGroupAssignmentError struct {
	StudentID uuid.UUID
}

func (e *MissingGroupAssignmentError) Error() string {
	return fmt.Sprintf("student %s has no group leader to notify", e.StudentID)
}

func (e *MissingGroupAssignmentError) Is(target error) bool {
	return target == ErrMissingGroupAssignment || target == apperror.ErrUnprocessable
}

// BatchError aborts a broadcast. UserID is the first recipient that failed;
// nothing from the batch was persisted.
type BatchError struct {
	AssessmentID uuid.UUID
	UserID       uuid.UUID
	Err          error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("broadcast for assessment %s aborted at user %s: %v", e.AssessmentID, e.UserID, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}
