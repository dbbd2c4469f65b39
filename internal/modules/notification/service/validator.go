package service

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/gradenotify/internal/entity"
	assessmentRepo "anoa.com/gradenotify/internal/modules/assessment/repository"
	userRepo "anoa.com/gradenotify/internal/modules/user/repository"
	appvalidator "anoa.com/gradenotify/pkg/validator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Validator turns Params into a notification ready to persist. It reads
// the user directory and assessment store but never writes.
type Validator struct {
	validate    *validator.Validate
	users       userRepo.UserRepository
	assessments assessmentRepo.AssessmentRepository
}

func NewValidator(users userRepo.UserRepository, assessments assessmentRepo.AssessmentRepository) *Validator {
	return &Validator{
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		users:       users,
		assessments: assessments,
	}
}

func (v *Validator) Validate(ctx context.Context, params Params) (*entity.Notification, error) {
	if params == nil {
		return nil, &ValidationError{Field: "role", Message: "role is not included in the list", Err: ErrInvalidRole}
	}

	if err := v.validate.StructCtx(ctx, params); err != nil {
		return nil, structError(err)
	}

	notification := params.notification()
	if err := v.checkReferences(ctx, notification); err != nil {
		return nil, err
	}
	return notification, nil
}

func structError(err error) error {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return err
	}

	first := fieldErrors[0]
	cause := ErrInvalidValue
	if first.Tag() == "required" {
		cause = ErrMissingField
	}
	return &ValidationError{
		Field:   appvalidator.FieldName(first.Field()),
		Message: appvalidator.FormatValidationError(err),
		Err:     cause,
	}
}

type reference struct {
	field  string
	id     *uuid.UUID
	exists func(context.Context, uuid.UUID) (bool, error)
}

func (v *Validator) checkReferences(ctx context.Context, n *entity.Notification) error {
	userID := n.UserID
	refs := []reference{
		{field: "user_id", id: &userID, exists: v.users.Exists},
		{field: "assessment_id", id: n.AssessmentID, exists: v.assessments.AssessmentExists},
		{field: "submission_id", id: n.SubmissionID, exists: v.assessments.SubmissionExists},
		{field: "question_id", id: n.QuestionID, exists: v.assessments.QuestionExists},
	}

	for _, ref := range refs {
		if ref.id == nil {
			continue
		}
		ok, err := ref.exists(ctx, *ref.id)
		if err != nil {
			return fmt.Errorf("check %s: %w", ref.field, err)
		}
		if !ok {
			return &ValidationError{
				Field:   ref.field,
				Message: fmt.Sprintf("%s must exist", ref.field),
				Err:     ErrForeignKeyViolation,
			}
		}
	}
	return nil
}
