package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

func FormatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		for _, fieldError := range validationErrors {
			messages = append(messages, FieldErrorMessage(fieldError))
		}
		return strings.Join(messages, "; ")
	}
	return err.Error()
}

// FieldErrorMessage renders one failed rule using the column name of the field.
func FieldErrorMessage(fe validator.FieldError) string {
	field := FieldName(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s can't be blank", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "uuid":
		return fmt.Sprintf("%s must be a valid UUID", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func FieldName(field string) string {
	fieldNames := map[string]string{
		"Type":         "type",
		"Read":         "read",
		"Role":         "role",
		"UserID":       "user_id",
		"AssessmentID": "assessment_id",
		"SubmissionID": "submission_id",
		"QuestionID":   "question_id",
	}

	if name, ok := fieldNames[field]; ok {
		return name
	}
	return field
}
