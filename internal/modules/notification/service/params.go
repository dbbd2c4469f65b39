package service

import (
	"anoa.com/gradenotify/internal/entity"
	"github.com/google/uuid"
)

// Params is a candidate notification for one recipient. The variant encodes
// the recipient's role and therefore which foreign key is mandatory:
// StudentParams always carries an assessment, StaffParams always a submission.
type Params interface {
	Role() string
	notification() *entity.Notification
}

type StudentParams struct {
	Type         entity.NotificationType `validate:"required,oneof=new deadline autograded graded manually_graded submitted"`
	UserID       uuid.UUID               `validate:"required"`
	AssessmentID uuid.UUID               `validate:"required"`
	SubmissionID *uuid.UUID
	QuestionID   *uuid.UUID
	Read         bool
}

func (StudentParams) Role() string { return entity.RoleStudent }

func (p StudentParams) notification() *entity.Notification {
	assessmentID := p.AssessmentID
	return &entity.Notification{
		Type:         p.Type,
		Read:         p.Read,
		UserID:       p.UserID,
		AssessmentID: &assessmentID,
		SubmissionID: p.SubmissionID,
		QuestionID:   p.QuestionID,
	}
}

type StaffParams struct {
	Type         entity.NotificationType `validate:"required,oneof=new deadline autograded graded manually_graded submitted"`
	UserID       uuid.UUID               `validate:"required"`
	SubmissionID uuid.UUID               `validate:"required"`
	AssessmentID *uuid.UUID
	QuestionID   *uuid.UUID
	Read         bool
}

func (StaffParams) Role() string { return entity.RoleStaff }

func (p StaffParams) notification() *entity.Notification {
	submissionID := p.SubmissionID
	return &entity.Notification{
		Type:         p.Type,
		Read:         p.Read,
		UserID:       p.UserID,
		AssessmentID: p.AssessmentID,
		SubmissionID: &submissionID,
		QuestionID:   p.QuestionID,
	}
}

// ParamsForRole rebuilds the variant for an existing notification as seen by
// a caller acting in role. This is the only place a role string is branched on.
func ParamsForRole(role string, n *entity.Notification) (Params, error) {
	switch role {
	case entity.RoleStudent:
		if n.AssessmentID == nil {
			return nil, &ValidationError{Field: "assessment_id", Message: "assessment_id can't be blank", Err: ErrMissingField}
		}
		return StudentParams{
			Type:         n.Type,
			UserID:       n.UserID,
			AssessmentID: *n.AssessmentID,
			SubmissionID: n.SubmissionID,
			QuestionID:   n.QuestionID,
			Read:         n.Read,
		}, nil
	case entity.RoleStaff:
		if n.SubmissionID == nil {
			return nil, &ValidationError{Field: "submission_id", Message: "submission_id can't be blank", Err: ErrMissingField}
		}
		return StaffParams{
			Type:         n.Type,
			UserID:       n.UserID,
			SubmissionID: *n.SubmissionID,
			AssessmentID: n.AssessmentID,
			QuestionID:   n.QuestionID,
			Read:         n.Read,
		}, nil
	default:
		return nil, &ValidationError{Field: "role", Message: "role is not included in the list", Err: ErrInvalidRole}
	}
}
