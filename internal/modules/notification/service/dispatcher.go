package service

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/gradenotify/internal/entity"
	"anoa.com/gradenotify/pkg/apperror"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DispatchOnAnswerGraded notifies the student once every answer of the
// submission owning answerID has left the autograding queue.
func (s *notificationService) DispatchOnAnswerGraded(ctx context.Context, answerID uuid.UUID) (*DispatchResult, error) {
	answer, err := s.assessments.FindAnswer(ctx, answerID)
	if err != nil {
		return nil, notFound("answer", err)
	}

	submission, err := s.assessments.FindSubmission(ctx, answer.SubmissionID)
	if err != nil {
		return nil, notFound("submission", err)
	}

	return s.dispatchGraded(ctx, Autograding, entity.NotificationAutograded, submission)
}

// DispatchOnSubmissionGraded notifies the student once a grader has been
// assigned to as many answers as the assessment has questions.
func (s *notificationService) DispatchOnSubmissionGraded(ctx context.Context, submissionID uuid.UUID) (*DispatchResult, error) {
	submission, err := s.assessments.FindSubmission(ctx, submissionID)
	if err != nil {
		return nil, notFound("submission", err)
	}

	return s.dispatchGraded(ctx, ManualGrading, entity.NotificationGraded, submission)
}

// DispatchOnSubmissionSubmitted notifies the leader of the submitting
// student's group.
func (s *notificationService) DispatchOnSubmissionSubmitted(ctx context.Context, submissionID uuid.UUID) (*DispatchResult, error) {
	submission, err := s.assessments.FindSubmission(ctx, submissionID)
	if err != nil {
		return nil, notFound("submission", err)
	}

	group, err := s.users.FindGroupByUserID(ctx, submission.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &MissingGroupAssignmentError{StudentID: submission.StudentID}
		}
		return nil, err
	}
	if group.LeaderID == uuid.Nil {
		return nil, &MissingGroupAssignmentError{StudentID: submission.StudentID}
	}

	assessmentID := submission.AssessmentID
	notification, err := s.persist(ctx, StaffParams{
		Type:         entity.NotificationSubmitted,
		UserID:       group.LeaderID,
		SubmissionID: submission.ID,
		AssessmentID: &assessmentID,
	})
	if err != nil {
		return nil, err
	}

	return &DispatchResult{SubmissionID: submission.ID, Completed: true, Notification: notification}, nil
}

func (s *notificationService) dispatchGraded(ctx context.Context, kind GradingKind, notificationType entity.NotificationType, submission *entity.Submission) (*DispatchResult, error) {
	complete, err := s.aggregator.Check(ctx, kind, submission)
	if err != nil {
		return nil, err
	}
	if !complete {
		s.logger.Debug("grading not complete",
			zap.String("kind", kind.String()),
			zap.String("submission_id", submission.ID.String()),
		)
		return &DispatchResult{SubmissionID: submission.ID, Completed: false}, nil
	}

	submissionID := submission.ID
	notification, err := s.persist(ctx, StudentParams{
		Type:         notificationType,
		UserID:       submission.StudentID,
		AssessmentID: submission.AssessmentID,
		SubmissionID: &submissionID,
	})
	if err != nil {
		return nil, err
	}

	return &DispatchResult{SubmissionID: submission.ID, Completed: true, Notification: notification}, nil
}

func (s *notificationService) persist(ctx context.Context, params Params) (*entity.Notification, error) {
	notification, err := s.validator.Validate(ctx, params)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}

	s.announce(ctx, notification)
	return notification, nil
}

func notFound(what string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s not found: %w", what, apperror.ErrNotFound)
	}
	return err
}
