package service

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/gradenotify/internal/entity"
	notifRepo "anoa.com/gradenotify/internal/modules/notification/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BroadcastNewAssessment tells every student that an open assessment is
// available. All notifications are stored together or not at all.
func (s *notificationService) BroadcastNewAssessment(ctx context.Context, assessmentID uuid.UUID) (*BatchResult, error) {
	assessment, err := s.assessments.FindByID(ctx, assessmentID)
	if err != nil {
		return nil, notFound("assessment", err)
	}
	if !assessment.IsOpen() {
		return &BatchResult{AssessmentID: assessmentID}, nil
	}

	students, err := s.users.ListByRole(ctx, entity.RoleStudent)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}

	return s.broadcast(ctx, assessment, entity.NotificationNew, students)
}

// BroadcastDeadlineReminder reminds the students of an open assessment who
// have not submitted anything yet.
func (s *notificationService) BroadcastDeadlineReminder(ctx context.Context, assessmentID uuid.UUID) (*BatchResult, error) {
	assessment, err := s.assessments.FindByID(ctx, assessmentID)
	if err != nil {
		return nil, notFound("assessment", err)
	}
	if !assessment.IsOpen() {
		return &BatchResult{AssessmentID: assessmentID}, nil
	}

	students, err := s.users.ListByRole(ctx, entity.RoleStudent)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	submitterIDs, err := s.assessments.ListSubmitterIDs(ctx, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("list submitters: %w", err)
	}

	submitted := make(map[uuid.UUID]struct{}, len(submitterIDs))
	for _, id := range submitterIDs {
		submitted[id] = struct{}{}
	}

	pending := make([]*entity.User, 0, len(students))
	for _, student := range students {
		if _, ok := submitted[student.ID]; !ok {
			pending = append(pending, student)
		}
	}

	return s.broadcast(ctx, assessment, entity.NotificationDeadline, pending)
}

func (s *notificationService) broadcast(ctx context.Context, assessment *entity.Assessment, notificationType entity.NotificationType, recipients []*entity.User) (*BatchResult, error) {
	batch := make([]notifRepo.StagedInsert, 0, len(recipients))
	owners := make(map[string]uuid.UUID, len(recipients))

	for _, recipient := range recipients {
		notification, err := s.validator.Validate(ctx, StudentParams{
			Type:         notificationType,
			UserID:       recipient.ID,
			AssessmentID: assessment.ID,
		})
		if err != nil {
			return nil, &BatchError{AssessmentID: assessment.ID, UserID: recipient.ID, Err: err}
		}

		key := batchKey(recipient.ID)
		owners[key] = recipient.ID
		batch = append(batch, notifRepo.StagedInsert{Key: key, Notification: notification})
	}

	if err := s.repo.CreateBatch(ctx, batch); err != nil {
		batchErr := &BatchError{AssessmentID: assessment.ID, Err: err}
		var insertErr *notifRepo.InsertError
		if errors.As(err, &insertErr) {
			batchErr.UserID = owners[insertErr.Key]
		}
		return nil, batchErr
	}

	s.logger.Info("broadcast committed",
		zap.String("assessment_id", assessment.ID.String()),
		zap.String("type", string(notificationType)),
		zap.Int("created", len(batch)),
	)

	for _, staged := range batch {
		s.announce(ctx, staged.Notification)
	}

	return &BatchResult{AssessmentID: assessment.ID, Created: len(batch)}, nil
}

func batchKey(userID uuid.UUID) string {
	return "notification_" + userID.String()
}
