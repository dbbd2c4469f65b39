package service

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/gradenotify/internal/entity"
	assessmentRepo "anoa.com/gradenotify/internal/modules/assessment/repository"
	notifRepo "anoa.com/gradenotify/internal/modules/notification/repository"
	userRepo "anoa.com/gradenotify/internal/modules/user/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type NotificationService interface {
	FetchUnread(ctx context.Context, userID uuid.UUID) ([]entity.Notification, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	Acknowledge(ctx context.Context, notificationID, userID uuid.UUID, role string) (*entity.Notification, error)
	AcknowledgeAll(ctx context.Context, userID uuid.UUID) (int64, error)

	DispatchOnAnswerGraded(ctx context.Context, answerID uuid.UUID) (*DispatchResult, error)
	DispatchOnSubmissionGraded(ctx context.Context, submissionID uuid.UUID) (*DispatchResult, error)
	DispatchOnSubmissionSubmitted(ctx context.Context, submissionID uuid.UUID) (*DispatchResult, error)

	BroadcastNewAssessment(ctx context.Context, assessmentID uuid.UUID) (*BatchResult, error)
	BroadcastDeadlineReminder(ctx context.Context, assessmentID uuid.UUID) (*BatchResult, error)
}

// DispatchResult is the outcome of a single-recipient trigger. Completed is
// false when grading is still in progress; Notification is nil in that case.
type DispatchResult struct {
	SubmissionID uuid.UUID            `json:"submission_id"`
	Completed    bool                 `json:"completed"`
	Notification *entity.Notification `json:"notification,omitempty"`
}

type BatchResult struct {
	AssessmentID uuid.UUID `json:"assessment_id"`
	Created      int       `json:"created"`
}

type notificationService struct {
	repo        notifRepo.NotificationRepository
	users       userRepo.UserRepository
	assessments assessmentRepo.AssessmentRepository
	validator   *Validator
	aggregator  *Aggregator
	publisher   Publisher
	logger      *zap.Logger
}

// NewNotificationService wires the notification core. publisher may be nil,
// in which case nothing is announced after a notification is stored.
func NewNotificationService(
	repo notifRepo.NotificationRepository,
	users userRepo.UserRepository,
	assessments assessmentRepo.AssessmentRepository,
	publisher Publisher,
	logger *zap.Logger,
) NotificationService {
	return &notificationService{
		repo:        repo,
		users:       users,
		assessments: assessments,
		validator:   NewValidator(users, assessments),
		aggregator:  NewAggregator(assessments),
		publisher:   publisher,
		logger:      logger,
	}
}

func (s *notificationService) FetchUnread(ctx context.Context, userID uuid.UUID) ([]entity.Notification, error) {
	return s.repo.FindUnreadByUserID(ctx, userID)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *notificationService) Acknowledge(ctx context.Context, notificationID, userID uuid.UUID, role string) (*entity.Notification, error) {
	notification, err := s.repo.FindByIDForUser(ctx, notificationID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{NotificationID: notificationID, UserID: userID}
		}
		return nil, err
	}

	params, err := ParamsForRole(role, notification)
	if err != nil {
		return nil, err
	}
	params = markRead(params)

	if _, err := s.validator.Validate(ctx, params); err != nil {
		return nil, err
	}

	if err := s.repo.MarkAsRead(ctx, notification); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{NotificationID: notificationID, UserID: userID}
		}
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	notification.Read = true

	return notification, nil
}

func (s *notificationService) AcknowledgeAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func markRead(params Params) Params {
	switch p := params.(type) {
	case StudentParams:
		p.Read = true
		return p
	case StaffParams:
		p.Read = true
		return p
	}
	return params
}

func (s *notificationService) announce(ctx context.Context, notification *entity.Notification) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, notification); err != nil {
		s.logger.Warn("failed to announce notification",
			zap.String("notification_id", notification.ID.String()),
			zap.String("user_id", notification.UserID.String()),
			zap.Error(err),
		)
	}
}
