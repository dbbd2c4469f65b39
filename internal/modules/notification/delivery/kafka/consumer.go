package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	notifService "anoa.com/gradenotify/internal/modules/notification/service"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	EventAnswerGraded        = "answer.graded"
	EventSubmissionGraded    = "submission.graded"
	EventSubmissionSubmitted = "submission.submitted"
	EventAssessmentPublished = "assessment.published"
	EventAssessmentDeadline  = "assessment.deadline"
)

var ErrUnknownEvent = errors.New("unknown event type")

// GradingEvent is emitted by the grading pipeline and the assessment
// lifecycle. ID is the answer, submission or assessment the event is about.
type GradingEvent struct {
	Type string    `json:"type"`
	ID   uuid.UUID `json:"id"`
}

// MessageReader is the part of *kafka.Reader the consumer relies on.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	reader  MessageReader
	service notifService.NotificationService
	logger  *zap.Logger
}

func NewConsumer(brokers []string, topic, groupID string, service notifService.NotificationService, logger *zap.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return newConsumer(reader, service, logger)
}

func newConsumer(reader MessageReader, service notifService.NotificationService, logger *zap.Logger) *Consumer {
	return &Consumer{reader: reader, service: service, logger: logger}
}

// Run consumes until ctx is canceled. Every fetched message is committed
// after one handling attempt, whether or not handling succeeded.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("Kafka consumer started")
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("fetch message: %w", err)
		}

		if err := c.Handle(ctx, msg); err != nil {
			c.logger.Error("Failed to handle grading event",
				zap.String("topic", msg.Topic),
				zap.Int64("offset", msg.Offset),
				zap.ByteString("value", msg.Value),
				zap.Error(err))
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("commit message: %w", err)
		}
	}
}

func (c *Consumer) Handle(ctx context.Context, msg kafka.Message) error {
	var event GradingEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}
	if event.ID == uuid.Nil {
		return fmt.Errorf("event %q without id", event.Type)
	}

	switch event.Type {
	case EventAnswerGraded:
		return c.dispatch(ctx, event, c.service.DispatchOnAnswerGraded)
	case EventSubmissionGraded:
		return c.dispatch(ctx, event, c.service.DispatchOnSubmissionGraded)
	case EventSubmissionSubmitted:
		return c.dispatch(ctx, event, c.service.DispatchOnSubmissionSubmitted)
	case EventAssessmentPublished:
		return c.broadcast(ctx, event, c.service.BroadcastNewAssessment)
	case EventAssessmentDeadline:
		return c.broadcast(ctx, event, c.service.BroadcastDeadlineReminder)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, event.Type)
	}
}

func (c *Consumer) dispatch(ctx context.Context, event GradingEvent, trigger func(context.Context, uuid.UUID) (*notifService.DispatchResult, error)) error {
	result, err := trigger(ctx, event.ID)
	if err != nil {
		return err
	}
	if !result.Completed {
		c.logger.Debug("Grading not complete",
			zap.String("event", event.Type),
			zap.String("submission_id", result.SubmissionID.String()))
		return nil
	}
	c.logger.Info("Notification created",
		zap.String("event", event.Type),
		zap.String("notification_id", result.Notification.ID.String()))
	return nil
}

func (c *Consumer) broadcast(ctx context.Context, event GradingEvent, trigger func(context.Context, uuid.UUID) (*notifService.BatchResult, error)) error {
	result, err := trigger(ctx, event.ID)
	if err != nil {
		return err
	}
	c.logger.Info("Broadcast handled",
		zap.String("event", event.Type),
		zap.String("assessment_id", event.ID.String()),
		zap.Int("created", result.Created))
	return nil
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
