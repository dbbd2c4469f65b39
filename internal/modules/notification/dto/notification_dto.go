package dto

import (
	"time"

	"anoa.com/gradenotify/internal/entity"
	"github.com/google/uuid"
)

// ResourceURI binds the :id path segment of every notification route.
type ResourceURI struct {
	ID string `uri:"id" binding:"required,uuid"`
}

type NotificationResponse struct {
	ID           uuid.UUID               `json:"id"`
	Type         entity.NotificationType `json:"type"`
	Read         bool                    `json:"read"`
	AssessmentID *uuid.UUID              `json:"assessment_id,omitempty"`
	SubmissionID *uuid.UUID              `json:"submission_id,omitempty"`
	QuestionID   *uuid.UUID              `json:"question_id,omitempty"`
	CreatedAt    time.Time               `json:"created_at"`
}

func NewNotificationResponse(n *entity.Notification) NotificationResponse {
	return NotificationResponse{
		ID:           n.ID,
		Type:         n.Type,
		Read:         n.Read,
		AssessmentID: n.AssessmentID,
		SubmissionID: n.SubmissionID,
		QuestionID:   n.QuestionID,
		CreatedAt:    n.CreatedAt,
	}
}

func NewNotificationList(notifications []entity.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(notifications))
	for i := range notifications {
		out = append(out, NewNotificationResponse(&notifications[i]))
	}
	return out
}

type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

type AcknowledgeAllResponse struct {
	Updated int64 `json:"updated"`
}

type DispatchResponse struct {
	Completed    bool                  `json:"completed"`
	SubmissionID uuid.UUID             `json:"submission_id"`
	Notification *NotificationResponse `json:"notification,omitempty"`
}

type BroadcastResponse struct {
	AssessmentID uuid.UUID `json:"assessment_id"`
	Created      int       `json:"created"`
}
