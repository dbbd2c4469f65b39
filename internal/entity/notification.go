package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationNew            NotificationType = "new"
	NotificationDeadline       NotificationType = "deadline"
	NotificationAutograded     NotificationType = "autograded"
	NotificationGraded         NotificationType = "graded"
	NotificationManuallyGraded NotificationType = "manually_graded"
	NotificationSubmitted      NotificationType = "submitted"
)

// Notification tells one recipient that something happened to an assessment
// or a submission. Only Read changes after creation.
type Notification struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	Type         NotificationType `gorm:"size:30;not null" json:"type"`
	Read         bool             `gorm:"column:read;not null;default:false;index:idx_notifications_unread,priority:2" json:"read"`
	UserID       uuid.UUID        `gorm:"type:uuid;not null;index:idx_notifications_unread,priority:1" json:"user_id"` // recipient
	AssessmentID *uuid.UUID       `gorm:"type:uuid;index" json:"assessment_id,omitempty"`
	SubmissionID *uuid.UUID       `gorm:"type:uuid;index" json:"submission_id,omitempty"`
	QuestionID   *uuid.UUID       `gorm:"type:uuid" json:"question_id,omitempty"` // legacy trigger paths only
	CreatedAt    time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time        `gorm:"autoUpdateTime" json:"updated_at"`

	User       *User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Assessment *Assessment `gorm:"foreignKey:AssessmentID;constraint:OnDelete:CASCADE" json:"-"`
	Submission *Submission `gorm:"foreignKey:SubmissionID;constraint:OnDelete:CASCADE" json:"-"`
	Question   *Question   `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"-"`
}

func (n *Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID, err = uuid.NewV7()
	}
	return
}
