package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AssessmentDraft  = "draft"
	AssessmentOpen   = "open"
	AssessmentClosed = "closed"
)

type Assessment struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string     `gorm:"size:255;not null" json:"title"`
	Status    string     `gorm:"size:20;not null;default:draft" json:"status"` // 'draft', 'open', 'closed'
	DueAt     *time.Time `json:"due_at,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsOpen reports whether the assessment is published and visible to students.
func (a *Assessment) IsOpen() bool {
	return a.Status == AssessmentOpen
}

func (a *Assessment) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID, err = uuid.NewV7()
	}
	return
}

type Question struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	AssessmentID uuid.UUID   `gorm:"type:uuid;not null;index" json:"assessment_id"`
	Assessment   *Assessment `gorm:"foreignKey:AssessmentID;constraint:OnDelete:CASCADE" json:"-"`
	Position     int         `gorm:"not null;default:0" json:"position"`
	Prompt       string      `gorm:"type:text" json:"prompt"`
	CreatedAt    time.Time   `gorm:"autoCreateTime" json:"created_at"`
}

func (q *Question) BeforeCreate(tx *gorm.DB) (err error) {
	if q.ID == uuid.Nil {
		q.ID, err = uuid.NewV7()
	}
	return
}

type Submission struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	AssessmentID uuid.UUID   `gorm:"type:uuid;not null;index" json:"assessment_id"`
	Assessment   *Assessment `gorm:"foreignKey:AssessmentID;constraint:OnDelete:CASCADE" json:"-"`
	StudentID    uuid.UUID   `gorm:"type:uuid;not null;index" json:"student_id"`
	Student      *User       `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
	SubmittedAt  *time.Time  `json:"submitted_at,omitempty"`
	CreatedAt    time.Time   `gorm:"autoCreateTime" json:"created_at"`
}

func (s *Submission) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID, err = uuid.NewV7()
	}
	return
}

const (
	AutogradingNone       = "none"
	AutogradingProcessing = "processing"
	AutogradingSuccess    = "success"
	AutogradingFailed     = "failed"
)

type Answer struct {
	ID                uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	SubmissionID      uuid.UUID   `gorm:"type:uuid;not null;index" json:"submission_id"`
	Submission        *Submission `gorm:"foreignKey:SubmissionID;constraint:OnDelete:CASCADE" json:"-"`
	QuestionID        uuid.UUID   `gorm:"type:uuid;not null;index" json:"question_id"`
	Question          *Question   `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"-"`
	AutogradingStatus string      `gorm:"size:20;not null;default:none" json:"autograding_status"` // 'none', 'processing', 'success', 'failed'
	GraderID          *uuid.UUID  `gorm:"type:uuid" json:"grader_id,omitempty"`
	Score             *float64    `json:"score,omitempty"`
	CreatedAt         time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

// AwaitingAutograding reports whether the grading engine has not produced a
// terminal result for this answer yet.
func (a *Answer) AwaitingAutograding() bool {
	return a.AutogradingStatus == AutogradingNone || a.AutogradingStatus == AutogradingProcessing
}

func (a *Answer) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID, err = uuid.NewV7()
	}
	return
}
