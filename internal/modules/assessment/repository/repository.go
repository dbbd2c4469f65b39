package repository

import (
	"context"

	"anoa.com/gradenotify/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AssessmentRepository reads assessments, their questions, and the
// submissions and answers students hand in. It never writes.
type AssessmentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Assessment, error)
	FindSubmission(ctx context.Context, id uuid.UUID) (*entity.Submission, error)
	FindAnswer(ctx context.Context, id uuid.UUID) (*entity.Answer, error)
	ListQuestions(ctx context.Context, assessmentID uuid.UUID) ([]*entity.Question, error)
	ListAnswers(ctx context.Context, submissionID uuid.UUID) ([]*entity.Answer, error)
	ListSubmitterIDs(ctx context.Context, assessmentID uuid.UUID) ([]uuid.UUID, error)

	AssessmentExists(ctx context.Context, id uuid.UUID) (bool, error)
	SubmissionExists(ctx context.Context, id uuid.UUID) (bool, error)
	QuestionExists(ctx context.Context, id uuid.UUID) (bool, error)
}

type assessmentRepository struct {
	db *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) AssessmentRepository {
	return &assessmentRepository{db: db}
}

func (r *assessmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Assessment, error) {
	var assessment entity.Assessment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&assessment).Error; err != nil {
		return nil, err
	}
	return &assessment, nil
}

func (r *assessmentRepository) FindSubmission(ctx context.Context, id uuid.UUID) (*entity.Submission, error) {
	var submission entity.Submission
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&submission).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *assessmentRepository) FindAnswer(ctx context.Context, id uuid.UUID) (*entity.Answer, error) {
	var answer entity.Answer
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&answer).Error; err != nil {
		return nil, err
	}
	return &answer, nil
}

func (r *assessmentRepository) ListQuestions(ctx context.Context, assessmentID uuid.UUID) ([]*entity.Question, error) {
	var questions []*entity.Question
	err := r.db.WithContext(ctx).
		Where("assessment_id = ?", assessmentID).
		Order("position ASC").
		Find(&questions).Error
	return questions, err
}

func (r *assessmentRepository) ListAnswers(ctx context.Context, submissionID uuid.UUID) ([]*entity.Answer, error) {
	var answers []*entity.Answer
	err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Find(&answers).Error
	return answers, err
}

func (r *assessmentRepository) ListSubmitterIDs(ctx context.Context, assessmentID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&entity.Submission{}).
		Distinct("student_id").
		Where("assessment_id = ?", assessmentID).
		Pluck("student_id", &ids).Error
	return ids, err
}

func (r *assessmentRepository) AssessmentExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, &entity.Assessment{}, id)
}

func (r *assessmentRepository) SubmissionExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, &entity.Submission{}, id)
}

func (r *assessmentRepository) QuestionExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, &entity.Question{}, id)
}

func (r *assessmentRepository) exists(ctx context.Context, model any, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
