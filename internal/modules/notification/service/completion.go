package service

import (
	"context"
	"fmt"

	"anoa.com/gradenotify/internal/entity"
	assessmentRepo "anoa.com/gradenotify/internal/modules/assessment/repository"
)

type GradingKind int

const (
	Autograding GradingKind = iota
	ManualGrading
)

func (k GradingKind) String() string {
	switch k {
	case Autograding:
		return "autograding"
	case ManualGrading:
		return "manual grading"
	default:
		return fmt.Sprintf("GradingKind(%d)", int(k))
	}
}

// Aggregator decides whether a submission is graded enough to notify its student.
type Aggregator struct {
	assessments assessmentRepo.AssessmentRepository
}

func NewAggregator(assessments assessmentRepo.AssessmentRepository) *Aggregator {
	return &Aggregator{assessments: assessments}
}

// Check reports whether grading of the given kind is complete for sub.
//
// Autograding is complete when none of the submission's answers is still
// pending. Manual grading is complete when the number of answers with a
// grader equals the number of questions in the assessment; questions added
// or removed after submission can skew that count.
func (a *Aggregator) Check(ctx context.Context, kind GradingKind, sub *entity.Submission) (bool, error) {
	switch kind {
	case Autograding:
		return a.autograded(ctx, sub)
	case ManualGrading:
		return a.manuallyGraded(ctx, sub)
	default:
		return false, fmt.Errorf("unknown grading kind %s", kind)
	}
}

func (a *Aggregator) autograded(ctx context.Context, sub *entity.Submission) (bool, error) {
	answers, err := a.assessments.ListAnswers(ctx, sub.ID)
	if err != nil {
		return false, fmt.Errorf("list answers: %w", err)
	}
	for _, answer := range answers {
		if answer.AwaitingAutograding() {
			return false, nil
		}
	}
	return true, nil
}

func (a *Aggregator) manuallyGraded(ctx context.Context, sub *entity.Submission) (bool, error) {
	questions, err := a.assessments.ListQuestions(ctx, sub.AssessmentID)
	if err != nil {
		return false, fmt.Errorf("list questions: %w", err)
	}
	answers, err := a.assessments.ListAnswers(ctx, sub.ID)
	if err != nil {
		return false, fmt.Errorf("list answers: %w", err)
	}

	graded := 0
	for _, answer := range answers {
		if answer.GraderID != nil {
			graded++
		}
	}
	return graded == len(questions), nil
}
