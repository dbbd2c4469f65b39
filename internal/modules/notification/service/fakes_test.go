package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"anoa.com/gradenotify/internal/entity"
	notifRepo "anoa.com/gradenotify/internal/modules/notification/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var errInsertFailed = errors.New("insert failed")

type fakeUsers struct {
	users  map[uuid.UUID]*entity.User
	groups map[uuid.UUID]*entity.Group
	order  []uuid.UUID

	// Gone users are still listed but fail the existence check.
	Gone    map[uuid.UUID]bool
	ListErr error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		users:  make(map[uuid.UUID]*entity.User),
		groups: make(map[uuid.UUID]*entity.Group),
	}
}

func (f *fakeUsers) add(role string) *entity.User {
	u := &entity.User{ID: uuid.New(), Username: "user", Role: entity.Role{Name: role}}
	f.users[u.ID] = u
	f.order = append(f.order, u.ID)
	return u
}

func (f *fakeUsers) assign(student *entity.User, leaderID uuid.UUID) *entity.Group {
	g := &entity.Group{ID: uuid.New(), Name: "group", LeaderID: leaderID}
	f.groups[g.ID] = g
	student.GroupID = &g.ID
	return g
}

func (f *fakeUsers) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, ok := f.users[id]
	return ok && !f.Gone[id], nil
}

func (f *fakeUsers) ListByRole(ctx context.Context, role string) ([]*entity.User, error) {
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	var out []*entity.User
	for _, id := range f.order {
		if u := f.users[id]; u.Role.Name == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUsers) FindGroupByUserID(ctx context.Context, userID uuid.UUID) (*entity.Group, error) {
	u, ok := f.users[userID]
	if !ok || u.GroupID == nil {
		return nil, gorm.ErrRecordNotFound
	}
	g, ok := f.groups[*u.GroupID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return g, nil
}

type fakeAssessments struct {
	assessments map[uuid.UUID]*entity.Assessment
	questions   map[uuid.UUID]*entity.Question
	submissions map[uuid.UUID]*entity.Submission
	answers     map[uuid.UUID]*entity.Answer
}

func newFakeAssessments() *fakeAssessments {
	return &fakeAssessments{
		assessments: make(map[uuid.UUID]*entity.Assessment),
		questions:   make(map[uuid.UUID]*entity.Question),
		submissions: make(map[uuid.UUID]*entity.Submission),
		answers:     make(map[uuid.UUID]*entity.Answer),
	}
}

func (f *fakeAssessments) addAssessment(status string, questions int) *entity.Assessment {
	a := &entity.Assessment{ID: uuid.New(), Title: "quiz", Status: status}
	f.assessments[a.ID] = a
	for i := 0; i < questions; i++ {
		q := &entity.Question{ID: uuid.New(), AssessmentID: a.ID, Position: i + 1}
		f.questions[q.ID] = q
	}
	return a
}

func (f *fakeAssessments) addSubmission(assessment *entity.Assessment, student *entity.User) *entity.Submission {
	now := time.Now()
	s := &entity.Submission{ID: uuid.New(), AssessmentID: assessment.ID, StudentID: student.ID, SubmittedAt: &now}
	f.submissions[s.ID] = s
	return s
}

func (f *fakeAssessments) addAnswer(submission *entity.Submission, status string, graderID *uuid.UUID) *entity.Answer {
	a := &entity.Answer{ID: uuid.New(), SubmissionID: submission.ID, QuestionID: uuid.New(), AutogradingStatus: status, GraderID: graderID}
	f.answers[a.ID] = a
	return a
}

func (f *fakeAssessments) FindByID(ctx context.Context, id uuid.UUID) (*entity.Assessment, error) {
	if a, ok := f.assessments[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAssessments) FindSubmission(ctx context.Context, id uuid.UUID) (*entity.Submission, error) {
	if s, ok := f.submissions[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAssessments) FindAnswer(ctx context.Context, id uuid.UUID) (*entity.Answer, error) {
	if a, ok := f.answers[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAssessments) ListQuestions(ctx context.Context, assessmentID uuid.UUID) ([]*entity.Question, error) {
	var out []*entity.Question
	for _, q := range f.questions {
		if q.AssessmentID == assessmentID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeAssessments) ListAnswers(ctx context.Context, submissionID uuid.UUID) ([]*entity.Answer, error) {
	var out []*entity.Answer
	for _, a := range f.answers {
		if a.SubmissionID == submissionID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAssessments) ListSubmitterIDs(ctx context.Context, assessmentID uuid.UUID) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]struct{})
	var out []uuid.UUID
	for _, s := range f.submissions {
		if s.AssessmentID != assessmentID {
			continue
		}
		if _, ok := seen[s.StudentID]; !ok {
			seen[s.StudentID] = struct{}{}
			out = append(out, s.StudentID)
		}
	}
	return out, nil
}

func (f *fakeAssessments) AssessmentExists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, ok := f.assessments[id]
	return ok, nil
}

func (f *fakeAssessments) SubmissionExists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, ok := f.submissions[id]
	return ok, nil
}

func (f *fakeAssessments) QuestionExists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, ok := f.questions[id]
	return ok, nil
}

// fakeNotifications keeps rows in memory. FailInsertAt makes the nth insert
// of the next CreateBatch call fail (1-based).
type fakeNotifications struct {
	mu    sync.Mutex
	rows  []*entity.Notification
	clock time.Time

	FailInsertAt int
}

func newFakeNotifications() *fakeNotifications {
	return &fakeNotifications{clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeNotifications) stamp(n *entity.Notification) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	f.clock = f.clock.Add(time.Second)
	n.CreatedAt = f.clock
	n.UpdatedAt = f.clock
}

func (f *fakeNotifications) Create(ctx context.Context, n *entity.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stamp(n)
	f.rows = append(f.rows, n)
	return nil
}

func (f *fakeNotifications) CreateBatch(ctx context.Context, batch []notifRepo.StagedInsert) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	staged := make([]*entity.Notification, 0, len(batch))
	for i, s := range batch {
		if f.FailInsertAt == i+1 {
			return &notifRepo.InsertError{Key: s.Key, Err: errInsertFailed}
		}
		f.stamp(s.Notification)
		staged = append(staged, s.Notification)
	}
	f.rows = append(f.rows, staged...)
	return nil
}

func (f *fakeNotifications) FindUnreadByUserID(ctx context.Context, userID uuid.UUID) ([]entity.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.Notification
	for _, n := range f.rows {
		if n.UserID == userID && !n.Read {
			out = append(out, *n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeNotifications) FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*entity.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.rows {
		if n.ID == id && n.UserID == userID {
			cp := *n
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeNotifications) MarkAsRead(ctx context.Context, notification *entity.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.rows {
		if n.ID == notification.ID && n.UserID == notification.UserID {
			n.Read = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeNotifications) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var updated int64
	for _, n := range f.rows {
		if n.UserID == userID && !n.Read {
			n.Read = true
			updated++
		}
	}
	return updated, nil
}

func (f *fakeNotifications) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, n := range f.rows {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotifications) all() []*entity.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*entity.Notification(nil), f.rows...)
}

type fakePublisher struct {
	published []*entity.Notification
	err       error
}

func (p *fakePublisher) Publish(ctx context.Context, n *entity.Notification) error {
	p.published = append(p.published, n)
	return p.err
}

type fixture struct {
	users         *fakeUsers
	assessments   *fakeAssessments
	notifications *fakeNotifications
	publisher     *fakePublisher
	svc           NotificationService
}

func newFixture() *fixture {
	f := &fixture{
		users:         newFakeUsers(),
		assessments:   newFakeAssessments(),
		notifications: newFakeNotifications(),
		publisher:     &fakePublisher{},
	}
	f.svc = NewNotificationService(f.notifications, f.users, f.assessments, f.publisher, zap.NewNop())
	return f
}
