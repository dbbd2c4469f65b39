package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"anoa.com/gradenotify/internal/entity"
	"anoa.com/gradenotify/internal/modules/notification/dto"
	notifService "anoa.com/gradenotify/internal/modules/notification/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubService struct {
	notifService.NotificationService

	unread       []entity.Notification
	acknowledged *entity.Notification
	ackErr       error
	gotRole      string
	dispatch     *notifService.DispatchResult
	batch        *notifService.BatchResult
	err          error
}

func (s *stubService) FetchUnread(ctx context.Context, userID uuid.UUID) ([]entity.Notification, error) {
	return s.unread, s.err
}

func (s *stubService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return int64(len(s.unread)), s.err
}

func (s *stubService) Acknowledge(ctx context.Context, id, userID uuid.UUID, role string) (*entity.Notification, error) {
	s.gotRole = role
	return s.acknowledged, s.ackErr
}

func (s *stubService) DispatchOnAnswerGraded(ctx context.Context, id uuid.UUID) (*notifService.DispatchResult, error) {
	return s.dispatch, s.err
}

func (s *stubService) BroadcastNewAssessment(ctx context.Context, id uuid.UUID) (*notifService.BatchResult, error) {
	return s.batch, s.err
}

func newTestRouter(svc notifService.NotificationService, userID uuid.UUID, role string) *gin.Engine {
	h := NewNotificationHandler(svc, zap.NewNop())
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", userID.String())
		c.Set("role", role)
		c.Next()
	})
	r.GET("/api/notifications/unread", h.FetchUnread)
	r.GET("/api/notifications/unread-count", h.UnreadCount)
	r.PUT("/api/notifications/:id/read", h.Acknowledge)
	r.POST("/api/internal/answers/:id/graded", h.AnswerGraded)
	r.POST("/api/internal/assessments/:id/published", h.AssessmentPublished)
	return r
}

func serve(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestFetchUnread(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	assessmentID := uuid.New()
	svc := &stubService{unread: []entity.Notification{
		{ID: uuid.New(), Type: entity.NotificationNew, UserID: userID, AssessmentID: &assessmentID},
	}}

	rec := serve(newTestRouter(svc, userID, entity.RoleStudent), http.MethodGet, "/api/notifications/unread")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Data []dto.NotificationResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Data) != 1 || body.Data[0].Type != entity.NotificationNew {
		t.Errorf("data = %+v", body.Data)
	}

	rec = serve(newTestRouter(svc, userID, entity.RoleStudent), http.MethodGet, "/api/notifications/unread-count")
	if rec.Code != http.StatusOK || rec.Body.String() != `{"count":1}` {
		t.Errorf("unread-count = %d %s", rec.Code, rec.Body.String())
	}
}

func TestAcknowledgeHandler(t *testing.T) {
	t.Parallel()

	t.Run("passes the token role", func(t *testing.T) {
		t.Parallel()

		svc := &stubService{acknowledged: &entity.Notification{ID: uuid.New(), Read: true}}
		rec := serve(newTestRouter(svc, uuid.New(), entity.RoleStaff), http.MethodPut, "/api/notifications/"+uuid.NewString()+"/read")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if svc.gotRole != entity.RoleStaff {
			t.Errorf("role = %q, want %q", svc.gotRole, entity.RoleStaff)
		}
	})

	tests := []struct {
		name string
		path string
		err  error
		want int
	}{
		{name: "bad id", path: "/api/notifications/not-a-uuid/read", want: http.StatusBadRequest},
		{name: "not owned", path: "/api/notifications/" + uuid.NewString() + "/read", err: &notifService.NotFoundError{}, want: http.StatusNotFound},
		{name: "invalid role", path: "/api/notifications/" + uuid.NewString() + "/read", err: &notifService.ValidationError{Err: notifService.ErrInvalidRole}, want: http.StatusBadRequest},
		{name: "store failure", path: "/api/notifications/" + uuid.NewString() + "/read", err: errors.New("connection reset"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := &stubService{ackErr: tt.err}
			rec := serve(newTestRouter(svc, uuid.New(), entity.RoleStudent), http.MethodPut, tt.path)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestTriggerHandlers(t *testing.T) {
	t.Parallel()

	submissionID := uuid.New()

	t.Run("grading not complete", func(t *testing.T) {
		t.Parallel()

		svc := &stubService{dispatch: &notifService.DispatchResult{SubmissionID: submissionID}}
		rec := serve(newTestRouter(svc, uuid.New(), entity.RoleAdmin), http.MethodPost, "/api/internal/answers/"+uuid.NewString()+"/graded")
		if rec.Code != http.StatusAccepted {
			t.Fatalf("status = %d, want 202", rec.Code)
		}
		var body dto.DispatchResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.Completed || body.SubmissionID != submissionID || body.Notification != nil {
			t.Errorf("body = %+v", body)
		}
	})

	t.Run("notification created", func(t *testing.T) {
		t.Parallel()

		svc := &stubService{dispatch: &notifService.DispatchResult{
			SubmissionID: submissionID,
			Completed:    true,
			Notification: &entity.Notification{ID: uuid.New(), Type: entity.NotificationAutograded},
		}}
		rec := serve(newTestRouter(svc, uuid.New(), entity.RoleAdmin), http.MethodPost, "/api/internal/answers/"+uuid.NewString()+"/graded")
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201", rec.Code)
		}
	})

	t.Run("missing group assignment", func(t *testing.T) {
		t.Parallel()

		svc := &stubService{err: &notifService.MissingGroupAssignmentError{StudentID: uuid.New()}}
		rec := serve(newTestRouter(svc, uuid.New(), entity.RoleAdmin), http.MethodPost, "/api/internal/answers/"+uuid.NewString()+"/graded")
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", rec.Code)
		}
	})

	t.Run("broadcast", func(t *testing.T) {
		t.Parallel()

		assessmentID := uuid.New()
		svc := &stubService{batch: &notifService.BatchResult{AssessmentID: assessmentID, Created: 3}}
		rec := serve(newTestRouter(svc, uuid.New(), entity.RoleAdmin), http.MethodPost, "/api/internal/assessments/"+assessmentID.String()+"/published")
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201", rec.Code)
		}
		var body dto.BroadcastResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.Created != 3 || body.AssessmentID != assessmentID {
			t.Errorf("body = %+v", body)
		}
	})
}
