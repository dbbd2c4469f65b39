package handler

import (
	"context"
	"net/http"

	"anoa.com/gradenotify/internal/modules/notification/dto"
	notifService "anoa.com/gradenotify/internal/modules/notification/service"
	"anoa.com/gradenotify/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type NotificationHandler struct {
	service notifService.NotificationService
	logger  *zap.Logger
}

func NewNotificationHandler(service notifService.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{service: service, logger: logger}
}

// Recipient endpoints

func (h *NotificationHandler) FetchUnread(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, h.logger, err)
		return
	}

	notifications, err := h.service.FetchUnread(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.NewNotificationList(notifications)})
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, h.logger, err)
		return
	}

	count, err := h.service.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.UnreadCountResponse{Count: count})
}

func (h *NotificationHandler) Acknowledge(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, h.logger, err)
		return
	}

	id, ok := bindID(c)
	if !ok {
		return
	}

	notification, err := h.service.Acknowledge(c.Request.Context(), id, userID, response.GetRole(c))
	if err != nil {
		response.ResponseError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.NewNotificationResponse(notification)})
}

func (h *NotificationHandler) AcknowledgeAll(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, h.logger, err)
		return
	}

	updated, err := h.service.AcknowledgeAll(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.AcknowledgeAllResponse{Updated: updated})
}

// Internal trigger endpoints

func (h *NotificationHandler) AnswerGraded(c *gin.Context) {
	h.dispatch(c, h.service.DispatchOnAnswerGraded)
}

func (h *NotificationHandler) SubmissionGraded(c *gin.Context) {
	h.dispatch(c, h.service.DispatchOnSubmissionGraded)
}

func (h *NotificationHandler) SubmissionSubmitted(c *gin.Context) {
	h.dispatch(c, h.service.DispatchOnSubmissionSubmitted)
}

func (h *NotificationHandler) AssessmentPublished(c *gin.Context) {
	h.broadcast(c, h.service.BroadcastNewAssessment)
}

func (h *NotificationHandler) AssessmentDeadline(c *gin.Context) {
	h.broadcast(c, h.service.BroadcastDeadlineReminder)
}

func (h *NotificationHandler) dispatch(c *gin.Context, trigger func(context.Context, uuid.UUID) (*notifService.DispatchResult, error)) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	result, err := trigger(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, h.logger, err)
		return
	}

	resp := dto.DispatchResponse{Completed: result.Completed, SubmissionID: result.SubmissionID}
	if !result.Completed {
		c.JSON(http.StatusAccepted, resp)
		return
	}

	n := dto.NewNotificationResponse(result.Notification)
	resp.Notification = &n
	c.JSON(http.StatusCreated, resp)
}

func (h *NotificationHandler) broadcast(c *gin.Context, trigger func(context.Context, uuid.UUID) (*notifService.BatchResult, error)) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	result, err := trigger(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, h.logger, err)
		return
	}

	status := http.StatusCreated
	if result.Created == 0 {
		status = http.StatusOK
	}
	c.JSON(status, dto.BroadcastResponse{AssessmentID: result.AssessmentID, Created: result.Created})
}

func bindID(c *gin.Context) (uuid.UUID, bool) {
	var uri dto.ResourceURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid format"})
		return uuid.Nil, false
	}

	id, err := uuid.Parse(uri.ID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid format"})
		return uuid.Nil, false
	}
	return id, true
}
