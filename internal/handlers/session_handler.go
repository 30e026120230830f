package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"placement-service/internal/models"
	"placement-service/internal/selection"
	"placement-service/internal/service"
)

type SessionHandler struct {
	Service *service.SessionService
}

func NewSessionHandler(s *service.SessionService) *SessionHandler {
	return &SessionHandler{Service: s}
}

// CreateSession starts a new placement test session.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req struct {
		StudentName string `json:"student_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	userID := c.GetHeader("X-User-ID")
	session, err := h.Service.CreateSession(context.Background(), userID, req.StudentName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}
	c.JSON(http.StatusCreated, session)
}

// GetSession returns the stored session document.
func (h *SessionHandler) GetSession(c *gin.Context) {
	session, err := h.Service.GetSession(context.Background(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	c.JSON(http.StatusOK, session)
}

// NextQuestion runs the selection policy and returns the next question.
func (h *SessionHandler) NextQuestion(c *gin.Context) {
	question, err := h.Service.NextQuestion(context.Background(), c.Param("id"))
	switch {
	case errors.Is(err, selection.ErrOutOfQuestions):
		c.JSON(http.StatusOK, gin.H{
			"complete": true,
			"warning":  "question pool exhausted, test ended early",
		})
	case errors.Is(err, service.ErrSessionComplete):
		c.JSON(http.StatusOK, gin.H{"complete": true})
	case errors.Is(err, service.ErrSessionPaused):
		c.JSON(http.StatusConflict, gin.H{"error": "Session is paused"})
	case err != nil:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, question)
	}
}

// SubmitAnswer grades the pending question and advances the session.
func (h *SessionHandler) SubmitAnswer(c *gin.Context) {
	var req struct {
		Answer       models.Answer `json:"answer"`
		ResponseTime float64       `json:"response_time"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	outcome, err := h.Service.SubmitAnswer(context.Background(), c.Param("id"), req.Answer, req.ResponseTime)
	switch {
	case errors.Is(err, service.ErrSessionComplete):
		c.JSON(http.StatusConflict, gin.H{"error": "Session already complete"})
	case errors.Is(err, service.ErrSessionPaused):
		c.JSON(http.StatusConflict, gin.H{"error": "Session is paused"})
	case errors.Is(err, service.ErrNoPending), errors.Is(err, service.ErrWrongQuestion):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, outcome)
	}
}

// GetReport returns the stored placement result of a completed session.
func (h *SessionHandler) GetReport(c *gin.Context) {
	result, err := h.Service.GetReport(context.Background(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not available"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetSessionProgress returns a live summary of the adaptive state.
func (h *SessionHandler) GetSessionProgress(c *gin.Context) {
	session, err := h.Service.GetSession(context.Background(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	c.JSON(http.StatusOK, h.Service.Progress(session))
}

// GetUserSessions lists every session a user has started.
func (h *SessionHandler) GetUserSessions(c *gin.Context) {
	sessions, err := h.Service.GetSessionsByUser(context.Background(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load sessions"})
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// GetSessionAnswers returns the per-question answer trail.
func (h *SessionHandler) GetSessionAnswers(c *gin.Context) {
	answers, err := h.Service.ListAnswers(context.Background(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load answers"})
		return
	}
	c.JSON(http.StatusOK, answers)
}

func (h *SessionHandler) PauseSession(c *gin.Context) {
	if err := h.Service.PauseSession(context.Background(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to pause session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": models.SessionPaused})
}

func (h *SessionHandler) ResumeSession(c *gin.Context) {
	if err := h.Service.ResumeSession(context.Background(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resume session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": models.SessionActive})
}
