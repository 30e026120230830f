package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"placement-service/internal/adaptive"
	"placement-service/internal/analyzer"
	"placement-service/internal/bank"
	"placement-service/internal/media"
	"placement-service/internal/models"
	"placement-service/internal/repository"
	"placement-service/internal/scoring"
	"placement-service/internal/selection"
)

var (
	ErrSessionComplete = errors.New("session already complete")
	ErrSessionPaused   = errors.New("session is paused")
	ErrNoPending       = errors.New("no pending question; request the next question first")
	ErrWrongQuestion   = errors.New("answer does not reference the pending question")
)

// SessionService drives a placement session through its
// select → render/answer → adjust loop and finalizes the report.
type SessionService struct {
	Repo       *repository.SessionRepository
	AnswerRepo *repository.AnswerRepository
	ResultRepo *repository.ResultRepository

	bank     *bank.Bank
	manager  *adaptive.Manager
	selector *selection.Selector
	scorer   *scoring.Scorer
	config   *adaptive.PlacementConfig

	ttsBaseURL string
	ttsVoice   string
}

func NewSessionService(
	repo *repository.SessionRepository,
	answerRepo *repository.AnswerRepository,
	resultRepo *repository.ResultRepository,
	questionBank *bank.Bank,
	advisor analyzer.Advisor,
	config *adaptive.PlacementConfig,
	ttsBaseURL, ttsVoice string,
) *SessionService {
	if config == nil {
		config = adaptive.DefaultPlacementConfig()
	}
	return &SessionService{
		Repo:       repo,
		AnswerRepo: answerRepo,
		ResultRepo: resultRepo,
		bank:       questionBank,
		manager:    adaptive.NewManager(config),
		selector:   selection.NewSelector(config, nil),
		scorer:     scoring.NewScorer(config, advisor),
		config:     config,
		ttsBaseURL: ttsBaseURL,
		ttsVoice:   ttsVoice,
	}
}

func (s *SessionService) GetSession(ctx context.Context, id string) (*models.PlacementSession, error) {
	return s.Repo.FindByID(ctx, id)
}

func (s *SessionService) GetSessionsByUser(ctx context.Context, userID string) ([]models.PlacementSession, error) {
	return s.Repo.FindByUserID(ctx, userID)
}

// ListAnswers returns the stored per-question answer trail of a session.
func (s *SessionService) ListAnswers(ctx context.Context, sessionID string) ([]repository.StoredAnswer, error) {
	return s.AnswerRepo.FindBySessionID(ctx, sessionID)
}

// CreateSession starts a fresh session at the initial level.
func (s *SessionService) CreateSession(ctx context.Context, userID, studentName string) (*models.PlacementSession, error) {
	state := adaptive.NewSessionState()
	session := &models.PlacementSession{
		ID:           uuid.NewString(),
		UserID:       userID,
		StudentName:  studentName,
		Status:       models.SessionActive,
		StartTime:    time.Now(),
		CurrentLevel: state.CurrentLevel,
		Window:       []int{},
	}
	if err := s.Repo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// NextQuestion runs the selection policy for the session. When the pool is
// exhausted the session is finalized early and ErrOutOfQuestions surfaces to
// the caller alongside a stored report.
func (s *SessionService) NextQuestion(ctx context.Context, sessionID string) (*models.Question, error) {
	session, err := s.Repo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == models.SessionCompleted {
		return nil, ErrSessionComplete
	}
	if session.Status == models.SessionPaused {
		return nil, ErrSessionPaused
	}
	if session.PendingQuestion != nil {
		// Selection is idempotent until the pending question is answered.
		return session.PendingQuestion, nil
	}

	state := s.reconstructState(session)
	if state.Phase(s.config) == adaptive.PhaseComplete {
		return nil, ErrSessionComplete
	}

	question, err := s.selector.SelectNext(state, s.bank)
	if errors.Is(err, selection.ErrOutOfQuestions) {
		session.EndedEarly = true
		if ferr := s.finalize(ctx, session, state); ferr != nil {
			return nil, ferr
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	s.stampMedia(question)
	session.PendingQuestion = question
	s.writeState(session, state)

	update := bson.M{
		"used_questions":    session.UsedQuestions,
		"calibration_index": session.CalibrationIndex,
		"pending_question":  session.PendingQuestion,
	}
	if err := s.Repo.Update(ctx, sessionID, update); err != nil {
		return nil, fmt.Errorf("failed to persist selection: %w", err)
	}
	return question, nil
}

// AnswerOutcome is what the renderer gets back after an answer.
type AnswerOutcome struct {
	Correct       bool                 `json:"correct"`
	ResponseTime  float64              `json:"response_time"`
	QuestionIndex int                  `json:"question_index"`
	Complete      bool                 `json:"complete"`
	Adjustment    *adaptive.Adjustment `json:"adjustment,omitempty"`
}

// SubmitAnswer grades the pending question, applies the adjustment policy
// and, on the final question, synthesizes and stores the placement report.
// A malformed answer is recorded as incorrect with an anomaly note, never an
// error: no mid-session failure may prevent the final report.
func (s *SessionService) SubmitAnswer(ctx context.Context, sessionID string, ans models.Answer, responseTime float64) (*AnswerOutcome, error) {
	session, err := s.Repo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == models.SessionCompleted {
		return nil, ErrSessionComplete
	}
	if session.Status == models.SessionPaused {
		return nil, ErrSessionPaused
	}
	question := session.PendingQuestion
	if question == nil {
		return nil, ErrNoPending
	}
	if ans.QuestionID != "" && ans.QuestionID != question.ID {
		return nil, ErrWrongQuestion
	}

	correct, gradeErr := question.Grade(ans)
	record := models.AnsweredRecord{
		QuestionID:    question.ID,
		Mechanic:      question.Mechanic,
		AssignedLevel: question.AssignedLevel,
		Skill:         question.Skill,
		Correct:       correct,
		ResponseTime:  responseTime,
		IsCalibration: question.IsCalibration,
		AnsweredAt:    time.Now(),
	}
	if gradeErr != nil {
		record.Correct = false
		record.Anomaly = gradeErr.Error()
		log.Printf("session %s: invalid answer shape for %s, recorded as incorrect", sessionID, question.ID)
	}

	state := s.reconstructState(session)
	adj := s.manager.ProcessAnswer(state, record)

	session.PendingQuestion = nil
	s.writeState(session, state)

	if err := s.AnswerRepo.Create(ctx, &repository.StoredAnswer{
		SessionID: sessionID,
		Record:    record,
	}); err != nil {
		log.Printf("session %s: failed to store answer: %v", sessionID, err)
	}

	outcome := &AnswerOutcome{
		Correct:       record.Correct,
		ResponseTime:  responseTime,
		QuestionIndex: state.QIndex,
		Complete:      adj.Complete,
		Adjustment:    adj,
	}

	if adj.Complete {
		if err := s.finalize(ctx, session, state); err != nil {
			return nil, err
		}
		return outcome, nil
	}

	update := bson.M{
		"current_level":      session.CurrentLevel,
		"momentum":           session.Momentum,
		"window":             session.Window,
		"streak":             session.Streak,
		"mechanic_history":   session.MechanicHistory,
		"audio_served":       session.AudioServed,
		"text_served":        session.TextServed,
		"cooldown_remaining": session.CooldownRemaining,
		"question_index":     session.QuestionIndex,
		"history":            session.History,
		"pending_question":   nil,
	}
	if err := s.Repo.Update(ctx, sessionID, update); err != nil {
		return nil, fmt.Errorf("failed to persist answer: %w", err)
	}
	return outcome, nil
}

// finalize scores the session and stores both the session terminal state and
// the placement result.
func (s *SessionService) finalize(ctx context.Context, session *models.PlacementSession, state *adaptive.SessionState) error {
	report, advisorUsed := s.scorer.Score(ctx, state, session.EndedEarly)

	session.Status = models.SessionCompleted
	session.EndTime = time.Now()
	session.PendingQuestion = nil
	s.writeState(session, state)

	update := bson.M{
		"status":             session.Status,
		"end_time":           session.EndTime,
		"current_level":      session.CurrentLevel,
		"momentum":           session.Momentum,
		"window":             session.Window,
		"streak":             session.Streak,
		"mechanic_history":   session.MechanicHistory,
		"audio_served":       session.AudioServed,
		"text_served":        session.TextServed,
		"cooldown_remaining": session.CooldownRemaining,
		"question_index":     session.QuestionIndex,
		"history":            session.History,
		"ended_early":        session.EndedEarly,
		"pending_question":   nil,
	}
	if err := s.Repo.Update(ctx, session.ID, update); err != nil {
		return fmt.Errorf("failed to complete session: %w", err)
	}

	result := &models.PlacementResult{
		ID:                uuid.NewString(),
		SessionID:         session.ID,
		UserID:            session.UserID,
		StudentName:       session.StudentName,
		Report:            *report,
		QuestionsAnswered: state.QIndex,
		OverallAccuracy:   state.OverallAccuracy(),
		EndedEarly:        session.EndedEarly,
		AdvisorUsed:       advisorUsed,
		CreatedAt:         time.Now(),
	}
	if err := s.ResultRepo.Create(ctx, result); err != nil {
		return fmt.Errorf("failed to store result: %w", err)
	}
	return nil
}

// GetReport returns the stored placement result for a completed session.
func (s *SessionService) GetReport(ctx context.Context, sessionID string) (*models.PlacementResult, error) {
	return s.ResultRepo.FindBySessionID(ctx, sessionID)
}

func (s *SessionService) PauseSession(ctx context.Context, sessionID string) error {
	return s.Repo.Update(ctx, sessionID, bson.M{"status": models.SessionPaused})
}

func (s *SessionService) ResumeSession(ctx context.Context, sessionID string) error {
	return s.Repo.Update(ctx, sessionID, bson.M{"status": models.SessionActive})
}

// Progress summarizes where the session stands.
func (s *SessionService) Progress(session *models.PlacementSession) map[string]interface{} {
	state := s.reconstructState(session)
	return map[string]interface{}{
		"session_id":         session.ID,
		"status":             session.Status,
		"phase":              state.Phase(s.config),
		"question_index":     state.QIndex,
		"questions_per_test": s.config.QuestionsPerTest,
		"current_level":      state.CurrentLevel,
		"momentum":           state.Momentum,
		"overall_accuracy":   state.OverallAccuracy(),
		"audio_served":       state.AudioServed,
		"text_served":        state.TextServed,
	}
}

// reconstructState rebuilds the in-memory adaptive state from the stored
// session document.
func (s *SessionService) reconstructState(session *models.PlacementSession) *adaptive.SessionState {
	state := adaptive.NewSessionState()
	state.CurrentLevel = session.CurrentLevel
	state.Momentum = session.Momentum
	if session.Window != nil {
		state.Window = session.Window
	}
	state.Streak = session.Streak
	for _, id := range session.UsedQuestions {
		state.Used[id] = true
	}
	state.MechanicHistory = session.MechanicHistory
	state.AudioServed = session.AudioServed
	state.TextServed = session.TextServed
	state.History = session.History
	state.CooldownRemaining = session.CooldownRemaining
	state.CalibrationIndex = session.CalibrationIndex
	state.QIndex = session.QuestionIndex
	return state
}

// writeState copies the adaptive state back onto the session document.
func (s *SessionService) writeState(session *models.PlacementSession, state *adaptive.SessionState) {
	session.CurrentLevel = state.CurrentLevel
	session.Momentum = state.Momentum
	session.Window = state.Window
	session.Streak = state.Streak
	used := make([]string, 0, len(state.Used))
	for id := range state.Used {
		used = append(used, id)
	}
	session.UsedQuestions = used
	session.MechanicHistory = state.MechanicHistory
	session.AudioServed = state.AudioServed
	session.TextServed = state.TextServed
	session.History = state.History
	session.CooldownRemaining = state.CooldownRemaining
	session.CalibrationIndex = state.CalibrationIndex
	session.QuestionIndex = state.QIndex
}

func (s *SessionService) stampMedia(q *models.Question) {
	if s.ttsBaseURL == "" {
		return
	}
	if text := q.SpokenText(); text != "" {
		q.AudioURL = media.AudioURL(s.ttsBaseURL, text, s.ttsVoice)
	}
}
