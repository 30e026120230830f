package models

import "time"

// Session statuses.
const (
	SessionActive    = "active"
	SessionPaused    = "paused"
	SessionCompleted = "completed"
)

// PlacementSession is the stored form of a test session. The adaptive state
// fields mirror adaptive.SessionState; the service maps between the two.
type PlacementSession struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	UserID      string    `bson:"user_id" json:"user_id"`
	StudentName string    `bson:"student_name" json:"student_name"`
	Status      string    `bson:"status" json:"status"`
	StartTime   time.Time `bson:"start_time" json:"start_time"`
	EndTime     time.Time `bson:"end_time,omitempty" json:"end_time,omitempty"`

	CurrentLevel      int              `bson:"current_level" json:"current_level"`
	Momentum          float64          `bson:"momentum" json:"momentum"`
	Window            []int            `bson:"window" json:"window"`
	Streak            int              `bson:"streak" json:"streak"`
	UsedQuestions     []string         `bson:"used_questions" json:"used_questions"`
	MechanicHistory   []Mechanic       `bson:"mechanic_history" json:"mechanic_history"`
	AudioServed       int              `bson:"audio_served" json:"audio_served"`
	TextServed        int              `bson:"text_served" json:"text_served"`
	CooldownRemaining int              `bson:"cooldown_remaining" json:"cooldown_remaining"`
	CalibrationIndex  int              `bson:"calibration_index" json:"calibration_index"`
	QuestionIndex     int              `bson:"question_index" json:"question_index"`
	History           []AnsweredRecord `bson:"history" json:"history"`

	// The question served by the last selection and not yet answered.
	PendingQuestion *Question `bson:"pending_question,omitempty" json:"pending_question,omitempty"`

	// Set when selection ran out of unused questions before the full test
	// length; the report justification carries a warning.
	EndedEarly bool `bson:"ended_early" json:"ended_early"`
}
