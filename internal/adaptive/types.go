package adaptive

import (
	"time"

	"placement-service/internal/models"
)

// PlacementConfig holds the adaptive test behavior knobs. Loaded once at
// startup; shared read-only by every session.
type PlacementConfig struct {
	QuestionsPerTest      int           `json:"questions_per_test"`
	CalibrationQuestions  int           `json:"calibration_questions"`
	PerformanceWindowSize int           `json:"performance_window_size"`
	LevelUpThreshold      float64       `json:"level_up_threshold"`
	LevelDownThreshold    float64       `json:"level_down_threshold"`
	StrongJumpAccuracy    float64       `json:"strong_jump_accuracy"`
	StrongJumpStreak      int           `json:"strong_jump_streak"`
	AdjustCooldown        int           `json:"adjust_cooldown"`
	AdvisorTimeout        time.Duration `json:"advisor_timeout"`
	AdvisorEnabled        bool          `json:"advisor_enabled"`
}

// Default configuration based on requirements.
func DefaultPlacementConfig() *PlacementConfig {
	return &PlacementConfig{
		QuestionsPerTest:      15,
		CalibrationQuestions:  3,
		PerformanceWindowSize: 5,
		LevelUpThreshold:      0.75,
		LevelDownThreshold:    0.30,
		StrongJumpAccuracy:    0.90,
		StrongJumpStreak:      4,
		AdjustCooldown:        2,
		AdvisorTimeout:        30 * time.Second,
		AdvisorEnabled:        true,
	}
}

const (
	// Momentum deltas and bounds. A wrong answer cools momentum harder than
	// a correct one warms it.
	momentumGain = 0.3
	momentumLoss = 0.5
	MomentumMax  = 2.0
	MomentumMin  = -2.0

	// Short window for the adjustment rules; the recency ring for mechanic
	// variety keeps the last two served mechanics.
	shortWindowSize     = 3
	mechanicHistorySize = 2

	// Early ceiling push: a student cruising at level 4 in the first ten
	// questions gets probed at 5.
	earlyPushAccuracy  = 0.85
	earlyPushMaxIndex  = 10
	earlyPushMinStreak = 2

	// Drop-from-ceiling protection: level 5 requires this many wrong
	// answers in the last four before demotion.
	ceilingDropWrong  = 3
	ceilingDropLookup = 4
)

// Phase of a session, driven solely by the question index.
type Phase string

const (
	PhaseCalibrating Phase = "calibrating"
	PhaseAdaptive    Phase = "adaptive"
	PhaseComplete    Phase = "complete"
)

// SessionState is the per-student in-memory test state. Each session owns
// exactly one; the engine never shares it across goroutines.
type SessionState struct {
	CurrentLevel      int
	Momentum          float64
	Window            []int
	Streak            int
	Used              map[string]bool
	MechanicHistory   []models.Mechanic
	AudioServed       int
	TextServed        int
	History           []models.AnsweredRecord
	CooldownRemaining int
	CalibrationIndex  int
	QIndex            int
}

// NewSessionState returns a fresh state at the initial level 1.
func NewSessionState() *SessionState {
	return &SessionState{
		CurrentLevel: 1,
		Window:       []int{},
		Used:         make(map[string]bool),
	}
}

// Phase reports where the session is in the calibrate→adapt→complete cycle.
func (s *SessionState) Phase(cfg *PlacementConfig) Phase {
	switch {
	case s.QIndex >= cfg.QuestionsPerTest:
		return PhaseComplete
	case s.QIndex < cfg.CalibrationQuestions:
		return PhaseCalibrating
	default:
		return PhaseAdaptive
	}
}

// MarkServed records a served question id. Selection calls this the moment
// a question is picked so it can never be drawn again.
func (s *SessionState) MarkServed(id string) {
	s.Used[id] = true
}

// OverallAccuracy is correct/total over the full history.
func (s *SessionState) OverallAccuracy() float64 {
	if len(s.History) == 0 {
		return 0
	}
	correct := 0
	for _, rec := range s.History {
		if rec.Correct {
			correct++
		}
	}
	return float64(correct) / float64(len(s.History))
}

// windowAccuracy averages the last n window outcomes; ok is false when fewer
// than n outcomes exist.
func (s *SessionState) windowAccuracy(n int) (float64, bool) {
	if len(s.Window) < n {
		return 0, false
	}
	sum := 0
	for _, outcome := range s.Window[len(s.Window)-n:] {
		sum += outcome
	}
	return float64(sum) / float64(n), true
}

// wrongInLast counts incorrect outcomes among the last n window entries.
func (s *SessionState) wrongInLast(n int) int {
	if n > len(s.Window) {
		n = len(s.Window)
	}
	wrong := 0
	for _, outcome := range s.Window[len(s.Window)-n:] {
		if outcome == 0 {
			wrong++
		}
	}
	return wrong
}
