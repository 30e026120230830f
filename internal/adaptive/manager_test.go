package adaptive

import (
	"testing"

	"placement-service/internal/models"
)

func answered(correct bool) models.AnsweredRecord {
	return models.AnsweredRecord{
		QuestionID:    "q",
		Mechanic:      models.MechanicTextChoice,
		AssignedLevel: 1,
		Skill:         "Grammar",
		Correct:       correct,
	}
}

func feed(m *Manager, state *SessionState, outcomes ...bool) *Adjustment {
	var adj *Adjustment
	for _, correct := range outcomes {
		adj = m.ProcessAnswer(state, answered(correct))
	}
	return adj
}

func TestStandardLevelUp(t *testing.T) {
	m := NewManager(nil)
	state := NewSessionState()

	adj := feed(m, state, true, true, true)

	if adj.Rule != RuleStandardUp {
		t.Errorf("Expected rule %s, got %q", RuleStandardUp, adj.Rule)
	}
	if state.CurrentLevel != 2 {
		t.Errorf("Expected level 2 after three correct answers, got %d", state.CurrentLevel)
	}
	if state.CooldownRemaining != 2 {
		t.Errorf("Expected cooldown 2 after adjustment, got %d", state.CooldownRemaining)
	}
}

func TestCooldownBlocksCascade(t *testing.T) {
	m := NewManager(nil)
	state := NewSessionState()
	feed(m, state, true, true, true)

	// Fourth answer lands inside the cooldown; no rule may fire.
	adj := feed(m, state, true)

	if adj.Rule != "" {
		t.Errorf("Expected no rule during cooldown, got %q", adj.Rule)
	}
	if state.CurrentLevel != 2 {
		t.Errorf("Expected level unchanged during cooldown, got %d", state.CurrentLevel)
	}
	if state.CooldownRemaining != 1 {
		t.Errorf("Expected cooldown to tick down to 1, got %d", state.CooldownRemaining)
	}
}

func TestCooldownFrozenDuringCalibration(t *testing.T) {
	config := DefaultPlacementConfig()
	config.CalibrationQuestions = 5
	m := NewManager(config)
	state := NewSessionState()

	// Third calibration answer triggers a level-up and starts the cooldown.
	feed(m, state, true, true, true)
	if state.CooldownRemaining != 2 {
		t.Fatalf("Expected cooldown 2, got %d", state.CooldownRemaining)
	}

	// Answers four and five are still calibration: the countdown is frozen.
	feed(m, state, true, true)
	if state.CooldownRemaining != 2 {
		t.Errorf("Expected cooldown frozen at 2 during calibration, got %d", state.CooldownRemaining)
	}

	// First adaptive answer resumes the countdown.
	feed(m, state, true)
	if state.CooldownRemaining != 1 {
		t.Errorf("Expected cooldown 1 after first adaptive answer, got %d", state.CooldownRemaining)
	}
}

func TestStrongJump(t *testing.T) {
	m := NewManager(nil)
	state := &SessionState{
		CurrentLevel:     2,
		Window:           []int{1, 1, 1},
		Streak:           3,
		Used:             make(map[string]bool),
		CalibrationIndex: 3,
		QIndex:           5,
	}

	adj := feed(m, state, true)

	if adj.Rule != RuleStrongJump {
		t.Errorf("Expected rule %s, got %q", RuleStrongJump, adj.Rule)
	}
	if state.CurrentLevel != 4 {
		t.Errorf("Expected two-level jump to 4, got %d", state.CurrentLevel)
	}
}

func TestEarlyCeilingPush(t *testing.T) {
	m := NewManager(nil)
	state := &SessionState{
		CurrentLevel:     4,
		Window:           []int{0, 1, 1},
		Streak:           2,
		Used:             make(map[string]bool),
		CalibrationIndex: 3,
		QIndex:           7,
	}

	adj := feed(m, state, true)

	if adj.Rule != RuleEarlyCeilingPush {
		t.Errorf("Expected rule %s, got %q", RuleEarlyCeilingPush, adj.Rule)
	}
	if state.CurrentLevel != 5 {
		t.Errorf("Expected push to level 5, got %d", state.CurrentLevel)
	}
}

func TestEarlyCeilingPushExpiresAfterTen(t *testing.T) {
	m := NewManager(nil)
	state := &SessionState{
		CurrentLevel:     4,
		Window:           []int{1, 0, 1, 1},
		Streak:           1,
		Used:             make(map[string]bool),
		CalibrationIndex: 3,
		QIndex:           10,
	}

	adj := feed(m, state, true)

	if adj.Rule != "" {
		t.Errorf("Expected no rule past question ten, got %q", adj.Rule)
	}
	if state.CurrentLevel != 4 {
		t.Errorf("Expected level unchanged, got %d", state.CurrentLevel)
	}
}

func TestCeilingDropProtection(t *testing.T) {
	tests := []struct {
		name      string
		window    []int
		wantLevel int
		wantRule  string
	}{
		{
			name:      "two wrong in last four holds level five",
			window:    []int{1, 1, 1, 0},
			wantLevel: 5,
			wantRule:  "",
		},
		{
			name:      "three wrong in last four drops to four",
			window:    []int{1, 0, 1, 0},
			wantLevel: 4,
			wantRule:  RuleCeilingDrop,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(nil)
			state := &SessionState{
				CurrentLevel:     5,
				Window:           append([]int{}, tt.window...),
				Used:             make(map[string]bool),
				CalibrationIndex: 3,
				QIndex:           8,
			}

			adj := feed(m, state, false)

			if adj.Rule != tt.wantRule {
				t.Errorf("Expected rule %q, got %q", tt.wantRule, adj.Rule)
			}
			if state.CurrentLevel != tt.wantLevel {
				t.Errorf("Expected level %d, got %d", tt.wantLevel, state.CurrentLevel)
			}
		})
	}
}

func TestStandardLevelDown(t *testing.T) {
	m := NewManager(nil)
	state := &SessionState{
		CurrentLevel:     1,
		Window:           []int{0, 0},
		Used:             make(map[string]bool),
		CalibrationIndex: 3,
		QIndex:           4,
	}

	adj := feed(m, state, false)

	if adj.Rule != RuleStandardDown {
		t.Errorf("Expected rule %s, got %q", RuleStandardDown, adj.Rule)
	}
	if state.CurrentLevel != 0 {
		t.Errorf("Expected drop to level 0, got %d", state.CurrentLevel)
	}
}

func TestLevelNeverBelowFloor(t *testing.T) {
	m := NewManager(nil)
	state := &SessionState{
		CurrentLevel:     0,
		Window:           []int{0, 0, 0},
		Used:             make(map[string]bool),
		CalibrationIndex: 3,
		QIndex:           5,
	}

	adj := feed(m, state, false)

	if adj.Rule != "" {
		t.Errorf("Expected no rule at the floor, got %q", adj.Rule)
	}
	if state.CurrentLevel != 0 {
		t.Errorf("Expected level to stay at 0, got %d", state.CurrentLevel)
	}
}

func TestMomentumClamping(t *testing.T) {
	m := NewManager(nil)
	state := NewSessionState()

	for i := 0; i < 10; i++ {
		feed(m, state, false)
	}
	if state.Momentum != MomentumMin {
		t.Errorf("Expected momentum clamped at %.1f, got %.2f", MomentumMin, state.Momentum)
	}

	for i := 0; i < 20; i++ {
		feed(m, state, true)
	}
	if state.Momentum != MomentumMax {
		t.Errorf("Expected momentum clamped at %.1f, got %.2f", MomentumMax, state.Momentum)
	}
}

func TestWindowEviction(t *testing.T) {
	m := NewManager(nil)
	state := NewSessionState()

	feed(m, state, true, false, true, false, true, false, true, false)

	if len(state.Window) != 5 {
		t.Errorf("Expected window capped at 5, got %d", len(state.Window))
	}
	if state.QIndex != 8 {
		t.Errorf("Expected question index 8, got %d", state.QIndex)
	}
	if len(state.History) != 8 {
		t.Errorf("Expected full history of 8, got %d", len(state.History))
	}
}

func TestCategoryTally(t *testing.T) {
	m := NewManager(nil)
	state := NewSessionState()

	mechanics := []models.Mechanic{
		models.MechanicWordPronunciation,
		models.MechanicTextChoice,
		models.MechanicAudioImageChoice,
	}
	for _, mech := range mechanics {
		rec := answered(true)
		rec.Mechanic = mech
		m.ProcessAnswer(state, rec)
	}

	if state.AudioServed != 2 {
		t.Errorf("Expected 2 audio-side answers (pronunciation counts as audio), got %d", state.AudioServed)
	}
	if state.TextServed != 1 {
		t.Errorf("Expected 1 text-side answer, got %d", state.TextServed)
	}
}

func TestMechanicHistoryRing(t *testing.T) {
	m := NewManager(nil)
	state := NewSessionState()

	mechanics := []models.Mechanic{
		models.MechanicWordPronunciation,
		models.MechanicTextChoice,
		models.MechanicSentenceScramble,
	}
	for _, mech := range mechanics {
		rec := answered(true)
		rec.Mechanic = mech
		m.ProcessAnswer(state, rec)
	}

	if len(state.MechanicHistory) != 2 {
		t.Fatalf("Expected mechanic ring of 2, got %d", len(state.MechanicHistory))
	}
	if state.MechanicHistory[0] != models.MechanicTextChoice ||
		state.MechanicHistory[1] != models.MechanicSentenceScramble {
		t.Errorf("Expected last two mechanics kept in order, got %v", state.MechanicHistory)
	}
}

func TestCompleteFlag(t *testing.T) {
	m := NewManager(nil)
	state := NewSessionState()

	for i := 0; i < 14; i++ {
		if adj := feed(m, state, true); adj.Complete {
			t.Fatalf("Expected incomplete after %d answers", i+1)
		}
	}
	if adj := feed(m, state, true); !adj.Complete {
		t.Error("Expected complete after 15 answers")
	}
	if state.Phase(m.Config()) != PhaseComplete {
		t.Errorf("Expected phase %s, got %s", PhaseComplete, state.Phase(m.Config()))
	}
}
