package adaptive

import "placement-service/internal/models"

// Manager applies the adjustment policy after every answered question.
type Manager struct {
	config *PlacementConfig
}

// NewManager creates an adjustment manager. A nil config uses the defaults.
func NewManager(config *PlacementConfig) *Manager {
	if config == nil {
		config = DefaultPlacementConfig()
	}
	return &Manager{config: config}
}

// Adjustment describes what ProcessAnswer did to the session state.
type Adjustment struct {
	PreviousLevel int    `json:"previous_level"`
	NewLevel      int    `json:"new_level"`
	Rule          string `json:"rule,omitempty"`
	Complete      bool   `json:"complete"`
}

// Adjustment rule names, in cascade order.
const (
	RuleEarlyCeilingPush = "early-ceiling-push"
	RuleStrongJump       = "strong-jump"
	RuleStandardUp       = "standard-up"
	RuleCeilingDrop      = "ceiling-drop-protection"
	RuleStandardDown     = "standard-down"
)

// ProcessAnswer folds one answered question into the state: window, streak,
// momentum, category tally, mechanic ring, question index, then the level
// adjustment cascade. Rules are evaluated top to bottom and the first match
// fires; cooldown is absolute and blocks the whole cascade.
func (m *Manager) ProcessAnswer(state *SessionState, rec models.AnsweredRecord) *Adjustment {
	cfg := m.config

	// Cooldown is frozen while calibration questions are being answered.
	wasCalibration := state.QIndex < cfg.CalibrationQuestions

	outcome := 0
	if rec.Correct {
		outcome = 1
	}
	state.Window = append(state.Window, outcome)
	if len(state.Window) > cfg.PerformanceWindowSize {
		state.Window = state.Window[len(state.Window)-cfg.PerformanceWindowSize:]
	}
	state.History = append(state.History, rec)

	if rec.Correct {
		state.Streak++
		state.Momentum += momentumGain
	} else {
		state.Streak = 0
		state.Momentum -= momentumLoss
	}
	if state.Momentum > MomentumMax {
		state.Momentum = MomentumMax
	}
	if state.Momentum < MomentumMin {
		state.Momentum = MomentumMin
	}

	if rec.Mechanic.BalanceCategory() == models.CategoryAudio {
		state.AudioServed++
	} else {
		state.TextServed++
	}

	state.MechanicHistory = append(state.MechanicHistory, rec.Mechanic)
	if len(state.MechanicHistory) > mechanicHistorySize {
		state.MechanicHistory = state.MechanicHistory[len(state.MechanicHistory)-mechanicHistorySize:]
	}

	state.QIndex++

	adj := &Adjustment{
		PreviousLevel: state.CurrentLevel,
		NewLevel:      state.CurrentLevel,
		Complete:      state.QIndex >= cfg.QuestionsPerTest,
	}

	if state.CooldownRemaining > 0 {
		if !wasCalibration {
			state.CooldownRemaining--
		}
		return adj
	}

	shortAcc, ok := state.windowAccuracy(shortWindowSize)
	if !ok {
		return adj
	}

	switch {
	case state.CurrentLevel == models.MaxLevel-1 &&
		state.QIndex <= earlyPushMaxIndex &&
		state.Streak >= earlyPushMinStreak &&
		shortAcc >= earlyPushAccuracy:
		state.CurrentLevel = models.MaxLevel
		adj.Rule = RuleEarlyCeilingPush

	case shortAcc >= cfg.StrongJumpAccuracy &&
		state.Streak >= cfg.StrongJumpStreak &&
		state.CurrentLevel <= 3:
		state.CurrentLevel += 2
		adj.Rule = RuleStrongJump

	case shortAcc >= cfg.LevelUpThreshold &&
		state.Streak >= 3 &&
		state.CurrentLevel < models.MaxLevel:
		state.CurrentLevel++
		adj.Rule = RuleStandardUp

	case state.CurrentLevel == models.MaxLevel &&
		state.wrongInLast(ceilingDropLookup) >= ceilingDropWrong:
		state.CurrentLevel = models.MaxLevel - 1
		adj.Rule = RuleCeilingDrop

	case state.CurrentLevel < models.MaxLevel &&
		shortAcc <= cfg.LevelDownThreshold &&
		state.CurrentLevel > models.MinLevel:
		state.CurrentLevel--
		adj.Rule = RuleStandardDown
	}

	if state.CurrentLevel > models.MaxLevel {
		state.CurrentLevel = models.MaxLevel
	}
	if state.CurrentLevel < models.MinLevel {
		state.CurrentLevel = models.MinLevel
	}

	if adj.Rule != "" {
		state.CooldownRemaining = cfg.AdjustCooldown
		adj.NewLevel = state.CurrentLevel
	}

	return adj
}

// Config exposes the manager's configuration to collaborators.
func (m *Manager) Config() *PlacementConfig {
	return m.config
}
