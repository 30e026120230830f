package selection

import (
	"errors"
	"math/rand"
	"sort"
	"time"

	"placement-service/internal/adaptive"
	"placement-service/internal/bank"
	"placement-service/internal/models"
)

// ErrOutOfQuestions means the whole unused pool is empty. The service ends
// the test early and scores whatever history exists.
var ErrOutOfQuestions = errors.New("no unused questions remain at any level")

// Calibration draws from a fixed level sequence with a restricted mechanic
// set per level.
var calibrationLevels = []int{0, 1, 2}

func calibrationMechanics(level int) []models.Mechanic {
	switch {
	case level <= 0:
		return []models.Mechanic{models.MechanicWordPronunciation}
	case level == 1:
		return []models.Mechanic{models.MechanicWordPronunciation, models.MechanicImageTextChoice}
	default:
		return []models.Mechanic{
			models.MechanicWordPronunciation,
			models.MechanicImageTextChoice,
			models.MechanicTextChoice,
		}
	}
}

// Selection phase boundaries: candidate radius widens at the mid phase and
// the end-test push probes the ceiling.
const (
	earlyPhaseEnd   = 8
	endPushStart    = 13
	endPushAccuracy = 0.85
	endPushLowerAcc = 0.70

	// Uniform sample from the first candidates in stable bank order.
	topCandidates = 5

	// Bias of the balance coin toward the under-represented category.
	balanceBias = 0.65
	// Tally gap that forces the under-represented category outright.
	balanceForceGap = 2
)

// Selector implements the selection policy. The random source is injected
// so tests can pin seeds.
type Selector struct {
	config *adaptive.PlacementConfig
	rng    *rand.Rand
}

// NewSelector creates a selector. A nil rng falls back to a time-seeded one.
func NewSelector(config *adaptive.PlacementConfig, rng *rand.Rand) *Selector {
	if config == nil {
		config = adaptive.DefaultPlacementConfig()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Selector{config: config, rng: rng}
}

// SelectNext picks the next question for the session, stamps its assigned
// level and marks it used. It returns ErrOutOfQuestions when nothing unused
// is left anywhere.
func (s *Selector) SelectNext(state *adaptive.SessionState, b *bank.Bank) (*models.Question, error) {
	if state.CalibrationIndex < s.config.CalibrationQuestions {
		return s.selectCalibration(state, b)
	}
	return s.selectAdaptive(state, b)
}

func (s *Selector) selectCalibration(state *adaptive.SessionState, b *bank.Bank) (*models.Question, error) {
	level := calibrationLevels[state.CalibrationIndex%len(calibrationLevels)]
	safe := calibrationMechanics(level)

	pool := make([]models.Question, 0)
	for _, q := range b.Level(level) {
		if state.Used[q.ID] {
			continue
		}
		for _, m := range safe {
			if q.Mechanic == m {
				pool = append(pool, q)
				break
			}
		}
	}

	candidates := s.applyDiversityGates(pool, state)
	if len(candidates) == 0 {
		// Relax the calibration mechanic restriction, keep curriculum gating.
		candidates = s.unusedAtLevels(state, b, []int{level})
	}
	if len(candidates) == 0 {
		candidates = s.unusedAtLevels(state, b, allLevels())
	}
	if len(candidates) == 0 {
		return nil, ErrOutOfQuestions
	}

	picked := s.sampleTop(candidates)
	picked.AssignedLevel = picked.Level
	picked.IsCalibration = true
	state.MarkServed(picked.ID)
	state.CalibrationIndex++
	return &picked, nil
}

func (s *Selector) selectAdaptive(state *adaptive.SessionState, b *bank.Bank) (*models.Question, error) {
	levels := s.candidateLevels(state)
	pool := s.unusedAtLevels(state, b, levels)

	candidates := s.applyDiversityGates(pool, state)
	if len(candidates) == 0 {
		// Last relaxation step: widen to every level.
		candidates = s.unusedAtLevels(state, b, allLevels())
	}
	if len(candidates) == 0 {
		return nil, ErrOutOfQuestions
	}

	picked := s.sampleTop(candidates)
	picked.AssignedLevel = picked.Level
	state.MarkServed(picked.ID)
	return &picked, nil
}

// candidateLevels builds the level set around the current estimate: radius 1
// early, radius 2 from the mid phase, plus the end-test push for strong
// students. Levels come back nearest-to-current first (higher level wins a
// distance tie) so the pooled candidates lead with the best level match.
func (s *Selector) candidateLevels(state *adaptive.SessionState) []int {
	radius := 1
	if state.QIndex >= earlyPhaseEnd {
		radius = 2
	}

	set := make(map[int]bool)
	for d := -radius; d <= radius; d++ {
		set[state.CurrentLevel+d] = true
	}

	if state.QIndex >= endPushStart {
		acc := state.OverallAccuracy()
		if acc >= endPushAccuracy {
			set[4] = true
			set[5] = true
		}
		if acc >= endPushLowerAcc && state.CurrentLevel >= 3 {
			set[state.CurrentLevel+1] = true
		}
	}

	levels := make([]int, 0, len(set))
	for level := range set {
		if level >= models.MinLevel && level <= models.MaxLevel {
			levels = append(levels, level)
		}
	}
	sort.Slice(levels, func(i, j int) bool {
		di := absDistance(levels[i], state.CurrentLevel)
		dj := absDistance(levels[j], state.CurrentLevel)
		if di != dj {
			return di < dj
		}
		return levels[i] > levels[j]
	})
	return levels
}

func absDistance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

// unusedAtLevels gathers curriculum-gated unused questions in stable bank
// order within each level, levels in the given order.
func (s *Selector) unusedAtLevels(state *adaptive.SessionState, b *bank.Bank, levels []int) []models.Question {
	pool := make([]models.Question, 0)
	for _, level := range levels {
		for _, q := range b.Level(level) {
			if state.Used[q.ID] {
				continue
			}
			if !models.MechanicAllowedAt(q.Mechanic, level) {
				continue
			}
			pool = append(pool, q)
		}
	}
	return pool
}

// applyDiversityGates runs the diversity gates with their relaxation ladder.
// Recency filters the whole pool; the category balance applies within the
// leading level only, so balance never outranks level proximity. On empty the
// category gate relaxes first, then recency; widening the level set is the
// caller's last step. The result is empty only when the pool itself is.
func (s *Selector) applyDiversityGates(pool []models.Question, state *adaptive.SessionState) []models.Question {
	if len(pool) == 0 {
		return nil
	}
	fresh := s.applyRecencyGate(pool, state)
	if len(fresh) == 0 {
		fresh = pool
	}
	if balanced := s.applyCategoryGate(leadLevelSlice(fresh), state); len(balanced) > 0 {
		return balanced
	}
	return fresh
}

// leadLevelSlice is the contiguous prefix sharing the first candidate's
// level. Candidates arrive grouped by level, nearest level first.
func leadLevelSlice(candidates []models.Question) []models.Question {
	lead := candidates[0].Level
	n := 1
	for n < len(candidates) && candidates[n].Level == lead {
		n++
	}
	return candidates[:n]
}

// applyRecencyGate keeps only candidates whose mechanic is not among the last
// two served. The result may be empty; relaxation is the caller's job.
func (s *Selector) applyRecencyGate(pool []models.Question, state *adaptive.SessionState) []models.Question {
	if len(state.MechanicHistory) == 0 {
		return pool
	}
	recent := make(map[models.Mechanic]bool, len(state.MechanicHistory))
	for _, m := range state.MechanicHistory {
		recent[m] = true
	}
	fresh := make([]models.Question, 0, len(pool))
	for _, q := range pool {
		if !recent[q.Mechanic] {
			fresh = append(fresh, q)
		}
	}
	return fresh
}

// applyCategoryGate keeps candidates on the side of the audio/text balance
// chosen by a biased coin, or forced deterministically when the served tally
// is lopsided by two or more.
func (s *Selector) applyCategoryGate(pool []models.Question, state *adaptive.SessionState) []models.Question {
	var want models.Category
	switch {
	case state.AudioServed-state.TextServed >= balanceForceGap:
		want = models.CategoryText
	case state.TextServed-state.AudioServed >= balanceForceGap:
		want = models.CategoryAudio
	default:
		pAudio := 0.5
		if state.AudioServed > state.TextServed {
			pAudio = 1 - balanceBias
		} else if state.TextServed > state.AudioServed {
			pAudio = balanceBias
		}
		if s.rng.Float64() < pAudio {
			want = models.CategoryAudio
		} else {
			want = models.CategoryText
		}
	}

	kept := make([]models.Question, 0, len(pool))
	for _, q := range pool {
		if q.Mechanic.BalanceCategory() == want {
			kept = append(kept, q)
		}
	}
	return kept
}

// sampleTop picks uniformly from the first topCandidates of the leading
// level. Candidates arrive grouped by level, nearest level first, so the
// sample stays at the best level match and only widens once that level has
// nothing left to offer. Bank order within the level keeps a pinned seed
// deterministic.
func (s *Selector) sampleTop(candidates []models.Question) models.Question {
	lead := candidates[0].Level
	n := 0
	for n < len(candidates) && n < topCandidates && candidates[n].Level == lead {
		n++
	}
	return candidates[s.rng.Intn(n)]
}

func allLevels() []int {
	levels := make([]int, 0, models.MaxLevel-models.MinLevel+1)
	for level := models.MinLevel; level <= models.MaxLevel; level++ {
		levels = append(levels, level)
	}
	return levels
}
