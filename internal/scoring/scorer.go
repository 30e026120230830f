package scoring

import (
	"context"
	"fmt"
	"log"
	"sort"

	"placement-service/internal/adaptive"
	"placement-service/internal/analyzer"
	"placement-service/internal/models"
)

// Per-level accuracy must reach this over at least minLevelItems answers for
// a level to count as placed.
const (
	placementAccuracy = 0.70
	minLevelItems     = 2
)

// Skill buckets for the report. Bank skills collapse into three reporting
// buckets; anything unmapped is left out of the skill analysis.
var skillBuckets = map[string]string{
	"Vocabulary":              "vocabulary",
	"Reading":                 "vocabulary",
	"Vocabulary Recognition":  "vocabulary",
	"Listening Comprehension": "vocabulary",
	"Pronunciation":           "pronunciation",
	"Speaking":                "pronunciation",
	"Sentence Pronunciation":  "pronunciation",
	"Grammar":                 "grammar",
}

// Scorer produces the end-of-test placement report. The rule-based fallback
// is always computed; the advisor may replace it verbatim when its output
// validates.
type Scorer struct {
	config  *adaptive.PlacementConfig
	advisor analyzer.Advisor
}

// NewScorer creates a scorer. The advisor may be nil.
func NewScorer(config *adaptive.PlacementConfig, advisor analyzer.Advisor) *Scorer {
	if config == nil {
		config = adaptive.DefaultPlacementConfig()
	}
	return &Scorer{config: config, advisor: advisor}
}

// Score builds the final report. It never fails and never blocks beyond the
// advisor timeout: on advisor error, timeout or invalid output the fallback
// is used unchanged. The second return reports whether the advisor's report
// was used.
func (s *Scorer) Score(ctx context.Context, state *adaptive.SessionState, endedEarly bool) (*models.PlacementReport, bool) {
	fallback := s.FallbackReport(state, endedEarly)

	if !s.config.AdvisorEnabled || s.advisor == nil {
		return fallback, false
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.AdvisorTimeout)
	defer cancel()

	report, err := s.advisor.Analyze(ctx, state.History)
	if err != nil {
		log.Printf("advisor analysis failed, using fallback: %v", err)
		return fallback, false
	}
	if err := report.Validate(); err != nil {
		log.Printf("advisor report rejected, using fallback: %v", err)
		return fallback, false
	}
	return report, true
}

// FallbackReport is the deterministic rule-based synthesis over the full
// history.
func (s *Scorer) FallbackReport(state *adaptive.SessionState, endedEarly bool) *models.PlacementReport {
	history := state.History
	total := len(history)
	correct := 0
	for _, rec := range history {
		if rec.Correct {
			correct++
		}
	}
	accuracy := 0.0
	if total > 0 {
		accuracy = float64(correct) / float64(total)
	}

	placementLevel := s.placementLevel(state)
	confidence := float64(state.QIndex) / float64(s.config.QuestionsPerTest)
	if confidence > 1 {
		confidence = 1
	}
	confidence *= accuracy

	justification := fmt.Sprintf("Overall accuracy %.0f%% with best performance at Level %d",
		accuracy*100, placementLevel)
	if endedEarly {
		justification += fmt.Sprintf("; test ended early after %d questions because the question pool was exhausted", total)
	}

	report := &models.PlacementReport{
		Placement: models.Placement{
			NovakidLevel:       placementLevel,
			Confidence:         confidence,
			CEFREquivalent:     models.CEFRLabel(placementLevel),
			LevelJustification: justification,
		},
		SkillAnalysis: s.skillAnalysis(history),
		Recommendations: models.Recommendations{
			ImmediateFocus:         []string{"Continue practicing at current level"},
			StrengthsToBuildOn:     []string{"Build on demonstrated skills"},
			SuggestedStartingPoint: fmt.Sprintf("Begin at Novakid Level %d", placementLevel),
			EstimatedProgress:      "Progress varies by individual",
		},
	}
	return report
}

// placementLevel is the highest level with accuracy ≥ 0.70 over at least two
// answers; with no such level it falls back to the current estimate capped
// by the best level the student actually attempted.
func (s *Scorer) placementLevel(state *adaptive.SessionState) int {
	type tally struct{ correct, total int }
	perLevel := make(map[int]*tally)
	best := models.MinLevel
	for _, rec := range state.History {
		t := perLevel[rec.AssignedLevel]
		if t == nil {
			t = &tally{}
			perLevel[rec.AssignedLevel] = t
		}
		t.total++
		if rec.Correct {
			t.correct++
		}
		if rec.AssignedLevel > best {
			best = rec.AssignedLevel
		}
	}

	levels := make([]int, 0, len(perLevel))
	for level := range perLevel {
		levels = append(levels, level)
	}
	sort.Ints(levels)

	placed := -1
	for _, level := range levels {
		t := perLevel[level]
		if t.total >= minLevelItems && float64(t.correct)/float64(t.total) >= placementAccuracy {
			placed = level
		}
	}
	if placed >= 0 {
		return placed
	}

	level := state.CurrentLevel
	if len(state.History) > 0 && level > best {
		level = best
	}
	return level
}

func (s *Scorer) skillAnalysis(history []models.AnsweredRecord) models.SkillAnalysis {
	type tally struct{ correct, total int }
	buckets := map[string]*tally{
		"vocabulary":    {},
		"pronunciation": {},
		"grammar":       {},
	}
	for _, rec := range history {
		bucket, ok := skillBuckets[rec.Skill]
		if !ok {
			continue
		}
		buckets[bucket].total++
		if rec.Correct {
			buckets[bucket].correct++
		}
	}

	build := func(name string) models.SkillScore {
		t := buckets[name]
		if t.total == 0 {
			return models.SkillScore{
				Score:    nil,
				Evidence: []string{models.EvidenceInsufficient},
			}
		}
		score := float64(t.correct) / float64(t.total)
		return models.SkillScore{
			Score: &score,
			Evidence: []string{
				fmt.Sprintf("Answered %d/%d %s questions correctly", t.correct, t.total, name),
			},
		}
	}

	return models.SkillAnalysis{
		Vocabulary:    build("vocabulary"),
		Pronunciation: build("pronunciation"),
		Grammar:       build("grammar"),
	}
}
