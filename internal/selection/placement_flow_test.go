package selection

import (
	"context"
	"math/rand"
	"path/filepath"
	"testing"

	"placement-service/internal/adaptive"
	"placement-service/internal/bank"
	"placement-service/internal/models"
	"placement-service/internal/scoring"
)

// Full engine runs over the shipped question bank: selection, adjustment and
// scoring composed exactly as the session service composes them.

func runPlacement(t *testing.T, seed int64, correct func(i int) bool) (*models.PlacementReport, *adaptive.SessionState) {
	t.Helper()
	b, err := bank.Load(filepath.Join("..", "..", "data", "questions.json"))
	if err != nil {
		t.Fatalf("Failed to load bank: %v", err)
	}

	s := NewSelector(nil, rand.New(rand.NewSource(seed)))
	m := adaptive.NewManager(nil)
	state := adaptive.NewSessionState()

	for i := 0; i < 15; i++ {
		q, err := s.SelectNext(state, b)
		if err != nil {
			t.Fatalf("Seed %d: question %d failed: %v", seed, i+1, err)
		}
		m.ProcessAnswer(state, models.AnsweredRecord{
			QuestionID:    q.ID,
			Mechanic:      q.Mechanic,
			AssignedLevel: q.AssignedLevel,
			Skill:         q.Skill,
			Correct:       correct(i),
			IsCalibration: q.IsCalibration,
		})
	}

	report, _ := scoring.NewScorer(nil, nil).Score(context.Background(), state, false)
	return report, state
}

func TestPlacementAllCorrect(t *testing.T) {
	for seed := int64(1); seed <= 10; seed++ {
		report, state := runPlacement(t, seed, func(int) bool { return true })

		if report.Placement.NovakidLevel != 5 {
			t.Errorf("Seed %d: expected placement 5, got %d", seed, report.Placement.NovakidLevel)
		}
		if report.Placement.Confidence < 0.90 {
			t.Errorf("Seed %d: expected confidence >= 0.90, got %.2f", seed, report.Placement.Confidence)
		}
		if report.Placement.CEFREquivalent != "B2" {
			t.Errorf("Seed %d: expected CEFR B2, got %s", seed, report.Placement.CEFREquivalent)
		}

		ceiling := 0
		for _, rec := range state.History {
			if rec.AssignedLevel == 5 {
				ceiling++
			}
		}
		if ceiling < 2 {
			t.Errorf("Seed %d: only %d level-5 questions served; the scorer needs at least 2", seed, ceiling)
		}
	}
}

func TestPlacementAllIncorrect(t *testing.T) {
	for seed := int64(1); seed <= 10; seed++ {
		report, state := runPlacement(t, seed, func(int) bool { return false })

		if report.Placement.NovakidLevel != 0 {
			t.Errorf("Seed %d: expected placement 0, got %d", seed, report.Placement.NovakidLevel)
		}
		if report.Placement.CEFREquivalent != "pre-A1" {
			t.Errorf("Seed %d: expected CEFR pre-A1, got %s", seed, report.Placement.CEFREquivalent)
		}
		if report.Placement.Confidence != 0 {
			t.Errorf("Seed %d: expected zero confidence, got %.2f", seed, report.Placement.Confidence)
		}
		if got := report.Recommendations.SuggestedStartingPoint; got != "Begin at Novakid Level 0" {
			t.Errorf("Seed %d: expected starting point at level 0, got %q", seed, got)
		}
		if state.CurrentLevel != 0 {
			t.Errorf("Seed %d: expected final estimate 0, got %d", seed, state.CurrentLevel)
		}
	}
}

func TestPlacementOscillating(t *testing.T) {
	for seed := int64(1); seed <= 10; seed++ {
		report, state := runPlacement(t, seed, func(i int) bool { return i%2 == 0 })

		if state.CurrentLevel != 1 {
			t.Errorf("Seed %d: expected the estimate to hold at 1, got %d", seed, state.CurrentLevel)
		}
		if report.Placement.NovakidLevel > 2 {
			t.Errorf("Seed %d: expected placement near 1, got %d", seed, report.Placement.NovakidLevel)
		}
	}
}
