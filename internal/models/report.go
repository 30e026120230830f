package models

import (
	"fmt"
	"time"
)

// EvidenceInsufficient tags a skill bucket with no answered questions.
const EvidenceInsufficient = "insufficient-evidence"

type Placement struct {
	NovakidLevel       int     `bson:"novakid_level" json:"novakid_level"`
	Confidence         float64 `bson:"confidence" json:"confidence"`
	CEFREquivalent     string  `bson:"cefr_equivalent" json:"cefr_equivalent"`
	LevelJustification string  `bson:"level_justification" json:"level_justification"`
}

// SkillScore holds the accuracy for one skill bucket. Score is nil when the
// bucket had no questions.
type SkillScore struct {
	Score    *float64 `bson:"score" json:"score"`
	Evidence []string `bson:"evidence" json:"evidence"`
}

type SkillAnalysis struct {
	Vocabulary    SkillScore `bson:"vocabulary" json:"vocabulary"`
	Pronunciation SkillScore `bson:"pronunciation" json:"pronunciation"`
	Grammar       SkillScore `bson:"grammar" json:"grammar"`
}

type Recommendations struct {
	ImmediateFocus         []string `bson:"immediate_focus" json:"immediate_focus"`
	StrengthsToBuildOn     []string `bson:"strengths_to_build_on" json:"strengths_to_build_on"`
	SuggestedStartingPoint string   `bson:"suggested_starting_point" json:"suggested_starting_point"`
	EstimatedProgress      string   `bson:"estimated_progress" json:"estimated_progress"`
}

// PlacementReport is the end-of-test output, either from the advisory
// analyzer or from the rule-based fallback.
type PlacementReport struct {
	Placement       Placement       `bson:"placement" json:"placement"`
	SkillAnalysis   SkillAnalysis   `bson:"skill_analysis" json:"skill_analysis"`
	Recommendations Recommendations `bson:"recommendations" json:"recommendations"`
}

// Validate checks the bounds an advisor-produced report must satisfy before
// it may replace the fallback verbatim.
func (r *PlacementReport) Validate() error {
	if r.Placement.NovakidLevel < MinLevel || r.Placement.NovakidLevel > MaxLevel {
		return fmt.Errorf("placement level %d out of range", r.Placement.NovakidLevel)
	}
	if r.Placement.Confidence < 0 || r.Placement.Confidence > 1 {
		return fmt.Errorf("confidence %.2f out of range", r.Placement.Confidence)
	}
	if r.Placement.CEFREquivalent == "" {
		return fmt.Errorf("missing cefr_equivalent")
	}
	for _, s := range []SkillScore{
		r.SkillAnalysis.Vocabulary, r.SkillAnalysis.Pronunciation, r.SkillAnalysis.Grammar,
	} {
		if s.Score != nil && (*s.Score < 0 || *s.Score > 1) {
			return fmt.Errorf("skill score %.2f out of range", *s.Score)
		}
	}
	if r.Recommendations.SuggestedStartingPoint == "" {
		return fmt.Errorf("missing suggested_starting_point")
	}
	return nil
}

// PlacementResult is the persisted end-of-test record.
type PlacementResult struct {
	ID                string          `bson:"_id,omitempty" json:"id"`
	SessionID         string          `bson:"session_id" json:"session_id"`
	UserID            string          `bson:"user_id" json:"user_id"`
	StudentName       string          `bson:"student_name" json:"student_name"`
	Report            PlacementReport `bson:"report" json:"report"`
	QuestionsAnswered int             `bson:"questions_answered" json:"questions_answered"`
	OverallAccuracy   float64         `bson:"overall_accuracy" json:"overall_accuracy"`
	EndedEarly        bool            `bson:"ended_early" json:"ended_early"`
	AdvisorUsed       bool            `bson:"advisor_used" json:"advisor_used"`
	CreatedAt         time.Time       `bson:"created_at" json:"created_at"`
}
