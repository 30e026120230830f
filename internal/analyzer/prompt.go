package analyzer

import (
	"encoding/json"
	"fmt"

	"placement-service/internal/models"
)

// buildAnalysisPrompt renders the enriched history into the placement
// analysis prompt. The model must answer with the report JSON only.
func buildAnalysisPrompt(history []models.AnsweredRecord) string {
	detailed, _ := json.MarshalIndent(history, "", "  ")

	return fmt.Sprintf(`Analyze this student's ESL placement test results to determine their Novakid level.

TEST RESULTS:
%s

NOVAKID LEVEL SYSTEM:
- Level 0 (pre-A1): Complete beginner, basic words only
- Level 1 (A1): Basic vocabulary and simple phrases
- Level 2 (A1+): Expanded vocabulary and basic grammar
- Level 3 (A2): Simple conversations and grammar
- Level 4 (B1): Complex sentences and varied vocabulary
- Level 5 (B2): Fluent communication and complex grammar

ANALYSIS REQUIREMENTS:
1. Determine the student's placement level (0-5)
2. Calculate confidence in the placement
3. Identify strengths and weaknesses
4. Provide specific recommendations

Consider:
- Accuracy patterns across different mechanics
- Performance at different levels
- Consistency of responses
- Skills demonstrated

Return ONLY valid JSON in this exact format:
{
  "placement": {
    "novakid_level": 2,
    "confidence": 0.75,
    "cefr_equivalent": "A1+",
    "level_justification": "Consistent performance at Level 2 tasks with some Level 3 success"
  },
  "skill_analysis": {
    "vocabulary": {"score": 0.7, "evidence": ["Correctly identified 7/10 vocabulary items"]},
    "pronunciation": {"score": 0.8, "evidence": ["Good self-assessment on basic words"]},
    "grammar": {"score": 0.6, "evidence": ["Understands present simple"]}
  },
  "recommendations": {
    "immediate_focus": ["Review past tense forms"],
    "strengths_to_build_on": ["Good pronunciation foundation"],
    "suggested_starting_point": "Begin at Novakid Level 2 with grammar support",
    "estimated_progress": "Ready for Level 3 in 4-6 weeks with regular practice"
  }
}`, detailed)
}
