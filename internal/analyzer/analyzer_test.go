package analyzer

import (
	"encoding/json"
	"strings"
	"testing"

	"placement-service/internal/models"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "bare json untouched",
			in:   `{"a": 1}`,
			want: `{"a": 1}`,
		},
		{
			name: "json fence stripped",
			in:   "```json\n{\"a\": 1}\n```",
			want: `{"a": 1}`,
		},
		{
			name: "plain fence stripped",
			in:   "```\n{\"a\": 1}\n```",
			want: `{"a": 1}`,
		},
		{
			name: "surrounding whitespace trimmed",
			in:   "  \n{\"a\": 1}\n  ",
			want: `{"a": 1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanJSONBlock(tt.in); got != tt.want {
				t.Errorf("cleanJSONBlock(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestBuildAnalysisPrompt(t *testing.T) {
	history := []models.AnsweredRecord{
		{
			QuestionID:    "q-1",
			Mechanic:      models.MechanicTextChoice,
			AssignedLevel: 2,
			Skill:         "Grammar",
			Correct:       true,
		},
	}

	prompt := buildAnalysisPrompt(history)

	if !strings.Contains(prompt, `"question_id": "q-1"`) {
		t.Error("Expected the history to be embedded in the prompt")
	}
	if !strings.Contains(prompt, "Return ONLY valid JSON") {
		t.Error("Expected the JSON-only instruction in the prompt")
	}

	// The format example in the prompt must itself parse into a report, so
	// an obedient model cannot produce an unparseable shape.
	start := strings.Index(prompt, "{\n  \"placement\"")
	if start < 0 {
		t.Fatal("Expected the report format example in the prompt")
	}
	var report models.PlacementReport
	if err := json.Unmarshal([]byte(prompt[start:]), &report); err != nil {
		t.Fatalf("Format example does not parse as a report: %v", err)
	}
	if err := report.Validate(); err != nil {
		t.Errorf("Format example fails report validation: %v", err)
	}
}
