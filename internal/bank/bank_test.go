package bank

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"placement-service/internal/models"
)

func writeBankFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "questions.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write bank file: %v", err)
	}
	return path
}

const validBankJSON = `{
	"0": [{"id": "l0-1", "mechanic": "word-pronunciation-practice", "skill": "Pronunciation", "target_word": "cat"}],
	"1": [{"id": "l1-1", "mechanic": "image-single-choice-from-texts", "skill": "Vocabulary", "image_description": "a red apple", "options": ["apple", "banana"], "correct_answer": 0}],
	"2": [{"id": "l2-1", "mechanic": "multiple-choice-text-text", "skill": "Grammar", "sentence": "She ___ happy.", "options": ["is", "are"], "correct_answer": 0}],
	"3": [{"id": "l3-1", "mechanic": "sentence-scramble", "skill": "Grammar", "word_options": ["I", "run"], "correct_order": [0, 1]}],
	"4": [{"id": "l4-1", "mechanic": "sentence-pronunciation-practice", "skill": "Pronunciation", "target_sentence": "The cat sleeps."}],
	"5": [{"id": "l5-1", "mechanic": "audio-category-sorting", "skill": "Listening Comprehension", "categories": ["animals", "food"], "items": [{"id": "i1", "text": "dog", "category": "animals"}]}]
}`

func TestLoadValidBank(t *testing.T) {
	b, err := Load(writeBankFile(t, validBankJSON))
	if err != nil {
		t.Fatalf("Failed to load valid bank: %v", err)
	}
	if b.Size() != 6 {
		t.Errorf("Expected 6 questions, got %d", b.Size())
	}

	// The level key stamps the question's level.
	level3 := b.Level(3)
	if len(level3) != 1 || level3[0].Level != 3 {
		t.Errorf("Expected level 3 stamped from the blob key, got %+v", level3)
	}
}

func TestLoadMalformedJSON(t *testing.T) {
	_, err := Load(writeBankFile(t, "{not json"))
	if !errors.Is(err, ErrBankMalformed) {
		t.Fatalf("Expected ErrBankMalformed, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if !errors.Is(err, ErrBankMalformed) {
		t.Fatalf("Expected ErrBankMalformed for a missing file, got %v", err)
	}
}

func TestLoadLevelGap(t *testing.T) {
	gapJSON := `{
		"0": [{"id": "l0-1", "mechanic": "word-pronunciation-practice", "target_word": "cat"}],
		"1": [{"id": "l1-1", "mechanic": "word-pronunciation-practice", "target_word": "dog"}],
		"2": [{"id": "l2-1", "mechanic": "word-pronunciation-practice", "target_word": "sun"}],
		"4": [{"id": "l4-1", "mechanic": "word-pronunciation-practice", "target_word": "moon"}],
		"5": [{"id": "l5-1", "mechanic": "word-pronunciation-practice", "target_word": "star"}]
	}`
	_, err := Load(writeBankFile(t, gapJSON))
	if !errors.Is(err, ErrBankLevelGap) {
		t.Fatalf("Expected ErrBankLevelGap when level 3 is absent, got %v", err)
	}
}

func TestLoadCurriculumViolation(t *testing.T) {
	// Sentence scramble is not unlocked before level 2.
	violationJSON := `{
		"0": [{"id": "l0-1", "mechanic": "word-pronunciation-practice", "target_word": "cat"}],
		"1": [{"id": "l1-1", "mechanic": "sentence-scramble", "word_options": ["I", "run"], "correct_order": [0, 1]}],
		"2": [{"id": "l2-1", "mechanic": "word-pronunciation-practice", "target_word": "sun"}],
		"3": [{"id": "l3-1", "mechanic": "word-pronunciation-practice", "target_word": "sky"}],
		"4": [{"id": "l4-1", "mechanic": "word-pronunciation-practice", "target_word": "moon"}],
		"5": [{"id": "l5-1", "mechanic": "word-pronunciation-practice", "target_word": "star"}]
	}`
	_, err := Load(writeBankFile(t, violationJSON))
	if !errors.Is(err, ErrBankMalformed) {
		t.Fatalf("Expected ErrBankMalformed for a curriculum violation, got %v", err)
	}
}

func TestLoadIncompletePayload(t *testing.T) {
	missingWordJSON := `{
		"0": [{"id": "l0-1", "mechanic": "word-pronunciation-practice"}],
		"1": [{"id": "l1-1", "mechanic": "word-pronunciation-practice", "target_word": "dog"}],
		"2": [{"id": "l2-1", "mechanic": "word-pronunciation-practice", "target_word": "sun"}],
		"3": [{"id": "l3-1", "mechanic": "word-pronunciation-practice", "target_word": "sky"}],
		"4": [{"id": "l4-1", "mechanic": "word-pronunciation-practice", "target_word": "moon"}],
		"5": [{"id": "l5-1", "mechanic": "word-pronunciation-practice", "target_word": "star"}]
	}`
	_, err := Load(writeBankFile(t, missingWordJSON))
	if !errors.Is(err, ErrBankMalformed) {
		t.Fatalf("Expected ErrBankMalformed for a missing payload field, got %v", err)
	}
}

func TestFromQuestions(t *testing.T) {
	questions := make([]models.Question, 0, 6)
	words := []string{"cat", "dog", "sun", "sky", "moon", "star"}
	for level := models.MinLevel; level <= models.MaxLevel; level++ {
		questions = append(questions, models.Question{
			ID:         words[level],
			Mechanic:   models.MechanicWordPronunciation,
			Level:      level,
			Skill:      "Pronunciation",
			TargetWord: words[level],
		})
	}

	b, err := FromQuestions(questions)
	if err != nil {
		t.Fatalf("Failed to group questions: %v", err)
	}
	if b.Size() != 6 {
		t.Errorf("Expected 6 questions, got %d", b.Size())
	}
	if got := b.Level(4); len(got) != 1 || got[0].ID != "moon" {
		t.Errorf("Expected level 4 to hold its question, got %+v", got)
	}
}
