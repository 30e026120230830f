package bank

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"placement-service/internal/models"
)

var (
	// ErrBankMalformed means the bank blob was unreadable or a question is
	// missing required fields. Fatal at startup.
	ErrBankMalformed = errors.New("question bank malformed")
	// ErrBankLevelGap means a level 0..5 is absent or empty.
	ErrBankLevelGap = errors.New("question bank has an empty level")
)

// Bank is the immutable level→questions mapping. It is loaded once at
// startup and shared by all sessions without synchronization.
type Bank struct {
	byLevel map[int][]models.Question
}

// New builds and validates a bank from a level→questions mapping.
func New(byLevel map[int][]models.Question) (*Bank, error) {
	for level := models.MinLevel; level <= models.MaxLevel; level++ {
		questions := byLevel[level]
		if len(questions) == 0 {
			return nil, fmt.Errorf("%w: level %d", ErrBankLevelGap, level)
		}
		for i := range questions {
			q := &questions[i]
			if err := q.ValidatePayload(); err != nil {
				return nil, fmt.Errorf("%w: level %d: %v", ErrBankMalformed, level, err)
			}
			if !models.MechanicAllowedAt(q.Mechanic, level) {
				return nil, fmt.Errorf("%w: level %d: question %s mechanic %s not permitted",
					ErrBankMalformed, level, q.ID, q.Mechanic)
			}
		}
	}
	return &Bank{byLevel: byLevel}, nil
}

// Load reads the bank from a JSON blob keyed by level-as-string ("0".."5").
func Load(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBankMalformed, err)
	}
	var raw map[string][]models.Question
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBankMalformed, err)
	}
	byLevel := make(map[int][]models.Question, len(raw))
	for key, questions := range raw {
		var level int
		if _, err := fmt.Sscanf(key, "%d", &level); err != nil {
			return nil, fmt.Errorf("%w: bad level key %q", ErrBankMalformed, key)
		}
		for i := range questions {
			questions[i].Level = level
		}
		byLevel[level] = questions
	}
	return New(byLevel)
}

// FromQuestions groups a flat question list by its level field. Used when
// the bank is served out of the questions collection instead of a file.
func FromQuestions(questions []models.Question) (*Bank, error) {
	byLevel := make(map[int][]models.Question)
	for _, q := range questions {
		byLevel[q.Level] = append(byLevel[q.Level], q)
	}
	return New(byLevel)
}

// Level returns the bank-ordered questions of one level. Callers must not
// mutate the returned slice.
func (b *Bank) Level(level int) []models.Question {
	return b.byLevel[level]
}

// Size returns the total question count.
func (b *Bank) Size() int {
	total := 0
	for _, questions := range b.byLevel {
		total += len(questions)
	}
	return total
}
