package models

import "fmt"

// Novakid levels run 0..5 and map 1:1 onto CEFR pre-A1..B2.
const (
	MinLevel = 0
	MaxLevel = 5
)

var cefrLabels = map[int]string{
	0: "pre-A1",
	1: "A1",
	2: "A1+",
	3: "A2",
	4: "B1",
	5: "B2",
}

// CEFRLabel returns the CEFR equivalent for a Novakid level.
func CEFRLabel(level int) string {
	if label, ok := cefrLabels[level]; ok {
		return label
	}
	return "A1"
}

type Mechanic string

const (
	MechanicWordPronunciation     Mechanic = "word-pronunciation-practice"
	MechanicSentencePronunciation Mechanic = "sentence-pronunciation-practice"
	MechanicAudioImageChoice      Mechanic = "audio-single-choice-from-images"
	MechanicAudioCategorySort     Mechanic = "audio-category-sorting"
	MechanicImageTextChoice       Mechanic = "image-single-choice-from-texts"
	MechanicTextChoice            Mechanic = "multiple-choice-text-text"
	MechanicSentenceScramble      Mechanic = "sentence-scramble"
)

// Category groups mechanics for the audio/text balance rules. Pronunciation
// is its own category but counts toward audio when balancing.
type Category string

const (
	CategoryAudio         Category = "audio"
	CategoryText          Category = "text"
	CategoryPronunciation Category = "pronunciation"
)

var mechanicCategories = map[Mechanic]Category{
	MechanicWordPronunciation:     CategoryPronunciation,
	MechanicSentencePronunciation: CategoryPronunciation,
	MechanicAudioImageChoice:      CategoryAudio,
	MechanicAudioCategorySort:     CategoryAudio,
	MechanicImageTextChoice:       CategoryText,
	MechanicTextChoice:            CategoryText,
	MechanicSentenceScramble:      CategoryText,
}

func (m Mechanic) Valid() bool {
	_, ok := mechanicCategories[m]
	return ok
}

func (m Mechanic) Category() Category {
	return mechanicCategories[m]
}

// BalanceCategory folds pronunciation mechanics into audio for the 50/50
// selection balance.
func (m Mechanic) BalanceCategory() Category {
	c := mechanicCategories[m]
	if c == CategoryPronunciation {
		return CategoryAudio
	}
	return c
}

// Curriculum gating: which mechanics a level may serve. Level 0 is
// pronunciation only, level 1 adds single-choice, level 2 unlocks the rest.
var levelMechanics = map[int][]Mechanic{
	0: {MechanicWordPronunciation},
	1: {MechanicWordPronunciation, MechanicImageTextChoice, MechanicAudioImageChoice},
	2: {
		MechanicWordPronunciation, MechanicImageTextChoice, MechanicAudioImageChoice,
		MechanicTextChoice, MechanicSentencePronunciation, MechanicAudioCategorySort,
		MechanicSentenceScramble,
	},
}

// AllowedMechanics returns the mechanics permitted at a level.
func AllowedMechanics(level int) []Mechanic {
	if level < MinLevel {
		level = MinLevel
	}
	if level > 2 {
		level = 2
	}
	return levelMechanics[level]
}

// MechanicAllowedAt reports whether a mechanic may be served at a level.
func MechanicAllowedAt(m Mechanic, level int) bool {
	for _, allowed := range AllowedMechanics(level) {
		if allowed == m {
			return true
		}
	}
	return false
}

// SortItem is one element of an audio-category-sorting question.
type SortItem struct {
	ID       string `bson:"id" json:"id"`
	Text     string `bson:"text" json:"text"`
	Category string `bson:"category" json:"category"`
}

// Question is an immutable bank record. The payload fields are sparse; only
// the ones matching the mechanic are populated.
type Question struct {
	ID         string   `bson:"_id,omitempty" json:"id"`
	Mechanic   Mechanic `bson:"mechanic" json:"mechanic"`
	Level      int      `bson:"level" json:"level"`
	Skill      string   `bson:"skill" json:"skill"`
	Difficulty float64  `bson:"difficulty" json:"difficulty"`

	// multiple-choice-text-text / image-single-choice-from-texts
	Sentence      string   `bson:"sentence,omitempty" json:"sentence,omitempty"`
	Options       []string `bson:"options,omitempty" json:"options,omitempty"`
	CorrectAnswer int      `bson:"correct_answer" json:"correct_answer"`

	// pronunciation practice
	TargetWord     string `bson:"target_word,omitempty" json:"target_word,omitempty"`
	TargetSentence string `bson:"target_sentence,omitempty" json:"target_sentence,omitempty"`
	Phonetic       string `bson:"phonetic,omitempty" json:"phonetic,omitempty"`

	// audio-single-choice-from-images
	TargetAudio  string   `bson:"target_audio,omitempty" json:"target_audio,omitempty"`
	ImageOptions []string `bson:"image_options,omitempty" json:"image_options,omitempty"`

	// sentence-scramble
	SentenceTemplate string   `bson:"sentence_template,omitempty" json:"sentence_template,omitempty"`
	WordOptions      []string `bson:"word_options,omitempty" json:"word_options,omitempty"`
	CorrectOrder     []int    `bson:"correct_order,omitempty" json:"correct_order,omitempty"`

	// audio-category-sorting
	Categories []string   `bson:"categories,omitempty" json:"categories,omitempty"`
	Items      []SortItem `bson:"items,omitempty" json:"items,omitempty"`

	ImageDescription string `bson:"image_description,omitempty" json:"image_description,omitempty"`

	// Media URLs stamped by the service before the question goes to the
	// renderer; never stored in the bank.
	AudioURL string `bson:"-" json:"audio_url,omitempty"`

	// Selection stamps. AssignedLevel is the bucket the question was drawn
	// from, which may differ from the student's current level.
	AssignedLevel int  `bson:"-" json:"assigned_level"`
	IsCalibration bool `bson:"-" json:"is_calibration,omitempty"`
}

// SpokenText returns the text a TTS voice should read for this question, or
// "" when the mechanic has no audio side.
func (q *Question) SpokenText() string {
	switch q.Mechanic {
	case MechanicWordPronunciation:
		return q.TargetWord
	case MechanicSentencePronunciation:
		return q.TargetSentence
	case MechanicAudioImageChoice:
		return q.TargetAudio
	case MechanicAudioCategorySort:
		// Items are read one by one by the renderer; no single clip.
		return ""
	}
	return ""
}

// ValidatePayload checks the minimum required fields for the question's
// mechanic. The bank loader rejects questions that fail this.
func (q *Question) ValidatePayload() error {
	if q.ID == "" {
		return fmt.Errorf("question missing id")
	}
	if !q.Mechanic.Valid() {
		return fmt.Errorf("question %s: unknown mechanic %q", q.ID, q.Mechanic)
	}
	switch q.Mechanic {
	case MechanicTextChoice:
		if q.Sentence == "" || len(q.Options) < 2 {
			return fmt.Errorf("question %s: multiple-choice needs sentence and options", q.ID)
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			return fmt.Errorf("question %s: correct_answer out of range", q.ID)
		}
	case MechanicImageTextChoice:
		if q.ImageDescription == "" || len(q.Options) < 2 {
			return fmt.Errorf("question %s: image choice needs image_description and options", q.ID)
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			return fmt.Errorf("question %s: correct_answer out of range", q.ID)
		}
	case MechanicAudioImageChoice:
		if q.TargetAudio == "" || len(q.ImageOptions) < 2 {
			return fmt.Errorf("question %s: audio choice needs target_audio and image_options", q.ID)
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.ImageOptions) {
			return fmt.Errorf("question %s: correct_answer out of range", q.ID)
		}
	case MechanicWordPronunciation:
		if q.TargetWord == "" {
			return fmt.Errorf("question %s: pronunciation needs target_word", q.ID)
		}
	case MechanicSentencePronunciation:
		if q.TargetSentence == "" {
			return fmt.Errorf("question %s: pronunciation needs target_sentence", q.ID)
		}
	case MechanicSentenceScramble:
		if len(q.WordOptions) < 2 || len(q.CorrectOrder) == 0 {
			return fmt.Errorf("question %s: scramble needs word_options and correct_order", q.ID)
		}
		for _, idx := range q.CorrectOrder {
			if idx < 0 || idx >= len(q.WordOptions) {
				return fmt.Errorf("question %s: correct_order index out of range", q.ID)
			}
		}
	case MechanicAudioCategorySort:
		if len(q.Categories) < 2 || len(q.Items) == 0 {
			return fmt.Errorf("question %s: sorting needs categories and items", q.ID)
		}
	}
	return nil
}
