package models

import (
	"errors"
	"time"
)

// ErrInvalidAnswerShape is returned when an answer payload does not match the
// question's mechanic. The renderer should prevent this; the engine treats it
// as an incorrect answer and records the anomaly.
var ErrInvalidAnswerShape = errors.New("answer shape does not match question mechanic")

// SelfAssessment is the student's own judgment on a pronunciation attempt.
type SelfAssessment string

const (
	AssessmentWell   SelfAssessment = "well"
	AssessmentOK     SelfAssessment = "ok"
	AssessmentPoorly SelfAssessment = "poorly"
)

// Answer is the renderer's answer payload. Exactly one of the variant fields
// is set, matching the question's mechanic.
type Answer struct {
	QuestionID     string              `json:"question_id"`
	OptionIndex    *int                `json:"option_index,omitempty"`
	SelfAssessment *SelfAssessment     `json:"self_assessment,omitempty"`
	Order          []int               `json:"order,omitempty"`
	Sorting        map[string][]string `json:"sorting,omitempty"`
}

// sortPassRatio is the share of items that must land in the right category
// for an audio-category-sorting answer to pass.
const sortPassRatio = 0.6

// Grade checks an answer against the question. It returns
// ErrInvalidAnswerShape when the payload does not fit the mechanic.
func (q *Question) Grade(ans Answer) (bool, error) {
	switch q.Mechanic {
	case MechanicTextChoice, MechanicImageTextChoice, MechanicAudioImageChoice:
		if ans.OptionIndex == nil {
			return false, ErrInvalidAnswerShape
		}
		return *ans.OptionIndex == q.CorrectAnswer, nil

	case MechanicWordPronunciation, MechanicSentencePronunciation:
		if ans.SelfAssessment == nil {
			return false, ErrInvalidAnswerShape
		}
		switch *ans.SelfAssessment {
		case AssessmentWell, AssessmentOK:
			return true, nil
		case AssessmentPoorly:
			return false, nil
		}
		return false, ErrInvalidAnswerShape

	case MechanicSentenceScramble:
		if len(ans.Order) == 0 {
			return false, ErrInvalidAnswerShape
		}
		if len(ans.Order) != len(q.CorrectOrder) {
			return false, nil
		}
		for i, idx := range ans.Order {
			if idx != q.CorrectOrder[i] {
				return false, nil
			}
		}
		return true, nil

	case MechanicAudioCategorySort:
		if len(ans.Sorting) == 0 {
			return false, ErrInvalidAnswerShape
		}
		correct := 0
		for _, item := range q.Items {
			for _, placed := range ans.Sorting[item.Category] {
				if placed == item.ID {
					correct++
					break
				}
			}
		}
		if len(q.Items) == 0 {
			return false, nil
		}
		return float64(correct)/float64(len(q.Items)) >= sortPassRatio, nil
	}
	return false, ErrInvalidAnswerShape
}

// AnsweredRecord is one entry of the per-session history.
type AnsweredRecord struct {
	QuestionID    string    `bson:"question_id" json:"question_id"`
	Mechanic      Mechanic  `bson:"mechanic" json:"mechanic"`
	AssignedLevel int       `bson:"assigned_level" json:"assigned_level"`
	Skill         string    `bson:"skill" json:"skill"`
	Correct       bool      `bson:"correct" json:"correct"`
	ResponseTime  float64   `bson:"response_time" json:"response_time"`
	IsCalibration bool      `bson:"is_calibration" json:"is_calibration"`
	Anomaly       string    `bson:"anomaly,omitempty" json:"anomaly,omitempty"`
	AnsweredAt    time.Time `bson:"answered_at" json:"answered_at"`
}
