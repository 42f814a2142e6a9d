package domain

import (
	"math"
	"time"
)

// QuizQuestion is one multiple-choice question as returned by the generation service.
// UserAnswer is nil until the question has been answered.
type QuizQuestion struct {
	Question      string   `json:"question" validate:"required"`
	Options       []string `json:"options" validate:"min=2,dive,required"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
	UserAnswer    *int     `json:"userAnswer,omitempty"`
}

// Answered reports whether an answer has been recorded.
func (q *QuizQuestion) Answered() bool {
	return q.UserAnswer != nil
}

// IsCorrect reports whether the recorded answer matches the correct option.
func (q *QuizQuestion) IsCorrect() bool {
	return q.UserAnswer != nil && *q.UserAnswer == q.CorrectAnswer
}

// OptionState is how a single option should be rendered.
type OptionState string

const (
	OptionNeutral  OptionState = "neutral"
	OptionSelected OptionState = "selected"
	OptionCorrect  OptionState = "correct"
	OptionWrong    OptionState = "wrong"
)

// OptionStateAt derives the display state of option i.
func (q *QuizQuestion) OptionStateAt(i int) OptionState {
	selected := q.UserAnswer != nil && *q.UserAnswer == i
	switch {
	case q.Answered() && i == q.CorrectAnswer:
		return OptionCorrect
	case q.Answered() && selected:
		return OptionWrong
	case selected:
		return OptionSelected
	default:
		return OptionNeutral
	}
}

// QuizStats is the aggregate over a question set.
type QuizStats struct {
	Answered int     `json:"answered"`
	Correct  int     `json:"correct"`
	Total    int     `json:"total"`
	Progress float64 `json:"progress"` // percent of questions answered
	Score    int     `json:"score"`    // percent correct among answered, rounded
}

// ComputeStats reduces a question set to its running score.
func ComputeStats(questions []QuizQuestion) QuizStats {
	stats := QuizStats{Total: len(questions)}
	for i := range questions {
		if questions[i].Answered() {
			stats.Answered++
		}
		if questions[i].IsCorrect() {
			stats.Correct++
		}
	}
	if stats.Total > 0 {
		stats.Progress = float64(stats.Answered) / float64(stats.Total) * 100
	}
	if stats.Answered > 0 {
		stats.Score = int(math.Round(float64(stats.Correct) / float64(stats.Answered) * 100))
	}
	return stats
}

// Attempt is a previously recorded result for a document.
type Attempt struct {
	Timestamp       time.Time `json:"timestamp"`
	TotalQuestions  int       `json:"totalQuestions"`
	CorrectAnswers  int       `json:"correctAnswers"`
	ScorePercentage float64   `json:"scorePercentage"`
}
