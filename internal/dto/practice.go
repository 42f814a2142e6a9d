package dto

import (
	"pdf-quiz/internal/domain"
	"pdf-quiz/internal/upload"
)

// PracticeResponse is the client state as rendered by both the HTML pages and the JSON API.
// @Description Current client state
type PracticeResponse struct {
	Step         domain.Step   `json:"step"`
	PDFID        string        `json:"pdfId,omitempty"`
	PDFReady     bool          `json:"pdfReady"`
	SelectedFile *FileResponse `json:"selectedFile,omitempty"`
	Quiz         *QuizResponse `json:"quiz,omitempty"`
}

// FileResponse describes the file picked on the upload card.
type FileResponse struct {
	Name      string `json:"name"`
	Size      int64  `json:"size"`
	SizeLabel string `json:"sizeLabel"`
}

// QuizResponse is the question card currently shown plus the running score.
// @Description Current question and progress
type QuizResponse struct {
	Number          int              `json:"number"` // 1-based
	Total           int              `json:"total"`
	Question        string           `json:"question"`
	Options         []OptionResponse `json:"options"`
	HasAnswered     bool             `json:"hasAnswered"`
	IsCorrect       bool             `json:"isCorrect"`
	ShowExplanation bool             `json:"showExplanation"`
	Explanation     string           `json:"explanation,omitempty"` // only once answered
	Stats           domain.QuizStats `json:"stats"`
	HasPrevious     bool             `json:"hasPrevious"`
	HasNext         bool             `json:"hasNext"`
	IsComplete      bool             `json:"isComplete"`
}

// OptionResponse is one answer button.
type OptionResponse struct {
	Index  int                `json:"index"`
	Letter string             `json:"letter"`
	Text   string             `json:"text"`
	State  domain.OptionState `json:"state"`
}

// AnswerRequest selects an option on the current question.
// @Description Request body for answering the current question
type AnswerRequest struct {
	Option *int `json:"option" form:"option"`
}

// AttemptResponse is one row of the attempt history.
// @Description Previously recorded attempt
type AttemptResponse struct {
	Timestamp       string  `json:"timestamp"`
	TimestampLabel  string  `json:"timestampLabel"`
	TotalQuestions  int     `json:"totalQuestions"`
	CorrectAnswers  int     `json:"correctAnswers"`
	ScorePercentage float64 `json:"scorePercentage"`
}

// AttemptsResponse wraps the history list.
type AttemptsResponse struct {
	PDFID    string            `json:"pdfId"`
	Attempts []AttemptResponse `json:"attempts"`
}

// OptionLetter maps 0 -> "A", 1 -> "B", ...
func OptionLetter(i int) string {
	if i < 0 || i >= 26 {
		return "?"
	}
	return string(rune('A' + i))
}

// NewPracticeResponse builds the view of p.
func NewPracticeResponse(p *domain.Practice) *PracticeResponse {
	resp := &PracticeResponse{
		Step:     p.Step,
		PDFID:    p.PDFID,
		PDFReady: p.PDFReady(),
	}
	if p.SelectedFile != nil {
		resp.SelectedFile = &FileResponse{
			Name:      p.SelectedFile.Name,
			Size:      p.SelectedFile.Size,
			SizeLabel: upload.FormatSize(p.SelectedFile.Size),
		}
	}
	if q, err := p.Current(); err == nil {
		resp.Quiz = newQuizResponse(p, q)
	}
	return resp
}

func newQuizResponse(p *domain.Practice, q *domain.QuizQuestion) *QuizResponse {
	options := make([]OptionResponse, len(q.Options))
	for i, text := range q.Options {
		options[i] = OptionResponse{
			Index:  i,
			Letter: OptionLetter(i),
			Text:   text,
			State:  q.OptionStateAt(i),
		}
	}
	resp := &QuizResponse{
		Number:          p.CurrentIndex + 1,
		Total:           len(p.Questions),
		Question:        q.Question,
		Options:         options,
		HasAnswered:     q.Answered(),
		IsCorrect:       q.IsCorrect(),
		ShowExplanation: p.ShowExplanation,
		Stats:           p.Stats(),
		HasPrevious:     p.HasPrevious(),
		HasNext:         p.HasNext(),
		IsComplete:      p.IsComplete(),
	}
	if q.Answered() {
		resp.Explanation = q.Explanation
	}
	return resp
}

const timestampLayout = "Jan 2, 2006, 3:04:05 PM"

// NewAttemptsResponse formats attempts for display.
func NewAttemptsResponse(pdfID string, attempts []domain.Attempt) *AttemptsResponse {
	out := &AttemptsResponse{PDFID: pdfID, Attempts: make([]AttemptResponse, 0, len(attempts))}
	for _, a := range attempts {
		row := AttemptResponse{
			TotalQuestions:  a.TotalQuestions,
			CorrectAnswers:  a.CorrectAnswers,
			ScorePercentage: a.ScorePercentage,
		}
		if !a.Timestamp.IsZero() {
			row.Timestamp = a.Timestamp.UTC().Format("2006-01-02T15:04:05Z07:00")
			row.TimestampLabel = a.Timestamp.Local().Format(timestampLayout)
		}
		out.Attempts = append(out.Attempts, row)
	}
	return out
}
