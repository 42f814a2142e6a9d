package domain

import (
	"fmt"
	"time"
)

// Step is the top-level screen the client is on.
type Step string

const (
	StepUpload Step = "upload"
	StepQuiz   Step = "quiz"
)

// SelectedFile is a PDF chosen by the user but not yet processed.
type SelectedFile struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Practice is the whole client state for one user: which step is shown,
// the uploaded document, and the quiz being navigated.
type Practice struct {
	Step            Step           `json:"step"`
	PDFID           string         `json:"pdfId,omitempty"`
	SelectedFile    *SelectedFile  `json:"selectedFile,omitempty"`
	Questions       []QuizQuestion `json:"questions,omitempty"`
	CurrentIndex    int            `json:"currentIndex"`
	ShowExplanation bool           `json:"showExplanation"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// NewPractice returns a practice at the upload step.
func NewPractice() *Practice {
	return &Practice{Step: StepUpload, UpdatedAt: time.Now()}
}

// PDFReady reports whether a document has been uploaded.
func (p *Practice) PDFReady() bool {
	return p.PDFID != ""
}

// InQuiz reports whether a quiz is being navigated.
func (p *Practice) InQuiz() bool {
	return p.Step == StepQuiz && len(p.Questions) > 0
}

func (p *Practice) touch() {
	p.UpdatedAt = time.Now()
}

// SelectFile remembers the chosen file.
func (p *Practice) SelectFile(name string, size int64) {
	p.SelectedFile = &SelectedFile{Name: name, Size: size}
	p.touch()
}

// ClearFile is the upload card's cancel action. It forgets the chosen file and
// the document uploaded from it.
func (p *Practice) ClearFile() {
	p.SelectedFile = nil
	p.DocumentUploaded("")
}

// DocumentUploaded records the identifier returned by the upload service.
// A new document invalidates any quiz generated from the previous one.
func (p *Practice) DocumentUploaded(pdfID string) {
	if p.PDFID != pdfID {
		p.Questions = nil
		p.CurrentIndex = 0
		p.ShowExplanation = false
		p.Step = StepUpload
	}
	p.PDFID = pdfID
	p.touch()
}

// StartQuiz switches to the quiz step with a freshly generated question set.
func (p *Practice) StartQuiz(questions []QuizQuestion) error {
	if !p.PDFReady() {
		return NewNoDocumentError()
	}
	if len(questions) == 0 {
		return NewGenerationFailedError(fmt.Errorf("no questions returned"))
	}
	p.Questions = questions
	p.CurrentIndex = 0
	p.ShowExplanation = false
	p.Step = StepQuiz
	p.touch()
	return nil
}

// Current returns the question at the current index.
func (p *Practice) Current() (*QuizQuestion, error) {
	if !p.InQuiz() {
		return nil, NewNoQuizError()
	}
	return &p.Questions[p.CurrentIndex], nil
}

// Answer records option for the current question. A question can only be answered once;
// answering again is a no-op. The explanation is revealed when the answer is wrong.
func (p *Practice) Answer(option int) error {
	q, err := p.Current()
	if err != nil {
		return err
	}
	if q.Answered() {
		return nil
	}
	if option < 0 || option >= len(q.Options) {
		return NewInvalidInputError(fmt.Sprintf("option %d is out of range", option)).
			WithContext("options", len(q.Options))
	}
	answer := option
	q.UserAnswer = &answer
	p.ShowExplanation = option != q.CorrectAnswer
	p.touch()
	return nil
}

// Next moves forward unless already on the last question.
func (p *Practice) Next() error {
	if !p.InQuiz() {
		return NewNoQuizError()
	}
	if p.CurrentIndex < len(p.Questions)-1 {
		p.CurrentIndex++
		p.ShowExplanation = false
		p.touch()
	}
	return nil
}

// Previous moves back unless already on the first question. The explanation is
// re-shown when the previous question was answered wrongly.
func (p *Practice) Previous() error {
	if !p.InQuiz() {
		return NewNoQuizError()
	}
	if p.CurrentIndex > 0 {
		p.CurrentIndex--
		prev := &p.Questions[p.CurrentIndex]
		p.ShowExplanation = prev.Answered() && !prev.IsCorrect()
		p.touch()
	}
	return nil
}

// HasPrevious and HasNext drive the navigation buttons.
func (p *Practice) HasPrevious() bool {
	return p.InQuiz() && p.CurrentIndex > 0
}

func (p *Practice) HasNext() bool {
	return p.InQuiz() && p.CurrentIndex < len(p.Questions)-1
}

// Stats returns the running score of the current quiz.
func (p *Practice) Stats() QuizStats {
	return ComputeStats(p.Questions)
}

// IsComplete reports whether every question has been answered.
func (p *Practice) IsComplete() bool {
	if !p.InQuiz() {
		return false
	}
	stats := p.Stats()
	return stats.Answered == stats.Total
}

// Restart clears every recorded answer and returns to the first question.
func (p *Practice) Restart() error {
	if !p.InQuiz() {
		return NewNoQuizError()
	}
	for i := range p.Questions {
		p.Questions[i].UserAnswer = nil
	}
	p.CurrentIndex = 0
	p.ShowExplanation = false
	p.touch()
	return nil
}

// BackToUpload discards the quiz and the document.
func (p *Practice) BackToUpload() {
	p.Questions = nil
	p.PDFID = ""
	p.SelectedFile = nil
	p.CurrentIndex = 0
	p.ShowExplanation = false
	p.Step = StepUpload
	p.touch()
}
