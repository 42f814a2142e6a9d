package view

import (
	"bytes"
	"html/template"
	"testing"

	"pdf-quiz/internal/domain"
	"pdf-quiz/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, page Page) string {
	t.Helper()
	engine := New()
	require.NoError(t, engine.Load())
	var buf bytes.Buffer
	require.NoError(t, engine.Render(&buf, "index", page))
	return buf.String()
}

func TestRender_UploadStep(t *testing.T) {
	html := render(t, Page{
		Title:          "PDF Quiz",
		State:          dto.NewPracticeResponse(domain.NewPractice()),
		MaxUploadLabel: "10.00 MB",
		Flash:          &Flash{Kind: "error", Message: "Only PDF files are supported"},
	})

	assert.Contains(t, html, "Upload Your Study Material")
	assert.Contains(t, html, `enctype="multipart/form-data"`)
	assert.Contains(t, html, "Only PDF files are supported")
	assert.NotContains(t, html, "Generate Quiz")
}

func TestRender_SelectedFile(t *testing.T) {
	p := domain.NewPractice()
	p.SelectFile("<b>notes</b>.pdf", 2*1024*1024)
	p.DocumentUploaded("pdf-1")

	html := render(t, Page{Title: "PDF Quiz", State: dto.NewPracticeResponse(p)})
	assert.Contains(t, html, "&lt;b&gt;notes&lt;/b&gt;.pdf", "file names are escaped")
	assert.Contains(t, html, "2.00 MB")
	assert.Contains(t, html, "Generate Quiz")
	assert.Contains(t, html, "Cancel")
}

func TestRender_QuizStep(t *testing.T) {
	p := domain.NewPractice()
	p.DocumentUploaded("pdf-1")
	require.NoError(t, p.StartQuiz([]domain.QuizQuestion{
		{Question: "What is 2+2?", Options: []string{"3", "4"}, CorrectAnswer: 1, Explanation: "Basic sums."},
		{Question: "Second?", Options: []string{"a", "b"}, CorrectAnswer: 0},
	}))
	require.NoError(t, p.Answer(0))

	html := render(t, Page{
		Title: "PDF Quiz",
		State: dto.NewPracticeResponse(p),
		Attempts: dto.NewAttemptsResponse("pdf-1", []domain.Attempt{
			{TotalQuestions: 4, CorrectAnswers: 3, ScorePercentage: 75},
		}),
	})

	assert.Contains(t, html, "Question 1 of 2")
	assert.Contains(t, html, template.HTMLEscapeString("What is 2+2?"))
	assert.Contains(t, html, "option-wrong")
	assert.Contains(t, html, "option-correct")
	assert.Contains(t, html, "Incorrect")
	assert.Contains(t, html, "Basic sums.")
	assert.Contains(t, html, "3/4")
	assert.Contains(t, html, "75%")
	assert.Contains(t, html, "width: 50%")
	assert.NotContains(t, html, "Restart", "restart only once complete")
}

func TestRender_NoAttempts(t *testing.T) {
	p := domain.NewPractice()
	p.DocumentUploaded("pdf-1")
	require.NoError(t, p.StartQuiz([]domain.QuizQuestion{{Question: "Q", Options: []string{"a", "b"}}}))

	html := render(t, Page{State: dto.NewPracticeResponse(p), Attempts: dto.NewAttemptsResponse("pdf-1", nil)})
	assert.Contains(t, html, "No previous attempts yet.")

	html = render(t, Page{State: dto.NewPracticeResponse(p), AttemptsError: "Attempt history is unavailable."})
	assert.Contains(t, html, "Attempt history is unavailable.")
}

func TestRender_UnknownTemplate(t *testing.T) {
	engine := New()
	var buf bytes.Buffer
	assert.Error(t, engine.Render(&buf, "missing", nil))
}
