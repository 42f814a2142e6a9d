package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"pdf-quiz/internal/adapter"
	"pdf-quiz/internal/domain"
	"pdf-quiz/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePDF = "%PDF-1.5\n1 0 obj\n<< /Type /Catalog >>\nendobj\n%%EOF\n"

type fakeBackend struct {
	attempts    []domain.Attempt
	attemptsErr error
}

func (f *fakeBackend) UploadPDF(ctx context.Context, filename string, content io.Reader) (string, error) {
	return "pdf-cli", nil
}

func (f *fakeBackend) GenerateQuiz(ctx context.Context, pdfID string) ([]domain.QuizQuestion, error) {
	return []domain.QuizQuestion{
		{Question: "Largest planet?", Options: []string{"Mars", "Jupiter", "Venus"}, CorrectAnswer: 1, Explanation: "Jupiter is the largest."},
		{Question: "Smallest planet?", Options: []string{"Mercury", "Earth"}, CorrectAnswer: 0, Explanation: "Mercury."},
	}, nil
}

func (f *fakeBackend) ListAttempts(ctx context.Context, pdfID string) ([]domain.Attempt, error) {
	return f.attempts, f.attemptsErr
}

func run(t *testing.T, backend *fakeBackend, input string) (string, service.PracticeService, error) {
	t.Helper()
	store := service.NewSessionStore(adapter.NewMemoryCacheAdapter(), time.Hour)
	svc := service.NewPracticeService(backend, store, 1024*1024)
	var out bytes.Buffer
	r := NewRunner(svc, strings.NewReader(input), &out, WithColor(false), WithSessionID("cli-session"))
	err := r.Run(context.Background(), service.FileInput{
		Name:    "planets.pdf",
		Size:    int64(len(samplePDF)),
		Content: strings.NewReader(samplePDF),
	})
	return out.String(), svc, err
}

func TestRunner_PlaysQuiz(t *testing.T) {
	out, svc, err := run(t, &fakeBackend{
		attempts: []domain.Attempt{{TotalQuestions: 2, CorrectAnswers: 1, ScorePercentage: 50}},
	}, "a\nn\n1\nr\np\nq\n")
	require.NoError(t, err)

	assert.Contains(t, out, "Uploaded planets.pdf (0.00 MB)")
	assert.Contains(t, out, "Quiz Attempts")
	assert.Contains(t, out, "1/2  50%")
	assert.Contains(t, out, "Question 1 of 2")
	assert.Contains(t, out, "Incorrect")
	assert.Contains(t, out, "Jupiter is the largest.")
	assert.Contains(t, out, "Question 2 of 2")
	assert.Contains(t, out, "Correct!")
	assert.Contains(t, out, "Score 50% (1/2)")
	assert.Contains(t, out, "r restart")
	assert.Contains(t, out, "Bye.")

	// q drops the session
	p, err := svc.State(context.Background(), "cli-session")
	require.NoError(t, err)
	assert.Equal(t, domain.StepUpload, p.Step)
}

func TestRunner_RestartNeedsCompleteQuiz(t *testing.T) {
	out, _, err := run(t, &fakeBackend{}, "r\n")
	require.NoError(t, err)
	assert.Contains(t, out, "No previous attempts yet.")
	assert.Contains(t, out, "Restart is available once every question is answered.")
}

func TestRunner_BadInput(t *testing.T) {
	out, _, err := run(t, &fakeBackend{attemptsErr: errors.New("down")}, "zz\n9\n")
	require.NoError(t, err)
	assert.Contains(t, out, "Attempt history is unavailable right now.")
	assert.Contains(t, out, "Unknown command: zz")
	assert.Contains(t, out, "option 8 is out of range")
}

func TestRunner_RejectsNonPDF(t *testing.T) {
	store := service.NewSessionStore(adapter.NewMemoryCacheAdapter(), time.Hour)
	svc := service.NewPracticeService(&fakeBackend{}, store, 1024*1024)
	r := NewRunner(svc, strings.NewReader(""), io.Discard, WithColor(false))
	err := r.Run(context.Background(), service.FileInput{Name: "a.txt", Size: 5, Content: strings.NewReader("hello")})
	assert.Equal(t, domain.CodeUnsupportedMedia, domain.CodeOf(err))
}

func TestParseOption(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"a", 0, true},
		{"B", 1, true},
		{"3", 2, true},
		{"0", 0, false},
		{"ab", 0, false},
		{"?", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseOption(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.in)
		}
	}
}
