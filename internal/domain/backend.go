package domain

import (
	"context"
	"io"
)

// PracticeBackend is the external service that stores PDFs, generates quizzes
// and records attempts. The client never does any of that work itself.
type PracticeBackend interface {
	// UploadPDF stores the document and returns its opaque identifier.
	UploadPDF(ctx context.Context, filename string, content io.Reader) (string, error)

	// GenerateQuiz asks the generation service for a question set for pdfID.
	GenerateQuiz(ctx context.Context, pdfID string) ([]QuizQuestion, error)

	// ListAttempts returns the recorded attempts for pdfID.
	ListAttempts(ctx context.Context, pdfID string) ([]Attempt, error)
}
