package service

import (
	"context"
	"io"
	"sync"

	"pdf-quiz/internal/domain"
	"pdf-quiz/internal/logger"
	"pdf-quiz/internal/upload"

	"go.uber.org/zap"
)

// PracticeService is the controller behind every client surface: it owns the
// upload -> generate -> quiz flow for one session at a time.
type PracticeService interface {
	State(ctx context.Context, sessionID string) (*domain.Practice, error)
	Upload(ctx context.Context, sessionID string, file FileInput) (*domain.Practice, error)
	ClearFile(ctx context.Context, sessionID string) (*domain.Practice, error)
	GenerateQuiz(ctx context.Context, sessionID string) (*domain.Practice, error)
	Answer(ctx context.Context, sessionID string, option int) (*domain.Practice, error)
	Next(ctx context.Context, sessionID string) (*domain.Practice, error)
	Previous(ctx context.Context, sessionID string) (*domain.Practice, error)
	Restart(ctx context.Context, sessionID string) (*domain.Practice, error)
	BackToUpload(ctx context.Context, sessionID string) (*domain.Practice, error)
	Attempts(ctx context.Context, pdfID string) ([]domain.Attempt, error)
}

// FileInput is a file as received from a form or the command line.
type FileInput struct {
	Name    string
	Size    int64
	Content io.Reader
}

type practiceService struct {
	backend       domain.PracticeBackend
	store         SessionStore
	maxUploadSize int64
	locks         sessionLocks
}

// NewPracticeService creates a new PracticeService.
func NewPracticeService(backend domain.PracticeBackend, store SessionStore, maxUploadSize int64) PracticeService {
	return &practiceService{
		backend:       backend,
		store:         store,
		maxUploadSize: maxUploadSize,
	}
}

// sessionLocks serialises load-modify-save cycles per session id.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func (l *sessionLocks) lock(sessionID string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*sessionLock)
	}
	sl, ok := l.locks[sessionID]
	if !ok {
		sl = &sessionLock{}
		l.locks[sessionID] = sl
	}
	sl.refs++
	l.mu.Unlock()

	sl.mu.Lock()
	return func() {
		sl.mu.Unlock()
		l.mu.Lock()
		sl.refs--
		if sl.refs == 0 {
			delete(l.locks, sessionID)
		}
		l.mu.Unlock()
	}
}

// mutate runs fn against the stored practice and saves the result, even when fn
// fails, so partial progress such as a recorded upload is kept.
func (s *practiceService) mutate(ctx context.Context, sessionID string, fn func(p *domain.Practice) error) (*domain.Practice, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	practice, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	fnErr := fn(practice)
	if err := s.store.Save(ctx, sessionID, practice); err != nil {
		return nil, err
	}
	if fnErr != nil {
		return practice, fnErr
	}
	return practice, nil
}

// State implements PracticeService
func (s *practiceService) State(ctx context.Context, sessionID string) (*domain.Practice, error) {
	return s.store.Load(ctx, sessionID)
}

// Upload implements PracticeService. The file is sniffed before anything is sent.
func (s *practiceService) Upload(ctx context.Context, sessionID string, file FileInput) (*domain.Practice, error) {
	accepted, err := upload.Inspect(file.Name, file.Size, s.maxUploadSize, file.Content)
	if err != nil {
		logger.Get().Info("Upload rejected", zap.String("file", file.Name), zap.Error(err))
		return nil, err
	}

	return s.mutate(ctx, sessionID, func(p *domain.Practice) error {
		p.SelectFile(accepted.Name, accepted.Size)
		pdfID, err := s.backend.UploadPDF(ctx, accepted.Name, accepted.Content)
		if err != nil {
			return err
		}
		p.DocumentUploaded(pdfID)
		logger.Get().Info("Document ready", zap.String("session_id", sessionID), zap.String("pdf_id", pdfID))
		return nil
	})
}

// ClearFile implements PracticeService. It is the upload card's cancel action.
func (s *practiceService) ClearFile(ctx context.Context, sessionID string) (*domain.Practice, error) {
	return s.mutate(ctx, sessionID, func(p *domain.Practice) error {
		p.ClearFile()
		return nil
	})
}

// GenerateQuiz implements PracticeService
func (s *practiceService) GenerateQuiz(ctx context.Context, sessionID string) (*domain.Practice, error) {
	return s.mutate(ctx, sessionID, func(p *domain.Practice) error {
		if !p.PDFReady() {
			return domain.NewNoDocumentError()
		}
		questions, err := s.backend.GenerateQuiz(ctx, p.PDFID)
		if err != nil {
			return err
		}
		return p.StartQuiz(questions)
	})
}

// Answer implements PracticeService
func (s *practiceService) Answer(ctx context.Context, sessionID string, option int) (*domain.Practice, error) {
	return s.mutate(ctx, sessionID, func(p *domain.Practice) error {
		return p.Answer(option)
	})
}

// Next implements PracticeService
func (s *practiceService) Next(ctx context.Context, sessionID string) (*domain.Practice, error) {
	return s.mutate(ctx, sessionID, func(p *domain.Practice) error {
		return p.Next()
	})
}

// Previous implements PracticeService
func (s *practiceService) Previous(ctx context.Context, sessionID string) (*domain.Practice, error) {
	return s.mutate(ctx, sessionID, func(p *domain.Practice) error {
		return p.Previous()
	})
}

// Restart implements PracticeService
func (s *practiceService) Restart(ctx context.Context, sessionID string) (*domain.Practice, error) {
	return s.mutate(ctx, sessionID, func(p *domain.Practice) error {
		return p.Restart()
	})
}

// BackToUpload implements PracticeService. Nothing in the session survives, so
// the stored entry is dropped instead of rewritten.
func (s *practiceService) BackToUpload(ctx context.Context, sessionID string) (*domain.Practice, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	if err := s.store.Delete(ctx, sessionID); err != nil {
		return nil, err
	}
	return domain.NewPractice(), nil
}

// Attempts implements PracticeService
func (s *practiceService) Attempts(ctx context.Context, pdfID string) ([]domain.Attempt, error) {
	if pdfID == "" {
		return nil, domain.NewNoDocumentError()
	}
	return s.backend.ListAttempts(ctx, pdfID)
}
