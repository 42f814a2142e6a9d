// Package backend is the HTTP adapter for the external PDF / practice service.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pdf-quiz/internal/config"
	"pdf-quiz/internal/domain"
	"pdf-quiz/internal/logger"
	"pdf-quiz/internal/observability"
	"pdf-quiz/internal/util"
	"pdf-quiz/internal/validation"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	uploadPath   = "/api/pdf/upload"
	generatePath = "/api/practice/generate"
	attemptsPath = "/api/practice/attempts/{pdfId}"
)

// Client implements domain.PracticeBackend over HTTP.
type Client struct {
	api       *resty.Client
	history   *resty.Client
	validator *validation.Validator
	attempts  singleflight.Group
	tracer    trace.Tracer
}

// NewClient builds a client for cfg. History requests use cfg.HistoryURL,
// which may point at a different host than the upload/generation API.
func NewClient(cfg config.BackendConfig) *Client {
	historyURL := cfg.HistoryURL
	if historyURL == "" {
		historyURL = cfg.BaseURL
	}
	return &Client{
		api:       newRestyClient(cfg.BaseURL, cfg.Timeout),
		history:   newRestyClient(historyURL, cfg.Timeout),
		validator: validation.NewValidator(),
		tracer:    otel.Tracer(observability.TracerName),
	}
}

func newRestyClient(baseURL string, timeout time.Duration) *resty.Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Accept", "application/json")
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return client
}

func (c *Client) request(ctx context.Context, client *resty.Client) *resty.Request {
	req := client.R().
		SetContext(ctx).
		SetHeader(util.RequestIDHeader, util.RequestIDFrom(ctx))
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
	return req
}

func endSpan(span trace.Span, resp *resty.Response, err error) {
	if resp != nil {
		span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode()))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// statusError describes a non-2xx reply, keeping a short body excerpt for the logs.
func statusError(resp *resty.Response) error {
	body := strings.TrimSpace(resp.String())
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Errorf("unexpected status %d: %s", resp.StatusCode(), body)
}

type uploadResponse struct {
	PDFID string `json:"pdfId"`
}

// UploadPDF implements domain.PracticeBackend.
func (c *Client) UploadPDF(ctx context.Context, filename string, content io.Reader) (pdfID string, err error) {
	ctx, span := c.tracer.Start(ctx, "backend.UploadPDF", trace.WithAttributes(attribute.String("file.name", filename)))
	var resp *resty.Response
	defer func() { endSpan(span, resp, err) }()

	resp, err = c.request(ctx, c.api).
		SetFileReader("file", filename, content).
		Post(uploadPath)
	if err != nil {
		logger.Get().Error("PDF upload request failed", zap.Error(err), zap.String("file", filename))
		return "", domain.NewUploadFailedError(err)
	}
	if resp.IsError() {
		err = statusError(resp)
		logger.Get().Warn("PDF upload rejected", zap.Int("status", resp.StatusCode()), zap.String("file", filename))
		return "", domain.NewUploadFailedError(err)
	}
	var out uploadResponse
	if err = json.Unmarshal(resp.Body(), &out); err != nil {
		return "", domain.NewUploadFailedError(fmt.Errorf("failed to decode upload response: %w", err))
	}
	if strings.TrimSpace(out.PDFID) == "" {
		err = fmt.Errorf("response did not contain a pdfId")
		return "", domain.NewUploadFailedError(err)
	}

	logger.Get().Info("PDF uploaded", zap.String("pdf_id", out.PDFID), zap.String("file", filename))
	return out.PDFID, nil
}

type generateRequest struct {
	PDFID string `json:"pdfId"`
}

// GenerateQuiz implements domain.PracticeBackend. The service answers with a bare
// JSON array; an object wrapping it under "questions" is accepted too.
func (c *Client) GenerateQuiz(ctx context.Context, pdfID string) (questions []domain.QuizQuestion, err error) {
	ctx, span := c.tracer.Start(ctx, "backend.GenerateQuiz", trace.WithAttributes(attribute.String("pdf.id", pdfID)))
	var resp *resty.Response
	defer func() { endSpan(span, resp, err) }()

	resp, err = c.request(ctx, c.api).
		SetHeader("Content-Type", "application/json").
		SetBody(generateRequest{PDFID: pdfID}).
		Post(generatePath)
	if err != nil {
		logger.Get().Error("Quiz generation request failed", zap.Error(err), zap.String("pdf_id", pdfID))
		return nil, domain.NewGenerationFailedError(err)
	}
	if resp.IsError() {
		err = statusError(resp)
		logger.Get().Warn("Quiz generation rejected", zap.Int("status", resp.StatusCode()), zap.String("pdf_id", pdfID))
		return nil, domain.NewGenerationFailedError(err)
	}

	questions, err = decodeQuestions(resp.Body())
	if err != nil {
		return nil, domain.NewGenerationFailedError(err)
	}
	if err = c.validator.ValidateQuestions(questions); err != nil {
		logger.Get().Warn("Generated quiz failed validation", zap.Error(err), zap.String("pdf_id", pdfID))
		return nil, domain.NewGenerationFailedError(err)
	}
	// Answers are client state; ignore any the service echoes back.
	for i := range questions {
		questions[i].UserAnswer = nil
	}

	span.SetAttributes(attribute.Int("quiz.questions", len(questions)))
	logger.Get().Info("Quiz generated", zap.String("pdf_id", pdfID), zap.Int("questions", len(questions)))
	return questions, nil
}

func decodeQuestions(body []byte) ([]domain.QuizQuestion, error) {
	trimmed := bytes.TrimSpace(body)
	var questions []domain.QuizQuestion
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapped struct {
			Questions []domain.QuizQuestion `json:"questions"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, fmt.Errorf("failed to decode quiz: %w", err)
		}
		return wrapped.Questions, nil
	}
	if err := json.Unmarshal(trimmed, &questions); err != nil {
		return nil, fmt.Errorf("failed to decode quiz: %w", err)
	}
	return questions, nil
}

// ListAttempts implements domain.PracticeBackend. Concurrent loads for the same
// document share one request, which is detached from any single caller's
// cancellation; each caller still stops waiting when its own ctx is done.
func (c *Client) ListAttempts(ctx context.Context, pdfID string) ([]domain.Attempt, error) {
	if err := c.validator.ValidatePDFID(pdfID); err != nil {
		return nil, domain.NewInvalidInputError("invalid pdfId").WithContext("pdfId", pdfID)
	}
	ch := c.attempts.DoChan(pdfID, func() (interface{}, error) {
		return c.fetchAttempts(context.WithoutCancel(ctx), pdfID)
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, domain.NewHistoryUnavailableError(ctx.Err())
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	if res.Shared {
		logger.Get().Debug("Attempt history request shared", zap.String("pdf_id", pdfID))
	}
	// Callers may sort or trim; hand each its own slice.
	attempts := res.Val.([]domain.Attempt)
	out := make([]domain.Attempt, len(attempts))
	copy(out, attempts)
	return out, nil
}

func (c *Client) fetchAttempts(ctx context.Context, pdfID string) (attempts []domain.Attempt, err error) {
	ctx, span := c.tracer.Start(ctx, "backend.ListAttempts", trace.WithAttributes(attribute.String("pdf.id", pdfID)))
	var resp *resty.Response
	defer func() { endSpan(span, resp, err) }()

	resp, err = c.request(ctx, c.history).
		SetPathParam("pdfId", pdfID).
		Get(attemptsPath)
	if err != nil {
		logger.Get().Error("Attempt history request failed", zap.Error(err), zap.String("pdf_id", pdfID))
		return nil, domain.NewHistoryUnavailableError(err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		// No attempts recorded yet for this document.
		return []domain.Attempt{}, nil
	}
	if resp.IsError() {
		err = statusError(resp)
		return nil, domain.NewHistoryUnavailableError(err)
	}

	var wire []attemptWire
	if err = json.Unmarshal(resp.Body(), &wire); err != nil {
		return nil, domain.NewHistoryUnavailableError(fmt.Errorf("failed to decode attempts: %w", err))
	}
	attempts = make([]domain.Attempt, 0, len(wire))
	for _, w := range wire {
		attempts = append(attempts, w.toDomain())
	}
	return attempts, nil
}

type attemptWire struct {
	Timestamp       flexTime `json:"timestamp"`
	TotalQuestions  int      `json:"totalQuestions"`
	CorrectAnswers  int      `json:"correctAnswers"`
	ScorePercentage float64  `json:"scorePercentage"`
}

func (w attemptWire) toDomain() domain.Attempt {
	return domain.Attempt{
		Timestamp:       time.Time(w.Timestamp),
		TotalQuestions:  w.TotalQuestions,
		CorrectAnswers:  w.CorrectAnswers,
		ScorePercentage: w.ScorePercentage,
	}
}

// flexTime accepts the timestamp shapes the history service has been seen to
// emit: RFC 3339 strings, zone-less ISO strings and epoch milliseconds.
type flexTime time.Time

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func (f *flexTime) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == `""` {
		*f = flexTime(time.Time{})
		return nil
	}
	if !strings.HasPrefix(raw, `"`) {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid timestamp %s: %w", raw, err)
		}
		*f = flexTime(time.UnixMilli(ms).UTC())
		return nil
	}
	s, err := strconv.Unquote(raw)
	if err != nil {
		return err
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*f = flexTime(t)
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", s)
}

// Static assertion to ensure Client implements PracticeBackend
var _ domain.PracticeBackend = (*Client)(nil)
