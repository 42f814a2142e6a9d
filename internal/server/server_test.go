package server_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"pdf-quiz/internal/adapter"
	"pdf-quiz/internal/adapter/backend"
	"pdf-quiz/internal/config"
	"pdf-quiz/internal/dto"
	"pdf-quiz/internal/logger"
	"pdf-quiz/internal/server"
	"pdf-quiz/internal/service"
	"pdf-quiz/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePDF = "%PDF-1.7\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n"

var (
	app          *fiber.App
	backendCalls struct{ upload, generate, attempts atomic.Int32 }
)

// fakePracticeBackend mimics the external PDF / practice service.
func fakePracticeBackend() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/pdf/upload", func(w http.ResponseWriter, r *http.Request) {
		backendCalls.upload.Add(1)
		if _, _, err := r.FormFile("file"); err != nil {
			http.Error(w, "missing file", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"pdfId":"doc-42"}`)
	})
	mux.HandleFunc("/api/practice/generate", func(w http.ResponseWriter, r *http.Request) {
		backendCalls.generate.Add(1)
		var body struct {
			PDFID string `json:"pdfId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.PDFID != "doc-42" {
			http.Error(w, "unknown document", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[
			{"question":"HTTP status for Not Found?","options":["200","404","500"],"correctAnswer":1,"explanation":"404 means Not Found."},
			{"question":"Default HTTPS port?","options":["443","80"],"correctAnswer":0,"explanation":"HTTPS uses 443."}
		]`)
	})
	mux.HandleFunc("/api/practice/attempts/", func(w http.ResponseWriter, r *http.Request) {
		backendCalls.attempts.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"timestamp":"2025-01-02T03:04:05Z","totalQuestions":2,"correctAnswers":2,"scorePercentage":100}]`)
	})
	return httptest.NewServer(mux)
}

func TestMain(m *testing.M) {
	if err := logger.Initialize(config.LoggerConfig{Level: "error", Env: "test"}); err != nil {
		panic(err)
	}

	srv := fakePracticeBackend()

	tokens, err := session.NewTokenManager("integration-secret", time.Hour)
	if err != nil {
		panic(err)
	}
	memoryCache := adapter.NewMemoryCacheAdapter()
	client := backend.NewClient(config.BackendConfig{BaseURL: srv.URL, HistoryURL: srv.URL, Timeout: 5 * time.Second})
	svc := service.NewPracticeService(client, service.NewSessionStore(memoryCache, time.Hour), 1024*1024)

	app = server.New(server.Deps{
		Service:       svc,
		Tokens:        tokens,
		SessionCache:  memoryCache,
		StoreName:     "memory",
		CookieName:    "pdfquiz_session",
		MaxUploadSize: 1024 * 1024,
	})

	code := m.Run()
	srv.Close()
	os.Exit(code)
}

// client keeps the session cookie between requests like a browser would.
type client struct {
	t      *testing.T
	cookie *http.Cookie
}

func (c *client) do(req *http.Request) *http.Response {
	c.t.Helper()
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	resp, err := app.Test(req, 10000)
	require.NoError(c.t, err)
	for _, ck := range resp.Cookies() {
		if ck.Name == "pdfquiz_session" {
			c.cookie = ck
		}
	}
	return resp
}

func (c *client) state(resp *http.Response) dto.PracticeResponse {
	c.t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	require.Equal(c.t, http.StatusOK, resp.StatusCode, string(body))
	var out dto.PracticeResponse
	require.NoError(c.t, json.Unmarshal(body, &out))
	return out
}

func (c *client) post(path string, body io.Reader, contentType string) *http.Response {
	req := httptest.NewRequest(http.MethodPost, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return c.do(req)
}

func uploadBody(t *testing.T, content string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	part, err := w.CreateFormFile("file", "networking.pdf")
	require.NoError(t, err)
	_, err = io.WriteString(part, content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func TestJSONFlow(t *testing.T) {
	c := &client{t: t}

	st := c.state(c.do(httptest.NewRequest(http.MethodGet, "/api/client/state", nil)))
	assert.Equal(t, "upload", string(st.Step))
	require.NotNil(t, c.cookie)

	body, ct := uploadBody(t, samplePDF)
	st = c.state(c.post("/api/client/upload", body, ct))
	assert.Equal(t, "doc-42", st.PDFID)
	require.NotNil(t, st.SelectedFile)
	assert.Equal(t, "networking.pdf", st.SelectedFile.Name)

	st = c.state(c.post("/api/client/generate", nil, ""))
	assert.Equal(t, "quiz", string(st.Step))
	require.NotNil(t, st.Quiz)
	assert.Equal(t, "HTTP status for Not Found?", st.Quiz.Question)

	st = c.state(c.post("/api/client/answer", strings.NewReader(`{"option":1}`), "application/json"))
	assert.True(t, st.Quiz.IsCorrect)
	assert.Equal(t, 100, st.Quiz.Stats.Score)

	st = c.state(c.post("/api/client/next", nil, ""))
	assert.Equal(t, 2, st.Quiz.Number)
	assert.False(t, st.Quiz.HasNext)

	st = c.state(c.post("/api/client/answer", strings.NewReader(`{"option":1}`), "application/json"))
	assert.False(t, st.Quiz.IsCorrect)
	assert.True(t, st.Quiz.ShowExplanation)
	assert.True(t, st.Quiz.IsComplete)
	assert.Equal(t, 50, st.Quiz.Stats.Score)

	st = c.state(c.post("/api/client/restart", nil, ""))
	assert.Equal(t, 1, st.Quiz.Number)
	assert.Equal(t, 0, st.Quiz.Stats.Answered)

	resp := c.do(httptest.NewRequest(http.MethodGet, "/api/client/attempts/doc-42", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var attempts dto.AttemptsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&attempts))
	require.Len(t, attempts.Attempts, 1)
	assert.Equal(t, 100.0, attempts.Attempts[0].ScorePercentage)

	st = c.state(c.post("/api/client/back", nil, ""))
	assert.Equal(t, "upload", string(st.Step))
	assert.Empty(t, st.PDFID)
}

func TestUploadRejectsNonPDF(t *testing.T) {
	c := &client{t: t}
	before := backendCalls.upload.Load()

	body, ct := uploadBody(t, "just some text, not a pdf")
	resp := c.post("/api/client/upload", body, ct)
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
	assert.Equal(t, before, backendCalls.upload.Load(), "backend must not see rejected files")
}

func TestSessionsAreIsolated(t *testing.T) {
	alice := &client{t: t}
	bob := &client{t: t}

	body, ct := uploadBody(t, samplePDF)
	alice.state(alice.post("/api/client/upload", body, ct))
	alice.state(alice.post("/api/client/generate", nil, ""))

	st := bob.state(bob.do(httptest.NewRequest(http.MethodGet, "/api/client/state", nil)))
	assert.Equal(t, "upload", string(st.Step))

	resp := bob.post("/api/client/next", nil, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestHTMLFlow(t *testing.T) {
	c := &client{t: t}

	body, ct := uploadBody(t, samplePDF)
	resp := c.post("/upload", body, ct)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp = c.post("/generate", nil, "")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp = c.do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	html, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Question 1 of 2")
	assert.Contains(t, string(html), "Quiz Attempts")
}

func TestHealthz(t *testing.T) {
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
