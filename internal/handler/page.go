package handler

import (
	"context"
	"errors"
	"net/url"
	"strconv"

	"pdf-quiz/internal/domain"
	"pdf-quiz/internal/dto"
	"pdf-quiz/internal/logger"
	"pdf-quiz/internal/middleware"
	"pdf-quiz/internal/service"
	"pdf-quiz/internal/upload"
	"pdf-quiz/internal/view"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	flashCookie = "pdfquiz_flash"
	pageTitle   = "AI Study Planner"
)

// PageHandler serves the HTML front-end. Every POST redirects back to "/" and
// failures travel to the next page load as a flash message.
type PageHandler struct {
	service       service.PracticeService
	maxUploadSize int64
}

// NewPageHandler creates a new PageHandler instance
func NewPageHandler(service service.PracticeService, maxUploadSize int64) *PageHandler {
	return &PageHandler{service: service, maxUploadSize: maxUploadSize}
}

// Register mounts the page routes on router.
func (h *PageHandler) Register(router fiber.Router) {
	router.Get("/", h.Index)
	router.Post("/upload", h.Upload)
	router.Post("/upload/cancel", h.CancelUpload)
	router.Post("/generate", h.Generate)
	router.Post("/quiz/answer", h.Answer)
	router.Post("/quiz/next", h.action(h.service.Next))
	router.Post("/quiz/previous", h.action(h.service.Previous))
	router.Post("/quiz/restart", h.action(h.service.Restart))
	router.Post("/quiz/back", h.action(h.service.BackToUpload))
}

// Index renders the upload card or the current question.
func (h *PageHandler) Index(c *fiber.Ctx) error {
	ctx := c.UserContext()
	p, err := h.service.State(ctx, middleware.SessionID(c))
	if err != nil {
		return err
	}

	page := view.Page{
		Title:          pageTitle,
		Flash:          h.takeFlash(c),
		State:          dto.NewPracticeResponse(p),
		MaxUploadLabel: upload.FormatSize(h.maxUploadSize),
	}
	if p.InQuiz() {
		attempts, err := h.service.Attempts(ctx, p.PDFID)
		if err != nil {
			logger.Get().Warn("Attempt history unavailable", zap.String("pdf_id", p.PDFID), zap.Error(err))
			page.AttemptsError = "Attempt history is unavailable right now."
		} else {
			page.Attempts = dto.NewAttemptsResponse(p.PDFID, attempts)
		}
	}

	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Render("index", page)
}

// Upload handles the multipart form from the upload card.
func (h *PageHandler) Upload(c *fiber.Ctx) error {
	_, err := uploadFromForm(c, h.service, middleware.SessionID(c))
	return h.redirect(c, err)
}

// CancelUpload clears the selected file.
func (h *PageHandler) CancelUpload(c *fiber.Ctx) error {
	_, err := h.service.ClearFile(c.UserContext(), middleware.SessionID(c))
	return h.redirect(c, err)
}

// Generate requests a quiz for the uploaded document.
func (h *PageHandler) Generate(c *fiber.Ctx) error {
	_, err := h.service.GenerateQuiz(c.UserContext(), middleware.SessionID(c))
	return h.redirect(c, err)
}

// Answer records the option button that was pressed.
func (h *PageHandler) Answer(c *fiber.Ctx) error {
	option, err := strconv.Atoi(c.FormValue("option"))
	if err != nil {
		return h.redirect(c, domain.NewInvalidInputError("Choose one of the options"))
	}
	_, err = h.service.Answer(c.UserContext(), middleware.SessionID(c), option)
	return h.redirect(c, err)
}

func (h *PageHandler) action(op func(ctx context.Context, sessionID string) (*domain.Practice, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		_, err := op(c.UserContext(), middleware.SessionID(c))
		return h.redirect(c, err)
	}
}

func (h *PageHandler) redirect(c *fiber.Ctx, err error) error {
	if err != nil {
		logger.Get().Info("Page action failed",
			zap.String("path", c.Path()),
			zap.String("request_id", middleware.RequestID(c)),
			zap.Error(err),
		)
		h.setFlash(c, flashMessage(err))
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

func flashMessage(err error) string {
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) && domainErr.Code != domain.CodeInternal {
		return domainErr.Message
	}
	return "Something went wrong. Please try again."
}

func (h *PageHandler) setFlash(c *fiber.Ctx, msg string) {
	c.Cookie(&fiber.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(msg),
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (h *PageHandler) takeFlash(c *fiber.Ctx) *view.Flash {
	raw := c.Cookies(flashCookie)
	if raw == "" {
		return nil
	}
	c.ClearCookie(flashCookie)
	msg, err := url.QueryUnescape(raw)
	if err != nil || msg == "" {
		return nil
	}
	return &view.Flash{Kind: "error", Message: msg}
}
