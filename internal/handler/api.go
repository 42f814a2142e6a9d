package handler

import (
	"pdf-quiz/internal/domain"
	"pdf-quiz/internal/dto"
	"pdf-quiz/internal/middleware"
	"pdf-quiz/internal/service"
	"pdf-quiz/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// APIHandler exposes the practice flow as JSON under /api/client
type APIHandler struct {
	service service.PracticeService
}

// NewAPIHandler creates a new APIHandler instance
func NewAPIHandler(service service.PracticeService) *APIHandler {
	return &APIHandler{service: service}
}

// Register mounts the JSON routes on router.
func (h *APIHandler) Register(router fiber.Router) {
	router.Get("/state", h.GetState)
	router.Post("/upload", h.Upload)
	router.Post("/upload/cancel", h.CancelUpload)
	router.Post("/generate", h.Generate)
	router.Post("/answer", h.Answer)
	router.Post("/next", h.Next)
	router.Post("/previous", h.Previous)
	router.Post("/restart", h.Restart)
	router.Post("/back", h.Back)
	router.Get("/attempts/:pdfId", h.GetAttempts)
}

func (h *APIHandler) respond(c *fiber.Ctx, p *domain.Practice, err error) error {
	if err != nil {
		return err
	}
	return c.JSON(dto.NewPracticeResponse(p))
}

// GetState godoc
// @Summary Get the current practice state
// @Description Returns the upload card or the current question for this session
// @Tags practice
// @Produce json
// @Success 200 {object} dto.PracticeResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /state [get]
func (h *APIHandler) GetState(c *fiber.Ctx) error {
	p, err := h.service.State(c.UserContext(), middleware.SessionID(c))
	return h.respond(c, p, err)
}

// Upload godoc
// @Summary Upload a PDF
// @Description Sends the PDF to the backend and records the returned document id
// @Tags practice
// @Accept mpfd
// @Produce json
// @Param file formData file true "PDF document"
// @Success 200 {object} dto.PracticeResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 413 {object} middleware.ErrorResponse
// @Failure 415 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Router /upload [post]
func (h *APIHandler) Upload(c *fiber.Ctx) error {
	p, err := uploadFromForm(c, h.service, middleware.SessionID(c))
	return h.respond(c, p, err)
}

// CancelUpload godoc
// @Summary Clear the selected file
// @Tags practice
// @Produce json
// @Success 200 {object} dto.PracticeResponse
// @Router /upload/cancel [post]
func (h *APIHandler) CancelUpload(c *fiber.Ctx) error {
	p, err := h.service.ClearFile(c.UserContext(), middleware.SessionID(c))
	return h.respond(c, p, err)
}

// Generate godoc
// @Summary Generate a quiz
// @Description Asks the backend for a question set for the uploaded document
// @Tags practice
// @Produce json
// @Success 200 {object} dto.PracticeResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Router /generate [post]
func (h *APIHandler) Generate(c *fiber.Ctx) error {
	p, err := h.service.GenerateQuiz(c.UserContext(), middleware.SessionID(c))
	return h.respond(c, p, err)
}

// Answer godoc
// @Summary Answer the current question
// @Description Records the chosen option; answering twice keeps the first answer
// @Tags practice
// @Accept json
// @Produce json
// @Param answer body dto.AnswerRequest true "Chosen option (0-based)"
// @Success 200 {object} dto.PracticeResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /answer [post]
func (h *APIHandler) Answer(c *fiber.Ctx) error {
	var req dto.AnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if req.Option == nil {
		return validation.Errors{{Field: "option", Rule: "required", Message: "option is required"}}
	}
	p, err := h.service.Answer(c.UserContext(), middleware.SessionID(c), *req.Option)
	return h.respond(c, p, err)
}

// Next godoc
// @Summary Go to the next question
// @Tags practice
// @Produce json
// @Success 200 {object} dto.PracticeResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /next [post]
func (h *APIHandler) Next(c *fiber.Ctx) error {
	p, err := h.service.Next(c.UserContext(), middleware.SessionID(c))
	return h.respond(c, p, err)
}

// Previous godoc
// @Summary Go to the previous question
// @Tags practice
// @Produce json
// @Success 200 {object} dto.PracticeResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /previous [post]
func (h *APIHandler) Previous(c *fiber.Ctx) error {
	p, err := h.service.Previous(c.UserContext(), middleware.SessionID(c))
	return h.respond(c, p, err)
}

// Restart godoc
// @Summary Restart the quiz
// @Description Clears every answer and returns to the first question
// @Tags practice
// @Produce json
// @Success 200 {object} dto.PracticeResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /restart [post]
func (h *APIHandler) Restart(c *fiber.Ctx) error {
	p, err := h.service.Restart(c.UserContext(), middleware.SessionID(c))
	return h.respond(c, p, err)
}

// Back godoc
// @Summary Back to upload
// @Description Discards the quiz and the document id
// @Tags practice
// @Produce json
// @Success 200 {object} dto.PracticeResponse
// @Router /back [post]
func (h *APIHandler) Back(c *fiber.Ctx) error {
	p, err := h.service.BackToUpload(c.UserContext(), middleware.SessionID(c))
	return h.respond(c, p, err)
}

// GetAttempts godoc
// @Summary List previous attempts
// @Description Fetches attempt history for a document from the history service
// @Tags attempts
// @Produce json
// @Param pdfId path string true "Document id"
// @Success 200 {object} dto.AttemptsResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Router /attempts/{pdfId} [get]
func (h *APIHandler) GetAttempts(c *fiber.Ctx) error {
	pdfID := c.Params("pdfId")
	attempts, err := h.service.Attempts(c.UserContext(), pdfID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewAttemptsResponse(pdfID, attempts))
}
