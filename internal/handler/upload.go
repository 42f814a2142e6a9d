package handler

import (
	"pdf-quiz/internal/domain"
	"pdf-quiz/internal/service"

	"github.com/gofiber/fiber/v2"
)

// uploadFromForm hands the multipart "file" field to the service.
func uploadFromForm(c *fiber.Ctx, svc service.PracticeService, sessionID string) (*domain.Practice, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, domain.NewNoFileError()
	}
	f, err := fh.Open()
	if err != nil {
		return nil, domain.NewInternalError("failed to open uploaded file", err)
	}
	defer f.Close()

	return svc.Upload(c.UserContext(), sessionID, service.FileInput{
		Name:    fh.Filename,
		Size:    fh.Size,
		Content: f,
	})
}
