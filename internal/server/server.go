// Package server assembles the Fiber application from its collaborators.
package server

import (
	"pdf-quiz/internal/domain"
	"pdf-quiz/internal/handler"
	"pdf-quiz/internal/middleware"
	"pdf-quiz/internal/service"
	"pdf-quiz/internal/session"
	"pdf-quiz/internal/view"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
)

// Deps are the pieces the HTTP layer needs.
type Deps struct {
	Service       service.PracticeService
	Tokens        *session.TokenManager
	SessionCache  domain.Cache
	StoreName     string
	CookieName    string
	SecureCookies bool
	MaxUploadSize int64
	Fiber         fiber.Config
}

// New builds the app with middleware and routes registered. Views, ErrorHandler
// and BodyLimit in deps.Fiber are overwritten.
func New(deps Deps) *fiber.App {
	fcfg := deps.Fiber
	fcfg.ErrorHandler = middleware.ErrorHandler()
	fcfg.Views = view.New()
	// leave room for the multipart envelope so oversized files reach the size check
	fcfg.BodyLimit = int(deps.MaxUploadSize) + 1024*1024

	app := fiber.New(fcfg)

	app.Use(recover.New())
	app.Use(requestid.New(middleware.RequestIDConfig()))
	app.Use(middleware.RequestContext())
	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,X-Request-Id",
		MaxAge:       300,
	}))

	app.Get("/healthz", handler.NewHealthHandler(deps.SessionCache, deps.StoreName).Check)
	app.Get("/swagger/*", swagger.HandlerDefault)

	withSession := middleware.Session(deps.Tokens, middleware.SessionConfig{
		CookieName: deps.CookieName,
		Secure:     deps.SecureCookies,
	})
	handler.NewAPIHandler(deps.Service).Register(app.Group("/api/client", withSession))
	handler.NewPageHandler(deps.Service, deps.MaxUploadSize).Register(app.Group("/", withSession))

	return app
}
