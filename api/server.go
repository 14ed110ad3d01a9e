// Package api is the HTTP surface of vidscribe.
package api

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/websocket/v2"

	"github.com/mrsingh-rishi/vidscribe/pipeline"
	"github.com/mrsingh-rishi/vidscribe/session"
	"github.com/mrsingh-rishi/vidscribe/validator"
)

// multipartSlack covers form boundaries and the language fields on top of
// the largest accepted upload.
const multipartSlack = 1 << 20

const localSession = "session"

// Runner runs one pipeline invocation.
type Runner interface {
	Run(ctx context.Context, st *session.State, req pipeline.Request) pipeline.Result
}

// Options wires a Server.
type Options struct {
	Runner   Runner
	Sessions *session.Store
	Identity *session.Identity
	Logger   *log.Logger

	// PollInterval is how often /ws/progress checks for new events.
	PollInterval time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

// Server holds the handlers' dependencies.
type Server struct {
	runner       Runner
	sessions     *session.Store
	identity     *session.Identity
	logger       *log.Logger
	pollInterval time.Duration
	now          func() time.Time
}

// New builds the fiber app with every route registered.
func New(opts Options) (*fiber.App, error) {
	if opts.Runner == nil {
		return nil, fmt.Errorf("pipeline runner is required")
	}
	if opts.Sessions == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if opts.Identity == nil {
		return nil, fmt.Errorf("session identity is required")
	}
	s := &Server{
		runner:       opts.Runner,
		sessions:     opts.Sessions,
		identity:     opts.Identity,
		logger:       opts.Logger,
		pollInterval: opts.PollInterval,
		now:          opts.Now,
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}

	app := fiber.New(fiber.Config{
		AppName:               "vidscribe",
		BodyLimit:             int(validator.MaxUploadSize) + multipartSlack,
		UnescapePath:          true,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
	}))

	app.Get("/api/languages", s.handleLanguages)

	api := app.Group("/api", s.sessionMiddleware)
	api.Post("/process", s.handleProcess)
	api.Get("/session", s.handleSession)
	api.Delete("/session", s.handleEndSession)
	api.Get("/transcript.txt", s.handleTranscript)
	api.Get("/translations/:language", s.handleTranslation)

	// Middleware to require WebSocket upgrade on /ws
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/progress", s.sessionMiddleware, websocket.New(s.handleProgress))

	return app, nil
}
