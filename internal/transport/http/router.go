// http собирает REST-поверхность diary-service на chi.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pribylovaa/go-diary/internal/transport/http/handlers"
	"github.com/pribylovaa/go-diary/internal/transport/http/middleware"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger  *slog.Logger
	Timeout time.Duration
	// AuthRequired — /api/diary и /api/images требуют bearer-токен.
	AuthRequired bool
	// Identity — учётные записи; nil выключает проверку токенов и /api/auth/*.
	Identity handlers.Identity
	// Registerer — куда регистрировать HTTP-метрики; nil — prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(diary handlers.Diary, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний). RequestID до логирования.
	root.Use(
		middleware.Recover(),
		middleware.RequestID(),
		middleware.Logging(opts.Logger),
		middleware.Metrics(opts.Registerer),
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout))
	}

	var verifier middleware.Verifier
	if opts.Identity != nil {
		verifier = opts.Identity
	}
	root.Use(middleware.Authenticate(verifier))

	h := handlers.New(diary, opts.Identity, opts.AuthRequired)

	root.Route("/api", func(r chi.Router) {
		registerRoutes(r, h)
	})

	return root
}

// registerRoutes — единая точка регистрации всех REST-эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers) {
	// diary
	r.Get("/diary", h.ListEntries)
	r.Post("/diary", h.CreateEntry)
	r.Put("/diary", h.UpdateEntry)

	// auth
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)
	r.With(middleware.RequireUser()).Post("/auth/logout", h.Logout)
	r.With(middleware.RequireUser()).Get("/auth/me", h.Me)

	// images
	r.Post("/images/presign", h.PresignImage)
	r.Post("/images/confirm", h.ConfirmImage)
}
