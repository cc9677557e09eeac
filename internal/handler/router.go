package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Pab1o16/turing-chat/internal/config"
	"github.com/Pab1o16/turing-chat/internal/middleware"
	"github.com/Pab1o16/turing-chat/internal/service"
	"github.com/Pab1o16/turing-chat/internal/sse"
)

type RouterDeps struct {
	Config        *config.Config
	ChatService   *service.ChatService
	InboxService  *service.InboxService
	ExportService *service.ExportService
	Broker        *sse.Broker
	Limiter       middleware.Limiter
}

func NewRouter(deps RouterDeps) http.Handler {
	cfg := deps.Config

	operatorAuth := middleware.NewOperatorAuth(middleware.OperatorAuthConfig{
		Token:        cfg.OperatorToken,
		User:         cfg.OperatorUser,
		PasswordHash: cfg.OperatorPasswordHash,
	}, middleware.NewAuthFailureLimiter())

	limiter := deps.Limiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter()
	}
	intakeLimit := middleware.NewRateLimitMiddleware(limiter, cfg.RateLimitPerMin, "intake")

	bodyLimit := middleware.NewBodyLimitMiddleware(config.MaxBodyBytes)
	securityHeaders := middleware.NewSecurityHeadersMiddleware(false)

	chatHandler := NewChatHandler(deps.ChatService)
	exportHandler := NewExportHandler(deps.ExportService)
	var eventsHandler http.Handler
	if deps.Broker != nil {
		eventsHandler = NewEventsHandler(deps.Broker, deps.InboxService)
	}
	operatorHandler := NewOperatorHandler(deps.ChatService, deps.InboxService, eventsHandler)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(bodyLimit.Handler)

	r.Get("/health", Health(deps.ChatService, deps.Broker))

	r.Group(func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
			AllowCredentials: false,
			MaxAge:           300,
		}))

		r.Route("/api", func(r chi.Router) {
			r.Route("/operator", func(r chi.Router) {
				r.Use(operatorAuth.Handler)
				r.Mount("/", operatorHandler.Routes())
			})
			r.Mount("/", chatHandler.Routes(intakeLimit.Handler))
		})

		r.Get("/debrief/{id}", exportHandler.Debrief)
		r.With(operatorAuth.Handler).Get("/export", exportHandler.ExportAll)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/operator/", http.StatusFound)
	})

	r.Route("/operator", func(r chi.Router) {
		r.Use(securityHeaders.Handler)
		r.Handle("/*", NewOperatorUI(cfg.StaticDir))
	})

	return r
}
