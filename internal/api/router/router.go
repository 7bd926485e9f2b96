package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/carewell-ai/care-assistant/internal/chat"
	httpmiddleware "github.com/carewell-ai/care-assistant/internal/http/middleware"
	"github.com/carewell-ai/care-assistant/internal/security"
	"github.com/carewell-ai/care-assistant/internal/users"
	"github.com/carewell-ai/care-assistant/internal/webchat"
	"github.com/carewell-ai/care-assistant/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	ChatHandler        *chat.Handler
	WebChatHandler     *webchat.Handler
	UsersHandler       *users.Handler
	Tokens             *security.TokenRegistry
	AdminAuthSecret    string
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", handleHealth)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}

		if cfg.ChatHandler != nil {
			public.Route("/api", func(r chi.Router) {
				if cfg.Tokens != nil {
					r.Use(resolveSessionUser(cfg.Tokens))
				}
				r.Post("/message", cfg.ChatHandler.HandleMessage)
				r.Post("/authenticate", cfg.ChatHandler.HandleAuthenticate)
				r.Get("/history", cfg.ChatHandler.HandleHistory)
			})
		}

		if cfg.WebChatHandler != nil {
			public.Route("/webchat", func(r chi.Router) {
				r.Get("/ws", cfg.WebChatHandler.HandleWebSocket)
				r.Post("/message", cfg.WebChatHandler.HandleMessage)
			})
		}
	})

	// Admin routes (protected by JWT)
	if cfg.AdminAuthSecret != "" && cfg.UsersHandler != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Get("/users", cfg.UsersHandler.ListUsers)
			admin.Get("/users/{userID}", cfg.UsersHandler.GetUser)
		})
	}

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
