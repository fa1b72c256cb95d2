// Package server exposes the HTTP surface of the chat backend.
// Handlers are pure translations: decode and validate input, invoke exactly
// one service operation, map its outcome to a response.
package server

import (
	"batepapo/services"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// identityHeader names the request header carrying the caller's participant
// name. Message posting, history, and heartbeat all require it.
const identityHeader = "User"

type Server struct {
	presence services.IPresenceService
	messages services.IMessageService
	log      *slog.Logger
}

func New(presence services.IPresenceService, messages services.IMessageService, log *slog.Logger) *Server {
	return &Server{presence: presence, messages: messages, log: log}
}

// Router wires the HTTP routes to the presence and message services.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(cors)

	r.Post("/participants", s.handleRegister)
	r.Get("/participants", s.handleListParticipants)
	r.Post("/messages", s.handlePostMessage)
	r.Get("/messages", s.handleListMessages)
	r.Get("/messages/search", s.handleSearchMessages)
	r.Post("/status", s.handleHeartbeat)

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, User")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
