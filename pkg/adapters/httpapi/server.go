// Package httpapi exposes the bot over HTTP in the Bot Framework
// connector shape: activities in, a batch of reply activities out.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/flightdeck/adbot"
	"github.com/flightdeck/adbot/pkg/domain"
)

// TurnHandler is the slice of the bot the HTTP layer needs.
type TurnHandler interface {
	Turn(ctx context.Context, activity *domain.Activity) (*domain.TurnResponse, error)
}

// Server routes connector traffic to a TurnHandler.
type Server struct {
	bot    TurnHandler
	logger *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used by the handlers.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewHandler builds the HTTP handler for the bot endpoint.
func NewHandler(bot TurnHandler, opts ...Option) http.Handler {
	s := &Server{
		bot:    bot,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Post("/api/turns", s.handleTurn)
	r.Get("/healthz", s.handleHealth)
	r.Get("/info", s.handleInfo)
	r.Handle("/metrics", promhttp.Handler())
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	var activity domain.Activity
	if err := json.NewDecoder(r.Body).Decode(&activity); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("Turn: invalid request body", "error", err)
		return
	}

	resp, err := s.bot.Turn(r.Context(), &activity)
	if err != nil {
		var decodeErr *domain.PayloadDecodeError
		if errors.As(err, &decodeErr) {
			http.Error(w, fmt.Sprintf("Invalid activity payload: %v", err), http.StatusBadRequest)
			s.logger.Warn("Turn: payload rejected", "error", err)
			return
		}
		http.Error(w, fmt.Sprintf("Turn error: %v", err), http.StatusInternalServerError)
		s.logger.Error("Turn failed", "error", err, "conversation_id", activity.Conversation.ID)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("Turn response encode failed", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{
		"app":     "adbot-http",
		"version": strings.TrimSpace(adbot.Version),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
