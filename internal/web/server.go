package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/imageforge/gateway/internal/service/listing"
	"github.com/imageforge/gateway/internal/service/logger"
	"github.com/imageforge/gateway/internal/service/monitor"
	"github.com/imageforge/gateway/internal/service/submission"
	"github.com/imageforge/gateway/internal/web/middleware"
)

type Server struct {
	router     chi.Router
	submission *submission.Service
	listing    *listing.Service
	monitor    *monitor.Service
}

func NewServer(sub *submission.Service, list *listing.Service, mon *monitor.Service, allowedOrigins []string) *Server {
	s := &Server{
		router:     chi.NewRouter(),
		submission: sub,
		listing:    list,
		monitor:    mon,
	}

	s.routes(allowedOrigins)
	return s
}

// Expose the router for main.go
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) routes(allowedOrigins []string) {
	r := s.router

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(middleware.CORS(allowedOrigins))

	limiter := middleware.NewLimiter(64, 16)

	r.With(limiter.Limit).Post("/request", s.handleSubmitJob)
	r.Get("/s3list", s.handleListArtifacts)
	r.Get("/sqs_monitor", s.handleQueueMonitor)
}

func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	// A malformed body is treated as an empty payload; validation reports
	// every missing field rather than the request crashing on decode.
	payload := map[string]any{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		payload = map[string]any{}
	}

	desc, violations, err := s.submission.Submit(ctx, payload)
	if len(violations) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   "Validation failed",
			"details": violations,
		})
		return
	}
	if err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Msg("job submission failed")

		var serr *submission.Error
		msg := "failed to submit job request"
		if errors.As(err, &serr) {
			switch serr.Kind {
			case submission.KindStorage:
				msg = "failed to store job request"
			case submission.KindQueue:
				msg = "failed to queue job request"
			}
		}
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": msg})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "Message sent",
		"data":   desc,
	})
}

func (s *Server) handleListArtifacts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	// Recent never errors: an unreachable store is an empty result, and the
	// client treats empty as "nothing right now".
	writeJSON(w, http.StatusOK, s.listing.Recent(ctx))
}

func (s *Server) handleQueueMonitor(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	snapshots, err := s.monitor.Snapshots(ctx)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Msg("queue monitoring failed")
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "queue monitoring failed"})
		return
	}

	writeJSON(w, http.StatusOK, snapshots)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error().Err(err).Msg("unable to write response")
	}
}
