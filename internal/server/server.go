// Package server exposes the pricing form over HTTP.
package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/PippinModels/commercial-pricing-app/internal/cascade"
	"github.com/PippinModels/commercial-pricing-app/internal/config"
	"github.com/PippinModels/commercial-pricing-app/internal/form"
	"github.com/PippinModels/commercial-pricing-app/internal/rowstore"
)

// Server routes form actions to a Flow.
type Server struct {
	flow     *form.Flow
	sessions *SessionStore
	origins  []string
}

// New creates a Server.
func New(flow *form.Flow, sessions *SessionStore, cfg config.ServerConfig) *Server {
	return &Server{flow: flow, sessions: sessions, origins: cfg.CORSOrigins}
}

// Handler returns the HTTP handler with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/options", s.handleOptions)
		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Post("/predict", s.handlePredict)
			r.Post("/choose", s.handleChoose)
			r.Post("/submit", s.handleSubmit)
		})
	})
	return r
}

// sessionResponse is the body of every session endpoint.
type sessionResponse struct {
	Session form.Session `json:"session"`
	Offered []string     `json:"offered,omitempty"`
	Error   string       `json:"error,omitempty"`
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var prior []cascade.Choice
	steps := s.flow.Cascade().Steps()
	for _, st := range steps {
		name := string(st.Field)
		if !q.Has(name) {
			break
		}
		var other bool
		if raw := q.Get(name + "_other"); raw != "" {
			b, err := strconv.ParseBool(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid "+name+"_other: "+raw)
				return
			}
			other = b
		}
		prior = append(prior, cascade.Choice{Value: q.Get(name), Other: other})
	}
	if len(prior) == len(steps) {
		writeError(w, http.StatusBadRequest, "all fields already chosen")
		return
	}

	opts, err := s.flow.Options(r.Context(), prior)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"field":   steps[len(prior)].Field,
		"column":  steps[len(prior)].Field.Column(),
		"options": opts,
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create()
	writeJSON(w, http.StatusCreated, sessionResponse{Session: sess})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessions.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Session: sess, Offered: form.Offered(sess)})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Choices []cascade.Choice `json:"choices"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.update(w, r, func(sess form.Session) (form.Session, error) {
		return s.flow.Predict(r.Context(), sess, req.Choices)
	})
}

func (s *Server) handleChoose(w http.ResponseWriter, r *http.Request) {
	var pick form.Pick
	if err := json.NewDecoder(r.Body).Decode(&pick); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.update(w, r, func(sess form.Session) (form.Session, error) {
		return s.flow.Choose(sess, pick)
	})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	s.update(w, r, func(sess form.Session) (form.Session, error) {
		return s.flow.Submit(r.Context(), sess)
	})
}

func (s *Server) update(w http.ResponseWriter, r *http.Request, fn func(form.Session) (form.Session, error)) {
	sess, ok, err := s.sessions.Update(chi.URLParam(r, "id"), fn)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	resp := sessionResponse{Session: sess, Offered: form.Offered(sess)}
	status := http.StatusOK
	if err != nil {
		resp.Error = err.Error()
		status = statusFor(err)
	}
	writeJSON(w, status, resp)
}

func statusFor(err error) int {
	switch {
	case form.IsInput(err):
		return http.StatusBadRequest
	case form.IsTransition(err), form.IsDuplicate(err):
		return http.StatusConflict
	case rowstore.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("server: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("server: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
