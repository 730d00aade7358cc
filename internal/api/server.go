// Package api exposes the reconciliation pipeline over HTTP.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"yashubustudio/boqmatch/reconcile"
)

const defaultMaxBody = 64 << 20

// Server is the HTTP API server for boqmatch.
type Server struct {
	router  chi.Router
	svc     *reconcile.Service
	log     *zap.Logger
	maxBody int64
}

// NewServer creates and configures the HTTP server. maxBody limits request
// bodies; zero takes the default.
func NewServer(svc *reconcile.Service, log *zap.Logger, maxBody int64) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if maxBody <= 0 {
		maxBody = defaultMaxBody
	}
	s := &Server{svc: svc, log: log, maxBody: maxBody}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/reconcile", s.handleReconcile)
		r.Post("/profiles", s.handleProfiles)
		r.Post("/classify", s.handleClassify)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
