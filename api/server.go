package api

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"polysearch/config"
	"polysearch/search"
)

// Server exposes the search pipeline and the site configuration over HTTP.
type Server struct {
	orchestrator *search.Orchestrator
	store        *config.SiteStore
	logger       *zap.Logger
	port         int
}

func NewServer(orchestrator *search.Orchestrator, store *config.SiteStore, logger *zap.Logger, port int) *Server {
	return &Server{
		orchestrator: orchestrator,
		store:        store,
		logger:       logger,
		port:         port,
	}
}

// Handler builds the route table. Split out of Start so tests can mount it
// on httptest servers.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/search", s.searchHandler)
	mux.HandleFunc("/api/config", s.configHandler)
	mux.HandleFunc("/api/config/add-site", s.addSiteHandler)
	mux.HandleFunc("/api/config/remove-site", s.removeSiteHandler)
	mux.HandleFunc("/api/config/toggle-site", s.toggleSiteHandler)
	mux.HandleFunc("/api/config/blacklist", s.blacklistHandler)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return mux
}

func (s *Server) Start() error {
	s.logger.Info("starting api server", zap.Int("port", s.port))
	return http.ListenAndServe(fmt.Sprintf(":%d", s.port), s.Handler())
}
