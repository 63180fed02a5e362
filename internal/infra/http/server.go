package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/VvkAlgo/RoleMatchAI/internal/infra/metrics"
	"github.com/VvkAlgo/RoleMatchAI/internal/infra/web"
)

// Server is the ops endpoint: liveness and prometheus exposition on a
// port that is never exposed to the operator API's network.
type Server struct {
	addr   string
	log    *zerolog.Logger
	server *http.Server
}

func NewServer(addr string, logger *zerolog.Logger) *Server {
	l := logger.With().Str("component", "OpsServer").Logger()
	return &Server{addr: addr, log: &l}
}

func (s *Server) Start() error {
	metrics.MustRegister()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealthCheck)
	mux.Handle("/metrics", promhttp.Handler())

	s.server = &http.Server{
		Addr:    s.addr,
		Handler: web.Chain(mux, web.Recover(s.log)),
	}

	s.log.Info().Str("addr", s.addr).Msg("ops server listening")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}
