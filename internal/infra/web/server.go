package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/VvkAlgo/RoleMatchAI/internal/infra/redis"
	"github.com/VvkAlgo/RoleMatchAI/internal/usecase"
)

// Server is the operator-facing HTTP API: analyze a batch, review the
// eligible records, trigger sends, inspect the ledger and the spool.
type Server struct {
	analysisUC  usecase.AnalysisUseCase
	reconcileUC usecase.ReconcileUseCase
	outreachUC  usecase.OutreachUseCase
	ledgerUC    usecase.LedgerUseCase
	ingestUC    usecase.IngestUseCase

	auth         *AuthManager
	operatorPass string
	limiter      *redis.RateLimiter
	rateLimit    int
	rateWindow   time.Duration

	log    *zerolog.Logger
	server *http.Server
}

func NewServer(
	analysisUC usecase.AnalysisUseCase,
	reconcileUC usecase.ReconcileUseCase,
	outreachUC usecase.OutreachUseCase,
	ledgerUC usecase.LedgerUseCase,
	ingestUC usecase.IngestUseCase,
	auth *AuthManager,
	operatorPass string,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		analysisUC:   analysisUC,
		reconcileUC:  reconcileUC,
		outreachUC:   outreachUC,
		ledgerUC:     ledgerUC,
		ingestUC:     ingestUC,
		auth:         auth,
		operatorPass: operatorPass,
		log:          logger,
	}
}

// WithRateLimiter enables per-client fixed-window limiting on the API.
func (s *Server) WithRateLimiter(limiter *redis.RateLimiter, limit int, window time.Duration) *Server {
	s.limiter = limiter
	s.rateLimit = limit
	s.rateWindow = window
	return s
}

// Router assembles the chi mux with the middleware stack applied.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(TraceID(s.log), RequestLog(s.log), Recover(s.log), Timeout(60*time.Second))
	if s.limiter != nil {
		r.Use(RateLimit(s.limiter, s.rateLimit, s.rateWindow, s.log))
	}

	r.Route("/api/v1", func(api chi.Router) {
		api.Post("/auth/login", s.handleLogin)
		api.Post("/auth/logout", s.handleLogout)

		api.Group(func(priv chi.Router) {
			priv.Use(s.requireAuth)

			priv.Post("/sessions", analyzeHandler(s.analysisUC))
			priv.Get("/sessions/{id}", sessionGetHandler(s.analysisUC))
			priv.Delete("/sessions/{id}", sessionDiscardHandler(s.analysisUC))
			priv.Get("/sessions/{id}/eligible", eligibleHandler(s.analysisUC, s.reconcileUC))
			priv.Post("/sessions/{id}/send", sendHandler(s.analysisUC, s.outreachUC))

			priv.Get("/ledger", ledgerListHandler(s.ledgerUC))

			priv.Get("/spool", spoolListHandler(s.ingestUC))
			priv.Get("/spool/{tag}", spoolGetHandler(s.ingestUC))
			priv.Delete("/spool/{tag}", spoolRemoveHandler(s.ingestUC))
			priv.Post("/spool/{tag}/analyze", spoolAnalyzeHandler(s.ingestUC, s.analysisUC))

			priv.Post("/inbox/poll", inboxPollHandler(s.ingestUC))
		})
	})
	return r
}

func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info().Str("addr", addr).Msg("api server listening")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// requireAuth admits requests carrying a valid operator token.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.auth == nil {
			s.log.Error().Msg("operator auth is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		if _, err := s.auth.ParseFromRequest(r); err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.auth == nil || s.operatorPass == "" {
		s.log.Error().Msg("operator auth is not configured")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(s.operatorPass)) != 1 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	token, err := s.auth.Mint(w)
	if err != nil {
		http.Error(w, "Failed to mint session", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"token":%q}`, token)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if s.auth != nil {
		s.auth.Clear(w)
	}
	w.WriteHeader(http.StatusNoContent)
}
