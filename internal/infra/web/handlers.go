package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/VvkAlgo/RoleMatchAI/internal/domain"
	"github.com/VvkAlgo/RoleMatchAI/internal/usecase"
)

// A struct to define the expected JSON request body for analyzing a batch.
type analyzeRequest struct {
	SourceTag string `json:"source_tag"`
	RawText   string `json:"raw_text"`
}

// A struct for triggering one send out of a session.
type sendRequest struct {
	BatchSeq int    `json:"batch_seq"`
	To       string `json:"to,omitempty"`
	Subject  string `json:"subject,omitempty"`
	Body     string `json:"body,omitempty"`
}

// writeError maps workflow errors onto HTTP statuses. The ledger-write
// failure after a delivered mail gets its own code and payload; a
// client must never mistake it for a failed delivery.
func writeError(w http.ResponseWriter, err error) {
	var lw *domain.LedgerWriteError
	w.Header().Set("Content-Type", "application/json")

	switch {
	case errors.As(err, &lw):
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{
			"error":     "ledger_write_after_send",
			"recipient": lw.Recipient,
			"subject":   lw.Subject,
			"detail":    lw.Error(),
		})
	case errors.Is(err, domain.ErrDuplicateSend):
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": "duplicate_send", "detail": err.Error()})
	case errors.Is(err, domain.ErrMailer):
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{"error": "mailer_failed", "detail": err.Error()})
	case errors.Is(err, domain.ErrExtraction):
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{"error": "extraction_failed", "detail": err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized", "detail": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "not_found", "detail": err.Error()})
	case errors.Is(err, domain.ErrInvalidArgument):
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid_argument", "detail": err.Error()})
	default:
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "internal", "detail": err.Error()})
	}
}

// Handler for analyzing a raw batch into a review session.
func analyzeHandler(analysisUC usecase.AnalysisUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req analyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		session, err := analysisUC.Analyze(ctx, req.SourceTag, req.RawText)
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(session)
	}
}

func sessionGetHandler(analysisUC usecase.AnalysisUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		session, err := analysisUC.Session(ctx, chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(session)
	}
}

func sessionDiscardHandler(analysisUC usecase.AnalysisUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := analysisUC.Discard(ctx, chi.URLParam(r, "id")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// eligibleHandler reconciles a session against the ledger and returns
// the records still worth sending, in extraction order.
func eligibleHandler(analysisUC usecase.AnalysisUseCase, reconcileUC usecase.ReconcileUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		session, err := analysisUC.Session(ctx, chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}

		eligible, err := reconcileUC.Eligible(ctx, session)
		if err != nil {
			writeError(w, err)
			return
		}

		response := struct {
			SessionID string      `json:"session_id"`
			Eligible  interface{} `json:"eligible"`
			Total     int         `json:"total"`
		}{
			SessionID: session.ID,
			Eligible:  eligible,
			Total:     len(eligible),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(response)
	}
}

func sendHandler(analysisUC usecase.AnalysisUseCase, outreachUC usecase.OutreachUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req sendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		session, err := analysisUC.Session(ctx, chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}

		entry, err := outreachUC.Send(ctx, session, usecase.SendRequest{
			BatchSeq: req.BatchSeq,
			To:       req.To,
			Subject:  req.Subject,
			Body:     req.Body,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(entry)
	}
}

func ledgerListHandler(ledgerUC usecase.LedgerUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		entries, err := ledgerUC.Entries(ctx)
		if err != nil {
			writeError(w, err)
			return
		}

		response := struct {
			Data  interface{} `json:"data"`
			Total int         `json:"total"`
		}{
			Data:  entries,
			Total: len(entries),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(response)
	}
}

func spoolListHandler(ingestUC usecase.IngestUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tags, err := ingestUC.Batches(ctx)
		if err != nil {
			writeError(w, err)
			return
		}

		response := struct {
			Tags []string `json:"tags"`
		}{Tags: tags}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(response)
	}
}

func spoolGetHandler(ingestUC usecase.IngestUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		batch, err := ingestUC.Batch(ctx, chi.URLParam(r, "tag"))
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(batch)
	}
}

func spoolRemoveHandler(ingestUC usecase.IngestUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := ingestUC.Remove(ctx, chi.URLParam(r, "tag")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// spoolAnalyzeHandler runs extraction on a spooled batch and removes it
// from the spool once the session exists. A failed analysis keeps the
// batch spooled for another attempt.
func spoolAnalyzeHandler(ingestUC usecase.IngestUseCase, analysisUC usecase.AnalysisUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tag := chi.URLParam(r, "tag")

		batch, err := ingestUC.Batch(ctx, tag)
		if err != nil {
			writeError(w, err)
			return
		}

		session, err := analysisUC.Analyze(ctx, batch.Tag, batch.Text)
		if err != nil {
			writeError(w, err)
			return
		}

		if err := ingestUC.Remove(ctx, tag); err != nil {
			// The session exists either way; a stale spool entry is
			// only noise.
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(session)
	}
}

func inboxPollHandler(ingestUC usecase.IngestUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		stored, err := ingestUC.PollOnce(ctx)
		if err != nil {
			writeError(w, err)
			return
		}

		response := struct {
			Stored int `json:"stored"`
		}{Stored: stored}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(response)
	}
}
