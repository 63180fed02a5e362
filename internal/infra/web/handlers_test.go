//go:build !integration

package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/VvkAlgo/RoleMatchAI/internal/domain"
	"github.com/VvkAlgo/RoleMatchAI/internal/domain/model"
	"github.com/VvkAlgo/RoleMatchAI/internal/usecase"
)

// handlersEnv wires real use cases over mocked ports onto a bare
// router, bypassing auth so each handler can be exercised directly.
type handlersEnv struct {
	router    *chi.Mux
	extractor *mockExtractor
	store     *mockSessionStore
	ledger    *mockLedger
	mailer    *mockMailer
	spool     *mockSpool
	inbox     *mockInbox
}

func newHandlersEnv() *handlersEnv {
	env := &handlersEnv{
		extractor: &mockExtractor{},
		store:     newMockSessionStore(),
		ledger:    newMockLedger(),
		mailer:    &mockMailer{},
		spool:     newMockSpool(),
		inbox:     &mockInbox{},
	}

	analysisUC := usecase.NewAnalysisUseCase(env.extractor, env.store, newTestLogger())
	reconcileUC := usecase.NewReconcileUseCase(env.ledger, newTestLogger())
	outreachUC := usecase.NewOutreachUseCase(env.ledger, env.store, env.mailer, mockResume{}, nil, nil, newTestLogger())
	ledgerUC := usecase.NewLedgerUseCase(env.ledger, newTestLogger())
	ingestUC := usecase.NewIngestUseCase(env.inbox, env.spool, newTestLogger())

	r := chi.NewRouter()
	r.Post("/api/v1/sessions", analyzeHandler(analysisUC))
	r.Get("/api/v1/sessions/{id}", sessionGetHandler(analysisUC))
	r.Delete("/api/v1/sessions/{id}", sessionDiscardHandler(analysisUC))
	r.Get("/api/v1/sessions/{id}/eligible", eligibleHandler(analysisUC, reconcileUC))
	r.Post("/api/v1/sessions/{id}/send", sendHandler(analysisUC, outreachUC))
	r.Get("/api/v1/ledger", ledgerListHandler(ledgerUC))
	r.Get("/api/v1/spool", spoolListHandler(ingestUC))
	r.Get("/api/v1/spool/{tag}", spoolGetHandler(ingestUC))
	r.Delete("/api/v1/spool/{tag}", spoolRemoveHandler(ingestUC))
	r.Post("/api/v1/spool/{tag}/analyze", spoolAnalyzeHandler(ingestUC, analysisUC))
	r.Post("/api/v1/inbox/poll", inboxPollHandler(ingestUC))
	env.router = r
	return env
}

func (env *handlersEnv) seedSession(id string, records ...model.JobRecord) {
	s := model.NewReviewSession(id, "manual", records, time.Now())
	_ = env.store.Save(context.Background(), s)
}

func sampleRecord(seq int, email string) model.JobRecord {
	return model.JobRecord{
		BatchSeq:     seq,
		Title:        "Backend Engineer",
		Company:      "Acme Corp",
		ApplyEmail:   email,
		JobType:      model.JobTypeFullTime,
		Location:     "Bengaluru",
		Summary:      "Go services",
		EmailSubject: "Application for Backend Engineer - Test",
		EmailBody:    "Dear Sir/Mam,\n\nPlease find my resume attached.\n",
	}
}

func TestAnalyzeHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		env := newHandlersEnv()
		env.extractor.records = []model.JobRecord{
			sampleRecord(0, "careers@acme.example"),
			sampleRecord(0, ""),
		}

		body := bytes.NewBufferString(`{"source_tag":"imap-1","raw_text":"Hiring Backend Engineer at Acme"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", body)
		rr := httptest.NewRecorder()
		env.router.ServeHTTP(rr, req)

		if rr.Code != http.StatusCreated {
			t.Fatalf("want 201, got %d, body=%s", rr.Code, rr.Body.String())
		}
		var session model.ReviewSession
		if err := json.NewDecoder(rr.Body).Decode(&session); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if session.ID == "" || session.SourceTag != "imap-1" {
			t.Fatalf("session metadata wrong: %+v", session)
		}
		if len(session.Records) != 2 || session.Records[0].BatchSeq != 1 || session.Records[1].BatchSeq != 2 {
			t.Fatalf("batch numbering wrong: %+v", session.Records)
		}
	})

	t.Run("invalid body -> 400", func(t *testing.T) {
		env := newHandlersEnv()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", bytes.NewBufferString("{not json"))
		rr := httptest.NewRecorder()
		env.router.ServeHTTP(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("want 400, got %d", rr.Code)
		}
	})

	t.Run("blank text -> 400", func(t *testing.T) {
		env := newHandlersEnv()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", bytes.NewBufferString(`{"raw_text":"  "}`))
		rr := httptest.NewRecorder()
		env.router.ServeHTTP(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("want 400, got %d", rr.Code)
		}
	})

	t.Run("extraction failure -> 502", func(t *testing.T) {
		env := newHandlersEnv()
		env.extractor.ExtractError = fmt.Errorf("%w: provider down", domain.ErrExtraction)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", bytes.NewBufferString(`{"raw_text":"anything"}`))
		rr := httptest.NewRecorder()
		env.router.ServeHTTP(rr, req)

		if rr.Code != http.StatusBadGateway {
			t.Fatalf("want 502, got %d, body=%s", rr.Code, rr.Body.String())
		}
		var resp map[string]string
		json.Unmarshal(rr.Body.Bytes(), &resp)
		if resp["error"] != "extraction_failed" {
			t.Fatalf("error code = %q", resp["error"])
		}
	})
}

func TestSessionHandlers(t *testing.T) {
	env := newHandlersEnv()
	env.seedSession("sess-1", sampleRecord(1, "careers@acme.example"))

	t.Run("get existing -> 200", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/sess-1", nil)
		rr := httptest.NewRecorder()
		env.router.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("want 200, got %d", rr.Code)
		}
		var session model.ReviewSession
		json.Unmarshal(rr.Body.Bytes(), &session)
		if session.ID != "sess-1" {
			t.Fatalf("session id = %q", session.ID)
		}
	})

	t.Run("get missing -> 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/nope", nil)
		rr := httptest.NewRecorder()
		env.router.ServeHTTP(rr, req)
		if rr.Code != http.StatusNotFound {
			t.Fatalf("want 404, got %d", rr.Code)
		}
	})

	t.Run("discard -> 204 then 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/sessions/sess-1", nil)
		rr := httptest.NewRecorder()
		env.router.ServeHTTP(rr, req)
		if rr.Code != http.StatusNoContent {
			t.Fatalf("want 204, got %d", rr.Code)
		}

		req = httptest.NewRequest(http.MethodGet, "/api/v1/sessions/sess-1", nil)
		rr = httptest.NewRecorder()
		env.router.ServeHTTP(rr, req)
		if rr.Code != http.StatusNotFound {
			t.Fatalf("want 404 after discard, got %d", rr.Code)
		}
	})
}

func TestEligibleHandler(t *testing.T) {
	env := newHandlersEnv()

	// Record 3's address already has a SENT row; record 2 has no usable
	// address; records 1 and 4 share an address and must both survive.
	env.seedSession("sess-1",
		sampleRecord(1, "a@acme.example"),
		sampleRecord(2, ""),
		sampleRecord(3, "sent@acme.example"),
		sampleRecord(4, "a@acme.example"),
	)
	env.ledger.sent["sent@acme.example"] = struct{}{}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/sess-1/eligible", nil)
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("want 200, got %d, body=%s", rr.Code, rr.Body.String())
	}
	var resp struct {
		SessionID string            `json:"session_id"`
		Eligible  []model.JobRecord `json:"eligible"`
		Total     int               `json:"total"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 2 || len(resp.Eligible) != 2 {
		t.Fatalf("want 2 eligible, got %+v", resp)
	}
	if resp.Eligible[0].BatchSeq != 1 || resp.Eligible[1].BatchSeq != 4 {
		t.Fatalf("order not preserved: %+v", resp.Eligible)
	}
}

func TestSendHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		env := newHandlersEnv()
		env.seedSession("sess-1", sampleRecord(1, "careers@acme.example"))

		body := bytes.NewBufferString(`{"batch_seq":1}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/sess-1/send", body)
		rr := httptest.NewRecorder()
		env.router.ServeHTTP(rr, req)

		if rr.Code != http.StatusCreated {
			t.Fatalf("want 201, got %d, body=%s", rr.Code, rr.Body.String())
		}
		var entry model.LedgerEntry
		json.Unmarshal(rr.Body.Bytes(), &entry)
		if entry.ContactEmail != "careers@acme.example" || entry.Status != model.StatusSent || entry.Relevance != model.RelevanceYes {
			t.Fatalf("entry = %+v", entry)
		}
		if !strings.HasPrefix(entry.Notes, "Mail sent | Subject: ") {
			t.Fatalf("notes = %q", entry.Notes)
		}

		sent := env.mailer.Sent()
		if len(sent) != 1 || sent[0].Resume.Filename != "resume.pdf" {
			t.Fatalf("mailer saw %+v", sent)
		}
		if len(env.ledger.Rows()) != 1 {
			t.Fatalf("ledger rows = %d", len(env.ledger.Rows()))
		}
	})

	t.Run("duplicate blocked -> 409, nothing sent", func(t *testing.T) {
		env := newHandlersEnv()
		env.seedSession("sess-1", sampleRecord(1, "careers@acme.example"))
		env.ledger.sent["careers@acme.example"] = struct{}{}

		body := bytes.NewBufferString(`{"batch_seq":1}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/sess-1/send", body)
		rr := httptest.NewRecorder()
		env.router.ServeHTTP(rr, req)

		if rr.Code != http.StatusConflict {
			t.Fatalf("want 409, got %d, body=%s", rr.Code, rr.Body.String())
		}
		var resp map[string]string
		json.Unmarshal(rr.Body.Bytes(), &resp)
		if resp["error"] != "duplicate_send" {
			t.Fatalf("error code = %q", resp["error"])
		}
		if len(env.mailer.Sent()) != 0 {
			t.Fatal("mailer must not be called for a duplicate")
		}
	})

	t.Run("mailer failure -> 502, ledger untouched", func(t *testing.T) {
		env := newHandlersEnv()
		env.seedSession("sess-1", sampleRecord(1, "careers@acme.example"))
		env.mailer.SendError = errors.New("smtp down")

		body := bytes.NewBufferString(`{"batch_seq":1}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/sess-1/send", body)
		rr := httptest.NewRecorder()
		env.router.ServeHTTP(rr, req)

		if rr.Code != http.StatusBadGateway {
			t.Fatalf("want 502, got %d, body=%s", rr.Code, rr.Body.String())
		}
		var resp map[string]string
		json.Unmarshal(rr.Body.Bytes(), &resp)
		if resp["error"] != "mailer_failed" {
			t.Fatalf("error code = %q", resp["error"])
		}
		if len(env.ledger.Rows()) != 0 {
			t.Fatal("ledger must stay unchanged when delivery fails")
		}
	})

	t.Run("ledger write failure after send -> 500 distinct code", func(t *testing.T) {
		env := newHandlersEnv()
		env.seedSession("sess-1", sampleRecord(1, "careers@acme.example"))
		env.ledger.AppendError = errors.New("sheet down")

		body := bytes.NewBufferString(`{"batch_seq":1}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/sess-1/send", body)
		rr := httptest.NewRecorder()
		env.router.ServeHTTP(rr, req)

		if rr.Code != http.StatusInternalServerError {
			t.Fatalf("want 500, got %d, body=%s", rr.Code, rr.Body.String())
		}
		var resp map[string]string
		json.Unmarshal(rr.Body.Bytes(), &resp)
		if resp["error"] != "ledger_write_after_send" {
			t.Fatalf("error code = %q", resp["error"])
		}
		if resp["recipient"] != "careers@acme.example" {
			t.Fatalf("recipient = %q", resp["recipient"])
		}
		if len(env.mailer.Sent()) != 1 {
			t.Fatal("the mail did go out and must be reported as such")
		}

		// The session remembers the delivery, so a retry is refused even
		// though the ledger never got the row.
		rr = httptest.NewRecorder()
		req = httptest.NewRequest(http.MethodPost, "/api/v1/sessions/sess-1/send", bytes.NewBufferString(`{"batch_seq":1}`))
		env.router.ServeHTTP(rr, req)
		if rr.Code != http.StatusConflict {
			t.Fatalf("want 409 on retry, got %d, body=%s", rr.Code, rr.Body.String())
		}
	})

	t.Run("unknown batch seq -> 404", func(t *testing.T) {
		env := newHandlersEnv()
		env.seedSession("sess-1", sampleRecord(1, "careers@acme.example"))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/sess-1/send", bytes.NewBufferString(`{"batch_seq":9}`))
		rr := httptest.NewRecorder()
		env.router.ServeHTTP(rr, req)
		if rr.Code != http.StatusNotFound {
			t.Fatalf("want 404, got %d", rr.Code)
		}
	})

	t.Run("unknown session -> 404", func(t *testing.T) {
		env := newHandlersEnv()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/nope/send", bytes.NewBufferString(`{"batch_seq":1}`))
		rr := httptest.NewRecorder()
		env.router.ServeHTTP(rr, req)
		if rr.Code != http.StatusNotFound {
			t.Fatalf("want 404, got %d", rr.Code)
		}
	})
}

func TestLedgerListHandler(t *testing.T) {
	env := newHandlersEnv()
	_ = env.ledger.Append(context.Background(), model.NewSentEntry(sampleRecord(1, "a@x.example"), "a@x.example", "s1", time.Now()))
	_ = env.ledger.Append(context.Background(), model.NewSentEntry(sampleRecord(2, "b@y.example"), "b@y.example", "s2", time.Now()))

	t.Run("Success", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/ledger", nil)
		rr := httptest.NewRecorder()
		env.router.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("want 200, got %d", rr.Code)
		}
		var resp struct {
			Data  []model.LedgerEntry `json:"data"`
			Total int                 `json:"total"`
		}
		json.Unmarshal(rr.Body.Bytes(), &resp)
		if resp.Total != 2 || len(resp.Data) != 2 {
			t.Fatalf("resp = %+v", resp)
		}
	})

	t.Run("Failure", func(t *testing.T) {
		env.ledger.ReadError = errors.New("backend down")
		req := httptest.NewRequest(http.MethodGet, "/api/v1/ledger", nil)
		rr := httptest.NewRecorder()
		env.router.ServeHTTP(rr, req)
		if rr.Code != http.StatusInternalServerError {
			t.Fatalf("want 500, got %d", rr.Code)
		}
		env.ledger.ReadError = nil // Reset
	})
}

func TestSpoolHandlers(t *testing.T) {
	env := newHandlersEnv()
	_ = env.spool.Put(context.Background(), model.RawBatch{Tag: "imap-1", Text: "Hiring SDE at Acme"})

	t.Run("list", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/spool", nil)
		rr := httptest.NewRecorder()
		env.router.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("want 200, got %d", rr.Code)
		}
		var resp struct {
			Tags []string `json:"tags"`
		}
		json.Unmarshal(rr.Body.Bytes(), &resp)
		if len(resp.Tags) != 1 || resp.Tags[0] != "imap-1" {
			t.Fatalf("tags = %v", resp.Tags)
		}
	})

	t.Run("get", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/spool/imap-1", nil)
		rr := httptest.NewRecorder()
		env.router.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("want 200, got %d", rr.Code)
		}
		var batch model.RawBatch
		json.Unmarshal(rr.Body.Bytes(), &batch)
		if batch.Text != "Hiring SDE at Acme" {
			t.Fatalf("batch = %+v", batch)
		}
	})

	t.Run("analyze consumes the batch", func(t *testing.T) {
		env.extractor.records = []model.JobRecord{sampleRecord(0, "jobs@acme.example")}

		req := httptest.NewRequest(http.MethodPost, "/api/v1/spool/imap-1/analyze", nil)
		rr := httptest.NewRecorder()
		env.router.ServeHTTP(rr, req)

		if rr.Code != http.StatusCreated {
			t.Fatalf("want 201, got %d, body=%s", rr.Code, rr.Body.String())
		}
		var session model.ReviewSession
		json.Unmarshal(rr.Body.Bytes(), &session)
		if session.SourceTag != "imap-1" || len(session.Records) != 1 {
			t.Fatalf("session = %+v", session)
		}
		if _, err := env.spool.Get(context.Background(), "imap-1"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatal("batch must leave the spool after analysis")
		}
	})

	t.Run("remove missing -> 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/spool/imap-1", nil)
		rr := httptest.NewRecorder()
		env.router.ServeHTTP(rr, req)
		if rr.Code != http.StatusNotFound {
			t.Fatalf("want 404, got %d", rr.Code)
		}
	})
}

func TestInboxPollHandler(t *testing.T) {
	env := newHandlersEnv()
	env.inbox.batches = []model.RawBatch{
		{Tag: "imap-10", Text: "alert one"},
		{Tag: "imap-11", Text: "alert two"},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/inbox/poll", nil)
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("want 200, got %d, body=%s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Stored int `json:"stored"`
	}
	json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp.Stored != 2 {
		t.Fatalf("stored = %d", resp.Stored)
	}

	tags, _ := env.spool.Tags(context.Background())
	if len(tags) != 2 {
		t.Fatalf("spool tags = %v", tags)
	}
}
