package model

import "time"

// ReviewSession owns one analyzed batch while the caller reviews and
// sends applications. Sessions are created by analysis, handed to the
// caller by ID, and passed explicitly into every reconcile and send
// call; no workflow state is ambient.
type ReviewSession struct {
	ID        string      `json:"id"`
	SourceTag string      `json:"source_tag"`
	CreatedAt time.Time   `json:"created_at"`
	Records   []JobRecord `json:"records"`

	// SentSnapshot is the sent set observed at the last reconcile,
	// merged with addresses this session has itself sent to since. A
	// ledger append that fails after a successful delivery keeps the
	// address here even though the ledger doesn't have it yet.
	SentSnapshot map[string]struct{} `json:"sent_snapshot"`
}

func NewReviewSession(id, sourceTag string, records []JobRecord, at time.Time) *ReviewSession {
	return &ReviewSession{
		ID:           id,
		SourceTag:    sourceTag,
		CreatedAt:    at,
		Records:      records,
		SentSnapshot: make(map[string]struct{}),
	}
}

// RecordBySeq returns the record at the given batch sequence.
func (s *ReviewSession) RecordBySeq(seq int) (JobRecord, bool) {
	for _, r := range s.Records {
		if r.BatchSeq == seq {
			return r, true
		}
	}
	return JobRecord{}, false
}

// MarkSent records locally that an address has been sent to.
func (s *ReviewSession) MarkSent(addr string) {
	if s.SentSnapshot == nil {
		s.SentSnapshot = make(map[string]struct{})
	}
	s.SentSnapshot[addr] = struct{}{}
}

// AlreadySent reports whether addr is in the local snapshot.
func (s *ReviewSession) AlreadySent(addr string) bool {
	_, ok := s.SentSnapshot[addr]
	return ok
}

// MergeSentSet folds a freshly read sent set into the snapshot.
// Addresses marked sent locally are never dropped, so a pending
// ledger repair can't reopen a recipient for a second send.
func (s *ReviewSession) MergeSentSet(set map[string]struct{}) {
	if s.SentSnapshot == nil {
		s.SentSnapshot = make(map[string]struct{}, len(set))
	}
	for addr := range set {
		s.SentSnapshot[addr] = struct{}{}
	}
}
