package model

import "time"

// RawBatch is one blob of unstructured posting text waiting for
// analysis. Batches come from caller uploads, spool files, or the
// inbox poller; Tag is the upload filename minus its extension, or the
// mailbox message id.
type RawBatch struct {
	Tag       string    `json:"tag"`
	Text      string    `json:"text"`
	FetchedAt time.Time `json:"fetched_at"`
}
