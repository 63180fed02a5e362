package model

import "strings"

// JobType classifies a posting's engagement model. Values mirror what
// the extractor is instructed to emit; anything else is normalized to
// JobTypeUnknown.
type JobType string

const (
	JobTypeInternship JobType = "Internship"
	JobTypeFullTime   JobType = "Full-time"
	JobTypeContract   JobType = "Contract"
	JobTypePartTime   JobType = "Part-time"
	JobTypeUnknown    JobType = "Unknown"
)

// NormalizeJobType maps free-form extractor output onto the known set.
func NormalizeJobType(s string) JobType {
	switch JobType(strings.TrimSpace(s)) {
	case JobTypeInternship, JobTypeFullTime, JobTypeContract, JobTypePartTime:
		return JobType(strings.TrimSpace(s))
	default:
		return JobTypeUnknown
	}
}

// JobRecord is one structured posting produced by the extractor,
// together with the drafted application email. BatchSeq is the 1-based
// position within the extraction batch and doubles as the ledger's
// Post ID for the row written after a send.
type JobRecord struct {
	BatchSeq     int     `json:"batch_seq"`
	Title        string  `json:"job_title"`
	Company      string  `json:"company"`
	ApplyEmail   string  `json:"apply_email"`
	JobType      JobType `json:"job_type"`
	Location     string  `json:"location"`
	Skills       string  `json:"skills,omitempty"`
	Summary      string  `json:"jd_summary"`
	EmailSubject string  `json:"email_subject"`
	EmailBody    string  `json:"email_body_draft"`
}

// HasMailableAddress reports whether the record carries an address the
// reconciler considers sendable: non-empty and containing "@". No
// deeper validation happens anywhere in the workflow.
func (r JobRecord) HasMailableAddress() bool {
	return r.ApplyEmail != "" && strings.Contains(r.ApplyEmail, "@")
}
