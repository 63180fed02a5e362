package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/VvkAlgo/RoleMatchAI/internal/domain"
	"github.com/VvkAlgo/RoleMatchAI/internal/domain/model"
)

type jobPayload struct {
	JobTitle   string `json:"job_title"`
	Company    string `json:"company"`
	ApplyEmail string `json:"apply_email"`
	JobType    string `json:"job_type"`
	Location   string `json:"location"`
	Skills     string `json:"skills"`
	Summary    string `json:"jd_summary"`
	Subject    string `json:"email_subject"`
	BodyDraft  string `json:"email_body_draft"`
}

type extractionPayload struct {
	Jobs []jobPayload `json:"jobs"`
}

// decodeRecords parses a model response into job records. Providers
// occasionally wrap the JSON in markdown fences or prose, so the
// object is cut out between the first "{" and the last "}" before
// unmarshalling. Batch sequence numbers start at 1 in response order.
func decodeRecords(raw string) ([]model.JobRecord, error) {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: response contains no JSON object", domain.ErrExtraction)
	}

	var payload extractionPayload
	if err := json.Unmarshal([]byte(text[start:end+1]), &payload); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", domain.ErrExtraction, err)
	}

	records := make([]model.JobRecord, 0, len(payload.Jobs))
	for i, j := range payload.Jobs {
		records = append(records, model.JobRecord{
			BatchSeq:     i + 1,
			Title:        strings.TrimSpace(j.JobTitle),
			Company:      strings.TrimSpace(j.Company),
			ApplyEmail:   strings.TrimSpace(j.ApplyEmail),
			JobType:      model.NormalizeJobType(j.JobType),
			Location:     strings.TrimSpace(j.Location),
			Skills:       strings.TrimSpace(j.Skills),
			Summary:      strings.TrimSpace(j.Summary),
			EmailSubject: strings.TrimSpace(j.Subject),
			EmailBody:    j.BodyDraft,
		})
	}
	return records, nil
}
