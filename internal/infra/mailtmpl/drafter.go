package mailtmpl

import (
	"strings"

	"github.com/VvkAlgo/RoleMatchAI/internal/domain/model"
)

// Drafter renders fallback subject and body text for a record whose
// extractor draft came back empty. The candidate identity is fixed at
// construction; the record supplies the role.
type Drafter struct {
	r     *Renderer
	name  string
	title string
	email string
	pitch string
}

func NewDrafter(r *Renderer, name, title, email, pitch string) *Drafter {
	return &Drafter{r: r, name: name, title: title, email: email, pitch: pitch}
}

func (d *Drafter) Subject(rec model.JobRecord) string {
	role := strings.TrimSpace(rec.Title)
	if role == "" {
		role = d.r.T("fallback_role")
	}
	return d.r.T("subject", role, d.name)
}

func (d *Drafter) Body(rec model.JobRecord) string {
	return d.r.T("body", d.pitch, d.name, d.title, d.email)
}
