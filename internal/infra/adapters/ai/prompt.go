package ai

import (
	"fmt"
	"strings"
)

// Profile describes the applicant on whose behalf the extractor drafts
// application emails. Pitch is one short paragraph of experience and
// certifications that the drafts lightly adapt per job.
type Profile struct {
	Name  string
	Title string
	Email string
	Pitch string
}

// BuildExtractionPrompt assembles the instruction block sent ahead of
// every raw batch. The caller appends the batch text directly after
// the returned string. country limits which postings survive
// extraction; empty means India.
func BuildExtractionPrompt(p Profile, country string) string {
	if strings.TrimSpace(country) == "" {
		country = "India"
	}

	var b strings.Builder
	b.WriteString("You are a highly skilled AI assistant specialized in analyzing job postings and drafting professional job application emails.\n\n")
	b.WriteString("Your input text may contain multiple, unstructured job postings scraped from LinkedIn or other sources.\n\n")
	b.WriteString("Your tasks:\n\n")
	b.WriteString("1. Identify ALL distinct job postings in the input text.\n")
	b.WriteString("2. FILTER OUT any job that:\n")
	b.WriteString("   - Does NOT provide a valid apply email\n")
	fmt.Fprintf(&b, "   - Is located OUTSIDE %s\n", country)
	b.WriteString("3. For each remaining job:\n")
	b.WriteString("   - Extract ONLY factual information explicitly present in the text\n")
	b.WriteString("   - Generate a professional, polite, concise email draft based on the template below\n")
	b.WriteString("   - Ensure emails are human-like, coherent, and well-formatted\n\n")
	b.WriteString("Strict JSON output schema:\n\n")
	b.WriteString(`{
  "jobs": [
    {
      "job_title": string,
      "company": string,
      "apply_email": string,
      "job_type": "Internship" | "Full-time" | "Contract" | "Part-time" | "Unknown",
      "location": string,
      "skills": string or null,
      "jd_summary": string,
      "email_subject": string,
      "email_body_draft": string
    }
  ]
}`)
	b.WriteString("\n\n")
	b.WriteString("jd_summary: 1-2 sentences summarizing role, tech stack, and expectations.\n")
	b.WriteString("email_subject: clear and professional, e.g., \"Application for <Job Title> role\".\n")
	b.WriteString("email_body_draft: polished email, max 2 short paragraphs + closing.\n\n")
	b.WriteString("Rules for `email_body_draft`:\n")
	b.WriteString("- Base template to adapt:\n\n")
	fmt.Fprintf(&b, "\"Dear Sir/Mam,\n\n%s\nPlease find my resume attached.\n\nBest regards,\n%s\n%s\n%s\"\n\n", strings.TrimSpace(p.Pitch), p.Name, p.Title, p.Email)
	b.WriteString("- Preserve tone and structure\n")
	b.WriteString("- Lightly customize for each job using job title, skills, and JD summary\n")
	b.WriteString("- Keep paragraphs short and readable\n")
	b.WriteString("- Do NOT exaggerate, invent skills, or fabricate experience\n")
	b.WriteString("- Ensure proper grammar and professional formatting\n\n")
	b.WriteString("Additional instructions:\n")
	b.WriteString("- Output JSON ONLY\n")
	b.WriteString("- Do NOT include explanations, comments, or non-job content\n")
	b.WriteString("- Ensure all extracted jobs are unique\n")
	b.WriteString("- Validate that `apply_email` looks legitimate (contains \"@\" and domain)\n")
	fmt.Fprintf(&b, "- Include only jobs in %s\n\n", country)
	b.WriteString("TEXT TO ANALYZE:\n")
	return b.String()
}
