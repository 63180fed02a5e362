package ingest

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLToText flattens an HTML email body into the plain text the
// extractor analyzes. Script, style and head content is dropped;
// lines are normalized and consecutive repeats collapsed, since alert
// markup tends to repeat each posting in nested containers.
func HTMLToText(htmlBody string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style, head").Remove()

	// Breaks and paragraph ends become newlines before text
	// extraction so postings stay visually separated.
	doc.Find("br").ReplaceWithHtml("\n")
	sel := doc.Find("body")
	if sel.Length() == 0 {
		sel = doc.Selection
	}

	lines := strings.Split(sel.Text(), "\n")
	out := make([]string, 0, len(lines))
	var prev string
	for _, line := range lines {
		line = cleanLine(line)
		if line == "" || line == prev {
			continue
		}
		out = append(out, line)
		prev = line
	}
	return strings.Join(out, "\n"), nil
}

// BatchText renders one email as an analyzable batch. Subject and
// sender go first, they often carry the only mention of the company.
func BatchText(subject, from, plain, htmlBody string) string {
	var b strings.Builder
	if subject != "" {
		fmt.Fprintf(&b, "Subject: %s\n", subject)
	}
	if from != "" {
		fmt.Fprintf(&b, "From: %s\n", from)
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}

	body := strings.TrimSpace(plain)
	if body == "" && htmlBody != "" {
		if text, err := HTMLToText(htmlBody); err == nil {
			body = strings.TrimSpace(text)
		}
	}
	b.WriteString(body)
	return b.String()
}

func cleanLine(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	return strings.Join(strings.Fields(s), " ")
}
