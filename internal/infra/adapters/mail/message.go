package mail

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/VvkAlgo/RoleMatchAI/internal/domain/ports/adapter"
)

// BuildRawMessage renders an outbound mail as an RFC 822 message and
// returns it base64url encoded, the form the Gmail send API expects in
// its raw field. The resume rides as a single attachment part.
func BuildRawMessage(from string, m adapter.OutboundMail) (string, error) {
	if strings.TrimSpace(m.To) == "" {
		return "", fmt.Errorf("outbound mail has no recipient")
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", m.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", m.Subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n", mw.Boundary())
	buf.WriteString("\r\n")

	body, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {`text/plain; charset="UTF-8"`},
	})
	if err != nil {
		return "", fmt.Errorf("create body part: %w", err)
	}
	if _, err := body.Write([]byte(m.Body)); err != nil {
		return "", fmt.Errorf("write body part: %w", err)
	}

	if len(m.Resume.Content) > 0 {
		mimeType := m.Resume.MIMEType
		if mimeType == "" {
			mimeType = "application/pdf"
		}
		att, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {fmt.Sprintf("%s; name=%q", mimeType, m.Resume.Filename)},
			"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", m.Resume.Filename)},
			"Content-Transfer-Encoding": {"base64"},
		})
		if err != nil {
			return "", fmt.Errorf("create attachment part: %w", err)
		}
		if err := writeBase64Wrapped(att, m.Resume.Content); err != nil {
			return "", fmt.Errorf("write attachment part: %w", err)
		}
	}

	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}
	return base64.URLEncoding.EncodeToString(buf.Bytes()), nil
}

// writeBase64Wrapped emits base64 in 76 column lines per RFC 2045.
func writeBase64Wrapped(w io.Writer, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	const lineLen = 76
	for len(encoded) > 0 {
		n := lineLen
		if n > len(encoded) {
			n = len(encoded)
		}
		if _, err := w.Write([]byte(encoded[:n])); err != nil {
			return err
		}
		if _, err := w.Write([]byte("\r\n")); err != nil {
			return err
		}
		encoded = encoded[n:]
	}
	return nil
}
