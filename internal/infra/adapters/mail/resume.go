package mail

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/VvkAlgo/RoleMatchAI/internal/domain/ports/adapter"
)

// fileResumeProvider reads the resume from disk on every send so a
// replaced file takes effect without a restart.
type fileResumeProvider struct {
	path string
}

var _ adapter.ResumeProvider = (*fileResumeProvider)(nil)

func NewFileResumeProvider(path string) (adapter.ResumeProvider, error) {
	if path == "" {
		return nil, fmt.Errorf("resume path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("resume not readable: %w", err)
	}
	return &fileResumeProvider{path: path}, nil
}

func (p *fileResumeProvider) Resume(_ context.Context) (adapter.Attachment, error) {
	content, err := os.ReadFile(p.path)
	if err != nil {
		return adapter.Attachment{}, fmt.Errorf("read resume: %w", err)
	}
	mimeType := mime.TypeByExtension(filepath.Ext(p.path))
	if mimeType == "" {
		mimeType = "application/pdf"
	}
	return adapter.Attachment{
		Filename: filepath.Base(p.path),
		MIMEType: mimeType,
		Content:  content,
	}, nil
}
