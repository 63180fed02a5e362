package mailtmpl

import (
	"embed"
	"fmt"
	"io/fs"
	"path"

	"gopkg.in/yaml.v3"
)

//go:embed templates
var TemplatesFS embed.FS

// Renderer resolves named %s-style formats loaded from a yaml template
// file. An unknown key renders as the key itself so a missing template
// shows up in the output instead of producing an empty mail.
type Renderer struct {
	formats map[string]string
}

func NewRenderer(fsys fs.FS, name string) (*Renderer, error) {
	filePath := path.Join("templates", fmt.Sprintf("%s.yaml", name))
	data, err := fs.ReadFile(fsys, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read template file %s: %w", filePath, err)
	}
	return newRendererFromBytes(data)
}

func newRendererFromBytes(data []byte) (*Renderer, error) {
	var formats map[string]string
	if err := yaml.Unmarshal(data, &formats); err != nil {
		return nil, fmt.Errorf("failed to parse template file: %w", err)
	}
	return &Renderer{formats: formats}, nil
}

func (r *Renderer) T(key string, args ...interface{}) string {
	format, ok := r.formats[key]
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(format, args...)
	}
	return format
}
