// Package templates renders outreach message suggestions.
//
// Templates are text/template strings with a single {{.Name}} field, read
// from a YAML file. A built-in set is used when no file is configured.
package templates

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultFile []byte

// fallbackName is used when the caller does not know the contact's name.
const fallbackName = "there"

type file struct {
	Templates []string `yaml:"templates"`
}

// Provider holds the current template set and swaps it atomically on reload.
type Provider struct {
	path   string
	logger *slog.Logger
	set    atomic.Pointer[[]*template.Template]
}

// New creates a Provider. An empty path, or a path that does not exist yet,
// serves the built-in templates.
func New(path string, logger *slog.Logger) (*Provider, error) {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Provider{path: path, logger: logger}

	def, err := parse(defaultFile)
	if err != nil {
		return nil, fmt.Errorf("templates: built-in set: %w", err)
	}
	p.set.Store(&def)

	if path == "" {
		return p, nil
	}
	if err := p.Reload(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Info("templates: file not found, using built-in set", slog.String("path", path))
			return p, nil
		}
		return nil, err
	}
	return p, nil
}

// Reload re-reads the template file. On error the current set is kept.
func (p *Provider) Reload() error {
	if p.path == "" {
		return nil
	}
	data, err := os.ReadFile(p.path)
	if err != nil {
		return fmt.Errorf("templates: read %s: %w", p.path, err)
	}
	set, err := parse(data)
	if err != nil {
		return fmt.Errorf("templates: parse %s: %w", p.path, err)
	}
	p.set.Store(&set)
	return nil
}

// Count returns the number of loaded templates.
func (p *Provider) Count() int {
	return len(*p.set.Load())
}

// Render fills every template with name, in file order. Templates that fail
// to execute are skipped.
func (p *Provider) Render(name string) []string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = fallbackName
	}
	set := *p.set.Load()
	out := make([]string, 0, len(set))
	for _, t := range set {
		var buf bytes.Buffer
		if err := t.Execute(&buf, struct{ Name string }{name}); err != nil {
			p.logger.Warn("templates: render failed", slog.String("template", t.Name()), slog.String("error", err.Error()))
			continue
		}
		out = append(out, buf.String())
	}
	return out
}

func parse(data []byte) ([]*template.Template, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if len(f.Templates) == 0 {
		return nil, errors.New("no templates defined")
	}
	out := make([]*template.Template, 0, len(f.Templates))
	for i, src := range f.Templates {
		t, err := template.New(fmt.Sprintf("template-%d", i)).Option("missingkey=error").Parse(src)
		if err != nil {
			return nil, fmt.Errorf("template %d: %w", i, err)
		}
		out = append(out, t)
	}
	return out, nil
}
