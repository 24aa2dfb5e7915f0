package prompts

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// embeds all .yaml files in the templates folder into Go program at compile time
//
//go:embed templates/*.yaml
var templateFS embed.FS

// Names of the shipped templates.
const (
	Questions = "questions"
	Summary   = "summary"
	Resume    = "resume"
	Links     = "links"
)

type promptFile struct {
	System string `yaml:"system"`
	Task   string `yaml:"task"`
	Output string `yaml:"output"`
}

type Manager struct {
	templates map[string]*template.Template
}

func NewManager() (*Manager, error) {
	m := &Manager{templates: make(map[string]*template.Template)}
	if err := m.load(); err != nil {
		return nil, fmt.Errorf("failed to load prompt templates: %w", err)
	}
	return m, nil
}

// Render executes the named template against data.
func (m *Manager) Render(name string, data any) (string, error) {
	tpl, ok := m.templates[name]
	if !ok {
		return "", fmt.Errorf("template not found: %s", name)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func (m *Manager) load() error {
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return fmt.Errorf("failed to read templates directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		data, err := templateFS.ReadFile("templates/" + entry.Name())
		if err != nil {
			return fmt.Errorf("failed to read template file %s: %w", entry.Name(), err)
		}

		var pf promptFile
		if err := yaml.Unmarshal(data, &pf); err != nil {
			return fmt.Errorf("failed to parse template file %s: %w", entry.Name(), err)
		}

		var full strings.Builder
		for _, section := range []string{pf.System, pf.Task, pf.Output} {
			if s := strings.TrimSpace(section); s != "" {
				full.WriteString(s)
				full.WriteString("\n\n")
			}
		}

		name := strings.TrimSuffix(entry.Name(), ".yaml")
		tpl, err := template.New(name).Option("missingkey=error").Parse(full.String())
		if err != nil {
			return fmt.Errorf("failed to compile template %s: %w", name, err)
		}
		m.templates[name] = tpl
	}
	return nil
}
