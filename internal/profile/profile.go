package profile

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Profile is the deployment-specific part of an analysis: the instruction
// the model receives, the labels the renderer prints and the page theme.
type Profile struct {
	Name              string `yaml:"name"`
	Language          string `yaml:"language"`
	SystemInstruction string `yaml:"system_instruction"`
	UserTemplate      string `yaml:"user_template"`
	Labels            Labels `yaml:"labels"`
	Theme             Theme  `yaml:"theme"`

	userTmpl *template.Template
}

// Labels are the literal markers used by the rendered layout.
type Labels struct {
	Sequence      string `yaml:"sequence"`
	Core          string `yaml:"core"`
	Before        string `yaml:"before"`
	After         string `yaml:"after"`
	FallbackTitle string `yaml:"fallback_title"`
}

// Theme holds presentation settings for the web surface.
type Theme struct {
	CSS string `yaml:"css"`
}

// DefaultYAML returns the embedded default profile source.
func DefaultYAML() []byte {
	out := make([]byte, len(defaultYAML))
	copy(out, defaultYAML)
	return out
}

var defaultProfile = sync.OnceValue(func() *Profile {
	p, err := parse(defaultYAML, nil)
	if err != nil {
		panic(fmt.Sprintf("embedded profile is invalid: %v", err))
	}
	return p
})

// Default returns the embedded default profile. The returned value is shared
// and must not be modified.
func Default() *Profile {
	return defaultProfile()
}

// Load reads a profile from a YAML file. Fields left empty are taken from
// the default profile.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}

	p, err := parse(data, Default())
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}
	return p, nil
}

// Parse decodes a profile from YAML bytes, filling gaps from the default.
func Parse(data []byte) (*Profile, error) {
	return parse(data, Default())
}

func parse(data []byte, base *Profile) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	if base != nil {
		p.fillFrom(base)
	}

	if strings.TrimSpace(p.SystemInstruction) == "" {
		return nil, fmt.Errorf("system_instruction is required")
	}
	if strings.TrimSpace(p.UserTemplate) == "" {
		return nil, fmt.Errorf("user_template is required")
	}

	tmpl, err := template.New("user").Option("missingkey=error").Parse(p.UserTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse user_template: %w", err)
	}
	p.userTmpl = tmpl

	return &p, nil
}

func (p *Profile) fillFrom(base *Profile) {
	if p.Name == "" {
		p.Name = base.Name
	}
	if p.Language == "" {
		p.Language = base.Language
	}
	if p.SystemInstruction == "" {
		p.SystemInstruction = base.SystemInstruction
	}
	if p.UserTemplate == "" {
		p.UserTemplate = base.UserTemplate
	}
	if p.Labels.Sequence == "" {
		p.Labels.Sequence = base.Labels.Sequence
	}
	if p.Labels.Core == "" {
		p.Labels.Core = base.Labels.Core
	}
	if p.Labels.Before == "" {
		p.Labels.Before = base.Labels.Before
	}
	if p.Labels.After == "" {
		p.Labels.After = base.Labels.After
	}
	if p.Labels.FallbackTitle == "" {
		p.Labels.FallbackTitle = base.Labels.FallbackTitle
	}
	if p.Theme.CSS == "" {
		p.Theme.CSS = base.Theme.CSS
	}
}

// Template returns the parsed user message template.
func (p *Profile) Template() *template.Template {
	return p.userTmpl
}
