// Package prompt loads and renders the named prompt templates used to build
// LLM inputs. Templates live in a YAML document mapping template names to
// optional "system" and "user" text fragments with {identifier} placeholders.
package prompt

import (
	"fmt"
	"os"
	"regexp"
	"sort"

	"sigs.k8s.io/yaml"
)

// Template is one named prompt entry. Either fragment may be absent; a
// template with neither is accepted and renders to an empty result.
type Template struct {
	System *string `json:"system,omitempty"`
	User   *string `json:"user,omitempty"`
}

// Rendered holds the substituted fragments of a template. Only the fragments
// present in the source template are set.
type Rendered struct {
	System *string
	User   *string
}

// Store resolves named templates against caller-supplied values. The backing
// document is parsed at most once per Store; construct a new Store to pick up
// template changes.
type Store struct {
	path string
	data []byte

	templates map[string]Template
	raw       map[string]map[string]any
}

// NewStore returns a Store backed by the YAML document at path. The file is
// not read until the first Render/Structure/Names call.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// NewStoreFromBytes returns a Store backed by an in-memory YAML document.
func NewStoreFromBytes(data []byte) *Store {
	return &Store{data: data}
}

var placeholderRegexp = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Load forces the backing document to be read and parsed now instead of on
// first render, so configuration defects surface early.
func (s *Store) Load() error {
	return s.load()
}

// load parses the backing document on first use. The nil templates map is the
// not-yet-loaded state; a failed load leaves it nil so the error repeats.
func (s *Store) load() error {
	if s.templates != nil {
		return nil
	}

	data := s.data
	if data == nil {
		b, err := os.ReadFile(s.path)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("%w: %s", ErrSourceMissing, s.path)
			}
			return fmt.Errorf("read prompts file %s: %w", s.path, err)
		}
		data = b
	}

	var raw map[string]map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrSourceMalformed, err)
	}

	templates := make(map[string]Template, len(raw))
	for name, entry := range raw {
		var tmpl Template
		if v, ok := entry["system"]; ok {
			text, ok := v.(string)
			if !ok {
				return fmt.Errorf("%w: template %q: system is not a string", ErrSourceMalformed, name)
			}
			tmpl.System = &text
		}
		if v, ok := entry["user"]; ok {
			text, ok := v.(string)
			if !ok {
				return fmt.Errorf("%w: template %q: user is not a string", ErrSourceMalformed, name)
			}
			tmpl.User = &text
		}
		templates[name] = tmpl
	}

	s.raw = raw
	s.templates = templates
	return nil
}

// Render looks up the named template and substitutes every {identifier}
// placeholder with the corresponding entry in values. Unused values are
// ignored. Substitution is a single pass over the template text, so braces
// inside values are never re-expanded. Literal braces in template text are
// not representable; there is no escape syntax.
func (s *Store) Render(name string, values map[string]string) (Rendered, error) {
	if err := s.load(); err != nil {
		return Rendered{}, err
	}

	tmpl, ok := s.templates[name]
	if !ok {
		return Rendered{}, fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}

	var out Rendered
	if tmpl.System != nil {
		text, err := substitute(*tmpl.System, values)
		if err != nil {
			return Rendered{}, fmt.Errorf("template %q: %w", name, err)
		}
		out.System = &text
	}
	if tmpl.User != nil {
		text, err := substitute(*tmpl.User, values)
		if err != nil {
			return Rendered{}, fmt.Errorf("template %q: %w", name, err)
		}
		out.User = &text
	}
	return out, nil
}

func substitute(text string, values map[string]string) (string, error) {
	for _, match := range placeholderRegexp.FindAllStringSubmatch(text, -1) {
		if _, ok := values[match[1]]; !ok {
			return "", fmt.Errorf("%w: %q", ErrMissingValue, match[1])
		}
	}
	return placeholderRegexp.ReplaceAllStringFunc(text, func(m string) string {
		return values[m[1:len(m)-1]]
	}), nil
}

// Structure returns the raw template entry as parsed, placeholders intact,
// including any metadata fields Render ignores.
func (s *Store) Structure(name string) (map[string]any, error) {
	if err := s.load(); err != nil {
		return nil, err
	}
	entry, ok := s.raw[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}
	return entry, nil
}

// Names returns the sorted names of all loaded templates.
func (s *Store) Names() ([]string, error) {
	if err := s.load(); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(s.templates))
	for name := range s.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
