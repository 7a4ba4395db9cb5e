// Package preset reads saved column selections from YAML.
//
// A preset file lists named selections so a recurring export does not have
// to be re-entered:
//
//	presets:
//	  - name: catalogo
//	    description: Weekly catalogue for the print shop
//	    columns: [PLU, ID_MARCA, DESC_PLU, CONTENIDO, PRECIO_VENTA]
//	    make_image_name: true
//
// Column names must already be canonical, exactly as the normalization
// preview prints them.
package preset

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/JonMunkholm/datacleaner/internal/core"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned by Set.Get for an unknown name.
var ErrNotFound = errors.New("preset not found")

// Preset is one saved selection.
type Preset struct {
	Name          string   `yaml:"name"`
	Description   string   `yaml:"description,omitempty"`
	Columns       []string `yaml:"columns"`
	MakeImageName bool     `yaml:"make_image_name,omitempty"`
}

// Request converts p into the core request it stands for.
func (p Preset) Request() core.ProcessRequest {
	return core.ProcessRequest{
		Columns:       append([]string(nil), p.Columns...),
		MakeImageName: p.MakeImageName,
	}
}

// Set is the content of one preset file, in file order.
type Set struct {
	Presets []Preset `yaml:"presets"`
}

// Get returns the preset called name (case-insensitive).
func (s *Set) Get(name string) (Preset, error) {
	for _, p := range s.Presets {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// Names lists preset names in file order.
func (s *Set) Names() []string {
	names := make([]string, len(s.Presets))
	for i, p := range s.Presets {
		names[i] = p.Name
	}
	return names
}

// LoadFile parses and validates the preset file at path.
func LoadFile(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open preset file: %w", err)
	}
	defer f.Close()

	set, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// Parse decodes a preset document. Unknown keys are rejected so a typo like
// "colums" fails loudly instead of producing an empty selection.
func Parse(r io.Reader) (*Set, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var set Set
	if err := dec.Decode(&set); err != nil {
		if errors.Is(err, io.EOF) {
			return &Set{}, nil
		}
		return nil, fmt.Errorf("invalid preset YAML: %w", err)
	}

	if err := set.Validate(); err != nil {
		return nil, err
	}
	return &set, nil
}

// Validate reports every problem in the set at once.
func (s *Set) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(s.Presets))

	for i, p := range s.Presets {
		label := fmt.Sprintf("preset %d", i+1)
		if p.Name != "" {
			label = fmt.Sprintf("preset %q", p.Name)
		}

		name := strings.ToLower(strings.TrimSpace(p.Name))
		switch {
		case name == "":
			errs = append(errs, fmt.Errorf("%s: name is required", label))
		case seen[name]:
			errs = append(errs, fmt.Errorf("%s: duplicate name", label))
		}
		seen[name] = true

		if len(p.Columns) == 0 {
			errs = append(errs, fmt.Errorf("%s: %w", label, core.ErrEmptySelection))
		}
		for _, c := range p.Columns {
			if canonical := core.NormalizeColumnName(c); canonical != c {
				errs = append(errs, fmt.Errorf("%s: column %q is not canonical (did you mean %q?)", label, c, canonical))
			}
		}
	}

	return errors.Join(errs...)
}

// Write encodes s as YAML.
func Write(w io.Writer, s *Set) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode presets: %w", err)
	}
	return enc.Close()
}
