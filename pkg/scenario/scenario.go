// Package scenario loads named cluster configurations from YAML or JSON.
package scenario

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"gravity-cluster/pkg/assets"
	"gravity-cluster/pkg/physics"
	"gravity-cluster/pkg/simulation"
)

// ErrUnknownConfiguration is returned by Lookup for a name not in the file.
var ErrUnknownConfiguration = errors.New("scenario: unknown configuration")

// Format selects the decoder.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// File is a set of named configurations.
type File struct {
	Configurations []Configuration `json:"configurations" yaml:"configurations"`
}

// Configuration is one initial state.
type Configuration struct {
	Name string `json:"name" yaml:"name"`

	// G overrides the application-wide gravitational constant when set.
	G float64 `json:"g,omitempty" yaml:"g,omitempty"`

	// Dt overrides the default time step when set.
	Dt float64 `json:"dt,omitempty" yaml:"dt,omitempty"`

	// AutoOrbit gives every body after the first that has zero velocity a
	// circular orbit around the first.
	AutoOrbit bool `json:"auto_orbit,omitempty" yaml:"auto_orbit,omitempty"`

	Bodies []BodyConfig `json:"bodies" yaml:"bodies"`
}

// BodyConfig is the (diameter, mass, position, velocity, color) tuple.
type BodyConfig struct {
	Name     string    `json:"name,omitempty" yaml:"name,omitempty"`
	Diameter float64   `json:"diameter" yaml:"diameter"`
	Mass     float64   `json:"mass" yaml:"mass"`
	Position []float64 `json:"position" yaml:"position"`
	Velocity []float64 `json:"velocity" yaml:"velocity"`
	Color    string    `json:"color,omitempty" yaml:"color,omitempty"`
}

// ValidationError describes an invalid body entry.
type ValidationError struct {
	Configuration string
	Body          int
	Field         string
	Reason        string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("configuration %q body %d: %s %s", e.Configuration, e.Body, e.Field, e.Reason)
}

// Load reads a configuration file; the extension picks the format.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	f, err := Parse(data, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Default returns the embedded configurations.
func Default() (*File, error) {
	return Parse(assets.Configurations, FormatYAML)
}

// FormatFor maps a file name to its format. Anything that is not .json is
// read as YAML.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Parse decodes data in the given format.
func Parse(data []byte, format Format) (*File, error) {
	var f File
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}
	if len(f.Configurations) == 0 {
		return nil, errors.New("scenario: file has no configurations")
	}
	seen := make(map[string]bool, len(f.Configurations))
	for _, c := range f.Configurations {
		if c.Name == "" {
			return nil, errors.New("scenario: configuration without a name")
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("scenario: duplicate configuration %q", c.Name)
		}
		seen[c.Name] = true
	}
	return &f, nil
}

// Names lists the configuration names in file order.
func (f *File) Names() []string {
	names := make([]string, len(f.Configurations))
	for i, c := range f.Configurations {
		names[i] = c.Name
	}
	return names
}

// Lookup returns the named configuration.
func (f *File) Lookup(name string) (Configuration, error) {
	for _, c := range f.Configurations {
		if c.Name == name {
			return c, nil
		}
	}
	return Configuration{}, fmt.Errorf("%w: %q", ErrUnknownConfiguration, name)
}

// BuildBodies validates the entries and converts them to physics bodies.
func (c Configuration) BuildBodies() ([]physics.Body, error) {
	bodies := make([]physics.Body, len(c.Bodies))
	for i, b := range c.Bodies {
		invalid := func(field, reason string) error {
			return &ValidationError{Configuration: c.Name, Body: i, Field: field, Reason: reason}
		}
		if b.Diameter <= 0 {
			return nil, invalid("diameter", "must be positive")
		}
		if b.Mass <= 0 {
			return nil, invalid("mass", "must be positive")
		}
		if len(b.Position) != 2 {
			return nil, invalid("position", fmt.Sprintf("must have 2 components, got %d", len(b.Position)))
		}
		vel := b.Velocity
		if len(vel) == 0 {
			vel = []float64{0, 0}
		}
		if len(vel) != 2 {
			return nil, invalid("velocity", fmt.Sprintf("must have 2 components, got %d", len(vel)))
		}
		bodies[i] = physics.NewBody(
			b.Diameter,
			b.Mass,
			physics.NewVector(b.Position...),
			physics.NewVector(vel...),
			ParseColor(b.Color),
		).WithName(b.Name)
	}
	return bodies, nil
}

// Cluster builds an uninitialized cluster for c. A G set on the
// configuration wins over g.
func (c Configuration) Cluster(g float64, opts ...simulation.Option) (*simulation.Cluster, error) {
	if c.G != 0 {
		g = c.G
	}
	if c.AutoOrbit {
		c = ApplyAutoOrbit(c, g)
	}
	bodies, err := c.BuildBodies()
	if err != nil {
		return nil, err
	}
	cl, err := simulation.New(bodies, append([]simulation.Option{simulation.WithG(g)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("configuration %q: %w", c.Name, err)
	}
	return cl, nil
}
