// Package manifest reads batch descriptions from YAML or JSON documents.
//
//	retry: 2
//	resources:
//	  - url: https://cdn.example.com/widgets.yaml
//	    name: widgets
//	    level: fatal
//	  - url: https://cdn.example.com/charts.yaml
//	    name: charts
//	    retry: 0
//
// A resource without its own retry inherits the manifest's; an explicit
// retry, zero included, always wins.
package manifest

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/probablyarth/dynload-go"
)

// Manifest is a decoded batch description.
type Manifest struct {
	Retry     int        `yaml:"retry" json:"retry"`
	Resources []Resource `yaml:"resources" json:"resources"`
}

// Resource is one entry of a Manifest. Level is "fatal", "error" or empty.
type Resource struct {
	URL   string `yaml:"url" json:"url"`
	Name  string `yaml:"name" json:"name"`
	Retry *int   `yaml:"retry,omitempty" json:"retry,omitempty"`
	Level string `yaml:"level,omitempty" json:"level,omitempty"`
}

// InvalidResourceError means a manifest entry cannot be turned into a
// dynload.Resource.
type InvalidResourceError struct {
	Index  int
	Reason string
}

func (e *InvalidResourceError) Error() string {
	return fmt.Sprintf("manifest resource %d: %s", e.Index, e.Reason)
}

// Parse decodes a manifest from r. JSON documents are accepted as well.
func Parse(r io.Reader) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return &m, nil
		}
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &m, nil
}

// Load reads and decodes the manifest at path.
func Load(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	m, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Batch validates m and converts it to a dynload.Batch.
func (m *Manifest) Batch() (dynload.Batch, error) {
	if m.Retry < 0 {
		return dynload.Batch{}, fmt.Errorf("manifest retry must not be negative, got %d", m.Retry)
	}

	b := dynload.Batch{
		Retry:     m.Retry,
		Resources: make([]dynload.Resource, 0, len(m.Resources)),
	}
	for i, r := range m.Resources {
		if r.URL == "" {
			return dynload.Batch{}, &InvalidResourceError{Index: i, Reason: "url is empty"}
		}
		if r.Name == "" {
			return dynload.Batch{}, &InvalidResourceError{Index: i, Reason: "name is empty"}
		}
		severity, err := dynload.ParseSeverity(r.Level)
		if err != nil {
			return dynload.Batch{}, &InvalidResourceError{Index: i, Reason: err.Error()}
		}

		res := dynload.Resource{URL: r.URL, Name: r.Name, Severity: severity}
		if r.Retry != nil {
			if *r.Retry < 0 {
				return dynload.Batch{}, &InvalidResourceError{Index: i, Reason: fmt.Sprintf("retry must not be negative, got %d", *r.Retry)}
			}
			res.Retry = *r.Retry
			res.RetrySet = true
		}
		b.Resources = append(b.Resources, res)
	}
	return b, nil
}
