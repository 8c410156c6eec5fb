// Package bundle defines the declarative resource format executed by the
// dynload CLI and server.
//
// A bundle is a YAML document that names itself and lists its exports:
//
//	name: widgets
//	version: 1.4.0
//	exports:
//	  button: https://cdn.example.com/widgets/button.wasm
//
// Executing a bundle publishes it into a dynload.Artifacts namespace under its
// declared name.
package bundle

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/probablyarth/dynload-go"
	"github.com/probablyarth/dynload-go/httpinject"
)

// ErrNoName is returned for bundles that do not declare a name.
var ErrNoName = errors.New("bundle declares no name")

// Bundle is an executed resource.
type Bundle struct {
	Name    string            `yaml:"name" json:"name"`
	Version string            `yaml:"version,omitempty" json:"version,omitempty"`
	Exports map[string]string `yaml:"exports,omitempty" json:"exports,omitempty"`
	// Source is the URL the bundle was loaded from.
	Source string `yaml:"-" json:"source"`
}

// Parse decodes a bundle document.
func Parse(data []byte) (*Bundle, error) {
	var b Bundle
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&b); err != nil {
		return nil, fmt.Errorf("decode bundle: %w", err)
	}
	if b.Name == "" {
		return nil, ErrNoName
	}
	return &b, nil
}

// Executor publishes parsed bundles into a namespace.
type Executor struct {
	ns *dynload.Artifacts
}

// NewExecutor returns an Executor publishing into ns.
func NewExecutor(ns *dynload.Artifacts) *Executor {
	if ns == nil {
		panic("bundle: nil namespace")
	}
	return &Executor{ns: ns}
}

// Execute implements httpinject.Executor.
func (e *Executor) Execute(_ context.Context, script httpinject.Script) error {
	b, err := Parse(script.Body)
	if err != nil {
		return err
	}
	b.Source = script.URL
	e.ns.Set(b.Name, b)
	return nil
}
