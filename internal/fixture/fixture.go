/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

// Package fixture loads the literal end-to-end redaction scenarios used by
// this module's own tests from a YAML file, and runs one through the full
// tokenize/parse/decide/write pipeline. Not meant for consumers.
package fixture

import (
	"context"
	_ "embed"
	"strings"

	"golang.org/x/xerrors"
	"gopkg.in/yaml.v3"

	"github.com/pdfredact/pdfredact/csparse"
	"github.com/pdfredact/pdfredact/cswriter"
	"github.com/pdfredact/pdfredact/gstate"
	"github.com/pdfredact/pdfredact/internal/simplefont"
	"github.com/pdfredact/pdfredact/redact"
)

//go:embed scenarios.yaml
var scenariosYAML []byte

// FontSpec describes one simulated font a Scenario's content stream uses.
type FontSpec struct {
	ID  string `yaml:"id"`
	CID bool   `yaml:"cid"`
}

// RequestSpec is one redaction rectangle plus the policy to apply it with.
type RequestSpec struct {
	Rect   [4]float64 `yaml:"rect"`
	Policy string     `yaml:"policy"` // "whole" or "glyph"
}

// Scenario is one named, self-contained redaction test case.
type Scenario struct {
	Name              string        `yaml:"name"`
	Content           string        `yaml:"content"`
	Fonts             []FontSpec    `yaml:"fonts"`
	Requests          []RequestSpec `yaml:"requests"`
	DrawVisualMarker  bool          `yaml:"draw_visual_marker"`
	ExpectContains    []string      `yaml:"expect_contains"`
	ExpectNotContains []string      `yaml:"expect_not_contains"`
}

// Load parses the embedded scenarios.yaml into a list of Scenarios.
func Load() ([]Scenario, error) {
	var scenarios []Scenario
	if err := yaml.Unmarshal(scenariosYAML, &scenarios); err != nil {
		return nil, xerrors.Errorf("fixture: parse scenarios.yaml: %w", err)
	}
	return scenarios, nil
}

func (s Scenario) policy(name string) redact.Policy {
	if name == "glyph" {
		return redact.GlyphLevel
	}
	return redact.WholeOperation
}

func (s Scenario) resolver() *simplefont.Resolver {
	fonts := map[string]simplefont.Font{}
	for _, f := range s.Fonts {
		fonts[f.ID] = simplefont.Font{CID: f.CID}
	}
	return simplefont.New(fonts)
}

// Run executes a Scenario through the full pipeline and returns the
// written content-stream bytes as a string, for substring assertions, and
// the redaction report.
func Run(s Scenario) (string, redact.Report, error) {
	resolver := s.resolver()
	p := csparse.NewParser([]byte(s.Content), resolver)
	stream, _, err := p.Parse(context.Background())
	if err != nil {
		return "", redact.Report{}, xerrors.Errorf("fixture %q: parse: %w", s.Name, err)
	}

	var requests []redact.Request
	for _, r := range s.Requests {
		requests = append(requests, redact.Request{
			Rect:   gstate.NewRectangle(r.Rect[0], r.Rect[1], r.Rect[2], r.Rect[3]),
			Policy: s.policy(r.Policy),
		})
	}

	out, report := redact.Decide(stream, requests, redact.Options{DrawVisualMarker: s.DrawVisualMarker})

	body, err := cswriter.Write(out, cswriter.Options{FallbackFontID: "F1", FallbackFontSize: 12})
	if err != nil {
		return "", report, xerrors.Errorf("fixture %q: write: %w", s.Name, err)
	}
	return string(body), report, nil
}

// Check applies the Scenario's ExpectContains/ExpectNotContains assertions
// against `output` and returns the first violation found, or "" if none.
func (s Scenario) Check(output string) string {
	for _, want := range s.ExpectContains {
		if !strings.Contains(output, want) {
			return "expected output to contain " + want
		}
	}
	for _, unwanted := range s.ExpectNotContains {
		if strings.Contains(output, unwanted) {
			return "expected output not to contain " + unwanted
		}
	}
	return ""
}
