package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/riskflow/pkg/errors"
	"github.com/matzehuels/riskflow/pkg/model"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"svg"}},
		{"svg", []string{"svg"}},
		{"svg, png,,pdf ", []string{"svg", "png", "pdf"}},
	}
	for _, tt := range tests {
		if got := parseFormats(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "models/system.json", "models/system"},
		{"out/diagram.svg", "system.json", "out/diagram"},
		{"out/diagram", "system.json", "out/diagram"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "system.json")
	if err := os.WriteFile(input, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	artifacts := map[string][]byte{
		"svg":  []byte("<svg/>"),
		"json": []byte(`{"vertices":[]}`),
		"dot":  []byte("digraph G {}"),
	}
	paths, err := writeArtifacts(artifacts, filepath.Join(dir, "system"), input)
	if err != nil {
		t.Fatalf("writeArtifacts: %v", err)
	}

	want := []string{
		filepath.Join(dir, "system.dot"),
		filepath.Join(dir, "system.report.json"),
		filepath.Join(dir, "system.svg"),
	}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("paths = %v, want %v", paths, want)
	}

	// The model file is never overwritten.
	if data, _ := os.ReadFile(input); string(data) != "{}" {
		t.Errorf("input overwritten: %s", data)
	}
	if data, _ := os.ReadFile(want[2]); string(data) != "<svg/>" {
		t.Errorf("svg = %s", data)
	}
}

func TestGraphFlagsOptions(t *testing.T) {
	c := New(&bytes.Buffer{}, log.InfoLevel)
	c.Config.DefaultRisk = 0.02
	c.Config.Capacity = 100
	m := &model.Model{Vertices: []model.Vertex{{ID: "a"}}}

	f := &graphFlags{defaultWeight: 0.5, refresh: true}
	opts, err := f.options(c, m)
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if opts.DefaultRisk != 0.02 || opts.Capacity != 100 {
		t.Errorf("config values not applied: %+v", opts)
	}
	if opts.DefaultWeight != 0.5 || !opts.Refresh {
		t.Errorf("flag values not applied: %+v", opts)
	}

	f = &graphFlags{defaultRisk: 0.3}
	if opts, _ := f.options(c, m); opts.DefaultRisk != 0.3 {
		t.Errorf("flag DefaultRisk = %v, want 0.3 over config", opts.DefaultRisk)
	}

	tests := []struct {
		name  string
		flags graphFlags
		code  errors.Code
	}{
		{"risk", graphFlags{defaultRisk: 2}, errors.ErrCodeInvalidRisk},
		{"weight", graphFlags{defaultWeight: -0.5}, errors.ErrCodeInvalidWeight},
		{"capacity", graphFlags{capacity: -1}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.flags.options(c, m); !errors.Is(err, tt.code) {
				t.Errorf("options() = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestNewCacheBackends(t *testing.T) {
	c := New(&bytes.Buffer{}, log.InfoLevel)
	c.Config.Cache.Dir = t.TempDir()

	cc, err := c.newCache(t.Context(), false)
	if err != nil {
		t.Fatalf("newCache(file): %v", err)
	}
	if _, ok := cc.(interface{ Dir() string }); !ok {
		t.Errorf("newCache(file) = %T, want file cache", cc)
	}

	cc, _ = c.newCache(t.Context(), true)
	if _, ok := cc.(interface{ Dir() string }); ok {
		t.Error("newCache(noCache) returned a file cache")
	}

	c.Config.Cache.Backend = backendNone
	cc, _ = c.newCache(t.Context(), false)
	if _, ok := cc.(interface{ Dir() string }); ok {
		t.Error("backend none returned a file cache")
	}
}
