package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/riskflow/pkg/model"
)

func sample() *model.Model {
	return &model.Model{
		Name: "sample",
		Vertices: []model.Vertex{
			{ID: "db", Risk: model.Float(0.1), Meta: map[string]any{"tier": "data"}},
			{ID: "api", Risk: model.Float(0.05)},
		},
		Edges: []model.Edge{{From: "db", To: "api", Weight: model.Float(0.5)}},
	}
}

func TestToDOT_Basic(t *testing.T) {
	dot := ToDOT(sample(), map[string]float64{"db": 0.1, "api": 0.0975}, Options{})

	for _, want := range []string{
		"digraph G",
		"rankdir=LR",
		`"db" [`,
		`"api" [`,
		`"db" -> "api" [label="0.50"`,
		`label="db\n10.0%"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() output missing %q", want)
		}
	}
}

func TestToDOT_Detailed(t *testing.T) {
	dot := ToDOT(sample(), map[string]float64{"db": 0.1, "api": 0.0975}, Options{Detailed: true})

	for _, want := range []string{"total: 0.1000", "own: 0.1000", "tier: data", "total: 0.0975"} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() detailed output missing %q", want)
		}
	}
}

func TestToDOT_Threshold(t *testing.T) {
	risk := map[string]float64{"db": 0.3, "api": 0.1}
	dot := ToDOT(sample(), risk, Options{Threshold: 0.2})

	var dbLine, apiLine string
	for _, line := range strings.Split(dot, "\n") {
		switch {
		case strings.HasPrefix(strings.TrimSpace(line), `"db" [`):
			dbLine = line
		case strings.HasPrefix(strings.TrimSpace(line), `"api" [`):
			apiLine = line
		}
	}
	if !strings.Contains(dbLine, "penwidth=3") {
		t.Errorf("vertex above threshold not highlighted: %s", dbLine)
	}
	if strings.Contains(apiLine, "penwidth=3") {
		t.Errorf("vertex below threshold highlighted: %s", apiLine)
	}
}

func TestToDOT_UnknownRisk(t *testing.T) {
	dot := ToDOT(sample(), nil, Options{})
	if !strings.Contains(dot, `"db" [label="db"];`) {
		t.Errorf("vertex without risk should render plain label:\n%s", dot)
	}
}

func TestToDOT_DefaultWeight(t *testing.T) {
	m := sample()
	m.Edges[0].Weight = nil
	dot := ToDOT(m, nil, Options{RankDir: "TB"})
	if !strings.Contains(dot, `label="1.00"`) {
		t.Error("edge without weight should be labelled 1.00")
	}
	if !strings.Contains(dot, "rankdir=TB") {
		t.Error("RankDir not applied")
	}
}

func TestRiskColor(t *testing.T) {
	tests := []struct {
		p    float64
		want string
	}{
		{0, "#ffffff"},
		{1, "#ff0000"},
		{0.5, "#ff8080"},
		{-1, "#ffffff"},
		{2, "#ff0000"},
	}
	for _, tt := range tests {
		if got := RiskColor(tt.p); got != tt.want {
			t.Errorf("RiskColor(%v) = %q, want %q", tt.p, got, tt.want)
		}
	}
}

func TestFmtLabel_Simple(t *testing.T) {
	v := model.Vertex{ID: "node"}
	if got := fmtLabel(v, 0.25, true, false); got != "node\n25.0%" {
		t.Errorf("fmtLabel() = %q, want %q", got, "node\n25.0%")
	}
	if got := fmtLabel(v, 0, false, true); got != "node" {
		t.Errorf("fmtLabel() without risk = %q, want %q", got, "node")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 100.00 50.00" width="100" height="50"`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}

	plain := []byte(`<svg><g/></svg>`)
	if got := normalizeViewBox(plain); string(got) != string(plain) {
		t.Errorf("normalizeViewBox() changed svg without viewBox: %s", got)
	}
}
