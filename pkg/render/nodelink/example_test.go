package nodelink_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/riskflow/pkg/model"
	"github.com/matzehuels/riskflow/pkg/render/nodelink"
)

func ExampleToDOT() {
	m := &model.Model{
		Vertices: []model.Vertex{{ID: "db", Risk: model.Float(0.1)}, {ID: "api"}},
		Edges:    []model.Edge{{From: "db", To: "api", Weight: model.Float(0.5)}},
	}
	risk := map[string]float64{"db": 0.1, "api": 0.0975}

	dot := nodelink.ToDOT(m, risk, nodelink.Options{})
	for _, line := range strings.Split(dot, "\n") {
		if strings.Contains(line, "->") {
			fmt.Println(strings.TrimSpace(line))
		}
	}
	// Output:
	// "db" -> "api" [label="0.50", penwidth=1.75];
}

func ExampleRiskColor() {
	fmt.Println(nodelink.RiskColor(0))
	fmt.Println(nodelink.RiskColor(0.25))
	fmt.Println(nodelink.RiskColor(1))
	// Output:
	// #ffffff
	// #ffbfbf
	// #ff0000
}
