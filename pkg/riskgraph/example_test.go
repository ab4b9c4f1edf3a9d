package riskgraph_test

import (
	"fmt"

	"github.com/matzehuels/riskflow/pkg/riskgraph"
)

func Example() {
	g := riskgraph.New[string](riskgraph.Options{})

	_, _ = g.RegisterBatch([]string{"db", "api", "web"}, []float64{0.1, 0.05, 0.02})
	_ = g.SetEdge("db", "api", 0.5)
	_ = g.SetEdge("api", "web", 0.8)

	risk := g.RiskMap()
	fmt.Printf("db:  %.4f\n", risk["db"])
	fmt.Printf("api: %.4f\n", risk["api"])
	fmt.Printf("web: %.4f\n", risk["web"])
	// Output:
	// db:  0.1000
	// api: 0.0975
	// web: 0.0968
}

func ExampleGraph_Paths() {
	g := riskgraph.New[string](riskgraph.Options{})
	_, _ = g.RegisterBatch([]string{"a", "b", "c", "d"}, nil)
	_ = g.SetEdge("a", "b", 0.5)
	_ = g.SetEdge("a", "c", 0.4)
	_ = g.SetEdge("b", "d")
	_ = g.SetEdge("c", "d")

	paths, _ := g.Paths("a", "d")
	for _, p := range paths {
		fmt.Println(p.Handles, p.Prob)
	}
	c, _ := g.Collapsed("a", "d")
	fmt.Printf("collapsed: %.2f\n", c)
	// Output:
	// [a b d] 0.5
	// [a c d] 0.4
	// collapsed: 0.70
}

func ExampleOrCombine() {
	fmt.Println(riskgraph.OrCombine(0.5, 0.5))
	// Output: 0.75
}
