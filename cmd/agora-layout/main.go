// Command agora-layout computes a concentric layout for a graph read
// from a JSON file and writes the positions back out. It is the
// offline companion to the server's layout endpoint, useful for
// batch jobs and debugging layout behavior.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/openagora/agora/pkg/ibis"
	"github.com/openagora/agora/pkg/layout"
)

// graphFile is the on-disk interchange format.
type graphFile struct {
	Nodes         []*ibis.Node         `json:"nodes"`
	Relationships []*ibis.Relationship `json:"relationships"`
}

func main() {
	inPath := flag.String("in", "-", "Input graph JSON file (- for stdin)")
	outPath := flag.String("out", "-", "Output layout JSON file (- for stdout)")
	width := flag.Float64("width", layout.DefaultWidth, "Canvas width")
	height := flag.Float64("height", layout.DefaultHeight, "Canvas height")
	iterations := flag.Int("iterations", layout.DefaultIterations, "Simulation iterations")
	seed := flag.Int64("seed", 0, "Random seed (0 for time-based)")
	flag.Parse()

	if err := run(*inPath, *outPath, *width, *height, *iterations, *seed); err != nil {
		fmt.Fprintf(os.Stderr, "agora-layout: %v\n", err)
		os.Exit(1)
	}
}

func run(inPath, outPath string, width, height float64, iterations int, seed int64) error {
	graph, err := readGraph(inPath)
	if err != nil {
		return err
	}

	engine := layout.NewConcentricLayout(&layout.Config{
		Width:      width,
		Height:     height,
		Iterations: iterations,
		Seed:       seed,
	})
	result, err := engine.Compute(context.Background(), graph.Nodes, graph.Relationships)
	if err != nil {
		return fmt.Errorf("layout failed: %w", err)
	}

	return writeResult(outPath, result)
}

func readGraph(path string) (*graphFile, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var graph graphFile
	if err := json.NewDecoder(r).Decode(&graph); err != nil {
		return nil, fmt.Errorf("failed to parse graph: %w", err)
	}
	return &graph, nil
}

func writeResult(path string, result *layout.Result) error {
	var w io.Writer = os.Stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
