package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/ritzau/normlap/pkg/network"
	"github.com/ritzau/normlap/pkg/overlap"
)

// Inputs describes what was compared
type Inputs struct {
	A        string          `json:"a"`
	B        string          `json:"b"`
	Pool     string          `json:"pool,omitempty"`
	SummaryA network.Summary `json:"summary_a"`
	SummaryB network.Summary `json:"summary_b"`
	SummaryP network.Summary `json:"summary_pool"`
}

// PrintReport prints a colored overlap report
func PrintReport(w io.Writer, in Inputs, r overlap.Report) {
	// Color definitions
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	// Header
	bold.Fprintln(w, "Network Overlap Report")
	bold.Fprintln(w, "======================")
	printInput(w, "A", in.A, in.SummaryA)
	printInput(w, "B", in.B, in.SummaryB)
	pool := in.Pool
	if pool == "" {
		pool = "union of A and B"
	}
	printInput(w, "Pool", pool, in.SummaryP)
	fmt.Fprintln(w)

	for _, d := range r.DefaultsUsed {
		yellow.Fprintf(w, "Note: %s benchmark computed with default parameters\n", d)
	}

	printBenchmark(w, "Negative", r.Negative, yellow)
	printBenchmark(w, "Positive", r.Positive, yellow)
	fmt.Fprintln(w)

	labels := r.Labels()
	for i, v := range r.Values() {
		fmt.Fprintf(w, "  %-18s ", labels[i]+":")
		if !v.Valid {
			yellow.Fprintln(w, v.String())
			continue
		}
		fmt.Fprintln(w, v.String())
	}
	fmt.Fprintln(w)

	// Summary colored by where the overlap falls between the benchmarks
	switch {
	case !r.Score.Valid:
		yellow.Fprintln(w, "Summary: score undefined (benchmarks coincide)")
	case r.Score.Float64 < 0:
		red.Fprintf(w, "Summary: overlap below the random expectation (score %s)\n", r.Score)
	case r.Score.Float64 > 1:
		cyan.Fprintf(w, "Summary: overlap above the shared-pool expectation (score %s)\n", r.Score)
	default:
		green.Fprintf(w, "Summary: normalized overlap %s ± %s\n", r.Score, r.ScoreSigma)
	}
}

func printInput(w io.Writer, name, source string, s network.Summary) {
	fmt.Fprintf(w, "%-5s %s (%d nodes, %d edges, %d self-loops, %d components)\n",
		name+":", source, s.Nodes, s.Edges, s.SelfLoops, s.Components)
}

func printBenchmark(w io.Writer, name string, b overlap.BenchmarkResult, warn *color.Color) {
	sel := b.Candidates[b.Selected]
	fmt.Fprintf(w, "%s benchmark: %s selected after %d iterations\n",
		name, b.Selected, sel.Result.Iterations)
	if !b.Converged() {
		warn.Fprintf(w, "  warning: did not settle within %d iterations\n", b.Params.Budget())
	}
}

// WriteJSON writes the report as indented JSON
func WriteJSON(w io.Writer, r overlap.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
