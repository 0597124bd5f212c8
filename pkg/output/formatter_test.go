package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/ritzau/normlap/pkg/overlap"
	"github.com/ritzau/normlap/pkg/stats"
)

func sampleReport() overlap.Report {
	return overlap.Report{
		Observed:     2,
		NegMean:      0.5,
		NegSigma:     0.5,
		PNeg:         stats.Defined(0.0013),
		PosMean:      2.5,
		PosSigma:     0.4,
		PPos:         stats.Undefined,
		Score:        stats.Defined(0.75),
		ScoreSigma:   stats.Defined(0.1),
		DefaultsUsed: []string{"positive"},
	}
}

func TestPrintReport(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	PrintReport(&buf, Inputs{A: "a.tsv", B: "b.tsv"}, sampleReport())
	out := buf.String()

	for _, want := range []string{
		"a.tsv",
		"union of A and B",
		"Observed overlap:  2.00",
		"Neg_p:",
		"Pos_p:             undefined",
		"Normlap:           0.75",
		"positive benchmark computed with default parameters",
		"normalized overlap 0.75 ± 0.10",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestPrintReportUndefinedScore(t *testing.T) {
	color.NoColor = true

	r := sampleReport()
	r.Score, r.ScoreSigma = stats.Undefined, stats.Undefined

	var buf bytes.Buffer
	PrintReport(&buf, Inputs{}, r)

	if !strings.Contains(buf.String(), "score undefined") {
		t.Errorf("report does not flag the undefined score:\n%s", buf.String())
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleReport()); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if decoded["observed"] != float64(2) {
		t.Errorf("observed = %v, want 2", decoded["observed"])
	}
	if v, ok := decoded["p_pos"]; !ok || v != nil {
		t.Errorf("p_pos = %v, want null", v)
	}
}
