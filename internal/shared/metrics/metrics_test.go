package metrics

import (
	"bytes"
	"strings"
	"testing"
)

func TestHistogramBucketsAreCumulative(t *testing.T) {
	h := newHistogram([]float64{1, 5, 10})
	for _, v := range []float64{0.5, 3, 3, 7, 50} {
		h.Observe(v)
	}

	var buf bytes.Buffer
	writeHistogram(&buf, "x", "test", h.Snapshot())
	for _, want := range []string{
		`x_bucket{le="1"} 1`,
		`x_bucket{le="5"} 3`,
		`x_bucket{le="10"} 4`,
		`x_bucket{le="+Inf"} 5`,
		`x_sum 63.5`,
		`x_count 5`,
	} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("missing %q in:\n%s", want, buf.String())
		}
	}
}

func TestRenderIncludesCounters(t *testing.T) {
	IncAnalysisSuperseded()
	IncPreprocessFailed()
	ObserveFindings(4)
	out := Render()
	for _, name := range []string{"analysis_superseded_total", "preprocess_failed_total", "analysis_findings_bucket"} {
		if !strings.Contains(out, name) {
			t.Fatalf("missing %s", name)
		}
	}
}
