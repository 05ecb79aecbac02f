package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	analysisStartedTotal    atomic.Uint64
	analysisCompletedTotal  atomic.Uint64
	analysisFailedTotal     atomic.Uint64
	analysisSupersededTotal atomic.Uint64
	invalidImageTotal       atomic.Uint64
	preprocessOKTotal       atomic.Uint64
	preprocessFailedTotal   atomic.Uint64
	feedbackVotesTotal      atomic.Uint64
	exportsTotal            atomic.Uint64

	analysisDuration = newHistogram([]float64{250, 500, 1000, 2000, 5000, 10000, 30000, 60000, 120000})
	findingsPerRun   = newHistogram([]float64{0, 1, 4, 8, 12, 16, 20})
)

func IncAnalysisStarted()    { analysisStartedTotal.Add(1) }
func IncAnalysisCompleted()  { analysisCompletedTotal.Add(1) }
func IncAnalysisFailed()     { analysisFailedTotal.Add(1) }
func IncAnalysisSuperseded() { analysisSupersededTotal.Add(1) }
func IncInvalidImage()       { invalidImageTotal.Add(1) }
func IncPreprocessOK()       { preprocessOKTotal.Add(1) }
func IncPreprocessFailed()   { preprocessFailedTotal.Add(1) }
func IncFeedbackVote()       { feedbackVotesTotal.Add(1) }
func IncExport()             { exportsTotal.Add(1) }

// ObserveAnalysisDurationMs records a collaborator round trip in milliseconds.
func ObserveAnalysisDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	analysisDuration.Observe(value)
}

// ObserveFindings records how many normalized findings a run produced.
func ObserveFindings(n int) {
	findingsPerRun.Observe(float64(n))
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "analysis_started_total", "Total analyses started", analysisStartedTotal.Load())
	writeCounter(&buf, "analysis_completed_total", "Total analyses completed", analysisCompletedTotal.Load())
	writeCounter(&buf, "analysis_failed_total", "Total analyses failed", analysisFailedTotal.Load())
	writeCounter(&buf, "analysis_superseded_total", "Total analyses discarded by a newer upload", analysisSupersededTotal.Load())
	writeCounter(&buf, "analysis_invalid_image_total", "Total uploads reported as non-UI images", invalidImageTotal.Load())
	writeCounter(&buf, "preprocess_ok_total", "Total successful preprocess calls", preprocessOKTotal.Load())
	writeCounter(&buf, "preprocess_failed_total", "Total failed preprocess calls", preprocessFailedTotal.Load())
	writeCounter(&buf, "feedback_votes_total", "Total feedback votes recorded", feedbackVotesTotal.Load())
	writeCounter(&buf, "exports_total", "Total reports exported", exportsTotal.Load())
	writeHistogram(&buf, "analysis_duration_ms", "Collaborator analyze duration in milliseconds", analysisDuration.Snapshot())
	writeHistogram(&buf, "analysis_findings", "Normalized findings per completed run", findingsPerRun.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe counts value in the first bucket whose bound is not below it.
// Snapshots accumulate the counts when rendered.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
