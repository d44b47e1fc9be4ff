package metrics

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"proxylink/internal/clash"
)

// Collector accumulates the outcome of one conversion run. It is safe for
// concurrent use.
type Collector struct {
	mu sync.Mutex

	linksByKind   map[clash.Kind]int
	totalLinks    int
	warningCounts map[string]int
	errorCounts   map[string]int
	totalErrors   int
	skipped       int
	elapsed       time.Duration

	registry      *prometheus.Registry
	linksTotal    *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	warningsTotal *prometheus.CounterVec
	skippedTotal  prometheus.Counter
	duration      prometheus.Gauge
}

func New() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Collector{
		linksByKind:   make(map[clash.Kind]int),
		warningCounts: make(map[string]int),
		errorCounts:   make(map[string]int),
		registry:      reg,
		linksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "proxylink_links_total",
				Help: "Share links produced, by protocol",
			},
			[]string{"kind"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "proxylink_errors_total",
				Help: "Records that failed to convert, by reason",
			},
			[]string{"reason"},
		),
		warningsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "proxylink_warnings_total",
				Help: "Links produced with a warning attached, by code",
			},
			[]string{"code"},
		),
		skippedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "proxylink_skipped_records_total",
				Help: "Records of unsupported type that were dropped",
			},
		),
		duration: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "proxylink_conversion_duration_seconds",
				Help: "Wall time of the last conversion run",
			},
		),
	}
}

func (c *Collector) RecordLink(l clash.Link) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.linksByKind[l.Kind]++
	c.totalLinks++
	c.linksTotal.WithLabelValues(string(l.Kind)).Inc()
	for _, w := range l.Warnings {
		c.warningCounts[w.Code]++
		c.warningsTotal.WithLabelValues(w.Code).Inc()
	}
}

func (c *Collector) RecordFailure(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	reason := Reason(err)
	if reason == "unknown_type" {
		c.skipped++
		c.skippedTotal.Inc()
		return
	}
	c.totalErrors++
	c.errorCounts[reason]++
	c.errorsTotal.WithLabelValues(reason).Inc()
}

func (c *Collector) RecordDuration(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.elapsed = d
	c.duration.Set(d.Seconds())
}

// Reason classifies a conversion error into a metric label.
func Reason(err error) string {
	switch {
	case errors.Is(err, clash.ErrUnknownType):
		return "unknown_type"
	case errors.Is(err, clash.ErrMissingField):
		return "missing_field"
	case errors.Is(err, clash.ErrTypeMismatch):
		return "type_mismatch"
	}
	return "other"
}

// WriteTextfile writes the counters in the Prometheus text format, for the
// node_exporter textfile collector.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

func (c *Collector) PrintReport(out io.Writer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(out, "\n📊 \033[1mCONVERSION REPORT\033[0m")
	fmt.Fprintln(out, "────────────────────────────────────────")

	fmt.Fprintln(w, "\033[1;36m[ LINKS ]\033[0m")
	fmt.Fprintf(w, "  Total:\t%d\n", c.totalLinks)
	for _, k := range clash.Kinds {
		count := c.linksByKind[k]
		if count == 0 {
			continue
		}
		pct := float64(count) / float64(c.totalLinks) * 100
		fmt.Fprintf(w, "  %s:\t%d (%.1f%%)\n", k, count, pct)
	}
	if c.elapsed > 0 {
		fmt.Fprintf(w, "  Duration:\t%v\n", c.elapsed.Round(time.Millisecond))
	}
	fmt.Fprintln(w, "")

	fmt.Fprintln(w, "\033[1;36m[ DROPPED / ERRORS ]\033[0m")
	fmt.Fprintf(w, "  Unsupported type:\t%d\n", c.skipped)
	fmt.Fprintf(w, "  Failed:\t%d\n", c.totalErrors)
	for _, k := range sortedKeys(c.errorCounts) {
		fmt.Fprintf(w, "  %s:\t%d\n", k, c.errorCounts[k])
	}
	if len(c.warningCounts) > 0 {
		fmt.Fprintln(w, "  --------------------------------")
		for _, k := range sortedKeys(c.warningCounts) {
			fmt.Fprintf(w, "  ⚠️  %s:\t%d\n", k, c.warningCounts[k])
		}
	}

	w.Flush()
	fmt.Fprintln(out, "")
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
