// Package profiler collects latency samples for classifier operations and
// summarizes them for the benchmark command.
package profiler

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/olekukonko/tablewriter"
)

// Operation names recorded by the benchmark
const (
	OpPreprocess = "preprocess"
	OpPredict    = "predict"
	OpClassify   = "classify"
	OpTrain      = "train"
)

// Profiler tracks execution times per operation. Safe for concurrent use.
type Profiler struct {
	mu    sync.RWMutex
	times map[string][]time.Duration
}

// NewProfiler creates an empty profiler
func NewProfiler() *Profiler {
	return &Profiler{
		times: make(map[string][]time.Duration),
	}
}

// Timer measures one run of an operation
type Timer struct {
	profiler *Profiler
	name     string
	start    time.Time
}

// Start begins timing an operation
func (p *Profiler) Start(name string) *Timer {
	return &Timer{profiler: p, name: name, start: time.Now()}
}

// Stop records and returns the elapsed time
func (t *Timer) Stop() time.Duration {
	d := time.Since(t.start)
	t.profiler.Record(t.name, d)
	return d
}

// Record adds a sample
func (p *Profiler) Record(name string, d time.Duration) {
	p.mu.Lock()
	p.times[name] = append(p.times[name], d)
	p.mu.Unlock()
}

// Measure times fn and records the sample only when fn succeeds
func (p *Profiler) Measure(name string, fn func() error) error {
	start := time.Now()
	if err := fn(); err != nil {
		return err
	}
	p.Record(name, time.Since(start))
	return nil
}

// Stats summarizes the samples of one operation
type Stats struct {
	Name    string
	Count   int
	Total   time.Duration
	Average time.Duration
	Min     time.Duration
	Max     time.Duration
	Median  time.Duration
	P95     time.Duration
	P99     time.Duration
}

// Throughput is operations per second over the recorded total
func (s *Stats) Throughput() float64 {
	if s.Total <= 0 {
		return 0
	}
	return float64(s.Count) / s.Total.Seconds()
}

// GetStats summarizes one operation. An unknown name yields zero stats.
func (p *Profiler) GetStats(name string) *Stats {
	p.mu.RLock()
	sorted := append([]time.Duration(nil), p.times[name]...)
	p.mu.RUnlock()

	if len(sorted) == 0 {
		return &Stats{Name: name}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var total time.Duration
	for _, d := range sorted {
		total += d
	}

	n := len(sorted)
	return &Stats{
		Name:    name,
		Count:   n,
		Total:   total,
		Average: total / time.Duration(n),
		Min:     sorted[0],
		Max:     sorted[n-1],
		Median:  sorted[n/2],
		P95:     sorted[percentileIndex(n, 0.95)],
		P99:     sorted[percentileIndex(n, 0.99)],
	}
}

func percentileIndex(n int, q float64) int {
	i := int(float64(n) * q)
	if i >= n {
		i = n - 1
	}
	return i
}

// GetAllStats returns stats for every operation, sorted by name
func (p *Profiler) GetAllStats() []*Stats {
	p.mu.RLock()
	names := make([]string, 0, len(p.times))
	for name := range p.times {
		names = append(names, name)
	}
	p.mu.RUnlock()

	sort.Strings(names)

	stats := make([]*Stats, 0, len(names))
	for _, name := range names {
		stats = append(stats, p.GetStats(name))
	}
	return stats
}

// Reset drops all samples
func (p *Profiler) Reset() {
	p.mu.Lock()
	p.times = make(map[string][]time.Duration)
	p.mu.Unlock()
}

// WriteReport renders a latency table for every recorded operation
func (p *Profiler) WriteReport(w io.Writer) {
	stats := p.GetAllStats()
	if len(stats) == 0 {
		fmt.Fprintln(w, "No timing data available")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Operation", "Count", "Avg", "Min", "Median", "Max", "P95", "P99", "Ops/s"})
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetBorder(false)

	for _, s := range stats {
		table.Append([]string{
			s.Name,
			fmt.Sprintf("%d", s.Count),
			formatDuration(s.Average),
			formatDuration(s.Min),
			formatDuration(s.Median),
			formatDuration(s.Max),
			formatDuration(s.P95),
			formatDuration(s.P99),
			fmt.Sprintf("%.0f", s.Throughput()),
		})
	}
	table.Render()
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	case d < time.Millisecond:
		return fmt.Sprintf("%.1fµs", float64(d.Nanoseconds())/1e3)
	case d < time.Second:
		return fmt.Sprintf("%.2fms", float64(d.Nanoseconds())/1e6)
	default:
		return fmt.Sprintf("%.3fs", d.Seconds())
	}
}
