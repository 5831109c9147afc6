package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"rowexec/pkg/database"
	"rowexec/pkg/ui"
)

// BenchmarkResult captures timing statistics for one demo plan.
type BenchmarkResult struct {
	Plan             string        `json:"plan"`
	Iterations       int           `json:"iterations"`
	Concurrency      int           `json:"concurrency"`
	TotalDuration    time.Duration `json:"total_duration_ns"`
	AvgDuration      time.Duration `json:"avg_duration_ns"`
	MinDuration      time.Duration `json:"min_duration_ns"`
	MaxDuration      time.Duration `json:"max_duration_ns"`
	MedianDuration   time.Duration `json:"median_duration_ns"`
	P95Duration      time.Duration `json:"p95_duration_ns"`
	P99Duration      time.Duration `json:"p99_duration_ns"`
	QueriesPerSecond float64       `json:"queries_per_second"`
	SuccessCount     int           `json:"success_count"`
	ErrorCount       int           `json:"error_count"`
	ErrorSamples     []string      `json:"error_samples,omitempty"`
}

func newBenchCommand() *cobra.Command {
	var (
		flags       demoFlags
		iterations  int
		concurrency int
		jsonPath    string
	)
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Time every demonstration plan over repeated executions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if iterations < 1 || concurrency < 1 {
				return fmt.Errorf("iterations and concurrency must be positive")
			}
			s, err := flags.open()
			if err != nil {
				return err
			}
			defer s.Close()

			results := make([]BenchmarkResult, 0, len(s.demos))
			for _, d := range s.demos {
				results = append(results, runBenchmark(cmd.Context(), s.db, d, iterations, concurrency))
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.RenderTable(benchmarkTable(results)))

			if jsonPath == "" {
				return nil
			}
			data, err := json.MarshalIndent(results, "", "  ")
			if err != nil {
				return err
			}
			return os.WriteFile(jsonPath, data, 0o600)
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVarP(&iterations, "iterations", "n", 100, "executions per plan")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "connections running a plan at once")
	cmd.Flags().StringVar(&jsonPath, "json", "", "write the results to this JSON file")
	return cmd
}

// runBenchmark executes d iterations times, at most concurrency at once,
// each on a fresh connection. Plan failures are counted, not returned.
func runBenchmark(ctx context.Context, db *database.Database, d demo, iterations, concurrency int) BenchmarkResult {
	if ctx == nil {
		ctx = context.Background()
	}
	var (
		mu        sync.Mutex
		durations = make([]time.Duration, 0, iterations)
		failures  []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	start := time.Now()
	for n := 0; n < iterations; n++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			conn := db.Connect()
			defer conn.Close()

			began := time.Now()
			_, err := database.Materialize(conn.Run(d.build))
			elapsed := time.Since(began)

			mu.Lock()
			durations = append(durations, elapsed)
			if err != nil {
				failures = append(failures, err)
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	res := summarize(durations, time.Since(start))
	res.Plan = d.title
	res.Concurrency = concurrency
	res.ErrorCount = len(failures)
	res.SuccessCount = len(durations) - len(failures)
	for _, err := range failures {
		if len(res.ErrorSamples) == 5 {
			break
		}
		res.ErrorSamples = append(res.ErrorSamples, err.Error())
	}
	return res
}

// summarize computes the timing statistics of one benchmark.
func summarize(durations []time.Duration, total time.Duration) BenchmarkResult {
	res := BenchmarkResult{Iterations: len(durations), TotalDuration: total}
	if len(durations) == 0 {
		return res
	}
	sorted := slices.Clone(durations)
	slices.Sort(sorted)

	var sum time.Duration
	for _, d := range sorted {
		sum += d
	}
	n := len(sorted)
	res.AvgDuration = sum / time.Duration(n)
	res.MinDuration = sorted[0]
	res.MaxDuration = sorted[n-1]
	res.MedianDuration = sorted[n/2]
	res.P95Duration = sorted[min(n-1, int(float64(n)*0.95))]
	res.P99Duration = sorted[min(n-1, int(float64(n)*0.99))]
	if total > 0 {
		res.QueriesPerSecond = float64(n) / total.Seconds()
	}
	return res
}

// formatDuration formats a duration in a human-readable way with appropriate units.
// Examples: 1.23ms, 456.78µs, 12.34s
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%.2fms", float64(d.Microseconds())/1000.0)
	case d >= time.Microsecond:
		return fmt.Sprintf("%.2fµs", float64(d.Nanoseconds())/1000.0)
	default:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
}

func benchmarkTable(results []BenchmarkResult) database.QueryResult {
	res := database.QueryResult{
		Columns: []string{"plan", "runs", "avg", "min", "p50", "p95", "p99", "max", "qps", "errors"},
		Message: fmt.Sprintf("%d plan(s) benchmarked", len(results)),
	}
	for _, r := range results {
		res.Rows = append(res.Rows, []string{
			r.Plan,
			fmt.Sprint(r.Iterations),
			formatDuration(r.AvgDuration),
			formatDuration(r.MinDuration),
			formatDuration(r.MedianDuration),
			formatDuration(r.P95Duration),
			formatDuration(r.P99Duration),
			formatDuration(r.MaxDuration),
			fmt.Sprintf("%.0f", r.QueriesPerSecond),
			fmt.Sprint(r.ErrorCount),
		})
	}
	return res
}
