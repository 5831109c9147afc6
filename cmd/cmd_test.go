package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rowexec/pkg/config"
	"rowexec/pkg/memory"
	"rowexec/pkg/storage"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func demoSessionForTest(t *testing.T) *demoSession {
	t.Helper()
	cfg = config.Default()
	s, err := openDemoSession("", "")
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func findDemo(t *testing.T, s *demoSession, title string) demo {
	t.Helper()
	for _, d := range s.demos {
		if d.title == title {
			return d
		}
	}
	t.Fatalf("demo %q not registered", title)
	return demo{}
}

// ============================================================================
// Commands
// ============================================================================

func TestFunctionsCommand(t *testing.T) {
	out, err := execute(t, "functions")
	require.NoError(t, err)
	assert.Contains(t, out, "upper")
	assert.Contains(t, out, "overload(s)")

	out, err = execute(t, "functions", "upper")
	require.NoError(t, err)
	assert.Contains(t, out, "upper(")

	_, err = execute(t, "functions", "no_such_function")
	assert.Error(t, err)
}

func TestCastCostCommand(t *testing.T) {
	out, err := execute(t, "cast-cost", "INTEGER", "INTEGER")
	require.NoError(t, err)
	assert.Equal(t, "INTEGER -> INTEGER: 0\n", out)

	_, err = execute(t, "cast-cost", "INTEGER", "WIDGET")
	assert.Error(t, err)

	_, err = execute(t, "cast-cost", "INTEGER")
	assert.Error(t, err)
}

func TestRunCommand(t *testing.T) {
	out, err := execute(t, "run")
	require.NoError(t, err)
	for _, title := range []string{"group by count", "left join", "union", "window", "top-n"} {
		assert.Contains(t, out, title)
	}
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, "1299.99")

	out, err = execute(t, "run", "--parallel")
	require.NoError(t, err)
	assert.Contains(t, out, "7 row(s) returned")

	_, err = execute(t, "run", "--fixtures", "/nonexistent/fixtures.yaml")
	assert.Error(t, err)
}

// ============================================================================
// Demo plans
// ============================================================================

func TestDemoPlans(t *testing.T) {
	s := demoSessionForTest(t)

	tests := []struct {
		title    string
		rows     int
		firstRow []string
	}{
		{title: "top-n", rows: 3, firstRow: []string{"1", "1", "1299.99", "2024-01-15"}},
		{title: "left join", rows: 7},
		{title: "union", rows: 7},
		{title: "window", rows: 7},
		{title: "group by count", rows: 5},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			p := runDemo(s.db, findDemo(t, s, tt.title))
			require.NoError(t, p.Err)
			assert.NotEmpty(t, p.Plan)
			assert.Len(t, p.Result.Rows, tt.rows)
			if tt.firstRow != nil {
				assert.Equal(t, tt.firstRow, p.Result.Rows[0])
			}
		})
	}
}

func TestDemoPlans_GroupByCount(t *testing.T) {
	s := demoSessionForTest(t)
	p := runDemo(s.db, findDemo(t, s, "group by count"))
	require.NoError(t, p.Err)

	byUser := map[string][]string{}
	for _, r := range p.Result.Rows {
		byUser[r[0]] = r[1:]
	}
	assert.Equal(t, []string{"3", "1392.48"}, byUser["1"])
	assert.Equal(t, []string{"1", "5.00"}, byUser["NULL"])
}

func TestDemoPlans_LeftJoinPadsMissingOrders(t *testing.T) {
	s := demoSessionForTest(t)
	p := runDemo(s.db, findDemo(t, s, "left join"))
	require.NoError(t, p.Err)

	var eve []string
	for _, r := range p.Result.Rows {
		if r[1] == "Eve" {
			eve = r
		}
	}
	require.NotNil(t, eve)
	assert.Equal(t, []string{"NULL", "NULL", "NULL", "NULL"}, eve[3:])
}

func TestDemoPlans_OnlyForLoadedTables(t *testing.T) {
	store := storage.NewStore(memory.NewManager(0, 0).NewAccount("cmd", "tables"))
	assert.Empty(t, demoPlans(store))

	_, err := storage.LoadFixturesFrom(store, strings.NewReader(
		"tables:\n  - name: orders\n    columns:\n      - {name: user_id, type: INTEGER}\n      - {name: amount, type: INTEGER}\n"))
	require.NoError(t, err)
	assert.Len(t, demoPlans(store), 3)
}

// ============================================================================
// Benchmarks
// ============================================================================

func TestSummarize(t *testing.T) {
	durations := make([]time.Duration, 0, 100)
	for i := 100; i >= 1; i-- {
		durations = append(durations, time.Duration(i)*time.Millisecond)
	}
	res := summarize(durations, 2*time.Second)

	assert.Equal(t, 100, res.Iterations)
	assert.Equal(t, time.Millisecond, res.MinDuration)
	assert.Equal(t, 100*time.Millisecond, res.MaxDuration)
	assert.Equal(t, 51*time.Millisecond, res.MedianDuration)
	assert.Equal(t, 96*time.Millisecond, res.P95Duration)
	assert.Equal(t, 100*time.Millisecond, res.P99Duration)
	assert.Equal(t, 50500*time.Microsecond, res.AvgDuration)
	assert.InDelta(t, 50.0, res.QueriesPerSecond, 1e-9)
	assert.Equal(t, 100*time.Millisecond, durations[0], "input left unsorted")

	assert.Zero(t, summarize(nil, time.Second).Iterations)
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{1500 * time.Millisecond, "1.50s"},
		{1230 * time.Microsecond, "1.23ms"},
		{4500 * time.Nanosecond, "4.50µs"},
		{12, "12ns"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.in))
	}
}

func TestRunBenchmark(t *testing.T) {
	s := demoSessionForTest(t)
	res := runBenchmark(context.Background(), s.db, findDemo(t, s, "top-n"), 20, 4)
	assert.Equal(t, 20, res.Iterations)
	assert.Equal(t, 20, res.SuccessCount)
	assert.Zero(t, res.ErrorCount)
	assert.Equal(t, "top-n", res.Plan)

	_, err := s.db.Store().DropTable("orders")
	require.NoError(t, err)
	res = runBenchmark(context.Background(), s.db, findDemo(t, s, "top-n"), 7, 2)
	assert.Equal(t, 7, res.ErrorCount)
	assert.Zero(t, res.SuccessCount)
	assert.Len(t, res.ErrorSamples, 5)
}
