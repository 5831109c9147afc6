package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_WritesJSONToFile(t *testing.T) {
	require.NoError(t, Close())
	path := filepath.Join(t.TempDir(), "logs", "rowexec.log")

	require.NoError(t, Init(Config{Level: LevelDebug, OutputPath: path, Format: "json"}))
	WithOperator("SortExec").Debug("materialized", "rows", 3)
	require.NoError(t, Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"operator":"SortExec"`)
	assert.Contains(t, string(data), `"rows":3`)
}

func TestInit_Twice(t *testing.T) {
	require.NoError(t, Close())
	require.NoError(t, Init(Config{Level: LevelInfo}))
	defer Close()

	assert.Error(t, Init(Config{Level: LevelInfo}))
}

func TestGetLogger_LazyDefault(t *testing.T) {
	require.NoError(t, Close())
	defer Close()

	assert.NotNil(t, GetLogger())
	assert.NotNil(t, WithComponent("memory"))
}

func TestSetLogger_Nop(t *testing.T) {
	SetLogger(NewNop())
	defer Close()

	Info("discarded", "k", "v")
	assert.NotNil(t, GetLogger())
}
