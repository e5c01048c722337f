package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/property-zones/internal/config"
	"github.com/sells-group/property-zones/internal/export"
	"github.com/sells-group/property-zones/internal/pipeline"
)

// inTempDir runs the test from an empty directory so config.yaml and .env
// come only from what the test writes.
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"run", "classify", "cache", "serve"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "property-zones", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestCacheCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range cacheCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"stats", "clear", "forget-failed"} {
		assert.True(t, names[name], "expected cache subcommand %q not found", name)
	}
}

func TestRunCommand_Flags(t *testing.T) {
	for _, name := range []string{"output-dir", "area", "xlsx", "geojson", "shapefile", "retry-negative"} {
		assert.NotNil(t, runCmd.Flags().Lookup(name), "run command should have --%s flag", name)
	}
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestApplyRunFlags(t *testing.T) {
	require.NoError(t, runCmd.Flags().Set("output-dir", "custom"))
	require.NoError(t, runCmd.Flags().Set("xlsx", "true"))
	t.Cleanup(func() {
		_ = runCmd.Flags().Set("output-dir", "")
		_ = runCmd.Flags().Set("xlsx", "false")
		runCmd.Flags().Lookup("output-dir").Changed = false
		runCmd.Flags().Lookup("xlsx").Changed = false
	})

	c := &config.Config{}
	c.Output.Dir = "data/outputs"
	c.Zones.Area = "san_antonio"
	applyRunFlags(runCmd, c)

	assert.Equal(t, "custom", c.Output.Dir)
	assert.True(t, c.Output.XLSX)
	assert.Equal(t, "san_antonio", c.Zones.Area, "unset flags keep config values")
}

func TestClassifyCommand(t *testing.T) {
	inTempDir(t)

	out, err := execute(t, "classify", "29.9", "-98.45")
	require.NoError(t, err)
	assert.Equal(t, "north\n", out)

	out, err = execute(t, "classify", "40", "-98")
	require.NoError(t, err)
	assert.Equal(t, "unassigned\n", out)
}

func TestClassifyCommand_BadInput(t *testing.T) {
	inTempDir(t)

	_, err := execute(t, "classify", "north", "-98")
	assert.Error(t, err)
}

func TestRunCommand_EndToEnd(t *testing.T) {
	dir := inTempDir(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Query().Get("q"), "1 ") {
			_, _ = io.WriteString(w, `[{"lat":"29.9","lon":"-98.45"}]`)
			return
		}
		_, _ = io.WriteString(w, `[]`)
	}))
	defer srv.Close()

	yaml := "geocode:\n  min_delay: 0s\n  max_attempts: 1\n  nominatim_url: " + srv.URL + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "input.csv"), []byte("Address,City\n1 Main St,San Antonio\n2 Elm St,San Antonio\n"), 0o644))

	out, err := execute(t, "run", "input.csv")
	require.NoError(t, err)

	var stats pipeline.Stats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.North)
	assert.Equal(t, 1, stats.Unassigned)

	assert.FileExists(t, filepath.Join(dir, "data", "outputs", export.AllFileName))
	assert.FileExists(t, filepath.Join(dir, "data", "geocode_cache.csv"))

	out, err = execute(t, "cache", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "entries: 2")
	assert.Contains(t, out, "failed: 1")

	out, err = execute(t, "cache", "forget-failed")
	require.NoError(t, err)
	assert.Contains(t, out, "removed 1 failed entries")

	out, err = execute(t, "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "removed 1 entries")
}
