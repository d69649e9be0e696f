package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/chroma-ingest/pkg/config"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CHROMA_MACHINE_FILE", filepath.Join(dir, "machine.txt"))
	t.Setenv("CHROMA_DATABASE_FILE", filepath.Join(dir, "db.txt"))
	t.Setenv("CHROMA_LOG_DIR", dir)
	t.Setenv("METRICS_TEXTFILE", filepath.Join(dir, "chromaingest.prom"))
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestConfigCommands(t *testing.T) {
	dir := setupEnv(t)

	_, err := run(t, "config", "save", "--machine-id", "LC-2050-01", "--test-code", "10004")
	require.NoError(t, err)
	_, err = run(t, "config", "db", "--host", "lab-db", "--user", "lims", "--password", "pw", "--database", "results")
	require.NoError(t, err)

	out, err := run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "machine_id:  LC-2050-01")
	assert.Contains(t, out, "lab-db:5432")
	assert.NotContains(t, out, "pw")

	m, err := config.LoadMachineFile(filepath.Join(dir, "machine.txt"))
	require.NoError(t, err)
	assert.Equal(t, "10004", m.TestCode)
}

func TestAssayDryRun(t *testing.T) {
	dir := setupEnv(t)
	require.NoError(t, config.SaveMachineFile(filepath.Join(dir, "machine.txt"), config.MachineConfig{MachineID: "LC-9"}))

	report := filepath.Join(dir, "run1.txt")
	require.NoError(t, os.WriteFile(report, []byte("Title\nPeakA\nRet. Time\n4.52\nArea\n10234.1\n"), 0o644))
	csvPath := filepath.Join(dir, "preview.csv")

	out, err := run(t, "assay", "--mode", "single", "--uid", "U-1", "--user", "analyst", "--test-code", "10003",
		"--dry-run", "--preview-csv", csvPath, report)
	require.NoError(t, err)
	assert.Contains(t, out, "run1.txt")
	assert.Contains(t, out, "extracted")

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "LC-9,U-1,analyst,10003,"))

	m, err := config.LoadMachineFile(filepath.Join(dir, "machine.txt"))
	require.NoError(t, err)
	assert.Empty(t, m.TestCode, "dry runs do not save the test code")

	_, err = os.Stat(filepath.Join(dir, "chromaingest.prom"))
	assert.NoError(t, err)
}

func TestAssayValidation(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "assay", "--uid", "U-1", "--dry-run", "missing.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user_id")

	_, err = run(t, "assay", "--mode", "triple", "--uid", "U", "--user", "a", "x.txt")
	assert.Error(t, err)
}

func TestDissolutionStageFlag(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "dissolution", "--uid", "U", "--user", "a", "--test-code", "10010",
		"--component", "single", "--release", "immediate", "--stage", "V1", "--dry-run", "x.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "S1, S2, S3")
}
