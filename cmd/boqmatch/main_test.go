package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"yashubustudio/boqmatch/config"
	"yashubustudio/boqmatch/reconcile"
)

const testDrawing = `{
  "units": 6,
  "entities": [
    {"type": "LINE", "layer": "A-TABIQUE", "start": {"x": 0, "y": 0}, "end": {"x": 10, "y": 0}}
  ]
}`

const testItems = "Descripción;Unidad;Cantidad\n" +
	"Tabique volcanita h=2,6;m2;25\n" +
	"Instalación de faena;gl;1\n"

func setup(t *testing.T) string {
	t.Helper()
	cfg = config.DefaultConfig()
	logger = zap.NewNop()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plan.json"), []byte(testDrawing), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "items.csv"), []byte(testItems), 0o644))
	return dir
}

func TestRunReconcileWritesCSV(t *testing.T) {
	dir := setup(t)
	out := filepath.Join(dir, "out", "report.csv")
	var stdout bytes.Buffer
	err := runReconcile(context.Background(), reconcileOptions{
		drawingPath: filepath.Join(dir, "plan.json"),
		itemsPath:   filepath.Join(dir, "items.csv"),
		outputPath:  out,
		format:      "csv",
		stdout:      true,
	}, &stdout)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "report written to")
	assert.Contains(t, stdout.String(), "items=2 approved=2")

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "final_quantity", records[0][11])
	assert.Equal(t, "A-TABIQUE", records[1][10])
	qty, err := strconv.ParseFloat(records[1][11], 64)
	require.NoError(t, err)
	assert.InDelta(t, 26.0, qty, 1e-9)
	assert.Equal(t, "approved", records[1][14])
}

func TestRunReconcileJSONToStdout(t *testing.T) {
	dir := setup(t)
	var stdout bytes.Buffer
	err := runReconcile(context.Background(), reconcileOptions{
		drawingPath: filepath.Join(dir, "plan.json"),
		itemsPath:   filepath.Join(dir, "items.csv"),
		outputPath:  "-",
		format:      "JSON",
	}, &stdout)
	require.NoError(t, err)

	var rep reconcile.Report
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &rep))
	assert.Equal(t, "plan.json", rep.Source)
	assert.Equal(t, 2, rep.Summary.Approved)
}

func TestRunReconcileErrors(t *testing.T) {
	dir := setup(t)
	opts := reconcileOptions{
		drawingPath: filepath.Join(dir, "plan.json"),
		itemsPath:   filepath.Join(dir, "items.csv"),
		outputPath:  "-",
		format:      "xlsx",
	}
	assert.ErrorContains(t, runReconcile(context.Background(), opts, &bytes.Buffer{}), "unknown format")

	opts.format = "csv"
	opts.drawingPath = filepath.Join(dir, "missing.json")
	err := runReconcile(context.Background(), opts, &bytes.Buffer{})
	assert.ErrorIs(t, err, os.ErrNotExist)

	opts.drawingPath = filepath.Join(dir, "plan.json")
	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	opts.itemsPath = empty
	assert.Error(t, runReconcile(context.Background(), opts, &bytes.Buffer{}))
}

func TestResolveOutputPath(t *testing.T) {
	dir := t.TempDir()
	path, err := resolveOutputPath("", filepath.Join(dir, "reports"), "json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "reports"), filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "result_"))
	assert.Equal(t, ".json", filepath.Ext(path))

	explicit := filepath.Join(dir, "a", "b", "r.csv")
	path, err = resolveOutputPath(explicit, "", "csv")
	require.NoError(t, err)
	assert.Equal(t, explicit, path)
	assert.DirExists(t, filepath.Join(dir, "a", "b"))
}

func TestRunProfile(t *testing.T) {
	dir := setup(t)
	var out bytes.Buffer
	require.NoError(t, runProfile(filepath.Join(dir, "plan.json"), &out))

	var got profileOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got.Profiles, 1)
	assert.Equal(t, "A-TABIQUE", got.Profiles[0].Name)
	assert.InDelta(t, 10.0, got.Profiles[0].TotalLength, 1e-9)
}

func TestRunClassify(t *testing.T) {
	setup(t)
	var out bytes.Buffer
	require.NoError(t, runClassify("Luminaria LED", "un", "", &out))
	assert.Contains(t, out.String(), "intent:     count")
	assert.Contains(t, out.String(), "subtype:    fixture")
}

func TestRunInitRules(t *testing.T) {
	setup(t)
	path := filepath.Join(t.TempDir(), "rules.yaml")
	var out bytes.Buffer
	require.NoError(t, runInitRules(path, false, &out))
	assert.FileExists(t, path)
	assert.ErrorContains(t, runInitRules(path, false, &out), "--force")
	assert.NoError(t, runInitRules(path, true, &out))
}

func TestNewLogger(t *testing.T) {
	l, err := newLogger("warn", false)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))

	l, err = newLogger("warn", true)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	_, err = newLogger("loud", false)
	assert.Error(t, err)
}

func TestSummarizeText(t *testing.T) {
	assert.Equal(t, "a b", summarizeText(" a \n b ", 10))
	assert.Equal(t, "abcd…", summarizeText("abcdefgh", 5))
}
