package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-sdf/engine/report"
)

// missingConfig points -config at a file that does not exist so the user's own config never leaks in.
func missingConfig(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "none.toml")
}

func writeFile(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestRunUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, exitError, run(nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "usage:")

	stderr.Reset()
	assert.Equal(t, exitError, run([]string{"paint"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), `unknown command "paint"`)

	assert.Equal(t, exitOK, run([]string{"help"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "oxy-sdf check")
}

func TestCheckPassing(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.glsl", "float map(vec3 p){ return length(p)-1.0; }")
	var stdout, stderr bytes.Buffer

	code := run([]string{"check", "-config", missingConfig(t), good}, &stdout, &stderr)

	assert.Equal(t, exitOK, code, stderr.String())
	assert.Equal(t, "ok: 1 file(s) checked\n", stdout.String())
}

func TestCheckReportsValidationFailures(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.glsl", "float map(vec3 p){ return length(p)-1.0; }")
	bad := writeFile(t, dir, "bad.glsl", "void main(){}")
	var stdout, stderr bytes.Buffer

	code := run([]string{"check", "-config", missingConfig(t), "-color=false", good, bad}, &stdout, &stderr)

	assert.Equal(t, exitDiagnostics, code)
	assert.Contains(t, stdout.String(), bad+": error[validation]: entry point must be `mainImage`")
	assert.NotContains(t, stdout.String(), good+":")
	assert.Contains(t, stdout.String(), "1 of 2 file(s) failed")
}

func TestCheckJSON(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.glsl", "#version 450\nfloat map(vec3 p){ return 1.0; }")
	var stdout, stderr bytes.Buffer

	code := run([]string{"check", "-config", missingConfig(t), "-json", "-workers", "2", bad}, &stdout, &stderr)

	assert.Equal(t, exitDiagnostics, code)
	var results []report.FileResult
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, bad, results[0].File)
	require.Len(t, results[0].Diagnostics, 1)
	assert.Equal(t, "version directive is reserved to the template", results[0].Diagnostics[0].Message)
}

func TestCheckArgumentErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, exitError, run([]string{"check", "-config", missingConfig(t)}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "expected at least one shader file")

	stderr.Reset()
	assert.Equal(t, exitError, run([]string{"check", "-config", missingConfig(t), "-gpu", "metal", "x.glsl"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "check.gpu")

	stderr.Reset()
	assert.Equal(t, exitOK, run([]string{"check", "-h"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "-json")
}

func TestCheckUsesConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.toml", "[renderer]\ntemplate = \"teapot\"\n")
	good := writeFile(t, dir, "good.glsl", "float map(vec3 p){ return 1.0; }")
	var stdout, stderr bytes.Buffer

	code := run([]string{"check", "-config", cfgPath, good}, &stdout, &stderr)

	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr.String(), "invalid config")
}

func TestConfigPrintsEffectiveSettings(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run([]string{"config", "-config", missingConfig(t), "-log", "debug"}, &stdout, &stderr)

	require.Equal(t, exitOK, code, stderr.String())
	assert.Contains(t, stdout.String(), "[window]")
	assert.Regexp(t, `level = ['"]debug['"]`, stdout.String())
}

func TestRunLiveArgumentErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, exitError, run([]string{"run", "-config", missingConfig(t)}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "exactly one shader file")

	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.toml", "[renderer]\ntemplate = \"vulkan\"\n")
	stderr.Reset()
	assert.Equal(t, exitError, run([]string{"run", "-config", cfgPath, "scene.glsl"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "needs the \"gl\" template")
}
