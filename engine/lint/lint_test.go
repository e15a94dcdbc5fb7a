package lint

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-sdf/engine/gpu"
	"github.com/Carmen-Shannon/oxy-sdf/engine/gpu/gputest"
	"github.com/Carmen-Shannon/oxy-sdf/engine/renderer/shader"
)

const sphereSrc = "float map(vec3 p){ return length(p)-1.0; }"

func writeFiles(t *testing.T, files map[string]string) map[string]string {
	t.Helper()
	dir := t.TempDir()
	paths := make(map[string]string, len(files))
	for name, src := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
		paths[name] = path
	}
	return paths
}

func TestCheckFilesValidationOnly(t *testing.T) {
	paths := writeFiles(t, map[string]string{
		"good.glsl": sphereSrc,
		"main.glsl": "void main(){}",
		"both.glsl": "#version 330\nuniform float t;\n",
	})
	order := []string{paths["good.glsl"], paths["main.glsl"], filepath.Join(filepath.Dir(paths["good.glsl"]), "missing.glsl"), paths["both.glsl"]}

	got := NewChecker(WithWorkers(2)).CheckFiles(order)

	require.Len(t, got, 4)
	for i, r := range got {
		assert.Equal(t, order[i], r.File)
	}
	assert.Empty(t, got[0].Diagnostics)
	assert.NotNil(t, got[0].Diagnostics)

	require.Len(t, got[1].Diagnostics, 1)
	assert.Equal(t, shader.KindValidation, got[1].Diagnostics[0].Kind)

	require.Len(t, got[2].Diagnostics, 1)
	assert.Equal(t, shader.KindInternal, got[2].Diagnostics[0].Kind)
	assert.Contains(t, got[2].Diagnostics[0].Message, "missing.glsl")

	assert.Len(t, got[3].Diagnostics, 2)
}

func TestCheckFilesRunsGPUStageOnlyForValidFiles(t *testing.T) {
	tmpl := shader.MustTemplate(shader.TemplateGL)
	dev := gputest.NewDevice()
	dev.FragmentFunc = func(source string) gputest.Outcome {
		if strings.Contains(source, "broken") {
			return gputest.Outcome{Fail: true, Log: fmt.Sprintf("ERROR: 0:%d: 'broken' : undeclared identifier\n", tmpl.Offset()+1)}
		}
		return gputest.Outcome{}
	}
	sources := map[string]string{
		"a.glsl": sphereSrc,
		"b.glsl": "float map(vec3 p){ return broken; }",
		"c.glsl": "void main(){}",
	}
	read := func(path string) ([]byte, error) {
		if src, ok := sources[path]; ok {
			return []byte(src), nil
		}
		return nil, errors.New("no such file")
	}

	got := NewChecker(WithCompiler(dev), WithReadFile(read), WithTemplate(tmpl)).CheckFiles([]string{"a.glsl", "b.glsl", "c.glsl"})

	require.Len(t, got, 3)
	assert.Empty(t, got[0].Diagnostics)
	require.Len(t, got[1].Diagnostics, 1)
	assert.Equal(t, shader.KindFragment, got[1].Diagnostics[0].Kind)
	assert.Equal(t, 0, got[1].Diagnostics[0].Line)
	assert.Equal(t, "'broken' : undeclared identifier", got[1].Diagnostics[0].Message)
	require.Len(t, got[2].Diagnostics, 1)
	assert.Equal(t, shader.KindValidation, got[2].Diagnostics[0].Kind)

	assert.Len(t, dev.Sources(gpu.StageFragment), 2)
	assert.Empty(t, dev.LivePrograms())
	assert.Empty(t, dev.LiveShaders())
}

func TestCheckFilesManyFiles(t *testing.T) {
	var mu sync.Mutex
	reads := 0
	read := func(path string) ([]byte, error) {
		mu.Lock()
		reads++
		mu.Unlock()
		return []byte(sphereSrc), nil
	}
	paths := make([]string, 300)
	for i := range paths {
		paths[i] = fmt.Sprintf("s%03d.glsl", i)
	}

	got := NewChecker(WithWorkers(8), WithReadFile(read)).CheckFiles(paths)

	require.Len(t, got, 300)
	assert.Equal(t, 300, reads)
	assert.Equal(t, "s299.glsl", got[299].File)
}

func TestCheckFilesEmpty(t *testing.T) {
	assert.Empty(t, NewChecker().CheckFiles(nil))
}

func TestCheckSource(t *testing.T) {
	dev := gputest.NewDevice()
	dev.Link = gputest.Outcome{Fail: true, Log: "link failed"}

	got := NewChecker(WithCompiler(dev)).CheckSource("inline", sphereSrc)

	assert.Equal(t, "inline", got.File)
	require.Len(t, got.Diagnostics, 1)
	assert.Equal(t, shader.KindLink, got.Diagnostics[0].Kind)
	assert.True(t, got.Failed())
}
