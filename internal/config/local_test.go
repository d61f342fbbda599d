package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/envset/internal/testutil"
	"github.com/leapstack-labs/envset/pkg/vars"
)

const localYAML = `setups:
  api:
    public_env_dir: env
    file: run.sh
    array_vars:
      all: .*
      db:
        pattern: ^DB_
        case: snake_case
    vars:
      - SETUP_NAME
      - EXTRA
  worker:
    file: worker.sh
`

func writeLocal(t *testing.T, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), LocalFileName)
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))
	return file
}

func TestLoadLocal(t *testing.T) {
	file := writeLocal(t, localYAML)

	store, err := LoadLocal(file, testutil.NewTestLogger(t))
	require.NoError(t, err)
	assert.Equal(t, file, store.File())
	assert.Equal(t, filepath.Dir(file), store.Dir())
	assert.Equal(t, []string{"api", "worker"}, store.Names())

	api, ok := store.Setup("api")
	require.True(t, ok)
	assert.Equal(t, "env", api.PublicEnvDir)
	assert.Equal(t, "run.sh", api.File)
	assert.Equal(t, vars.Vars{"SETUP_NAME", "EXTRA"}, api.Vars)
	require.Len(t, api.ArrayVars, 2)
	assert.Equal(t, vars.CaseSnake, api.ArrayVars[1].Case)

	worker, ok := store.Setup("worker")
	require.True(t, ok)
	assert.Empty(t, worker.PublicEnvDir)
	assert.Nil(t, worker.ArrayVars)
}

func TestLoadLocal_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "unknown field", content: "setups: {}\nother: 1\n"},
		{name: "missing file", content: "setups:\n  api:\n    public_env_dir: env\n"},
		{name: "bad yaml", content: "setups: [\n"},
		{name: "duplicate setup", content: "setups:\n  a:\n    file: a.sh\n  a:\n    file: b.sh\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadLocal(writeLocal(t, tt.content), nil)
			assert.Error(t, err)
		})
	}

	_, err := LoadLocal("relative.yaml", nil)
	assert.ErrorIs(t, err, ErrRelativePath)
}

func TestLocal_SaveRoundTrip(t *testing.T) {
	file := writeLocal(t, localYAML)
	store, err := LoadLocal(file, nil)
	require.NoError(t, err)
	require.NoError(t, store.Save())

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, localYAML, string(data))
}

func TestNewLocal(t *testing.T) {
	file := filepath.Join(t.TempDir(), "sub", LocalFileName)

	store, err := NewLocal(file, nil)
	require.NoError(t, err)
	assert.True(t, store.Add(NewLocalSetup("api", "run.sh")))
	require.NoError(t, store.Save())

	_, err = NewLocal(file, nil)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	loaded, err := LoadLocal(file, nil)
	require.NoError(t, err)
	api, ok := loaded.Setup("api")
	require.True(t, ok)
	assert.Equal(t, vars.DefaultArrayVars(), api.ArrayVars)
	assert.Equal(t, vars.DefaultVars(), api.Vars)
}

// Adding a setup whose name exists is a silent no-op rather than an error.
func TestLocal_AddDuplicateIsNoOp(t *testing.T) {
	store, err := NewLocal(filepath.Join(t.TempDir(), LocalFileName), nil)
	require.NoError(t, err)

	assert.True(t, store.Add(LocalSetup{Name: "api", File: "a.sh"}))
	assert.False(t, store.Add(LocalSetup{Name: "api", File: "b.sh"}))

	api, _ := store.Setup("api")
	assert.Equal(t, "a.sh", api.File)
	assert.Len(t, store.Setups(), 1)
}

func TestLocal_RemoveRename(t *testing.T) {
	store, err := LoadLocal(writeLocal(t, localYAML), nil)
	require.NoError(t, err)

	require.NoError(t, store.Rename("api", "backend"))
	assert.Equal(t, []string{"backend", "worker"}, store.Names())
	backend, _ := store.Setup("backend")
	assert.Equal(t, "env", backend.PublicEnvDir)

	assert.ErrorIs(t, store.Rename("missing", "x"), ErrSetupNotFound)
	assert.ErrorIs(t, store.Rename("backend", "worker"), ErrSetupAlreadyExists)

	store.RemoveByName("worker")
	store.RemoveByName("worker")
	assert.Equal(t, []string{"backend"}, store.Names())
}

func TestLocal_Update(t *testing.T) {
	store, err := LoadLocal(writeLocal(t, localYAML), nil)
	require.NoError(t, err)

	err = store.Update("api", func(s *LocalSetup) error {
		s.Name = "ignored"
		return s.UnsetPublicEnvDir()
	})
	require.NoError(t, err)
	api, ok := store.Setup("api")
	require.True(t, ok)
	assert.Empty(t, api.PublicEnvDir)

	err = store.Update("api", func(s *LocalSetup) error { return s.UnsetPublicEnvDir() })
	assert.ErrorIs(t, err, ErrPublicEnvDirAlreadyUnset)

	assert.ErrorIs(t, store.Update("missing", func(*LocalSetup) error { return nil }), ErrSetupNotFound)
}

func TestLocal_SetupsAreCopies(t *testing.T) {
	store, err := LoadLocal(writeLocal(t, localYAML), nil)
	require.NoError(t, err)

	api, _ := store.Setup("api")
	api.Vars.Add("LEAK")
	api.File = "changed.sh"

	again, _ := store.Setup("api")
	assert.Equal(t, "run.sh", again.File)
	assert.False(t, again.Vars.Has("LEAK"))
}

func TestFindLocal(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, LocalFileName)
	require.NoError(t, os.WriteFile(file, []byte("setups: {}\n"), 0o644))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o750))

	got, err := FindLocal(nested, LocalFileName)
	require.NoError(t, err)
	assert.Equal(t, file, got)

	_, err = FindLocal(nested, "does-not-exist.yaml")
	assert.ErrorIs(t, err, ErrLocalNotFound)
}
