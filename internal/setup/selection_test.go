package setup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelection(t *testing.T) {
	f := newFixture(t, publicSetup("api"), publicSetup("worker"))
	envDir := filepath.Join(f.projectDir(), "env")
	writeEnv(t, envDir, "dev", "A=1\n")

	sel, err := f.graph.Selection("", "")
	require.NoError(t, err)
	assert.Equal(t, Selection{}, sel)
	_, err = sel.SetupName()
	assert.ErrorIs(t, err, ErrNoSetupSelected)
	_, err = sel.EnvName()
	assert.ErrorIs(t, err, ErrNoEnvSelected)

	require.NoError(t, f.graph.Use(Selection{Setup: "api", Env: "dev"}))

	sel, err = f.graph.Selection("", "")
	require.NoError(t, err)
	assert.Equal(t, Selection{Setup: "api", Env: "dev"}, sel)
	assert.Equal(t, "api:dev", sel.String())

	sel, err = f.graph.Selection("", "prod")
	require.NoError(t, err)
	assert.Equal(t, Selection{Setup: "api", Env: "prod"}, sel)

	// Switching setup drops the env of the previous one.
	sel, err = f.graph.Selection("worker", "")
	require.NoError(t, err)
	assert.Equal(t, Selection{Setup: "worker"}, sel)
}

func TestSelection_DropsStaleEnv(t *testing.T) {
	f := newFixture(t, publicSetup("api"))
	file := writeEnv(t, filepath.Join(f.projectDir(), "env"), "dev", "A=1\n")
	require.NoError(t, f.graph.Use(Selection{Setup: "api", Env: "dev"}))

	require.NoError(t, os.Remove(file))

	sel, err := f.graph.Selection("", "")
	require.NoError(t, err)
	assert.Equal(t, Selection{Setup: "api"}, sel)

	p, err := f.graph.Project()
	require.NoError(t, err)
	assert.Equal(t, "api", p.Current.Setup)
	assert.Empty(t, p.Current.Env)
}

func TestUse(t *testing.T) {
	f := newFixture(t, publicSetup("api"))

	assert.ErrorIs(t, f.graph.Use(Selection{Setup: "missing"}), ErrSetupNotFound)
	assert.ErrorIs(t, f.graph.Use(Selection{Setup: "api", Env: "nope"}), ErrEnvNotFound)

	require.NoError(t, f.graph.Use(Selection{Setup: "api"}))
	require.NoError(t, f.graph.Unuse())
	p, err := f.graph.Project()
	require.NoError(t, err)
	assert.Nil(t, p.Current)
}

func TestUnuseEnv(t *testing.T) {
	f := newFixture(t, publicSetup("api"))
	writeEnv(t, filepath.Join(f.projectDir(), "env"), "dev", "A=1\n")
	require.NoError(t, f.graph.Use(Selection{Setup: "api", Env: "dev"}))

	// Other envs leave the selection alone.
	require.NoError(t, f.graph.UnuseEnv("api", "prod"))
	p, err := f.graph.Project()
	require.NoError(t, err)
	assert.Equal(t, "dev", p.Current.Env)

	require.NoError(t, f.graph.UnuseEnv("api", "dev"))
	p, err = f.graph.Project()
	require.NoError(t, err)
	assert.Equal(t, "api", p.Current.Setup)
	assert.Empty(t, p.Current.Env)
}
