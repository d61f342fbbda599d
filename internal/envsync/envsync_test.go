package envsync

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/envset/internal/config"
	"github.com/leapstack-labs/envset/internal/setup"
	"github.com/leapstack-labs/envset/internal/testutil"
	"github.com/leapstack-labs/envset/pkg/envfile"
)

// newSetup returns a synced setup "api" whose public envs live in the
// returned directory.
func newSetup(t *testing.T) (*setup.Setup, string) {
	t.Helper()
	root := t.TempDir()
	local, err := config.NewLocal(filepath.Join(root, config.LocalFileName), nil)
	require.NoError(t, err)
	s := config.NewLocalSetup("api", "run.sh")
	s.PublicEnvDir = "env"
	local.Add(s)

	global, err := config.LoadOrNewGlobal(filepath.Join(root, "global", config.GlobalFileName), nil)
	require.NoError(t, err)

	g := setup.NewGraph(local, global, nil)
	require.NoError(t, g.Sync())
	api, err := g.Setup("api")
	require.NoError(t, err)
	return api, filepath.Join(root, "env")
}

func writeEnv(t *testing.T, dir, name, content string, age time.Duration) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o750))
	file := envfile.FileForName(dir, name)
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))
	mod := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(file, mod, mod))
	return file
}

func read(t *testing.T, file string) string {
	t.Helper()
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	return string(data)
}

func TestSync_MostRecentIsReference(t *testing.T) {
	api, dir := newSetup(t)
	dev := writeEnv(t, dir, "dev", "VAR1=1\nVAR2=2\n", 0)
	prod := writeEnv(t, dir, "prod", "VAR1=p1\n", time.Hour)

	report, err := New(testutil.NewTestLogger(t)).Sync(api, Options{Policy: envfile.Policy{Update: envfile.UpdateEmpty}})
	require.NoError(t, err)
	require.NoError(t, report.Err())

	assert.Equal(t, dev, report.Reference.File())
	assert.Equal(t, []string{prod}, report.Saved)
	assert.Equal(t, "VAR1=p1\nVAR2=\n", read(t, prod))
	assert.Equal(t, "VAR1=1\nVAR2=2\n", read(t, dev))
}

func TestSync_ReferenceOverride(t *testing.T) {
	api, dir := newSetup(t)
	dev := writeEnv(t, dir, "dev", "VAR1=1\nVAR2=2\n", 0)
	prod := writeEnv(t, dir, "prod", "VAR1=p1\nVAR3=3\n", time.Hour)

	report, err := New(nil).Sync(api, Options{
		Policy:    envfile.Policy{Update: envfile.UpdateCopy, Delete: envfile.DeleteForce},
		Reference: prod,
	})
	require.NoError(t, err)
	require.NoError(t, report.Err())
	assert.Equal(t, "VAR1=1\nVAR3=3\n", read(t, dev))
}

func TestSync_VetoedTargetIsReported(t *testing.T) {
	api, dir := newSetup(t)
	writeEnv(t, dir, "dev", "VAR1=1\nVAR2=2\n", 0)
	prod := writeEnv(t, dir, "prod", "VAR1=1\nVAR3=3\n", time.Hour)
	staging := writeEnv(t, dir, "staging", "VAR1=1\n", time.Hour)

	report, err := New(nil).Sync(api, Options{Policy: envfile.Policy{Update: envfile.UpdateCopy}})
	require.NoError(t, err)

	failure := report.Err()
	require.Error(t, failure)
	assert.ErrorIs(t, failure, envfile.ErrPolicyRejected)
	assert.Contains(t, failure.Error(), prod)

	// Additions are applied everywhere, the vetoed variable is kept.
	assert.Equal(t, "VAR1=1\nVAR3=3\nVAR2=2\n", read(t, prod))
	assert.Equal(t, "VAR1=1\nVAR2=2\n", read(t, staging))
}

func TestSync_SkipsFilesThatDoNotParse(t *testing.T) {
	api, dir := newSetup(t)
	writeEnv(t, dir, "dev", "VAR1=1\nVAR2=2\n", 0)
	prod := writeEnv(t, dir, "prod", "VAR1=1\n", time.Hour)
	nvmrc := writeEnv(t, dir, "nvmrc", "18\n", time.Hour)

	report, err := New(nil).Sync(api, Options{Policy: envfile.Policy{Update: envfile.UpdateCopy}})
	require.NoError(t, err)
	require.NoError(t, report.Err())

	assert.Len(t, report.Envs, 2)
	assert.Equal(t, "VAR1=1\nVAR2=2\n", read(t, prod))
	assert.Equal(t, "18\n", read(t, nvmrc))
}

func TestSync_UnparsableReferenceFails(t *testing.T) {
	api, dir := newSetup(t)
	prod := writeEnv(t, dir, "prod", "VAR1=1\n", time.Hour)
	broken := writeEnv(t, dir, "broken", "NOT VALID\n", 0)

	_, err := New(nil).Sync(api, Options{Policy: envfile.Policy{Update: envfile.UpdateCopy}, Reference: broken})
	var parseErr *envfile.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "VAR1=1\n", read(t, prod))
}

func TestSeed_LeavesOtherEnvsUntouched(t *testing.T) {
	api, dir := newSetup(t)
	dev := writeEnv(t, dir, "dev", "VAR1=1\nVAR2=2\n", time.Minute)
	prod := writeEnv(t, dir, "prod", "VAR1=1\nVAR3=3\n", time.Hour)

	staging, err := api.NewEnv("staging", false)
	require.NoError(t, err)

	report, err := New(testutil.NewTestLogger(t)).Seed(api, staging, Options{Policy: envfile.Policy{Update: envfile.UpdateEmpty}})
	require.NoError(t, err)
	require.NoError(t, report.Err())

	assert.Equal(t, dev, report.Reference.File())
	assert.Equal(t, []string{staging.File()}, report.Saved)
	assert.Equal(t, "VAR1=\nVAR2=\n", read(t, staging.File()))
	assert.Equal(t, "VAR1=1\nVAR3=3\n", read(t, prod))
}

func TestSeed_NoOtherEnvs(t *testing.T) {
	api, _ := newSetup(t)
	dev, err := api.NewEnv("dev", false)
	require.NoError(t, err)

	report, err := New(nil).Seed(api, dev, Options{})
	require.NoError(t, err)
	assert.Nil(t, report.Reference)
	assert.Empty(t, report.Saved)
	assert.Empty(t, read(t, dev.File()))
}

func TestSync_NoEnvs(t *testing.T) {
	api, _ := newSetup(t)
	report, err := New(nil).Sync(api, Options{})
	require.NoError(t, err)
	assert.Nil(t, report.Reference)
	assert.Empty(t, report.Envs)
}

func TestWatch_SyncsOnChange(t *testing.T) {
	api, dir := newSetup(t)
	writeEnv(t, dir, "dev", "VAR1=1\n", time.Hour)
	prod := writeEnv(t, dir, "prod", "VAR1=1\n", time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reports := make(chan *Report, 8)
	done := make(chan error, 1)
	go func() {
		done <- New(testutil.NewTestLogger(t)).Watch(ctx, api, Options{Policy: envfile.Policy{Update: envfile.UpdateCopy}},
			func(r *Report, err error) {
				if err == nil {
					reports <- r
				}
			})
	}()

	// Give the watcher time to register.
	time.Sleep(100 * time.Millisecond)
	writeEnv(t, dir, "dev", "VAR1=1\nNEW=x\n", 0)

	select {
	case r := <-reports:
		assert.Equal(t, filepath.Join(dir, ".dev"), r.Reference.File())
	case <-time.After(5 * time.Second):
		t.Fatal("no sync after file change")
	}
	assert.Equal(t, "VAR1=1\nNEW=x\n", read(t, prod))

	cancel()
	require.NoError(t, <-done)
}
