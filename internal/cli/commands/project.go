// Package commands implements the envset subcommands.
package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/envset/internal/cli/config"
	"github.com/leapstack-labs/envset/internal/cli/output"
	intconfig "github.com/leapstack-labs/envset/internal/config"
	"github.com/leapstack-labs/envset/internal/setup"
)

// project bundles what a command needs to work on the project around the
// working directory.
type project struct {
	cfg    *config.Config
	logger *slog.Logger
	graph  *setup.Graph
	r      *output.Renderer
}

// newRenderer builds the renderer for cmd from the loaded settings.
func newRenderer(cmd *cobra.Command) *output.Renderer {
	cfg := config.GetConfig(cmd.Context())
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))
	if cfg.NoColor {
		r.DisableColor()
	}
	return r
}

// loadProject finds the local file upward from the working directory, loads
// both stores and registers the project and its setups in the global store.
func loadProject(cmd *cobra.Command) (*project, error) {
	ctx := cmd.Context()
	cfg := config.GetConfig(ctx)
	logger := config.GetLogger(ctx)

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	file, err := intconfig.FindLocal(wd, cfg.LocalFile)
	if err != nil {
		return nil, withHint(err, `create one with "envset init"`)
	}
	local, err := intconfig.LoadLocal(file, logger)
	if err != nil {
		return nil, err
	}
	global, err := intconfig.LoadOrNewGlobal(cfg.GlobalFile(), logger)
	if err != nil {
		return nil, err
	}

	graph := setup.NewGraph(local, global, logger)
	if err := graph.Sync(); err != nil {
		return nil, err
	}
	return &project{cfg: cfg, logger: logger, graph: graph, r: newRenderer(cmd)}, nil
}

// selection returns the current selection overridden by --setup and --env.
func (p *project) selection() (setup.Selection, error) {
	return p.graph.Selection(p.cfg.Setup, p.cfg.Env)
}

// selectedSetup resolves the selected setup, or name when it is not empty.
func (p *project) selectedSetup(name string) (*setup.Setup, setup.Selection, error) {
	sel, err := p.selection()
	if err != nil {
		return nil, sel, err
	}
	if name != "" {
		if name != sel.Setup {
			sel.Env = ""
		}
		sel.Setup = name
	}
	setupName, err := sel.SetupName()
	if err != nil {
		return nil, sel, err
	}
	s, err := p.graph.Setup(setupName)
	return s, sel, err
}

// rel shows path relative to the project directory when it is inside it.
func (p *project) rel(path string) string {
	r, err := filepath.Rel(p.graph.Local().Dir(), path)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return path
	}
	return r
}

// completeSetups offers setup names of the project around the working directory.
func completeSetups(cmd *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	cfg := config.GetConfig(cmd.Context())
	wd, err := os.Getwd()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	file, err := intconfig.FindLocal(wd, cfg.LocalFile)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	local, err := intconfig.LoadLocal(file, nil)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return slices.Clone(local.Names()), cobra.ShellCompDirectiveNoFileComp
}

// hintError attaches a next step to an error.
type hintError struct {
	err  error
	hint string
}

func withHint(err error, hint string) error {
	return &hintError{err: err, hint: hint}
}

func (e *hintError) Error() string { return e.err.Error() }
func (e *hintError) Unwrap() error { return e.err }
func (e *hintError) Hint() string  { return e.hint }

// ExitError carries the exit status of a run whose child failed.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("run file exited with status %d", e.Code)
}

// IsExitError reports whether err is an *ExitError and returns its code.
func IsExitError(err error) (int, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}
