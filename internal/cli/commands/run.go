package commands

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/envset/internal/runner"
	"github.com/leapstack-labs/envset/internal/state"
	"github.com/leapstack-labs/envset/pkg/vars"
)

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [-- args...]",
		Short: "Execute the run file of the current setup",
		Long: `Execute the run file of the current setup with the variables of the current
env. The child sees only PATH and the projected variables. Arguments after
"--" are passed to the run file and its exit status becomes envset's.`,
		Example: `  envset run
  envset run -- --verbose
  envset -s api -e prod run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, args)
		},
	}
	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	p, err := loadProject(cmd)
	if err != nil {
		return err
	}
	sel, err := p.selection()
	if err != nil {
		return err
	}
	setupName, err := sel.SetupName()
	if err != nil {
		return err
	}
	envName, err := sel.EnvName()
	if err != nil {
		return err
	}
	s, err := p.graph.Setup(setupName)
	if err != nil {
		return err
	}
	file, err := s.RunFile()
	if err != nil {
		return err
	}
	env, err := s.Env(envName)
	if err != nil {
		return err
	}
	list, err := s.Vars(env)
	if err != nil {
		return err
	}

	p.logger.Debug("running", "setup", setupName, "env", envName, "file", file)
	started := time.Now()
	result, err := runner.New(p.logger).Run(ctx, runner.Request{
		File:   file,
		Dir:    p.graph.Local().Dir(),
		Args:   args,
		Env:    vars.Environ(list),
		Stdout: cmd.OutOrStdout(),
		Stderr: cmd.ErrOrStderr(),
	})
	if result != nil && p.cfg.History {
		p.record(&state.Run{
			Project:   p.graph.Local().Dir(),
			Setup:     setupName,
			Env:       envName,
			Args:      args,
			StartedAt: started,
			Duration:  result.Duration,
			ExitCode:  result.ExitCode,
		})
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return &ExitError{Code: 130}
		}
		return err
	}
	if result.ExitCode != 0 {
		return &ExitError{Code: result.ExitCode}
	}
	return nil
}

// record appends run to the history. Failures are logged, never returned.
func (p *project) record(run *state.Run) {
	store, err := state.Open(p.cfg.HistoryFile(), p.logger)
	if err != nil {
		p.logger.Warn("failed to open run history", "error", err)
		return
	}
	defer func() { _ = store.Close() }()

	// The command context may already be cancelled by the signal that
	// stopped the child.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Record(ctx, run); err != nil {
		p.logger.Warn("failed to record run", "error", err)
	}
}
