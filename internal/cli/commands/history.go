package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/envset/internal/cli/config"
	"github.com/leapstack-labs/envset/internal/cli/output"
	"github.com/leapstack-labs/envset/internal/state"
)

// HistoryOptions holds options for the history command.
type HistoryOptions struct {
	Limit int
	All   bool
}

// HistoryRun is the JSON form of a recorded run.
type HistoryRun struct {
	ID         string    `json:"id"`
	Project    string    `json:"project,omitempty"`
	Setup      string    `json:"setup"`
	Env        string    `json:"env"`
	Args       []string  `json:"args,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	DurationMs int64     `json:"duration_ms"`
	ExitCode   int       `json:"exit_code"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent runs",
		Long: `Show the most recent runs of the current project, newest first.
Runs are recorded by "envset run" unless history is disabled.`,
		Example: `  envset history
  envset history -n 5
  envset history --all -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Number of runs to show")
	cmd.Flags().BoolVar(&opts.All, "all", false, "Show runs of every project")
	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	if opts.Limit <= 0 {
		return fmt.Errorf("--limit must be positive, got %d", opts.Limit)
	}
	ctx := cmd.Context()
	cfg := config.GetConfig(ctx)
	r := newRenderer(cmd)

	projectDir := ""
	if !opts.All {
		p, err := loadProject(cmd)
		if err != nil {
			return err
		}
		projectDir = p.graph.Local().Dir()
	}

	store, err := state.Open(cfg.HistoryFile(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	runs, err := store.Recent(ctx, projectDir, opts.Limit)
	if err != nil {
		return err
	}

	if r.Mode() == output.ModeJSON {
		out := make([]HistoryRun, 0, len(runs))
		for _, run := range runs {
			out = append(out, HistoryRun{
				ID:         run.ID,
				Project:    run.Project,
				Setup:      run.Setup,
				Env:        run.Env,
				Args:       run.Args,
				StartedAt:  run.StartedAt,
				DurationMs: run.Duration.Milliseconds(),
				ExitCode:   run.ExitCode,
			})
		}
		return r.JSON(out)
	}

	if len(runs) == 0 {
		r.Muted("no runs recorded yet")
		return nil
	}

	header := []string{"started", "setup", "env", "args", "duration", "exit"}
	if opts.All {
		header = append([]string{"project"}, header...)
	}
	var rows [][]string
	for _, run := range runs {
		row := []string{
			run.StartedAt.Local().Format(time.DateTime),
			run.Setup,
			run.Env,
			strings.Join(run.Args, " "),
			run.Duration.Round(time.Millisecond).String(),
			fmt.Sprint(run.ExitCode),
		}
		if opts.All {
			row = append([]string{run.Project}, row...)
		}
		rows = append(rows, row)
	}
	r.Table(header, rows)
	return nil
}
