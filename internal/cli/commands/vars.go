package commands

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/envset/internal/cli/output"
	"github.com/leapstack-labs/envset/internal/setup"
	"github.com/leapstack-labs/envset/pkg/envfile"
	"github.com/leapstack-labs/envset/pkg/vars"
)

// VarsOutput is the JSON form of the projected variables.
type VarsOutput struct {
	Setup string              `json:"setup"`
	Envs  map[string][]VarRow `json:"envs"`
}

// VarRow is one projected variable.
type VarRow struct {
	Name    string `json:"name"`
	EnvName string `json:"env_name"`
	Value   string `json:"value"`
	Pattern string `json:"pattern,omitempty"`
}

// NewVarsCommand creates the vars command.
func NewVarsCommand() *cobra.Command {
	var envNamesFlag []string
	sync := &SyncFlags{}

	cmd := &cobra.Command{
		Use:   "vars",
		Short: "Show the variables a run receives",
		Long: `Project the selected envs through the setup's array_vars and vars and show
the environment variables the run file would receive, one column per env.

The current env is always selected; --envs adds more.`,
		Example: `  envset vars
  envset vars --envs dev,prod`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVars(cmd, envNamesFlag, sync)
		},
	}

	cmd.Flags().StringSliceVar(&envNamesFlag, "envs", nil, "Additional envs to show (comma-separated)")
	sync.register(cmd)
	return cmd
}

func runVars(cmd *cobra.Command, extra []string, flags *SyncFlags) error {
	p, err := loadProject(cmd)
	if err != nil {
		return err
	}
	s, sel, err := p.selectedSetup("")
	if err != nil {
		return err
	}
	envs, err := p.selectedEnvs(cmd, s, sel, extra, flags)
	if err != nil {
		return err
	}

	names := envNames(envs)
	projected := make([][]vars.EnvVar, len(envs))
	for i, env := range envs {
		if projected[i], err = s.Vars(env); err != nil {
			return err
		}
	}

	if p.r.Mode() == output.ModeJSON {
		out := VarsOutput{Setup: s.Name(), Envs: map[string][]VarRow{}}
		for i, name := range names {
			rows := make([]VarRow, 0, len(projected[i]))
			for _, v := range projected[i] {
				row := VarRow{Name: v.VarName(), EnvName: v.EnvName(), Value: v.Render()}
				if v.Kind == vars.KindArray {
					row.Pattern = v.Array.Pattern
				}
				rows = append(rows, row)
			}
			out.Envs[name] = rows
		}
		return p.r.JSON(out)
	}

	p.r.Header(2, s.Name())
	header := append([]string{"var", "env var"}, markCurrent(names, sel.Env)...)
	var table [][]string
	for j, v := range projected[0] {
		label := v.EnvName()
		if v.Kind == vars.KindArray {
			label = fmt.Sprintf("%s (%s)", label, v.Array.Pattern)
		}
		row := []string{v.VarName(), label}
		for i := range envs {
			row = append(row, valueAt(projected[i], j, v.Name))
		}
		table = append(table, row)
	}
	p.r.Table(header, table)
	return nil
}

// valueAt returns the rendered value of the variable called name, looking at
// index j first since every env projects in the same order after a sync.
func valueAt(list []vars.EnvVar, j int, name string) string {
	if j < len(list) && list[j].Name == name {
		return list[j].Render()
	}
	for _, v := range list {
		if v.Name == name {
			return v.Render()
		}
	}
	return ""
}

// selectedEnvs syncs the setup and returns the current env plus extra, in
// path order.
func (p *project) selectedEnvs(cmd *cobra.Command, s *setup.Setup, sel setup.Selection, extra []string, flags *SyncFlags) ([]*envfile.Env, error) {
	wanted := slices.Clone(extra)
	if sel.Env != "" {
		wanted = append(wanted, sel.Env)
	}
	if len(wanted) == 0 {
		return nil, withHint(setup.ErrNoEnvSelected,
			`set a current env with "envset use <setup> <env>" or pass "--envs <env>[,<env>...]"`)
	}

	report, err := p.syncSetup(s, flags.options(cmd))
	if err != nil {
		return nil, err
	}

	var envs []*envfile.Env
	for _, env := range report.Envs {
		name, err := env.Name()
		if err == nil && slices.Contains(wanted, name) {
			envs = append(envs, env)
		}
	}
	if len(envs) == 0 {
		return nil, fmt.Errorf("%w: none of %v in setup %s", setup.ErrEnvNotFound, wanted, s.Name())
	}
	return envs, nil
}
