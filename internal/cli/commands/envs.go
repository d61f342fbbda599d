package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/envset/internal/cli/output"
	"github.com/leapstack-labs/envset/pkg/envfile"
)

// EnvsOutput is the JSON form of the envs matrix.
type EnvsOutput struct {
	Setup   string              `json:"setup"`
	Current string              `json:"current,omitempty"`
	Envs    []string            `json:"envs"`
	Values  map[string][]string `json:"values"`
}

// NewEnvsCommand creates the envs command.
func NewEnvsCommand() *cobra.Command {
	sync := &SyncFlags{}

	cmd := &cobra.Command{
		Use:   "envs",
		Short: "Show the variables of every env side by side",
		Long: `Sync the envs of the current setup, then show one row per variable and one
column per env.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEnvs(cmd, sync)
		},
	}

	sync.register(cmd)
	return cmd
}

func runEnvs(cmd *cobra.Command, flags *SyncFlags) error {
	p, err := loadProject(cmd)
	if err != nil {
		return err
	}
	s, sel, err := p.selectedSetup("")
	if err != nil {
		return err
	}
	report, err := p.syncSetup(s, flags.options(cmd))
	if err != nil {
		return err
	}
	envs := report.Envs
	if len(envs) == 0 {
		p.r.Muted(`there is no env. You can use "envset env new <env>"`)
		return nil
	}

	names := envNames(envs)
	// After a sync every env declares the variables of the first one.
	rows := envs[0].VarNames()

	if p.r.Mode() == output.ModeJSON {
		out := EnvsOutput{Setup: s.Name(), Current: sel.Env, Envs: names, Values: map[string][]string{}}
		for _, v := range rows {
			out.Values[v] = envValues(envs, v)
		}
		return p.r.JSON(out)
	}

	p.r.Header(2, s.Name())
	header := append([]string{""}, markCurrent(names, sel.Env)...)
	var table [][]string
	for _, v := range rows {
		table = append(table, append([]string{v}, envValues(envs, v)...))
	}
	p.r.Table(header, table)
	return nil
}

func envNames(envs []*envfile.Env) []string {
	names := make([]string, len(envs))
	for i, env := range envs {
		name, err := env.Name()
		if err != nil {
			name = env.File()
		}
		names[i] = name
	}
	return names
}

func envValues(envs []*envfile.Env, name string) []string {
	values := make([]string, len(envs))
	for i, env := range envs {
		if v, err := env.Get(name); err == nil {
			values[i] = v.Value
		}
	}
	return values
}

// markCurrent suffixes the current env name with "*".
func markCurrent(names []string, current string) []string {
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = name
		if name == current {
			out[i] = name + " *"
		}
	}
	return out
}
