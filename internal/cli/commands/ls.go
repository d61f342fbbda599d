package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/envset/internal/cli/output"
	"github.com/leapstack-labs/envset/internal/setup"
)

// LsSetup is one setup in the ls output.
type LsSetup struct {
	Name     string  `json:"name"`
	File     string  `json:"file"`
	Selected bool    `json:"selected"`
	Envs     []LsEnv `json:"envs"`
	Error    string  `json:"error,omitempty"`
}

// LsEnv is one env in the ls output.
type LsEnv struct {
	Name     string `json:"name"`
	File     string `json:"file"`
	Selected bool   `json:"selected"`
}

// NewLsCommand creates the ls command.
func NewLsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List setups and their envs",
		Long: `List the setups of the project with their run files, and the envs of each
setup. The current setup and env are marked.`,
		Args: cobra.NoArgs,
		RunE: runLs,
	}
}

func runLs(cmd *cobra.Command, _ []string) error {
	p, err := loadProject(cmd)
	if err != nil {
		return err
	}
	sel, err := p.selection()
	if err != nil {
		return err
	}

	setups := p.listSetups(sel)
	if p.r.Mode() == output.ModeJSON {
		return p.r.JSON(setups)
	}
	if len(setups) == 0 {
		p.r.Muted(`there is no setup. You can use "envset new <setup>"`)
		return nil
	}

	styles := p.r.Styles()
	text := p.r.Mode() == output.ModeText
	for _, s := range setups {
		name := s.Name
		if text {
			name = styles.Setup.Render(name)
		}
		p.r.Println(marker(s.Selected) + fmt.Sprintf("%s (%s)", name, s.File))
		if s.Error != "" {
			p.r.Warning(fmt.Sprintf("%s: %s", s.Name, s.Error))
		}
		for _, e := range s.Envs {
			line := fmt.Sprintf("   %s (%s)", e.Name, e.File)
			if text && e.Selected {
				line = styles.Current.Render(line)
			}
			p.r.Println(marker(e.Selected) + line)
		}
	}
	return nil
}

// listSetups scans the env directories of every setup concurrently.
func (p *project) listSetups(sel setup.Selection) []LsSetup {
	setups := p.graph.Setups()
	out := make([]LsSetup, len(setups))

	var eg errgroup.Group
	eg.SetLimit(scanWorkers)
	for i, s := range setups {
		eg.Go(func() error {
			out[i] = p.listSetup(s, sel)
			return nil
		})
	}
	_ = eg.Wait()
	return out
}

const scanWorkers = 4

func (p *project) listSetup(s *setup.Setup, sel setup.Selection) LsSetup {
	item := LsSetup{
		Name:     s.Name(),
		Selected: s.Name() == sel.Setup && sel.Env == "",
		Envs:     []LsEnv{},
	}
	if local, err := s.Local(); err == nil {
		item.File = local.File
	}

	envs, err := s.Envs()
	if err != nil {
		item.Error = err.Error()
	}
	for _, env := range envs {
		name, err := env.Name()
		if err != nil {
			continue
		}
		item.Envs = append(item.Envs, LsEnv{
			Name:     name,
			File:     p.rel(env.File()),
			Selected: s.Name() == sel.Setup && name == sel.Env,
		})
	}
	return item
}

func marker(selected bool) string {
	if selected {
		return "> "
	}
	return "  "
}
