package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	intconfig "github.com/leapstack-labs/envset/internal/config"
	"github.com/leapstack-labs/envset/internal/runfile"
	"github.com/leapstack-labs/envset/internal/setup"
)

// NewOptions holds options for the new command.
type NewOptions struct {
	File          string
	Kind          string
	PublicEnvDir  string
	PrivateEnvDir string
	Force         bool
}

// NewNewCommand creates the new command.
func NewNewCommand() *cobra.Command {
	opts := &NewOptions{}

	cmd := &cobra.Command{
		Use:   "new <setup>",
		Short: "Create a setup and its run file",
		Long: `Add a setup to envset.yaml, register it for this machine, and generate its
run file.

Env files live in the public env directory (committed, relative to envset.yaml)
or in a private env directory (machine-local, absolute). Without either flag the
public env directory is the project directory.`,
		Example: `  # Bash run file next to envset.yaml, env files in ./env
  envset new api --public-env-dir env

  # sh run file, env files kept outside the repository
  envset new api --file deploy.sh --kind sh --private-env-dir ~/secrets/api`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNew(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "run.sh", "Run file path, relative to envset.yaml")
	cmd.Flags().StringVarP(&opts.Kind, "kind", "k", string(runfile.KindBash), "Run file kind (bash|sh)")
	cmd.Flags().StringVar(&opts.PublicEnvDir, "public-env-dir", "", "Public env directory")
	cmd.Flags().StringVar(&opts.PrivateEnvDir, "private-env-dir", "", "Private env directory")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Overwrite an existing run file")
	cmd.MarkFlagsMutuallyExclusive("public-env-dir", "private-env-dir")
	_ = cmd.RegisterFlagCompletionFunc("kind", completeKinds)

	return cmd
}

func runNew(cmd *cobra.Command, name string, opts *NewOptions) error {
	kind, err := runfile.ParseKind(opts.Kind)
	if err != nil {
		return err
	}
	p, err := loadProject(cmd)
	if err != nil {
		return err
	}

	local := intconfig.NewLocalSetup(name, filepath.ToSlash(opts.File))
	local.ArrayVars = kind.DefaultArrayVars()
	s, err := p.graph.Create(local)
	if err != nil {
		return err
	}

	envDir, err := setEnvDir(s, opts)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(envDir, 0o750); err != nil {
		return fmt.Errorf("failed to create env directory: %w", err)
	}

	runFile, err := s.RunFile()
	if err != nil {
		return err
	}
	if err := runfile.Write(runFile, runfile.Generate(kind, local.ArrayVars, local.Vars), opts.Force); err != nil {
		return withHint(err, "re-run with --force to overwrite it")
	}

	if err := p.graph.Use(setup.Selection{Setup: name}); err != nil {
		return err
	}
	if err := p.graph.Save(); err != nil {
		return err
	}

	p.r.Success(fmt.Sprintf("setup `%s` created", name))
	p.r.StatusLine(p.rel(runFile), "success", "(run file)")
	p.r.StatusLine(p.rel(envDir), "success", "(env directory)")
	return nil
}

// setEnvDir stores the env directory chosen by opts and returns it.
func setEnvDir(s *setup.Setup, opts *NewOptions) (string, error) {
	if opts.PrivateEnvDir != "" {
		dir, err := filepath.Abs(expandTilde(opts.PrivateEnvDir))
		if err != nil {
			return "", fmt.Errorf("failed to resolve %s: %w", opts.PrivateEnvDir, err)
		}
		if err := s.SetPrivateEnvDir(dir); err != nil {
			return "", err
		}
		return dir, nil
	}

	dir := opts.PublicEnvDir
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	if err := s.SetPublicEnvDir(abs); err != nil {
		return "", err
	}
	return s.PublicEnvDir()
}

// expandTilde resolves a leading "~/" against the home directory.
func expandTilde(path string) string {
	if len(path) < 2 || path[:2] != "~/" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

func completeKinds(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	kinds := make([]string, len(runfile.Kinds))
	for i, k := range runfile.Kinds {
		kinds[i] = string(k)
	}
	return kinds, cobra.ShellCompDirectiveNoFileComp
}
