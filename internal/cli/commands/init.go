package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/envset/internal/cli/config"
	intconfig "github.com/leapstack-labs/envset/internal/config"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize an envset project in the current directory",
		Long: `Create an empty envset.yaml in the current directory and register the
project in the global store.

Setups are added afterwards with "envset new".`,
		Example: `  # Initialize in the current directory
  envset init`,
		Args: cobra.NoArgs,
		RunE: runInit,
	}
}

func runInit(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := config.GetConfig(ctx)
	logger := config.GetLogger(ctx)
	r := newRenderer(cmd)

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	file := filepath.Join(wd, cfg.LocalFile)

	local, err := intconfig.NewLocal(file, logger)
	if err != nil {
		return err
	}
	global, err := intconfig.LoadOrNewGlobal(cfg.GlobalFile(), logger)
	if err != nil {
		return err
	}
	if err := global.AddProject(file); err != nil && !errors.Is(err, intconfig.ErrProjectAlreadyAdded) {
		return err
	}

	if err := local.Save(); err != nil {
		return err
	}
	if err := global.Save(); err != nil {
		return err
	}

	r.Success("project initialized")
	r.Muted(fmt.Sprintf("Created %s", file))
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Run 'envset new <setup>' to add a setup")
	r.Println("  2. Run 'envset env new <env>' to create an env file")
	r.Println("  3. Run 'envset run' to execute the setup with the env")
	return nil
}
