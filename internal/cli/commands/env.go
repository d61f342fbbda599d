package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/envset/internal/envsync"
	"github.com/leapstack-labs/envset/internal/setup"
)

// NewEnvCommand creates the env command and its subcommands.
func NewEnvCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "env",
		Short: "Manage the env files of the current setup",
		Long: `Create, remove and synchronize the env files of the current setup, and set
where they are stored.`,
	}

	cmd.AddCommand(newEnvNewCommand())
	cmd.AddCommand(newEnvRmCommand())
	cmd.AddCommand(newEnvDirCommand())
	cmd.AddCommand(newEnvPdirCommand())
	cmd.AddCommand(newEnvSyncCommand())

	return cmd
}

func newEnvNewCommand() *cobra.Command {
	var private bool
	sync := &SyncFlags{}

	cmd := &cobra.Command{
		Use:   "new <env>",
		Short: "Create an env and select it",
		Long: `Create the env file .<env> in the public env directory (or the private one
with --private), fill it with the variables of the most recent env, and make it
the current env.`,
		Example: `  envset env new dev
  envset env new prod --private --copy`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnvNew(cmd, args[0], private, sync)
		},
	}

	cmd.Flags().BoolVar(&private, "private", false, "Create the env in the private env directory")
	sync.register(cmd)
	return cmd
}

func runEnvNew(cmd *cobra.Command, name string, private bool, flags *SyncFlags) error {
	p, err := loadProject(cmd)
	if err != nil {
		return err
	}
	s, sel, err := p.selectedSetup("")
	if err != nil {
		return err
	}

	env, err := s.NewEnv(name, private)
	if err != nil {
		return err
	}

	// Only the new env is merged into; on failure it is removed again.
	report, err := envsync.New(p.logger).Seed(s, env, flags.options(cmd))
	if err == nil {
		err = report.Err()
	}
	if err != nil {
		_ = env.Remove()
		return err
	}

	if err := p.graph.Use(setup.Selection{Setup: sel.Setup, Env: name}); err != nil {
		return err
	}
	if err := p.graph.SaveGlobal(); err != nil {
		return err
	}
	p.r.Success(fmt.Sprintf("env `%s` created: %s", name, p.rel(env.File())))
	return nil
}

func newEnvRmCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <env>",
		Short: "Delete an env file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd)
			if err != nil {
				return err
			}
			s, _, err := p.selectedSetup("")
			if err != nil {
				return err
			}
			env, err := s.RemoveEnv(args[0])
			if err != nil {
				return err
			}
			if err := p.graph.UnuseEnv(s.Name(), args[0]); err != nil {
				return err
			}
			if err := p.graph.SaveGlobal(); err != nil {
				return err
			}
			p.r.Success(fmt.Sprintf("env `%s` removed: %s", args[0], p.rel(env.File())))
			return nil
		},
	}
}

func newEnvDirCommand() *cobra.Command {
	var unset bool

	cmd := &cobra.Command{
		Use:   "dir [dir]",
		Short: "Show or set the public env directory",
		Long: `Show, set or unset the public env directory of the current setup. The
directory is stored in envset.yaml relative to it and is meant to be committed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd)
			if err != nil {
				return err
			}
			s, _, err := p.selectedSetup("")
			if err != nil {
				return err
			}

			switch {
			case unset:
				if err := s.UnsetPublicEnvDir(); err != nil {
					return err
				}
				if err := p.graph.Save(); err != nil {
					return err
				}
				p.r.Success(fmt.Sprintf("public env directory of `%s` unset", s.Name()))
			case len(args) == 1:
				dir, err := filepath.Abs(args[0])
				if err != nil {
					return fmt.Errorf("failed to resolve %s: %w", args[0], err)
				}
				if err := os.MkdirAll(dir, 0o750); err != nil {
					return fmt.Errorf("failed to create env directory: %w", err)
				}
				if err := s.SetPublicEnvDir(dir); err != nil {
					return err
				}
				if err := p.graph.Save(); err != nil {
					return err
				}
				p.r.Success(fmt.Sprintf("public env directory of `%s` set to %s", s.Name(), p.rel(dir)))
			default:
				dir, err := s.PublicEnvDir()
				if err != nil {
					return err
				}
				p.r.Println(dir)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&unset, "unset", false, "Unset the public env directory")
	return cmd
}

func newEnvPdirCommand() *cobra.Command {
	var unset bool

	cmd := &cobra.Command{
		Use:   "pdir [dir]",
		Short: "Show or set the private env directory",
		Long: `Show, set or unset the private env directory of the current setup. The
directory is stored as an absolute path in the global store, on this machine only.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd)
			if err != nil {
				return err
			}
			s, _, err := p.selectedSetup("")
			if err != nil {
				return err
			}

			switch {
			case unset:
				if err := s.UnsetPrivateEnvDir(); err != nil {
					return err
				}
				if err := p.graph.SaveGlobal(); err != nil {
					return err
				}
				p.r.Success(fmt.Sprintf("private env directory of `%s` unset", s.Name()))
			case len(args) == 1:
				dir, err := filepath.Abs(expandTilde(args[0]))
				if err != nil {
					return fmt.Errorf("failed to resolve %s: %w", args[0], err)
				}
				if err := os.MkdirAll(dir, 0o700); err != nil {
					return fmt.Errorf("failed to create env directory: %w", err)
				}
				if err := s.SetPrivateEnvDir(dir); err != nil {
					return err
				}
				if err := p.graph.SaveGlobal(); err != nil {
					return err
				}
				p.r.Success(fmt.Sprintf("private env directory of `%s` set to %s", s.Name(), dir))
			default:
				dir, err := s.PrivateEnvDir()
				if err != nil {
					return err
				}
				p.r.Println(dir)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&unset, "unset", false, "Unset the private env directory")
	return cmd
}

func newEnvSyncCommand() *cobra.Command {
	var watch bool
	sync := &SyncFlags{}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Propagate variable names across the envs of the current setup",
		Long: `Make every env of the current setup declare the same variables as the
reference env, keeping each env's own values.

The reference is --file or the most recently modified env. Missing variables
are added empty (--empty), with the reference value (--copy), or with a value
you type (--interactive-update). Extra variables are deleted with --delete,
kept with --no-delete, and confirmed one by one otherwise when running in a
terminal.

With --watch, envset keeps running and syncs again from whichever env file
changes.`,
		Example: `  envset env sync
  envset env sync --copy --delete
  envset env sync --file env/.dev --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEnvSync(cmd, sync, watch)
		},
	}

	sync.register(cmd)
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep syncing when an env file changes")
	return cmd
}

func runEnvSync(cmd *cobra.Command, flags *SyncFlags, watch bool) error {
	p, err := loadProject(cmd)
	if err != nil {
		return err
	}
	s, _, err := p.selectedSetup("")
	if err != nil {
		return err
	}
	opts := flags.options(cmd)
	opts.Debounce = p.cfg.Debounce

	report, err := p.syncSetup(s, opts)
	if report != nil {
		p.printReport(report)
	}
	if err != nil {
		return err
	}
	if !watch {
		p.r.Success("files synchronized")
		return nil
	}

	// The first sync fixed the reference; later ones follow the changed file.
	opts.Reference = ""
	p.r.Muted("watching for changes, press Ctrl-C to stop")
	err = envsync.New(p.logger).Watch(cmd.Context(), s, opts, func(report *envsync.Report, err error) {
		if report != nil {
			p.printReport(report)
		}
		if err != nil {
			p.r.Error(err.Error())
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
