// Package cli provides the command-line interface for envset.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/leapstack-labs/envset/internal/cli/commands"
	"github.com/leapstack-labs/envset/internal/cli/config"
	"github.com/leapstack-labs/envset/internal/cli/output"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "envset",
		Short: "envset - run scripts against named sets of environment variables",
		Long: `envset manages setups: a run file plus directories of .env files, one per
environment. It keeps the env files of a setup in sync and runs the run file
with the variables of the selected env.

A project is the directory holding envset.yaml. Your current selection and
private env directories live in the global store, outside the project.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, settingsFile, err := config.Load(cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose)
			if settingsFile != "" {
				logger.Debug("using settings file", "path", settingsFile)
			}

			ctx := config.WithConfig(cmd.Context(), cfg)
			ctx = config.WithLogger(ctx, logger)
			cmd.SetContext(ctx)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringP("setup", "s", "", "Setup to use instead of the current one")
	rootCmd.PersistentFlags().StringP("env", "e", "", "Env to use instead of the current one")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (auto|text|markdown|json)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().Bool("history", true, "Record runs in the history database")
	rootCmd.PersistentFlags().String("global-dir", "", "Directory of the global store (default: ~/.envset)")
	rootCmd.PersistentFlags().String("local-file", "", "Project file name (default: envset.yaml)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		modes := make([]string, len(output.Modes))
		for i, m := range output.Modes {
			modes[i] = string(m)
		}
		return modes, cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version, GitCommit, BuildDate))
	rootCmd.AddCommand(commands.NewInitCommand())
	rootCmd.AddCommand(commands.NewNewCommand())
	rootCmd.AddCommand(commands.NewGenerateCommand())
	rootCmd.AddCommand(commands.NewLsCommand())
	rootCmd.AddCommand(commands.NewUseCommand())
	rootCmd.AddCommand(commands.NewShowCommand())
	rootCmd.AddCommand(commands.NewRenameCommand())
	rootCmd.AddCommand(commands.NewRmCommand())
	rootCmd.AddCommand(commands.NewEnvCommand())
	rootCmd.AddCommand(commands.NewEnvsCommand())
	rootCmd.AddCommand(commands.NewVarsCommand())
	rootCmd.AddCommand(commands.NewRunCommand())
	rootCmd.AddCommand(commands.NewHistoryCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// newLogger logs human readable lines to a terminal and JSON otherwise.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context) int {
	return execute(ctx, NewRootCmd(), os.Args[1:])
}

func execute(ctx context.Context, rootCmd *cobra.Command, args []string) int {
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	if code, ok := commands.IsExitError(err); ok {
		return code
	}

	r := output.NewRenderer(rootCmd.OutOrStdout(), rootCmd.ErrOrStderr(), output.ModeAuto)
	r.Error(fmt.Sprintf("Error: %v", err))
	var hinted interface{ Hint() string }
	if errors.As(err, &hinted) && hinted.Hint() != "" {
		_, _ = fmt.Fprintln(r.ErrWriter(), "  "+hinted.Hint())
	}
	return 1
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for envset.

To load completions:

Bash:
  $ source <(envset completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ envset completion bash > /etc/bash_completion.d/envset
  # macOS:
  $ envset completion bash > $(brew --prefix)/etc/bash_completion.d/envset

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ envset completion zsh > "${fpath[1]}/_envset"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ envset completion fish | source

  # To load completions for each session, execute once:
  $ envset completion fish > ~/.config/fish/completions/envset.fish

PowerShell:
  PS> envset completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> envset completion powershell > envset.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
