package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/leapstack-labs/envset/internal/cli/prompt"
	"github.com/leapstack-labs/envset/internal/envsync"
	"github.com/leapstack-labs/envset/internal/setup"
	"github.com/leapstack-labs/envset/pkg/envfile"
)

// SyncFlags are the merge policy flags shared by every command that syncs.
type SyncFlags struct {
	Empty             bool
	Copy              bool
	InteractiveUpdate bool
	Delete            bool
	NoDelete          bool
	File              string
}

// register adds the flags to cmd.
func (f *SyncFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.Empty, "empty", false, "Add missing variables with an empty value (default)")
	cmd.Flags().BoolVar(&f.Copy, "copy", false, "Add missing variables with the reference value")
	cmd.Flags().BoolVar(&f.InteractiveUpdate, "interactive-update", false, "Ask for the value of each missing variable")
	cmd.Flags().BoolVar(&f.Delete, "delete", false, "Delete variables missing from the reference without asking")
	cmd.Flags().BoolVar(&f.NoDelete, "no-delete", false, "Never delete variables missing from the reference")
	cmd.Flags().StringVar(&f.File, "file", "", "Reference env file (default: the most recently modified env)")
	cmd.MarkFlagsMutuallyExclusive("empty", "copy", "interactive-update")
	cmd.MarkFlagsMutuallyExclusive("delete", "no-delete")
}

// options turns the flags into sync options. Deletions are confirmed
// interactively when stdin is a terminal and no delete flag is given.
func (f *SyncFlags) options(cmd *cobra.Command) envsync.Options {
	p := newPrompter(cmd)

	policy := envfile.Policy{Update: envfile.UpdateEmpty, Delete: envfile.DeleteNever, Prompter: p}
	switch {
	case f.Copy:
		policy.Update = envfile.UpdateCopy
	case f.InteractiveUpdate:
		policy.Update = envfile.UpdateInteractive
	}
	switch {
	case f.Delete:
		policy.Delete = envfile.DeleteForce
	case f.NoDelete:
		policy.Delete = envfile.DeleteNever
	case p.Interactive():
		policy.Delete = envfile.DeleteInteractive
	}
	return envsync.Options{Policy: policy, Reference: f.File}
}

// newPrompter reads from the terminal when cmd's input is one, and line by
// line otherwise.
func newPrompter(cmd *cobra.Command) *prompt.Prompter {
	if f, ok := cmd.InOrStdin().(*os.File); ok && f == os.Stdin && term.IsTerminal(int(f.Fd())) {
		return prompt.New()
	}
	return prompt.NewWithIO(cmd.InOrStdin(), cmd.ErrOrStderr())
}

// syncSetup runs a sync of s and prints what changed.
func (p *project) syncSetup(s *setup.Setup, opts envsync.Options) (*envsync.Report, error) {
	report, err := envsync.New(p.logger).Sync(s, opts)
	if err != nil {
		return nil, err
	}
	for _, file := range report.Saved {
		p.logger.Info("env synchronized", "file", file)
	}
	return report, report.Err()
}

// printReport lists the files a sync touched.
func (p *project) printReport(report *envsync.Report) {
	if report.Reference == nil {
		p.r.Muted("there is no env to synchronize")
		return
	}
	p.r.Muted(fmt.Sprintf("reference: %s", p.rel(report.Reference.File())))
	for _, o := range report.Outcomes {
		status, detail := "skipped", "(unchanged)"
		switch {
		case o.Err != nil:
			status, detail = "failed", "("+o.Err.Error()+")"
		case o.Result != nil && o.Result.Changed():
			status, detail = "success", describeResult(o.Result)
		}
		p.r.StatusLine(p.rel(o.Env.File()), status, detail)
	}
}

func describeResult(res *envfile.Result) string {
	var parts []string
	if n := len(res.Added); n > 0 {
		parts = append(parts, fmt.Sprintf("+%d", n))
	}
	if n := len(res.Removed); n > 0 {
		parts = append(parts, fmt.Sprintf("-%d", n))
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, " ") + ")"
}
