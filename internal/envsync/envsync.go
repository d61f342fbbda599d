// Package envsync keeps the env files of a setup in step with each other.
package envsync

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/leapstack-labs/envset/internal/setup"
	"github.com/leapstack-labs/envset/pkg/envfile"
)

// Options configures a sync.
type Options struct {
	Policy envfile.Policy
	// Reference is the file whose variable set is propagated. Empty means the
	// most recently modified env of the setup.
	Reference string
	// Debounce groups bursts of file events in Watch. Zero uses DefaultDebounce.
	Debounce time.Duration
}

// Report is the outcome of a sync.
type Report struct {
	Reference *envfile.Env
	// Envs holds every env of the setup after the merge, sorted by path.
	Envs     []*envfile.Env
	Outcomes []envfile.Outcome
	// Saved lists the files written.
	Saved []string
}

// Err joins the per-target failures.
func (r *Report) Err() error {
	return envfile.Failed(r.Outcomes)
}

// Syncer runs syncs for setups.
type Syncer struct {
	logger *slog.Logger
}

// New returns a Syncer. A nil logger discards logs.
func New(logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Syncer{logger: logger}
}

// Sync merges the reference env into every other env of s and saves the
// targets that changed. Files of the env directories that do not parse are
// skipped. Targets whose deletions were vetoed are still saved with their
// additions; their failure is reported through Report.Err.
func (y *Syncer) Sync(s *setup.Setup, opts Options) (*Report, error) {
	return y.sync(s, opts, nil)
}

// Seed merges the reference env into target alone and saves it. The other
// envs of s are left untouched. target never serves as its own reference.
func (y *Syncer) Seed(s *setup.Setup, target *envfile.Env, opts Options) (*Report, error) {
	return y.sync(s, opts, target)
}

func (y *Syncer) sync(s *setup.Setup, opts Options, target *envfile.Env) (*Report, error) {
	envs, err := s.Envs()
	if err != nil {
		return nil, err
	}
	report := &Report{Envs: envs}

	candidates, targets := envs, envs
	if target != nil {
		candidates = slices.DeleteFunc(slices.Clone(envs), func(e *envfile.Env) bool {
			return e.File() == target.File()
		})
		targets = []*envfile.Env{target}
	}
	reference, err := y.reference(candidates, opts.Reference)
	if err != nil {
		return nil, err
	}
	if reference == nil {
		return report, nil
	}
	report.Reference = reference
	y.logger.Debug("syncing envs", "setup", s.Name(), "reference", reference.File(), "targets", len(targets))

	report.Outcomes = envfile.MergeAll(reference, targets, opts.Policy)
	for _, o := range report.Outcomes {
		var rejected *envfile.RejectedError
		if o.Err != nil && !errors.As(o.Err, &rejected) {
			y.logger.Debug("merge failed", "file", o.Env.File(), "error", o.Err)
			continue
		}
		if !o.Result.Changed() {
			continue
		}
		if err := o.Env.Save(); err != nil {
			return report, fmt.Errorf("failed to save %s: %w", o.Env.File(), err)
		}
		y.logger.Debug("saved env", "file", o.Env.File(), "added", len(o.Result.Added), "removed", len(o.Result.Removed))
		report.Saved = append(report.Saved, o.Env.File())
	}
	return report, nil
}

func (y *Syncer) reference(envs []*envfile.Env, file string) (*envfile.Env, error) {
	if file != "" {
		abs, err := filepath.Abs(file)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", file, err)
		}
		for _, env := range envs {
			if env.File() == abs {
				return env, nil
			}
		}
		return envfile.Load(abs)
	}
	if len(envs) == 0 {
		return nil, nil
	}
	return envfile.MostRecent(envs)
}
