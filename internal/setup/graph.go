// Package setup joins local setup definitions with their per-machine
// counterparts and resolves the env files of a setup.
package setup

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/envset/internal/config"
)

// Graph joins a local store with the global store entries of its project.
type Graph struct {
	local  *config.LocalStore
	global *config.GlobalStore
	logger *slog.Logger
}

// NewGraph returns a graph over both stores.
func NewGraph(local *config.LocalStore, global *config.GlobalStore, logger *slog.Logger) *Graph {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Graph{local: local, global: global, logger: logger}
}

// Local returns the local store.
func (g *Graph) Local() *config.LocalStore {
	return g.local
}

// Global returns the global store.
func (g *Graph) Global() *config.GlobalStore {
	return g.global
}

// Sync registers the project of the local store in the global store and adds
// a global entry for every local setup that has none. It never removes
// anything and is idempotent.
func (g *Graph) Sync() error {
	file := g.local.File()
	if _, err := g.global.ProjectByFile(file); err != nil {
		if !errors.Is(err, config.ErrProjectNotFound) {
			return err
		}
		if err := g.global.AddProject(file); err != nil {
			return fmt.Errorf("failed to register project: %w", err)
		}
		g.logger.Debug("registered project", "file", file)
	}

	return g.global.UpdateProject(file, func(p *config.Project) error {
		for _, name := range g.local.Names() {
			if p.AddSetup(name) {
				g.logger.Debug("registered setup", "setup", name, "project", file)
			}
		}
		return nil
	})
}

// Project returns a copy of the global project of the local store.
func (g *Graph) Project() (config.Project, error) {
	return g.global.ProjectByFile(g.local.File())
}

func (g *Graph) updateProject(fn func(*config.Project) error) error {
	return g.global.UpdateProject(g.local.File(), fn)
}

// Setup joins the setup called name. Both stores must know it.
func (g *Graph) Setup(name string) (*Setup, error) {
	_, inLocal := g.local.Setup(name)
	inGlobal := false
	if p, err := g.Project(); err == nil {
		_, inGlobal = p.Setup(name)
	}

	switch {
	case inLocal && inGlobal:
		return &Setup{graph: g, name: name}, nil
	case inLocal:
		return nil, fmt.Errorf("%w: %s is not registered in %s", ErrSetupNotFound, name, g.global.File())
	case inGlobal:
		return nil, fmt.Errorf("%w: %s is not defined in %s", ErrSetupNotFound, name, g.local.File())
	default:
		return nil, withHint(fmt.Errorf("%w: %s", ErrSetupNotFound, name), `list setups with "envset ls"`)
	}
}

// Setups returns every setup that resolves on both sides, in local order.
func (g *Graph) Setups() []*Setup {
	var out []*Setup
	for _, name := range g.local.Names() {
		if s, err := g.Setup(name); err == nil {
			out = append(out, s)
		}
	}
	return out
}

// Create adds a new local setup and its global entry.
func (g *Graph) Create(local config.LocalSetup) (*Setup, error) {
	if _, ok := g.local.Setup(local.Name); ok {
		return nil, fmt.Errorf("%w: %s", config.ErrSetupAlreadyExists, local.Name)
	}
	g.local.Add(local)
	if err := g.Sync(); err != nil {
		g.local.RemoveByName(local.Name)
		return nil, err
	}
	return g.Setup(local.Name)
}

// Remove deletes a setup from both stores. Env files are left on disk.
func (g *Graph) Remove(name string) error {
	if _, err := g.Setup(name); err != nil {
		return err
	}
	g.local.RemoveByName(name)
	return g.updateProject(func(p *config.Project) error {
		p.RemoveSetup(name)
		return nil
	})
}

// Save writes the local store then the global store.
func (g *Graph) Save() error {
	if err := g.local.Save(); err != nil {
		return err
	}
	return g.global.Save()
}

// SaveGlobal writes only the global store.
func (g *Graph) SaveGlobal() error {
	return g.global.Save()
}
