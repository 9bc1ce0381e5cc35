// Package planner turns a flagged file into a refactoring plan.
package planner

import (
	"github.com/blackwell-systems/refactorwatch/internal/analyzer"
	"github.com/blackwell-systems/refactorwatch/internal/scanner"
)

// Defaults used by FixedPlanner.
const (
	DefaultStrategy = "Split into focused modules"
	DefaultPriority = 5
)

// Plan is a proposed refactoring for one file.
type Plan struct {
	File     string   `json:"file"`
	Lines    int      `json:"lines"`
	Strategy string   `json:"strategy"`
	Modules  []string `json:"modules"`
	Priority int      `json:"priority"`
}

// Planner produces a refactoring plan from a violation and its analysis.
type Planner interface {
	GeneratePlan(v scanner.Violation, a analyzer.Analysis) Plan
}

// FixedPlanner always proposes splitting the file, without suggesting
// concrete modules.
type FixedPlanner struct{}

// GeneratePlan implements Planner.
func (FixedPlanner) GeneratePlan(v scanner.Violation, _ analyzer.Analysis) Plan {
	return Plan{
		File:     v.Path,
		Lines:    v.Lines,
		Strategy: DefaultStrategy,
		Modules:  []string{},
		Priority: DefaultPriority,
	}
}
