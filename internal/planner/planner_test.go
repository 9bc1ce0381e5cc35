package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blackwell-systems/refactorwatch/internal/analyzer"
	"github.com/blackwell-systems/refactorwatch/internal/scanner"
)

func TestFixedPlanner_GeneratePlan(t *testing.T) {
	var p Planner = FixedPlanner{}
	v := scanner.Violation{Path: "src/app.py", AbsolutePath: "/repo/src/app.py", Lines: 812, Type: "python", ExcessLines: 312}

	plan := p.GeneratePlan(v, analyzer.Analysis{LOC: 812})

	assert.Equal(t, Plan{
		File:     "src/app.py",
		Lines:    812,
		Strategy: "Split into focused modules",
		Modules:  []string{},
		Priority: 5,
	}, plan)
}
