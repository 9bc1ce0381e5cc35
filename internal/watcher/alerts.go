package watcher

import (
	"fmt"
	"sort"
	"time"
)

// Compare detects changes between two scans and returns alerts, most
// severe first: new monoliths, then growth of existing ones, then files
// that dropped under their limit.
func Compare(prev, curr *State) []Alert {
	now := time.Now()
	var critical, warning, info []Alert

	for _, v := range curr.Violations {
		before, existed := prev.lines[v.Path]
		switch {
		case !existed:
			critical = append(critical, Alert{
				Level:   LevelCritical,
				Title:   "New monolith: " + v.Path,
				Message: fmt.Sprintf("%d lines (%d over the limit)", v.Lines, v.ExcessLines),
				Time:    now,
			})
		case v.Lines > before:
			warning = append(warning, Alert{
				Level:   LevelWarning,
				Title:   "Monolith grew: " + v.Path,
				Message: fmt.Sprintf("%d to %d lines (+%d)", before, v.Lines, v.Lines-before),
				Time:    now,
			})
		}
	}

	var resolved []string
	for path := range prev.lines {
		if _, still := curr.lines[path]; !still {
			resolved = append(resolved, path)
		}
	}
	sort.Strings(resolved)
	for _, path := range resolved {
		info = append(info, Alert{
			Level:   LevelInfo,
			Title:   "Resolved: " + path,
			Message: fmt.Sprintf("No longer over the limit (was %d lines)", prev.lines[path]),
			Time:    now,
		})
	}

	alerts := append(critical, warning...)
	return append(alerts, info...)
}
