package watcher

import (
	"testing"
	"time"
)

func TestNotifyFallback_WritesToStderr(t *testing.T) {
	alert := Alert{
		Level:   LevelInfo,
		Title:   "Resolved: app.py",
		Message: "No longer over the limit (was 620 lines)",
		Time:    time.Now(),
	}

	if err := notifyFallback(alert); err != nil {
		t.Errorf("unexpected error from notifyFallback: %v", err)
	}
}
