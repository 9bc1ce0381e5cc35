package monitor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/refactorwatch/internal/store"
)

type fakeCounter struct {
	counts store.IssueCounts
	err    error
}

func (f fakeCounter) CountIssues() (store.IssueCounts, error) {
	return f.counts, f.err
}

func TestCheckStatus_Empty(t *testing.T) {
	db, err := store.OpenInMemory()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var m Monitor = New(db)
	got, err := m.CheckStatus()
	require.NoError(t, err)
	assert.Equal(t, Status{}, got)
}

func TestCheckStatus_FromStore(t *testing.T) {
	db, err := store.OpenInMemory()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	for _, state := range []string{store.IssueOpen, store.IssueInProgress, store.IssueCompleted, store.IssueCompleted} {
		_, err := db.RecordIssue(&store.Issue{Repo: "acme/app", Path: "a.py", URL: "u", State: state})
		require.NoError(t, err)
	}

	got, err := New(db).CheckStatus()
	require.NoError(t, err)
	assert.Equal(t, Status{IssuesCreated: 4, InProgress: 1, Completed: 2}, got)
}

func TestCheckStatus_Error(t *testing.T) {
	_, err := New(fakeCounter{err: errors.New("disk full")}).CheckStatus()
	assert.ErrorContains(t, err, "disk full")
}
