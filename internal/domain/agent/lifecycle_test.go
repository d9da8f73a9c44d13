package agent

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusDraft, StatusUnderReview},
		{StatusRejected, StatusUnderReview},
		{StatusUnderReview, StatusApproved},
		{StatusUnderReview, StatusRejected},
		{StatusApproved, StatusArchived},
	}
	for _, tc := range allowed {
		require.True(t, CanTransition(tc.from, tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}

	denied := []struct{ from, to Status }{
		{StatusDraft, StatusApproved},
		{StatusDraft, StatusRejected},
		{StatusDraft, StatusArchived},
		{StatusApproved, StatusUnderReview},
		{StatusApproved, StatusDraft},
		{StatusRejected, StatusApproved},
		{StatusArchived, StatusUnderReview},
		{StatusArchived, StatusApproved},
		{StatusUnderReview, StatusArchived},
		{StatusUnderReview, StatusDraft},
	}
	for _, tc := range denied {
		require.False(t, CanTransition(tc.from, tc.to), "%s -> %s should be denied", tc.from, tc.to)
	}
}

func TestIsPubliclyVisible(t *testing.T) {
	a := &Agent{Status: StatusApproved}
	require.True(t, IsPubliclyVisible(a))

	// An approved agent with a version under review is hidden so that
	// exactly one version per lineage is visible.
	a.HasActiveUpdate = true
	require.False(t, IsPubliclyVisible(a))

	for _, st := range []Status{StatusDraft, StatusUnderReview, StatusRejected, StatusArchived} {
		require.False(t, IsPubliclyVisible(&Agent{Status: st}), "status %s must not be visible", st)
	}
}

func TestIsEditable(t *testing.T) {
	require.True(t, IsEditable(&Agent{Status: StatusDraft}))
	require.True(t, IsEditable(&Agent{Status: StatusRejected}))
	require.False(t, IsEditable(&Agent{Status: StatusUnderReview}))
	require.False(t, IsEditable(&Agent{Status: StatusApproved}))
	require.False(t, IsEditable(&Agent{Status: StatusArchived}))
}

func TestLineageID(t *testing.T) {
	root := &Agent{ID: 10}
	require.Equal(t, int64(10), root.LineageID())

	child := &Agent{ID: 11, ParentAgentID: sql.NullInt64{Int64: 10, Valid: true}}
	require.Equal(t, int64(10), child.LineageID())
}
