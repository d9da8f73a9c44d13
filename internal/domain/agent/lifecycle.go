// internal/domain/agent/lifecycle.go
package agent

// The status machine:
//
//	draft -> under_review -> {approved, rejected}
//	rejected -> under_review (resubmit)
//	approved -> archived (manual retirement, or superseded by a new version)
//
// Only draft and rejected agents are editable.

// IsPubliclyVisible reports whether the agent appears in the public
// marketplace. An approved agent with a version under review stays hidden
// so that exactly one version per lineage is visible at a time.
func IsPubliclyVisible(a *Agent) bool {
	return a.Status == StatusApproved && !a.HasActiveUpdate
}

// IsEditable reports whether the seller may modify the listing.
func IsEditable(a *Agent) bool {
	switch a.Status {
	case StatusDraft, StatusRejected:
		return true
	case StatusUnderReview, StatusApproved, StatusArchived:
		return false
	}
	return false
}

// CanTransition reports whether the status machine permits moving from one
// status to another. Callers surface a violation as ErrInvalidTransition.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusDraft:
		return to == StatusUnderReview
	case StatusRejected:
		return to == StatusUnderReview
	case StatusUnderReview:
		return to == StatusApproved || to == StatusRejected
	case StatusApproved:
		return to == StatusArchived
	case StatusArchived:
		return false
	}
	return false
}
