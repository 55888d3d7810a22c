package analytics

import "github.com/anaypant/acs-next-js-dev-sub002/internal/domain"

// ClassifyStatus derives the lifecycle status of a thread. The first
// matching rule wins: spam, flagged (flag or flag for review), completed,
// pending (busy), active.
func ClassifyStatus(t domain.Thread) domain.Status {
	switch {
	case t.Spam:
		return domain.StatusSpam
	case t.Flag || t.FlagForReview:
		return domain.StatusFlagged
	case t.Completed:
		return domain.StatusCompleted
	case t.Busy:
		return domain.StatusPending
	default:
		return domain.StatusActive
	}
}
