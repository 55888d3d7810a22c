package analytics

import (
	"fmt"
	"time"

	"github.com/anaypant/acs-next-js-dev-sub002/internal/domain"
	"github.com/anaypant/acs-next-js-dev-sub002/internal/normalize"
)

// Process decorates each conversation with its EV score, status and a
// human last-activity label. The input is not modified.
func (a *Analyzer) Process(conversations []domain.Conversation) []domain.ProcessedConversation {
	now := a.now()
	out := make([]domain.ProcessedConversation, len(conversations))
	for i, c := range conversations {
		out[i] = domain.ProcessedConversation{
			Conversation: c,
			EVScore:      EVScore(c.Messages),
			Status:       ClassifyStatus(c.Thread),
			LastActivity: a.lastActivity(c, now),
		}
	}
	return out
}

func (a *Analyzer) lastActivity(c domain.Conversation, now time.Time) string {
	at, ok := normalize.TryParse(c.Thread.LastMessageAt)
	if !ok {
		a.log.Warn("conversation has unparseable last_message_at", "conversation_id", c.ID(), "value", c.Thread.LastMessageAt)
		return "Unknown"
	}
	return RelativeTime(at, now)
}

// RelativeTime labels t relative to now: "Just now" under a minute, then
// minutes, hours and days up to a week, then the calendar date.
func RelativeTime(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "Just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d/(24*time.Hour)))
	default:
		return t.UTC().Format("Jan 2, 2006")
	}
}
