package analytics

import (
	"sort"
	"time"

	"github.com/anaypant/acs-next-js-dev-sub002/internal/domain"
)

// chronological returns a copy of messages ordered by LocalDate, ties in
// original order.
func chronological(messages []domain.Message) []domain.Message {
	out := make([]domain.Message, len(messages))
	copy(out, messages)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LocalDate.Before(out[j].LocalDate)
	})
	return out
}

// Duration is the time between the first and last message, 0 with fewer
// than two messages.
func Duration(messages []domain.Message) time.Duration {
	if len(messages) < 2 {
		return 0
	}
	ordered := chronological(messages)
	return ordered[len(ordered)-1].LocalDate.Sub(ordered[0].LocalDate)
}

// AverageResponseTime is the mean gap between every pair of adjacent
// messages regardless of direction. Use AverageReplyLatency for how fast
// the agent answers the lead.
func AverageResponseTime(messages []domain.Message) time.Duration {
	if len(messages) < 2 {
		return 0
	}
	ordered := chronological(messages)
	var total time.Duration
	for i := 1; i < len(ordered); i++ {
		total += ordered[i].LocalDate.Sub(ordered[i-1].LocalDate)
	}
	return total / time.Duration(len(ordered)-1)
}

// AverageReplyLatency is the mean time from an inbound message to the
// outbound message directly after it, and the number of such pairs.
func AverageReplyLatency(messages []domain.Message) (time.Duration, int) {
	total, n := replyLatencies(messages)
	if n == 0 {
		return 0, 0
	}
	return total / time.Duration(n), n
}

func replyLatencies(messages []domain.Message) (time.Duration, int) {
	ordered := chronological(messages)
	var total time.Duration
	var n int
	for i := 1; i < len(ordered); i++ {
		prev, cur := ordered[i-1], ordered[i]
		if prev.Type.IsInbound() && cur.Type.IsOutbound() {
			total += cur.LocalDate.Sub(prev.LocalDate)
			n++
		}
	}
	return total, n
}

func minutes(d time.Duration) float64 {
	return round2(d.Minutes())
}
