package analytics

import (
	"math"

	"github.com/anaypant/acs-next-js-dev-sub002/internal/domain"
)

// EVScore is the mean EV score of the messages that carry a finite one,
// rounded to two decimals. It is nil when no message is scored.
func EVScore(messages []domain.Message) *float64 {
	var sum float64
	var n int
	for _, m := range messages {
		if m.EVScore == nil || !finite(*m.EVScore) {
			continue
		}
		sum += *m.EVScore
		n++
	}
	if n == 0 {
		return nil
	}
	avg := round2(sum / float64(n))
	return &avg
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// percent returns part/total as a percentage with two decimals, 0 when
// total is 0.
func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(part) / float64(total) * 100)
}
