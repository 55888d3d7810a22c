package analytics

import (
	"strings"
	"time"

	"github.com/anaypant/acs-next-js-dev-sub002/internal/domain"
	"github.com/anaypant/acs-next-js-dev-sub002/internal/normalize"
)

const dayLayout = "2006-01-02"

// TrendSeries is a daily series. Labels, Dates and Data are parallel and
// always exactly one window long, oldest day first.
type TrendSeries struct {
	Labels []string  `json:"labels"`
	Dates  []string  `json:"dates"`
	Data   []float64 `json:"data"`
}

// Total sums the series.
func (s TrendSeries) Total() float64 {
	var sum float64
	for _, v := range s.Data {
		sum += v
	}
	return sum
}

// window returns the UTC days of the lookback ending today, and an index
// by "2006-01-02".
func (a *Analyzer) window() ([]time.Time, map[string]int) {
	today := a.today()
	days := make([]time.Time, a.windowDays)
	index := make(map[string]int, a.windowDays)
	for i := range days {
		day := today.AddDate(0, 0, i-(a.windowDays-1))
		days[i] = day
		index[day.Format(dayLayout)] = i
	}
	return days, index
}

func newSeries(days []time.Time) TrendSeries {
	s := TrendSeries{
		Labels: make([]string, len(days)),
		Dates:  make([]string, len(days)),
		Data:   make([]float64, len(days)),
	}
	for i, day := range days {
		s.Labels[i] = day.Format("Jan 2")
		s.Dates[i] = day.Format(dayLayout)
	}
	return s
}

// createdAt parses a conversation's CreatedAt. Blank and unparseable
// values are skipped and logged.
func (a *Analyzer) createdAt(c domain.Conversation) (time.Time, bool) {
	raw := strings.TrimSpace(c.Thread.CreatedAt)
	if raw == "" {
		a.log.Debug("skipping conversation without created_at", "conversation_id", c.ID())
		return time.Time{}, false
	}
	t, ok := normalize.TryParse(raw)
	if !ok {
		a.log.Warn("skipping conversation with unparseable created_at", "conversation_id", c.ID(), "value", raw)
		return time.Time{}, false
	}
	return t.UTC(), true
}

// ConversationTrend counts conversations by the UTC day of CreatedAt over
// the lookback window.
func (a *Analyzer) ConversationTrend(conversations []domain.Conversation) TrendSeries {
	days, index := a.window()
	s := newSeries(days)
	for _, c := range conversations {
		at, ok := a.createdAt(c)
		if !ok {
			continue
		}
		if i, inWindow := index[at.Format(dayLayout)]; inWindow {
			s.Data[i]++
		}
	}
	return s
}

// ResponseTimeTrend is the average inbound-to-outbound reply latency, in
// minutes, of the conversations created on each day of the window. Reply
// pairs are pooled across the day's conversations.
func (a *Analyzer) ResponseTimeTrend(conversations []domain.Conversation) TrendSeries {
	days, index := a.window()
	s := newSeries(days)
	totals := make([]time.Duration, len(days))
	counts := make([]int, len(days))
	for _, c := range conversations {
		at, ok := a.createdAt(c)
		if !ok {
			continue
		}
		i, inWindow := index[at.Format(dayLayout)]
		if !inWindow {
			continue
		}
		total, n := replyLatencies(c.Messages)
		totals[i] += total
		counts[i] += n
	}
	for i := range s.Data {
		if counts[i] > 0 {
			s.Data[i] = minutes(totals[i] / time.Duration(counts[i]))
		}
	}
	return s
}
