package analytics

import (
	"sort"
	"strings"
	"time"

	"github.com/anaypant/acs-next-js-dev-sub002/internal/domain"
)

// FunnelStage is one step of the conversion funnel.
type FunnelStage struct {
	Stage      string  `json:"stage"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// ConversionFunnel returns the Total, Active (not completed) and Completed
// stages with their share of the total.
func ConversionFunnel(conversations []domain.Conversation) []FunnelStage {
	total := len(conversations)
	completed := 0
	for _, c := range conversations {
		if c.Thread.Completed {
			completed++
		}
	}
	active := total - completed
	return []FunnelStage{
		{Stage: "Total", Count: total, Percentage: percent(total, total)},
		{Stage: "Active", Count: active, Percentage: percent(active, total)},
		{Stage: "Completed", Count: completed, Percentage: percent(completed, total)},
	}
}

// Growth is the percentage change from previous to current. From zero it
// is 100 when current is positive and 0 otherwise.
func Growth(previous, current int) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return round2(float64(current-previous) / float64(previous) * 100)
}

// MonthlyGrowth compares conversations created in the current UTC calendar
// month with the previous one.
func (a *Analyzer) MonthlyGrowth(conversations []domain.Conversation) float64 {
	now := a.now().UTC()
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	lastMonth := thisMonth.AddDate(0, -1, 0)

	var current, previous int
	for _, c := range conversations {
		at, ok := a.createdAt(c)
		if !ok {
			continue
		}
		switch {
		case !at.Before(thisMonth) && at.Before(thisMonth.AddDate(0, 1, 0)):
			current++
		case !at.Before(lastMonth) && at.Before(thisMonth):
			previous++
		}
	}
	return Growth(previous, current)
}

// SourceCount is the number of conversations from one lead source.
type SourceCount struct {
	Source     string  `json:"source"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

const unknownSource = "Unknown"

// LeadSources counts conversations per SourceName, most common first and
// then by name. Blank sources are grouped as "Unknown".
func LeadSources(conversations []domain.Conversation) []SourceCount {
	counts := make(map[string]int)
	for _, c := range conversations {
		src := strings.TrimSpace(c.Thread.SourceName)
		if src == "" {
			src = unknownSource
		}
		counts[src]++
	}

	out := make([]SourceCount, 0, len(counts))
	for src, n := range counts {
		out = append(out, SourceCount{Source: src, Count: n, Percentage: percent(n, len(conversations))})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Source < out[j].Source
	})
	return out
}

// ScoreBucket is one band of the EV distribution.
type ScoreBucket struct {
	Range string `json:"range"`
	Min   int    `json:"min"`
	Max   int    `json:"max"`
	Count int    `json:"count"`
}

// EVDistribution buckets scored conversations into five 20-point bands.
// Each band includes its lower bound; the last also includes 100. Scores
// outside 0..100 fall into the nearest band.
func EVDistribution(items []domain.ProcessedConversation) []ScoreBucket {
	buckets := []ScoreBucket{
		{Range: "0-20", Min: 0, Max: 20},
		{Range: "20-40", Min: 20, Max: 40},
		{Range: "40-60", Min: 40, Max: 60},
		{Range: "60-80", Min: 60, Max: 80},
		{Range: "80-100", Min: 80, Max: 100},
	}
	for _, pc := range items {
		if pc.EVScore == nil {
			continue
		}
		i := int(*pc.EVScore / 20)
		if i < 0 {
			i = 0
		}
		if i >= len(buckets) {
			i = len(buckets) - 1
		}
		buckets[i].Count++
	}
	return buckets
}
