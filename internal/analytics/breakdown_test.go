package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anaypant/acs-next-js-dev-sub002/internal/domain"
)

func TestGrowth(t *testing.T) {
	tests := []struct {
		name              string
		previous, current int
		want              float64
	}{
		{"from nothing", 0, 3, 100},
		{"nothing at all", 0, 0, 0},
		{"halved", 10, 5, -50},
		{"doubled", 4, 8, 100},
		{"flat", 7, 7, 0},
		{"thirds", 3, 4, 33.33},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Growth(tt.previous, tt.current))
		})
	}
}

func TestMonthlyGrowth(t *testing.T) {
	a, _ := newTestAnalyzer()

	convs := []domain.Conversation{
		conversation("oct-1", "2026-10-01T00:00:00Z"),
		conversation("oct-2", "2026-10-13T10:00:00"),
		conversation("sep-1", "2026-09-30T23:59:59Z"),
		conversation("sep-2", "2026-09-01T00:00:00Z"),
		conversation("sep-3", "2026-09-17T00:00:00Z"),
		conversation("sep-4", "2026-09-02T00:00:00Z"),
		conversation("aug", "2026-08-31T23:59:59Z"),
		conversation("blank", ""),
	}
	assert.Equal(t, -50.0, a.MonthlyGrowth(convs))
	assert.Equal(t, 100.0, a.MonthlyGrowth(convs[:2]))
	assert.Equal(t, 0.0, a.MonthlyGrowth(nil))
}

func TestMonthlyGrowthAcrossYearBoundary(t *testing.T) {
	jan := fixedNow.AddDate(0, -9, 0)
	a := New(WithClock(func() time.Time { return jan }))
	convs := []domain.Conversation{
		conversation("dec", "2025-12-20T00:00:00Z"),
		conversation("jan", "2026-01-03T00:00:00Z"),
		conversation("jan-2", "2026-01-04T00:00:00Z"),
	}
	assert.Equal(t, 100.0, a.MonthlyGrowth(convs))
}

func TestConversionFunnel(t *testing.T) {
	done := conversation("done", "")
	done.Thread.Completed = true
	spamDone := conversation("spam-done", "")
	spamDone.Thread.Completed = true
	spamDone.Thread.Spam = true

	stages := ConversionFunnel([]domain.Conversation{conversation("open", ""), done, spamDone, conversation("open-2", "")})
	require.Len(t, stages, 3)
	assert.Equal(t, FunnelStage{Stage: "Total", Count: 4, Percentage: 100}, stages[0])
	assert.Equal(t, FunnelStage{Stage: "Active", Count: 2, Percentage: 50}, stages[1])
	assert.Equal(t, FunnelStage{Stage: "Completed", Count: 2, Percentage: 50}, stages[2])

	empty := ConversionFunnel(nil)
	require.Len(t, empty, 3)
	for _, s := range empty {
		assert.Zero(t, s.Count)
		assert.Zero(t, s.Percentage)
	}
}

func TestLeadSources(t *testing.T) {
	withSource := func(id, src string) domain.Conversation {
		c := conversation(id, "")
		c.Thread.SourceName = src
		return c
	}
	got := LeadSources([]domain.Conversation{
		withSource("1", "Zillow"),
		withSource("2", "Realtor.com"),
		withSource("3", "Zillow"),
		withSource("4", ""),
		withSource("5", "  "),
		withSource("6", "Website"),
	})

	assert.Equal(t, []SourceCount{
		{Source: "Unknown", Count: 2, Percentage: 33.33},
		{Source: "Zillow", Count: 2, Percentage: 33.33},
		{Source: "Realtor.com", Count: 1, Percentage: 16.67},
		{Source: "Website", Count: 1, Percentage: 16.67},
	}, got)
	assert.Empty(t, LeadSources(nil))
}

func TestEVDistribution(t *testing.T) {
	items := []domain.ProcessedConversation{
		processed("a", ptr(0), domain.StatusActive),
		processed("b", ptr(19.99), domain.StatusActive),
		processed("c", ptr(20), domain.StatusActive),
		processed("d", ptr(79.5), domain.StatusActive),
		processed("e", ptr(100), domain.StatusActive),
		processed("f", ptr(120), domain.StatusActive),
		processed("g", ptr(-3), domain.StatusActive),
		processed("h", nil, domain.StatusActive),
	}
	buckets := EVDistribution(items)
	require.Len(t, buckets, 5)

	counts := make([]int, len(buckets))
	for i, b := range buckets {
		counts[i] = b.Count
	}
	assert.Equal(t, []int{3, 1, 0, 1, 2}, counts)
	assert.Equal(t, "80-100", buckets[4].Range)
}
