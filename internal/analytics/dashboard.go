package analytics

import (
	"time"

	"github.com/anaypant/acs-next-js-dev-sub002/internal/domain"
)

// DashboardMetrics are the headline numbers of the lead dashboard.
type DashboardMetrics struct {
	TotalConversations     int      `json:"total_conversations"`
	ActiveConversations    int      `json:"active_conversations"`
	PendingConversations   int      `json:"pending_conversations"`
	CompletedConversations int      `json:"completed_conversations"`
	FlaggedConversations   int      `json:"flagged_conversations"`
	SpamConversations      int      `json:"spam_conversations"`
	UnreadConversations    int      `json:"unread_conversations"`
	TotalMessages          int      `json:"total_messages"`
	InboundMessages        int      `json:"inbound_messages"`
	OutboundMessages       int      `json:"outbound_messages"`
	AverageEVScore         *float64 `json:"average_ev_score"`
	HighValueLeads         int      `json:"high_value_leads"`
	ConversionRate         float64  `json:"conversion_rate"`
	AvgResponseMinutes     float64  `json:"avg_response_minutes"`
	ResponsePairs          int      `json:"response_pairs"`
	MonthlyGrowth          float64  `json:"monthly_growth"`
}

// DashboardAnalytics bundles the chart series of the dashboard.
type DashboardAnalytics struct {
	GeneratedAt       time.Time     `json:"generated_at"`
	WindowDays        int           `json:"window_days"`
	ConversationTrend TrendSeries   `json:"conversation_trend"`
	ResponseTimeTrend TrendSeries   `json:"response_time_trend"`
	ConversionFunnel  []FunnelStage `json:"conversion_funnel"`
	LeadSources       []SourceCount `json:"lead_sources"`
	EVDistribution    []ScoreBucket `json:"ev_distribution"`
	MonthlyGrowth     float64       `json:"monthly_growth"`
}

// Metrics computes the headline numbers. Reply latency pools every
// inbound-to-outbound pair across all conversations. ConversionRate counts
// Thread.Completed, the same predicate as the funnel's Completed stage,
// so a completed conversation flagged as spam still converts.
func (a *Analyzer) Metrics(items []domain.ProcessedConversation) DashboardMetrics {
	m := DashboardMetrics{TotalConversations: len(items)}

	var evSum float64
	var evCount, converted int
	var latency time.Duration
	for _, pc := range items {
		if pc.Thread.Completed {
			converted++
		}
		switch pc.Status {
		case domain.StatusActive:
			m.ActiveConversations++
		case domain.StatusPending:
			m.PendingConversations++
		case domain.StatusCompleted:
			m.CompletedConversations++
		case domain.StatusFlagged:
			m.FlaggedConversations++
		case domain.StatusSpam:
			m.SpamConversations++
		}
		if !pc.Thread.Read {
			m.UnreadConversations++
		}

		for _, msg := range pc.Messages {
			m.TotalMessages++
			switch {
			case msg.Type.IsInbound():
				m.InboundMessages++
			case msg.Type.IsOutbound():
				m.OutboundMessages++
			}
		}

		if pc.EVScore != nil {
			evSum += *pc.EVScore
			evCount++
			if *pc.EVScore >= a.highValueThreshold {
				m.HighValueLeads++
			}
		}

		total, n := replyLatencies(pc.Messages)
		latency += total
		m.ResponsePairs += n
	}

	if evCount > 0 {
		avg := round2(evSum / float64(evCount))
		m.AverageEVScore = &avg
	}
	if m.ResponsePairs > 0 {
		m.AvgResponseMinutes = minutes(latency / time.Duration(m.ResponsePairs))
	}
	m.ConversionRate = percent(converted, m.TotalConversations)
	m.MonthlyGrowth = a.MonthlyGrowth(conversationsOf(items))
	return m
}

// Analytics computes every chart series over items.
func (a *Analyzer) Analytics(items []domain.ProcessedConversation) DashboardAnalytics {
	conversations := conversationsOf(items)
	return DashboardAnalytics{
		GeneratedAt:       a.now().UTC(),
		WindowDays:        a.windowDays,
		ConversationTrend: a.ConversationTrend(conversations),
		ResponseTimeTrend: a.ResponseTimeTrend(conversations),
		ConversionFunnel:  ConversionFunnel(conversations),
		LeadSources:       LeadSources(conversations),
		EVDistribution:    EVDistribution(items),
		MonthlyGrowth:     a.MonthlyGrowth(conversations),
	}
}

func conversationsOf(items []domain.ProcessedConversation) []domain.Conversation {
	out := make([]domain.Conversation, len(items))
	for i, pc := range items {
		out[i] = pc.Conversation
	}
	return out
}
