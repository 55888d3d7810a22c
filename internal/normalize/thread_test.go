package normalize

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anaypant/acs-next-js-dev-sub002/internal/domain"
)

func msgAt(id, ts string, at time.Time, score *float64) domain.Message {
	return domain.Message{ID: id, ConversationID: "c-1", Timestamp: ts, LocalDate: at, EVScore: score}
}

func TestProcessThreadLeadNamePriority(t *testing.T) {
	tests := []struct {
		name string
		raw  Record
		want string
	}{
		{"lead_name first", Record{"lead_name": "Ana", "source_name": "Zillow", "name": "Bob"}, "Ana"},
		{"source_name before name", Record{"source_name": "Zillow", "name": "Bob"}, "Zillow"},
		{"name before client_name", Record{"name": "Bob", "client_name": "Cy"}, "Bob"},
		{"client_name before sender_name", Record{"client_name": "Cy", "sender_name": "Di"}, "Cy"},
		{"sender_name last", Record{"sender_name": "Di"}, "Di"},
		{"fallback", Record{"lead_name": ""}, "Unknown Lead"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, _ := newTestNormalizer()
			assert.Equal(t, tt.want, n.ProcessThread(tt.raw, nil).LeadName)
		})
	}
}

func TestProcessThreadStrictFlags(t *testing.T) {
	n, _ := newTestNormalizer()
	th := n.ProcessThread(Record{
		"conversation_id":    "c-1",
		"spam":               "true",
		"busy":               json.Number("1"),
		"completed":          1.0,
		"flag":               true,
		"flag_for_review":    false,
		"flagReviewOverride": true,
		"lcp_enabled":        "yes",
		"read":               true,
	}, nil)

	assert.False(t, th.Spam)
	assert.False(t, th.Busy)
	assert.False(t, th.Completed)
	assert.True(t, th.Flag)
	assert.False(t, th.FlagForReview)
	assert.True(t, th.FlagReviewOverride)
	assert.False(t, th.LCPEnabled)
	assert.True(t, th.Read)
}

func TestProcessThreadLastMessageAt(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("newest message wins", func(t *testing.T) {
		n, _ := newTestNormalizer()
		msgs := []domain.Message{
			msgAt("a", "2024-05-01T10:00:00Z", base, nil),
			msgAt("b", "2024-05-03T10:00:00", base.Add(48*time.Hour), nil),
			msgAt("c", "2024-05-02T10:00:00Z", base.Add(24*time.Hour), nil),
		}
		th := n.ProcessThread(Record{"lastMessageAt": "2020-01-01T00:00:00Z"}, msgs)
		assert.Equal(t, "2024-05-03T10:00:00", th.LastMessageAt)
	})

	t.Run("tie keeps the earlier position", func(t *testing.T) {
		n, _ := newTestNormalizer()
		msgs := []domain.Message{
			msgAt("a", "first", base, nil),
			msgAt("b", "second", base, nil),
		}
		assert.Equal(t, "first", n.ProcessThread(Record{}, msgs).LastMessageAt)
	})

	t.Run("raw fallbacks", func(t *testing.T) {
		n, _ := newTestNormalizer()
		assert.Equal(t, "2024-01-01T00:00:00Z",
			n.ProcessThread(Record{"lastMessageAt": "2024-01-01T00:00:00Z", "last_updated": "2023-01-01"}, nil).LastMessageAt)
		assert.Equal(t, "2023-01-01",
			n.ProcessThread(Record{"last_updated": "2023-01-01"}, nil).LastMessageAt)
		assert.Equal(t, "2026-10-14T12:00:00.000Z", n.ProcessThread(Record{}, nil).LastMessageAt)
	})
}

func TestProcessThreadAIScoreUsesFirstScoredMessage(t *testing.T) {
	n, _ := newTestNormalizer()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	msgs := []domain.Message{
		msgAt("a", "", base, nil),
		msgAt("b", "", base, ptr(40)),
		msgAt("c", "", base.Add(time.Hour), ptr(90)),
	}

	th := n.ProcessThread(Record{}, msgs)
	require.NotNil(t, th.AIScore)
	assert.Equal(t, 40.0, *th.AIScore)

	assert.Nil(t, n.ProcessThread(Record{}, msgs[:1]).AIScore)
}

func TestProcessThreadFields(t *testing.T) {
	n, _ := newTestNormalizer()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	msgs := []domain.Message{
		msgAt("a", "2024-05-02T10:00:00Z", base.Add(24*time.Hour), nil),
		msgAt("b", "2024-05-01T10:00:00Z", base, nil),
	}

	th := n.ProcessThread(Record{
		"associated_account":       "lead@example.com",
		"phone_number":             json.Number("5551234567"),
		"property_location":        "Austin, TX",
		"lead_source":              "Zillow",
		"summary":                  "Wants a 3BR near downtown",
		"budget":                   "$400k-$500k",
		"move_timeline":            "3 months",
		"preferred_property_types": []interface{}{"condo", "townhouse"},
		"priority":                 "high",
	}, msgs)

	assert.Equal(t, "c-1", th.ConversationID, "taken from the messages")
	assert.Equal(t, "Unknown Lead", th.LeadName, "lead_source is not part of the name chain")
	assert.Equal(t, "lead@example.com", th.ClientEmail)
	assert.Equal(t, "5551234567", th.Phone)
	assert.Equal(t, "Austin, TX", th.Location)
	assert.Equal(t, "Zillow", th.SourceName)
	assert.Equal(t, "Wants a 3BR near downtown", th.AISummary)
	assert.Equal(t, "$400k-$500k", th.BudgetRange)
	assert.Equal(t, "3 months", th.Timeline)
	assert.Equal(t, []string{"condo", "townhouse"}, th.PreferredPropertyTypes)
	assert.Equal(t, "high", th.Priority)
	assert.Equal(t, "2024-05-01T10:00:00Z", th.CreatedAt, "earliest message")
	assert.Equal(t, "2024-05-02T10:00:00Z", th.UpdatedAt, "falls back to last message")

	typed := n.ProcessThread(Record{"property_types": "condo, , loft", "created_at": "2024-01-01"}, nil)
	assert.Equal(t, []string{"condo", "loft"}, typed.PreferredPropertyTypes)
	assert.Equal(t, "2024-01-01", typed.CreatedAt)
	assert.Equal(t, "", typed.ConversationID)
}
