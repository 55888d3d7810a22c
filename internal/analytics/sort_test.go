package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/anaypant/acs-next-js-dev-sub002/internal/domain"
)

func TestSortByEV(t *testing.T) {
	items := []domain.ProcessedConversation{
		processed("none", nil, domain.StatusActive),
		processed("high", ptr(90), domain.StatusActive),
		processed("zero", ptr(0), domain.StatusActive),
		processed("mid", ptr(50), domain.StatusActive),
	}

	assert.Equal(t, []string{"high", "mid", "none", "zero"}, ids(Sort(items, SortByEV, Descending)))
	assert.Equal(t, []string{"none", "zero", "mid", "high"}, ids(Sort(items, SortByEV, Ascending)),
		"missing scores count as 0 and ties keep input order")
	assert.Equal(t, "none", items[0].ID(), "input untouched")
}

func TestSortByName(t *testing.T) {
	items := []domain.ProcessedConversation{
		processed("bob", nil, domain.StatusActive),
		processed("Alice", nil, domain.StatusActive),
		processed("carol", nil, domain.StatusActive),
	}
	assert.Equal(t, []string{"Alice", "bob", "carol"}, ids(Sort(items, SortByName, Ascending)))
	assert.Equal(t, []string{"carol", "bob", "Alice"}, ids(Sort(items, SortByName, Descending)))
}

func TestSortByStatus(t *testing.T) {
	items := []domain.ProcessedConversation{
		processed("1", nil, domain.StatusSpam),
		processed("2", nil, domain.StatusActive),
		processed("3", nil, domain.StatusPending),
		processed("4", nil, domain.StatusCompleted),
	}
	assert.Equal(t, []string{"2", "4", "3", "1"}, ids(Sort(items, SortByStatus, Ascending)))
}

func TestSortByDate(t *testing.T) {
	at := func(id, ts string) domain.ProcessedConversation {
		pc := processed(id, nil, domain.StatusActive)
		pc.Thread.LastMessageAt = ts
		return pc
	}
	items := []domain.ProcessedConversation{
		at("broken", "???"),
		at("jan", "2026-01-01T00:00:00Z"),
		at("mar", "2026-03-01T00:00:00"),
		at("feb", "2026-02-01T00:00:00.000"),
	}

	assert.Equal(t, []string{"mar", "feb", "jan", "broken"}, ids(Sort(items, SortByDate, Descending)))
	assert.Equal(t, []string{"jan", "feb", "mar", "broken"}, ids(Sort(items, SortByDate, Ascending)))
	assert.Equal(t, []string{"mar", "feb", "jan", "broken"}, ids(Sort(items, "bogus", Descending)))
}

func TestParseSort(t *testing.T) {
	tests := []struct {
		in   string
		want SortField
		ok   bool
	}{
		{"date", SortByDate, true},
		{"lastMessageAt", SortByDate, true},
		{"Name", SortByName, true},
		{"ev_score", SortByEV, true},
		{"status", SortByStatus, true},
		{"size", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseSortField(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}

}

func TestParseSortOrder(t *testing.T) {
	tests := []struct {
		in   string
		want SortOrder
		ok   bool
	}{
		{"ASC", Ascending, true},
		{"desc", Descending, true},
		{"", Descending, true},
		{"sideways", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseSortOrder(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
