package analytics

import (
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/anaypant/acs-next-js-dev-sub002/internal/domain"
	"github.com/anaypant/acs-next-js-dev-sub002/internal/normalize"
)

// Filter selects processed conversations. Zero-valued fields match
// everything; set fields are AND-combined.
type Filter struct {
	// Statuses keeps conversations whose status is in the set.
	Statuses []domain.Status
	// EVMin and EVMax bound the aggregate EV score inclusively. While
	// either is set, unscored conversations are excluded.
	EVMin *float64
	EVMax *float64
	// From and To bound LastMessageAt inclusively.
	From time.Time
	To   time.Time
	// Search is a case-insensitive substring over lead name, client email,
	// location, AI summary and message bodies.
	Search string
	// PendingOnly keeps conversations whose status is pending.
	PendingOnly bool
}

// IsZero reports whether f matches everything.
func (f Filter) IsZero() bool {
	return len(f.Statuses) == 0 && f.EVMin == nil && f.EVMax == nil &&
		f.From.IsZero() && f.To.IsZero() && strings.TrimSpace(f.Search) == "" && !f.PendingOnly
}

// Filter returns the conversations matching f, in input order.
func (a *Analyzer) Filter(items []domain.ProcessedConversation, f Filter) []domain.ProcessedConversation {
	m := newMatcher(f)
	out := make([]domain.ProcessedConversation, 0, len(items))
	for _, pc := range items {
		ok, dateErr := m.match(pc)
		if dateErr {
			a.log.Warn("excluding conversation with unparseable last_message_at from date filter",
				"conversation_id", pc.ID(), "value", pc.Thread.LastMessageAt)
		}
		if ok {
			out = append(out, pc)
		}
	}
	return out
}

type matcher struct {
	f        Filter
	statuses map[domain.Status]bool
	fold     cases.Caser
	needle   string
}

func newMatcher(f Filter) *matcher {
	m := &matcher{f: f, fold: cases.Fold()}
	if len(f.Statuses) > 0 {
		m.statuses = make(map[domain.Status]bool, len(f.Statuses))
		for _, s := range f.Statuses {
			m.statuses[s] = true
		}
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		m.needle = m.fold.String(q)
	}
	return m
}

// match reports whether pc passes and whether it was rejected for an
// unparseable date.
func (m *matcher) match(pc domain.ProcessedConversation) (bool, bool) {
	if m.statuses != nil && !m.statuses[pc.Status] {
		return false, false
	}
	if m.f.PendingOnly && pc.Status != domain.StatusPending {
		return false, false
	}
	if m.f.EVMin != nil || m.f.EVMax != nil {
		if pc.EVScore == nil {
			return false, false
		}
		if m.f.EVMin != nil && *pc.EVScore < *m.f.EVMin {
			return false, false
		}
		if m.f.EVMax != nil && *pc.EVScore > *m.f.EVMax {
			return false, false
		}
	}
	if !m.f.From.IsZero() || !m.f.To.IsZero() {
		at, ok := normalize.TryParse(pc.Thread.LastMessageAt)
		if !ok {
			return false, true
		}
		if !m.f.From.IsZero() && at.Before(m.f.From) {
			return false, false
		}
		if !m.f.To.IsZero() && at.After(m.f.To) {
			return false, false
		}
	}
	if m.needle != "" && !m.contains(pc) {
		return false, false
	}
	return true, false
}

func (m *matcher) contains(pc domain.ProcessedConversation) bool {
	t := pc.Thread
	for _, s := range []string{t.LeadName, t.ClientEmail, t.Location, t.AISummary} {
		if m.hit(s) {
			return true
		}
	}
	for _, msg := range pc.Messages {
		if m.hit(msg.Body) {
			return true
		}
	}
	return false
}

func (m *matcher) hit(s string) bool {
	return s != "" && strings.Contains(m.fold.String(s), m.needle)
}
