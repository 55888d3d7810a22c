package analytics

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/anaypant/acs-next-js-dev-sub002/internal/domain"
	"github.com/anaypant/acs-next-js-dev-sub002/internal/normalize"
)

// SortField names the key conversations are ordered by.
type SortField string

const (
	SortByDate   SortField = "date"
	SortByName   SortField = "name"
	SortByEV     SortField = "ev"
	SortByStatus SortField = "status"
)

// SortOrder is the direction of a sort.
type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// ParseSortField accepts the field names above plus a few aliases used by
// the dashboard query string.
func ParseSortField(s string) (SortField, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "date", "last_message_at", "lastmessageat", "recent":
		return SortByDate, true
	case "name", "lead_name", "leadname":
		return SortByName, true
	case "ev", "ev_score", "evscore", "score":
		return SortByEV, true
	case "status":
		return SortByStatus, true
	default:
		return "", false
	}
}

// ParseSortOrder accepts "asc" or "desc" in any case. Blank means
// Descending.
func ParseSortOrder(s string) (SortOrder, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(Descending):
		return Descending, true
	case string(Ascending):
		return Ascending, true
	default:
		return "", false
	}
}

// Sort returns a stably sorted copy of items. An unknown field sorts by
// date. Missing EV scores sort as 0. Conversations with an unparseable
// date sort last in either direction.
func Sort(items []domain.ProcessedConversation, field SortField, order SortOrder) []domain.ProcessedConversation {
	type keyed struct {
		pc    domain.ProcessedConversation
		name  string
		date  int64
		valid bool
	}

	switch field {
	case SortByName, SortByEV, SortByStatus:
	default:
		field = SortByDate
	}

	fold := cases.Fold()
	keys := make([]keyed, len(items))
	for i, pc := range items {
		k := keyed{pc: pc}
		switch field {
		case SortByName:
			k.name = fold.String(pc.Thread.LeadName)
		case SortByDate:
			if at, ok := normalize.TryParse(pc.Thread.LastMessageAt); ok {
				k.date, k.valid = at.UnixNano(), true
			}
		}
		keys[i] = k
	}

	cmp := func(a, b keyed) int {
		switch field {
		case SortByName:
			return strings.Compare(a.name, b.name)
		case SortByEV:
			return compareFloat(evOrZero(a.pc), evOrZero(b.pc))
		case SortByStatus:
			return strings.Compare(string(a.pc.Status), string(b.pc.Status))
		default:
			return compareInt(a.date, b.date)
		}
	}

	sort.SliceStable(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if field == SortByDate && a.valid != b.valid {
			return a.valid
		}
		if order == Ascending {
			return cmp(a, b) < 0
		}
		return cmp(a, b) > 0
	})

	out := make([]domain.ProcessedConversation, len(keys))
	for i, k := range keys {
		out[i] = k.pc
	}
	return out
}

func evOrZero(pc domain.ProcessedConversation) float64 {
	if pc.EVScore == nil {
		return 0
	}
	return *pc.EVScore
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
