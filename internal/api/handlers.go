package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/anaypant/acs-next-js-dev-sub002/internal/analytics"
	"github.com/anaypant/acs-next-js-dev-sub002/internal/dashboard"
	"github.com/anaypant/acs-next-js-dev-sub002/internal/domain"
	"github.com/anaypant/acs-next-js-dev-sub002/internal/normalize"
	"github.com/anaypant/acs-next-js-dev-sub002/internal/pkg/distlock"
	"github.com/anaypant/acs-next-js-dev-sub002/internal/pkg/httputil"
)

// maxPayloadBytes caps the body accepted by the normalize endpoint.
const maxPayloadBytes = 10 << 20

// Backend is the dashboard surface the handlers read from.
// *dashboard.Service implements it.
type Backend interface {
	Snapshot(ctx context.Context) (*dashboard.Snapshot, error)
	Refresh(ctx context.Context) (*dashboard.Snapshot, error)
	Conversations(ctx context.Context, f analytics.Filter, field analytics.SortField, order analytics.SortOrder) ([]domain.ProcessedConversation, error)
	Conversation(ctx context.Context, id string) (*domain.ProcessedConversation, error)
	Normalize(data []byte) ([]domain.ProcessedConversation, error)
	Status() dashboard.Status
}

// Handlers contains all HTTP handlers
type Handlers struct {
	backend Backend
}

// NewHandlers creates a new Handlers instance
func NewHandlers(backend Backend) *Handlers {
	return &Handlers{backend: backend}
}

// ListConversations serves the filtered, sorted and paginated conversation list.
//
//	GET /api/conversations?status=&ev_min=&ev_max=&from=&to=&q=&pending_only=&sort=&order=&page=&limit=
func (h *Handlers) ListConversations(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	field, order, err := parseSort(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	items, err := h.backend.Conversations(r.Context(), f, field, order)
	if err != nil {
		h.snapshotError(w, err)
		return
	}

	params := ParsePagination(r, defaultPageLimit, maxPageLimit)
	httputil.OK(w, NewPaginatedResponse(paginate(items, params), params, int64(len(items))))
}

// GetConversation serves a single conversation.
//
//	GET /api/conversations/{id}
func (h *Handlers) GetConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if strings.TrimSpace(id) == "" {
		httputil.BadRequest(w, "conversation id is required")
		return
	}

	pc, err := h.backend.Conversation(r.Context(), id)
	if err != nil {
		if errors.Is(err, dashboard.ErrNotFound) {
			httputil.NotFound(w, fmt.Sprintf("conversation %q not found", id))
			return
		}
		h.snapshotError(w, err)
		return
	}
	httputil.OK(w, pc)
}

// NormalizeConversations assembles a raw payload posted in the body and
// returns the processed conversations. The dashboard snapshot is untouched.
//
//	POST /api/conversations/normalize
func (h *Handlers) NormalizeConversations(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.PayloadTooLarge(w, "payload too large")
			return
		}
		httputil.BadRequest(w, "failed to read request body")
		return
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		httputil.BadRequest(w, "request body is empty")
		return
	}

	items, err := h.backend.Normalize(body)
	if err != nil {
		httputil.BadRequest(w, "invalid payload: "+err.Error())
		return
	}
	httputil.OK(w, map[string]interface{}{
		"conversations": items,
		"count":         len(items),
	})
}

// GetMetrics serves the headline dashboard counters.
//
//	GET /api/dashboard/metrics
func (h *Handlers) GetMetrics(w http.ResponseWriter, r *http.Request) {
	snap, err := h.backend.Snapshot(r.Context())
	if err != nil {
		h.snapshotError(w, err)
		return
	}
	httputil.OK(w, snap.Metrics)
}

// GetAnalytics serves trends, funnel, sources and EV distribution.
//
//	GET /api/dashboard/analytics
func (h *Handlers) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	snap, err := h.backend.Snapshot(r.Context())
	if err != nil {
		h.snapshotError(w, err)
		return
	}
	httputil.OK(w, snap.Analytics)
}

// RefreshDashboard forces a reload from the source.
//
//	POST /api/dashboard/refresh
func (h *Handlers) RefreshDashboard(w http.ResponseWriter, r *http.Request) {
	snap, err := h.backend.Refresh(r.Context())
	if err != nil {
		h.snapshotError(w, err)
		return
	}
	httputil.OK(w, map[string]interface{}{
		"generated_at":  snap.GeneratedAt,
		"source":        snap.Source,
		"conversations": len(snap.Conversations),
	})
}

func (h *Handlers) snapshotError(w http.ResponseWriter, err error) {
	if errors.Is(err, distlock.ErrLocked) {
		httputil.ServiceUnavailable(w, "refresh in progress, try again shortly", "5")
		return
	}
	httputil.InternalError(w, err)
}

func parseFilter(r *http.Request) (analytics.Filter, error) {
	q := r.URL.Query()
	var f analytics.Filter

	if raw := q.Get("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			st := domain.Status(strings.ToLower(strings.TrimSpace(part)))
			if st == "" {
				continue
			}
			if !st.Valid() {
				return f, fmt.Errorf("invalid status %q", part)
			}
			f.Statuses = append(f.Statuses, st)
		}
	}

	var err error
	if f.EVMin, err = parseScore(q.Get("ev_min"), "ev_min"); err != nil {
		return f, err
	}
	if f.EVMax, err = parseScore(q.Get("ev_max"), "ev_max"); err != nil {
		return f, err
	}
	if f.EVMin != nil && f.EVMax != nil && *f.EVMin > *f.EVMax {
		return f, errors.New("ev_min must not exceed ev_max")
	}

	if raw := q.Get("from"); raw != "" {
		t, ok := parseDateBound(raw, false)
		if !ok {
			return f, fmt.Errorf("invalid from date %q", raw)
		}
		f.From = t
	}
	if raw := q.Get("to"); raw != "" {
		t, ok := parseDateBound(raw, true)
		if !ok {
			return f, fmt.Errorf("invalid to date %q", raw)
		}
		f.To = t
	}

	f.Search = strings.TrimSpace(q.Get("q"))

	if raw := q.Get("pending_only"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return f, fmt.Errorf("invalid pending_only %q", raw)
		}
		f.PendingOnly = b
	}
	return f, nil
}

// parseDateBound reads a YYYY-MM-DD value as a whole UTC day: its start,
// or its last instant when endOfDay is set. Other values are instants.
func parseDateBound(raw string, endOfDay bool) (time.Time, bool) {
	if d, err := time.Parse(time.DateOnly, strings.TrimSpace(raw)); err == nil {
		if endOfDay {
			return d.Add(24*time.Hour - time.Nanosecond), true
		}
		return d, true
	}
	return normalize.TryParse(raw)
}

func parseScore(raw, name string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) {
		return nil, fmt.Errorf("invalid %s %q", name, raw)
	}
	return &v, nil
}

func parseSort(r *http.Request) (analytics.SortField, analytics.SortOrder, error) {
	q := r.URL.Query()
	field := analytics.SortByDate
	if raw := q.Get("sort"); raw != "" {
		f, ok := analytics.ParseSortField(raw)
		if !ok {
			return "", "", fmt.Errorf("invalid sort field %q", raw)
		}
		field = f
	}
	order, ok := analytics.ParseSortOrder(q.Get("order"))
	if !ok {
		return "", "", fmt.Errorf("invalid sort order %q", q.Get("order"))
	}
	return field, order, nil
}
