// Package dashboard keeps the current normalized conversation set and its
// dashboard metrics. It loads raw payloads from a source.Loader, runs them
// through the normalizer and analyzer, and shares the result through an
// optional cache guarded by a distributed lock.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/anaypant/acs-next-js-dev-sub002/internal/analytics"
	"github.com/anaypant/acs-next-js-dev-sub002/internal/cache"
	"github.com/anaypant/acs-next-js-dev-sub002/internal/domain"
	"github.com/anaypant/acs-next-js-dev-sub002/internal/normalize"
	"github.com/anaypant/acs-next-js-dev-sub002/internal/pkg/distlock"
	"github.com/anaypant/acs-next-js-dev-sub002/internal/pkg/logger"
	"github.com/anaypant/acs-next-js-dev-sub002/internal/source"
)

// ErrNotFound is returned when a conversation id is not in the snapshot.
var ErrNotFound = errors.New("conversation not found")

// Snapshot is one complete refresh result.
type Snapshot struct {
	GeneratedAt   time.Time                      `json:"generated_at"`
	Source        string                         `json:"source"`
	Conversations []domain.ProcessedConversation `json:"conversations"`
	Metrics       analytics.DashboardMetrics     `json:"metrics"`
	Analytics     analytics.DashboardAnalytics   `json:"analytics"`
}

// Store persists snapshots between instances. *cache.SnapshotCache
// implements it.
type Store interface {
	Store(ctx context.Context, v interface{}) error
	Load(ctx context.Context, dst interface{}) error
}

// Service serves dashboard data from the latest snapshot.
type Service struct {
	loader     source.Loader
	normalizer *normalize.Normalizer
	analyzer   *analytics.Analyzer
	store      Store
	lock       distlock.DistLock
	log        logger.Sink
	interval   time.Duration
	timeout    time.Duration

	refreshMu sync.Mutex

	mu          sync.RWMutex
	snapshot    *Snapshot
	lastRefresh time.Time
	lastErr     error
	isRunning   bool
}

// Option configures a Service.
type Option func(*Service)

// WithStore shares snapshots through s.
func WithStore(s Store) Option { return func(svc *Service) { svc.store = s } }

// WithLock guards refreshes with l so only one instance refreshes at a time.
func WithLock(l distlock.DistLock) Option { return func(svc *Service) { svc.lock = l } }

// WithLogger sets the service logger.
func WithLogger(l logger.Sink) Option {
	return func(svc *Service) {
		if l != nil {
			svc.log = l
		}
	}
}

// WithNormalizer replaces the default normalizer.
func WithNormalizer(n *normalize.Normalizer) Option {
	return func(svc *Service) {
		if n != nil {
			svc.normalizer = n
		}
	}
}

// WithAnalyzer replaces the default analyzer.
func WithAnalyzer(a *analytics.Analyzer) Option {
	return func(svc *Service) {
		if a != nil {
			svc.analyzer = a
		}
	}
}

// WithInterval sets the Start refresh period.
func WithInterval(d time.Duration) Option {
	return func(svc *Service) {
		if d > 0 {
			svc.interval = d
		}
	}
}

// WithLoadTimeout bounds each source load.
func WithLoadTimeout(d time.Duration) Option {
	return func(svc *Service) {
		if d > 0 {
			svc.timeout = d
		}
	}
}

// NewService creates a Service reading from loader.
func NewService(loader source.Loader, opts ...Option) *Service {
	svc := &Service{
		loader:     loader,
		normalizer: normalize.New(),
		analyzer:   analytics.New(),
		log:        logger.Nop(),
		interval:   5 * time.Minute,
		timeout:    30 * time.Second,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Start refreshes immediately and then on every interval until ctx is done.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	s.isRunning = true
	s.mu.Unlock()

	s.log.Info("starting dashboard refresher", "source", s.loader.Name(), "interval", s.interval.String())

	s.refreshLogged(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("stopping dashboard refresher")
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
			return
		case <-ticker.C:
			s.refreshLogged(ctx)
		}
	}
}

func (s *Service) refreshLogged(ctx context.Context) {
	if _, err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
		s.log.Error("dashboard refresh failed", "error", err.Error())
	}
}

// Refresh rebuilds the snapshot from the source. When another instance
// holds the refresh lock, Refresh adopts the cached snapshot instead.
func (s *Service) Refresh(ctx context.Context) (*Snapshot, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	if s.lock == nil {
		return s.rebuild(ctx)
	}

	var snap *Snapshot
	err := distlock.WithLock(ctx, s.lock, func(ctx context.Context) error {
		var err error
		snap, err = s.rebuild(ctx)
		return err
	})
	if errors.Is(err, distlock.ErrLocked) {
		s.log.Info("refresh lock held elsewhere, using cached snapshot")
		if cached, cacheErr := s.fromStore(ctx); cacheErr == nil {
			return cached, nil
		}
		if current := s.current(); current != nil {
			return current, nil
		}
		return nil, fmt.Errorf("refresh in progress elsewhere and no snapshot available: %w", err)
	}
	return snap, err
}

func (s *Service) rebuild(ctx context.Context) (*Snapshot, error) {
	start := time.Now()

	loadCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	items, err := s.loader.Load(loadCtx)
	if err != nil {
		s.setError(err)
		return nil, fmt.Errorf("loading from %s: %w", s.loader.Name(), err)
	}

	conversations := s.normalizer.Assemble(items)
	processed := s.analyzer.Process(conversations)
	snap := &Snapshot{
		Source:        s.loader.Name(),
		Conversations: processed,
		Metrics:       s.analyzer.Metrics(processed),
		Analytics:     s.analyzer.Analytics(processed),
	}
	snap.GeneratedAt = snap.Analytics.GeneratedAt

	s.setSnapshot(snap)
	s.log.Info("dashboard refreshed",
		"source", snap.Source,
		"items", len(items),
		"conversations", len(processed),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if s.store != nil {
		if err := s.store.Store(ctx, snap); err != nil {
			s.log.Warn("failed to cache dashboard snapshot", "error", err.Error())
		}
	}
	return snap, nil
}

func (s *Service) fromStore(ctx context.Context) (*Snapshot, error) {
	if s.store == nil {
		return nil, cache.ErrMiss
	}
	var snap Snapshot
	if err := s.store.Load(ctx, &snap); err != nil {
		return nil, err
	}
	s.setSnapshot(&snap)
	return &snap, nil
}

// Snapshot returns the in-memory snapshot, falling back to the shared
// store and then to a fresh refresh.
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	if snap := s.current(); snap != nil {
		return snap, nil
	}
	snap, err := s.fromStore(ctx)
	if err == nil {
		return snap, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.log.Warn("failed to read cached dashboard snapshot", "error", err.Error())
	}
	return s.Refresh(ctx)
}

// Conversations returns the snapshot's conversations filtered by f and
// sorted by field and order.
func (s *Service) Conversations(ctx context.Context, f analytics.Filter, field analytics.SortField, order analytics.SortOrder) ([]domain.ProcessedConversation, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	items := snap.Conversations
	if !f.IsZero() {
		items = s.analyzer.Filter(items, f)
	}
	return analytics.Sort(items, field, order), nil
}

// Conversation returns one conversation by id.
func (s *Service) Conversation(ctx context.Context, id string) (*domain.ProcessedConversation, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	for i := range snap.Conversations {
		if snap.Conversations[i].ID() == id {
			pc := snap.Conversations[i]
			return &pc, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Normalize assembles a raw payload without touching the snapshot.
func (s *Service) Normalize(data []byte) ([]domain.ProcessedConversation, error) {
	conversations, err := s.normalizer.AssembleJSON(data)
	if err != nil {
		return nil, err
	}
	return s.analyzer.Process(conversations), nil
}

// Status reports the refresher state for health checks.
func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := Status{
		Running:     s.isRunning,
		Source:      s.loader.Name(),
		LastRefresh: s.lastRefresh,
	}
	if s.snapshot != nil {
		st.Conversations = len(s.snapshot.Conversations)
	}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	return st
}

// Status is the refresher state.
type Status struct {
	Running       bool      `json:"running"`
	Source        string    `json:"source"`
	LastRefresh   time.Time `json:"last_refresh"`
	Conversations int       `json:"conversations"`
	LastError     string    `json:"last_error,omitempty"`
}

func (s *Service) current() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

func (s *Service) setSnapshot(snap *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snap
	s.lastRefresh = snap.GeneratedAt
	s.lastErr = nil
}

func (s *Service) setError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
}
