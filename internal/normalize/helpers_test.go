package normalize

import (
	"fmt"
	"sync"
	"time"
)

var fixedNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

type recordingSink struct {
	mu    sync.Mutex
	warns []string
}

func (s *recordingSink) Debug(string, ...interface{}) {}
func (s *recordingSink) Info(string, ...interface{})  {}
func (s *recordingSink) Error(string, ...interface{}) {}

func (s *recordingSink) Warn(msg string, fields ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warns = append(s.warns, fmt.Sprint(append([]interface{}{msg}, fields...)...))
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.warns)
}

func newTestNormalizer() (*Normalizer, *recordingSink) {
	sink := &recordingSink{}
	seq := 0
	n := New(
		WithLogger(sink),
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func(prefix string, at time.Time) string {
			seq++
			return fmt.Sprintf("%s-%d-%03d", prefix, at.UnixMilli(), seq)
		}),
	)
	return n, sink
}
