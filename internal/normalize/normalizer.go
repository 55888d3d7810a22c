// Package normalize turns raw, loosely-typed thread and message records into
// the canonical domain.Conversation model.
//
// Nothing here performs I/O or returns an error for bad input: malformed
// timestamps fall back to the current time, malformed records are dropped,
// and missing fields resolve through ordered alias lists. Diagnostics go to
// an injected logger.Sink (silent by default).
package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/anaypant/acs-next-js-dev-sub002/internal/domain"
	"github.com/anaypant/acs-next-js-dev-sub002/internal/pkg/logger"
)

// Normalizer carries the injectable collaborators of the processors:
// a logger, a clock, and the synthetic id generator.
type Normalizer struct {
	log   logger.Sink
	now   func() time.Time
	newID func(prefix string, at time.Time) string
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithLogger routes warnings about repaired or dropped records to s.
func WithLogger(s logger.Sink) Option {
	return func(n *Normalizer) {
		if s != nil {
			n.log = s
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) {
		if now != nil {
			n.now = now
		}
	}
}

// WithIDGenerator replaces the synthetic id generator.
func WithIDGenerator(fn func(prefix string, at time.Time) string) Option {
	return func(n *Normalizer) {
		if fn != nil {
			n.newID = fn
		}
	}
}

// New creates a Normalizer. Without options it logs nothing and uses the
// wall clock.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		log:   logger.Nop(),
		now:   time.Now,
		newID: syntheticID,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// syntheticID returns "<prefix>-<unix-ms>-<9 random chars>".
func syntheticID(prefix string, at time.Time) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%s-%d-%s", prefix, at.UnixMilli(), random[:9])
}

var std = New()

// ParseTimestamp normalizes v with the default Normalizer.
func ParseTimestamp(v interface{}) time.Time { return std.ParseTimestamp(v) }

// ProcessMessage maps raw with the default Normalizer.
func ProcessMessage(raw Record, conversationID string) domain.Message {
	return std.ProcessMessage(raw, conversationID)
}

// ProcessThread maps raw with the default Normalizer.
func ProcessThread(raw Record, messages []domain.Message) domain.Thread {
	return std.ProcessThread(raw, messages)
}

// Assemble builds conversations with the default Normalizer.
func Assemble(items []interface{}) []domain.Conversation { return std.Assemble(items) }

// AssembleJSON decodes and assembles body with the default Normalizer.
func AssembleJSON(data []byte) ([]domain.Conversation, error) { return std.AssembleJSON(data) }
