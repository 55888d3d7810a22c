package analytics

import (
	"fmt"
	"sync"
	"time"

	"github.com/anaypant/acs-next-js-dev-sub002/internal/domain"
	"github.com/anaypant/acs-next-js-dev-sub002/internal/normalize"
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

func newTestAnalyzer(opts ...Option) (*Analyzer, *recordingSink) {
	sink := &recordingSink{}
	base := []Option{WithLogger(sink), WithClock(func() time.Time { return fixedNow })}
	return New(append(base, opts...)...), sink
}

func ptr(f float64) *float64 { return &f }

func msgAt(typ domain.MessageType, at time.Time) domain.Message {
	return domain.Message{Type: typ, LocalDate: at, Timestamp: normalize.FormatISO(at)}
}

func scored(scores ...float64) []domain.Message {
	out := make([]domain.Message, len(scores))
	for i, s := range scores {
		out[i] = domain.Message{EVScore: ptr(s), LocalDate: fixedNow}
	}
	return out
}

func conversation(id, createdAt string, messages ...domain.Message) domain.Conversation {
	for i := range messages {
		messages[i].ConversationID = id
	}
	return domain.Conversation{
		Thread:   domain.Thread{ConversationID: id, LeadName: id, CreatedAt: createdAt, LastMessageAt: createdAt},
		Messages: messages,
	}
}

func processed(id string, ev *float64, status domain.Status) domain.ProcessedConversation {
	return domain.ProcessedConversation{
		Conversation: domain.Conversation{Thread: domain.Thread{ConversationID: id, LeadName: id}},
		EVScore:      ev,
		Status:       status,
	}
}

func ids(items []domain.ProcessedConversation) []string {
	out := make([]string, len(items))
	for i, pc := range items {
		out[i] = pc.ID()
	}
	return out
}
