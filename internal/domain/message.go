package domain

import (
	"strings"
	"time"
)

// MessageType identifies the channel and direction of a message.
// The set is open: other channels (e.g. "inbound-sms") pass through as-is.
type MessageType string

const (
	MessageInboundEmail  MessageType = "inbound-email"
	MessageOutboundEmail MessageType = "outbound-email"
)

// IsInbound reports whether the message was sent by the lead.
func (t MessageType) IsInbound() bool {
	return strings.HasPrefix(string(t), "inbound")
}

// IsOutbound reports whether the message was sent to the lead.
func (t MessageType) IsOutbound() bool {
	return strings.HasPrefix(string(t), "outbound")
}

// Message is a single email/SMS-like communication unit within a conversation.
// LocalDate is always a valid, non-zero time.
type Message struct {
	ID             string                 `json:"id"`
	ConversationID string                 `json:"conversation_id"`
	SenderEmail    string                 `json:"sender_email"`
	RecipientEmail string                 `json:"recipient_email"`
	SenderName     string                 `json:"sender_name"`
	Body           string                 `json:"body"`
	Subject        string                 `json:"subject"`
	Timestamp      string                 `json:"timestamp"`
	LocalDate      time.Time              `json:"local_date"`
	Type           MessageType            `json:"type"`
	Read           bool                   `json:"read"`
	EVScore        *float64               `json:"ev_score,omitempty"`
	InReplyTo      string                 `json:"in_reply_to,omitempty"`
	IsFirstEmail   bool                   `json:"is_first_email"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}
