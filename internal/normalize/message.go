package normalize

import (
	"strings"
	"time"

	"github.com/anaypant/acs-next-js-dev-sub002/internal/domain"
)

// Message field aliases, highest priority first.
var (
	messageIDField     = Field{"id", "response_id", "responseId", "message_id"}
	senderField        = Field{"sender", "sender_email", "senderEmail", "from"}
	recipientField     = Field{"recipient", "receiver", "to", "receiver_email", "recipientEmail"}
	senderNameField    = Field{"sender_name", "senderName", "from_name"}
	bodyField          = Field{"body", "content", "text", "message"}
	subjectField       = Field{"subject", "title"}
	timestampField     = Field{"timestamp", "created_at", "createdAt", "sent_at", "date"}
	messageTypeField   = Field{"type", "message_type", "direction"}
	messageReadField   = Field{"read", "is_read"}
	evScoreField       = Field{"ev_score", "evScore", "ev"}
	inReplyToField     = Field{"in_reply_to", "inReplyTo"}
	isFirstEmailField  = Field{"is_first_email", "isFirstEmail"}
	messageMetaField   = Field{"metadata"}
	messageConvIDField = Field{"conversation_id", "conversationId"}
)

// ProcessMessage maps one raw message onto the canonical Message for the
// given conversation. The only non-determinism is the synthetic id used
// when the record carries none.
func (n *Normalizer) ProcessMessage(raw Record, conversationID string) domain.Message {
	now := n.now()

	sender := senderField.String(raw)
	senderName := senderNameField.String(raw)
	if senderName == "" {
		senderName = strings.SplitN(sender, "@", 2)[0]
	}
	if senderName == "" {
		senderName = "Unknown"
	}

	id := messageIDField.String(raw)
	if id == "" {
		id = n.newID("msg", now)
	}

	timestamp, localDate := n.resolveTimestamp(raw, now)

	msg := domain.Message{
		ID:             id,
		ConversationID: conversationID,
		SenderEmail:    sender,
		RecipientEmail: recipientField.String(raw),
		SenderName:     senderName,
		Body:           bodyField.String(raw),
		Subject:        subjectField.String(raw),
		Timestamp:      timestamp,
		LocalDate:      localDate,
		Type:           normalizeMessageType(messageTypeField.String(raw)),
		Read:           messageReadField.Bool(raw),
		EVScore:        evScoreField.Float(raw),
		InReplyTo:      inReplyToField.String(raw),
		IsFirstEmail:   isFirstEmailField.Bool(raw),
	}
	if meta, ok := messageMetaField.Object(raw); ok {
		msg.Metadata = map[string]interface{}(meta)
	}
	return msg
}

// resolveTimestamp returns the stored timestamp string and its parsed time.
// String timestamps are kept verbatim; numeric ones and absent ones are
// rendered in ISOLayout.
func (n *Normalizer) resolveTimestamp(raw Record, now time.Time) (string, time.Time) {
	v, ok := timestampField.Lookup(raw)
	if !ok {
		return FormatISO(now), now
	}
	if s, isString := v.(string); isString {
		s = strings.TrimSpace(s)
		return s, n.ParseTimestamp(s)
	}
	if t, parsed := TryParse(v); parsed {
		return FormatISO(t), t
	}
	n.log.Warn("unparseable message timestamp, using current time", "value", v)
	return FormatISO(now), now
}

func normalizeMessageType(raw string) domain.MessageType {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch v {
	case "":
		return domain.MessageInboundEmail
	case "inbound", "incoming", "received", "inbound_email", "inbound-email":
		return domain.MessageInboundEmail
	case "outbound", "outgoing", "sent", "outbound_email", "outbound-email":
		return domain.MessageOutboundEmail
	default:
		return domain.MessageType(v)
	}
}
