package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/anaypant/acs-next-js-dev-sub002/internal/domain"
)

var (
	threadField   = Field{"thread"}
	messagesField = Field{"messages"}
	envelopeField = Field{"conversations", "items", "data"}
)

// Assemble turns raw API items into conversations sorted by
// LastMessageAt, newest first. Items that are not objects, or whose
// thread member is not an object, are dropped with a warning.
func (n *Normalizer) Assemble(items []interface{}) []domain.Conversation {
	type keyed struct {
		conv  domain.Conversation
		at    time.Time
		valid bool
	}

	out := make([]keyed, 0, len(items))
	for i, item := range items {
		conv, ok := n.assembleOne(i, item)
		if !ok {
			continue
		}
		at, valid := TryParse(conv.Thread.LastMessageAt)
		out = append(out, keyed{conv: conv, at: at, valid: valid})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.valid != b.valid {
			return a.valid
		}
		return a.valid && a.at.After(b.at)
	})

	conversations := make([]domain.Conversation, len(out))
	for i, k := range out {
		conversations[i] = k.conv
	}
	return conversations
}

func (n *Normalizer) assembleOne(index int, item interface{}) (domain.Conversation, bool) {
	rec, ok := AsRecord(item)
	if !ok {
		n.log.Warn("dropping conversation item that is not an object", "index", index, "type", fmt.Sprintf("%T", item))
		return domain.Conversation{}, false
	}

	threadRaw := rec
	if v, present := rec["thread"]; present && v != nil {
		tr, isObject := threadField.Object(rec)
		if !isObject {
			n.log.Warn("dropping conversation item with non-object thread", "index", index, "type", fmt.Sprintf("%T", v))
			return domain.Conversation{}, false
		}
		threadRaw = tr
	}

	rawMessages, ok := messagesField.List(rec)
	if !ok {
		rawMessages, _ = messagesField.List(threadRaw)
	}

	id := n.conversationID(index, rec, threadRaw, rawMessages)

	messages := make([]domain.Message, 0, len(rawMessages))
	for j, m := range rawMessages {
		mr, isObject := AsRecord(m)
		if !isObject {
			n.log.Warn("dropping message that is not an object", "conversation_id", id, "index", j)
			continue
		}
		messages = append(messages, n.ProcessMessage(mr, id))
	}

	return domain.Conversation{
		Thread:   n.buildThread(threadRaw, id, messages),
		Messages: messages,
	}, true
}

// conversationID resolves one id per item so the thread and every message
// agree on it.
func (n *Normalizer) conversationID(index int, item, thread Record, rawMessages []interface{}) string {
	if id := conversationIDField.String(thread); id != "" {
		return id
	}
	if id := messageConvIDField.String(item); id != "" {
		return id
	}
	for _, m := range rawMessages {
		if mr, ok := AsRecord(m); ok {
			if id := messageConvIDField.String(mr); id != "" {
				return id
			}
		}
	}
	id := n.newID("conv", n.now())
	n.log.Warn("conversation item has no id, assigned synthetic id", "index", index, "conversation_id", id)
	return id
}

// DecodePayload decodes a raw API body into its list of items. The body may
// be an array, an object wrapping the array under "conversations", "items"
// or "data", or a single conversation object. Numbers stay json.Number.
func DecodePayload(data []byte) ([]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var payload interface{}
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding conversation payload: %w", err)
	}

	switch v := payload.(type) {
	case []interface{}:
		return v, nil
	case map[string]interface{}:
		if list, ok := envelopeField.List(Record(v)); ok {
			return list, nil
		}
		return []interface{}{v}, nil
	case nil:
		return nil, nil
	default:
		return []interface{}{v}, nil
	}
}

// AssembleJSON decodes body with DecodePayload and assembles the result.
// Only an undecodable body is an error.
func (n *Normalizer) AssembleJSON(data []byte) ([]domain.Conversation, error) {
	items, err := DecodePayload(data)
	if err != nil {
		return nil, err
	}
	return n.Assemble(items), nil
}
