package normalize

import (
	"github.com/anaypant/acs-next-js-dev-sub002/internal/domain"
)

// Thread field aliases, highest priority first. Database exports, the
// legacy API and hand-built fixtures each use a different naming scheme.
var (
	conversationIDField     = Field{"conversation_id", "conversationId", "thread_id", "id"}
	leadNameField           = Field{"lead_name", "leadName", "source_name", "name", "client_name", "sender_name"}
	clientEmailField        = Field{"client_email", "clientEmail", "associated_account", "email", "sender_email"}
	phoneField              = Field{"phone", "phone_number", "client_phone"}
	locationField           = Field{"location", "property_location", "address", "city"}
	sourceNameField         = Field{"source_name", "sourceName", "lead_source", "source"}
	aiSummaryField          = Field{"ai_summary", "aiSummary", "summary"}
	budgetRangeField        = Field{"budget_range", "budgetRange", "budget"}
	timelineField           = Field{"timeline", "move_timeline"}
	priorityField           = Field{"priority", "lead_priority"}
	propertyTypesField      = Field{"preferred_property_types", "preferredPropertyTypes", "property_types"}
	createdAtField          = Field{"created_at", "createdAt", "created"}
	updatedAtField          = Field{"updated_at", "updatedAt", "last_updated"}
	lastMessageAtField      = Field{"lastMessageAt", "last_message_at", "last_updated"}
	lcpEnabledField         = Field{"lcp_enabled", "lcpEnabled"}
	flagField               = Field{"flag"}
	flagForReviewField      = Field{"flag_for_review", "flagForReview"}
	flagReviewOverrideField = Field{"flag_review_override", "flagReviewOverride"}
	spamField               = Field{"spam", "is_spam"}
	busyField               = Field{"busy"}
	threadReadField         = Field{"read", "is_read"}
	completedField          = Field{"completed", "is_completed"}
)

const unknownLead = "Unknown Lead"

// ProcessThread maps a raw thread onto the canonical Thread. The
// conversation id comes from the record, or from the first message when
// the record has none.
func (n *Normalizer) ProcessThread(raw Record, messages []domain.Message) domain.Thread {
	id := conversationIDField.String(raw)
	if id == "" && len(messages) > 0 {
		id = messages[0].ConversationID
	}
	return n.buildThread(raw, id, messages)
}

func (n *Normalizer) buildThread(raw Record, conversationID string, messages []domain.Message) domain.Thread {
	lastMessageAt := latestTimestamp(messages)
	if lastMessageAt == "" {
		lastMessageAt = lastMessageAtField.String(raw)
	}
	if lastMessageAt == "" {
		lastMessageAt = FormatISO(n.now())
	}

	createdAt := createdAtField.String(raw)
	if createdAt == "" {
		createdAt = earliestTimestamp(messages)
	}

	return domain.Thread{
		ConversationID:         conversationID,
		LeadName:               leadNameField.StringOr(raw, unknownLead),
		ClientEmail:            clientEmailField.String(raw),
		Phone:                  phoneField.String(raw),
		Location:               locationField.String(raw),
		SourceName:             sourceNameField.String(raw),
		AISummary:              aiSummaryField.String(raw),
		LCPEnabled:             lcpEnabledField.Bool(raw),
		Flag:                   flagField.Bool(raw),
		FlagForReview:          flagForReviewField.Bool(raw),
		FlagReviewOverride:     flagReviewOverrideField.Bool(raw),
		Spam:                   spamField.Bool(raw),
		Busy:                   busyField.Bool(raw),
		Read:                   threadReadField.Bool(raw),
		Completed:              completedField.Bool(raw),
		BudgetRange:            budgetRangeField.String(raw),
		Timeline:               timelineField.String(raw),
		PreferredPropertyTypes: propertyTypesField.Strings(raw),
		Priority:               priorityField.String(raw),
		CreatedAt:              createdAt,
		UpdatedAt:              updatedAtField.StringOr(raw, lastMessageAt),
		LastMessageAt:          lastMessageAt,
		AIScore:                firstScore(messages),
	}
}

// latestTimestamp returns the original timestamp of the message with the
// greatest LocalDate. The earliest position wins a tie.
func latestTimestamp(messages []domain.Message) string {
	best := -1
	for i, m := range messages {
		if best < 0 || m.LocalDate.After(messages[best].LocalDate) {
			best = i
		}
	}
	if best < 0 {
		return ""
	}
	return messages[best].Timestamp
}

func earliestTimestamp(messages []domain.Message) string {
	best := -1
	for i, m := range messages {
		if best < 0 || m.LocalDate.Before(messages[best].LocalDate) {
			best = i
		}
	}
	if best < 0 {
		return ""
	}
	return messages[best].Timestamp
}

// firstScore is the EV score of the first message, in array order, that
// has one. It is not necessarily the most recent score.
func firstScore(messages []domain.Message) *float64 {
	for _, m := range messages {
		if m.EVScore != nil {
			v := *m.EVScore
			return &v
		}
	}
	return nil
}
