package domain

// Thread is the per-conversation metadata record.
//
// CreatedAt, UpdatedAt and LastMessageAt keep the source's original string
// form; LastMessageAt is derived from the newest message when one exists.
type Thread struct {
	ConversationID         string   `json:"conversation_id"`
	LeadName               string   `json:"lead_name"`
	ClientEmail            string   `json:"client_email"`
	Phone                  string   `json:"phone"`
	Location               string   `json:"location"`
	SourceName             string   `json:"source_name"`
	AISummary              string   `json:"ai_summary"`
	LCPEnabled             bool     `json:"lcp_enabled"`
	Flag                   bool     `json:"flag"`
	FlagForReview          bool     `json:"flag_for_review"`
	FlagReviewOverride     bool     `json:"flag_review_override"`
	Spam                   bool     `json:"spam"`
	Busy                   bool     `json:"busy"`
	Read                   bool     `json:"read"`
	Completed              bool     `json:"completed"`
	BudgetRange            string   `json:"budget_range"`
	Timeline               string   `json:"timeline"`
	PreferredPropertyTypes []string `json:"preferred_property_types"`
	Priority               string   `json:"priority"`
	CreatedAt              string   `json:"created_at"`
	UpdatedAt              string   `json:"updated_at"`
	LastMessageAt          string   `json:"last_message_at"`
	AIScore                *float64 `json:"ai_score"`
}

// Conversation is the aggregate of one Thread and its Messages.
// Every message carries Thread.ConversationID.
type Conversation struct {
	Thread   Thread    `json:"thread"`
	Messages []Message `json:"messages"`
}

// ID returns the conversation identity.
func (c Conversation) ID() string { return c.Thread.ConversationID }

// Status is the derived lifecycle classification of a conversation.
type Status string

const (
	StatusActive    Status = "active"
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFlagged   Status = "flagged"
	StatusSpam      Status = "spam"
)

// Statuses lists every Status value in classification precedence order.
var Statuses = []Status{StatusSpam, StatusFlagged, StatusCompleted, StatusPending, StatusActive}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// ProcessedConversation is a read-only analytics projection of a
// Conversation. It is recomputed on demand and never written back.
type ProcessedConversation struct {
	Conversation
	EVScore      *float64 `json:"ev_score"`
	Status       Status   `json:"status"`
	LastActivity string   `json:"last_activity"`
}
