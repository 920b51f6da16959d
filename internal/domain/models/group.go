package models

// PeerType selects which departure procedure applies to a group.
type PeerType string

const (
	// PeerTypeChannel covers broadcast channels and supergroups.
	PeerTypeChannel PeerType = "channel"
	// PeerTypeChat covers basic groups.
	PeerTypeChat PeerType = "chat"
)

// ConversationKind classifies an entry of the remote conversation list.
type ConversationKind int

const (
	ConversationUser ConversationKind = iota
	ConversationChat
	ConversationMegagroup
	ConversationBroadcast
)

// Conversation is one entry of the remote conversation list, in remote order.
type Conversation struct {
	// ID is the marked id: -<id> for basic groups, -100<id> for channels.
	ID          string
	Title       string
	Kind        ConversationKind
	Archived    bool
	UnreadCount int
}

// IsGroup reports whether the conversation is any group-like kind.
func (c Conversation) IsGroup() bool {
	return c.Kind == ConversationChat || c.Kind == ConversationMegagroup || c.Kind == ConversationBroadcast
}

// IsChannel reports whether the conversation is a channel or supergroup.
func (c Conversation) IsChannel() bool {
	return c.Kind == ConversationMegagroup || c.Kind == ConversationBroadcast
}

// Group is a group-like conversation shaped for display.
type Group struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	IsArchived  bool     `json:"isArchived"`
	IsChannel   bool     `json:"isChannel"`
	UnreadCount int      `json:"unreadCount"`
	PeerType    PeerType `json:"peerType"`
}

// GroupFromConversation shapes a conversation for display.
func GroupFromConversation(c Conversation) Group {
	peerType := PeerTypeChat
	if c.IsChannel() {
		peerType = PeerTypeChannel
	}
	return Group{
		ID:          c.ID,
		Title:       c.Title,
		IsArchived:  c.Archived,
		IsChannel:   c.IsChannel(),
		UnreadCount: c.UnreadCount,
		PeerType:    peerType,
	}
}

// LeaveTarget is one requested departure.
type LeaveTarget struct {
	ID       string   `json:"id"`
	PeerType PeerType `json:"peerType"`
}

// LeaveStatus is the outcome of one departure.
type LeaveStatus string

const (
	LeaveStatusSuccess LeaveStatus = "success"
	LeaveStatusFailure LeaveStatus = "failure"
)

// LeaveResult records the outcome of one departure.
type LeaveResult struct {
	ID      string      `json:"id"`
	Status  LeaveStatus `json:"status"`
	Message string      `json:"message"`
}
