package domain

import (
	"errors"
	"strings"
	"time"
)

var ErrMessageNotFound = errors.New("message not found")

// conversationSeparator joins the two sorted participant ids into a
// conversation id. User ids are Mongo object id hex strings and never
// contain the separator themselves.
const conversationSeparator = "_"

// Message is a single chat message between two users. Messages are grouped by
// a conversation id derived from the unordered participant pair.
type Message struct {
	ID             string    `json:"id" bson:"_id,omitempty"`
	ConversationID string    `json:"conversation_id" bson:"conversation_id"`
	SenderID       string    `json:"sender_id" bson:"sender_id"`
	ReceiverID     string    `json:"receiver_id" bson:"receiver_id"`
	Content        string    `json:"content" bson:"content"`
	Read           bool      `json:"read" bson:"read"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`
}

// ConversationID derives the deterministic conversation key for two users.
// The ids are sorted lexicographically so both directions resolve to the same
// conversation.
func ConversationID(userA, userB string) string {
	if userA > userB {
		userA, userB = userB, userA
	}
	return userA + conversationSeparator + userB
}

// ConversationParticipants splits a conversation id back into its two
// participant ids. The second return value is false when the id is malformed.
func ConversationParticipants(conversationID string) (string, string, bool) {
	parts := strings.SplitN(conversationID, conversationSeparator, 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// ConversationSummary is one row of a user's conversation list: the most
// recent message per conversation plus the count of unread messages addressed
// to the requesting user.
type ConversationSummary struct {
	ConversationID string  `json:"conversation_id" bson:"_id"`
	LastMessage    Message `json:"last_message" bson:"last_message"`
	UnreadCount    int     `json:"unread_count" bson:"unread_count"`
}
