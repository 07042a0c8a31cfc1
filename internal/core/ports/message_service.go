package ports

import (
	"context"

	"github.com/campus-market/trading-api/internal/core/domain"
)

// MessageService defines use-case operations for buyer-seller messaging.
type MessageService interface {
	Send(ctx context.Context, senderID, receiverID, content string) (*domain.Message, error)
	// ListConversation returns the conversation's messages oldest first and
	// marks the ones addressed to the requester as read. The requester must
	// be one of the two participants.
	ListConversation(ctx context.Context, conversationID, requesterID string) ([]*domain.Message, error)
	ListConversationsFor(ctx context.Context, userID string) ([]*domain.ConversationSummary, error)
	MarkRead(ctx context.Context, messageID, requesterID string) (*domain.Message, error)
	// Delete removes a message; only the sender or the receiver may do so.
	Delete(ctx context.Context, messageID, requesterID string) error
}
