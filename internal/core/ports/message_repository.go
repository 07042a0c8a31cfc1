package ports

import (
	"context"

	"github.com/campus-market/trading-api/internal/core/domain"
)

// MessageRepository defines persistence operations for chat messages.
type MessageRepository interface {
	Insert(ctx context.Context, msg *domain.Message) (*domain.Message, error)
	FindByID(ctx context.Context, id string) (*domain.Message, error)
	// ListByConversation returns all messages of a conversation in creation
	// order (oldest first).
	ListByConversation(ctx context.Context, conversationID string) ([]*domain.Message, error)
	// MarkConversationRead flips the read flag on every unread message in
	// the conversation addressed to receiverID.
	MarkConversationRead(ctx context.Context, conversationID, receiverID string) error
	// MarkRead flips the read flag on a single message, but only when
	// receiverID is its addressee. Returns domain.ErrMessageNotFound
	// otherwise.
	MarkRead(ctx context.Context, id, receiverID string) (*domain.Message, error)
	Delete(ctx context.Context, id string) error
	// ListConversations aggregates the user's messages into one summary per
	// conversation, ordered by last message time descending.
	ListConversations(ctx context.Context, userID string) ([]*domain.ConversationSummary, error)
}
