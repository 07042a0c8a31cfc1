package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/campus-market/trading-api/internal/core/domain"
	"github.com/campus-market/trading-api/internal/core/ports"
)

// MessageService implements buyer-seller messaging.
type MessageService struct {
	repo   ports.MessageRepository
	logger zerolog.Logger
}

func NewMessageService(repo ports.MessageRepository, logger zerolog.Logger) *MessageService {
	return &MessageService{repo: repo, logger: logger}
}

// Send stores a message. The conversation id is derived from the sorted
// participant pair, so either direction lands in the same conversation.
func (s *MessageService) Send(ctx context.Context, senderID, receiverID, content string) (*domain.Message, error) {
	if receiverID == "" || strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("send message: %w", domain.ErrInvalidArgument)
	}
	if senderID == receiverID {
		return nil, fmt.Errorf("send message: sender is receiver: %w", domain.ErrInvalidArgument)
	}

	now := time.Now().UTC()
	msg := &domain.Message{
		ConversationID: domain.ConversationID(senderID, receiverID),
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Content:        content,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	created, err := s.repo.Insert(ctx, msg)
	if err != nil {
		s.logger.Error().Err(err).Str("conversation_id", msg.ConversationID).Msg("failed to store message")
		return nil, err
	}
	return created, nil
}

// ListConversation returns the conversation oldest first. Before returning,
// every unread message addressed to the requester is marked read.
func (s *MessageService) ListConversation(ctx context.Context, conversationID, requesterID string) ([]*domain.Message, error) {
	a, b, ok := domain.ConversationParticipants(conversationID)
	if !ok {
		return nil, fmt.Errorf("list conversation: %w", domain.ErrInvalidArgument)
	}
	if requesterID != a && requesterID != b {
		return nil, domain.ErrForbidden
	}

	messages, err := s.repo.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.MarkConversationRead(ctx, conversationID, requesterID); err != nil {
		return nil, fmt.Errorf("list conversation: mark read: %w", err)
	}

	return messages, nil
}

func (s *MessageService) ListConversationsFor(ctx context.Context, userID string) ([]*domain.ConversationSummary, error) {
	return s.repo.ListConversations(ctx, userID)
}

// MarkRead flips the read flag on one message; only its addressee may do so.
func (s *MessageService) MarkRead(ctx context.Context, messageID, requesterID string) (*domain.Message, error) {
	return s.repo.MarkRead(ctx, messageID, requesterID)
}

// Delete removes a message for both parties. Either participant may delete.
func (s *MessageService) Delete(ctx context.Context, messageID, requesterID string) error {
	msg, err := s.repo.FindByID(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.SenderID != requesterID && msg.ReceiverID != requesterID {
		return domain.ErrForbidden
	}
	return s.repo.Delete(ctx, messageID)
}

var _ ports.MessageService = (*MessageService)(nil)
