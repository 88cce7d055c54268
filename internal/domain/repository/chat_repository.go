package repository

import (
	"context"

	"cassmarket/internal/domain/entity"
)

type ChatRepository interface {
	CreateConversation(ctx context.Context, conv *entity.Conversation) error
	GetConversationByID(ctx context.Context, id string) (*entity.Conversation, error)

	// FindConversation looks up the thread identified by (sorted participants,
	// productID); fails with NOT_FOUND when no such thread exists.
	FindConversation(ctx context.Context, participants []string, productID string) (*entity.Conversation, error)

	ListUserConversations(ctx context.Context, userID string, limit, offset int) ([]*entity.Conversation, int64, error)

	// SoftDeleteConversation writes the per-user tombstone; the thread itself
	// is never hard-deleted.
	SoftDeleteConversation(ctx context.Context, conversationID, userID string) error

	// AppendMessage atomically inserts the message, bumps the conversation's
	// lastMessage/lastMessageTime/messageCount and increments unreadCount for
	// every participant except the sender. Partial application is never
	// observable.
	AppendMessage(ctx context.Context, conversationID string, message *entity.Message) error

	ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]*entity.Message, int64, error)

	// MarkConversationRead atomically flips read/readAt on every unread
	// message not sent by userID and resets unreadCount[userID] to zero.
	MarkConversationRead(ctx context.Context, conversationID, userID string) error

	// WatchUserConversations and WatchMessages push the full current result
	// set on every remote change. The returned stop function releases the
	// remote listener and closes the channel.
	WatchUserConversations(ctx context.Context, userID string) (<-chan []*entity.Conversation, func(), error)
	WatchMessages(ctx context.Context, conversationID string) (<-chan []*entity.Message, func(), error)
}
