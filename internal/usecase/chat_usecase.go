package usecase

import (
	"context"
	"sort"
	"strings"

	"cassmarket/internal/domain/entity"
	"cassmarket/internal/domain/repository"
	"cassmarket/internal/infrastructure/cache"
	"cassmarket/internal/infrastructure/ratelimit"
	"cassmarket/pkg/errors"
	"cassmarket/pkg/logger"
)

const maxMessageLength = 1000

type ChatUseCase struct {
	chatRepo    repository.ChatRepository
	userRepo    repository.UserRepository
	articleRepo repository.ArticleRepository
	cache       *cache.Cache
	rateLimiter *ratelimit.Limiter
}

func NewChatUseCase(
	chatRepo repository.ChatRepository,
	userRepo repository.UserRepository,
	articleRepo repository.ArticleRepository,
	c *cache.Cache,
	rateLimiter *ratelimit.Limiter,
) *ChatUseCase {
	return &ChatUseCase{
		chatRepo:    chatRepo,
		userRepo:    userRepo,
		articleRepo: articleRepo,
		cache:       c,
		rateLimiter: rateLimiter,
	}
}

type CreateConversationInput struct {
	Participants []string
	ProductID    string
	ProductTitle string
}

type SendMessageInput struct {
	ConversationID string
	Text           string
	Attachments    []string
}

// ConversationsPage is one page of a user's visible conversations.
type ConversationsPage struct {
	Conversations []*entity.Conversation `json:"items"`
	Total         int64                  `json:"total"`
}

// CreateConversation is idempotent: a thread already existing for the sorted
// participant set and product scope is returned instead of duplicated.
func (uc *ChatUseCase) CreateConversation(ctx context.Context, input CreateConversationInput) (*entity.Conversation, error) {
	participants := dedupe(input.Participants)
	if len(participants) < 2 {
		return nil, errors.Validation("a conversation needs at least two participants")
	}
	for _, p := range participants {
		if p == "" {
			return nil, errors.Validation("participant ids must not be empty")
		}
	}
	sort.Strings(participants)

	existing, err := uc.chatRepo.FindConversation(ctx, participants, input.ProductID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, "NOT_FOUND") {
		return nil, err
	}

	productTitle := input.ProductTitle
	if productTitle == "" && input.ProductID != "" {
		// Denormalized display cache; a missing article is not fatal here.
		if article, err := uc.articleRepo.GetByID(ctx, input.ProductID); err == nil {
			productTitle = article.Title
		}
	}

	unread := make(map[string]int, len(participants))
	for _, p := range participants {
		unread[p] = 0
	}

	conv := &entity.Conversation{
		Participants: participants,
		ProductID:    input.ProductID,
		ProductTitle: productTitle,
		UnreadCount:  unread,
	}

	if err := uc.chatRepo.CreateConversation(ctx, conv); err != nil {
		return nil, err
	}

	for _, p := range participants {
		uc.cache.InvalidatePrefix(p)
	}

	return conv, nil
}

// SendMessage validates, consumes one rate-limit unit, verifies the sender
// belongs to the thread (fails closed) and then writes the message plus the
// conversation's denormalized fields in a single atomic store operation.
func (uc *ChatUseCase) SendMessage(ctx context.Context, senderID, senderName string, input SendMessageInput) (*entity.Message, error) {
	text := input.Text
	if strings.TrimSpace(text) == "" {
		return nil, errors.Validation("message must not be empty")
	}
	if len([]rune(text)) > maxMessageLength {
		return nil, errors.Validation("message exceeds 1000 characters")
	}
	if input.ConversationID == "" {
		return nil, errors.Validation("conversation id is required")
	}

	allowed, retryAfter := uc.rateLimiter.Allow(senderID)
	if !allowed {
		logger.Warn("SendMessage rate limited: user %s must wait %v", senderID, retryAfter)
		return nil, errors.TooManyRequests("Too many messages, please wait before sending again", retryAfter)
	}

	conv, err := uc.chatRepo.GetConversationByID(ctx, input.ConversationID)
	if err != nil {
		return nil, err
	}

	if !conv.HasParticipant(senderID) {
		return nil, errors.Forbidden("Sender is not a participant in this conversation", nil)
	}

	if senderName == "" {
		senderName = uc.resolveSenderName(ctx, senderID)
	}

	message := &entity.Message{
		ConversationID: input.ConversationID,
		SenderID:       senderID,
		SenderName:     senderName,
		Message:        text,
		Attachments:    input.Attachments,
	}

	if err := uc.chatRepo.AppendMessage(ctx, input.ConversationID, message); err != nil {
		return nil, err
	}

	for _, p := range conv.Participants {
		uc.cache.InvalidatePrefix(p)
	}

	return message, nil
}

func (uc *ChatUseCase) resolveSenderName(ctx context.Context, senderID string) string {
	user, err := uc.userRepo.GetByID(ctx, senderID)
	if err != nil {
		return entity.DefaultUser(senderID).Name
	}
	return user.Name
}

// GetUserConversations lists a user's visible threads, most recent activity
// first. Only the first page is cacheable.
func (uc *ChatUseCase) GetUserConversations(ctx context.Context, userID string, limit, offset int, useCache bool) (*ConversationsPage, error) {
	if userID == "" {
		return nil, errors.Validation("user id is required")
	}

	firstPage := offset == 0
	if firstPage && useCache {
		if cached, ok := uc.cache.Get(userID); ok {
			return cached.(*ConversationsPage), nil
		}
	}

	convs, total, err := uc.chatRepo.ListUserConversations(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	page := &ConversationsPage{Conversations: convs, Total: total}
	if firstPage {
		uc.cache.Set(userID, page)
	}

	return page, nil
}

// GetMessages returns a conversation's messages, newest first. The reader
// must be a participant.
func (uc *ChatUseCase) GetMessages(ctx context.Context, userID, conversationID string, limit, offset int) ([]*entity.Message, int64, error) {
	conv, err := uc.chatRepo.GetConversationByID(ctx, conversationID)
	if err != nil {
		return nil, 0, err
	}

	if !conv.HasParticipant(userID) {
		return nil, 0, errors.Forbidden("User is not a participant in this conversation", nil)
	}

	return uc.chatRepo.ListMessages(ctx, conversationID, limit, offset)
}

// MarkAsRead batch-flips read state on every unread message not sent by
// userID and resets that user's unread counter.
func (uc *ChatUseCase) MarkAsRead(ctx context.Context, userID, conversationID string) error {
	conv, err := uc.chatRepo.GetConversationByID(ctx, conversationID)
	if err != nil {
		return err
	}

	if !conv.HasParticipant(userID) {
		return errors.Forbidden("User is not a participant in this conversation", nil)
	}

	if err := uc.chatRepo.MarkConversationRead(ctx, conversationID, userID); err != nil {
		return err
	}

	uc.cache.InvalidatePrefix(userID)
	return nil
}

// DeleteConversation tombstones the thread for one user only; other
// participants keep it.
func (uc *ChatUseCase) DeleteConversation(ctx context.Context, userID, conversationID string) error {
	conv, err := uc.chatRepo.GetConversationByID(ctx, conversationID)
	if err != nil {
		return err
	}

	if !conv.HasParticipant(userID) {
		return errors.Forbidden("User is not a participant in this conversation", nil)
	}

	if err := uc.chatRepo.SoftDeleteConversation(ctx, conversationID, userID); err != nil {
		return err
	}

	uc.cache.InvalidatePrefix(userID)
	return nil
}

// SubscribeToConversations pushes the user's full conversation list on every
// remote change until the returned handle is cancelled.
func (uc *ChatUseCase) SubscribeToConversations(ctx context.Context, userID string, onUpdate func([]*entity.Conversation)) (*Subscription, error) {
	if userID == "" {
		return nil, errors.Validation("user id is required")
	}

	ch, stop, err := uc.chatRepo.WatchUserConversations(ctx, userID)
	if err != nil {
		return nil, err
	}

	return pump(ch, stop, onUpdate), nil
}

// SubscribeToMessages pushes the conversation's full message list on every
// remote change. The subscriber must be a participant.
func (uc *ChatUseCase) SubscribeToMessages(ctx context.Context, userID, conversationID string, onUpdate func([]*entity.Message)) (*Subscription, error) {
	conv, err := uc.chatRepo.GetConversationByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	if !conv.HasParticipant(userID) {
		return nil, errors.Forbidden("User is not a participant in this conversation", nil)
	}

	ch, stop, err := uc.chatRepo.WatchMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	return pump(ch, stop, onUpdate), nil
}

// pump forwards snapshots from the repository channel to the callback,
// honoring the subscription's cancellation contract.
func pump[T any](ch <-chan []T, stop func(), onUpdate func([]T)) *Subscription {
	sub := &Subscription{
		stop: stop,
		done: make(chan struct{}),
	}

	go func() {
		defer close(sub.done)
		for snapshot := range ch {
			snapshot := snapshot
			if !sub.deliver(func() { onUpdate(snapshot) }) {
				return
			}
		}
	}()

	return sub
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	var out []string
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
