package repository

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"cassmarket/internal/domain/entity"
	"cassmarket/internal/domain/repository"
	"cassmarket/pkg/errors"
	"cassmarket/pkg/logger"
)

type firestoreChatRepository struct {
	client *firestore.Client
}

func NewFirestoreChatRepository(client *firestore.Client) repository.ChatRepository {
	return &firestoreChatRepository{
		client: client,
	}
}

func (r *firestoreChatRepository) CreateConversation(ctx context.Context, conv *entity.Conversation) error {
	if conv.ID == "" {
		conv.ID = uuid.New().String()
	}

	sort.Strings(conv.Participants)

	if conv.UnreadCount == nil {
		conv.UnreadCount = make(map[string]int)
	}
	for _, p := range conv.Participants {
		if _, ok := conv.UnreadCount[p]; !ok {
			conv.UnreadCount[p] = 0
		}
	}

	conv.IsActive = true
	conv.CreatedAt = time.Now()

	_, err := r.client.Collection("conversations").Doc(conv.ID).Set(ctx, conv)
	if err != nil {
		return errors.Internal("Failed to create conversation", err)
	}

	return nil
}

func (r *firestoreChatRepository) GetConversationByID(ctx context.Context, id string) (*entity.Conversation, error) {
	doc, err := r.client.Collection("conversations").Doc(id).Get(ctx)
	if err != nil {
		if IsNotFound(err) {
			return nil, errors.NotFound("Conversation", err)
		}
		return nil, errors.Internal("Failed to get conversation", err)
	}

	var conv entity.Conversation
	if err := doc.DataTo(&conv); err != nil {
		return nil, errors.Internal("Failed to parse conversation data", err)
	}
	conv.ID = doc.Ref.ID

	return &conv, nil
}

func (r *firestoreChatRepository) FindConversation(ctx context.Context, participants []string, productID string) (*entity.Conversation, error) {
	sorted := make([]string, len(participants))
	copy(sorted, participants)
	sort.Strings(sorted)

	// Participants are stored sorted, so array equality identifies the
	// thread; the product scope is compared in memory.
	docs, err := r.client.Collection("conversations").
		Where("participants", "==", sorted).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Internal("Failed to query conversations", err)
	}

	for _, doc := range docs {
		var conv entity.Conversation
		if err := doc.DataTo(&conv); err != nil {
			continue
		}
		if conv.ProductID == productID {
			conv.ID = doc.Ref.ID
			return &conv, nil
		}
	}

	return nil, errors.NotFound("Conversation", nil)
}

func (r *firestoreChatRepository) ListUserConversations(ctx context.Context, userID string, limit, offset int) ([]*entity.Conversation, int64, error) {
	query := r.client.Collection("conversations").
		Where("participants", "array-contains", userID).
		OrderBy("lastMessageTime", firestore.Desc)

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		logger.Error("Firestore error while fetching conversations for user %s: %v", userID, err)
		return nil, 0, errors.Internal("Failed to fetch conversations", err)
	}

	// Tombstoned threads are filtered per user, so pagination happens
	// in memory over the surviving set.
	var visible []*entity.Conversation
	for _, doc := range allDocs {
		var conv entity.Conversation
		if err := doc.DataTo(&conv); err != nil {
			logger.Warn("Skipping malformed conversation %s: %v", doc.Ref.ID, err)
			continue
		}
		conv.ID = doc.Ref.ID
		if conv.DeletedBy(userID) {
			continue
		}
		visible = append(visible, &conv)
	}

	total := int64(len(visible))

	start := offset
	if start > len(visible) {
		start = len(visible)
	}
	end := len(visible)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	return visible[start:end], total, nil
}

func (r *firestoreChatRepository) SoftDeleteConversation(ctx context.Context, conversationID, userID string) error {
	_, err := r.client.Collection("conversations").Doc(conversationID).Update(ctx, []firestore.Update{
		{FieldPath: firestore.FieldPath{"deletedFor", userID}, Value: firestore.ServerTimestamp},
	})
	if err != nil {
		if IsNotFound(err) {
			return errors.NotFound("Conversation", err)
		}
		return errors.Internal("Failed to delete conversation", err)
	}

	return nil
}

func (r *firestoreChatRepository) AppendMessage(ctx context.Context, conversationID string, message *entity.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	message.ConversationID = conversationID

	convRef := r.client.Collection("conversations").Doc(conversationID)
	msgRef := convRef.Collection("messages").Doc(message.ID)

	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(convRef)
		if err != nil {
			if IsNotFound(err) {
				return errors.NotFound("Conversation", err)
			}
			return errors.Internal("Failed to get conversation", err)
		}

		var conv entity.Conversation
		if err := snap.DataTo(&conv); err != nil {
			return errors.Internal("Failed to parse conversation data", err)
		}

		updates := []firestore.Update{
			{Path: "lastMessage", Value: truncatePreview(message.Message)},
			{Path: "lastMessageTime", Value: firestore.ServerTimestamp},
			{Path: "messageCount", Value: firestore.Increment(1)},
		}
		for _, p := range conv.Participants {
			if p != message.SenderID {
				updates = append(updates, firestore.Update{
					FieldPath: firestore.FieldPath{"unreadCount", p},
					Value:     firestore.Increment(1),
				})
			}
		}

		if err := tx.Set(msgRef, message); err != nil {
			return errors.Internal("Failed to create message", err)
		}
		if err := tx.Update(convRef, updates); err != nil {
			return errors.Internal("Failed to update conversation", err)
		}

		return nil
	})
}

// truncatePreview caps the denormalized lastMessage at 50 characters.
func truncatePreview(s string) string {
	runes := []rune(s)
	if len(runes) <= 50 {
		return s
	}
	return string(runes[:50]) + "..."
}

func (r *firestoreChatRepository) ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]*entity.Message, int64, error) {
	query := r.client.Collection("conversations").Doc(conversationID).
		Collection("messages").
		OrderBy("timestamp", firestore.Desc)

	countDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, errors.Internal("Failed to count messages", err)
	}
	total := int64(len(countDocs))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var messages []*entity.Message
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, errors.Internal("Failed to iterate messages", err)
		}

		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			logger.Warn("Skipping malformed message %s in conversation %s: %v", doc.Ref.ID, conversationID, err)
			continue
		}
		message.ID = doc.Ref.ID
		messages = append(messages, &message)
	}

	return messages, total, nil
}

func (r *firestoreChatRepository) MarkConversationRead(ctx context.Context, conversationID, userID string) error {
	convRef := r.client.Collection("conversations").Doc(conversationID)

	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		unreadQuery := convRef.Collection("messages").Where("read", "==", false)
		docs, err := tx.Documents(unreadQuery).GetAll()
		if err != nil {
			return errors.Internal("Failed to query unread messages", err)
		}

		for _, doc := range docs {
			var message entity.Message
			if err := doc.DataTo(&message); err != nil {
				continue
			}
			// The reader's own messages keep their flags untouched.
			if message.SenderID == userID {
				continue
			}
			if err := tx.Update(doc.Ref, []firestore.Update{
				{Path: "read", Value: true},
				{Path: "readAt", Value: firestore.ServerTimestamp},
			}); err != nil {
				return errors.Internal("Failed to mark message as read", err)
			}
		}

		if err := tx.Update(convRef, []firestore.Update{
			{FieldPath: firestore.FieldPath{"unreadCount", userID}, Value: 0},
		}); err != nil {
			if IsNotFound(err) {
				return errors.NotFound("Conversation", err)
			}
			return errors.Internal("Failed to reset unread count", err)
		}

		return nil
	})
}

func (r *firestoreChatRepository) WatchUserConversations(ctx context.Context, userID string) (<-chan []*entity.Conversation, func(), error) {
	watchCtx, cancel := context.WithCancel(ctx)

	snapIter := r.client.Collection("conversations").
		Where("participants", "array-contains", userID).
		OrderBy("lastMessageTime", firestore.Desc).
		Snapshots(watchCtx)

	ch := make(chan []*entity.Conversation)

	go func() {
		defer close(ch)
		defer snapIter.Stop()

		for {
			snap, err := snapIter.Next()
			if err != nil {
				if watchCtx.Err() == nil {
					logger.Error("Conversation listener for user %s stopped: %v", userID, err)
				}
				return
			}

			docs, err := snap.Documents.GetAll()
			if err != nil {
				logger.Error("Failed to read conversation snapshot for user %s: %v", userID, err)
				continue
			}

			var convs []*entity.Conversation
			for _, doc := range docs {
				var conv entity.Conversation
				if err := doc.DataTo(&conv); err != nil {
					continue
				}
				conv.ID = doc.Ref.ID
				if conv.DeletedBy(userID) {
					continue
				}
				convs = append(convs, &conv)
			}

			select {
			case ch <- convs:
			case <-watchCtx.Done():
				return
			}
		}
	}()

	return ch, cancel, nil
}

func (r *firestoreChatRepository) WatchMessages(ctx context.Context, conversationID string) (<-chan []*entity.Message, func(), error) {
	watchCtx, cancel := context.WithCancel(ctx)

	snapIter := r.client.Collection("conversations").Doc(conversationID).
		Collection("messages").
		OrderBy("timestamp", firestore.Asc).
		Snapshots(watchCtx)

	ch := make(chan []*entity.Message)

	go func() {
		defer close(ch)
		defer snapIter.Stop()

		for {
			snap, err := snapIter.Next()
			if err != nil {
				if watchCtx.Err() == nil {
					logger.Error("Message listener for conversation %s stopped: %v", conversationID, err)
				}
				return
			}

			docs, err := snap.Documents.GetAll()
			if err != nil {
				logger.Error("Failed to read message snapshot for conversation %s: %v", conversationID, err)
				continue
			}

			var messages []*entity.Message
			for _, doc := range docs {
				var message entity.Message
				if err := doc.DataTo(&message); err != nil {
					continue
				}
				message.ID = doc.Ref.ID
				messages = append(messages, &message)
			}

			select {
			case ch <- messages:
			case <-watchCtx.Done():
				return
			}
		}
	}()

	return ch, cancel, nil
}
