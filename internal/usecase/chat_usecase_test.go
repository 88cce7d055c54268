package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"cassmarket/internal/domain/entity"
	"cassmarket/internal/infrastructure/cache"
	"cassmarket/internal/infrastructure/ratelimit"
	"cassmarket/pkg/errors"
)

type fakeChatRepo struct {
	mu            sync.Mutex
	conversations map[string]*entity.Conversation
	messages      map[string][]*entity.Message

	listCalls   int
	appendCalls int

	convWatch chan []*entity.Conversation
	msgWatch  chan []*entity.Message
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{
		conversations: make(map[string]*entity.Conversation),
		messages:      make(map[string][]*entity.Message),
	}
}

func (f *fakeChatRepo) CreateConversation(ctx context.Context, conv *entity.Conversation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	conv.ID = fmt.Sprintf("conv-%d", len(f.conversations)+1)
	conv.CreatedAt = time.Now()
	conv.IsActive = true
	f.conversations[conv.ID] = conv
	return nil
}

func (f *fakeChatRepo) GetConversationByID(ctx context.Context, id string) (*entity.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	conv, ok := f.conversations[id]
	if !ok {
		return nil, errors.NotFound("Conversation", nil)
	}
	return conv, nil
}

func (f *fakeChatRepo) FindConversation(ctx context.Context, participants []string, productID string) (*entity.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, conv := range f.conversations {
		if conv.ProductID != productID || len(conv.Participants) != len(participants) {
			continue
		}
		match := true
		for i := range participants {
			if conv.Participants[i] != participants[i] {
				match = false
				break
			}
		}
		if match {
			return conv, nil
		}
	}
	return nil, errors.NotFound("Conversation", nil)
}

func (f *fakeChatRepo) ListUserConversations(ctx context.Context, userID string, limit, offset int) ([]*entity.Conversation, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	var out []*entity.Conversation
	for _, conv := range f.conversations {
		if conv.HasParticipant(userID) && !conv.DeletedBy(userID) {
			out = append(out, conv)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeChatRepo) SoftDeleteConversation(ctx context.Context, conversationID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	conv, ok := f.conversations[conversationID]
	if !ok {
		return errors.NotFound("Conversation", nil)
	}
	if conv.DeletedFor == nil {
		conv.DeletedFor = make(map[string]time.Time)
	}
	conv.DeletedFor[userID] = time.Now()
	return nil
}

func (f *fakeChatRepo) AppendMessage(ctx context.Context, conversationID string, message *entity.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appendCalls++
	conv, ok := f.conversations[conversationID]
	if !ok {
		return errors.NotFound("Conversation", nil)
	}

	message.ID = fmt.Sprintf("msg-%d", len(f.messages[conversationID])+1)
	message.Timestamp = time.Now()
	f.messages[conversationID] = append(f.messages[conversationID], message)

	preview := message.Message
	if len([]rune(preview)) > 50 {
		preview = string([]rune(preview)[:50]) + "..."
	}
	conv.LastMessage = preview
	conv.LastMessageTime = message.Timestamp
	conv.MessageCount++
	for _, p := range conv.Participants {
		if p != message.SenderID {
			conv.UnreadCount[p]++
		}
	}
	return nil
}

func (f *fakeChatRepo) ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]*entity.Message, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.messages[conversationID]
	return msgs, int64(len(msgs)), nil
}

func (f *fakeChatRepo) MarkConversationRead(ctx context.Context, conversationID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	conv, ok := f.conversations[conversationID]
	if !ok {
		return errors.NotFound("Conversation", nil)
	}
	now := time.Now()
	for _, msg := range f.messages[conversationID] {
		if msg.SenderID != userID && !msg.Read {
			msg.Read = true
			msg.ReadAt = now
		}
	}
	conv.UnreadCount[userID] = 0
	return nil
}

func (f *fakeChatRepo) WatchUserConversations(ctx context.Context, userID string) (<-chan []*entity.Conversation, func(), error) {
	f.convWatch = make(chan []*entity.Conversation)
	return f.convWatch, func() { close(f.convWatch) }, nil
}

func (f *fakeChatRepo) WatchMessages(ctx context.Context, conversationID string) (<-chan []*entity.Message, func(), error) {
	f.msgWatch = make(chan []*entity.Message)
	return f.msgWatch, func() { close(f.msgWatch) }, nil
}

type fakeUserRepo struct {
	users map[string]*entity.User

	getCalls    int
	upsertCalls int
	searched    string
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*entity.User)}
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	f.getCalls++
	user, ok := f.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	return user, nil
}

func (f *fakeUserRepo) Upsert(ctx context.Context, id string, fields map[string]interface{}) error {
	f.upsertCalls++
	user, ok := f.users[id]
	if !ok {
		user = entity.DefaultUser(id)
		f.users[id] = user
	}
	if name, ok := fields["name"].(string); ok {
		user.Name = name
	}
	if email, ok := fields["email"].(string); ok {
		user.Email = email
	}
	return nil
}

func (f *fakeUserRepo) SetOnlineStatus(ctx context.Context, id string, isOnline bool) error {
	if user, ok := f.users[id]; ok {
		user.IsOnline = isOnline
	}
	return nil
}

func (f *fakeUserRepo) SearchByNamePrefix(ctx context.Context, prefix string, limit int) ([]*entity.User, error) {
	f.searched = prefix
	var out []*entity.User
	for _, user := range f.users {
		if strings.HasPrefix(user.Name, prefix) {
			out = append(out, user)
		}
	}
	return out, nil
}

func newChatUseCaseForTest(max int) (*ChatUseCase, *fakeChatRepo, *fakeUserRepo) {
	chatRepo := newFakeChatRepo()
	userRepo := newFakeUserRepo()
	articleRepo := newFakeArticleRepo()
	uc := NewChatUseCase(chatRepo, userRepo, articleRepo, cache.New(time.Minute), ratelimit.NewLimiter(max, time.Minute))
	return uc, chatRepo, userRepo
}

func seedConversation(t *testing.T, uc *ChatUseCase, participants ...string) *entity.Conversation {
	t.Helper()
	conv, err := uc.CreateConversation(context.Background(), CreateConversationInput{Participants: participants})
	assert.NoError(t, err)
	return conv
}

func TestCreateConversationIsIdempotent(t *testing.T) {
	uc, repo, _ := newChatUseCaseForTest(100)
	ctx := context.Background()

	first, err := uc.CreateConversation(ctx, CreateConversationInput{
		Participants: []string{"bob", "alice"},
		ProductID:    "art-1",
	})
	assert.NoError(t, err)

	second, err := uc.CreateConversation(ctx, CreateConversationInput{
		Participants: []string{"alice", "bob"},
		ProductID:    "art-1",
	})
	assert.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, repo.conversations, 1)
	assert.Equal(t, []string{"alice", "bob"}, first.Participants)
}

func TestCreateConversationDistinctPerProduct(t *testing.T) {
	uc, repo, _ := newChatUseCaseForTest(100)
	ctx := context.Background()

	_, err := uc.CreateConversation(ctx, CreateConversationInput{
		Participants: []string{"alice", "bob"},
		ProductID:    "art-1",
	})
	assert.NoError(t, err)

	_, err = uc.CreateConversation(ctx, CreateConversationInput{
		Participants: []string{"alice", "bob"},
		ProductID:    "art-2",
	})
	assert.NoError(t, err)

	assert.Len(t, repo.conversations, 2)
}

func TestCreateConversationRequiresTwoParticipants(t *testing.T) {
	uc, _, _ := newChatUseCaseForTest(100)
	ctx := context.Background()

	_, err := uc.CreateConversation(ctx, CreateConversationInput{Participants: []string{"alice"}})
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))

	// Duplicates collapse before the check.
	_, err = uc.CreateConversation(ctx, CreateConversationInput{Participants: []string{"alice", "alice"}})
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))
}

func TestCreateConversationDenormalizesProductTitle(t *testing.T) {
	chatRepo := newFakeChatRepo()
	articleRepo := newFakeArticleRepo()
	articleRepo.articles["art-1"] = &entity.Article{ID: "art-1", Title: "Vintage lamp"}
	uc := NewChatUseCase(chatRepo, newFakeUserRepo(), articleRepo, cache.New(time.Minute), ratelimit.NewLimiter(100, time.Minute))

	conv, err := uc.CreateConversation(context.Background(), CreateConversationInput{
		Participants: []string{"alice", "bob"},
		ProductID:    "art-1",
	})
	assert.NoError(t, err)
	assert.Equal(t, "Vintage lamp", conv.ProductTitle)
}

func TestSendMessageUpdatesUnreadCounts(t *testing.T) {
	uc, repo, _ := newChatUseCaseForTest(100)
	ctx := context.Background()
	conv := seedConversation(t, uc, "alice", "bob", "carol")

	for i := 0; i < 3; i++ {
		_, err := uc.SendMessage(ctx, "alice", "Alice", SendMessageInput{
			ConversationID: conv.ID,
			Text:           fmt.Sprintf("hello %d", i),
		})
		assert.NoError(t, err)
	}

	stored := repo.conversations[conv.ID]
	assert.Equal(t, 0, stored.UnreadCount["alice"])
	assert.Equal(t, 3, stored.UnreadCount["bob"])
	assert.Equal(t, 3, stored.UnreadCount["carol"])
	assert.Equal(t, int64(3), stored.MessageCount)
	assert.Equal(t, "hello 2", stored.LastMessage)
}

func TestSendMessageTruncatesPreview(t *testing.T) {
	uc, repo, _ := newChatUseCaseForTest(100)
	ctx := context.Background()
	conv := seedConversation(t, uc, "alice", "bob")

	text := strings.Repeat("x", 80)
	_, err := uc.SendMessage(ctx, "alice", "Alice", SendMessageInput{ConversationID: conv.ID, Text: text})
	assert.NoError(t, err)

	assert.Equal(t, strings.Repeat("x", 50)+"...", repo.conversations[conv.ID].LastMessage)
}

func TestSendMessageLengthBoundary(t *testing.T) {
	uc, _, _ := newChatUseCaseForTest(100)
	ctx := context.Background()
	conv := seedConversation(t, uc, "alice", "bob")

	_, err := uc.SendMessage(ctx, "alice", "Alice", SendMessageInput{
		ConversationID: conv.ID,
		Text:           strings.Repeat("é", 1000),
	})
	assert.NoError(t, err)

	_, err = uc.SendMessage(ctx, "alice", "Alice", SendMessageInput{
		ConversationID: conv.ID,
		Text:           strings.Repeat("é", 1001),
	})
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))

	_, err = uc.SendMessage(ctx, "alice", "Alice", SendMessageInput{
		ConversationID: conv.ID,
		Text:           "   ",
	})
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))
}

func TestSendMessageRejectsNonParticipant(t *testing.T) {
	uc, repo, _ := newChatUseCaseForTest(100)
	ctx := context.Background()
	conv := seedConversation(t, uc, "alice", "bob")

	_, err := uc.SendMessage(ctx, "mallory", "Mallory", SendMessageInput{
		ConversationID: conv.ID,
		Text:           "let me in",
	})
	assert.True(t, errors.Is(err, "FORBIDDEN"))
	assert.Equal(t, 0, repo.appendCalls)
	assert.Equal(t, int64(0), repo.conversations[conv.ID].MessageCount)
}

func TestSendMessageRateLimited(t *testing.T) {
	uc, _, _ := newChatUseCaseForTest(2)
	ctx := context.Background()
	conv := seedConversation(t, uc, "alice", "bob")

	for i := 0; i < 2; i++ {
		_, err := uc.SendMessage(ctx, "alice", "Alice", SendMessageInput{ConversationID: conv.ID, Text: "hi"})
		assert.NoError(t, err)
	}

	_, err := uc.SendMessage(ctx, "alice", "Alice", SendMessageInput{ConversationID: conv.ID, Text: "hi"})
	assert.True(t, errors.Is(err, "TOO_MANY_REQUESTS"))

	appErr, ok := err.(*errors.AppError)
	assert.True(t, ok)
	assert.Greater(t, appErr.RetryAfter, time.Duration(0))

	// A different sender still has quota.
	_, err = uc.SendMessage(ctx, "bob", "Bob", SendMessageInput{ConversationID: conv.ID, Text: "hi"})
	assert.NoError(t, err)
}

func TestSendMessageResolvesSenderNameFallback(t *testing.T) {
	uc, repo, _ := newChatUseCaseForTest(100)
	ctx := context.Background()
	conv := seedConversation(t, uc, "alice", "bob")

	msg, err := uc.SendMessage(ctx, "alice", "", SendMessageInput{ConversationID: conv.ID, Text: "hola"})
	assert.NoError(t, err)
	assert.Equal(t, "Usuario", msg.SenderName)
	assert.Equal(t, "Usuario", repo.messages[conv.ID][0].SenderName)
}

func TestMarkAsRead(t *testing.T) {
	uc, repo, _ := newChatUseCaseForTest(100)
	ctx := context.Background()
	conv := seedConversation(t, uc, "alice", "bob")

	_, err := uc.SendMessage(ctx, "alice", "Alice", SendMessageInput{ConversationID: conv.ID, Text: "hi"})
	assert.NoError(t, err)

	assert.NoError(t, uc.MarkAsRead(ctx, "bob", conv.ID))

	assert.Equal(t, 0, repo.conversations[conv.ID].UnreadCount["bob"])
	msg := repo.messages[conv.ID][0]
	assert.True(t, msg.Read)
	assert.False(t, msg.ReadAt.IsZero())

	err = uc.MarkAsRead(ctx, "mallory", conv.ID)
	assert.True(t, errors.Is(err, "FORBIDDEN"))
}

func TestDeleteConversationIsPerUser(t *testing.T) {
	uc, repo, _ := newChatUseCaseForTest(100)
	ctx := context.Background()
	conv := seedConversation(t, uc, "alice", "bob")

	assert.NoError(t, uc.DeleteConversation(ctx, "alice", conv.ID))

	stored := repo.conversations[conv.ID]
	assert.True(t, stored.DeletedBy("alice"))
	assert.False(t, stored.DeletedBy("bob"))

	err := uc.DeleteConversation(ctx, "mallory", conv.ID)
	assert.True(t, errors.Is(err, "FORBIDDEN"))
}

func TestGetUserConversationsFirstPageCached(t *testing.T) {
	uc, repo, _ := newChatUseCaseForTest(100)
	ctx := context.Background()
	conv := seedConversation(t, uc, "alice", "bob")

	_, err := uc.GetUserConversations(ctx, "alice", 20, 0, true)
	assert.NoError(t, err)
	_, err = uc.GetUserConversations(ctx, "alice", 20, 0, true)
	assert.NoError(t, err)
	assert.Equal(t, 1, repo.listCalls)

	// Offset pages bypass the cache.
	_, err = uc.GetUserConversations(ctx, "alice", 20, 20, true)
	assert.NoError(t, err)
	assert.Equal(t, 2, repo.listCalls)

	// A send invalidates every participant's cached page.
	_, err = uc.SendMessage(ctx, "alice", "Alice", SendMessageInput{ConversationID: conv.ID, Text: "hi"})
	assert.NoError(t, err)

	_, err = uc.GetUserConversations(ctx, "alice", 20, 0, true)
	assert.NoError(t, err)
	assert.Equal(t, 3, repo.listCalls)
}

func TestSubscribeToMessagesRequiresParticipant(t *testing.T) {
	uc, _, _ := newChatUseCaseForTest(100)
	ctx := context.Background()
	conv := seedConversation(t, uc, "alice", "bob")

	_, err := uc.SubscribeToMessages(ctx, "mallory", conv.ID, func([]*entity.Message) {})
	assert.True(t, errors.Is(err, "FORBIDDEN"))
}

func TestSubscriptionDeliversSnapshots(t *testing.T) {
	uc, repo, _ := newChatUseCaseForTest(100)
	ctx := context.Background()
	conv := seedConversation(t, uc, "alice", "bob")

	received := make(chan int, 4)
	sub, err := uc.SubscribeToMessages(ctx, "alice", conv.ID, func(msgs []*entity.Message) {
		received <- len(msgs)
	})
	assert.NoError(t, err)

	repo.msgWatch <- []*entity.Message{{ID: "m1"}}
	repo.msgWatch <- []*entity.Message{{ID: "m1"}, {ID: "m2"}}

	assert.Equal(t, 1, <-received)
	assert.Equal(t, 2, <-received)

	sub.Unsubscribe()

	select {
	case n, ok := <-received:
		assert.False(t, ok, "no snapshot expected after unsubscribe, got %d", n)
	default:
	}
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	uc, _, _ := newChatUseCaseForTest(100)
	ctx := context.Background()

	sub, err := uc.SubscribeToConversations(ctx, "alice", func([]*entity.Conversation) {})
	assert.NoError(t, err)

	sub.Unsubscribe()
	sub.Unsubscribe()
}
