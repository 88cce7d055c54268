package entity

import "time"

// Conversation is a durable thread between two or more participants,
// optionally scoped to one article. Participants are stored sorted so that
// (participants, productId) deterministically identifies a thread.
//
// unreadCount has one entry per participant at all times; deletion is a
// per-user tombstone in deletedFor, never a hard delete.
type Conversation struct {
	ID              string               `json:"id" firestore:"id"`
	Participants    []string             `json:"participants" firestore:"participants"`
	ProductID       string               `json:"product_id,omitempty" firestore:"productId,omitempty"`
	ProductTitle    string               `json:"product_title,omitempty" firestore:"productTitle,omitempty"`
	LastMessage     string               `json:"last_message,omitempty" firestore:"lastMessage,omitempty"`
	LastMessageTime time.Time            `json:"last_message_time" firestore:"lastMessageTime"`
	MessageCount    int64                `json:"message_count" firestore:"messageCount"`
	UnreadCount     map[string]int       `json:"unread_count" firestore:"unreadCount"`
	DeletedFor      map[string]time.Time `json:"deleted_for,omitempty" firestore:"deletedFor,omitempty"`
	IsActive        bool                 `json:"is_active" firestore:"isActive"`
	CreatedAt       time.Time            `json:"created_at" firestore:"createdAt"`
}

// HasParticipant reports whether userID belongs to the thread.
func (c *Conversation) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// DeletedBy reports whether userID tombstoned the thread for themselves.
func (c *Conversation) DeletedBy(userID string) bool {
	if c.DeletedFor == nil {
		return false
	}
	_, ok := c.DeletedFor[userID]
	return ok
}
