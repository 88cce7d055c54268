package entity

import "time"

// Message is immutable once created except for the read flag and readAt,
// which is set exactly once on the false to true transition.
type Message struct {
	ID             string    `json:"id" firestore:"id"`
	ConversationID string    `json:"conversation_id" firestore:"conversationId"`
	SenderID       string    `json:"sender_id" firestore:"senderId"`
	SenderName     string    `json:"sender_name" firestore:"senderName"`
	Message        string    `json:"message" firestore:"message"`
	Timestamp      time.Time `json:"timestamp" firestore:"timestamp,serverTimestamp"`
	Read           bool      `json:"read" firestore:"read"`
	ReadAt         time.Time `json:"read_at,omitempty" firestore:"readAt,omitempty"`
	Edited         bool      `json:"edited" firestore:"edited"`
	Attachments    []string  `json:"attachments,omitempty" firestore:"attachments,omitempty"`
}
