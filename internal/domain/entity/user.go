package entity

import (
	"time"
)

type UserSettings struct {
	Notifications bool   `json:"notifications" firestore:"notifications"`
	EmailUpdates  bool   `json:"email_updates" firestore:"emailUpdates"`
	Privacy       string `json:"privacy" firestore:"privacy"` // "public", "contacts", "private"
}

type User struct {
	ID       string       `json:"id" firestore:"id"`
	Name     string       `json:"name" firestore:"name"`
	Email    string       `json:"email" firestore:"email"`
	PhotoURL string       `json:"photo_url,omitempty" firestore:"photoUrl,omitempty"`
	IsOnline bool         `json:"is_online" firestore:"isOnline"`
	LastSeen time.Time    `json:"last_seen" firestore:"lastSeen"`
	Settings UserSettings `json:"settings" firestore:"settings"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

// DefaultUser is the synthetic profile returned when no document exists for
// an identity, so profile lookups stay total functions for every caller.
func DefaultUser(id string) *User {
	return &User{
		ID:       id,
		Name:     "Usuario",
		IsOnline: false,
		Settings: UserSettings{
			Notifications: true,
			EmailUpdates:  true,
			Privacy:       "public",
		},
	}
}
