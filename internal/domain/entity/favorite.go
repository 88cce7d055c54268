package entity

import (
	"time"
)

// FavoriteLink is one user's bookmark of one article. At most one active link
// exists per (userId, articleId) pair; re-adding is a no-op that reports
// success, removal is a hard delete.
type FavoriteLink struct {
	ID        string    `json:"id" firestore:"id"`
	UserID    string    `json:"user_id" firestore:"userId"`
	ArticleID string    `json:"article_id" firestore:"articleId"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}

type FavoriteStats struct {
	Total     int64 `json:"total"`
	ThisMonth int64 `json:"this_month"`
}
