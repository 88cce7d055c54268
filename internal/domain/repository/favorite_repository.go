package repository

import (
	"context"
	"time"

	"cassmarket/internal/domain/entity"
)

type FavoriteRepository interface {
	// Add stores the link under its deterministic id; overwriting an existing
	// link is harmless since the link carries no mutable state.
	Add(ctx context.Context, link *entity.FavoriteLink) error

	// RemoveAll deletes every link matching (userID, articleID) in one batch,
	// succeeding as a no-op when nothing matched.
	RemoveAll(ctx context.Context, userID, articleID string) error

	// Exists checks membership
	Exists(ctx context.Context, userID, articleID string) (bool, error)

	// ListByUser returns links newest first; a zero startAfter means the
	// first page.
	ListByUser(ctx context.Context, userID string, limit int, startAfter time.Time) ([]*entity.FavoriteLink, error)

	CountByUser(ctx context.Context, userID string) (int64, error)
	CountByUserSince(ctx context.Context, userID string, since time.Time) (int64, error)
}
