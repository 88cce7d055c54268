package repository

import (
	"context"

	"cassmarket/internal/domain/entity"
)

type UserRepository interface {
	// GetByID fails with NOT_FOUND when no profile document exists; the
	// usecase layer turns that into a synthetic default profile.
	GetByID(ctx context.Context, id string) (*entity.User, error)

	// Upsert merges the given fields into the profile document, creating it
	// on first write. Last writer wins per field.
	Upsert(ctx context.Context, id string, fields map[string]interface{}) error

	SetOnlineStatus(ctx context.Context, id string, isOnline bool) error

	// SearchByNamePrefix is a prefix range query, not substring or fuzzy
	// search.
	SearchByNamePrefix(ctx context.Context, prefix string, limit int) ([]*entity.User, error)
}
