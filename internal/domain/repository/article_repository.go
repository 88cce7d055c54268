package repository

import (
	"context"
	"time"

	"cassmarket/internal/domain/entity"
)

type ArticleRepository interface {
	Create(ctx context.Context, article *entity.Article) error
	GetByID(ctx context.Context, id string) (*entity.Article, error)
	Update(ctx context.Context, article *entity.Article) error
	Delete(ctx context.Context, id string) error

	ListBySeller(ctx context.Context, sellerID string, limit, offset int) ([]*entity.Article, int64, error)

	// ListNewest returns active articles newest first; a zero startAfter
	// means the first page.
	ListNewest(ctx context.Context, limit int, startAfter time.Time) ([]*entity.Article, error)

	IncrementViews(ctx context.Context, id string) error
	AddPhoto(ctx context.Context, id, url string) error
	RemovePhoto(ctx context.Context, id, url string) error
}
