package usecase

import (
	"context"
	"time"

	"cassmarket/internal/domain/entity"
	"cassmarket/internal/domain/repository"
	"cassmarket/internal/infrastructure/cache"
	"cassmarket/pkg/errors"
	"cassmarket/pkg/logger"
)

type FavoriteUseCase struct {
	favoriteRepo repository.FavoriteRepository
	cache        *cache.Cache
}

func NewFavoriteUseCase(favoriteRepo repository.FavoriteRepository, c *cache.Cache) *FavoriteUseCase {
	return &FavoriteUseCase{
		favoriteRepo: favoriteRepo,
		cache:        c,
	}
}

// ToggleFavoriteResult is the discriminated outcome UI callers apply
// optimistically and reconcile against.
type ToggleFavoriteResult struct {
	IsFavorite bool      `json:"is_favorite"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}

// FavoritesPage is one page of a user's favorites, newest first. NextCursor
// is empty on the last page.
type FavoritesPage struct {
	Links      []*entity.FavoriteLink `json:"items"`
	NextCursor string                 `json:"next_cursor,omitempty"`
}

type FavoritesQuery struct {
	PageSize int
	Cursor   string
	UseCache bool
}

func membershipKey(userID, articleID string) string {
	return userID + ":" + articleID
}

// AddToFavorites is idempotent: re-adding an existing link reports success
// without creating a duplicate.
func (uc *FavoriteUseCase) AddToFavorites(ctx context.Context, userID, articleID string) (*entity.FavoriteLink, error) {
	if userID == "" || articleID == "" {
		return nil, errors.Validation("user id and article id are required")
	}

	exists, err := uc.favoriteRepo.Exists(ctx, userID, articleID)
	if err != nil {
		return nil, err
	}

	link := &entity.FavoriteLink{
		UserID:    userID,
		ArticleID: articleID,
		CreatedAt: time.Now(),
	}

	if !exists {
		if err := uc.favoriteRepo.Add(ctx, link); err != nil {
			return nil, err
		}
	}

	// Caches are touched only on success so a failed call leaves them
	// exactly as they were.
	uc.cache.InvalidatePrefix(userID)

	return link, nil
}

// RemoveFromFavorites succeeds as a no-op when nothing matched.
func (uc *FavoriteUseCase) RemoveFromFavorites(ctx context.Context, userID, articleID string) error {
	if userID == "" || articleID == "" {
		return errors.Validation("user id and article id are required")
	}

	if err := uc.favoriteRepo.RemoveAll(ctx, userID, articleID); err != nil {
		return err
	}

	uc.cache.InvalidatePrefix(userID)
	return nil
}

// ToggleFavorite reads current membership and flips it, returning the new
// state. This is the primary entry point for optimistic UI updates.
func (uc *FavoriteUseCase) ToggleFavorite(ctx context.Context, userID, articleID string) (*ToggleFavoriteResult, error) {
	isFavorite, err := uc.IsFavorite(ctx, userID, articleID)
	if err != nil {
		return nil, err
	}

	if isFavorite {
		if err := uc.RemoveFromFavorites(ctx, userID, articleID); err != nil {
			return nil, err
		}
		return &ToggleFavoriteResult{
			IsFavorite: false,
			Message:    "Removed from favorites",
			Timestamp:  time.Now(),
		}, nil
	}

	if _, err := uc.AddToFavorites(ctx, userID, articleID); err != nil {
		return nil, err
	}
	return &ToggleFavoriteResult{
		IsFavorite: true,
		Message:    "Added to favorites",
		Timestamp:  time.Now(),
	}, nil
}

// IsFavorite is a cached existence check.
func (uc *FavoriteUseCase) IsFavorite(ctx context.Context, userID, articleID string) (bool, error) {
	if userID == "" || articleID == "" {
		return false, errors.Validation("user id and article id are required")
	}

	key := membershipKey(userID, articleID)
	if cached, ok := uc.cache.Get(key); ok {
		return cached.(bool), nil
	}

	exists, err := uc.favoriteRepo.Exists(ctx, userID, articleID)
	if err != nil {
		return false, err
	}

	uc.cache.Set(key, exists)
	return exists, nil
}

// GetUserFavorites lists a user's favorites newest first. Only the first,
// cursor-less page is cacheable; cursor requests always bypass the cache.
func (uc *FavoriteUseCase) GetUserFavorites(ctx context.Context, userID string, query FavoritesQuery) (*FavoritesPage, error) {
	if userID == "" {
		return nil, errors.Validation("user id is required")
	}

	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	firstPage := query.Cursor == ""
	if firstPage && query.UseCache {
		if cached, ok := uc.cache.Get(userID); ok {
			return cached.(*FavoritesPage), nil
		}
	}

	var startAfter time.Time
	if !firstPage {
		t, err := time.Parse(time.RFC3339Nano, query.Cursor)
		if err != nil {
			return nil, errors.Validation("invalid pagination cursor")
		}
		startAfter = t
	}

	links, err := uc.favoriteRepo.ListByUser(ctx, userID, pageSize, startAfter)
	if err != nil {
		return nil, err
	}

	page := &FavoritesPage{Links: links}
	if len(links) == pageSize {
		page.NextCursor = links[len(links)-1].CreatedAt.Format(time.RFC3339Nano)
	}

	if firstPage {
		uc.cache.Set(userID, page)
	}

	return page, nil
}

// GetFavoritesStats recomputes total and this-calendar-month counts with two
// independent range queries on every call. Cost is linear in total
// favorites, which is fine at this scale.
func (uc *FavoriteUseCase) GetFavoritesStats(ctx context.Context, userID string) (*entity.FavoriteStats, error) {
	if userID == "" {
		return nil, errors.Validation("user id is required")
	}

	total, err := uc.favoriteRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	thisMonth, err := uc.favoriteRepo.CountByUserSince(ctx, userID, monthStart)
	if err != nil {
		return nil, err
	}

	logger.Debug("Favorite stats for user %s: total=%d thisMonth=%d", userID, total, thisMonth)

	return &entity.FavoriteStats{
		Total:     total,
		ThisMonth: thisMonth,
	}, nil
}
