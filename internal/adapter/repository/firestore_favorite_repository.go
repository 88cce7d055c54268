package repository

import (
	"context"
	"fmt"
	"time"

	"cassmarket/internal/domain/entity"
	"cassmarket/internal/domain/repository"
	"cassmarket/pkg/errors"
	"cassmarket/pkg/logger"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

type firestoreFavoriteRepository struct {
	client *firestore.Client
}

func NewFirestoreFavoriteRepository(client *firestore.Client) repository.FavoriteRepository {
	return &firestoreFavoriteRepository{client: client}
}

func favoriteDocID(userID, articleID string) string {
	return fmt.Sprintf("%s_%s", userID, articleID)
}

func (r *firestoreFavoriteRepository) Add(ctx context.Context, link *entity.FavoriteLink) error {
	if link.ID == "" {
		link.ID = favoriteDocID(link.UserID, link.ArticleID)
	}
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now()
	}

	// The deterministic doc id makes the write idempotent by key: a racing
	// duplicate add lands on the same document.
	_, err := r.client.Collection("favorites").Doc(link.ID).Set(ctx, link)
	if err != nil {
		return errors.Internal("Failed to add favorite", err)
	}

	return nil
}

func (r *firestoreFavoriteRepository) RemoveAll(ctx context.Context, userID, articleID string) error {
	docs, err := r.client.Collection("favorites").
		Where("userId", "==", userID).
		Where("articleId", "==", articleID).
		Documents(ctx).GetAll()
	if err != nil {
		return errors.Internal("Failed to query favorites for removal", err)
	}

	if len(docs) == 0 {
		return nil
	}

	// Batch-delete every match so duplicates self-heal on removal.
	batch := r.client.Batch()
	for _, doc := range docs {
		batch.Delete(doc.Ref)
	}
	if _, err := batch.Commit(ctx); err != nil {
		return errors.Internal("Failed to remove favorites", err)
	}

	logger.Debug("Removed %d favorite link(s) for user %s article %s", len(docs), userID, articleID)
	return nil
}

func (r *firestoreFavoriteRepository) Exists(ctx context.Context, userID, articleID string) (bool, error) {
	doc, err := r.client.Collection("favorites").Doc(favoriteDocID(userID, articleID)).Get(ctx)
	if err != nil {
		if IsNotFound(err) {
			return false, nil
		}
		return false, errors.Internal("Failed to check favorite", err)
	}

	return doc.Exists(), nil
}

func (r *firestoreFavoriteRepository) ListByUser(ctx context.Context, userID string, limit int, startAfter time.Time) ([]*entity.FavoriteLink, error) {
	query := r.client.Collection("favorites").
		Where("userId", "==", userID).
		OrderBy("createdAt", firestore.Desc)

	if !startAfter.IsZero() {
		query = query.StartAfter(startAfter)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var links []*entity.FavoriteLink
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to list favorites", err)
		}

		var link entity.FavoriteLink
		if err := doc.DataTo(&link); err != nil {
			logger.Warn("Skipping malformed favorite %s: %v", doc.Ref.ID, err)
			continue
		}
		links = append(links, &link)
	}

	return links, nil
}

func (r *firestoreFavoriteRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	docs, err := r.client.Collection("favorites").
		Where("userId", "==", userID).
		Documents(ctx).GetAll()
	if err != nil {
		return 0, errors.Internal("Failed to count favorites", err)
	}

	return int64(len(docs)), nil
}

func (r *firestoreFavoriteRepository) CountByUserSince(ctx context.Context, userID string, since time.Time) (int64, error) {
	docs, err := r.client.Collection("favorites").
		Where("userId", "==", userID).
		Where("createdAt", ">=", since).
		Documents(ctx).GetAll()
	if err != nil {
		return 0, errors.Internal("Failed to count recent favorites", err)
	}

	return int64(len(docs)), nil
}
