package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"cassmarket/internal/domain/entity"
	"cassmarket/internal/domain/repository"
	"cassmarket/pkg/errors"
)

type firestoreArticleRepository struct {
	client *firestore.Client
}

func NewFirestoreArticleRepository(client *firestore.Client) repository.ArticleRepository {
	return &firestoreArticleRepository{client: client}
}

func (r *firestoreArticleRepository) Create(ctx context.Context, article *entity.Article) error {
	if article.ID == "" {
		article.ID = uuid.New().String()
	}

	now := time.Now()
	article.CreatedAt = now
	article.UpdatedAt = now
	if article.Status == "" {
		article.Status = "active"
	}

	_, err := r.client.Collection("articles").Doc(article.ID).Set(ctx, article)
	if err != nil {
		return errors.Internal("Failed to create article", err)
	}

	return nil
}

func (r *firestoreArticleRepository) GetByID(ctx context.Context, id string) (*entity.Article, error) {
	doc, err := r.client.Collection("articles").Doc(id).Get(ctx)
	if err != nil {
		if IsNotFound(err) {
			return nil, errors.NotFound("Article", err)
		}
		return nil, errors.Internal("Failed to get article", err)
	}

	var article entity.Article
	if err := doc.DataTo(&article); err != nil {
		return nil, errors.Internal("Failed to parse article data", err)
	}
	article.ID = doc.Ref.ID

	return &article, nil
}

func (r *firestoreArticleRepository) Update(ctx context.Context, article *entity.Article) error {
	article.UpdatedAt = time.Now()

	_, err := r.client.Collection("articles").Doc(article.ID).Set(ctx, article)
	if err != nil {
		return errors.Internal("Failed to update article", err)
	}

	return nil
}

func (r *firestoreArticleRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection("articles").Doc(id).Delete(ctx)
	if err != nil {
		return errors.Internal("Failed to delete article", err)
	}

	return nil
}

func (r *firestoreArticleRepository) ListBySeller(ctx context.Context, sellerID string, limit, offset int) ([]*entity.Article, int64, error) {
	query := r.client.Collection("articles").
		Where("sellerId", "==", sellerID).
		OrderBy("createdAt", firestore.Desc)

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, errors.Internal("Failed to list articles", err)
	}

	total := int64(len(allDocs))

	start := offset
	if start > len(allDocs) {
		start = len(allDocs)
	}
	end := len(allDocs)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	var articles []*entity.Article
	for _, doc := range allDocs[start:end] {
		var article entity.Article
		if err := doc.DataTo(&article); err != nil {
			continue
		}
		article.ID = doc.Ref.ID
		articles = append(articles, &article)
	}

	return articles, total, nil
}

func (r *firestoreArticleRepository) ListNewest(ctx context.Context, limit int, startAfter time.Time) ([]*entity.Article, error) {
	query := r.client.Collection("articles").
		Where("status", "==", "active").
		OrderBy("createdAt", firestore.Desc)

	if !startAfter.IsZero() {
		query = query.StartAfter(startAfter)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var articles []*entity.Article
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to browse articles", err)
		}

		var article entity.Article
		if err := doc.DataTo(&article); err != nil {
			continue
		}
		article.ID = doc.Ref.ID
		articles = append(articles, &article)
	}

	return articles, nil
}

func (r *firestoreArticleRepository) IncrementViews(ctx context.Context, id string) error {
	_, err := r.client.Collection("articles").Doc(id).Update(ctx, []firestore.Update{
		{Path: "views", Value: firestore.Increment(1)},
	})
	if err != nil {
		if IsNotFound(err) {
			return errors.NotFound("Article", err)
		}
		return errors.Internal("Failed to increment views", err)
	}

	return nil
}

func (r *firestoreArticleRepository) AddPhoto(ctx context.Context, id, url string) error {
	_, err := r.client.Collection("articles").Doc(id).Update(ctx, []firestore.Update{
		{Path: "photos", Value: firestore.ArrayUnion(url)},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		if IsNotFound(err) {
			return errors.NotFound("Article", err)
		}
		return errors.Internal("Failed to attach photo", err)
	}

	return nil
}

func (r *firestoreArticleRepository) RemovePhoto(ctx context.Context, id, url string) error {
	_, err := r.client.Collection("articles").Doc(id).Update(ctx, []firestore.Update{
		{Path: "photos", Value: firestore.ArrayRemove(url)},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		if IsNotFound(err) {
			return errors.NotFound("Article", err)
		}
		return errors.Internal("Failed to remove photo", err)
	}

	return nil
}
