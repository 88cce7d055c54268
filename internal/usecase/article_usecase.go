package usecase

import (
	"context"
	"io"
	"time"

	"cassmarket/internal/domain/entity"
	"cassmarket/internal/domain/repository"
	"cassmarket/pkg/errors"
	"cassmarket/pkg/logger"
)

// PhotoStorage is the binary object store collaborator used for listing
// photos.
type PhotoStorage interface {
	UploadPhoto(ctx context.Context, file io.Reader, contentType, folder string) (string, error)
	DeleteByURL(ctx context.Context, url string) error
}

type ArticleUseCase struct {
	articleRepo repository.ArticleRepository
	storage     PhotoStorage
}

func NewArticleUseCase(articleRepo repository.ArticleRepository, storage PhotoStorage) *ArticleUseCase {
	return &ArticleUseCase{
		articleRepo: articleRepo,
		storage:     storage,
	}
}

type ArticleInput struct {
	Title       string  `json:"title" validate:"required,min=3,max=120"`
	Description string  `json:"description" validate:"max=4000"`
	Price       float64 `json:"price" validate:"gte=0"`
	Category    string  `json:"category" validate:"required"`
}

func (uc *ArticleUseCase) CreateArticle(ctx context.Context, sellerID string, input ArticleInput) (*entity.Article, error) {
	if sellerID == "" {
		return nil, errors.Validation("seller id is required")
	}

	article := &entity.Article{
		Title:       input.Title,
		Description: input.Description,
		Price:       input.Price,
		Category:    input.Category,
		SellerID:    sellerID,
		Status:      "active",
	}

	if err := uc.articleRepo.Create(ctx, article); err != nil {
		return nil, err
	}

	return article, nil
}

// GetArticle reads one listing and bumps its view counter; the bump is
// best-effort and never fails the read.
func (uc *ArticleUseCase) GetArticle(ctx context.Context, id string) (*entity.Article, error) {
	article, err := uc.articleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := uc.articleRepo.IncrementViews(ctx, id); err != nil {
		logger.Warn("Failed to bump views for article %s: %v", id, err)
	}

	return article, nil
}

func (uc *ArticleUseCase) UpdateArticle(ctx context.Context, sellerID, id string, input ArticleInput) (*entity.Article, error) {
	article, err := uc.articleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if article.SellerID != sellerID {
		return nil, errors.Forbidden("Only the seller can update this article", nil)
	}

	article.Title = input.Title
	article.Description = input.Description
	article.Price = input.Price
	article.Category = input.Category

	if err := uc.articleRepo.Update(ctx, article); err != nil {
		return nil, err
	}

	return article, nil
}

// DeleteArticle removes the listing and its photos; photo deletion is
// best-effort since the document is already gone.
func (uc *ArticleUseCase) DeleteArticle(ctx context.Context, sellerID, id string) error {
	article, err := uc.articleRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if article.SellerID != sellerID {
		return errors.Forbidden("Only the seller can delete this article", nil)
	}

	if err := uc.articleRepo.Delete(ctx, id); err != nil {
		return err
	}

	for _, url := range article.Photos {
		if err := uc.storage.DeleteByURL(ctx, url); err != nil {
			logger.Warn("Failed to delete photo %s for article %s: %v", url, id, err)
		}
	}

	return nil
}

func (uc *ArticleUseCase) ListBySeller(ctx context.Context, sellerID string, limit, offset int) ([]*entity.Article, int64, error) {
	if sellerID == "" {
		return nil, 0, errors.Validation("seller id is required")
	}

	return uc.articleRepo.ListBySeller(ctx, sellerID, limit, offset)
}

// Browse lists active articles newest first with cursor pagination.
func (uc *ArticleUseCase) Browse(ctx context.Context, limit int, cursor string) ([]*entity.Article, string, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var startAfter time.Time
	if cursor != "" {
		t, err := time.Parse(time.RFC3339Nano, cursor)
		if err != nil {
			return nil, "", errors.Validation("invalid pagination cursor")
		}
		startAfter = t
	}

	articles, err := uc.articleRepo.ListNewest(ctx, limit, startAfter)
	if err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(articles) == limit {
		nextCursor = articles[len(articles)-1].CreatedAt.Format(time.RFC3339Nano)
	}

	return articles, nextCursor, nil
}

func (uc *ArticleUseCase) UploadPhoto(ctx context.Context, sellerID, id string, file io.Reader, contentType string) (string, error) {
	article, err := uc.articleRepo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	if article.SellerID != sellerID {
		return "", errors.Forbidden("Only the seller can add photos to this article", nil)
	}

	url, err := uc.storage.UploadPhoto(ctx, file, contentType, "articles/"+id)
	if err != nil {
		return "", errors.Internal("Failed to upload photo", err)
	}

	if err := uc.articleRepo.AddPhoto(ctx, id, url); err != nil {
		// Keep storage consistent with the document when the attach fails.
		if delErr := uc.storage.DeleteByURL(ctx, url); delErr != nil {
			logger.Warn("Failed to clean up orphaned photo %s: %v", url, delErr)
		}
		return "", err
	}

	return url, nil
}

func (uc *ArticleUseCase) DeletePhoto(ctx context.Context, sellerID, id, url string) error {
	article, err := uc.articleRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if article.SellerID != sellerID {
		return errors.Forbidden("Only the seller can remove photos from this article", nil)
	}

	if err := uc.articleRepo.RemovePhoto(ctx, id, url); err != nil {
		return err
	}

	if err := uc.storage.DeleteByURL(ctx, url); err != nil {
		logger.Warn("Failed to delete photo object %s: %v", url, err)
	}

	return nil
}
