package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"cassmarket/internal/domain/entity"
	"cassmarket/internal/domain/repository"
	"cassmarket/pkg/errors"
)

// prefixSentinel is the highest Unicode code point Firestore orders after any
// continuation of a prefix, turning [prefix, prefix+sentinel] into a
// prefix-match range.
const prefixSentinel = "\uf8ff"

type firestoreUserRepository struct {
	client *firestore.Client
}

func NewFirestoreUserRepository(client *firestore.Client) repository.UserRepository {
	return &firestoreUserRepository{
		client: client,
	}
}

func (r *firestoreUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	doc, err := r.client.Collection("users").Doc(id).Get(ctx)
	if err != nil {
		if IsNotFound(err) {
			return nil, errors.NotFound("User", err)
		}
		return nil, errors.Internal("Failed to get user", err)
	}

	var user entity.User
	if err := doc.DataTo(&user); err != nil {
		return nil, errors.Internal("Failed to parse user data", err)
	}
	user.ID = doc.Ref.ID

	return &user, nil
}

func (r *firestoreUserRepository) Upsert(ctx context.Context, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}

	fields["updatedAt"] = time.Now()

	_, err := r.client.Collection("users").Doc(id).Set(ctx, fields, firestore.MergeAll)
	if err != nil {
		return errors.Internal("Failed to upsert user", err)
	}

	return nil
}

func (r *firestoreUserRepository) SetOnlineStatus(ctx context.Context, id string, isOnline bool) error {
	_, err := r.client.Collection("users").Doc(id).Set(ctx, map[string]interface{}{
		"isOnline": isOnline,
		"lastSeen": time.Now(),
	}, firestore.MergeAll)
	if err != nil {
		return errors.Internal("Failed to update online status", err)
	}

	return nil
}

func (r *firestoreUserRepository) SearchByNamePrefix(ctx context.Context, prefix string, limit int) ([]*entity.User, error) {
	query := r.client.Collection("users").
		Where("name", ">=", prefix).
		Where("name", "<=", prefix+prefixSentinel).
		OrderBy("name", firestore.Asc)

	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var users []*entity.User
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to search users", err)
		}

		var user entity.User
		if err := doc.DataTo(&user); err != nil {
			continue
		}
		user.ID = doc.Ref.ID
		users = append(users, &user)
	}

	return users, nil
}
