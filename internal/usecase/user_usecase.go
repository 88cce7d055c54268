package usecase

import (
	"context"
	"time"

	"cassmarket/internal/domain/entity"
	"cassmarket/internal/domain/repository"
	"cassmarket/internal/infrastructure/cache"
	"cassmarket/pkg/errors"
)

type UserUseCase struct {
	userRepo repository.UserRepository
	cache    *cache.Cache
}

func NewUserUseCase(userRepo repository.UserRepository, c *cache.Cache) *UserUseCase {
	return &UserUseCase{
		userRepo: userRepo,
		cache:    c,
	}
}

type UpdateUserInput struct {
	Name     string
	Email    string
	PhotoURL string
	Settings *entity.UserSettings
}

// GetUserByID is a total function: a missing profile synthesizes (and
// caches) a default one instead of surfacing "not found". Callers never
// branch on a missing user.
func (uc *UserUseCase) GetUserByID(ctx context.Context, userID string) (*entity.User, error) {
	if userID == "" {
		return nil, errors.Validation("user id is required")
	}

	if cached, ok := uc.cache.Get(userID); ok {
		return cached.(*entity.User), nil
	}

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, "NOT_FOUND") {
			user = entity.DefaultUser(userID)
		} else {
			return nil, err
		}
	}

	uc.cache.Set(userID, user)
	return user, nil
}

// CreateOrUpdateUser merge-upserts the profile; last writer wins per field.
func (uc *UserUseCase) CreateOrUpdateUser(ctx context.Context, userID string, input UpdateUserInput) (*entity.User, error) {
	if userID == "" {
		return nil, errors.Validation("user id is required")
	}

	fields := make(map[string]interface{})
	if input.Name != "" {
		fields["name"] = input.Name
	}
	if input.Email != "" {
		fields["email"] = input.Email
	}
	if input.PhotoURL != "" {
		fields["photoUrl"] = input.PhotoURL
	}
	if input.Settings != nil {
		fields["settings"] = map[string]interface{}{
			"notifications": input.Settings.Notifications,
			"emailUpdates":  input.Settings.EmailUpdates,
			"privacy":       input.Settings.Privacy,
		}
	}

	if len(fields) == 0 {
		return nil, errors.Validation("no profile fields to update")
	}
	fields["id"] = userID

	if err := uc.userRepo.Upsert(ctx, userID, fields); err != nil {
		return nil, err
	}

	uc.cache.InvalidatePrefix(userID)

	return uc.GetUserByID(ctx, userID)
}

// UpdateOnlineStatus is a narrow single-field update plus lastSeen.
func (uc *UserUseCase) UpdateOnlineStatus(ctx context.Context, userID string, isOnline bool) error {
	if userID == "" {
		return errors.Validation("user id is required")
	}

	if err := uc.userRepo.SetOnlineStatus(ctx, userID, isOnline); err != nil {
		return err
	}

	uc.cache.InvalidatePrefix(userID)
	return nil
}

// SearchUsers is a prefix range query only; it does not do substring or
// fuzzy matching.
func (uc *UserUseCase) SearchUsers(ctx context.Context, prefix string, limit int) ([]*entity.User, error) {
	if prefix == "" {
		return nil, errors.Validation("search prefix is required")
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	return uc.userRepo.SearchByNamePrefix(ctx, prefix, limit)
}

// Touch refreshes lastSeen without flipping the online flag, used by
// long-lived connections as a heartbeat.
func (uc *UserUseCase) Touch(ctx context.Context, userID string) error {
	if err := uc.userRepo.Upsert(ctx, userID, map[string]interface{}{
		"lastSeen": time.Now(),
	}); err != nil {
		return err
	}

	uc.cache.InvalidatePrefix(userID)
	return nil
}
