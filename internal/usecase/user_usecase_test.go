package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"cassmarket/internal/domain/entity"
	"cassmarket/internal/infrastructure/cache"
	"cassmarket/pkg/errors"
)

func newUserUseCaseForTest() (*UserUseCase, *fakeUserRepo) {
	repo := newFakeUserRepo()
	return NewUserUseCase(repo, cache.New(time.Minute)), repo
}

func TestGetUserByIDSynthesizesDefaultProfile(t *testing.T) {
	uc, _ := newUserUseCaseForTest()

	user, err := uc.GetUserByID(context.Background(), "ghost")
	assert.NoError(t, err)
	assert.Equal(t, "ghost", user.ID)
	assert.Equal(t, "Usuario", user.Name)
	assert.False(t, user.IsOnline)
}

func TestGetUserByIDServedFromCache(t *testing.T) {
	uc, repo := newUserUseCaseForTest()
	ctx := context.Background()

	repo.users["u1"] = &entity.User{ID: "u1", Name: "Ana"}

	_, err := uc.GetUserByID(ctx, "u1")
	assert.NoError(t, err)
	_, err = uc.GetUserByID(ctx, "u1")
	assert.NoError(t, err)

	assert.Equal(t, 1, repo.getCalls)
}

func TestCreateOrUpdateUserInvalidatesCache(t *testing.T) {
	uc, repo := newUserUseCaseForTest()
	ctx := context.Background()

	// Cache the synthetic default first.
	user, err := uc.GetUserByID(ctx, "u1")
	assert.NoError(t, err)
	assert.Equal(t, "Usuario", user.Name)

	_, err = uc.CreateOrUpdateUser(ctx, "u1", UpdateUserInput{Name: "Ana"})
	assert.NoError(t, err)
	assert.Equal(t, 1, repo.upsertCalls)

	user, err = uc.GetUserByID(ctx, "u1")
	assert.NoError(t, err)
	assert.Equal(t, "Ana", user.Name)
}

func TestCreateOrUpdateUserRejectsEmptyInput(t *testing.T) {
	uc, repo := newUserUseCaseForTest()

	_, err := uc.CreateOrUpdateUser(context.Background(), "u1", UpdateUserInput{})
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))
	assert.Equal(t, 0, repo.upsertCalls)
}

func TestUpdateOnlineStatus(t *testing.T) {
	uc, repo := newUserUseCaseForTest()
	ctx := context.Background()

	repo.users["u1"] = &entity.User{ID: "u1", Name: "Ana"}

	// Warm the cache, then flip presence; the next read must see the flip.
	_, err := uc.GetUserByID(ctx, "u1")
	assert.NoError(t, err)

	assert.NoError(t, uc.UpdateOnlineStatus(ctx, "u1", true))

	user, err := uc.GetUserByID(ctx, "u1")
	assert.NoError(t, err)
	assert.True(t, user.IsOnline)
}

func TestSearchUsersRequiresPrefix(t *testing.T) {
	uc, _ := newUserUseCaseForTest()

	_, err := uc.SearchUsers(context.Background(), "", 10)
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))
}

func TestSearchUsersMatchesPrefixOnly(t *testing.T) {
	uc, repo := newUserUseCaseForTest()
	ctx := context.Background()

	repo.users["u1"] = &entity.User{ID: "u1", Name: "Ana"}
	repo.users["u2"] = &entity.User{ID: "u2", Name: "Anabel"}
	repo.users["u3"] = &entity.User{ID: "u3", Name: "Juana"} // contains but does not start with

	users, err := uc.SearchUsers(ctx, "Ana", 10)
	assert.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, "Ana", repo.searched)
}
