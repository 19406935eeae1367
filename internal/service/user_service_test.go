package service

import (
	"context"
	"errors"
	"testing"

	"scribe/internal/auth"
	"scribe/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestUserService_UpdateProfile(t *testing.T) {
	f := newFixture(t)
	svc := f.userService()
	ctx := context.Background()

	user, caller := f.createUser(t, "kate", "kate@example.com", false)
	_, admin := f.createUser(t, "root", "root@example.com", true)

	updated, err := svc.UpdateProfile(ctx, caller, user.ID, UpdateProfileInput{
		Username: strPtr(" Katherine "),
		Password: strPtr("N3w!Password"),
		Bio:      strPtr("writes about go"),
	})
	require.NoError(t, err)
	assert.Equal(t, "katherine", updated.Username)
	assert.Equal(t, "writes about go", updated.Bio)

	stored, err := f.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword("N3w!Password", stored.Password))

	_, err = svc.UpdateProfile(ctx, admin, user.ID, UpdateProfileInput{Bio: strPtr("hijacked")})
	requireCode(t, err, models.CodeForbidden)

	_, err = svc.UpdateProfile(ctx, nil, user.ID, UpdateProfileInput{Bio: strPtr("anon")})
	requireCode(t, err, models.CodeUnauthorized)

	_, err = svc.UpdateProfile(ctx, caller, user.ID, UpdateProfileInput{Password: strPtr("weak")})
	requireCode(t, err, models.CodeValidation)
}

func TestUserService_GetProfileIncludesPosts(t *testing.T) {
	f := newFixture(t)
	user, caller := f.createUser(t, "liam", "liam@example.com", false)
	f.createPost(t, caller, "first post")
	f.createPost(t, caller, "second post")

	profile, err := f.userService().GetProfile(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Len(t, profile.Posts, 2)

	_, err = f.userService().GetProfile(context.Background(), 4040)
	requireCode(t, err, models.CodeNotFound)
}

func TestUserService_UploadProfilePhoto(t *testing.T) {
	f := newFixture(t)
	svc := f.userService()
	ctx := context.Background()
	user, caller := f.createUser(t, "mia", "mia@example.com", false)

	first, err := svc.UploadProfilePhoto(ctx, caller, pngUpload(t))
	require.NoError(t, err)
	assert.True(t, f.store.Has(first.PublicID))

	second, err := svc.UploadProfilePhoto(ctx, caller, pngUpload(t))
	require.NoError(t, err)
	assert.False(t, f.store.Has(first.PublicID))
	assert.True(t, f.store.Has(second.PublicID))

	stored, err := f.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, second, stored.ProfilePhoto)

	_, err = svc.UploadProfilePhoto(ctx, caller, nil)
	requireCode(t, err, models.CodeValidation)

	f.store.FailWith = errors.New("host unavailable")
	_, err = svc.UploadProfilePhoto(ctx, caller, pngUpload(t))
	requireCode(t, err, models.CodeDelegate)
}

func TestUserService_DeleteAccount(t *testing.T) {
	f := newFixture(t)
	svc := f.userService()
	ctx := context.Background()

	victim, victimID := f.createUser(t, "nina", "nina@example.com", false)
	_, otherID := f.createUser(t, "otto", "otto@example.com", false)

	photo, err := svc.UploadProfilePhoto(ctx, victimID, pngUpload(t))
	require.NoError(t, err)
	own := f.createPost(t, victimID, "victim post")
	foreign := f.createPost(t, otherID, "foreign post")

	_, err = f.postService().ToggleLike(ctx, victimID, foreign.ID)
	require.NoError(t, err)
	_, err = f.commentService().CreateComment(ctx, otherID, CreateCommentInput{PostID: own.ID, Text: "hello"})
	require.NoError(t, err)

	requireCode(t, svc.DeleteAccount(ctx, otherID, victim.ID), models.CodeForbidden)

	require.NoError(t, svc.DeleteAccount(ctx, victimID, victim.ID))

	assert.ElementsMatch(t, []string{own.Image.PublicID, photo.PublicID}, f.store.DeletedIDs())

	_, err = f.users.GetByID(ctx, victim.ID)
	requireCode(t, err, models.CodeNotFound)
	_, err = f.posts.GetByID(ctx, own.ID)
	requireCode(t, err, models.CodeNotFound)

	remaining, err := f.posts.GetByID(ctx, foreign.ID)
	require.NoError(t, err)
	assert.False(t, remaining.LikedBy(victim.ID))

	n, err := f.comments.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUserService_DeleteAccount_AssetFailureKeepsRows(t *testing.T) {
	f := newFixture(t)
	svc := f.userService()
	ctx := context.Background()

	user, caller := f.createUser(t, "pia", "pia@example.com", false)
	_, admin := f.createUser(t, "boss", "boss@example.com", true)
	post := f.createPost(t, caller, "kept post")

	f.store.FailWith = errors.New("host unavailable")
	requireCode(t, svc.DeleteAccount(ctx, admin, user.ID), models.CodeDelegate)

	_, err := f.users.GetByID(ctx, user.ID)
	assert.NoError(t, err)
	_, err = f.posts.GetByID(ctx, post.ID)
	assert.NoError(t, err)
}
