package repository

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"scribe/internal/models"
	"scribe/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	post := &models.Post{Title: "Test Post", Description: "Content long enough", Category: "go", UserID: 1}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "posts"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := repo.Create(ctx, post)
	assert.NoError(t, err)
	assert.Equal(t, uint(1), post.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_Count(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "posts"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := repo.Count(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_List(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	owner := seedUser(t, db, "lister@example.com")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= 7; i++ {
		category := "go"
		if i%2 == 0 {
			category = "rust"
		}
		p := seedPost(t, db, owner.ID, fmt.Sprintf("post%d", i), category)
		require.NoError(t, db.Model(p).Update("created_at", base.Add(time.Duration(i)*time.Hour)).Error)
	}

	tests := []struct {
		name   string
		opts   PostListOptions
		titles []string
	}{
		{"first page", PostListOptions{Page: 1}, []string{"post7", "post6", "post5"}},
		{"last page is short", PostListOptions{Page: 3}, []string{"post1"}},
		{"past the end", PostListOptions{Page: 4}, nil},
		{"category filter", PostListOptions{Category: "rust"}, []string{"post6", "post4", "post2"}},
		{"page wins over category", PostListOptions{Page: 2, Category: "rust"}, []string{"post4", "post3", "post2"}},
		{"unknown category", PostListOptions{Category: "cobol"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, err := repo.List(ctx, tt.opts)
			require.NoError(t, err)
			var titles []string
			for _, p := range posts {
				titles = append(titles, p.Title)
				require.NotNil(t, p.User)
				assert.Equal(t, owner.ID, p.User.ID)
			}
			assert.Equal(t, tt.titles, titles)
		})
	}

	all, err := repo.List(ctx, PostListOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 7)
}

func TestPostRepository_List_IncludesComments(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	owner := seedUser(t, db, "chatty@example.com")
	quiet := seedPost(t, db, owner.ID, "quiet", "go")
	busy := seedPost(t, db, owner.ID, "busy", "go")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, text := range []string{"older", "newer"} {
		c := &models.Comment{PostID: busy.ID, UserID: owner.ID, Username: "cha", Text: text}
		require.NoError(t, db.Create(c).Error)
		require.NoError(t, db.Model(c).Update("created_at", base.Add(time.Duration(i)*time.Minute)).Error)
	}

	for _, opts := range []PostListOptions{{}, {Page: 1}, {Category: "go"}} {
		posts, err := repo.List(ctx, opts)
		require.NoError(t, err)
		byID := map[uint]models.Post{}
		for _, p := range posts {
			byID[p.ID] = p
		}
		require.Len(t, byID[busy.ID].Comments, 2)
		assert.Equal(t, "newer", byID[busy.ID].Comments[0].Text)
		assert.Empty(t, byID[quiet.ID].Comments)
	}
}

func TestPostRepository_LikeUnlike(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	owner := seedUser(t, db, "liker@example.com")
	post := seedPost(t, db, owner.ID, "likeable", "go")

	require.NoError(t, repo.Like(ctx, owner.ID, post.ID))
	// A second like leaves exactly one row.
	require.NoError(t, repo.Like(ctx, owner.ID, post.ID))

	liked, err := repo.IsLiked(ctx, owner.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Len(t, got.Likes, 1)

	require.NoError(t, repo.Unlike(ctx, owner.ID, post.ID))
	liked, err = repo.IsLiked(ctx, owner.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestPostRepository_DeleteCascade(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	posts := NewPostRepository(db)
	comments := NewCommentRepository(db)
	ctx := context.Background()

	owner := seedUser(t, db, "deleter@example.com")
	doomed := seedPost(t, db, owner.ID, "doomed", "go")
	kept := seedPost(t, db, owner.ID, "kept", "go")

	require.NoError(t, posts.Like(ctx, owner.ID, doomed.ID))
	require.NoError(t, comments.Create(ctx, &models.Comment{PostID: doomed.ID, UserID: owner.ID, Username: "del", Text: "bye"}))
	require.NoError(t, comments.Create(ctx, &models.Comment{PostID: kept.ID, UserID: owner.ID, Username: "del", Text: "hi"}))

	require.NoError(t, posts.DeleteCascade(ctx, doomed.ID))

	_, err := posts.GetByID(ctx, doomed.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	left, err := comments.List(ctx)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, kept.ID, left[0].PostID)

	var likes int64
	require.NoError(t, db.Model(&models.PostLike{}).Count(&likes).Error)
	assert.Zero(t, likes)

	err = posts.DeleteCascade(ctx, doomed.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestPostRepository_GetByID_CommentsNewestFirst(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	posts := NewPostRepository(db)
	ctx := context.Background()

	owner := seedUser(t, db, "reader@example.com")
	post := seedPost(t, db, owner.ID, "thread", "go")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, text := range []string{"first", "second", "third"} {
		c := &models.Comment{PostID: post.ID, UserID: owner.ID, Username: "rea", Text: text}
		require.NoError(t, db.Create(c).Error)
		require.NoError(t, db.Model(c).Update("created_at", base.Add(time.Duration(i)*time.Minute)).Error)
	}

	got, err := posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.NotNil(t, got.User)
	assert.Equal(t, owner.Email, got.User.Email)
	require.Len(t, got.Comments, 3)
	assert.Equal(t, "third", got.Comments[0].Text)
	assert.Equal(t, "first", got.Comments[2].Text)
}

func TestPostRepository_ImageIDsByUser(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	owner := seedUser(t, db, "gallery@example.com")
	seedPost(t, db, owner.ID, "a", "go")
	seedPost(t, db, owner.ID, "b", "go")
	bare := seedPost(t, db, owner.ID, "c", "go")
	require.NoError(t, db.Model(bare).Update("image_public_id", "").Error)

	ids, err := repo.ImageIDsByUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"img-a", "img-b"}, ids)

	postIDs, err := repo.IDsByUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, postIDs, 3)
}
