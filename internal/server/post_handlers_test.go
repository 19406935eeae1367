package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"scribe/internal/media"
	"scribe/internal/models"
	"scribe/internal/notifications"
	"scribe/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockStore is a mock implementation of media.Store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Upload(ctx context.Context, in media.Upload) (models.Image, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(models.Image), args.Error(1)
}

func (m *MockStore) Delete(ctx context.Context, publicID string) error {
	args := m.Called(ctx, publicID)
	return args.Error(0)
}

func (m *MockStore) DeleteMany(ctx context.Context, publicIDs []string) error {
	args := m.Called(ctx, publicIDs)
	return args.Error(0)
}

func postFields() map[string]string {
	return map[string]string{
		"title":       "Lisbon",
		"description": "Three days of tiles and custard tarts",
		"category":    "travel",
	}
}

func TestCreatePost(t *testing.T) {
	ts := newTestServer(t)
	user, token := ts.createUser(t, "jane", "jane@example.com", false)

	resp, body := ts.doMultipart(t, http.MethodPost, "/api/posts", postFields(), testutil.PNG(t, 8, 8), token)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var created struct {
		Message string      `json:"message"`
		Post    models.Post `json:"post"`
	}
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, "Your post has been created successfully", created.Message)
	assert.Equal(t, "Lisbon", created.Post.Title)
	assert.Equal(t, user.ID, created.Post.UserID)
	assert.True(t, ts.store.Has(created.Post.Image.PublicID))
	assert.Contains(t, string(body), `"likes":[]`)
}

func TestCreatePost_InputErrors(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.createUser(t, "kim", "kim@example.com", false)

	tests := []struct {
		name    string
		fields  map[string]string
		image   []byte
		wantMsg string
	}{
		{"missing image", postFields(), nil, "no image provided"},
		{"not an image", postFields(), []byte("plain text"), ""},
		{"short description", map[string]string{"title": "ok", "description": "short", "category": "x"}, testutil.PNG(t, 4, 4), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := ts.doMultipart(t, http.MethodPost, "/api/posts", tt.fields, tt.image, token)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(body))
			errResp := decodeError(t, body)
			assert.Equal(t, models.CodeValidation, errResp.Code)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, errResp.Error)
			}
		})
	}
	assert.Empty(t, ts.store.Objects)
}

func TestCreatePost_MediaHostFailure(t *testing.T) {
	store := new(MockStore)
	store.On("Upload", mock.Anything, mock.AnythingOfType("media.Upload")).
		Return(models.Image{}, errors.New("bucket unavailable"))
	ts := newTestServerWithStore(t, media.Instrument(store))
	_, token := ts.createUser(t, "lena", "lena@example.com", false)

	resp, body := ts.doMultipart(t, http.MethodPost, "/api/posts", postFields(), testutil.PNG(t, 8, 8), token)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	errResp := decodeError(t, body)
	assert.Equal(t, models.CodeDelegate, errResp.Code)
	assert.NotContains(t, errResp.Error, "bucket unavailable")

	resp, body = ts.doJSON(t, http.MethodGet, "/api/posts/count", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "0", string(body))
	store.AssertExpectations(t)
}

func TestGetPosts(t *testing.T) {
	ts := newTestServer(t)
	owner, _ := ts.createUser(t, "mona", "mona@example.com", false)
	for _, title := range []string{"p1", "p2", "p3", "p4"} {
		ts.createPost(t, owner, title)
	}

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantTitles []string
	}{
		{"all newest first", "", 200, []string{"p4", "p3", "p2", "p1"}},
		{"first page", "?pageNumber=1", 200, []string{"p4", "p3", "p2"}},
		{"second page", "?pageNumber=2", 200, []string{"p1"}},
		{"page past the end", "?pageNumber=9", 200, []string{}},
		{"category", "?category=travel", 200, []string{"p4", "p3", "p2", "p1"}},
		{"unknown category", "?category=food", 200, []string{}},
		{"zero page", "?pageNumber=0", 400, nil},
		{"text page", "?pageNumber=two", 400, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := ts.doJSON(t, http.MethodGet, "/api/posts"+tt.query, nil, "")
			require.Equal(t, tt.wantStatus, resp.StatusCode, string(body))
			if tt.wantTitles == nil {
				return
			}
			var posts []models.Post
			require.NoError(t, json.Unmarshal(body, &posts))
			titles := []string{}
			for _, p := range posts {
				titles = append(titles, p.Title)
			}
			assert.Equal(t, tt.wantTitles, titles)
		})
	}
}

func TestUpdatePost_OwnerOnly(t *testing.T) {
	ts := newTestServer(t)
	owner, ownerToken := ts.createUser(t, "nina", "nina@example.com", false)
	_, adminToken := ts.createUser(t, "admin", "admin@example.com", true)
	post := ts.createPost(t, owner, "draft")
	path := "/api/posts/" + itoa(post.ID)

	resp, _ := ts.doJSON(t, http.MethodPut, path, map[string]string{"title": "taken over"}, adminToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := ts.doJSON(t, http.MethodPut, path, map[string]string{"title": "final"}, ownerToken)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var updated models.Post
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, "final", updated.Title)
	assert.Equal(t, "travel", updated.Category)

	resp, _ = ts.doJSON(t, http.MethodPut, "/api/posts/9999", map[string]string{"title": "ghost"}, ownerToken)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdatePostImage(t *testing.T) {
	ts := newTestServer(t)
	owner, ownerToken := ts.createUser(t, "olga", "olga@example.com", false)
	_, otherToken := ts.createUser(t, "otto", "otto@example.com", false)
	post := ts.createPost(t, owner, "sunset")
	path := "/api/posts/update-image/" + itoa(post.ID)

	resp, _ := ts.doMultipart(t, http.MethodPut, path, nil, testutil.PNG(t, 8, 8), otherToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := ts.doMultipart(t, http.MethodPut, path, nil, testutil.PNG(t, 8, 8), ownerToken)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var result struct {
		Message     string      `json:"message"`
		UpdatedPost models.Post `json:"updatedPost"`
	}
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, "Your post image has been updated successfully", result.Message)
	assert.NotEqual(t, post.Image.PublicID, result.UpdatedPost.Image.PublicID)
	assert.Contains(t, ts.store.DeletedIDs(), post.Image.PublicID)
}

func TestToggleLike_NotifiesOwner(t *testing.T) {
	ts := newTestServer(t)
	owner, ownerToken := ts.createUser(t, "pia", "pia@example.com", false)
	_, fanToken := ts.createUser(t, "quinn", "quinn@example.com", false)
	post := ts.createPost(t, owner, "garden")
	path := "/api/posts/like/" + itoa(post.ID)

	feed, err := ts.srv.hub.Register(owner.ID, nil)
	require.NoError(t, err)

	resp, body := ts.doJSON(t, http.MethodPut, path, nil, fanToken)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var liked models.Post
	require.NoError(t, json.Unmarshal(body, &liked))
	assert.Len(t, liked.Likes, 1)

	select {
	case msg := <-feed.Send:
		var event notifications.Event
		require.NoError(t, json.Unmarshal(msg, &event))
		assert.Equal(t, "post_liked", event.Type)
		assert.EqualValues(t, post.ID, event.Payload["postId"])
	default:
		t.Fatal("expected a post_liked event for the owner")
	}

	// A second toggle restores the original like set.
	resp, body = ts.doJSON(t, http.MethodPut, path, nil, fanToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var unliked models.Post
	require.NoError(t, json.Unmarshal(body, &unliked))
	assert.Empty(t, unliked.Likes)

	// Owners liking their own post are not notified.
	resp, _ = ts.doJSON(t, http.MethodPut, path, nil, ownerToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, feed.Send)
}

func TestDeletedAccountTokenCannotWrite(t *testing.T) {
	ts := newTestServer(t)
	owner, _ := ts.createUser(t, "rosa", "rosa@example.com", false)
	leaving, leavingToken := ts.createUser(t, "sid", "sid@example.com", false)
	post := ts.createPost(t, owner, "harbour")

	resp, body := ts.doJSON(t, http.MethodDelete, "/api/users/profile/"+itoa(leaving.ID), nil, leavingToken)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, body = ts.doJSON(t, http.MethodPut, "/api/posts/like/"+itoa(post.ID), nil, leavingToken)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, string(body))
	assert.Equal(t, models.CodeUnauthorized, decodeError(t, body).Code)

	resp, body = ts.doMultipart(t, http.MethodPost, "/api/posts", postFields(), testutil.PNG(t, 8, 8), leavingToken)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, string(body))

	resp, body = ts.doJSON(t, http.MethodPost, "/api/comments",
		map[string]interface{}{"postId": post.ID, "text": "still here?"}, leavingToken)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, string(body))

	var likes, posts int64
	require.NoError(t, ts.db.Model(&models.PostLike{}).Where("user_id = ?", leaving.ID).Count(&likes).Error)
	require.NoError(t, ts.db.Model(&models.Post{}).Where("user_id = ?", leaving.ID).Count(&posts).Error)
	assert.Zero(t, likes)
	assert.Zero(t, posts)
	assert.Len(t, ts.store.Objects, 0)
}

func TestDeletePost_CascadesComments(t *testing.T) {
	ts := newTestServer(t)
	owner, ownerToken := ts.createUser(t, "rita", "rita@example.com", false)
	_, commenterToken := ts.createUser(t, "sam", "sam@example.com", false)
	_, adminToken := ts.createUser(t, "admin", "admin@example.com", true)
	post := ts.createPost(t, owner, "market")
	path := "/api/posts/" + itoa(post.ID)

	resp, body := ts.doJSON(t, http.MethodPost, "/api/comments",
		map[string]interface{}{"postId": post.ID, "text": "lovely"}, commenterToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var comment models.Comment
	require.NoError(t, json.Unmarshal(body, &comment))

	resp, _ = ts.doJSON(t, http.MethodDelete, path, nil, commenterToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = ts.doJSON(t, http.MethodDelete, path, nil, ownerToken)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.JSONEq(t, `{"message":"post has been deleted successfully","postId":`+itoa(post.ID)+`}`, string(body))
	assert.Contains(t, ts.store.DeletedIDs(), post.Image.PublicID)

	resp, _ = ts.doJSON(t, http.MethodGet, path, nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = ts.doJSON(t, http.MethodDelete, "/api/comments/"+itoa(comment.ID), nil, adminToken)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, string(body))

	resp, body = ts.doJSON(t, http.MethodGet, "/api/comments/count", nil, adminToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "0", string(body))
}
