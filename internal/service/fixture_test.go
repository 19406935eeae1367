package service

import (
	"context"
	"sync"
	"testing"

	"scribe/internal/auth"
	"scribe/internal/media"
	"scribe/internal/models"
	"scribe/internal/repository"
	"scribe/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testPassword     = "Str0ng!Pass"
	testClientDomain = "http://client.test"
	testMaxUpload    = 5 << 20
)

type publishedEvent struct {
	userID    uint
	eventType string
	payload   map[string]interface{}
}

// fixture wires every service to an in-memory database and recording delegates.
type fixture struct {
	db         *gorm.DB
	users      repository.UserRepository
	posts      repository.PostRepository
	comments   repository.CommentRepository
	categories repository.CategoryRepository
	store      *testutil.MediaStoreStub
	mail       *testutil.MailRecorder
	tokens     *auth.TokenIssuer

	mu     sync.Mutex
	events []publishedEvent
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	return &fixture{
		db:         db,
		users:      repository.NewUserRepository(db),
		posts:      repository.NewPostRepository(db),
		comments:   repository.NewCommentRepository(db),
		categories: repository.NewCategoryRepository(db),
		store:      testutil.NewMediaStoreStub(),
		mail:       &testutil.MailRecorder{},
		tokens:     auth.NewTokenIssuer("test-secret-that-is-long-enough-123", 0),
	}
}

func (f *fixture) publish(_ context.Context, userID uint, eventType string, payload map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{userID: userID, eventType: eventType, payload: payload})
}

func (f *fixture) published() []publishedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]publishedEvent(nil), f.events...)
}

func (f *fixture) authService() *AuthService {
	return NewAuthService(f.users, f.tokens, f.mail, testClientDomain)
}

func (f *fixture) passwordService() *PasswordService {
	return NewPasswordService(f.users, f.mail, testClientDomain)
}

func (f *fixture) userService() *UserService {
	return NewUserService(f.users, f.posts, media.Instrument(f.store), testMaxUpload)
}

func (f *fixture) postService() *PostService {
	return NewPostService(f.posts, f.users, media.Instrument(f.store), testMaxUpload, f.publish)
}

func (f *fixture) commentService() *CommentService {
	return NewCommentService(f.comments, f.posts, f.users, f.publish)
}

// createUser inserts a verified account with testPassword.
func (f *fixture) createUser(t *testing.T, username, email string, admin bool) (*models.User, *auth.Identity) {
	t.Helper()
	hash, err := auth.HashPassword(testPassword)
	require.NoError(t, err)
	u := &models.User{
		Username:          username,
		Email:             email,
		Password:          hash,
		ProfilePhoto:      models.Image{URL: models.DefaultProfilePhotoURL},
		IsAdmin:           admin,
		IsAccountVerified: true,
	}
	require.NoError(t, f.db.Create(u).Error)
	return u, &auth.Identity{UserID: u.ID, IsAdmin: admin}
}

func (f *fixture) createPost(t *testing.T, owner *auth.Identity, title string) *models.Post {
	t.Helper()
	post, err := f.postService().CreatePost(context.Background(), owner, CreatePostInput{
		Title:       title,
		Description: "a description long enough to pass",
		Category:    "golang",
		Image:       pngUpload(t),
	})
	require.NoError(t, err)
	return post
}

func pngUpload(t *testing.T) *media.Upload {
	return &media.Upload{Filename: "pic.png", ContentType: "image/png", Content: testutil.PNG(t, 8, 8)}
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, models.IsCode(err, code), "expected %s, got %v", code, err)
}
