package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"scribe/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the plaintext password of every seeded account.
const DefaultPassword = "Passw0rd!seed"

// Categories are the labels seeded posts are filed under.
var Categories = []string{"music", "travel", "programming", "food", "sports", "books"}

// Factory builds blog entities and persists them to the database.
// It is a thin helper used by Seed and by tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
	// password is the plaintext shared by seeded accounts.
	password string
	hash     string
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db: db,
		// #nosec G404: acceptable for seeding
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		opts:     opts,
		password: DefaultPassword,
		nextID:   1000,
	}
}

func (f *Factory) passwordHash() (string, error) {
	if f.hash != "" {
		return f.hash, nil
	}
	if f.opts.SkipBcrypt {
		f.hash = f.password
		return f.hash, nil
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(f.password), bcrypt.MinCost)
	if err != nil {
		return "", fmt.Errorf("hash seed password: %w", err)
	}
	f.hash = string(hashed)
	return f.hash, nil
}

// backdate returns a creation time spread over the last MaxDays days.
func (f *Factory) backdate() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.rng.Intn(maxDays))*24*time.Hour +
		time.Duration(f.rng.Intn(24))*time.Hour +
		time.Duration(f.rng.Intn(60))*time.Minute
	return time.Now().Add(-back)
}

func (f *Factory) persist(value interface{}, assignID func(uint)) error {
	if f.opts.DryRun {
		f.nextID++
		assignID(f.nextID)
		return nil
	}
	return f.db.Create(value).Error
}

// CreateUser constructs and persists a verified sample user.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hash, err := f.passwordHash()
	if err != nil {
		return nil, err
	}
	username := strings.ToLower(gofakeit.Username()) + fmt.Sprintf("%d", gofakeit.Number(100, 999))
	user := &models.User{
		Username:          username,
		Email:             username + "@example.com",
		Password:          hash,
		Bio:               gofakeit.Sentence(10),
		ProfilePhoto:      models.Image{URL: models.DefaultProfilePhotoURL},
		IsAccountVerified: true,
		CreatedAt:         f.backdate(),
	}
	for _, override := range overrides {
		override(user)
	}

	if err := f.persist(user, func(id uint) { user.ID = id }); err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs a post owned by user without persisting it. The image
// points at an external placeholder, so it carries no stored asset.
func (f *Factory) BuildPost(user *models.User, overrides ...func(*models.Post)) *models.Post {
	post := &models.Post{
		Title:       strings.TrimSuffix(gofakeit.Sentence(5), "."),
		Description: gofakeit.Paragraph(1, 3, 8, " "),
		Category:    Categories[f.rng.Intn(len(Categories))],
		Image:       models.Image{URL: fmt.Sprintf("https://picsum.photos/seed/%s/800/600", gofakeit.UUID())},
		UserID:      user.ID,
		CreatedAt:   f.backdate(),
	}
	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePost constructs and persists a sample post for the given user.
func (f *Factory) CreatePost(user *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := f.BuildPost(user, overrides...)
	if err := f.persist(post, func(id uint) { post.ID = id }); err != nil {
		return nil, err
	}
	return post, nil
}

// CreatePostsBatch persists multiple posts in a single DB call.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, p := range posts {
			f.nextID++
			p.ID = f.nextID
		}
		log.Printf("[dry-run] CreatePostsBatch: %d posts (no DB write)", len(posts))
		return nil
	}
	batch := f.opts.BatchSize
	if batch <= 0 {
		batch = 100
	}
	return f.db.CreateInBatches(posts, batch).Error
}

// CreateComment constructs and persists a sample comment on post authored by
// user.
func (f *Factory) CreateComment(user *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		PostID:   post.ID,
		UserID:   user.ID,
		Username: user.Username,
		Text:     gofakeit.Sentence(8),
	}
	for _, override := range overrides {
		override(comment)
	}
	if err := f.persist(comment, func(id uint) { comment.ID = id }); err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateLike records that user likes post.
func (f *Factory) CreateLike(user *models.User, post *models.Post) error {
	if f.opts.DryRun {
		return nil
	}
	return f.db.Create(&models.PostLike{PostID: post.ID, UserID: user.ID}).Error
}

// CreateCategory persists a category created by admin.
func (f *Factory) CreateCategory(admin *models.User, title string) (*models.Category, error) {
	category := &models.Category{Title: title, UserID: admin.ID}
	if err := f.persist(category, func(id uint) { category.ID = id }); err != nil {
		return nil, err
	}
	return category, nil
}
