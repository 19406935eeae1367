// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"

	"scribe/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
	// SkipBcrypt stores the seed password unhashed; such accounts cannot log in.
	SkipBcrypt bool
	DryRun     bool
	MaxDays    int
	BatchSize  int
}

// Summary counts what a Seed run created.
type Summary struct {
	Users      int
	Posts      int
	Comments   int
	Likes      int
	Categories int
}

// AdminEmail is the login of the admin account every seed run ensures.
const AdminEmail = "admin@example.com"

// Seed populates the database with demo data: one admin, NumUsers verified
// users, the default categories and NumPosts posts with likes and comments.
func Seed(db *gorm.DB, opts Options) (*Summary, error) {
	log.Printf("🌱 Starting database seeding with %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean && !opts.DryRun {
		if err := clearData(db); err != nil {
			return nil, fmt.Errorf("failed to clear data: %w", err)
		}
	}

	f := NewFactory(db, opts)
	summary := &Summary{}
	if _, err := f.passwordHash(); err != nil {
		return nil, err
	}

	admin, err := ensureAdmin(db, f)
	if err != nil {
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}

	users := []*models.User{admin}
	for i := 0; i < opts.NumUsers; i++ {
		user, err := f.CreateUser()
		if err != nil {
			log.Printf("Failed to create user: %v", err)
			continue
		}
		users = append(users, user)
	}
	summary.Users = len(users) - 1
	log.Printf("✓ %d users created", summary.Users)

	for _, title := range Categories {
		if _, err := f.CreateCategory(admin, title); err != nil {
			return nil, fmt.Errorf("failed to create category %q: %w", title, err)
		}
		summary.Categories++
	}

	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		posts = append(posts, f.BuildPost(users[f.rng.Intn(len(users))]))
	}
	if err := f.CreatePostsBatch(posts); err != nil {
		return nil, fmt.Errorf("failed to create posts: %w", err)
	}
	summary.Posts = len(posts)
	log.Printf("✓ %d posts created", summary.Posts)

	for _, post := range posts {
		// Each user likes a post at most once.
		for _, idx := range f.rng.Perm(len(users))[:f.rng.Intn(len(users)+1)] {
			if err := f.CreateLike(users[idx], post); err != nil {
				return nil, fmt.Errorf("failed to create like: %w", err)
			}
			summary.Likes++
		}
		for n := f.rng.Intn(4); n > 0; n-- {
			if _, err := f.CreateComment(users[f.rng.Intn(len(users))], post); err != nil {
				return nil, fmt.Errorf("failed to create comment: %w", err)
			}
			summary.Comments++
		}
	}
	log.Printf("✓ %d likes and %d comments created", summary.Likes, summary.Comments)

	log.Println("🎉 Database seeding completed successfully!")
	return summary, nil
}

func ensureAdmin(db *gorm.DB, f *Factory) (*models.User, error) {
	if !f.opts.DryRun {
		var existing models.User
		err := db.Where("email = ?", AdminEmail).Limit(1).Find(&existing).Error
		if err != nil {
			return nil, err
		}
		if existing.ID != 0 {
			return &existing, nil
		}
	}
	return f.CreateUser(func(u *models.User) {
		u.Username = "admin"
		u.Email = AdminEmail
		u.IsAdmin = true
	})
}

func clearData(db *gorm.DB) error {
	log.Println("🗑️  Clearing existing data...")
	if db.Dialector.Name() == "postgres" {
		return db.Exec(`TRUNCATE TABLE comments, post_likes, posts, categories, users RESTART IDENTITY CASCADE;`).Error
	}
	return db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&models.Comment{}, &models.PostLike{}, &models.Post{}, &models.Category{}, &models.User{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
