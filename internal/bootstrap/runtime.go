// Package bootstrap wires the process-wide dependencies shared by the
// server and the command-line tools.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"scribe/internal/auth"
	"scribe/internal/cache"
	"scribe/internal/config"
	"scribe/internal/database"
	"scribe/internal/mailer"
	"scribe/internal/media"
	"scribe/internal/middleware"
	"scribe/internal/models"
	"scribe/internal/repository"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Runtime bundles the connections and delegates a server needs.
type Runtime struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Store  media.Store
	Mailer mailer.Mailer
}

// InitRuntime connects to the database and Redis and builds the media store
// and mailer selected by the configuration. Redis is optional: when it is
// unreachable the Runtime carries a nil client.
func InitRuntime(cfg *config.Config) (*Runtime, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)

	store, err := NewStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("media store: %w", err)
	}
	mail, err := NewMailer(cfg)
	if err != nil {
		return nil, fmt.Errorf("mailer: %w", err)
	}

	if err := EnsureDevAdmin(context.Background(), cfg, repository.NewUserRepository(db)); err != nil {
		return nil, fmt.Errorf("failed to bootstrap development admin: %w", err)
	}

	return &Runtime{
		DB:     db,
		Redis:  cache.GetClient(),
		Store:  store,
		Mailer: mail,
	}, nil
}

// NewStore returns the instrumented media store for MEDIA_DRIVER.
func NewStore(cfg *config.Config) (media.Store, error) {
	switch cfg.MediaDriver {
	case "local":
		local := media.NewLocalStore(cfg.MediaLocalDir, cfg.MediaPublicBaseURL)
		middleware.Logger.Info("media stored on local disk", slog.String("dir", local.Dir()))
		return media.Instrument(local), nil
	case "s3":
		sess, err := awsSession(cfg)
		if err != nil {
			return nil, err
		}
		baseURL := cfg.MediaPublicBaseURL
		if cfg.AWSEndpoint == "" && strings.HasSuffix(baseURL, "/media") {
			// The local default does not apply to a real bucket.
			baseURL = ""
		}
		return media.Instrument(media.NewS3Store(sess, cfg.MediaBucket, baseURL)), nil
	default:
		return nil, fmt.Errorf("unsupported media driver %q", cfg.MediaDriver)
	}
}

// NewMailer returns the instrumented mailer for MAIL_DRIVER.
func NewMailer(cfg *config.Config) (mailer.Mailer, error) {
	switch cfg.MailDriver {
	case "log":
		return mailer.Instrument(mailer.NewLogMailer()), nil
	case "ses":
		sess, err := awsSession(cfg)
		if err != nil {
			return nil, err
		}
		return mailer.Instrument(mailer.NewSESMailer(sess, cfg.MailFrom)), nil
	default:
		return nil, fmt.Errorf("unsupported mail driver %q", cfg.MailDriver)
	}
}

// awsSession builds a session for S3 and SES. AWS_ENDPOINT points both at a
// compatible service such as MinIO or LocalStack.
func awsSession(cfg *config.Config) (*session.Session, error) {
	awsCfg := &aws.Config{Region: aws.String(cfg.AWSRegion)}
	if cfg.AWSEndpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.AWSEndpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("aws session: %w", err)
	}
	return sess, nil
}

// EnsureDevAdmin creates or promotes the development admin account named by
// DEV_ADMIN_EMAIL. It does nothing outside development or when no
// credentials are configured.
func EnsureDevAdmin(ctx context.Context, cfg *config.Config, users repository.UserRepository) error {
	if cfg == nil || !strings.EqualFold(cfg.Env, "development") {
		return nil
	}
	email := strings.TrimSpace(cfg.DevAdminEmail)
	if email == "" || cfg.DevAdminPassword == "" {
		return nil
	}

	existing, err := users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		if existing.IsAdmin && existing.IsAccountVerified {
			return nil
		}
		existing.IsAdmin = true
		existing.IsAccountVerified = true
		if err := users.Update(ctx, existing, "IsAdmin", "IsAccountVerified"); err != nil {
			return err
		}
		middleware.Logger.Info("development admin promoted", slog.String("email", email))
		return nil
	}

	hash, err := auth.HashPassword(cfg.DevAdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	username := strings.TrimSpace(cfg.DevAdminUsername)
	if username == "" {
		username = "admin"
	}
	admin := &models.User{
		Username:          username,
		Email:             email,
		Password:          hash,
		ProfilePhoto:      models.Image{URL: models.DefaultProfilePhotoURL},
		IsAdmin:           true,
		IsAccountVerified: true,
	}
	if err := users.Create(ctx, admin); err != nil {
		return err
	}
	middleware.Logger.Info("development admin created", slog.String("email", email))
	return nil
}
