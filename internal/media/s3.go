package media

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"scribe/internal/models"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// s3DeleteBatch is the DeleteObjects limit.
const s3DeleteBatch = 1000

// S3Store keeps assets in an S3 bucket.
type S3Store struct {
	client  s3iface.S3API
	bucket  string
	baseURL string
}

// NewS3Store returns a store for bucket. When baseURL is empty, object URLs
// use the bucket's virtual-hosted endpoint.
func NewS3Store(sess *session.Session, bucket, baseURL string) *S3Store {
	return NewS3StoreWithClient(s3.New(sess), bucket, baseURL, aws.StringValue(sess.Config.Region))
}

// NewS3StoreWithClient is NewS3Store with an explicit client.
func NewS3StoreWithClient(client s3iface.S3API, bucket, baseURL, region string) *S3Store {
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	return &S3Store{client: client, bucket: bucket, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *S3Store) Upload(ctx context.Context, in Upload) (models.Image, error) {
	key := objectKey(in.ContentType)
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(in.Content),
		ContentType: aws.String(in.ContentType),
	})
	if err != nil {
		return models.Image{}, fmt.Errorf("put object %s: %w", key, err)
	}
	return models.Image{URL: s.baseURL + "/" + key, PublicID: key}, nil
}

func (s *S3Store) Delete(ctx context.Context, publicID string) error {
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", publicID, err)
	}
	return nil
}

func (s *S3Store) DeleteMany(ctx context.Context, publicIDs []string) error {
	for start := 0; start < len(publicIDs); start += s3DeleteBatch {
		end := min(start+s3DeleteBatch, len(publicIDs))

		objects := make([]*s3.ObjectIdentifier, 0, end-start)
		for _, id := range publicIDs[start:end] {
			objects = append(objects, &s3.ObjectIdentifier{Key: aws.String(id)})
		}

		out, err := s.client.DeleteObjectsWithContext(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(s.bucket),
			Delete: &s3.Delete{Objects: objects, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return fmt.Errorf("delete objects: %w", err)
		}
		if len(out.Errors) > 0 {
			first := out.Errors[0]
			return fmt.Errorf("delete objects: %d failed, first %s: %s",
				len(out.Errors), aws.StringValue(first.Key), aws.StringValue(first.Message))
		}
	}
	return nil
}
