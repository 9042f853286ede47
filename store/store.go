package store

import (
	"bytes"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"go.uber.org/zap"
)

// Uploader publishes rendered files to an S3 bucket. Generation itself
// never touches the network; this is strictly post-render glue.
type Uploader struct {
	client *s3.S3
	bucket string
	log    *zap.Logger
}

// NewUploader builds an Uploader against bucket. Region and credentials
// come from the environment; AWS_ENDPOINT overrides the endpoint for
// local stacks.
func NewUploader(bucket string, log *zap.Logger) (*Uploader, error) {
	if log == nil {
		log = zap.NewNop()
	}
	cfg := aws.Config{}
	if endpoint := os.Getenv("AWS_ENDPOINT"); endpoint != "" {
		cfg.Endpoint = &endpoint
		cfg.S3ForcePathStyle = aws.Bool(true)
	}
	sess, err := session.NewSession(&cfg)
	if err != nil {
		return nil, fmt.Errorf("could not create AWS session: %w", err)
	}
	return &Uploader{client: s3.New(sess), bucket: bucket, log: log}, nil
}

// Upload puts data under key with the standard MIDI content type.
func (u *Uploader) Upload(key string, data []byte) error {
	_, err := u.client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("audio/midi"),
	})
	if err != nil {
		return fmt.Errorf("could not upload %s to %s: %w", key, u.bucket, err)
	}
	u.log.Info("uploaded", zap.String("bucket", u.bucket), zap.String("key", key), zap.Int("bytes", len(data)))
	return nil
}
