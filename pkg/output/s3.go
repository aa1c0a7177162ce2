package output

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// DefaultRegion is used when neither the config nor AWS_REGION set one.
const DefaultRegion = "us-east-1"

// S3Config configures the S3 store. Empty fields fall back to the AWS SDK
// defaults (environment, shared config, instance role).
type S3Config struct {
	Region          string
	Endpoint        string // for S3-compatible stores
	AccessKeyID     string
	SecretAccessKey string
}

// uploader is the subset of s3manager.Uploader the store uses.
type uploader interface {
	UploadWithContext(ctx aws.Context, input *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error)
}

// S3Store uploads rendered charts to S3.
type S3Store struct {
	uploader uploader
}

// NewS3Store creates a store from cfg.
func NewS3Store(cfg S3Config) (*S3Store, error) {
	awsConfig := aws.Config{}
	if cfg.Region != "" {
		awsConfig.Region = aws.String(cfg.Region)
	}
	// Static credentials are for environments without a credential chain.
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}
	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSessionWithOptions(session.Options{
		Config:            awsConfig,
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, fmt.Errorf("aws session: %w", err)
	}
	if aws.StringValue(sess.Config.Region) == "" {
		sess.Config.Region = aws.String(DefaultRegion)
	}
	return &S3Store{uploader: s3manager.NewUploader(sess)}, nil
}

// Writer returns a writer that buffers the object and uploads it with
// contentType on Close.
func (s *S3Store) Writer(ctx context.Context, bucket, key, contentType string) io.WriteCloser {
	return &s3Writer{ctx: ctx, store: s, bucket: bucket, key: key, contentType: contentType}
}

type s3Writer struct {
	ctx         context.Context
	store       *S3Store
	bucket      string
	key         string
	contentType string
	buf         bytes.Buffer
	closed      bool
}

func (w *s3Writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, fmt.Errorf("write s3://%s/%s: writer closed", w.bucket, w.key)
	}
	return w.buf.Write(p)
}

func (w *s3Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	_, err := w.store.uploader.UploadWithContext(w.ctx, &s3manager.UploadInput{
		Bucket:      aws.String(w.bucket),
		Key:         aws.String(w.key),
		Body:        bytes.NewReader(w.buf.Bytes()),
		ContentType: aws.String(w.contentType),
	})
	if err != nil {
		return fmt.Errorf("upload s3://%s/%s: %w", w.bucket, w.key, err)
	}
	return nil
}
