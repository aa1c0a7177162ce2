// Package output opens the destination of a rendered chart.
//
// A target is either a local file path or an object store URL of the form
// s3://bucket/key. Writers returned by [Opener.Open] must be closed; for
// object stores the upload happens on Close.
package output

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/matzehuels/chartgen/pkg/raster"
)

// Opener opens output targets for writing. format is the rendered format,
// used where the target records a content type.
type Opener interface {
	Open(ctx context.Context, target, format string) (io.WriteCloser, error)
}

// Store dispatches targets to the local filesystem or S3.
type Store struct {
	S3 *S3Store // nil disables s3:// targets
}

// NewStore creates a store. s3 may be nil.
func NewStore(s3 *S3Store) *Store {
	return &Store{S3: s3}
}

// Open implements Opener.
func (s *Store) Open(ctx context.Context, target, format string) (io.WriteCloser, error) {
	if IsS3(target) {
		if s.S3 == nil {
			return nil, fmt.Errorf("open %s: s3 output is not configured", target)
		}
		bucket, key, err := ParseS3(target)
		if err != nil {
			return nil, err
		}
		return s.S3.Writer(ctx, bucket, key, raster.ContentType(format)), nil
	}
	return os.Create(target)
}

// IsS3 reports whether target is an s3:// URL.
func IsS3(target string) bool {
	return strings.HasPrefix(target, "s3://")
}

// ParseS3 splits an s3://bucket/key URL.
func ParseS3(target string) (bucket, key string, err error) {
	u, err := url.Parse(target)
	if err != nil {
		return "", "", fmt.Errorf("parse %s: %w", target, err)
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid s3 target %q: want s3://bucket/key", target)
	}
	return bucket, key, nil
}
