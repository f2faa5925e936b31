package storage

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/nkaumov/kurs-zakat/internal"
)

var ErrObjectNotFound = errors.New("object not found")

// Provider stores report archives. Keys use forward slashes regardless of
// the backend.
type Provider interface {
	Put(key string, body io.ReadSeeker, contentType string) error
	Get(key string) (*FileObject, error)
	List(prefix string) ([]string, error)
	Delete(key string) error
}

type FileObject struct {
	Body          io.ReadCloser
	ContentLength int64
	ContentType   string
	LastModified  time.Time
}

// New returns the configured provider, or nil when archiving is disabled.
func New(cfg internal.StorageConfig) (Provider, error) {
	switch cfg.Provider {
	case "", "none":
		return nil, nil
	case "local":
		return NewLocalProvider(cfg.LocalDir)
	case "s3":
		s3Config := &aws.Config{
			Region:           aws.String(cfg.Region),
			S3ForcePathStyle: aws.Bool(true),
		}
		if cfg.Endpoint != "" {
			s3Config.Endpoint = aws.String(cfg.Endpoint)
		}
		if cfg.AccessKey != "" {
			s3Config.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
		}
		sess, err := session.NewSession(s3Config)
		if err != nil {
			return nil, fmt.Errorf("failed to create s3 session: %w", err)
		}
		return NewS3Provider(sess, cfg.Bucket), nil
	default:
		return nil, fmt.Errorf("unsupported storage provider %q", cfg.Provider)
	}
}
