package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	mcerrors "github.com/PrismLauncher/mcmeta/pkg/errors"
)

// S3 timeout constants
const (
	S3UploadTimeout   = 60 * time.Second
	S3DownloadTimeout = 30 * time.Second
)

// S3Store keeps each document as an object under a bucket prefix.
type S3Store struct {
	client *minio.Client
	bucket string
	prefix string
	logger *log.Logger
}

// NewS3Store connects to the endpoint in uri and checks that the bucket
// exists. token holds "ACCESS_KEY:SECRET_KEY"; when empty, credentials
// come from the environment (AWS_ACCESS_KEY_ID and friends, or IAM).
func NewS3Store(ctx context.Context, uri *URI, token string, logger *log.Logger) (*S3Store, error) {
	access, secret, err := ParseToken(token)
	if err != nil {
		return nil, err
	}

	creds := credentials.NewStaticV4(access, secret, "")
	if token == "" {
		creds = credentials.NewChainCredentials([]credentials.Provider{
			&credentials.EnvAWS{},
			&credentials.EnvMinio{},
			&credentials.IAM{},
		})
	}

	opts := &minio.Options{Creds: creds, Secure: uri.UseSSL()}
	if region := uri.Query.Get("region"); region != "" {
		opts.Region = region
	}

	client, err := minio.New(uri.Host, opts)
	if err != nil {
		return nil, mcerrors.Storagef(err, "create S3 client for %s", uri.Host)
	}

	s := &S3Store{client: client, bucket: uri.Bucket(), prefix: uri.Prefix(), logger: logger}
	exists, err := client.BucketExists(ctx, s.bucket)
	if err != nil {
		return nil, mcerrors.Storagef(err, "check bucket %s", s.bucket)
	}
	if !exists {
		return nil, mcerrors.Storagef(nil, "bucket %q does not exist", s.bucket)
	}

	logger.Info("S3 storage ready", "endpoint", uri.Host, "bucket", s.bucket, "prefix", s.prefix, "ssl", uri.UseSSL())
	return s, nil
}

func (s *S3Store) object(key string) (string, error) {
	if err := mcerrors.ValidateKey(key); err != nil {
		return "", err
	}
	return s.prefix + key, nil
}

func isNoSuchKey(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}

// Exists implements [Store].
func (s *S3Store) Exists(ctx context.Context, key string) (bool, error) {
	obj, err := s.object(key)
	if err != nil {
		return false, err
	}
	if _, err := s.client.StatObject(ctx, s.bucket, obj, minio.StatObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, failed("stat", key, err)
	}
	return true, nil
}

// Read implements [Store].
func (s *S3Store) Read(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.object(key)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, S3DownloadTimeout)
	defer cancel()

	r, err := s.client.GetObject(ctx, s.bucket, obj, minio.GetObjectOptions{})
	if err != nil {
		return nil, failed("read", key, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		if isNoSuchKey(err) {
			return nil, notFound(key)
		}
		return nil, failed("read", key, err)
	}
	return data, nil
}

// Write implements [Store].
func (s *S3Store) Write(ctx context.Context, key string, data []byte) error {
	obj, err := s.object(key)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, S3UploadTimeout)
	defer cancel()

	_, err = s.client.PutObject(ctx, s.bucket, obj, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType(key)})
	if err != nil {
		return failed("write", key, err)
	}
	s.logger.Debug("S3 upload completed", "key", obj, "size_bytes", len(data))
	return nil
}

// Delete implements [Store].
func (s *S3Store) Delete(ctx context.Context, key string) error {
	obj, err := s.object(key)
	if err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucket, obj, minio.RemoveObjectOptions{}); err != nil && !isNoSuchKey(err) {
		return failed("delete", key, err)
	}
	return nil
}

// List implements [Store].
func (s *S3Store) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	for info := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.prefix + prefix,
		Recursive: true,
	}) {
		if info.Err != nil {
			return nil, failed("list", prefix, info.Err)
		}
		keys = append(keys, strings.TrimPrefix(info.Key, s.prefix))
	}
	sort.Strings(keys)
	return keys, nil
}

// Close does nothing; the MinIO client holds no long-lived connections
// that need releasing.
func (s *S3Store) Close() error { return nil }

func contentType(key string) string {
	switch {
	case strings.HasSuffix(key, ".json"):
		return "application/json"
	case strings.HasSuffix(key, ".jar"), strings.HasSuffix(key, ".zip"):
		return "application/java-archive"
	default:
		return "application/octet-stream"
	}
}

var _ Store = (*S3Store)(nil)

// String describes the store for logs.
func (s *S3Store) String() string {
	return fmt.Sprintf("s3 bucket %s prefix %q", s.bucket, s.prefix)
}
