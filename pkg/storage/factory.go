package storage

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
)

// Open creates the storage backend named by uri. token carries S3
// credentials and is ignored by other backends.
func Open(ctx context.Context, uri, token string, logger *log.Logger) (Store, error) {
	u, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "file":
		s, err := NewFileStore(u.Path)
		if err != nil {
			return nil, err
		}
		logger.Debug("file storage ready", "root", u.Path)
		return s, nil
	case "memory":
		return NewMemoryStore(), nil
	case "s3", "s3+http":
		s, err := NewS3Store(ctx, u, token, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "mongodb", "mongodb+srv":
		s, err := NewMongoStore(ctx, u, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported storage scheme: %s", u.Scheme)
	}
}
