// Package storage keeps attachment bytes apart from message rows.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"claridx/internal/config"
	"claridx/internal/dbmongo"

	"go.uber.org/zap"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrObjectExists   = errors.New("object already exists")
)

// Object describes a stored blob.
type Object struct {
	Key         string
	ContentType string
	Size        int64
	UploadedAt  time.Time
}

type BlobStore interface {
	// Upload writes data under key. Keys are never overwritten.
	Upload(ctx context.Context, key, contentType string, data []byte) error
	// PublicURL is where clients fetch the object. It does not check existence.
	PublicURL(key string) string
	Open(ctx context.Context, key string) (io.ReadCloser, *Object, error)
}

var extRegex = regexp.MustCompile(`^[a-z0-9]{1,10}$`)

// Key namespaces an upload under its sender: "<sender>/<unix ms>-<token>.<ext>".
// The extension comes from the display name and is dropped when it is
// missing or not plain alphanumeric.
func Key(senderID, fileName string, now time.Time, token string) string {
	key := fmt.Sprintf("%s/%d-%s", senderID, now.UnixMilli(), token)
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), ".")
	if extRegex.MatchString(ext) {
		key += "." + ext
	}
	return key
}

// joinURL appends key to base escaping each path segment.
func joinURL(base, key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.TrimRight(base, "/") + "/" + strings.Join(segments, "/")
}

// New builds the configured backend. mongo may be nil unless the backend is gridfs.
func New(ctx context.Context, cfg *config.Config, mongo *dbmongo.MongoClient, log *zap.Logger) (BlobStore, error) {
	switch cfg.Storage.Backend {
	case "gridfs":
		if mongo == nil {
			return nil, errors.New("gridfs storage requires a MongoDB connection")
		}
		return NewGridFSStore(mongo, publicBase(cfg)), nil
	case "s3":
		return NewS3Store(ctx, cfg.Storage)
	case "memory":
		log.Warn("attachments are kept in memory and lost on restart")
		return NewMemoryStore(publicBase(cfg)), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
	}
}

func publicBase(cfg *config.Config) string {
	if cfg.Storage.PublicBaseURL != "" {
		return cfg.Storage.PublicBaseURL
	}
	return cfg.Server.MediaBaseURL
}
