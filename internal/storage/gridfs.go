package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"claridx/internal/dbmongo"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GridFSStore uses the object key as the GridFS filename. The media server
// streams objects back by that name.
type GridFSStore struct {
	bucket  *gridfs.Bucket
	baseURL string
}

func NewGridFSStore(mongoClient *dbmongo.MongoClient, baseURL string) *GridFSStore {
	return &GridFSStore{bucket: mongoClient.GridFS, baseURL: baseURL}
}

func (s *GridFSStore) Upload(ctx context.Context, key, contentType string, data []byte) error {
	existing, err := s.bucket.GetFilesCollection().CountDocuments(ctx, bson.M{"filename": key})
	if err != nil {
		return fmt.Errorf("check existing object: %w", err)
	}
	if existing > 0 {
		return fmt.Errorf("%s: %w", key, ErrObjectExists)
	}

	metadata := bson.M{
		"content_type": contentType,
		"uploaded_at":  time.Now().UTC(),
	}

	stream, err := s.bucket.OpenUploadStream(key, options.GridFSUpload().SetMetadata(metadata))
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetWriteDeadline(deadline)
	}

	if _, err := io.Copy(stream, bytes.NewReader(data)); err != nil {
		_ = stream.Abort()
		return fmt.Errorf("file copy failed: %w", err)
	}
	if err := stream.Close(); err != nil {
		return fmt.Errorf("finalize upload: %w", err)
	}
	return nil
}

func (s *GridFSStore) PublicURL(key string) string {
	return joinURL(s.baseURL, key)
}

func (s *GridFSStore) Open(ctx context.Context, key string) (io.ReadCloser, *Object, error) {
	stream, err := s.bucket.OpenDownloadStreamByName(key)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, nil, ErrObjectNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("download failed: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetReadDeadline(deadline)
	}

	file := stream.GetFile()
	var metadata bson.M
	if file.Metadata != nil {
		_ = bson.Unmarshal(file.Metadata, &metadata)
	}

	return stream, &Object{
		Key:         key,
		ContentType: getStringFromMap(metadata, "content_type"),
		Size:        file.Length,
		UploadedAt:  file.UploadDate,
	}, nil
}

func getStringFromMap(m bson.M, key string) string {
	if m == nil {
		return ""
	}
	if val, ok := m[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}
