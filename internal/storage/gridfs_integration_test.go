package storage

import (
	"context"
	"io"
	"os"
	"testing"
	"time"

	"claridx/internal/config"
	"claridx/internal/dbmongo"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Runs against the MongoDB from docker-compose when MONGO_INTEGRATION=1.
func TestGridFSStore_WithExistingMongoDB(t *testing.T) {
	if os.Getenv("MONGO_INTEGRATION") != "1" {
		t.Skip("set MONGO_INTEGRATION=1 to run against a live MongoDB")
	}

	cfg := &config.Config{
		MongoDB: config.MongoDBConfig{
			Host:     envOr("MONGO_HOST", "localhost"),
			Port:     envOr("MONGO_PORT", "27017"),
			Username: os.Getenv("MONGO_USERNAME"),
			Password: os.Getenv("MONGO_PASSWORD"),
			Database: "claridx_test",
			Bucket:   "chat-files-test",
		},
	}

	client, err := dbmongo.NewMongoConnection(cfg, zap.NewNop())
	require.NoError(t, err, "ensure MongoDB is running")
	defer client.Close(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store := NewGridFSStore(client, "http://localhost:8081/media")
	key := Key("P1", "scan.png", time.Now(), uuid.NewString())

	require.NoError(t, store.Upload(ctx, key, "image/png", []byte("png-bytes")))
	assert.ErrorIs(t, store.Upload(ctx, key, "image/png", []byte("dup")), ErrObjectExists)

	body, obj, err := store.Open(ctx, key)
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
	assert.Equal(t, "image/png", obj.ContentType)

	_, _, err = store.Open(ctx, "P1/does-not-exist")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
