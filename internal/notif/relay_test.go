package notif

import (
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestChangeCodec(t *testing.T) {
	change := Change{Table: "messages", Op: OpInsert, Row: map[string]string{"patient_id": "P1", "id": "7"}, Origin: "a"}

	payload, err := encodeChange(change)
	require.NoError(t, err)

	decoded, err := decodeChange(payload)
	require.NoError(t, err)
	assert.Equal(t, change, decoded)

	_, err = decodeChange([]byte(`{"op":"INSERT"}`))
	assert.Error(t, err)
	_, err = decodeChange([]byte(`not json`))
	assert.Error(t, err)
}

func TestRedisRelay_Channel(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer client.Close()

	relay := NewRedisRelay(client, "claridx", zap.NewNop())
	assert.Equal(t, "claridx:changes", relay.Channel())
	assert.NoError(t, relay.Close())
}
