package notif

import (
	"sync"
	"testing"
	"time"

	"claridx/internal/config"
	"claridx/internal/dbsql"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupWatchedDB(t *testing.T) (*gorm.DB, *Hub) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, dbsql.Migrate(db))

	hub := NewHub(config.NotificationConfig{Workers: 1, ChannelBufferSize: 16}, zap.NewNop())
	t.Cleanup(hub.Shutdown)
	require.NoError(t, hub.WatchTables(db, map[string][]string{
		"messages":      {"patient_id", "id"},
		"conversations": {"patient_id"},
	}))
	return db, hub
}

type recorder struct {
	mu      sync.Mutex
	changes []Change
}

func (r *recorder) handle(c Change) {
	r.mu.Lock()
	r.changes = append(r.changes, c)
	r.mu.Unlock()
}

func (r *recorder) snapshot() []Change {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Change(nil), r.changes...)
}

func TestWatchTables_InsertCarriesKeys(t *testing.T) {
	db, hub := setupWatchedDB(t)

	rec := &recorder{}
	_, err := hub.Subscribe(ColumnEquals("messages", "patient_id", "P1"), rec.handle)
	require.NoError(t, err)

	require.NoError(t, db.Create(&dbsql.Message{PatientID: "P1", SenderID: "P1", Text: "hello", CreatedAt: time.Now()}).Error)
	require.NoError(t, db.Create(&dbsql.Message{PatientID: "P2", SenderID: "P2", Text: "elsewhere", CreatedAt: time.Now()}).Error)

	assert.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	got := rec.snapshot()[0]
	assert.Equal(t, OpInsert, got.Op)
	assert.Equal(t, "P1", got.Row["patient_id"])
	assert.NotEmpty(t, got.Row["id"])
	assert.Equal(t, hub.InstanceID(), got.Origin)
}

func TestWatchTables_UnidentifiedDeleteReachesEveryone(t *testing.T) {
	db, hub := setupWatchedDB(t)

	require.NoError(t, db.Create(&dbsql.Message{PatientID: "P1", SenderID: "P1", Text: "hello", CreatedAt: time.Now()}).Error)

	rec := &recorder{}
	_, err := hub.Subscribe(ColumnEquals("messages", "patient_id", "P3"), rec.handle)
	require.NoError(t, err)

	require.NoError(t, db.Where("patient_id = ?", "P1").Delete(&dbsql.Message{}).Error)

	assert.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, OpDelete, rec.snapshot()[0].Op)
}

func TestWatchTables_IgnoresUnwatchedAndNoopWrites(t *testing.T) {
	db, hub := setupWatchedDB(t)

	rec := &recorder{}
	_, err := hub.Subscribe(Filter{}, rec.handle)
	require.NoError(t, err)

	require.NoError(t, db.Create(&dbsql.Profile{ID: "P1", Email: "p1@claridx.test", Role: "patient", PasswordHash: "x"}).Error)
	require.NoError(t, db.Where("patient_id = ?", "nobody").Delete(&dbsql.Message{}).Error)

	assert.Never(t, func() bool { return len(rec.snapshot()) > 0 }, 100*time.Millisecond, 10*time.Millisecond)
}
