package conversation

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"claridx/internal/config"
	"claridx/internal/dbsql"
	"claridx/internal/notif"
	"claridx/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testStack struct {
	db    *gorm.DB
	hub   *notif.Hub
	blobs *storage.MemoryStore
	repo  Repository
	sync  *Synchronizer
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection keeps sqlite from reporting a locked table
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, dbsql.Migrate(db))
	t.Cleanup(func() { _ = dbsql.Close(db) })

	hub := notif.NewHub(config.NotificationConfig{Workers: 2, ChannelBufferSize: 64}, zap.NewNop())
	t.Cleanup(hub.Shutdown)
	require.NoError(t, hub.WatchTables(db, map[string][]string{
		"messages":      {"patient_id", "id"},
		"conversations": {"patient_id"},
	}))

	blobs := storage.NewMemoryStore("http://media.test/media")
	repo := NewRepository(db)
	return &testStack{
		db:    db,
		hub:   hub,
		blobs: blobs,
		repo:  repo,
		sync:  NewSynchronizer(repo, blobs, hub, zap.NewNop()),
	}
}

func (s *testStack) assign(t *testing.T, patientID, doctorID string) {
	t.Helper()
	require.NoError(t, s.db.Create(&dbsql.Conversation{PatientID: patientID, DoctorID: &doctorID}).Error)
}

func TestSynchronizer_PatientDoctorExchange(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	doctor := "D1"

	require.NoError(t, s.sync.Send(ctx, SendRequest{ConversationID: "P1", DoctorID: &doctor, SenderID: "P1", Text: "hello"}))
	require.NoError(t, s.sync.Send(ctx, SendRequest{ConversationID: "P1", DoctorID: &doctor, SenderID: "D1", Text: "hi"}))

	asPatient, err := s.sync.Fetch(ctx, "P1", "P1")
	require.NoError(t, err)
	require.Len(t, asPatient, 2)
	assert.Equal(t, "hello", asPatient[0].Text)
	assert.Equal(t, SenderSelf, asPatient[0].Sender)
	assert.Equal(t, "hi", asPatient[1].Text)
	assert.Equal(t, SenderOther, asPatient[1].Sender)

	asDoctor, err := s.sync.Fetch(ctx, "P1", "D1")
	require.NoError(t, err)
	require.Len(t, asDoctor, 2)
	assert.Equal(t, SenderOther, asDoctor[0].Sender)
	assert.Equal(t, SenderSelf, asDoctor[1].Sender)

	other, err := s.sync.Fetch(ctx, "P2", "P2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestSynchronizer_OrderingWithEqualTimestamps(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()

	fixed := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	s.sync.now = func() time.Time { return fixed }

	for _, text := range []string{"one", "two", "three"} {
		require.NoError(t, s.sync.Send(ctx, SendRequest{ConversationID: "P1", SenderID: "P1", Text: text}))
	}

	got, err := s.sync.Fetch(ctx, "P1", "P1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"one", "two", "three"}, []string{got[0].Text, got[1].Text, got[2].Text})
	assert.Less(t, got[0].ID, got[1].ID)
}

func TestSynchronizer_AttachmentRoundTrip(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()

	err := s.sync.Send(ctx, SendRequest{
		ConversationID: "P1",
		SenderID:       "P1",
		Attachment:     &Upload{Name: "xray.jpg", ContentType: "image/jpeg", Data: []byte{0xff, 0xd8, 0xff}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, s.blobs.Len())

	got, err := s.sync.Fetch(ctx, "P1", "D1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].Attachment)
	assert.Equal(t, "xray.jpg", got[0].Attachment.Name)
	assert.Equal(t, "image/jpeg", got[0].Attachment.Type)
	assert.Contains(t, got[0].Attachment.URL, "http://media.test/media/P1/")
	assert.True(t, got[0].Attachment.Kind.Inline())
}

func TestSynchronizer_SubscribeFollowsWrites(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()

	var p1Calls, p2Calls int32
	unsubscribe := s.sync.Subscribe("P1", func() { atomic.AddInt32(&p1Calls, 1) })
	stopP2 := s.sync.Subscribe("P2", func() { atomic.AddInt32(&p2Calls, 1) })
	defer stopP2()

	require.NoError(t, s.sync.Send(ctx, SendRequest{ConversationID: "P1", SenderID: "P1", Text: "hello"}))
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&p1Calls) == 1 }, time.Second, 5*time.Millisecond)

	// a write made outside the synchronizer still notifies
	require.NoError(t, s.db.Create(&dbsql.Message{PatientID: "P1", SenderID: "D1", Text: "direct", CreatedAt: time.Now()}).Error)
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&p1Calls) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&p2Calls))

	// deletes notify too
	require.NoError(t, s.db.Where("patient_id = ? AND text = ?", "P1", "direct").Delete(&dbsql.Message{}).Error)
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&p1Calls) >= 3 }, time.Second, 5*time.Millisecond)

	unsubscribe()
	before := atomic.LoadInt32(&p1Calls)
	require.NoError(t, s.sync.Send(ctx, SendRequest{ConversationID: "P1", SenderID: "P1", Text: "after"}))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, before, atomic.LoadInt32(&p1Calls))
}
