package conversation

import (
	"context"
	"strings"
	"sync"
	"time"

	"claridx/internal/common"
	"claridx/internal/dbsql"
	"claridx/internal/notif"
	"claridx/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate mockgen -destination=mocks/mock_blob_store.go -package=mocks claridx/internal/storage BlobStore

const messagesTable = "messages"

var (
	ErrEmptyMessage     = common.NewInvalidInputError("message text or attachment is required")
	ErrAttachmentFailed = common.NewError(common.CodeServiceUnavail, "attachment upload failed")
)

// ChangeSource delivers row changes for a filter until unsubscribed.
type ChangeSource interface {
	Subscribe(filter notif.Filter, handler notif.Handler) (notif.Subscription, error)
}

// Unsubscribe severs a subscription. Calling it more than once is a no-op.
type Unsubscribe func()

// Synchronizer keeps no state between calls; every Fetch reads the whole
// conversation again.
type Synchronizer struct {
	repo     Repository
	blobs    storage.BlobStore
	changes  ChangeSource
	log      *zap.Logger
	now      func() time.Time
	newToken func() string
}

func NewSynchronizer(repo Repository, blobs storage.BlobStore, changes ChangeSource, log *zap.Logger) *Synchronizer {
	return &Synchronizer{
		repo:     repo,
		blobs:    blobs,
		changes:  changes,
		log:      log.Named("conversation"),
		now:      time.Now,
		newToken: uuid.NewString,
	}
}

// Fetch returns the conversation as viewerID sees it. On failure the slice
// is empty, never nil, and the error says why.
func (s *Synchronizer) Fetch(ctx context.Context, conversationID, viewerID string) ([]ProjectedMessage, error) {
	if err := common.ValidateAccountID("conversation id", conversationID); err != nil {
		return []ProjectedMessage{}, err
	}

	rows, err := s.repo.ListByConversation(ctx, conversationID)
	if err != nil {
		s.log.Warn("fetch failed",
			zap.String("conversation_id", conversationID),
			zap.String("viewer_id", viewerID),
			zap.Error(err),
		)
		return []ProjectedMessage{}, common.WrapError(common.CodeServiceUnavail, "could not load messages", err)
	}

	return Project(rows, viewerID), nil
}

// Send uploads the attachment (if any) and then writes the message row. A
// failed upload degrades to a text-only message; a failed row write is
// returned to the caller.
func (s *Synchronizer) Send(ctx context.Context, req SendRequest) error {
	if err := common.ValidateAccountID("conversation id", req.ConversationID); err != nil {
		return err
	}
	if err := common.ValidateAccountID("sender id", req.SenderID); err != nil {
		return err
	}
	if req.DoctorID != nil {
		if err := common.ValidateAccountID("doctor id", *req.DoctorID); err != nil {
			return err
		}
	}

	hasText := strings.TrimSpace(req.Text) != ""
	hasFile := req.Attachment != nil && len(req.Attachment.Data) > 0
	if !hasText && !hasFile {
		return ErrEmptyMessage
	}

	now := s.now().UTC()
	msg := &dbsql.Message{
		PatientID: req.ConversationID,
		DoctorID:  req.DoctorID,
		SenderID:  req.SenderID,
		Text:      req.Text,
		CreatedAt: now,
	}

	if hasFile {
		attached := s.attach(ctx, msg, req.Attachment, now)
		if !attached && !hasText {
			// nothing left to send
			return ErrAttachmentFailed
		}
	}

	if err := s.repo.Insert(ctx, msg); err != nil {
		s.log.Error("send failed",
			zap.String("conversation_id", req.ConversationID),
			zap.String("sender_id", req.SenderID),
			zap.Error(err),
		)
		return common.NewInternalErrorWithCause("failed to send message", err)
	}

	s.log.Debug("message stored",
		zap.Uint64("id", msg.ID),
		zap.String("conversation_id", req.ConversationID),
		zap.Bool("attachment", msg.HasAttachment()),
	)
	return nil
}

func (s *Synchronizer) attach(ctx context.Context, msg *dbsql.Message, up *Upload, now time.Time) bool {
	name := strings.TrimSpace(up.Name)
	if name == "" {
		name = "attachment"
	}
	key := storage.Key(msg.SenderID, name, now, s.newToken())
	contentType := common.ResolveContentType(up.ContentType, name)

	if err := s.blobs.Upload(ctx, key, contentType, up.Data); err != nil {
		s.log.Warn("attachment upload failed, sending without it",
			zap.String("conversation_id", msg.PatientID),
			zap.String("key", key),
			zap.Error(err),
		)
		return false
	}

	url := s.blobs.PublicURL(key)
	msg.FileName = &name
	msg.FileURL = &url
	msg.FileType = &contentType
	return true
}

// Subscribe calls onChange, without payload, for every insert, update or
// delete touching the conversation. If the change channel cannot be joined
// the returned handle is valid and nothing ever fires.
func (s *Synchronizer) Subscribe(conversationID string, onChange func()) Unsubscribe {
	noop := func() {}
	if s.changes == nil || onChange == nil {
		return noop
	}

	sub, err := s.changes.Subscribe(
		notif.ColumnEquals(messagesTable, "patient_id", conversationID),
		func(notif.Change) { onChange() },
	)
	if err != nil {
		s.log.Warn("change subscription unavailable",
			zap.String("conversation_id", conversationID),
			zap.Error(err),
		)
		return noop
	}

	var once sync.Once
	return func() {
		once.Do(sub.Unsubscribe)
	}
}
