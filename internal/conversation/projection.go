package conversation

import (
	"claridx/internal/common"
	"claridx/internal/dbsql"
)

// Project labels each row self or other for viewerID. Input order is kept.
func Project(rows []*dbsql.Message, viewerID string) []ProjectedMessage {
	out := make([]ProjectedMessage, 0, len(rows))
	for _, row := range rows {
		out = append(out, projectOne(row, viewerID))
	}
	return out
}

func projectOne(row *dbsql.Message, viewerID string) ProjectedMessage {
	sender := SenderOther
	if row.SenderID == viewerID {
		sender = SenderSelf
	}

	msg := ProjectedMessage{
		ID:        row.ID,
		Sender:    sender,
		SenderID:  row.SenderID,
		Text:      row.Text,
		CreatedAt: row.CreatedAt,
	}

	if row.HasAttachment() {
		fileType := deref(row.FileType)
		msg.Attachment = &Attachment{
			Name: *row.FileName,
			URL:  deref(row.FileURL),
			Type: fileType,
			Kind: common.DetectAttachmentKind(fileType),
		}
	}
	return msg
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
