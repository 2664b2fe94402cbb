package dbsql

import (
	"time"
)

// Message rows are written once and never updated.
type Message struct {
	ID        uint64    `gorm:"primaryKey;column:id;autoIncrement" json:"id"`
	PatientID string    `gorm:"column:patient_id;size:64;not null;index:idx_messages_patient_created,priority:1" json:"patient_id"`
	DoctorID  *string   `gorm:"column:doctor_id;size:64" json:"doctor_id"`
	SenderID  string    `gorm:"column:sender_id;size:64;not null;index" json:"sender_id"`
	Text      string    `gorm:"column:text;type:text" json:"text"`
	FileName  *string   `gorm:"column:file_name;size:255" json:"file_name"`
	FileURL   *string   `gorm:"column:file_url;size:1024" json:"file_url"`
	FileType  *string   `gorm:"column:file_type;size:127" json:"file_type"`
	CreatedAt time.Time `gorm:"column:created_at;not null;index:idx_messages_patient_created,priority:2" json:"created_at"`
}

func (Message) TableName() string {
	return "messages"
}

// HasAttachment mirrors how clients decide to render a file: the name is
// the marker, the URL and type travel with it.
func (m *Message) HasAttachment() bool {
	return m.FileName != nil && *m.FileName != ""
}
