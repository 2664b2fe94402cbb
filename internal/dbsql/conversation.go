package dbsql

import (
	"time"
)

// Conversation is keyed by the patient; every patient has exactly one.
type Conversation struct {
	PatientID string    `gorm:"primaryKey;column:patient_id;size:64" json:"patient_id"`
	DoctorID  *string   `gorm:"column:doctor_id;size:64;index" json:"doctor_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Conversation) TableName() string {
	return "conversations"
}
