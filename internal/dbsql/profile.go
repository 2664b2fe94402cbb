package dbsql

import (
	"time"
)

type Profile struct {
	ID           string    `gorm:"primaryKey;column:id;size:64" json:"id"`
	Email        string    `gorm:"column:email;uniqueIndex;size:255;not null" json:"email"`
	Role         string    `gorm:"column:role;size:16;not null;index" json:"role"`
	FullName     string    `gorm:"column:full_name;size:100" json:"full_name"`
	PasswordHash string    `gorm:"column:password_hash;size:255;not null" json:"-"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

// Models lists every table owned by this package, in migration order.
func Models() []interface{} {
	return []interface{}{
		&Profile{},
		&Conversation{},
		&Message{},
	}
}
