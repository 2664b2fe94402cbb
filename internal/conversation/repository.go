package conversation

import (
	"context"
	"errors"
	"fmt"

	"claridx/internal/common"
	"claridx/internal/dbsql"

	"gorm.io/gorm"
)

//go:generate mockgen -destination=mocks/mock_repository.go -package=mocks claridx/internal/conversation Repository

type Repository interface {
	Insert(ctx context.Context, msg *dbsql.Message) error
	// ListByConversation returns every message of the conversation, oldest
	// first, ties broken by id.
	ListByConversation(ctx context.Context, patientID string) ([]*dbsql.Message, error)
	FindConversation(ctx context.Context, patientID string) (*dbsql.Conversation, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Insert(ctx context.Context, msg *dbsql.Message) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (r *gormRepository) ListByConversation(ctx context.Context, patientID string) ([]*dbsql.Message, error) {
	var messages []*dbsql.Message
	err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}

func (r *gormRepository) FindConversation(ctx context.Context, patientID string) (*dbsql.Conversation, error) {
	var conv dbsql.Conversation
	err := r.db.WithContext(ctx).Where("patient_id = ?", patientID).Take(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.NewNotFoundError("conversation not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find conversation: %w", err)
	}
	return &conv, nil
}
