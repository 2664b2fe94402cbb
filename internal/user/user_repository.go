package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"claridx/internal/common"
	"claridx/internal/dbsql"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -destination=mock_user_repository_test.go -package=user claridx/internal/user UserRepository

type UserRepository interface {
	// CreateProfile upserts on the primary key and, for a patient, opens
	// their conversation in the same transaction. A clash on email is
	// ALREADY_EXISTS.
	CreateProfile(ctx context.Context, profile *dbsql.Profile) error
	GetProfileByID(ctx context.Context, id string) (*dbsql.Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (*dbsql.Profile, error)
	CheckEmailExists(ctx context.Context, email string) (bool, error)
	ListByRole(ctx context.Context, role common.Role) ([]*dbsql.Profile, error)
	ListPatientsOf(ctx context.Context, doctorID string) ([]*dbsql.Profile, error)
	// UpsertConversation creates the patient's conversation row. A nil
	// doctorID leaves an existing assignment alone.
	UpsertConversation(ctx context.Context, patientID string, doctorID *string) error
	// ClaimConversation assigns doctorID only while the patient has no
	// doctor (or already has this one). It reports whether it did.
	ClaimConversation(ctx context.Context, patientID, doctorID string) (bool, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateProfile(ctx context.Context, profile *dbsql.Profile) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "role", "full_name", "password_hash", "updated_at"}),
		}).Create(profile).Error
		if err != nil {
			return err
		}
		if common.Role(profile.Role) != common.RolePatient {
			return nil
		}
		return upsertConversation(tx, profile.ID, nil)
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return common.WrapError(common.CodeAlreadyExists, "an account with this email already exists", err)
	}
	if err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

func (r *userRepository) GetProfileByID(ctx context.Context, id string) (*dbsql.Profile, error) {
	var profile dbsql.Profile
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.NewNotFoundError("profile not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &profile, nil
}

func (r *userRepository) GetProfileByEmail(ctx context.Context, email string) (*dbsql.Profile, error) {
	var profile dbsql.Profile
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.NewNotFoundError("profile not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get profile by email: %w", err)
	}
	return &profile, nil
}

func (r *userRepository) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&dbsql.Profile{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *userRepository) ListByRole(ctx context.Context, role common.Role) ([]*dbsql.Profile, error) {
	var profiles []*dbsql.Profile
	err := r.db.WithContext(ctx).
		Where("role = ?", string(role)).
		Order("full_name ASC").
		Find(&profiles).Error
	if err != nil {
		return nil, fmt.Errorf("list %s profiles: %w", role, err)
	}
	return profiles, nil
}

func (r *userRepository) ListPatientsOf(ctx context.Context, doctorID string) ([]*dbsql.Profile, error) {
	var profiles []*dbsql.Profile
	err := r.db.WithContext(ctx).
		Model(&dbsql.Profile{}).
		Select("profiles.*").
		Joins("JOIN conversations ON conversations.patient_id = profiles.id").
		Where("conversations.doctor_id = ?", doctorID).
		Order("profiles.full_name ASC").
		Find(&profiles).Error
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	return profiles, nil
}

func (r *userRepository) UpsertConversation(ctx context.Context, patientID string, doctorID *string) error {
	if err := upsertConversation(r.db.WithContext(ctx), patientID, doctorID); err != nil {
		return fmt.Errorf("upsert conversation: %w", err)
	}
	return nil
}

func upsertConversation(db *gorm.DB, patientID string, doctorID *string) error {
	onConflict := clause.OnConflict{
		Columns:   []clause.Column{{Name: "patient_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"doctor_id", "updated_at"}),
	}
	if doctorID == nil {
		onConflict = clause.OnConflict{Columns: []clause.Column{{Name: "patient_id"}}, DoNothing: true}
	}
	return db.Clauses(onConflict).Create(&dbsql.Conversation{PatientID: patientID, DoctorID: doctorID}).Error
}

func (r *userRepository) ClaimConversation(ctx context.Context, patientID, doctorID string) (bool, error) {
	db := r.db.WithContext(ctx)
	if err := upsertConversation(db, patientID, nil); err != nil {
		return false, fmt.Errorf("open conversation: %w", err)
	}

	// guard and write in one statement; of two racing doctors only one wins
	res := db.Model(&dbsql.Conversation{}).
		Where("patient_id = ? AND (doctor_id IS NULL OR doctor_id = ?)", patientID, doctorID).
		Updates(map[string]interface{}{"doctor_id": doctorID, "updated_at": time.Now()})
	if res.Error != nil {
		return false, fmt.Errorf("claim conversation: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	// MySQL counts only changed rows, so a repeat claim can report zero
	var conv dbsql.Conversation
	if err := db.Where("patient_id = ?", patientID).Take(&conv).Error; err != nil {
		return false, fmt.Errorf("read conversation: %w", err)
	}
	return conv.DoctorID != nil && *conv.DoctorID == doctorID, nil
}
