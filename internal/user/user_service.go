package user

import (
	"context"
	"strings"
	"time"

	"claridx/internal/common"
	"claridx/internal/dbsql"
	"claridx/internal/notif"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const sessionsTable = "sessions"

var ErrInvalidCredentials = common.NewUnauthorizedError("invalid email or password")

// Session is a signed-in account plus the bearer token that proves it.
type Session struct {
	AccountID   string      `json:"account_id"`
	Role        common.Role `json:"role"`
	DisplayName string      `json:"display_name"`
	Email       string      `json:"email"`
	SessionID   string      `json:"-"`
	Token       string      `json:"token"`
	ExpiresAt   time.Time   `json:"expires_at"`
}

type SessionEventKind string

const (
	SignedIn  SessionEventKind = "signed_in"
	SignedOut SessionEventKind = "signed_out"
)

type SessionEvent struct {
	Kind      SessionEventKind
	AccountID string
	SessionID string
}

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	FullName string `json:"full_name"`
}

// EventBus carries session events; the change hub satisfies it.
type EventBus interface {
	Publish(ctx context.Context, change notif.Change)
	Subscribe(filter notif.Filter, handler notif.Handler) (notif.Subscription, error)
}

type UserService interface {
	SignUp(ctx context.Context, req SignUpRequest) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, token string) error
	CurrentSession(ctx context.Context, token string) (*Session, error)
	Authenticate(ctx context.Context, token string) (*common.Principal, error)
	OnSessionChange(handler func(SessionEvent)) (notif.Subscription, error)
	WatchSession(sessionID string, onEnd func()) (func(), error)
	Profile(ctx context.Context, id string) (*dbsql.Profile, error)
	ListPatients(ctx context.Context, doctorID string) ([]*dbsql.Profile, error)
	ListDoctors(ctx context.Context) ([]*dbsql.Profile, error)
	AssignDoctor(ctx context.Context, by *common.Principal, patientID, doctorID string) error
}

type userService struct {
	userRepo UserRepository
	tokens   *common.TokenManager
	revoked  RevocationStore
	events   EventBus
	log      *zap.Logger
}

func NewUserService(userRepo UserRepository, tokens *common.TokenManager, revoked RevocationStore, events EventBus, log *zap.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		tokens:   tokens,
		revoked:  revoked,
		events:   events,
		log:      log.Named("user"),
	}
}

func (s *userService) SignUp(ctx context.Context, req SignUpRequest) (*Session, error) {
	email := common.NormalizeEmail(req.Email)
	if err := common.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := common.ValidatePassword(req.Password); err != nil {
		return nil, err
	}
	if err := common.ValidateRole(req.Role); err != nil {
		return nil, err
	}
	if err := common.ValidateDisplayName(req.FullName); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.CheckEmailExists(ctx, email)
	if err != nil {
		return nil, common.NewInternalErrorWithCause("failed to check email", err)
	}
	if exists {
		return nil, common.NewAlreadyExistsError("an account with this email already exists")
	}

	hashed, err := common.HashPassword(req.Password)
	if err != nil {
		return nil, common.NewInternalErrorWithCause("failed to hash password", err)
	}

	profile := &dbsql.Profile{
		ID:           uuid.NewString(),
		Email:        email,
		Role:         req.Role,
		FullName:     strings.TrimSpace(req.FullName),
		PasswordHash: hashed,
	}
	if err := s.userRepo.CreateProfile(ctx, profile); err != nil {
		if common.IsAlreadyExists(err) {
			return nil, err
		}
		return nil, common.NewInternalErrorWithCause("failed to create account", err)
	}

	s.log.Info("account created", zap.String("account_id", profile.ID), zap.String("role", profile.Role))
	return s.startSession(ctx, profile)
}

func (s *userService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = common.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, common.NewInvalidInputError("email and password required")
	}

	profile, err := s.userRepo.GetProfileByEmail(ctx, email)
	if common.IsNotFound(err) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, common.NewInternalErrorWithCause("failed to load profile", err)
	}

	if err := common.CheckPassword(password, profile.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.startSession(ctx, profile)
}

func (s *userService) startSession(ctx context.Context, profile *dbsql.Profile) (*Session, error) {
	token, claims, err := s.tokens.Generate(profile.ID, common.Role(profile.Role))
	if err != nil {
		return nil, common.NewInternalErrorWithCause("failed to issue token", err)
	}

	s.publish(ctx, SignedIn, profile.ID, claims.ID)
	return &Session{
		AccountID:   profile.ID,
		Role:        common.Role(profile.Role),
		DisplayName: profile.FullName,
		Email:       profile.Email,
		SessionID:   claims.ID,
		Token:       token,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}

func (s *userService) SignOut(ctx context.Context, token string) error {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return err
	}
	if err := s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return common.NewInternalErrorWithCause("failed to sign out", err)
	}

	s.publish(ctx, SignedOut, claims.AccountID, claims.ID)
	s.log.Debug("signed out", zap.String("account_id", claims.AccountID))
	return nil
}

func (s *userService) CurrentSession(ctx context.Context, token string) (*Session, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, err
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, common.WrapError(common.CodeServiceUnavail, "session check unavailable", err)
	}
	if revoked {
		return nil, common.NewUnauthorizedError("session has ended")
	}

	profile, err := s.userRepo.GetProfileByID(ctx, claims.AccountID)
	if common.IsNotFound(err) {
		return nil, common.NewUnauthorizedError("account no longer exists")
	}
	if err != nil {
		return nil, common.NewInternalErrorWithCause("failed to load profile", err)
	}

	return &Session{
		AccountID:   profile.ID,
		Role:        common.Role(profile.Role),
		DisplayName: profile.FullName,
		Email:       profile.Email,
		SessionID:   claims.ID,
		Token:       token,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}

func (s *userService) Authenticate(ctx context.Context, token string) (*common.Principal, error) {
	session, err := s.CurrentSession(ctx, token)
	if err != nil {
		return nil, err
	}
	return &common.Principal{
		AccountID:   session.AccountID,
		Role:        session.Role,
		DisplayName: session.DisplayName,
		SessionID:   session.SessionID,
	}, nil
}

func (s *userService) OnSessionChange(handler func(SessionEvent)) (notif.Subscription, error) {
	return s.events.Subscribe(notif.Filter{Table: sessionsTable}, func(c notif.Change) {
		handler(eventFromChange(c))
	})
}

func (s *userService) WatchSession(sessionID string, onEnd func()) (func(), error) {
	sub, err := s.events.Subscribe(notif.ColumnEquals(sessionsTable, "session_id", sessionID), func(c notif.Change) {
		if ev := eventFromChange(c); ev.Kind == SignedOut && ev.SessionID == sessionID {
			onEnd()
		}
	})
	if err != nil {
		return func() {}, err
	}
	return sub.Unsubscribe, nil
}

func (s *userService) publish(ctx context.Context, kind SessionEventKind, accountID, sessionID string) {
	op := notif.OpInsert
	if kind == SignedOut {
		op = notif.OpDelete
	}
	s.events.Publish(ctx, notif.Change{
		Table: sessionsTable,
		Op:    op,
		Row:   map[string]string{"account_id": accountID, "session_id": sessionID},
	})
}

func eventFromChange(c notif.Change) SessionEvent {
	kind := SignedIn
	if c.Op == notif.OpDelete {
		kind = SignedOut
	}
	return SessionEvent{Kind: kind, AccountID: c.Row["account_id"], SessionID: c.Row["session_id"]}
}

func (s *userService) Profile(ctx context.Context, id string) (*dbsql.Profile, error) {
	if err := common.ValidateAccountID("account id", id); err != nil {
		return nil, err
	}
	return s.userRepo.GetProfileByID(ctx, id)
}

func (s *userService) ListPatients(ctx context.Context, doctorID string) ([]*dbsql.Profile, error) {
	patients, err := s.userRepo.ListPatientsOf(ctx, doctorID)
	if err != nil {
		return nil, common.NewInternalErrorWithCause("failed to list patients", err)
	}
	return patients, nil
}

func (s *userService) ListDoctors(ctx context.Context) ([]*dbsql.Profile, error) {
	doctors, err := s.userRepo.ListByRole(ctx, common.RoleDoctor)
	if err != nil {
		return nil, common.NewInternalErrorWithCause("failed to list doctors", err)
	}
	return doctors, nil
}

// AssignDoctor changes who treats patientID. The patient may pick or
// replace their doctor. A doctor may only take on a patient nobody is
// assigned to yet.
func (s *userService) AssignDoctor(ctx context.Context, by *common.Principal, patientID, doctorID string) error {
	if by == nil {
		return common.NewUnauthorizedError("authorization required")
	}
	if err := common.ValidateAccountID("patient id", patientID); err != nil {
		return err
	}
	if err := common.ValidateAccountID("doctor id", doctorID); err != nil {
		return err
	}

	byPatient := by.AccountID == patientID
	if !byPatient && (by.Role != common.RoleDoctor || by.AccountID != doctorID) {
		return common.NewForbiddenError("you cannot change this assignment")
	}

	patient, err := s.userRepo.GetProfileByID(ctx, patientID)
	if err != nil {
		return err
	}
	if common.Role(patient.Role) != common.RolePatient {
		return common.NewInvalidInputError("only patients can be assigned a doctor")
	}

	doctor, err := s.userRepo.GetProfileByID(ctx, doctorID)
	if err != nil {
		return err
	}
	if common.Role(doctor.Role) != common.RoleDoctor {
		return common.NewInvalidInputError("only a doctor can be assigned")
	}

	if byPatient {
		if err := s.userRepo.UpsertConversation(ctx, patientID, &doctorID); err != nil {
			return common.NewInternalErrorWithCause("failed to assign doctor", err)
		}
	} else {
		claimed, err := s.userRepo.ClaimConversation(ctx, patientID, doctorID)
		if err != nil {
			return common.NewInternalErrorWithCause("failed to assign doctor", err)
		}
		if !claimed {
			return common.NewForbiddenError("this patient already has a doctor")
		}
	}

	s.log.Info("doctor assigned",
		zap.String("patient_id", patientID),
		zap.String("doctor_id", doctorID),
		zap.String("by", by.AccountID),
	)
	return nil
}
