package conversation

import (
	"context"

	"claridx/internal/common"
	"claridx/internal/dbsql"
)

// Authorizer decides who may read or write a conversation: the patient it
// belongs to and the doctor assigned to it.
type Authorizer struct {
	repo Repository
}

func NewAuthorizer(repo Repository) *Authorizer {
	return &Authorizer{repo: repo}
}

// CanAccess returns the conversation row, which is nil for a patient who
// has not been assigned a doctor yet.
func (a *Authorizer) CanAccess(ctx context.Context, viewer *common.Principal, patientID string) (*dbsql.Conversation, error) {
	if err := common.ValidateAccountID("conversation id", patientID); err != nil {
		return nil, err
	}

	conv, err := a.repo.FindConversation(ctx, patientID)
	if err != nil && !common.IsNotFound(err) {
		return nil, err
	}

	if viewer.AccountID == patientID {
		return conv, nil
	}

	if viewer.Role == common.RoleDoctor && conv != nil && conv.DoctorID != nil && *conv.DoctorID == viewer.AccountID {
		return conv, nil
	}

	return nil, common.NewForbiddenError("you do not have access to this conversation")
}
