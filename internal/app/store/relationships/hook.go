package relationshipstore

import (
	"context"

	"github.com/kinnected/kinnected/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreateFromMembership materializes the edge implied by an invitation.
//
// When m has both InvitedBy and RelationshipToInviter set, exactly one edge
// is written: memberID -> *m.InvitedBy labelled *m.RelationshipToInviter,
// verbatim. Otherwise nothing is written and (nil, nil) is returned.
// Calling it twice with the same membership writes two edges.
func (s *Store) CreateFromMembership(ctx context.Context, memberID primitive.ObjectID, m models.UserWorkspace) (*models.FamilyRelationship, error) {
	if m.InvitedBy == nil || m.RelationshipToInviter == nil {
		return nil, nil
	}
	rel, err := s.Create(ctx, m.WorkspaceID, memberID, *m.InvitedBy, *m.RelationshipToInviter)
	if err != nil {
		return nil, err
	}
	return &rel, nil
}
