// internal/app/store/memberships/membershipstore.go
package membershipstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	relationshipstore "github.com/kinnected/kinnected/internal/app/store/relationships"
	workspacestore "github.com/kinnected/kinnected/internal/app/store/workspaces"
	"github.com/kinnected/kinnected/internal/app/system/kinship"
	"github.com/kinnected/kinnected/internal/app/system/normalize"
	"github.com/kinnected/kinnected/internal/app/system/txn"
	"github.com/kinnected/kinnected/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var (
	ErrBadRole           = errors.New(`role must be "admin" or "member"`)
	ErrWorkspaceNotFound = errors.New("workspace not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrBadRelationType   = relationshipstore.ErrBadRelationType
	ErrSelfRelationship  = relationshipstore.ErrSelfRelationship
	ErrRelationNoInviter = errors.New("relationship_to_inviter requires invited_by")
)

// Hook runs after a membership has been written, inside the same
// transaction when the deployment supports one.
type Hook interface {
	CreateFromMembership(ctx context.Context, memberID primitive.ObjectID, m models.UserWorkspace) (*models.FamilyRelationship, error)
}

type Store struct {
	client     *mongo.Client
	users      *mongo.Collection
	workspaces *workspacestore.Store
	hook       Hook
}

// New returns a Store whose joins materialize invitation edges in the
// relationship store.
func New(db *mongo.Database) *Store {
	return NewWithHook(db, relationshipstore.New(db))
}

// NewWithHook returns a Store that calls hook after each join.
func NewWithHook(db *mongo.Database, hook Hook) *Store {
	return &Store{
		client:     db.Client(),
		users:      db.Collection("users"),
		workspaces: workspacestore.New(db),
		hook:       hook,
	}
}

// JoinInput describes a user joining a workspace. InvitedBy and
// RelationshipToInviter are optional; when both are set the join also
// records the stated relationship.
type JoinInput struct {
	WorkspaceID           primitive.ObjectID
	UserID                primitive.ObjectID
	Role                  string
	InvitedBy             *primitive.ObjectID
	RelationshipToInviter *string
}

// JoinResult is the stored membership plus the edge the hook created, if any.
type JoinResult struct {
	Membership   models.UserWorkspace       `json:"membership"`
	Relationship *models.FamilyRelationship `json:"relationship,omitempty"`
}

// Join appends the membership to the user and the workspace and then runs
// the hook. Any error, including one from the hook, is returned and, when
// transactions are available, no write is kept.
//
// Joining a workspace the user already belongs to is not rejected.
func (s *Store) Join(ctx context.Context, in JoinInput) (JoinResult, error) {
	role := normalize.Role(in.Role)
	if role == "" {
		role = models.RoleMember
	}
	if !models.IsValidRole(role) {
		return JoinResult{}, ErrBadRole
	}

	// The label is stored exactly as given, so padding is rejected rather
	// than trimmed.
	var label *string
	if in.RelationshipToInviter != nil && *in.RelationshipToInviter != "" {
		l := *in.RelationshipToInviter
		if !kinship.IsValid(l) {
			return JoinResult{}, ErrBadRelationType
		}
		label = &l
	}
	if label != nil {
		if in.InvitedBy == nil {
			return JoinResult{}, ErrRelationNoInviter
		}
		if *in.InvitedBy == in.UserID {
			return JoinResult{}, ErrSelfRelationship
		}
	}

	m := models.UserWorkspace{
		WorkspaceID:           in.WorkspaceID,
		Role:                  role,
		InvitedBy:             in.InvitedBy,
		RelationshipToInviter: label,
		JoinedAt:              time.Now().UTC(),
	}

	var res JoinResult
	err := txn.Run(ctx, s.client, zap.L(), func(ctx context.Context) error {
		res = JoinResult{Membership: m}

		if err := s.workspaces.AddMember(ctx, in.WorkspaceID, in.UserID, role, m.JoinedAt); err != nil {
			if errors.Is(err, workspacestore.ErrNotFound) {
				return ErrWorkspaceNotFound
			}
			return fmt.Errorf("add workspace member: %w", err)
		}

		ur, err := s.users.UpdateOne(ctx, bson.M{"_id": in.UserID}, bson.M{
			"$push": bson.M{"workspaces": m},
			"$set":  bson.M{"updated_at": m.JoinedAt},
		})
		if err != nil {
			return fmt.Errorf("add user membership: %w", err)
		}
		if ur.MatchedCount == 0 {
			return ErrUserNotFound
		}

		if s.hook == nil {
			return nil
		}
		rel, err := s.hook.CreateFromMembership(ctx, in.UserID, m)
		if err != nil {
			return fmt.Errorf("membership hook: %w", err)
		}
		res.Relationship = rel
		return nil
	})
	if err != nil {
		return JoinResult{}, err
	}
	return res, nil
}
