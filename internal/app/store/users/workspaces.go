package userstore

import (
	"context"
	"time"

	"github.com/kinnected/kinnected/internal/app/system/normalize"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WorkspaceMembership is one of a user's memberships joined with the
// workspace name.
type WorkspaceMembership struct {
	WorkspaceID           primitive.ObjectID  `bson:"workspace_id" json:"workspace_id"`
	WorkspaceName         string              `bson:"workspace_name" json:"workspace_name"`
	Role                  string              `bson:"role" json:"role"`
	InvitedBy             *primitive.ObjectID `bson:"invited_by,omitempty" json:"invited_by,omitempty"`
	RelationshipToInviter *string             `bson:"relationship_to_inviter" json:"relationship_to_inviter"`
	JoinedAt              time.Time           `bson:"joined_at" json:"joined_at"`
}

// ListWorkspaces returns the memberships of the user with the given email.
// A membership whose workspace no longer exists is returned with an empty
// WorkspaceName.
func (s *Store) ListWorkspaces(ctx context.Context, email string) ([]WorkspaceMembership, error) {
	em := normalize.Email(email)
	n, err := s.c.CountDocuments(ctx, bson.M{"email": em})
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotFound
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"email": em}}},
		{{Key: "$unwind", Value: "$workspaces"}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "workspaces",
			"localField":   "workspaces.workspace_id",
			"foreignField": "_id",
			"as":           "ws",
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":                     0,
			"workspace_id":            "$workspaces.workspace_id",
			"role":                    "$workspaces.role",
			"invited_by":              "$workspaces.invited_by",
			"relationship_to_inviter": "$workspaces.relationship_to_inviter",
			"joined_at":               "$workspaces.joined_at",
			"workspace_name":          bson.M{"$ifNull": bson.A{bson.M{"$arrayElemAt": bson.A{"$ws.name", 0}}, ""}},
		}}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]WorkspaceMembership, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
