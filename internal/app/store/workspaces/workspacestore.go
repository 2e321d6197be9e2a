// internal/app/store/workspaces/workspacestore.go
package workspacestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/kinnected/kinnected/internal/app/system/normalize"
	"github.com/kinnected/kinnected/internal/app/system/txn"
	"github.com/kinnected/kinnected/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Store struct {
	client *mongo.Client
	c      *mongo.Collection
	users  *mongo.Collection
}

var (
	ErrNotFound      = errors.New("workspace not found")
	ErrNameRequired  = errors.New("workspace name is required")
	ErrOwnerNotFound = errors.New("workspace owner not found")
	ErrBadRole       = errors.New(`role must be "admin" or "member"`)
)

func New(db *mongo.Database) *Store {
	return &Store{
		client: db.Client(),
		c:      db.Collection("workspaces"),
		users:  db.Collection("users"),
	}
}

// Create inserts a new workspace owned by ownerID and records the owner as
// an admin on both the workspace and the owner's user document.
func (s *Store) Create(ctx context.Context, name string, ownerID primitive.ObjectID) (models.Workspace, error) {
	name = normalize.Name(name)
	if name == "" {
		return models.Workspace{}, ErrNameRequired
	}

	now := time.Now().UTC()
	ws := models.Workspace{
		ID:      primitive.NewObjectID(),
		Name:    name,
		NameCI:  text.Fold(name),
		OwnerID: ownerID,
		Members: []models.WorkspaceMember{
			{UserID: ownerID, Role: models.RoleAdmin, JoinedAt: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	membership := models.UserWorkspace{
		WorkspaceID: ws.ID,
		Role:        models.RoleAdmin,
		JoinedAt:    now,
	}

	err := txn.Run(ctx, s.client, zap.L(), func(ctx context.Context) error {
		res, err := s.users.UpdateOne(ctx, bson.M{"_id": ownerID}, bson.M{
			"$push": bson.M{"workspaces": membership},
			"$set":  bson.M{"updated_at": now},
		})
		if err != nil {
			return fmt.Errorf("add owner membership: %w", err)
		}
		if res.MatchedCount == 0 {
			return ErrOwnerNotFound
		}
		if _, err := s.c.InsertOne(ctx, ws); err != nil {
			return fmt.Errorf("insert workspace: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.Workspace{}, err
	}
	return ws, nil
}

// GetByID retrieves a workspace by its ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Workspace, error) {
	var ws models.Workspace
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&ws)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Workspace{}, ErrNotFound
		}
		return models.Workspace{}, err
	}
	return ws, nil
}

// AddMember appends userID to the workspace member list and bumps updated_at.
// It does not check for an existing entry.
func (s *Store) AddMember(ctx context.Context, wsID, userID primitive.ObjectID, role string, joinedAt time.Time) error {
	if !models.IsValidRole(role) {
		return ErrBadRole
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": wsID}, bson.M{
		"$push": bson.M{"members": models.WorkspaceMember{UserID: userID, Role: role, JoinedAt: joinedAt}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Member is a workspace member entry joined with its user document.
// User is nil when the user no longer exists.
type Member struct {
	models.WorkspaceMember `bson:",inline"`
	User                   *models.User `bson:"user,omitempty" json:"user,omitempty"`
}

// ListMembers returns the workspace's members in stored order with their
// user documents.
func (s *Store) ListMembers(ctx context.Context, wsID primitive.ObjectID) ([]Member, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"_id": wsID})
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotFound
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": wsID}}},
		{{Key: "$unwind", Value: "$members"}},
		{{Key: "$replaceRoot", Value: bson.M{"newRoot": "$members"}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "user_id",
			"foreignField": "_id",
			"as":           "user",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$user", "preserveNullAndEmptyArrays": true}}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]Member, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
