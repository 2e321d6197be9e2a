// internal/app/store/relationships/relationshipstore.go
package relationshipstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kinnected/kinnected/internal/app/system/kinship"
	"github.com/kinnected/kinnected/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the MongoDB collection holding family edges.
const Collection = "familyrelationships"

var (
	ErrNotFound         = errors.New("relationship not found")
	ErrBadRelationType  = errors.New("relation_type is not a known kinship label")
	ErrSelfRelationship = errors.New("a user cannot be related to themselves")
)

type Store struct {
	c     *mongo.Collection
	users *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:     db.Collection(Collection),
		users: db.Collection("users"),
	}
}

// Populated is an edge with both endpoint users loaded.
// A nil user means the referenced document no longer exists.
type Populated struct {
	models.FamilyRelationship `bson:",inline"`
	FromUser                  *models.User `bson:"from_user,omitempty" json:"from_user,omitempty"`
	ToUser                    *models.User `bson:"to_user,omitempty" json:"to_user,omitempty"`
}

// Create inserts an active edge from -> to labelled relationType.
// The label is stored exactly as given. No inverse edge is written and no
// duplicate check is made.
func (s *Store) Create(ctx context.Context, workspaceID, from, to primitive.ObjectID, relationType string) (models.FamilyRelationship, error) {
	if !kinship.IsValid(relationType) {
		return models.FamilyRelationship{}, ErrBadRelationType
	}
	if from == to {
		return models.FamilyRelationship{}, ErrSelfRelationship
	}

	now := time.Now().UTC()
	rel := models.FamilyRelationship{
		ID:           primitive.NewObjectID(),
		WorkspaceID:  workspaceID,
		FromUserID:   from,
		ToUserID:     to,
		RelationType: relationType,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.c.InsertOne(ctx, rel); err != nil {
		return models.FamilyRelationship{}, fmt.Errorf("insert relationship: %w", err)
	}
	return rel, nil
}

// GetByID loads one edge regardless of its active flag.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.FamilyRelationship, error) {
	var rel models.FamilyRelationship
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&rel); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.FamilyRelationship{}, ErrNotFound
		}
		return models.FamilyRelationship{}, err
	}
	return rel, nil
}

// GetFamilyMembers returns every active edge in workspaceID that has userID
// at either end, with both endpoint users populated. Results are unpaged and
// in natural order.
func (s *Store) GetFamilyMembers(ctx context.Context, userID, workspaceID primitive.ObjectID) ([]Populated, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"workspace_id": workspaceID,
			"is_active":    true,
			"$or": bson.A{
				bson.M{"from_user_id": userID},
				bson.M{"to_user_id": userID},
			},
		}}},
		lookupUser("from_user_id", "from_user"),
		unwindOptional("$from_user"),
		lookupUser("to_user_id", "to_user"),
		unwindOptional("$to_user"),
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []Populated{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func lookupUser(localField, as string) bson.D {
	return bson.D{{Key: "$lookup", Value: bson.M{
		"from":         "users",
		"localField":   localField,
		"foreignField": "_id",
		"as":           as,
	}}}
}

func unwindOptional(path string) bson.D {
	return bson.D{{Key: "$unwind", Value: bson.M{
		"path":                       path,
		"preserveNullAndEmptyArrays": true,
	}}}
}

// GetRelationship returns the first active edge between userID1 and userID2
// in workspaceID, in either direction, or (nil, nil) when there is none.
// The direction of the returned edge is whatever the server finds first;
// use RelationFrom when the caller needs a label from one user's side.
func (s *Store) GetRelationship(ctx context.Context, userID1, userID2, workspaceID primitive.ObjectID) (*models.FamilyRelationship, error) {
	var rel models.FamilyRelationship
	err := s.c.FindOne(ctx, bson.M{
		"workspace_id": workspaceID,
		"is_active":    true,
		"$or": bson.A{
			bson.M{"from_user_id": userID1, "to_user_id": userID2},
			bson.M{"from_user_id": userID2, "to_user_id": userID1},
		},
	}).Decode(&rel)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

// Deactivate soft-deletes an edge. Deactivating an already inactive edge is
// not an error.
func (s *Store) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"is_active":  false,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListActive returns every active edge in a workspace, oldest first.
func (s *Store) ListActive(ctx context.Context, workspaceID primitive.ObjectID) ([]models.FamilyRelationship, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"workspace_id": workspaceID, "is_active": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.FamilyRelationship{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
