package relationshipstore

import (
	"context"

	"github.com/kinnected/kinnected/internal/app/system/kinship"
	"github.com/kinnected/kinnected/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Relation describes how one user is related to another from a viewer's side.
type Relation struct {
	// Label is what Other is to Viewer ("other is viewer's <Label>").
	Label string `json:"label"`
	// Derived is true when Label came from the inverse table because only
	// the viewer -> other edge is stored.
	Derived bool                      `json:"derived"`
	Edge    models.FamilyRelationship `json:"edge"`
}

// RelationFrom answers "what is otherID to viewerID" in workspaceID.
//
// A stored edge other -> viewer is used as-is. Failing that, a stored edge
// viewer -> other is inverted through the kinship table, using other's
// gender when it is known. Returns (nil, nil) when neither edge exists.
func (s *Store) RelationFrom(ctx context.Context, viewerID, otherID, workspaceID primitive.ObjectID) (*Relation, error) {
	direct, err := s.findActive(ctx, workspaceID, otherID, viewerID)
	if err != nil {
		return nil, err
	}
	if direct != nil {
		return &Relation{Label: direct.RelationType, Edge: *direct}, nil
	}

	reverse, err := s.findActive(ctx, workspaceID, viewerID, otherID)
	if err != nil {
		return nil, err
	}
	if reverse == nil {
		return nil, nil
	}

	gender, err := s.genderOf(ctx, otherID)
	if err != nil {
		return nil, err
	}
	label, ok := kinship.Inverse(reverse.RelationType, gender)
	if !ok {
		// Legacy label outside the vocabulary; fall back to the neutral term.
		label = "relative"
	}
	return &Relation{Label: label, Derived: true, Edge: *reverse}, nil
}

func (s *Store) findActive(ctx context.Context, workspaceID, from, to primitive.ObjectID) (*models.FamilyRelationship, error) {
	var rel models.FamilyRelationship
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: 1}})
	err := s.c.FindOne(ctx, bson.M{
		"workspace_id": workspaceID,
		"from_user_id": from,
		"to_user_id":   to,
		"is_active":    true,
	}, opts).Decode(&rel)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

func (s *Store) genderOf(ctx context.Context, userID primitive.ObjectID) (string, error) {
	var u struct {
		Gender string `bson:"gender"`
	}
	opts := options.FindOne().SetProjection(bson.M{"gender": 1})
	err := s.users.FindOne(ctx, bson.M{"_id": userID}, opts).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return u.Gender, nil
}

// MissingInverse is an active edge with no active edge in the other direction.
// Suggested is the inverse label the missing row would carry.
type MissingInverse struct {
	Edge      models.FamilyRelationship `json:"edge"`
	Suggested string                    `json:"suggested"`
}

// MissingInverses lists active edges in workspaceID whose reverse direction
// has no active row.
func (s *Store) MissingInverses(ctx context.Context, workspaceID primitive.ObjectID) ([]MissingInverse, error) {
	edges, err := s.ListActive(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	type pair struct{ from, to primitive.ObjectID }
	present := make(map[pair]struct{}, len(edges))
	for _, e := range edges {
		present[pair{e.FromUserID, e.ToUserID}] = struct{}{}
	}

	out := []MissingInverse{}
	genders := map[primitive.ObjectID]string{}
	for _, e := range edges {
		if _, ok := present[pair{e.ToUserID, e.FromUserID}]; ok {
			continue
		}
		g, seen := genders[e.ToUserID]
		if !seen {
			if g, err = s.genderOf(ctx, e.ToUserID); err != nil {
				return nil, err
			}
			genders[e.ToUserID] = g
		}
		suggested, ok := kinship.Inverse(e.RelationType, g)
		if !ok {
			suggested = "relative"
		}
		out = append(out, MissingInverse{Edge: e, Suggested: suggested})
	}
	return out, nil
}
