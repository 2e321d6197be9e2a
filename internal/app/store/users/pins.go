package userstore

import (
	"context"
	"time"

	"github.com/kinnected/kinnected/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UnpinnedMilestone is a milestone that has no IPFS content id yet.
type UnpinnedMilestone struct {
	UserID    primitive.ObjectID `bson:"user_id"`
	Milestone models.Milestone   `bson:"milestone"`
}

// ListUnpinnedMilestones returns up to limit milestones without a pin_cid.
// Milestones never attempted come first, then those whose last failure is
// oldest; ties are broken by milestone date. A milestone that keeps failing
// therefore cannot starve newer ones.
func (s *Store) ListUnpinnedMilestones(ctx context.Context, limit int64) ([]UnpinnedMilestone, error) {
	unpinned := bson.A{
		bson.M{"pin_cid": bson.M{"$exists": false}},
		bson.M{"pin_cid": ""},
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"milestones": bson.M{"$elemMatch": bson.M{"$or": unpinned}}}}},
		{{Key: "$unwind", Value: "$milestones"}},
		{{Key: "$match", Value: bson.M{"$or": bson.A{
			bson.M{"milestones.pin_cid": bson.M{"$exists": false}},
			bson.M{"milestones.pin_cid": ""},
		}}}},
		{{Key: "$sort", Value: bson.D{{Key: "milestones.pin_failed_at", Value: 1}, {Key: "milestones.date", Value: 1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$project", Value: bson.M{"_id": 0, "user_id": "$_id", "milestone": "$milestones"}}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []UnpinnedMilestone{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkMilestonePinFailed records a failed pin attempt so later passes try
// other milestones first.
func (s *Store) MarkMilestonePinFailed(ctx context.Context, userID primitive.ObjectID, milestoneID string, at time.Time) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": userID, "milestones.id": milestoneID},
		bson.M{"$set": bson.M{"milestones.$.pin_failed_at": at.UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrMilestoneMissing
	}
	return nil
}
