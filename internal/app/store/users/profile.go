package userstore

import (
	"context"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
	"github.com/kinnected/kinnected/internal/app/system/htmlsanitize"
	"github.com/kinnected/kinnected/internal/app/system/normalize"
	"github.com/kinnected/kinnected/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProfileUpdate is a partial profile edit. Nil fields are left unchanged.
// Milestones, when set, replaces the whole list. Pin state is never taken
// from the input: milestones whose id is already stored keep their pin.
type ProfileUpdate struct {
	Name         *string
	Gender       *string
	ProfileImage *string
	Occupation   *string
	Bio          *string
	Interests    *[]string
	Milestones   *[]models.Milestone
}

// UpdateProfileByID applies upd to the user with the given id.
func (s *Store) UpdateProfileByID(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) (*models.User, error) {
	return s.updateProfile(ctx, bson.M{"_id": id}, upd)
}

// UpdateProfileByEmail applies upd to the user with the given email.
func (s *Store) UpdateProfileByEmail(ctx context.Context, email string, upd ProfileUpdate) (*models.User, error) {
	return s.updateProfile(ctx, bson.M{"email": normalize.Email(email)}, upd)
}

// UpdateProfileByWallet applies upd to the user with the given wallet address.
func (s *Store) UpdateProfileByWallet(ctx context.Context, address string, upd ProfileUpdate) (*models.User, error) {
	return s.updateProfile(ctx, bson.M{"wallet_address": normalize.Wallet(address)}, upd)
}

func (s *Store) updateProfile(ctx context.Context, filter bson.M, upd ProfileUpdate) (*models.User, error) {
	set := bson.M{"updated_at": time.Now().UTC()}

	if upd.Name != nil {
		name := normalize.Name(*upd.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		set["name"] = name
		set["name_ci"] = text.Fold(name)
	}
	if upd.Gender != nil {
		set["gender"] = normalize.Gender(*upd.Gender)
	}
	if upd.ProfileImage != nil {
		set["profile_image"] = strings.TrimSpace(*upd.ProfileImage)
	}
	if upd.Occupation != nil {
		set["occupation"] = htmlsanitize.Text(*upd.Occupation)
	}
	if upd.Bio != nil {
		set["bio"] = htmlsanitize.Text(*upd.Bio)
	}
	if upd.Interests != nil {
		set["interests"] = normalize.Interests(*upd.Interests)
	}
	if upd.Milestones != nil {
		pins, err := s.storedPins(ctx, filter)
		if err != nil {
			return nil, err
		}
		ms := make([]models.Milestone, 0, len(*upd.Milestones))
		for _, m := range *upd.Milestones {
			clean, err := cleanMilestone(m)
			if err != nil {
				return nil, err
			}
			prev := pins[clean.ID]
			clean.PinCID = prev.PinCID
			clean.PinFailedAt = prev.PinFailedAt
			ms = append(ms, clean)
		}
		set["milestones"] = ms
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u models.User
	if err := s.c.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// storedPins returns the current milestones of the matched user keyed by id.
func (s *Store) storedPins(ctx context.Context, filter bson.M) (map[string]models.Milestone, error) {
	var cur models.User
	opts := options.FindOne().SetProjection(bson.M{"milestones": 1})
	if err := s.c.FindOne(ctx, filter, opts).Decode(&cur); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	out := make(map[string]models.Milestone, len(cur.Milestones))
	for _, m := range cur.Milestones {
		out[m.ID] = m
	}
	return out, nil
}

// cleanMilestone sanitizes text and assigns an id when one is missing.
func cleanMilestone(m models.Milestone) (models.Milestone, error) {
	m.Title = htmlsanitize.Text(m.Title)
	if m.Title == "" {
		return models.Milestone{}, ErrMilestoneTitle
	}
	m.Description = htmlsanitize.Rich(m.Description)
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Date.IsZero() {
		m.Date = time.Now().UTC()
	}
	return m, nil
}

// AddMilestone appends a milestone to the user's timeline and returns it
// with its assigned id.
func (s *Store) AddMilestone(ctx context.Context, userID primitive.ObjectID, m models.Milestone) (models.Milestone, error) {
	m.ID = ""
	m.PinCID = ""
	m.PinFailedAt = nil
	clean, err := cleanMilestone(m)
	if err != nil {
		return models.Milestone{}, err
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$push": bson.M{"milestones": clean},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return models.Milestone{}, err
	}
	if res.MatchedCount == 0 {
		return models.Milestone{}, ErrNotFound
	}
	return clean, nil
}

// SetMilestonePin records the IPFS content id a milestone was pinned under
// and clears any recorded failure.
func (s *Store) SetMilestonePin(ctx context.Context, userID primitive.ObjectID, milestoneID, cid string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": userID, "milestones.id": milestoneID},
		bson.M{
			"$set":   bson.M{"milestones.$.pin_cid": cid},
			"$unset": bson.M{"milestones.$.pin_failed_at": ""},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrMilestoneMissing
	}
	return nil
}

// UpdateSettings replaces the user's settings after validating enum keys.
func (s *Store) UpdateSettings(ctx context.Context, userID primitive.ObjectID, settings models.UserSettings) (models.UserSettings, error) {
	settings = settings.Normalized()
	if !settings.Valid() {
		return models.UserSettings{}, ErrBadSettings
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": bson.M{
		"settings":   settings,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return models.UserSettings{}, err
	}
	if res.MatchedCount == 0 {
		return models.UserSettings{}, ErrNotFound
	}
	return settings, nil
}
