package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/kinnected/kinnected/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParams adds chi URL parameters (key, value, key, value, ...) to
// the request context. Use this in handler tests that call handlers directly.
func WithChiURLParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a user with the given name and email.
func (f *Fixtures) CreateUser(ctx context.Context, name, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:         primitive.NewObjectID(),
		Name:       name,
		NameCI:     text.Fold(name),
		AuthMethod: models.AuthPassword,
		Settings:   models.DefaultUserSettings(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if email != "" {
		u.Email = &email
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateUserWithGender inserts a user whose gender is used for inverse labels.
func (f *Fixtures) CreateUserWithGender(ctx context.Context, name, email, gender string) models.User {
	f.t.Helper()
	u := f.CreateUser(ctx, name, email)
	if _, err := f.db.Collection("users").UpdateByID(ctx, u.ID, bson.M{"$set": bson.M{"gender": gender}}); err != nil {
		f.t.Fatalf("failed to set gender: %v", err)
	}
	u.Gender = gender
	return u
}

// CreateWalletUser inserts a user identified only by wallet address.
func (f *Fixtures) CreateWalletUser(ctx context.Context, name, wallet string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:            primitive.NewObjectID(),
		Name:          name,
		NameCI:        text.Fold(name),
		WalletAddress: &wallet,
		AuthMethod:    models.AuthWallet,
		Settings:      models.DefaultUserSettings(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create wallet user: %v", err)
	}
	return u
}

// CreateWorkspace inserts a workspace owned by owner, with owner as admin
// on both sides of the membership.
func (f *Fixtures) CreateWorkspace(ctx context.Context, name string, owner primitive.ObjectID) models.Workspace {
	f.t.Helper()

	now := time.Now().UTC()
	ws := models.Workspace{
		ID:      primitive.NewObjectID(),
		Name:    name,
		NameCI:  text.Fold(name),
		OwnerID: owner,
		Members: []models.WorkspaceMember{
			{UserID: owner, Role: models.RoleAdmin, JoinedAt: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("workspaces").InsertOne(ctx, ws); err != nil {
		f.t.Fatalf("failed to create test workspace: %v", err)
	}

	membership := models.UserWorkspace{WorkspaceID: ws.ID, Role: models.RoleAdmin, JoinedAt: now}
	if _, err := f.db.Collection("users").UpdateByID(ctx, owner, bson.M{"$push": bson.M{"workspaces": membership}}); err != nil {
		f.t.Fatalf("failed to add owner membership: %v", err)
	}
	return ws
}

// CreateRelationship inserts a directed edge directly, bypassing validation.
func (f *Fixtures) CreateRelationship(ctx context.Context, wsID, from, to primitive.ObjectID, label string, active bool) models.FamilyRelationship {
	f.t.Helper()

	now := time.Now().UTC()
	rel := models.FamilyRelationship{
		ID:           primitive.NewObjectID(),
		WorkspaceID:  wsID,
		FromUserID:   from,
		ToUserID:     to,
		RelationType: label,
		IsActive:     active,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("familyrelationships").InsertOne(ctx, rel); err != nil {
		f.t.Fatalf("failed to create test relationship: %v", err)
	}
	return rel
}

// CountRelationships counts edges matching filter.
func (f *Fixtures) CountRelationships(ctx context.Context, filter bson.M) int64 {
	f.t.Helper()
	n, err := f.db.Collection("familyrelationships").CountDocuments(ctx, filter)
	if err != nil {
		f.t.Fatalf("count relationships: %v", err)
	}
	return n
}
