package workspacestore_test

import (
	"errors"
	"testing"
	"time"

	workspacestore "github.com/kinnected/kinnected/internal/app/store/workspaces"
	"github.com/kinnected/kinnected/internal/domain/models"
	"github.com/kinnected/kinnected/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := workspacestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateUser(ctx, "Owner", "owner@example.com")

	created, err := store.Create(ctx, "  The   Smiths ", owner.ID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.Name != "The Smiths" {
		t.Errorf("Name: got %q", created.Name)
	}
	if created.NameCI == "" {
		t.Error("expected NameCI to be set")
	}
	if created.OwnerID != owner.ID {
		t.Errorf("OwnerID: got %s, want %s", created.OwnerID.Hex(), owner.ID.Hex())
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}

	ws, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(ws.Members) != 1 || ws.Members[0].UserID != owner.ID || ws.Members[0].Role != models.RoleAdmin {
		t.Errorf("expected owner as sole admin member, got %+v", ws.Members)
	}

	var u models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": owner.ID}).Decode(&u); err != nil {
		t.Fatalf("load owner: %v", err)
	}
	if len(u.Workspaces) != 1 || u.Workspaces[0].WorkspaceID != created.ID || u.Workspaces[0].Role != models.RoleAdmin {
		t.Errorf("expected owner membership on user, got %+v", u.Workspaces)
	}
	if u.Workspaces[0].RelationshipToInviter != nil {
		t.Error("owner membership should not carry a relationship")
	}
}

func TestStore_Create_Errors(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := workspacestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateUser(ctx, "Owner", "owner@example.com")

	if _, err := store.Create(ctx, "   ", owner.ID); !errors.Is(err, workspacestore.ErrNameRequired) {
		t.Errorf("blank name: got %v, want ErrNameRequired", err)
	}

	if _, err := store.Create(ctx, "Orphan", primitive.NewObjectID()); !errors.Is(err, workspacestore.ErrOwnerNotFound) {
		t.Errorf("unknown owner: got %v, want ErrOwnerNotFound", err)
	}
	n, err := db.Collection("workspaces").CountDocuments(ctx, bson.M{"name": "Orphan"})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Error("workspace should not be stored when the owner is missing")
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := workspacestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.GetByID(ctx, primitive.NewObjectID())
	if !errors.Is(err, workspacestore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_AddMember_AndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := workspacestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateUser(ctx, "Owner", "owner@example.com")
	member := fixtures.CreateUser(ctx, "Member", "member@example.com")
	ws := fixtures.CreateWorkspace(ctx, "Family", owner.ID)

	if err := store.AddMember(ctx, ws.ID, member.ID, models.RoleMember, time.Now().UTC()); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	// A second add is not rejected.
	if err := store.AddMember(ctx, ws.ID, member.ID, models.RoleMember, time.Now().UTC()); err != nil {
		t.Fatalf("second AddMember failed: %v", err)
	}

	members, err := store.ListMembers(ctx, ws.ID)
	if err != nil {
		t.Fatalf("ListMembers failed: %v", err)
	}
	if len(members) != 3 {
		t.Fatalf("expected 3 member entries, got %d", len(members))
	}
	if members[0].UserID != owner.ID || members[0].User == nil || members[0].User.Name != "Owner" {
		t.Errorf("first member should be the owner with user populated, got %+v", members[0])
	}
	if members[1].User == nil || members[1].User.Name != "Member" {
		t.Errorf("second member user not populated: %+v", members[1])
	}

	if err := store.AddMember(ctx, ws.ID, member.ID, "owner", time.Now()); !errors.Is(err, workspacestore.ErrBadRole) {
		t.Errorf("bad role: got %v, want ErrBadRole", err)
	}
	if err := store.AddMember(ctx, primitive.NewObjectID(), member.ID, models.RoleMember, time.Now()); !errors.Is(err, workspacestore.ErrNotFound) {
		t.Errorf("unknown workspace: got %v, want ErrNotFound", err)
	}
	if _, err := store.ListMembers(ctx, primitive.NewObjectID()); !errors.Is(err, workspacestore.ErrNotFound) {
		t.Errorf("ListMembers unknown workspace: got %v, want ErrNotFound", err)
	}
}

func TestStore_ListMembers_MissingUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := workspacestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateUser(ctx, "Owner", "owner@example.com")
	ws := fixtures.CreateWorkspace(ctx, "Family", owner.ID)
	ghost := primitive.NewObjectID()
	if err := store.AddMember(ctx, ws.ID, ghost, models.RoleMember, time.Now().UTC()); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}

	members, err := store.ListMembers(ctx, ws.ID)
	if err != nil {
		t.Fatalf("ListMembers failed: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(members))
	}
	if members[1].UserID != ghost || members[1].User != nil {
		t.Errorf("expected dangling member with nil user, got %+v", members[1])
	}
}
