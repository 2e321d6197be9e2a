package relationships

import (
	"net/http"
	"net/http/httptest"
	"testing"

	apierrors "github.com/kinnected/kinnected/internal/app/features/errors"
	"github.com/kinnected/kinnected/internal/app/store/audit"
	membershipstore "github.com/kinnected/kinnected/internal/app/store/memberships"
	relationshipstore "github.com/kinnected/kinnected/internal/app/store/relationships"
	"github.com/kinnected/kinnected/internal/app/system/auditlog"
	"github.com/kinnected/kinnected/internal/domain/models"
	"github.com/kinnected/kinnected/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T, db *mongo.Database) *Handler {
	t.Helper()
	logger := zap.NewNop()
	audits := auditlog.New(audit.New(db), logger, auditlog.Config{Account: auditlog.DB, Family: auditlog.DB})
	return NewHandler(db, apierrors.NewErrorLogger(logger), audits, logger)
}

// family is workspace W owned by A, with B invited by A as A's daughter.
type family struct {
	ws      models.Workspace
	a, b, c models.User
	edge    *models.FamilyRelationship
}

func setupFamily(t *testing.T, db *mongo.Database) family {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fixtures := testutil.NewFixtures(t, db)

	var f family
	f.a = fixtures.CreateUserWithGender(ctx, "Ada", "ada@example.com", "female")
	f.b = fixtures.CreateUserWithGender(ctx, "Bea", "bea@example.com", "female")
	f.c = fixtures.CreateUser(ctx, "Cy", "cy@example.com")
	f.ws = fixtures.CreateWorkspace(ctx, "Lovelace", f.a.ID)

	label := "daughter"
	res, err := membershipstore.New(db).Join(ctx, membershipstore.JoinInput{
		WorkspaceID:           f.ws.ID,
		UserID:                f.b.ID,
		InvitedBy:             &f.a.ID,
		RelationshipToInviter: &label,
	})
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if _, err := membershipstore.New(db).Join(ctx, membershipstore.JoinInput{WorkspaceID: f.ws.ID, UserID: f.c.ID}); err != nil {
		t.Fatalf("Join: %v", err)
	}
	f.edge = res.Relationship
	return f
}

func get(t *testing.T, fn http.HandlerFunc, wsID, query string) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.WithChiURLParams(httptest.NewRequest(http.MethodGet, "/"+query, nil), "id", wsID)
	rec := httptest.NewRecorder()
	fn(rec, req)
	return rec
}

func TestServeFamilyMembers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(t, db)
	f := setupFamily(t, db)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	fixtures := testutil.NewFixtures(t, db)
	otherWS := fixtures.CreateWorkspace(ctx, "Elsewhere", f.c.ID)
	fixtures.CreateRelationship(ctx, otherWS.ID, f.a.ID, f.c.ID, "mother", true)
	fixtures.CreateRelationship(ctx, f.ws.ID, f.c.ID, f.a.ID, "son", false)

	rec := get(t, h.ServeFamilyMembers, f.ws.ID.Hex(), "?user_id="+f.a.ID.Hex())
	testutil.AssertStatus(t, rec, http.StatusOK)

	var edges []relationshipstore.Populated
	testutil.DecodeData(t, testutil.DecodeEnvelope(t, rec), &edges)
	if len(edges) != 1 {
		t.Fatalf("edges = %d, want 1 (other workspace and inactive excluded)", len(edges))
	}
	if edges[0].ID != f.edge.ID {
		t.Errorf("edge = %s, want %s", edges[0].ID.Hex(), f.edge.ID.Hex())
	}
	if edges[0].FromUser == nil || edges[0].FromUser.Name != "Bea" || edges[0].ToUser == nil || edges[0].ToUser.Name != "Ada" {
		t.Errorf("endpoints not populated: from=%v to=%v", edges[0].FromUser, edges[0].ToUser)
	}

	testutil.AssertStatus(t, get(t, h.ServeFamilyMembers, f.ws.ID.Hex(), ""), http.StatusBadRequest)
	testutil.AssertStatus(t, get(t, h.ServeFamilyMembers, "bad", "?user_id="+f.a.ID.Hex()), http.StatusBadRequest)
}

func TestServeBetween(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(t, db)
	f := setupFamily(t, db)

	tests := []struct {
		name   string
		query  string
		status int
	}{
		{"inviter first", "?user1=" + f.a.ID.Hex() + "&user2=" + f.b.ID.Hex(), http.StatusOK},
		{"member first", "?user1=" + f.b.ID.Hex() + "&user2=" + f.a.ID.Hex(), http.StatusOK},
		{"no edge", "?user1=" + f.a.ID.Hex() + "&user2=" + f.c.ID.Hex(), http.StatusNotFound},
		{"missing user2", "?user1=" + f.a.ID.Hex(), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, h.ServeBetween, f.ws.ID.Hex(), tt.query)
			testutil.AssertStatus(t, rec, tt.status)
			if tt.status != http.StatusOK {
				return
			}
			var rel models.FamilyRelationship
			testutil.DecodeData(t, testutil.DecodeEnvelope(t, rec), &rel)
			if rel.ID != f.edge.ID {
				t.Errorf("edge = %s, want %s", rel.ID.Hex(), f.edge.ID.Hex())
			}
		})
	}
}

func TestServeRelationFrom(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(t, db)
	f := setupFamily(t, db)

	tests := []struct {
		name        string
		viewer      models.User
		other       models.User
		wantLabel   string
		wantDerived bool
	}{
		// Stored edge says B is A's daughter.
		{"stored direction", f.a, f.b, "daughter", false},
		// Only B -> A is stored, so A's label for B's side is derived: A is B's mother.
		{"derived direction", f.b, f.a, "mother", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, h.ServeRelationFrom, f.ws.ID.Hex(), "?viewer="+tt.viewer.ID.Hex()+"&other="+tt.other.ID.Hex())
			testutil.AssertStatus(t, rec, http.StatusOK)

			var rel relationshipstore.Relation
			testutil.DecodeData(t, testutil.DecodeEnvelope(t, rec), &rel)
			if rel.Label != tt.wantLabel || rel.Derived != tt.wantDerived {
				t.Errorf("relation = {%q, derived=%v}, want {%q, derived=%v}", rel.Label, rel.Derived, tt.wantLabel, tt.wantDerived)
			}
		})
	}

	rec := get(t, h.ServeRelationFrom, f.ws.ID.Hex(), "?viewer="+f.a.ID.Hex()+"&other="+f.c.ID.Hex())
	testutil.AssertStatus(t, rec, http.StatusNotFound)
}

func TestServeMissingInverses(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(t, db)
	f := setupFamily(t, db)

	rec := get(t, h.ServeMissingInverses, f.ws.ID.Hex(), "")
	testutil.AssertStatus(t, rec, http.StatusOK)

	var gaps []relationshipstore.MissingInverse
	testutil.DecodeData(t, testutil.DecodeEnvelope(t, rec), &gaps)
	if len(gaps) != 1 {
		t.Fatalf("gaps = %d, want 1", len(gaps))
	}
	if gaps[0].Edge.ID != f.edge.ID || gaps[0].Suggested != "mother" {
		t.Errorf("gap = %+v, want edge %s suggesting mother", gaps[0], f.edge.ID.Hex())
	}
}

func TestHandleCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(t, db)
	f := setupFamily(t, db)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	outsider := testutil.NewFixtures(t, db).CreateUser(ctx, "Out", "out@example.com")

	tests := []struct {
		name   string
		wsID   string
		body   map[string]any
		status int
	}{
		{"inverse edge", f.ws.ID.Hex(), map[string]any{"from_user_id": f.a.ID.Hex(), "to_user_id": f.b.ID.Hex(), "relation_type": "mother"}, http.StatusCreated},
		{"capitalized label", f.ws.ID.Hex(), map[string]any{"from_user_id": f.c.ID.Hex(), "to_user_id": f.a.ID.Hex(), "relation_type": "Nephew"}, http.StatusCreated},
		{"unknown label", f.ws.ID.Hex(), map[string]any{"from_user_id": f.a.ID.Hex(), "to_user_id": f.c.ID.Hex(), "relation_type": "godmother"}, http.StatusBadRequest},
		{"self edge", f.ws.ID.Hex(), map[string]any{"from_user_id": f.a.ID.Hex(), "to_user_id": f.a.ID.Hex(), "relation_type": "mother"}, http.StatusBadRequest},
		{"non-member", f.ws.ID.Hex(), map[string]any{"from_user_id": outsider.ID.Hex(), "to_user_id": f.a.ID.Hex(), "relation_type": "cousin"}, http.StatusBadRequest},
		{"bad from id", f.ws.ID.Hex(), map[string]any{"from_user_id": "x", "to_user_id": f.a.ID.Hex(), "relation_type": "cousin"}, http.StatusBadRequest},
		{"unknown workspace", "000000000000000000000000", map[string]any{"from_user_id": f.a.ID.Hex(), "to_user_id": f.b.ID.Hex(), "relation_type": "mother"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.WithChiURLParams(testutil.NewJSONRequest(t, http.MethodPost, "/", tt.body), "id", tt.wsID)
			rec := httptest.NewRecorder()
			h.HandleCreate(rec, req)
			testutil.AssertStatus(t, rec, tt.status)
		})
	}

	n, err := db.Collection(relationshipstore.Collection).CountDocuments(ctx, bson.M{"relation_type": "Nephew"})
	if err != nil || n != 1 {
		t.Errorf("label not stored verbatim: count=%d err=%v", n, err)
	}

	gaps, err := relationshipstore.New(db).MissingInverses(ctx, f.ws.ID)
	if err != nil {
		t.Fatalf("MissingInverses: %v", err)
	}
	if len(gaps) != 1 || gaps[0].Edge.RelationType != "Nephew" {
		t.Errorf("gaps = %+v, want only the nephew edge", gaps)
	}
}

func TestHandleDeactivate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(t, db)
	f := setupFamily(t, db)

	del := func(id string) *httptest.ResponseRecorder {
		req := testutil.WithChiURLParams(httptest.NewRequest(http.MethodDelete, "/"+id, nil), "relID", id)
		rec := httptest.NewRecorder()
		h.HandleDeactivate(rec, req)
		return rec
	}

	testutil.AssertStatus(t, del(f.edge.ID.Hex()), http.StatusOK)
	// Soft-deleted edges disappear from reads.
	testutil.AssertStatus(t, get(t, h.ServeBetween, f.ws.ID.Hex(), "?user1="+f.a.ID.Hex()+"&user2="+f.b.ID.Hex()), http.StatusNotFound)
	// Deactivating twice is not an error.
	testutil.AssertStatus(t, del(f.edge.ID.Hex()), http.StatusOK)

	testutil.AssertStatus(t, del("000000000000000000000000"), http.StatusNotFound)
	testutil.AssertStatus(t, del("nope"), http.StatusBadRequest)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	n, err := db.Collection(audit.Collection).CountDocuments(ctx, bson.M{
		"event_type":   audit.EventRelationshipDeactivated,
		"workspace_id": f.ws.ID,
	})
	if err != nil || n != 2 {
		t.Errorf("relationship_deactivated events = %d (err=%v), want 2", n, err)
	}
}

func TestRoutes(t *testing.T) {
	logger := zap.NewNop()
	h := NewHandler(nil, apierrors.NewErrorLogger(logger), nil, logger)

	rec := httptest.NewRecorder()
	Routes(h).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/not-an-id", nil))
	testutil.AssertStatus(t, rec, http.StatusBadRequest)

	rec = httptest.NewRecorder()
	WorkspaceRoutes(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/between", nil))
	testutil.AssertStatus(t, rec, http.StatusBadRequest)

	rec = httptest.NewRecorder()
	Routes(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/labels", nil))
	testutil.AssertStatus(t, rec, http.StatusOK)
	var labels []string
	testutil.DecodeData(t, testutil.DecodeEnvelope(t, rec), &labels)
	if len(labels) == 0 || labels[0] != "mother" {
		t.Errorf("labels = %v", labels)
	}
}
