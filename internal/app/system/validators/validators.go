// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/kinnected/kinnected/internal/app/system/kinship"
	"github.com/kinnected/kinnected/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	// helper: ensure collection exists (with truthful logging) and then validator (if provided)
	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			// DocumentDB or other deployments may not support collMod/validators.
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("users", usersSchema())
	ensure("workspaces", workspacesSchema())
	ensure("familyrelationships", familyRelationshipsSchema())

	// Written by the audit logger; no validator.
	ensure("audit_events", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

func roleEnum() bson.M {
	return bson.M{"enum": bson.A{models.RoleAdmin, models.RoleMember}}
}

// relationEnum lists every accepted relation label spelling.
func relationEnum() bson.A {
	out := bson.A{}
	for _, v := range kinship.AllowedValues() {
		out = append(out, v)
	}
	return out
}

func authMethodEnum() bson.A {
	out := bson.A{}
	for _, m := range models.AllAuthMethods {
		out = append(out, m)
	}
	return out
}

func usersSchema() bson.M {
	nullableRelation := append(relationEnum(), nil)

	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "name_ci"},
			"properties": bson.M{
				"name":           nonBlank,
				"name_ci":        nonBlank,
				"email":          bson.M{"bsonType": bson.A{"string", "null"}},
				"wallet_address": bson.M{"bsonType": bson.A{"string", "null"}},
				"password_hash":  bson.M{"bsonType": "string"},
				"auth_method":    bson.M{"enum": authMethodEnum()},
				"gender":         bson.M{"enum": bson.A{"male", "female"}},
				"interests":      bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}},
				"milestones": bson.M{
					"bsonType": "array",
					"items": bson.M{
						"bsonType": "object",
						"required": bson.A{"id", "title"},
						"properties": bson.M{
							"id":    bson.M{"bsonType": "string"},
							"title": nonBlank,
							"date":  bson.M{"bsonType": "date"},
						},
					},
				},
				"workspaces": bson.M{
					"bsonType": "array",
					"items": bson.M{
						"bsonType": "object",
						"required": bson.A{"workspace_id", "role"},
						"properties": bson.M{
							"workspace_id":            bson.M{"bsonType": "objectId"},
							"role":                    roleEnum(),
							"invited_by":              bson.M{"bsonType": bson.A{"objectId", "null"}},
							"relationship_to_inviter": bson.M{"enum": nullableRelation},
						},
					},
				},
				"settings": bson.M{
					"bsonType": "object",
					"properties": bson.M{
						"theme":              bson.M{"enum": bson.A{models.ThemeLight, models.ThemeDark, models.ThemeSystem}},
						"profile_visibility": bson.M{"enum": bson.A{models.VisibilityPublic, models.VisibilityWorkspace, models.VisibilityPrivate}},
					},
				},
			},
		},
	}
}

func workspacesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "owner_id"},
			"properties": bson.M{
				"name":     nonBlank,
				"owner_id": bson.M{"bsonType": "objectId"},
				"members": bson.M{
					"bsonType": "array",
					"items": bson.M{
						"bsonType": "object",
						"required": bson.A{"user_id", "role"},
						"properties": bson.M{
							"user_id": bson.M{"bsonType": "objectId"},
							"role":    roleEnum(),
						},
					},
				},
			},
		},
	}
}

func familyRelationshipsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"workspace_id", "from_user_id", "to_user_id", "relation_type"},
			"properties": bson.M{
				"workspace_id":  bson.M{"bsonType": "objectId"},
				"from_user_id":  bson.M{"bsonType": "objectId"},
				"to_user_id":    bson.M{"bsonType": "objectId"},
				"relation_type": bson.M{"enum": relationEnum()},
				"is_active":     bson.M{"bsonType": "bool"},
				"created_at":    bson.M{"bsonType": "date"},
				"updated_at":    bson.M{"bsonType": "date"},
			},
		},
	}
}
