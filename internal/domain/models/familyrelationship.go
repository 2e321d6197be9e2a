package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FamilyRelationship is a directed kinship edge inside one workspace.
// It reads "FromUserID is the RelationType of ToUserID": an edge
// {from: B, to: A, relation_type: "daughter"} says B is A's daughter.
//
// The reverse direction is a separate document and is never created
// implicitly. IsActive=false marks a soft-deleted edge.
type FamilyRelationship struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkspaceID  primitive.ObjectID `bson:"workspace_id" json:"workspace_id"`
	FromUserID   primitive.ObjectID `bson:"from_user_id" json:"from_user_id"`
	ToUserID     primitive.ObjectID `bson:"to_user_id" json:"to_user_id"`
	RelationType string             `bson:"relation_type" json:"relation_type"`
	IsActive     bool               `bson:"is_active" json:"is_active"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
