package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Workspace is a named family group. The owner is recorded as an admin in
// Members when the workspace is created; members added later are appended.
type Workspace struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name    string             `bson:"name" json:"name"`
	NameCI  string             `bson:"name_ci" json:"-"`
	OwnerID primitive.ObjectID `bson:"owner_id" json:"owner_id"`
	Members []WorkspaceMember  `bson:"members" json:"members"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// WorkspaceMember is one entry of Workspace.Members.
type WorkspaceMember struct {
	UserID   primitive.ObjectID `bson:"user_id" json:"user_id"`
	Role     string             `bson:"role" json:"role"` // admin | member
	JoinedAt time.Time          `bson:"joined_at" json:"joined_at"`
}

// HasMember reports whether userID appears in Members.
func (w Workspace) HasMember(userID primitive.ObjectID) bool {
	for _, m := range w.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}
