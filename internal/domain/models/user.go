// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a person in one or more family workspaces.
//
// NOTE:
//   - Email and WalletAddress are both optional. Each is unique when present
//     (sparse unique indexes), but nothing requires that at least one is set.
//   - Workspace membership is embedded (Workspaces) and mirrored on the
//     workspace document (Workspace.Members).
type User struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email         *string            `bson:"email,omitempty" json:"email,omitempty"`
	WalletAddress *string            `bson:"wallet_address,omitempty" json:"wallet_address,omitempty"`
	PasswordHash  string             `bson:"password_hash,omitempty" json:"-"`
	AuthMethod    string             `bson:"auth_method,omitempty" json:"auth_method,omitempty"` // one of AllAuthMethods

	Name         string   `bson:"name" json:"name"`
	NameCI       string   `bson:"name_ci" json:"-"`                         // lowercase, diacritics-stripped
	Gender       string   `bson:"gender,omitempty" json:"gender,omitempty"` // male | female | ""
	ProfileImage string   `bson:"profile_image,omitempty" json:"profile_image,omitempty"`
	Occupation   string   `bson:"occupation,omitempty" json:"occupation,omitempty"`
	Bio          string   `bson:"bio,omitempty" json:"bio,omitempty"`
	Interests    []string `bson:"interests,omitempty" json:"interests,omitempty"`

	Milestones []Milestone     `bson:"milestones,omitempty" json:"milestones,omitempty"`
	Workspaces []UserWorkspace `bson:"workspaces,omitempty" json:"workspaces,omitempty"`
	Settings   UserSettings    `bson:"settings" json:"settings"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Milestone is a dated entry on a user's timeline.
// PinCID is set once the milestone has been mirrored to IPFS. PinFailedAt
// records the last failed backfill attempt and is cleared by a successful pin.
type Milestone struct {
	ID          string     `bson:"id" json:"id"`
	Date        time.Time  `bson:"date" json:"date"`
	Title       string     `bson:"title" json:"title"`
	Description string     `bson:"description,omitempty" json:"description,omitempty"`
	PinCID      string     `bson:"pin_cid,omitempty" json:"pin_cid,omitempty"`
	PinFailedAt *time.Time `bson:"pin_failed_at,omitempty" json:"-"`
}

// Workspace roles.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// UserWorkspace is one membership record on a user.
// InvitedBy and RelationshipToInviter are set together when the user joined
// through an invitation that stated how they are related to the inviter.
type UserWorkspace struct {
	WorkspaceID           primitive.ObjectID  `bson:"workspace_id" json:"workspace_id"`
	Role                  string              `bson:"role" json:"role"` // admin | member
	InvitedBy             *primitive.ObjectID `bson:"invited_by,omitempty" json:"invited_by,omitempty"`
	RelationshipToInviter *string             `bson:"relationship_to_inviter" json:"relationship_to_inviter"`
	JoinedAt              time.Time           `bson:"joined_at" json:"joined_at"`
}

// IsValidRole reports whether role is a known workspace role.
func IsValidRole(role string) bool {
	return role == RoleAdmin || role == RoleMember
}

// MilestoneRecord is the document mirrored to IPFS for a milestone.
type MilestoneRecord struct {
	UserID    string    `json:"user_id"`
	Milestone Milestone `json:"milestone"`
	PinnedAt  time.Time `json:"pinned_at"`
}

// PinName is the human-readable name a milestone is pinned under.
func (m Milestone) PinName() string {
	return "milestone-" + m.ID
}
