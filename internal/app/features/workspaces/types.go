// internal/app/features/workspaces/types.go
package workspaces

// DefaultActivityLimit and MaxActivityLimit bound the activity page size.
const (
	DefaultActivityLimit = 50
	MaxActivityLimit     = 500
)

type createRequest struct {
	Name    string `json:"name"`
	OwnerID string `json:"owner_id"`
}

type joinRequest struct {
	UserID                string  `json:"user_id"`
	Role                  string  `json:"role"`
	InvitedBy             string  `json:"invited_by"`
	RelationshipToInviter *string `json:"relationship_to_inviter"`
}
