// internal/app/features/relationships/types.go
package relationships

// Audit source values for relationship_created events.
const (
	sourceManual = "manual"
)

type createRequest struct {
	FromUserID   string `json:"from_user_id"`
	ToUserID     string `json:"to_user_id"`
	RelationType string `json:"relation_type"`
}
