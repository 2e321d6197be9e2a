// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/kinnected/kinnected/internal/app/store/audit"
	"github.com/kinnected/kinnected/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destination values for Config fields.
const (
	All = "all" // MongoDB + zap
	DB  = "db"  // MongoDB only
	Log = "log" // zap only
	Off = "off"
)

// Config holds audit logging configuration.
type Config struct {
	// Account controls logging for signup, profile and settings events.
	Account string
	// Family controls logging for workspace, membership and relationship events.
	Family string
	// TrustedProxies may supply the client address via forwarding headers.
	TrustedProxies ratelimit.Proxies
}

// ValidDestination reports whether v is one of all, db, log or off.
func ValidDestination(v string) bool {
	switch v {
	case All, DB, Log, Off:
		return true
	}
	return false
}

// Logger provides convenience methods for logging audit events.
// It logs to MongoDB (via audit.Store) and to structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// clientIP is the address recorded on events; it matches the rate limiter key.
func (l *Logger) clientIP(r *http.Request) string {
	if l == nil || r == nil {
		return ""
	}
	return ratelimit.ClientIP(r, l.config.TrustedProxies)
}

func userAgent(r *http.Request) string {
	if r == nil {
		return ""
	}
	return r.UserAgent()
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}

	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.WorkspaceID != nil {
		fields = append(fields, zap.String("workspace_id", event.WorkspaceID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// A nil Logger is a no-op.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAccount:
		setting = l.config.Account
	case audit.CategoryFamily:
		setting = l.config.Family
	default:
		setting = All
	}
	if setting == "" {
		setting = All
	}
	if setting == Off {
		return
	}

	if setting == All || setting == Log {
		l.logToZap(event)
	}

	if setting == All || setting == DB {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// --- Account Events ---

// UserCreated logs a signup.
func (l *Logger) UserCreated(ctx context.Context, r *http.Request, userID primitive.ObjectID, authMethod string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAccount,
		EventType: audit.EventUserCreated,
		UserID:    &userID,
		IP:        l.clientIP(r),
		UserAgent: userAgent(r),
		Success:   true,
		Details: map[string]string{
			"auth_method": authMethod,
		},
	})
}

// CredentialsVerified logs a successful email/password check.
func (l *Logger) CredentialsVerified(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAccount,
		EventType: audit.EventCredentialsVerified,
		UserID:    &userID,
		IP:        l.clientIP(r),
		UserAgent: userAgent(r),
		Success:   true,
	})
}

// CredentialsRejected logs a failed email/password check. userID is nil
// when no user has the attempted email.
func (l *Logger) CredentialsRejected(ctx context.Context, r *http.Request, userID *primitive.ObjectID, attemptedEmail, reason string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAccount,
		EventType:     audit.EventCredentialsRejected,
		UserID:        userID,
		IP:            l.clientIP(r),
		UserAgent:     userAgent(r),
		Success:       false,
		FailureReason: reason,
		Details: map[string]string{
			"attempted_email": attemptedEmail,
		},
	})
}

// UserUpdated logs a profile edit. lookup names how the user was addressed
// (id, email or wallet).
func (l *Logger) UserUpdated(ctx context.Context, r *http.Request, userID primitive.ObjectID, lookup, fieldsChanged string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAccount,
		EventType: audit.EventUserUpdated,
		UserID:    &userID,
		IP:        l.clientIP(r),
		UserAgent: userAgent(r),
		Success:   true,
		Details: map[string]string{
			"lookup":         lookup,
			"fields_changed": fieldsChanged,
		},
	})
}

// SettingsUpdated logs a settings change.
func (l *Logger) SettingsUpdated(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAccount,
		EventType: audit.EventSettingsUpdated,
		UserID:    &userID,
		IP:        l.clientIP(r),
		UserAgent: userAgent(r),
		Success:   true,
	})
}

// MilestoneAdded logs a new timeline entry and the content id it was pinned
// under, if any.
func (l *Logger) MilestoneAdded(ctx context.Context, r *http.Request, userID primitive.ObjectID, milestoneID, cid string) {
	details := map[string]string{"milestone_id": milestoneID}
	if cid != "" {
		details["pin_cid"] = cid
	}
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAccount,
		EventType: audit.EventMilestoneAdded,
		UserID:    &userID,
		IP:        l.clientIP(r),
		UserAgent: userAgent(r),
		Success:   true,
		Details:   details,
	})
}

// MilestonePinFailed logs a milestone that was stored but could not be pinned.
func (l *Logger) MilestonePinFailed(ctx context.Context, r *http.Request, userID primitive.ObjectID, milestoneID, reason string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAccount,
		EventType:     audit.EventMilestonePinFail,
		UserID:        &userID,
		IP:            l.clientIP(r),
		UserAgent:     userAgent(r),
		Success:       false,
		FailureReason: reason,
		Details: map[string]string{
			"milestone_id": milestoneID,
		},
	})
}

// --- Family Events ---

// WorkspaceCreated logs a new workspace.
func (l *Logger) WorkspaceCreated(ctx context.Context, r *http.Request, ownerID, wsID primitive.ObjectID, name string) {
	l.Log(ctx, audit.Event{
		Category:    audit.CategoryFamily,
		EventType:   audit.EventWorkspaceCreated,
		WorkspaceID: &wsID,
		UserID:      &ownerID,
		ActorID:     &ownerID,
		IP:          l.clientIP(r),
		UserAgent:   userAgent(r),
		Success:     true,
		Details: map[string]string{
			"workspace_name": name,
		},
	})
}

// MemberJoined logs a membership. invitedBy is recorded as the actor.
func (l *Logger) MemberJoined(ctx context.Context, r *http.Request, wsID, userID primitive.ObjectID, invitedBy *primitive.ObjectID, role string) {
	l.Log(ctx, audit.Event{
		Category:    audit.CategoryFamily,
		EventType:   audit.EventMemberJoined,
		WorkspaceID: &wsID,
		UserID:      &userID,
		ActorID:     invitedBy,
		IP:          l.clientIP(r),
		UserAgent:   userAgent(r),
		Success:     true,
		Details: map[string]string{
			"role": role,
		},
	})
}

// RelationshipCreated logs a new edge. source is "invitation" for edges
// created by a join and "explicit" otherwise.
func (l *Logger) RelationshipCreated(ctx context.Context, r *http.Request, wsID, relID, fromID, toID primitive.ObjectID, relationType, source string) {
	l.Log(ctx, audit.Event{
		Category:    audit.CategoryFamily,
		EventType:   audit.EventRelationshipCreated,
		WorkspaceID: &wsID,
		UserID:      &fromID,
		IP:          l.clientIP(r),
		UserAgent:   userAgent(r),
		Success:     true,
		Details: map[string]string{
			"relationship_id": relID.Hex(),
			"to_user_id":      toID.Hex(),
			"relation_type":   relationType,
			"source":          source,
		},
	})
}

// RelationshipDeactivated logs a soft delete.
func (l *Logger) RelationshipDeactivated(ctx context.Context, r *http.Request, wsID, relID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:    audit.CategoryFamily,
		EventType:   audit.EventRelationshipDeactivated,
		WorkspaceID: &wsID,
		IP:          l.clientIP(r),
		UserAgent:   userAgent(r),
		Success:     true,
		Details: map[string]string{
			"relationship_id": relID.Hex(),
		},
	})
}
