package models

// UserSettingsVersion is bumped whenever a key is added to UserSettings.
const UserSettingsVersion = 1

// Theme values.
const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

// Profile visibility values.
const (
	VisibilityPublic    = "public"
	VisibilityWorkspace = "workspace"
	VisibilityPrivate   = "private"
)

// UserSettings holds per-user preferences. Every key is explicit; stored
// documents carry Version so older shapes can be upgraded on read.
type UserSettings struct {
	Version            int    `bson:"version" json:"version"`
	Theme              string `bson:"theme" json:"theme"`
	EmailNotifications bool   `bson:"email_notifications" json:"email_notifications"`
	ProfileVisibility  string `bson:"profile_visibility" json:"profile_visibility"`
	TimelinePublic     bool   `bson:"timeline_public" json:"timeline_public"`
}

// DefaultUserSettings returns the settings a new user starts with.
func DefaultUserSettings() UserSettings {
	return UserSettings{
		Version:            UserSettingsVersion,
		Theme:              ThemeSystem,
		EmailNotifications: true,
		ProfileVisibility:  VisibilityWorkspace,
		TimelinePublic:     false,
	}
}

// Valid reports whether every enumerated key holds a known value.
func (s UserSettings) Valid() bool {
	switch s.Theme {
	case ThemeLight, ThemeDark, ThemeSystem:
	default:
		return false
	}
	switch s.ProfileVisibility {
	case VisibilityPublic, VisibilityWorkspace, VisibilityPrivate:
	default:
		return false
	}
	return true
}

// Normalized fills missing keys from the defaults and stamps the current version.
func (s UserSettings) Normalized() UserSettings {
	d := DefaultUserSettings()
	if s.Theme == "" {
		s.Theme = d.Theme
	}
	if s.ProfileVisibility == "" {
		s.ProfileVisibility = d.ProfileVisibility
	}
	s.Version = UserSettingsVersion
	return s
}
