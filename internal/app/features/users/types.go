// internal/app/features/users/types.go
package users

import (
	"strings"
	"time"

	userstore "github.com/kinnected/kinnected/internal/app/store/users"
	"github.com/kinnected/kinnected/internal/domain/models"
)

// Password length bounds for signup. bcrypt rejects inputs over 72 bytes.
const (
	MinPasswordLen = 8
	MaxPasswordLen = 72
)

// Activity page sizes for GET /{id}/activity.
const (
	DefaultActivityLimit = 50
	MaxActivityLimit     = 500
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	Email         string `json:"email"`
	WalletAddress string `json:"wallet_address"`
	Password      string `json:"password"`
	AuthMethod    string `json:"auth_method"`
	Name          string `json:"name"`
	Gender        string `json:"gender"`
	ProfileImage  string `json:"profile_image"`
}

// milestoneInput accepts pin_cid so a milestone read from GET can be sent
// back unchanged. The value is ignored; the store keeps the stored pin.
type milestoneInput struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"date"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	PinCID      string    `json:"pin_cid"`
}

func (m milestoneInput) model() models.Milestone {
	return models.Milestone{ID: m.ID, Date: m.Date, Title: m.Title, Description: m.Description}
}

type profileRequest struct {
	Name         *string           `json:"name"`
	Gender       *string           `json:"gender"`
	ProfileImage *string           `json:"profile_image"`
	Occupation   *string           `json:"occupation"`
	Bio          *string           `json:"bio"`
	Interests    *[]string         `json:"interests"`
	Milestones   *[]milestoneInput `json:"milestones"`
}

// update converts the request and returns the names of the fields it sets.
func (p profileRequest) update() (userstore.ProfileUpdate, []string) {
	var (
		upd    userstore.ProfileUpdate
		fields []string
	)
	if p.Name != nil {
		upd.Name = p.Name
		fields = append(fields, "name")
	}
	if p.Gender != nil {
		upd.Gender = p.Gender
		fields = append(fields, "gender")
	}
	if p.ProfileImage != nil {
		upd.ProfileImage = p.ProfileImage
		fields = append(fields, "profile_image")
	}
	if p.Occupation != nil {
		upd.Occupation = p.Occupation
		fields = append(fields, "occupation")
	}
	if p.Bio != nil {
		upd.Bio = p.Bio
		fields = append(fields, "bio")
	}
	if p.Interests != nil {
		upd.Interests = p.Interests
		fields = append(fields, "interests")
	}
	if p.Milestones != nil {
		ms := make([]models.Milestone, 0, len(*p.Milestones))
		for _, m := range *p.Milestones {
			ms = append(ms, m.model())
		}
		upd.Milestones = &ms
		fields = append(fields, "milestones")
	}
	return upd, fields
}

type settingsRequest struct {
	Theme              string `json:"theme"`
	EmailNotifications *bool  `json:"email_notifications"`
	ProfileVisibility  string `json:"profile_visibility"`
	TimelinePublic     *bool  `json:"timeline_public"`
}

// apply overlays the request on current. Omitted keys keep their value.
func (s settingsRequest) apply(current models.UserSettings) models.UserSettings {
	out := current
	if t := strings.TrimSpace(s.Theme); t != "" {
		out.Theme = strings.ToLower(t)
	}
	if v := strings.TrimSpace(s.ProfileVisibility); v != "" {
		out.ProfileVisibility = strings.ToLower(v)
	}
	if s.EmailNotifications != nil {
		out.EmailNotifications = *s.EmailNotifications
	}
	if s.TimelinePublic != nil {
		out.TimelinePublic = *s.TimelinePublic
	}
	return out
}
