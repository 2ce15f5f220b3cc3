package profiles

import (
	"time"

	"github.com/google/uuid"
)

// Tier is the subscription tier for an account. It affects pricing and
// display only; content gating happens elsewhere.
type Tier string

const (
	TierFree       Tier = "free"
	TierSriLankan  Tier = "sri_lankan"
	TierGlobal     Tier = "global"
)

// SkillLevel is the self-reported cooking skill on a profile.
type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
	SkillExpert       SkillLevel = "expert"
)

// Profile is the application's own user record, keyed to the auth
// identity. A profile exists iff the two-step signup (identity, then
// profile) completed; callers must tolerate the transient window where an
// identity exists without a profile yet.
type Profile struct {
	ID                 uuid.UUID  `json:"id"                  db:"id"`
	Username           string     `json:"username"            db:"username"`
	FullName           string     `json:"full_name"           db:"full_name"`
	AvatarURL          string     `json:"avatar_url"          db:"avatar_url"`
	Bio                string     `json:"bio"                 db:"bio"`
	Country            string     `json:"country"             db:"country"`
	CountryCode        string     `json:"country_code"        db:"country_code"`
	SubscriptionTier   Tier       `json:"subscription_tier"   db:"subscription_tier"`
	DietaryPreferences []string   `json:"dietary_preferences" db:"dietary_preferences"`
	SkillLevel         SkillLevel `json:"skill_level"         db:"skill_level"`
	FavoriteCuisines   []string   `json:"favorite_cuisines"   db:"favorite_cuisines"`
	Points             int        `json:"points"              db:"points"`
	IsAdmin            bool       `json:"is_admin"            db:"is_admin"`
	CreatedAt          time.Time  `json:"created_at"          db:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"          db:"updated_at"`
}
