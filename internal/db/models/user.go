package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Roles recognised by the authorizer.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Subscription tiers.
const (
	TierFree    = "free"
	TierPremium = "premium"
	TierPro     = "pro"
)

// Profile defaults applied at registration.
const (
	DefaultTimezone = "Asia/Shanghai"
	DefaultLanguage = "zh-CN"
)

// User is the principal behind every authenticated request.
// PasswordHash is never serialized.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID                    string     `bun:"id,pk,type:varchar(36)" json:"id"`
	Email                 string     `bun:"email,notnull,unique" json:"email"`
	PasswordHash          string     `bun:"password_hash,notnull" json:"-"`
	Name                  string     `bun:"name" json:"name"`
	Timezone              string     `bun:"timezone,notnull" json:"timezone"`
	Language              string     `bun:"language,notnull" json:"language"`
	Occupation            *string    `bun:"occupation" json:"occupation"`
	WorkMode              *string    `bun:"work_mode" json:"work_mode"`
	SubscriptionTier      string     `bun:"subscription_tier,notnull" json:"subscription_tier"`
	SubscriptionExpiresAt *time.Time `bun:"subscription_expires_at" json:"subscription_expires_at,omitempty"`
	Role                  string     `bun:"role,notnull" json:"role"`
	CreatedAt             time.Time  `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt             time.Time  `bun:"updated_at,notnull" json:"updated_at"`
	LastLoginAt           *time.Time `bun:"last_login_at" json:"last_login_at,omitempty"`
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
