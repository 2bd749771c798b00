package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
	RoleStaff      Role = "staff"
	RoleReviewer   Role = "reviewer"
)

// ValidRoles lists every role the platform knows about.
var ValidRoles = []Role{RoleAdmin, RoleStudent, RoleInstructor, RoleStaff, RoleReviewer}

func IsValidRole(r Role) bool {
	for _, v := range ValidRoles {
		if r == v {
			return true
		}
	}
	return false
}

type User struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	UserName     string `json:"user_name" gorm:"uniqueIndex;not null;size:100" validate:"required"`
	PasswordHash string `json:"-" gorm:"not null;size:255"`

	// Roles stored as a JSONB string array; always non-empty.
	Roles datatypes.JSON `json:"roles" gorm:"type:jsonb;not null"`

	// Set when the user authenticated with a one-time password and must
	// choose a new password before doing anything else.
	MustResetPassword bool `json:"must_reset_password" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// RoleSet decodes the stored role array. A user with an undecodable or empty
// role column is treated as having no roles at all.
func (u *User) RoleSet() []Role {
	var roles []Role
	if len(u.Roles) == 0 {
		return roles
	}
	if err := json.Unmarshal(u.Roles, &roles); err != nil {
		return nil
	}
	return roles
}

// SetRoles replaces the stored role set, de-duplicating along the way.
func (u *User) SetRoles(roles []Role) error {
	seen := make(map[Role]bool, len(roles))
	deduped := make([]Role, 0, len(roles))
	for _, r := range roles {
		if !seen[r] {
			seen[r] = true
			deduped = append(deduped, r)
		}
	}
	data, err := json.Marshal(deduped)
	if err != nil {
		return err
	}
	u.Roles = data
	return nil
}

// HasRole reports set membership, never substring matching.
func (u *User) HasRole(role Role) bool {
	for _, r := range u.RoleSet() {
		if r == role {
			return true
		}
	}
	return false
}

func (u *User) HasAnyRole(roles ...Role) bool {
	for _, r := range roles {
		if u.HasRole(r) {
			return true
		}
	}
	return false
}

// AddRole grants a role idempotently.
func (u *User) AddRole(role Role) error {
	if u.HasRole(role) {
		return nil
	}
	return u.SetRoles(append(u.RoleSet(), role))
}

func (u *User) RemoveRole(role Role) error {
	roles := u.RoleSet()
	kept := make([]Role, 0, len(roles))
	for _, r := range roles {
		if r != role {
			kept = append(kept, r)
		}
	}
	return u.SetRoles(kept)
}

// InvitationCode is a single-use registration token issued by an admin. The
// roles it carries become the initial role set of the account that redeems it.
type InvitationCode struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Code      string         `json:"code" gorm:"uniqueIndex;not null;size:64"`
	Roles     datatypes.JSON `json:"roles" gorm:"type:jsonb;not null"`
	CreatedBy uint           `json:"created_by" gorm:"not null;index"`

	UsedBy *uint      `json:"used_by" gorm:"index"`
	UsedAt *time.Time `json:"used_at"`

	CreatedAt time.Time `json:"created_at"`
}

func (InvitationCode) TableName() string {
	return "invitation_codes"
}

func (c *InvitationCode) RoleSet() []Role {
	var roles []Role
	if len(c.Roles) == 0 {
		return roles
	}
	if err := json.Unmarshal(c.Roles, &roles); err != nil {
		return nil
	}
	return roles
}

// SetRoles replaces the role grant the code will confer, de-duplicating
// along the way.
func (c *InvitationCode) SetRoles(roles []Role) error {
	seen := make(map[Role]bool, len(roles))
	deduped := make([]Role, 0, len(roles))
	for _, r := range roles {
		if !seen[r] {
			seen[r] = true
			deduped = append(deduped, r)
		}
	}
	data, err := json.Marshal(deduped)
	if err != nil {
		return err
	}
	c.Roles = data
	return nil
}

// OneTimePassword is an admin-issued recovery credential. Consumed on first
// successful login, which also flags the account for a password reset.
type OneTimePassword struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	UserID    uint   `json:"user_id" gorm:"not null;index"`
	Code      string `json:"-" gorm:"not null;size:64"`
	Consumed  bool   `json:"consumed" gorm:"default:false"`
	CreatedBy uint   `json:"created_by" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}

func (OneTimePassword) TableName() string {
	return "one_time_passwords"
}
