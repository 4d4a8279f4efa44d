package model

import (
	"strings"
	"time"

	"github.com/deppfellow/tours-api/internal/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultPhoto is assigned to users who never uploaded one.
const DefaultPhoto = "default.jpg"

// User is an account. Password holds the bcrypt hash and never leaves the
// server.
type User struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name                 string             `bson:"name" json:"name" validate:"required,max=60"`
	Email                string             `bson:"email" json:"email" validate:"required,email"`
	Photo                string             `bson:"photo" json:"photo"`
	Role                 Role               `bson:"role" json:"role" validate:"required,oneof=user guide lead-guide admin"`
	Password             string             `bson:"password" json:"-" validate:"required"`
	PasswordChangedAt    *time.Time         `bson:"passwordChangedAt,omitempty" json:"passwordChangedAt,omitempty"`
	PasswordResetToken   string             `bson:"passwordResetToken,omitempty" json:"-"`
	PasswordResetExpires *time.Time         `bson:"passwordResetExpires,omitempty" json:"-"`
	Active               bool               `bson:"active" json:"-"`
	CreatedAt            time.Time          `bson:"createdAt" json:"createdAt"`
	Version              int                `bson:"__v" json:"-"`
}

// Normalize trims the name and lowercases the email.
func (u *User) Normalize() {
	trimAll(&u.Name, &u.Email, &u.Photo)
	u.Email = NormalizeEmail(u.Email)
}

// ApplyDefaults fills insert-time defaults.
func (u *User) ApplyDefaults(now time.Time) {
	if u.Role == "" {
		u.Role = RoleUser
	}
	if u.Photo == "" {
		u.Photo = DefaultPhoto
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.Active = true
	u.Normalize()
}

func (u *User) Validate() error {
	return validation.Struct(u)
}

// ChangedPasswordAfter reports whether the password was changed after a
// token issued at iat (unix seconds).
func (u *User) ChangedPasswordAfter(iat int64) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return u.PasswordChangedAt.Unix() > iat
}

// Summary is the public profile embedded in other documents.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Photo: u.Photo,
		Role:  u.Role,
	}
}

// UserSummary is the populated form of a user reference.
type UserSummary struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email,omitempty" json:"email,omitempty"`
	Photo string             `bson:"photo" json:"photo"`
	Role  Role               `bson:"role,omitempty" json:"role,omitempty"`
}

// UserPatch is the admin update of a user. Passwords cannot be patched.
type UserPatch struct {
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	Photo  *string `json:"photo"`
	Role   *Role   `json:"role"`
	Active *bool   `json:"active"`
}

// Apply writes the patch onto u and renormalizes it.
func (p *UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Photo != nil {
		u.Photo = *p.Photo
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Active != nil {
		u.Active = *p.Active
	}
	u.Normalize()
}

// Set returns the $set document for the patched fields of u.
func (p *UserPatch) Set(u *User) map[string]any {
	set := map[string]any{}
	if p.Name != nil {
		set["name"] = u.Name
	}
	if p.Email != nil {
		set["email"] = u.Email
	}
	if p.Photo != nil {
		set["photo"] = u.Photo
	}
	if p.Role != nil {
		set["role"] = u.Role
	}
	if p.Active != nil {
		set["active"] = u.Active
	}
	return set
}

// NormalizeEmail is the canonical stored form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
