package profile

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role determines which capabilities a profile holds
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// RoleFromString converts a string to a Role
func RoleFromString(s string) (Role, bool) {
	switch s {
	case "user":
		return RoleUser, true
	case "admin":
		return RoleAdmin, true
	default:
		return RoleUser, false
	}
}

// Profile represents a platform user and their public identity
type Profile struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	DisplayName  string    `json:"display_name"`
	Bio          string    `json:"bio" gorm:"type:text"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	ZipCode      string    `json:"zip_code"`
	AvatarURL    string    `json:"avatar_url"`
	Role         Role      `json:"role" gorm:"type:varchar(16);not null;default:'user'"`
	IsActive     bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName overrides the table name used by GORM
func (Profile) TableName() string {
	return "profiles"
}

// BeforeCreate sets a UUID before creating the record
func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// NewProfile creates an active profile with the user role
func NewProfile(email, passwordHash, firstName, lastName string) *Profile {
	return &Profile{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		FirstName:    firstName,
		LastName:     lastName,
		Role:         RoleUser,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
}

// IsAdmin reports whether the profile holds the admin role
func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// FullName returns the display name, falling back to first and last name
func (p *Profile) FullName() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Deactivate soft-deletes the profile. Profiles are never hard-deleted.
func (p *Profile) Deactivate() {
	p.IsActive = false
}

// Validate checks if the profile data is valid
func (p *Profile) Validate() error {
	if p.Email == "" {
		return fmt.Errorf("email is required")
	}
	if !strings.Contains(p.Email, "@") {
		return fmt.Errorf("email must have a valid format")
	}
	if p.PasswordHash == "" {
		return fmt.Errorf("password hash is required")
	}
	if _, ok := RoleFromString(string(p.Role)); !ok {
		return fmt.Errorf("invalid role: %s", p.Role)
	}
	return nil
}
