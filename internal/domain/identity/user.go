package identity

import (
	"strings"
	"time"

	"github.com/homeops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Password cost for bcrypt
const bcryptCost = 12

// User is an account of the installation company's staff. Token issuance
// lives outside this service; users here exist for management and for
// resolving ownership references.
type User struct {
	shared.BaseAggregateRoot
	Username     string     `gorm:"type:varchar(100);not null;uniqueIndex"`
	Email        string     `gorm:"type:varchar(200);not null;uniqueIndex"`
	FullName     string     `gorm:"type:varchar(200)"`
	PasswordHash string     `gorm:"type:varchar(200);not null"`
	RoleID       *uuid.UUID `gorm:"type:uuid;index"`
	IsActive     bool       `gorm:"not null;default:true"`
	LastLoginAt  *time.Time
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewUser creates a new user with a bcrypt-hashed password
func NewUser(username, email, fullName, password string) (*User, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validateUserEmail(email); err != nil {
		return nil, err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	return &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Username:          strings.ToLower(username),
		Email:             strings.ToLower(email),
		FullName:          fullName,
		PasswordHash:      hash,
		IsActive:          true,
	}, nil
}

// Update updates the user's profile fields
func (u *User) Update(email, fullName string) error {
	if err := validateUserEmail(email); err != nil {
		return err
	}
	u.Email = strings.ToLower(email)
	u.FullName = fullName
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	return nil
}

// AssignRole assigns a role to the user
func (u *User) AssignRole(roleID uuid.UUID) {
	u.RoleID = &roleID
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
}

// ChangePassword replaces the stored password hash
func (u *User) ChangePassword(password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	return nil
}

// CheckPassword verifies a password against the stored hash
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// Activate reactivates the user
func (u *User) Activate() error {
	if u.IsActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "User is already active")
	}
	u.IsActive = true
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	return nil
}

// Deactivate disables the user
func (u *User) Deactivate() error {
	if !u.IsActive {
		return shared.NewDomainError("ALREADY_INACTIVE", "User is already inactive")
	}
	u.IsActive = false
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	return nil
}

// HashPassword hashes a password with bcrypt after validating its length
func HashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		// bcrypt truncates beyond 72 bytes
		return "", shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func validateUsername(username string) error {
	if username == "" {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot be empty")
	}
	if len(username) > 100 {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot exceed 100 characters")
	}
	return nil
}

func validateUserEmail(email string) error {
	if email == "" || !strings.Contains(email, "@") || len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email address")
	}
	return nil
}
