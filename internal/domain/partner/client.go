package partner

import (
	"strings"
	"time"

	"github.com/homeops/backend/internal/domain/shared"
)

// Client is a customer of the installation business: the party a project
// is built and billed for
type Client struct {
	shared.BaseAggregateRoot
	Name     string `gorm:"type:varchar(200);not null"`
	Email    string `gorm:"type:varchar(200);index"`
	Phone    string `gorm:"type:varchar(50)"`
	Address  string `gorm:"type:text"`
	Notes    string `gorm:"type:text"`
	IsActive bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Client) TableName() string {
	return "clients"
}

// NewClient creates a new client
func NewClient(name, email, phone, address string) (*Client, error) {
	if err := validateClientName(name); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	return &Client{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Email:             strings.ToLower(email),
		Phone:             phone,
		Address:           address,
		IsActive:          true,
	}, nil
}

// Update updates the client's contact details
func (c *Client) Update(name, email, phone, address, notes string) error {
	if err := validateClientName(name); err != nil {
		return err
	}
	if err := validateEmail(email); err != nil {
		return err
	}
	c.Name = name
	c.Email = strings.ToLower(email)
	c.Phone = phone
	c.Address = address
	c.Notes = notes
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// Activate reactivates the client
func (c *Client) Activate() error {
	if c.IsActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Client is already active")
	}
	c.IsActive = true
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// Deactivate archives the client; existing projects keep the reference
func (c *Client) Deactivate() error {
	if !c.IsActive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Client is already inactive")
	}
	c.IsActive = false
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

func validateClientName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Client name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Client name cannot exceed 200 characters")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return nil
	}
	if !strings.Contains(email, "@") || len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email address")
	}
	return nil
}
