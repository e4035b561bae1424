package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/homeops/backend/internal/domain/partner"
)

// CreateClientRequest represents a request to create a client
type CreateClientRequest struct {
	Name      string     `json:"name" binding:"required,min=1,max=200"`
	Email     string     `json:"email" binding:"omitempty,email,max=200"`
	Phone     string     `json:"phone" binding:"max=50"`
	Address   string     `json:"address" binding:"max=500"`
	Notes     string     `json:"notes"`
	CreatedBy *uuid.UUID `json:"-"`
}

// UpdateClientRequest represents a request to update a client
type UpdateClientRequest struct {
	Name    *string `json:"name" binding:"omitempty,min=1,max=200"`
	Email   *string `json:"email" binding:"omitempty,email,max=200"`
	Phone   *string `json:"phone" binding:"omitempty,max=50"`
	Address *string `json:"address" binding:"omitempty,max=500"`
	Notes   *string `json:"notes"`
}

// ClientResponse represents a client in API responses
type ClientResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Notes     string    `json:"notes"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
}

// ClientListFilter represents filter options for the client list
type ClientListFilter struct {
	Search   string `form:"search"`
	IsActive *bool  `form:"is_active"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToClientResponse converts a domain Client to ClientResponse
func ToClientResponse(c *partner.Client) ClientResponse {
	return ClientResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		Notes:     c.Notes,
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Version:   c.Version,
	}
}

// ToClientResponses converts a slice of clients
func ToClientResponses(clients []partner.Client) []ClientResponse {
	responses := make([]ClientResponse, len(clients))
	for i := range clients {
		responses[i] = ToClientResponse(&clients[i])
	}
	return responses
}
