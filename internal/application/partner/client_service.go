// Package partner implements application services for clients.
package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/homeops/backend/internal/domain/partner"
	"github.com/homeops/backend/internal/domain/shared"
)

// ClientService handles client operations
type ClientService struct {
	clientRepo partner.ClientRepository
}

// NewClientService creates a new ClientService
func NewClientService(clientRepo partner.ClientRepository) *ClientService {
	return &ClientService{
		clientRepo: clientRepo,
	}
}

// Create creates a new client
func (s *ClientService) Create(ctx context.Context, req CreateClientRequest) (*ClientResponse, error) {
	client, err := partner.NewClient(req.Name, req.Email, req.Phone, req.Address)
	if err != nil {
		return nil, err
	}
	client.Notes = req.Notes
	client.CreatedBy = req.CreatedBy

	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, err
	}

	response := ToClientResponse(client)
	return &response, nil
}

// GetByID retrieves a client by ID
func (s *ClientService) GetByID(ctx context.Context, clientID uuid.UUID) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	response := ToClientResponse(client)
	return &response, nil
}

// List retrieves clients with filtering and pagination
func (s *ClientService) List(ctx context.Context, filter ClientListFilter) ([]ClientResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]any),
	}
	if filter.IsActive != nil {
		domainFilter.Filters["is_active"] = *filter.IsActive
	}

	clients, err := s.clientRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.clientRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToClientResponses(clients), total, nil
}

// Update updates a client's details
func (s *ClientService) Update(ctx context.Context, clientID uuid.UUID, req UpdateClientRequest) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	name := client.Name
	email := client.Email
	phone := client.Phone
	address := client.Address
	notes := client.Notes
	if req.Name != nil {
		name = *req.Name
	}
	if req.Email != nil {
		email = *req.Email
	}
	if req.Phone != nil {
		phone = *req.Phone
	}
	if req.Address != nil {
		address = *req.Address
	}
	if req.Notes != nil {
		notes = *req.Notes
	}
	if err := client.Update(name, email, phone, address, notes); err != nil {
		return nil, err
	}

	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, err
	}

	response := ToClientResponse(client)
	return &response, nil
}

// Activate re-enables a client
func (s *ClientService) Activate(ctx context.Context, clientID uuid.UUID) (*ClientResponse, error) {
	return s.transition(ctx, clientID, (*partner.Client).Activate)
}

// Deactivate disables a client; existing projects keep referencing it
func (s *ClientService) Deactivate(ctx context.Context, clientID uuid.UUID) (*ClientResponse, error) {
	return s.transition(ctx, clientID, (*partner.Client).Deactivate)
}

func (s *ClientService) transition(ctx context.Context, clientID uuid.UUID, op func(*partner.Client) error) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if err := op(client); err != nil {
		return nil, err
	}
	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, err
	}

	response := ToClientResponse(client)
	return &response, nil
}

// Delete removes a client
func (s *ClientService) Delete(ctx context.Context, clientID uuid.UUID) error {
	return s.clientRepo.Delete(ctx, clientID)
}
