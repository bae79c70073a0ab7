package crm

import (
	"context"

	"github.com/coachpoint/backend/internal/domain/crm"
	"github.com/coachpoint/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ClientService handles client-related business operations
type ClientService struct {
	clientRepo crm.ClientRepository
}

// NewClientService creates a new ClientService
func NewClientService(clientRepo crm.ClientRepository) *ClientService {
	return &ClientService{
		clientRepo: clientRepo,
	}
}

// Create creates a new client
func (s *ClientService) Create(ctx context.Context, tenantID uuid.UUID, req CreateClientRequest) (*ClientResponse, error) {
	exists, err := s.clientRepo.ExistsByCode(ctx, tenantID, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Client with this code already exists")
	}

	client, err := crm.NewClient(tenantID, req.Code, req.Name)
	if err != nil {
		return nil, err
	}

	if req.Email != "" || req.Phone != "" {
		if err := client.UpdateContact(req.Name, req.Email, req.Phone); err != nil {
			return nil, err
		}
	}
	if req.CoachModel != "" {
		if err := client.SetCoachModel(req.CoachModel); err != nil {
			return nil, err
		}
	}
	if req.Notes != "" {
		client.SetNotes(req.Notes)
	}

	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, err
	}

	return toClientResponse(client), nil
}

// Get retrieves a client by ID
func (s *ClientService) Get(ctx context.Context, tenantID, id uuid.UUID) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return toClientResponse(client), nil
}

// List retrieves clients for a tenant with pagination
func (s *ClientService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[ClientResponse], error) {
	clients, err := s.clientRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}

	total, err := s.clientRepo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}

	items := make([]ClientResponse, 0, len(clients))
	for i := range clients {
		items = append(items, *toClientResponse(&clients[i]))
	}

	result := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &result, nil
}

// Update updates a client's details
func (s *ClientService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateClientRequest) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	name := client.Name
	if req.Name != nil {
		name = *req.Name
	}
	email := client.Email
	if req.Email != nil {
		email = *req.Email
	}
	phone := client.Phone
	if req.Phone != nil {
		phone = *req.Phone
	}
	if err := client.UpdateContact(name, email, phone); err != nil {
		return nil, err
	}

	if req.CoachModel != nil {
		if err := client.SetCoachModel(*req.CoachModel); err != nil {
			return nil, err
		}
	}
	if req.Notes != nil {
		client.SetNotes(*req.Notes)
	}

	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, err
	}

	return toClientResponse(client), nil
}

// Activate promotes a client to active status
func (s *ClientService) Activate(ctx context.Context, tenantID, id uuid.UUID) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := client.Activate(); err != nil {
		return nil, err
	}

	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, err
	}

	return toClientResponse(client), nil
}

// Archive archives a client and revokes their portal access
func (s *ClientService) Archive(ctx context.Context, tenantID, id uuid.UUID) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := client.Archive(); err != nil {
		return nil, err
	}

	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, err
	}

	return toClientResponse(client), nil
}

// SetPortalAccess grants or revokes the client's portal login
func (s *ClientService) SetPortalAccess(ctx context.Context, tenantID, id uuid.UUID, enabled bool) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := client.SetPortalAccess(enabled); err != nil {
		return nil, err
	}

	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, err
	}

	return toClientResponse(client), nil
}

// RecordCharge adds a charge to the client's account
func (s *ClientService) RecordCharge(ctx context.Context, tenantID, id uuid.UUID, req RecordChargeRequest) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := client.AddCharge(req.Amount); err != nil {
		return nil, err
	}

	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, err
	}

	return toClientResponse(client), nil
}

// RecordPayment applies a payment to the client's account
func (s *ClientService) RecordPayment(ctx context.Context, tenantID, id uuid.UUID, req RecordChargeRequest) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := client.ApplyPayment(req.Amount); err != nil {
		return nil, err
	}

	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, err
	}

	return toClientResponse(client), nil
}
