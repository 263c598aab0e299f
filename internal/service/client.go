package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"crm-saas-backend/internal/database/models"
	apperrors "crm-saas-backend/internal/errors"
	"crm-saas-backend/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClientService handles business logic for clients and their contacts. Every
// operation is scoped to a tenant; a record in another tenant reads as not
// found.
type ClientService struct {
	repo      repository.ClientRepositoryInterface
	validator *validator.Validate
}

// NewClientService creates a new client service
func NewClientService(repo repository.ClientRepositoryInterface, validator *validator.Validate) *ClientService {
	return &ClientService{repo: repo, validator: validator}
}

// CreateClientRequest represents the request to create a client
type CreateClientRequest struct {
	Name    string                 `json:"name" validate:"required,min=1,max=255"`
	Website string                 `json:"website,omitempty" validate:"omitempty,url"`
	Email   string                 `json:"email,omitempty" validate:"omitempty,email"`
	Phone   string                 `json:"phone,omitempty"`
	Address string                 `json:"address,omitempty"`
	Tags    map[string]interface{} `json:"tags,omitempty"`
}

// UpdateClientRequest represents the request to update a client
type UpdateClientRequest struct {
	Name     string                 `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Website  string                 `json:"website,omitempty" validate:"omitempty,url"`
	Email    string                 `json:"email,omitempty" validate:"omitempty,email"`
	Phone    string                 `json:"phone,omitempty"`
	Address  string                 `json:"address,omitempty"`
	Tags     map[string]interface{} `json:"tags,omitempty"`
	IsActive *bool                  `json:"is_active,omitempty"`
}

// CreateContactRequest represents the request to add a contact to a client
type CreateContactRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Phone     string `json:"phone,omitempty"`
	JobTitle  string `json:"job_title,omitempty" validate:"omitempty,max=100"`
	IsPrimary bool   `json:"is_primary,omitempty"`
}

// ClientResponse represents the response for client operations
type ClientResponse struct {
	ID        uuid.UUID              `json:"id"`
	TenantID  uuid.UUID              `json:"tenant_id"`
	Name      string                 `json:"name"`
	Website   string                 `json:"website,omitempty"`
	Email     string                 `json:"email,omitempty"`
	Phone     string                 `json:"phone,omitempty"`
	Address   string                 `json:"address,omitempty"`
	Tags      map[string]interface{} `json:"tags,omitempty"`
	IsActive  bool                   `json:"is_active"`
	Contacts  []ContactResponse      `json:"contacts,omitempty"`
	CreatedAt string                 `json:"created_at"`
}

// ContactResponse represents a contact in API responses
type ContactResponse struct {
	ID        uuid.UUID `json:"id"`
	ClientID  uuid.UUID `json:"client_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	JobTitle  string    `json:"job_title,omitempty"`
	IsPrimary bool      `json:"is_primary"`
}

// ClientListResponse represents a paginated list of clients
type ClientListResponse struct {
	Clients  []ClientResponse `json:"clients"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// Create creates a client for a tenant. Client names are unique per tenant.
func (s *ClientService) Create(tenantID uuid.UUID, req *CreateClientRequest) (*ClientResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	client := &models.Client{
		TenantID: tenantID,
		Name:     strings.TrimSpace(req.Name),
		Website:  req.Website,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
		Tags:     models.JSONMap(req.Tags),
		IsActive: true,
	}

	if err := s.repo.Create(client); err != nil {
		return nil, translateDuplicate(err, apperrors.ErrClientExists, "failed to create client")
	}
	return s.toResponse(client), nil
}

// GetByID retrieves a client with its contacts
func (s *ClientService) GetByID(tenantID, id uuid.UUID) (*ClientResponse, error) {
	client, err := s.repo.GetWithContacts(tenantID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return s.toResponse(client), nil
}

// GetByTenant retrieves a tenant's clients with pagination
func (s *ClientService) GetByTenant(tenantID uuid.UUID, page, pageSize int) (*ClientListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	clients, total, err := s.repo.GetByTenantID(tenantID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to get clients: %w", err)
	}

	responses := make([]ClientResponse, len(clients))
	for i := range clients {
		responses[i] = *s.toResponse(&clients[i])
	}
	return &ClientListResponse{
		Clients:  responses,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// Update updates a client
func (s *ClientService) Update(tenantID, id uuid.UUID, req *UpdateClientRequest) (*ClientResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	client, err := s.repo.GetByID(tenantID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	if req.Name != "" {
		client.Name = strings.TrimSpace(req.Name)
	}
	if req.Website != "" {
		client.Website = req.Website
	}
	if req.Email != "" {
		client.Email = req.Email
	}
	if req.Phone != "" {
		client.Phone = req.Phone
	}
	if req.Address != "" {
		client.Address = req.Address
	}
	if req.Tags != nil {
		client.Tags = models.JSONMap(req.Tags)
	}
	if req.IsActive != nil {
		client.IsActive = *req.IsActive
	}

	if err := s.repo.Update(client); err != nil {
		return nil, translateDuplicate(err, apperrors.ErrClientExists, "failed to update client")
	}
	return s.toResponse(client), nil
}

// Delete deletes a client and its contacts
func (s *ClientService) Delete(tenantID, id uuid.UUID) error {
	if err := s.repo.Delete(tenantID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrClientNotFound
		}
		return fmt.Errorf("failed to delete client: %w", err)
	}
	return nil
}

// AddContact adds a contact to a client. Contact emails are unique per
// tenant.
func (s *ClientService) AddContact(tenantID, clientID uuid.UUID, req *CreateContactRequest) (*ContactResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if _, err := s.repo.GetByID(tenantID, clientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	contact := &models.Contact{
		TenantID:  tenantID,
		ClientID:  clientID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     NormalizeEmail(req.Email),
		Phone:     req.Phone,
		JobTitle:  req.JobTitle,
		IsPrimary: req.IsPrimary,
		IsActive:  true,
	}

	if err := s.repo.CreateContact(contact); err != nil {
		return nil, translateDuplicate(err, apperrors.ErrContactExists, "failed to create contact")
	}
	return toContactResponse(contact), nil
}

func (s *ClientService) toResponse(client *models.Client) *ClientResponse {
	resp := &ClientResponse{
		ID:        client.ID,
		TenantID:  client.TenantID,
		Name:      client.Name,
		Website:   client.Website,
		Email:     client.Email,
		Phone:     client.Phone,
		Address:   client.Address,
		Tags:      client.Tags,
		IsActive:  client.IsActive,
		CreatedAt: client.CreatedAt.Format(time.RFC3339),
	}
	for i := range client.Contacts {
		resp.Contacts = append(resp.Contacts, *toContactResponse(&client.Contacts[i]))
	}
	return resp
}

func toContactResponse(contact *models.Contact) *ContactResponse {
	return &ContactResponse{
		ID:        contact.ID,
		ClientID:  contact.ClientID,
		FirstName: contact.FirstName,
		LastName:  contact.LastName,
		Email:     contact.Email,
		Phone:     contact.Phone,
		JobTitle:  contact.JobTitle,
		IsPrimary: contact.IsPrimary,
	}
}
