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

// LeadService handles business logic for the lead pipeline
type LeadService struct {
	repo      repository.LeadRepositoryInterface
	validator *validator.Validate
}

// NewLeadService creates a new lead service
func NewLeadService(repo repository.LeadRepositoryInterface, validator *validator.Validate) *LeadService {
	return &LeadService{repo: repo, validator: validator}
}

// CreateLeadRequest represents the request to create a lead
type CreateLeadRequest struct {
	FirstName      string     `json:"first_name" validate:"required,max=100"`
	LastName       string     `json:"last_name" validate:"required,max=100"`
	Email          string     `json:"email,omitempty" validate:"omitempty,email"`
	Phone          string     `json:"phone,omitempty"`
	Company        string     `json:"company,omitempty" validate:"omitempty,max=255"`
	Source         string     `json:"source,omitempty" validate:"omitempty,max=100"`
	EstimatedValue float64    `json:"estimated_value,omitempty" validate:"omitempty,gte=0"`
	Notes          string     `json:"notes,omitempty"`
	AssignedToID   *uuid.UUID `json:"assigned_to_id,omitempty"`
}

// UpdateLeadRequest represents the request to update a lead
type UpdateLeadRequest struct {
	FirstName      string     `json:"first_name,omitempty" validate:"omitempty,max=100"`
	LastName       string     `json:"last_name,omitempty" validate:"omitempty,max=100"`
	Email          string     `json:"email,omitempty" validate:"omitempty,email"`
	Phone          string     `json:"phone,omitempty"`
	Company        string     `json:"company,omitempty" validate:"omitempty,max=255"`
	Status         string     `json:"status,omitempty"`
	Source         string     `json:"source,omitempty" validate:"omitempty,max=100"`
	EstimatedValue *float64   `json:"estimated_value,omitempty" validate:"omitempty,gte=0"`
	Notes          string     `json:"notes,omitempty"`
	AssignedToID   *uuid.UUID `json:"assigned_to_id,omitempty"`
}

// LeadResponse represents the response for lead operations
type LeadResponse struct {
	ID                uuid.UUID  `json:"id"`
	TenantID          uuid.UUID  `json:"tenant_id"`
	FirstName         string     `json:"first_name"`
	LastName          string     `json:"last_name"`
	Email             string     `json:"email,omitempty"`
	Phone             string     `json:"phone,omitempty"`
	Company           string     `json:"company,omitempty"`
	Status            string     `json:"status"`
	Source            string     `json:"source,omitempty"`
	EstimatedValue    float64    `json:"estimated_value"`
	Notes             string     `json:"notes,omitempty"`
	AssignedToID      *uuid.UUID `json:"assigned_to_id,omitempty"`
	ConvertedClientID *uuid.UUID `json:"converted_client_id,omitempty"`
	CreatedAt         string     `json:"created_at"`
}

// LeadListResponse represents a paginated list of leads
type LeadListResponse struct {
	Leads    []LeadResponse `json:"leads"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// Create creates a lead in status "new"
func (s *LeadService) Create(tenantID uuid.UUID, req *CreateLeadRequest) (*LeadResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	lead := &models.Lead{
		TenantID:       tenantID,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		Company:        req.Company,
		Status:         models.LeadStatusNew,
		Source:         req.Source,
		EstimatedValue: req.EstimatedValue,
		Notes:          req.Notes,
		AssignedToID:   req.AssignedToID,
	}

	if err := s.repo.Create(lead); err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}
	return s.toResponse(lead), nil
}

// GetByID retrieves a lead
func (s *LeadService) GetByID(tenantID, id uuid.UUID) (*LeadResponse, error) {
	lead, err := s.repo.GetByID(tenantID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrLeadNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return s.toResponse(lead), nil
}

// GetByTenant retrieves a tenant's leads, optionally filtered by status
func (s *LeadService) GetByTenant(tenantID uuid.UUID, status string, page, pageSize int) (*LeadListResponse, error) {
	if status != "" && !models.ValidLeadStatus(models.LeadStatus(status)) {
		return nil, apperrors.ErrInvalidLeadStatus
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	leads, total, err := s.repo.GetByTenantID(tenantID, models.LeadStatus(status), pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to get leads: %w", err)
	}

	responses := make([]LeadResponse, len(leads))
	for i := range leads {
		responses[i] = *s.toResponse(&leads[i])
	}
	return &LeadListResponse{
		Leads:    responses,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// Update updates a lead. A converted lead is frozen.
func (s *LeadService) Update(tenantID, id uuid.UUID, req *UpdateLeadRequest) (*LeadResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	lead, err := s.repo.GetByID(tenantID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrLeadNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	if lead.Status == models.LeadStatusConverted {
		return nil, apperrors.ErrLeadAlreadyConverted
	}

	if req.Status != "" {
		status := models.LeadStatus(req.Status)
		if !models.ValidLeadStatus(status) || status == models.LeadStatusConverted {
			return nil, apperrors.ErrInvalidLeadStatus
		}
		lead.Status = status
	}
	if req.FirstName != "" {
		lead.FirstName = req.FirstName
	}
	if req.LastName != "" {
		lead.LastName = req.LastName
	}
	if req.Email != "" {
		lead.Email = req.Email
	}
	if req.Phone != "" {
		lead.Phone = req.Phone
	}
	if req.Company != "" {
		lead.Company = req.Company
	}
	if req.Source != "" {
		lead.Source = req.Source
	}
	if req.EstimatedValue != nil {
		lead.EstimatedValue = *req.EstimatedValue
	}
	if req.Notes != "" {
		lead.Notes = req.Notes
	}
	if req.AssignedToID != nil {
		lead.AssignedToID = req.AssignedToID
	}

	if err := s.repo.Update(lead); err != nil {
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}
	return s.toResponse(lead), nil
}

// Convert turns a qualified lead into a client. The new client inherits the
// lead's company name, or the person's name when no company was captured.
func (s *LeadService) Convert(tenantID, id uuid.UUID) (*LeadResponse, *ClientResponse, error) {
	lead, err := s.repo.GetByID(tenantID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.ErrLeadNotFound
		}
		return nil, nil, fmt.Errorf("failed to get lead: %w", err)
	}

	if lead.Status == models.LeadStatusConverted {
		return nil, nil, apperrors.ErrLeadAlreadyConverted
	}
	if lead.Status == models.LeadStatusLost {
		return nil, nil, apperrors.ErrInvalidLeadStatus
	}

	name := strings.TrimSpace(lead.Company)
	if name == "" {
		name = strings.TrimSpace(lead.FirstName + " " + lead.LastName)
	}

	client := &models.Client{
		TenantID: tenantID,
		Name:     name,
		Email:    lead.Email,
		Phone:    lead.Phone,
		IsActive: true,
	}

	if err := s.repo.ConvertToClient(lead, client); err != nil {
		return nil, nil, translateDuplicate(err, apperrors.ErrClientExists, "failed to convert lead")
	}

	lead.Status = models.LeadStatusConverted
	lead.ConvertedClientID = &client.ID

	clientResp := &ClientResponse{
		ID:        client.ID,
		TenantID:  client.TenantID,
		Name:      client.Name,
		Email:     client.Email,
		Phone:     client.Phone,
		IsActive:  client.IsActive,
		CreatedAt: client.CreatedAt.Format(time.RFC3339),
	}
	return s.toResponse(lead), clientResp, nil
}

// Delete deletes a lead
func (s *LeadService) Delete(tenantID, id uuid.UUID) error {
	if err := s.repo.Delete(tenantID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrLeadNotFound
		}
		return fmt.Errorf("failed to delete lead: %w", err)
	}
	return nil
}

func (s *LeadService) toResponse(lead *models.Lead) *LeadResponse {
	return &LeadResponse{
		ID:                lead.ID,
		TenantID:          lead.TenantID,
		FirstName:         lead.FirstName,
		LastName:          lead.LastName,
		Email:             lead.Email,
		Phone:             lead.Phone,
		Company:           lead.Company,
		Status:            string(lead.Status),
		Source:            lead.Source,
		EstimatedValue:    lead.EstimatedValue,
		Notes:             lead.Notes,
		AssignedToID:      lead.AssignedToID,
		ConvertedClientID: lead.ConvertedClientID,
		CreatedAt:         lead.CreatedAt.Format(time.RFC3339),
	}
}
