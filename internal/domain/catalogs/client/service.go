package client

import (
	"context"
	"time"

	"puntoventa/internal/core/apperror"
	"puntoventa/internal/core/id"
	"puntoventa/internal/core/types"
)

// AuditRecorder receives change notifications (best-effort).
type AuditRecorder interface {
	RecordCreate(ctx context.Context, entity, entityID string, after any)
	RecordUpdate(ctx context.Context, entity, entityID string, before, after any)
	RecordDelete(ctx context.Context, entity, entityID string, before any)
}

// CreateInput carries all fields needed to register a client.
type CreateInput struct {
	Cedula  string
	Name    string
	Phone   string
	Email   string
	Address string
}

// UpdateInput carries all updatable fields plus the expected version.
type UpdateInput struct {
	Name    string
	Phone   string
	Email   string
	Address string
	Active  bool
	Version int
}

// Service implements client registry operations.
type Service struct {
	repo  Repository
	audit AuditRecorder
}

func NewService(repo Repository, audit AuditRecorder) *Service {
	return &Service{repo: repo, audit: audit}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Client, error) {
	c := &Client{
		ID:      id.New(),
		Cedula:  NormalizeCedula(in.Cedula),
		Name:    in.Name,
		Phone:   in.Phone,
		Email:   in.Email,
		Address: in.Address,
		Active:  true,
		Version: 1,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if existing, err := s.repo.GetByCedula(ctx, c.Cedula); err == nil && existing != nil {
		return nil, apperror.NewDuplicate("client", "cedula", c.Cedula)
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.audit.RecordCreate(ctx, "client", c.Cedula, c)
	return c, nil
}

func (s *Service) Update(ctx context.Context, clientID id.ID, in UpdateInput) (*Client, error) {
	c, err := s.repo.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if c.Version != in.Version {
		return nil, apperror.NewConflict("client was modified by another operation")
	}
	before := *c

	c.Name = in.Name
	c.Phone = in.Phone
	c.Email = in.Email
	c.Address = in.Address
	c.Active = in.Active

	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	s.audit.RecordUpdate(ctx, "client", c.Cedula, &before, c)
	return c, nil
}

func (s *Service) Get(ctx context.Context, clientID id.ID) (*Client, error) {
	return s.repo.GetByID(ctx, clientID)
}

func (s *Service) GetByCedula(ctx context.Context, cedula string) (*Client, error) {
	return s.repo.GetByCedula(ctx, NormalizeCedula(cedula))
}

func (s *Service) List(ctx context.Context, filter Filter) ([]*Client, int64, error) {
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *Service) Delete(ctx context.Context, clientID id.ID) error {
	c, err := s.repo.GetByID(ctx, clientID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, clientID); err != nil {
		return err
	}
	s.audit.RecordDelete(ctx, "client", c.Cedula, c)
	return nil
}

// RecordPurchase updates purchase history after a completed sale.
// Unknown cedulas are ignored: walk-in customers are not registered.
func (s *Service) RecordPurchase(ctx context.Context, cedula string, total types.Money, at time.Time) error {
	cedula = NormalizeCedula(cedula)
	if cedula == "" {
		return nil
	}
	return s.repo.AddPurchase(ctx, cedula, total, at)
}
