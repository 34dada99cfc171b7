package product

import (
	"context"

	"puntoventa/internal/core/apperror"
	"puntoventa/internal/core/id"
	"puntoventa/internal/core/types"
	"puntoventa/pkg/logger"
)

// AuditRecorder receives change notifications. Implementations must be
// best-effort: recording never blocks or fails the business operation.
type AuditRecorder interface {
	RecordCreate(ctx context.Context, entity, entityID string, after any)
	RecordUpdate(ctx context.Context, entity, entityID string, before, after any)
	RecordDelete(ctx context.Context, entity, entityID string, before any)
	RecordAction(ctx context.Context, entity, entityID, action string, details map[string]any)
}

// Hook runs custom logic around catalog lifecycle events.
type Hook func(ctx context.Context, p *Product) error

// HookRegistry holds lifecycle hooks for the product service.
type HookRegistry struct {
	beforeCreate []Hook
	afterCreate  []Hook
	beforeUpdate []Hook
	afterUpdate  []Hook
	beforeDelete []Hook
}

func NewHookRegistry() *HookRegistry { return &HookRegistry{} }

func (r *HookRegistry) BeforeCreate(h Hook) { r.beforeCreate = append(r.beforeCreate, h) }
func (r *HookRegistry) AfterCreate(h Hook)  { r.afterCreate = append(r.afterCreate, h) }
func (r *HookRegistry) BeforeUpdate(h Hook) { r.beforeUpdate = append(r.beforeUpdate, h) }
func (r *HookRegistry) AfterUpdate(h Hook)  { r.afterUpdate = append(r.afterUpdate, h) }
func (r *HookRegistry) BeforeDelete(h Hook) { r.beforeDelete = append(r.beforeDelete, h) }

func runHooks(ctx context.Context, hooks []Hook, p *Product) error {
	for _, h := range hooks {
		if err := h(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// CreateInput carries all fields needed to create a product.
type CreateInput struct {
	Code        string
	Barcode     string
	Name        string
	Category    string
	Brand       string
	Description string

	StockCases   int64
	LooseUnits   int64
	UnitsPerCase int64
	MinStock     int64

	UnitPrice types.Money
	CasePrice types.Money
	UnitCost  types.Money
	CaseCost  types.Money

	SaleMode SaleMode
}

// UpdateInput carries all updatable fields plus the expected version for
// optimistic locking. Stock is not updated here; use Restock or sales.
type UpdateInput struct {
	Code        string
	Barcode     string
	Name        string
	Category    string
	Brand       string
	Description string

	UnitsPerCase int64
	MinStock     int64

	UnitPrice types.Money
	CasePrice types.Money
	UnitCost  types.Money
	CaseCost  types.Money

	SaleMode SaleMode
	Active   bool

	Version int
}

// RestockInput describes an incoming stock adjustment.
type RestockInput struct {
	Cases int64
	Units int64
	Note  string
}

// Result bundles the product with validation warnings worth surfacing
// to the caller.
type Result struct {
	Product  *Product
	Warnings []string
}

// Service implements product catalog operations.
type Service struct {
	repo  Repository
	audit AuditRecorder
	hooks *HookRegistry
}

func NewService(repo Repository, audit AuditRecorder) *Service {
	return &Service{
		repo:  repo,
		audit: audit,
		hooks: NewHookRegistry(),
	}
}

// Hooks exposes the lifecycle hook registry.
func (s *Service) Hooks() *HookRegistry { return s.hooks }

func (s *Service) Create(ctx context.Context, in CreateInput) (*Result, error) {
	p := &Product{
		ID:           id.New(),
		Code:         in.Code,
		Barcode:      in.Barcode,
		Name:         in.Name,
		Category:     in.Category,
		Brand:        in.Brand,
		Description:  in.Description,
		StockCases:   in.StockCases,
		LooseUnits:   in.LooseUnits,
		UnitsPerCase: in.UnitsPerCase,
		MinStock:     in.MinStock,
		UnitPrice:    in.UnitPrice,
		CasePrice:    in.CasePrice,
		UnitCost:     in.UnitCost,
		CaseCost:     in.CaseCost,
		SaleMode:     in.SaleMode,
		Active:       true,
		Version:      1,
	}

	warnings, err := p.Validate()
	if err != nil {
		return nil, err
	}
	s.logWarnings(ctx, p, warnings)

	if err := runHooks(ctx, s.hooks.beforeCreate, p); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	if err := runHooks(ctx, s.hooks.afterCreate, p); err != nil {
		return nil, err
	}

	s.audit.RecordCreate(ctx, "product", p.ID.String(), p)
	return &Result{Product: p, Warnings: warnings}, nil
}

func (s *Service) Update(ctx context.Context, productID id.ID, in UpdateInput) (*Result, error) {
	p, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.Version != in.Version {
		return nil, apperror.NewConflict("product was modified by another operation")
	}
	before := *p

	p.Code = in.Code
	p.Barcode = in.Barcode
	p.Name = in.Name
	p.Category = in.Category
	p.Brand = in.Brand
	p.Description = in.Description
	p.UnitsPerCase = in.UnitsPerCase
	p.MinStock = in.MinStock
	p.UnitPrice = in.UnitPrice
	p.CasePrice = in.CasePrice
	p.UnitCost = in.UnitCost
	p.CaseCost = in.CaseCost
	p.SaleMode = in.SaleMode
	p.Active = in.Active

	warnings, err := p.Validate()
	if err != nil {
		return nil, err
	}
	s.logWarnings(ctx, p, warnings)

	if err := runHooks(ctx, s.hooks.beforeUpdate, p); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	if err := runHooks(ctx, s.hooks.afterUpdate, p); err != nil {
		return nil, err
	}

	s.audit.RecordUpdate(ctx, "product", p.ID.String(), &before, p)
	return &Result{Product: p, Warnings: warnings}, nil
}

func (s *Service) Get(ctx context.Context, productID id.ID) (*Product, error) {
	return s.repo.GetByID(ctx, productID)
}

func (s *Service) GetByCode(ctx context.Context, code string) (*Product, error) {
	return s.repo.GetByCode(ctx, code)
}

func (s *Service) List(ctx context.Context, filter Filter) ([]*Product, int64, error) {
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

func (s *Service) Delete(ctx context.Context, productID id.ID) error {
	p, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if err := runHooks(ctx, s.hooks.beforeDelete, p); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, productID); err != nil {
		return err
	}
	s.audit.RecordDelete(ctx, "product", productID.String(), p)
	return nil
}

// Restock adds incoming stock expressed as cases plus loose units.
func (s *Service) Restock(ctx context.Context, productID id.ID, in RestockInput) (*Product, error) {
	if in.Cases < 0 || in.Units < 0 {
		return nil, apperror.NewValidation("restock quantities cannot be negative")
	}
	if in.Cases == 0 && in.Units == 0 {
		return nil, apperror.NewValidation("restock requires a positive quantity")
	}

	p, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	upc, fellBack := p.NormalizedUnitsPerCase()
	if fellBack {
		logger.Warn(ctx, "unitsPerCase not set, assuming 1 unit per case",
			"product_id", p.ID.String(), "product_name", p.Name)
	}
	deltaUnits := in.Cases*upc + in.Units

	updated, err := s.repo.ApplyStockDelta(ctx, productID, deltaUnits)
	if err != nil {
		return nil, err
	}

	s.audit.RecordAction(ctx, "product", productID.String(), "restock", map[string]any{
		"cases":      in.Cases,
		"units":      in.Units,
		"deltaUnits": deltaUnits,
		"note":       in.Note,
	})
	return updated, nil
}

func (s *Service) logWarnings(ctx context.Context, p *Product, warnings []string) {
	for _, w := range warnings {
		logger.Warn(ctx, "product validation warning",
			"product_code", p.Code, "product_name", p.Name, "warning", w)
	}
}
