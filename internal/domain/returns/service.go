package returns

import (
	"context"
	"time"

	"puntoventa/internal/core/apperror"
	appctx "puntoventa/internal/core/context"
	"puntoventa/internal/core/id"
	"puntoventa/internal/core/tx"
	"puntoventa/internal/core/types"
	"puntoventa/internal/domain/catalogs/product"
	"puntoventa/internal/domain/sales"
	"puntoventa/pkg/docnumber"
	"puntoventa/pkg/logger"
)

// SaleStore is the slice of sale persistence the return flow needs.
type SaleStore interface {
	GetByID(ctx context.Context, saleID id.ID) (*sales.Sale, error)
	UpdateStatus(ctx context.Context, saleID id.ID, status sales.Status) error
}

// StockStore restores returned stock.
type StockStore interface {
	ApplyStockDelta(ctx context.Context, productID id.ID, deltaUnits int64) (*product.Product, error)
}

// AuditRecorder receives return event notifications (best-effort).
type AuditRecorder interface {
	RecordAction(ctx context.Context, entity, entityID, action string, details map[string]any)
}

// ItemInput requests the return of one sale line, in the original sale
// mode's quantity.
type ItemInput struct {
	ProductID id.ID
	Quantity  int64
}

// CreateInput carries everything needed to process a return.
type CreateInput struct {
	SaleID id.ID
	Items  []ItemInput
	Reason string
}

// Service implements return operations.
type Service struct {
	repo    Repository
	sales   SaleStore
	stock   StockStore
	txm     tx.Manager
	numbers *docnumber.Generator
	audit   AuditRecorder
	now     func() time.Time
}

func NewService(
	repo Repository,
	saleStore SaleStore,
	stock StockStore,
	txm tx.Manager,
	numbers *docnumber.Generator,
	audit AuditRecorder,
) *Service {
	return &Service{
		repo:    repo,
		sales:   saleStore,
		stock:   stock,
		txm:     txm,
		numbers: numbers,
		audit:   audit,
		now:     time.Now,
	}
}

// Create processes a return against a completed sale: it validates
// quantities against the original lines, restores stock, refunds at the
// sale-time price and marks the sale as returned, all in one transaction.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Return, error) {
	if len(in.Items) == 0 {
		return nil, apperror.NewValidation("return requires at least one item")
	}
	if in.Reason == "" {
		return nil, apperror.NewValidation("return reason is required")
	}

	sale, err := s.sales.GetByID(ctx, in.SaleID)
	if err != nil {
		return nil, err
	}
	if sale.Status != sales.StatusCompleted {
		return nil, apperror.NewInvalidTransition(string(sale.Status), string(sales.StatusReturned))
	}

	ret, err := s.buildReturn(sale, in)
	if err != nil {
		return nil, err
	}
	if actor := appctx.GetActor(ctx); actor != nil {
		ret.ProcessedBy = actor.UserID
		ret.ProcessorName = actor.Name
	}

	var lastErr error
	for attempt := 0; attempt < docnumber.MaxAttempts; attempt++ {
		ret.ReturnNumber = s.numbers.Next(docnumber.ReturnFormat())

		lastErr = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
			for _, it := range ret.Items {
				if _, err := s.stock.ApplyStockDelta(ctx, it.ProductID, it.Units); err != nil {
					return err
				}
			}
			if err := s.repo.Create(ctx, ret); err != nil {
				return err
			}
			return s.sales.UpdateStatus(ctx, sale.ID, sales.StatusReturned)
		})
		if lastErr == nil {
			break
		}
		if !apperror.IsDuplicate(lastErr) {
			return nil, lastErr
		}
		logger.Warn(ctx, "return number collision, regenerating",
			"return_number", ret.ReturnNumber, "attempt", attempt+1)
	}
	if lastErr != nil {
		return nil, apperror.NewConflict("could not allocate a unique return number")
	}

	if s.audit != nil {
		s.audit.RecordAction(ctx, "return", ret.ID.String(), "process", map[string]any{
			"returnNumber":  ret.ReturnNumber,
			"invoiceNumber": ret.InvoiceNumber,
			"refundTotal":   ret.RefundTotal.String(),
			"items":         len(ret.Items),
		})
	}
	return ret, nil
}

// buildReturn matches requested items against the original sale lines and
// computes stock and refund amounts from the sale-time snapshots.
func (s *Service) buildReturn(sale *sales.Sale, in CreateInput) (*Return, error) {
	lines := make(map[id.ID]sales.Item, len(sale.Items))
	for _, it := range sale.Items {
		lines[it.ProductID] = it
	}

	ret := &Return{
		ID:            id.New(),
		SaleID:        sale.ID,
		InvoiceNumber: sale.InvoiceNumber,
		Reason:        in.Reason,
		Status:        StatusProcessed,
		CreatedAt:     s.now(),
		UpdatedAt:     s.now(),
	}

	refund := types.Zero()
	seen := make(map[id.ID]bool, len(in.Items))
	for _, req := range in.Items {
		if req.Quantity <= 0 {
			return nil, apperror.NewValidation("return quantity must be positive")
		}
		if seen[req.ProductID] {
			return nil, apperror.NewValidation("duplicate product in return: " + req.ProductID.String())
		}
		seen[req.ProductID] = true

		line, ok := lines[req.ProductID]
		if !ok {
			return nil, apperror.NewValidation("product was not part of the sale: " + req.ProductID.String())
		}
		if req.Quantity > line.Quantity {
			return nil, apperror.NewBusinessRule(apperror.CodeBusinessRule,
				"cannot return more than was sold for "+line.ProductName)
		}

		// Restore stock with the sale-time conversion, not the current
		// catalog value: unitsPerCase may have been edited since.
		unitsPerQty := line.Units / line.Quantity
		lineRefund := line.UnitPrice.Mul(types.NewMoneyFromInt(req.Quantity))

		ret.Items = append(ret.Items, Item{
			ProductID:   line.ProductID,
			ProductCode: line.ProductCode,
			ProductName: line.ProductName,
			Mode:        line.Mode,
			Quantity:    req.Quantity,
			Units:       req.Quantity * unitsPerQty,
			UnitPrice:   line.UnitPrice,
			Refund:      lineRefund,
		})
		refund = refund.Add(lineRefund)
	}
	ret.RefundTotal = refund
	return ret, nil
}

func (s *Service) Get(ctx context.Context, returnID id.ID) (*Return, error) {
	return s.repo.GetByID(ctx, returnID)
}

func (s *Service) List(ctx context.Context, filter Filter) ([]*Return, int64, error) {
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

// ListBySale returns the returns recorded against a sale.
func (s *Service) ListBySale(ctx context.Context, saleID id.ID) ([]*Return, error) {
	return s.repo.ListBySale(ctx, saleID)
}
