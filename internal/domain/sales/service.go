package sales

import (
	"context"
	"time"

	"puntoventa/internal/core/apperror"
	appctx "puntoventa/internal/core/context"
	"puntoventa/internal/core/id"
	"puntoventa/internal/core/tx"
	"puntoventa/internal/core/types"
	"puntoventa/internal/domain/catalogs/product"
	"puntoventa/pkg/docnumber"
	"puntoventa/pkg/logger"
)

// PurchaseRecorder updates a client's purchase history after checkout.
// Failures here must never fail the sale.
type PurchaseRecorder interface {
	RecordPurchase(ctx context.Context, cedula string, total types.Money, at time.Time) error
}

// AuditRecorder receives sale event notifications (best-effort).
type AuditRecorder interface {
	RecordAction(ctx context.Context, entity, entityID, action string, details map[string]any)
}

// CheckoutItem is one requested cart line.
type CheckoutItem struct {
	ProductID id.ID
	Mode      product.SaleMode
	Quantity  int64
}

// CheckoutInput carries everything needed to complete a sale.
type CheckoutInput struct {
	Items           []CheckoutItem
	DiscountPercent types.Money
	TaxPercent      types.Money
	ClientCedula    string
	ClientName      string
	Notes           string
}

// Service implements sale operations.
type Service struct {
	repo     Repository
	products product.Repository
	txm      tx.Manager
	numbers  *docnumber.Generator
	clients  PurchaseRecorder
	audit    AuditRecorder
	now      func() time.Time
}

func NewService(
	repo Repository,
	products product.Repository,
	txm tx.Manager,
	numbers *docnumber.Generator,
	clients PurchaseRecorder,
	audit AuditRecorder,
) *Service {
	return &Service{
		repo:     repo,
		products: products,
		txm:      txm,
		numbers:  numbers,
		clients:  clients,
		audit:    audit,
		now:      time.Now,
	}
}

// Checkout completes a sale: it validates the cart, snapshots prices,
// enforces the discount cap, decrements stock and persists the sale in
// one transaction. Stock decrements are conditional at the storage level,
// so concurrent checkouts can never oversell.
func (s *Service) Checkout(ctx context.Context, in CheckoutInput) (*Sale, error) {
	if err := validateCheckoutInput(in); err != nil {
		return nil, err
	}

	sale, err := s.buildSale(ctx, in)
	if err != nil {
		return nil, err
	}

	if err := ValidateDiscount(in.DiscountPercent, sale.Subtotal, sale.TotalCost()); err != nil {
		return nil, err
	}
	s.applyTotals(sale, in)

	if actor := appctx.GetActor(ctx); actor != nil {
		sale.SellerID = actor.UserID
		sale.SellerName = actor.Name
	}

	// The invoice number is random-suffixed; a unique constraint catches
	// collisions and the whole transaction is retried with a fresh number.
	var lastErr error
	for attempt := 0; attempt < docnumber.MaxAttempts; attempt++ {
		sale.InvoiceNumber = s.numbers.Next(docnumber.InvoiceFormat())

		lastErr = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
			for _, it := range sale.Items {
				if _, err := s.products.ApplyStockDelta(ctx, it.ProductID, -it.Units); err != nil {
					return err
				}
			}
			return s.repo.Create(ctx, sale)
		})
		if lastErr == nil {
			break
		}
		if !apperror.IsDuplicate(lastErr) {
			return nil, lastErr
		}
		logger.Warn(ctx, "invoice number collision, regenerating",
			"invoice_number", sale.InvoiceNumber, "attempt", attempt+1)
	}
	if lastErr != nil {
		return nil, apperror.NewConflict("could not allocate a unique invoice number")
	}

	s.afterCheckout(ctx, sale)
	return sale, nil
}

func validateCheckoutInput(in CheckoutInput) error {
	if len(in.Items) == 0 {
		return apperror.NewValidation("sale requires at least one item")
	}
	// The same product may appear once per sale mode (cases and loose
	// units are distinct cart lines), never twice in the same mode.
	type cartKey struct {
		productID id.ID
		mode      product.SaleMode
	}
	seen := make(map[cartKey]bool, len(in.Items))
	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return apperror.NewValidation("item quantity must be positive")
		}
		key := cartKey{it.ProductID, it.Mode}
		if seen[key] {
			return apperror.NewValidation("duplicate cart line: " + it.ProductID.String() + " (" + string(it.Mode) + ")")
		}
		seen[key] = true
	}
	if in.TaxPercent.IsNegative() {
		return apperror.NewValidation("tax cannot be negative")
	}
	return nil
}

// buildSale loads products and snapshots names, prices and costs into
// sale lines.
func (s *Service) buildSale(ctx context.Context, in CheckoutInput) (*Sale, error) {
	sale := &Sale{
		ID:           id.New(),
		ClientCedula: normalizeCedula(in.ClientCedula),
		ClientName:   in.ClientName,
		Status:       StatusCompleted,
		Notes:        in.Notes,
		CreatedAt:    s.now(),
		UpdatedAt:    s.now(),
	}

	subtotal := types.Zero()
	// A product can appear on several lines (one per mode); availability
	// is checked against the combined unit requirement.
	requested := make(map[id.ID]int64, len(in.Items))
	for _, line := range in.Items {
		p, err := s.products.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if !p.Active {
			return nil, apperror.NewBusinessRule(apperror.CodeBusinessRule, "product is inactive: "+p.Name)
		}

		price, err := p.ResolvePrice(line.Mode)
		if err != nil {
			return nil, err
		}
		if _, fellBack := p.NormalizedUnitsPerCase(); fellBack {
			logger.Warn(ctx, "unitsPerCase not set, assuming 1 unit per case",
				"product_id", p.ID.String(), "product_name", p.Name)
		}

		units := p.ToUnits(line.Quantity, line.Mode)
		requested[p.ID] += units
		if available := p.TotalUnits(); requested[p.ID] > available {
			return nil, apperror.NewInsufficientStock(p.Name, requested[p.ID], available, p.StockCases, p.LooseUnits)
		}

		lineTotal := price.Mul(types.NewMoneyFromInt(line.Quantity))
		sale.Items = append(sale.Items, Item{
			ProductID:   p.ID,
			ProductCode: p.Code,
			ProductName: p.Name,
			Mode:        line.Mode,
			Quantity:    line.Quantity,
			Units:       units,
			UnitPrice:   price,
			UnitCost:    p.ResolveCost(line.Mode),
			LineTotal:   lineTotal,
		})
		subtotal = subtotal.Add(lineTotal)
	}
	sale.Subtotal = subtotal
	return sale, nil
}

func (s *Service) applyTotals(sale *Sale, in CheckoutInput) {
	sale.DiscountPercent = in.DiscountPercent
	sale.DiscountAmount = types.Percent(sale.Subtotal, in.DiscountPercent).Round(2)
	taxable := sale.Subtotal.Sub(sale.DiscountAmount)
	sale.TaxPercent = in.TaxPercent
	sale.TaxAmount = types.Percent(taxable, in.TaxPercent).Round(2)
	sale.Total = taxable.Add(sale.TaxAmount)
}

// afterCheckout runs the best-effort side effects. Failures are logged
// and never surfaced: the sale is already committed.
func (s *Service) afterCheckout(ctx context.Context, sale *Sale) {
	if sale.ClientCedula != "" && s.clients != nil {
		if err := s.clients.RecordPurchase(ctx, sale.ClientCedula, sale.Total, sale.CreatedAt); err != nil {
			logger.Warn(ctx, "failed to update client purchase history",
				"client_cedula", sale.ClientCedula, "invoice_number", sale.InvoiceNumber, "error", err)
		}
	}
	if s.audit != nil {
		s.audit.RecordAction(ctx, "sale", sale.ID.String(), "checkout", map[string]any{
			"invoiceNumber":   sale.InvoiceNumber,
			"total":           sale.Total.String(),
			"discountPercent": sale.DiscountPercent.String(),
			"items":           len(sale.Items),
		})
	}
}

// Cancel voids a completed or pending sale and restores its stock.
func (s *Service) Cancel(ctx context.Context, saleID id.ID, reason string) (*Sale, error) {
	sale, err := s.repo.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if err := sale.ChangeStatus(StatusCancelled); err != nil {
		return nil, err
	}

	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, it := range sale.Items {
			if _, err := s.products.ApplyStockDelta(ctx, it.ProductID, it.Units); err != nil {
				return err
			}
		}
		return s.repo.UpdateStatus(ctx, sale.ID, StatusCancelled)
	})
	if err != nil {
		return nil, err
	}

	if s.audit != nil {
		s.audit.RecordAction(ctx, "sale", sale.ID.String(), "cancel", map[string]any{
			"invoiceNumber": sale.InvoiceNumber,
			"reason":        reason,
		})
	}
	return sale, nil
}

func (s *Service) Get(ctx context.Context, saleID id.ID) (*Sale, error) {
	return s.repo.GetByID(ctx, saleID)
}

func (s *Service) GetByInvoice(ctx context.Context, invoiceNumber string) (*Sale, error) {
	return s.repo.GetByInvoice(ctx, invoiceNumber)
}

func (s *Service) List(ctx context.Context, filter Filter) ([]*Sale, int64, error) {
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

// Summarize aggregates completed sales within [from, to).
func (s *Service) Summarize(ctx context.Context, from, to time.Time) (*Summary, error) {
	return s.repo.Summarize(ctx, from, to)
}
