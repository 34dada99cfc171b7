package sales

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"puntoventa/internal/core/apperror"
	"puntoventa/internal/core/id"
	"puntoventa/internal/core/types"
	"puntoventa/internal/domain/catalogs/product"
	"puntoventa/pkg/docnumber"
)

// --- fakes ---

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[id.ID]*product.Product
}

func newFakeProductRepo(products ...*product.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: make(map[id.ID]*product.Product)}
	for _, p := range products {
		cp := *p
		r.products[p.ID] = &cp
	}
	return r
}

func (r *fakeProductRepo) snapshot() map[id.ID]product.Product {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := make(map[id.ID]product.Product, len(r.products))
	for k, v := range r.products {
		snap[k] = *v
	}
	return snap
}

func (r *fakeProductRepo) restore(snap map[id.ID]product.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products = make(map[id.ID]*product.Product, len(snap))
	for k, v := range snap {
		cp := v
		r.products[k] = &cp
	}
}

func (r *fakeProductRepo) GetByID(_ context.Context, productID id.ID) (*product.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID)
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) ApplyStockDelta(_ context.Context, productID id.ID, deltaUnits int64) (*product.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID)
	}
	cp := *p
	if err := cp.ApplyStockDelta(deltaUnits); err != nil {
		return nil, err
	}
	r.products[productID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeProductRepo) Create(context.Context, *product.Product) error { return nil }
func (r *fakeProductRepo) Update(context.Context, *product.Product) error { return nil }
func (r *fakeProductRepo) GetByCode(context.Context, string) (*product.Product, error) {
	return nil, apperror.NewNotFound("product", "code")
}
func (r *fakeProductRepo) List(context.Context, product.Filter) ([]*product.Product, error) {
	return nil, nil
}
func (r *fakeProductRepo) Count(context.Context, product.Filter) (int64, error) { return 0, nil }
func (r *fakeProductRepo) Delete(context.Context, id.ID) error                  { return nil }

type fakeSaleRepo struct {
	mu sync.Mutex
	// duplicateCreates forces this many duplicate-invoice failures first
	duplicateCreates int
	attempted        []string
	sales            map[id.ID]*Sale
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{sales: make(map[id.ID]*Sale)}
}

func (r *fakeSaleRepo) Create(_ context.Context, s *Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempted = append(r.attempted, s.InvoiceNumber)
	if r.duplicateCreates > 0 {
		r.duplicateCreates--
		return apperror.NewDuplicate("sale", "invoice_number", s.InvoiceNumber)
	}
	cp := *s
	r.sales[s.ID] = &cp
	return nil
}

func (r *fakeSaleRepo) GetByID(_ context.Context, saleID id.ID) (*Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sales[saleID]
	if !ok {
		return nil, apperror.NewNotFound("sale", saleID)
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSaleRepo) GetByInvoice(_ context.Context, invoice string) (*Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sales {
		if s.InvoiceNumber == invoice {
			cp := *s
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("sale", invoice)
}

func (r *fakeSaleRepo) List(context.Context, Filter) ([]*Sale, error)  { return nil, nil }
func (r *fakeSaleRepo) Count(context.Context, Filter) (int64, error)  { return 0, nil }
func (r *fakeSaleRepo) UpdateStatus(_ context.Context, saleID id.ID, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sales[saleID]
	if !ok {
		return apperror.NewNotFound("sale", saleID)
	}
	s.Status = status
	return nil
}
func (r *fakeSaleRepo) Summarize(context.Context, time.Time, time.Time) (*Summary, error) {
	return &Summary{}, nil
}

// fakeTxManager serializes transactions and rolls product stock back when
// the function fails, mirroring the storage-layer contract.
type fakeTxManager struct {
	mu       sync.Mutex
	products *fakeProductRepo
}

func (m *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := m.products.snapshot()
	if err := fn(ctx); err != nil {
		m.products.restore(snap)
		return err
	}
	return nil
}

type fakeClientRecorder struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (r *fakeClientRecorder) RecordPurchase(_ context.Context, cedula string, _ types.Money, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, cedula)
	return r.err
}

type fakeAudit struct {
	mu      sync.Mutex
	actions []string
}

func (a *fakeAudit) RecordAction(_ context.Context, _ string, _ string, action string, _ map[string]any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.actions = append(a.actions, action)
}

// --- harness ---

type fixture struct {
	service  *Service
	products *fakeProductRepo
	sales    *fakeSaleRepo
	clients  *fakeClientRecorder
	audit    *fakeAudit
}

func newFixture(products ...*product.Product) *fixture {
	repo := newFakeSaleRepo()
	productRepo := newFakeProductRepo(products...)
	clients := &fakeClientRecorder{}
	audit := &fakeAudit{}
	svc := NewService(
		repo,
		productRepo,
		&fakeTxManager{products: productRepo},
		docnumber.New(),
		clients,
		audit,
	)
	return &fixture{service: svc, products: productRepo, sales: repo, clients: clients, audit: audit}
}

func colaProduct() *product.Product {
	return &product.Product{
		ID:           id.New(),
		Code:         "P-001",
		Name:         "Cola 350ml",
		StockCases:   10,
		LooseUnits:   5,
		UnitsPerCase: 12,
		UnitPrice:    types.MustMoney("1.50"),
		CasePrice:    types.MustMoney("17.00"),
		UnitCost:     types.MustMoney("1.00"),
		CaseCost:     types.MustMoney("12.00"),
		SaleMode:     product.SaleModeBoth,
		Active:       true,
	}
}

// --- tests ---

func TestCheckoutComputesTotalsAndDecrementsStock(t *testing.T) {
	p := colaProduct()
	f := newFixture(p)

	sale, err := f.service.Checkout(context.Background(), CheckoutInput{
		Items:           []CheckoutItem{{ProductID: p.ID, Mode: product.SaleModeCase, Quantity: 3}},
		DiscountPercent: types.Zero(),
		TaxPercent:      types.MustMoney("10"),
	})
	require.NoError(t, err)

	// 3 cases * 17.00 = 51.00, tax 10% = 5.10
	assert.True(t, sale.Subtotal.Equal(types.MustMoney("51.00")), "subtotal = %s", sale.Subtotal)
	assert.True(t, sale.Total.Equal(types.MustMoney("56.10")), "total = %s", sale.Total)
	assert.Equal(t, StatusCompleted, sale.Status)
	assert.Regexp(t, `^FAC-\d{8}-\d{3}$`, sale.InvoiceNumber)

	updated, err := f.products.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), updated.StockCases)
	assert.Equal(t, int64(5), updated.LooseUnits)
}

func TestCheckoutAllowsCaseAndUnitLinesForSameProduct(t *testing.T) {
	p := colaProduct()
	f := newFixture(p)

	sale, err := f.service.Checkout(context.Background(), CheckoutInput{
		Items: []CheckoutItem{
			{ProductID: p.ID, Mode: product.SaleModeCase, Quantity: 2},
			{ProductID: p.ID, Mode: product.SaleModeUnit, Quantity: 3},
		},
		DiscountPercent: types.Zero(),
		TaxPercent:      types.Zero(),
	})
	require.NoError(t, err)

	// 2 cases * 17.00 + 3 units * 1.50 = 38.50
	assert.True(t, sale.Subtotal.Equal(types.MustMoney("38.50")), "subtotal = %s", sale.Subtotal)
	require.Len(t, sale.Items, 2)

	// 125 - (2*12 + 3) = 98 = 8 cases + 2 loose
	updated, err := f.products.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(8), updated.StockCases)
	assert.Equal(t, int64(2), updated.LooseUnits)
}

func TestCheckoutRejectsDuplicateLineInSameMode(t *testing.T) {
	p := colaProduct()
	f := newFixture(p)

	_, err := f.service.Checkout(context.Background(), CheckoutInput{
		Items: []CheckoutItem{
			{ProductID: p.ID, Mode: product.SaleModeUnit, Quantity: 1},
			{ProductID: p.ID, Mode: product.SaleModeUnit, Quantity: 2},
		},
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Empty(t, f.sales.attempted, "no persistence attempt expected")
}

func TestCheckoutInsufficientStockAcrossLines(t *testing.T) {
	p := colaProduct()
	p.StockCases = 1
	p.LooseUnits = 0
	f := newFixture(p)

	// Each line fits on its own; together they need 13 of 12 units.
	_, err := f.service.Checkout(context.Background(), CheckoutInput{
		Items: []CheckoutItem{
			{ProductID: p.ID, Mode: product.SaleModeCase, Quantity: 1},
			{ProductID: p.ID, Mode: product.SaleModeUnit, Quantity: 1},
		},
	})
	require.True(t, apperror.IsInsufficientStock(err), "got %v", err)

	untouched, getErr := f.products.GetByID(context.Background(), p.ID)
	require.NoError(t, getErr)
	assert.Equal(t, int64(12), untouched.TotalUnits())
}

func TestCheckoutRejectsDiscountAboveCap(t *testing.T) {
	p := colaProduct()
	f := newFixture(p)

	// Subtotal 15.00, cost 10.00: profit 5.00, cap = 2.50/15.00 = 16.67%.
	_, err := f.service.Checkout(context.Background(), CheckoutInput{
		Items:           []CheckoutItem{{ProductID: p.ID, Mode: product.SaleModeUnit, Quantity: 10}},
		DiscountPercent: types.MustMoney("20"),
	})

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, apperror.CodeDiscountExceedsCap, appErr.Code)
	assert.Equal(t, "16.67", appErr.Details["max_allowed_percent"])

	// Nothing was persisted and stock is untouched.
	updated, _ := f.products.GetByID(context.Background(), p.ID)
	assert.Equal(t, int64(125), updated.TotalUnits())
	assert.Empty(t, f.sales.attempted)
}

func TestCheckoutInsufficientStock(t *testing.T) {
	p := colaProduct()
	f := newFixture(p)

	_, err := f.service.Checkout(context.Background(), CheckoutInput{
		Items: []CheckoutItem{{ProductID: p.ID, Mode: product.SaleModeCase, Quantity: 11}},
	})

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
	assert.Contains(t, appErr.Message, "Cola 350ml")
	assert.Contains(t, appErr.Message, "10 cases + 5 loose")
}

func TestCheckoutRejectsDisallowedMode(t *testing.T) {
	p := colaProduct()
	p.SaleMode = product.SaleModeUnit
	f := newFixture(p)

	_, err := f.service.Checkout(context.Background(), CheckoutInput{
		Items: []CheckoutItem{{ProductID: p.ID, Mode: product.SaleModeCase, Quantity: 1}},
	})

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidSaleMode, appErr.Code)
}

func TestCheckoutRetriesOnInvoiceCollision(t *testing.T) {
	p := colaProduct()
	f := newFixture(p)
	f.sales.duplicateCreates = 2

	sale, err := f.service.Checkout(context.Background(), CheckoutInput{
		Items: []CheckoutItem{{ProductID: p.ID, Mode: product.SaleModeUnit, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Len(t, f.sales.attempted, 3)

	// The rolled-back attempts must not have consumed stock.
	updated, _ := f.products.GetByID(context.Background(), p.ID)
	assert.Equal(t, int64(124), updated.TotalUnits())
	assert.NotEmpty(t, sale.InvoiceNumber)
}

func TestCheckoutGivesUpAfterMaxCollisions(t *testing.T) {
	p := colaProduct()
	f := newFixture(p)
	f.sales.duplicateCreates = docnumber.MaxAttempts

	_, err := f.service.Checkout(context.Background(), CheckoutInput{
		Items: []CheckoutItem{{ProductID: p.ID, Mode: product.SaleModeUnit, Quantity: 1}},
	})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeConflict, appErr.Code)

	updated, _ := f.products.GetByID(context.Background(), p.ID)
	assert.Equal(t, int64(125), updated.TotalUnits(), "failed checkout must not consume stock")
}

func TestCheckoutNeverOversellsUnderConcurrency(t *testing.T) {
	p := colaProduct()
	p.StockCases = 0
	p.LooseUnits = 7
	f := newFixture(p)

	const buyers = 8
	errs := make(chan error, buyers)
	var wg sync.WaitGroup
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.Checkout(context.Background(), CheckoutInput{
				Items: []CheckoutItem{{ProductID: p.ID, Mode: product.SaleModeUnit, Quantity: 1}},
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var failures int
	for err := range errs {
		if err != nil {
			require.True(t, apperror.IsInsufficientStock(err), "unexpected error: %v", err)
			failures++
		}
	}
	assert.Equal(t, 1, failures, "exactly one buyer must be rejected")

	updated, _ := f.products.GetByID(context.Background(), p.ID)
	assert.Equal(t, int64(0), updated.TotalUnits())
}

func TestCheckoutClientHistoryIsBestEffort(t *testing.T) {
	p := colaProduct()
	f := newFixture(p)
	f.clients.err = errors.New("client store unavailable")

	sale, err := f.service.Checkout(context.Background(), CheckoutInput{
		Items:        []CheckoutItem{{ProductID: p.ID, Mode: product.SaleModeUnit, Quantity: 1}},
		ClientCedula: "V-12345678",
	})
	require.NoError(t, err, "client history failure must not fail the sale")
	assert.Equal(t, []string{"v-12345678"}, f.clients.calls)
	assert.Equal(t, "v-12345678", sale.ClientCedula)
}

func TestCancelRestoresStock(t *testing.T) {
	p := colaProduct()
	f := newFixture(p)

	sale, err := f.service.Checkout(context.Background(), CheckoutInput{
		Items: []CheckoutItem{{ProductID: p.ID, Mode: product.SaleModeCase, Quantity: 2}},
	})
	require.NoError(t, err)

	cancelled, err := f.service.Cancel(context.Background(), sale.ID, "customer changed their mind")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)

	updated, _ := f.products.GetByID(context.Background(), p.ID)
	assert.Equal(t, int64(125), updated.TotalUnits())

	// A cancelled sale stays cancelled.
	_, err = f.service.Cancel(context.Background(), sale.ID, "again")
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidTransition, appErr.Code)
}
