package returns

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"puntoventa/internal/core/apperror"
	"puntoventa/internal/core/id"
	"puntoventa/internal/core/types"
	"puntoventa/internal/domain/catalogs/product"
	"puntoventa/internal/domain/sales"
	"puntoventa/pkg/docnumber"
)

type fakeSaleStore struct {
	mu    sync.Mutex
	sales map[id.ID]*sales.Sale
}

func (s *fakeSaleStore) GetByID(_ context.Context, saleID id.ID) (*sales.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sale, ok := s.sales[saleID]
	if !ok {
		return nil, apperror.NewNotFound("sale", saleID)
	}
	cp := *sale
	return &cp, nil
}

func (s *fakeSaleStore) UpdateStatus(_ context.Context, saleID id.ID, status sales.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sale, ok := s.sales[saleID]
	if !ok {
		return apperror.NewNotFound("sale", saleID)
	}
	sale.Status = status
	return nil
}

type fakeStockStore struct {
	mu     sync.Mutex
	deltas map[id.ID]int64
}

func (s *fakeStockStore) ApplyStockDelta(_ context.Context, productID id.ID, deltaUnits int64) (*product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deltas == nil {
		s.deltas = make(map[id.ID]int64)
	}
	s.deltas[productID] += deltaUnits
	return &product.Product{ID: productID}, nil
}

type fakeReturnRepo struct {
	mu      sync.Mutex
	returns []*Return
}

func (r *fakeReturnRepo) Create(_ context.Context, ret *Return) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *ret
	r.returns = append(r.returns, &cp)
	return nil
}

func (r *fakeReturnRepo) GetByID(_ context.Context, returnID id.ID) (*Return, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ret := range r.returns {
		if ret.ID == returnID {
			cp := *ret
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("return", returnID)
}

func (r *fakeReturnRepo) List(context.Context, Filter) ([]*Return, error) { return r.returns, nil }
func (r *fakeReturnRepo) Count(context.Context, Filter) (int64, error) {
	return int64(len(r.returns)), nil
}
func (r *fakeReturnRepo) ListBySale(_ context.Context, saleID id.ID) ([]*Return, error) {
	var out []*Return
	for _, ret := range r.returns {
		if ret.SaleID == saleID {
			out = append(out, ret)
		}
	}
	return out, nil
}

type noopTx struct{}

func (noopTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func completedSale(productID id.ID) *sales.Sale {
	return &sales.Sale{
		ID:            id.New(),
		InvoiceNumber: "FAC-20260115-042",
		Status:        sales.StatusCompleted,
		Items: []sales.Item{
			{
				ProductID:   productID,
				ProductCode: "P-001",
				ProductName: "Cola 350ml",
				Mode:        product.SaleModeCase,
				Quantity:    3,
				Units:       36,
				UnitPrice:   types.MustMoney("17.00"),
				UnitCost:    types.MustMoney("12.00"),
				LineTotal:   types.MustMoney("51.00"),
			},
		},
		Subtotal: types.MustMoney("51.00"),
		Total:    types.MustMoney("51.00"),
	}
}

func newReturnFixture(sale *sales.Sale) (*Service, *fakeSaleStore, *fakeStockStore, *fakeReturnRepo) {
	saleStore := &fakeSaleStore{sales: map[id.ID]*sales.Sale{sale.ID: sale}}
	stock := &fakeStockStore{}
	repo := &fakeReturnRepo{}
	svc := NewService(repo, saleStore, stock, noopTx{}, docnumber.New(), nil)
	return svc, saleStore, stock, repo
}

func TestCreateReturnRestoresStockAndRefunds(t *testing.T) {
	productID := id.New()
	sale := completedSale(productID)
	svc, saleStore, stock, _ := newReturnFixture(sale)

	ret, err := svc.Create(context.Background(), CreateInput{
		SaleID: sale.ID,
		Items:  []ItemInput{{ProductID: productID, Quantity: 2}},
		Reason: "damaged packaging",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusProcessed, ret.Status)
	assert.Regexp(t, `^DEV-\d{8}$`, ret.ReturnNumber)
	assert.True(t, ret.RefundTotal.Equal(types.MustMoney("34.00")), "refund = %s", ret.RefundTotal)

	// 2 cases restored with the sale-time conversion of 12 units per case.
	assert.Equal(t, int64(24), stock.deltas[productID])

	updated, err := saleStore.GetByID(context.Background(), sale.ID)
	require.NoError(t, err)
	assert.Equal(t, sales.StatusReturned, updated.Status)
}

func TestCreateReturnRejectsExcessQuantity(t *testing.T) {
	productID := id.New()
	sale := completedSale(productID)
	svc, _, stock, _ := newReturnFixture(sale)

	_, err := svc.Create(context.Background(), CreateInput{
		SaleID: sale.ID,
		Items:  []ItemInput{{ProductID: productID, Quantity: 4}},
		Reason: "damaged packaging",
	})
	require.Error(t, err)
	assert.Empty(t, stock.deltas, "no stock movement on rejected return")
}

func TestCreateReturnRejectsUnknownProduct(t *testing.T) {
	productID := id.New()
	sale := completedSale(productID)
	svc, _, _, _ := newReturnFixture(sale)

	_, err := svc.Create(context.Background(), CreateInput{
		SaleID: sale.ID,
		Items:  []ItemInput{{ProductID: id.New(), Quantity: 1}},
		Reason: "wrong item",
	})
	require.Error(t, err)
}

func TestCreateReturnRequiresCompletedSale(t *testing.T) {
	productID := id.New()
	sale := completedSale(productID)
	sale.Status = sales.StatusCancelled
	svc, _, _, _ := newReturnFixture(sale)

	_, err := svc.Create(context.Background(), CreateInput{
		SaleID: sale.ID,
		Items:  []ItemInput{{ProductID: productID, Quantity: 1}},
		Reason: "too late",
	})

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidTransition, appErr.Code)
}

func TestCreateReturnRequiresReason(t *testing.T) {
	productID := id.New()
	sale := completedSale(productID)
	svc, _, _, _ := newReturnFixture(sale)

	_, err := svc.Create(context.Background(), CreateInput{
		SaleID: sale.ID,
		Items:  []ItemInput{{ProductID: productID, Quantity: 1}},
	})
	require.Error(t, err)
}
