package client

import (
	"context"
	"testing"
	"time"

	"puntoventa/internal/core/apperror"
	"puntoventa/internal/core/id"
	"puntoventa/internal/core/types"
)

type memRepo struct {
	byCedula  map[string]*Client
	purchases map[string]types.Money
}

func newMemRepo() *memRepo {
	return &memRepo{
		byCedula:  make(map[string]*Client),
		purchases: make(map[string]types.Money),
	}
}

func (r *memRepo) Create(_ context.Context, c *Client) error {
	if _, ok := r.byCedula[c.Cedula]; ok {
		return apperror.NewDuplicate("client", "cedula", c.Cedula)
	}
	cp := *c
	r.byCedula[c.Cedula] = &cp
	return nil
}

func (r *memRepo) Update(_ context.Context, c *Client) error {
	cp := *c
	r.byCedula[c.Cedula] = &cp
	return nil
}

func (r *memRepo) GetByID(_ context.Context, clientID id.ID) (*Client, error) {
	for _, c := range r.byCedula {
		if c.ID == clientID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("client", clientID)
}

func (r *memRepo) GetByCedula(_ context.Context, cedula string) (*Client, error) {
	c, ok := r.byCedula[cedula]
	if !ok {
		return nil, apperror.NewNotFound("client", cedula)
	}
	cp := *c
	return &cp, nil
}

func (r *memRepo) List(context.Context, Filter) ([]*Client, error) { return nil, nil }
func (r *memRepo) Count(context.Context, Filter) (int64, error)    { return 0, nil }
func (r *memRepo) Delete(context.Context, id.ID) error             { return nil }

func (r *memRepo) AddPurchase(_ context.Context, cedula string, amount types.Money, _ time.Time) error {
	if _, ok := r.byCedula[cedula]; !ok {
		return nil
	}
	r.purchases[cedula] = r.purchases[cedula].Add(amount)
	return nil
}

type noopAudit struct{}

func (noopAudit) RecordCreate(context.Context, string, string, any)      {}
func (noopAudit) RecordUpdate(context.Context, string, string, any, any) {}
func (noopAudit) RecordDelete(context.Context, string, string, any)      {}

func TestCreateNormalizesCedula(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, noopAudit{})

	c, err := svc.Create(context.Background(), CreateInput{
		Cedula: "  V-12345678  ",
		Name:   "Ana Perez",
	})
	if err != nil {
		t.Fatal(err)
	}
	if c.Cedula != "v-12345678" {
		t.Errorf("cedula = %q, want %q", c.Cedula, "v-12345678")
	}

	got, err := svc.GetByCedula(context.Background(), "V-12345678")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != c.ID {
		t.Error("lookup by uppercase cedula must find the client")
	}
}

func TestCreateRejectsDuplicateCedula(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, noopAudit{})

	_, err := svc.Create(context.Background(), CreateInput{Cedula: "v-1", Name: "Ana"})
	if err != nil {
		t.Fatal(err)
	}
	_, err = svc.Create(context.Background(), CreateInput{Cedula: "V-1", Name: "Otra Ana"})
	if !apperror.IsDuplicate(err) {
		t.Errorf("expected duplicate error, got %v", err)
	}
}

func TestRecordPurchaseUnknownCedulaIsNoop(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, noopAudit{})

	err := svc.RecordPurchase(context.Background(), "v-unknown", types.MustMoney("10.00"), time.Now())
	if err != nil {
		t.Errorf("unknown cedula must be a no-op, got %v", err)
	}
}

func TestRecordPurchaseAccumulates(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, noopAudit{})

	if _, err := svc.Create(context.Background(), CreateInput{Cedula: "v-1", Name: "Ana"}); err != nil {
		t.Fatal(err)
	}
	now := time.Now()
	if err := svc.RecordPurchase(context.Background(), "V-1", types.MustMoney("10.00"), now); err != nil {
		t.Fatal(err)
	}
	if err := svc.RecordPurchase(context.Background(), "v-1", types.MustMoney("5.50"), now); err != nil {
		t.Fatal(err)
	}
	if got := repo.purchases["v-1"]; !got.Equal(types.MustMoney("15.50")) {
		t.Errorf("accumulated purchases = %s, want 15.50", got)
	}
}
