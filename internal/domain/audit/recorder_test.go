package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	appctx "puntoventa/internal/core/context"
)

type memRepo struct {
	entries []*Entry
	err     error
}

func (r *memRepo) Append(_ context.Context, e *Entry) error {
	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, e)
	return nil
}

func (r *memRepo) List(context.Context, Filter) ([]*Entry, error) { return r.entries, nil }
func (r *memRepo) Count(context.Context, Filter) (int64, error) {
	return int64(len(r.entries)), nil
}

func TestRecordUpdateSkipsWhenNothingMonitoredChanged(t *testing.T) {
	repo := &memRepo{}
	rec := NewRecorder(repo)

	before := map[string]any{"name": "Cola", "version": 1}
	after := map[string]any{"name": "Cola", "version": 2}
	rec.RecordUpdate(context.Background(), "product", "p1", before, after)

	if len(repo.entries) != 0 {
		t.Errorf("expected no entries, got %d", len(repo.entries))
	}
}

func TestRecordUpdateCapturesActorAndChanges(t *testing.T) {
	repo := &memRepo{}
	rec := NewRecorder(repo)
	rec.now = func() time.Time { return time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC) }

	ctx := appctx.WithActor(context.Background(), &appctx.Actor{
		UserID: "u1", Name: "Ana", Role: appctx.RoleAdmin,
	})
	rec.RecordUpdate(ctx, "product", "p1",
		map[string]any{"name": "Cola"},
		map[string]any{"name": "Cola Zero"},
	)

	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.entries))
	}
	e := repo.entries[0]
	if e.Action != ActionUpdate || e.ActorID != "u1" || e.ActorName != "Ana" {
		t.Errorf("unexpected entry: %+v", e)
	}
	if len(e.Changes) != 1 || e.Changes[0].Field != "name" {
		t.Errorf("unexpected changes: %+v", e.Changes)
	}
}

func TestRecorderSwallowsRepositoryFailure(t *testing.T) {
	repo := &memRepo{err: errors.New("disk full")}
	rec := NewRecorder(repo)

	// Must not panic or propagate anything.
	rec.RecordCreate(context.Background(), "product", "p1", map[string]any{"name": "Cola"})
	rec.RecordAction(context.Background(), "sale", "s1", "checkout", map[string]any{"total": "10.00"})
}
