package audit

import (
	"context"
	"time"

	appctx "puntoventa/internal/core/context"
	"puntoventa/internal/core/id"
	"puntoventa/pkg/logger"
)

// Recorder writes audit entries. Every Record method swallows storage
// failures after logging them: audit must never break the operation it
// observes.
type Recorder struct {
	repo Repository
	now  func() time.Time
}

func NewRecorder(repo Repository) *Recorder {
	return &Recorder{repo: repo, now: time.Now}
}

func (r *Recorder) RecordCreate(ctx context.Context, entity, entityID string, after any) {
	r.append(ctx, entity, entityID, ActionCreate, Diff(entity, nil, after), nil)
}

// RecordUpdate diffs the two snapshots and records only when a monitored
// field actually changed.
func (r *Recorder) RecordUpdate(ctx context.Context, entity, entityID string, before, after any) {
	changes := Diff(entity, before, after)
	if len(changes) == 0 {
		return
	}
	r.append(ctx, entity, entityID, ActionUpdate, changes, nil)
}

func (r *Recorder) RecordDelete(ctx context.Context, entity, entityID string, before any) {
	r.append(ctx, entity, entityID, ActionDelete, Diff(entity, before, nil), nil)
}

// RecordAction records a domain event that is not a field-level change
// (checkout, cancel, restock).
func (r *Recorder) RecordAction(ctx context.Context, entity, entityID, action string, details map[string]any) {
	r.append(ctx, entity, entityID, action, nil, details)
}

func (r *Recorder) append(ctx context.Context, entity, entityID, action string, changes []Change, details map[string]any) {
	e := &Entry{
		ID:        id.New(),
		Entity:    entity,
		EntityID:  entityID,
		Action:    action,
		Changes:   changes,
		Details:   details,
		RequestID: appctx.GetRequestID(ctx),
		CreatedAt: r.now(),
	}
	if actor := appctx.GetActor(ctx); actor != nil {
		e.ActorID = actor.UserID
		e.ActorName = actor.Name
	}

	if err := r.repo.Append(ctx, e); err != nil {
		logger.Error(ctx, "failed to append audit entry",
			"entity", entity, "entity_id", entityID, "action", action, "error", err)
	}
}

// List queries the audit trail.
func (r *Recorder) List(ctx context.Context, filter Filter) ([]*Entry, int64, error) {
	items, err := r.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := r.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
