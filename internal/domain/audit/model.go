// Package audit records who changed what. Entries are append-only and
// recording is best-effort: a failed audit write never fails the business
// operation that triggered it.
package audit

import (
	"context"
	"time"

	"puntoventa/internal/core/id"
)

// Action identifies the kind of audited event.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Change is one monitored field that differs between two snapshots.
type Change struct {
	Field  string `json:"field"`
	Before any    `json:"before"`
	After  any    `json:"after"`
}

// Entry is a single audit record.
type Entry struct {
	ID       id.ID  `db:"id" json:"id"`
	Entity   string `db:"entity" json:"entity"`
	EntityID string `db:"entity_id" json:"entityId"`
	Action   string `db:"action" json:"action"`

	Changes []Change       `db:"changes" json:"changes,omitempty"`
	Details map[string]any `db:"details" json:"details,omitempty"`

	ActorID   string `db:"actor_id" json:"actorId,omitempty"`
	ActorName string `db:"actor_name" json:"actorName,omitempty"`
	RequestID string `db:"request_id" json:"requestId,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Filter narrows audit queries.
type Filter struct {
	Entity   string
	EntityID string
	Action   string
	ActorID  string
	From     time.Time
	To       time.Time

	Limit  int
	Offset int
}

// Repository is the persistence contract for audit entries.
type Repository interface {
	Append(ctx context.Context, e *Entry) error
	List(ctx context.Context, filter Filter) ([]*Entry, error)
	Count(ctx context.Context, filter Filter) (int64, error)
}
