package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/klauspost/compress/zstd"

	"puntoventa/internal/core/apperror"
	"puntoventa/internal/core/id"
	"puntoventa/internal/domain/audit"
)

// Compile-time check.
var _ audit.Repository = (*AuditRepo)(nil)

// CompressionAlgo specifies the compression algorithm used for a payload.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// auditRow is the storage shape of an audit entry. The changes/details
// payload is a single JSON document; large payloads are zstd-compressed.
type auditRow struct {
	ID                string          `db:"id"`
	Entity            string          `db:"entity"`
	EntityID          string          `db:"entity_id"`
	Action            string          `db:"action"`
	ActorID           string          `db:"actor_id"`
	ActorName         string          `db:"actor_name"`
	RequestID         string          `db:"request_id"`
	Payload           json.RawMessage `db:"payload"`
	PayloadCompressed []byte          `db:"payload_compressed"`
	CompressionAlgo   CompressionAlgo `db:"compression_algo"`
	CreatedAt         time.Time       `db:"created_at"`
}

type auditPayload struct {
	Changes []audit.Change `json:"changes,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// AuditRepo is the append-only PostgreSQL store for the audit trail.
type AuditRepo struct {
	txm               *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
	cols              []string
}

func NewAuditRepo(txm *TxManager) (*AuditRepo, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &AuditRepo{
		txm:               txm,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: 10 * 1024,
		cols:              ExtractDBColumns[auditRow](),
	}, nil
}

func (r *AuditRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *AuditRepo) Append(ctx context.Context, e *audit.Entry) error {
	payload, err := json.Marshal(auditPayload{Changes: e.Changes, Details: e.Details})
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	row := auditRow{
		ID:              e.ID.String(),
		Entity:          e.Entity,
		EntityID:        e.EntityID,
		Action:          e.Action,
		ActorID:         e.ActorID,
		ActorName:       e.ActorName,
		RequestID:       e.RequestID,
		Payload:         payload,
		CompressionAlgo: CompressionNone,
		CreatedAt:       e.CreatedAt,
	}
	if len(payload) > r.compressThreshold {
		row.PayloadCompressed = r.encoder.EncodeAll(payload, nil)
		row.Payload = nil
		row.CompressionAlgo = CompressionZstd
	}

	q := r.builder().
		Insert("audit_log").
		SetMap(StructToMap(&row))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return apperror.NewPersistence(fmt.Errorf("append audit entry: %w", err))
	}
	return nil
}

func (r *AuditRepo) applyFilter(q squirrel.SelectBuilder, f audit.Filter) squirrel.SelectBuilder {
	if f.Entity != "" {
		q = q.Where(squirrel.Eq{"entity": f.Entity})
	}
	if f.EntityID != "" {
		q = q.Where(squirrel.Eq{"entity_id": f.EntityID})
	}
	if f.Action != "" {
		q = q.Where(squirrel.Eq{"action": f.Action})
	}
	if f.ActorID != "" {
		q = q.Where(squirrel.Eq{"actor_id": f.ActorID})
	}
	if !f.From.IsZero() {
		q = q.Where(squirrel.GtOrEq{"created_at": f.From})
	}
	if !f.To.IsZero() {
		q = q.Where(squirrel.Lt{"created_at": f.To})
	}
	return q
}

func (r *AuditRepo) List(ctx context.Context, f audit.Filter) ([]*audit.Entry, error) {
	q := r.applyFilter(r.builder().Select(r.cols...).From("audit_log"), f).
		OrderBy("created_at DESC")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []*auditRow
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, apperror.NewPersistence(fmt.Errorf("list audit entries: %w", err))
	}

	entries := make([]*audit.Entry, 0, len(rows))
	for _, row := range rows {
		e, err := r.toEntry(row)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (r *AuditRepo) Count(ctx context.Context, f audit.Filter) (int64, error) {
	q := r.applyFilter(r.builder().Select("COUNT(*)").From("audit_log"), f)

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var total int64
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, apperror.NewPersistence(fmt.Errorf("count audit entries: %w", err))
	}
	return total, nil
}

func (r *AuditRepo) toEntry(row *auditRow) (*audit.Entry, error) {
	payload := row.Payload
	if row.CompressionAlgo == CompressionZstd {
		decompressed, err := r.decoder.DecodeAll(row.PayloadCompressed, nil)
		if err != nil {
			return nil, fmt.Errorf("decompress audit payload: %w", err)
		}
		payload = decompressed
	}

	var p auditPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("unmarshal audit payload: %w", err)
		}
	}

	entryID, err := id.Parse(row.ID)
	if err != nil {
		return nil, fmt.Errorf("parse audit entry id: %w", err)
	}
	return &audit.Entry{
		ID:        entryID,
		Entity:    row.Entity,
		EntityID:  row.EntityID,
		Action:    row.Action,
		Changes:   p.Changes,
		Details:   p.Details,
		ActorID:   row.ActorID,
		ActorName: row.ActorName,
		RequestID: row.RequestID,
		CreatedAt: row.CreatedAt,
	}, nil
}
