package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"puntoventa/internal/core/apperror"
	"puntoventa/internal/core/id"
	"puntoventa/internal/domain/sales"
)

// Compile-time check.
var _ sales.Repository = (*SaleRepo)(nil)

// SaleRepo is the PostgreSQL implementation of sales.Repository.
// Sale lines are stored as a jsonb column: they are immutable snapshots
// read back as a whole, never queried individually.
type SaleRepo struct {
	txm  *TxManager
	cols []string
}

func NewSaleRepo(txm *TxManager) *SaleRepo {
	return &SaleRepo{
		txm:  txm,
		cols: ExtractDBColumns[sales.Sale](),
	}
}

func (r *SaleRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *SaleRepo) Create(ctx context.Context, s *sales.Sale) error {
	q := r.builder().
		Insert("sales").
		SetMap(StructToMap(s))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewDuplicate("sale", "invoice_number", s.InvoiceNumber).WithCause(err)
		}
		return apperror.NewPersistence(fmt.Errorf("insert sale: %w", err))
	}
	return nil
}

func (r *SaleRepo) GetByID(ctx context.Context, saleID id.ID) (*sales.Sale, error) {
	return r.getBy(ctx, squirrel.Eq{"id": saleID}, saleID.String())
}

func (r *SaleRepo) GetByInvoice(ctx context.Context, invoiceNumber string) (*sales.Sale, error) {
	return r.getBy(ctx, squirrel.Eq{"invoice_number": invoiceNumber}, invoiceNumber)
}

func (r *SaleRepo) getBy(ctx context.Context, cond squirrel.Eq, key string) (*sales.Sale, error) {
	q := r.builder().
		Select(r.cols...).
		From("sales").
		Where(cond).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var s sales.Sale
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &s, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("sale", key)
		}
		return nil, apperror.NewPersistence(fmt.Errorf("get sale: %w", err))
	}
	return &s, nil
}

func (r *SaleRepo) applyFilter(q squirrel.SelectBuilder, f sales.Filter) squirrel.SelectBuilder {
	if f.Status != "" {
		q = q.Where(squirrel.Eq{"status": f.Status})
	}
	if f.InvoiceNumber != "" {
		q = q.Where(squirrel.Eq{"invoice_number": f.InvoiceNumber})
	}
	if f.ClientCedula != "" {
		q = q.Where(squirrel.Eq{"client_cedula": f.ClientCedula})
	}
	if f.SellerID != "" {
		q = q.Where(squirrel.Eq{"seller_id": f.SellerID})
	}
	if !f.From.IsZero() {
		q = q.Where(squirrel.GtOrEq{"created_at": f.From})
	}
	if !f.To.IsZero() {
		q = q.Where(squirrel.Lt{"created_at": f.To})
	}
	return q
}

func (r *SaleRepo) List(ctx context.Context, f sales.Filter) ([]*sales.Sale, error) {
	q := r.applyFilter(r.builder().Select(r.cols...).From("sales"), f).
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

	var items []*sales.Sale
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, apperror.NewPersistence(fmt.Errorf("list sales: %w", err))
	}
	return items, nil
}

func (r *SaleRepo) Count(ctx context.Context, f sales.Filter) (int64, error) {
	q := r.applyFilter(r.builder().Select("COUNT(*)").From("sales"), f)

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var total int64
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, apperror.NewPersistence(fmt.Errorf("count sales: %w", err))
	}
	return total, nil
}

func (r *SaleRepo) UpdateStatus(ctx context.Context, saleID id.ID, status sales.Status) error {
	q := r.builder().
		Update("sales").
		Set("status", status).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": saleID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewPersistence(fmt.Errorf("update sale status: %w", err))
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("sale", saleID.String())
	}
	return nil
}

func (r *SaleRepo) Summarize(ctx context.Context, from, to time.Time) (*sales.Summary, error) {
	q := r.builder().
		Select(
			"COUNT(*) AS count",
			"COALESCE(SUM(subtotal), 0) AS subtotal",
			"COALESCE(SUM(discount_amount), 0) AS discount_total",
			"COALESCE(SUM(tax_amount), 0) AS tax_total",
			"COALESCE(SUM(total), 0) AS total",
		).
		From("sales").
		Where(squirrel.Eq{"status": sales.StatusCompleted}).
		Where(squirrel.GtOrEq{"created_at": from}).
		Where(squirrel.Lt{"created_at": to})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build summary query: %w", err)
	}

	var summary sales.Summary
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &summary, sql, args...); err != nil {
		return nil, apperror.NewPersistence(fmt.Errorf("summarize sales: %w", err))
	}
	return &summary, nil
}
