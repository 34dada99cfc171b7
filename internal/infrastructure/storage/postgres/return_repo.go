package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"puntoventa/internal/core/apperror"
	"puntoventa/internal/core/id"
	"puntoventa/internal/domain/returns"
)

// Compile-time check.
var _ returns.Repository = (*ReturnRepo)(nil)

// ReturnRepo is the PostgreSQL implementation of returns.Repository.
type ReturnRepo struct {
	txm  *TxManager
	cols []string
}

func NewReturnRepo(txm *TxManager) *ReturnRepo {
	return &ReturnRepo{
		txm:  txm,
		cols: ExtractDBColumns[returns.Return](),
	}
}

func (r *ReturnRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *ReturnRepo) Create(ctx context.Context, ret *returns.Return) error {
	q := r.builder().
		Insert("returns").
		SetMap(StructToMap(ret))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewDuplicate("return", "return_number", ret.ReturnNumber).WithCause(err)
		}
		return apperror.NewPersistence(fmt.Errorf("insert return: %w", err))
	}
	return nil
}

func (r *ReturnRepo) GetByID(ctx context.Context, returnID id.ID) (*returns.Return, error) {
	q := r.builder().
		Select(r.cols...).
		From("returns").
		Where(squirrel.Eq{"id": returnID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var ret returns.Return
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &ret, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("return", returnID.String())
		}
		return nil, apperror.NewPersistence(fmt.Errorf("get return: %w", err))
	}
	return &ret, nil
}

func (r *ReturnRepo) applyFilter(q squirrel.SelectBuilder, f returns.Filter) squirrel.SelectBuilder {
	if !id.IsNil(f.SaleID) {
		q = q.Where(squirrel.Eq{"sale_id": f.SaleID})
	}
	if f.ReturnNumber != "" {
		q = q.Where(squirrel.Eq{"return_number": f.ReturnNumber})
	}
	if f.Status != "" {
		q = q.Where(squirrel.Eq{"status": f.Status})
	}
	if !f.From.IsZero() {
		q = q.Where(squirrel.GtOrEq{"created_at": f.From})
	}
	if !f.To.IsZero() {
		q = q.Where(squirrel.Lt{"created_at": f.To})
	}
	return q
}

func (r *ReturnRepo) List(ctx context.Context, f returns.Filter) ([]*returns.Return, error) {
	q := r.applyFilter(r.builder().Select(r.cols...).From("returns"), f).
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

	var items []*returns.Return
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, apperror.NewPersistence(fmt.Errorf("list returns: %w", err))
	}
	return items, nil
}

func (r *ReturnRepo) Count(ctx context.Context, f returns.Filter) (int64, error) {
	q := r.applyFilter(r.builder().Select("COUNT(*)").From("returns"), f)

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var total int64
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, apperror.NewPersistence(fmt.Errorf("count returns: %w", err))
	}
	return total, nil
}

func (r *ReturnRepo) ListBySale(ctx context.Context, saleID id.ID) ([]*returns.Return, error) {
	return r.List(ctx, returns.Filter{SaleID: saleID})
}
