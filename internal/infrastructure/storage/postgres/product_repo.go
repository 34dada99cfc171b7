package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"puntoventa/internal/core/apperror"
	"puntoventa/internal/core/id"
	"puntoventa/internal/domain/catalogs/product"
)

// Compile-time check.
var _ product.Repository = (*ProductRepo)(nil)

// ProductRepo is the PostgreSQL implementation of product.Repository.
type ProductRepo struct {
	txm  *TxManager
	cols []string
}

func NewProductRepo(txm *TxManager) *ProductRepo {
	return &ProductRepo{
		txm:  txm,
		cols: ExtractDBColumns[product.Product](),
	}
}

func (r *ProductRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *ProductRepo) Create(ctx context.Context, p *product.Product) error {
	q := r.builder().
		Insert("products").
		SetMap(StructToMap(p))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewDuplicate("product", "code", p.Code).WithCause(err)
		}
		return apperror.NewPersistence(fmt.Errorf("insert product: %w", err))
	}
	return nil
}

func (r *ProductRepo) Update(ctx context.Context, p *product.Product) error {
	data := StructToMap(p)
	delete(data, "id")
	delete(data, "version")
	delete(data, "created_at")

	q := r.builder().
		Update("products").
		SetMap(data).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": p.ID}).
		Where(squirrel.Eq{"version": p.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewDuplicate("product", "code", p.Code).WithCause(err)
		}
		return apperror.NewPersistence(fmt.Errorf("update product: %w", err))
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConflict("product was modified by another operation").
			WithDetail("id", p.ID.String())
	}
	p.Version++
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	return r.getBy(ctx, squirrel.Eq{"id": productID}, productID.String())
}

func (r *ProductRepo) GetByCode(ctx context.Context, code string) (*product.Product, error) {
	return r.getBy(ctx, squirrel.Eq{"code": code}, code)
}

func (r *ProductRepo) getBy(ctx context.Context, cond squirrel.Eq, key string) (*product.Product, error) {
	q := r.builder().
		Select(r.cols...).
		From("products").
		Where(cond).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p product.Product
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("product", key)
		}
		return nil, apperror.NewPersistence(fmt.Errorf("get product: %w", err))
	}
	return &p, nil
}

func (r *ProductRepo) applyFilter(q squirrel.SelectBuilder, f product.Filter) squirrel.SelectBuilder {
	if f.Query != "" {
		pattern := "%" + f.Query + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"code": pattern},
			squirrel.ILike{"barcode": pattern},
		})
	}
	if f.Category != "" {
		q = q.Where(squirrel.Eq{"category": f.Category})
	}
	if f.Brand != "" {
		q = q.Where(squirrel.Eq{"brand": f.Brand})
	}
	if f.Active != nil {
		q = q.Where(squirrel.Eq{"active": *f.Active})
	}
	if f.LowStock {
		q = q.Where("stock_cases * GREATEST(units_per_case, 1) + loose_units <= min_stock")
	}
	return q
}

func (r *ProductRepo) List(ctx context.Context, f product.Filter) ([]*product.Product, error) {
	q := r.applyFilter(r.builder().Select(r.cols...).From("products"), f).
		OrderBy("name ASC")
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

	var items []*product.Product
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, apperror.NewPersistence(fmt.Errorf("list products: %w", err))
	}
	return items, nil
}

func (r *ProductRepo) Count(ctx context.Context, f product.Filter) (int64, error) {
	q := r.applyFilter(r.builder().Select("COUNT(*)").From("products"), f)

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var total int64
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, apperror.NewPersistence(fmt.Errorf("count products: %w", err))
	}
	return total, nil
}

func (r *ProductRepo) Delete(ctx context.Context, productID id.ID) error {
	q := r.builder().
		Update("products").
		Set("active", false).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": productID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewPersistence(fmt.Errorf("deactivate product: %w", err))
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("product", productID.String())
	}
	return nil
}

// applyStockDeltaSQL adjusts stock in a single conditional statement. The
// WHERE clause guarantees total stock never goes negative, no matter how
// many checkouts race on the same row; the cases/loose decomposition is
// re-derived from the new total.
const applyStockDeltaSQL = `
UPDATE products
SET stock_cases = ((stock_cases * GREATEST(units_per_case, 1) + loose_units) + $2) / GREATEST(units_per_case, 1),
    loose_units = ((stock_cases * GREATEST(units_per_case, 1) + loose_units) + $2) % GREATEST(units_per_case, 1),
    version     = version + 1,
    updated_at  = now()
WHERE id = $1
  AND (stock_cases * GREATEST(units_per_case, 1) + loose_units) + $2 >= 0
RETURNING `

func (r *ProductRepo) ApplyStockDelta(ctx context.Context, productID id.ID, deltaUnits int64) (*product.Product, error) {
	sql := applyStockDeltaSQL + strings.Join(r.cols, ", ")

	var p product.Product
	err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &p, sql, productID, deltaUnits)
	if err == nil {
		return &p, nil
	}
	if !pgxscan.NotFound(err) {
		return nil, apperror.NewPersistence(fmt.Errorf("apply stock delta: %w", err))
	}

	// No row matched: either the product does not exist or the guard
	// rejected the decrement. Re-read to tell the two apart.
	current, getErr := r.GetByID(ctx, productID)
	if getErr != nil {
		return nil, getErr
	}
	return nil, apperror.NewInsufficientStock(
		current.Name, -deltaUnits, current.TotalUnits(), current.StockCases, current.LooseUnits)
}
