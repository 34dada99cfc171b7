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
	"puntoventa/internal/core/types"
	"puntoventa/internal/domain/catalogs/client"
)

// Compile-time check.
var _ client.Repository = (*ClientRepo)(nil)

// ClientRepo is the PostgreSQL implementation of client.Repository.
type ClientRepo struct {
	txm  *TxManager
	cols []string
}

func NewClientRepo(txm *TxManager) *ClientRepo {
	return &ClientRepo{
		txm:  txm,
		cols: ExtractDBColumns[client.Client](),
	}
}

func (r *ClientRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *ClientRepo) Create(ctx context.Context, c *client.Client) error {
	q := r.builder().
		Insert("clients").
		SetMap(StructToMap(c))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewDuplicate("client", "cedula", c.Cedula).WithCause(err)
		}
		return apperror.NewPersistence(fmt.Errorf("insert client: %w", err))
	}
	return nil
}

func (r *ClientRepo) Update(ctx context.Context, c *client.Client) error {
	data := StructToMap(c)
	delete(data, "id")
	delete(data, "version")
	delete(data, "created_at")
	// Purchase history is maintained by AddPurchase, not by edits.
	delete(data, "total_purchases")
	delete(data, "purchase_count")
	delete(data, "last_purchase_at")

	q := r.builder().
		Update("clients").
		SetMap(data).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": c.ID}).
		Where(squirrel.Eq{"version": c.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewPersistence(fmt.Errorf("update client: %w", err))
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConflict("client was modified by another operation").
			WithDetail("id", c.ID.String())
	}
	c.Version++
	return nil
}

func (r *ClientRepo) GetByID(ctx context.Context, clientID id.ID) (*client.Client, error) {
	return r.getBy(ctx, squirrel.Eq{"id": clientID}, clientID.String())
}

func (r *ClientRepo) GetByCedula(ctx context.Context, cedula string) (*client.Client, error) {
	return r.getBy(ctx, squirrel.Eq{"cedula": cedula}, cedula)
}

func (r *ClientRepo) getBy(ctx context.Context, cond squirrel.Eq, key string) (*client.Client, error) {
	q := r.builder().
		Select(r.cols...).
		From("clients").
		Where(cond).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var c client.Client
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &c, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("client", key)
		}
		return nil, apperror.NewPersistence(fmt.Errorf("get client: %w", err))
	}
	return &c, nil
}

func (r *ClientRepo) applyFilter(q squirrel.SelectBuilder, f client.Filter) squirrel.SelectBuilder {
	if f.Query != "" {
		pattern := "%" + f.Query + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"cedula": pattern},
		})
	}
	if f.Active != nil {
		q = q.Where(squirrel.Eq{"active": *f.Active})
	}
	return q
}

func (r *ClientRepo) List(ctx context.Context, f client.Filter) ([]*client.Client, error) {
	q := r.applyFilter(r.builder().Select(r.cols...).From("clients"), f).
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

	var items []*client.Client
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, apperror.NewPersistence(fmt.Errorf("list clients: %w", err))
	}
	return items, nil
}

func (r *ClientRepo) Count(ctx context.Context, f client.Filter) (int64, error) {
	q := r.applyFilter(r.builder().Select("COUNT(*)").From("clients"), f)

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var total int64
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, apperror.NewPersistence(fmt.Errorf("count clients: %w", err))
	}
	return total, nil
}

func (r *ClientRepo) Delete(ctx context.Context, clientID id.ID) error {
	q := r.builder().
		Update("clients").
		Set("active", false).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": clientID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewPersistence(fmt.Errorf("deactivate client: %w", err))
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("client", clientID.String())
	}
	return nil
}

// AddPurchase bumps purchase totals in a single statement. Unknown
// cedulas simply match no row.
func (r *ClientRepo) AddPurchase(ctx context.Context, cedula string, amount types.Money, at time.Time) error {
	q := r.builder().
		Update("clients").
		Set("total_purchases", squirrel.Expr("total_purchases + ?", amount)).
		Set("purchase_count", squirrel.Expr("purchase_count + 1")).
		Set("last_purchase_at", at).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"cedula": cedula})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build add purchase: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return apperror.NewPersistence(fmt.Errorf("add purchase: %w", err))
	}
	return nil
}
