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
	"puntoventa/internal/domain/auth"
)

// Compile-time check.
var _ auth.Repository = (*UserRepo)(nil)

// UserRepo is the PostgreSQL implementation of auth.Repository.
type UserRepo struct {
	txm  *TxManager
	cols []string
}

func NewUserRepo(txm *TxManager) *UserRepo {
	return &UserRepo{
		txm:  txm,
		cols: ExtractDBColumns[auth.User](),
	}
}

func (r *UserRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *UserRepo) Create(ctx context.Context, u *auth.User) error {
	q := r.builder().
		Insert("users").
		SetMap(StructToMap(u))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewDuplicate("user", "email", u.Email).WithCause(err)
		}
		return apperror.NewPersistence(fmt.Errorf("insert user: %w", err))
	}
	return nil
}

func (r *UserRepo) Update(ctx context.Context, u *auth.User) error {
	data := StructToMap(u)
	delete(data, "id")
	delete(data, "created_at")

	q := r.builder().
		Update("users").
		SetMap(data).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": u.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewPersistence(fmt.Errorf("update user: %w", err))
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("user", u.ID.String())
	}
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, userID id.ID) (*auth.User, error) {
	return r.getBy(ctx, squirrel.Eq{"id": userID}, userID.String())
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	return r.getBy(ctx, squirrel.Eq{"email": email}, email)
}

func (r *UserRepo) getBy(ctx context.Context, cond squirrel.Eq, key string) (*auth.User, error) {
	q := r.builder().
		Select(r.cols...).
		From("users").
		Where(cond).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var u auth.User
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &u, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("user", key)
		}
		return nil, apperror.NewPersistence(fmt.Errorf("get user: %w", err))
	}
	return &u, nil
}

func (r *UserRepo) List(ctx context.Context) ([]*auth.User, error) {
	q := r.builder().
		Select(r.cols...).
		From("users").
		OrderBy("name ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*auth.User
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, apperror.NewPersistence(fmt.Errorf("list users: %w", err))
	}
	return items, nil
}
