package postgres

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"puntoventa/internal/core/apperror"
	"puntoventa/internal/domain/config"
)

// Compile-time check.
var _ config.Repository = (*ConfigRepo)(nil)

// ConfigRepo stores the single business configuration row. The table is
// keyed by a constant id so Save is a plain upsert.
type ConfigRepo struct {
	txm  *TxManager
	cols []string
}

func NewConfigRepo(txm *TxManager) *ConfigRepo {
	return &ConfigRepo{
		txm:  txm,
		cols: ExtractDBColumns[config.CompanyConfig](),
	}
}

func (r *ConfigRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *ConfigRepo) Get(ctx context.Context) (*config.CompanyConfig, error) {
	q := r.builder().
		Select(r.cols...).
		From("company_config").
		Where(squirrel.Eq{"singleton": true}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var c config.CompanyConfig
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &c, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("config", "company")
		}
		return nil, apperror.NewPersistence(fmt.Errorf("get config: %w", err))
	}
	return &c, nil
}

func (r *ConfigRepo) Save(ctx context.Context, c *config.CompanyConfig) error {
	data := StructToMap(c)
	data["singleton"] = true

	q := r.builder().
		Insert("company_config").
		SetMap(data).
		Suffix(upsertSuffix(data))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return apperror.NewPersistence(fmt.Errorf("save config: %w", err))
	}
	return nil
}

// upsertSuffix builds an ON CONFLICT clause updating every inserted
// column from the proposed row.
func upsertSuffix(data map[string]any) string {
	cols := make([]string, 0, len(data))
	for col := range data {
		if col == "singleton" {
			continue
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)
	for i, col := range cols {
		cols[i] = col + " = EXCLUDED." + col
	}
	return "ON CONFLICT (singleton) DO UPDATE SET " + strings.Join(cols, ", ")
}
