package postgres

import (
	"context"
	"fmt"

	"flag-quiz-service/internal/domain"
	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4/pgxpool"
)

// CatalogLoader loads the country catalog from the countries table.
type CatalogLoader struct {
	pool *pgxpool.Pool
}

func NewCatalogLoader(pool *pgxpool.Pool) *CatalogLoader {
	return &CatalogLoader{pool: pool}
}

// CatalogQuery selects enabled countries in display order.
func CatalogQuery() (string, []interface{}, error) {
	return sq.Select("name").
		From("countries").
		Where(sq.Eq{"enabled": true}).
		OrderBy("position", "name").
		PlaceholderFormat(sq.Dollar).
		ToSql()
}

func (l *CatalogLoader) LoadCatalog(ctx context.Context) ([]string, error) {
	query, args, err := CatalogQuery()
	if err != nil {
		return nil, fmt.Errorf("build catalog query: %w", err)
	}

	rows, err := l.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	defer rows.Close()

	var countries []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan country: %w", err)
		}
		countries = append(countries, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	if len(countries) == 0 {
		return nil, domain.ErrCatalogNotFound
	}
	return countries, nil
}
