package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"travel-workers/internal/models"
)

var identPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.]*$`)

// PostgresSource reads products from a relational table with one column per
// location level. NULL location columns are read as empty strings.
type PostgresSource struct {
	db       *sql.DB
	query    string
	maxItems int
}

func NewPostgresSource(db *sql.DB, table string, maxItems int) (*PostgresSource, error) {
	if !identPattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	if maxItems <= 0 {
		maxItems = 1000
	}
	query := fmt.Sprintf(`SELECT id, title, category,
       COALESCE(continent, ''), COALESCE(country, ''), COALESCE(province, ''),
       COALESCE(city, ''), COALESCE(area, ''), price, COALESCE(currency, '')
FROM %s
ORDER BY id
LIMIT $1`, table)
	return &PostgresSource{db: db, query: query, maxItems: maxItems}, nil
}

func (s *PostgresSource) Products(ctx context.Context) ([]models.Product, error) {
	rows, err := s.db.QueryContext(ctx, s.query, s.maxItems)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Title, &p.Category,
			&p.Continent, &p.Country, &p.Province, &p.City, &p.Area,
			&p.Price, &p.Currency); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}
