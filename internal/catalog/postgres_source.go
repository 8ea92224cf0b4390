// internal/catalog/postgres_source.go
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"
)

// PostgresSource reads one scheme per row. eligibility and
// application_process are jsonb columns holding the same objects as the
// file format.
type PostgresSource struct {
	DB    *sql.DB
	Table string
}

func (s PostgresSource) Name() string { return "postgres:" + s.Table }

func (s PostgresSource) query() string {
	return fmt.Sprintf(`
		SELECT id, name_telugu, name_english, category, description_telugu, benefits,
		       eligibility, application_process
		FROM %s
		ORDER BY position, id`, pq.QuoteIdentifier(s.Table))
}

type schemeRow struct {
	ID                 string          `json:"id"`
	NameTelugu         string          `json:"name_telugu"`
	NameEnglish        string          `json:"name_english"`
	Category           string          `json:"category"`
	DescriptionTelugu  string          `json:"description_telugu"`
	Benefits           string          `json:"benefits"`
	Eligibility        json.RawMessage `json:"eligibility"`
	ApplicationProcess json.RawMessage `json:"application_process,omitempty"`
}

func (s PostgresSource) Document(ctx context.Context) ([]byte, error) {
	rows, err := s.DB.QueryContext(ctx, s.query())
	if err != nil {
		return nil, fmt.Errorf("query schemes: %w", err)
	}
	defer rows.Close()

	var objects []json.RawMessage
	for rows.Next() {
		var (
			r                        schemeRow
			nameEn, category, desc   sql.NullString
			benefits                 sql.NullString
			eligibility, application []byte
		)
		if err := rows.Scan(&r.ID, &r.NameTelugu, &nameEn, &category, &desc, &benefits, &eligibility, &application); err != nil {
			return nil, fmt.Errorf("scan scheme: %w", err)
		}
		r.NameEnglish = nameEn.String
		r.Category = category.String
		r.DescriptionTelugu = desc.String
		r.Benefits = benefits.String
		r.Eligibility = jsonOrEmpty(eligibility)
		if len(application) > 0 {
			r.ApplicationProcess = application
		}

		obj, err := json.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("scheme %q: %w", r.ID, err)
		}
		objects = append(objects, obj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schemes: %w", err)
	}

	return assemble(objects), nil
}

func jsonOrEmpty(b []byte) json.RawMessage {
	if len(b) == 0 {
		return json.RawMessage(`{}`)
	}
	return b
}
