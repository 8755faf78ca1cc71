package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

// FormSchemaRepository stores administrator-defined form definitions.
type FormSchemaRepository interface {
	GetByKey(ctx context.Context, formKey string) (*domain.FormSchema, error)
	Upsert(ctx context.Context, schema *domain.FormSchema) error
	List(ctx context.Context) ([]domain.FormSchema, error)
}

type formSchemaRepository struct {
	pool *pgxpool.Pool
}

// NewFormSchemaRepository instantiates repository.
func NewFormSchemaRepository(pool *pgxpool.Pool) FormSchemaRepository {
	return &formSchemaRepository{pool: pool}
}

func (r *formSchemaRepository) GetByKey(ctx context.Context, formKey string) (*domain.FormSchema, error) {
	var schema domain.FormSchema
	var raw []byte
	err := r.pool.QueryRow(ctx,
		`SELECT id, form_key, fields FROM form_schemas WHERE form_key=$1`,
		formKey,
	).Scan(&schema.ID, &schema.FormKey, &raw)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &schema.Fields); err != nil {
		return nil, err
	}
	return &schema, nil
}

func (r *formSchemaRepository) Upsert(ctx context.Context, schema *domain.FormSchema) error {
	raw, err := json.Marshal(schema.Fields)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO form_schemas (form_key, fields) VALUES ($1, $2)
        ON CONFLICT (form_key) DO UPDATE SET fields = EXCLUDED.fields
        RETURNING id`
	return r.pool.QueryRow(ctx, query, schema.FormKey, raw).Scan(&schema.ID)
}

func (r *formSchemaRepository) List(ctx context.Context) ([]domain.FormSchema, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, form_key, fields FROM form_schemas ORDER BY form_key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.FormSchema
	for rows.Next() {
		var schema domain.FormSchema
		var raw []byte
		if err := rows.Scan(&schema.ID, &schema.FormKey, &raw); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &schema.Fields); err != nil {
			return nil, err
		}
		result = append(result, schema)
	}
	return result, rows.Err()
}
