package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/plantops/assetmodeler/pkg/apperrors"
	"github.com/plantops/assetmodeler/pkg/database"
	"github.com/plantops/assetmodeler/pkg/models"
)

// ModelRepository provides data access for normalized asset models.
type ModelRepository interface {
	// CreateIfAbsent inserts the model unless one with the same name
	// already exists, in which case it returns apperrors.ErrConflict.
	CreateIfAbsent(ctx context.Context, model *models.AssetModel) error
	GetByName(ctx context.Context, name string) (*models.AssetModel, error)
	List(ctx context.Context) ([]*models.AssetModel, error)
}

type modelRepository struct {
	db *database.DB
}

// NewModelRepository creates a new ModelRepository.
func NewModelRepository(db *database.DB) ModelRepository {
	return &modelRepository{db: db}
}

var _ ModelRepository = (*modelRepository)(nil)

func (r *modelRepository) CreateIfAbsent(ctx context.Context, model *models.AssetModel) error {
	properties, err := json.Marshal(model.Properties)
	if err != nil {
		return fmt.Errorf("failed to encode model properties: %w", err)
	}

	query := `
		INSERT INTO asset_models (id, asset_model_name, parent_model_name, properties, change_flag, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = r.db.Exec(ctx, query,
		uuid.New(), model.Name, model.Parent, properties, model.Change, time.Now(),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("failed to create asset model %q: %w", model.Name, err)
	}

	return nil
}

func (r *modelRepository) GetByName(ctx context.Context, name string) (*models.AssetModel, error) {
	query := `
		SELECT asset_model_name, parent_model_name, properties, change_flag
		FROM asset_models
		WHERE asset_model_name = $1`

	model, err := scanModel(r.db.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, err
	}
	return model, nil
}

func (r *modelRepository) List(ctx context.Context) ([]*models.AssetModel, error) {
	query := `
		SELECT asset_model_name, parent_model_name, properties, change_flag
		FROM asset_models
		ORDER BY asset_model_name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list asset models: %w", err)
	}
	defer rows.Close()

	out := make([]*models.AssetModel, 0)
	for rows.Next() {
		model, err := scanModel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, model)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating asset models: %w", err)
	}

	return out, nil
}

func scanModel(row pgx.Row) (*models.AssetModel, error) {
	var m models.AssetModel
	var properties []byte

	if err := row.Scan(&m.Name, &m.Parent, &properties, &m.Change); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan asset model: %w", err)
	}

	if err := json.Unmarshal(properties, &m.Properties); err != nil {
		return nil, fmt.Errorf("failed to decode model properties: %w", err)
	}
	m.Hierarchies = []models.ModelRef{}

	return &m, nil
}
