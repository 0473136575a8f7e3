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

// AssetRepository provides data access for flattened asset records.
type AssetRepository interface {
	// CreateIfAbsent inserts the asset unless one with the same path
	// already exists, in which case it returns apperrors.ErrConflict.
	CreateIfAbsent(ctx context.Context, asset *models.Asset) error
	GetByName(ctx context.Context, name string) (*models.Asset, error)
	ListByModel(ctx context.Context, modelName string) ([]*models.Asset, error)
}

type assetRepository struct {
	db *database.DB
}

// NewAssetRepository creates a new AssetRepository.
func NewAssetRepository(db *database.DB) AssetRepository {
	return &assetRepository{db: db}
}

var _ AssetRepository = (*assetRepository)(nil)

func (r *assetRepository) CreateIfAbsent(ctx context.Context, asset *models.Asset) error {
	tags, err := json.Marshal(asset.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode asset tags: %w", err)
	}

	var parent *string
	if asset.ParentName != "" {
		parent = &asset.ParentName
	}

	query := `
		INSERT INTO assets (id, asset_name, model_name, parent_name, tags, change_flag, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = r.db.Exec(ctx, query,
		uuid.New(), asset.Name, asset.ModelName, parent, tags, asset.Change, time.Now(),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("failed to create asset %q: %w", asset.Name, err)
	}

	return nil
}

func (r *assetRepository) GetByName(ctx context.Context, name string) (*models.Asset, error) {
	query := `
		SELECT asset_name, model_name, parent_name, tags, change_flag
		FROM assets
		WHERE asset_name = $1`

	asset, err := scanAsset(r.db.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, err
	}
	return asset, nil
}

func (r *assetRepository) ListByModel(ctx context.Context, modelName string) ([]*models.Asset, error) {
	query := `
		SELECT asset_name, model_name, parent_name, tags, change_flag
		FROM assets
		WHERE model_name = $1
		ORDER BY asset_name`

	rows, err := r.db.Query(ctx, query, modelName)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Asset, 0)
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, asset)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assets: %w", err)
	}

	return out, nil
}

func scanAsset(row pgx.Row) (*models.Asset, error) {
	var a models.Asset
	var parent *string
	var tags []byte

	if err := row.Scan(&a.Name, &a.ModelName, &parent, &tags, &a.Change); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan asset: %w", err)
	}

	if parent != nil {
		a.ParentName = *parent
	}
	if err := json.Unmarshal(tags, &a.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode asset tags: %w", err)
	}

	return &a, nil
}
