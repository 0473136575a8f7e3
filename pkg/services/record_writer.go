package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/plantops/assetmodeler/pkg/apperrors"
	"github.com/plantops/assetmodeler/pkg/metrics"
	"github.com/plantops/assetmodeler/pkg/models"
	"github.com/plantops/assetmodeler/pkg/repositories"
	"github.com/plantops/assetmodeler/pkg/retry"
)

// WriteStats reports the outcome of one batch write.
type WriteStats struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// RecordWriter persists normalized record batches with conditional
// create semantics: an existing key is an ignorable duplicate, any other
// failure aborts the batch. Writes are paced by a fixed delay to respect
// downstream rate limits. Already-written records are not rolled back on
// failure; re-delivery is safe because duplicates are skipped.
type RecordWriter interface {
	WriteModels(ctx context.Context, batch []*models.AssetModel) (WriteStats, error)
	WriteAssets(ctx context.Context, batch []*models.Asset) (WriteStats, error)
}

type recordWriter struct {
	modelRepo  repositories.ModelRepository
	assetRepo  repositories.AssetRepository
	writeDelay time.Duration
	retryCfg   *retry.Config
	logger     *zap.Logger
}

// NewRecordWriter creates a RecordWriter pacing successive writes by
// writeDelay. Transient destination failures are retried before the
// batch is abandoned.
func NewRecordWriter(
	modelRepo repositories.ModelRepository,
	assetRepo repositories.AssetRepository,
	writeDelay time.Duration,
	logger *zap.Logger,
) RecordWriter {
	return &recordWriter{
		modelRepo:  modelRepo,
		assetRepo:  assetRepo,
		writeDelay: writeDelay,
		retryCfg:   retry.DefaultConfig(),
		logger:     logger.Named("record-writer"),
	}
}

var _ RecordWriter = (*recordWriter)(nil)

func (w *recordWriter) WriteModels(ctx context.Context, batch []*models.AssetModel) (WriteStats, error) {
	var stats WriteStats

	for i, model := range batch {
		err := retry.DoIfRetryable(ctx, w.retryCfg, func() error {
			return w.modelRepo.CreateIfAbsent(ctx, model)
		})
		switch {
		case errors.Is(err, apperrors.ErrConflict):
			w.logger.Info("Ignoring existing record", zap.String("asset_model_name", model.Name))
			metrics.DuplicateRecords.WithLabelValues("asset_models").Inc()
			stats.Skipped++
		case err != nil:
			return stats, fmt.Errorf("failed to write asset model %q: %w", model.Name, err)
		default:
			stats.Created++
		}

		if err := w.pace(ctx, i, len(batch)); err != nil {
			return stats, err
		}
	}

	return stats, nil
}

func (w *recordWriter) WriteAssets(ctx context.Context, batch []*models.Asset) (WriteStats, error) {
	var stats WriteStats

	for i, asset := range batch {
		err := retry.DoIfRetryable(ctx, w.retryCfg, func() error {
			return w.assetRepo.CreateIfAbsent(ctx, asset)
		})
		switch {
		case errors.Is(err, apperrors.ErrConflict):
			w.logger.Info("Ignoring existing record", zap.String("asset_name", asset.Name))
			metrics.DuplicateRecords.WithLabelValues("assets").Inc()
			stats.Skipped++
		case err != nil:
			return stats, fmt.Errorf("failed to write asset %q: %w", asset.Name, err)
		default:
			stats.Created++
		}

		if err := w.pace(ctx, i, len(batch)); err != nil {
			return stats, err
		}
	}

	return stats, nil
}

// pace sleeps the configured write delay between records, honoring
// cancellation. No delay after the final record.
func (w *recordWriter) pace(ctx context.Context, index, total int) error {
	if w.writeDelay <= 0 || index == total-1 {
		return nil
	}

	select {
	case <-time.After(w.writeDelay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
