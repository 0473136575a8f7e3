package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/plantops/assetmodeler/pkg/config"
	"github.com/plantops/assetmodeler/pkg/converter"
	"github.com/plantops/assetmodeler/pkg/metrics"
	"github.com/plantops/assetmodeler/pkg/models"
	"github.com/plantops/assetmodeler/pkg/snapshot"
)

// ConversionSummary reports the outcome of one conversion invocation.
type ConversionSummary struct {
	Models      int        `json:"models"`
	Assets      int        `json:"assets"`
	ModelWrites WriteStats `json:"model_writes"`
	AssetWrites WriteStats `json:"asset_writes"`
	Duration    string     `json:"duration"`
}

// ConversionService runs the full birth-message pipeline: normalize the
// batch in a fresh session, optionally snapshot the intermediate and
// final structures, then hand both record sets to the writer.
type ConversionService interface {
	Convert(ctx context.Context, event *models.ConvertEvent) (*ConversionSummary, error)
}

type conversionService struct {
	cfg    config.ConverterConfig
	writer RecordWriter
	logger *zap.Logger
}

// NewConversionService creates a ConversionService.
func NewConversionService(cfg config.ConverterConfig, writer RecordWriter, logger *zap.Logger) ConversionService {
	return &conversionService{
		cfg:    cfg,
		writer: writer,
		logger: logger.Named("conversion-service"),
	}
}

var _ ConversionService = (*conversionService)(nil)

func (s *conversionService) Convert(ctx context.Context, event *models.ConvertEvent) (*ConversionSummary, error) {
	start := time.Now()

	session := converter.NewSession(converter.Options{
		HierarchyMaxDepth: s.cfg.HierarchyMaxDepth,
		TagAliasPrefix:    s.cfg.TagAliasPrefix,
		TagBlacklist:      s.cfg.TagBlacklist,
	}, s.logger)

	result, err := session.Run(event.BirthData)
	if err != nil {
		metrics.ConversionFailures.Inc()
		return nil, fmt.Errorf("conversion failed: %w", err)
	}

	if s.cfg.SaveSnapshots {
		s.saveSnapshots(result)
	}

	modelStats, err := s.writer.WriteModels(ctx, result.Models)
	if err != nil {
		metrics.ConversionFailures.Inc()
		return nil, err
	}

	assetStats, err := s.writer.WriteAssets(ctx, result.Assets)
	if err != nil {
		metrics.ConversionFailures.Inc()
		return nil, err
	}

	metrics.ModelsEmitted.Add(float64(len(result.Models)))
	metrics.AssetsEmitted.Add(float64(len(result.Assets)))
	metrics.ConversionDuration.Observe(time.Since(start).Seconds())

	summary := &ConversionSummary{
		Models:      len(result.Models),
		Assets:      len(result.Assets),
		ModelWrites: modelStats,
		AssetWrites: assetStats,
		Duration:    time.Since(start).String(),
	}

	s.logger.Info("Conversion complete",
		zap.Int("models", summary.Models),
		zap.Int("assets", summary.Assets),
		zap.Int("models_created", modelStats.Created),
		zap.Int("models_skipped", modelStats.Skipped),
		zap.Int("assets_created", assetStats.Created),
		zap.Int("assets_skipped", assetStats.Skipped),
		zap.Duration("duration", time.Since(start)))

	return summary, nil
}

// saveSnapshots writes the raw and normalized collections for
// diagnostics. Snapshot failures are logged and otherwise ignored; they
// never fail a conversion.
func (s *conversionService) saveSnapshots(result *converter.Result) {
	writer, err := snapshot.NewWriter(s.cfg.SnapshotDir, s.logger)
	if err != nil {
		s.logger.Warn("Snapshots disabled for this run", zap.Error(err))
		return
	}

	files := []struct {
		name string
		data any
	}{
		{"dataRaw.json", result.Raw},
		{"modelsRaw.json", result.Types},
		{"assetsRaw.json", result.Roots},
		{"models.json", result.Models},
		{"assets.json", result.Assets},
	}
	for _, f := range files {
		if err := writer.Save(f.name, f.data); err != nil {
			s.logger.Warn("Failed to write snapshot", zap.String("file", f.name), zap.Error(err))
		}
	}
}
