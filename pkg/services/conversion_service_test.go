package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/plantops/assetmodeler/pkg/apperrors"
	"github.com/plantops/assetmodeler/pkg/config"
	"github.com/plantops/assetmodeler/pkg/models"
)

// mockRecordWriter captures batches without touching a database.
type mockRecordWriter struct {
	models []*models.AssetModel
	assets []*models.Asset
}

func (m *mockRecordWriter) WriteModels(ctx context.Context, batch []*models.AssetModel) (WriteStats, error) {
	m.models = batch
	return WriteStats{Created: len(batch)}, nil
}

func (m *mockRecordWriter) WriteAssets(ctx context.Context, batch []*models.Asset) (WriteStats, error) {
	m.assets = batch
	return WriteStats{Created: len(batch)}, nil
}

func testConverterConfig() config.ConverterConfig {
	return config.ConverterConfig{
		HierarchyMaxDepth: 10,
		TagAliasPrefix:    "/Tag Providers/default",
		TagBlacklist:      []string{"Sim Controls"},
	}
}

func testEvent() *models.ConvertEvent {
	return &models.ConvertEvent{
		BirthData: []map[string]any{
			{
				"tags": []any{
					map[string]any{
						"name": "_types_",
						"tags": []any{
							map[string]any{
								"name":    "PumpType",
								"tagType": "UdtType",
								"tags": []any{
									map[string]any{
										"name":        "Speed",
										"dataType":    "Float4",
										"opcItemPath": map[string]any{"binding": "ns=1;s=[default]Pumps/{pumpId}/Speed"},
									},
								},
							},
						},
					},
				},
			},
			{
				"tags": []any{
					map[string]any{
						"name":       "Pump1",
						"tagType":    "UdtInstance",
						"typeId":     "PumpType",
						"parameters": map[string]any{"pumpId": "P1"},
					},
				},
			},
		},
	}
}

func TestConversionService_Convert(t *testing.T) {
	writer := &mockRecordWriter{}
	svc := NewConversionService(testConverterConfig(), writer, zap.NewNop())

	summary, err := svc.Convert(context.Background(), testEvent())
	require.NoError(t, err)

	// 10 placeholders + PumpType_D0
	assert.Equal(t, 11, summary.Models)
	assert.Equal(t, 1, summary.Assets)
	assert.Equal(t, 11, summary.ModelWrites.Created)
	assert.Equal(t, 1, summary.AssetWrites.Created)

	require.Len(t, writer.assets, 1)
	assert.Equal(t, "/Pump1", writer.assets[0].Name)
	assert.Equal(t, "PumpType_D0", writer.assets[0].ModelName)
}

func TestConversionService_MalformedInputFailsRun(t *testing.T) {
	writer := &mockRecordWriter{}
	svc := NewConversionService(testConverterConfig(), writer, zap.NewNop())

	event := &models.ConvertEvent{BirthData: []map[string]any{{"timestamp": 1}}}

	_, err := svc.Convert(context.Background(), event)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrMalformedBirth)

	// Nothing reaches the destination on a fatal normalization error.
	assert.Nil(t, writer.models)
	assert.Nil(t, writer.assets)
}

func TestConversionService_WritesSnapshots(t *testing.T) {
	dir := t.TempDir()

	cfg := testConverterConfig()
	cfg.SaveSnapshots = true
	cfg.SnapshotDir = dir

	svc := NewConversionService(cfg, &mockRecordWriter{}, zap.NewNop())

	_, err := svc.Convert(context.Background(), testEvent())
	require.NoError(t, err)

	for _, filename := range []string{"dataRaw.json", "modelsRaw.json", "assetsRaw.json", "models.json", "assets.json"} {
		_, err := os.Stat(filepath.Join(dir, filename))
		assert.NoError(t, err, "expected snapshot %s", filename)
	}
}
