package converter

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/plantops/assetmodeler/pkg/apperrors"
	"github.com/plantops/assetmodeler/pkg/models"
)

func typesPayload() map[string]any {
	return map[string]any{
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
	}
}

func pumpInstance(name, pumpID string) map[string]any {
	return map[string]any{
		"name":       name,
		"tagType":    "UdtInstance",
		"typeId":     "PumpType",
		"parameters": map[string]any{"pumpId": pumpID},
	}
}

func runSession(t *testing.T, opts Options, payloads ...map[string]any) *Result {
	t.Helper()
	result, err := NewSession(opts, zap.NewNop()).Run(payloads)
	require.NoError(t, err)
	return result
}

func modelByName(result *Result, name string) *models.AssetModel {
	for _, model := range result.Models {
		if model.Name == name {
			return model
		}
	}
	return nil
}

func assetByName(result *Result, name string) *models.Asset {
	for _, asset := range result.Assets {
		if asset.Name == name {
			return asset
		}
	}
	return nil
}

func TestSession_TypedInstanceWithResolvedAlias(t *testing.T) {
	instances := map[string]any{"tags": []any{pumpInstance("Pump1", "P1")}}

	result := runSession(t, DefaultOptions(), typesPayload(), instances)

	model := modelByName(result, "PumpType_D0")
	require.NotNil(t, model)
	require.Len(t, model.Properties, 1)
	assert.Equal(t, "Speed", model.Properties[0].Name)
	assert.Equal(t, "DOUBLE", model.Properties[0].DataType)
	assert.Equal(t, models.RootModelName, model.Parent)
	assert.Equal(t, models.ChangeYes, model.Change)

	asset := assetByName(result, "/Pump1")
	require.NotNil(t, asset)
	assert.Equal(t, "PumpType_D0", asset.ModelName)
	assert.Empty(t, asset.ParentName)
	require.Len(t, asset.Tags, 1)
	assert.Equal(t, "Speed", asset.Tags[0].TagName)
	assert.Equal(t, "/Tag Providers/default/Pumps/P1/Speed", asset.Tags[0].TagPath)
}

func TestSession_FolderNodeUsesPlaceholderModel(t *testing.T) {
	payload := map[string]any{
		"tags": []any{
			map[string]any{
				"name":    "Area1",
				"tagType": "Folder",
				"tags":    []any{pumpInstance("Pump1", "P1")},
			},
		},
	}

	result := runSession(t, DefaultOptions(), typesPayload(), payload)

	folder := assetByName(result, "/Area1")
	require.NotNil(t, folder)
	assert.Equal(t, "__Group", folder.ModelName)
	assert.Empty(t, folder.Tags)

	// Children walked at depth 1: the instance derives a _D1 model.
	child := assetByName(result, "/Area1/Pump1")
	require.NotNil(t, child)
	assert.Equal(t, "PumpType_D1", child.ModelName)
	assert.Equal(t, "/Area1", child.ParentName)
}

func TestSession_SameTypeAtDifferentDepths(t *testing.T) {
	payload := map[string]any{
		"tags": []any{
			pumpInstance("Pump1", "P1"),
			map[string]any{
				"name": "Site",
				"tags": []any{
					map[string]any{
						"name": "Line1",
						"tags": []any{pumpInstance("Pump2", "P2")},
					},
				},
			},
		},
	}

	result := runSession(t, DefaultOptions(), typesPayload(), payload)

	assert.NotNil(t, modelByName(result, "PumpType_D0"))
	assert.NotNil(t, modelByName(result, "PumpType_D2"))
	assert.Nil(t, modelByName(result, "PumpType_D1"))
}

func TestSession_ModelBuiltOncePerTypeAndDepth(t *testing.T) {
	payload := map[string]any{
		"tags": []any{
			pumpInstance("Pump1", "P1"),
			pumpInstance("Pump2", "P2"),
			pumpInstance("Pump3", "P3"),
		},
	}

	result := runSession(t, DefaultOptions(), typesPayload(), payload)

	derived := 0
	for _, model := range result.Models {
		if model.Name == "PumpType_D0" {
			derived++
		}
	}
	assert.Equal(t, 1, derived)
	assert.Len(t, result.Assets, 3)
}

func TestSession_PlaceholderDepthBound(t *testing.T) {
	opts := DefaultOptions()
	opts.HierarchyMaxDepth = 4

	result := runSession(t, opts, typesPayload(), map[string]any{"tags": []any{}})

	require.Len(t, result.Models, 4)
	assert.Equal(t, "__Group", result.Models[0].Name)
	assert.Equal(t, "__Node", result.Models[1].Name)
	assert.Equal(t, "__DeviceLevel1", result.Models[2].Name)
	assert.Equal(t, "__DeviceLevel2", result.Models[3].Name)

	// Chained parents rooted at the implicit root.
	assert.Equal(t, models.RootModelName, result.Models[0].Parent)
	assert.Equal(t, "__Group", result.Models[1].Parent)
	assert.Equal(t, "__Node", result.Models[2].Parent)
	assert.Equal(t, "__DeviceLevel1", result.Models[3].Parent)

	for _, model := range result.Models {
		assert.Empty(t, model.Properties)
	}
}

func TestSession_FolderBeyondPlaceholderRangeIsFatal(t *testing.T) {
	opts := DefaultOptions()
	opts.HierarchyMaxDepth = 2

	deep := map[string]any{
		"tags": []any{
			map[string]any{
				"name": "L0",
				"tags": []any{
					map[string]any{
						"name": "L1",
						"tags": []any{map[string]any{"name": "L2"}},
					},
				},
			},
		},
	}

	_, err := NewSession(opts, zap.NewNop()).Run([]map[string]any{deep})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrDepthExceeded)
}

func TestSession_UnknownTypeIsFatal(t *testing.T) {
	payload := map[string]any{
		"tags": []any{
			map[string]any{"name": "Mystery", "tagType": "UdtInstance", "typeId": "GhostType"},
		},
	}

	_, err := NewSession(DefaultOptions(), zap.NewNop()).Run([]map[string]any{payload})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnknownType)
}

func TestSession_MissingParameterIsFatal(t *testing.T) {
	payload := map[string]any{
		"tags": []any{
			map[string]any{
				"name":       "Pump1",
				"tagType":    "UdtInstance",
				"typeId":     "PumpType",
				"parameters": map[string]any{"wrongKey": "P1"},
			},
		},
	}

	_, err := NewSession(DefaultOptions(), zap.NewNop()).Run([]map[string]any{typesPayload(), payload})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrMissingParameter)
}

func TestSession_InstanceWithoutParametersHasEmptyTags(t *testing.T) {
	payload := map[string]any{
		"tags": []any{
			map[string]any{"name": "Pump1", "tagType": "UdtInstance", "typeId": "PumpType"},
		},
	}

	result := runSession(t, DefaultOptions(), typesPayload(), payload)

	asset := assetByName(result, "/Pump1")
	require.NotNil(t, asset)
	assert.Empty(t, asset.Tags)
}

func TestSession_UnsupportedMetricsDropped(t *testing.T) {
	payload := map[string]any{
		"tags": []any{
			map[string]any{
				"name": "_types_",
				"tags": []any{
					map[string]any{
						"name":    "MixedType",
						"tagType": "UdtType",
						"tags": []any{
							map[string]any{
								"name":        "Level",
								"dataType":    "Int4",
								"opcItemPath": map[string]any{"binding": "ns=1;s=[default]Tanks/{tankId}/Level"},
							},
							map[string]any{
								"name":     "SubUnit",
								"dataType": "Template",
							},
							map[string]any{
								"name": "NoDataType",
							},
						},
					},
				},
			},
			map[string]any{
				"name":       "Tank1",
				"tagType":    "UdtInstance",
				"typeId":     "MixedType",
				"parameters": map[string]any{"tankId": "T1"},
			},
		},
	}

	result := runSession(t, DefaultOptions(), payload)

	model := modelByName(result, "MixedType_D0")
	require.NotNil(t, model)
	require.Len(t, model.Properties, 1)
	assert.Equal(t, "Level", model.Properties[0].Name)
	assert.Equal(t, "INTEGER", model.Properties[0].DataType)
}

func TestSession_UnrecognizedDataTypeMapsToUndefined(t *testing.T) {
	payload := map[string]any{
		"tags": []any{
			map[string]any{
				"name": "_types_",
				"tags": []any{
					map[string]any{
						"name":    "OddType",
						"tagType": "UdtType",
						"tags": []any{
							map[string]any{
								"name":        "Blob",
								"dataType":    "ByteArray",
								"opcItemPath": map[string]any{"binding": "ns=1;s=[default]Odd/Blob"},
							},
						},
					},
				},
			},
			map[string]any{"name": "Odd1", "tagType": "UdtInstance", "typeId": "OddType"},
		},
	}

	result := runSession(t, DefaultOptions(), payload)

	model := modelByName(result, "OddType_D0")
	require.NotNil(t, model)
	require.Len(t, model.Properties, 1)
	assert.Empty(t, model.Properties[0].DataType)
}

func TestSession_NumericParametersStringified(t *testing.T) {
	payload := map[string]any{
		"tags": []any{
			map[string]any{
				"name":       "Pump7",
				"tagType":    "UdtInstance",
				"typeId":     "PumpType",
				"parameters": map[string]any{"pumpId": 7},
			},
		},
	}

	result := runSession(t, DefaultOptions(), typesPayload(), payload)

	asset := assetByName(result, "/Pump7")
	require.NotNil(t, asset)
	require.Len(t, asset.Tags, 1)
	assert.Equal(t, "/Tag Providers/default/Pumps/7/Speed", asset.Tags[0].TagPath)
}

func TestSession_AssetNamesAreUniquePaths(t *testing.T) {
	payload := map[string]any{
		"tags": []any{
			map[string]any{
				"name": "Site",
				"tags": []any{
					map[string]any{"name": "Line1", "tags": []any{pumpInstance("Pump1", "P1")}},
					map[string]any{"name": "Line2", "tags": []any{pumpInstance("Pump1", "P2")}},
				},
			},
		},
	}

	result := runSession(t, DefaultOptions(), typesPayload(), payload)

	seen := map[string]bool{}
	for _, asset := range result.Assets {
		assert.False(t, seen[asset.Name], "duplicate asset name %q", asset.Name)
		seen[asset.Name] = true

		if asset.ParentName != "" {
			assert.Contains(t, asset.Name, asset.ParentName+"/")
		}
	}

	assert.True(t, seen["/Site/Line1/Pump1"])
	assert.True(t, seen["/Site/Line2/Pump1"])
}

func TestSession_DeterministicAcrossRuns(t *testing.T) {
	build := func() []map[string]any {
		return []map[string]any{
			typesPayload(),
			{"tags": []any{
				pumpInstance("Pump1", "P1"),
				map[string]any{"name": "Area", "tags": []any{pumpInstance("Pump2", "P2")}},
			}},
		}
	}

	first := runSession(t, DefaultOptions(), build()...)
	second := runSession(t, DefaultOptions(), build()...)

	assert.Equal(t, first.Models, second.Models)
	assert.Equal(t, first.Assets, second.Assets)
}

func TestSession_PreOrderEmission(t *testing.T) {
	payload := map[string]any{
		"tags": []any{
			map[string]any{
				"name": "Site",
				"tags": []any{
					map[string]any{"name": "A"},
					map[string]any{"name": "B"},
				},
			},
		},
	}

	result := runSession(t, DefaultOptions(), payload)

	names := make([]string, 0, len(result.Assets))
	for _, asset := range result.Assets {
		names = append(names, asset.Name)
	}
	assert.Equal(t, []string{"/Site", "/Site/A", "/Site/B"}, names)
}

func TestSession_DeepTreeWalksWithoutRecursion(t *testing.T) {
	// A folder chain far deeper than any sane call stack budget; the
	// walk must be bounded only by the placeholder range.
	const depth = 5000

	opts := DefaultOptions()
	opts.HierarchyMaxDepth = depth + 1

	leaf := map[string]any{"name": fmt.Sprintf("L%d", depth-1)}
	node := leaf
	for i := depth - 2; i >= 0; i-- {
		node = map[string]any{
			"name": fmt.Sprintf("L%d", i),
			"tags": []any{node},
		}
	}

	result := runSession(t, opts, map[string]any{"tags": []any{node}})
	assert.Len(t, result.Assets, depth)
}
