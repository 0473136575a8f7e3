package converter

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/plantops/assetmodeler/pkg/models"
)

// Options configures one conversion session.
type Options struct {
	// HierarchyMaxDepth bounds placeholder model generation, usually the
	// max hierarchy depth the destination store allows.
	HierarchyMaxDepth int

	// TagAliasPrefix replaces the bracketed source prefix when resolving
	// tag paths, e.g. "/Tag Providers/default".
	TagAliasPrefix string

	// TagBlacklist names top-level members excluded from the asset walk.
	TagBlacklist []string
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		HierarchyMaxDepth: 10,
		TagAliasPrefix:    "/Tag Providers/default",
		TagBlacklist:      []string{"Sim Controls"},
	}
}

// Session owns all intermediate state for one normalization pass: the
// type registry, the model cache, the per-model property templates and
// the depth-to-placeholder map. Sessions are single-use and not safe
// for concurrent use; build a fresh one per invocation.
type Session struct {
	opts   Options
	logger *zap.Logger

	types map[string]models.TypeDefinition

	modelCache map[string]*models.AssetModel
	modelOrder []string

	// propertyTemplates maps model name -> property name -> parsed
	// source-path template awaiting instance parameters.
	propertyTemplates map[string]map[string]SourceTemplate

	// depthModels maps tree depth to the placeholder model hosting
	// folder nodes at that depth.
	depthModels map[int]string

	assets     map[string]*models.Asset
	assetOrder []string
}

// Result carries the raw and normalized collections out of one session.
// Raw, Types and Roots are intermediate structures kept for debug
// snapshots; Models and Assets are the destination record sets.
type Result struct {
	Raw   map[string]any
	Types map[string]models.TypeDefinition
	Roots []models.BirthTag

	Models []*models.AssetModel
	Assets []*models.Asset
}

// NewSession creates a session with its own empty caches.
func NewSession(opts Options, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		opts:              opts,
		logger:            logger.Named("converter"),
		types:             map[string]models.TypeDefinition{},
		modelCache:        map[string]*models.AssetModel{},
		propertyTemplates: map[string]map[string]SourceTemplate{},
		depthModels:       map[int]string{},
		assets:            map[string]*models.Asset{},
	}
}

// Run executes the full normalization pass: merge, partition,
// placeholder generation and the asset tree walk. A fatal condition
// unwinds the whole pass; nothing partial is returned.
func (s *Session) Run(payloads []map[string]any) (*Result, error) {
	merged := MergeBirthData(payloads)

	types, roots, err := Partition(merged, s.opts.TagBlacklist)
	if err != nil {
		return nil, fmt.Errorf("failed to partition birth data: %w", err)
	}
	s.types = types

	if err := s.generatePlaceholderModels(); err != nil {
		return nil, fmt.Errorf("failed to generate placeholder models: %w", err)
	}

	for i := range roots {
		if err := s.walkAssetTree(roots[i]); err != nil {
			return nil, fmt.Errorf("failed to walk asset group %q: %w", roots[i].Name, err)
		}
	}

	s.logger.Info("Conversion pass complete",
		zap.Int("types", len(types)),
		zap.Int("asset_groups", len(roots)),
		zap.Int("models", len(s.modelOrder)),
		zap.Int("assets", len(s.assetOrder)))

	return &Result{
		Raw:    merged,
		Types:  types,
		Roots:  roots,
		Models: s.orderedModels(),
		Assets: s.orderedAssets(),
	}, nil
}

// registerModel caches a model under its name, preserving first-insert
// order for deterministic output.
func (s *Session) registerModel(model *models.AssetModel) {
	if _, exists := s.modelCache[model.Name]; !exists {
		s.modelOrder = append(s.modelOrder, model.Name)
	}
	s.modelCache[model.Name] = model
}

// registerAsset stores an asset under its path. Paths are unique by
// construction, but a repeated path replaces the record in place
// (last write wins) without disturbing emission order.
func (s *Session) registerAsset(asset *models.Asset) {
	if _, exists := s.assets[asset.Name]; !exists {
		s.assetOrder = append(s.assetOrder, asset.Name)
	}
	s.assets[asset.Name] = asset
}

func (s *Session) orderedModels() []*models.AssetModel {
	out := make([]*models.AssetModel, 0, len(s.modelOrder))
	for _, name := range s.modelOrder {
		out = append(out, s.modelCache[name])
	}
	return out
}

func (s *Session) orderedAssets() []*models.Asset {
	out := make([]*models.Asset, 0, len(s.assetOrder))
	for _, name := range s.assetOrder {
		out = append(out, s.assets[name])
	}
	return out
}
