package converter

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/plantops/assetmodeler/pkg/apperrors"
	"github.com/plantops/assetmodeler/pkg/jsonutil"
	"github.com/plantops/assetmodeler/pkg/models"
)

// nodeKind is the closed classification of a tree node: either a typed
// asset instance or plain folder structure.
type nodeKind int

const (
	nodeFolder nodeKind = iota
	nodeInstance
)

func classifyNode(node *models.BirthTag) nodeKind {
	if node.IsInstance() {
		return nodeInstance
	}
	return nodeFolder
}

// walkFrame is one pending node on the traversal work stack.
type walkFrame struct {
	node       *models.BirthTag
	depth      int
	parentPath string
}

// walkAssetTree traverses one asset-group root depth-first, pre-order,
// emitting one path-qualified asset record per node. The traversal uses
// an explicit work stack so adversarially deep trees cannot exhaust the
// call stack. Instances are leaves; folders recurse into their member
// list with child order preserved.
func (s *Session) walkAssetTree(root models.BirthTag) error {
	stack := []walkFrame{{node: &root, depth: 0, parentPath: ""}}

	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := frame.node
		nodePath := frame.parentPath + "/" + node.Name
		s.logger.Debug("Visiting asset node", zap.String("path", nodePath), zap.Int("depth", frame.depth))

		kind := classifyNode(node)

		modelName, err := s.resolveNodeModel(node, kind, frame.depth)
		if err != nil {
			return fmt.Errorf("node %q: %w", nodePath, err)
		}

		asset, err := s.buildAsset(node, nodePath, modelName, frame.parentPath)
		if err != nil {
			return fmt.Errorf("node %q: %w", nodePath, err)
		}
		s.registerAsset(asset)

		if kind == nodeFolder {
			// Children pushed in reverse so the first child is visited
			// first, keeping emission order equal to input order.
			for i := len(node.Tags) - 1; i >= 0; i-- {
				stack = append(stack, walkFrame{
					node:       &node.Tags[i],
					depth:      frame.depth + 1,
					parentPath: nodePath,
				})
			}
		}
	}

	return nil
}

// resolveNodeModel returns the model hosting the node. Instances derive
// a depth-qualified model from their UDT, built on first encounter and
// cached for every sibling sharing the (typeId, depth) pair. Folders
// use the placeholder model for their depth.
func (s *Session) resolveNodeModel(node *models.BirthTag, kind nodeKind, depth int) (string, error) {
	if kind == nodeInstance {
		derivedName := fmt.Sprintf("%s_D%d", node.TypeID, depth)

		if _, cached := s.modelCache[derivedName]; !cached {
			definition, ok := s.types[node.TypeID]
			if !ok {
				return "", fmt.Errorf("type %q: %w", node.TypeID, apperrors.ErrUnknownType)
			}
			if _, err := s.buildModel(derivedName, definition.Metrics, models.RootModelName); err != nil {
				return "", err
			}
		}

		return derivedName, nil
	}

	placeholderName, ok := s.depthModels[depth]
	if !ok {
		return "", fmt.Errorf("depth %d: %w", depth, apperrors.ErrDepthExceeded)
	}
	return placeholderName, nil
}

// buildAsset constructs the flattened record for one node. Tag aliases
// are resolved only when the model carries properties and the node
// supplies instance parameters; otherwise the tag list stays empty.
func (s *Session) buildAsset(node *models.BirthTag, nodePath, modelName, parentPath string) (*models.Asset, error) {
	asset := &models.Asset{
		Name:      nodePath,
		ModelName: modelName,
		Tags:      []models.TagAlias{},
		Change:    models.ChangeYes,
	}
	if parentPath != "" {
		asset.ParentName = parentPath
	}

	model := s.modelCache[modelName]

	if len(model.Properties) > 0 && node.Parameters != nil {
		parameters := jsonutil.StringParameters(node.Parameters)

		for _, property := range model.Properties {
			template := s.propertyTemplates[modelName][property.Name]

			tagPath, err := template.Resolve(parameters, s.opts.TagAliasPrefix)
			if err != nil {
				return nil, fmt.Errorf("property %q: %w", property.Name, err)
			}

			asset.Tags = append(asset.Tags, models.TagAlias{
				TagName: property.Name,
				TagPath: tagPath,
			})
		}
	}

	return asset, nil
}
