package converter

import (
	"fmt"

	"github.com/plantops/assetmodeler/pkg/models"
)

// generatePlaceholderModels mints one generic folder model per depth
// level from 0 up to HierarchyMaxDepth (exclusive), each chained to the
// previous depth's model and rooted at the implicit root. Folders carry
// no measurements, so every placeholder has an empty property list.
func (s *Session) generatePlaceholderModels() error {
	parentName := models.RootModelName

	for depth := 0; depth < s.opts.HierarchyMaxDepth; depth++ {
		name := placeholderModelName(depth)

		model, err := s.buildModel(name, nil, parentName)
		if err != nil {
			return err
		}

		s.depthModels[depth] = model.Name
		parentName = model.Name
	}

	return nil
}

func placeholderModelName(depth int) string {
	switch depth {
	case 0:
		return "__Group"
	case 1:
		return "__Node"
	default:
		return fmt.Sprintf("__DeviceLevel%d", depth-1)
	}
}
