package converter

import (
	"fmt"

	"github.com/plantops/assetmodeler/pkg/models"
)

// dataTypeTable maps Ignition metric data types to destination property
// types. DateTime arrives as an epoch value, hence INTEGER.
var dataTypeTable = map[string]string{
	"Int4":     "INTEGER",
	"Int8":     "INTEGER",
	"Int16":    "INTEGER",
	"Int32":    "INTEGER",
	"Int64":    "INTEGER",
	"Float4":   "DOUBLE",
	"Double":   "DOUBLE",
	"Boolean":  "BOOLEAN",
	"String":   "STRING",
	"DateTime": "INTEGER",
}

// unsupportedDataTypes lists metric types that are silently dropped.
// Template metrics are composite and have no destination representation.
var unsupportedDataTypes = map[string]struct{}{
	"Template": {},
}

// buildModel normalizes a metric list into an asset model and registers
// it in the session's model cache. Metrics without a data type, or with
// an unsupported one, are dropped rather than treated as errors. Each
// kept metric's source-path template is parsed and recorded under the
// model for later per-instance resolution.
func (s *Session) buildModel(name string, metrics []models.BirthTag, parentName string) (*models.AssetModel, error) {
	model := &models.AssetModel{
		Name:        name,
		Parent:      parentName,
		Properties:  []models.ModelProperty{},
		Hierarchies: []models.ModelRef{},
		Change:      models.ChangeYes,
	}

	s.propertyTemplates[name] = map[string]SourceTemplate{}

	for i := range metrics {
		metric := &metrics[i]

		if metric.DataType == "" {
			continue
		}
		if _, unsupported := unsupportedDataTypes[metric.DataType]; unsupported {
			continue
		}

		if metric.OpcItemPath == nil {
			return nil, fmt.Errorf("metric %q on model %q has no opcItemPath binding", metric.Name, name)
		}

		template, err := ParseSourceTemplate(metric.OpcItemPath.Binding)
		if err != nil {
			return nil, fmt.Errorf("metric %q on model %q: %w", metric.Name, name, err)
		}
		s.propertyTemplates[name][metric.Name] = template

		model.Properties = append(model.Properties, models.ModelProperty{
			Name: metric.Name,
			// Unrecognized-but-present types map to the zero value, not
			// an error; the destination treats it as an undefined type.
			DataType: dataTypeTable[metric.DataType],
			Type:     models.PropertyType{},
		})
	}

	s.registerModel(model)
	return model, nil
}
