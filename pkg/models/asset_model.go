package models

// ChangeYes marks every emitted record as changed. No differential
// state is computed; downstream consumers key off this sentinel.
const ChangeYes = "YES"

// RootModelName is the implicit parent of depth-0 placeholder models.
const RootModelName = "root"

// AssetModel is a normalized model record destined for the asset-model
// table. Name is globally unique across one conversion run: placeholder
// models by fixed naming, derived models as <typeId>_D<depth>.
type AssetModel struct {
	Name        string          `json:"assetModelName"`
	Parent      string          `json:"parent"`
	Properties  []ModelProperty `json:"assetModelProperties"`
	Hierarchies []ModelRef      `json:"assetModelHierarchies"`
	Change      string          `json:"change"`
}

// ModelProperty is one measurement property on an asset model.
type ModelProperty struct {
	Name     string       `json:"name"`
	DataType string       `json:"dataType"`
	Type     PropertyType `json:"type"`
}

// PropertyType tags a property as a measurement. Only measurements are
// emitted today; the wrapper mirrors the destination record shape.
type PropertyType struct {
	Measurement struct{} `json:"measurement"`
}

// ModelRef names another model from a hierarchy definition.
type ModelRef struct {
	Name string `json:"name"`
}
