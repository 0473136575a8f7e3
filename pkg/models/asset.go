package models

// Asset is a flattened, path-qualified asset record. Name equals the
// full hierarchical path from its root asset group ("/Plant/Line1/Pump3")
// and is the global uniqueness key for assets.
type Asset struct {
	Name       string     `json:"assetName"`
	ModelName  string     `json:"modelName"`
	ParentName string     `json:"parentName,omitempty"`
	Tags       []TagAlias `json:"tags"`
	Change     string     `json:"change"`
}

// TagAlias binds one model property to the resolved path of its live
// data source for a concrete asset instance.
type TagAlias struct {
	TagName string `json:"tagName"`
	TagPath string `json:"tagPath"`
}
