package models

import "encoding/json"

// Tag type discriminants used by Ignition birth payloads.
const (
	TagTypeUDTType     = "UdtType"
	TagTypeUDTInstance = "UdtInstance"
)

// TypesContainerName is the reserved member holding UDT definitions.
const TypesContainerName = "_types_"

// BirthTag is one node of the tag tree carried by a birth message.
// Only the fields the converter reads are declared; everything else in
// the payload is ignored.
type BirthTag struct {
	Name        string                     `json:"name"`
	TagType     string                     `json:"tagType,omitempty"`
	TypeID      string                     `json:"typeId,omitempty"`
	DataType    string                     `json:"dataType,omitempty"`
	OpcItemPath *OpcItemPath               `json:"opcItemPath,omitempty"`
	Parameters  map[string]json.RawMessage `json:"parameters,omitempty"`
	Tags        []BirthTag                 `json:"tags,omitempty"`
}

// OpcItemPath carries the templated binding to the live OPC item.
type OpcItemPath struct {
	Binding string `json:"binding"`
}

// IsInstance reports whether the node is a typed asset instance.
// Anything else is folder structure.
func (t *BirthTag) IsInstance() bool {
	return t.TagType == TagTypeUDTInstance
}

// TypeDefinition is a UDT captured from the _types_ container: a named,
// reusable template of member metrics that instances reference by id.
type TypeDefinition struct {
	Name    string     `json:"name"`
	Metrics []BirthTag `json:"tags"`
}

// ConvertEvent is the invocation payload: an ordered batch of partial
// birth trees to be merged and normalized in one pass.
type ConvertEvent struct {
	BirthData []map[string]any `json:"birthData"`
}
