// Package metadata implements the MetadataReader component: parsing an
// object's OBJECT file into a types.ObjectMetadata.
package metadata

import (
	"path/filepath"

	"github.com/takane-go/takane/internal/jsonval"
	"github.com/takane-go/takane/pkg/types"
)

// Read parses <path>/OBJECT and returns its metadata. It fails if the file
// is missing, is not a JSON object, or lacks a string "type" field.
func Read(path string) (types.ObjectMetadata, error) {
	objPath := filepath.Join(path, "OBJECT")
	root, err := jsonval.ParseFile(objPath)
	if err != nil {
		return types.ObjectMetadata{}, types.WrapError(types.ErrKindStructure, err, "could not read 'OBJECT' file at '%s'", path)
	}
	if !root.IsObject() {
		return types.ObjectMetadata{}, types.NewError(types.ErrKindStructure, "'OBJECT' file at '%s' does not contain a JSON object", path)
	}

	typeVal, ok := root.Field("type")
	if !ok {
		return types.ObjectMetadata{}, types.NewError(types.ErrKindStructure, "'OBJECT' file at '%s' is missing a 'type' property", path)
	}
	typeName, ok := typeVal.String()
	if !ok {
		return types.ObjectMetadata{}, types.NewError(types.ErrKindStructure, "'OBJECT' file at '%s' has a non-string 'type' property", path)
	}

	other := make(map[string]types.Json)
	for _, key := range root.Keys() {
		if key == "type" {
			continue
		}
		v, _ := root.Field(key)
		other[key] = v
	}

	return types.ObjectMetadata{Type: typeName, Other: other}, nil
}
