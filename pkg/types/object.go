package types

// ObjectMetadata is the parsed content of an object's OBJECT file: the
// declared type, lifted to a top-level field, plus everything else as an
// opaque key/value mapping (typically nested under a key equal to the type
// name itself, holding at least a "version" field).
type ObjectMetadata struct {
	Type  string
	Other map[string]Json
}

// TypedObject returns the nested metadata object conventionally stored
// under a key equal to typeName (e.g. metadata.other["atomic_vector"]),
// failing with a StructureError if it is absent or not a JSON object.
func (m ObjectMetadata) TypedObject(typeName string) (Json, error) {
	v, ok := m.Other[typeName]
	if !ok {
		return Json{}, NewError(ErrKindStructure, "expected a '%s' property", typeName)
	}
	if !v.IsObject() {
		return Json{}, NewError(ErrKindStructure, "expected '%s' property to be a JSON object", typeName)
	}
	return v, nil
}

// StringField fetches a required string field from a JSON object value.
func StringField(obj Json, field, context string) (string, error) {
	v, ok := obj.Field(field)
	if !ok {
		return "", NewError(ErrKindStructure, "expected a '%s.%s' property", context, field)
	}
	s, ok := v.String()
	if !ok {
		return "", NewError(ErrKindStructure, "expected '%s.%s' to be a string", context, field)
	}
	return s, nil
}

// OptionalStringField fetches an optional string field, returning ok=false
// if absent.
func OptionalStringField(obj Json, field string) (string, bool) {
	v, ok := obj.Field(field)
	if !ok {
		return "", false
	}
	return v.String()
}

// OptionalBoolField fetches an optional bool field, defaulting to def if
// absent.
func OptionalBoolField(obj Json, field string, def bool) bool {
	v, ok := obj.Field(field)
	if !ok {
		return def
	}
	b, ok := v.Bool()
	if !ok {
		return def
	}
	return b
}

// IntField fetches a required numeric field, truncated to int.
func IntField(obj Json, field, context string) (int, error) {
	v, ok := obj.Field(field)
	if !ok {
		return 0, NewError(ErrKindStructure, "expected a '%s.%s' property", context, field)
	}
	n, ok := v.Int()
	if !ok {
		return 0, NewError(ErrKindStructure, "expected '%s.%s' to be a number", context, field)
	}
	return n, nil
}
