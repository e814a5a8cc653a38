package types

import "github.com/takane-go/takane/internal/jsonval"

// Json is a tagged-union JSON value, exactly the {Null, Bool, Number,
// String, Array, Object} shape the takane format spec requires of its
// metadata values. It is a thin public alias over the internal jsoniter-
// backed implementation.
type Json = jsonval.Value

// JsonKind is the tag of a Json value.
type JsonKind = jsonval.Kind

const (
	JsonNull    = jsonval.KindNull
	JsonBool    = jsonval.KindBool
	JsonNumber  = jsonval.KindNumber
	JsonString  = jsonval.KindString
	JsonArray   = jsonval.KindArray
	JsonObject  = jsonval.KindObject
	JsonInvalid = jsonval.KindInvalid
)
