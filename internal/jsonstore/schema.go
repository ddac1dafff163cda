// Derives JSON Schemas for row types.

package jsonstore

import (
	"reflect"

	"github.com/invopop/jsonschema"
)

// SchemaOf returns the JSON Schema of one row of type T.
//
// Properties are inlined (no $ref) so the schema is self-contained.
func SchemaOf[T any]() *jsonschema.Schema {
	t := reflect.TypeFor[T]()
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	r := jsonschema.Reflector{Anonymous: true, DoNotReference: true}
	return r.ReflectFromType(t)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	//nolint:exhaustive // Only nillable kinds matter here.
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
