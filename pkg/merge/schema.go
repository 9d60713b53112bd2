package merge

import (
	"encoding"
	"encoding/json"
	"reflect"
	"strings"
)

var (
	jsonMarshaler = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	textMarshaler = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

// SchemaOf derives a schema from the exported fields of struct type T,
// keyed by their JSON names. Types with their own JSON encoding merge as
// First. A non-struct T yields an empty schema.
func SchemaOf[T any]() Schema {
	return schemaOf(reflect.TypeOf((*T)(nil)).Elem())
}

func schemaOf(t reflect.Type) Schema {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	s := Schema{}
	if t.Kind() != reflect.Struct {
		return s
	}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() && !sf.Anonymous {
			continue
		}
		name, skip := jsonName(sf)
		if skip {
			continue
		}
		ft := sf.Type
		for ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		if sf.Anonymous && name == "" && ft.Kind() == reflect.Struct {
			for k, v := range schemaOf(ft) {
				if _, ok := s[k]; !ok {
					s[k] = v
				}
			}
			continue
		}
		if name == "" {
			name = sf.Name
		}
		s[name] = fieldOf(ft)
	}
	return s
}

func jsonName(sf reflect.StructField) (name string, skip bool) {
	tag, ok := sf.Tag.Lookup("json")
	if !ok {
		return "", false
	}
	if tag == "-" {
		return "", true
	}
	name, _, _ = strings.Cut(tag, ",")
	return name, false
}

func fieldOf(t reflect.Type) Field {
	if t.Implements(jsonMarshaler) || t.Implements(textMarshaler) ||
		reflect.PointerTo(t).Implements(jsonMarshaler) || reflect.PointerTo(t).Implements(textMarshaler) {
		return Field{Kind: First}
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Field{Kind: Number, Integer: true}
	case reflect.Float32, reflect.Float64:
		return Field{Kind: Number}
	case reflect.String:
		return Field{Kind: Text}
	case reflect.Slice, reflect.Array:
		return Field{Kind: List}
	case reflect.Struct:
		return Field{Kind: Record, Fields: schemaOf(t)}
	case reflect.Map:
		return Field{Kind: Record}
	}
	return Field{Kind: First}
}
