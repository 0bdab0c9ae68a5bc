// Package shape describes request and response bodies as a closed set of
// shapes: scalars, lists, named models with fields, and string-keyed maps.
package shape

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/stoewer/go-strcase"

	"github.com/mark3labs/apiview/internal/codemodel"
	"github.com/mark3labs/apiview/internal/typeresolve"
)

// ErrShapeMismatch reports a body description that does not fit any shape.
var ErrShapeMismatch = errors.New("shape mismatch")

type Kind int

const (
	Scalar Kind = iota + 1
	ListOf
	Fields
	MapOf
)

func (k Kind) String() string {
	switch k {
	case Scalar:
		return "scalar"
	case ListOf:
		return "list"
	case Fields:
		return "fields"
	case MapOf:
		return "map"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Shape is one node of a body description.
//
//   - Scalar: Type is the display type.
//   - ListOf, MapOf: Elem is the item or value shape.
//   - Fields: Name is the model name and Fields its members in order.
type Shape struct {
	Kind   Kind
	Type   string
	Name   string
	Elem   *Shape
	Fields []Field
}

type Field struct {
	Name     string
	Optional bool
	Shape    *Shape
}

func NewScalar(typ string) *Shape { return &Shape{Kind: Scalar, Type: typ} }
func NewList(elem *Shape) *Shape  { return &Shape{Kind: ListOf, Elem: elem} }
func NewMap(value *Shape) *Shape  { return &Shape{Kind: MapOf, Elem: value} }

func NewModel(name string, fields ...Field) *Shape {
	return &Shape{Kind: Fields, Name: name, Fields: fields}
}

// unknownType is shown for schemas the type resolver cannot name.
const unknownType = "unknown"

// anonymousModel names an unnamed top-level object.
const anonymousModel = "Body"

// FromSchema builds the shape of a code-model schema. Objects become models;
// an object reached again below itself is cut to a scalar reference so
// recursive schemas stay finite. Unnamed objects are named after the field
// holding them.
func FromSchema(s *codemodel.Schema) *Shape {
	if s == nil {
		return nil
	}
	return fromSchema(s, anonymousModel, map[*codemodel.Schema]bool{})
}

func fromSchema(s *codemodel.Schema, hint string, open map[*codemodel.Schema]bool) *Shape {
	switch s.Type {
	case codemodel.TypeObject:
		name := s.Name()
		if name == "" {
			name = hint
		}
		if open[s] {
			return NewScalar(name)
		}
		open[s] = true
		defer delete(open, s)

		model := NewModel(name)
		for _, p := range s.Properties {
			if p == nil || p.Schema == nil {
				continue
			}
			model.Fields = append(model.Fields, Field{
				Name:     p.Name(),
				Optional: !p.Required,
				Shape:    fromSchema(p.Schema, strcase.UpperCamelCase(p.Name()), open),
			})
		}
		return model
	case codemodel.TypeArray:
		if s.ElementType == nil {
			return NewScalar(unknownType + "[]")
		}
		return NewList(fromSchema(s.ElementType, hint, open))
	case codemodel.TypeDictionary:
		if s.ElementType == nil {
			return NewMap(NewScalar(unknownType))
		}
		return NewMap(fromSchema(s.ElementType, hint, open))
	}
	typ, ok := typeresolve.Resolve(s, false)
	if !ok {
		typ = unknownType
	}
	return NewScalar(typ)
}

// mapKey marks a legacy template object as a string-keyed map.
const mapKey = "str"

const optionalMarker = "(optional)"

// FromTemplate converts a legacy JSON body template into a shape. Templates
// are strings ("int32 (optional)"), lists holding one item template, or
// objects of field templates; an object whose only key is "str" is a map.
// Objects are named name, and nested objects take the field name.
func FromTemplate(name string, v any) (*Shape, error) {
	sh, _, err := fromTemplate(name, v, "$")
	return sh, err
}

// fromTemplate also reports whether a string leaf carried the optional marker.
func fromTemplate(name string, v any, path string) (*Shape, bool, error) {
	switch t := v.(type) {
	case string:
		fields := strings.Fields(t)
		if len(fields) == 0 {
			return nil, false, fmt.Errorf("%w: empty scalar at %s", ErrShapeMismatch, path)
		}
		optional := strings.Contains(t, optionalMarker)
		return NewScalar(fields[0]), optional, nil
	case []any:
		if len(t) == 0 {
			return nil, false, fmt.Errorf("%w: empty list at %s", ErrShapeMismatch, path)
		}
		elem, optional, err := fromTemplate(name, t[0], path+"[0]")
		if err != nil {
			return nil, false, err
		}
		return NewList(elem), optional, nil
	case map[string]any:
		if vt, ok := t[mapKey]; ok {
			if len(t) != 1 {
				return nil, false, fmt.Errorf("%w: map marker %q mixed with fields at %s", ErrShapeMismatch, mapKey, path)
			}
			elem, optional, err := fromTemplate(name, vt, path+"."+mapKey)
			if err != nil {
				return nil, false, err
			}
			return NewMap(elem), optional, nil
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		model := NewModel(name)
		for _, k := range keys {
			child, optional, err := fromTemplate(k, t[k], path+"."+k)
			if err != nil {
				return nil, false, err
			}
			model.Fields = append(model.Fields, Field{Name: k, Optional: optional, Shape: child})
		}
		return model, false, nil
	}
	return nil, false, fmt.Errorf("%w: unexpected %T at %s", ErrShapeMismatch, v, path)
}
