// Package typeresolve maps code-model schemas to the display type strings
// used in rendered signatures.
package typeresolve

import "github.com/mark3labs/apiview/internal/codemodel"

// maxDepth bounds recursion through element and property chains so that
// cyclic schemas resolve to "unknown" instead of overflowing the stack.
const maxDepth = 32

// Resolve returns the display type of s. page selects page-envelope
// unwrapping: an object resolves to the type of its first property and an
// array of models to the bare model name. ok is false when s is nil,
// malformed or has no type; that outcome is displayable and never an error.
func Resolve(s *codemodel.Schema, page bool) (string, bool) {
	return resolve(s, page, 0)
}

func resolve(s *codemodel.Schema, page bool, depth int) (string, bool) {
	if s == nil || s.Type == "" || depth > maxDepth {
		return "", false
	}

	switch s.Type {
	case codemodel.TypeChoice, codemodel.TypeSealedChoice:
		return resolve(s.ChoiceType, page, depth+1)

	case codemodel.TypeDictionary:
		elem, ok := resolve(s.ElementType, false, depth+1)
		if !ok {
			return "", false
		}
		return "dictionary[string, " + elem + "]", true

	case codemodel.TypeObject:
		if page {
			if len(s.Properties) == 0 || s.Properties[0] == nil {
				return "", false
			}
			return resolve(s.Properties[0].Schema, true, depth+1)
		}
		if name := s.Name(); name != "" {
			return name, true
		}
		return "", false

	case codemodel.TypeArray:
		e := s.ElementType
		if e == nil || e.Type == "" {
			return "", false
		}
		if e.Type != codemodel.TypeObject && e.Type != codemodel.TypeChoice && e.Type != codemodel.TypeSealedChoice {
			elem, ok := resolve(e, false, depth+1)
			if !ok {
				return "", false
			}
			return elem + "[]", true
		}
		name := e.Name()
		if name == "" {
			return "", false
		}
		if page {
			return name, true
		}
		return name + "[]", true

	case codemodel.TypeNumber:
		switch s.Precision {
		case 32:
			return "float32", true
		case 64:
			return "float64", true
		}
		return s.Type, true

	case codemodel.TypeInteger:
		switch s.Precision {
		case 32:
			return "int32", true
		case 64:
			return "int64", true
		}
		return s.Type, true

	case codemodel.TypeBoolean:
		return "bool", true
	}
	return s.Type, true
}

// UnsupportedPrecision reports whether s is a numeric schema whose precision
// has no sized mapping, so it resolves to the generic keyword.
func UnsupportedPrecision(s *codemodel.Schema) bool {
	if s == nil || (s.Type != codemodel.TypeNumber && s.Type != codemodel.TypeInteger) {
		return false
	}
	return s.Precision != 32 && s.Precision != 64
}
