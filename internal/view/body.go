package view

import (
	"fmt"

	"github.com/mark3labs/apiview/internal/shape"
	"github.com/mark3labs/apiview/internal/token"
)

// ErrShapeMismatch is returned when a body shape cannot be rendered. It is
// the same sentinel the shape package uses.
var ErrShapeMismatch = shape.ErrShapeMismatch

// bodyIndent is the level of a top-level request or response model,
// whatever the operation's own indentation.
const bodyIndent = 4

// maxBodyDepth bounds nesting so a cyclic hand-built shape fails instead of
// recursing forever.
const maxBodyDepth = 64

// bodyRenderer turns a body shape into comment tokens that read like model
// declarations. Every call returns its own tokens; callers concatenate.
type bodyRenderer struct {
	flavor Flavor
}

func (b bodyRenderer) render(sh *shape.Shape, indent int) ([]token.Token, error) {
	if sh == nil {
		return nil, fmt.Errorf("%w: empty body at $", ErrShapeMismatch)
	}
	if sh.Kind == shape.Fields {
		return b.model(sh, indent, "$", 0)
	}

	expr, err := b.expr(sh, "$", 0)
	if err != nil {
		return nil, err
	}
	var s token.Stream
	s.Indent(indent)
	s.Comment(expr)
	s.Newline()
	nested, err := b.nested(sh, indent+1, "$", 0)
	if err != nil {
		return nil, err
	}
	s.Append(nested...)
	return s.Tokens(), nil
}

// model renders one "model Name {" block with its fields and the blocks of
// any models they reference, then closes it.
func (b bodyRenderer) model(sh *shape.Shape, indent int, path string, depth int) ([]token.Token, error) {
	if depth > maxBodyDepth {
		return nil, fmt.Errorf("%w: nesting too deep at %s", ErrShapeMismatch, path)
	}
	if sh.Name == "" {
		return nil, fmt.Errorf("%w: model without a name at %s", ErrShapeMismatch, path)
	}

	var s token.Stream
	s.Indent(indent)
	s.Comment(b.flavor.ModelKeyword + " " + sh.Name)
	s.Space()
	s.Comment("{")
	s.Newline()

	for _, f := range sh.Fields {
		fpath := path + "." + f.Name
		expr, err := b.expr(f.Shape, fpath, depth+1)
		if err != nil {
			return nil, err
		}
		name := f.Name
		if f.Optional {
			name += "?"
		}
		s.Indent(indent + 1)
		s.Comment(name + ": " + expr + ";")
		s.Newline()

		nested, err := b.nested(f.Shape, indent+2, fpath, depth+1)
		if err != nil {
			return nil, err
		}
		s.Append(nested...)
	}

	s.Indent(indent)
	s.Comment("}")
	s.Newline()
	return s.Tokens(), nil
}

// nested renders the model reached through lists and maps, if any.
func (b bodyRenderer) nested(sh *shape.Shape, indent int, path string, depth int) ([]token.Token, error) {
	for sh != nil && (sh.Kind == shape.ListOf || sh.Kind == shape.MapOf) {
		sh = sh.Elem
		depth++
		if depth > maxBodyDepth {
			return nil, fmt.Errorf("%w: nesting too deep at %s", ErrShapeMismatch, path)
		}
	}
	if sh == nil || sh.Kind != shape.Fields {
		return nil, nil
	}
	return b.model(sh, indent, path, depth)
}

// expr is the inline type of a shape: a scalar type, a model name, T[] or
// the flavor's map form.
func (b bodyRenderer) expr(sh *shape.Shape, path string, depth int) (string, error) {
	if depth > maxBodyDepth {
		return "", fmt.Errorf("%w: nesting too deep at %s", ErrShapeMismatch, path)
	}
	if sh == nil {
		return "", fmt.Errorf("%w: missing shape at %s", ErrShapeMismatch, path)
	}
	switch sh.Kind {
	case shape.Scalar:
		if sh.Type == "" {
			return "", fmt.Errorf("%w: scalar without a type at %s", ErrShapeMismatch, path)
		}
		return sh.Type, nil
	case shape.Fields:
		if sh.Name == "" {
			return "", fmt.Errorf("%w: model without a name at %s", ErrShapeMismatch, path)
		}
		return sh.Name, nil
	case shape.ListOf:
		elem, err := b.expr(sh.Elem, path+"[]", depth+1)
		if err != nil {
			return "", err
		}
		return elem + "[]", nil
	case shape.MapOf:
		elem, err := b.expr(sh.Elem, path+"{}", depth+1)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(b.flavor.MapFormat, elem), nil
	}
	return "", fmt.Errorf("%w: unknown shape kind %s at %s", ErrShapeMismatch, sh.Kind, path)
}
