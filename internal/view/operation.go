package view

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/apiview/internal/shape"
	"github.com/mark3labs/apiview/internal/token"
)

// ErrAlreadyRendered is returned by a second Render call on the same view.
var ErrAlreadyRendered = errors.New("view already rendered")

// OperationView is one operation. It is built once from the code model and
// rendered once.
type OperationView struct {
	Name string
	// ReturnType is "" when the response type is unknown; it renders as void.
	ReturnType  string
	Parameters  []ParameterView
	Description string
	Paging      bool
	LRO         bool
	Request     *shape.Shape
	Response    *shape.Shape
	StatusCodes []string
	Namespace   string
	Flavor      Flavor

	rendered bool
}

// Placement gives an operation its ids and indent inside the document.
type Placement struct {
	OverviewID string
	DetailsID  string
	Indent     int
}

// RenderedOperation holds the condensed overview line and the expanded
// details block of one operation.
type RenderedOperation struct {
	Overview []token.Token
	Details  []token.Token
}

// Render emits the overview and details tokens. It may be called once.
func (o *OperationView) Render(p Placement) (RenderedOperation, error) {
	if o.rendered {
		return RenderedOperation{}, fmt.Errorf("operation %s: %w", o.Name, ErrAlreadyRendered)
	}
	o.rendered = true

	params := o.renderable()
	details, err := o.details(p, params)
	if err != nil {
		return RenderedOperation{}, fmt.Errorf("operation %s: %w", o.Name, err)
	}
	return RenderedOperation{Overview: o.overview(p, params), Details: details}, nil
}

// renderable drops parameters without a type.
func (o *OperationView) renderable() []ParameterView {
	out := make([]ParameterView, 0, len(o.Parameters))
	for _, p := range o.Parameters {
		if p.Type != "" {
			out = append(out, p)
		}
	}
	return out
}

func (o *OperationView) marker() string {
	switch {
	case o.Paging && o.LRO:
		return "PagingLRO"
	case o.Paging:
		return "Paging"
	case o.LRO:
		return "LRO"
	}
	return ""
}

// signature emits "[Marker[]ReturnType[]] name" with the name defining and
// navigating to id.
func (o *OperationView) signature(s *token.Stream, id string) {
	marker := o.marker()
	if marker != "" {
		s.Text(marker)
		s.Punct("[")
	}
	ret := o.ReturnType
	if ret == "" {
		ret = "void"
	}
	s.StringLiteral(ret)
	if marker != "" {
		s.Punct("]")
	}
	s.Space()
	s.Keyword(o.Name, token.Defines(id), token.NavigatesTo(id))
}

func (o *OperationView) overview(p Placement, params []ParameterView) []token.Token {
	var s token.Stream
	s.Indent(p.Indent)
	o.signature(&s, p.OverviewID)
	s.Punct("(")
	for i, param := range params {
		if i > 0 {
			s.Punct(",")
			s.Space()
		}
		s.Append(param.Tokens()...)
	}
	s.Punct(")")
	s.Newline()
	return s.Tokens()
}

func (o *OperationView) details(p Placement, params []ParameterView) ([]token.Token, error) {
	var s token.Stream
	s.Indent(p.Indent)
	o.signature(&s, p.DetailsID)
	s.Newline()

	if desc := strings.TrimSpace(o.Description); desc != "" {
		s.StartDocGroup()
		for _, line := range strings.Split(desc, "\n") {
			s.Indent(p.Indent + 1)
			s.Comment(strings.TrimRight(line, " \t\r"))
			s.Newline()
		}
		s.EndDocGroup()
	}

	s.Indent(p.Indent + 1)
	s.Punct("(")
	s.Newline()
	for i, param := range params {
		s.Indent(p.Indent + 2)
		s.Append(param.Tokens()...)
		if i < len(params)-1 {
			s.Punct(",")
		}
		s.Newline()
	}
	s.Indent(p.Indent + 1)
	s.Punct(")")
	s.Newline()

	if len(o.StatusCodes) > 0 {
		s.StartDocGroup()
		s.LineMarker(p.DetailsID + ".StatusCodes")
		s.Indent(p.Indent + 1)
		s.TypeName("Status Codes")
		s.Punct(":")
		for i, code := range o.StatusCodes {
			if i > 0 {
				s.Punct(",")
			}
			s.Space()
			s.Literal(code)
		}
		s.Newline()
		s.EndDocGroup()
	}

	body := bodyRenderer{flavor: o.Flavor.orDefault()}
	for _, block := range []struct {
		label string
		shape *shape.Shape
	}{
		{"Request", o.Request},
		{"Response", o.Response},
	} {
		if block.shape == nil {
			continue
		}
		toks, err := body.render(block.shape, bodyIndent)
		if err != nil {
			return nil, fmt.Errorf("%s body: %w", strings.ToLower(block.label), err)
		}
		s.StartDocGroup()
		s.LineMarker(p.DetailsID + "." + block.label)
		s.Indent(p.Indent + 1)
		s.TypeName(block.label)
		s.Newline()
		s.Append(toks...)
		s.EndDocGroup()
	}
	return s.Tokens(), nil
}
