package view

import (
	"fmt"

	"github.com/mark3labs/apiview/internal/token"
)

// ParameterView is one operation parameter. An empty Type marks a parameter
// without a displayable type; operations drop those before rendering.
type ParameterView struct {
	Name      string
	Type      string
	Default   *string
	Required  bool
	Namespace string
}

// Tokens renders "type[?] name[ = default]".
func (p ParameterView) Tokens() []token.Token {
	if p.Type == "" {
		return nil
	}
	var s token.Stream
	s.StringLiteral(p.Type)
	if !p.Required {
		s.StringLiteral("?")
	}
	s.Space()
	s.Text(p.Name)
	if p.Default != nil {
		s.Space()
		s.Punct("=")
		s.Space()
		s.Literal(*p.Default)
	}
	return s.Tokens()
}

// formatDefault renders a schema default as a literal. Strings are quoted.
func formatDefault(v any) *string {
	if v == nil {
		return nil
	}
	var out string
	switch t := v.(type) {
	case string:
		out = fmt.Sprintf("%q", t)
	default:
		out = fmt.Sprint(t)
	}
	return &out
}
