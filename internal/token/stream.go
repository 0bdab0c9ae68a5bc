package token

import "strings"

// IndentWidth is the number of spaces per indent level.
const IndentWidth = 4

// Option decorates a token as it is added to a stream.
type Option func(Token) Token

// Defines marks the token as the definition of id.
func Defines(id string) Option {
	return func(t Token) Token { return t.WithDefinitionID(id) }
}

// NavigatesTo links the token to the navigation node id.
func NavigatesTo(id string) Option {
	return func(t Token) Token { return t.WithNavigateToID(id) }
}

// Stream is an append-only token sequence. The zero value is ready to use.
type Stream struct {
	tokens []Token
}

// Add appends a token of the given kind after applying opts.
func (s *Stream) Add(kind Kind, value string, opts ...Option) {
	t := New(kind, value)
	for _, opt := range opts {
		t = opt(t)
	}
	s.tokens = append(s.tokens, t)
}

// Append appends already built tokens.
func (s *Stream) Append(tokens ...Token) {
	s.tokens = append(s.tokens, tokens...)
}

func (s *Stream) Space()   { s.Add(Whitespace, " ") }
func (s *Stream) Newline() { s.Add(Newline, "") }

// BlankLine ends the current line and emits an empty one.
func (s *Stream) BlankLine() {
	s.Newline()
	s.Newline()
}

// Indent emits leading whitespace for the given level. Level zero emits nothing.
func (s *Stream) Indent(level int) {
	if level <= 0 {
		return
	}
	s.Add(Whitespace, strings.Repeat(" ", level*IndentWidth))
}

func (s *Stream) Punct(value string)                         { s.Add(Punctuation, value) }
func (s *Stream) Keyword(value string, opts ...Option)       { s.Add(Keyword, value, opts...) }
func (s *Stream) Text(value string, opts ...Option)          { s.Add(Text, value, opts...) }
func (s *Stream) TypeName(value string, opts ...Option)      { s.Add(TypeName, value, opts...) }
func (s *Stream) StringLiteral(value string, opts ...Option) { s.Add(StringLiteral, value, opts...) }
func (s *Stream) Literal(value string, opts ...Option)       { s.Add(Literal, value, opts...) }
func (s *Stream) Comment(value string, opts ...Option)       { s.Add(Comment, value, opts...) }
func (s *Stream) StartDocGroup()                             { s.Add(StartDocGroup, "") }
func (s *Stream) EndDocGroup()                               { s.Add(EndDocGroup, "") }

// LineMarker emits an invisible marker that defines id for the current line.
func (s *Stream) LineMarker(id string) {
	s.Add(LineIDMarker, "", Defines(id))
}

func (s *Stream) Len() int { return len(s.tokens) }

// Tokens returns a copy of the accumulated tokens.
func (s *Stream) Tokens() []Token {
	out := make([]Token, len(s.tokens))
	copy(out, s.tokens)
	return out
}
