// Package token defines the typed tokens that make up an API review document.
package token

import (
	"encoding/json"
	"fmt"
)

// Kind classifies a token. The numeric values are part of the token file
// format consumed by the review tool and must not change.
type Kind int

const (
	Text          Kind = 0
	Newline       Kind = 1
	Whitespace    Kind = 2
	Punctuation   Kind = 3
	Keyword       Kind = 4
	LineIDMarker  Kind = 5
	TypeName      Kind = 6
	StringLiteral Kind = 8
	Literal       Kind = 9
	Comment       Kind = 10
	StartDocGroup Kind = 11
	EndDocGroup   Kind = 12
)

var kindNames = map[Kind]string{
	Text:          "Text",
	Newline:       "Newline",
	Whitespace:    "Whitespace",
	Punctuation:   "Punctuation",
	Keyword:       "Keyword",
	LineIDMarker:  "LineIdMarker",
	TypeName:      "TypeName",
	StringLiteral: "StringLiteral",
	Literal:       "Literal",
	Comment:       "Comment",
	StartDocGroup: "StartDocGroup",
	EndDocGroup:   "EndDocGroup",
}

// Valid reports whether k is one of the defined kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is one unit of rendered output. Tokens are values; the With* methods
// return modified copies so a token held by a stream never changes.
type Token struct {
	kind         Kind
	value        string
	definitionID *string
	navigateToID *string
}

// New returns a token of the given kind and literal text.
func New(kind Kind, value string) Token {
	return Token{kind: kind, value: value}
}

// WithDefinitionID returns a copy of t that defines id.
func (t Token) WithDefinitionID(id string) Token {
	t.definitionID = &id
	return t
}

// WithNavigateToID returns a copy of t that links to the navigation node id.
func (t Token) WithNavigateToID(id string) Token {
	t.navigateToID = &id
	return t
}

func (t Token) Kind() Kind    { return t.kind }
func (t Token) Value() string { return t.value }

// DefinitionID returns the id this token defines, if any.
func (t Token) DefinitionID() (string, bool) {
	if t.definitionID == nil {
		return "", false
	}
	return *t.definitionID, true
}

// NavigateToID returns the navigation id this token links to, if any.
func (t Token) NavigateToID() (string, bool) {
	if t.navigateToID == nil {
		return "", false
	}
	return *t.navigateToID, true
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)", t.kind, t.value)
}

// wireToken is the JSON form. Absent ids are omitted instead of written as null.
type wireToken struct {
	Kind         Kind    `json:"Kind"`
	Value        string  `json:"Value"`
	NavigateToID *string `json:"NavigateToId,omitempty"`
	DefinitionID *string `json:"DefinitionId,omitempty"`
}

func (t Token) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireToken{
		Kind:         t.kind,
		Value:        t.value,
		NavigateToID: t.navigateToID,
		DefinitionID: t.definitionID,
	})
}

func (t *Token) UnmarshalJSON(data []byte) error {
	var w wireToken
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if !w.Kind.Valid() {
		return fmt.Errorf("token: unknown kind %d", int(w.Kind))
	}
	*t = Token{kind: w.Kind, value: w.Value, definitionID: w.DefinitionID, navigateToID: w.NavigateToID}
	return nil
}
