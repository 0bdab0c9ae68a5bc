package view

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/apiview/internal/navigation"
	"github.com/mark3labs/apiview/internal/token"
)

// FormatVersion is the token file format version written to Version.
const FormatVersion = 0

// Diagnostic is reserved for review-time findings. Documents currently carry
// none.
type Diagnostic struct {
	DiagnosticID string `json:"DiagnosticId"`
	TargetID     string `json:"TargetId"`
	Text         string `json:"Text"`
	Level        int    `json:"Level"`
}

// Document is the JSON contract consumed by the review tool.
type Document struct {
	Name          string             `json:"Name"`
	Version       int                `json:"Version"`
	VersionString string             `json:"VersionString"`
	Navigation    []*navigation.Node `json:"Navigation"`
	Tokens        []token.Token      `json:"Tokens"`
	Diagnostics   []Diagnostic       `json:"Diagnostics"`
	PackageName   string             `json:"PackageName"`
	Language      string             `json:"Language"`
}

// JSON encodes the document, indented when pretty is set.
func (d *Document) JSON(pretty bool) ([]byte, error) {
	if d.Diagnostics == nil {
		d.Diagnostics = []Diagnostic{}
	}
	if pretty {
		return json.MarshalIndent(d, "", "  ")
	}
	return json.Marshal(d)
}

// Check verifies that every NavigateToId on a token names exactly one outline
// node and that no DefinitionId is defined twice.
func (d *Document) Check() error {
	ids := navigation.IDs(d.Navigation)
	for id, n := range ids {
		if n != 1 {
			return fmt.Errorf("%w: %s appears %d times", navigation.ErrDuplicateID, id, n)
		}
	}
	defined := make(map[string]bool)
	for i, t := range d.Tokens {
		if id, ok := t.NavigateToID(); ok && ids[id] != 1 {
			return fmt.Errorf("token %d (%q) navigates to unknown id %s", i, t.Value(), id)
		}
		if id, ok := t.DefinitionID(); ok {
			if defined[id] {
				return fmt.Errorf("token %d (%q) redefines %s", i, t.Value(), id)
			}
			defined[id] = true
		}
	}
	return nil
}
