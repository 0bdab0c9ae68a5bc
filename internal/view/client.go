package view

import (
	"fmt"
	"sort"

	"github.com/mark3labs/apiview/internal/navigation"
	"github.com/mark3labs/apiview/internal/token"
)

// ClientConfig describes the client a document is rendered for.
type ClientConfig struct {
	PackageName    string
	Namespace      string
	EndpointName   string
	EndpointType   string
	CredentialName string
	CredentialType string
	// Version is the service version shown as VersionString.
	Version string
	Flavor  Flavor
}

// ClientView is the root of a document: the client constructor followed by
// every group in an Overview and a Details section.
type ClientView struct {
	ClientConfig
	Groups []*OperationGroupView

	rendered bool
}

// NewClientView orders groups with the default group first and keeps the
// relative order of the rest.
func NewClientView(cfg ClientConfig, groups []*OperationGroupView) *ClientView {
	cfg.Flavor = cfg.Flavor.orDefault()
	if cfg.Namespace == "" {
		cfg.Namespace = cfg.Flavor.NamespacePrefix + cfg.PackageName
	}
	ordered := append([]*OperationGroupView(nil), groups...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].IsDefault() && !ordered[j].IsDefault()
	})
	return &ClientView{ClientConfig: cfg, Groups: ordered}
}

// OverviewID and DetailsID are the ids of the two section roots.
func (c *ClientView) OverviewID() string { return c.Namespace + ".Overview" }
func (c *ClientView) DetailsID() string  { return c.Namespace + ".Details" }

// Render builds the document. A ClientView renders once; a second call
// returns ErrAlreadyRendered.
func (c *ClientView) Render() (*Document, error) {
	if c.rendered {
		return nil, fmt.Errorf("client %s: %w", c.PackageName, ErrAlreadyRendered)
	}
	c.rendered = true

	nav := navigation.NewBuilder()
	root, err := nav.Node(c.PackageName, c.Namespace, navigation.Assembly)
	if err != nil {
		return nil, err
	}
	ovNode, err := nav.Node("Overview", c.OverviewID(), navigation.Namespace)
	if err != nil {
		return nil, err
	}
	dtNode, err := nav.Node("Details", c.DetailsID(), navigation.Namespace)
	if err != nil {
		return nil, err
	}
	root.Add(ovNode, dtNode)

	var overview, details token.Stream
	sec := Sections{OverviewID: c.OverviewID(), DetailsID: c.DetailsID()}
	for _, g := range c.Groups {
		out, err := g.Render(sec, nav)
		if err != nil {
			return nil, fmt.Errorf("client %s: %w", c.PackageName, err)
		}
		ovNode.Add(out.OverviewNode)
		dtNode.Add(out.DetailsNode)
		overview.Append(out.Overview...)
		details.Append(out.Details...)
	}

	var s token.Stream
	s.Keyword(c.Namespace, token.Defines(c.Namespace), token.NavigatesTo(c.Namespace))
	s.Space()
	s.Punct("{")
	s.BlankLine()

	c.constructor(&s)

	s.LineMarker(c.OverviewID())
	s.Indent(1)
	s.Comment("// Overview", token.NavigatesTo(c.OverviewID()))
	s.Newline()
	s.Append(overview.Tokens()...)
	s.Newline()

	s.LineMarker(c.DetailsID())
	s.Indent(1)
	s.Comment("// Details", token.NavigatesTo(c.DetailsID()))
	s.Newline()
	s.Append(details.Tokens()...)

	s.Punct("}")
	s.Newline()

	return &Document{
		Name:          c.PackageName,
		VersionString: c.Version,
		Navigation:    []*navigation.Node{root},
		Tokens:        s.Tokens(),
		Diagnostics:   []Diagnostic{},
		PackageName:   c.PackageName,
		Language:      c.Flavor.Language,
	}, nil
}

// constructor emits "Name(endpointType endpointName, credentialType credentialName)".
func (c *ClientView) constructor(s *token.Stream) {
	s.Indent(1)
	s.Keyword(c.PackageName, token.Defines(c.Namespace+"."+c.PackageName))
	s.Punct("(")
	s.StringLiteral(c.EndpointType)
	s.Space()
	s.Text(c.EndpointName)
	s.Punct(",")
	s.Space()
	s.StringLiteral(c.CredentialType)
	s.Space()
	s.Text(c.CredentialName)
	s.Punct(")")
	s.BlankLine()
}
