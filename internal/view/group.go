package view

import (
	"fmt"

	"github.com/mark3labs/apiview/internal/navigation"
	"github.com/mark3labs/apiview/internal/token"
)

// DefaultGroupName labels the unnamed operation group.
const DefaultGroupName = "<default>"

// OperationGroupView is a named set of operations. An empty Name is the
// default group: it has no OperationGroup wrapper and sorts first.
type OperationGroupView struct {
	Name       string
	Operations []*OperationView
	Namespace  string

	rendered bool
}

func (g *OperationGroupView) IsDefault() bool { return g.Name == "" }

// DisplayName is the label used in the outline and in ids.
func (g *OperationGroupView) DisplayName() string {
	if g.IsDefault() {
		return DefaultGroupName
	}
	return g.Name
}

// Sections carries the ids of the Overview and Details roots a group renders
// under.
type Sections struct {
	OverviewID string
	DetailsID  string
}

// RenderedGroup is a group's share of both sections with its outline nodes.
type RenderedGroup struct {
	Overview     []token.Token
	Details      []token.Token
	OverviewNode *navigation.Node
	DetailsNode  *navigation.Node
}

// Render emits the group into both sections and registers its outline nodes
// with nav. It may be called once.
func (g *OperationGroupView) Render(sec Sections, nav *navigation.Builder) (RenderedGroup, error) {
	if g.rendered {
		return RenderedGroup{}, fmt.Errorf("operation group %s: %w", g.DisplayName(), ErrAlreadyRendered)
	}
	g.rendered = true

	ovID := sec.OverviewID + "." + g.DisplayName()
	dtID := sec.DetailsID + "." + g.DisplayName()
	ovNode, err := nav.Node(g.DisplayName(), ovID, navigation.Class)
	if err != nil {
		return RenderedGroup{}, err
	}
	dtNode, err := nav.Node(g.DisplayName(), dtID, navigation.Class)
	if err != nil {
		return RenderedGroup{}, err
	}

	var ov, dt token.Stream
	indent := 1
	if !g.IsDefault() {
		g.open(&ov, ovID)
		g.open(&dt, dtID)
		indent = 2
	}

	for _, op := range g.Operations {
		p := Placement{
			OverviewID: ovID + "." + op.Name,
			DetailsID:  dtID + "." + op.Name,
			Indent:     indent,
		}
		opOv, err := nav.Node(op.Name, p.OverviewID, navigation.Method)
		if err != nil {
			return RenderedGroup{}, err
		}
		opDt, err := nav.Node(op.Name, p.DetailsID, navigation.Method)
		if err != nil {
			return RenderedGroup{}, err
		}
		out, err := op.Render(p)
		if err != nil {
			return RenderedGroup{}, fmt.Errorf("operation group %s: %w", g.DisplayName(), err)
		}
		ovNode.Add(opOv)
		dtNode.Add(opDt)
		ov.Append(out.Overview...)
		dt.Append(out.Details...)
	}

	if !g.IsDefault() {
		g.close(&ov)
		g.close(&dt)
	}
	return RenderedGroup{
		Overview:     ov.Tokens(),
		Details:      dt.Tokens(),
		OverviewNode: ovNode,
		DetailsNode:  dtNode,
	}, nil
}

func (g *OperationGroupView) open(s *token.Stream, id string) {
	s.Indent(1)
	s.Text("OperationGroup")
	s.Space()
	s.Keyword(g.Name, token.Defines(id), token.NavigatesTo(id))
	s.Newline()
	s.Indent(2)
	s.Punct("{")
	s.Newline()
}

func (g *OperationGroupView) close(s *token.Stream) {
	s.Indent(2)
	s.Punct("}")
	s.Newline()
}
