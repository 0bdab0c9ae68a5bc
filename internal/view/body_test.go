package view

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/apiview/internal/shape"
	"github.com/mark3labs/apiview/internal/token"
)

// plain renders tokens the way a reviewer would read them.
func plain(toks []token.Token) string {
	var b strings.Builder
	for _, t := range toks {
		switch t.Kind() {
		case token.Newline:
			b.WriteString("\n")
		case token.LineIDMarker, token.StartDocGroup, token.EndDocGroup:
		default:
			b.WriteString(t.Value())
		}
	}
	return b.String()
}

func llc(t *testing.T) Flavor {
	t.Helper()
	f, err := LookupFlavor("llc")
	require.NoError(t, err)
	return f
}

func TestBodyRenderer_NestedModels(t *testing.T) {
	t.Parallel()

	tag := shape.NewModel("Tag", shape.Field{Name: "label", Shape: shape.NewScalar("string")})
	pet := shape.NewModel("Pet",
		shape.Field{Name: "name", Shape: shape.NewScalar("string")},
		shape.Field{Name: "tags", Optional: true, Shape: shape.NewList(tag)},
		shape.Field{Name: "extra", Optional: true, Shape: shape.NewMap(shape.NewScalar("int32"))},
	)

	toks, err := bodyRenderer{flavor: llc(t)}.render(pet, 0)
	require.NoError(t, err)

	want := strings.Join([]string{
		"model Pet {",
		"    name: string;",
		"    tags?: Tag[];",
		"        model Tag {",
		"            label: string;",
		"        }",
		"    extra?: Map<str, int32>;",
		"}",
		"",
	}, "\n")
	assert.Equal(t, want, plain(toks))

	for _, tk := range toks {
		if tk.Kind() == token.Whitespace || tk.Kind() == token.Newline {
			continue
		}
		assert.Equal(t, token.Comment, tk.Kind(), "body tokens are comments: %q", tk.Value())
	}
}

func TestBodyRenderer_ClosesInReverseOrder(t *testing.T) {
	t.Parallel()

	c := shape.NewModel("C", shape.Field{Name: "v", Shape: shape.NewScalar("bool")})
	b := shape.NewModel("B", shape.Field{Name: "c", Shape: c})
	a := shape.NewModel("A", shape.Field{Name: "b", Shape: b})

	toks, err := bodyRenderer{flavor: llc(t)}.render(a, 1)
	require.NoError(t, err)

	var stack []string
	for _, tk := range toks {
		v := tk.Value()
		switch {
		case strings.HasPrefix(v, "model "):
			stack = append(stack, strings.TrimPrefix(v, "model "))
		case v == "}":
			require.NotEmpty(t, stack, "close without open")
			stack = stack[:len(stack)-1]
		}
	}
	assert.Empty(t, stack)

	text := plain(toks)
	assert.Less(t, strings.Index(text, "model C"), strings.LastIndex(text, "        }\n    }"))
	assert.True(t, strings.HasPrefix(text, "    model A {\n"))
}

func TestBodyRenderer_TopLevelListAndMap(t *testing.T) {
	t.Parallel()

	item := shape.NewModel("Item", shape.Field{Name: "id", Shape: shape.NewScalar("int64")})
	toks, err := bodyRenderer{flavor: llc(t)}.render(shape.NewList(item), 2)
	require.NoError(t, err)
	assert.Equal(t, "        Item[]\n            model Item {\n                id: int64;\n            }\n", plain(toks))

	protocol, err := LookupFlavor("protocol")
	require.NoError(t, err)
	toks, err = bodyRenderer{flavor: protocol}.render(shape.NewMap(shape.NewScalar("string")), 0)
	require.NoError(t, err)
	assert.Equal(t, "dict[str, string]\n", plain(toks))
}

func TestBodyRenderer_MapValuesComeFromTheirOwnNode(t *testing.T) {
	t.Parallel()

	// Two maps under equally named fields in different models keep their
	// own value types.
	left := shape.NewModel("Left", shape.Field{Name: "items", Shape: shape.NewMap(shape.NewScalar("int32"))})
	right := shape.NewModel("Right", shape.Field{Name: "items", Shape: shape.NewMap(shape.NewScalar("string"))})
	root := shape.NewModel("Root",
		shape.Field{Name: "left", Shape: left},
		shape.Field{Name: "right", Shape: right},
	)

	toks, err := bodyRenderer{flavor: llc(t)}.render(root, 0)
	require.NoError(t, err)
	text := plain(toks)
	assert.Contains(t, text, "model Left {\n            items: Map<str, int32>;")
	assert.Contains(t, text, "model Right {\n            items: Map<str, string>;")
}

func TestBodyRenderer_Mismatch(t *testing.T) {
	t.Parallel()

	cases := map[string]*shape.Shape{
		"nil root":        nil,
		"list without":    shape.NewList(nil),
		"unnamed model":   shape.NewModel("", shape.Field{Name: "a", Shape: shape.NewScalar("string")}),
		"unnamed nested":  shape.NewModel("Outer", shape.Field{Name: "in", Shape: shape.NewModel("")}),
		"untyped scalar":  shape.NewModel("Outer", shape.Field{Name: "a", Shape: shape.NewScalar("")}),
		"unknown kind":    {Kind: shape.Kind(42)},
		"nil field shape": shape.NewModel("Outer", shape.Field{Name: "a"}),
	}
	for name, sh := range cases {
		_, err := bodyRenderer{flavor: llc(t)}.render(sh, 0)
		if !errors.Is(err, ErrShapeMismatch) {
			t.Fatalf("%s: expected ErrShapeMismatch, got %v", name, err)
		}
	}
}

func TestBodyRenderer_MismatchNamesThePath(t *testing.T) {
	t.Parallel()

	sh := shape.NewModel("Pet", shape.Field{Name: "owner", Shape: shape.NewModel("Owner",
		shape.Field{Name: "tags", Shape: shape.NewList(nil)},
	)})
	_, err := bodyRenderer{flavor: llc(t)}.render(sh, 0)
	require.ErrorIs(t, err, ErrShapeMismatch)
	assert.Contains(t, err.Error(), "$.owner.tags[]")
}
