package output

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/apiview/internal/token"
	"github.com/mark3labs/apiview/internal/view"
)

func sampleDoc(t *testing.T) *view.Document {
	t.Helper()
	c := view.NewClientView(view.ClientConfig{
		PackageName:    "PetStore",
		EndpointName:   "endpoint",
		EndpointType:   "string",
		CredentialName: "credential",
		CredentialType: "AzureKeyCredential",
	}, []*view.OperationGroupView{{
		Name: "Pets",
		Operations: []*view.OperationView{{
			Name:       "getPet",
			ReturnType: "Pet",
			Parameters: []view.ParameterView{{Name: "id", Type: "string", Required: true}},
		}},
	}})
	doc, err := c.Render()
	require.NoError(t, err)
	return doc
}

func TestWrite_Stdout(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	res, err := Write(context.Background(), sampleDoc(t), Options{OutFile: "-", Stdout: &buf})
	require.NoError(t, err)

	require.Len(t, res.Planned, 1)
	assert.Equal(t, Stdout, res.Planned[0].Path)
	assert.Equal(t, buf.Len(), res.Planned[0].Size)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "PetStore", decoded["Name"])
}

func TestWrite_FilesAtomicallyAndRefusesOverwrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "nested", "petstore.json")
	txt := filepath.Join(dir, "nested", "petstore.txt")

	res, err := Write(context.Background(), sampleDoc(t), Options{OutFile: out, TextFile: txt, Pretty: true})
	require.NoError(t, err)
	require.Len(t, res.Planned, 2)
	assert.Equal(t, out, res.Planned[0].Path)
	assert.Equal(t, txt, res.Planned[1].Path)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "{\n  \"Name\""))

	text, err := os.ReadFile(txt)
	require.NoError(t, err)
	assert.Contains(t, string(text), "Pet getPet(string id)")

	entries, err := os.ReadDir(filepath.Dir(out))
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temp files left behind")

	_, err = Write(context.Background(), sampleDoc(t), Options{OutFile: out})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	_, err = Write(context.Background(), sampleDoc(t), Options{OutFile: out, Force: true})
	require.NoError(t, err)
}

func TestWrite_DryRun(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "doc.json")
	res, err := Write(context.Background(), sampleDoc(t), Options{OutFile: out, DryRun: true})
	require.NoError(t, err)
	require.Len(t, res.Planned, 1)
	assert.Greater(t, res.Planned[0].Size, 0)

	_, err = os.Stat(out)
	assert.True(t, os.IsNotExist(err))
}

func TestWrite_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := filepath.Join(t.TempDir(), "doc.json")
	_, err := Write(ctx, sampleDoc(t), Options{OutFile: out})
	require.ErrorIs(t, err, context.Canceled)
}

func TestText(t *testing.T) {
	t.Parallel()

	var s token.Stream
	s.LineMarker("x")
	s.Keyword("ns", token.Defines("ns"))
	s.Space()
	s.Punct("{")
	s.Newline()
	s.StartDocGroup()
	s.Indent(1)
	s.Comment("doc")
	s.EndDocGroup()
	s.Newline()

	assert.Equal(t, "ns {\n    doc\n", Text(s.Tokens()))

	// An empty theme renders exactly like Text.
	assert.Equal(t, Text(s.Tokens()), StyledText(s.Tokens(), Theme{}))

	bare := Theme{token.Keyword: lipgloss.NewStyle()}
	assert.Contains(t, StyledText(s.Tokens(), bare), "ns")
	assert.NotEmpty(t, DefaultTheme())
}
