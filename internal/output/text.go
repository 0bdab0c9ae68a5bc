package output

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mark3labs/apiview/internal/token"
)

// Text renders tokens as plain text. Markers and doc-group bounds are
// invisible.
func Text(tokens []token.Token) string {
	return render(tokens, nil)
}

// Theme maps token kinds to terminal styles. Kinds without a style print
// unstyled.
type Theme map[token.Kind]lipgloss.Style

// DefaultTheme colours the kinds a reviewer scans for.
func DefaultTheme() Theme {
	return Theme{
		token.Keyword:       lipgloss.NewStyle().Foreground(lipgloss.Color("#f9ca24")).Bold(true),
		token.TypeName:      lipgloss.NewStyle().Foreground(lipgloss.Color("#4aa3df")),
		token.StringLiteral: lipgloss.NewStyle().Foreground(lipgloss.Color("#27ca3f")),
		token.Literal:       lipgloss.NewStyle().Foreground(lipgloss.Color("#e056fd")),
		token.Comment:       lipgloss.NewStyle().Foreground(lipgloss.Color("#bababa")),
	}
}

// StyledText renders tokens with theme applied.
func StyledText(tokens []token.Token, theme Theme) string {
	return render(tokens, theme)
}

func render(tokens []token.Token, theme Theme) string {
	var b strings.Builder
	for _, t := range tokens {
		switch t.Kind() {
		case token.Newline:
			b.WriteByte('\n')
		case token.LineIDMarker, token.StartDocGroup, token.EndDocGroup:
		default:
			if style, ok := theme[t.Kind()]; ok && t.Value() != "" {
				b.WriteString(style.Render(t.Value()))
				continue
			}
			b.WriteString(t.Value())
		}
	}
	return b.String()
}
