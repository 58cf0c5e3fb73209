package result

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// Glamour standard styles an article can be rendered in.
const (
	StyleDark  = "dark"
	StyleLight = "light"
	StylePlain = "notty"
)

// Renderer formats article markdown in one fixed style. The style is chosen
// up front so rendering never queries the terminal. Term renderers are kept
// per wrap width. Not safe for concurrent use.
type Renderer struct {
	style   string
	byWidth map[int]*glamour.TermRenderer
}

// NewRenderer returns a renderer for a glamour standard style. An empty
// style renders dark.
func NewRenderer(style string) *Renderer {
	if style == "" {
		style = StyleDark
	}
	return &Renderer{style: style, byWidth: make(map[int]*glamour.TermRenderer)}
}

// Style returns the glamour style the renderer uses.
func (r *Renderer) Style() string {
	return r.style
}

// Render formats an article's markdown for a terminal column width.
// Falls back to the raw markdown if glamour cannot render it.
func (r *Renderer) Render(a Article, width int) string {
	md := a.Markdown
	if strings.TrimSpace(md) == "" {
		return ""
	}
	tr, err := r.termRenderer(width)
	if err != nil {
		return md
	}
	out, err := tr.Render(md)
	if err != nil {
		return md
	}
	// Glamour pads with blank lines; the panel supplies its own spacing.
	return strings.Trim(out, "\n")
}

func (r *Renderer) termRenderer(width int) (*glamour.TermRenderer, error) {
	width = max(width, 0)
	if tr, ok := r.byWidth[width]; ok {
		return tr, nil
	}
	opts := []glamour.TermRendererOption{glamour.WithStandardStyle(r.style)}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	tr, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, err
	}
	r.byWidth[width] = tr
	return tr, nil
}
