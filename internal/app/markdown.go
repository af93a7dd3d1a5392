package app

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	glamouransi "github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	xansi "github.com/charmbracelet/x/ansi"

	"liz/internal/types"
)

var (
	rendererMu       sync.Mutex
	renderersByStyle = map[markdownRendererKey]*glamour.TermRenderer{}
)

type markdownRendererKey struct {
	width int
	dark  bool
}

// ShortcutMarkdown describes a record as a small markdown document.
func ShortcutMarkdown(sc *types.Shortcut) string {
	if sc == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", escapeMarkdown(sc.Description))
	fmt.Fprintf(&b, "| field | value |\n| --- | --- |\n")
	fmt.Fprintf(&b, "| application | %s |\n", escapeCell(sc.Application))
	fmt.Fprintf(&b, "| shortcut | `%s` |\n", strings.ReplaceAll(sc.Shortcut, "`", "'"))
	fmt.Fprintf(&b, "| hits | %d |\n", sc.HitNumber)
	fmt.Fprintf(&b, "| id | `%s` |\n", sc.ID)
	if comment := strings.TrimSpace(sc.Comment); comment != "" {
		fmt.Fprintf(&b, "\n> %s\n", escapeMarkdown(comment))
	}
	return b.String()
}

// RenderShortcut renders a record through glamour. dark selects the
// dark or light style; rendering errors fall back to the raw markdown.
func RenderShortcut(sc *types.Shortcut, width int, dark bool) string {
	return renderMarkdown(ShortcutMarkdown(sc), width, dark)
}

func renderMarkdown(input string, width int, dark bool) string {
	input = strings.TrimRight(input, "\n")
	if input == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}
	r := getRenderer(width, dark)
	if r == nil {
		return input
	}
	out, err := r.Render(input)
	if err != nil {
		return input
	}
	out = strings.TrimRight(out, "\n")
	out = xansi.Hardwrap(out, width, true)
	return strings.TrimRight(out, "\n")
}

func getRenderer(width int, dark bool) *glamour.TermRenderer {
	rendererMu.Lock()
	defer rendererMu.Unlock()
	key := markdownRendererKey{width: width, dark: dark}
	if renderer, ok := renderersByStyle[key]; ok && renderer != nil {
		return renderer
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(buildStyleConfig(dark)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	renderersByStyle[key] = r
	return r
}

func buildStyleConfig(dark bool) glamouransi.StyleConfig {
	var base glamouransi.StyleConfig
	if dark {
		base = styles.DarkStyleConfig
	} else {
		base = styles.LightStyleConfig
	}
	base.Document.StylePrimitive.BlockPrefix = ""
	base.Document.StylePrimitive.BlockSuffix = ""
	zero := uint(0)
	base.Document.Margin = &zero
	return base
}

func escapeMarkdown(text string) string {
	text = strings.ReplaceAll(text, "`", "\\`")
	trimmed := strings.TrimLeft(text, " \t")
	for _, prefix := range []string{"#", ">", "- ", "* ", "+ "} {
		if strings.HasPrefix(trimmed, prefix) {
			return "\\" + trimmed
		}
	}
	return trimmed
}

func escapeCell(text string) string {
	return strings.ReplaceAll(escapeMarkdown(text), "|", "\\|")
}
