package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	xansi "github.com/charmbracelet/x/ansi"

	"liz/internal/clipboard"
	"liz/internal/types"
)

const (
	defaultWidth    = 80
	defaultHeight   = 20
	chromeLines     = 5
	copyTimeout     = 2 * time.Second
	columnSeparator = " │ "
)

// Source answers the launcher's queries. *store.Sheet satisfies it.
type Source interface {
	Search(query string) []*types.Shortcut
	RankedSearch(query string) []*types.Shortcut
}

type CopyFunc func(ctx context.Context, text string) (clipboard.Method, error)

type Options struct {
	Source Source
	Dark   bool
	Copy   CopyFunc
}

// Model is the launcher: a search box over a list of shortcuts. Enter
// closes the UI with the highlighted record as the selection.
type Model struct {
	input       textinput.Model
	source      Source
	copy        CopyFunc
	dark        bool
	results     []*types.Shortcut
	fuzzy       bool
	cursor      int
	offset      int
	width       int
	height      int
	status      string
	statusError bool
	showDetails bool
	selected    *types.Shortcut
	quitting    bool
}

func NewModel(opts Options) *Model {
	input := textinput.New()
	input.Prompt = "› "
	input.Placeholder = "search shortcuts"
	input.Focus()
	copyFn := opts.Copy
	if copyFn == nil {
		copyFn = clipboard.Copy
	}
	m := &Model{
		input:  input,
		source: opts.Source,
		copy:   copyFn,
		dark:   opts.Dark,
		width:  defaultWidth,
		height: defaultHeight,
	}
	m.refresh()
	return m
}

// Selected is the record chosen with enter, or nil when the user quit.
func (m *Model) Selected() *types.Shortcut {
	return m.selected
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		if handled, cmd := m.reduceKey(msg); handled {
			return m, cmd
		}
	}
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.refresh()
	}
	return m, cmd
}

func (m *Model) reduceKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		m.quitting = true
		return true, tea.Quit
	case tea.KeyEnter:
		if sc := m.current(); sc != nil {
			m.selected = sc
			m.quitting = true
			return true, tea.Quit
		}
		m.setStatus("nothing to run", true)
		return true, nil
	case tea.KeyUp, tea.KeyCtrlP:
		m.move(-1)
		return true, nil
	case tea.KeyDown, tea.KeyCtrlN:
		m.move(1)
		return true, nil
	case tea.KeyPgUp:
		m.move(-m.visibleRows())
		return true, nil
	case tea.KeyPgDown:
		m.move(m.visibleRows())
		return true, nil
	case tea.KeyCtrlY:
		m.copySelection()
		return true, nil
	case tea.KeyCtrlO:
		m.showDetails = !m.showDetails
		return true, nil
	}
	return false, nil
}

func (m *Model) copySelection() {
	sc := m.current()
	if sc == nil {
		m.setStatus("nothing to copy", true)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), copyTimeout)
	defer cancel()
	method, err := m.copy(ctx, sc.Shortcut)
	if err != nil {
		m.setStatus("copy failed: "+err.Error(), true)
		return
	}
	m.setStatus(fmt.Sprintf("copied %q (%s)", sc.Shortcut, method), false)
}

// refresh reruns the query. When the strict search finds nothing the
// ranked fuzzy search is tried so typos still land somewhere.
func (m *Model) refresh() {
	m.cursor, m.offset, m.fuzzy = 0, 0, false
	if m.source == nil {
		m.results = nil
		return
	}
	query := m.input.Value()
	m.results = m.source.Search(query)
	if len(m.results) == 0 && strings.TrimSpace(query) != "" {
		m.results = m.source.RankedSearch(query)
		m.fuzzy = len(m.results) > 0
	}
}

func (m *Model) current() *types.Shortcut {
	if m.cursor < 0 || m.cursor >= len(m.results) {
		return nil
	}
	return m.results[m.cursor]
}

func (m *Model) move(delta int) {
	if len(m.results) == 0 {
		return
	}
	m.cursor = max(0, min(len(m.results)-1, m.cursor+delta))
	rows := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
}

func (m *Model) resize(width, height int) {
	if width > 0 {
		m.width = width
	}
	if height > 0 {
		m.height = height
	}
	m.input.Width = max(10, m.width-4)
	m.move(0)
}

func (m *Model) visibleRows() int {
	return max(1, m.height-chromeLines)
}

func (m *Model) setStatus(text string, isError bool) {
	m.status = text
	m.statusError = isError
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render("liz"))
	b.WriteString(helpStyle.Render(fmt.Sprintf("  %d shortcuts", len(m.results))))
	if m.fuzzy {
		b.WriteString(helpStyle.Render(" (fuzzy)"))
	}
	b.WriteByte('\n')
	b.WriteString(m.input.View())
	b.WriteByte('\n')
	b.WriteString(dividerStyle.Render(strings.Repeat("─", max(1, m.width))))
	b.WriteByte('\n')

	if m.showDetails {
		if sc := m.current(); sc != nil {
			b.WriteString(detailsStyle.Render(RenderShortcut(sc, max(20, m.width-4), m.dark)))
			b.WriteByte('\n')
		}
	} else {
		end := min(len(m.results), m.offset+m.visibleRows())
		for i := m.offset; i < end; i++ {
			b.WriteString(m.renderRow(m.results[i], i == m.cursor))
			b.WriteByte('\n')
		}
	}

	if m.status != "" {
		style := statusStyle
		if m.statusError {
			style = errorStyle
		}
		b.WriteString(style.Render(xansi.Truncate(m.status, m.width, "…")))
		b.WriteByte('\n')
	}
	b.WriteString(helpStyle.Render("enter run • ↑/↓ move • ctrl+y copy • ctrl+o details • esc quit"))
	return b.String()
}

func (m *Model) renderRow(sc *types.Shortcut, selected bool) string {
	line := sc.Description + columnSeparator + sc.Application + columnSeparator + sc.Shortcut
	line = xansi.Truncate(line, max(1, m.width-2), "…")
	if selected {
		return selectedStyle.Render("▌ " + line)
	}
	desc, rest, _ := strings.Cut(line, columnSeparator)
	app, keys, _ := strings.Cut(rest, columnSeparator)
	out := "  " + rowStyle.Render(desc)
	if app != "" {
		out += dividerStyle.Render(columnSeparator) + applicationStyle.Render(app)
	}
	if keys != "" {
		out += dividerStyle.Render(columnSeparator) + shortcutStyle.Render(keys)
	}
	return out
}

// Run shows the launcher and returns the chosen record, nil if the user
// quit without choosing.
func Run(ctx context.Context, opts Options, programOpts ...tea.ProgramOption) (*types.Shortcut, error) {
	model := NewModel(opts)
	programOpts = append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, programOpts...)
	final, err := tea.NewProgram(model, programOpts...).Run()
	if err != nil {
		return nil, err
	}
	if m, ok := final.(*Model); ok {
		return m.Selected(), nil
	}
	return nil, nil
}
