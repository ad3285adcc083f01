// Command xnetview is a terminal inspector for xnet graph containers:
// a tabbed dashboard/nodes/query/palette view over a loaded graph.
//
// Grounded on the teacher's cmd/tui (bubbletea Elm-architecture model,
// tab navigation, lipgloss box styling, a query console tab) adapted
// from Cypher-style graph queries to the selector grammar of §4.6 and
// from node/edge property maps to the typed attribute columns of §4.3.
// The palette tab renders the color-encoded derived buffer of §4.4
// directly, which the teacher's TUI has no analogue for.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/xnetgraph/pkg/bxnet"
	"github.com/dd0wney/xnetgraph/pkg/graph"
	"github.com/dd0wney/xnetgraph/pkg/query"
	"github.com/dd0wney/xnetgraph/pkg/xnet"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00D7FF")).
			MarginLeft(2).
			MarginTop(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FFFF")).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#5F00AF")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666")).
				Padding(0, 2)

	contentStyle = lipgloss.NewStyle().
			MarginLeft(2).
			MarginTop(1)

	statsBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(1, 2).
			MarginRight(2)

	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")).Bold(true)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).MarginTop(1).MarginLeft(2)
)

type view int

const (
	dashboardView view = iota
	nodesView
	queryView
	paletteView
	viewCount
)

var tabNames = [viewCount]string{"Dashboard", "Nodes", "Query", "Palette"}

type keyMap struct {
	Tab        key.Binding
	ShiftTab   key.Binding
	Enter      key.Binding
	NextSource key.Binding
	Quit       key.Binding
}

var keys = keyMap{
	Tab:        key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
	ShiftTab:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev view")),
	Enter:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "run")),
	NextSource: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next palette source")),
	Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k keyMap) ShortHelp() []key.Binding { return []key.Binding{k.Tab, k.Enter, k.Quit} }

type model struct {
	g              *graph.Graph
	source         string
	currentView    view
	queryInput     textinput.Model
	nodeTable      table.Model
	help           help.Model
	width          int
	message        string
	messageErr     bool
	paletteAttr    string
	paletteSources []string
	paletteBuf     *graph.DerivedBuffer
}

// colorEncodableAttrs lists node-scope i32/u32 attributes, the only
// types RepackNodeColorEncoded accepts as a non-index source (§4.4).
func colorEncodableAttrs(g *graph.Graph) []string {
	out := []string{graph.IndexSourceToken}
	for _, name := range g.AttributeNames(graph.ScopeNode) {
		attr, ok := g.GetAttribute(graph.ScopeNode, name)
		if !ok {
			continue
		}
		if attr.BaseType() == graph.TypeI32 || attr.BaseType() == graph.TypeU32 {
			out = append(out, name)
		}
	}
	return out
}

func initialModel(g *graph.Graph, source string, encoding graph.ColorEncoding) model {
	ti := textinput.New()
	ti.Placeholder = `type == "person" AND weight > 2`
	ti.CharLimit = 200
	ti.Width = 60

	columns := []table.Column{
		{Title: "Index", Width: 8},
		{Title: "Out", Width: 6},
		{Title: "In", Width: 6},
		{Title: "Attributes", Width: 50},
	}
	t := table.New(table.WithColumns(columns), table.WithFocused(true), table.WithHeight(15))
	s := table.DefaultStyles()
	s.Header = s.Header.BorderStyle(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("#00FFFF")).BorderBottom(true).Bold(true)
	s.Selected = s.Selected.Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#5F00AF")).Bold(false)
	t.SetStyles(s)

	m := model{
		g:           g,
		source:      source,
		currentView: dashboardView,
		queryInput:  ti,
		nodeTable:   t,
		help:        help.New(),
		paletteBuf:  graph.NewColorEncodedBuffer(encoding),
	}
	m.paletteSources = colorEncodableAttrs(g)
	m.refreshNodeTable()
	return m
}

func (m model) Init() tea.Cmd { return textinput.Blink }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Tab):
			m.currentView = (m.currentView + 1) % viewCount
			m.focusCurrent()
		case key.Matches(msg, keys.ShiftTab):
			if m.currentView == 0 {
				m.currentView = viewCount - 1
			} else {
				m.currentView--
			}
			m.focusCurrent()
		case key.Matches(msg, keys.Enter):
			switch m.currentView {
			case queryView:
				m.runQuery()
			case paletteView:
				m.repackPalette()
			}
		case key.Matches(msg, keys.NextSource) && m.currentView == paletteView:
			m.cyclePaletteSource()
		}
	}

	switch m.currentView {
	case queryView:
		m.queryInput, cmd = m.queryInput.Update(msg)
		cmds = append(cmds, cmd)
	case nodesView:
		m.nodeTable, cmd = m.nodeTable.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *model) focusCurrent() {
	if m.currentView == queryView {
		m.queryInput.Focus()
	} else {
		m.queryInput.Blur()
	}
}

func (m *model) runQuery() {
	expr := m.queryInput.Value()
	if expr == "" {
		m.message, m.messageErr = "selector expression cannot be empty", true
		return
	}
	sel, err := query.SelectNodes(m.g, expr)
	if err != nil {
		m.message, m.messageErr = fmt.Sprintf("selector error: %v", err), true
		return
	}
	m.message = fmt.Sprintf("matched %d node(s)", sel.Count())
	m.messageErr = false

	rows := make([]table.Row, 0, len(sel.Indices))
	for _, idx := range sel.Indices {
		rows = append(rows, m.nodeRow(idx))
	}
	if len(rows) > 0 {
		m.nodeTable.SetRows(rows)
	}
}

// cyclePaletteSource advances to the next color-encodable source and
// marks the buffer dirty so the next repack reflects it.
func (m *model) cyclePaletteSource() {
	if len(m.paletteSources) == 0 {
		return
	}
	next := 0
	for i, name := range m.paletteSources {
		if name == paletteSourceLabel(m.paletteAttr) {
			next = (i + 1) % len(m.paletteSources)
			break
		}
	}
	if m.paletteSources[next] == graph.IndexSourceToken {
		m.paletteAttr = ""
	} else {
		m.paletteAttr = m.paletteSources[next]
	}
	m.paletteBuf.MarkDirty()
	m.repackPalette()
}

func (m *model) repackPalette() {
	if m.paletteAttr == graph.IndexSourceToken || m.paletteAttr == "" {
		if err := m.g.RepackNodeColorEncoded(graph.IndexSourceToken, m.paletteBuf); err != nil {
			m.message, m.messageErr = fmt.Sprintf("palette repack failed: %v", err), true
			return
		}
		m.message, m.messageErr = "palette repacked from $index", false
		return
	}
	if err := m.g.RepackNodeColorEncoded(m.paletteAttr, m.paletteBuf); err != nil {
		m.message, m.messageErr = fmt.Sprintf("palette repack failed: %v", err), true
		return
	}
	m.message, m.messageErr = fmt.Sprintf("palette repacked from %s", m.paletteAttr), false
}

func (m *model) nodeRow(idx uint64) table.Row {
	return table.Row{
		fmt.Sprintf("%d", idx),
		fmt.Sprintf("%d", len(m.g.OutNeighbors(idx))),
		fmt.Sprintf("%d", len(m.g.InNeighbors(idx))),
		summarizeAttrs(m.g, idx),
	}
}

func (m *model) refreshNodeTable() {
	rows := make([]table.Row, 0, m.g.NodeCount())
	for i := uint64(0); i < m.g.NodeCapacity(); i++ {
		if !m.g.IsNodeActive(i) {
			continue
		}
		rows = append(rows, m.nodeRow(i))
	}
	m.nodeTable.SetRows(rows)
}

func summarizeAttrs(g *graph.Graph, idx uint64) string {
	names := g.AttributeNames(graph.ScopeNode)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		attr, ok := g.GetAttribute(graph.ScopeNode, name)
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%s", name, formatValue(attr, int(idx))))
		if len(parts) >= 3 {
			parts = append(parts, "...")
			break
		}
	}
	return strings.Join(parts, ", ")
}

func formatValue(attr *graph.Attribute, row int) string {
	switch attr.BaseType() {
	case graph.TypeString:
		v, err := attr.GetString(row)
		if err != nil || v[0] == nil {
			return ""
		}
		return *v[0]
	case graph.TypeCategory:
		label, _, err := attr.GetCategoryLabel(row)
		if err != nil {
			return ""
		}
		return label
	case graph.TypeBool:
		v, err := attr.GetBool(row)
		if err != nil {
			return ""
		}
		return fmt.Sprintf("%v", v[0])
	default:
		v, err := attr.GetFloat64(row)
		if err != nil {
			return ""
		}
		return fmt.Sprintf("%g", v[0])
	}
}

func (m model) View() string {
	if m.width == 0 {
		return "loading..."
	}
	var s strings.Builder
	s.WriteString(titleStyle.Render("xnetview - " + m.source))
	s.WriteString("\n\n")
	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	switch m.currentView {
	case dashboardView:
		s.WriteString(m.renderDashboard())
	case nodesView:
		s.WriteString(m.renderNodes())
	case queryView:
		s.WriteString(m.renderQuery())
	case paletteView:
		s.WriteString(m.renderPalette())
	}

	if m.message != "" {
		s.WriteString("\n\n")
		if m.messageErr {
			s.WriteString(errorStyle.Render("x " + m.message))
		} else {
			s.WriteString(successStyle.Render("+ " + m.message))
		}
	}
	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render(m.help.ShortHelpView(keys.ShortHelp())))
	return s.String()
}

func (m model) renderTabs() string {
	rendered := make([]string, 0, viewCount)
	for i, name := range tabNames {
		if view(i) == m.currentView {
			rendered = append(rendered, activeTabStyle.Render(name))
		} else {
			rendered = append(rendered, inactiveTabStyle.Render(name))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m model) renderDashboard() string {
	content := fmt.Sprintf(`Graph Summary
-------------
Directed:   %v
Nodes:      %d (capacity %d)
Edges:      %d (capacity %d)
Node attrs: %d
Edge attrs: %d`,
		m.g.Directed(),
		m.g.NodeCount(), m.g.NodeCapacity(),
		m.g.EdgeCount(), m.g.EdgeCapacity(),
		len(m.g.AttributeNames(graph.ScopeNode)),
		len(m.g.AttributeNames(graph.ScopeEdge)),
	)
	return contentStyle.Render(statsBoxStyle.Render(content))
}

func (m model) renderNodes() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("Node Browser"))
	s.WriteString("\n\n")
	s.WriteString(m.nodeTable.View())
	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("navigate with up/down"))
	return contentStyle.Render(s.String())
}

func (m model) renderQuery() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("Selector Console"))
	s.WriteString("\n\n")
	s.WriteString("node selector expression:\n\n")
	s.WriteString(m.queryInput.View())
	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("press enter to run, results populate the Nodes tab"))
	return contentStyle.Render(s.String())
}

func (m model) renderPalette() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("Derived Color Palette"))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("source: %s  (enter: repack, n: next source)\n\n", paletteSourceLabel(m.paletteAttr)))

	data := m.paletteBuf.Data()
	stride := m.paletteBuf.Stride()
	count := m.paletteBuf.Count()
	if count == 0 || stride == 0 {
		s.WriteString(helpStyle.Render("buffer is empty; press enter to repack"))
		return contentStyle.Render(s.String())
	}

	shown := count
	if shown > 64 {
		shown = 64
	}
	for i := 0; i < shown; i++ {
		row := data[i*stride : i*stride+stride]
		hex := fmt.Sprintf("#%02X%02X%02X", row[0], row[1], row[2])
		block := lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render("  ")
		s.WriteString(block)
		if (i+1)%16 == 0 {
			s.WriteString("\n")
		}
	}
	if count > shown {
		s.WriteString(fmt.Sprintf("\n... and %d more slots\n", count-shown))
	}
	return contentStyle.Render(s.String())
}

func paletteSourceLabel(attr string) string {
	if attr == "" {
		return graph.IndexSourceToken
	}
	return attr
}

func loadGraph(path string) (*graph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch {
	case strings.HasSuffix(path, ".xnet"):
		return xnet.Read(f)
	case strings.HasSuffix(path, ".zxnet"):
		return bxnet.ReadZXNet(f)
	case strings.HasSuffix(path, ".sxnet"):
		return bxnet.ReadSXNet(f)
	case strings.HasSuffix(path, ".bxnet"):
		return bxnet.Read(f)
	default:
		return bxnet.Read(f)
	}
}

func main() {
	args := os.Args[1:]
	var configPath string
	if len(args) >= 2 && args[0] == "-config" {
		configPath, args = args[1], args[2:]
	}

	cfg, err := loadViewConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "xnetview: %v\n", err)
		os.Exit(1)
	}

	path := cfg.DefaultGraph
	if len(args) >= 1 {
		path = args[0]
	}
	if path == "" {
		fmt.Fprintln(os.Stderr, "usage: xnetview [-config FILE] PATH")
		os.Exit(2)
	}

	g, err := loadGraph(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "xnetview: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(initialModel(g, path, cfg.colorEncoding()), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "xnetview: %v\n", err)
		os.Exit(1)
	}
}
