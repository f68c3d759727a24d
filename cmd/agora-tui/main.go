// Command agora-tui is an interactive terminal browser for a
// deliberation graph. It loads a graph JSON file (the agora-layout
// interchange format) into an in-memory store, lets you browse nodes
// and relationships, add nodes, run the layout engine, and view an
// ASCII map of the result.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/openagora/agora/pkg/ibis"
	"github.com/openagora/agora/pkg/layout"
	"github.com/openagora/agora/pkg/store"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4")).
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
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666")).
				Padding(0, 2)

	contentStyle = lipgloss.NewStyle().
			MarginLeft(2).
			MarginTop(1)

	mapBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#FFFF00")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			MarginLeft(2)
)

type view int

const (
	nodesView view = iota
	relationshipsView
	addNodeView
	mapView
)

const viewCount = 4

type keyMap struct {
	Tab      key.Binding
	ShiftTab key.Binding
	Enter    key.Binding
	Layout   key.Binding
	Quit     key.Binding
	Up       key.Binding
	Down     key.Binding
}

var keys = keyMap{
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next view"),
	),
	ShiftTab: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "prev view"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "add node"),
	),
	Layout: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "run layout"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("up/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("down/j", "down"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Layout, k.Enter, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ShiftTab, k.Enter},
		{k.Up, k.Down, k.Layout},
		{k.Quit},
	}
}

type model struct {
	store          store.Store
	deliberationID string
	currentView    view
	nodeTable      table.Model
	relTable       table.Model
	nodeInput      textinput.Model
	help           help.Model
	keys           keyMap
	width          int
	height         int
	message        string
	messageErr     bool
	result         *layout.Result
	nodesByID      map[string]*ibis.Node
}

func initialModel(st store.Store, deliberationID string) model {
	ti := textinput.New()
	ti.Placeholder = "issue: How should we fund the library?"
	ti.CharLimit = 200
	ti.Width = 60

	nodeTable := newTable([]table.Column{
		{Title: "Category", Width: 12},
		{Title: "Title", Width: 50},
		{Title: "ID", Width: 10},
	})
	relTable := newTable([]table.Column{
		{Title: "Source", Width: 28},
		{Title: "Kind", Width: 12},
		{Title: "Target", Width: 28},
	})

	m := model{
		store:          st,
		deliberationID: deliberationID,
		currentView:    nodesView,
		nodeTable:      nodeTable,
		relTable:       relTable,
		nodeInput:      ti,
		help:           help.New(),
		keys:           keys,
		nodesByID:      make(map[string]*ibis.Node),
	}
	m.refreshTables()
	return m
}

func newTable(columns []table.Column) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#00FFFF")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#7D56F4")).
		Bold(false)
	t.SetStyles(s)
	return t
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			if m.currentView != addNodeView || !m.nodeInput.Focused() || msg.String() == "ctrl+c" {
				return m, tea.Quit
			}

		case key.Matches(msg, m.keys.Tab):
			m.currentView = (m.currentView + 1) % viewCount
			m.syncFocus()

		case key.Matches(msg, m.keys.ShiftTab):
			if m.currentView == 0 {
				m.currentView = viewCount - 1
			} else {
				m.currentView--
			}
			m.syncFocus()

		case key.Matches(msg, m.keys.Enter):
			if m.currentView == addNodeView && m.nodeInput.Focused() {
				m.addNode()
			}

		case key.Matches(msg, m.keys.Layout):
			if m.currentView != addNodeView {
				m.runLayout()
			}
		}
	}

	switch m.currentView {
	case addNodeView:
		m.nodeInput, cmd = m.nodeInput.Update(msg)
		cmds = append(cmds, cmd)
	case nodesView:
		m.nodeTable, cmd = m.nodeTable.Update(msg)
		cmds = append(cmds, cmd)
	case relationshipsView:
		m.relTable, cmd = m.relTable.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *model) syncFocus() {
	if m.currentView == addNodeView {
		m.nodeInput.Focus()
	} else {
		m.nodeInput.Blur()
	}
}

// addNode parses "category: title" from the input and stores it.
func (m *model) addNode() {
	raw := strings.TrimSpace(m.nodeInput.Value())
	if raw == "" {
		m.message = "Node cannot be empty"
		m.messageErr = true
		return
	}

	category := ibis.CategoryUncategorized
	title := raw
	if idx := strings.Index(raw, ":"); idx > 0 {
		category = ibis.NormalizeCategory(strings.TrimSpace(raw[:idx]))
		title = strings.TrimSpace(raw[idx+1:])
	}
	if title == "" {
		m.message = "Node title cannot be empty"
		m.messageErr = true
		return
	}

	node := &ibis.Node{
		DeliberationID: m.deliberationID,
		Title:          title,
		Category:       category,
		CreatedAt:      time.Now(),
	}
	if err := m.store.CreateNode(context.Background(), node); err != nil {
		m.message = fmt.Sprintf("Failed to add node: %v", err)
		m.messageErr = true
		return
	}

	m.nodeInput.SetValue("")
	m.message = fmt.Sprintf("Added %s node %q", category, title)
	m.messageErr = false
	m.refreshTables()
}

func (m *model) runLayout() {
	ctx := context.Background()
	nodes, err := m.store.ListNodes(ctx, m.deliberationID)
	if err != nil {
		m.message = fmt.Sprintf("Failed to list nodes: %v", err)
		m.messageErr = true
		return
	}
	relationships, err := m.store.ListRelationships(ctx, m.deliberationID)
	if err != nil {
		m.message = fmt.Sprintf("Failed to list relationships: %v", err)
		m.messageErr = true
		return
	}

	engine := layout.NewConcentricLayout(nil)
	start := time.Now()
	result, err := engine.Compute(ctx, nodes, relationships)
	if err != nil {
		m.message = fmt.Sprintf("Layout failed: %v", err)
		m.messageErr = true
		return
	}

	m.result = result
	m.currentView = mapView
	m.syncFocus()
	m.message = fmt.Sprintf("Layout computed for %d nodes in %s", len(nodes), time.Since(start).Round(time.Millisecond))
	m.messageErr = false
}

func (m *model) refreshTables() {
	ctx := context.Background()

	nodes, err := m.store.ListNodes(ctx, m.deliberationID)
	if err == nil {
		rows := make([]table.Row, 0, len(nodes))
		m.nodesByID = make(map[string]*ibis.Node, len(nodes))
		for _, n := range nodes {
			m.nodesByID[n.ID] = n
			rows = append(rows, table.Row{string(n.Category), n.Title, shortID(n.ID)})
		}
		m.nodeTable.SetRows(rows)
	}

	relationships, err := m.store.ListRelationships(ctx, m.deliberationID)
	if err == nil {
		rows := make([]table.Row, 0, len(relationships))
		for _, r := range relationships {
			rows = append(rows, table.Row{m.nodeTitle(r.SourceID), string(r.Kind), m.nodeTitle(r.TargetID)})
		}
		m.relTable.SetRows(rows)
	}
}

func (m *model) nodeTitle(id string) string {
	if n, ok := m.nodesByID[id]; ok {
		return truncate(n.Title, 26)
	}
	return shortID(id)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

func (m model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var s strings.Builder

	s.WriteString(titleStyle.Render("Agora — Deliberation Browser"))
	s.WriteString("\n\n")
	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	switch m.currentView {
	case nodesView:
		s.WriteString(m.renderNodes())
	case relationshipsView:
		s.WriteString(m.renderRelationships())
	case addNodeView:
		s.WriteString(m.renderAddNode())
	case mapView:
		s.WriteString(m.renderMap())
	}

	if m.message != "" {
		s.WriteString("\n\n")
		if m.messageErr {
			s.WriteString(errorStyle.Render("✗ " + m.message))
		} else {
			s.WriteString(successStyle.Render("✓ " + m.message))
		}
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp())))

	return s.String()
}

func (m model) renderTabs() string {
	tabs := []string{"Nodes", "Relationships", "Add Node", "Map"}
	var renderedTabs []string
	for i, tab := range tabs {
		if view(i) == m.currentView {
			renderedTabs = append(renderedTabs, activeTabStyle.Render(tab))
		} else {
			renderedTabs = append(renderedTabs, inactiveTabStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, renderedTabs...)
}

func (m model) renderNodes() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("Nodes"))
	s.WriteString("\n\n")
	s.WriteString(m.nodeTable.View())
	return contentStyle.Render(s.String())
}

func (m model) renderRelationships() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("Relationships"))
	s.WriteString("\n\n")
	s.WriteString(m.relTable.View())
	return contentStyle.Render(s.String())
}

func (m model) renderAddNode() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("Add Node"))
	s.WriteString("\n\n")
	s.WriteString("Enter a node as \"category: title\":\n\n")
	s.WriteString(m.nodeInput.View())
	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("Categories: issue, position, argument\n"))
	s.WriteString(helpStyle.Render("  issue: Should the park open at night?\n"))
	s.WriteString(helpStyle.Render("  position: Keep it open until midnight\n"))
	return contentStyle.Render(s.String())
}

// renderMap draws node positions into a character grid, one glyph per
// category, with the canvas scaled to the terminal.
func (m model) renderMap() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("Layout Map"))
	s.WriteString("\n\n")

	if m.result == nil {
		s.WriteString(helpStyle.Render("No layout computed yet. Press 'r' to run the engine."))
		return contentStyle.Render(s.String())
	}

	s.WriteString(mapBoxStyle.Render(m.asciiMap()))
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("? issue   ! position   + argument   · uncategorized"))
	return contentStyle.Render(s.String())
}

func (m model) asciiMap() string {
	const gridW, gridH = 72, 24

	grid := make([][]rune, gridH)
	for y := range grid {
		grid[y] = make([]rune, gridW)
		for x := range grid[y] {
			grid[y][x] = ' '
		}
	}

	// Canvas extent from the positions themselves.
	minX, minY := 0.0, 0.0
	maxX, maxY := layout.DefaultWidth, layout.DefaultHeight
	for _, pos := range m.result.Positions {
		if pos.X > maxX {
			maxX = pos.X
		}
		if pos.Y > maxY {
			maxY = pos.Y
		}
		if pos.X < minX {
			minX = pos.X
		}
		if pos.Y < minY {
			minY = pos.Y
		}
	}

	for id, pos := range m.result.Positions {
		gx := int((pos.X - minX) / (maxX - minX + 1) * float64(gridW-1))
		gy := int((pos.Y - minY) / (maxY - minY + 1) * float64(gridH-1))
		glyph := '·'
		if n, ok := m.nodesByID[id]; ok {
			switch n.Category {
			case ibis.CategoryIssue:
				glyph = '?'
			case ibis.CategoryPosition:
				glyph = '!'
			case ibis.CategoryArgument:
				glyph = '+'
			}
		}
		grid[gy][gx] = glyph
	}

	var s strings.Builder
	for _, row := range grid {
		s.WriteString(string(row))
		s.WriteString("\n")
	}
	return s.String()
}

func loadGraph(st store.Store, path string) (string, error) {
	ctx := context.Background()

	d := &ibis.Deliberation{Title: "Scratch deliberation", Status: ibis.StatusActive}
	if path == "" {
		if err := st.CreateDeliberation(ctx, d); err != nil {
			return "", err
		}
		return d.ID, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var graph struct {
		Nodes         []*ibis.Node         `json:"nodes"`
		Relationships []*ibis.Relationship `json:"relationships"`
	}
	if err := json.Unmarshal(data, &graph); err != nil {
		return "", fmt.Errorf("failed to parse graph file: %w", err)
	}

	d.Title = path
	if err := st.CreateDeliberation(ctx, d); err != nil {
		return "", err
	}
	for _, n := range graph.Nodes {
		n.DeliberationID = d.ID
		if err := st.CreateNode(ctx, n); err != nil {
			return "", err
		}
	}
	for _, r := range graph.Relationships {
		r.DeliberationID = d.ID
		if err := st.CreateRelationship(ctx, r); err != nil {
			return "", err
		}
	}
	return d.ID, nil
}

func main() {
	graphPath := ""
	if len(os.Args) > 1 {
		graphPath = os.Args[1]
	}

	st := store.NewMemoryStore()
	deliberationID, err := loadGraph(st, graphPath)
	if err != nil {
		log.Fatalf("Failed to load graph: %v", err)
	}

	p := tea.NewProgram(initialModel(st, deliberationID), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}
}
