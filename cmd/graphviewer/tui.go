package main

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-graphviewer/pkg/graph"
	"github.com/dd0wney/cluso-graphviewer/pkg/logging"
	"github.com/dd0wney/cluso-graphviewer/pkg/shaper"
	"github.com/dd0wney/cluso-graphviewer/pkg/viewer"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginLeft(2).
			MarginTop(1)

	statsBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(0, 2).
			MarginRight(2)

	contentStyle = lipgloss.NewStyle().
			MarginLeft(2).
			MarginTop(1)

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

const (
	refreshInterval = 250 * time.Millisecond
	zoomStep        = 1.25
)

type keyMap struct {
	Tab      key.Binding
	Enter    key.Binding
	ZoomIn   key.Binding
	ZoomOut  key.Binding
	Random   key.Binding
	Dissolve key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "input/table"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "load/explore"),
	),
	ZoomIn: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "zoom in"),
	),
	ZoomOut: key.NewBinding(
		key.WithKeys("-"),
		key.WithHelp("-", "zoom out"),
	),
	Random: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "random start"),
	),
	Dissolve: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "dissolve community"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Enter, k.ZoomIn, k.ZoomOut, k.Random, k.Dissolve, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type tickMsg time.Time

type sceneMsg struct {
	scene shaper.Scene
	err   error
}

type statusMsg struct {
	text string
	err  error
}

// graphChangedMsg reports a burst of store events.
type graphChangedMsg struct {
	kind  graph.EventKind
	count int
}

type model struct {
	ctx        context.Context
	viewer     *viewer.GraphViewer
	input      textinput.Model
	nodeTable  table.Model
	help       help.Model
	keys       keyMap
	scene      shaper.Scene
	loaded     bool
	width      int
	message    string
	messageErr bool
	events     <-chan graph.Event
}

func newTUICmd(root *rootOptions) *cobra.Command {
	var start string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Explore the graph interactively in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load(cmd)
			if err != nil {
				return err
			}
			// Stdout belongs to the UI.
			logger := logging.NewNopLogger()
			if cfg.Log.Level == "debug" {
				logger = cfg.Logger()
			}
			v, err := newViewer(cfg, logger, nil)
			if err != nil {
				return err
			}
			defer v.Close()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			go v.Run(ctx)

			m := initialModel(ctx, v)
			sub, err := v.Store().Subscribe(ctx)
			if err != nil {
				return err
			}
			m.events = sub.Channel()
			if start != "" {
				m.input.SetValue(start)
			}
			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
			_, err = p.Run()
			return err
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "start node id to prefill")
	return cmd
}

func initialModel(ctx context.Context, v *viewer.GraphViewer) model {
	ti := textinput.New()
	ti.Placeholder = "start node id"
	ti.CharLimit = 200
	ti.Width = 40
	ti.Focus()

	columns := []table.Column{
		{Title: "ID", Width: 24},
		{Title: "Label", Width: 20},
		{Title: "Size", Width: 6},
		{Title: "X", Width: 8},
		{Title: "Y", Width: 8},
	}
	t := table.New(
		table.WithColumns(columns),
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
		Background(lipgloss.Color("#FF00FF")).
		Bold(false)
	t.SetStyles(s)

	return model{
		ctx:       ctx,
		viewer:    v,
		input:     ti,
		nodeTable: t,
		help:      help.New(),
		keys:      keys,
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, tickCmd()}
	if m.events != nil {
		cmds = append(cmds, waitForChange(m.events))
	}
	return tea.Batch(cmds...)
}

// waitForChange blocks until the live graph changes and folds the events
// already queued behind the first one into a single message.
func waitForChange(events <-chan graph.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		msg := graphChangedMsg{kind: ev.Kind, count: 1}
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return msg
				}
				msg.kind = ev.Kind
				msg.count++
			default:
				return msg
			}
		}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.refresh(), tickCmd())

	case graphChangedMsg:
		return m, tea.Batch(m.refresh(), waitForChange(m.events))

	case sceneMsg:
		if msg.err != nil {
			m.message, m.messageErr = msg.err.Error(), true
			return m, nil
		}
		m.scene = msg.scene
		m.nodeTable.SetRows(sceneRows(msg.scene))
		return m, nil

	case statusMsg:
		if msg.err != nil {
			m.message, m.messageErr = msg.err.Error(), true
		} else {
			m.message, m.messageErr = msg.text, false
			if strings.HasPrefix(msg.text, "loaded") {
				m.loaded = true
			}
		}
		return m, m.refresh()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit) && (msg.String() == "ctrl+c" || !m.input.Focused()):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Tab):
			if m.input.Focused() {
				m.input.Blur()
				m.nodeTable.Focus()
			} else {
				m.nodeTable.Blur()
				m.input.Focus()
			}
			return m, nil

		case key.Matches(msg, m.keys.Enter):
			return m, m.submit()

		case !m.input.Focused() && key.Matches(msg, m.keys.ZoomIn):
			return m, m.zoom(zoomStep)

		case !m.input.Focused() && key.Matches(msg, m.keys.ZoomOut):
			return m, m.zoom(1 / zoomStep)

		case !m.input.Focused() && key.Matches(msg, m.keys.Random):
			return m, m.load("")

		case !m.input.Focused() && key.Matches(msg, m.keys.Dissolve):
			return m, m.dissolve(m.selectedID())
		}
	}

	if m.input.Focused() {
		m.input, cmd = m.input.Update(msg)
	} else {
		m.nodeTable, cmd = m.nodeTable.Update(msg)
	}
	return m, cmd
}

// submit loads the typed id before anything is loaded, and explores the
// typed or selected id afterwards.
func (m model) submit() tea.Cmd {
	id := strings.TrimSpace(m.input.Value())
	if !m.input.Focused() {
		if sel := m.selectedID(); sel != "" {
			id = sel
		}
	}
	if id == "" {
		return func() tea.Msg { return statusMsg{err: fmt.Errorf("node id cannot be empty")} }
	}
	if !m.loaded {
		return m.load(id)
	}
	return m.explore(id)
}

// selectedID returns the id of the selected table row without its indent.
func (m model) selectedID() string {
	if row := m.nodeTable.SelectedRow(); row != nil {
		return strings.TrimSpace(row[0])
	}
	return ""
}

func (m model) refresh() tea.Cmd {
	v, ctx := m.viewer, m.ctx
	return func() tea.Msg {
		var sc shaper.Scene
		err := v.Query(ctx, func() { sc = v.Scene() })
		return sceneMsg{scene: sc, err: err}
	}
}

func (m model) load(id string) tea.Cmd {
	v, ctx := m.viewer, m.ctx
	return func() tea.Msg {
		if err := loadStart(ctx, v, id); err != nil {
			return statusMsg{err: err}
		}
		if id == "" {
			return statusMsg{text: "loaded a random start node"}
		}
		return statusMsg{text: "loaded " + id}
	}
}

func (m model) explore(id string) tea.Cmd {
	v, ctx := m.viewer, m.ctx
	return func() tea.Msg {
		ch := make(chan error, 1)
		if err := v.Do(func() { v.Explore(id, func(err error) { ch <- err }) }); err != nil {
			return statusMsg{err: err}
		}
		select {
		case err := <-ch:
			if err != nil {
				return statusMsg{err: err}
			}
			return statusMsg{text: "explored " + id}
		case <-ctx.Done():
			return statusMsg{err: ctx.Err()}
		}
	}
}

func (m model) dissolve(id string) tea.Cmd {
	v, ctx := m.viewer, m.ctx
	return func() tea.Msg {
		if id == "" {
			return statusMsg{err: fmt.Errorf("select a community to dissolve")}
		}
		var err error
		if qerr := v.Query(ctx, func() { err = v.Dissolve(id) }); qerr != nil {
			return statusMsg{err: qerr}
		}
		if err != nil {
			return statusMsg{err: err}
		}
		return statusMsg{text: "dissolved " + id}
	}
}

func (m model) zoom(factor float64) tea.Cmd {
	v, ctx := m.viewer, m.ctx
	scale := clampScale(m.scene.Scale) * factor
	return func() tea.Msg {
		if err := v.Query(ctx, func() { v.Zoom(scale) }); err != nil {
			return statusMsg{err: err}
		}
		return statusMsg{text: fmt.Sprintf("zoom %.2f", scale)}
	}
}

// sceneRows lists communities before plain nodes, members indented under
// their expanded community.
func sceneRows(sc shaper.Scene) []table.Row {
	rows := make([]table.Row, 0, len(sc.Nodes))
	var add func(n shaper.NodeVisual, indent string)
	add = func(n shaper.NodeVisual, indent string) {
		size := ""
		if n.Community {
			size = fmt.Sprintf("%d", n.Size)
		}
		rows = append(rows, table.Row{
			indent + n.ID,
			n.Label,
			size,
			fmt.Sprintf("%.0f", n.X),
			fmt.Sprintf("%.0f", n.Y),
		})
		for _, member := range n.Members {
			add(member, indent+"  ")
		}
	}
	for _, n := range sc.Nodes {
		if n.Community {
			add(n, "")
		}
	}
	for _, n := range sc.Nodes {
		if !n.Community {
			add(n, "")
		}
	}
	return rows
}

func (m model) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("graphviewer"))
	s.WriteString("\n")

	communities := 0
	for _, n := range m.scene.Nodes {
		if n.Community {
			communities++
		}
	}
	stats := fmt.Sprintf("Nodes:        %d\nCommunities:  %d\nEdges:        %d\nZoom:         %.2f",
		len(m.scene.Nodes), communities, len(m.scene.Edges), m.scene.Scale)

	var legend strings.Builder
	for _, e := range m.scene.Legend {
		swatch := lipgloss.NewStyle().
			Foreground(lipgloss.Color(e.Pair.Text)).
			Background(lipgloss.Color(e.Pair.Fill)).
			Render(" " + e.Value + " ")
		legend.WriteString(swatch + "\n")
	}
	boxes := []string{statsBoxStyle.Render(stats)}
	if legend.Len() > 0 {
		boxes = append(boxes, statsBoxStyle.Render(strings.TrimRight(legend.String(), "\n")))
	}

	var body strings.Builder
	body.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
	body.WriteString("\n\n")
	body.WriteString(m.input.View())
	body.WriteString("\n\n")
	body.WriteString(m.nodeTable.View())
	s.WriteString(contentStyle.Render(body.String()))

	if m.message != "" {
		s.WriteString("\n\n  ")
		if m.messageErr {
			s.WriteString(errorStyle.Render("x " + m.message))
		} else {
			s.WriteString(successStyle.Render(m.message))
		}
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp())))
	return s.String()
}

// clampScale treats an unset scale as 1.
func clampScale(s float64) float64 {
	if math.IsNaN(s) || s <= 0 {
		return 1
	}
	return s
}
