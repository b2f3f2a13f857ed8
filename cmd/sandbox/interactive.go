package main

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/leoovs/Xuzumi/handle"
	"github.com/leoovs/Xuzumi/memory"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	statStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	usedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const logPaneLines = 6

// logPane keeps the last few log lines for the inspector to render.
type logPane struct {
	mu    sync.Mutex
	lines []string
}

func (p *logPane) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, line := range strings.Split(strings.TrimRight(string(b), "\n"), "\n") {
		p.lines = append(p.lines, line)
	}
	if n := len(p.lines); n > logPaneLines {
		p.lines = append(p.lines[:0], p.lines[n-logPaneLines:]...)
	}
	return len(b), nil
}

func (p *logPane) Lines() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.lines...)
}

type modelState int

const (
	stateBrowse modelState = iota
	stateNaming
)

type interactiveModel struct {
	factory  *EntityFactory
	logs     *logPane
	held     []*memory.SharedPtr[Entity]
	ids      []handle.ID
	input    textinput.Model
	selected int
	state    modelState
	status   string
}

func newInteractiveModel(factory *EntityFactory, logs *logPane) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "entity name"
	ti.Prompt = "name: "
	ti.Width = 32

	return &interactiveModel{
		factory: factory,
		logs:    logs,
		input:   ti,
		state:   stateBrowse,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.state == stateNaming {
		switch key.String() {
		case "enter":
			m.spawn(m.input.Value())
			m.input.Reset()
			m.input.Blur()
			m.state = stateBrowse
			return m, nil
		case "esc":
			m.input.Reset()
			m.input.Blur()
			m.state = stateBrowse
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch key.String() {
	case "ctrl+c", "q":
		m.shutdown()
		return m, tea.Quit

	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}

	case "down", "j":
		if m.selected < len(m.ids)-1 {
			m.selected++
		}

	case "a":
		m.state = stateNaming
		return m, m.input.Focus()

	case "n":
		m.spawn("")

	case "d":
		if id, ok := m.current(); ok {
			m.factory.Despawn(id)
			m.status = fmt.Sprintf("despawned #%d", id)
		}

	case "h":
		if id, ok := m.current(); ok {
			if s, ok := m.factory.Get(id); ok {
				m.held = append(m.held, s)
				m.status = fmt.Sprintf("holding #%d (use count %d)", id, s.UseCount())
			}
		}

	case "r":
		m.releaseHeld()

	case "c":
		if err := m.factory.Close(); err != nil {
			m.status = err.Error()
		} else {
			m.status = "factory closed"
		}
	}

	m.refresh()
	return m, nil
}

func (m *interactiveModel) spawn(name string) {
	if id := m.factory.Spawn(name); id != handle.InvalidID {
		m.status = fmt.Sprintf("spawned #%d", id)
	} else {
		m.status = "spawn failed"
	}
	m.refresh()
	m.selected = len(m.ids) - 1
}

func (m *interactiveModel) current() (handle.ID, bool) {
	if m.selected < 0 || m.selected >= len(m.ids) {
		return handle.InvalidID, false
	}
	return m.ids[m.selected], true
}

func (m *interactiveModel) refresh() {
	m.ids = m.factory.IDs()
	if m.selected >= len(m.ids) {
		m.selected = len(m.ids) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m *interactiveModel) releaseHeld() {
	n := len(m.held)
	for _, s := range m.held {
		s.Reset()
	}
	m.held = nil
	m.status = fmt.Sprintf("released %d held references", n)
}

func (m *interactiveModel) shutdown() {
	m.releaseHeld()
	_ = m.factory.Close()
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Xuzumi Pool Inspector"))
	if m.factory.Closed() {
		b.WriteString(" ")
		b.WriteString(errorStyle.Render("closed"))
	}
	b.WriteString("\n\n")

	alloc := m.factory.Allocator()
	for _, s := range alloc.Stats() {
		b.WriteString(nameStyle.Render(s.Type))
		b.WriteString(statStyle.Render(fmt.Sprintf("  blocks %d  in use %d/%d  allocs %d  frees %d",
			s.Blocks, s.InUse, s.Capacity, s.Allocations, s.Deallocations)))
		b.WriteString("\n")
		if layout, ok := alloc.Layout(s.TypeID); ok {
			for _, block := range layout {
				b.WriteString(fmt.Sprintf("  #%-3d ", block.Index))
				b.WriteString(renderOccupancy(block.Occupancy))
				b.WriteString("\n")
			}
		}
	}
	b.WriteString("\n")

	if len(m.ids) == 0 {
		b.WriteString(helpStyle.Render("no entities"))
		b.WriteString("\n")
	}
	for i, id := range m.ids {
		e, ok := m.factory.Lookup(id)
		if !ok {
			continue
		}
		line := fmt.Sprintf("#%-3d %-16s pos (%.0f, %.0f) hp %d", id, e.Name, e.Position[0], e.Position[1], e.Health)
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	if len(m.held) > 0 {
		b.WriteString(statStyle.Render(fmt.Sprintf("\nholding %d extra references\n", len(m.held))))
	}

	if m.state == stateNaming {
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(usedStyle.Render(m.status))
		b.WriteString("\n")
	}

	if lines := m.logs.Lines(); len(lines) > 0 {
		b.WriteString("\n")
		for _, line := range lines {
			b.WriteString(helpStyle.Render(line))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	if m.state == stateNaming {
		b.WriteString(helpStyle.Render("enter spawn • esc back"))
	} else {
		b.WriteString(helpStyle.Render("a name+spawn • n spawn • d despawn • h hold • r release • c close • q quit"))
	}
	return b.String()
}

func renderOccupancy(occupancy []bool) string {
	var b strings.Builder
	for _, used := range occupancy {
		if used {
			b.WriteString(usedStyle.Render("■"))
		} else {
			b.WriteString(helpStyle.Render("□"))
		}
	}
	return b.String()
}

// runInteractive starts the inspector. It refuses to run without a
// terminal on stdout.
func runInteractive(cfg Config) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("interactive mode needs a terminal")
	}

	logs := &logPane{}
	log, err := newLogger(cfg.Log, logs)
	if err != nil {
		return err
	}
	installLogger(log)
	defer log.Sync() //nolint:errcheck

	factory := NewEntityFactory(cfg.Pool, log)
	stop, err := startMetrics(cfg.Metrics, factory.Allocator(), log)
	if err != nil {
		return err
	}
	defer stop()

	m := newInteractiveModel(factory, logs)
	defer m.shutdown()

	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
