// Pumpsim provides a TUI that simulates the PLC of an 8x15DMX-3 pump over
// Modbus/TCP for testing NPSH analysis workflows. Operating parameters are
// adjusted in the terminal and exposed as holding registers; external
// Modbus clients can read them and start or stop the pump.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rwirdemann/pumpsim"
	"github.com/rwirdemann/pumpsim/modbus"
)

const (
	focusRegisterList = iota
	focusRegisterInput
	ratioLeftPanelWidth = 0.55
)

var baseStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.RoundedBorder())

var activeStyle = baseStyle.
	BorderForeground(lipgloss.Color("white"))

var passiveStyle = baseStyle.
	BorderForeground(lipgloss.Color("240"))

var helpStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{
	Light: "#909090",
	Dark:  "#626262",
}).Padding(0, 1)

var warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F25D94"))

// logger collects server and simulator traffic for the log panel. Append is
// called from server goroutines, hence the lock.
type logger struct {
	mu       sync.Mutex
	items    []string
	maxItems int
}

func (l *logger) Append(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, s)
	if l.maxItems > 0 && len(l.items) > l.maxItems {
		l.items = l.items[len(l.items)-l.maxItems:]
	}
}

func (l *logger) lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.items...)
}

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config", "path to the configuration directory")
	flag.Parse()

	config, err := pumpsim.LoadConfig(configPath)
	if err != nil {
		slog.Warn("using default configuration", "err", err)
		config = pumpsim.DefaultConfig
	}

	log := &logger{maxItems: 100}
	bank := modbus.NewBank(pumpsim.BankSize)
	sim := pumpsim.NewSimulator(bank, pumpsim.Spec8x15DMX3, time.Duration(config.UpdateInterval)*time.Millisecond, log)
	server := modbus.NewServer(config.Server.Url, time.Duration(config.Server.Timeout)*time.Second, uint(config.Server.MaxClients), bank, log)

	if err := server.Start(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
	defer func() { _ = server.Stop() }()
	sim.Start()
	defer sim.Stop()

	m := newModel(sim, server, log)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		fmt.Println("Error running program:", err)
		os.Exit(1)
	}
}

type model struct {
	focus           int
	sim             *pumpsim.Simulator
	server          *modbus.Server
	logger          *logger
	registerTable   table.Model
	registerInput   textinput.Model
	editing         pumpsim.Param
	fullHeight      int
	fullWidth       int
	leftPanelWidth  int
	rightPanelWidth int
}

func newModel(sim *pumpsim.Simulator, server *modbus.Server, logger *logger) model {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(true)

	columns := []table.Column{
		{Title: "Register", Width: 8},
		{Title: "Description", Width: 18},
		{Title: "Value", Width: 14},
		{Title: "Raw", Width: 6},
	}
	registerTable := table.New(
		table.WithColumns(columns),
		table.WithRows(registerRows(sim.Snapshot())),
		table.WithFocused(true),
	)
	registerTable.SetStyles(s)

	return model{
		focus:         focusRegisterList,
		sim:           sim,
		server:        server,
		logger:        logger,
		registerTable: registerTable,
		registerInput: textinput.New(),
	}
}

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*500, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Init() tea.Cmd { return tickCmd() }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmds []tea.Cmd
		cmd  tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.fullHeight = msg.Height
		m.fullWidth = msg.Width
		m.leftPanelWidth = int(float32(m.fullWidth) * ratioLeftPanelWidth)
		m.rightPanelWidth = m.fullWidth - m.leftPanelWidth - 4
		m.registerTable.SetHeight(m.fullHeight - 6)
		return m, nil

	case tea.KeyMsg:
		switch m.focus {
		case focusRegisterList:
			m.registerTable, cmd = m.registerTable.Update(msg)
			cmds = append(cmds, cmd)

			switch msg.String() {
			case "q", "ctrl+c":
				return m, tea.Quit
			case "s":
				m.sim.StartPump()
			case "x":
				m.sim.StopPump()
			case "left", "right":
				m.nudge(msg.String() == "right")
			case "enter":
				reg := m.selectedRegister()
				if p, ok := pumpsim.ParamByRegister(reg); ok {
					m.editing = p
					value := m.sim.Param(reg)
					m.registerInput.SetValue(strconv.FormatFloat(value, 'f', p.Decimals, 64))
					m.registerInput.SetCursor(len(m.registerInput.Value()))
					m.registerInput.Focus()
					m.registerTable.Blur()
					m.focus = focusRegisterInput
				}
			}

		case focusRegisterInput:
			m.registerInput, cmd = m.registerInput.Update(msg)
			cmds = append(cmds, cmd)

			switch msg.String() {
			case "esc":
				m.registerTable.Focus()
				m.focus = focusRegisterList
			case "enter":
				value, err := strconv.ParseFloat(m.registerInput.Value(), 64)
				if err != nil {
					m.logger.Append(fmt.Sprintf("%s: %v", time.Now().Format(time.DateTime), err))
				} else if err := m.sim.SetParam(m.editing.Register, value); err != nil {
					m.logger.Append(fmt.Sprintf("%s: %v", time.Now().Format(time.DateTime), err))
				}
				m.registerTable.Focus()
				m.focus = focusRegisterList
			}
		}
	case tickMsg:
		cmds = append(cmds, tickCmd())
	}

	return m, tea.Batch(cmds...)
}

// nudge moves the selected parameter by one slider step.
func (m *model) nudge(up bool) {
	reg := m.selectedRegister()
	p, ok := pumpsim.ParamByRegister(reg)
	if !ok {
		return
	}
	value := m.sim.Param(reg)
	if up {
		value += p.Step
	} else {
		value -= p.Step
	}
	if err := m.sim.SetParam(reg, p.Clamp(value)); err != nil {
		m.logger.Append(fmt.Sprintf("%s: %v", time.Now().Format(time.DateTime), err))
	}
}

func (m model) selectedRegister() uint16 {
	cursor := m.registerTable.Cursor()
	if cursor < 0 || cursor >= len(pumpsim.MonitorRegisters) {
		return 0
	}
	return pumpsim.MonitorRegisters[cursor]
}

func (m model) View() string {
	snapshot := m.sim.Snapshot()
	m.registerTable.SetRows(registerRows(snapshot))

	left := m.renderRegisterTable()
	right := lipgloss.JoinVertical(
		lipgloss.Top,
		m.renderStatusPanel(snapshot),
		m.renderEditPanel(),
		m.renderLogPanel(),
	)
	help := helpStyle.Render("←/→ - adjust • enter - edit • s - start pump • x - stop pump • q - quit")
	return lipgloss.JoinVertical(lipgloss.Top, lipgloss.JoinHorizontal(lipgloss.Top, left, right), help)
}

func (m model) renderRegisterTable() string {
	var style lipgloss.Style
	if m.focus == focusRegisterList {
		style = activeStyle
	} else {
		style = passiveStyle
	}
	style = style.Height(m.fullHeight - 4).Width(m.leftPanelWidth)
	return style.Render(m.registerTable.View())
}

func (m model) renderStatusPanel(snapshot pumpsim.Snapshot) string {
	spec := m.sim.Spec()

	state := "STOPPED"
	if snapshot.Running {
		state = "RUNNING"
	}
	margin := fmt.Sprintf("%.2f m", snapshot.NPSH.Margin())
	if snapshot.NPSH.Margin() < 0 {
		margin = warnStyle.Render(margin + " (cavitation risk)")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Pump   : %s (%s)\n", spec.Model, state)
	fmt.Fprintf(&b, "Server : %s\n\n", m.server.URL())
	fmt.Fprintf(&b, "NPSHa  : %.2f m\n", snapshot.NPSH.Available)
	fmt.Fprintf(&b, "NPSHr  : %.2f m\n", snapshot.NPSH.Required)
	fmt.Fprintf(&b, "Margin : %s\n\n", margin)
	fmt.Fprintf(&b, "Rated Flow : %.0f m³/h\n", spec.RatedFlow)
	fmt.Fprintf(&b, "AOR Range  : %.0f-%.0f m³/h\n", spec.AORMin, spec.AORMax)
	fmt.Fprintf(&b, "POR Range  : %.0f-%.0f m³/h\n", spec.PORMin, spec.PORMax)
	fmt.Fprintf(&b, "Rated NPSHr: %.1f m", spec.RatedNPSHr)

	style := passiveStyle.Border(generateBorder("NPSH Status", m.rightPanelWidth))
	return style.Padding(0, 1).Width(m.rightPanelWidth).Render(b.String())
}

func (m model) renderEditPanel() string {
	var style lipgloss.Style
	if m.focus == focusRegisterInput {
		style = activeStyle
	} else {
		style = passiveStyle
	}

	s := ""
	if m.focus == focusRegisterInput {
		s = fmt.Sprintf("\n%s (%s), %g..%g\n\n", m.editing.Name, m.editing.Unit, m.editing.Min, m.editing.Max)
		m.registerInput.Prompt = "Value: "
		s += m.registerInput.View()
	}

	style = style.Border(generateBorder("Edit Parameter", m.rightPanelWidth))
	return lipgloss.JoinVertical(
		lipgloss.Top,
		style.Padding(0, 1).Height(5).Width(m.rightPanelWidth).Render(s),
		helpStyle.Render("enter - save • esc - discard"))
}

func (m model) renderLogPanel() string {
	height := m.fullHeight - 25
	if height < 3 {
		height = 3
	}
	lines := m.logger.lines()
	if len(lines) > height {
		lines = lines[len(lines)-height:]
	}
	style := passiveStyle.Border(generateBorder("Traffic", m.rightPanelWidth))
	return style.Padding(0, 1).Height(height).Width(m.rightPanelWidth).Render(strings.Join(lines, "\n"))
}

func generateBorder(title string, width int) lipgloss.Border {
	if width < 0 {
		return lipgloss.RoundedBorder()
	}
	border := lipgloss.RoundedBorder()
	border.Top = border.Top + border.MiddleRight + " " + title + " " + border.MiddleLeft + strings.Repeat(border.Top, width)
	return border
}

func registerRows(snapshot pumpsim.Snapshot) []table.Row {
	var rows []table.Row
	for _, reg := range pumpsim.MonitorRegisters {
		raw := snapshot.Raw[reg]
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", reg),
			pumpsim.RegisterDescription(reg),
			pumpsim.FormatRegister(reg, raw),
			fmt.Sprintf("%d", raw),
		})
	}
	return rows
}
