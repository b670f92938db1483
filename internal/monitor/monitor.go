// Package monitor is a terminal view of the daemon's live players.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/llehouerou/soundpool/internal/ipc"
	"github.com/llehouerou/soundpool/internal/sound"
)

const (
	refreshInterval = time.Second
	recentEvents    = 8
	callTimeout     = 2 * time.Second
)

// Source is the daemon connection the monitor reads from.
type Source interface {
	List(ctx context.Context) (ipc.ListResponse, error)
	Events() <-chan ipc.Push
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	eventStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle  = lipgloss.NewStyle().Faint(true)
)

type (
	playersMsg struct {
		players []sound.PlayerInfo
		err     error
	}
	eventMsg struct {
		push ipc.Push
		ok   bool
	}
	tickMsg time.Time
)

// Model is the bubbletea model of the monitor.
type Model struct {
	src     Source
	table   table.Model
	players []sound.PlayerInfo
	seen    map[int]time.Time // last event per key
	events  []string
	err     error
	closed  bool
	now     func() time.Time
}

// New creates a monitor reading from src.
func New(src Source) Model {
	t := table.New(
		table.WithColumns(columns()),
		table.WithFocused(false),
		table.WithHeight(10),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.Bold(true)
	t.SetStyles(s)

	return Model{
		src:   src,
		table: t,
		seen:  make(map[int]time.Time),
		now:   time.Now,
	}
}

// Run shows the monitor until the user quits or ctx is done.
func Run(ctx context.Context, src Source) error {
	_, err := tea.NewProgram(New(src), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

func columns() []table.Column {
	return []table.Column{
		{Title: "Key", Width: 5},
		{Title: "State", Width: 8},
		{Title: "Position", Width: 14},
		{Title: "Vol", Width: 5},
		{Title: "Speed", Width: 6},
		{Title: "Loop", Width: 4},
		{Title: "Focus", Width: 5},
		{Title: "Last event", Width: 16},
		{Title: "Title", Width: 30},
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refresh(), waitEvent(m.src.Events()), tick())
}

func (m Model) refresh() tea.Cmd {
	src := m.src
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		resp, err := src.List(ctx)
		return playersMsg{players: resp.Players, err: err}
	}
}

func waitEvent(ch <-chan ipc.Push) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-ch
		return eventMsg{push: p, ok: ok}
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.table.SetHeight(max(3, msg.Height-recentEvents-6))
	case tickMsg:
		return m, tea.Batch(m.refresh(), tick())
	case playersMsg:
		m.err = msg.err
		if msg.err == nil {
			m.players = msg.players
		}
		m.table.SetRows(rows(m.players, m.seen, m.now()))
	case eventMsg:
		if !msg.ok {
			m.closed = true
			return m, tea.Quit
		}
		m.record(msg.push)
		m.table.SetRows(rows(m.players, m.seen, m.now()))
		return m, waitEvent(m.src.Events())
	}
	return m, nil
}

// record notes an event in the recent list.
func (m *Model) record(p ipc.Push) {
	line, key, ok := describe(p)
	if !ok {
		return
	}
	now := m.now()
	m.seen[key] = now
	m.events = append(m.events, now.Format("15:04:05")+"  "+line)
	if len(m.events) > recentEvents {
		m.events = m.events[len(m.events)-recentEvents:]
	}
}

func describe(p ipc.Push) (line string, key int, ok bool) {
	switch p.Event {
	case sound.EventNamePlayingState:
		var ev sound.PlayingStateEvent
		if err := json.Unmarshal(p.Data, &ev); err != nil {
			return "", 0, false
		}
		state := "paused"
		if ev.IsPlaying {
			state = "playing"
		}
		return fmt.Sprintf("#%d %s at %s", ev.Key, state, clock(ev.CurrentTime)), ev.Key, true
	case sound.EventNameProgress:
		var ev sound.ProgressEvent
		if err := json.Unmarshal(p.Data, &ev); err != nil {
			return "", 0, false
		}
		return fmt.Sprintf("#%d progress %s", ev.Key, clock(ev.Progress)), ev.Key, true
	}
	return "", 0, false
}

func rows(players []sound.PlayerInfo, seen map[int]time.Time, now time.Time) []table.Row {
	out := make([]table.Row, 0, len(players))
	for _, p := range players {
		state := "paused"
		if p.IsPlaying {
			state = "playing"
		}
		last := "-"
		if t, ok := seen[p.Key]; ok {
			last = humanize.RelTime(t, now, "ago", "from now")
		}
		out = append(out, table.Row{
			fmt.Sprint(p.Key),
			state,
			clock(p.CurrentTime) + " / " + clock(p.Duration),
			fmt.Sprintf("%d%%", int(p.Volume*100+0.5)),
			fmt.Sprintf("%.2fx", p.Speed),
			flag(p.Looping),
			flag(p.Focused),
			last,
			display(p),
		})
	}
	return out
}

func display(p sound.PlayerInfo) string {
	switch {
	case p.Title != "" && p.Artist != "":
		return p.Artist + " - " + p.Title
	case p.Title != "":
		return p.Title
	default:
		return p.Source
	}
}

func flag(b bool) string {
	if b {
		return "on"
	}
	return ""
}

// clock formats seconds as m:ss, or h:mm:ss past an hour.
func clock(sec float64) string {
	if sec < 0 {
		return "-"
	}
	d := time.Duration(sec) * time.Second
	h := int(d.Hours())
	mn := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, mn, s)
	}
	return fmt.Sprintf("%d:%02d", mn, s)
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("soundpool  %s", humanize.Comma(int64(len(m.players)))+" players")))
	b.WriteString("\n\n")
	b.WriteString(m.table.View())
	b.WriteString("\n\n")
	for _, e := range m.events {
		b.WriteString(eventStyle.Render(e))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(errStyle.Render("list failed: " + m.err.Error()))
		b.WriteString("\n")
	}
	if m.closed {
		b.WriteString(errStyle.Render("daemon disconnected"))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("q quit"))
	return b.String()
}
