package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/blauberg/internal/devices"
)

// Fan is what the monitor needs from a fan client.
type Fan interface {
	devices.Reader
	devices.Writer
}

// Messages for async operations
type pollMsg struct{}

type resultMsg struct {
	values map[devices.Purpose]any
	err    error
	at     time.Time
}

type writeMsg struct {
	purpose devices.Purpose
	value   any
	err     error
}

// WatchModel polls one fan and renders its state.
type WatchModel struct {
	Name     string
	Addr     string
	Interval time.Duration
	Timeout  time.Duration

	fan     Fan
	profile *devices.Profile

	values  map[devices.Purpose]any
	updated time.Time
	err     error
	polling bool
	polls   int

	width   int
	spinner spinner.Model
	bar     progress.Model
	help    help.Model
	keys    watchKeyMap
}

// NewWatchModel creates a monitor for fan using profile. The first poll
// starts with Init.
func NewWatchModel(name, addr string, f Fan, profile *devices.Profile, interval time.Duration) WatchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = barWidth

	if interval <= 0 {
		interval = 5 * time.Second
	}

	return WatchModel{
		Name:     name,
		Addr:     addr,
		Interval: interval,
		Timeout:  3 * time.Second,
		fan:      f,
		profile:  profile,
		values:   make(map[devices.Purpose]any),
		polling:  true,
		width:    MinTerminalWidth,
		spinner:  s,
		bar:      bar,
		help:     help.New(),
		keys:     newWatchKeyMap(),
	}
}

// Init implements tea.Model
func (m WatchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.poll())
}

// poll reads every purpose of the profile in one exchange.
func (m WatchModel) poll() tea.Cmd {
	f, profile, timeout := m.fan, m.profile, m.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		values, err := profile.Read(ctx, f)
		return resultMsg{values: values, err: err, at: time.Now()}
	}
}

// apply writes one purpose and reports the value the fan answered with.
func (m WatchModel) apply(purpose devices.Purpose, value any) tea.Cmd {
	f, profile, timeout := m.fan, m.profile, m.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		got, err := profile.Apply(ctx, f, purpose, value)
		return writeMsg{purpose: purpose, value: got, err: err}
	}
}

func (m WatchModel) scheduleNext() tea.Cmd {
	return tea.Tick(m.Interval, func(time.Time) tea.Msg { return pollMsg{} })
}

// Update implements tea.Model
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateKeys(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case pollMsg:
		if m.polling {
			return m, nil
		}
		m.polling = true
		return m, m.poll()

	case resultMsg:
		m.polling = false
		m.polls++
		m.err = msg.err
		if msg.err == nil {
			m.values = msg.values
			m.updated = msg.at
		}
		return m, m.scheduleNext()

	case writeMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		if msg.value != nil {
			m.values[msg.purpose] = msg.value
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m WatchModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Refresh):
		if !m.polling {
			m.polling = true
			return m, m.poll()
		}

	case key.Matches(msg, m.keys.Power):
		if m.profile.Supports(devices.PurposePower) {
			on := m.values[devices.PurposePower] == uint64(1)
			return m, m.apply(devices.PurposePower, !on)
		}

	case key.Matches(msg, m.keys.Preset):
		if next, ok := m.nextPreset(); ok {
			return m, m.apply(devices.PurposePreset, next)
		}
	}
	return m, nil
}

// nextPreset returns the preset after the current one, wrapping around.
func (m WatchModel) nextPreset() (string, bool) {
	names := m.profile.Presets
	if len(names) == 0 || !m.profile.Supports(devices.PurposePreset) {
		return "", false
	}
	current, _ := m.values[devices.PurposePreset].(string)
	for i, n := range names {
		if n == current {
			return names[(i+1)%len(names)], true
		}
	}
	return names[0], true
}

// View implements tea.Model
func (m WatchModel) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("BLAUBERG FAN MONITOR"))
	b.WriteString("\n")
	b.WriteString(SubtitleStyle.Render(fmt.Sprintf("%s at %s · profile %s", m.Name, m.Addr, m.profile.Name)))
	b.WriteString("\n\n")

	for _, purpose := range m.profile.Purposes() {
		b.WriteString(LabelStyle.Render(string(purpose)))
		b.WriteString(m.renderValue(purpose, m.values[purpose]))
		b.WriteString("\n")
	}

	var status string
	switch {
	case m.polling:
		status = m.spinner.View() + " polling"
	case m.updated.IsZero():
		status = "no answer yet"
	default:
		status = "updated " + m.updated.Format("15:04:05")
	}
	b.WriteString(StatusBarStyle.Render(status))
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(ErrorStyle.Render("✗ " + m.err.Error()))
	}
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))

	width := m.width
	if width > MaxContentWidth {
		width = MaxContentWidth
	}
	return BoxStyle.Width(width - 4).Render(b.String())
}

func (m WatchModel) renderValue(purpose devices.Purpose, v any) string {
	if v == nil {
		return MissingStyle.Render("—")
	}

	n, isNum := v.(uint64)
	switch {
	case purpose == devices.PurposePower && isNum:
		if n == 0 {
			return OffStyle.Render("OFF")
		}
		return OnStyle.Render("ON")

	case purpose == devices.PurposeMoist && isNum:
		return lipgloss.JoinHorizontal(lipgloss.Center,
			ValueStyle.Render(fmt.Sprintf("%3d %% ", n)),
			m.bar.ViewAs(clampPercent(float64(n)/100)),
		)

	case purpose == devices.PurposeSpeed && isNum:
		return lipgloss.JoinHorizontal(lipgloss.Center,
			ValueStyle.Render(fmt.Sprintf("%3d   ", n)),
			m.bar.ViewAs(clampPercent(float64(n)/255)),
		)
	}
	return ValueStyle.Render(fmt.Sprint(v))
}

func clampPercent(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Run starts the monitor on the alternate screen and blocks until it quits.
func Run(m WatchModel) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
