// Package tui implements the interactive terminal dashboard.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/vcsh30/dahuactl/internal/core"
	"github.com/vcsh30/dahuactl/internal/tui/styles"
)

// Model is the main TUI model
type Model struct {
	controller  core.Controller
	refreshRate time.Duration

	width  int
	height int

	// State
	status  *core.Status
	files   []core.AudioFile
	cursor  int
	loading bool
	spin    spinner.Model

	// Error handling
	lastError   error
	errorExpiry time.Time

	quitting bool
}

// NewModel creates a new TUI model
func NewModel(controller core.Controller, refreshRate time.Duration) Model {
	if refreshRate == 0 {
		refreshRate = 2 * time.Second
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	return Model{
		controller:  controller,
		refreshRate: refreshRate,
		loading:     true,
		spin:        s,
	}
}

// Messages
type tickMsg time.Time
type statusMsg *core.Status
type filesMsg []core.AudioFile
type errMsg error
type actionDoneMsg struct{}

// Commands
func (m Model) tick() tea.Cmd {
	return tea.Tick(m.refreshRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) fetchStatus() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		status, err := m.controller.Status(ctx)
		if err != nil {
			return errMsg(err)
		}
		return statusMsg(status)
	}
}

func (m Model) fetchFiles() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		files, err := m.controller.Files(ctx)
		if err != nil {
			return errMsg(err)
		}
		return filesMsg(files)
	}
}

func (m Model) doAction(action func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := action(ctx); err != nil {
			return errMsg(err)
		}
		return actionDoneMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.fetchStatus(), m.fetchFiles(), m.tick())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		return m, tea.Batch(m.fetchStatus(), m.fetchFiles(), m.tick())

	case statusMsg:
		m.status = msg
		m.loading = false
		return m, nil

	case filesMsg:
		m.files = msg
		if m.cursor >= len(m.files) && len(m.files) > 0 {
			m.cursor = len(m.files) - 1
		}
		return m, nil

	case actionDoneMsg:
		return m, m.fetchStatus()

	case errMsg:
		m.lastError = msg
		m.errorExpiry = time.Now().Add(5 * time.Second)
		m.loading = false
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "down", "j":
		if m.cursor < len(m.files)-1 {
			m.cursor++
		}
		return m, nil

	case " ", "enter":
		if len(m.files) == 0 {
			return m, nil
		}
		selected := m.files[m.cursor]
		if selected.Playing {
			return m, m.doAction(m.controller.Stop)
		}
		return m, m.doAction(func(ctx context.Context) error {
			return m.controller.Play(ctx, selected.Name)
		})

	case "s":
		return m, m.doAction(m.controller.Stop)

	case "+", "=":
		return m, m.adjustVolume(10)

	case "-", "_":
		return m, m.adjustVolume(-10)

	case "m":
		if m.status != nil && m.status.Muted {
			return m, m.doAction(m.controller.Unmute)
		}
		return m, m.doAction(m.controller.Mute)
	}

	return m, nil
}

func (m Model) adjustVolume(delta int) tea.Cmd {
	if m.status == nil {
		return nil
	}
	target := m.status.Volume + delta
	if target > 100 {
		target = 100
	}
	if target < 0 {
		target = 0
	}
	return m.doAction(func(ctx context.Context) error {
		return m.controller.SetVolume(ctx, target)
	})
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.loading {
		return fmt.Sprintf("\n  %s Connecting to speaker...\n", m.spin.View())
	}

	var b strings.Builder

	b.WriteString(m.statusView())
	b.WriteString("\n")
	b.WriteString(m.filesView())
	b.WriteString("\n")

	if m.lastError != nil && time.Now().Before(m.errorExpiry) {
		b.WriteString(styles.Offline.Render("  ✗ "+m.lastError.Error()) + "\n")
	}

	b.WriteString(styles.Label.Render("  space play/stop · +/- volume · m mute · q quit") + "\n")

	return b.String()
}

func (m Model) statusView() string {
	name := "Speaker"
	if m.status != nil && m.status.Device != nil && m.status.Device.Name != "" {
		name = m.status.Device.Name
	}

	var lines []string
	lines = append(lines, styles.Title.Render(name))

	if m.status == nil || !m.status.Available() {
		lines = append(lines, styles.Offline.Render("📴 unavailable"))
	} else {
		playing := "idle"
		if m.status.NowPlaying != nil {
			playing = m.status.NowPlaying.Name
		}
		lines = append(lines, fmt.Sprintf("%s %s", styles.StateIcon(m.status.IsPlaying()), playing))

		volumeLabel := fmt.Sprintf("%3d%%", m.status.Volume)
		if m.status.Muted {
			volumeLabel = styles.Stopped.Render(volumeLabel + " muted")
		}
		lines = append(lines, fmt.Sprintf("🔊 %s %s", styles.VolumeBar(m.status.Volume, 20), volumeLabel))
	}

	return styles.Panel(false).Width(m.panelWidth()).Render(strings.Join(lines, "\n"))
}

func (m Model) filesView() string {
	var lines []string
	lines = append(lines, styles.Highlight.Render("Audio Files"))

	if len(m.files) == 0 {
		lines = append(lines, styles.Muted.Render("no files on speaker"))
	}

	for i, f := range m.files {
		cursor := "  "
		if i == m.cursor {
			cursor = styles.Highlight.Render("▸ ")
		}

		icon := " "
		if f.Playing {
			icon = styles.Playing.Render("▶")
		}

		line := fmt.Sprintf("%s%s %-40s %8s", cursor, icon, truncate(f.Name, 40), humanize.Bytes(uint64(f.Size)))
		if i == m.cursor {
			line = styles.Title.Render(line)
		} else {
			line = styles.Muted.Render(line)
		}
		lines = append(lines, line)
	}

	return styles.Panel(true).Width(m.panelWidth()).Render(strings.Join(lines, "\n"))
}

func (m Model) panelWidth() int {
	if m.width > 4 && m.width < 80 {
		return m.width - 4
	}
	return 64
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// Run starts the TUI application.
func Run(controller core.Controller, refreshRate time.Duration) error {
	p := tea.NewProgram(NewModel(controller, refreshRate), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
