package main

import (
	"context"
	"errors"
	"iter"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"xenora/banner"
	"xenora/chat"
	"xenora/log"
	"xenora/presentation"
	"xenora/session"
	"xenora/speech"
	"xenora/transcript"
)

// TUI message types
type transcriptMsg struct{}
type stateMsg struct{}
type bannerTickMsg time.Time
type micToggledMsg struct{ err error }

// Rows taken by everything except the transcript viewport.
const chromeRows = 6

type tuiDeps struct {
	ctx        context.Context
	store      *transcript.Store
	state      *session.State
	controller *chat.Controller
	bridge     *speech.Bridge
	themes     *presentation.Themes
	copier     *presentation.Copier
}

type tuiModel struct {
	deps   tuiDeps
	styles styles
	theme  session.Theme

	input    textinput.Model
	spin     spinner.Model
	view     viewport.Model
	messages []transcript.Message

	banner    string
	nextFrame func() (string, bool)
	stopFrame func()

	notice        string // modal text, dismissed by any key
	ready         bool
	width, height int
}

var (
	tuiProgram *tea.Program
	tuiMu      sync.Mutex
)

func newTUIModel(deps tuiDeps) tuiModel {
	in := textinput.New()
	in.Placeholder = "Type your query..."
	in.Prompt = "> "
	in.CharLimit = 2000
	in.Focus()
	in.SetValue(deps.state.Draft())

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	next, stop := iter.Pull(banner.Frames(banner.Text))

	m := tuiModel{
		deps:      deps,
		input:     in,
		spin:      sp,
		nextFrame: next,
		stopFrame: stop,
		messages:  deps.store.Messages(),
	}
	m.applyTheme(deps.state.Theme())
	return m
}

func NewTUIProgram(deps tuiDeps) *tea.Program {
	return tea.NewProgram(newTUIModel(deps), tea.WithAltScreen())
}

// bindTUI forwards store and session changes to the running program.
func bindTUI(store *transcript.Store, state *session.State) {
	store.OnChange(func() { tuiSend(transcriptMsg{}) })
	state.OnChange(func() { tuiSend(stateMsg{}) })
}

// tuiSend never blocks the caller; listeners fire from inside Update too.
func tuiSend(msg tea.Msg) {
	tuiMu.Lock()
	p := tuiProgram
	tuiMu.Unlock()
	if p != nil {
		go p.Send(msg)
	}
}

func bannerTick() tea.Cmd {
	return tea.Tick(banner.Interval, func(t time.Time) tea.Msg {
		return bannerTickMsg(t)
	})
}

func (m tuiModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick, bannerTick())
}

func (m *tuiModel) applyTheme(theme session.Theme) {
	m.theme = theme
	m.styles = newStyles(theme)
	m.spin.Style = m.styles.pending
	m.input.PromptStyle = m.styles.title
	m.input.TextStyle = m.styles.body
	m.input.PlaceholderStyle = m.styles.themeTag
}

func (m *tuiModel) refreshView(follow bool) {
	if !m.ready {
		return
	}
	m.view.SetContent(renderTranscript(m.messages, m.styles, m.view.Width, m.spin.View()))
	if follow {
		m.view.GotoBottom()
	}
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vw := max(msg.Width-4, 10)
		vh := max(msg.Height-chromeRows-2, 3)
		if !m.ready {
			m.view = viewport.New(vw, vh)
			m.ready = true
		} else {
			m.view.Width = vw
			m.view.Height = vh
		}
		m.input.Width = max(msg.Width-30, 10)
		m.refreshView(true)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.view, cmd = m.view.Update(msg)
		return m, cmd

	case transcriptMsg:
		m.messages = m.deps.store.Messages()
		m.refreshView(true)
		return m, nil

	case stateMsg:
		m.syncState()
		return m, nil

	case micToggledMsg:
		var capErr *speech.CapabilityError
		if errors.As(msg.err, &capErr) {
			m.notice = capErr.Error()
		}
		return m, nil

	case bannerTickMsg:
		frame, ok := m.nextFrame()
		if !ok {
			m.stopFrame()
			return m, nil
		}
		m.banner = frame
		return m, bannerTick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		if m.deps.store.Pending() > 0 {
			m.refreshView(false)
		}
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m tuiModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.stopFrame()
		return m, tea.Quit
	}
	if m.notice != "" {
		m.notice = ""
		return m, nil
	}

	switch msg.String() {
	case "esc":
		m.stopFrame()
		return m, tea.Quit

	case "enter":
		if m.deps.state.InFlight() {
			return m, nil
		}
		m.deps.state.SetDraft(m.input.Value())
		if _, err := m.deps.controller.SubmitDraft(m.deps.ctx); err != nil {
			log.Warnf("submit: %v", err)
		}
		m.syncState()
		return m, nil

	case "ctrl+t":
		if _, err := m.deps.themes.Toggle(m.deps.ctx); err != nil {
			log.Warnf("toggle theme: %v", err)
		}
		m.syncState()
		return m, nil

	case "ctrl+y":
		if strings.TrimSpace(m.input.Value()) == "" {
			return m, nil
		}
		m.deps.state.SetDraft(m.input.Value())
		m.deps.copier.CopyDraft()
		return m, nil

	case "ctrl+r":
		bridge := m.deps.bridge
		return m, func() tea.Msg {
			return micToggledMsg{err: bridge.Toggle()}
		}

	case "pgup", "pgdown", "ctrl+u", "ctrl+d":
		var cmd tea.Cmd
		m.view, cmd = m.view.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	before := m.input.Value()
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != before {
		m.deps.state.SetDraft(v)
	}
	return m, cmd
}

// syncState pulls the draft and theme back from the session. Speech
// results and submissions change the draft outside the input widget.
func (m *tuiModel) syncState() {
	if d := m.deps.state.Draft(); d != m.input.Value() {
		m.input.SetValue(d)
		m.input.CursorEnd()
	}
	if t := m.deps.state.Theme(); t != m.theme {
		m.applyTheme(t)
		m.refreshView(false)
	}
}

func (m tuiModel) View() string {
	if !m.ready {
		return ""
	}
	if m.notice != "" {
		box := m.styles.notice.Render(m.notice + "\n\n" + m.styles.hint.Render("press any key"))
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}

	snap := m.deps.state.Snapshot()
	var b strings.Builder

	title := m.styles.title.Render(m.banner)
	tag := m.styles.themeTag.Render(string(snap.Theme))
	gap := max(m.width-lipgloss.Width(title)-lipgloss.Width(tag), 1)
	b.WriteString(title + strings.Repeat(" ", gap) + tag + "\n")

	b.WriteString(m.styles.frame.Width(m.width - 2).Render(m.view.View()))
	b.WriteString("\n")

	if snap.ErrorBanner != "" {
		b.WriteString(m.styles.errBanner.Render(snap.ErrorBanner))
	}
	b.WriteString("\n")

	b.WriteString(m.input.View())
	if status := m.status(snap); status != "" {
		b.WriteString("  " + status)
	}
	b.WriteString("\n\n")
	b.WriteString(m.hints(snap))
	return b.String()
}

func (m tuiModel) status(snap session.Snapshot) string {
	var parts []string
	if snap.Listening {
		parts = append(parts, m.styles.listening.Render("● listening"))
	}
	if snap.InFlight {
		parts = append(parts, m.styles.busy.Render(m.spin.View()+" waiting"))
	}
	if snap.CopyConfirmed {
		parts = append(parts, m.styles.copied.Render("[✓ copied]"))
	}
	return strings.Join(parts, " ")
}

func (m tuiModel) hints(snap session.Snapshot) string {
	send := m.styles.hint.Render("enter send")
	if snap.InFlight {
		send = m.styles.hintOff.Render("enter send")
	}
	parts := []string{send}

	mic := "ctrl+r mic"
	if snap.Listening {
		mic = "ctrl+r stop"
	}
	parts = append(parts, m.styles.hint.Render(mic))

	if strings.TrimSpace(snap.Draft) != "" {
		parts = append(parts, m.styles.hint.Render("ctrl+y copy"))
	}
	parts = append(parts,
		m.styles.hint.Render("ctrl+t theme"),
		m.styles.hint.Render("pgup/pgdn scroll"),
		m.styles.hint.Render("esc quit"),
	)
	return strings.Join(parts, m.styles.themeTag.Render(" · "))
}

// renderTranscript lays out messages oldest first so the newest sits at
// the bottom of the viewport. The store keeps them newest first.
func renderTranscript(msgs []transcript.Message, st styles, width int, spin string) string {
	var b strings.Builder
	for i := len(msgs) - 1; i >= 0; i-- {
		msg := msgs[i]
		if msg.Sender == transcript.User {
			b.WriteString(st.user.Render("you"))
		} else {
			b.WriteString(st.assistant.Render("xenora"))
		}
		b.WriteString("\n")

		if msg.Pending {
			b.WriteString("  " + spin + " " + st.pending.Render("thinking...") + "\n")
		} else {
			style := st.body
			if msg.Failed {
				style = st.failed
			}
			for _, line := range wrapText(msg.Content, width-2) {
				b.WriteString("  " + style.Render(line) + "\n")
			}
		}
		if i > 0 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// wrapText breaks text into lines of at most width terminal cells,
// preferring to break at spaces.
func wrapText(text string, width int) []string {
	if len(text) == 0 {
		return []string{""}
	}
	if width <= 0 {
		width = 1
	}

	var lines []string
	for _, para := range strings.Split(text, "\n") {
		rs := []rune(para)
		if len(rs) == 0 {
			lines = append(lines, "")
			continue
		}
		for lipgloss.Width(string(rs)) > width {
			fit := fitCells(rs, width)
			// Find last space within width
			splitAt := fit
			for i := min(fit, len(rs)-1); i > 0; i-- {
				if rs[i] == ' ' {
					splitAt = i
					break
				}
			}
			lines = append(lines, string(rs[:splitAt]))
			rs = []rune(strings.TrimLeft(string(rs[splitAt:]), " "))
		}
		if len(rs) > 0 {
			lines = append(lines, string(rs))
		}
	}
	return lines
}

// fitCells returns how many leading runes of rs fit in width cells, at
// least one. rs must be wider than width.
func fitCells(rs []rune, width int) int {
	cells := 0
	for i, r := range rs {
		cells += lipgloss.Width(string(r))
		if cells > width {
			return max(i, 1)
		}
	}
	return len(rs)
}
