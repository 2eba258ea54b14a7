// Package ui is the terminal renderer for a story session.
package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"StoryBuilder/internal/cache"
	"StoryBuilder/internal/remix"
	"StoryBuilder/internal/script"
	"StoryBuilder/internal/session"
)

const (
	viewChat  = "chat"
	viewRemix = "remix"
)

const loaderInterval = 300 * time.Millisecond

var loaderFrames = []string{"✏️ ", "📖", "✨", "🌈"}

// storyMsg reports the end of a reveal started by the model.
type storyMsg struct {
	revealed bool
	err      error
}

type tickMsg time.Time

type model struct {
	ctx     context.Context
	session *session.Session
	remix   *remix.Engine
	renders *cache.RenderCache
	logger  *slog.Logger
	theme   string
	view    string
	width   int
	height  int

	// reveal in flight
	pending bool
	frame   int

	// remix editing
	cursor int
	input  string
}

func initialModel(ctx context.Context, sess *session.Session, theme string, logger *slog.Logger) model {
	if logger == nil {
		logger = slog.Default()
	}
	if _, ok := palettes[theme]; !ok {
		theme = defaultTheme
	}
	return model{
		ctx:     ctx,
		session: sess,
		renders: &cache.RenderCache{},
		logger:  logger,
		theme:   theme,
		view:    viewChat,
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if msg.Width != m.width {
			m.renders.Clear()
		}
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case storyMsg:
		m.pending = false
		if msg.err != nil {
			m.logger.Error("failed to reveal story", "error", msg.err)
			return m, nil
		}
		m.logger.Debug("reveal finished", "revealed", msg.revealed)
		return m, nil
	case tickMsg:
		if !m.pending {
			return m, nil
		}
		m.frame = (m.frame + 1) % len(loaderFrames)
		return m, tick()
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.view == viewRemix {
			return m.updateRemix(msg)
		}
		return m.updateChat(msg)
	}
	return m, nil
}

func (m model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.pending {
		if msg.String() == "q" {
			return m, tea.Quit
		}
		return m, nil
	}

	st := m.session.Snapshot()
	step, ok := m.session.CurrentStep()

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "t":
		m.theme = nextThemeName(m.theme, 1)
		m.renders.Clear()
	case "1", "2":
		m.session.Choose(int(msg.Runes[0] - '1'))
	case "r":
		if m.session.EnterRemixMode() {
			text, _ := m.session.LatestStory()
			m.remix = remix.New(m.session.SelectedWords(), text)
			m.view = viewRemix
			m.cursor = 0
			m.input = ""
		}
	case "enter", " ":
		switch {
		case !ok:
		case st.LastAnswerWrong:
			m.session.AcknowledgeWrongAnswer()
		case step.Kind == script.KindStoryReveal:
			m.pending = true
			m.frame = 0
			return m, tea.Batch(m.reveal(), tick())
		case step.Kind == script.KindClosingMessage:
			m.restart()
		default:
			m.session.AdvancePastMessage()
		}
	}
	return m, nil
}

func (m model) updateRemix(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	words := m.remixWords()
	switch msg.Type {
	case tea.KeyUp:
		if m.cursor > 0 {
			m.cursor--
		}
		m.input = ""
	case tea.KeyDown:
		if m.cursor < len(words)-1 {
			m.cursor++
		}
		m.input = ""
	case tea.KeyEnter:
		text := strings.TrimSpace(m.input)
		if text != "" && m.cursor < len(words) {
			m.remix.Substitute(words[m.cursor].CategoryID, text)
			m.logger.Debug("word substituted", "category_id", words[m.cursor].CategoryID)
		}
		m.input = ""
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case tea.KeyEsc:
		m.input = ""
	case tea.KeyCtrlN:
		m.restart()
	case tea.KeyRunes, tea.KeySpace:
		m.input += string(msg.Runes)
	}
	return m, nil
}

func (m *model) restart() {
	m.session.Restart()
	m.remix = nil
	m.view = viewChat
	m.pending = false
	m.cursor = 0
	m.input = ""
	m.renders.Clear()
}

func (m model) reveal() tea.Cmd {
	sess, ctx := m.session, m.ctx
	return func() tea.Msg {
		ok, err := sess.RevealStory(ctx)
		return storyMsg{revealed: ok, err: err}
	}
}

func tick() tea.Cmd {
	return tea.Tick(loaderInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// remixWords flattens the remix groups into cursor order.
func (m model) remixWords() []session.SelectedWord {
	if m.remix == nil {
		return nil
	}
	var words []session.SelectedWord
	for _, g := range m.remix.ByCategory() {
		words = append(words, g.Words...)
	}
	return words
}

func (m model) View() string {
	var body string
	if m.view == viewRemix {
		body = m.renderRemix()
	} else {
		body = m.renderChat()
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.renderTopBar(), body, m.renderBottomBar())
}

func (m model) renderTopBar() string {
	p := paletteFor(m.theme)
	answered, total := m.session.Progress()

	left := "📚 STORY BUILDER"
	if m.view == viewRemix {
		left = "🎨 REMIX YOUR STORY"
	}
	filled := lipgloss.NewStyle().Foreground(p.BarFill).Render(strings.Repeat("●", answered))
	empty := lipgloss.NewStyle().Foreground(p.BarEmpty).Render(strings.Repeat("○", total-answered))
	right := fmt.Sprintf("%s%s %d/%d", filled, empty, answered, total)

	gap := m.contentWidth() - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	title := lipgloss.NewStyle().Bold(true).Foreground(p.Accent).Render(left)
	return title + strings.Repeat(" ", gap) + right
}

func (m model) renderBottomBar() string {
	p := paletteFor(m.theme)
	help := "[1/2] choose  [enter] continue  [t] theme  [q] quit"
	if m.view == viewRemix {
		help = "[↑/↓] pick word  [type+enter] swap word  [esc] clear  [ctrl+n] new story  [ctrl+c] quit"
	}
	return lipgloss.NewStyle().Foreground(p.Muted).Render(help + "  theme:" + m.theme)
}

func (m model) renderChat() string {
	p := paletteFor(m.theme)
	st := m.session.Snapshot()

	user := lipgloss.NewStyle().Foreground(p.AccentAlt).Bold(true).Padding(0, 1)

	var parts []string
	for _, e := range st.ChatLog {
		switch {
		case e.Speaker == session.SpeakerUser:
			parts = append(parts, lipgloss.PlaceHorizontal(m.contentWidth(), lipgloss.Right, user.Render(e.Content+" 🧒")))
		case e.IsStory:
			parts = append(parts, "👩‍🏫\n"+m.markdown(e.Content))
		default:
			parts = append(parts, m.botBubble(e.Content))
		}
	}
	parts = append(parts, m.renderInteraction(st))

	return tail(strings.Join(parts, "\n"), m.bodyHeight())
}

// renderInteraction draws whatever the current step asks of the user.
func (m model) renderInteraction(st session.State) string {
	p := paletteFor(m.theme)
	button := lipgloss.NewStyle().Bold(true).Foreground(p.Accent)
	danger := lipgloss.NewStyle().Bold(true).Foreground(p.Warning)

	if m.pending || st.AwaitingGeneration {
		frame := loaderFrames[m.frame%len(loaderFrames)]
		return lipgloss.NewStyle().Foreground(p.Muted).Render(frame + " Writing your story" + strings.Repeat(".", m.frame%4))
	}
	if st.LastAnswerWrong {
		return button.Render("[enter] 🔁 Try Again 💪")
	}

	step, ok := m.session.CurrentStep()
	if !ok {
		return ""
	}
	switch step.Kind {
	case script.KindCategoryQuestion:
		q := step.Question
		var b strings.Builder
		b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(p.Text).Render("❓ " + q.Prompt))
		b.WriteString("\n")
		if q.Visual != "" {
			b.WriteString(q.Visual + "\n")
		}
		b.WriteString(lipgloss.NewStyle().Foreground(p.Muted).Render("Choose the best " + q.Category.String() + "."))
		for i, c := range m.session.Choices() {
			b.WriteString("\n")
			b.WriteString(button.Render(fmt.Sprintf("[%d] %s", i+1, c.Text)))
		}
		return lipgloss.NewStyle().Border(lipgloss.ThickBorder()).BorderForeground(p.Border).Padding(0, 1).Render(b.String())
	case script.KindStoryReveal:
		return button.Render("[enter] " + step.ButtonLabel)
	case script.KindClosingMessage:
		lines := []string{m.botBubble(step.Text)}
		if _, ok := m.session.LatestStory(); ok {
			lines = append(lines, button.Render("[r] 🎨 Remix My Story"))
		}
		lines = append(lines, danger.Render("[enter] "+step.ButtonLabel))
		return strings.Join(lines, "\n")
	default:
		return m.botBubble(step.Text) + "\n" + button.Render("[enter] "+step.ButtonLabel)
	}
}

func (m model) botBubble(text string) string {
	p := paletteFor(m.theme)
	return lipgloss.NewStyle().Foreground(p.Text).
		Border(lipgloss.RoundedBorder()).BorderForeground(p.Border).Padding(0, 1).
		Width(m.contentWidth() - 4).
		Render("👩‍🏫 " + text)
}

func (m model) renderRemix() string {
	p := paletteFor(m.theme)
	if m.remix == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.markdown(m.remix.Story()))
	b.WriteString("\n")

	idx := 0
	selected := lipgloss.NewStyle().Bold(true).Foreground(p.Accent)
	plain := lipgloss.NewStyle().Foreground(p.Text)
	for _, g := range m.remix.ByCategory() {
		b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(p.Success).Render(g.Title))
		b.WriteString("\n")
		for _, w := range g.Words {
			if idx == m.cursor {
				b.WriteString(selected.Render("▸ " + w.Text))
				b.WriteString(lipgloss.NewStyle().Foreground(p.AccentAlt).Render("  → " + m.input + "▏"))
			} else {
				b.WriteString(plain.Render("  " + w.Text))
			}
			b.WriteString("\n")
			idx++
		}
	}
	return tail(b.String(), m.bodyHeight())
}

// markdown renders story text, with its **marked** words, through glamour.
func (m model) markdown(text string) string {
	width := m.contentWidth()
	key := cache.GenerateCacheKey(text, width, m.theme)
	out, err := m.renders.GetOrRender(key, func() (string, error) {
		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width-4))
		if err != nil {
			return "", fmt.Errorf("failed to create markdown renderer: %w", err)
		}
		return r.Render(text)
	})
	if err != nil {
		m.logger.Warn("markdown render failed", "error", err)
		return text
	}
	return strings.TrimRight(out, "\n")
}

func (m model) contentWidth() int {
	if m.width <= 0 {
		return 80
	}
	return m.width
}

func (m model) bodyHeight() int {
	if m.height <= 0 {
		return 0
	}
	return m.height - 2
}

// tail keeps the last n lines of s. n <= 0 keeps everything.
func tail(s string, n int) string {
	if n <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}
