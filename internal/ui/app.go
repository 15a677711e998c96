package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Dispatcher turns one command line into a reply.
type Dispatcher interface {
	Dispatch(line string) string
}

const (
	Farewell  = "Bye. Hope to see you again soon!"
	minWidth  = 40
	minHeight = 8
)

// App is a full-screen chat around a Dispatcher.
type App struct {
	d       Dispatcher
	bot     string
	styles  Styles
	input   textinput.Model
	view    viewport.Model
	entries []string

	width    int
	height   int
	quitting bool
}

// NewApp greets the user and shows notice (if any) before the first prompt.
func NewApp(d Dispatcher, bot string, notice string) *App {
	in := textinput.New()
	in.Placeholder = "todo Read book"
	in.Prompt = "> "
	in.CharLimit = 500
	in.Focus()

	a := &App{
		d:      d,
		bot:    bot,
		styles: NewStyles(TokyoNight),
		input:  in,
		view:   viewport.New(80, 20),
	}
	a.addBot("Hello! I'm " + bot + ".\nWhat can I do for you?")
	if notice != "" {
		a.entries = append(a.entries, a.styles.Notice.Render(notice))
	}
	a.refresh()
	return a
}

func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		return a, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			a.quitting = true
			return a, tea.Quit
		case tea.KeyEnter:
			return a, a.submit()
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			a.view, cmd = a.view.Update(msg)
			return a, cmd
		}
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) submit() tea.Cmd {
	line := strings.TrimSpace(a.input.Value())
	a.input.Reset()
	if line == "" {
		return nil
	}
	a.entries = append(a.entries, a.styles.UserText.Render("> "+line))
	if strings.EqualFold(line, "bye") {
		a.addBot(Farewell)
		a.refresh()
		a.quitting = true
		return tea.Quit
	}
	a.addBot(a.d.Dispatch(line))
	a.refresh()
	return nil
}

func (a *App) View() string {
	if a.quitting {
		return ""
	}
	title := a.styles.Title.Render(a.bot)
	help := a.styles.Help.Render("enter: send • pgup/pgdn: scroll • bye or esc: quit")
	body := a.styles.Frame.Render(a.view.View())
	return lipgloss.JoinVertical(lipgloss.Left, title, body, a.input.View(), help)
}

// Transcript returns the rendered conversation entries.
func (a *App) Transcript() []string {
	out := make([]string, len(a.entries))
	copy(out, a.entries)
	return out
}

func (a *App) Quitting() bool { return a.quitting }

func (a *App) addBot(reply string) {
	label := a.styles.BotLabel.Render(a.bot + ":")
	a.entries = append(a.entries, label+" "+a.styles.Reply.Render(strings.TrimRight(reply, "\n")))
}

func (a *App) resize(w, h int) {
	if w < minWidth {
		w = minWidth
	}
	if h < minHeight {
		h = minHeight
	}
	a.width, a.height = w, h
	// title, frame border, input and help take five rows
	a.view.Width = w - 4
	a.view.Height = h - 5
	a.input.Width = w - 4
	a.refresh()
}

func (a *App) refresh() {
	a.view.SetContent(strings.Join(a.entries, "\n\n"))
	a.view.GotoBottom()
}

// Run starts the chat program on the terminal and blocks until it exits.
func Run(d Dispatcher, bot string, notice string) error {
	p := tea.NewProgram(NewApp(d, bot, notice), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
