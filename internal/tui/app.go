package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/librescoot/mvi"
	"github.com/librescoot/mvi/counter"
)

var (
	counterStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			Padding(1, 4).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8"))
	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// stateMsg carries a state published by the store.
type stateMsg counter.State

// stoppedMsg reports that the state stream ended.
type stoppedMsg struct{ err error }

// App renders the counter and turns input into intents. It never touches
// the state itself; everything goes through the store.
type App struct {
	ctx    context.Context
	store  *counter.Store
	sub    *mvi.Subscription[counter.State]
	state  counter.State
	width  int
	height int
	err    error
}

// New attaches to store. The subscription is released when the program exits
// via Close.
func New(ctx context.Context, store *counter.Store) *App {
	return &App{
		ctx:   ctx,
		store: store,
		sub:   store.Subscribe(),
		state: store.State(),
	}
}

// Close detaches from the store.
func (a *App) Close() {
	a.sub.Close()
}

// Err returns the error that ended the state stream, if any.
func (a *App) Err() error {
	return a.err
}

func (a *App) Init() tea.Cmd {
	return a.waitForState()
}

func (a *App) waitForState() tea.Cmd {
	return func() tea.Msg {
		st, err := a.sub.Next(a.ctx)
		if err != nil {
			return stoppedMsg{err: err}
		}
		return stateMsg(st)
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateMsg:
		a.state = counter.State(msg)
		return a, a.waitForState()
	case stoppedMsg:
		if !errors.Is(msg.err, mvi.ErrStopped) && !errors.Is(msg.err, context.Canceled) {
			a.err = msg.err
		}
		return a, tea.Quit
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		return a, nil
	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			a.store.Dispatch(counter.Reset{})
		}
		return a, nil
	case tea.KeyMsg:
		key := msg.String()
		if key == "q" || key == "ctrl+c" || key == "esc" {
			return a, tea.Quit
		}
		if intent, ok := IntentForKey(key); ok {
			a.store.Dispatch(intent)
		}
		return a, nil
	}
	return a, nil
}

func (a *App) View() string {
	body := lipgloss.JoinVertical(lipgloss.Center,
		counterStyle.Render(strconv.Itoa(a.state.Counter)),
		helpStyle.Render("+/- change • r or click reset • q quit"),
	)
	if a.width == 0 || a.height == 0 {
		return body + "\n"
	}
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, body)
}

// IntentForKey maps a key name as reported by bubbletea to a counter intent.
func IntentForKey(key string) (counter.Intent, bool) {
	switch key {
	case "+", "=", "up", "k":
		return counter.Increment{}, true
	case "-", "_", "down", "j":
		return counter.Decrement{}, true
	case "r", " ", "enter", "0":
		return counter.Reset{}, true
	}
	return nil, false
}

// Run starts a full-screen program bound to store and blocks until the user
// quits or the store is torn down.
func Run(ctx context.Context, store *counter.Store) error {
	app := New(ctx, store)
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run tui: %w", err)
	}
	return app.Err()
}
