package tui

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/window-flappy/internal/assets"
	"github.com/vovakirdan/window-flappy/internal/core"
	"github.com/vovakirdan/window-flappy/internal/desktop"
	"github.com/vovakirdan/window-flappy/internal/games/flappy"
	"github.com/vovakirdan/window-flappy/internal/registry"
)

// footerRows is the number of terminal rows below the field.
const footerRows = 1

// Options describes one game session on one terminal.
type Options struct {
	Cols, Rows    int // Terminal size, probed once
	FrameInterval time.Duration
	Seed          int64 // 0 = time based
	Desktop       desktop.Options
	Assets        *assets.Provider  // nil = embedded sprites
	Jump          []string          // nil = default jump keys
	Renderer      *lipgloss.Renderer // nil = lipgloss default renderer
	Logger        *log.Logger
}

// Model is the Bubble Tea model for running the game.
type Model struct {
	game     *flappy.Game
	windows  *registry.Registry
	desktop  *desktop.Desktop
	screen   *core.Screen
	renderer *lipgloss.Renderer
	keys     KeyMap
	help     help.Model
	footer   lipgloss.Style
	interval time.Duration
	input    core.InputFrame
	state    core.GameState
	logger   *log.Logger
	quitting bool
	err      error
}

// NewModel builds the desktop for the terminal size and starts a game on it.
// The field never changes size afterwards.
func NewModel(opts Options) (Model, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	renderer := opts.Renderer
	if renderer == nil {
		renderer = lipgloss.DefaultRenderer()
	}
	provider := opts.Assets
	if provider == nil {
		provider = assets.Embedded(logger)
	}
	interval := opts.FrameInterval
	if interval <= 0 {
		interval = core.DefaultFrameInterval
	}
	keys := DefaultKeyMap()
	if len(opts.Jump) > 0 {
		keys = NewKeyMap(opts.Jump)
	}

	field := desktop.FieldFor(opts.Cols, opts.Rows, footerRows)
	d := desktop.New(field, opts.Desktop, logger)
	windows := registry.New(d, logger)

	cfg := core.RuntimeConfig{
		Field:         field,
		FrameInterval: interval,
		Seed:          opts.Seed,
	}
	game, err := flappy.New(cfg, windows, provider, logger)
	if err != nil {
		return Model{}, err
	}
	if err := game.Start(); err != nil {
		_ = game.Close()
		return Model{}, err
	}

	rows := opts.Rows - footerRows
	if rows < 1 {
		rows = 1
	}
	h := help.New()
	h.Width = opts.Cols

	return Model{
		game:     game,
		windows:  windows,
		desktop:  d,
		screen:   core.NewScreen(opts.Cols, rows),
		renderer: renderer,
		keys:     keys,
		help:     h,
		footer:   renderer.NewStyle().Foreground(lipgloss.Color("245")),
		interval: interval,
		input:    core.NewInputFrame(),
		state:    game.State(),
		logger:   logger,
	}, nil
}

// Init starts the frame loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.interval)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case TickMsg:
		return m.handleTick()
	}

	// Resizes are ignored: the reference size is captured once at startup.
	return m, nil
}

// handleKey processes keyboard input. Keys are only recorded here and
// drained by the next tick.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.keys.MapKeyToFrame(msg, &m.input) {
		return m.quit()
	}
	return m, nil
}

// handleMouse turns a left click on the final score window into a
// window-close signal.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	if m.scoreWindowAt(msg.X, msg.Y) {
		m.input.Set(core.ActionClose)
	}
	return m, nil
}

// scoreWindowAt reports whether the centre of cell (col, row) lies inside the
// final score window.
func (m Model) scoreWindowAt(col, row int) bool {
	h, ok := m.game.ScoreWindow()
	if !ok {
		return false
	}
	r, err := m.windows.Rect(h)
	if err != nil {
		return false
	}
	return r.Contains(float64(col)+0.5, float64(2*row)+1)
}

// handleTick runs one frame and schedules the next one, shortened by the
// time this frame took.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.quitting {
		return m, nil
	}
	start := time.Now()

	result, err := m.game.Step(m.input)
	m.input.Clear()
	if err != nil {
		m.err = err
		m.logger.Error("frame failed", "error", err)
		return m.quit()
	}

	if result.State.Phase != m.state.Phase {
		m.logger.Info("phase changed", "from", m.state.Phase, "to", result.State.Phase, "score", result.State.Score)
	}
	m.state = result.State

	if m.state.Phase == core.PhaseExited {
		return m.quit()
	}
	return m, tickCmd(core.FrameDelay(m.interval, start, time.Now()))
}

// quit destroys every window and stops the program.
func (m Model) quit() (tea.Model, tea.Cmd) {
	if !m.quitting {
		m.quitting = true
		if err := m.game.Close(); err != nil {
			m.logger.Error("cannot close windows", "error", err)
		}
	}
	return m, tea.Quit
}

// View renders the desktop and the help line.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	m.desktop.Render(m.screen)

	var keys help.KeyMap = m.keys
	if m.state.GameOver() {
		keys = m.keys.DismissHelp()
	}
	footer := fmt.Sprintf("score %d  %s", m.state.Score, m.help.View(keys))

	return RenderScreen(m.renderer, m.screen) + "\n" + m.footer.Render(footer)
}

// State returns the last game state.
func (m Model) State() core.GameState {
	return m.state
}

// Err returns the error that stopped the game, if any.
func (m Model) Err() error {
	return m.err
}

// Game returns the game the model drives.
func (m Model) Game() *flappy.Game {
	return m.game
}

// Run plays one game on the local terminal.
func Run(opts Options) error {
	model, err := NewModel(opts)
	if err != nil {
		return err
	}

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),       // Use alternate screen buffer
		tea.WithMouseCellMotion(), // Clicks close the score window
	)

	final, err := p.Run()
	// Windows are already gone unless the program was killed mid-game
	if closeErr := model.game.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}
	if m, ok := final.(Model); ok && m.err != nil {
		return m.err
	}
	return nil
}
