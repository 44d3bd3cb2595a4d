// Package flappy implements Flappy Bird where every sprite is its own window.
// The bird and every pipe live in separate windows that the game moves
// around each frame; the final score gets a window of its own.
package flappy

import (
	"errors"
	"fmt"
	"image"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/window-flappy/internal/assets"
	"github.com/vovakirdan/window-flappy/internal/core"
	"github.com/vovakirdan/window-flappy/internal/registry"
	"github.com/vovakirdan/window-flappy/internal/score"
)

// Gameplay constants. Percentages are of the field width (vw) or height (vh).
const (
	SpawnDistance   = 100  // Frames between pipe pairs
	ScrollPercent   = 0.4  // vw moved left per frame
	GravityPercent  = 0.15 // vh added to the bird's speed per frame
	TerminalPercent = 2.5  // vh, maximum vertical speed either way
	GapPercent      = 40   // vh between the top and bottom pipe
	PipeSpawnX      = 90   // vw where new pipes appear
	BirdStartX      = 7    // vw
	BirdStartY      = 50   // vh
	SpriteScale     = 0.2  // Source pixels to vh
	MinTopPercent   = 10   // Range of the top pipe height, vh
	MaxTopPercent   = 50
)

// ErrNotStarted is returned by Step before Start.
var ErrNotStarted = errors.New("flappy: game not started")

// Bird is the player's sprite.
type Bird struct {
	Window registry.Handle
	X, Y   float64
	W, H   float64
	Speed  float64 // Positive is down
}

// Rect returns the bird's bounding box.
func (b Bird) Rect() core.Rect {
	return core.NewRect(b.X, b.Y, b.W, b.H)
}

// Game is one run of the game, from the first frame to the dismissed score.
// It owns every window it creates.
type Game struct {
	cfg     core.RuntimeConfig
	field   core.FieldDimensions
	windows *registry.Registry
	pipes   *PipeFactory
	birdImg image.Image
	logger  *log.Logger

	bird     Bird
	active   []PipePair
	topBound float64
	frame    int
	score    int
	phase    core.Phase
	started  bool

	scoreWindow registry.Handle
}

// New loads the sprites and prepares a game. Nothing is shown until Start.
// A missing sprite is returned as an error.
func New(cfg core.RuntimeConfig, windows *registry.Registry, provider *assets.Provider, logger *log.Logger) (*Game, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	images := make(map[string]image.Image, 3)
	for _, name := range []string{assets.Bird, assets.TopPipe, assets.BottomPipe} {
		img, err := provider.Load(name)
		if err != nil {
			return nil, fmt.Errorf("flappy: %w", err)
		}
		images[name] = img
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	return &Game{
		cfg:     cfg,
		field:   cfg.Field,
		windows: windows,
		pipes:   NewPipeFactory(cfg.Field, windows, images[assets.TopPipe], images[assets.BottomPipe], rng),
		birdImg: images[assets.Bird],
		logger:  logger,
		phase:   core.PhasePlaying,
	}, nil
}

// Start opens the bird window and the first pipe pair.
func (g *Game) Start() error {
	if g.started {
		return nil
	}

	b := g.birdImg.Bounds()
	g.bird = Bird{
		X: g.field.VW(BirdStartX),
		Y: g.field.VH(BirdStartY),
		W: g.field.VH(float64(b.Dx()) * SpriteScale),
		H: g.field.VH(float64(b.Dy()) * SpriteScale),
	}
	h, err := g.windows.Create("bird", g.birdImg, g.bird.Rect(), false)
	if err != nil {
		return fmt.Errorf("flappy: %w", err)
	}
	g.bird.Window = h

	if err := g.spawn(); err != nil {
		return err
	}

	g.started = true
	g.logger.Info("game started", "field", fmt.Sprintf("%.0fx%.0f", g.field.Width, g.field.Height), "seed", g.cfg.Seed)
	return nil
}

// Step advances the game by one frame.
func (g *Game) Step(in core.InputFrame) (core.StepResult, error) {
	if !g.started {
		return core.StepResult{}, ErrNotStarted
	}

	switch g.phase {
	case core.PhasePlaying:
		if err := g.play(in); err != nil {
			return core.StepResult{State: g.State()}, err
		}
	case core.PhaseShowingFinalScore:
		if in.Has(core.ActionKey) || in.Has(core.ActionClose) {
			g.phase = core.PhaseExited
			g.logger.Info("final score dismissed", "score", g.score)
		}
	}

	return core.StepResult{State: g.State()}, nil
}

// play runs one frame of the Playing phase. Later steps depend on the
// mutations of earlier ones, so the order is fixed.
func (g *Game) play(in core.InputFrame) error {
	hit, err := g.collides()
	if err != nil {
		return err
	}
	if hit {
		return g.die("pipe")
	}

	if err := g.advanceFrame(); err != nil {
		return err
	}

	if err := g.scroll(); err != nil {
		return err
	}

	g.bird.Speed += g.field.VH(GravityPercent)
	if terminal := g.field.VH(TerminalPercent); g.bird.Speed > terminal {
		g.bird.Speed = terminal
	}

	g.bird.Y += g.bird.Speed
	if g.bird.Y < g.topBound {
		g.bird.Y = g.topBound
	} else if g.bird.Y >= g.field.VH(100) {
		return g.die("ground")
	}

	if err := g.windows.SetPosition(g.bird.Window, g.bird.X, g.bird.Y); err != nil {
		return fmt.Errorf("flappy: %w", err)
	}

	if in.Has(core.ActionJump) {
		g.bird.Speed = -g.field.VH(TerminalPercent)
	}
	return nil
}

// collides reports whether the bird's window touches any pipe window.
func (g *Game) collides() (bool, error) {
	bird, err := g.windows.Rect(g.bird.Window)
	if err != nil {
		return false, fmt.Errorf("flappy: %w", err)
	}
	for _, p := range g.active {
		for _, h := range []registry.Handle{p.Top, p.Bottom} {
			r, err := g.windows.Rect(h)
			if err != nil {
				return false, fmt.Errorf("flappy: %w", err)
			}
			if core.Colliding(bird, r) {
				return true, nil
			}
		}
	}
	return false, nil
}

// advanceFrame counts frames and spawns a pipe pair every SpawnDistance.
func (g *Game) advanceFrame() error {
	g.frame = (g.frame + 1) % SpawnDistance
	if g.frame != 0 {
		return nil
	}
	return g.spawn()
}

// spawn adds a pipe pair and makes its top the new ceiling.
func (g *Game) spawn() error {
	pair, topBound, err := g.pipes.Spawn()
	if err != nil {
		return fmt.Errorf("flappy: %w", err)
	}
	g.active = append(g.active, pair)
	g.topBound = topBound

	g.logger.Debug("pipe pair spawned", "top", pair.Top, "bottom", pair.Bottom,
		"gap", fmt.Sprintf("%.1f-%.1f", pair.TopHeight, pair.BottomY()))
	return nil
}

// scroll moves every pipe left. Pairs that reach the left edge are destroyed
// and scored; the rest are kept in a freshly built slice.
func (g *Game) scroll() error {
	retained := make([]PipePair, 0, len(g.active))
	for _, p := range g.active {
		p.X -= g.field.VW(ScrollPercent)

		if p.X <= 0 {
			if err := g.windows.Destroy(p.Top); err != nil {
				return fmt.Errorf("flappy: %w", err)
			}
			if err := g.windows.Destroy(p.Bottom); err != nil {
				return fmt.Errorf("flappy: %w", err)
			}
			g.score++
			g.logger.Debug("pipe pair passed", "score", g.score)
			continue
		}

		if err := g.windows.SetPosition(p.Top, p.X, 0); err != nil {
			return fmt.Errorf("flappy: %w", err)
		}
		if err := g.windows.SetPosition(p.Bottom, p.X, p.BottomY()); err != nil {
			return fmt.Errorf("flappy: %w", err)
		}
		retained = append(retained, p)
	}
	g.active = retained
	return nil
}

// die ends the run and shows the final score next to the bird.
func (g *Game) die(cause string) error {
	g.phase = core.PhaseDead
	g.logger.Info("bird died", "cause", cause, "score", g.score, "y", g.bird.Y)

	h, err := score.Show(g.windows, g.field, g.score)
	if err != nil {
		return err
	}
	g.scoreWindow = h
	g.phase = core.PhaseShowingFinalScore
	return nil
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	return core.GameState{
		Score: g.score,
		Phase: g.phase,
	}
}

// Bird returns a copy of the bird.
func (g *Game) Bird() Bird {
	return g.bird
}

// Pipes returns the active pipe pairs, oldest first.
func (g *Game) Pipes() []PipePair {
	return append([]PipePair(nil), g.active...)
}

// ScoreWindow returns the final score window, if it is shown.
func (g *Game) ScoreWindow() (registry.Handle, bool) {
	return g.scoreWindow, g.scoreWindow != 0
}

// Close destroys every window the game still owns.
func (g *Game) Close() error {
	g.active = nil
	if err := g.windows.DestroyAll(); err != nil {
		return fmt.Errorf("flappy: %w", err)
	}
	return nil
}
