package flappy

import (
	"errors"
	"image"
	"image/color"
	"io/fs"
	"math"
	"math/rand"
	"testing"
	"testing/fstest"

	"github.com/vovakirdan/window-flappy/internal/assets"
	"github.com/vovakirdan/window-flappy/internal/core"
	"github.com/vovakirdan/window-flappy/internal/desktop"
	"github.com/vovakirdan/window-flappy/internal/registry"
)

const epsilon = 1e-9

func newTestGame(t *testing.T, w, h int, seed int64) (*Game, *registry.Registry) {
	t.Helper()

	field := core.NewField(w, h)
	windows := registry.New(desktop.New(field, desktop.DefaultOptions(), nil), nil)
	cfg := core.RuntimeConfig{
		Field:         field,
		FrameInterval: core.DefaultFrameInterval,
		Seed:          seed,
	}

	g, err := New(cfg, windows, assets.Embedded(nil), nil)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if err := g.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	return g, windows
}

// clearPipes removes every pipe so the bird has the field to itself.
func clearPipes(t *testing.T, g *Game) {
	t.Helper()
	for _, p := range g.active {
		if err := g.windows.Destroy(p.Top); err != nil {
			t.Fatal(err)
		}
		if err := g.windows.Destroy(p.Bottom); err != nil {
			t.Fatal(err)
		}
	}
	g.active = nil
}

func step(t *testing.T, g *Game, actions ...core.Action) core.GameState {
	t.Helper()
	in := core.NewInputFrame()
	for _, a := range actions {
		in.Set(a)
	}
	result, err := g.Step(in)
	if err != nil {
		t.Fatalf("Step() failed: %v", err)
	}
	return result.State
}

func TestGameStartOpensBirdAndFirstPair(t *testing.T) {
	g, windows := newTestGame(t, 1000, 500, 1)

	if windows.Len() != 3 {
		t.Fatalf("expected bird and one pipe pair, got %d windows", windows.Len())
	}

	b := g.Bird()
	if math.Abs(b.X-70) > epsilon || math.Abs(b.Y-250) > epsilon {
		t.Errorf("bird starts at (%v, %v), expected (70, 250)", b.X, b.Y)
	}
	// 34x24 source scaled by 0.2 vh
	if math.Abs(b.W-34) > epsilon || math.Abs(b.H-24) > epsilon {
		t.Errorf("bird size = %vx%v, expected 34x24", b.W, b.H)
	}

	pipes := g.Pipes()
	if len(pipes) != 1 || math.Abs(pipes[0].X-900) > epsilon {
		t.Errorf("first pair should be at x=900, got %+v", pipes)
	}
	if g.State().Phase != core.PhasePlaying {
		t.Errorf("phase = %v, expected Playing", g.State().Phase)
	}
}

func TestGameStepBeforeStart(t *testing.T) {
	field := core.NewField(100, 100)
	windows := registry.New(desktop.New(field, desktop.DefaultOptions(), nil), nil)
	g, err := New(core.RuntimeConfig{Field: field, Seed: 1}, windows, assets.Embedded(nil), nil)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if _, err := g.Step(core.NewInputFrame()); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Step() before Start() should return ErrNotStarted, got %v", err)
	}
}

func TestGameMissingSprite(t *testing.T) {
	fsys := fstest.MapFS{}
	field := core.NewField(100, 100)
	windows := registry.New(desktop.New(field, desktop.DefaultOptions(), nil), nil)

	_, err := New(core.RuntimeConfig{Field: field}, windows, assets.New(fsys, nil), nil)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("New() with no sprites should fail with ErrNotExist, got %v", err)
	}
}

func TestGameGravity(t *testing.T) {
	g, _ := newTestGame(t, 1000, 1000, 1)
	terminal := g.field.VH(TerminalPercent)

	for i := 0; i < 20; i++ {
		state := step(t, g)
		if state.Phase != core.PhasePlaying {
			t.Fatalf("bird died at frame %d", i+1)
		}
		if g.bird.Speed > terminal+epsilon {
			t.Fatalf("speed %v exceeds terminal velocity %v at frame %d", g.bird.Speed, terminal, i+1)
		}
	}

	// min(20 * 1.5, 25)
	if math.Abs(g.bird.Speed-25) > epsilon {
		t.Errorf("speed after 20 frames = %v, expected 25", g.bird.Speed)
	}
}

func TestGameJumpPhysics(t *testing.T) {
	g, _ := newTestGame(t, 1000, 1000, 1)
	g.bird.Speed = 10

	step(t, g, core.ActionJump, core.ActionKey)

	if g.bird.Speed != -g.field.VH(TerminalPercent) {
		t.Errorf("speed after jump = %v, expected %v", g.bird.Speed, -g.field.VH(TerminalPercent))
	}

	// The bird moved with the pre-jump speed this frame
	if math.Abs(g.bird.Y-(500+11.5)) > epsilon {
		t.Errorf("bird y = %v, expected 511.5", g.bird.Y)
	}
}

func TestGameTopBoundClamp(t *testing.T) {
	g, windows := newTestGame(t, 1000, 1000, 1)
	clearPipes(t, g)
	g.bird.Y = 5
	g.bird.Speed = -25

	step(t, g)

	if g.bird.Y != g.topBound {
		t.Errorf("bird y = %v, expected clamp to %v", g.bird.Y, g.topBound)
	}
	_, y, err := windows.Position(g.bird.Window)
	if err != nil {
		t.Fatal(err)
	}
	if y != g.topBound {
		t.Errorf("bird window y = %v, expected %v", y, g.topBound)
	}
}

func TestGameFallingPastBottom(t *testing.T) {
	g, windows := newTestGame(t, 1000, 1000, 1)
	clearPipes(t, g)
	g.bird.Y = g.field.Height

	state := step(t, g)

	if state.Phase != core.PhaseShowingFinalScore {
		t.Fatalf("phase = %v, expected ShowingFinalScore", state.Phase)
	}
	h, ok := g.ScoreWindow()
	if !ok || !windows.Alive(h) {
		t.Error("score window should be shown")
	}
	if !windows.Alive(g.bird.Window) {
		t.Error("bird window should stay open next to the score")
	}
}

func TestGameCollisionSkipsPhysics(t *testing.T) {
	g, windows := newTestGame(t, 1000, 1000, 1)
	pair := g.Pipes()[0]

	g.bird.Y = 1
	if err := windows.SetPosition(g.bird.Window, g.bird.X, 1); err != nil {
		t.Fatal(err)
	}
	if err := windows.SetPosition(pair.Top, g.bird.X, 0); err != nil {
		t.Fatal(err)
	}

	state := step(t, g, core.ActionJump)

	if state.Phase != core.PhaseShowingFinalScore {
		t.Fatalf("phase = %v, expected ShowingFinalScore", state.Phase)
	}
	if g.bird.Y != 1 || g.bird.Speed != 0 {
		t.Errorf("bird should not move after a collision, got y=%v speed=%v", g.bird.Y, g.bird.Speed)
	}
	x, _, _ := windows.Position(pair.Top)
	if x != g.bird.X {
		t.Errorf("pipes should not scroll after a collision, x = %v", x)
	}
}

func TestGameDismissFinalScore(t *testing.T) {
	tests := []struct {
		name     string
		actions  []core.Action
		expected core.Phase
	}{
		{"no input", nil, core.PhaseShowingFinalScore},
		{"key press", []core.Action{core.ActionKey}, core.PhaseExited},
		{"jump key", []core.Action{core.ActionJump, core.ActionKey}, core.PhaseExited},
		{"window close", []core.Action{core.ActionClose}, core.PhaseExited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := newTestGame(t, 1000, 1000, 1)
			clearPipes(t, g)
			g.bird.Y = g.field.Height
			step(t, g)

			state := step(t, g, tt.actions...)
			if state.Phase != tt.expected {
				t.Errorf("phase = %v, expected %v", state.Phase, tt.expected)
			}
		})
	}
}

func TestPipeDestroyedAtLeftEdge(t *testing.T) {
	g, windows := newTestGame(t, 1000, 500, 1)
	pair := g.Pipes()[0]

	// Same arithmetic as the game
	frames := 0
	for x := g.field.VW(PipeSpawnX); x > 0; x -= g.field.VW(ScrollPercent) {
		frames++
	}

	for i := 1; i < frames; i++ {
		if err := g.scroll(); err != nil {
			t.Fatal(err)
		}
	}
	if !windows.Alive(pair.Top) || g.State().Score != 0 {
		t.Fatalf("pair should survive %d frames", frames-1)
	}

	if err := g.scroll(); err != nil {
		t.Fatal(err)
	}
	if windows.Alive(pair.Top) || windows.Alive(pair.Bottom) {
		t.Error("both windows should be destroyed when x reaches 0")
	}
	if g.State().Score != 1 {
		t.Errorf("score = %d, expected 1 per destroyed pair", g.State().Score)
	}
	if len(g.Pipes()) != 0 {
		t.Errorf("destroyed pair still active: %+v", g.Pipes())
	}
}

func TestPipeSpawnCadence(t *testing.T) {
	g, _ := newTestGame(t, 1000, 500, 1)

	for i := 1; i <= 3*SpawnDistance; i++ {
		before := len(g.active)
		if err := g.advanceFrame(); err != nil {
			t.Fatal(err)
		}
		spawned := len(g.active) - before

		expected := 0
		if i%SpawnDistance == 0 {
			expected = 1
		}
		if spawned != expected {
			t.Fatalf("frame %d spawned %d pairs, expected %d", i, spawned, expected)
		}
	}
}

func TestNoUseAfterDestroy(t *testing.T) {
	g, windows := newTestGame(t, 400, 200, 7)
	seen := make(map[registry.Handle]bool)

	for i := 0; i < 1000; i++ {
		if err := g.advanceFrame(); err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		if err := g.scroll(); err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}

		active := make(map[registry.Handle]bool)
		for _, p := range g.active {
			active[p.Top] = true
			active[p.Bottom] = true
			seen[p.Top] = true
			seen[p.Bottom] = true
		}
		for h := range seen {
			if !active[h] && windows.Alive(h) {
				t.Fatalf("frame %d: window %d left the active set but is still open", i, h)
			}
		}
		if windows.Len() != 1+len(active) {
			t.Fatalf("frame %d: %d windows open, expected bird + %d pipes", i, windows.Len(), len(active))
		}
	}

	if g.State().Score == 0 {
		t.Error("expected some pairs to pass in 1000 frames")
	}

	if err := g.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if windows.Len() != 0 {
		t.Errorf("Close() left %d windows open", windows.Len())
	}
}

func TestGameDeterminism(t *testing.T) {
	run := func() (core.GameState, Bird, []float64) {
		g, _ := newTestGame(t, 400, 200, 12345)
		var state core.GameState
		for i := 0; i < 400; i++ {
			var actions []core.Action
			if i%15 == 0 {
				actions = append(actions, core.ActionJump, core.ActionKey)
			}
			state = step(t, g, actions...)
			if state.GameOver() {
				break
			}
		}
		var gaps []float64
		for _, p := range g.Pipes() {
			gaps = append(gaps, p.TopHeight)
		}
		return state, g.Bird(), gaps
	}

	state1, bird1, gaps1 := run()
	state2, bird2, gaps2 := run()

	if state1 != state2 {
		t.Errorf("states differ: %+v vs %+v", state1, state2)
	}
	if bird1.Y != bird2.Y || bird1.Speed != bird2.Speed {
		t.Errorf("bird differs: %+v vs %+v", bird1, bird2)
	}
	if len(gaps1) != len(gaps2) {
		t.Fatalf("pipe counts differ: %d vs %d", len(gaps1), len(gaps2))
	}
	for i := range gaps1 {
		if gaps1[i] != gaps2[i] {
			t.Errorf("pair %d gap differs: %v vs %v", i, gaps1[i], gaps2[i])
		}
	}
}

func solidPipe(w, h int, lip color.Color, lipAtBottom bool) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	body := color.RGBA{G: 200, A: 255}
	for y := 0; y < h; y++ {
		c := color.Color(body)
		if (lipAtBottom && y == h-1) || (!lipAtBottom && y == 0) {
			c = lip
		}
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func newTestFactory(field core.FieldDimensions, srcH int, seed int64) (*PipeFactory, *registry.Registry) {
	lip := color.RGBA{R: 255, A: 255}
	windows := registry.New(desktop.New(field, desktop.DefaultOptions(), nil), nil)
	f := NewPipeFactory(field, windows,
		solidPipe(52, srcH, lip, true),
		solidPipe(52, srcH, lip, false),
		rand.New(rand.NewSource(seed)))
	return f, windows
}

func TestPipeHeightsFillField(t *testing.T) {
	field := core.NewField(640, 360)
	f, windows := newTestFactory(field, 320, 99)

	for i := 0; i < 200; i++ {
		pair, topBound, err := f.Spawn()
		if err != nil {
			t.Fatalf("Spawn() failed: %v", err)
		}

		if sum := pair.TopHeight + pair.GapSize + pair.BottomHeight; math.Abs(sum-field.Height) > epsilon {
			t.Fatalf("heights sum to %v, expected %v", sum, field.Height)
		}
		if math.Abs(pair.GapSize-field.VH(GapPercent)) > epsilon {
			t.Fatalf("gap = %v, expected 40%% of the field", pair.GapSize)
		}
		if pair.TopHeight < field.VH(MinTopPercent)-epsilon || pair.TopHeight > field.VH(MaxTopPercent)+epsilon {
			t.Fatalf("top height %v outside 10-50%%", pair.TopHeight)
		}
		if topBound != 0 {
			t.Fatalf("topBound = %v, expected the top pipe's y", topBound)
		}

		top, _ := windows.Rect(pair.Top)
		bottom, _ := windows.Rect(pair.Bottom)
		if top.X != field.VW(PipeSpawnX) || bottom.X != top.X {
			t.Fatalf("pipes should spawn at 90%% of the width, got %v and %v", top, bottom)
		}
		if top.Y != 0 || math.Abs(bottom.Y-(pair.TopHeight+pair.GapSize)) > epsilon {
			t.Fatalf("pipe y positions wrong: %v and %v", top, bottom)
		}
		if math.Abs(bottom.Bottom()-field.Height) > epsilon {
			t.Fatalf("bottom pipe should reach the bottom edge, got %v", bottom)
		}
	}
}

func TestPipeCropKeepsLipAtGap(t *testing.T) {
	field := core.NewField(640, 360)
	f, windows := newTestFactory(field, 320, 3)

	pair, _, err := f.Spawn()
	if err != nil {
		t.Fatalf("Spawn() failed: %v", err)
	}

	images := make(map[registry.Handle]image.Image)
	for _, w := range windows.Windows() {
		images[w.ID] = w.Image
	}

	width := f.ColumnWidth()
	tests := []struct {
		name   string
		img    image.Image
		height float64
		lipY   func(b image.Rectangle) int
	}{
		{"top pipe", images[pair.Top], pair.TopHeight, func(b image.Rectangle) int { return b.Max.Y - 1 }},
		{"bottom pipe", images[pair.Bottom], pair.BottomHeight, func(b image.Rectangle) int { return b.Min.Y }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := tt.img.Bounds()
			expectedH := int(math.Round(tt.height * 52 / width))
			if b.Dx() != 52 || b.Dy() != expectedH {
				t.Errorf("crop = %dx%d, expected 52x%d", b.Dx(), b.Dy(), expectedH)
			}
			r, _, _, _ := tt.img.At(b.Min.X, tt.lipY(b)).RGBA()
			if r>>8 != 255 {
				t.Error("the lip should stay at the gap edge")
			}
		})
	}
}

func TestPipeCropTallerThanSourcePanics(t *testing.T) {
	field := core.NewField(100, 100)
	f, _ := newTestFactory(field, 40, 1)

	defer func() {
		if recover() == nil {
			t.Error("Spawn() with a too short source image should panic")
		}
	}()
	_, _, _ = f.Spawn()
}
