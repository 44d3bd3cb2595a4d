package core

import "time"

// RuntimeConfig contains configuration passed to the game at initialization.
type RuntimeConfig struct {
	Field         FieldDimensions // Reference screen size in pixels
	FrameInterval time.Duration   // Target wall-clock time per frame
	Seed          int64           // RNG seed for the gap positions (0 = time based)
}

// DefaultFrameInterval is the pacing target of the final game loop (50 fps).
const DefaultFrameInterval = 20 * time.Millisecond

// Phase is the game loop state.
type Phase int

const (
	PhasePlaying Phase = iota
	PhaseDead
	PhaseShowingFinalScore
	PhaseExited
)

// String returns a human-readable name for the phase.
func (p Phase) String() string {
	switch p {
	case PhasePlaying:
		return "Playing"
	case PhaseDead:
		return "Dead"
	case PhaseShowingFinalScore:
		return "ShowingFinalScore"
	case PhaseExited:
		return "Exited"
	default:
		return "Unknown"
	}
}

// GameState represents the current state of a game.
// Returned by Game.State() to communicate status to the platform.
type GameState struct {
	Score int   // Pipe pairs passed so far
	Phase Phase // Current state machine phase
}

// GameOver reports whether the bird is no longer flying.
func (s GameState) GameOver() bool {
	return s.Phase != PhasePlaying
}

// StepResult is returned by Game.Step() after each frame.
type StepResult struct {
	State GameState
}
