// Package core provides fundamental types and utilities for the window-flappy
// game. It contains no external dependencies (especially no Bubble Tea) to keep
// game logic pure and testable.
package core

import "fmt"

// Rect is an axis-aligned rectangle in field pixels with a top-left origin.
type Rect struct {
	X, Y float64 // Top-left corner position
	W, H float64 // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h float64) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() float64 {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() float64 {
	return r.Y + r.H
}

// Corners returns the four corners clockwise from the top-left.
func (r Rect) Corners() [4][2]float64 {
	return [4][2]float64{
		{r.X, r.Y},
		{r.Right(), r.Y},
		{r.Right(), r.Bottom()},
		{r.X, r.Bottom()},
	}
}

// Contains reports whether the point (x, y) lies inside r, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.Right() && y >= r.Y && y <= r.Bottom()
}

// Moved returns a copy of r with its top-left corner at (x, y).
func (r Rect) Moved(x, y float64) Rect {
	r.X, r.Y = x, y
	return r
}

// String implements fmt.Stringer.
func (r Rect) String() string {
	return fmt.Sprintf("(%.1f,%.1f %.1fx%.1f)", r.X, r.Y, r.W, r.H)
}

// Colliding reports whether two rectangles touch or overlap.
// Every corner of a is tested against b with inclusive bounds, then every
// corner of b against a; the results are OR'd together.
func Colliding(a, b Rect) bool {
	for _, c := range a.Corners() {
		if b.Contains(c[0], c[1]) {
			return true
		}
	}
	for _, c := range b.Corners() {
		if a.Contains(c[0], c[1]) {
			return true
		}
	}
	return false
}
