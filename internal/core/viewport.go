package core

// FieldDimensions is the reference screen size captured once at startup.
// All percentage coordinates are scaled against it.
type FieldDimensions struct {
	Width  float64 // Field width in pixels
	Height float64 // Field height in pixels
}

// NewField creates field dimensions from a probed screen size.
func NewField(width, height int) FieldDimensions {
	return FieldDimensions{Width: float64(width), Height: float64(height)}
}

// VW converts a percentage of the field width into pixels.
// Percentages are not clamped.
func (f FieldDimensions) VW(percent float64) float64 {
	return f.Width * percent / 100
}

// VH converts a percentage of the field height into pixels.
// Percentages are not clamped.
func (f FieldDimensions) VH(percent float64) float64 {
	return f.Height * percent / 100
}

// Bounds returns the whole field as a rectangle.
func (f FieldDimensions) Bounds() Rect {
	return NewRect(0, 0, f.Width, f.Height)
}
