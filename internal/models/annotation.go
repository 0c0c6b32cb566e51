package models

// Color is a palette entry used to draw annotation markers, as a hex string.
type Color string

const (
	ColorRed     Color = "#FF0000"
	ColorGreen   Color = "#00FF00"
	ColorBlue    Color = "#0000FF"
	ColorYellow  Color = "#FFFF00"
	ColorMagenta Color = "#FF00FF"

	DefaultColor = ColorRed
)

// Palette returns the fixed, ordered set of annotation colors.
func Palette() []Color {
	return []Color{ColorRed, ColorGreen, ColorBlue, ColorYellow, ColorMagenta}
}

// InPalette reports whether c is one of the palette colors.
func (c Color) InPalette() bool {
	for _, p := range Palette() {
		if p == c {
			return true
		}
	}
	return false
}

// Annotation is one labeled point on a displayed image.
// X and Y are pixel offsets from the top-left of the image as rendered at capture time.
type Annotation struct {
	ID    int64   `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Text  string  `json:"text"`
	Color Color   `json:"color"`
}
