package domain

// Color is the highlight color assigned to a tag.
type Color string

const (
	ColorNone   Color = "none"
	ColorRed    Color = "red"
	ColorOrange Color = "orange"
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
	ColorBlue   Color = "blue"
	ColorPurple Color = "purple"
)

// Colors lists every valid tag color.
var Colors = []Color{ColorNone, ColorRed, ColorOrange, ColorYellow, ColorGreen, ColorBlue, ColorPurple}

// Valid reports whether c is one of the known colors.
func (c Color) Valid() bool {
	switch c {
	case ColorNone, ColorRed, ColorOrange, ColorYellow, ColorGreen, ColorBlue, ColorPurple:
		return true
	}
	return false
}
