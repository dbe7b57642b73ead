package core

// Color represents a foreground color for a screen cell.
// Uses ANSI 256-color codes for terminal compatibility.
type Color uint8

// Predefined colors for lane and panel elements.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightRed
	ColorBrightWhite
	ColorOrange
	ColorGray
)

// TileColors is the palette used for the five visual variants of an active tile.
var TileColors = [5]Color{ColorCyan, ColorMagenta, ColorYellow, ColorBlue, ColorOrange}
