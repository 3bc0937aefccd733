package layout

import (
	"image/color"

	"github.com/jfmyers9/chartfm/internal/chart"
)

// Palette.
var (
	ColorBackground = color.RGBA{0x11, 0x11, 0x13, 0xff}
	ColorStripeEven = color.RGBA{0x18, 0x19, 0x1b, 0xff}
	ColorStripeOdd  = color.RGBA{0x21, 0x22, 0x25, 0xff}
	ColorText       = color.RGBA{0xed, 0xee, 0xf0, 0xff}
	ColorMuted      = color.RGBA{0xb0, 0xb4, 0xba, 0xff}
	ColorAccent     = color.RGBA{0xe5, 0x48, 0x4d, 0xff}
	ColorIncrease   = color.RGBA{0x30, 0xa4, 0x6c, 0xff}
	ColorDecrease   = color.RGBA{0xe5, 0x48, 0x4d, 0xff}
	ColorNew        = color.RGBA{0xff, 0xc5, 0x3d, 0xff}
	ColorOverlay    = color.RGBA{0x00, 0x00, 0x00, 0xa0}
	ColorScrim      = color.RGBA{0x00, 0x00, 0x00, 0x80}
	ColorButton     = color.RGBA{0x2e, 0x31, 0x35, 0xff}
)

// Base metrics in unscaled pixels.
const (
	padding       = 16
	minWidth      = 480
	buttonSize    = 36
	titleHeight   = 40
	profileTop    = 64
	profileHeight = 60
	subtitleTop   = 132
	subtitleH     = 32
	contentTop    = 176

	headerRowHeight = 28
	rowHeight       = 42
	indicatorWidth  = 56
	playcountWidth  = 54
	titleColWidth   = 330
	artistColWidth  = 170
	thumbSize       = 42

	tileSize          = 150
	overlayHeight     = 40
	overlayHeightSolo = 24
)

// DeltaColor returns the colour an indicator is drawn in.
func DeltaColor(d chart.Delta) color.RGBA {
	switch d.Status {
	case chart.StatusNew:
		return ColorNew
	case chart.StatusChanged:
		if d.Change < 0 {
			return ColorDecrease
		}
		return ColorIncrease
	default:
		return ColorMuted
	}
}
