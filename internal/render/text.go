package render

import (
	"fmt"
	"image"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/jfmyers9/chartfm/internal/chart"
	"github.com/jfmyers9/chartfm/internal/layout"
)

const ellipsis = "…"

// drawText draws text vertically centred in rect, truncated with an
// ellipsis to fit its width.
func drawText(dst *image.RGBA, face font.Face, rect image.Rectangle, text string, style layout.TextStyle) {
	if text == "" || rect.Dx() <= 0 {
		return
	}

	text = fitText(face, text, fixed.I(rect.Dx()))
	width := font.MeasureString(face, text)

	x := fixed.I(rect.Min.X)
	switch style.Align {
	case layout.AlignCenter:
		x += (fixed.I(rect.Dx()) - width) / 2
	case layout.AlignRight:
		x += fixed.I(rect.Dx()) - width
	}

	m := face.Metrics()
	y := fixed.I(rect.Min.Y) + (fixed.I(rect.Dy())+m.Ascent-m.Descent)/2

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(style.Color),
		Face: face,
		Dot:  fixed.Point26_6{X: x, Y: y},
	}
	d.DrawString(text)
}

// fitText shortens text until it fits maxWidth, appending an ellipsis.
func fitText(face font.Face, text string, maxWidth fixed.Int26_6) string {
	if font.MeasureString(face, text) <= maxWidth {
		return text
	}

	runes := []rune(text)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := strings.TrimRight(string(runes), " ") + ellipsis
		if font.MeasureString(face, candidate) <= maxWidth {
			return candidate
		}
	}
	return ""
}

// Column widths of the text table, in terminal cells.
const (
	colRank   = 4
	colChange = 8
	colPlays  = 7
	colTitle  = 40
	colArtist = 28
)

// WriteTable prints a page's rows, or its tiles for grid pages, as a
// fixed-width text table.
func WriteTable(w io.Writer, page *layout.Page) error {
	header := fmt.Sprintf("%s · %s · %d scrobbles", page.User.Name, page.Subtitle, page.User.Playcount)
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}

	cols := []string{
		padLeft("#", colRank),
		padToWidth("CHANGE", colChange),
		padLeft("PLAYS", colPlays),
		padToWidth(page.Column, colTitle),
	}
	if page.ShowArtist {
		cols = append(cols, padToWidth("ARTIST", colArtist))
	}
	if _, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(cols, "  "), " ")); err != nil {
		return err
	}

	for _, line := range tableLines(page) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func tableLines(page *layout.Page) []string {
	var lines []string
	addLine := func(rank int, indicator string, plays int, title, artist string) {
		cols := []string{
			padLeft(strconv.Itoa(rank), colRank),
			padToWidth(indicator, colChange),
			padLeft(strconv.Itoa(plays), colPlays),
			padToWidth(title, colTitle),
		}
		if page.ShowArtist {
			cols = append(cols, padToWidth(artist, colArtist))
		}
		lines = append(lines, strings.TrimRight(strings.Join(cols, "  "), " "))
	}

	if page.Mode == chart.ModeGrid {
		for _, t := range page.Tiles {
			addLine(t.Item.Rank, t.Delta.Indicator(), t.Item.Playcount, t.Item.Name, artistName(t.Item.Artist))
		}
		return lines
	}
	for _, r := range page.Rows {
		addLine(r.Item.Rank, r.Delta.Indicator(), r.Item.Playcount, r.Item.Name, artistName(r.Item.Artist))
	}
	return lines
}

func artistName(a *chart.Artist) string {
	if a == nil {
		return ""
	}
	return a.Name
}

func padLeft(text string, width int) string {
	if n := runewidth.StringWidth(text); n < width {
		return strings.Repeat(" ", width-n) + text
	}
	return text
}

// padToWidth pads or truncates text to exactly width display columns,
// accounting for wide characters. Truncated text ends in "...".
func padToWidth(text string, width int) string {
	if width <= 0 {
		return text
	}

	currentWidth := runewidth.StringWidth(text)

	if currentWidth > width {
		const dots = "..."
		dotsWidth := runewidth.StringWidth(dots)

		if width <= dotsWidth {
			return runewidth.Truncate(dots, width, "")
		}

		truncated := runewidth.Truncate(text, width-dotsWidth, "")
		result := truncated + dots

		// wide runes can leave the result one column short
		resultWidth := runewidth.StringWidth(result)
		if resultWidth < width {
			return result + strings.Repeat(" ", width-resultWidth)
		} else if resultWidth > width {
			return runewidth.Truncate(result, width, "")
		}
		return result
	} else if currentWidth < width {
		return text + strings.Repeat(" ", width-currentWidth)
	}

	return text
}
