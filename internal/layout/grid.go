package layout

import (
	"github.com/jfmyers9/chartfm/internal/chart"
)

// Grid lays out min(f.Cells(), len(in.Items)) square tiles row-major. Only
// occupied rows count toward the page height.
func Grid(in Input, f chart.Format) *Page {
	n := min(f.Cells(), len(in.Items))
	showArtist := in.Request.Type.HasArtist()

	gridWidth := f.Cols * tileSize
	width := max(minWidth, gridWidth+2*padding)
	left := (width - gridWidth) / 2

	p := newPage(in, chart.ModeGrid, width)

	overlayH := overlayHeightSolo
	if showArtist {
		overlayH = overlayHeight
	}

	for i := 0; i < n; i++ {
		item := in.Items[i]
		r, c := i/f.Cols, i%f.Cols
		rect := Rect{left + c*tileSize, contentTop + r*tileSize, tileSize, tileSize}

		p.Tiles = append(p.Tiles, Tile{Index: i, Row: r, Col: c, Item: item, Delta: deltaFor(in.Deltas, item), Rect: rect})

		p.add(Element{Kind: KindBox, Role: RoleTile, Rect: rect, Fill: ColorStripeOdd})
		if item.ImageURL != "" {
			p.add(Element{Kind: KindImage, Role: RoleTile, Rect: rect, Src: item.ImageURL, Link: item.URL})
		}

		overlay := Rect{rect.X, rect.Y + rect.H - overlayH, rect.W, overlayH}
		p.add(Element{Kind: KindBox, Role: RoleOverlay, Rect: overlay, Fill: ColorOverlay})
		p.add(Element{
			Kind:  KindText,
			Role:  RoleItemTitle,
			Rect:  Rect{overlay.X + 4, overlay.Y + 2, overlay.W - 8, 18},
			Text:  item.Name,
			Link:  item.URL,
			Style: TextStyle{Size: 10, Bold: true, Color: ColorText},
		})
		if showArtist && item.Artist != nil {
			p.add(Element{
				Kind:  KindText,
				Role:  RoleArtist,
				Rect:  Rect{overlay.X + 4, overlay.Y + 20, overlay.W - 8, 16},
				Text:  item.Artist.Name,
				Link:  item.Artist.URL,
				Style: TextStyle{Size: 9, Color: ColorMuted},
			})
		}
	}

	rows := (n + f.Cols - 1) / f.Cols
	return p.finish(in, contentTop+rows*tileSize)
}

// Build lays out in according to its request's mode.
func Build(in Input) *Page {
	if in.Request.Format != nil {
		return Grid(in, *in.Request.Format)
	}
	return Table(in)
}
