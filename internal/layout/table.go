package layout

import (
	"strconv"

	"github.com/jfmyers9/chartfm/internal/chart"
)

// Table lays out one striped row per item in rank order.
func Table(in Input) *Page {
	showArtist := in.Request.Type.HasArtist()

	tableWidth := indicatorWidth + playcountWidth + titleColWidth
	if showArtist {
		tableWidth += artistColWidth
	}
	width := max(minWidth, tableWidth+2*padding)
	left := (width - tableWidth) / 2

	p := newPage(in, chart.ModeTable, width)

	titleX := left + indicatorWidth + playcountWidth
	artistX := titleX + titleColWidth

	y := contentTop
	p.add(Element{
		Kind:  KindText,
		Role:  RoleHeader,
		Rect:  Rect{titleX + 8, y, titleColWidth - 8, headerRowHeight},
		Text:  p.Column,
		Style: TextStyle{Size: 12, Bold: true, Color: ColorMuted},
	})
	if showArtist {
		p.add(Element{
			Kind:  KindText,
			Role:  RoleHeader,
			Rect:  Rect{artistX + 8, y, artistColWidth - 8, headerRowHeight},
			Text:  "ARTIST",
			Style: TextStyle{Size: 12, Bold: true, Color: ColorMuted},
		})
	}
	y += headerRowHeight

	for i, item := range in.Items {
		delta := deltaFor(in.Deltas, item)
		row := Row{
			Index:      i,
			Item:       item,
			Delta:      delta,
			Striped:    i%2 == 1,
			Link:       item.URL,
			LibraryURL: item.LibraryURL(in.User.URL),
		}
		p.Rows = append(p.Rows, row)

		fill := ColorStripeEven
		if row.Striped {
			fill = ColorStripeOdd
		}
		p.add(Element{Kind: KindBox, Role: RoleRow, Rect: Rect{left, y, tableWidth, rowHeight}, Fill: fill})

		p.add(Element{
			Kind:  KindText,
			Role:  RoleIndicator,
			Rect:  Rect{left + 6, y, indicatorWidth - 6, rowHeight},
			Text:  delta.Indicator(),
			Style: TextStyle{Size: 11, Color: DeltaColor(delta)},
		})
		p.add(Element{
			Kind:  KindText,
			Role:  RolePlaycount,
			Rect:  Rect{left + indicatorWidth, y, playcountWidth - 8, rowHeight},
			Text:  strconv.Itoa(item.Playcount),
			Link:  row.LibraryURL,
			Style: TextStyle{Size: 15, Color: ColorAccent, Align: AlignRight},
		})

		textX := titleX + 8
		if item.ImageURL != "" {
			p.add(Element{
				Kind: KindImage,
				Role: RoleThumbnail,
				Rect: Rect{titleX, y, thumbSize, thumbSize},
				Src:  item.ImageURL,
				Link: item.URL,
			})
			textX = titleX + thumbSize + 8
		}
		p.add(Element{
			Kind:  KindText,
			Role:  RoleItemTitle,
			Rect:  Rect{textX, y, titleX + titleColWidth - textX - 8, rowHeight},
			Text:  item.Name,
			Link:  item.URL,
			Style: TextStyle{Size: 15, Bold: true, Color: ColorText},
		})

		if showArtist && item.Artist != nil {
			p.add(Element{
				Kind:  KindText,
				Role:  RoleArtist,
				Rect:  Rect{artistX + 8, y, artistColWidth - 16, rowHeight},
				Text:  item.Artist.Name,
				Link:  item.Artist.URL,
				Style: TextStyle{Size: 15, Color: ColorText},
			})
		}

		y += rowHeight
	}

	return p.finish(in, y)
}

func deltaFor(deltas map[string]chart.Delta, item chart.Item) chart.Delta {
	if d, ok := deltas[item.URL]; ok {
		return d
	}
	return chart.Delta{Status: chart.StatusNew}
}
