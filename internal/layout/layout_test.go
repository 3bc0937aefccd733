package layout

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfmyers9/chartfm/internal/chart"
)

func testItems(n int, withArtist bool) []chart.Item {
	items := make([]chart.Item, n)
	for i := range items {
		items[i] = chart.Item{
			Rank:      i + 1,
			Name:      fmt.Sprintf("Item %d", i+1),
			URL:       fmt.Sprintf("https://www.last.fm/music/Artist/Item+%d", i+1),
			Playcount: 100 - i,
			ImageURL:  fmt.Sprintf("https://img/%d.png", i+1),
		}
		if withArtist {
			items[i].Artist = &chart.Artist{Name: "Artist", URL: "https://www.last.fm/music/Artist"}
		}
	}
	return items
}

func testInput(typ chart.Type, format *chart.Format, items []chart.Item) Input {
	return Input{
		Request: chart.Request{Username: "alice", Type: typ, Period: chart.Period7Day, Format: format},
		User:    chart.User{Name: "alice", URL: "https://www.last.fm/user/alice", ImageURL: "https://img/alice.png", Playcount: 1234},
		Items:   items,
		Deltas:  chart.ComputeDeltas(items, nil),
	}
}

func countRole(p *Page, role Role, kind Kind) int {
	n := 0
	for _, el := range p.Elements {
		if el.Role == role && el.Kind == kind {
			n++
		}
	}
	return n
}

func TestGrid_TileCount(t *testing.T) {
	tests := []struct {
		name      string
		format    chart.Format
		available int
		wantTiles int
		wantRows  int
	}{
		{"full 3x3", chart.Format{Rows: 3, Cols: 3}, 9, 9, 3},
		{"sparse 3x3", chart.Format{Rows: 3, Cols: 3}, 7, 7, 3},
		{"more than needed", chart.Format{Rows: 4, Cols: 4}, 20, 16, 4},
		{"one row", chart.Format{Rows: 5, Cols: 4}, 3, 3, 1},
		{"empty", chart.Format{Rows: 3, Cols: 3}, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tt.format
			in := testInput(chart.TypeAlbums, &f, testItems(tt.available, true))

			p := Grid(in, f)

			assert.Equal(t, chart.ModeGrid, p.Mode)
			require.Len(t, p.Tiles, tt.wantTiles)
			assert.Equal(t, tt.wantTiles, countRole(p, RoleOverlay, KindBox))
			assert.Equal(t, contentTop+tt.wantRows*tileSize+padding, p.Height)
			for i, tile := range p.Tiles {
				assert.Equal(t, i, tile.Index)
				assert.Equal(t, i/f.Cols, tile.Row)
				assert.Equal(t, i%f.Cols, tile.Col)
				assert.Equal(t, in.Items[i], tile.Item)
			}
		})
	}
}

func TestGrid_ArtistsHaveNoArtistLine(t *testing.T) {
	f := chart.Format{Rows: 3, Cols: 3}
	p := Grid(testInput(chart.TypeArtists, &f, testItems(9, false)), f)
	assert.Zero(t, countRole(p, RoleArtist, KindText))

	p = Grid(testInput(chart.TypeTracks, &f, testItems(9, true)), f)
	assert.Equal(t, 9, countRole(p, RoleArtist, KindText))
}

func TestTable_Rows(t *testing.T) {
	items := testItems(5, true)
	in := testInput(chart.TypeAlbums, nil, items)
	in.Deltas = chart.ComputeDeltas(items, chart.Snapshot{items[0].URL: 95, items[1].URL: 99})

	p := Table(in)

	assert.Equal(t, chart.ModeTable, p.Mode)
	assert.Equal(t, "Albums - 7 days", p.Subtitle)
	assert.Equal(t, "ALBUM", p.Column)
	require.Len(t, p.Rows, 5)
	for i, row := range p.Rows {
		assert.Equal(t, i%2 == 1, row.Striped, "row %d", i)
		assert.Equal(t, items[i].Rank, row.Item.Rank)
	}
	assert.Equal(t, chart.Delta{Status: chart.StatusChanged, Change: 5}, p.Rows[0].Delta)
	assert.Equal(t, chart.Delta{Status: chart.StatusUnchanged}, p.Rows[1].Delta)
	assert.Equal(t, chart.StatusNew, p.Rows[2].Delta.Status)
	assert.Equal(t, "https://www.last.fm/user/alice/library/music/Artist/Item+1", p.Rows[0].LibraryURL)

	var fills []Element
	for _, el := range p.Elements {
		if el.Role == RoleRow {
			fills = append(fills, el)
		}
	}
	require.Len(t, fills, 5)
	assert.Equal(t, ColorStripeEven, fills[0].Fill)
	assert.Equal(t, ColorStripeOdd, fills[1].Fill)
	assert.Equal(t, ColorStripeEven, fills[2].Fill)

	assert.Equal(t, contentTop+headerRowHeight+5*rowHeight+padding, p.Height)
}

func TestTable_ArtistColumnDroppedForArtists(t *testing.T) {
	withArtist := Table(testInput(chart.TypeTracks, nil, testItems(3, true)))
	withoutArtist := Table(testInput(chart.TypeArtists, nil, testItems(3, false)))

	assert.Equal(t, "SONG", withArtist.Column)
	assert.Equal(t, 3, countRole(withArtist, RoleArtist, KindText))
	assert.Zero(t, countRole(withoutArtist, RoleArtist, KindText))
	assert.Equal(t, 1, countRole(withoutArtist, RoleHeader, KindText))
	assert.GreaterOrEqual(t, withoutArtist.Width, minWidth)
}

func TestTable_MissingDeltaIsNew(t *testing.T) {
	in := testInput(chart.TypeAlbums, nil, testItems(2, true))
	in.Deltas = nil

	p := Table(in)
	for _, row := range p.Rows {
		assert.Equal(t, chart.StatusNew, row.Delta.Status)
	}
}

func TestPage_IgnoredElements(t *testing.T) {
	f := chart.Format{Rows: 3, Cols: 3}
	in := testInput(chart.TypeAlbums, &f, testItems(4, true))
	in.Loading = true

	p := Build(in)

	ignored := map[Role]bool{}
	for _, el := range p.Elements {
		if el.Ignore {
			ignored[el.Role] = true
		}
	}
	assert.Equal(t, map[Role]bool{RoleBack: true, RoleDownload: true, RoleLoading: true}, ignored)

	for _, el := range p.Visible() {
		assert.False(t, el.Ignore)
	}
	assert.Len(t, p.Visible(), len(p.Elements)-3)

	p = Build(testInput(chart.TypeAlbums, &f, testItems(4, true)))
	assert.Zero(t, countRole(p, RoleLoading, KindBox))
}

func TestPage_Images(t *testing.T) {
	items := testItems(3, true)
	items[1].ImageURL = ""
	items[2].ImageURL = items[0].ImageURL

	p := Table(testInput(chart.TypeAlbums, nil, items))

	assert.Equal(t, []string{"https://img/alice.png", "https://img/1.png"}, p.Images())
}

func TestBuild_SelectsMode(t *testing.T) {
	f := chart.Format{Rows: 4, Cols: 4}
	assert.Equal(t, chart.ModeGrid, Build(testInput(chart.TypeAlbums, &f, testItems(2, true))).Mode)
	assert.Equal(t, chart.ModeTable, Build(testInput(chart.TypeAlbums, nil, testItems(2, true))).Mode)
}
