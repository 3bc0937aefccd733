// Package layout arranges a chart into a Page of positioned elements that
// front ends display and the rasterizer draws.
package layout

import (
	"image/color"

	"github.com/jfmyers9/chartfm/internal/chart"
)

// Kind is what an element draws.
type Kind int

const (
	KindBox Kind = iota
	KindText
	KindImage
)

// Role names an element's purpose on the page.
type Role string

const (
	RoleTitle     Role = "title"
	RoleAvatar    Role = "avatar"
	RoleUsername  Role = "username"
	RoleScrobbles Role = "scrobbles"
	RoleSubtitle  Role = "subtitle"
	RoleBack      Role = "back"
	RoleDownload  Role = "download"
	RoleLoading   Role = "loading"
	RoleHeader    Role = "header"
	RoleRow       Role = "row"
	RoleIndicator Role = "indicator"
	RolePlaycount Role = "playcount"
	RoleThumbnail Role = "thumbnail"
	RoleItemTitle Role = "item-title"
	RoleArtist    Role = "artist"
	RoleTile      Role = "tile"
	RoleOverlay   Role = "overlay"
)

// Rect is a rectangle in base (unscaled) pixels.
type Rect struct {
	X, Y, W, H int
}

// Align is horizontal text alignment within an element's rect.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// TextStyle describes how text is drawn.
type TextStyle struct {
	Size  float64 // points at scale 1
	Bold  bool
	Color color.RGBA
	Align Align
}

// Element is one positioned box, text run or image.
//
// Ignore marks interactive or transient elements that are shown on screen
// but left out of exported images.
type Element struct {
	Kind   Kind
	Role   Role
	Rect   Rect
	Fill   color.RGBA
	Text   string
	Style  TextStyle
	Src    string
	Link   string
	Round  bool
	Ignore bool
}

// Row is one table row.
type Row struct {
	Index      int
	Item       chart.Item
	Delta      chart.Delta
	Striped    bool
	Link       string
	LibraryURL string
}

// Tile is one grid cell.
type Tile struct {
	Index int
	Row   int
	Col   int
	Item  chart.Item
	Delta chart.Delta
	Rect  Rect
}

// Page is a laid-out chart. Elements are in paint order.
type Page struct {
	Mode       chart.Mode
	Width      int
	Height     int
	Background color.RGBA
	Title      string
	Subtitle   string
	Column     string
	ShowArtist bool
	User       chart.User
	Elements   []Element
	Rows       []Row
	Tiles      []Tile
}

// Images returns the distinct image URLs the page draws, in paint order.
func (p *Page) Images() []string {
	seen := make(map[string]bool)
	var urls []string
	for _, el := range p.Elements {
		if el.Kind != KindImage || el.Src == "" || el.Ignore || seen[el.Src] {
			continue
		}
		seen[el.Src] = true
		urls = append(urls, el.Src)
	}
	return urls
}

// Visible returns the elements that belong in an exported image.
func (p *Page) Visible() []Element {
	out := make([]Element, 0, len(p.Elements))
	for _, el := range p.Elements {
		if !el.Ignore {
			out = append(out, el)
		}
	}
	return out
}

// Input is everything a layout is derived from.
type Input struct {
	Request chart.Request
	User    chart.User
	Items   []chart.Item
	Deltas  map[string]chart.Delta
	Loading bool
}

func (p *Page) add(el Element) {
	p.Elements = append(p.Elements, el)
}
