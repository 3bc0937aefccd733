// Package chart holds the chart domain model: requests, items, snapshots
// and the delta engine that compares a chart with its previous snapshot.
package chart

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// Type selects which top list a chart shows.
type Type string

const (
	TypeAlbums  Type = "albums"
	TypeArtists Type = "artists"
	TypeTracks  Type = "tracks"
)

// Types lists the chart types in form order.
var Types = []Type{TypeAlbums, TypeArtists, TypeTracks}

// Label returns the plural display name, e.g. "Albums".
func (t Type) Label() string {
	switch t {
	case TypeAlbums:
		return "Albums"
	case TypeArtists:
		return "Artists"
	case TypeTracks:
		return "Tracks"
	default:
		return string(t)
	}
}

// Column returns the table header for the title column.
func (t Type) Column() string {
	switch t {
	case TypeAlbums:
		return "ALBUM"
	case TypeArtists:
		return "ARTIST"
	case TypeTracks:
		return "SONG"
	default:
		return strings.ToUpper(string(t))
	}
}

// HasArtist reports whether items of this type carry an artist.
func (t Type) HasArtist() bool {
	return t != TypeArtists
}

// Period is the time range a chart covers.
type Period string

const (
	Period7Day    Period = "7day"
	Period1Month  Period = "1month"
	Period3Month  Period = "3month"
	Period6Month  Period = "6month"
	Period1Year   Period = "1year"
	PeriodOverall Period = "overall"

	// period12Month is the upstream spelling of Period1Year, accepted as
	// input.
	period12Month Period = "12month"
)

// Periods lists the periods in form order.
var Periods = []Period{Period7Day, Period1Month, Period3Month, Period6Month, Period1Year, PeriodOverall}

// Canonical maps aliases onto their canonical period.
func (p Period) Canonical() Period {
	if p == period12Month {
		return Period1Year
	}
	return p
}

// Upstream returns the period parameter Last.fm expects.
func (p Period) Upstream() string {
	if p.Canonical() == Period1Year {
		return string(period12Month)
	}
	return string(p)
}

// Label returns a human-readable period, e.g. "7 days".
func (p Period) Label() string {
	switch p.Canonical() {
	case Period7Day:
		return "7 days"
	case Period1Month:
		return "1 month"
	case Period3Month:
		return "3 months"
	case Period6Month:
		return "6 months"
	case Period1Year:
		return "1 year"
	case PeriodOverall:
		return "Overall"
	default:
		return string(p)
	}
}

// Format is a grid shape of Rows by Cols tiles.
type Format struct {
	Rows int
	Cols int
}

// Formats lists the grid shapes offered by the request form.
var Formats = []Format{
	{3, 3}, {4, 4}, {5, 4}, {5, 5}, {6, 6}, {8, 6}, {8, 8}, {10, 10},
}

// DefaultFormat is used for grid requests that do not name one.
var DefaultFormat = Format{Rows: 4, Cols: 4}

// maxFormatSide bounds either side of a grid.
const maxFormatSide = 10

// ParseFormat parses "RxC" into a Format. Only the shapes in Formats are
// accepted.
func ParseFormat(s string) (Format, error) {
	rows, cols, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return Format{}, errors.Newf("invalid format %q: expected RxC", s)
	}

	r, err := strconv.Atoi(rows)
	if err != nil {
		return Format{}, errors.Wrapf(err, "invalid format %q", s)
	}
	c, err := strconv.Atoi(cols)
	if err != nil {
		return Format{}, errors.Wrapf(err, "invalid format %q", s)
	}
	if r < 1 || c < 1 || r > maxFormatSide || c > maxFormatSide {
		return Format{}, errors.Newf("invalid format %q: sides must be between 1 and %d", s, maxFormatSide)
	}

	f := Format{Rows: r, Cols: c}
	for _, allowed := range Formats {
		if f == allowed {
			return f, nil
		}
	}
	return Format{}, errors.Newf("unsupported format %q", s)
}

// Cells returns the number of tiles in the grid.
func (f Format) Cells() int {
	return f.Rows * f.Cols
}

func (f Format) String() string {
	return strconv.Itoa(f.Rows) + "x" + strconv.Itoa(f.Cols)
}

// Mode is the presentation a request renders as.
type Mode string

const (
	ModeTable Mode = "table"
	ModeGrid  Mode = "grid"
)

// Artist is the artist an album or track belongs to.
type Artist struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// Item is one ranked chart entry. URL identifies it across snapshots.
type Item struct {
	Rank      int     `json:"rank" yaml:"rank"`
	Name      string  `json:"name" yaml:"name"`
	URL       string  `json:"url" yaml:"url"`
	Playcount int     `json:"playcount" yaml:"playcount"`
	ImageURL  string  `json:"image_url,omitempty" yaml:"image_url,omitempty"`
	Artist    *Artist `json:"artist,omitempty" yaml:"artist,omitempty"`
}

const musicURLPrefix = "https://www.last.fm/music/"

// LibraryURL returns the page for this item in the user's own library, or
// the item URL when it is not a Last.fm music page.
func (i Item) LibraryURL(userURL string) string {
	path, ok := strings.CutPrefix(i.URL, musicURLPrefix)
	if !ok || userURL == "" {
		return i.URL
	}
	return strings.TrimSuffix(userURL, "/") + "/library/music/" + path
}

// User is the profile shown in a chart header.
type User struct {
	Name      string `json:"name" yaml:"name"`
	URL       string `json:"url" yaml:"url"`
	ImageURL  string `json:"image_url,omitempty" yaml:"image_url,omitempty"`
	Playcount int    `json:"playcount" yaml:"playcount"`
}

// Snapshot maps item URLs to the playcounts of a previously loaded chart.
// A nil Snapshot means no prior data.
type Snapshot map[string]int

// NewSnapshot captures the playcounts of items.
func NewSnapshot(items []Item) Snapshot {
	s := make(Snapshot, len(items))
	for _, item := range items {
		s[item.URL] = item.Playcount
	}
	return s
}
