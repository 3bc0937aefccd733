package lastfm

// ItemType selects which top list a chart request reads.
type ItemType string

// Supported item types. The values match the suffix of the
// user.gettop{albums,artists,tracks} methods.
const (
	TypeAlbums  ItemType = "albums"
	TypeArtists ItemType = "artists"
	TypeTracks  ItemType = "tracks"
)

// Period is a Last.fm time range for top lists.
type Period string

// Periods accepted by the user.gettop* methods.
const (
	PeriodOverall Period = "overall"
	Period7Day    Period = "7day"
	Period1Month  Period = "1month"
	Period3Month  Period = "3month"
	Period6Month  Period = "6month"
	Period12Month Period = "12month"
)

// Image sizes as reported in the "size" attribute of image entries.
const (
	ImageSmall      = "small"
	ImageMedium     = "medium"
	ImageLarge      = "large"
	ImageExtraLarge = "extralarge"
	ImageMega       = "mega"
)

// Image is one entry of an item's image list.
type Image struct {
	Size string // small, medium, large, extralarge or mega
	URL  string // Empty when Last.fm has no artwork
}

// User is a Last.fm user profile from user.getinfo.
type User struct {
	Name      string
	RealName  string
	URL       string
	Country   string
	Playcount int
	Images    []Image
}

// ArtistRef is the artist a track or album belongs to.
type ArtistRef struct {
	Name string
	URL  string
	MBID string
}

// TopItem is a normalized entry of a top albums, artists or tracks list.
//
// Artist is nil for artist charts.
type TopItem struct {
	Name      string
	URL       string
	MBID      string
	Playcount int
	Rank      int
	Images    []Image
	Artist    *ArtistRef
}

// imagePreference is the order in which image sizes are picked.
// Other sizes, mega included, are only used when none of these has a URL.
var imagePreference = []string{ImageExtraLarge, ImageLarge, ImageMedium, ImageSmall}

// BestImage returns the URL of the largest usable image, or "" if none
// of the images has a URL.
func BestImage(images []Image) string {
	for _, size := range imagePreference {
		for _, img := range images {
			if img.Size == size && img.URL != "" {
				return img.URL
			}
		}
	}
	for _, img := range images {
		if img.URL != "" {
			return img.URL
		}
	}
	return ""
}
