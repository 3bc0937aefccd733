package lastfm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// flexInt decodes numbers that Last.fm sends either as JSON numbers or as
// strings ("playcount": "42").
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid number %s: %w", data, err)
	}
	*f = flexInt(n)
	return nil
}

// list decodes a JSON array, or a single object where Last.fm collapses a
// one-element array.
type list[T any] []T

func (l *list[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) || bytes.Equal(data, []byte(`""`)) {
		*l = nil
		return nil
	}

	if data[0] == '{' {
		var one T
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		*l = list[T]{one}
		return nil
	}

	var many []T
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = many
	return nil
}

type rawImage struct {
	URL  string `json:"#text"`
	Size string `json:"size"`
}

type rawArtist struct {
	Name string `json:"name"`
	Text string `json:"#text"`
	URL  string `json:"url"`
	MBID string `json:"mbid"`
}

type rawItem struct {
	Name      string         `json:"name"`
	URL       string         `json:"url"`
	MBID      string         `json:"mbid"`
	Playcount flexInt        `json:"playcount"`
	Image     list[rawImage] `json:"image"`
	Artist    *rawArtist     `json:"artist"`
	Attr      struct {
		Rank flexInt `json:"rank"`
	} `json:"@attr"`
}

type topAlbumsResponse struct {
	TopAlbums *struct {
		Album list[rawItem] `json:"album"`
	} `json:"topalbums"`
}

type topArtistsResponse struct {
	TopArtists *struct {
		Artist list[rawItem] `json:"artist"`
	} `json:"topartists"`
}

type topTracksResponse struct {
	TopTracks *struct {
		Track list[rawItem] `json:"track"`
	} `json:"toptracks"`
}

type userInfoResponse struct {
	User *struct {
		Name      string         `json:"name"`
		RealName  string         `json:"realname"`
		URL       string         `json:"url"`
		Country   string         `json:"country"`
		Playcount flexInt        `json:"playcount"`
		Image     list[rawImage] `json:"image"`
	} `json:"user"`
}

// topDecoder extracts the item list from one top-list response shape.
type topDecoder func(body []byte) ([]rawItem, error)

// topDecoders holds one decoder per item type. Each type nests its items
// under a differently named field; this table is the only place that knows.
var topDecoders = map[ItemType]topDecoder{
	TypeAlbums: func(body []byte) ([]rawItem, error) {
		var resp topAlbumsResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, err
		}
		if resp.TopAlbums == nil {
			return nil, fmt.Errorf("missing topalbums")
		}
		return resp.TopAlbums.Album, nil
	},
	TypeArtists: func(body []byte) ([]rawItem, error) {
		var resp topArtistsResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, err
		}
		if resp.TopArtists == nil {
			return nil, fmt.Errorf("missing topartists")
		}
		return resp.TopArtists.Artist, nil
	},
	TypeTracks: func(body []byte) ([]rawItem, error) {
		var resp topTracksResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, err
		}
		if resp.TopTracks == nil {
			return nil, fmt.Errorf("missing toptracks")
		}
		return resp.TopTracks.Track, nil
	},
}

// normalizeTop decodes a user.gettop* response into TopItems in upstream
// rank order.
func normalizeTop(itemType ItemType, body []byte) ([]TopItem, error) {
	decode, ok := topDecoders[itemType]
	if !ok {
		return nil, fmt.Errorf("%w: unknown item type %q", ErrInvalidConfig, itemType)
	}

	raw, err := decode(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedResponse, itemType, err)
	}

	items := make([]TopItem, 0, len(raw))
	for i, r := range raw {
		item := TopItem{
			Name:      r.Name,
			URL:       r.URL,
			MBID:      r.MBID,
			Playcount: int(r.Playcount),
			Rank:      int(r.Attr.Rank),
			Images:    convertImages(r.Image),
		}
		if item.Rank == 0 {
			item.Rank = i + 1
		}
		if itemType != TypeArtists && r.Artist != nil {
			name := r.Artist.Name
			if name == "" {
				name = r.Artist.Text
			}
			item.Artist = &ArtistRef{
				Name: name,
				URL:  r.Artist.URL,
				MBID: r.Artist.MBID,
			}
		}
		items = append(items, item)
	}

	return items, nil
}

// normalizeUser decodes a user.getinfo response.
func normalizeUser(body []byte) (*User, error) {
	var resp userInfoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: user: %v", ErrMalformedResponse, err)
	}
	if resp.User == nil {
		return nil, fmt.Errorf("%w: missing user", ErrMalformedResponse)
	}

	return &User{
		Name:      resp.User.Name,
		RealName:  resp.User.RealName,
		URL:       resp.User.URL,
		Country:   resp.User.Country,
		Playcount: int(resp.User.Playcount),
		Images:    convertImages(resp.User.Image),
	}, nil
}

func convertImages(raw []rawImage) []Image {
	if len(raw) == 0 {
		return nil
	}
	images := make([]Image, len(raw))
	for i, img := range raw {
		images[i] = Image{Size: img.Size, URL: img.URL}
	}
	return images
}
