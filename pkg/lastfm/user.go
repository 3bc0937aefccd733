package lastfm

import (
	"context"
	"fmt"
	"strconv"
)

// UserService provides read-only user operations for the Last.fm API.
type UserService struct {
	client *Client
}

const (
	// MaxLimit is the largest page size the user.gettop* methods accept.
	MaxLimit = 1000
)

// GetInfo fetches a user's profile.
//
// An unknown user is reported as an *Error with code 6; use IsNotFound
// to detect it.
//
// Example:
//
//	user, err := client.User().GetInfo(ctx, "rj")
//	if lastfm.IsNotFound(err) {
//	    fmt.Println("no such user")
//	}
func (s *UserService) GetInfo(ctx context.Context, username string) (*User, error) {
	if username == "" {
		return nil, fmt.Errorf("lastfm: username is required")
	}

	body, err := s.client.call(ctx, "user.getinfo", map[string]string{
		"user": username,
	})
	if err != nil {
		return nil, err
	}

	return normalizeUser(body)
}

// GetTopItems fetches the first limit entries of a user's top list for
// itemType over period, in upstream rank order.
//
// The list may be shorter than limit for users with little history.
//
// Example:
//
//	items, err := client.User().GetTopItems(ctx, lastfm.TypeAlbums, "rj", lastfm.Period7Day, 16)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, item := range items {
//	    fmt.Println(item.Rank, item.Name, item.Playcount)
//	}
func (s *UserService) GetTopItems(ctx context.Context, itemType ItemType, username string, period Period, limit int) ([]TopItem, error) {
	if username == "" {
		return nil, fmt.Errorf("lastfm: username is required")
	}
	if _, ok := topDecoders[itemType]; !ok {
		return nil, fmt.Errorf("%w: unknown item type %q", ErrInvalidConfig, itemType)
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	params := map[string]string{
		"user":  username,
		"limit": strconv.Itoa(limit),
	}
	if period != "" {
		params["period"] = string(period)
	}

	body, err := s.client.call(ctx, "user.gettop"+string(itemType), params)
	if err != nil {
		return nil, err
	}

	items, err := normalizeTop(itemType, body)
	if err != nil {
		return nil, err
	}

	// Last.fm occasionally returns one extra entry when ranks tie.
	if len(items) > limit {
		items = items[:limit]
	}

	return items, nil
}

// GetTopAlbums fetches a user's top albums.
func (s *UserService) GetTopAlbums(ctx context.Context, username string, period Period, limit int) ([]TopItem, error) {
	return s.GetTopItems(ctx, TypeAlbums, username, period, limit)
}

// GetTopArtists fetches a user's top artists. Artist is nil on every item.
func (s *UserService) GetTopArtists(ctx context.Context, username string, period Period, limit int) ([]TopItem, error) {
	return s.GetTopItems(ctx, TypeArtists, username, period, limit)
}

// GetTopTracks fetches a user's top tracks.
func (s *UserService) GetTopTracks(ctx context.Context, username string, period Period, limit int) ([]TopItem, error) {
	return s.GetTopItems(ctx, TypeTracks, username, period, limit)
}
