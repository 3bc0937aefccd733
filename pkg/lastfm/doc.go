// Package lastfm provides a client library for the read-only parts of the
// Last.fm API 2.0.
//
// # Overview
//
// This package implements a small Go client for the Last.fm user methods
// needed to build listening charts: user.getinfo and
// user.gettop{albums,artists,tracks}. It provides a type-safe API with
// context support and structured errors. Requests use the JSON format.
//
// # Quick Start
//
// Create a client with your API key:
//
//	import "github.com/jfmyers9/chartfm/pkg/lastfm"
//
//	client, err := lastfm.NewClient(lastfm.Config{
//	    APIKey: "your-api-key",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Users
//
//	user, err := client.User().GetInfo(ctx, "rj")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(user.Name, user.Playcount, lastfm.BestImage(user.Images))
//
// # Top Lists
//
// The three top lists nest their results under different fields and carry
// different item shapes. The client normalizes all of them into TopItem:
//
//	albums, err := client.User().GetTopAlbums(ctx, "rj", lastfm.Period7Day, 16)
//	artists, err := client.User().GetTopArtists(ctx, "rj", lastfm.Period1Month, 25)
//	tracks, err := client.User().GetTopItems(ctx, lastfm.TypeTracks, "rj", lastfm.PeriodOverall, 50)
//
// Artist is set for albums and tracks and nil for artists.
//
// # Error Handling
//
// Last.fm reports failures in the response body. Those are returned as
// *Error:
//
//	_, err := client.User().GetInfo(ctx, "nobody-by-this-name")
//	if lastfm.IsNotFound(err) {
//	    // unknown user
//	}
//	var lastfmErr *lastfm.Error
//	if errors.As(err, &lastfmErr) && lastfmErr.Temporary() {
//	    // try again later
//	}
//
// Transport failures and undecodable bodies are returned as plain errors;
// the latter wrap ErrMalformedResponse. Requests are never retried.
//
// # Configuration
//
// The client can be configured with custom HTTP clients, base URLs (for
// testing), and optional loggers:
//
//	client, err := lastfm.NewClient(lastfm.Config{
//	    APIKey:     "your-api-key",
//	    HTTPClient: &http.Client{Timeout: 30 * time.Second},
//	    Logger:     myLogger, // Implements lastfm.Logger interface
//	})
//
// # Last.fm API Documentation
//
// https://www.last.fm/api/show/user.getTopAlbums
package lastfm
