// Package upstream adapts the Last.fm SDK to the chart domain.
package upstream

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/jfmyers9/chartfm/internal/chart"
	"github.com/jfmyers9/chartfm/pkg/lastfm"
)

// Source is what a chart view needs from upstream.
type Source interface {
	GetUser(ctx context.Context, username string) (chart.User, error)
	GetChart(ctx context.Context, req chart.Request, limit int) ([]chart.Item, error)
}

// LastFM implements Source on a lastfm.Client.
type LastFM struct {
	client *lastfm.Client
	logger zerolog.Logger
}

// New wraps client.
func New(client *lastfm.Client, logger zerolog.Logger) *LastFM {
	return &LastFM{
		client: client,
		logger: logger.With().Str("component", "upstream").Logger(),
	}
}

// GetUser fetches the profile for username.
func (l *LastFM) GetUser(ctx context.Context, username string) (chart.User, error) {
	u, err := l.client.User().GetInfo(ctx, username)
	if err != nil {
		return chart.User{}, l.classify(err, "get user %q", username)
	}

	return chart.User{
		Name:      u.Name,
		URL:       u.URL,
		ImageURL:  lastfm.BestImage(u.Images),
		Playcount: u.Playcount,
	}, nil
}

// GetChart fetches up to limit items for req in rank order.
func (l *LastFM) GetChart(ctx context.Context, req chart.Request, limit int) ([]chart.Item, error) {
	top, err := l.client.User().GetTopItems(ctx,
		lastfm.ItemType(req.Type),
		req.Username,
		lastfm.Period(req.Period.Upstream()),
		limit,
	)
	if err != nil {
		return nil, l.classify(err, "get %s chart for %q", req.Type, req.Username)
	}

	items := make([]chart.Item, len(top))
	for i, t := range top {
		items[i] = chart.Item{
			Rank:      t.Rank,
			Name:      t.Name,
			URL:       t.URL,
			Playcount: t.Playcount,
			ImageURL:  lastfm.BestImage(t.Images),
		}
		if t.Artist != nil {
			items[i].Artist = &chart.Artist{Name: t.Artist.Name, URL: t.Artist.URL}
		}
	}

	l.logger.Debug().
		Str("user", req.Username).
		Str("type", string(req.Type)).
		Str("period", string(req.Period)).
		Int("limit", limit).
		Int("items", len(items)).
		Msg("Fetched chart")

	return items, nil
}

// classify marks err as chart.ErrNotFound or chart.ErrUpstream, keeping the
// cause in the chain.
func (l *LastFM) classify(err error, format string, args ...interface{}) error {
	wrapped := errors.Wrapf(err, format, args...)
	if lastfm.IsNotFound(err) {
		return errors.Mark(wrapped, chart.ErrNotFound)
	}

	l.logger.Warn().Err(err).Str("op", fmt.Sprintf(format, args...)).Msg("Upstream request failed")
	return errors.Mark(wrapped, chart.ErrUpstream)
}

// DebugLogger adapts a zerolog.Logger to lastfm.Logger.
type DebugLogger struct {
	Logger zerolog.Logger
}

// Debugf implements lastfm.Logger.
func (d DebugLogger) Debugf(format string, args ...interface{}) {
	d.Logger.Debug().Msgf(format, args...)
}
