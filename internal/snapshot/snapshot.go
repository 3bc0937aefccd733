// Package snapshot persists previous chart playcounts and the last
// submitted request on top of a store.KV.
package snapshot

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/jfmyers9/chartfm/internal/chart"
	"github.com/jfmyers9/chartfm/internal/store"
)

const (
	snapshotPrefix = "snapshot/"
	lastRequestKey = "request/last"
)

// Store reads and writes chart snapshots.
type Store struct {
	kv     store.KV
	logger zerolog.Logger
	now    func() time.Time
}

// persistedSnapshot is the JSON representation of a snapshot.
type persistedSnapshot struct {
	Key        string         `json:"key"`
	SavedAt    time.Time      `json:"saved_at"`
	Playcounts map[string]int `json:"playcounts"`
}

// persistedRequest is the JSON representation of the last request.
type persistedRequest struct {
	Username string `json:"username"`
	Type     string `json:"type"`
	Period   string `json:"period"`
	Format   string `json:"format,omitempty"`
}

// New creates a Store on kv.
func New(kv store.KV, logger zerolog.Logger) *Store {
	return &Store{
		kv:     kv,
		logger: logger.With().Str("component", "snapshot").Logger(),
		now:    time.Now,
	}
}

// Save replaces the snapshot for key with the playcounts of items.
func (s *Store) Save(ctx context.Context, key string, items []chart.Item) error {
	data, err := json.Marshal(persistedSnapshot{
		Key:        key,
		SavedAt:    s.now().UTC(),
		Playcounts: chart.NewSnapshot(items),
	})
	if err != nil {
		return errors.Wrap(err, "failed to encode snapshot")
	}

	if err := s.kv.Put(ctx, snapshotPrefix+key, data); err != nil {
		return errors.Wrap(err, "failed to save snapshot")
	}

	s.logger.Debug().Str("key", key).Int("items", len(items)).Msg("Saved snapshot")
	return nil
}

// Load returns the snapshot saved for key. Any failure to read or decode
// it is logged and reported as absent.
func (s *Store) Load(ctx context.Context, key string) (chart.Snapshot, bool) {
	data, err := s.kv.Get(ctx, snapshotPrefix+key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, false
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Failed to read snapshot")
		return nil, false
	}

	var ps persistedSnapshot
	if err := json.Unmarshal(data, &ps); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Discarding corrupt snapshot")
		return nil, false
	}
	if ps.Key != key {
		s.logger.Warn().Str("key", key).Str("stored_key", ps.Key).Msg("Discarding snapshot for another key")
		return nil, false
	}
	if ps.Playcounts == nil {
		ps.Playcounts = map[string]int{}
	}

	return chart.Snapshot(ps.Playcounts), true
}

// SaveLastRequest remembers req for prefilling the request form.
func (s *Store) SaveLastRequest(ctx context.Context, req chart.Request) error {
	pr := persistedRequest{
		Username: req.Username,
		Type:     string(req.Type),
		Period:   string(req.Period),
	}
	if req.Format != nil {
		pr.Format = req.Format.String()
	}

	data, err := json.Marshal(pr)
	if err != nil {
		return errors.Wrap(err, "failed to encode request")
	}
	if err := s.kv.Put(ctx, lastRequestKey, data); err != nil {
		return errors.Wrap(err, "failed to save last request")
	}
	return nil
}

// LastRequest returns the last saved request, or false if there is none
// or it no longer validates.
func (s *Store) LastRequest(ctx context.Context) (chart.Request, bool) {
	data, err := s.kv.Get(ctx, lastRequestKey)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn().Err(err).Msg("Failed to read last request")
		}
		return chart.Request{}, false
	}

	var pr persistedRequest
	if err := json.Unmarshal(data, &pr); err != nil {
		s.logger.Warn().Err(err).Msg("Discarding corrupt last request")
		return chart.Request{}, false
	}

	req := chart.Request{
		Username: pr.Username,
		Type:     chart.Type(pr.Type),
		Period:   chart.Period(pr.Period),
	}
	if pr.Format != "" {
		f, err := chart.ParseFormat(pr.Format)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Discarding last request format")
		} else {
			req.Format = &f
		}
	}
	if err := req.Validate(); err != nil {
		s.logger.Warn().Err(err).Msg("Discarding invalid last request")
		return chart.Request{}, false
	}

	return req, true
}
