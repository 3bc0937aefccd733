package cmd

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jfmyers9/chartfm/internal/config"
	"github.com/jfmyers9/chartfm/internal/render"
	"github.com/jfmyers9/chartfm/internal/snapshot"
	"github.com/jfmyers9/chartfm/internal/store"
	"github.com/jfmyers9/chartfm/internal/upstream"
	"github.com/jfmyers9/chartfm/internal/view"
	"github.com/jfmyers9/chartfm/pkg/lastfm"
)

const userAgent = "chartfm/1.0"

// app holds the wired chart pipeline shared by the commands
type app struct {
	kv        store.KV
	snapshots *snapshot.Store
	source    *upstream.LastFM
	views     *view.Service
	encoding  render.Encoding
}

// newApp opens storage and builds the pipeline from cfg
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	encoding, err := render.ParseEncoding(cfg.Render.Encoding)
	if err != nil {
		return nil, fmt.Errorf("invalid render encoding: %w", err)
	}

	kv, err := store.Open(ctx, store.Options{
		Driver:        cfg.Storage.Driver,
		Dir:           cfg.Storage.DataDir,
		RedisAddr:     cfg.Storage.Redis.Addr,
		RedisPassword: cfg.Storage.Redis.Password,
		RedisDB:       cfg.Storage.Redis.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	logger.Debug().
		Str("driver", cfg.Storage.Driver).
		Str("data_dir", cfg.Storage.DataDir).
		Msg("Opened storage")

	client, err := lastfm.NewClient(lastfm.Config{
		APIKey:     cfg.LastFM.APIKey,
		BaseURL:    cfg.LastFM.BaseURL,
		HTTPClient: &http.Client{Timeout: cfg.LastFM.Timeout},
		UserAgent:  userAgent,
		Logger:     upstream.DebugLogger{Logger: logger},
	})
	if err != nil {
		_ = kv.Close()
		return nil, fmt.Errorf("failed to create Last.fm client: %w", err)
	}

	rasterizer, err := render.New(
		render.NewHTTPFetcher(&http.Client{Timeout: cfg.LastFM.Timeout}, userAgent),
		logger,
		render.WithScale(cfg.Render.Scale),
		render.WithWorkers(cfg.Render.Workers),
	)
	if err != nil {
		_ = kv.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	snapshots := snapshot.New(kv, logger)
	source := upstream.New(client, logger)

	return &app{
		kv:        kv,
		snapshots: snapshots,
		source:    source,
		views: view.NewService(source, snapshots, rasterizer, view.Config{
			TableLimit:  cfg.Chart.TableLimit,
			Encoding:    encoding,
			JPEGQuality: cfg.Render.JPEGQuality,
		}, logger),
		encoding: encoding,
	}, nil
}

// Close releases storage
func (a *app) Close() error {
	return a.kv.Close()
}
